/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Library holds parsed OpenType fonts keyed by family and style.
type Library struct {
	mu    sync.Mutex
	fonts map[fontKey]*opentype.Font
	faces map[faceKey]font.Face
}

type fontKey struct {
	family       string
	bold, italic bool
}

type faceKey struct {
	fontKey
	size float64
	dpi  float64
}

func NewLibrary() *Library {
	return &Library{fonts: map[fontKey]*opentype.Font{}, faces: map[faceKey]font.Face{}}
}

var (
	goOnce sync.Once
	goLib  *Library
	goErr  error
)

// GoFonts returns a shared library preloaded with the Go font family: "sans"
// in four styles and "mono".
func GoFonts() (*Library, error) {
	goOnce.Do(func() {
		lib := NewLibrary()
		for _, f := range []struct {
			family       string
			bold, italic bool
			data         []byte
		}{
			{"sans", false, false, goregular.TTF},
			{"sans", true, false, gobold.TTF},
			{"sans", false, true, goitalic.TTF},
			{"sans", true, true, gobolditalic.TTF},
			{"mono", false, false, gomono.TTF},
		} {
			if err := lib.Add(f.family, f.bold, f.italic, f.data); err != nil {
				goErr = err
				return
			}
		}
		goLib = lib
	})
	return goLib, goErr
}

// Add parses an OpenType/TrueType font and registers it.
func (l *Library) Add(family string, bold, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	l.mu.Lock()
	l.fonts[fontKey{family, bold, italic}] = f
	l.mu.Unlock()
	return nil
}

// LoadTTF reads a font file from disk and registers it.
func (l *Library) LoadTTF(family string, bold, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return l.Add(family, bold, italic, data)
}

// find picks the exact style, then the regular face of the family, then
// regular sans.
func (l *Library) find(fs FontSpec) (fontKey, *opentype.Font) {
	family := fs.Family
	if family == "" {
		family = "sans"
	}
	for _, k := range []fontKey{{family, fs.Bold, fs.Italic}, {family, false, false}, {"sans", false, false}} {
		if f, ok := l.fonts[k]; ok {
			return k, f
		}
	}
	return fontKey{}, nil
}

// LibraryProvider resolves specs against a Library, caching faces per size.
// Specs the library cannot serve go to Fallback (BasicProvider when nil).
// Cached faces are shared, so one provider serves one goroutine at a time.
type LibraryProvider struct {
	Lib      *Library
	DPI      float64 // 72 when zero, so SizePx maps 1:1 to pixels
	Fallback Provider
}

func (p LibraryProvider) Resolve(fs FontSpec) (font.Face, Metrics) {
	if fs.SizePx <= 0 {
		fs.SizePx = 16
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if p.Lib != nil {
		if face, ok := p.Lib.face(fs, dpi); ok {
			return face, metricsOf(face)
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(fs)
}

func (l *Library) face(fs FontSpec, dpi float64) (font.Face, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key, f := l.find(fs)
	if f == nil {
		return nil, false
	}
	fk := faceKey{key, fs.SizePx, dpi}
	if face, ok := l.faces[fk]; ok {
		return face, true
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: fs.SizePx, DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return nil, false
	}
	l.faces[fk] = face
	return face, true
}
