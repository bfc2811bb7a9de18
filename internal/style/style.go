/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package style defines the card style/geometry descriptor shared by the
// pagination engine, the renderer and the exporters.
package style

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AspectRatio is a "W:H" string or "custom".
type AspectRatio string

const (
	Ratio1x1    AspectRatio = "1:1"
	Ratio4x3    AspectRatio = "4:3"
	Ratio3x2    AspectRatio = "3:2"
	Ratio16x9   AspectRatio = "16:9"
	RatioCustom AspectRatio = "custom"
)

type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Padding is a per-side inner padding in px.
type Padding struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Toggle is an on/off footer element.
type Toggle struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Watermark reserves footer space when enabled; Text is only used by renderers.
type Watermark struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Shadow configures the card drop shadow.
type Shadow struct {
	Enabled bool    `json:"enabled" yaml:"enabled"`
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Blur    float64 `json:"blur" yaml:"blur"`
	Color   string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// Descriptor is the style/geometry record for a card. Field names on the
// wire are the camelCase names used by the editor's persisted state.
//
// CardPadding, when present, takes precedence over the legacy uniform
// ContentPadding.
type Descriptor struct {
	FontSize       float64     `json:"fontSize" yaml:"fontSize"`
	FontFamily     string      `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	Width          float64     `json:"width" yaml:"width"`
	Height         float64     `json:"height" yaml:"height"`
	AspectRatio    AspectRatio `json:"aspectRatio" yaml:"aspectRatio"`
	Orientation    Orientation `json:"orientation" yaml:"orientation"`
	AutoHeight     bool        `json:"autoHeight" yaml:"autoHeight"`
	Padding        float64     `json:"padding" yaml:"padding"`
	ContentPadding float64     `json:"contentPadding" yaml:"contentPadding"`
	CardPadding    *Padding    `json:"cardPadding,omitempty" yaml:"cardPadding,omitempty"`
	PageNumber     Toggle      `json:"pageNumber" yaml:"pageNumber"`
	Watermark      Watermark   `json:"watermark" yaml:"watermark"`
	TextColor      string      `json:"textColor,omitempty" yaml:"textColor,omitempty"`
	Background     string      `json:"background,omitempty" yaml:"background,omitempty"`
	Shadow         Shadow      `json:"shadow" yaml:"shadow"`
}

// Defaults returns the descriptor a new deck starts with.
func Defaults() Descriptor {
	return Descriptor{
		FontSize:       16,
		FontFamily:     "system-ui, sans-serif",
		Width:          500,
		Height:         750,
		AspectRatio:    Ratio3x2,
		Orientation:    Portrait,
		Padding:        20,
		ContentPadding: 24,
		TextColor:      "#1f2328",
		Background:     "#ffffff",
		Shadow:         Shadow{Enabled: true, X: 0, Y: 8, Blur: 24, Color: "rgba(0,0,0,0.15)"},
	}
}

// Inner returns the effective inner padding, resolving the legacy uniform value
// when no per-side padding is set.
func (d Descriptor) Inner() Padding {
	if d.CardPadding != nil {
		return *d.CardPadding
	}
	p := d.ContentPadding
	return Padding{Top: p, Right: p, Bottom: p, Left: p}
}

// HasFooter reports whether a page number or watermark occupies the card footer.
func (d Descriptor) HasFooter() bool { return d.PageNumber.Enabled || d.Watermark.Enabled }

// ShadowCSS derives the CSS box-shadow value. It is computed on every call and
// never stored on the descriptor.
func (d Descriptor) ShadowCSS() string {
	s := d.Shadow
	if !s.Enabled {
		return "none"
	}
	c := strings.TrimSpace(s.Color)
	if c == "" {
		c = "rgba(0,0,0,0.15)"
	}
	return fmt.Sprintf("%spx %spx %spx %s", num(s.X), num(s.Y), num(s.Blur), c)
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Load reads a descriptor from a YAML (.yaml/.yml) or JSON file and overlays it
// onto Defaults. The merged result is validated against the descriptor schema.
func Load(path string) (Descriptor, error) {
	d := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read style: %w", err)
	}
	if err := Decode(data, filepath.Ext(path), &d); err != nil {
		return d, fmt.Errorf("decode style %s: %w", filepath.Base(path), err)
	}
	if err := ValidateDescriptor(d); err != nil {
		return d, err
	}
	return d, nil
}

// Decode unmarshals data into d according to ext (".json", ".yaml", ".yml").
// Fields absent from data keep their current values.
func Decode(data []byte, ext string, d *Descriptor) error {
	if d == nil {
		return errors.New("nil descriptor")
	}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, d)
	case ".json", "":
		dec := json.NewDecoder(bytes.NewReader(data))
		return dec.Decode(d)
	default:
		return fmt.Errorf("unsupported style format %q", ext)
	}
}

// Save writes d as YAML or JSON depending on the file extension.
func Save(path string, d Descriptor) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(d)
	default:
		data, err = json.MarshalIndent(d, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode style: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
