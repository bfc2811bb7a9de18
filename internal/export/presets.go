/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"gocardwriter/internal/domain"
	applog "gocardwriter/internal/log"
	"gocardwriter/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export across formats.
//
// Path semantics:
//   - If OutDir is empty it becomes <deck>/exports/<preset>/; a relative
//     OutDir is placed under <deck>/exports/.
//   - Single-file outputs are <slug>.pdf, <slug>.zip and <slug>.html.
//   - Per-card rasters go to png/ (and browser/ for the Chrome capture).
type BatchOptions struct {
	Preset     PresetName
	Formats    []string // pdf, png, zip, html, browser; empty means preset defaults
	OutDir     string
	Scale      float64 // raster scale; 0 uses the preset default
	Cards      []int   // zero-based card indexes; empty means all
	ChromePath string
}

// BatchExport runs the exporters picked by the preset, records the run in the
// deck manifest and returns the produced files.
func BatchExport(ctx context.Context, h *storage.DeckHandle, opt BatchOptions) ([]string, error) {
	if h == nil {
		return nil, errors.New("deck handle is nil")
	}
	l := applog.WithOperation(applog.WithComponent("export"), "batch")
	if opt.Preset == "" {
		opt.Preset = PresetWeb
	}
	ctx = applog.ContextWith(ctx, slog.String("deck", h.Root), slog.String("preset", string(opt.Preset)))
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	baseOut = resolveOut(h, baseOut)
	if abs, err := filepath.Abs(baseOut); err == nil {
		baseOut = abs
	}
	scale := opt.Scale
	if scale <= 0 {
		scale = presetScale(opt.Preset)
	}
	slug := Slug(h.Deck.Name)
	start := time.Now()

	var files []string
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "pdf":
			out := filepath.Join(baseOut, slug+".pdf")
			if _, err := ExportPDF(h, out, PDFOptions{Cards: opt.Cards}); err != nil {
				return files, fmt.Errorf("pdf: %w", err)
			}
			files = append(files, out)
		case "png":
			out, err := ExportPNG(h, filepath.Join(baseOut, "png"), PNGOptions{Scale: scale, Cards: opt.Cards})
			if err != nil {
				return files, fmt.Errorf("png: %w", err)
			}
			files = append(files, out...)
		case "zip":
			out, err := ExportZip(h, filepath.Join(baseOut, slug+".zip"), PNGOptions{Scale: scale, Cards: opt.Cards})
			if err != nil {
				return files, fmt.Errorf("zip: %w", err)
			}
			files = append(files, out)
		case "html":
			out, err := ExportHTML(h, filepath.Join(baseOut, slug+".html"))
			if err != nil {
				return files, fmt.Errorf("html: %w", err)
			}
			files = append(files, out)
		case "browser":
			bo := BrowserOptions{ChromePath: opt.ChromePath, Scale: scale, Cards: opt.Cards}
			out, err := ExportBrowserPNG(ctx, h, filepath.Join(baseOut, "browser"), bo)
			if err != nil {
				return files, fmt.Errorf("browser: %w", err)
			}
			files = append(files, out...)
		default:
			return files, fmt.Errorf("unknown format: %s", f)
		}
	}

	h.Deck.Exports = append(h.Deck.Exports, domain.ExportRecord{
		Preset: string(opt.Preset),
		Files:  relativeTo(h.Root, files),
		At:     time.Now().UTC(),
	})
	if err := storage.Save(h); err != nil {
		return files, fmt.Errorf("record export: %w", err)
	}
	l.InfoContext(ctx, "batch export done",
		slog.Int("files", len(files)),
		slog.Duration("took", time.Since(start)))
	return files, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "html", "zip"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetScale(p PresetName) float64 {
	switch p {
	case PresetPrint:
		return 3
	default:
		return 2
	}
}

func relativeTo(root string, files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if rel, err := filepath.Rel(root, f); err == nil {
			f = filepath.ToSlash(rel)
		}
		out = append(out, f)
	}
	return out
}
