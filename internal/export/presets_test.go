/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	applog "gocardwriter/internal/log"
	"gocardwriter/internal/storage"
)

func TestBatchExport_WebPreset(t *testing.T) {
	h := newDeck(t, twoCards)
	files, err := BatchExport(context.Background(), h, BatchOptions{Preset: PresetWeb})
	if err != nil {
		t.Fatalf("BatchExport: %v", err)
	}
	base := filepath.Join(h.Root, storage.ExportsDirName, "web")
	for _, p := range []string{
		filepath.Join(base, "png", "card-01.png"),
		filepath.Join(base, "png", "card-02.png"),
		filepath.Join(base, "test-deck.html"),
		filepath.Join(base, "test-deck.zip"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s: %v", p, err)
		}
	}
	if len(files) != 4 {
		t.Fatalf("expected 4 files, got %d: %v", len(files), files)
	}
	if b := decodePNG(t, filepath.Join(base, "png", "card-01.png")).Bounds(); b.Dx() != 1000 {
		t.Fatalf("web preset should render at scale 2, got width %d", b.Dx())
	}

	reopened, err := storage.Open(h.Root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(reopened.Deck.Exports) != 1 || reopened.Deck.Exports[0].Preset != "web" {
		t.Fatalf("export run not recorded: %+v", reopened.Deck.Exports)
	}
	if got := reopened.Deck.Exports[0].Files[0]; got != "exports/web/png/card-01.png" {
		t.Fatalf("recorded path should be deck-relative, got %s", got)
	}
}

func TestBatchExport_PrintPresetCustomDir(t *testing.T) {
	h := newDeck(t, twoCards)
	out := t.TempDir()
	if _, err := BatchExport(context.Background(), h, BatchOptions{Preset: PresetPrint, OutDir: out, Scale: 1}); err != nil {
		t.Fatalf("BatchExport: %v", err)
	}
	for _, p := range []string{
		filepath.Join(out, "test-deck.pdf"),
		filepath.Join(out, "png", "card-02.png"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s: %v", p, err)
		}
	}
}

func TestBatchExport_Errors(t *testing.T) {
	if _, err := BatchExport(context.Background(), nil, BatchOptions{}); err == nil {
		t.Fatalf("expected error for nil handle")
	}
	h := newDeck(t, twoCards)
	if _, err := BatchExport(context.Background(), h, BatchOptions{Formats: []string{"tiff"}}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestBatchExport_LogsDeckFromContext(t *testing.T) {
	var buf bytes.Buffer
	applog.Init(applog.Options{Level: "info", Format: "json", Writer: &buf})
	t.Cleanup(func() { applog.Init(applog.FromEnv()) })

	h := newDeck(t, twoCards)
	if _, err := BatchExport(context.Background(), h, BatchOptions{Preset: PresetPrint, Formats: []string{"pdf"}}); err != nil {
		t.Fatalf("BatchExport: %v", err)
	}
	var done string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "batch export done") {
			done = line
		}
	}
	if done == "" {
		t.Fatalf("no completion record in:\n%s", buf.String())
	}
	for _, want := range []string{`"preset":"print"`, `"deck":` + strconv.Quote(h.Root)} {
		if !strings.Contains(done, want) {
			t.Fatalf("record missing %s: %s", want, done)
		}
	}
}
