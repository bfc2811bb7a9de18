/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocardwriter/internal/paginate"
	"gocardwriter/internal/render"
	"gocardwriter/internal/storage"
	"gocardwriter/internal/version"
)

// ManifestName is the text index written at the root of a card bundle.
const ManifestName = "cards.manifest.txt"

// ExportZip packages the card PNGs into a single ZIP bundle together with a
// plain-text manifest. The .zip extension is enforced.
func ExportZip(h *storage.DeckHandle, outPath string, opt PNGOptions) (string, error) {
	cards, err := loadCards(h)
	if err != nil {
		return "", err
	}
	outPath = resolveOut(h, outPath)
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath += ".zip"
	}
	zw, f, err := createZip(outPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	r := newRasterizer(h.Deck.Style, opt)
	selected := selectCards(cards, opt.Cards)
	var names []string
	for _, c := range selected {
		data, err := encodePNG(r.card(c, len(cards)))
		if err != nil {
			return "", err
		}
		name := CardFileName(c.Number, "png")
		if err := addZipFile(zw, name, data); err != nil {
			return "", fmt.Errorf("zip add image: %w", err)
		}
		names = append(names, name)
	}
	if err := addZipFile(zw, ManifestName, buildManifest(h, selected, names)); err != nil {
		return "", fmt.Errorf("zip add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close zip: %w", err)
	}
	return outPath, nil
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	if err := ensureDir(filepath.Dir(outPath)); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create zip: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// buildManifest lists every file with its estimated content height and the
// first line of the card, one tab-separated row per card.
func buildManifest(h *storage.DeckHandle, cards []render.Card, names []string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", h.Deck.Name)
	fmt.Fprintf(&buf, "# id: %s\n", h.Deck.ID)
	fmt.Fprintf(&buf, "# generator: gocardwriter %s\n", version.String())
	fmt.Fprintf(&buf, "# cards: %d\n", len(cards))
	for i, c := range cards {
		first, _, _ := strings.Cut(c.Markdown, "\n")
		fmt.Fprintf(&buf, "%s\t%.1f\t%s\n", names[i], paginate.Measure(c.Markdown, h.Deck.Style), strings.TrimSpace(first))
	}
	return buf.Bytes()
}
