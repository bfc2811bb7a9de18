/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes a deck's cards to PNG, PDF, ZIP and HTML files, and
// drives headless Chrome for pixel-exact captures.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gocardwriter/internal/render"
	"gocardwriter/internal/storage"
)

// loadCards renders the deck's document into cards.
func loadCards(h *storage.DeckHandle) ([]render.Card, error) {
	if h == nil {
		return nil, errors.New("deck handle is nil")
	}
	doc, err := storage.ReadDocument(h)
	if err != nil {
		return nil, err
	}
	cards, err := render.Cards(doc)
	if err != nil {
		return nil, fmt.Errorf("render cards: %w", err)
	}
	return cards, nil
}

// selectCards returns the zero-based subset picked by idx, or all cards when
// idx is empty. Out-of-range indexes are skipped.
func selectCards(cards []render.Card, idx []int) []render.Card {
	if len(idx) == 0 {
		return cards
	}
	out := make([]render.Card, 0, len(idx))
	for _, i := range idx {
		if i >= 0 && i < len(cards) {
			out = append(out, cards[i])
		}
	}
	return out
}

// resolveOut places relative paths under <deck>/exports.
func resolveOut(h *storage.DeckHandle, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(h.Root, storage.ExportsDirName, p)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return nil
}

// CardFileName is the per-card image name, "card-01.png" and so on.
func CardFileName(number int, ext string) string {
	return fmt.Sprintf("card-%02d.%s", number, ext)
}

// Slug turns a deck name into a file-name stem.
func Slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimRight(sb.String(), "-")
	if s == "" {
		return "deck"
	}
	return s
}
