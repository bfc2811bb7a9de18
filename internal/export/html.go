/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"gocardwriter/internal/render"
	"gocardwriter/internal/storage"
)

// RenderHTML returns the deck as a standalone HTML page.
func RenderHTML(h *storage.DeckHandle) (string, error) {
	cards, err := loadCards(h)
	if err != nil {
		return "", err
	}
	return render.Page(h.Deck.Name, cards, h.Deck.Style)
}

// ExportHTML writes the deck preview page to outPath.
func ExportHTML(h *storage.DeckHandle, outPath string) (string, error) {
	page, err := RenderHTML(h)
	if err != nil {
		return "", err
	}
	outPath = resolveOut(h, outPath)
	if err := ensureDir(filepath.Dir(outPath)); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, []byte(page), 0o644); err != nil {
		return "", fmt.Errorf("write html: %w", err)
	}
	return outPath, nil
}
