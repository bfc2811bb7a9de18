/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stylepack

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	applog "gocardwriter/internal/log"
	"gocardwriter/internal/storage"
	"gocardwriter/internal/style"
)

// SavePreset stores the deck's current style as styles/<name>.yaml.
func SavePreset(h *storage.DeckHandle, name string) (string, error) {
	if h == nil {
		return "", errors.New("deck handle is nil")
	}
	if err := checkName(name); err != nil {
		return "", err
	}
	path := filepath.Join(h.Root, storage.StylesDirName, name+".yaml")
	if err := style.Save(path, h.Deck.Style); err != nil {
		return "", fmt.Errorf("save preset: %w", err)
	}
	return path, nil
}

// ApplyPreset loads the named preset and makes it the deck's style. The
// manifest is saved; the document is left alone, so callers repaginate when
// the geometry changed.
func ApplyPreset(h *storage.DeckHandle, name string) error {
	if h == nil {
		return errors.New("deck handle is nil")
	}
	if err := checkName(name); err != nil {
		return err
	}
	path, err := findPreset(h.Root, name)
	if err != nil {
		return err
	}
	d, err := style.Load(path)
	if err != nil {
		return err
	}
	h.Deck.Style = d
	if err := storage.Save(h); err != nil {
		return err
	}
	applog.WithOperation(applog.WithComponent("stylepack"), "apply").Info("style applied",
		slog.String("deck", h.Deck.Name), slog.String("preset", name))
	return nil
}

func findPreset(root, name string) (string, error) {
	for _, ext := range styleExts {
		p := filepath.Join(root, storage.StylesDirName, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("invalid preset name %q", name)
	}
	return nil
}
