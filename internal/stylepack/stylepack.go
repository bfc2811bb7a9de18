/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stylepack manages the style presets kept in a deck's styles folder
// and moves them between decks as zip packs.
package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "gocardwriter/internal/log"
	"gocardwriter/internal/storage"
	"gocardwriter/internal/style"
)

// ManifestName is the text file written at the root of every pack.
const ManifestName = "stylepack.manifest.txt"

// ErrNotFound is returned when a named preset has no file.
var ErrNotFound = errors.New("style preset not found")

var styleExts = []string{".yaml", ".yml", ".json"}

func isStyleFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range styleExts {
		if ext == e {
			return true
		}
	}
	return false
}

// ExportStyles zips the style presets of the deck at deckRoot into destZipPath.
// Entries are stored as styles/<file> next to a small manifest. A deck without
// presets still yields a pack holding only the manifest.
func ExportStyles(deckRoot, destZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("deck", deckRoot))
	if strings.TrimSpace(deckRoot) == "" {
		return 0, errors.New("deckRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return 0, errors.New("destZipPath is required")
	}
	names, err := List(deckRoot)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(destZipPath)
	zf, err := os.Create(destZipPath)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	var files []string
	stylesDir := filepath.Join(deckRoot, storage.StylesDirName)
	entries, _ := os.ReadDir(stylesDir)
	for _, e := range entries {
		if !e.IsDir() && isStyleFile(e.Name()) {
			files = append(files, e.Name())
		}
	}

	var manifest strings.Builder
	fmt.Fprintf(&manifest, "gocardwriter style pack\nCreated: %s\nPresets: %s\n",
		time.Now().Format(time.RFC3339), strings.Join(names, ", "))
	w, err := zw.Create(ManifestName)
	if err != nil {
		return 0, fmt.Errorf("add manifest: %w", err)
	}
	if _, err := io.WriteString(w, manifest.String()); err != nil {
		return 0, fmt.Errorf("write manifest: %w", err)
	}
	for _, name := range files {
		if err := addFile(zw, filepath.Join(stylesDir, name), storage.StylesDirName+"/"+name); err != nil {
			l.Error("zip build failed", slog.Any("err", err))
			return 0, fmt.Errorf("build zip: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("close zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("files", len(files)), slog.String("zip", destZipPath))
	return len(files), nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// InstallPack extracts the style presets of a pack into the deck's styles
// folder and returns how many were installed. Existing presets are kept,
// entries escaping the folder are ignored and files that fail style
// validation are skipped.
func InstallPack(deckRoot, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("deck", deckRoot))
	if strings.TrimSpace(deckRoot) == "" {
		return 0, errors.New("deckRoot is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	stylesDir := filepath.Join(deckRoot, storage.StylesDirName)
	if err := os.MkdirAll(stylesDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure styles dir: %w", err)
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || f.Name == ManifestName || !isStyleFile(f.Name) {
			continue
		}
		rel := strings.TrimPrefix(filepath.ToSlash(f.Name), storage.StylesDirName+"/")
		target := filepath.Join(stylesDir, filepath.FromSlash(rel))
		if !within(stylesDir, target) {
			l.Warn("skip entry outside styles", slog.String("entry", f.Name))
			continue
		}
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing preset", slog.String("path", target))
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return installed, err
		}
		if err := check(data, filepath.Ext(target)); err != nil {
			l.Warn("skip invalid preset", slog.String("entry", f.Name), slog.Any("err", err))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return installed, err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return installed, fmt.Errorf("write preset: %w", err)
		}
		installed++
	}
	l.Info("style pack installed", slog.Int("files", installed))
	return installed, nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// check decodes a preset over the defaults and validates the result.
func check(data []byte, ext string) error {
	d := style.Defaults()
	if err := style.Decode(data, ext, &d); err != nil {
		return err
	}
	return style.ValidateDescriptor(d)
}

// List returns the preset names (file names without extension) in the deck's
// styles folder, sorted.
func List(deckRoot string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(deckRoot, storage.StylesDirName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read styles dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isStyleFile(e.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}
