/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gocardwriter/internal/domain"
	applog "gocardwriter/internal/log"
	"gocardwriter/internal/paginate"
)

const (
	ManifestFileName = "deck.json"
	BackupsDirName   = "backups"
	ExportsDirName   = "exports"
	StylesDirName    = "styles"

	// maxBackups is how many timestamped copies are kept per file.
	maxBackups = 20
)

var standardSubDirs = []string{
	ExportsDirName,
	StylesDirName,
	BackupsDirName,
}

// DeckHandle is a deck loaded from disk. Root is the deck directory holding
// deck.json, the document and the standard subfolders.
type DeckHandle struct {
	Root         string
	ManifestPath string
	Deck         domain.Deck
}

// DocumentPath returns the absolute path of the deck's Markdown document.
func (h *DeckHandle) DocumentPath() string {
	name := h.Deck.Document
	if name == "" {
		name = domain.DefaultDocument
	}
	return filepath.Join(h.Root, name)
}

// InitDeck creates a deck directory at root (creating it if needed), scaffolds
// the standard subfolders, writes the manifest and an empty document unless
// one already exists, and builds the search index.
func InitDeck(root string, deck domain.Deck) (*DeckHandle, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "init").With(slog.String("root", root))
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create deck root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	if deck.Document == "" {
		deck.Document = domain.DefaultDocument
	}
	h := &DeckHandle{Root: root, ManifestPath: filepath.Join(root, ManifestFileName), Deck: deck}
	if _, err := os.Stat(h.DocumentPath()); errors.Is(err, os.ErrNotExist) {
		if err := writeFileSync(h.DocumentPath(), nil); err != nil {
			return nil, fmt.Errorf("create document: %w", err)
		}
	}
	if err := Save(h); err != nil {
		return nil, err
	}
	if err := IndexCards(context.Background(), h); err != nil {
		// The index is disposable; a failed build must not block deck creation.
		l.Warn("initial index build failed", slog.Any("err", err))
	}
	l.Info("deck created", slog.String("id", deck.ID), slog.String("name", deck.Name))
	return h, nil
}

// Open loads an existing deck from root. If deck.json cannot be read or
// parsed, the latest manifest backup is used instead.
func Open(root string) (*DeckHandle, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("root", root))
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err == nil {
		var d domain.Deck
		if err = json.Unmarshal(b, &d); err == nil {
			return &DeckHandle{Root: root, ManifestPath: mpath, Deck: d}, nil
		}
		err = fmt.Errorf("parse manifest: %w", err)
	} else {
		err = fmt.Errorf("open manifest: %w", err)
	}
	d, berr := openFromLatestBackup(root)
	if berr != nil {
		return nil, fmt.Errorf("%w; backup attempt: %v", err, berr)
	}
	l.Warn("manifest unreadable, restored from backup", slog.Any("err", err))
	return &DeckHandle{Root: root, ManifestPath: mpath, Deck: *d}, nil
}

// Save writes the manifest with transactional semantics after copying the
// previous manifest (if any) to a timestamped backup.
func Save(h *DeckHandle) error {
	if h == nil {
		return errors.New("nil DeckHandle")
	}
	if h.Root == "" || h.ManifestPath == "" {
		return errors.New("invalid DeckHandle: missing paths")
	}
	h.Deck.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(h.Deck, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	if err := backupFile(h.Root, h.ManifestPath); err != nil {
		return fmt.Errorf("backup current manifest: %w", err)
	}
	if err := replaceFile(h.ManifestPath, data); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// SaveAs copies the deck to newRoot, scaffolding the structure, and repoints
// the handle there. The document is copied along with the manifest.
func SaveAs(h *DeckHandle, newRoot string) error {
	if h == nil {
		return errors.New("nil DeckHandle")
	}
	if strings.TrimSpace(newRoot) == "" {
		return errors.New("new root is empty")
	}
	doc, err := ReadDocument(h)
	if err != nil {
		return err
	}
	for _, d := range append([]string{""}, standardSubDirs...) {
		if err := os.MkdirAll(filepath.Join(newRoot, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	h.Root = newRoot
	h.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	if err := replaceFile(h.DocumentPath(), []byte(doc)); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return Save(h)
}

// AutosaveCrashSnapshot writes the in-memory deck to
// backups/deck.json.crash-<stamp>.json without touching the live manifest,
// and returns the snapshot path.
func AutosaveCrashSnapshot(h *DeckHandle) (string, error) {
	if h == nil || h.Root == "" {
		return "", errors.New("invalid DeckHandle: missing root")
	}
	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	data, err := json.MarshalIndent(h.Deck, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	stamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", ManifestFileName, stamp))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// ReadDocument returns the deck's Markdown. A missing document reads as "".
func ReadDocument(h *DeckHandle) (string, error) {
	b, err := os.ReadFile(h.DocumentPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(b), nil
}

// WriteDocument replaces the deck's Markdown, keeping a backup of the previous
// version.
func WriteDocument(h *DeckHandle, text string) error {
	path := h.DocumentPath()
	if err := backupFile(h.Root, path); err != nil {
		return fmt.Errorf("backup document: %w", err)
	}
	if err := replaceFile(path, []byte(text)); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Repaginate re-splits the deck's document for its style and writes the result
// back. Auto-height decks have no height budget: their document is returned
// unchanged and the paginator is not run. changed reports whether the
// document on disk was rewritten. The index is refreshed either way, since
// overflow flags depend on the style as well as the text.
func Repaginate(ctx context.Context, h *DeckHandle, opt paginate.Options) (doc string, changed bool, err error) {
	ctx = applog.ContextWith(ctx, slog.String("deck", h.Root))
	l := applog.WithOperation(applog.WithComponent("storage"), "repaginate")
	doc, err = ReadDocument(h)
	if err != nil {
		return "", false, err
	}
	out := doc
	if h.Deck.Style.AutoHeight {
		l.DebugContext(ctx, "auto height, skipping")
	} else {
		out = paginate.PaginateWith(doc, h.Deck.Style, opt)
	}
	if out != doc {
		if err := WriteDocument(h, out); err != nil {
			return "", false, err
		}
		changed = true
		l.InfoContext(ctx, "document repaginated", slog.Int("before", paginate.Count(doc)), slog.Int("after", paginate.Count(out)))
	}
	if err := IndexCards(ctx, h); err != nil {
		l.WarnContext(ctx, "index refresh failed", slog.Any("err", err))
	}
	return out, changed, nil
}

// backupFile copies path into <root>/backups/<name>.<stamp>.bak when it exists
// and prunes old copies of the same file.
func backupFile(root, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	bdir := filepath.Join(root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	base := filepath.Base(path)
	stamp := time.Now().Format("20060102-150405.000")
	if err := copyFile(path, filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", base, stamp))); err != nil {
		return err
	}
	pruneBackups(bdir, base, maxBackups)
	return nil
}

// replaceFile writes data to a temp file in the target directory, then renames
// it over path.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return err
	}
	return nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// backupsOf lists backups of the named file, oldest first. The timestamp in
// the name sorts lexicographically.
func backupsOf(bdir, base string) []string {
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out)
	return out
}

func pruneBackups(bdir, base string, keep int) {
	all := backupsOf(bdir, base)
	for len(all) > keep {
		_ = os.Remove(all[0])
		all = all[1:]
	}
}

func openFromLatestBackup(root string) (*domain.Deck, error) {
	candidates := backupsOf(filepath.Join(root, BackupsDirName), ManifestFileName)
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var d domain.Deck
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return &d, nil
}
