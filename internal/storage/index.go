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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "gocardwriter/internal/log"
	"gocardwriter/internal/paginate"
	"gocardwriter/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName holds per-deck derived data under the deck root.
	IndexDirName  = ".gcw"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema. Bump it together with a
	// new step in runMigrations. Fresh databases start at baseSchema, which
	// ensureIndexSchema creates, and step forward from there.
	schemaVersion = 2
	baseSchema    = 1

	// metaDocStamp records which document version the cards were built from.
	metaDocStamp = "doc_stamp"
)

// IndexPath returns the path of the deck's embedded index database.
func IndexPath(deckRoot string) string {
	return filepath.Join(deckRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures the SQLite index exists at .gcw/index.sqlite, opens
// it in WAL mode, and brings the schema up to date. Callers close the DB.
func InitOrOpenIndex(deckRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", deckRoot),
	)
	if strings.TrimSpace(deckRoot) == "" {
		return nil, errors.New("deck root is required")
	}
	if err := os.MkdirAll(filepath.Join(deckRoot, IndexDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create .gcw dir: %w", err)
	}

	path := IndexPath(deckRoot)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, baseSchema, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the stored schema so runMigrations can step it forward.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental steps up to schemaVersion. A newer
// database is left alone.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for ; cur < schemaVersion; cur++ {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// v2 added the overflow flag and the position index.
			if !hasColumn(ctx, db, "cards", "overflow") {
				stmts = append(stmts, `ALTER TABLE cards ADD COLUMN overflow INTEGER NOT NULL DEFAULT 0;`)
			}
			stmts = append(stmts,
				`CREATE INDEX IF NOT EXISTS idx_cards_position ON cards(position);`,
				`INSERT INTO fts_cards(fts_cards) VALUES('rebuild');`,
			)
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
	}
	return nil
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) bool {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n)
	return err == nil && n > 0
}

// ensureIndexSchema creates the cards table and its FTS5 mirror. The v1
// layout is created here; runMigrations adds the rest.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS cards (
			id       INTEGER PRIMARY KEY,
			position INTEGER NOT NULL,
			text     TEXT    NOT NULL,
			height   REAL    NOT NULL
		);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_cards USING fts5(
			text,
			content='cards',
			content_rowid='id',
			tokenize = 'unicode61'
		);`,
		`CREATE TRIGGER IF NOT EXISTS cards_ai AFTER INSERT ON cards BEGIN
			INSERT INTO fts_cards(rowid, text) VALUES (new.id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS cards_ad AFTER DELETE ON cards BEGIN
			INSERT INTO fts_cards(fts_cards, rowid, text) VALUES ('delete', old.id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS cards_au AFTER UPDATE OF text ON cards BEGIN
			INSERT INTO fts_cards(fts_cards, rowid, text) VALUES ('delete', old.id, old.text);
			INSERT INTO fts_cards(rowid, text) VALUES (new.id, new.text);
		END;`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	return nil
}

// IndexCards replaces the indexed cards with the current pages of the deck's
// document and records the deck identity in meta.
func IndexCards(ctx context.Context, h *DeckHandle) error {
	if h == nil {
		return errors.New("nil DeckHandle")
	}
	stamp := documentStamp(h)
	doc, err := ReadDocument(h)
	if err != nil {
		return err
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer db.Close()
	return writeCards(ctx, db, h, paginate.Split(doc), stamp)
}

// RefreshIndex re-indexes the deck when its document changed on disk since
// the last IndexCards, and reports whether it did. Edits made outside the
// program are picked up this way.
func RefreshIndex(ctx context.Context, h *DeckHandle) (bool, error) {
	if h == nil {
		return false, errors.New("nil DeckHandle")
	}
	stored, err := Meta(ctx, h.Root, metaDocStamp)
	if err != nil {
		return false, err
	}
	if stored != "" && stored == documentStamp(h) {
		return false, nil
	}
	if err := IndexCards(ctx, h); err != nil {
		return false, err
	}
	applog.WithOperation(applog.WithComponent("storage"), "index_refresh").InfoContext(ctx, "document changed, index refreshed")
	return true, nil
}

// documentStamp identifies the document version on disk by mtime and size.
func documentStamp(h *DeckHandle) string {
	st, err := os.Stat(h.DocumentPath())
	if err != nil {
		return "missing"
	}
	return fmt.Sprintf("%d:%d", st.ModTime().UnixNano(), st.Size())
}

func writeCards(ctx context.Context, db *sql.DB, h *DeckHandle, pages []string, stamp string) error {
	d := h.Deck.Style
	budget := paginate.ContentBox(d).Height
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM cards;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear cards: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO cards(position, text, height, overflow) VALUES(?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for i, p := range pages {
		height := paginate.Measure(p, d)
		overflow := 0
		if !d.AutoHeight && height > budget {
			overflow = 1
		}
		if _, err := ins.ExecContext(ctx, i+1, p, height, overflow); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert card: %w", err)
		}
	}
	meta := map[string]string{
		"deck_id":    h.Deck.ID,
		"deck_name":  h.Deck.Name,
		"indexed_at": time.Now().UTC().Format(time.RFC3339),
		metaDocStamp: stamp,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, k, v); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write meta: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Meta returns a value from the index meta table, or "" when unset.
func Meta(ctx context.Context, deckRoot, key string) (string, error) {
	db, err := InitOrOpenIndex(deckRoot)
	if err != nil {
		return "", err
	}
	defer db.Close()
	var v string
	err = db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read meta: %w", err)
	}
	return v, nil
}

// DetectAndRebuildIndex checks the index for corruption or a missing schema
// and rebuilds it from the document when needed. It reports whether a rebuild
// happened.
func DetectAndRebuildIndex(ctx context.Context, h *DeckHandle) (bool, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_check").With(slog.String("root", h.Root))
	path := IndexPath(h.Root)
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		l.Warn("index unusable, rebuilding", slog.Any("err", err))
		return true, rebuild(ctx, h, path)
	}
	needs := false
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.EqualFold(strings.TrimSpace(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM cards LIMIT 1;`); err != nil {
			needs = true
		}
	}
	_ = db.Close()
	if !needs {
		return false, nil
	}
	l.Warn("index check failed, rebuilding")
	return true, rebuild(ctx, h, path)
}

func rebuild(ctx context.Context, h *DeckHandle, path string) error {
	backupIndexFile(path)
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
	if err := IndexCards(ctx, h); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	return nil
}

// backupIndexFile copies the index into .gcw/backups before it is replaced.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}
