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
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openRaw(t *testing.T, root string) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(IndexPath(root)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestIndexInitCreatesWALAndSchema(t *testing.T) {
	h := newDeck(t, "Index Test")
	db := openRaw(t, h.Root)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('meta','version','cards','fts_cards')").Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if cnt != 4 {
		t.Fatalf("expected 4 tables, got %d", cnt)
	}
	var schema int
	if err := db.QueryRowContext(ctx, "SELECT schema FROM version WHERE id=1").Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("expected schema %d, got %d", schemaVersion, schema)
	}
	if !hasColumn(ctx, db, "cards", "overflow") {
		t.Fatalf("cards.overflow missing on a fresh index")
	}
}

func TestIndexCardsRecordsMetaAndOverflow(t *testing.T) {
	h := newDeck(t, "Meta")
	doc := "short\n\n---\n\n![a](a.png)\n![b](b.png)\n![c](c.png)"
	if err := WriteDocument(h, doc); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := IndexCards(ctx, h); err != nil {
		t.Fatalf("IndexCards: %v", err)
	}
	name, err := Meta(ctx, h.Root, "deck_name")
	if err != nil || name != "Meta" {
		t.Fatalf("deck_name = %q, %v", name, err)
	}
	if v, _ := Meta(ctx, h.Root, "missing"); v != "" {
		t.Fatalf("unset key should read empty, got %q", v)
	}
	res, err := SearchCards(ctx, h.Root, SearchQuery{})
	if err != nil || len(res) != 2 {
		t.Fatalf("expected 2 cards, got %d (%v)", len(res), err)
	}
	if res[0].Overflow || !res[1].Overflow {
		t.Fatalf("unexpected overflow flags: %+v", res)
	}
	if res[1].Height != 660 {
		t.Fatalf("expected three image heights, got %v", res[1].Height)
	}
}
