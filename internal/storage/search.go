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

	applog "gocardwriter/internal/log"
)

// SearchQuery describes a card search.
// Text uses SQLite FTS5 syntax (terms, "phrases", AND/OR/NOT) unless Contains
// is set, in which case it is a plain substring matched with Unicode case
// folding ("ÜBER" finds "Über"). Substring mode also finds text the unicode61
// tokenizer does not split, such as CJK.
// An empty Text lists every card. Limit defaults to 100.
type SearchQuery struct {
	Text     string
	Contains bool
	Limit    int
	Offset   int
}

// SearchResult is one matching card. Snippet marks the hit with [ ].
type SearchResult struct {
	Position int
	Height   float64
	Overflow bool
	Snippet  string
}

// SearchCards searches the indexed cards of the deck at deckRoot. When the
// directory holds a deck whose document changed since the last indexing, the
// index is refreshed first.
func SearchCards(ctx context.Context, deckRoot string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(deckRoot) == "" {
		return nil, errors.New("deck root is required")
	}
	if _, err := os.Stat(filepath.Join(deckRoot, ManifestFileName)); err == nil {
		if h, err := Open(deckRoot); err == nil {
			if _, err := RefreshIndex(ctx, h); err != nil {
				applog.WithComponent("storage").Warn("index refresh failed", slog.String("deck", deckRoot), slog.Any("err", err))
			}
		}
	}
	db, err := InitOrOpenIndex(deckRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(q.Offset, 0)
	text := strings.TrimSpace(q.Text)

	var (
		query string
		args  []any
	)
	switch {
	case text == "":
		query = `SELECT position, height, overflow, substr(text, 1, 80) FROM cards ORDER BY position LIMIT ? OFFSET ?`
		args = []any{limit, offset}
	case q.Contains:
		// SQLite lower() folds ASCII only, so matching and paging happen here.
		query = `SELECT position, height, overflow, text FROM cards ORDER BY position`
	default:
		query = `SELECT c.position, c.height, c.overflow, snippet(fts_cards, 0, '[', ']', '...', 10)
			FROM fts_cards JOIN cards c ON fts_cards.rowid = c.id
			WHERE fts_cards MATCH ?
			ORDER BY c.position LIMIT ? OFFSET ?`
		args = []any{text, limit, offset}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	needle := strings.ToLower(text)
	skipped := 0
	var out []SearchResult
	for rows.Next() {
		var (
			r        SearchResult
			overflow int
			sn       sql.NullString
		)
		if err := rows.Scan(&r.Position, &r.Height, &overflow, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Overflow = overflow != 0
		r.Snippet = sn.String
		if q.Contains && text != "" {
			if !strings.Contains(strings.ToLower(sn.String), needle) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			if len(out) == limit {
				break
			}
			r.Snippet = excerpt(sn.String, text, 30)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// excerpt cuts up to radius runes either side of the first case-insensitive
// match of needle and brackets the match.
func excerpt(s, needle string, radius int) string {
	rs := []rune(s)
	lower := []rune(strings.ToLower(s))
	n := []rune(strings.ToLower(needle))
	at := indexRunes(lower, n)
	if at < 0 || len(lower) != len(rs) {
		return s
	}
	from := max(at-radius, 0)
	to := min(at+len(n)+radius, len(rs))
	var sb strings.Builder
	if from > 0 {
		sb.WriteString("...")
	}
	sb.WriteString(string(rs[from:at]))
	sb.WriteString("[" + string(rs[at:at+len(n)]) + "]")
	sb.WriteString(string(rs[at+len(n) : to]))
	if to < len(rs) {
		sb.WriteString("...")
	}
	return strings.ReplaceAll(sb.String(), "\n", " ")
}

func indexRunes(hay, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j, r := range needle {
			if hay[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
