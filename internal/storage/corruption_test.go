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
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDetectAndRebuildIndex_OnCorruption(t *testing.T) {
	h := newDeck(t, "CorruptTest")
	if err := WriteDocument(h, "hello there\n\n---\n\ngeneral kenobi"); err != nil {
		t.Fatal(err)
	}
	idx := IndexPath(h.Root)
	for _, p := range []string{idx + "-wal", idx + "-shm"} {
		_ = os.Remove(p)
	}
	if err := os.WriteFile(idx, []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rebuilt, err := DetectAndRebuildIndex(ctx, h)
	if err != nil {
		t.Fatalf("DetectAndRebuildIndex: %v", err)
	}
	if !rebuilt {
		t.Fatalf("expected rebuild to occur")
	}
	entries, _ := os.ReadDir(filepath.Join(h.Root, IndexDirName, "backups"))
	if len(entries) == 0 {
		t.Fatalf("expected index backup")
	}
	res, err := SearchCards(ctx, h.Root, SearchQuery{Text: "kenobi"})
	if err != nil || len(res) != 1 || res[0].Position != 2 {
		t.Fatalf("rebuilt index not searchable: %+v (%v)", res, err)
	}
}

func TestDetectAndRebuildIndex_HealthyIsNoop(t *testing.T) {
	h := newDeck(t, "Healthy")
	rebuilt, err := DetectAndRebuildIndex(context.Background(), h)
	if err != nil || rebuilt {
		t.Fatalf("healthy index rebuilt=%v err=%v", rebuilt, err)
	}
}
