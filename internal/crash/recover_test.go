/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocardwriter/internal/domain"
	"gocardwriter/internal/storage"
)

// silenceStderr swaps os.Stderr for a pipe until the returned func runs.
func silenceStderr(t *testing.T) func() {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, r)
		close(done)
	}()
	return func() {
		_ = w.Close()
		<-done
		os.Stderr = old
	}
}

func TestRecover_WritesReportAndSnapshot(t *testing.T) {
	defer silenceStderr(t)()

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	root := t.TempDir()
	h := &storage.DeckHandle{Root: root, ManifestPath: filepath.Join(root, storage.ManifestFileName), Deck: domain.NewDeck("Boom")}

	func() {
		defer Recover(h)
		panic("boom")
	}()

	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	entries, err := os.ReadDir(filepath.Join(root, storage.BackupsDirName))
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	var report, snapshot string
	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.Name(), "crash-") && strings.HasSuffix(e.Name(), ".log"):
			report = e.Name()
		case strings.HasPrefix(e.Name(), storage.ManifestFileName+".crash-"):
			snapshot = e.Name()
		}
	}
	if report == "" {
		t.Fatalf("expected crash report under backups dir")
	}
	if snapshot == "" {
		t.Fatalf("expected deck snapshot under backups dir")
	}
	b, _ := os.ReadFile(filepath.Join(root, storage.BackupsDirName, report))
	if !strings.Contains(string(b), "Panic: boom") {
		t.Fatalf("report does not contain panic: %s", b)
	}
}

func TestRecover_NoPanicIsNoop(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatalf("exit must not be called without a panic")
	}
}
