/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package paginate

import (
	"strings"
)

// Delimiter is the canonical separator written between pages.
const Delimiter = "\n\n---\n\n"

func isMarker(line string) bool { return strings.TrimSpace(line) == "---" }

// Split cuts a document into its pages at every line that is exactly "---"
// (surrounding whitespace allowed). Each page is trimmed. An empty document
// is a single empty page.
func Split(document string) []string {
	lines := strings.Split(normalizeNewlines(document), "\n")
	pages := make([]string, 0, 4)
	start := 0
	for i, ln := range lines {
		if isMarker(ln) {
			pages = append(pages, strings.TrimSpace(strings.Join(lines[start:i], "\n")))
			start = i + 1
		}
	}
	pages = append(pages, strings.TrimSpace(strings.Join(lines[start:], "\n")))
	return pages
}

// Join writes pages back with the canonical delimiter.
func Join(pages []string) string { return strings.Join(pages, Delimiter) }

// Count returns the number of pages in document.
func Count(document string) int { return len(Split(document)) }

// stripMarkers turns every page break into a paragraph break. Blank lines on
// either side of a marker collapse into the single blank line that replaces it.
func stripMarkers(document string) string {
	lines := strings.Split(normalizeNewlines(document), "\n")
	out := make([]string, 0, len(lines))
	pendingBreak := false
	for _, ln := range lines {
		switch {
		case isMarker(ln):
			for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
				out = out[:len(out)-1]
			}
			pendingBreak = true
		case pendingBreak && strings.TrimSpace(ln) == "":
			// swallowed by the break
		default:
			if pendingBreak {
				if len(out) > 0 {
					out = append(out, "")
				}
				pendingBreak = false
			}
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}
