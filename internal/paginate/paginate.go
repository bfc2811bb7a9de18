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

	"gocardwriter/internal/style"
)

// Page is one card worth of Markdown with its estimated content height.
type Page struct {
	Text   string
	Height float64
}

// Options tunes how existing page breaks are treated.
type Options struct {
	// KeepBreaks treats every existing "---" marker as a forced break and
	// paginates each segment on its own. By default markers are dropped and
	// the whole document is reflowed.
	KeepBreaks bool
}

// Paginate reflows document into pages that fit the content box of d and
// returns it with canonical page delimiters. Existing page breaks are
// discarded first, so the result depends only on content and geometry.
//
// Because of the reflow, "Page 1\n\n---\n\nPage 2" comes back as a single
// page. Use PaginateWith with Options{KeepBreaks: true} when explicit breaks
// must survive: fitting pages then round-trip unchanged.
//
// Callers must not invoke it for auto-height styles, where a card has no
// height budget.
func Paginate(document string, d style.Descriptor) string {
	return PaginateWith(document, d, Options{})
}

// PaginateWith is Paginate with explicit options.
func PaginateWith(document string, d style.Descriptor, opt Options) string {
	pages := Layout(document, d, opt)
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return Join(texts)
}

// Layout returns the pages Paginate would write, with their estimated heights.
// At least one page is always returned.
func Layout(document string, d style.Descriptor, opt Options) []Page {
	box := ContentBox(d)
	est := estimator{fontSize: d.FontSize, contentWidth: box.Width}

	if !opt.KeepBreaks {
		return pack(strings.Split(stripMarkers(document), "\n"), est, box.Height)
	}
	var pages []Page
	for _, seg := range Split(document) {
		if seg == "" {
			continue
		}
		pages = append(pages, pack(strings.Split(seg, "\n"), est, box.Height)...)
	}
	if len(pages) == 0 {
		pages = []Page{{}}
	}
	return pages
}

// Measure returns the estimated content height of text laid out as a single
// card, ignoring the budget. Page-break markers inside text are not special.
func Measure(text string, d style.Descriptor) float64 {
	box := ContentBox(d)
	est := estimator{fontSize: d.FontSize, contentWidth: box.Width}
	return measure(strings.Split(normalizeNewlines(text), "\n"), est)
}

// Fits reports whether text fits the content box of d as one card.
func Fits(text string, d style.Descriptor) bool {
	return Measure(text, d) <= ContentBox(d).Height
}

func measure(raw []string, est estimator) float64 {
	var acc float64
	first := true
	for i, r := range raw {
		cur := Classify(r)
		if first && cur.Kind == Blank {
			continue
		}
		next := Line{Kind: Blank}
		if i+1 < len(raw) {
			next = Classify(raw[i+1])
		}
		acc += est.height(cur, next, first)
		if cur.Kind != Blank {
			first = false
		}
	}
	return acc
}

// pack fills pages greedily. A page closes only when it already holds a line,
// so every page carries at least one non-blank line and the walk always
// terminates, whatever the budget.
func pack(raw []string, est estimator, budget float64) []Page {
	lines := make([]Line, len(raw))
	for i, r := range raw {
		lines[i] = Classify(r)
	}

	var (
		pages []Page
		buf   []string
		acc   float64
		first = true
	)
	flush := func() {
		pages = append(pages, Page{Text: joinTrimmed(buf), Height: acc})
		buf, acc, first = nil, 0, true
	}

	for i, cur := range lines {
		if first && cur.Kind == Blank {
			continue
		}
		next := Line{Kind: Blank}
		if i+1 < len(lines) {
			next = lines[i+1]
		}
		h := est.height(cur, next, first)
		if acc+h > budget && len(buf) > 0 {
			flush()
			if cur.Kind == Blank {
				continue
			}
			// The line now opens a page; headings drop their top margin.
			h = est.height(cur, next, true)
		}
		buf = append(buf, cur.Raw)
		acc += h
		if cur.Kind != Blank {
			first = false
		}
	}
	if len(buf) > 0 || len(pages) == 0 {
		flush()
	}
	return pages
}

// joinTrimmed drops trailing blank lines, joins with newlines and trims.
func joinTrimmed(buf []string) string {
	end := len(buf)
	for end > 0 && strings.TrimSpace(buf[end-1]) == "" {
		end--
	}
	return strings.TrimSpace(strings.Join(buf[:end], "\n"))
}
