/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package paginate

import (
	"math"
	"unicode/utf8"
)

// Heuristic constants, in px unless noted. They track the card stylesheet;
// change them together with the renderer, not independently.
const (
	blankHeight = 4.0
	imageHeight = 220.0

	lineHeightRatio = 1.5  // body line-height as a multiple of fontSize
	headingLeading  = 1.4  // heading line-height as a multiple of the heading size
	cjkCharWidth    = 1.0  // em per CJK ideograph
	latinCharWidth  = 0.52 // average em per non-CJK character

	quoteMargin     = 6.0
	listTightMargin = 2.0
	listEndMargin   = 8.0
	paragraphMargin = 8.0
)

type headingMetrics struct {
	scale, marginTop, marginBottom float64
}

var headings = map[Kind]headingMetrics{
	Heading1: {scale: 2.0, marginTop: 20, marginBottom: 16},
	Heading2: {scale: 1.5, marginTop: 16, marginBottom: 12},
	Heading3: {scale: 1.25, marginTop: 12, marginBottom: 8},
}

// estimator prices lines for one content width and font size.
type estimator struct {
	fontSize     float64
	contentWidth float64
}

// height estimates the rendered height of cur. next is the following line
// (Blank when cur is last) and first reports whether cur opens the page.
func (e estimator) height(cur, next Line, first bool) float64 {
	fs := e.fontSize
	switch cur.Kind {
	case Blank:
		return blankHeight
	case Image:
		return imageHeight
	case Heading1, Heading2, Heading3:
		m := headings[cur.Kind]
		top := m.marginTop
		if first {
			top = 0
		}
		return fs*m.scale*headingLeading + top + m.marginBottom
	case Quote:
		return float64(e.wrappedLines(cur.Text))*fs*lineHeightRatio + quoteMargin
	case ListItem:
		margin := listEndMargin
		if next.Kind == ListItem {
			margin = listTightMargin
		}
		return float64(e.wrappedLines(cur.Text))*fs*lineHeightRatio + margin
	default:
		margin := 0.0
		if endsParagraph(next.Kind) {
			margin = paragraphMargin
		}
		return float64(e.wrappedLines(cur.Text))*fs*lineHeightRatio + margin
	}
}

// wrappedLines approximates how many visual lines text occupies.
func (e estimator) wrappedLines(text string) int {
	per := e.charsPerLine(text)
	n := int(math.Ceil(float64(utf8.RuneCountInString(text)) / float64(per)))
	if n < 1 {
		return 1
	}
	return n
}

func (e estimator) charsPerLine(text string) int {
	w := latinCharWidth
	if hasCJK(text) {
		w = cjkCharWidth
	}
	avg := e.fontSize * w
	if avg <= 0 {
		return 1
	}
	per := int(math.Floor(e.contentWidth / avg))
	if per < 1 {
		return 1
	}
	return per
}

// hasCJK reports whether s contains a CJK unified ideograph in U+4E00..U+9FA5.
func hasCJK(s string) bool {
	for _, r := range s {
		if r >= 0x4E00 && r <= 0x9FA5 {
			return true
		}
	}
	return false
}
