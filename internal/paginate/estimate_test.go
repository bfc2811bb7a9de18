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
	"testing"

	"github.com/stretchr/testify/assert"

	"gocardwriter/internal/style"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		text string
	}{
		{"", Blank, ""},
		{"   \t", Blank, ""},
		{"# Title", Heading1, "Title"},
		{"## Sub title", Heading2, "Sub title"},
		{"### Small", Heading3, "Small"},
		{"#### Deeper", Paragraph, "#### Deeper"},
		{"#hashtag", Paragraph, "#hashtag"},
		{"> quoted words", Quote, "quoted words"},
		{">tight", Quote, "tight"},
		{"- item", ListItem, "item"},
		{"* star item", ListItem, "star item"},
		{"  12. numbered", ListItem, "numbered"},
		{"*emphasis*", Paragraph, "*emphasis*"},
		{"![alt](img.png)", Image, "![alt](img.png)"},
		{"Plain text.", Paragraph, "Plain text."},
	}
	for _, tt := range tests {
		got := Classify(tt.in)
		assert.Equalf(t, tt.kind, got.Kind, "kind of %q", tt.in)
		assert.Equalf(t, tt.text, got.Text, "text of %q", tt.in)
	}
}

func TestEstimator_Heights(t *testing.T) {
	e := estimator{fontSize: 16, contentWidth: 412}
	blank := Line{Kind: Blank}
	para := Classify("para")
	item := Classify("- item")

	tests := []struct {
		name  string
		cur   Line
		next  Line
		first bool
		want  float64
	}{
		{"blank", blank, para, false, 4},
		{"image", Classify("![x](y)"), blank, false, 220},
		{"h1 mid page", Classify("# H"), para, false, 16*2.0*1.4 + 20 + 16},
		{"h1 first", Classify("# H"), para, true, 16*2.0*1.4 + 16},
		{"h2 mid page", Classify("## H"), para, false, 16*1.5*1.4 + 16 + 12},
		{"h3 first", Classify("### H"), para, true, 16*1.25*1.4 + 8},
		{"quote", Classify("> q"), blank, false, 24 + 6},
		{"list tight", item, item, false, 24 + 2},
		{"list end", item, para, false, 24 + 8},
		{"para mid block", para, para, false, 24},
		{"para before blank", para, blank, false, 32},
		{"para before heading", para, Classify("## H"), false, 32},
		{"para before quote", para, Classify("> q"), false, 32},
		{"para before image", para, Classify("![x](y)"), false, 24},
	}
	for _, tt := range tests {
		assert.InDeltaf(t, tt.want, e.height(tt.cur, tt.next, tt.first), 1e-9, tt.name)
	}
}

func TestEstimator_Wrapping(t *testing.T) {
	e := estimator{fontSize: 16, contentWidth: 412}
	// floor(412 / (16*0.52)) = 49 latin characters per line.
	assert.Equal(t, 49, e.charsPerLine("abc"))
	assert.Equal(t, 1, e.wrappedLines(""))
	assert.Equal(t, 1, e.wrappedLines(strings.Repeat("a", 49)))
	assert.Equal(t, 2, e.wrappedLines(strings.Repeat("a", 50)))
	assert.Equal(t, 3, e.wrappedLines(strings.Repeat("a", 100)))

	// floor(412 / 16) = 25 ideographs per line; any ideograph switches the whole line.
	assert.Equal(t, 25, e.charsPerLine("中"))
	assert.Equal(t, 2, e.wrappedLines(strings.Repeat("中", 30)))
	assert.Equal(t, 2, e.wrappedLines("中"+strings.Repeat("a", 30)))

	// Kana and Hangul are outside the ideograph range.
	assert.False(t, hasCJK("ひらがな한국어"))
	assert.True(t, hasCJK("mixed 文字"))
}

func TestEstimator_DegenerateWidth(t *testing.T) {
	e := estimator{fontSize: 16, contentWidth: -30}
	assert.Equal(t, 1, e.charsPerLine("abc"))
	assert.Equal(t, 5, e.wrappedLines("abcde"))

	z := estimator{fontSize: 0, contentWidth: 400}
	assert.Equal(t, 1, z.charsPerLine("abc"))
}

func TestContentBox(t *testing.T) {
	d := style.Defaults()
	box := ContentBox(d)
	assert.Equal(t, Box{Width: 412, Height: 650}, box)

	d.CardPadding = &style.Padding{Top: 10, Right: 5, Bottom: 10, Left: 5}
	d.PageNumber.Enabled = true
	assert.Equal(t, Box{Width: 450, Height: 646}, ContentBox(d))

	d.PageNumber.Enabled = false
	d.Watermark.Enabled = true
	assert.Equal(t, Box{Width: 450, Height: 646}, ContentBox(d))

	wide := style.Defaults()
	wide.AspectRatio = style.RatioCustom
	wide.Width = 1200
	wide.Height = 900
	assert.Equal(t, Box{Width: 800 - 88, Height: 900 - 100}, ContentBox(wide))
}

func TestSplitAndJoin(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{""}},
		{"single", "just text", []string{"just text"}},
		{"canonical", "a\n\n---\n\nb", []string{"a", "b"}},
		{"tight", "a\n---\nb", []string{"a", "b"}},
		{"padded marker", "a\n   ---  \nb", []string{"a", "b"}},
		{"crlf", "a\r\n---\r\nb", []string{"a", "b"}},
		{"not a marker", "a\n----\nb", []string{"a\n----\nb"}},
		{"leading marker", "---\nb", []string{"", "b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Split(tt.in), tt.name)
	}
	assert.Equal(t, "a\n\n---\n\nb", Join([]string{"a", "b"}))
	assert.Equal(t, []string{"x", "y", "z"}, Split(Join([]string{"x", "y", "z"})))
}

func TestStripMarkers(t *testing.T) {
	assert.Equal(t, "a\n\nb", stripMarkers("a\n---\nb"))
	assert.Equal(t, "a\n\nb", stripMarkers("a\n\n\n---\n\n\nb"))
	assert.Equal(t, "a\n\nb\n\nc", stripMarkers("a\n---\nb\n---\nc"))
	assert.Equal(t, "a", stripMarkers("a\n---\n"))
	assert.Equal(t, "b", stripMarkers("---\nb"))
	assert.Equal(t, "keep\n\n\nblank lines", stripMarkers("keep\n\n\nblank lines"))
}

func TestMeasureAndFits(t *testing.T) {
	d := style.Defaults()
	assert.Equal(t, 0.0, Measure("", d))
	assert.Equal(t, 0.0, Measure("\n\n", d))
	assert.InDelta(t, 96.8, Measure("# Title\n\npara", d), 1e-9)
	assert.InDelta(t, 96.8, Measure("\n\n# Title\n\npara", d), 1e-9)
	assert.True(t, Fits("# Title\n\npara", d))
	assert.False(t, Fits(strings.Repeat("![img](x.png)\n", 3), d))
}
