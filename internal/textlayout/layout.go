/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and word-wraps text for the raster exporters.
// Pagination itself never measures glyphs; this package is only used once the
// page breaks are known, to place text on an image.
package textlayout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSpec describes a requested face.
type FontSpec struct {
	Family string // "sans" or "mono"; empty means sans
	SizePx float64
	Bold   bool
	Italic bool
}

// Metrics are the vertical metrics of a resolved face, in px.
type Metrics struct {
	Ascent, Descent, LineGap int
}

// LineHeight is the baseline-to-baseline distance.
func (m Metrics) LineHeight() int { return m.Ascent + m.Descent + m.LineGap }

// Provider maps a FontSpec to a concrete face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider always returns basicfont.Face7x13. Output is identical on
// every platform, which keeps image tests stable.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	return basicfont.Face7x13, metricsOf(basicfont.Face7x13)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  m.Ascent.Ceil(),
		Descent: m.Descent.Ceil(),
		LineGap: max(0, m.Height.Ceil()-m.Ascent.Ceil()-m.Descent.Ceil()),
	}
}

// Measure returns the advance width of s in px.
func Measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// Wrap breaks text into lines no wider than maxWidth px. Existing newlines
// are kept. Words wider than a line are split between runes, which is also
// how unspaced CJK text wraps. A non-positive maxWidth disables wrapping.
func Wrap(face font.Face, text string, maxWidth int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		out = append(out, wrapLine(face, para, maxWidth)...)
	}
	return out
}

func wrapLine(face font.Face, s string, maxWidth int) []string {
	if maxWidth <= 0 || Measure(face, s) <= maxWidth {
		return []string{s}
	}
	limit := fixed.I(maxWidth)
	space := font.MeasureString(face, " ")
	var (
		lines []string
		cur   strings.Builder
		width fixed.Int26_6
	)
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		width = 0
	}
	for _, word := range strings.FieldsFunc(s, unicode.IsSpace) {
		w := font.MeasureString(face, word)
		if cur.Len() > 0 && width+space+w <= limit {
			cur.WriteByte(' ')
			cur.WriteString(word)
			width += space + w
			continue
		}
		if cur.Len() > 0 {
			flush()
		}
		if w <= limit {
			cur.WriteString(word)
			width = w
			continue
		}
		for _, part := range splitRunes(face, word, limit) {
			if cur.Len() > 0 {
				flush()
			}
			cur.WriteString(part)
			width = font.MeasureString(face, part)
		}
	}
	if cur.Len() > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// splitRunes cuts word into chunks that fit limit. Every chunk holds at least
// one rune.
func splitRunes(face font.Face, word string, limit fixed.Int26_6) []string {
	var parts []string
	start := 0
	var width fixed.Int26_6
	for i, r := range word {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			adv, _ = face.GlyphAdvance('?')
		}
		if width+adv > limit && i > start {
			parts = append(parts, word[start:i])
			start, width = i, 0
		}
		width += adv
	}
	if start < len(word) {
		parts = append(parts, word[start:])
	}
	return parts
}

// Truncate shortens s with an ellipsis so it fits maxWidth.
func Truncate(face font.Face, s string, maxWidth int) string {
	if Measure(face, s) <= maxWidth {
		return s
	}
	const ell = "..."
	for len(s) > 0 {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
		if Measure(face, s+ell) <= maxWidth {
			return s + ell
		}
	}
	return ""
}
