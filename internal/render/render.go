/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns paginated Markdown into card HTML.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"gocardwriter/internal/paginate"
	"gocardwriter/internal/style"
)

// Card is one page of a document, as Markdown and as sanitised HTML.
type Card struct {
	Number   int
	Markdown string
	HTML     template.HTML
}

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithUnsafe()),
	)
	policy = bluemonday.UGCPolicy()
)

// Cards splits document at its page breaks and renders each page. An empty
// document still yields one (empty) card.
func Cards(document string) ([]Card, error) {
	pages := paginate.Split(document)
	cards := make([]Card, 0, len(pages))
	for i, p := range pages {
		h, err := Markdown(p)
		if err != nil {
			return nil, fmt.Errorf("render card %d: %w", i+1, err)
		}
		cards = append(cards, Card{Number: i + 1, Markdown: p, HTML: h})
	}
	return cards, nil
}

// Markdown converts one page of Markdown to sanitised HTML.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	// bluemonday output is safe to embed verbatim.
	return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil //nolint:gosec
}

// Footer returns the footer line for card n of total, or "" when d has no
// footer.
func Footer(d style.Descriptor, n, total int) string {
	var s string
	if d.Watermark.Enabled {
		s = d.Watermark.Text
	}
	if d.PageNumber.Enabled {
		num := fmt.Sprintf("%d / %d", n, total)
		if s != "" {
			s += "  ·  "
		}
		s += num
	}
	return s
}
