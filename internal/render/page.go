/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"gocardwriter/internal/geometry"
	"gocardwriter/internal/paginate"
	"gocardwriter/internal/style"
)

var pageTmpl = template.Must(template.New("cards").Funcs(template.FuncMap{
	"px": func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) + "px" },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; padding: 24px; background: #eceff1; display: flex; flex-direction: column; align-items: center; gap: 24px; }
.frame { box-sizing: border-box; width: {{px .Width}}; {{if .AutoHeight}}min-height{{else}}height{{end}}: {{px .Height}}; padding: {{px .Padding}}; }
.card { box-sizing: border-box; position: relative; width: 100%; height: 100%; overflow: hidden;
  padding: {{px .Inner.Top}} {{px .Inner.Right}} {{px .Inner.Bottom}} {{px .Inner.Left}};
  background: {{.Background}}; color: {{.TextColor}}; font-family: {{.FontFamily}}; font-size: {{px .FontSize}}; line-height: 1.5;
  box-shadow: {{.Shadow}}; border-radius: 12px; }
.card h1, .card h2, .card h3 { line-height: 1.4; }
.card img { max-width: 100%; }
.card footer { position: absolute; left: 0; right: 0; bottom: 12px; text-align: center; font-size: 12px; opacity: .6; }
</style>
</head>
<body>
{{- range .Cards}}
<div class="frame"><article class="card" id="card-{{.Number}}" data-card="{{.Number}}">
{{.HTML}}
{{- if .Footer}}<footer>{{.Footer}}</footer>{{end}}
</article></div>
{{- end}}
</body>
</html>
`))

type cardView struct {
	Number int
	HTML   template.HTML
	Footer string
}

type pageView struct {
	Title      string
	Width      float64
	Height     float64
	AutoHeight bool
	Padding    float64
	Inner      style.Padding
	FontFamily template.CSS
	FontSize   float64
	TextColor  template.CSS
	Background template.CSS
	Shadow     template.CSS
	Cards      []cardView
}

// Page wraps cards into a standalone HTML document styled after d. Card boxes
// use the resolved geometry; auto-height cards only set a minimum height.
// Each card element carries id "card-<n>".
func Page(title string, cards []Card, d style.Descriptor) (string, error) {
	size := geometry.Resolve(d)
	w := size.Width
	if w > paginate.MaxRenderWidth {
		w = paginate.MaxRenderWidth
	}
	v := pageView{
		Title:      title,
		Width:      w,
		Height:     size.Height,
		AutoHeight: d.AutoHeight,
		Padding:    d.Padding,
		Inner:      d.Inner(),
		FontFamily: cssValue(d.FontFamily, "system-ui, sans-serif"),
		FontSize:   d.FontSize,
		TextColor:  cssValue(d.TextColor, "#1f2328"),
		Background: cssValue(d.Background, "#ffffff"),
		Shadow:     cssValue(d.ShadowCSS(), "none"),
	}
	for _, c := range cards {
		v.Cards = append(v.Cards, cardView{Number: c.Number, HTML: c.HTML, Footer: Footer(d, c.Number, len(cards))})
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}

// cssValue admits a descriptor value into the stylesheet. Anything that could
// escape the declaration falls back to def.
func cssValue(s, def string) template.CSS {
	for _, r := range s {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\\':
			return template.CSS(def) //nolint:gosec
		}
	}
	if s == "" {
		s = def
	}
	return template.CSS(s) //nolint:gosec
}
