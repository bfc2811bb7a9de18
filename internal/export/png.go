/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"gocardwriter/internal/domain"
	"gocardwriter/internal/geometry"
	"gocardwriter/internal/paginate"
	"gocardwriter/internal/render"
	"gocardwriter/internal/storage"
	"gocardwriter/internal/style"
	"gocardwriter/internal/textlayout"
)

// PNGOptions controls PNG export.
//   - Scale: device pixel ratio; 1 when <= 0
//   - Cards: zero-based card indexes; empty exports all
//   - Provider: font source; nil uses the embedded Go fonts
type PNGOptions struct {
	Scale    float64
	Cards    []int
	Provider textlayout.Provider
}

var (
	frameColor       = color.RGBA{0xec, 0xef, 0xf1, 0xff}
	placeholderColor = color.RGBA{0xd0, 0xd7, 0xde, 0xff}
	quoteBarColor    = color.RGBA{0x8c, 0x95, 0x9f, 0xff}
)

// ExportPNG writes one PNG per card into outDir, named card-<nn>.png, and
// returns the written paths. A relative outDir is placed under the deck's
// exports folder.
func ExportPNG(h *storage.DeckHandle, outDir string, opt PNGOptions) ([]string, error) {
	cards, err := loadCards(h)
	if err != nil {
		return nil, err
	}
	outDir = resolveOut(h, outDir)
	if err := ensureDir(outDir); err != nil {
		return nil, err
	}
	r := newRasterizer(h.Deck.Style, opt)
	var files []string
	for _, c := range selectCards(cards, opt.Cards) {
		name := filepath.Join(outDir, CardFileName(c.Number, "png"))
		if err := writePNG(name, r.card(c, len(cards))); err != nil {
			return files, err
		}
		files = append(files, name)
	}
	return files, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// rasterizer draws cards with the same box model as the HTML renderer:
// frame padding, card background, inner padding, then flowed text blocks.
type rasterizer struct {
	d     style.Descriptor
	scale float64
	p     textlayout.Provider
	text  color.RGBA
	bg    color.RGBA
}

func newRasterizer(d style.Descriptor, opt PNGOptions) *rasterizer {
	s := opt.Scale
	if s <= 0 {
		s = 1
	}
	p := opt.Provider
	if p == nil {
		if lib, err := textlayout.GoFonts(); err == nil {
			p = textlayout.LibraryProvider{Lib: lib}
		} else {
			p = textlayout.BasicProvider{}
		}
	}
	return &rasterizer{
		d:     d,
		scale: s,
		p:     p,
		text:  toRGBA(domain.ColorOr(d.TextColor, domain.Black)),
		bg:    toRGBA(domain.ColorOr(d.Background, domain.White)),
	}
}

// placed is a block after line breaking, in device pixels.
type placed struct {
	kind   render.BlockKind
	lines  []string
	face   font.Face
	m      textlayout.Metrics
	indent int
	body   int // height of the block itself
	gap    int // space after the block
}

func (r *rasterizer) px(v float64) int { return int(math.Round(v * r.scale)) }

func headingScale(level int) float64 {
	switch level {
	case 1:
		return 2.0
	case 2:
		return 1.5
	case 3:
		return 1.25
	default:
		return 1.1
	}
}

// layout breaks blocks into lines for a content width in device pixels and
// returns the total height they need.
func (r *rasterizer) layout(blocks []render.Block, width int) ([]placed, int) {
	fs := r.d.FontSize * r.scale
	out := make([]placed, 0, len(blocks))
	total := 0
	for _, b := range blocks {
		fspec := textlayout.FontSpec{SizePx: fs}
		pl := placed{kind: b.Kind, gap: r.px(8)}
		text := b.Text
		switch b.Kind {
		case render.BlockHeading:
			fspec.SizePx = fs * headingScale(b.Level)
			fspec.Bold = true
			pl.gap = r.px(12)
		case render.BlockQuote:
			fspec.Italic = true
			pl.indent = r.px(12)
		case render.BlockItem:
			text = "- " + text
			pl.indent = r.px(8)
			pl.gap = r.px(2)
		case render.BlockCode:
			fspec.Family = "mono"
			fspec.SizePx = fs * 0.9
		}
		pl.face, pl.m = r.p.Resolve(fspec)
		if b.Kind == render.BlockImage {
			pl.lines = []string{textlayout.Truncate(pl.face, text, width)}
			pl.body = r.px(212)
		} else {
			pl.lines = textlayout.Wrap(pl.face, text, width-pl.indent)
			pl.body = pl.m.LineHeight() * len(pl.lines)
		}
		total += pl.body + pl.gap
		out = append(out, pl)
	}
	if n := len(out); n > 0 {
		total -= out[n-1].gap
	}
	return out, total
}

// card renders one card. Auto-height cards grow to fit their content; fixed
// cards clip it like overflow: hidden.
func (r *rasterizer) card(c render.Card, total int) *image.RGBA {
	d := r.d
	size := geometry.Resolve(d)
	w := math.Min(size.Width, paginate.MaxRenderWidth)
	in := d.Inner()
	cw := r.px(paginate.ContentBox(d).Width)
	blocks, contentH := r.layout(render.Blocks(c.Markdown), cw)

	h := size.Height
	if d.AutoHeight {
		reserve := paginate.BottomMargin
		if d.HasFooter() {
			reserve = paginate.FooterReserve
		}
		h = math.Max(h, 2*d.Padding+in.Top+in.Bottom+reserve+float64(contentH)/r.scale)
	}
	W, H := max(r.px(w), 1), max(r.px(h), 1)
	img := image.NewRGBA(image.Rect(0, 0, W, H))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: frameColor}, image.Point{}, draw.Src)

	pad := r.px(d.Padding)
	cardRect := image.Rect(pad, pad, W-pad, H-pad)
	if cardRect.Empty() {
		return img
	}
	draw.Draw(img, cardRect, &image.Uniform{C: r.bg}, image.Point{}, draw.Src)
	cardImg := img.SubImage(cardRect).(*image.RGBA)

	content := image.Rect(pad+r.px(in.Left), pad+r.px(in.Top), W-pad-r.px(in.Right), H-pad-r.px(in.Bottom))
	if !content.Empty() {
		r.drawBlocks(img.SubImage(content).(*image.RGBA), blocks)
	}
	if footer := render.Footer(d, c.Number, total); footer != "" {
		face, _ := r.p.Resolve(textlayout.FontSpec{SizePx: 12 * r.scale})
		fw := textlayout.Measure(face, footer)
		drawText(cardImg, face, r.text, (W-fw)/2, cardRect.Max.Y-r.px(12), footer)
	}
	return img
}

func (r *rasterizer) drawBlocks(dst *image.RGBA, blocks []placed) {
	b := dst.Bounds()
	y := b.Min.Y
	for _, pl := range blocks {
		if y >= b.Max.Y {
			return
		}
		x := b.Min.X + pl.indent
		switch pl.kind {
		case render.BlockImage:
			fillRect(dst, x, y, b.Max.X-1, y+pl.body-1, placeholderColor)
			strokeRect(dst, x, y, b.Max.X-1, y+pl.body-1, quoteBarColor)
			tw := textlayout.Measure(pl.face, pl.lines[0])
			drawText(dst, pl.face, r.text, x+(b.Max.X-x-tw)/2, y+pl.body/2+pl.m.Ascent/2, pl.lines[0])
		case render.BlockQuote:
			fillRect(dst, b.Min.X, y, b.Min.X+r.px(3)-1, y+pl.body-1, quoteBarColor)
			fallthrough
		default:
			ly := y
			for _, ln := range pl.lines {
				drawText(dst, pl.face, r.text, x, ly+pl.m.Ascent, ln)
				ly += pl.m.LineHeight()
			}
		}
		y += pl.body + pl.gap
	}
}

func drawText(dst draw.Image, face font.Face, col color.RGBA, x, baseline int, s string) {
	dr := font.Drawer{Dst: dst, Src: &image.Uniform{C: col}, Face: face, Dot: fixed.P(x, baseline)}
	dr.DrawString(s)
}

func toRGBA(c domain.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	r := image.Rect(x0, y0, x1+1, y1+1).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
}
