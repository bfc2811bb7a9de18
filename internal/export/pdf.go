/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"gocardwriter/internal/domain"
	"gocardwriter/internal/geometry"
	"gocardwriter/internal/paginate"
	"gocardwriter/internal/render"
	"gocardwriter/internal/storage"
)

// PxToPt converts CSS pixels (96/in) to PDF points (72/in).
const PxToPt = 0.75

// PDFOptions controls PDF export.
// Text uses the built-in Helvetica/Courier faces, so glyphs outside
// Windows-1252 are dropped. Use the PNG or browser exporter for CJK decks.
type PDFOptions struct {
	Cards []int // zero-based; empty exports all
}

// ExportPDF writes the deck as a PDF with one page per card, sized to the
// resolved card geometry. It returns the number of pages written.
func ExportPDF(h *storage.DeckHandle, outPath string, opt PDFOptions) (int, error) {
	cards, err := loadCards(h)
	if err != nil {
		return 0, err
	}
	d := h.Deck.Style
	size := geometry.Resolve(d)
	w := math.Min(size.Width, paginate.MaxRenderWidth)
	in := d.Inner()
	reserve := paginate.BottomMargin
	if d.HasFooter() {
		reserve = paginate.FooterReserve
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w * PxToPt, Ht: size.Height * PxToPt},
	})
	pdf.SetTitle(h.Deck.Name, true)
	pdf.SetCreator("gocardwriter", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	text := domain.ColorOr(d.TextColor, domain.Black)
	bg := domain.ColorOr(d.Background, domain.White)

	selected := selectCards(cards, opt.Cards)
	for _, c := range selected {
		hpx := size.Height
		if d.AutoHeight {
			need := 2*d.Padding + in.Top + in.Bottom + reserve + paginate.Measure(c.Markdown, d)
			hpx = math.Max(hpx, need)
		}
		pw, ph := w*PxToPt, hpx*PxToPt
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pw, Ht: ph})

		setFillColor(pdf, fromRGBA(frameColor))
		pdf.Rect(0, 0, pw, ph, "F")
		pad := d.Padding * PxToPt
		setFillColor(pdf, bg)
		pdf.Rect(pad, pad, pw-2*pad, ph-2*pad, "F")

		cx := pad + in.Left*PxToPt
		cy := pad + in.Top*PxToPt
		cwPt := pw - 2*pad - (in.Left+in.Right)*PxToPt
		chPt := ph - 2*pad - (in.Top+in.Bottom)*PxToPt
		if cwPt > 0 && chPt > 0 {
			pdf.ClipRect(cx, cy, cwPt, chPt, false)
			setTextColor(pdf, text)
			writeBlocks(pdf, tr, render.Blocks(c.Markdown), d.FontSize*PxToPt, cx, cy, cwPt)
			pdf.ClipEnd()
		}

		if footer := render.Footer(d, c.Number, len(cards)); footer != "" {
			pdf.SetFont("Helvetica", "", 9)
			setTextColor(pdf, text)
			f := tr(footer)
			pdf.Text((pw-pdf.GetStringWidth(f))/2, ph-pad-12*PxToPt, f)
		}
	}
	if len(selected) == 0 {
		pdf.AddPage()
	}

	outPath = resolveOut(h, outPath)
	if err := ensureDir(filepath.Dir(outPath)); err != nil {
		return 0, err
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		_ = os.Remove(outPath)
		return 0, fmt.Errorf("write pdf: %w", err)
	}
	return len(selected), nil
}

// writeBlocks flows blocks top-down from (x, y) within width w, all in pt.
func writeBlocks(pdf *gofpdf.Fpdf, tr func(string) string, blocks []render.Block, fs, x, y, w float64) {
	pdf.SetXY(x, y)
	for _, b := range blocks {
		size, styleStr, family := fs, "", "Helvetica"
		indent, gap := 0.0, 8*PxToPt
		txt := b.Text
		switch b.Kind {
		case render.BlockHeading:
			size = fs * headingScale(b.Level)
			styleStr = "B"
			gap = 12 * PxToPt
		case render.BlockQuote:
			styleStr = "I"
			indent = 12 * PxToPt
		case render.BlockItem:
			txt = "- " + txt
			indent = 8 * PxToPt
			gap = 2 * PxToPt
		case render.BlockCode:
			family = "Courier"
			size = fs * 0.9
		case render.BlockImage:
			top := pdf.GetY()
			boxH := 212 * PxToPt
			setFillColor(pdf, fromRGBA(placeholderColor))
			pdf.Rect(x, top, w, boxH, "F")
			pdf.SetFont("Helvetica", "I", fs)
			pdf.SetXY(x, top+boxH/2-fs/2)
			pdf.CellFormat(w, fs, tr(txt), "", 0, "C", false, 0, "")
			pdf.SetXY(x, top+boxH+gap)
			continue
		}
		pdf.SetFont(family, styleStr, size)
		lineH := size * 1.5
		if b.Kind == render.BlockHeading {
			lineH = size * 1.4
		}
		top := pdf.GetY()
		pdf.SetX(x + indent)
		pdf.MultiCell(w-indent, lineH, tr(txt), "", "L", false)
		if b.Kind == render.BlockQuote {
			setFillColor(pdf, fromRGBA(quoteBarColor))
			pdf.Rect(x, top, 3*PxToPt, pdf.GetY()-top, "F")
		}
		pdf.SetXY(x, pdf.GetY()+gap)
	}
}

func fromRGBA(c color.RGBA) domain.Color {
	return domain.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func setFillColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
