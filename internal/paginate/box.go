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

	"gocardwriter/internal/geometry"
	"gocardwriter/internal/style"
)

const (
	// MaxRenderWidth caps the card width the renderer lays text out in.
	MaxRenderWidth = 800.0
	// FooterReserve is kept free when a page number or watermark is shown.
	FooterReserve = 44.0
	// BottomMargin is the minimal reserve when the footer is empty.
	BottomMargin = 12.0
)

// Box is the text area of a card in px. Either side may be zero or negative
// for degenerate styles.
type Box struct {
	Width  float64
	Height float64
}

// ContentBox computes the text area available inside a card styled by d.
func ContentBox(d style.Descriptor) Box {
	size := geometry.Resolve(d)
	inner := d.Inner()
	footer := BottomMargin
	if d.HasFooter() {
		footer = FooterReserve
	}
	return Box{
		Width:  math.Min(size.Width, MaxRenderWidth) - 2*d.Padding - inner.Left - inner.Right,
		Height: size.Height - 2*d.Padding - inner.Top - inner.Bottom - footer,
	}
}
