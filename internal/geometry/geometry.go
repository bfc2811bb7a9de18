/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geometry turns a card style descriptor into concrete pixel dimensions.
package geometry

import (
	"math"
	"strconv"
	"strings"

	"gocardwriter/internal/style"
)

// ReferenceWidth is the card width in px used for every ratio-derived size.
const ReferenceWidth = 500.0

// Size is a resolved card size in px.
type Size struct {
	Width  float64
	Height float64
}

// Resolve computes the card size for d.
//
// Auto-height and custom-ratio cards use the descriptor's raw width/height.
// Otherwise the width is ReferenceWidth and the height follows the W:H ratio,
// flipped so that portrait cards are never wider than tall and landscape cards
// never taller than wide. A ratio that does not parse falls back to the raw
// dimensions.
func Resolve(d style.Descriptor) Size {
	raw := Size{Width: d.Width, Height: d.Height}
	if d.AutoHeight || d.AspectRatio == style.RatioCustom {
		return raw
	}
	w, h, ok := ParseRatio(string(d.AspectRatio))
	if !ok {
		return raw
	}
	switch d.Orientation {
	case style.Portrait:
		if w > h {
			w, h = h, w
		}
	case style.Landscape:
		if h > w {
			w, h = h, w
		}
	}
	return Size{Width: ReferenceWidth, Height: math.Round(ReferenceWidth * float64(h) / float64(w))}
}

// ParseRatio parses "W:H" where both parts are positive integers.
func ParseRatio(s string) (w, h int, ok bool) {
	left, right, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, 0, false
	}
	w, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil || w <= 0 {
		return 0, 0, false
	}
	h, err = strconv.Atoi(strings.TrimSpace(right))
	if err != nil || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
