/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gocardwriter/internal/style"
)

func descriptor(ratio style.AspectRatio, o style.Orientation) style.Descriptor {
	d := style.Defaults()
	d.AspectRatio = ratio
	d.Orientation = o
	d.Width = 321
	d.Height = 654
	return d
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		ratio style.AspectRatio
		o     style.Orientation
		want  Size
	}{
		{"square portrait", style.Ratio1x1, style.Portrait, Size{500, 500}},
		{"square landscape", style.Ratio1x1, style.Landscape, Size{500, 500}},
		{"4:3 landscape", style.Ratio4x3, style.Landscape, Size{500, 375}},
		{"4:3 portrait flips", style.Ratio4x3, style.Portrait, Size{500, 667}},
		{"3:2 portrait flips", style.Ratio3x2, style.Portrait, Size{500, 750}},
		{"16:9 landscape", style.Ratio16x9, style.Landscape, Size{500, 281}},
		{"16:9 portrait flips", style.Ratio16x9, style.Portrait, Size{500, 889}},
		{"tall ratio under landscape flips", "9:16", style.Landscape, Size{500, 281}},
		{"tall ratio under portrait kept", "9:16", style.Portrait, Size{500, 889}},
		{"custom keeps raw", style.RatioCustom, style.Portrait, Size{321, 654}},
		{"malformed keeps raw", "wide", style.Landscape, Size{321, 654}},
		{"zero part keeps raw", "0:4", style.Landscape, Size{321, 654}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(descriptor(tt.ratio, tt.o)))
		})
	}
}

func TestResolve_AutoHeightKeepsRaw(t *testing.T) {
	d := descriptor(style.Ratio16x9, style.Landscape)
	d.AutoHeight = true
	assert.Equal(t, Size{321, 654}, Resolve(d))
}

func TestResolve_OrientationInvariant(t *testing.T) {
	for _, r := range []style.AspectRatio{"1:1", "4:3", "3:2", "16:9", "2:5", "7:3"} {
		p := Resolve(descriptor(r, style.Portrait))
		l := Resolve(descriptor(r, style.Landscape))
		assert.GreaterOrEqualf(t, p.Height, p.Width, "portrait %s", r)
		assert.GreaterOrEqualf(t, l.Width, l.Height, "landscape %s", r)
	}
}

func TestParseRatio(t *testing.T) {
	w, h, ok := ParseRatio(" 16 : 9 ")
	assert.True(t, ok)
	assert.Equal(t, 16, w)
	assert.Equal(t, 9, h)

	for _, bad := range []string{"", "16", "16:", ":9", "a:b", "-4:3", "4:3:2", "1.5:1"} {
		_, _, ok := ParseRatio(bad)
		assert.Falsef(t, ok, "ParseRatio(%q)", bad)
	}
}
