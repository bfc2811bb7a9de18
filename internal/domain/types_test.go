/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNewDeck(t *testing.T) {
	d := NewDeck("Talk")
	if _, err := uuid.Parse(d.ID); err != nil {
		t.Fatalf("id is not a uuid: %q", d.ID)
	}
	if d.Document != DefaultDocument || d.Style.FontSize != 16 {
		t.Fatalf("unexpected defaults: %+v", d)
	}
	if d.CreatedAt.IsZero() || !d.CreatedAt.Equal(d.UpdatedAt) {
		t.Fatalf("timestamps not initialised")
	}
	if NewDeck("Talk").ID == d.ID {
		t.Fatalf("ids must differ")
	}
}

func TestDeckJSONUsesCamelCaseStyle(t *testing.T) {
	d := NewDeck("RoundTrip")
	d.Style.AutoHeight = true
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	st, ok := raw["style"].(map[string]any)
	if !ok || st["autoHeight"] != true || st["aspectRatio"] != "3:2" {
		t.Fatalf("unexpected style json: %v", raw["style"])
	}
	var got Deck
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal deck: %v", err)
	}
	if got.ID != d.ID || !got.Style.AutoHeight {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#fff":               {255, 255, 255, 255},
		"#1F2328":            {0x1f, 0x23, 0x28, 255},
		"#00000080":          {0, 0, 0, 0x80},
		"rgb(1, 2, 3)":       {1, 2, 3, 255},
		"rgba(0,0,0,0.15)":   {0, 0, 0, 38},
		" RGBA(10,20,30,1) ": {10, 20, 30, 255},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %+v want %+v", in, got, want)
		}
	}
	for _, bad := range []string{"", "red", "#12", "#zzzzzz", "rgb(1,2)", "rgb(1,2,300)", "rgba(0,0,0,2)"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) should fail", bad)
		}
	}
	if ColorOr("nope", White) != White {
		t.Fatalf("ColorOr must fall back")
	}
}
