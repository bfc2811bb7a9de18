/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"testing"

	"gocardwriter/internal/storage"
)

func TestFormatHitUsesCardNumber(t *testing.T) {
	cases := []struct {
		in   storage.SearchResult
		want string
	}{
		{storage.SearchResult{Position: 1, Snippet: "[alpha] first"}, "#1  [alpha] first"},
		{storage.SearchResult{Position: 3, Overflow: true, Snippet: "x"}, "#3 (overflow)  x"},
	}
	for _, tc := range cases {
		if got := formatHit(tc.in); got != tc.want {
			t.Fatalf("formatHit(%+v) = %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestPlural(t *testing.T) {
	cases := map[int]string{0: "0 cards", 1: "1 card", 2: "2 cards"}
	for n, want := range cases {
		if got := plural(n, "card"); got != want {
			t.Fatalf("plural(%d) = %q want %q", n, got, want)
		}
	}
}
