/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package paginate

import (
	"regexp"
	"strings"
)

// Kind is the block role of a single source line.
type Kind int

const (
	Blank Kind = iota
	Paragraph
	Heading1
	Heading2
	Heading3
	Quote
	ListItem
	Image
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Heading1:
		return "h1"
	case Heading2:
		return "h2"
	case Heading3:
		return "h3"
	case Quote:
		return "quote"
	case ListItem:
		return "list"
	case Image:
		return "image"
	default:
		return "paragraph"
	}
}

// IsHeading reports whether k is one of the three heading levels.
func (k Kind) IsHeading() bool { return k == Heading1 || k == Heading2 || k == Heading3 }

// Line is a classified source line. Text is the content without its block
// marker ("# ", "> ", "- ", "1. ").
type Line struct {
	Kind Kind
	Raw  string
	Text string
}

var (
	reHeading = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)
	reList    = regexp.MustCompile(`^(?:[-*]|\d+\.)\s+(.*)$`)
	reQuote   = regexp.MustCompile(`^>\s?(.*)$`)
)

// Classify assigns a Kind to one line by prefix alone.
func Classify(raw string) Line {
	trim := strings.TrimSpace(raw)
	switch {
	case trim == "":
		return Line{Kind: Blank, Raw: raw}
	case strings.HasPrefix(trim, "!["):
		return Line{Kind: Image, Raw: raw, Text: trim}
	}
	if m := reHeading.FindStringSubmatch(trim); m != nil {
		k := Heading1 + Kind(len(m[1])-1)
		return Line{Kind: k, Raw: raw, Text: m[2]}
	}
	if m := reQuote.FindStringSubmatch(trim); m != nil {
		return Line{Kind: Quote, Raw: raw, Text: m[1]}
	}
	if m := reList.FindStringSubmatch(trim); m != nil {
		return Line{Kind: ListItem, Raw: raw, Text: m[1]}
	}
	return Line{Kind: Paragraph, Raw: raw, Text: raw}
}

// endsParagraph reports whether next closes the paragraph block a preceding
// plain line belongs to.
func endsParagraph(next Kind) bool {
	return next == Blank || next.IsHeading() || next == Quote || next == ListItem
}
