/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind is the flow role of a rendered block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockQuote
	BlockItem
	BlockImage
	BlockCode
)

// Block is a plain-text block used by the raster and PDF exporters, which
// draw text without an HTML engine.
type Block struct {
	Kind  BlockKind
	Level int // heading level, 1-6
	Text  string
}

// Blocks parses one page of Markdown and flattens it into plain-text blocks.
func Blocks(src string) []Block {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))
	var out []Block
	walkBlocks(doc, source, BlockParagraph, &out)
	return out
}

func walkBlocks(node ast.Node, source []byte, inherit BlockKind, out *[]Block) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			*out = append(*out, Block{Kind: BlockHeading, Level: n.Level, Text: plain(n, source)})
		case *ast.Blockquote:
			walkBlocks(n, source, BlockQuote, out)
		case *ast.List:
			walkBlocks(n, source, BlockItem, out)
		case *ast.ListItem:
			walkItem(n, source, out)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			*out = append(*out, Block{Kind: BlockCode, Text: strings.TrimRight(codeLines(n, source), "\n")})
		case *ast.Paragraph, *ast.TextBlock:
			if img, ok := soleImage(n); ok {
				*out = append(*out, Block{Kind: BlockImage, Text: plain(img, source)})
				continue
			}
			*out = append(*out, Block{Kind: inherit, Text: plain(n, source)})
		case *east.Table:
			walkTable(n, source, out)
		case *ast.ThematicBreak, *ast.HTMLBlock:
		default:
			walkBlocks(n, source, inherit, out)
		}
	}
}

func walkItem(item *ast.ListItem, source []byte, out *[]Block) {
	var parts []string
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			parts = append(parts, plain(child, source))
		case *ast.List:
			if len(parts) > 0 {
				*out = append(*out, Block{Kind: BlockItem, Text: strings.Join(parts, " ")})
				parts = nil
			}
			walkBlocks(child, source, BlockItem, out)
		}
	}
	if len(parts) > 0 {
		*out = append(*out, Block{Kind: BlockItem, Text: strings.Join(parts, " ")})
	}
}

func walkTable(t *east.Table, source []byte, out *[]Block) {
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, plain(cell, source))
		}
		*out = append(*out, Block{Kind: BlockParagraph, Text: strings.Join(cells, " | ")})
	}
}

func soleImage(n ast.Node) (*ast.Image, bool) {
	if n.ChildCount() != 1 {
		return nil, false
	}
	img, ok := n.FirstChild().(*ast.Image)
	return img, ok
}

func codeLines(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

// plain concatenates the inline text below n. Soft and hard line breaks
// become spaces.
func plain(n ast.Node, source []byte) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				sb.Write(t.Segment.Value(source))
				if t.SoftLineBreak() || t.HardLineBreak() {
					sb.WriteByte(' ')
				}
			case *ast.String:
				sb.Write(t.Value)
			case *ast.AutoLink:
				sb.Write(t.Label(source))
			case *east.TaskCheckBox:
				if t.IsChecked {
					sb.WriteString("[x] ")
				} else {
					sb.WriteString("[ ] ")
				}
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
