/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package markdown

import "strings"

// Document is the block tree of a worksheet. Screen and print renderers
// both walk it, so they agree on headings, table rows and drawing boxes.
type Document struct {
	Blocks []Block
}

// BlockKind indicates the kind of a block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockBullets
	BlockNumbered
	BlockTable
	BlockDrawingBox
	BlockRule
	BlockSpacer
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockBullets:
		return "bullets"
	case BlockNumbered:
		return "numbered"
	case BlockTable:
		return "table"
	case BlockDrawingBox:
		return "drawing-box"
	case BlockRule:
		return "rule"
	case BlockSpacer:
		return "spacer"
	}
	return "unknown"
}

// Block is one node of the tree. Which fields are set depends on Kind:
//   - Heading: Level (1..3), Spans
//   - Paragraph: Spans
//   - Bullets, Numbered: Items (Numbers holds the number written before each
//     numbered item, Start the first of them)
//   - Table: Rows, each a list of cells
type Block struct {
	Kind    BlockKind
	Level   int
	Start   int
	Spans   []Span
	Items   [][]Span
	Numbers []int
	Rows    [][][]Span
	Line    int // 1-based source line of the first line in the block
}

// SpanKind indicates the kind of an inline span.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanBold
	SpanBlank // fill-in blank, written as three or more underscores
)

type Span struct {
	Kind SpanKind
	Text string
}

// Error is a parse problem with position context.
type Error struct {
	Line    int
	Message string
}

// Options tunes parsing.
type Options struct {
	// SkipTitle drops leading blank lines and a first "# " heading. Print
	// output does this because its header already shows the topic.
	SkipTitle bool
}

// HeadingLevels returns the level of every heading in document order.
func (d Document) HeadingLevels() []int {
	var out []int
	for _, b := range d.Blocks {
		if b.Kind == BlockHeading {
			out = append(out, b.Level)
		}
	}
	return out
}

// TableRows counts rows across all tables.
func (d Document) TableRows() int {
	n := 0
	for _, b := range d.Blocks {
		if b.Kind == BlockTable {
			n += len(b.Rows)
		}
	}
	return n
}

// DrawingBoxes counts drawing box placeholders.
func (d Document) DrawingBoxes() int {
	n := 0
	for _, b := range d.Blocks {
		if b.Kind == BlockDrawingBox {
			n++
		}
	}
	return n
}

// PlainText joins the text of spans, rendering blanks as underscores.
func PlainText(spans []Span) string {
	var b strings.Builder
	for _, sp := range spans {
		if sp.Kind == SpanBlank {
			b.WriteString("_____")
			continue
		}
		b.WriteString(sp.Text)
	}
	return b.String()
}
