/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package markdown parses the small markdown dialect used by generated
// worksheets and answer keys into a block tree.
package markdown

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

var (
	reImage    = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	reRule     = regexp.MustCompile(`^-+$`)
	reNumbered = regexp.MustCompile(`^(\d+)\.\s*(.*)$`)
	reInline   = regexp.MustCompile(`\*\*(.*?)\*\*|_{3,}`)
	reDrawing  = regexp.MustCompile(`(?i)\b(draw|sketch|shade|illustrate)\b`)
)

// Parse turns markdown into a Document.
// Supported syntax:
//   - "# ", "## ", "### " headings
//   - lines starting with "|" are table rows; rows containing "---" are separators and dropped
//   - "- " and "* " bullets, "N." numbered items
//   - a line made only of dashes is a horizontal rule
//   - **bold** spans and fill-in blanks of three or more underscores
//   - any text line containing the whole word draw, sketch, shade or illustrate
//     is followed by one drawing box
//
// Image syntax ![alt](src) is removed before parsing. Blank lines become spacers.
func Parse(input string, opts Options) (Document, []Error) {
	p := &parser{}
	var errs []Error

	sc := bufio.NewScanner(strings.NewReader(reImage.ReplaceAllString(input, "")))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	leading := opts.SkipTitle
	for sc.Scan() {
		lineNo++
		trim := strings.TrimSpace(sc.Text())
		if leading {
			if trim == "" {
				continue
			}
			leading = false
			if strings.HasPrefix(trim, "# ") {
				continue
			}
		}
		p.line(trim, lineNo)
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo + 1, Message: err.Error()})
	}
	p.flush()
	return Document{Blocks: p.blocks}, errs
}

type parser struct {
	blocks []Block
	open   *Block // table or list being accumulated
}

func (p *parser) flush() {
	if p.open != nil {
		p.blocks = append(p.blocks, *p.open)
		p.open = nil
	}
}

func (p *parser) emit(b Block) {
	p.flush()
	p.blocks = append(p.blocks, b)
}

// continueOpen returns the open block if it has kind k, else starts a new one.
func (p *parser) continueOpen(k BlockKind, lineNo int) *Block {
	if p.open == nil || p.open.Kind != k {
		p.flush()
		p.open = &Block{Kind: k, Line: lineNo}
	}
	return p.open
}

func (p *parser) line(trim string, lineNo int) {
	switch {
	case trim == "":
		p.emit(Block{Kind: BlockSpacer, Line: lineNo})
		return
	case reRule.MatchString(trim):
		p.emit(Block{Kind: BlockRule, Line: lineNo})
		return
	case strings.HasPrefix(trim, "|"):
		if strings.Contains(trim, "---") {
			return
		}
		t := p.continueOpen(BlockTable, lineNo)
		var row [][]Span
		for _, cell := range strings.Split(trim, "|") {
			if c := strings.TrimSpace(cell); c != "" {
				row = append(row, Inline(c))
			}
		}
		t.Rows = append(t.Rows, row)
	case strings.HasPrefix(trim, "### "):
		p.emit(Block{Kind: BlockHeading, Level: 3, Spans: Inline(strings.TrimSpace(trim[4:])), Line: lineNo})
	case strings.HasPrefix(trim, "## "):
		p.emit(Block{Kind: BlockHeading, Level: 2, Spans: Inline(strings.TrimSpace(trim[3:])), Line: lineNo})
	case strings.HasPrefix(trim, "# "):
		p.emit(Block{Kind: BlockHeading, Level: 1, Spans: Inline(strings.TrimSpace(trim[2:])), Line: lineNo})
	case strings.HasPrefix(trim, "- ") || strings.HasPrefix(trim, "* "):
		l := p.continueOpen(BlockBullets, lineNo)
		l.Items = append(l.Items, Inline(strings.TrimSpace(trim[2:])))
	default:
		if m := reNumbered.FindStringSubmatch(trim); m != nil {
			l := p.continueOpen(BlockNumbered, lineNo)
			n, _ := strconv.Atoi(m[1])
			if len(l.Items) == 0 {
				l.Start = n
			}
			l.Numbers = append(l.Numbers, n)
			l.Items = append(l.Items, Inline(m[2]))
		} else {
			p.emit(Block{Kind: BlockParagraph, Spans: Inline(trim), Line: lineNo})
		}
	}
	if reDrawing.MatchString(trim) {
		p.emit(Block{Kind: BlockDrawingBox, Line: lineNo})
	}
}

// Inline splits a line into text, bold and blank spans.
func Inline(s string) []Span {
	var out []Span
	last := 0
	for _, m := range reInline.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > last {
			out = append(out, Span{Kind: SpanText, Text: s[last:m[0]]})
		}
		if m[2] >= 0 {
			out = append(out, Span{Kind: SpanBold, Text: s[m[2]:m[3]]})
		} else {
			out = append(out, Span{Kind: SpanBlank})
		}
		last = m[1]
	}
	if last < len(s) {
		out = append(out, Span{Kind: SpanText, Text: s[last:]})
	}
	return out
}
