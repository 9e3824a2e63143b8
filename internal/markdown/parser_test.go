/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package markdown

import "testing"

const worksheet = `# Fractions Worksheet

## Part A: Vocabulary
| Word | Meaning |
|---|---|
| numerator | top number |
| denominator | bottom number |

### Practice
1. Write 1/2 as **two quarters**: ______
2. Draw a circle and shade 3/4 of it.
- Bonus: sketch a pizza
* Explain your thinking

---
![diagram](http://example.com/x.png)Done!`

func TestParseWorksheetStructure(t *testing.T) {
	doc, errs := Parse(worksheet, Options{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if got := doc.HeadingLevels(); len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("heading levels = %v", got)
	}
	if n := doc.TableRows(); n != 3 {
		t.Fatalf("table rows = %d, want 3 (separator dropped)", n)
	}
	// "Draw ... shade" is one line, so one box; "sketch" adds the second.
	if n := doc.DrawingBoxes(); n != 2 {
		t.Fatalf("drawing boxes = %d, want 2", n)
	}

	var kinds []BlockKind
	for _, b := range doc.Blocks {
		kinds = append(kinds, b.Kind)
	}
	want := []BlockKind{
		BlockHeading, BlockSpacer, BlockHeading, BlockTable, BlockSpacer, BlockHeading,
		BlockNumbered, BlockDrawingBox, BlockBullets, BlockDrawingBox, BlockBullets,
		BlockSpacer, BlockRule, BlockParagraph,
	}
	if len(kinds) != len(want) {
		t.Fatalf("blocks = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("block %d = %v, want %v (all %v)", i, kinds[i], want[i], kinds)
		}
	}

	num := doc.Blocks[6]
	if num.Start != 1 || len(num.Items) != 2 {
		t.Fatalf("numbered list = %+v", num)
	}
	first := num.Items[0]
	if len(first) != 4 || first[1].Kind != SpanBold || first[1].Text != "two quarters" || first[3].Kind != SpanBlank {
		t.Fatalf("inline spans = %+v", first)
	}
	if last := doc.Blocks[len(doc.Blocks)-1]; PlainText(last.Spans) != "Done!" {
		t.Fatalf("image not stripped: %q", PlainText(last.Spans))
	}
}

func TestParseTableCells(t *testing.T) {
	doc, _ := Parse("| a | | b |\n| c |", Options{})
	if len(doc.Blocks) != 1 || doc.Blocks[0].Kind != BlockTable {
		t.Fatalf("blocks = %+v", doc.Blocks)
	}
	rows := doc.Blocks[0].Rows
	if len(rows) != 2 || len(rows[0]) != 2 || len(rows[1]) != 1 {
		t.Fatalf("rows = %+v", rows)
	}
	if PlainText(rows[0][1]) != "b" {
		t.Fatalf("cell = %q", PlainText(rows[0][1]))
	}
}

func TestDrawingBoxEndsTable(t *testing.T) {
	doc, _ := Parse("| Draw a cat | box |\n| next | row |", Options{})
	if len(doc.Blocks) != 3 {
		t.Fatalf("blocks = %+v", doc.Blocks)
	}
	if doc.Blocks[0].Kind != BlockTable || doc.Blocks[1].Kind != BlockDrawingBox || doc.Blocks[2].Kind != BlockTable {
		t.Fatalf("unexpected order: %+v", doc.Blocks)
	}
	if doc.TableRows() != 2 {
		t.Fatalf("table rows = %d", doc.TableRows())
	}
}

func TestDrawingKeywordIsWholeWord(t *testing.T) {
	cases := map[string]int{
		"Draw a line":          1,
		"ILLUSTRATE the cycle": 1,
		"The drawer is open":   0,
		"Withdraw the answer":  0,
		"Shaded regions":       0,
		"sketch, then draw":    1,
	}
	for in, want := range cases {
		doc, _ := Parse(in, Options{})
		if got := doc.DrawingBoxes(); got != want {
			t.Errorf("%q: boxes = %d, want %d", in, got, want)
		}
	}
}

func TestSkipTitle(t *testing.T) {
	doc, _ := Parse("\n\n# Topic\n## Section\ntext", Options{SkipTitle: true})
	if lv := doc.HeadingLevels(); len(lv) != 1 || lv[0] != 2 {
		t.Fatalf("heading levels = %v", lv)
	}
	if doc.Blocks[0].Kind != BlockHeading {
		t.Fatalf("leading blanks kept: %+v", doc.Blocks[0])
	}

	// Only a first-line title is skipped.
	doc, _ = Parse("intro\n# Topic", Options{SkipTitle: true})
	if lv := doc.HeadingLevels(); len(lv) != 1 || lv[0] != 1 {
		t.Fatalf("heading levels = %v", lv)
	}
}

func TestDeepHeadingIsParagraph(t *testing.T) {
	doc, _ := Parse("#### small\n#nospace", Options{})
	for _, b := range doc.Blocks {
		if b.Kind != BlockParagraph {
			t.Fatalf("got %v, want paragraph", b.Kind)
		}
	}
}

func TestInlineAdjacentMarks(t *testing.T) {
	spans := Inline("**a**___**b**")
	if len(spans) != 3 || spans[0].Kind != SpanBold || spans[1].Kind != SpanBlank || spans[2].Text != "b" {
		t.Fatalf("spans = %+v", spans)
	}
	if got := Inline("__ not a blank"); len(got) != 1 || got[0].Kind != SpanText {
		t.Fatalf("two underscores became %+v", got)
	}
}
