/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns a parsed markdown document into a node tree and
// writes it as HTML. The screen and print themes share the walk, so a
// worksheet shows the same headings, rows and drawing boxes in both.
package render

import (
	"html"
	"strconv"
	"strings"

	"mapleprep/internal/markdown"
)

// Node is an HTML element or, when Tag is empty, a text run.
type Node struct {
	Tag      string
	Class    string
	Text     string
	Children []Node
}

// Theme decides tags and classes per block kind.
type Theme struct {
	Name     string
	Root     string
	Headings [3]string // classes for levels 1..3
	Para     string
	Bold     string
	Blank    string
	// Tables render as <table> rows when true, as div grids otherwise.
	HTMLTables bool
	TableClass string
	RowClass   string
	CellClass  string
	// HTMLLists uses <ul><li>; otherwise each item is a div with a marker span.
	HTMLLists   bool
	ItemClass   string
	MarkerClass string
	// NumbersAsParagraphs prints "N. text" paragraphs for numbered items.
	NumbersAsParagraphs bool
	DrawingBox          string
	DrawingLabel        string
	RuleClass           string
	SkipRules           bool
	SpacerTag           string
	SpacerClass         string
}

// ScreenTheme is the on-screen worksheet look.
var ScreenTheme = Theme{
	Name: "screen",
	Root: "space-y-4 font-serif text-slate-800 leading-relaxed text-lg",
	Headings: [3]string{
		"text-4xl font-bold text-center mb-6 mt-8",
		"text-2xl font-bold border-b-2 border-slate-900 pb-2 mt-8 mb-4",
		"text-xl font-bold uppercase tracking-wider text-slate-700 mt-6 mb-3",
	},
	Para:         "mb-2",
	Bold:         "font-bold",
	Blank:        "inline-block border-b-2 border-slate-800 w-24 mx-1",
	RowClass:     "grid grid-flow-col auto-cols-fr gap-4 border-b border-slate-200 py-2",
	CellClass:    "font-medium text-slate-700",
	ItemClass:    "flex gap-3 ml-4",
	MarkerClass:  "font-bold",
	DrawingBox:   "w-full h-48 border-2 border-slate-300 rounded-lg bg-slate-50 flex items-center justify-center text-slate-400",
	DrawingLabel: "Drawing Space",
	RuleClass:    "border-t-2 border-slate-200 my-6",
	SpacerTag:    "div",
	SpacerClass:  "h-4",
}

// PrintTheme matches the stylesheet of the print document.
var PrintTheme = Theme{
	Name:                "print",
	HTMLTables:          true,
	TableClass:          "content-table",
	Blank:               "blank-line",
	HTMLLists:           true,
	NumbersAsParagraphs: true,
	DrawingBox:          "drawing-box",
	SkipRules:           true,
	SpacerTag:           "br",
}

// Display renders doc with the screen theme.
func Display(doc markdown.Document) []Node { return Nodes(doc, ScreenTheme) }

// Nodes walks the block tree and builds nodes for theme th.
func Nodes(doc markdown.Document, th Theme) []Node {
	var out []Node
	for _, b := range doc.Blocks {
		switch b.Kind {
		case markdown.BlockHeading:
			lv := b.Level
			if lv < 1 || lv > 3 {
				lv = 3
			}
			out = append(out, Node{Tag: "h" + strconv.Itoa(lv), Class: th.Headings[lv-1], Children: spans(b.Spans, th)})
		case markdown.BlockParagraph:
			out = append(out, Node{Tag: "p", Class: th.Para, Children: spans(b.Spans, th)})
		case markdown.BlockTable:
			out = append(out, table(b, th)...)
		case markdown.BlockBullets:
			out = append(out, list(b, th, false)...)
		case markdown.BlockNumbered:
			out = append(out, list(b, th, true)...)
		case markdown.BlockDrawingBox:
			n := Node{Tag: "div", Class: th.DrawingBox}
			if th.DrawingLabel != "" {
				n.Children = []Node{{Text: th.DrawingLabel}}
			}
			out = append(out, n)
		case markdown.BlockRule:
			if !th.SkipRules {
				out = append(out, Node{Tag: "hr", Class: th.RuleClass})
			}
		case markdown.BlockSpacer:
			out = append(out, Node{Tag: th.SpacerTag, Class: th.SpacerClass})
		}
	}
	return out
}

func table(b markdown.Block, th Theme) []Node {
	rows := make([]Node, 0, len(b.Rows))
	cellTag, rowTag := "div", "div"
	if th.HTMLTables {
		cellTag, rowTag = "td", "tr"
	}
	for _, r := range b.Rows {
		row := Node{Tag: rowTag, Class: th.RowClass}
		for _, c := range r {
			row.Children = append(row.Children, Node{Tag: cellTag, Class: th.CellClass, Children: spans(c, th)})
		}
		rows = append(rows, row)
	}
	if !th.HTMLTables {
		return rows
	}
	return []Node{{Tag: "table", Class: th.TableClass, Children: rows}}
}

func list(b markdown.Block, th Theme, numbered bool) []Node {
	marker := func(i int) string {
		if !numbered {
			return "•"
		}
		if i < len(b.Numbers) {
			return strconv.Itoa(b.Numbers[i]) + "."
		}
		return strconv.Itoa(b.Start+i) + "."
	}
	if numbered && th.NumbersAsParagraphs {
		out := make([]Node, 0, len(b.Items))
		for i, it := range b.Items {
			kids := append([]Node{{Text: marker(i) + " "}}, spans(it, th)...)
			out = append(out, Node{Tag: "p", Class: th.Para, Children: kids})
		}
		return out
	}
	if th.HTMLLists {
		ul := Node{Tag: "ul"}
		if numbered {
			ul.Tag = "ol"
		}
		for _, it := range b.Items {
			ul.Children = append(ul.Children, Node{Tag: "li", Children: spans(it, th)})
		}
		return []Node{ul}
	}
	out := make([]Node, 0, len(b.Items))
	for i, it := range b.Items {
		out = append(out, Node{Tag: "div", Class: th.ItemClass, Children: []Node{
			{Tag: "span", Class: th.MarkerClass, Children: []Node{{Text: marker(i)}}},
			{Tag: "span", Children: spans(it, th)},
		}})
	}
	return out
}

func spans(ss []markdown.Span, th Theme) []Node {
	out := make([]Node, 0, len(ss))
	for _, s := range ss {
		switch s.Kind {
		case markdown.SpanBold:
			out = append(out, Node{Tag: "strong", Class: th.Bold, Children: []Node{{Text: s.Text}}})
		case markdown.SpanBlank:
			out = append(out, Node{Tag: "span", Class: th.Blank})
		default:
			out = append(out, Node{Text: s.Text})
		}
	}
	return out
}

var voidTags = map[string]bool{"br": true, "hr": true}

// HTML writes nodes as an escaped HTML fragment.
func HTML(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		write(&b, n)
	}
	return b.String()
}

// Fragment renders doc with th, wrapped in the theme root when it has one.
func Fragment(doc markdown.Document, th Theme) string {
	body := HTML(Nodes(doc, th))
	if th.Root == "" {
		return body
	}
	return `<div class="` + html.EscapeString(th.Root) + `">` + body + `</div>`
}

func write(b *strings.Builder, n Node) {
	if n.Tag == "" {
		b.WriteString(html.EscapeString(n.Text))
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	if n.Class != "" {
		b.WriteString(` class="`)
		b.WriteString(html.EscapeString(n.Class))
		b.WriteByte('"')
	}
	if voidTags[n.Tag] {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	b.WriteString(html.EscapeString(n.Text))
	for _, c := range n.Children {
		write(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// Count returns how many nodes in the tree have tag and, if class is not
// empty, that class.
func Count(nodes []Node, tag, class string) int {
	n := 0
	for _, nd := range nodes {
		if nd.Tag == tag && (class == "" || nd.Class == class) {
			n++
		}
		n += Count(nd.Children, tag, class)
	}
	return n
}
