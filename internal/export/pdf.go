/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"mapleprep/internal/markdown"
)

// Page geometry in points: US letter with 0.75in margins.
const (
	pdfMargin     = 54.0
	pdfDrawingBox = 225.0 // 300 css px
	pdfLine       = 15.0
)

// WorksheetPDF renders the same block tree as PrintHTML into a PDF.
// Built-in Helvetica keeps the file small and needs no font embedding.
func WorksheetPDF(w io.Writer, job PrintJob) error {
	doc, _ := markdown.Parse(job.Markdown, markdown.Options{SkipTitle: true})

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(job.Topic, true)
	pdf.SetAuthor("MaplePrep", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin + 10)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(136, 136, 136)
		pdf.CellFormat(0, 10, "Generated by MaplePrep", "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin

	// Header: topic and meta on the left, fields or answer key on the right.
	top := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(contentW*0.4, 24, tr(strings.ToUpper(job.Topic)), "", "L", false)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(68, 68, 68)
	pdf.MultiCell(contentW*0.4, 16, tr(job.Grade+" • "+job.Subject), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	leftBottom := pdf.GetY()

	pdf.SetXY(pdfMargin+contentW*0.4, top)
	rightW := contentW * 0.6
	if job.AnswerKey {
		pdf.SetFont("Helvetica", "B", 16)
		bw := pdf.GetStringWidth("ANSWER KEY") + 30
		pdf.SetX(pdfMargin + contentW - bw)
		pdf.SetLineWidth(2.25)
		pdf.CellFormat(bw, 28, "ANSWER KEY", "1", 1, "C", false, 0, "")
	} else {
		pdf.SetFont("Helvetica", "B", 11)
		for _, f := range []struct {
			label string
			line  float64
		}{{"Name: ", 262}, {"Date: ", 150}} {
			pdf.SetX(pdfMargin + contentW*0.4)
			pdf.CellFormat(rightW, 20, f.label+strings.Repeat("_", int(f.line/6)), "", 1, "R", false, 0, "")
		}
		pdf.SetX(pdfMargin + contentW*0.4)
		pdf.CellFormat(rightW, 20, "Score: __________ / __________", "", 1, "R", false, 0, "")
	}
	y := pdf.GetY()
	if leftBottom > y {
		y = leftBottom
	}
	pdf.SetLineWidth(1.5)
	pdf.Line(pdfMargin, y+6, pdfMargin+contentW, y+6)
	pdf.SetY(y + 28)
	pdf.SetLineWidth(0.75)

	for _, b := range doc.Blocks {
		switch b.Kind {
		case markdown.BlockHeading:
			size := map[int]float64{1: 18, 2: 14, 3: 12}[b.Level]
			pdf.Ln(8)
			pdf.SetFont("Helvetica", "B", size)
			text := markdown.PlainText(b.Spans)
			if b.Level == 3 {
				text = strings.ToUpper(text)
			}
			pdf.MultiCell(contentW, size+4, tr(text), "", "L", false)
			if b.Level == 1 {
				pdf.SetDrawColor(204, 204, 204)
				pdf.Line(pdfMargin, pdf.GetY(), pdfMargin+contentW, pdf.GetY())
				pdf.SetDrawColor(0, 0, 0)
			}
			pdf.Ln(4)
		case markdown.BlockParagraph:
			writeSpans(pdf, tr, b.Spans)
			pdf.Ln(pdfLine + 4)
		case markdown.BlockBullets, markdown.BlockNumbered:
			for i, it := range b.Items {
				pdf.SetX(pdfMargin + 12)
				pdf.SetFont("Helvetica", "", 11)
				marker := "• "
				if b.Kind == markdown.BlockNumbered {
					marker = strconv.Itoa(numberAt(b, i)) + ". "
				}
				pdf.Write(pdfLine, tr(marker))
				writeSpans(pdf, tr, it)
				pdf.Ln(pdfLine + 2)
			}
			pdf.Ln(4)
		case markdown.BlockTable:
			pdfTable(pdf, tr, b.Rows, contentW)
			pdf.Ln(10)
		case markdown.BlockDrawingBox:
			if pdf.GetY()+pdfDrawingBox > pageH-pdfMargin {
				pdf.AddPage()
			}
			pdf.SetLineWidth(1.5)
			pdf.Rect(pdfMargin, pdf.GetY()+4, contentW, pdfDrawingBox, "D")
			pdf.SetLineWidth(0.75)
			pdf.SetY(pdf.GetY() + pdfDrawingBox + 15)
		case markdown.BlockSpacer:
			pdf.Ln(8)
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// WriteWorksheetPDF renders job into outPath, creating parent directories.
func WriteWorksheetPDF(job PrintJob, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := WorksheetPDF(f, job); err != nil {
		_ = f.Close()
		return fmt.Errorf("write pdf: %w", err)
	}
	return f.Close()
}

func numberAt(b markdown.Block, i int) int {
	if i < len(b.Numbers) {
		return b.Numbers[i]
	}
	return b.Start + i
}

func writeSpans(pdf *gofpdf.Fpdf, tr func(string) string, spans []markdown.Span) {
	for _, s := range spans {
		switch s.Kind {
		case markdown.SpanBold:
			pdf.SetFont("Helvetica", "B", 11)
			pdf.Write(pdfLine, tr(s.Text))
		case markdown.SpanBlank:
			pdf.SetFont("Helvetica", "", 11)
			pdf.Write(pdfLine, " ________________ ")
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.Write(pdfLine, tr(s.Text))
		}
	}
	pdf.SetFont("Helvetica", "", 11)
}

func pdfTable(pdf *gofpdf.Fpdf, tr func(string) string, rows [][][]markdown.Span, width float64) {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return
	}
	colW := width / float64(cols)
	_, pageH := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "", 11)
	for _, r := range rows {
		lines := 1
		texts := make([]string, cols)
		for i := range texts {
			if i < len(r) {
				texts[i] = tr(markdown.PlainText(r[i]))
			}
			if n := len(pdf.SplitLines([]byte(texts[i]), colW-12)); n > lines {
				lines = n
			}
		}
		h := float64(lines)*pdfLine + 12
		if pdf.GetY()+h > pageH-pdfMargin {
			pdf.AddPage()
		}
		y := pdf.GetY()
		for i, t := range texts {
			x := pdfMargin + float64(i)*colW
			pdf.Rect(x, y, colW, h, "D")
			pdf.SetXY(x+6, y+6)
			pdf.MultiCell(colW-12, pdfLine, t, "", "L", false)
		}
		pdf.SetXY(pdfMargin, y+h)
	}
}
