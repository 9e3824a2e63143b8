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
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"mapleprep/internal/domain"
	"mapleprep/internal/markdown"
	"mapleprep/internal/render"
)

// PrintJob is everything the print document needs. Markdown is the
// worksheet or answer key body; AnswerKey swaps the name fields for a banner.
type PrintJob struct {
	Topic     string
	Grade     string
	Subject   string
	Markdown  string
	AnswerKey bool
}

// LessonPrintJob picks the worksheet or, when answerKey is set and the lesson
// has one, the answer sheet. The banner follows answerKey either way.
func LessonPrintJob(p domain.LessonPlan, answerKey bool) PrintJob {
	md := p.WorksheetMarkdown
	if answerKey && p.AnswerSheetMarkdown != "" {
		md = p.AnswerSheetMarkdown
	}
	return PrintJob{Topic: p.Topic, Grade: p.GradeLevel, Subject: p.Subject, Markdown: md, AnswerKey: answerKey}
}

// WorksheetPrintJob prints a standalone generated worksheet.
func WorksheetPrintJob(w domain.GeneratedWorksheet, teacher bool) PrintJob {
	md := w.StudentMarkdown
	if teacher {
		md = w.TeacherMarkdown
	}
	return PrintJob{Topic: w.Topic, Grade: w.Grade, Subject: w.Subject, Markdown: md, AnswerKey: teacher}
}

const printCSS = `@page { size: letter; margin: 0.75in; }
body { font-family: 'Inter', sans-serif; font-size: 11pt; color: black; line-height: 1.5; margin: 0; padding: 20px; }
table.header-table { width: 100%; border-bottom: 2px solid black; margin-bottom: 30px; padding-bottom: 10px; border-collapse: collapse; }
td.header-left { width: 40%; vertical-align: bottom; }
td.header-right { width: 60%; vertical-align: bottom; text-align: right; }
.topic-title { font-size: 20pt; font-weight: 800; text-transform: uppercase; margin: 0; line-height: 1.2; }
.meta-info { font-size: 11pt; font-weight: bold; color: #444; margin-top: 5px; }
.field-row { margin-bottom: 10px; font-weight: bold; font-size: 11pt; }
.line { display: inline-block; border-bottom: 1px solid black; }
.line.long { width: 350px; }
.line.med { width: 200px; }
.line.short { width: 80px; }
h1 { font-size: 18pt; margin-top: 20px; border-bottom: 1px solid #ccc; }
h2 { font-size: 14pt; margin-top: 15px; font-weight: bold; }
h3 { font-size: 12pt; text-transform: uppercase; margin-top: 15px; color: #444; }
table.content-table { width: 100%; border-collapse: collapse; margin: 15px 0; page-break-inside: avoid; }
table.content-table td { border: 1px solid black; padding: 8px; vertical-align: top; }
.drawing-box { height: 300px; border: 2px solid black; margin: 15px 0; background: #fff; page-break-inside: avoid; }
.blank-line { display: inline-block; min-width: 100px; border-bottom: 1px solid black; }
ul { padding-left: 20px; margin: 10px 0; }
li { margin-bottom: 5px; }
p { margin-bottom: 10px; }
.footer { margin-top: 50px; text-align: center; font-size: 9pt; color: #888; border-top: 1px solid #ddd; padding-top: 10px; }
`

const (
	fontLink     = `https://fonts.googleapis.com/css2?family=Inter:wght@400;700&display=swap`
	answerBanner = `<div style="font-size: 16pt; font-weight: bold; border: 3px solid black; padding: 5px 15px; display:inline-block;">ANSWER KEY</div>`
	nameFields   = `<div class="field-row">Name: <span class="line long"></span></div>
<div class="field-row">Date: <span class="line med"></span></div>
<div class="field-row">Score: <span class="line short"></span> / <span class="line short"></span></div>`
)

// PrintHTML builds the standalone, letter sized print document.
func PrintHTML(job PrintJob) string {
	doc, _ := markdown.Parse(job.Markdown, markdown.Options{SkipTitle: true})
	right := nameFields
	if job.AnswerKey {
		right = answerBanner
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Worksheet Print</title>\n")
	fmt.Fprintf(&b, "<link href=%q rel=\"stylesheet\">\n", fontLink)
	b.WriteString("<style>\n" + printCSS + "</style>\n</head>\n<body>\n")
	b.WriteString("<table class=\"header-table\">\n<tr>\n<td class=\"header-left\">\n")
	fmt.Fprintf(&b, "<div class=\"topic-title\">%s</div>\n", html.EscapeString(job.Topic))
	fmt.Fprintf(&b, "<div class=\"meta-info\">%s • %s</div>\n", html.EscapeString(job.Grade), html.EscapeString(job.Subject))
	b.WriteString("</td>\n<td class=\"header-right\">\n" + right + "\n</td>\n</tr>\n</table>\n")
	b.WriteString("<div id=\"content\">")
	b.WriteString(render.HTML(render.Nodes(doc, render.PrintTheme)))
	b.WriteString("</div>\n<div class=\"footer\">Generated by MaplePrep</div>\n</body>\n</html>\n")
	return b.String()
}

// WritePrintFile writes the print document into dir (the OS temp dir when
// empty) and returns its path.
func WritePrintFile(job PrintJob, dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure print dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "mapleprep-print-*.html")
	if err != nil {
		return "", fmt.Errorf("create print file: %w", err)
	}
	if _, err := f.WriteString(PrintHTML(job)); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write print file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close print file: %w", err)
	}
	return filepath.Clean(f.Name()), nil
}

// Opener launches the platform viewer for a file. Tests replace it.
var Opener = func(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}

// Print writes the document and hands it to the platform viewer, whose
// print dialog takes over from there.
func Print(job PrintJob, dir string) (string, error) {
	path, err := WritePrintFile(job, dir)
	if err != nil {
		return "", err
	}
	if err := Opener(path); err != nil {
		return path, fmt.Errorf("open print file: %w", err)
	}
	return path, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
