/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mapleprep/internal/domain"
	"mapleprep/internal/markdown"
	"mapleprep/internal/render"
)

// EPUBOptions controls lesson EPUB export.
type EPUBOptions struct {
	Language    string // "en" when empty
	Author      string
	PNG         PNGOptions
	AnswerKey   bool // append the answer sheet after the worksheet
	IncludeQuiz bool
}

const epubCSS = `body { font-family: sans-serif; margin: 1em; }
.slide img { width: 100%; }
.notes { color: #444; font-size: 0.9em; }
table.content-table { border-collapse: collapse; width: 100%; }
table.content-table td { border: 1px solid black; padding: 4px; }
.drawing-box { height: 12em; border: 2px solid black; margin: 1em 0; }
.blank-line { display: inline-block; min-width: 6em; border-bottom: 1px solid black; }
`

type epubPage struct {
	id, href, title string
}

// ExportLessonEPUB writes an EPUB 3 package: one page per slide with its
// thumbnail and teacher notes, then the worksheet (and answer key, quiz).
func ExportLessonEPUB(p domain.LessonPlan, outPath string, opt EPUBOptions) error {
	if len(p.Slides) == 0 {
		return fmt.Errorf("lesson has no slides")
	}
	if opt.Language == "" {
		opt.Language = "en"
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".epub") {
		outPath += ".epub"
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create epub: %w", err)
	}
	defer func() { _ = f.Close() }()
	zw := zip.NewWriter(f)
	fail := func(what string, err error) error {
		_ = zw.Close()
		return fmt.Errorf("%s: %w", what, err)
	}

	// The mimetype entry must come first and stay uncompressed.
	if err := addStoredZipFile(zw, "mimetype", []byte("application/epub+zip")); err != nil {
		return fail("write mimetype", err)
	}
	containerXML := "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
		"<container version=\"1.0\" xmlns=\"urn:oasis:names:tc:opendocument:xmlns:container\">\n" +
		"  <rootfiles>\n" +
		"    <rootfile full-path=\"OEBPS/content.opf\" media-type=\"application/oebps-package+xml\"/>\n" +
		"  </rootfiles>\n" +
		"</container>\n"
	if err := addZipFile(zw, "META-INF/container.xml", []byte(containerXML)); err != nil {
		return fail("write container.xml", err)
	}
	if err := addZipFile(zw, "OEBPS/styles/epub.css", []byte(epubCSS)); err != nil {
		return fail("write css", err)
	}

	var pages []epubPage
	var images []string
	for i, s := range p.Slides {
		img, _ := SlidePNG(s, opt.PNG)
		data, err := EncodePNG(img)
		if err != nil {
			return fail("slide image", err)
		}
		imgName := fmt.Sprintf("images/slide-%d.png", i+1)
		if err := addZipFile(zw, "OEBPS/"+imgName, data); err != nil {
			return fail("zip add image", err)
		}
		images = append(images, imgName)

		var body strings.Builder
		fmt.Fprintf(&body, "<h1>%s</h1>\n<div class=\"slide\"><img src=\"%s\" alt=\"%s\"/></div>\n", xmlEsc(s.Title), imgName, xmlEsc(s.ImageDescription))
		body.WriteString("<ul>\n")
		for _, bp := range s.BulletPoints {
			fmt.Fprintf(&body, "<li>%s</li>\n", xmlEsc(bp))
		}
		body.WriteString("</ul>\n")
		if s.PracticalExample != nil {
			fmt.Fprintf(&body, "<h2>Let's Try It Together</h2>\n<p><strong>%s</strong></p>\n", xmlEsc(s.PracticalExample.Problem))
			for _, st := range s.PracticalExample.SolutionSteps {
				fmt.Fprintf(&body, "<p>%s</p>\n", xmlEsc(st))
			}
		}
		if s.TeacherNotes != "" {
			fmt.Fprintf(&body, "<p class=\"notes\">%s</p>\n", xmlEsc(s.TeacherNotes))
		}
		pg := epubPage{id: fmt.Sprintf("slide-%d", i+1), href: fmt.Sprintf("slide-%d.xhtml", i+1), title: s.Title}
		if err := addZipFile(zw, "OEBPS/"+pg.href, xhtmlPage(pg.title, body.String())); err != nil {
			return fail("write slide xhtml", err)
		}
		pages = append(pages, pg)
	}

	addMarkdown := func(id, title, md string) error {
		doc, _ := markdown.Parse(md, markdown.Options{SkipTitle: true})
		body := "<h1>" + xmlEsc(title) + "</h1>\n" + render.HTML(render.Nodes(doc, render.PrintTheme))
		pg := epubPage{id: id, href: id + ".xhtml", title: title}
		if err := addZipFile(zw, "OEBPS/"+pg.href, xhtmlPage(title, body)); err != nil {
			return err
		}
		pages = append(pages, pg)
		return nil
	}
	if strings.TrimSpace(p.WorksheetMarkdown) != "" {
		if err := addMarkdown("worksheet", "Worksheet", p.WorksheetMarkdown); err != nil {
			return fail("write worksheet", err)
		}
	}
	if opt.AnswerKey && strings.TrimSpace(p.AnswerSheetMarkdown) != "" {
		if err := addMarkdown("answer-key", "Answer Key", p.AnswerSheetMarkdown); err != nil {
			return fail("write answer key", err)
		}
	}
	if opt.IncludeQuiz && len(p.Quiz) > 0 {
		var body strings.Builder
		body.WriteString("<h1>Class Quiz</h1>\n<ol>\n")
		for _, q := range p.Quiz {
			fmt.Fprintf(&body, "<li><p>%s</p><ul>", xmlEsc(q.Question))
			for _, o := range q.Options {
				fmt.Fprintf(&body, "<li>%s</li>", xmlEsc(o))
			}
			body.WriteString("</ul></li>\n")
		}
		body.WriteString("</ol>\n")
		pg := epubPage{id: "quiz", href: "quiz.xhtml", title: "Class Quiz"}
		if err := addZipFile(zw, "OEBPS/"+pg.href, xhtmlPage(pg.title, body.String())); err != nil {
			return fail("write quiz", err)
		}
		pages = append(pages, pg)
	}

	nav := &bytes.Buffer{}
	nav.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	nav.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\" xmlns:epub=\"http://www.idpf.org/2007/ops\">\n<head><title>Contents</title></head>\n<body>\n")
	nav.WriteString("<nav epub:type=\"toc\" id=\"toc\"><ol>\n")
	for _, pg := range pages {
		fmt.Fprintf(nav, "<li><a href=\"%s\">%s</a></li>\n", pg.href, xmlEsc(pg.title))
	}
	nav.WriteString("</ol></nav>\n</body>\n</html>\n")
	if err := addZipFile(zw, "OEBPS/nav.xhtml", nav.Bytes()); err != nil {
		return fail("write nav.xhtml", err)
	}

	uid := "urn:uuid:" + p.ID
	if p.ID == "" {
		uid = "urn:uuid:" + domain.NewID()
	}
	opf := &bytes.Buffer{}
	opf.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	opf.WriteString("<package version=\"3.0\" unique-identifier=\"pub-id\" xmlns=\"http://www.idpf.org/2007/opf\">\n")
	opf.WriteString("  <metadata xmlns:dc=\"http://purl.org/dc/elements/1.1/\">\n")
	fmt.Fprintf(opf, "    <dc:identifier id=\"pub-id\">%s</dc:identifier>\n", xmlEsc(uid))
	fmt.Fprintf(opf, "    <dc:title>%s</dc:title>\n", xmlEsc(p.Topic))
	fmt.Fprintf(opf, "    <dc:language>%s</dc:language>\n", xmlEsc(opt.Language))
	if strings.TrimSpace(opt.Author) != "" {
		fmt.Fprintf(opf, "    <dc:creator>%s</dc:creator>\n", xmlEsc(opt.Author))
	}
	fmt.Fprintf(opf, "    <dc:description>%s</dc:description>\n", xmlEsc(p.GradeLevel+" • "+p.Subject))
	fmt.Fprintf(opf, "    <meta property=\"dcterms:modified\">%s</meta>\n", time.Now().UTC().Format("2006-01-02T15:04:05Z"))
	opf.WriteString("  </metadata>\n  <manifest>\n")
	opf.WriteString("    <item id=\"nav\" href=\"nav.xhtml\" media-type=\"application/xhtml+xml\" properties=\"nav\"/>\n")
	opf.WriteString("    <item id=\"css\" href=\"styles/epub.css\" media-type=\"text/css\"/>\n")
	for i, im := range images {
		props := ""
		if i == 0 {
			props = " properties=\"cover-image\""
		}
		fmt.Fprintf(opf, "    <item id=\"img-%d\" href=\"%s\" media-type=\"image/png\"%s/>\n", i+1, im, props)
	}
	for _, pg := range pages {
		fmt.Fprintf(opf, "    <item id=\"%s\" href=\"%s\" media-type=\"application/xhtml+xml\"/>\n", pg.id, pg.href)
	}
	opf.WriteString("  </manifest>\n  <spine>\n")
	for _, pg := range pages {
		fmt.Fprintf(opf, "    <itemref idref=\"%s\"/>\n", pg.id)
	}
	opf.WriteString("  </spine>\n</package>\n")
	if err := addZipFile(zw, "OEBPS/content.opf", opf.Bytes()); err != nil {
		return fail("write content.opf", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func xhtmlPage(title, body string) []byte {
	return []byte("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
		"<html xmlns=\"http://www.w3.org/1999/xhtml\">\n<head>\n<meta charset=\"utf-8\"/>\n" +
		"<title>" + xmlEsc(title) + "</title>\n" +
		"<link rel=\"stylesheet\" type=\"text/css\" href=\"styles/epub.css\"/>\n" +
		"</head>\n<body>\n" + body + "</body>\n</html>\n")
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// addStoredZipFile writes an entry with the STORE method (no compression).
func addStoredZipFile(zw *zip.Writer, name string, data []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Store, Modified: time.Now()}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func xmlEsc(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
