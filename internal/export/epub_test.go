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
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportLessonEPUBStructure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plants")
	if err := ExportLessonEPUB(sampleLesson(t), out, EPUBOptions{AnswerKey: true, IncludeQuiz: true, PNG: PNGOptions{Width: 160}}); err != nil {
		t.Fatalf("export: %v", err)
	}
	rd, err := zip.OpenReader(out + ".epub")
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer func() { _ = rd.Close() }()

	if rd.File[0].Name != "mimetype" || rd.File[0].Method != zip.Store {
		t.Fatalf("first entry must be a stored mimetype, got %s", rd.File[0].Name)
	}
	want := map[string]bool{
		"META-INF/container.xml":   false,
		"OEBPS/content.opf":        false,
		"OEBPS/nav.xhtml":          false,
		"OEBPS/styles/epub.css":    false,
		"OEBPS/images/slide-1.png": false,
		"OEBPS/slide-2.xhtml":      false,
		"OEBPS/worksheet.xhtml":    false,
		"OEBPS/answer-key.xhtml":   false,
		"OEBPS/quiz.xhtml":         false,
	}
	var opf string
	for _, f := range rd.File {
		if _, ok := want[f.Name]; ok {
			want[f.Name] = true
		}
		if f.Name == "OEBPS/content.opf" {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open opf: %v", err)
			}
			b, _ := io.ReadAll(rc)
			_ = rc.Close()
			opf = string(b)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("missing %s", name)
		}
	}
	if !strings.Contains(opf, "<dc:title>Plant &lt;Parts&gt;</dc:title>") || !strings.Contains(opf, "urn:uuid:lesson-1") {
		t.Fatalf("metadata missing in opf:\n%s", opf)
	}
}

func TestExportLessonEPUBNeedsSlides(t *testing.T) {
	p := sampleLesson(t)
	p.Slides = nil
	if err := ExportLessonEPUB(p, filepath.Join(t.TempDir(), "x.epub"), EPUBOptions{}); err == nil {
		t.Fatalf("expected error")
	}
}
