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
	"path/filepath"
	"strings"

	"mapleprep/internal/domain"
)

// PresetName represents a named export preset.
type PresetName string

const (
	// PresetClassroom produces what a teacher prints: worksheet and answer key.
	PresetClassroom PresetName = "classroom"
	// PresetDigital produces slide images and an EPUB for tablets.
	PresetDigital PresetName = "digital"
	PresetAll     PresetName = "all"
)

// Formats understood by BatchExport.
const (
	FormatPrint = "print"
	FormatPDF   = "pdf"
	FormatPNG   = "png"
	FormatEPUB  = "epub"
)

// BatchOptions controls exporting one lesson into several formats.
//
// Files land under OutDir/<preset>/: worksheet.html and answer-key.html
// for print, worksheet.pdf and answer-key.pdf for pdf, png/slide-<n>.png and
// <topic>.epub.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // empty means the preset defaults
	OutDir  string
	PNG     PNGOptions
}

// BatchExport runs the exports and returns the paths it wrote.
func BatchExport(p domain.LessonPlan, opt BatchOptions) ([]string, error) {
	if opt.OutDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	preset := opt.Preset
	if preset == "" {
		preset = "custom"
	}
	base := filepath.Join(opt.OutDir, string(preset))
	hasKey := strings.TrimSpace(p.AnswerSheetMarkdown) != ""

	var out []string
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case FormatPrint:
			for _, key := range keyVariants(hasKey) {
				path := filepath.Join(base, printName(key, ".html"))
				if err := writeFile(path, []byte(PrintHTML(LessonPrintJob(p, key)))); err != nil {
					return out, fmt.Errorf("print export: %w", err)
				}
				out = append(out, path)
			}
		case FormatPDF:
			for _, key := range keyVariants(hasKey) {
				path := filepath.Join(base, printName(key, ".pdf"))
				if err := WriteWorksheetPDF(LessonPrintJob(p, key), path); err != nil {
					return out, fmt.Errorf("pdf export: %w", err)
				}
				out = append(out, path)
			}
		case FormatPNG:
			paths, err := ExportSlidePNGs(p, filepath.Join(base, "png"), opt.PNG)
			out = append(out, paths...)
			if err != nil {
				return out, fmt.Errorf("png export: %w", err)
			}
		case FormatEPUB:
			path := filepath.Join(base, Slug(p.Topic)+".epub")
			if err := ExportLessonEPUB(p, path, EPUBOptions{PNG: opt.PNG, AnswerKey: hasKey, IncludeQuiz: true}); err != nil {
				return out, fmt.Errorf("epub export: %w", err)
			}
			out = append(out, path)
		default:
			return out, fmt.Errorf("unknown format: %s", f)
		}
	}
	return out, nil
}

func keyVariants(hasKey bool) []bool {
	if hasKey {
		return []bool{false, true}
	}
	return []bool{false}
}

func printName(key bool, ext string) string {
	if key {
		return "answer-key" + ext
	}
	return "worksheet" + ext
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetClassroom:
		return []string{FormatPrint, FormatPDF}
	case PresetDigital:
		return []string{FormatPNG, FormatEPUB}
	case PresetAll:
		return []string{FormatPrint, FormatPDF, FormatPNG, FormatEPUB}
	default:
		return []string{FormatPDF}
	}
}

// Slug turns a topic into a lowercase file name.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "lesson"
	}
	return out
}
