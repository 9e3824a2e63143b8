/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"path/filepath"
	"testing"
)

func TestBatchExportClassroom(t *testing.T) {
	dir := t.TempDir()
	paths, err := BatchExport(sampleLesson(t), BatchOptions{Preset: PresetClassroom, OutDir: dir})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	want := []string{"worksheet.html", "answer-key.html", "worksheet.pdf", "answer-key.pdf"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i, w := range want {
		if paths[i] != filepath.Join(dir, "classroom", w) {
			t.Fatalf("path %d = %s, want %s", i, paths[i], w)
		}
	}
}

func TestBatchExportDigitalAndUnknown(t *testing.T) {
	dir := t.TempDir()
	paths, err := BatchExport(sampleLesson(t), BatchOptions{Preset: PresetDigital, OutDir: dir, PNG: PNGOptions{Width: 160}})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(paths) != 3 || filepath.Base(paths[2]) != "plant-parts.epub" {
		t.Fatalf("paths = %v", paths)
	}
	if _, err := BatchExport(sampleLesson(t), BatchOptions{Formats: []string{"cbz"}, OutDir: dir}); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{"Plant <Parts>": "plant-parts", "  ": "lesson", "Fractions: 1/2!": "fractions-1-2"}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
