/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestSlidePNG(t *testing.T) {
	p := sampleLesson(t)
	img, err := SlidePNG(p.Slides[1], PNGOptions{Width: 320, Elements: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Fatalf("bounds = %v", b)
	}

	bad := p.Slides[0]
	bad.Base64Image = "not base64!"
	img, err = SlidePNG(bad, PNGOptions{Width: 320})
	if err == nil || img == nil {
		t.Fatalf("want placeholder image and error, got %v %v", img, err)
	}
}

func TestFitKeepsAspect(t *testing.T) {
	got := fit(image.Rect(0, 0, 4, 2), image.Rect(0, 0, 100, 100))
	if got != image.Rect(0, 25, 100, 75) {
		t.Fatalf("fit = %v", got)
	}
}

func TestExportSlidePNGs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "png")
	paths, err := ExportSlidePNGs(sampleLesson(t), dir, PNGOptions{Width: 160})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[1]) != "slide-2.png" {
		t.Fatalf("paths = %v", paths)
	}
	for _, p := range paths {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("stat %s: %v", p, err)
		}
	}
}
