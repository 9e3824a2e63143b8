/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"mapleprep/internal/domain"
)

const sampleWorksheet = `# Plant Parts

## Vocabulary
| Word | Meaning |
|---|---|
| root | takes in water |

1. The stem carries ______ to the leaves.
2. Draw a plant and label its parts.

- Sketch a seed`

func sampleLesson(t *testing.T) domain.LessonPlan {
	t.Helper()
	return domain.LessonPlan{
		ID:                  "lesson-1",
		Topic:               "Plant <Parts>",
		GradeLevel:          "Grade 3",
		Subject:             "Science",
		WorksheetMarkdown:   sampleWorksheet,
		AnswerSheetMarkdown: "# Plant Parts\n1. **water**",
		Slides: []domain.Slide{
			{Title: "Roots", BulletPoints: []string{"Roots hold the plant", "Roots drink water"}, ImageDescription: "A carrot", TeacherNotes: "Ask about carrots."},
			{Title: "Leaves", BulletPoints: []string{"Leaves make food"}, Base64Image: tinyPNG(t), CustomElements: []domain.Element{
				{ID: "e1", X: 50, Y: 50, Scale: 1, Body: domain.TextBody{Text: "Sun"}},
			}},
		},
		Quiz: []domain.QuizQuestion{{Question: "What do roots do?", Options: []string{"Drink", "Sing"}, CorrectAnswer: "Drink"}},
	}
}

func tinyPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
