/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ai

import (
	"fmt"
	"strings"

	"mapleprep/internal/domain"
)

func lessonPrompt(p domain.GenerationParams) string {
	return fmt.Sprintf(`Create a comprehensive lesson plan for a %s class in %s, Canada.
Subject: %s
Topic: %s

The lesson plan must align with the %s curriculum standards for %s.

Please generate:
1. Learning objectives.
2. A slide presentation structure with exactly %d slides. For each slide:
   - A clear title and 3-5 bullet points.
   - Teacher notes to read aloud.
   - A suggested interaction or mini-activity.
   - A detailed image description for an illustration.
   - A practicalExample: a concrete worked problem with step-by-step solution steps.
3. 2-3 engaging classroom activities with durations and materials.
4. A printable student worksheet in Markdown format.
5. A separate Teacher Answer Key for the worksheet in Markdown format.
6. A quiz of 15 to 25 multiple-choice questions with 4 options each, covering the whole lesson.

Use Canadian spelling throughout (e.g. colour, centre, neighbour).`,
		p.Grade, p.Province, p.Subject, p.Topic, p.Province, p.Grade, p.SlideCount)
}

func imagePrompt(prompt string, style domain.ImageStyle) string {
	if style == domain.ImageChalkboard {
		return `Generate a precise educational diagram on a dark background (chalkboard style).
Subject: ` + prompt + `

STYLE GUIDELINES:
- Dark slate or black background with white and coloured chalk-like lines.
- Clear labels in neat handwriting.
- Show the steps of the problem visually where possible.
- No photorealism. Keep it simple enough for elementary students.`
	}
	return "Create a simple, clear, educational illustration suitable for an elementary school slide presentation. " +
		"Style: Modern, flat vector, colorful but clean. Subject: " + prompt
}

func topicOr(topic, def string) string {
	if t := strings.TrimSpace(topic); t != "" {
		return t
	}
	return def
}

func bananaPrompt(p domain.GameParams) string {
	focus := "Choose a random target number and rule appropriate for the grade for each round."
	if strings.TrimSpace(p.Topic) != "" {
		focus = "Focus on: " + p.Topic + "."
	}
	return fmt.Sprintf(`Generate a math game for %s students.
%s
Create 3 rounds. Each round has a target number, a short rule description, and 12 bananas.
Exactly 6 bananas in each round match the rule (isCorrect true) and 6 do not.
Banana content is a short expression or number, e.g. "5+5" or "12".`, p.Grade, focus)
}

func sortingPrompt(p domain.GameParams) string {
	return fmt.Sprintf(`Generate a sorting game for %s students about %s.
Create exactly 2 contrasting categories and 12 items to sort between them.
Each item has a short text and the index (0 or 1) of its category.
Use Canadian spelling.`, p.Grade, topicOr(p.Topic, "science"))
}

func storyPrompt(p domain.GameParams) string {
	return fmt.Sprintf(`Write a fill-in-the-blanks story for %s students.
Topic: %s
The story should be about 100 words with 8 to 12 blanks.
Mark each blank in the template as {0}, {1}, {2} and so on, and give a label describing the word needed (e.g. Noun, Adjective, Animal).
Keep it fun and age appropriate. Use Canadian spelling.`, p.Grade, topicOr(p.Topic, "A Day at School"))
}

func memoryPrompt(p domain.GameParams) string {
	rule := "Pair a term with its definition or a matching fact."
	switch subj := strings.ToLower(p.Subject); {
	case strings.Contains(subj, "french"):
		rule = "Pair a French word (item1) with its English meaning (item2)."
	case strings.Contains(subj, "math"):
		rule = "Pair an equation (item1) with its answer (item2)."
	case strings.Contains(subj, "english"), strings.Contains(subj, "language"):
		rule = "Pair a word (item1) with its synonym or rhyme (item2)."
	}
	return fmt.Sprintf(`Generate a memory matching game for %s students.
Subject: %s
Topic: %s
Create 8 pairs. %s
Keep each item short enough to fit on a card.`, p.Grade, topicOr(p.Subject, "General"), topicOr(p.Topic, "general knowledge"), rule)
}

func quizPrompt(p domain.GameParams) string {
	return fmt.Sprintf(`Generate a 5 question multiple-choice quiz for %s students about %s.
Each question has 4 options, the correct answer text exactly matching one option, and a short explanation.
Use Canadian spelling.`, p.Grade, topicOr(p.Topic, "general knowledge"))
}

// WorksheetRequest describes a standalone worksheet.
type WorksheetRequest struct {
	Topic   string
	Grade   string
	Subject string
	Style   domain.WorksheetStyle
	// Count is the number of questions; zero means 10.
	Count int
}

func (r WorksheetRequest) count() int {
	if r.Count <= 0 {
		return 10
	}
	return r.Count
}

func worksheetPrompt(r WorksheetRequest) string {
	n := r.count()
	var style string
	switch r.Style {
	case domain.StyleVocabulary:
		style = "Focus on vocabulary: a word bank, matching terms to definitions, and fill-in-the-blank sentences."
	case domain.StyleCriticalThinking:
		style = fmt.Sprintf("Include %d open-ended critical thinking questions with drawing boxes or lined space for answers.", max(3, n/3))
	case domain.StyleMathDrill:
		style = "Make it a math drill: a grid of practice problems with increasing difficulty and space to show work."
	default:
		style = "Mix multiple choice, short answer and fill-in-the-blank questions."
	}
	return fmt.Sprintf(`Create a printable worksheet for %s students.
Subject: %s
Topic: %s
Number of questions: %d
%s

Format the student worksheet in Markdown with a Name/Date line, clear numbered questions and answer lines.
Then write a separate teacher answer key in Markdown with every answer filled in.
Use Canadian spelling.`, topicOr(r.Grade, "elementary"), topicOr(r.Subject, "General"), r.Topic, n, style)
}
