/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ai

import (
	"context"
	"fmt"
	"sync"

	"mapleprep/internal/domain"
)

// Fake is a deterministic Generator. Err, when set, is returned by every
// call. Calls counts invocations per method name.
type Fake struct {
	mu    sync.Mutex
	Err   error
	Calls map[string]int
}

var _ Generator = (*Fake)(nil)

func (f *Fake) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Calls == nil {
		f.Calls = map[string]int{}
	}
	f.Calls[name]++
	return f.Err
}

// Count returns how often name was called.
func (f *Fake) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

func (f *Fake) GenerateLessonPlan(ctx context.Context, p domain.GenerationParams) (domain.LessonPlan, error) {
	if err := f.hit("lesson"); err != nil {
		return domain.LessonPlan{}, err
	}
	if err := p.Validate(); err != nil {
		return domain.LessonPlan{}, err
	}
	plan := domain.LessonPlan{
		Topic:                  p.Topic,
		GradeLevel:             string(p.Grade),
		Province:               string(p.Province),
		Subject:                string(p.Subject),
		LearningObjectives:     []string{"Explain " + p.Topic, "Apply " + p.Topic + " to a real example"},
		CurriculumExpectations: string(p.Province) + " " + string(p.Grade) + " " + string(p.Subject),
		WorksheetMarkdown:      "# " + p.Topic + " Worksheet\n\nName: ________\n\n1. What is " + p.Topic + "?\n\n[DRAWING BOX]\n",
		AnswerSheetMarkdown:    "# " + p.Topic + " Answer Key\n\n1. " + p.Topic + " explained.\n",
		Activities: []domain.Activity{
			{Title: "Think-Pair-Share", Description: "Discuss " + p.Topic + " with a partner.", Duration: "10 mins", Materials: []string{"Chart paper"}},
		},
	}
	for i := range p.SlideCount {
		s := domain.Slide{
			Title:             fmt.Sprintf("%s part %d", p.Topic, i+1),
			BulletPoints:      []string{"Key idea", "Example", "Check for understanding"},
			TeacherNotes:      "Introduce part " + fmt.Sprint(i+1) + ".",
			SuggestedActivity: "Thumbs up if you agree.",
			ImageDescription:  "A colourful flat illustration of " + p.Topic,
		}
		if i%2 == 0 {
			s.PracticalExample = &domain.PracticalExample{Problem: "Try an example of " + p.Topic, SolutionSteps: []string{"Step 1: Read", "Step 2: Solve"}}
		}
		plan.Slides = append(plan.Slides, s)
	}
	for i := range 15 {
		plan.Quiz = append(plan.Quiz, domain.QuizQuestion{
			Question:      fmt.Sprintf("Question %d about %s?", i+1, p.Topic),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "A",
		})
	}
	return finishLesson(plan, p), nil
}

// fakePNG is a 1x1 PNG.
const fakePNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func (f *Fake) GenerateImage(ctx context.Context, prompt string, style domain.ImageStyle) (string, error) {
	if err := f.hit("image"); err != nil {
		return "", err
	}
	return fakePNG, nil
}

func (f *Fake) GenerateBananaRounds(ctx context.Context, p domain.GameParams) ([]domain.MathBananaRound, error) {
	if err := f.hit("banana"); err != nil {
		return nil, err
	}
	var rounds []domain.MathBananaRound
	for r := range 3 {
		target := float64(10 + r*2)
		round := domain.MathBananaRound{Target: target, TargetDescription: fmt.Sprintf("Sums to %v", target)}
		for i := range 12 {
			a := float64(i + 1)
			if i < 6 {
				round.Bananas = append(round.Bananas, domain.Banana{Content: fmt.Sprintf("%v+%v", a, target-a), Value: target, IsCorrect: true})
			} else {
				round.Bananas = append(round.Bananas, domain.Banana{Content: fmt.Sprintf("%v+%v", target, a), Value: target + a})
			}
		}
		rounds = append(rounds, round)
	}
	return rounds, nil
}

func (f *Fake) GenerateSortingGame(ctx context.Context, p domain.GameParams) (domain.SortingGameData, error) {
	if err := f.hit("sorting"); err != nil {
		return domain.SortingGameData{}, err
	}
	living := []string{"Dog", "Tree", "Mushroom", "Fish", "Bird", "Moss"}
	nonLiving := []string{"Rock", "Cloud", "Chair", "Water", "Spoon", "Sand"}
	d := domain.SortingGameData{Categories: []string{"Living", "Non-Living"}}
	for i := range living {
		d.Items = append(d.Items,
			domain.SortingItem{ID: fmt.Sprintf("l%d", i), Text: living[i], CategoryIndex: 0},
			domain.SortingItem{ID: fmt.Sprintf("n%d", i), Text: nonLiving[i], CategoryIndex: 1})
	}
	return d, nil
}

func (f *Fake) GenerateStoryGame(ctx context.Context, p domain.GameParams) (domain.StoryGameData, error) {
	if err := f.hit("story"); err != nil {
		return domain.StoryGameData{}, err
	}
	return domain.StoryGameData{
		Title:    topicOr(p.Topic, "A Day at School"),
		Template: "One {0} morning a {1} walked into class and {2} loudly.",
		Placeholders: []domain.StoryPlaceholder{
			{Key: "{0}", Label: "Adjective"},
			{Key: "{1}", Label: "Animal"},
			{Key: "{2}", Label: "Verb (past tense)"},
		},
	}, nil
}

func (f *Fake) GenerateMemoryGame(ctx context.Context, p domain.GameParams) (domain.MemoryGameData, error) {
	if err := f.hit("memory"); err != nil {
		return domain.MemoryGameData{}, err
	}
	words := [][2]string{{"chat", "cat"}, {"chien", "dog"}, {"pomme", "apple"}, {"livre", "book"},
		{"rouge", "red"}, {"maison", "house"}, {"soleil", "sun"}, {"eau", "water"}}
	var d domain.MemoryGameData
	for i, w := range words {
		d.Pairs = append(d.Pairs, domain.MemoryPair{ID: fmt.Sprintf("p%d", i), Item1: w[0], Item2: w[1]})
	}
	return d, nil
}

func (f *Fake) GenerateQuizGame(ctx context.Context, p domain.GameParams) ([]domain.GameQuestion, error) {
	if err := f.hit("quiz"); err != nil {
		return nil, err
	}
	var qs []domain.GameQuestion
	for i := range 5 {
		qs = append(qs, domain.GameQuestion{
			ID:            fmt.Sprintf("q%d", i),
			Text:          fmt.Sprintf("What is %d + %d?", i, i),
			Options:       []string{fmt.Sprint(2 * i), fmt.Sprint(2*i + 1), fmt.Sprint(2*i + 2), fmt.Sprint(2*i + 3)},
			CorrectAnswer: fmt.Sprint(2 * i),
			Explanation:   fmt.Sprintf("%d doubled is %d.", i, 2*i),
		})
	}
	return qs, nil
}

func (f *Fake) GenerateWorksheet(ctx context.Context, r WorksheetRequest) (domain.GeneratedWorksheet, error) {
	if err := f.hit("worksheet"); err != nil {
		return domain.GeneratedWorksheet{}, err
	}
	style := r.Style
	if style == "" {
		style = domain.StyleStandard
	}
	return domain.GeneratedWorksheet{
		Topic: r.Topic, Grade: r.Grade, Subject: r.Subject, Style: style,
		StudentMarkdown: fmt.Sprintf("# %s\n\nName: ________\n\n1. Question one (%d total)\n", r.Topic, r.count()),
		TeacherMarkdown: fmt.Sprintf("# %s Answer Key\n\n1. Answer one\n", r.Topic),
	}, nil
}
