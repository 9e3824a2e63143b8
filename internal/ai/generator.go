/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ai talks to the generative content service that writes lesson
// plans, slide images, worksheets and mini-game data.
package ai

import (
	"context"
	"errors"
	"fmt"

	"mapleprep/internal/domain"
)

// Generator produces lesson content. Client is the production
// implementation; Fake serves tests and offline demos.
type Generator interface {
	GenerateLessonPlan(ctx context.Context, p domain.GenerationParams) (domain.LessonPlan, error)
	GenerateImage(ctx context.Context, prompt string, style domain.ImageStyle) (string, error)
	GenerateBananaRounds(ctx context.Context, p domain.GameParams) ([]domain.MathBananaRound, error)
	GenerateSortingGame(ctx context.Context, p domain.GameParams) (domain.SortingGameData, error)
	GenerateStoryGame(ctx context.Context, p domain.GameParams) (domain.StoryGameData, error)
	GenerateMemoryGame(ctx context.Context, p domain.GameParams) (domain.MemoryGameData, error)
	GenerateQuizGame(ctx context.Context, p domain.GameParams) ([]domain.GameQuestion, error)
	GenerateWorksheet(ctx context.Context, r WorksheetRequest) (domain.GeneratedWorksheet, error)
}

var (
	ErrEmptyResponse = errors.New("No response generated")
	ErrNoGame        = errors.New("No game generated")
	ErrNoWorksheet   = errors.New("No worksheet generated")
	ErrNoImage       = errors.New("no image data returned from AI service")
	// ErrSchema marks a response that does not match the requested shape.
	ErrSchema   = errors.New("response does not match schema")
	ErrNoAPIKey = errors.New("no AI API key configured")
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ai: http %d", e.Status)
	}
	return fmt.Sprintf("ai: http %d: %s", e.Status, e.Message)
}

// Placeholder content for slides the model left without a worked example.
const (
	PendingExample = "Example generation pending..."
	pendingStep1   = "This slide explains a concept without a specific step-by-step problem."
	pendingStep2   = "Discuss the bullet points above with the class."
)

// finishLesson assigns identity and fills the optional parts the editor
// and presenter rely on.
func finishLesson(plan domain.LessonPlan, p domain.GenerationParams) domain.LessonPlan {
	plan.ID = domain.NewID()
	plan.CreatedAt = domain.Now()
	if plan.Topic == "" {
		plan.Topic = p.Topic
	}
	if plan.GradeLevel == "" {
		plan.GradeLevel = string(p.Grade)
	}
	if plan.Province == "" {
		plan.Province = string(p.Province)
	}
	if plan.Subject == "" {
		plan.Subject = string(p.Subject)
	}
	for i := range plan.Slides {
		s := &plan.Slides[i]
		s.CustomElements = []domain.Element{}
		s.Base64Image = ""
		if s.PracticalExample == nil || s.PracticalExample.Problem == "" {
			s.PracticalExample = &domain.PracticalExample{
				Problem:       PendingExample,
				SolutionSteps: []string{pendingStep1, pendingStep2},
			}
		}
	}
	return plan
}
