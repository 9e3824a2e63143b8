/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain defines the lesson library data model. Field names in the
// JSON tags match the saved library format, so they stay camelCase.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LessonPlan is the aggregate root of the library: one generated teaching unit.
type LessonPlan struct {
	ID                     string         `json:"id"`
	CreatedAt              string         `json:"createdAt"` // RFC3339
	Topic                  string         `json:"topic"`
	GradeLevel             string         `json:"gradeLevel"`
	Province               string         `json:"province"`
	Subject                string         `json:"subject"`
	LearningObjectives     []string       `json:"learningObjectives"`
	CurriculumExpectations string         `json:"curriculumExpectations"`
	Slides                 []Slide        `json:"slides"`
	Activities             []Activity     `json:"activities"`
	WorksheetMarkdown      string         `json:"worksheetMarkdown"`
	AnswerSheetMarkdown    string         `json:"answerSheetMarkdown,omitempty"`
	Quiz                   []QuizQuestion `json:"quiz"`
}

// Slide is one presentation page of a lesson.
type Slide struct {
	Title             string            `json:"title"`
	BulletPoints      []string          `json:"bulletPoints"`
	TeacherNotes      string            `json:"teacherNotes"`
	SuggestedActivity string            `json:"suggestedActivity"`
	ImageDescription  string            `json:"imageDescription"`
	Base64Image       string            `json:"base64Image,omitempty"`
	PracticalExample  *PracticalExample `json:"practicalExample,omitempty"`
	ImageCaption      string            `json:"imageCaption,omitempty"`
	CustomElements    []Element         `json:"customElements"`
}

// PracticalExample is a worked problem shown next to a slide.
type PracticalExample struct {
	Problem       string   `json:"problem"`
	SolutionSteps []string `json:"solutionSteps"`
	Base64Image   string   `json:"base64Image,omitempty"`
}

type Activity struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Materials   []string `json:"materials"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// SmartBoardSubject marks library entries that store a smart board layout
// instead of a generated lesson.
const SmartBoardSubject = "SmartBoard"

// IsSmartBoard reports whether the plan is a saved smart board layout.
func (p LessonPlan) IsSmartBoard() bool { return p.Subject == SmartBoardSubject }

// Created parses CreatedAt; a malformed value yields the zero time.
func (p LessonPlan) Created() time.Time {
	t, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Clone returns a deep copy. Editors mutate clones and hand them to the persister.
func (p LessonPlan) Clone() LessonPlan {
	b, err := json.Marshal(p)
	if err != nil {
		return p
	}
	var out LessonPlan
	if err := json.Unmarshal(b, &out); err != nil {
		return p
	}
	return out
}

// NewID returns a fresh opaque identifier.
func NewID() string { return uuid.NewString() }

// Now returns the current time formatted for CreatedAt fields.
func Now() string { return time.Now().UTC().Format(time.RFC3339) }
