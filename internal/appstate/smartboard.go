/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package appstate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mapleprep/internal/domain"
)

// Planner entry written by AddSmartBoardToPlanner.
const (
	SmartBoardPlanSubject = "Smart Board Plan"
	SmartBoardPlanNotes   = "Custom Smart Board Layout"
	SmartBoardPlanColor   = "bg-yellow-50"
)

var ErrNotSmartBoard = errors.New("lesson is not a smart board layout")

// SmartBoard returns the current board: saved notes and background, or the
// defaults.
func (s *State) SmartBoard(ctx context.Context) domain.SmartBoardConfig {
	return domain.SmartBoardConfig{
		Bg:    load(ctx, s, KeySBBg, domain.SmartBoardBackgrounds[0].URL),
		Notes: load(ctx, s, KeySBNotes, domain.DefaultSmartBoardNotes),
	}
}

// SaveSmartBoard stores the board notes and background.
func (s *State) SaveSmartBoard(ctx context.Context, c domain.SmartBoardConfig) error {
	if err := save(ctx, s, KeySBNotes, c.Notes); err != nil {
		return err
	}
	return save(ctx, s, KeySBBg, c.Bg)
}

// Presets returns saved board layouts, newest first.
func (s *State) Presets(ctx context.Context) []domain.SmartBoardPreset {
	return load(ctx, s, KeySBPresets, []domain.SmartBoardPreset{})
}

// SavePreset stores the layout under name at the front of the list.
func (s *State) SavePreset(ctx context.Context, name string, c domain.SmartBoardConfig) (domain.SmartBoardPreset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.SmartBoardPreset{}, errors.New("preset name is required")
	}
	ps, err := loadForUpdate(ctx, s, KeySBPresets, []domain.SmartBoardPreset{})
	if err != nil {
		return domain.SmartBoardPreset{}, err
	}
	p := domain.SmartBoardPreset{ID: domain.NewID(), Name: name, Bg: c.Bg, Notes: c.Notes}
	return p, save(ctx, s, KeySBPresets, append([]domain.SmartBoardPreset{p}, ps...))
}

func (s *State) DeletePreset(ctx context.Context, id string) error {
	return removeByID(ctx, s, KeySBPresets, []domain.SmartBoardPreset{}, id, func(p domain.SmartBoardPreset) string { return p.ID })
}

// ApplyPreset makes a saved layout the current board.
func (s *State) ApplyPreset(ctx context.Context, id string) (domain.SmartBoardConfig, error) {
	for _, p := range s.Presets(ctx) {
		if p.ID == id {
			c := domain.SmartBoardConfig{Bg: p.Bg, Notes: p.Notes}
			return c, s.SaveSmartBoard(ctx, c)
		}
	}
	return domain.SmartBoardConfig{}, fmt.Errorf("preset %s: %w", id, ErrNotFound)
}

// AddSmartBoardToPlanner puts the board into a planner cell.
func (s *State) AddSmartBoardToPlanner(ctx context.Context, day, period string, c domain.SmartBoardConfig) (string, error) {
	return s.SetPlannerCell(ctx, day, period, domain.PlannerEntry{
		Subject:        SmartBoardPlanSubject,
		Notes:          SmartBoardPlanNotes,
		Color:          SmartBoardPlanColor,
		SmartBoardData: c.Encode(),
	})
}

// SaveSmartBoardToLibrary stores the board as a library entry whose
// curriculum text carries the board config.
func (s *State) SaveSmartBoardToLibrary(ctx context.Context, name string, c domain.SmartBoardConfig) (domain.LessonPlan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.LessonPlan{}, errors.New("a name is required")
	}
	p := domain.LessonPlan{
		ID:                     domain.NewID(),
		CreatedAt:              s.stamp(),
		Topic:                  name,
		Subject:                domain.SmartBoardSubject,
		GradeLevel:             "General",
		Province:               "All",
		CurriculumExpectations: c.Encode(),
		LearningObjectives:     []string{},
		Slides:                 []domain.Slide{},
		Activities:             []domain.Activity{},
		Quiz:                   []domain.QuizQuestion{},
	}
	return p, s.SaveLesson(ctx, p)
}

// LoadSmartBoardLesson decodes the board stored in a library entry and makes
// it the current board.
func (s *State) LoadSmartBoardLesson(ctx context.Context, id string) (domain.SmartBoardConfig, error) {
	p, err := s.Lesson(ctx, id)
	if err != nil {
		return domain.SmartBoardConfig{}, err
	}
	if !p.IsSmartBoard() {
		return domain.SmartBoardConfig{}, fmt.Errorf("%s: %w", id, ErrNotSmartBoard)
	}
	c, err := domain.DecodeSmartBoardConfig(p.CurriculumExpectations)
	if err != nil || c.Bg == "" || c.Notes == (domain.SmartBoardNotes{}) {
		return domain.SmartBoardConfig{}, fmt.Errorf("could not load this smart board configuration: %w", errors.Join(ErrNotSmartBoard, err))
	}
	return c, s.SaveSmartBoard(ctx, c)
}
