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
	"testing"

	"mapleprep/internal/domain"
	"mapleprep/internal/storage"
)

var board = domain.SmartBoardConfig{
	Bg:    "https://example.com/space.jpg",
	Notes: domain.SmartBoardNotes{Learning: "Planets", Reminders: "Gym shoes"},
}

func TestSmartBoardDefaultsAndSave(t *testing.T) {
	ctx := context.Background()
	s := fixedState(storage.NewMemoryKV())
	def := s.SmartBoard(ctx)
	if def.Bg != domain.SmartBoardBackgrounds[0].URL || def.Notes != domain.DefaultSmartBoardNotes {
		t.Fatalf("defaults = %+v", def)
	}
	if err := s.SaveSmartBoard(ctx, board); err != nil {
		t.Fatal(err)
	}
	if got := s.SmartBoard(ctx); got != board {
		t.Fatalf("board = %+v", got)
	}
}

func TestSmartBoardPresets(t *testing.T) {
	ctx := context.Background()
	s := fixedState(storage.NewMemoryKV())
	p, err := s.SavePreset(ctx, "Monday Morning", board)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SavePreset(ctx, "", board); err == nil {
		t.Fatal("empty name accepted")
	}
	got, err := s.ApplyPreset(ctx, p.ID)
	if err != nil || got != board || s.SmartBoard(ctx) != board {
		t.Fatalf("apply = %+v, %v", got, err)
	}
	if err := s.DeletePreset(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ApplyPreset(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSmartBoardPlannerAndLibrary(t *testing.T) {
	ctx := context.Background()
	s := fixedState(storage.NewMemoryKV())
	key, err := s.AddSmartBoardToPlanner(ctx, "Wed", "3", board)
	if err != nil {
		t.Fatal(err)
	}
	e := s.Planner(ctx)[key]
	if e.Subject != SmartBoardPlanSubject || e.Color != SmartBoardPlanColor {
		t.Fatalf("entry = %+v", e)
	}
	if c, err := domain.DecodeSmartBoardConfig(e.SmartBoardData); err != nil || c != board {
		t.Fatalf("embedded config = %+v, %v", c, err)
	}

	lp, err := s.SaveSmartBoardToLibrary(ctx, "Space week", board)
	if err != nil {
		t.Fatal(err)
	}
	if !lp.IsSmartBoard() || lp.GradeLevel != "General" || lp.Province != "All" {
		t.Fatalf("library entry = %+v", lp)
	}
	_ = s.SaveSmartBoard(ctx, domain.SmartBoardConfig{Bg: "x", Notes: domain.SmartBoardNotes{Special: "y"}})
	c, err := s.LoadSmartBoardLesson(ctx, lp.ID)
	if err != nil || c != board || s.SmartBoard(ctx) != board {
		t.Fatalf("load = %+v, %v", c, err)
	}

	plain := lesson("plain", "Rocks", "2025-01-01T00:00:00Z")
	_ = s.SaveLesson(ctx, plain)
	if _, err := s.LoadSmartBoardLesson(ctx, "plain"); !errors.Is(err, ErrNotSmartBoard) {
		t.Fatalf("want ErrNotSmartBoard, got %v", err)
	}
}
