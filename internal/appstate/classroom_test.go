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

func TestTeacherRoster(t *testing.T) {
	ctx := context.Background()
	s := fixedState(storage.NewMemoryKV())
	tp, err := s.InviteTeacher(ctx, " Ada Lovelace ", "ada@school.ca", "Mathematics", "Grade 5")
	if err != nil {
		t.Fatal(err)
	}
	if tp.Status != domain.TeacherPending || tp.JoinedDate != "2025-09-02" || tp.Name != "Ada Lovelace" {
		t.Fatalf("invite = %+v", tp)
	}
	if n := len(s.Teachers(ctx)); n != len(DefaultTeachers)+1 {
		t.Fatalf("roster size %d", n)
	}
	if err := s.SetTeacherStatus(ctx, tp.ID, domain.TeacherActive); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTeacherStatus(ctx, tp.ID, "banned"); err == nil {
		t.Fatal("unknown status accepted")
	}
	if err := s.RemoveTeacher(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	for _, x := range s.Teachers(ctx) {
		if x.ID == "1" {
			t.Fatal("teacher 1 not removed")
		}
		if x.ID == tp.ID && x.Status != domain.TeacherActive {
			t.Fatal("status change lost")
		}
	}
	if _, err := s.InviteTeacher(ctx, "No Mail", "nomail", "", ""); err == nil {
		t.Fatal("invalid email accepted")
	}
}

func TestStudentsAndBookmarks(t *testing.T) {
	ctx := context.Background()
	s := fixedState(storage.NewMemoryKV())
	if _, err := s.AddStudent(ctx, "   ", "Grade 1"); err == nil {
		t.Fatal("blank name accepted")
	}
	st, _ := s.AddStudent(ctx, "Ben", "Grade 2")
	if err := s.RemoveStudent(ctx, st.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveStudent(ctx, st.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	b1, err := s.AddBookmark(ctx, "CBC Kids", "www.cbc.ca/kids")
	if err != nil {
		t.Fatal(err)
	}
	if b1.URL != "https://www.cbc.ca/kids" {
		t.Fatalf("url = %q", b1.URL)
	}
	b2, _ := s.AddBookmark(ctx, "Math", "http://example.com")
	bs := s.Bookmarks(ctx)
	if len(bs) != 2 || bs[0].ID != b2.ID {
		t.Fatalf("bookmarks should be newest first: %+v", bs)
	}
	if bs[1].URL != "https://www.cbc.ca/kids" || b2.URL != "http://example.com" {
		t.Fatalf("urls = %q %q", bs[1].URL, b2.URL)
	}
}

func TestPlannerCells(t *testing.T) {
	ctx := context.Background()
	s := fixedState(storage.NewMemoryKV())
	key, err := s.SetPlannerCell(ctx, "mon", "1", domain.PlannerEntry{Subject: "Math", Notes: "fractions"})
	if err != nil || key != "Monday-1" {
		t.Fatalf("key=%q err=%v", key, err)
	}
	if _, err := s.SetPlannerCell(ctx, "Sunday", "1", domain.PlannerEntry{}); err == nil {
		t.Fatal("weekend day accepted")
	}
	if _, err := s.SetPlannerCell(ctx, "Tue", "2", domain.PlannerEntry{ExternalURL: "not a url"}); err == nil {
		t.Fatal("bad external url accepted")
	}
	if got := s.Planner(ctx)["Monday-1"]; got.Notes != "fractions" {
		t.Fatalf("cell = %+v", got)
	}
	if err := s.ClearPlannerCell(ctx, "Monday", "1"); err != nil {
		t.Fatal(err)
	}
	if len(s.Planner(ctx)) != 0 {
		t.Fatal("cell not cleared")
	}
	if err := s.ClearPlannerCell(ctx, "Monday", "1"); err != nil {
		t.Fatalf("clearing an empty cell: %v", err)
	}
}
