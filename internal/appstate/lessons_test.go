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
	"path/filepath"
	"strings"
	"testing"

	"mapleprep/internal/storage"
)

func TestLessonsNewestFirstAndReplaceInPlace(t *testing.T) {
	ctx := context.Background()
	s := fixedState(storage.NewMemoryKV())
	_ = s.SaveLesson(ctx, lesson("old", "Rocks", "2024-01-01T00:00:00Z"))
	_ = s.SaveLesson(ctx, lesson("new", "Birds", "2025-01-01T00:00:00Z"))
	ls := s.Lessons(ctx)
	if len(ls) != 2 || ls[0].ID != "new" {
		t.Fatalf("order = %v", []string{ls[0].ID, ls[1].ID})
	}
	p := ls[1]
	p.Topic = "Rocks and Minerals"
	if err := s.SaveLesson(ctx, p); err != nil {
		t.Fatal(err)
	}
	if ls := s.Lessons(ctx); len(ls) != 2 || ls[1].Topic != "Rocks and Minerals" {
		t.Fatalf("update did not replace in place: %+v", ls)
	}
}

func TestSaveLessonFillsIDAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := fixedState(storage.NewMemoryKV())
	p := lesson("", "Weather", "")
	if err := s.SaveLesson(ctx, p); err != nil {
		t.Fatal(err)
	}
	got := s.Lessons(ctx)[0]
	if got.ID == "" || got.CreatedAt != "2025-09-02T08:30:00Z" {
		t.Fatalf("id=%q createdAt=%q", got.ID, got.CreatedAt)
	}
}

func TestSaveCopyAndDelete(t *testing.T) {
	ctx := context.Background()
	s := fixedState(storage.NewMemoryKV())
	orig := lesson("L1", "Magnets", "2025-01-01T00:00:00Z")
	_ = s.SaveLesson(ctx, orig)
	cp, err := s.SaveCopy(ctx, orig)
	if err != nil {
		t.Fatal(err)
	}
	if cp.ID == orig.ID || cp.Topic != "Magnets (Copy)" {
		t.Fatalf("copy = %+v", cp)
	}
	if n := len(s.Lessons(ctx)); n != 2 {
		t.Fatalf("lessons = %d", n)
	}
	if err := s.DeleteLesson(ctx, "L1"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteLesson(ctx, "L1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := s.Lesson(ctx, "L1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestScanSearchWithoutIndex(t *testing.T) {
	ctx := context.Background()
	s := fixedState(storage.NewMemoryKV())
	_ = s.SaveLesson(ctx, lesson("a", "Plant Parts", "2025-01-01T00:00:00Z"))
	b := lesson("b", "Fractions", "2025-02-01T00:00:00Z")
	b.Subject = "Mathematics"
	b.Slides = nil
	_ = s.SaveLesson(ctx, b)

	res, err := s.SearchLessons(ctx, storage.SearchQuery{Text: "ROOTS plant"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].ID != "a" {
		t.Fatalf("results = %+v", res)
	}
	res, _ = s.SearchLessons(ctx, storage.SearchQuery{Subject: "Mathematics"})
	if len(res) != 1 || res[0].ID != "b" {
		t.Fatalf("subject filter = %+v", res)
	}
	res, _ = s.SearchLessons(ctx, storage.SearchQuery{Limit: 1, Offset: 1})
	if len(res) != 1 || res[0].ID != "a" {
		t.Fatalf("paging = %+v", res)
	}
}

func TestLessonDocSkipsSmartBoardConfig(t *testing.T) {
	p := lesson("x", "Board", "")
	p.Subject = "SmartBoard"
	p.CurriculumExpectations = `{"bg":"u","notes":{}}`
	if strings.Contains(LessonDoc(p).Text, `"bg"`) {
		t.Fatal("board config leaked into search text")
	}
}

func TestRevisionsRestoreEarlierVersion(t *testing.T) {
	ctx := context.Background()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "lib.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	s := fixedState(db)
	p := lesson("L1", "Volcanoes", "2025-01-01T00:00:00Z")
	if err := s.SaveLesson(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.Topic = "Volcanoes and Earthquakes"
	if err := s.SaveLesson(ctx, p); err != nil {
		t.Fatal(err)
	}
	revs, err := s.Revisions(ctx, "L1")
	if err != nil || len(revs) != 2 {
		t.Fatalf("revisions = %v, %v", revs, err)
	}
	oldest := revs[len(revs)-1]
	got, err := s.RestoreRevision(ctx, oldest.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Topic != "Volcanoes" {
		t.Fatalf("restored topic = %q", got.Topic)
	}
	if cur, _ := s.Lesson(ctx, "L1"); cur.Topic != "Volcanoes" {
		t.Fatalf("library topic = %q", cur.Topic)
	}
}

func TestRevisionsNeedHistoryBackend(t *testing.T) {
	s := fixedState(storage.NewMemoryKV())
	if _, err := s.Revisions(context.Background(), "L1"); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("err = %v, want ErrNoHistory", err)
	}
}

func TestThumbnailCachedUntilLessonChanges(t *testing.T) {
	ctx := context.Background()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "lib.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	s := fixedState(db)
	p := lesson("L1", "Magnets", "2025-01-01T00:00:00Z")
	_ = s.SaveLesson(ctx, p)

	renders := 0
	gen := func(context.Context) ([]byte, error) {
		renders++
		return []byte("png"), nil
	}
	k := storage.ThumbKey{LessonID: "L1", Slide: 0, W: 320, H: 180}
	for range 2 {
		if _, err := s.Thumbnail(ctx, k, gen); err != nil {
			t.Fatal(err)
		}
	}
	if renders != 1 {
		t.Fatalf("renders = %d, want 1", renders)
	}
	_ = s.SaveLesson(ctx, p)
	if _, err := s.Thumbnail(ctx, k, gen); err != nil {
		t.Fatal(err)
	}
	if renders != 2 {
		t.Fatalf("renders after save = %d, want 2", renders)
	}
}
