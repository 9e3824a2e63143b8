/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"mapleprep/internal/appstate"
	"mapleprep/internal/domain"
	"mapleprep/internal/storage"
)

func openPGForTest(t *testing.T) *PGStore {
	t.Helper()
	dsn := os.Getenv("MPP_PG_DSN")
	if dsn == "" {
		t.Skip("MPP_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := OpenPG(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	// Start every test from an empty store.
	if _, err := s.pool.Exec(ctx, `TRUNCATE kv, lessons`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return s
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("migrations/0002_lesson_filters.sql")
	if err != nil || v != 2 {
		t.Fatalf("parseVersion = %d, %v", v, err)
	}
	if _, err := parseVersion("init.sql"); err == nil {
		t.Fatal("name without version accepted")
	}
}

func TestSnippetMarksHit(t *testing.T) {
	got := snippet("Students compare fractions using pizza slices", []string{"PIZZA"})
	if !strings.Contains(got, "[pizza]") {
		t.Fatalf("snippet = %q", got)
	}
	if got := snippet(strings.Repeat("a", 200), nil); len(got) != 80 {
		t.Fatalf("untouched snippet length %d", len(got))
	}
	if escapeLike(`50%_off\`) != `50\%\_off\\` {
		t.Fatalf("escapeLike = %q", escapeLike(`50%_off\`))
	}
}

func TestPGStoreKV(t *testing.T) {
	s := openPGForTest(t)
	ctx := context.Background()
	if _, ok, err := s.Get(ctx, "mapleprep_students"); ok || err != nil {
		t.Fatalf("empty get ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "mapleprep_students", `[]`); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "mapleprep_students", `[{"id":"1"}]`); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(ctx, "mapleprep_students")
	if err != nil || !ok || v != `[{"id":"1"}]` {
		t.Fatalf("get = %q %v %v", v, ok, err)
	}
	keys, err := s.Keys(ctx)
	if err != nil || len(keys) != 1 {
		t.Fatalf("keys = %v, %v", keys, err)
	}
	if err := s.Delete(ctx, "mapleprep_students"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "mapleprep_students"); ok {
		t.Fatal("deleted key still present")
	}
}

// Search through appstate must give the same hits on Postgres as on SQLite.
func TestPGSearchParity(t *testing.T) {
	pg := openPGForTest(t)
	lite, err := storage.OpenSQLite(t.TempDir() + "/lib.db")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = lite.Close() }()
	ctx := context.Background()
	lessons := []domain.LessonPlan{
		{ID: "a", Topic: "Fractions", GradeLevel: "Grade 3", Subject: "Mathematics", CreatedAt: "2025-09-01T00:00:00Z",
			Slides: []domain.Slide{{Title: "Halves", BulletPoints: []string{"Cut the pizza"}}}},
		{ID: "b", Topic: "Weather", GradeLevel: "Grade 2", Subject: "Science & Tech", CreatedAt: "2025-09-02T00:00:00Z",
			Slides: []domain.Slide{{Title: "Clouds", BulletPoints: []string{"Rain and snow"}}}},
	}
	for _, kv := range []storage.KV{pg, lite} {
		st := appstate.New(kv)
		for _, p := range lessons {
			if err := st.SaveLesson(ctx, p); err != nil {
				t.Fatal(err)
			}
		}
	}
	queries := []storage.SearchQuery{{Text: "pizza"}, {Text: "rain"}, {Grade: "Grade 2"}, {}}
	for _, q := range queries {
		a, err := appstate.New(pg).SearchLessons(ctx, q)
		if err != nil {
			t.Fatal(err)
		}
		b, err := appstate.New(lite).SearchLessons(ctx, q)
		if err != nil {
			t.Fatal(err)
		}
		if len(a) != len(b) {
			t.Fatalf("query %+v: pg %d hits, sqlite %d", q, len(a), len(b))
		}
		for i := range a {
			if a[i].ID != b[i].ID {
				t.Fatalf("query %+v: order differs at %d: %s vs %s", q, i, a[i].ID, b[i].ID)
			}
		}
	}
}
