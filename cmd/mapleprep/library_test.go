/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"mapleprep/internal/appstate"
	"mapleprep/internal/backend"
	"mapleprep/internal/config"
	"mapleprep/internal/domain"
	"mapleprep/internal/storage"
	"mapleprep/internal/textlayout"

	"golang.org/x/image/font/gofont/goregular"
)

func TestHistoryListsAndRestores(t *testing.T) {
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "lib.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	c := newTestCLI(t, "")
	c.kv, c.state = db, appstate.New(db)
	ctx := context.Background()

	c.mustRun(t, "generate", "-topic", "Seasons")
	p := c.state.Lessons(ctx)[0]
	p.Topic = "Seasons Revised"
	if err := c.state.SaveLesson(ctx, p); err != nil {
		t.Fatal(err)
	}
	out := c.mustRun(t, "history", p.ID)
	if strings.Count(out, "\n") != 3 {
		t.Fatalf("want header and two revisions, got %q", out)
	}
	revs, _ := c.state.Revisions(ctx, p.ID)
	c.mustRun(t, "history", "-restore", strconv.FormatInt(revs[len(revs)-1].ID, 10))
	if got, _ := c.state.Lesson(ctx, p.ID); got.Topic != "Seasons" {
		t.Fatalf("topic after restore = %q", got.Topic)
	}
}

func TestHistoryNeedsSQLite(t *testing.T) {
	c := newTestCLI(t, "")
	err := c.run(context.Background(), []string{"mapleprep", "history", "x"})
	if !errors.Is(err, appstate.ErrNoHistory) {
		t.Fatalf("err = %v", err)
	}
}

func TestThumbWritesPNG(t *testing.T) {
	c := newTestCLI(t, "")
	c.mustRun(t, "generate", "-topic", "Owls", "-slides", "3")
	id := c.state.Lessons(context.Background())[0].ID
	path := filepath.Join(t.TempDir(), "owl.png")
	c.mustRun(t, "thumb", "-slide", "2", "-out", path, id)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) < 8 || string(b[1:4]) != "PNG" {
		t.Fatalf("not a PNG: % x", b[:min(8, len(b))])
	}
	if err := c.run(context.Background(), []string{"mapleprep", "thumb", "-slide", "9", id}); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestSlideFontsFromConfig(t *testing.T) {
	c := newTestCLI(t, "")
	dir := t.TempDir()
	font := filepath.Join(dir, "GoRegular.ttf")
	if err := os.WriteFile(font, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	c.cfg.Export.FontRegular = font
	if _, ok := c.slideFonts().(*textlayout.SlideFonts); !ok {
		t.Fatalf("configured font not loaded")
	}
	if c.stderr.Len() != 0 {
		t.Fatalf("unexpected warning: %s", c.stderr.String())
	}

	c.cfg.Export.FontRegular = filepath.Join(dir, "missing.ttf")
	c.mustRun(t, "generate", "-topic", "Owls")
	id := c.state.Lessons(context.Background())[0].ID
	c.mustRun(t, "thumb", "-out", filepath.Join(dir, "owl.png"), id)
	if !strings.Contains(c.stderr.String(), "missing.ttf") {
		t.Fatalf("missing font not reported: %q", c.stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "owl.png")); err != nil {
		t.Fatalf("thumb should fall back to the bitmap face: %v", err)
	}
}

func TestTeachersInviteAndStatus(t *testing.T) {
	c := newTestCLI(t, "")
	ctx := context.Background()
	before := len(c.state.Teachers(ctx))
	c.mustRun(t, "teachers", "invite", "-email", "m.tremblay@example.ca", "Marie", "Tremblay")
	ts := c.state.Teachers(ctx)
	if len(ts) != before+1 {
		t.Fatalf("teachers = %d, want %d", len(ts), before+1)
	}
	added := ts[len(ts)-1]
	if added.Name != "Marie Tremblay" || added.Status != domain.TeacherPending {
		t.Fatalf("invited = %+v", added)
	}
	c.mustRun(t, "teachers", "status", added.ID, domain.TeacherActive)
	if out := c.mustRun(t, "teachers"); !strings.Contains(out, "m.tremblay@example.ca") {
		t.Fatalf("teachers: %q", out)
	}
	c.mustRun(t, "teachers", "rm", added.ID)
	if n := len(c.state.Teachers(ctx)); n != before {
		t.Fatalf("teachers after rm = %d, want %d", n, before)
	}
}

func TestBoardSetPresetAndPlan(t *testing.T) {
	c := newTestCLI(t, "")
	c.mustRun(t, "board", "set", "-bg", "space", "-learning", "Moon phases")
	out := c.mustRun(t, "board")
	if !strings.Contains(out, "Space Exploration") || !strings.Contains(out, "Moon phases") {
		t.Fatalf("board: %q", out)
	}
	c.mustRun(t, "board", "preset", "save", "Astronomy")
	presets := c.state.Presets(context.Background())
	if len(presets) != 1 {
		t.Fatalf("presets = %d", len(presets))
	}
	c.mustRun(t, "board", "set", "-learning", "Something else")
	if out := c.mustRun(t, "board", "preset", "apply", presets[0].ID); !strings.Contains(out, "Moon phases") {
		t.Fatalf("apply: %q", out)
	}
	c.mustRun(t, "board", "plan", "Friday", "2")
	if out := c.mustRun(t, "planner"); !strings.Contains(out, appstate.SmartBoardPlanSubject) {
		t.Fatalf("planner: %q", out)
	}
	if err := c.run(context.Background(), []string{"mapleprep", "board", "set", "-bg", "not a url"}); err == nil {
		t.Fatal("expected invalid background error")
	}
}

func TestScramble(t *testing.T) {
	c := newTestCLI(t, "")
	out := c.mustRun(t, "scramble", "maple")
	if !strings.Contains(out, "(answer: MAPLE)") {
		t.Fatalf("scramble: %q", out)
	}
}

func TestStudentsPickFromFile(t *testing.T) {
	c := newTestCLI(t, "")
	path := filepath.Join(t.TempDir(), "names.txt")
	if err := os.WriteFile(path, []byte("Noor\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if out := c.mustRun(t, "students", "pick", "-file", path); !strings.Contains(out, "Noor") {
		t.Fatalf("pick: %q", out)
	}
}

func TestTokenAndRemote(t *testing.T) {
	prev := config.SetTokenStore(memTokens{})
	t.Cleanup(func() { config.SetTokenStore(prev) })
	t.Setenv(config.EnvServerSecretKey, "test-secret")

	srvCLI := newTestCLI(t, "")
	srvCLI.mustRun(t, "generate", "-topic", "Beavers")
	id := srvCLI.state.Lessons(context.Background())[0].ID
	srv, err := backend.NewServer(backend.Options{State: srvCLI.state, Secret: "test-secret"})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := newTestCLI(t, "")
	tok := strings.TrimSpace(c.mustRun(t, "token", "-ttl", time.Hour.String(), "grade3-room"))
	if tok == "" {
		t.Fatal("empty token")
	}
	if out := c.mustRun(t, "remote", "-url", ts.URL, "-token", tok, "list"); !strings.Contains(out, "Beavers") {
		t.Fatalf("remote list: %q", out)
	}
	c.mustRun(t, "remote", "-url", ts.URL, "-token", tok, "-pull", "show", id)
	if _, err := c.state.Lesson(context.Background(), id); err != nil {
		t.Fatalf("pulled lesson missing: %v", err)
	}
	if err := c.run(context.Background(), []string{"mapleprep", "remote", "-url", ts.URL, "list"}); err == nil {
		t.Fatal("expected auth error without token")
	}
}
