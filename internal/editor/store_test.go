/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"mapleprep/internal/domain"
	"mapleprep/internal/geom"
	"mapleprep/internal/undo"
)

type recorder struct {
	saves []domain.LessonPlan
	err   error
}

func (r *recorder) SaveLesson(_ context.Context, p domain.LessonPlan) error {
	r.saves = append(r.saves, p)
	return r.err
}

type capture struct{ held, acquired, released int }

func (c *capture) Acquire() { c.held++; c.acquired++ }
func (c *capture) Release() { c.held--; c.released++ }

func plan() domain.LessonPlan {
	return domain.LessonPlan{
		ID:     "L1",
		Topic:  "Plants",
		Slides: []domain.Slide{{Title: "One"}, {Title: "Two"}},
	}
}

var slideRect = geom.Rect{X: 100, Y: 50, W: 800, H: 450}

func TestAddTextElementEntersEditingAndPersists(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := New(plan(), rec)
	e, err := s.AddElement(ctx, domain.KindText, "Hello", "#ff0000")
	if err != nil {
		t.Fatal(err)
	}
	if e.X != domain.DefaultX || e.Y != domain.DefaultY {
		t.Fatalf("position = %v,%v", e.X, e.Y)
	}
	if id, mode := s.Selection(); id != e.ID || mode != Editing {
		t.Fatalf("selection = %s %v", id, mode)
	}
	if len(rec.saves) != 1 || len(rec.saves[0].Slides[0].CustomElements) != 1 {
		t.Fatalf("add should persist once with the element, saves=%d", len(rec.saves))
	}

	if err := s.UpdateElementContent(e.ID, "Hello class"); err != nil {
		t.Fatal(err)
	}
	if len(rec.saves) != 1 {
		t.Fatal("content update must not persist")
	}
	if err := s.CommitEdit(ctx); err != nil {
		t.Fatal(err)
	}
	if len(rec.saves) != 2 {
		t.Fatalf("commit should persist, saves=%d", len(rec.saves))
	}
	got := rec.saves[1].Slides[0].CustomElements[0].Body.(domain.TextBody).Text
	if got != "Hello class" {
		t.Fatalf("persisted text = %q", got)
	}
	if _, mode := s.Selection(); mode != Selected {
		t.Fatalf("mode after commit = %v", mode)
	}
}

func TestLinkElementNeedsURL(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := New(plan(), rec)
	e, _ := s.AddElement(ctx, domain.KindLink, "Maps", "")
	if s.PendingURL() != e.ID {
		t.Fatal("link should open the URL dialog")
	}
	if err := s.SubmitURL(ctx, "   "); !errors.Is(err, ErrURLRequired) {
		t.Fatalf("want ErrURLRequired, got %v", err)
	}
	if err := s.SubmitURL(ctx, "ftp://x"); !errors.Is(err, domain.ErrInvalidURL) {
		t.Fatalf("want ErrInvalidURL, got %v", err)
	}
	if err := s.SubmitURL(ctx, "https://maps.example.com"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Element(e.ID)
	if got.NeedsURL() || got.Body.(domain.LinkBody).Label != "Maps" {
		t.Fatalf("element = %+v", got)
	}
	if s.PendingURL() != "" || len(rec.saves) != 2 {
		t.Fatalf("pending=%q saves=%d", s.PendingURL(), len(rec.saves))
	}

	v, _ := s.AddElement(ctx, domain.KindVideo, "", "")
	s.CancelURL()
	got, _ = s.Element(v.ID)
	if !got.NeedsURL() || s.PendingURL() != "" {
		t.Fatal("cancel should leave the video unconfigured and close the dialog")
	}
	if err := s.SubmitURL(ctx, "https://youtu.be/x"); !errors.Is(err, ErrNoPendingURL) {
		t.Fatalf("want ErrNoPendingURL, got %v", err)
	}
}

func TestDragPersistsOnlyOnEnd(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	c := &capture{}
	s := New(plan(), rec, WithCapture(c))
	e, _ := s.AddElement(ctx, domain.KindSticker, "🍁", "")
	saves := len(rec.saves)

	// Element sits at 20%,20% = (160,90) inside the rect; press 10px right of it.
	if err := s.BeginDrag(ctx, e.ID, geom.Point{X: 270, Y: 140}, slideRect); err != nil {
		t.Fatal(err)
	}
	if _, mode := s.Selection(); mode != Dragging || c.held != 1 {
		t.Fatalf("mode=%v held=%d", mode, c.held)
	}
	pos, _, err := s.DragMove(geom.Point{X: 510, Y: 275}, slideRect)
	if err != nil {
		t.Fatal(err)
	}
	if !geom.Near(pos, geom.Percent{X: 50, Y: 50}, 1e-9) {
		t.Fatalf("pos = %+v", pos)
	}
	if len(rec.saves) != saves {
		t.Fatal("drag move must not persist")
	}
	// Far outside the slide clamps to the edge.
	pos, _, _ = s.DragMove(geom.Point{X: 5000, Y: -5000}, slideRect)
	if pos.X != 100 || pos.Y != 0 {
		t.Fatalf("clamped pos = %+v", pos)
	}
	if err := s.EndDrag(ctx); err != nil {
		t.Fatal(err)
	}
	if c.held != 0 || c.released != 1 {
		t.Fatalf("capture not released: %+v", c)
	}
	if len(rec.saves) != saves+1 {
		t.Fatal("drag end should persist once")
	}
	last := rec.saves[len(rec.saves)-1].Slides[0].CustomElements[0]
	if last.X != 100 || last.Y != 0 {
		t.Fatalf("persisted = %v,%v", last.X, last.Y)
	}
	if err := s.EndDrag(ctx); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("want ErrNotDragging, got %v", err)
	}
}

func TestSelectCommitsPreviousEdit(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := New(plan(), rec)
	a, _ := s.AddElement(ctx, domain.KindText, "a", "")
	b, _ := s.AddElement(ctx, domain.KindSticker, "⭐", "")
	if err := s.BeginEdit(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	_ = s.UpdateElementContent(a.ID, "apple")
	saves := len(rec.saves)
	if err := s.Select(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if len(rec.saves) != saves+1 {
		t.Fatal("switching selection should commit the edit")
	}
	if id, mode := s.Selection(); id != b.ID || mode != Selected {
		t.Fatalf("selection = %s %v", id, mode)
	}
}

func TestDeleteClearsSelection(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := New(plan(), rec)
	e, _ := s.AddElement(ctx, domain.KindChart, "tchart", "")
	if err := s.DeleteElement(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	if id, mode := s.Selection(); id != "" || mode != Unselected {
		t.Fatalf("selection = %q %v", id, mode)
	}
	if len(s.Elements()) != 0 || len(rec.saves) != 2 {
		t.Fatalf("elements=%d saves=%d", len(s.Elements()), len(rec.saves))
	}
	if err := s.DeleteElement(ctx, e.ID); !errors.Is(err, ErrNoElement) {
		t.Fatalf("want ErrNoElement, got %v", err)
	}
}

func TestElementsArePerSlide(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := New(plan(), rec)
	a, _ := s.AddElement(ctx, domain.KindSticker, "🍎", "")
	if err := s.SetSlide(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if len(s.Elements()) != 0 {
		t.Fatal("slide 2 should start empty")
	}
	if err := s.UpdateElementContent(a.ID, "🍐"); !errors.Is(err, ErrNoElement) {
		t.Fatalf("update must be limited to the current slide, got %v", err)
	}
	_, _ = s.AddElement(ctx, domain.KindSticker, "🐝", "")
	p := s.Plan()
	if len(p.Slides[0].CustomElements) != 1 || len(p.Slides[1].CustomElements) != 1 {
		t.Fatalf("plan slides = %+v", p.Slides)
	}
	if err := s.SetSlide(ctx, 5); !errors.Is(err, ErrNoSlide) {
		t.Fatalf("want ErrNoSlide, got %v", err)
	}
}

func TestUndoRedo(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time { clock = clock.Add(time.Second); return clock }
	s := New(plan(), rec, WithUndo(undo.Config{MinInterval: 100 * time.Millisecond}), WithClock(now))

	e, _ := s.AddElement(ctx, domain.KindSticker, "🍁", "")
	_ = s.BeginDrag(ctx, e.ID, geom.Point{X: 260, Y: 140}, slideRect)
	_, _, _ = s.DragMove(geom.Point{X: 500, Y: 300}, slideRect)
	_ = s.EndDrag(ctx)
	moved, _ := s.Element(e.ID)

	if err := s.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	back, _ := s.Element(e.ID)
	if back.X != domain.DefaultX || back.Y != domain.DefaultY {
		t.Fatalf("undo drag: %v,%v", back.X, back.Y)
	}
	if err := s.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	if len(s.Elements()) != 0 {
		t.Fatal("undo add should remove the element")
	}
	if err := s.Undo(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("want ErrNothingToUndo, got %v", err)
	}
	_ = s.Redo(ctx)
	if err := s.Redo(ctx); err != nil {
		t.Fatal(err)
	}
	again, _ := s.Element(e.ID)
	if again.X != moved.X || again.Y != moved.Y {
		t.Fatalf("redo = %v,%v want %v,%v", again.X, again.Y, moved.X, moved.Y)
	}
	if last := rec.saves[len(rec.saves)-1]; len(last.Slides[0].CustomElements) != 1 {
		t.Fatal("redo should persist")
	}
}

func TestDragCommitsEditOnSameElement(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time { clock = clock.Add(time.Second); return clock }
	s := New(plan(), rec, WithUndo(undo.Config{MinInterval: 100 * time.Millisecond}), WithClock(now))

	e, _ := s.AddElement(ctx, domain.KindText, "a", "")
	if err := s.UpdateElementContent(e.ID, "apple"); err != nil {
		t.Fatal(err)
	}
	saves := len(rec.saves)
	if err := s.BeginDrag(ctx, e.ID, geom.Point{X: 260, Y: 140}, slideRect); err != nil {
		t.Fatal(err)
	}
	if len(rec.saves) != saves+1 {
		t.Fatal("starting a drag should commit the edit")
	}
	if _, mode := s.Selection(); mode != Dragging {
		t.Fatalf("mode = %v", mode)
	}
	_, _, _ = s.DragMove(geom.Point{X: 500, Y: 300}, slideRect)
	_ = s.EndDrag(ctx)

	_ = s.Undo(ctx)
	got, _ := s.Element(e.ID)
	if got.X != domain.DefaultX || got.Content() != "apple" {
		t.Fatalf("first undo should revert only the move: %v %q", got.X, got.Content())
	}
	_ = s.Undo(ctx)
	if got, _ := s.Element(e.ID); got.Content() != "a" {
		t.Fatalf("second undo should revert the text edit, got %q", got.Content())
	}
}

func TestSnapToCentre(t *testing.T) {
	ctx := context.Background()
	s := New(plan(), &recorder{}, WithSnap(geom.SnapOptions{Tolerance: 2, SlideGuides: true}))
	e, _ := s.AddElement(ctx, domain.KindSticker, "🍁", "")
	_ = s.BeginDrag(ctx, e.ID, geom.Point{X: 260, Y: 140}, slideRect)
	// 49% by 51% snaps to the centre lines.
	pos, guides, err := s.DragMove(geom.Point{X: 100 + 392, Y: 50 + 229.5}, slideRect)
	if err != nil {
		t.Fatal(err)
	}
	if pos.X != 50 || pos.Y != 50 || len(guides) != 2 {
		t.Fatalf("pos=%+v guides=%v", pos, guides)
	}
}

func TestPersistErrorIsReturned(t *testing.T) {
	rec := &recorder{err: errors.New("disk full")}
	s := New(plan(), rec)
	if _, err := s.AddElement(context.Background(), domain.KindText, "x", ""); err == nil {
		t.Fatal("persist error swallowed")
	}
	if len(s.Elements()) != 1 {
		t.Fatal("in-memory change should stand")
	}
}
