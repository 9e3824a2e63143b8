/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor manages the freely positioned elements of a lesson's
// slides: selection, text editing, dragging, URL configuration and undo.
// Every structural change is handed to a Persister; drag moves and
// keystrokes are not.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mapleprep/internal/domain"
	"mapleprep/internal/geom"
	applog "mapleprep/internal/log"
	"mapleprep/internal/undo"
)

var (
	ErrURLRequired   = errors.New("a URL is required")
	ErrNoPendingURL  = errors.New("no element is waiting for a URL")
	ErrNoElement     = errors.New("element not found on this slide")
	ErrNoSlide       = errors.New("slide index out of range")
	ErrNotDragging   = errors.New("no drag in progress")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Persister stores the edited lesson. appstate.State satisfies it.
type Persister interface {
	SaveLesson(ctx context.Context, p domain.LessonPlan) error
}

// Capturer grabs and releases global pointer events for a drag gesture.
type Capturer interface {
	Acquire()
	Release()
}

// Mode is the state of the selected element.
type Mode int

const (
	Unselected Mode = iota
	Selected
	Editing
	Dragging
)

func (m Mode) String() string {
	switch m {
	case Selected:
		return "selected"
	case Editing:
		return "editing"
	case Dragging:
		return "dragging"
	}
	return "unselected"
}

// Store is bound to one lesson. It is not safe for concurrent use; the UI
// drives it from one goroutine.
type Store struct {
	plan     domain.LessonPlan
	slide    int
	elements map[int][]domain.Element

	selected string
	mode     Mode
	pending  string // link or video element waiting for its URL

	drag       geom.DragSession
	dragBefore []byte
	editBefore []byte

	persister Persister
	capture   Capturer
	snap      *geom.SnapOptions
	history   *undo.Manager
	now       func() time.Time
	log       *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithUndo enables undo and redo with the given limits.
func WithUndo(cfg undo.Config) Option {
	return func(s *Store) { s.history = undo.NewManager(cfg) }
}

// WithSnap snaps dragged elements to slide guides and sibling positions.
func WithSnap(opts geom.SnapOptions) Option {
	return func(s *Store) { s.snap = &opts }
}

// WithCapture installs the pointer capture used during drags.
func WithCapture(c Capturer) Option {
	return func(s *Store) { s.capture = c }
}

// WithClock replaces time.Now; undo coalescing reads it.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New binds a Store to plan, starting on slide 0.
func New(plan domain.LessonPlan, p Persister, opts ...Option) *Store {
	s := &Store{
		plan:      plan.Clone(),
		elements:  make(map[int][]domain.Element),
		persister: p,
		now:       time.Now,
	}
	for i, sl := range s.plan.Slides {
		s.elements[i] = append([]domain.Element(nil), sl.CustomElements...)
	}
	for _, o := range opts {
		o(s)
	}
	s.log = applog.WithComponent("editor").With(slog.String("lesson", plan.ID))
	return s
}

// Plan returns a copy of the lesson including the current elements.
func (s *Store) Plan() domain.LessonPlan {
	s.syncPlan()
	return s.plan.Clone()
}

// Slide returns the current slide index.
func (s *Store) Slide() int { return s.slide }

// SetSlide commits any edit or drag and switches slides.
func (s *Store) SetSlide(ctx context.Context, i int) error {
	if i < 0 || i >= len(s.plan.Slides) {
		return fmt.Errorf("%w: %d", ErrNoSlide, i)
	}
	if err := s.Deselect(ctx); err != nil {
		return err
	}
	s.pending = ""
	s.slide = i
	return nil
}

// Elements returns a copy of the current slide's elements.
func (s *Store) Elements() []domain.Element {
	return append([]domain.Element(nil), s.elements[s.slide]...)
}

// Element returns the element with id on the current slide.
func (s *Store) Element(id string) (domain.Element, bool) {
	if i := s.index(id); i >= 0 {
		return s.elements[s.slide][i], true
	}
	return domain.Element{}, false
}

// Selection returns the selected element id and its mode.
func (s *Store) Selection() (string, Mode) { return s.selected, s.mode }

// PendingURL returns the id of the element whose URL dialog is open.
func (s *Store) PendingURL() string { return s.pending }

func (s *Store) index(id string) int {
	for i, e := range s.elements[s.slide] {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// AddElement creates an element at the default position on the current
// slide and selects it. Text elements start in editing mode; link and video
// elements open the URL dialog.
func (s *Store) AddElement(ctx context.Context, kind domain.ElementKind, initial, color string) (domain.Element, error) {
	if s.slide >= len(s.plan.Slides) {
		return domain.Element{}, ErrNoSlide
	}
	e, err := domain.NewElement(kind, initial, color)
	if err != nil {
		return domain.Element{}, err
	}
	if err := s.Deselect(ctx); err != nil {
		return domain.Element{}, err
	}
	s.remember()
	s.elements[s.slide] = append(s.elements[s.slide], e.Clamped())
	s.selected, s.mode = e.ID, Selected
	switch kind {
	case domain.KindText:
		s.mode = Editing
		s.editBefore = nil
	case domain.KindLink, domain.KindVideo:
		s.pending = e.ID
	}
	return e, s.persist(ctx, "add")
}

// SubmitURL configures the element whose URL dialog is open.
func (s *Store) SubmitURL(ctx context.Context, raw string) error {
	if s.pending == "" {
		return ErrNoPendingURL
	}
	if strings.TrimSpace(raw) == "" {
		return ErrURLRequired
	}
	i := s.index(s.pending)
	if i < 0 {
		s.pending = ""
		return ErrNoElement
	}
	updated, err := s.elements[s.slide][i].WithContent(raw)
	if err != nil {
		return err
	}
	s.remember()
	s.elements[s.slide][i] = updated
	s.pending = ""
	return s.persist(ctx, "configure_url")
}

// CancelURL closes the URL dialog and leaves the element unconfigured.
func (s *Store) CancelURL() { s.pending = "" }

// BeginEdit selects id and enters editing mode.
func (s *Store) BeginEdit(ctx context.Context, id string) error {
	if err := s.Select(ctx, id); err != nil {
		return err
	}
	s.mode = Editing
	s.editBefore = nil
	return nil
}

// UpdateElementContent replaces the content of an element on the current
// slide. Nothing is persisted until CommitEdit.
func (s *Store) UpdateElementContent(id, content string) error {
	i := s.index(id)
	if i < 0 {
		return ErrNoElement
	}
	before := s.encode()
	updated, err := s.elements[s.slide][i].WithContent(content)
	if err != nil {
		return err
	}
	if s.editBefore == nil {
		s.editBefore = before
	}
	s.elements[s.slide][i] = updated
	return nil
}

// CommitEdit leaves editing mode and persists.
func (s *Store) CommitEdit(ctx context.Context) error {
	if s.mode != Editing {
		return nil
	}
	s.mode = Selected
	if s.editBefore != nil {
		s.push(s.editBefore)
		s.editBefore = nil
	}
	return s.persist(ctx, "commit_edit")
}

// DeleteElement removes an element from the current slide, clears the
// selection and persists.
func (s *Store) DeleteElement(ctx context.Context, id string) error {
	i := s.index(id)
	if i < 0 {
		return ErrNoElement
	}
	if s.mode == Dragging {
		s.release()
	}
	s.remember()
	els := s.elements[s.slide]
	s.elements[s.slide] = append(els[:i:i], els[i+1:]...)
	s.selected, s.mode, s.editBefore = "", Unselected, nil
	if s.pending == id {
		s.pending = ""
	}
	return s.persist(ctx, "delete")
}

// Select makes id the selected element. An edit or drag in progress on the
// previous element is committed first.
func (s *Store) Select(ctx context.Context, id string) error {
	if s.index(id) < 0 {
		return ErrNoElement
	}
	if id == s.selected && s.mode != Unselected {
		return nil
	}
	if err := s.finish(ctx); err != nil {
		return err
	}
	s.selected, s.mode = id, Selected
	return nil
}

// Deselect commits any edit or drag and clears the selection.
func (s *Store) Deselect(ctx context.Context) error {
	err := s.finish(ctx)
	s.selected, s.mode = "", Unselected
	return err
}

func (s *Store) finish(ctx context.Context) error {
	switch s.mode {
	case Editing:
		return s.CommitEdit(ctx)
	case Dragging:
		return s.EndDrag(ctx)
	}
	return nil
}

// BeginDrag starts dragging id, committing an edit in progress on it first.
// pointer is in client coordinates and container is the slide's bounding
// rectangle.
func (s *Store) BeginDrag(ctx context.Context, id string, pointer geom.Point, container geom.Rect) error {
	if err := s.Select(ctx, id); err != nil {
		return err
	}
	// Select keeps an edit or drag open on the same element.
	if err := s.finish(ctx); err != nil {
		return err
	}
	e := s.elements[s.slide][s.index(id)]
	s.drag = geom.BeginDrag(pointer, geom.Percent{X: e.X, Y: e.Y}, container)
	s.dragBefore = s.encode()
	s.mode = Dragging
	if s.capture != nil {
		s.capture.Acquire()
	}
	return nil
}

// DragMove moves the dragged element under the pointer. The position is
// clamped to the slide and snapped when snapping is enabled.
func (s *Store) DragMove(pointer geom.Point, container geom.Rect) (geom.Percent, []geom.Guide, error) {
	if s.mode != Dragging {
		return geom.Percent{}, nil, ErrNotDragging
	}
	i := s.index(s.selected)
	if i < 0 {
		return geom.Percent{}, nil, ErrNoElement
	}
	pos := geom.Clamp(s.drag.Move(pointer, container))
	var guides []geom.Guide
	if s.snap != nil {
		opts := *s.snap
		opts.Siblings = append([]geom.Percent(nil), opts.Siblings...)
		for _, o := range s.elements[s.slide] {
			if o.ID != s.selected {
				opts.Siblings = append(opts.Siblings, geom.Percent{X: o.X, Y: o.Y})
			}
		}
		pos, guides = geom.Snap(pos, opts)
		pos = geom.Clamp(pos)
	}
	s.elements[s.slide][i].X, s.elements[s.slide][i].Y = pos.X, pos.Y
	return pos, guides, nil
}

// EndDrag releases the pointer, returns to selected mode and persists.
func (s *Store) EndDrag(ctx context.Context) error {
	if s.mode != Dragging {
		return ErrNotDragging
	}
	s.release()
	s.mode = Selected
	if i := s.index(s.selected); i >= 0 {
		e := s.elements[s.slide][i].Clamped()
		s.elements[s.slide][i] = e
		if start := s.drag.Start(); start.X != e.X || start.Y != e.Y {
			s.push(s.dragBefore)
		}
	}
	s.dragBefore = nil
	return s.persist(ctx, "drag_end")
}

func (s *Store) release() {
	if s.capture != nil {
		s.capture.Release()
	}
}

// Undo restores the current slide's elements to the state before the last
// persisted change and persists.
func (s *Store) Undo(ctx context.Context) error {
	if s.history == nil {
		return ErrNothingToUndo
	}
	if err := s.Deselect(ctx); err != nil {
		return err
	}
	prev, ok := s.history.Undo(s.snapshot(s.encode()))
	if !ok {
		return ErrNothingToUndo
	}
	return s.restore(ctx, prev.Blob, "undo")
}

// Redo reapplies the change reverted by the last Undo and persists.
func (s *Store) Redo(ctx context.Context) error {
	if s.history == nil {
		return ErrNothingToRedo
	}
	if err := s.Deselect(ctx); err != nil {
		return err
	}
	next, ok := s.history.Redo(s.snapshot(s.encode()))
	if !ok {
		return ErrNothingToRedo
	}
	return s.restore(ctx, next.Blob, "redo")
}

func (s *Store) restore(ctx context.Context, blob []byte, op string) error {
	var els []domain.Element
	if err := json.Unmarshal(blob, &els); err != nil {
		return fmt.Errorf("%s: decode snapshot: %w", op, err)
	}
	s.elements[s.slide] = els
	s.pending = ""
	return s.persist(ctx, op)
}

// remember records the current slide state before a persisted change.
func (s *Store) remember() { s.push(s.encode()) }

func (s *Store) push(blob []byte) {
	if s.history != nil && blob != nil {
		s.history.Push(s.snapshot(blob))
	}
}

func (s *Store) snapshot(blob []byte) undo.Snapshot {
	return undo.Snapshot{Slide: s.slide, Blob: blob, TS: s.now()}
}

func (s *Store) encode() []byte {
	els := s.elements[s.slide]
	if els == nil {
		els = []domain.Element{}
	}
	b, err := json.Marshal(els)
	if err != nil {
		s.log.Warn("encode undo snapshot failed", slog.Any("err", err))
		return nil
	}
	return b
}

func (s *Store) syncPlan() {
	for i := range s.plan.Slides {
		els := s.elements[i]
		if els == nil {
			els = []domain.Element{}
		}
		s.plan.Slides[i].CustomElements = append([]domain.Element{}, els...)
	}
}

// persist pushes every slide's elements into the plan and saves it.
func (s *Store) persist(ctx context.Context, op string) error {
	s.syncPlan()
	if s.persister == nil {
		return nil
	}
	if err := s.persister.SaveLesson(ctx, s.plan.Clone()); err != nil {
		applog.WithOperation(s.log, op).Warn("persist failed", slog.Any("err", err))
		return err
	}
	return nil
}
