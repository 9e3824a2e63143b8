/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package presentation drives a lesson while it is shown: the current
// slide, tabs, fullscreen and design modes, the lesson quiz, and the
// generation of slide images.
package presentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"mapleprep/internal/domain"
	"mapleprep/internal/editor"
	"mapleprep/internal/export"
	applog "mapleprep/internal/log"
	"mapleprep/internal/task"
)

// ImageFailedMessage is shown when a slide image cannot be generated.
const ImageFailedMessage = "Failed to generate image. Please try again."

var (
	ErrNoExample     = errors.New("slide has no practical example")
	ErrNoDescription = errors.New("slide has no image description")
	ErrNoSlide       = errors.New("slide index out of range")
)

// ImageGenerator turns a prompt into a base64 image. The AI client
// implements it.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, style domain.ImageStyle) (string, error)
}

type Tab string

const (
	TabSlides     Tab = "slides"
	TabWorksheet  Tab = "worksheet"
	TabActivities Tab = "activities"
	TabQuiz       Tab = "quiz"
)

// Target picks the image a generation request fills.
type Target string

const (
	TargetMain    Target = "main"
	TargetExample Target = "example"
)

type ImageStatus int

const (
	ImageIdle ImageStatus = iota
	ImageGenerating
	ImageReady
	ImageFailed
)

func (s ImageStatus) String() string {
	switch s {
	case ImageGenerating:
		return "generating"
	case ImageReady:
		return "ready"
	case ImageFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Deck is the presenter state of one lesson. It is safe for concurrent
// use; image results arrive on task goroutines.
type Deck struct {
	mu         sync.Mutex
	ctx        context.Context
	plan       domain.LessonPlan
	index      int
	tab        Tab
	fullscreen bool
	design     bool
	answerKey  bool
	status     map[string]ImageStatus
	quiz       map[int]string
	quizScore  int
	quizDone   bool
	gen        ImageGenerator
	persist    editor.Persister
	slots      *task.Slots
	log        *slog.Logger
	onChange   func()
	saveErr    error
}

// New opens plan for presenting. Edits and generated images are saved
// through p. Closing the deck cancels running generations.
func New(ctx context.Context, plan domain.LessonPlan, gen ImageGenerator, p editor.Persister) *Deck {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Deck{
		ctx:     ctx,
		plan:    plan.Clone(),
		tab:     TabSlides,
		status:  make(map[string]ImageStatus),
		quiz:    make(map[int]string),
		gen:     gen,
		persist: p,
		slots:   task.New(ctx),
		log:     applog.WithComponent("presentation").With("lesson", plan.ID),
	}
}

// OnChange registers fn to run after state changes made in the background.
func (d *Deck) OnChange(fn func()) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

func (d *Deck) changed() {
	d.mu.Lock()
	fn := d.onChange
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Close cancels every running generation and waits for it to stop.
func (d *Deck) Close() { d.slots.Close() }

func (d *Deck) Plan() domain.LessonPlan {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.plan.Clone()
}

func (d *Deck) Index() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.index
}

// Slide returns the current slide.
func (d *Deck) Slide() domain.Slide {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.plan.Slides) == 0 {
		return domain.Slide{}
	}
	return d.plan.Slides[d.index]
}

// Next and Prev move one slide and stop at the ends.
func (d *Deck) Next() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.index < len(d.plan.Slides)-1 {
		d.index++
	}
}

func (d *Deck) Prev() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.index > 0 {
		d.index--
	}
}

func (d *Deck) GoTo(i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.plan.Slides) {
		return fmt.Errorf("%w: %d", ErrNoSlide, i)
	}
	d.index = i
	return nil
}

// Key applies a navigation key: ArrowRight, space and Enter advance,
// ArrowLeft goes back and Escape leaves fullscreen. It reports whether the
// key was handled.
func (d *Deck) Key(key string) bool {
	switch key {
	case "ArrowRight", " ", "Enter":
		d.Next()
	case "ArrowLeft":
		d.Prev()
	case "Escape":
		d.mu.Lock()
		was := d.fullscreen
		d.fullscreen = false
		d.mu.Unlock()
		return was
	default:
		return false
	}
	return true
}

func (d *Deck) Tab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tab
}

func (d *Deck) SetTab(t Tab) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tab = t
}

// SetFullscreen switches presentation mode. Fullscreen always shows the
// slides tab and hides the design tools.
func (d *Deck) SetFullscreen(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fullscreen = on
	if on {
		d.tab = TabSlides
	}
}

func (d *Deck) Fullscreen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fullscreen
}

// SetDesign toggles the element editor overlay.
func (d *Deck) SetDesign(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.design = on
}

// Designing reports whether elements can be edited right now.
func (d *Deck) Designing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.design && !d.fullscreen && d.tab == TabSlides
}

// Editor returns an element store for the current lesson that saves
// through the deck.
func (d *Deck) Editor(opts ...editor.Option) *editor.Store {
	d.mu.Lock()
	plan, idx := d.plan.Clone(), d.index
	d.mu.Unlock()
	s := editor.New(plan, d, opts...)
	_ = s.SetSlide(d.ctx, idx)
	return s
}

// SaveLesson takes the slide elements of p, keeping the deck's own
// images, and saves the merged lesson.
func (d *Deck) SaveLesson(ctx context.Context, p domain.LessonPlan) error {
	d.mu.Lock()
	for i := range d.plan.Slides {
		if i < len(p.Slides) {
			d.plan.Slides[i].CustomElements = p.Slides[i].CustomElements
		}
	}
	out := d.plan.Clone()
	d.mu.Unlock()
	return d.save(ctx, out)
}

func (d *Deck) save(ctx context.Context, p domain.LessonPlan) error {
	if d.persist == nil {
		return nil
	}
	if err := d.persist.SaveLesson(ctx, p); err != nil {
		d.log.Warn("save failed", "err", err)
		return err
	}
	return nil
}

// saveInBackground saves p for a task result and keeps any failure for
// TakeSaveError.
func (d *Deck) saveInBackground(p domain.LessonPlan) {
	err := d.save(d.ctx, p)
	d.mu.Lock()
	d.saveErr = err
	d.mu.Unlock()
}

// TakeSaveError returns the failure of the latest save made for a
// generated image, once. A full store yields an *appstate.Warning.
func (d *Deck) TakeSaveError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.saveErr
	d.saveErr = nil
	return err
}

// ShowAnswerKey selects the answer key for the worksheet tab and print.
func (d *Deck) ShowAnswerKey(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.answerKey = on
}

// PrintJob returns the worksheet print job for the current view.
func (d *Deck) PrintJob() export.PrintJob {
	d.mu.Lock()
	defer d.mu.Unlock()
	return export.LessonPrintJob(d.plan, d.answerKey)
}

// AnswerQuiz records an answer for lesson quiz question i until the quiz
// is submitted.
func (d *Deck) AnswerQuiz(i int, option string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.plan.Quiz) {
		return fmt.Errorf("no quiz question %d", i)
	}
	if d.quizDone {
		return errors.New("quiz already submitted")
	}
	d.quiz[i] = option
	return nil
}

// SubmitQuiz scores the lesson quiz.
func (d *Deck) SubmitQuiz() (score, total int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quizScore = 0
	for i, q := range d.plan.Quiz {
		if d.quiz[i] == q.CorrectAnswer {
			d.quizScore++
		}
	}
	d.quizDone = true
	return d.quizScore, len(d.plan.Quiz)
}

// ResetQuiz clears answers and the result.
func (d *Deck) ResetQuiz() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quiz = make(map[int]string)
	d.quizScore, d.quizDone = 0, false
}

// ExamplePrompt builds the diagram prompt for a practical example so the
// picture follows its solution steps.
func ExamplePrompt(ex domain.PracticalExample) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Math/Science Problem: %q\n\n", ex.Problem)
	b.WriteString("Step-by-Step Solution to Visualize:\n")
	b.WriteString(strings.Join(ex.SolutionSteps, "\n"))
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("- Draw a diagram that strictly follows the solution steps above.\n")
	b.WriteString("- If the problem involves counting, fractions, geometry, or data, represent it ACCURATELY.\n")
	b.WriteString("- E.g., if it says \"divide into 4 parts\", show 4 distinct parts.\n")
	b.WriteString("- E.g., if it says \"add 3 + 2\", visually show the combining of groups.\n")
	b.WriteString("- This is for elementary students, so keep it visual and explicit.")
	return b.String()
}
