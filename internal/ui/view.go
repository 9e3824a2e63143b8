/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui is the desktop presenter. The window itself needs the fyne
// build tag and cgo; the geometry and text helpers here build everywhere.
package ui

import (
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"
	"time"

	"mapleprep/internal/appstate"
	"mapleprep/internal/crash"
	"mapleprep/internal/domain"
	"mapleprep/internal/geom"
	"mapleprep/internal/presentation"
	"mapleprep/internal/textlayout"
	"mapleprep/internal/undo"
)

// Options configures the presenter window.
type Options struct {
	State  *appstate.State
	Images presentation.ImageGenerator
	// Crash is where a panic inside the UI loop leaves its report.
	Crash crash.Target
	// LessonID is opened on start when set.
	LessonID string
	// MaxParallelImages bounds "generate all images".
	MaxParallelImages int
	// SlideFonts renders exported slide images; nil uses the bitmap face.
	SlideFonts textlayout.Provider
}

// slideAspect is the width over height of a presented slide.
const slideAspect = 16.0 / 9.0

const slidePadding = 12.0

// slideRect fits a 16:9 slide centred into a widget of size w x h.
func slideRect(w, h float64) geom.Rect {
	aw, ah := w-2*slidePadding, h-2*slidePadding
	if aw <= 0 || ah <= 0 {
		return geom.Rect{}
	}
	sw, sh := aw, aw/slideAspect
	if sh > ah {
		sh = ah
		sw = ah * slideAspect
	}
	return geom.Rect{X: (w - sw) / 2, Y: (h - sh) / 2, W: sw, H: sh}
}

// elementBox is the on-screen box of e inside the slide rectangle. The box
// grows with the label so hit testing matches what is drawn.
func elementBox(e domain.Element, slide geom.Rect) geom.Rect {
	p := geom.ToPixel(geom.Percent{X: e.X, Y: e.Y}, slide.Size())
	scale := e.Scale
	if scale <= 0 {
		scale = 1
	}
	w := float64(len([]rune(elementLabel(e))))*9 + 16
	if w < 60 {
		w = 60
	}
	if _, ok := e.Body.(domain.ChartBody); ok {
		w = 160
	}
	return geom.Rect{X: slide.X + p.X, Y: slide.Y + p.Y, W: w * scale, H: 28 * scale}
}

// hitElement returns the id of the top-most element under pt.
func hitElement(elems []domain.Element, pt geom.Point, slide geom.Rect) string {
	for i := len(elems) - 1; i >= 0; i-- {
		b := elementBox(elems[i], slide)
		if pt.X >= b.X && pt.X <= b.X+b.W && pt.Y >= b.Y && pt.Y <= b.Y+b.H {
			return elems[i].ID
		}
	}
	return ""
}

// elementLabel is the text drawn for an element.
func elementLabel(e domain.Element) string {
	switch b := e.Body.(type) {
	case domain.TextBody:
		if strings.TrimSpace(b.Text) == "" {
			return "Text"
		}
		return b.Text
	case domain.StickerBody:
		return b.Emoji
	case domain.ImageBody:
		return "[image]"
	case domain.ChartBody:
		if b.Chart == domain.ChartVenn {
			return "Venn diagram"
		}
		return "T-chart"
	case domain.LinkBody:
		if b.Label != "" {
			return "🔗 " + b.Label
		}
		if b.URL == "" {
			return "🔗 (set link)"
		}
		return "🔗 " + b.URL
	case domain.VideoBody:
		if b.URL == "" {
			return "▶ (set video)"
		}
		return "▶ " + b.URL
	}
	return ""
}

var defaultInk = color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}

// parseColor reads #rgb and #rrggbb. Anything else draws in the default ink.
func parseColor(s string) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return defaultInk
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return defaultInk
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// lessonRow is the lesson list entry.
func lessonRow(p domain.LessonPlan) string {
	topic := p.Topic
	if strings.TrimSpace(topic) == "" {
		topic = "Untitled lesson"
	}
	return fmt.Sprintf("%s · %s · %s", topic, p.GradeLevel, p.Subject)
}

// slideHeading is the "Slide n / total" caption.
func slideHeading(index, total int) string {
	if total == 0 {
		return "No slides"
	}
	return fmt.Sprintf("Slide %d / %d", index+1, total)
}

func bulletText(s domain.Slide) string {
	var b strings.Builder
	for i, p := range s.BulletPoints {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(p)
	}
	return b.String()
}

func imageStatusText(st presentation.ImageStatus) string {
	switch st {
	case presentation.ImageGenerating:
		return "Generating image…"
	case presentation.ImageFailed:
		return presentation.ImageFailedMessage
	}
	return ""
}

func editorUndo() undo.Config {
	return undo.Config{MaxBytes: 8 << 20, MaxPerSlide: 100, MinInterval: 400 * time.Millisecond}
}

func editorSnap() geom.SnapOptions {
	return geom.SnapOptions{Tolerance: 1.5, SlideGuides: true}
}

const recentMax = 10

// pushRecent moves id to the front of the recent list.
func pushRecent(items []string, id string) []string {
	id = strings.TrimSpace(id)
	if id == "" {
		return items
	}
	out := make([]string, 0, len(items)+1)
	out = append(out, id)
	for _, s := range items {
		if s != id {
			out = append(out, s)
		}
	}
	if len(out) > recentMax {
		out = out[:recentMax]
	}
	return out
}

// knownRecent drops ids of lessons that no longer exist.
func knownRecent(items []string, lessons []domain.LessonPlan) []string {
	out := make([]string, 0, len(items))
	for _, id := range items {
		if slices.ContainsFunc(lessons, func(p domain.LessonPlan) bool { return p.ID == id }) {
			out = append(out, id)
		}
	}
	return out
}
