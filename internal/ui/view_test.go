/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"math"
	"testing"

	"mapleprep/internal/domain"
	"mapleprep/internal/geom"
	"mapleprep/internal/presentation"
)

func TestSlideRectKeepsAspect(t *testing.T) {
	cases := []struct{ w, h float64 }{{1024, 768}, {1920, 1080}, {400, 1000}, {2000, 300}}
	for _, c := range cases {
		r := slideRect(c.w, c.h)
		if math.Abs(r.W/r.H-slideAspect) > 1e-9 {
			t.Fatalf("%vx%v: aspect %v", c.w, c.h, r.W/r.H)
		}
		if r.X < 0 || r.Y < 0 || r.X+r.W > c.w || r.Y+r.H > c.h {
			t.Fatalf("%vx%v: rect %+v outside widget", c.w, c.h, r)
		}
	}
	if r := slideRect(10, 10); r != (geom.Rect{}) {
		t.Fatalf("tiny widget should give an empty rect, got %+v", r)
	}
}

func TestHitElementPrefersTopMost(t *testing.T) {
	slide := geom.Rect{X: 10, Y: 10, W: 1600, H: 900}
	a, _ := domain.NewElement(domain.KindText, "below", "")
	b, _ := domain.NewElement(domain.KindText, "above", "")
	elems := []domain.Element{a, b}
	box := elementBox(b, slide)
	pt := geom.Point{X: box.X + 2, Y: box.Y + 2}
	if got := hitElement(elems, pt, slide); got != b.ID {
		t.Fatalf("hit %q, want top-most %q", got, b.ID)
	}
	if got := hitElement(elems, geom.Point{X: 5, Y: 5}, slide); got != "" {
		t.Fatalf("hit %q outside every element", got)
	}
}

func TestElementBoxScales(t *testing.T) {
	slide := geom.Rect{W: 1000, H: 500}
	e, _ := domain.NewElement(domain.KindSticker, "⭐", "")
	small := elementBox(e, slide)
	e.Scale = 2
	big := elementBox(e, slide)
	if big.W != 2*small.W || big.H != 2*small.H {
		t.Fatalf("scale 2 box %+v vs %+v", big, small)
	}
	if small.X != 200 || small.Y != 100 {
		t.Fatalf("default position should be 20%%: %+v", small)
	}
}

func TestElementLabel(t *testing.T) {
	mk := func(k domain.ElementKind, initial string) domain.Element {
		e, err := domain.NewElement(k, initial, "")
		if err != nil {
			t.Fatal(err)
		}
		return e
	}
	link := mk(domain.KindLink, "Docs")
	cases := map[string]struct {
		e    domain.Element
		want string
	}{
		"empty text": {mk(domain.KindText, ""), "Text"},
		"sticker":    {mk(domain.KindSticker, "🍁"), "🍁"},
		"venn":       {mk(domain.KindChart, "venn"), "Venn diagram"},
		"tchart":     {mk(domain.KindChart, "tchart"), "T-chart"},
		"link label": {link, "🔗 Docs"},
		"video":      {mk(domain.KindVideo, ""), "▶ (set video)"},
	}
	for name, c := range cases {
		if got := elementLabel(c.e); got != c.want {
			t.Errorf("%s: got %q want %q", name, got, c.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	if got := parseColor("#ff8000"); got != (color.NRGBA{R: 0xff, G: 0x80, A: 0xff}) {
		t.Fatalf("long form: %v", got)
	}
	if got := parseColor("#0f0"); got != (color.NRGBA{G: 0xff, A: 0xff}) {
		t.Fatalf("short form: %v", got)
	}
	for _, bad := range []string{"", "red", "#12345", "#gggggg"} {
		if got := parseColor(bad); got != defaultInk {
			t.Fatalf("%q: got %v", bad, got)
		}
	}
}

func TestCaptions(t *testing.T) {
	if got := slideHeading(2, 8); got != "Slide 3 / 8" {
		t.Fatalf("heading %q", got)
	}
	if got := slideHeading(0, 0); got != "No slides" {
		t.Fatalf("heading %q", got)
	}
	p := domain.LessonPlan{GradeLevel: "Grade 3", Subject: "Mathematics"}
	if got := lessonRow(p); got != "Untitled lesson · Grade 3 · Mathematics" {
		t.Fatalf("row %q", got)
	}
	s := domain.Slide{BulletPoints: []string{"one", "two"}}
	if got := bulletText(s); got != "• one\n• two" {
		t.Fatalf("bullets %q", got)
	}
	if imageStatusText(presentation.ImageFailed) != presentation.ImageFailedMessage {
		t.Fatal("failed status should show the retry message")
	}
	if imageStatusText(presentation.ImageReady) != "" {
		t.Fatal("ready status has no caption")
	}
}

func TestRecentLessons(t *testing.T) {
	var items []string
	for i := 0; i < recentMax+3; i++ {
		items = pushRecent(items, string(rune('a'+i)))
	}
	if len(items) != recentMax || items[0] != string(rune('a'+recentMax+2)) {
		t.Fatalf("recent list %v", items)
	}
	items = pushRecent(items, items[3])
	if items[0] != string(rune('a'+recentMax-1)) || len(items) != recentMax {
		t.Fatalf("moving to front: %v", items)
	}
	lessons := []domain.LessonPlan{{ID: "b"}, {ID: "x"}}
	if got := knownRecent([]string{"a", "b", "c", "x"}, lessons); len(got) != 2 || got[0] != "b" || got[1] != "x" {
		t.Fatalf("known %v", got)
	}
}
