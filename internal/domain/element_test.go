/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewElementDefaults(t *testing.T) {
	e, err := NewElement(KindText, "Hello", "red")
	if err != nil {
		t.Fatalf("NewElement: %v", err)
	}
	if e.X != 20 || e.Y != 20 || e.Scale != 1 || e.ID == "" {
		t.Fatalf("unexpected defaults: %+v", e)
	}
	if e.Kind() != KindText || e.Content() != "Hello" {
		t.Fatalf("body mismatch: %+v", e.Body)
	}
	other, _ := NewElement(KindText, "", "")
	if other.ID == e.ID {
		t.Fatalf("ids must be unique")
	}
	if _, err := NewElement("hologram", "", ""); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := NewElement(KindChart, "pie", ""); !errors.Is(err, ErrUnknownChart) {
		t.Fatalf("expected ErrUnknownChart, got %v", err)
	}
}

func TestLinkAndVideoNeedURL(t *testing.T) {
	link, _ := NewElement(KindLink, "Link Text", "")
	if !link.NeedsURL() || link.Content() != "Link Text" {
		t.Fatalf("fresh link should be unconfigured with its label as content: %+v", link)
	}
	if _, err := link.WithContent("   "); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("empty url should be rejected, got %v", err)
	}
	if _, err := link.WithContent("javascript:alert(1)"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("non-http url should be rejected, got %v", err)
	}
	configured, err := link.WithContent(" https://example.org/fractions ")
	if err != nil {
		t.Fatalf("WithContent: %v", err)
	}
	lb := configured.Body.(LinkBody)
	if configured.NeedsURL() || lb.URL != "https://example.org/fractions" || lb.Label != "Link Text" {
		t.Fatalf("unexpected link body: %+v", lb)
	}
}

func TestVideoEmbedURL(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=abc123&t=10": "https://www.youtube.com/embed/abc123?controls=1",
		"https://youtu.be/xyz789":                     "https://www.youtube.com/embed/xyz789?controls=1",
		"https://vimeo.com/12345":                     "",
	}
	for in, want := range cases {
		if got := (VideoBody{URL: in}).EmbedURL(); got != want {
			t.Fatalf("EmbedURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestElementJSONUsesTypeDiscriminator(t *testing.T) {
	e := Element{ID: "e1", X: 12.5, Y: 40, Scale: 1.5, Body: ChartBody{Chart: ChartVenn}}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"type":"chart"`) || !strings.Contains(s, `"chart":"venn"`) {
		t.Fatalf("unexpected json %s", s)
	}
	var back Element
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Body != (ChartBody{Chart: ChartVenn}) || back.X != 12.5 || back.Scale != 1.5 {
		t.Fatalf("decoded %+v", back)
	}
}

func TestElementDecodeLegacyContentAndClamp(t *testing.T) {
	raw := `[
		{"id":"a","type":"sticker","x":-5,"y":130,"content":"🍎"},
		{"id":"b","type":"link","x":10,"y":10,"content":"https://example.org"},
		{"id":"c","type":"link","x":10,"y":10,"content":"Link Text"},
		{"id":"d","type":"chart","x":10,"y":10,"content":"grid"}
	]`
	var els []Element
	if err := json.Unmarshal([]byte(raw), &els); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if els[0].X != 0 || els[0].Y != 100 || els[0].Content() != "🍎" || els[0].Scale != 1 {
		t.Fatalf("sticker not clamped/decoded: %+v", els[0])
	}
	if els[1].NeedsURL() {
		t.Fatalf("legacy link content with url should configure the link")
	}
	if !els[2].NeedsURL() || els[2].Body.(LinkBody).Label != "Link Text" {
		t.Fatalf("legacy link text should become the label: %+v", els[2])
	}
	if els[3].Body != (ChartBody{Chart: ChartT}) {
		t.Fatalf("legacy non-venn chart should be a T-chart: %+v", els[3])
	}
}

func TestElementDecodeLegacyVideoContent(t *testing.T) {
	raw := `[
		{"id":"a","type":"video","x":10,"y":10,"content":"youtube.com/watch?v=abc"},
		{"id":"b","type":"video","x":10,"y":10,"content":"my favourite clip"},
		{"id":"c","type":"link","x":10,"y":10,"content":"example.org/fractions"}
	]`
	var els []Element
	if err := json.Unmarshal([]byte(raw), &els); err != nil {
		t.Fatalf("legacy videos must decode: %v", err)
	}
	if got := els[0].Body.(VideoBody).URL; got != "https://youtube.com/watch?v=abc" {
		t.Fatalf("bare host url = %q", got)
	}
	if !els[1].NeedsURL() {
		t.Fatalf("unreadable legacy video should be unconfigured: %+v", els[1])
	}
	if got := els[2].Body.(LinkBody).URL; got != "https://example.org/fractions" {
		t.Fatalf("bare host link = %q", got)
	}
}

func TestElementDecodeRejectsBadInput(t *testing.T) {
	bad := []string{
		`{"id":"x","type":"hologram"}`,
		`{"id":"x","type":"chart","chart":"pie"}`,
		`{"id":"x","type":"video","url":"not a url"}`,
	}
	for _, in := range bad {
		var e Element
		if err := json.Unmarshal([]byte(in), &e); err == nil {
			t.Fatalf("expected error decoding %s", in)
		}
	}
}

func TestLessonCloneIsDeep(t *testing.T) {
	p := LessonPlan{ID: "l1", Slides: []Slide{{Title: "One", BulletPoints: []string{"a"}, CustomElements: []Element{}}}}
	c := p.Clone()
	c.Slides[0].Title = "Changed"
	c.Slides[0].BulletPoints[0] = "b"
	if p.Slides[0].Title != "One" || p.Slides[0].BulletPoints[0] != "a" {
		t.Fatalf("clone shares memory with original")
	}
}
