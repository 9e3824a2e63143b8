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
	"fmt"
	"net/url"
	"strings"
)

// ElementKind discriminates the Body variants of an Element.
type ElementKind string

const (
	KindText    ElementKind = "text"
	KindImage   ElementKind = "image"
	KindSticker ElementKind = "sticker"
	KindChart   ElementKind = "chart"
	KindLink    ElementKind = "link"
	KindVideo   ElementKind = "video"
)

// ChartKind enumerates the chart templates a chart element can show.
type ChartKind string

const (
	ChartVenn ChartKind = "venn"
	ChartT    ChartKind = "tchart"
)

var (
	ErrUnknownKind  = errors.New("unknown element type")
	ErrUnknownChart = errors.New("unknown chart kind")
	ErrInvalidURL   = errors.New("invalid url")
)

// DefaultX and DefaultY are where new elements appear, in percent.
const (
	DefaultX = 20.0
	DefaultY = 20.0
)

// Element is a freely positioned annotation on a slide. X and Y are
// percentages of the slide container and are kept inside [0,100].
type Element struct {
	ID    string
	X, Y  float64
	Color string
	Scale float64
	Body  Body
}

// Body is the type specific payload of an Element.
type Body interface {
	Kind() ElementKind
}

type TextBody struct{ Text string }

// ImageBody references an image by data URI or URL.
type ImageBody struct{ Src string }

type StickerBody struct{ Emoji string }

type ChartBody struct{ Chart ChartKind }

// LinkBody is unconfigured while URL is empty.
type LinkBody struct {
	URL   string
	Label string
}

// VideoBody is unconfigured while URL is empty.
type VideoBody struct{ URL string }

func (TextBody) Kind() ElementKind    { return KindText }
func (ImageBody) Kind() ElementKind   { return KindImage }
func (StickerBody) Kind() ElementKind { return KindSticker }
func (ChartBody) Kind() ElementKind   { return KindChart }
func (LinkBody) Kind() ElementKind    { return KindLink }
func (VideoBody) Kind() ElementKind   { return KindVideo }

// NewElement creates an element of kind at the default position. For link
// elements initial becomes the label; the URL is configured separately.
func NewElement(kind ElementKind, initial, color string) (Element, error) {
	e := Element{ID: NewID(), X: DefaultX, Y: DefaultY, Color: color, Scale: 1}
	switch kind {
	case KindText:
		e.Body = TextBody{Text: initial}
	case KindImage:
		e.Body = ImageBody{Src: initial}
	case KindSticker:
		e.Body = StickerBody{Emoji: initial}
	case KindChart:
		ck := ChartKind(strings.TrimSpace(initial))
		if ck == "" {
			ck = ChartVenn
		}
		if !ck.Valid() {
			return Element{}, fmt.Errorf("%w: %q", ErrUnknownChart, initial)
		}
		e.Body = ChartBody{Chart: ck}
	case KindLink:
		e.Body = LinkBody{Label: initial}
	case KindVideo:
		e.Body = VideoBody{}
	default:
		return Element{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return e, nil
}

// Valid reports whether ck is a known chart kind.
func (ck ChartKind) Valid() bool { return ck == ChartVenn || ck == ChartT }

// Kind returns the element's type, or "" for an element without a body.
func (e Element) Kind() ElementKind {
	if e.Body == nil {
		return ""
	}
	return e.Body.Kind()
}

// NeedsURL reports whether the element is a link or video without a URL yet.
func (e Element) NeedsURL() bool {
	switch b := e.Body.(type) {
	case LinkBody:
		return b.URL == ""
	case VideoBody:
		return b.URL == ""
	}
	return false
}

// Content returns the editable content string of the element.
func (e Element) Content() string {
	switch b := e.Body.(type) {
	case TextBody:
		return b.Text
	case ImageBody:
		return b.Src
	case StickerBody:
		return b.Emoji
	case ChartBody:
		return string(b.Chart)
	case LinkBody:
		if b.URL == "" {
			return b.Label
		}
		return b.URL
	case VideoBody:
		return b.URL
	}
	return ""
}

// WithContent returns a copy whose variant field is replaced by content.
// Link and video content must be a valid URL; chart content a known kind.
func (e Element) WithContent(content string) (Element, error) {
	switch b := e.Body.(type) {
	case TextBody:
		e.Body = TextBody{Text: content}
	case ImageBody:
		e.Body = ImageBody{Src: content}
	case StickerBody:
		e.Body = StickerBody{Emoji: content}
	case ChartBody:
		ck := ChartKind(strings.TrimSpace(content))
		if !ck.Valid() {
			return e, fmt.Errorf("%w: %q", ErrUnknownChart, content)
		}
		e.Body = ChartBody{Chart: ck}
	case LinkBody:
		u, err := ValidateURL(content)
		if err != nil {
			return e, err
		}
		b.URL = u
		e.Body = b
	case VideoBody:
		u, err := ValidateURL(content)
		if err != nil {
			return e, err
		}
		e.Body = VideoBody{URL: u}
	default:
		return e, ErrUnknownKind
	}
	return e, nil
}

// Clamped returns e with X and Y limited to [0,100].
func (e Element) Clamped() Element {
	e.X = clampPercent(e.X)
	e.Y = clampPercent(e.Y)
	return e
}

func clampPercent(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// ValidateURL accepts absolute http and https URLs and returns the trimmed form.
func ValidateURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, s)
	}
	return s, nil
}

// EmbedURL returns the YouTube embed address for a video element, or "" when
// the URL is not a YouTube link and should be opened directly.
func (b VideoBody) EmbedURL() string {
	if !strings.Contains(b.URL, "youtube") && !strings.Contains(b.URL, "youtu.be") {
		return ""
	}
	id := ""
	if _, after, ok := strings.Cut(b.URL, "v="); ok {
		id, _, _ = strings.Cut(after, "&")
	} else {
		trimmed := strings.TrimRight(b.URL, "/")
		id = trimmed[strings.LastIndex(trimmed, "/")+1:]
		id, _, _ = strings.Cut(id, "?")
	}
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id + "?controls=1"
}

type elementWire struct {
	ID    string      `json:"id"`
	Type  ElementKind `json:"type"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	Color string      `json:"color,omitempty"`
	Scale float64     `json:"scale,omitempty"`
	Text  string      `json:"text,omitempty"`
	Src   string      `json:"src,omitempty"`
	Emoji string      `json:"emoji,omitempty"`
	Chart ChartKind   `json:"chart,omitempty"`
	URL   string      `json:"url,omitempty"`
	Label string      `json:"label,omitempty"`
	// Content is the single string field of libraries saved before the
	// element variants were split. Read only.
	Content string `json:"content,omitempty"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	w := elementWire{ID: e.ID, Type: e.Kind(), X: e.X, Y: e.Y, Color: e.Color, Scale: e.Scale}
	switch b := e.Body.(type) {
	case TextBody:
		w.Text = b.Text
	case ImageBody:
		w.Src = b.Src
	case StickerBody:
		w.Emoji = b.Emoji
	case ChartBody:
		w.Chart = b.Chart
	case LinkBody:
		w.URL, w.Label = b.URL, b.Label
	case VideoBody:
		w.URL = b.URL
	default:
		return nil, ErrUnknownKind
	}
	return json.Marshal(w)
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var w elementWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Element{ID: w.ID, X: w.X, Y: w.Y, Color: w.Color, Scale: w.Scale}
	if out.Scale == 0 {
		out.Scale = 1
	}
	pick := func(v string) string {
		if v != "" {
			return v
		}
		return w.Content
	}
	switch w.Type {
	case KindText:
		out.Body = TextBody{Text: pick(w.Text)}
	case KindImage:
		out.Body = ImageBody{Src: pick(w.Src)}
	case KindSticker:
		out.Body = StickerBody{Emoji: pick(w.Emoji)}
	case KindChart:
		ck := w.Chart
		if ck == "" {
			// Old libraries drew every non-venn chart as a T-chart.
			ck = ChartT
			if w.Content == string(ChartVenn) {
				ck = ChartVenn
			}
		}
		if !ck.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownChart, ck)
		}
		out.Body = ChartBody{Chart: ck}
	case KindLink:
		lb := LinkBody{URL: w.URL, Label: w.Label}
		if lb.URL == "" && w.Content != "" {
			if u := legacyURL(w.Content); u != "" {
				lb.URL = u
			} else {
				lb.Label = w.Content
			}
		}
		if lb.URL != "" {
			u, err := ValidateURL(lb.URL)
			if err != nil {
				return err
			}
			lb.URL = u
		}
		out.Body = lb
	case KindVideo:
		u := w.URL
		if u != "" {
			v, err := ValidateURL(u)
			if err != nil {
				return err
			}
			u = v
		} else if w.Content != "" {
			// Old libraries kept whatever was typed. Anything that does not
			// read as a web address leaves the video unconfigured.
			u = legacyURL(w.Content)
		}
		out.Body = VideoBody{URL: u}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, w.Type)
	}
	*e = out.Clamped()
	return nil
}

// legacyURL reads a stored address that was never validated. A bare host
// such as "youtube.com/watch?v=x" gets https://. It returns "" when raw is
// not a web address.
func legacyURL(raw string) string {
	if u, err := ValidateURL(raw); err == nil {
		return u
	}
	s := strings.TrimSpace(raw)
	if strings.Contains(s, "://") || strings.ContainsAny(s, " \t") || !strings.Contains(s, ".") {
		return ""
	}
	u, err := ValidateURL("https://" + s)
	if err != nil {
		return ""
	}
	return u
}
