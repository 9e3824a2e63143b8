/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures, wraps and draws slide text for raster
// exports. Measurement goes through a Provider so tests stay deterministic
// with the built-in bitmap face.
package textlayout

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string
	SizePt float64
	Bold   bool
}

// Metrics are pixel metrics of a resolved face.
type Metrics struct {
	Ascent, Descent, LineGap int
}

// LineHeight is the baseline to baseline distance.
func (m Metrics) LineHeight() int { return m.Ascent + m.Descent + m.LineGap }

// Provider maps a FontSpec to a concrete face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider always returns basicfont.Face7x13.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  m.Ascent.Round(),
		Descent: m.Descent.Round(),
		LineGap: m.Height.Round() - m.Ascent.Round() - m.Descent.Round(),
	}
}

// Measure returns the advance width of s in pixels.
func Measure(p Provider, spec FontSpec, s string) int {
	if p == nil {
		p = BasicProvider{}
	}
	face, _ := p.Resolve(spec)
	return font.MeasureString(face, s).Round()
}

// Wrap breaks text into lines no wider than maxWidth pixels. Explicit
// newlines are kept; a single word wider than maxWidth gets a line of its own.
func Wrap(p Provider, spec FontSpec, text string, maxWidth int) []string {
	if p == nil {
		p = BasicProvider{}
	}
	face, _ := p.Resolve(spec)
	space := font.MeasureString(face, " ").Round()
	var out []string
	for _, para := range strings.Split(text, "\n") {
		var cur strings.Builder
		width := 0
		for _, word := range strings.Fields(para) {
			w := font.MeasureString(face, word).Round()
			if width > 0 && maxWidth > 0 && width+space+w > maxWidth {
				out = append(out, cur.String())
				cur.Reset()
				width = 0
			}
			if width > 0 {
				cur.WriteByte(' ')
				width += space
			}
			cur.WriteString(word)
			width += w
		}
		out = append(out, cur.String())
	}
	return out
}

// Draw writes lines onto dst starting with the first baseline at
// (x, y+ascent) and returns the y just below the last line.
func Draw(dst *image.RGBA, p Provider, spec FontSpec, lines []string, x, y int, col color.Color) int {
	if p == nil {
		p = BasicProvider{}
	}
	face, m := p.Resolve(spec)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	for _, ln := range lines {
		d.Dot = fixed.P(x, y+m.Ascent)
		d.DrawString(ln)
		if spec.Bold {
			// Bitmap faces have no bold cut; a one pixel overstrike stands in.
			d.Dot = fixed.P(x+1, y+m.Ascent)
			d.DrawString(ln)
		}
		y += m.LineHeight()
	}
	return y
}
