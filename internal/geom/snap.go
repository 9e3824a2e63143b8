/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Axis of a guide line.
type Axis int

const (
	Vertical   Axis = iota // constant X
	Horizontal             // constant Y
)

// Guide is an alignment line the dragged element snapped to.
// Kind is "slide" for edges and centre lines, "element" for sibling positions.
type Guide struct {
	Axis     Axis
	Position float64
	Kind     string
}

// SnapOptions controls snapping. Tolerance is in percent.
type SnapOptions struct {
	Tolerance   float64
	SlideGuides bool
	Siblings    []Percent
}

// Snap moves p onto the nearest guide on each axis when it lies within the
// tolerance and returns the guides it used. Axes snap independently.
func Snap(p Percent, opts SnapOptions) (Percent, []Guide) {
	tol := opts.Tolerance
	if tol <= 0 {
		tol = 1.5
	}
	var xs, ys []Guide
	if opts.SlideGuides {
		for _, v := range []float64{0, 50, 100} {
			xs = append(xs, Guide{Axis: Vertical, Position: v, Kind: "slide"})
			ys = append(ys, Guide{Axis: Horizontal, Position: v, Kind: "slide"})
		}
	}
	for _, s := range opts.Siblings {
		xs = append(xs, Guide{Axis: Vertical, Position: s.X, Kind: "element"})
		ys = append(ys, Guide{Axis: Horizontal, Position: s.Y, Kind: "element"})
	}

	var used []Guide
	if g, ok := nearest(p.X, xs, tol); ok {
		p.X = FloatRound(g.Position, 3)
		used = append(used, g)
	}
	if g, ok := nearest(p.Y, ys, tol); ok {
		p.Y = FloatRound(g.Position, 3)
		used = append(used, g)
	}
	return p, used
}

// nearest picks the closest candidate within tol. On a tie the earlier
// candidate wins, which prefers slide guides over siblings.
func nearest(v float64, cands []Guide, tol float64) (Guide, bool) {
	best, bestDist := Guide{}, math.Inf(1)
	for _, c := range cands {
		d := math.Abs(v - c.Position)
		if d <= tol && d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}
