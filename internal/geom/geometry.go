/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom converts between pointer pixels and the percentage space
// that slide elements are stored in, so a layout survives any viewport size.
package geom

import "math"

// Point is a position in pixels, in the same coordinate system as the
// container rectangle it is measured against.
type Point struct{ X, Y float64 }

// Size is a container's pixel width and height.
type Size struct{ W, H float64 }

// Rect is a container's bounding rectangle in pixels.
type Rect struct {
	X, Y float64
	W, H float64
}

func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Local translates a client-space point into the rectangle's own space.
func (r Rect) Local(p Point) Point { return Point{X: p.X - r.X, Y: p.Y - r.Y} }

// Percent is a position as percentages of container width and height.
type Percent struct{ X, Y float64 }

// Empty reports whether the size cannot be used as a divisor.
func (s Size) Empty() bool { return !(s.W > 0) || !(s.H > 0) }

// ToPixel scales a percentage position to pixels for container size c.
func ToPixel(p Percent, c Size) Point {
	return Point{X: p.X / 100 * c.W, Y: p.Y / 100 * c.H}
}

// ToPercent converts a container-local pixel position to percentages.
// An empty container maps everything to the origin.
func ToPercent(p Point, c Size) Percent {
	if c.Empty() {
		return Percent{}
	}
	return Percent{X: p.X / c.W * 100, Y: p.Y / c.H * 100}
}

// Clamp limits both coordinates to [0,100]. NaN becomes 0.
func Clamp(p Percent) Percent {
	return Percent{X: clamp01(p.X), Y: clamp01(p.Y)}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// FloatRound rounds v to n decimal places.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// Near reports whether a and b differ by at most eps on both axes.
func Near(a, b Percent, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}
