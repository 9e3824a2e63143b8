/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"math/rand"
	"testing"
)

func TestPercentPixelRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		p := Percent{X: r.Float64()*140 - 20, Y: r.Float64()*140 - 20}
		c := Size{W: 1 + r.Float64()*3000, H: 1 + r.Float64()*2000}
		back := ToPercent(ToPixel(p, c), c)
		if !Near(p, back, 1e-9) {
			t.Fatalf("round trip %v in %v gave %v", p, c, back)
		}
	}
}

func TestToPercentEmptyContainer(t *testing.T) {
	if got := ToPercent(Point{X: 10, Y: 10}, Size{}); got != (Percent{}) {
		t.Fatalf("empty container should map to origin, got %v", got)
	}
	if got := ToPercent(Point{X: 10, Y: 10}, Size{W: math.NaN(), H: 10}); got != (Percent{}) {
		t.Fatalf("NaN container should map to origin, got %v", got)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ in, want Percent }{
		{Percent{50, 50}, Percent{50, 50}},
		{Percent{-3, 120}, Percent{0, 100}},
		{Percent{math.NaN(), 100.0001}, Percent{0, 100}},
	}
	for _, c := range cases {
		if got := Clamp(c.in); got != c.want {
			t.Fatalf("Clamp(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFloatRound(t *testing.T) {
	if got := FloatRound(12.34567, 3); got != 12.346 {
		t.Fatalf("FloatRound = %v", got)
	}
	if got := FloatRound(1.5, -1); got != 1.5 {
		t.Fatalf("negative places must be a no-op, got %v", got)
	}
}
