/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "testing"

func TestDragDoesNotJumpOnFirstMove(t *testing.T) {
	container := Rect{X: 100, Y: 50, W: 800, H: 450}
	elem := Percent{X: 20, Y: 20}
	// Press 30px right and 10px below the element's anchor (160,90 local).
	pointer := Point{X: 100 + 160 + 30, Y: 50 + 90 + 10}
	d := BeginDrag(pointer, elem, container)
	if off := d.Offset(); off != (Point{X: 30, Y: 10}) {
		t.Fatalf("offset = %v", off)
	}
	if got := d.Move(pointer, container); !Near(got, elem, 1e-9) {
		t.Fatalf("move without pointer motion changed position: %v", got)
	}
	// 80px right is 10% of the width.
	got := d.Move(Point{X: pointer.X + 80, Y: pointer.Y}, container)
	if !Near(got, Percent{X: 30, Y: 20}, 1e-9) {
		t.Fatalf("move = %v, want {30 20}", got)
	}
}

func TestDragAcrossResize(t *testing.T) {
	d := BeginDrag(Point{X: 400, Y: 225}, Percent{X: 50, Y: 50}, Rect{W: 800, H: 450})
	// The container doubles while dragging; the pointer ends at the new centre.
	got := d.Move(Point{X: 800, Y: 450}, Rect{W: 1600, H: 900})
	if !Near(got, Percent{X: 50, Y: 50}, 1e-9) {
		t.Fatalf("resized move = %v", got)
	}
}

func TestDragCanLeaveSlideUntilClamped(t *testing.T) {
	c := Rect{W: 200, H: 100}
	d := BeginDrag(Point{X: 100, Y: 50}, Percent{X: 50, Y: 50}, c)
	raw := d.Move(Point{X: 400, Y: -50}, c)
	if raw.X <= 100 || raw.Y >= 0 {
		t.Fatalf("raw move should be outside the slide: %v", raw)
	}
	if got := Clamp(raw); got != (Percent{X: 100, Y: 0}) {
		t.Fatalf("clamped = %v", got)
	}
}

func TestDragEmptyContainerKeepsStart(t *testing.T) {
	d := BeginDrag(Point{X: 10, Y: 10}, Percent{X: 33, Y: 44}, Rect{W: 100, H: 100})
	if got := d.Move(Point{X: 90, Y: 90}, Rect{}); got != d.Start() {
		t.Fatalf("empty container move = %v", got)
	}
}
