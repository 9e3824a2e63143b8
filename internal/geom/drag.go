/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// DragSession keeps the pixel offset between the pointer and the dragged
// element's anchor, so the element does not jump to the pointer on the
// first move.
type DragSession struct {
	offset Point
	start  Percent
}

// BeginDrag starts a drag. pointer is in client space; container is the
// slide's bounding rectangle at the time of the press.
func BeginDrag(pointer Point, elem Percent, container Rect) DragSession {
	local := container.Local(pointer)
	px := ToPixel(elem, container.Size())
	return DragSession{offset: Point{X: local.X - px.X, Y: local.Y - px.Y}, start: elem}
}

// Offset returns the pointer to element offset in pixels.
func (d DragSession) Offset() Point { return d.offset }

// Start returns the element position when the drag began.
func (d DragSession) Start() Percent { return d.start }

// Move returns the element position for the current pointer. The container
// may have been resized since BeginDrag; the offset is kept in pixels.
// The result is not clamped; callers store Clamp(Move(...)).
func (d DragSession) Move(pointer Point, container Rect) Percent {
	if container.Size().Empty() {
		return d.start
	}
	local := container.Local(pointer)
	return ToPercent(Point{X: local.X - d.offset.X, Y: local.Y - d.offset.Y}, container.Size())
}
