/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func snap(slide int, blob string, ts time.Time) Snapshot {
	return Snapshot{Slide: slide, Blob: []byte(blob), TS: ts}
}

func TestUndoRedoRestoresStates(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1 << 20, MaxPerSlide: 10, MinInterval: 10 * time.Millisecond})
	t0 := time.Now()
	// States before change 1 and change 2.
	m.Push(snap(1, "a", t0))
	m.Push(snap(1, "b", t0.Add(20*time.Millisecond)))
	// Current state is "c".
	s, ok := m.Undo(snap(1, "c", t0.Add(40*time.Millisecond)))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo = %q %v, want b", s.Blob, ok)
	}
	s, ok = m.Undo(snap(1, "b", t0.Add(50*time.Millisecond)))
	if !ok || string(s.Blob) != "a" {
		t.Fatalf("second undo = %q %v, want a", s.Blob, ok)
	}
	if m.CanUndo(1) {
		t.Fatal("undo stack should be empty")
	}
	s, ok = m.Redo(snap(1, "a", t0.Add(60*time.Millisecond)))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("redo = %q %v, want b", s.Blob, ok)
	}
	s, ok = m.Redo(snap(1, "b", t0.Add(70*time.Millisecond)))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("second redo = %q %v, want c", s.Blob, ok)
	}
	if m.CanRedo(1) {
		t.Fatal("redo stack should be empty")
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.Push(snap(0, "a", t0))
	m.Undo(snap(0, "b", t0.Add(time.Second)))
	if !m.CanRedo(0) {
		t.Fatal("expected redo entry")
	}
	m.Push(snap(0, "a", t0.Add(2*time.Second)))
	if m.CanRedo(0) {
		t.Fatal("new change should clear redo")
	}
}

func TestCoalesceKeepsEarliestState(t *testing.T) {
	m := NewManager(Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	m.Push(snap(2, "1", t0))
	m.Push(snap(2, "2", t0.Add(10*time.Millisecond)))
	m.Push(snap(2, "3", t0.Add(40*time.Millisecond)))
	if _, _, total := m.Stats(); total != 1 {
		t.Fatalf("expected 1 snapshot, got %d", total)
	}
	s, ok := m.Undo(snap(2, "4", t0.Add(time.Second)))
	if !ok || string(s.Blob) != "1" {
		t.Fatalf("coalesced undo = %q, want 1", s.Blob)
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1 << 20, MaxPerSlide: 2})
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		m.Push(snap(3, "xxxxx", t0.Add(time.Duration(i)*time.Second)))
	}
	if _, _, total := m.Stats(); total != 2 {
		t.Fatalf("MaxPerSlide should keep 2, got %d", total)
	}

	m = NewManager(Config{MaxBytes: 12})
	m.Push(snap(1, "aaaaa", t0))
	m.Push(snap(2, "bbbbb", t0.Add(time.Second)))
	m.Push(snap(1, "ccccc", t0.Add(2*time.Second)))
	bytes, _, total := m.Stats()
	if bytes > 12 || total != 2 {
		t.Fatalf("byte cap: bytes=%d total=%d", bytes, total)
	}
	if s, _ := m.Undo(snap(1, "z", t0.Add(3*time.Second))); string(s.Blob) != "ccccc" {
		t.Fatalf("oldest entry should be pruned, got %q", s.Blob)
	}
}

func TestClear(t *testing.T) {
	m := NewManager(Config{})
	m.Push(snap(4, "abc", time.Now()))
	m.Clear(4)
	if b, slides, _ := m.Stats(); b != 0 || slides != 0 {
		t.Fatalf("after clear bytes=%d slides=%d", b, slides)
	}
}
