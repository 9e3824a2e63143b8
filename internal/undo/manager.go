/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps bounded per-slide undo and redo stacks of opaque
// state snapshots.
package undo

import (
	"sync"
	"time"
)

// Snapshot is the saved state of one slide. Blob is opaque to the manager;
// its length is what counts against MaxBytes.
type Snapshot struct {
	Slide int
	Blob  []byte
	TS    time.Time
}

// Config controls memory and depth caps and coalescing.
type Config struct {
	// MaxBytes is a soft cap over all undo entries; the oldest are pruned first.
	MaxBytes int
	// MaxPerSlide limits the undo depth of one slide (0 means unlimited).
	MaxPerSlide int
	// MinInterval folds pushes for the same slide that arrive within the
	// interval into the earlier entry, so one undo reverts the whole burst.
	MinInterval time.Duration
}

// Manager is safe for concurrent use.
type Manager struct {
	cfg        Config
	mu         sync.Mutex
	undo       map[int][]Snapshot
	redo       map[int][]Snapshot
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &Manager{cfg: cfg, undo: make(map[int][]Snapshot), redo: make(map[int][]Snapshot)}
}

// Push records the state of a slide before a change and clears its redo stack.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redo[s.Slide] = nil
	stack := m.undo[s.Slide]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 && s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
		// Keep the state from before the burst, move its time forward.
		stack[n-1].TS = s.TS
		return
	}
	m.undo[s.Slide] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.Slide)
}

// Undo returns the state to restore and saves current for Redo.
func (m *Manager) Undo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[current.Slide]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[current.Slide] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[current.Slide] = append(m.redo[current.Slide], current)
	return s, true
}

// Redo returns the state undone last and saves current for Undo.
func (m *Manager) Redo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[current.Slide]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[current.Slide] = r[:len(r)-1]
	m.undo[current.Slide] = append(m.undo[current.Slide], current)
	m.totalBytes += len(current.Blob)
	m.enforceCapsLocked(current.Slide)
	return s, true
}

// CanUndo and CanRedo report whether the slide has entries.
func (m *Manager) CanUndo(slide int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[slide]) > 0
}

func (m *Manager) CanRedo(slide int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[slide]) > 0
}

// Clear drops both stacks of a slide.
func (m *Manager) Clear(slide int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[slide] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, slide)
	delete(m.redo, slide)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, slides int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.undo {
		if len(v) > 0 {
			slides++
		}
		totalSnapshots += len(v)
	}
	return m.totalBytes, slides, totalSnapshots
}

func (m *Manager) enforceCapsLocked(slide int) {
	if m.cfg.MaxPerSlide > 0 {
		stack := m.undo[slide]
		if len(stack) > m.cfg.MaxPerSlide {
			drop := len(stack) - m.cfg.MaxPerSlide
			for i := 0; i < drop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[slide] = append([]Snapshot{}, stack[drop:]...)
		}
	}
	// Global cap: prune the oldest entry across all slides.
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldest, found := 0, false
		var oldestTS time.Time
		for sl, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldest, oldestTS, found = sl, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldest]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldest] = stack[1:]
		if len(m.undo[oldest]) == 0 {
			delete(m.undo, oldest)
		}
	}
}
