/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package task runs remote calls as cancellable tasks keyed by slot. A new
// task for a slot cancels the previous one, and only the newest task of a
// slot may apply its result.
package task

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

// ErrSuperseded is the result of a task replaced by a newer one for the
// same slot, or cancelled by Close.
var ErrSuperseded = errors.New("superseded by a newer request")

// Slot names used by the presenter and games.
func SlideMain(i int) string    { return "slide:" + strconv.Itoa(i) + ":main" }
func SlideExample(i int) string { return "slide:" + strconv.Itoa(i) + ":example" }
func Game(name string) string   { return "game:" + name }

// Slots tracks the running task of every slot.
type Slots struct {
	mu     sync.Mutex
	parent context.Context
	seq    uint64
	live   map[string]entry
	wg     sync.WaitGroup
	closed bool
}

type entry struct {
	id     uint64
	cancel context.CancelFunc
}

// New returns Slots whose tasks derive from parent.
func New(parent context.Context) *Slots {
	if parent == nil {
		parent = context.Background()
	}
	return &Slots{parent: parent, live: make(map[string]entry)}
}

// Ticket identifies one started task.
type Ticket struct {
	Slot string
	id   uint64
}

// Start cancels the task running in slot, if any, and returns a context
// and ticket for a new one.
func (s *Slots) Start(slot string) (context.Context, Ticket, error) {
	return s.start(slot, false)
}

// start registers a task. Tracked tasks join wg under mu so that Close
// cannot miss one that is starting.
func (s *Slots) start(slot string, tracked bool) (context.Context, Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, Ticket{}, ErrSuperseded
	}
	if tracked {
		s.wg.Add(1)
	}
	if old, ok := s.live[slot]; ok {
		old.cancel()
	}
	s.seq++
	ctx, cancel := context.WithCancel(s.parent)
	s.live[slot] = entry{id: s.seq, cancel: cancel}
	return ctx, Ticket{Slot: slot, id: s.seq}, nil
}

// Current reports whether t is still the newest task of its slot.
func (s *Slots) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live[t.Slot]
	return ok && e.id == t.id
}

// Finish applies the result through apply if t is still current, then
// retires the task. It reports whether apply ran.
func (s *Slots) Finish(t Ticket, apply func()) bool {
	s.mu.Lock()
	e, ok := s.live[t.Slot]
	current := ok && e.id == t.id
	if current {
		delete(s.live, t.Slot)
	}
	s.mu.Unlock()
	if !current {
		return false
	}
	e.cancel()
	if apply != nil {
		apply()
	}
	return true
}

// Cancel stops the task running in slot.
func (s *Slots) Cancel(slot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.live[slot]; ok {
		e.cancel()
		delete(s.live, slot)
	}
}

// Running returns the number of live tasks.
func (s *Slots) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close cancels every task and rejects new ones. It waits for tasks started
// with Go to return.
func (s *Slots) Close() {
	s.mu.Lock()
	s.closed = true
	for slot, e := range s.live {
		e.cancel()
		delete(s.live, slot)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Go runs fn in a goroutine for slot. apply runs only if no newer task
// replaced this one; a stale result is dropped.
func Go[T any](s *Slots, slot string, fn func(ctx context.Context) (T, error), apply func(T, error)) (Ticket, error) {
	ctx, t, err := s.start(slot, true)
	if err != nil {
		return Ticket{}, err
	}
	go func() {
		defer s.wg.Done()
		v, err := fn(ctx)
		s.Finish(t, func() {
			if apply != nil {
				apply(v, err)
			}
		})
	}()
	return t, nil
}

// Run is the synchronous form of Go. A superseded task returns ErrSuperseded
// and its value is dropped.
func Run[T any](s *Slots, slot string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	ctx, t, err := s.Start(slot)
	if err != nil {
		return zero, err
	}
	v, err := fn(ctx)
	var out T
	var outErr error
	if !s.Finish(t, func() { out, outErr = v, err }) {
		return zero, ErrSuperseded
	}
	return out, outErr
}
