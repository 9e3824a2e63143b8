/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package games

import (
	"sync"
	"time"

	"mapleprep/internal/domain"

	"github.com/facebookgo/clock"
)

// Delays before a face-up pair resolves.
const (
	MatchDelay    = 500 * time.Millisecond
	MismatchDelay = 1000 * time.Millisecond
)

// Card is one face of a memory pair. Both cards of a pair share MatchID.
type Card struct {
	ID      string
	Content string
	MatchID string
	Flipped bool
	Matched bool
}

// Memory is a memory match session. Pairs resolve on the clock, so all
// methods are safe to call while a resolution timer is pending.
type Memory struct {
	mu       sync.Mutex
	clk      clock.Clock
	cards    []Card
	up       []int
	matched  int
	moves    int
	pending  *clock.Timer
	onChange func()
}

// NewMemory deals two cards per pair and shuffles the deck.
func NewMemory(data domain.MemoryGameData, deps Deps) (*Memory, error) {
	if len(data.Pairs) < 2 {
		return nil, loadErr(NameMemory, "need at least 2 pairs, got %d", len(data.Pairs))
	}
	deps = deps.withDefaults()
	seen := make(map[string]bool, len(data.Pairs))
	cards := make([]Card, 0, 2*len(data.Pairs))
	for i, p := range data.Pairs {
		if p.ID == "" || p.Item1 == "" || p.Item2 == "" {
			return nil, loadErr(NameMemory, "pair %d is incomplete", i)
		}
		if seen[p.ID] {
			return nil, loadErr(NameMemory, "duplicate pair id %q", p.ID)
		}
		seen[p.ID] = true
		cards = append(cards,
			Card{ID: p.ID + "-1", Content: p.Item1, MatchID: p.ID},
			Card{ID: p.ID + "-2", Content: p.Item2, MatchID: p.ID},
		)
	}
	shuffle(deps.Rand, cards)
	return &Memory{clk: deps.Clock, cards: cards}, nil
}

// OnChange registers fn to run after a pair resolves on the clock.
func (m *Memory) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Cards returns a copy of the deck in table order.
func (m *Memory) Cards() []Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Card(nil), m.cards...)
}

// Flip turns card i face up. It is ignored, returning false, while two
// cards are face up or when the card is already face up or matched.
func (m *Memory) Flip(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.cards) || len(m.up) == 2 {
		return false
	}
	c := &m.cards[i]
	if c.Flipped || c.Matched {
		return false
	}
	c.Flipped = true
	m.up = append(m.up, i)
	if len(m.up) < 2 {
		return true
	}
	m.moves++
	a, b := m.up[0], m.up[1]
	if m.cards[a].MatchID == m.cards[b].MatchID {
		m.pending = m.clk.AfterFunc(MatchDelay, func() { m.resolve(a, b, true) })
	} else {
		m.pending = m.clk.AfterFunc(MismatchDelay, func() { m.resolve(a, b, false) })
	}
	return true
}

func (m *Memory) resolve(a, b int, match bool) {
	m.mu.Lock()
	if len(m.up) != 2 || m.up[0] != a || m.up[1] != b {
		m.mu.Unlock()
		return
	}
	if match {
		m.cards[a].Matched = true
		m.cards[b].Matched = true
		m.matched += 2
	}
	m.cards[a].Flipped = false
	m.cards[b].Flipped = false
	m.up = m.up[:0]
	m.pending = nil
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Moves counts pairs turned over so far.
func (m *Memory) Moves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moves
}

// Matched counts matched cards.
func (m *Memory) Matched() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matched
}

// Complete reports whether every card is matched.
func (m *Memory) Complete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matched == len(m.cards)
}

// Close stops a pending resolution.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}
