/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package games

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"mapleprep/internal/domain"

	"github.com/facebookgo/clock"
)

func testDeps() (Deps, *clock.Mock) {
	m := clock.NewMock()
	return Deps{Clock: m, Rand: rand.New(rand.NewSource(7))}, m
}

func memoryData(n int) domain.MemoryGameData {
	var d domain.MemoryGameData
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		d.Pairs = append(d.Pairs, domain.MemoryPair{ID: id, Item1: "word " + id, Item2: "meaning " + id})
	}
	return d
}

// pairIndexes returns the table positions of both cards of every pair.
func pairIndexes(m *Memory) map[string][]int {
	out := map[string][]int{}
	for i, c := range m.Cards() {
		out[c.MatchID] = append(out[c.MatchID], i)
	}
	return out
}

func TestNewMemoryDealsTwoCardsPerPair(t *testing.T) {
	deps, _ := testDeps()
	m, err := NewMemory(memoryData(8), deps)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	cards := m.Cards()
	if len(cards) != 16 {
		t.Fatalf("cards = %d", len(cards))
	}
	for id, idx := range pairIndexes(m) {
		if len(idx) != 2 {
			t.Fatalf("pair %s has %d cards", id, len(idx))
		}
		a, b := cards[idx[0]], cards[idx[1]]
		if !strings.HasPrefix(a.ID, id+"-") || !strings.HasPrefix(b.ID, id+"-") || a.ID == b.ID {
			t.Fatalf("card ids %q %q", a.ID, b.ID)
		}
	}
}

func TestNewMemoryRejectsBadSeeds(t *testing.T) {
	deps, _ := testDeps()
	bad := []domain.MemoryGameData{
		{},
		memoryData(1),
		{Pairs: []domain.MemoryPair{{ID: "a", Item1: "x", Item2: "y"}, {ID: "a", Item1: "p", Item2: "q"}}},
		{Pairs: []domain.MemoryPair{{ID: "a", Item1: "x"}, {ID: "b", Item1: "p", Item2: "q"}}},
	}
	for i, d := range bad {
		m, err := NewMemory(d, deps)
		if !errors.Is(err, ErrLoad) || m != nil {
			t.Fatalf("case %d: got %v, %v", i, m, err)
		}
	}
}

func TestMemoryMatchResolvesAfterDelay(t *testing.T) {
	deps, clk := testDeps()
	m, _ := NewMemory(memoryData(2), deps)
	idx := pairIndexes(m)["a"]
	changed := 0
	m.OnChange(func() { changed++ })

	if !m.Flip(idx[0]) || !m.Flip(idx[1]) {
		t.Fatal("flips refused")
	}
	other := pairIndexes(m)["b"][0]
	if m.Flip(other) {
		t.Fatal("third card flipped while two are face up")
	}
	clk.Add(MatchDelay - time.Millisecond)
	if m.Matched() != 0 {
		t.Fatal("matched before the delay")
	}
	clk.Add(time.Millisecond)
	if m.Matched() != 2 || changed != 1 {
		t.Fatalf("matched = %d, changed = %d", m.Matched(), changed)
	}
	if m.Flip(idx[0]) {
		t.Fatal("matched card flipped again")
	}
	if m.Moves() != 1 {
		t.Fatalf("moves = %d", m.Moves())
	}
}

func TestMemoryMismatchFlipsBack(t *testing.T) {
	deps, clk := testDeps()
	m, _ := NewMemory(memoryData(2), deps)
	a, b := pairIndexes(m)["a"][0], pairIndexes(m)["b"][0]
	m.Flip(a)
	if m.Flip(a) {
		t.Fatal("face-up card flipped twice")
	}
	m.Flip(b)
	clk.Add(MismatchDelay - time.Millisecond)
	if !m.Cards()[a].Flipped || !m.Cards()[b].Flipped {
		t.Fatal("cards turned back early")
	}
	clk.Add(time.Millisecond)
	cards := m.Cards()
	if cards[a].Flipped || cards[b].Flipped || m.Matched() != 0 {
		t.Fatalf("after mismatch: %+v %+v", cards[a], cards[b])
	}
}

func TestMemoryCompleteOnlyWhenAllMatched(t *testing.T) {
	deps, clk := testDeps()
	m, _ := NewMemory(memoryData(3), deps)
	for _, id := range []string{"a", "b", "c"} {
		if m.Complete() {
			t.Fatalf("complete before pair %s", id)
		}
		idx := pairIndexes(m)[id]
		m.Flip(idx[0])
		m.Flip(idx[1])
		clk.Add(MatchDelay)
	}
	if !m.Complete() || m.Matched() != len(m.Cards()) {
		t.Fatalf("matched %d of %d", m.Matched(), len(m.Cards()))
	}
}

func TestMemoryCloseStopsPendingTimer(t *testing.T) {
	deps, clk := testDeps()
	m, _ := NewMemory(memoryData(2), deps)
	idx := pairIndexes(m)["a"]
	m.Flip(idx[0])
	m.Flip(idx[1])
	m.Close()
	clk.Add(time.Second)
	if m.Matched() != 0 {
		t.Fatal("timer fired after Close")
	}
}
