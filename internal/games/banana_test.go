/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package games

import (
	"context"
	"errors"
	"testing"

	"mapleprep/internal/domain"
)

func allCorrectRounds(n int) []domain.MathBananaRound {
	rounds := make([]domain.MathBananaRound, n)
	for i := range rounds {
		rounds[i] = domain.MathBananaRound{Target: 4, TargetDescription: "Equals 4", Bananas: []domain.Banana{{Content: "2+2", Value: 4, IsCorrect: true}}}
	}
	return rounds
}

func sliceFirst(t *testing.T, g *BananaGame) bool {
	t.Helper()
	g.Spawn()
	bs := g.State().Bananas
	if len(bs) == 0 {
		t.Fatal("nothing spawned")
	}
	correct, ok := g.Slice(bs[len(bs)-1].ID)
	if !ok {
		t.Fatal("slice missed")
	}
	return correct
}

func TestBananaSpawnAndFall(t *testing.T) {
	deps, _ := testDeps()
	g, err := NewBananaGame(allCorrectRounds(1), deps)
	if err != nil {
		t.Fatal(err)
	}
	g.Spawn()
	b := g.State().Bananas[0]
	if b.X < 10 || b.X > 90 || b.Y != BananaSpawnY || b.Content != "2+2" {
		t.Fatalf("spawned %+v", b)
	}
	for i := 0; i < 73; i++ {
		g.Fall()
	}
	if bs := g.State().Bananas; len(bs) != 1 || bs[0].Y != 99.5 {
		t.Fatalf("after 73 ticks: %+v", bs)
	}
	g.Fall()
	if n := len(g.State().Bananas); n != 0 {
		t.Fatalf("banana below the floor kept: %d", n)
	}
}

func TestBananaRoundsAndVictory(t *testing.T) {
	deps, _ := testDeps()
	g, _ := NewBananaGame(allCorrectRounds(2), deps)
	for i := 0; i < BananaRoundProgress; i++ {
		if !sliceFirst(t, g) {
			t.Fatal("correct banana scored wrong")
		}
	}
	st := g.State()
	if st.Round != 1 || st.Progress != 0 || st.Score != 50 || len(st.Bananas) != 0 {
		t.Fatalf("after round 1: %+v", st)
	}
	for i := 0; i < BananaRoundProgress; i++ {
		sliceFirst(t, g)
	}
	st = g.State()
	if !st.Victory || st.Active || st.Score != 100 {
		t.Fatalf("after round 2: %+v", st)
	}
	g.Spawn()
	if len(g.State().Bananas) != 0 {
		t.Fatal("spawned after victory")
	}
}

func TestBananaWrongSliceCostsLife(t *testing.T) {
	deps, _ := testDeps()
	rounds := []domain.MathBananaRound{{Target: 4, Bananas: []domain.Banana{
		{Content: "2+2", Value: 4, IsCorrect: true},
		{Content: "2+3", Value: 5},
	}}}
	g, _ := NewBananaGame(rounds, deps)
	for lost := 0; lost < BananaLives; {
		g.Spawn()
		for _, b := range g.State().Bananas {
			if !b.Correct {
				if correct, ok := g.Slice(b.ID); correct || !ok {
					t.Fatalf("wrong slice: %v %v", correct, ok)
				}
				lost++
				break
			}
		}
	}
	st := g.State()
	if !g.GameOver() || st.Active || st.Lives != 0 || st.Victory {
		t.Fatalf("after %d misses: %+v", BananaLives, st)
	}
	if _, ok := g.Slice(1); ok {
		t.Fatal("slice accepted after game over")
	}
}

func TestBananaRunStopsOnCancel(t *testing.T) {
	deps, _ := testDeps()
	g, _ := NewBananaGame(allCorrectRounds(1), deps)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("run: %v", err)
	}
}

func TestNewBananaGameRejectsBadSeeds(t *testing.T) {
	deps, _ := testDeps()
	noCorrect := []domain.MathBananaRound{{Target: 1, Bananas: []domain.Banana{{Content: "2"}}}}
	for i, r := range [][]domain.MathBananaRound{nil, noCorrect, {{Target: 1}}} {
		if g, err := NewBananaGame(r, deps); !errors.Is(err, ErrLoad) || g != nil {
			t.Fatalf("case %d: %v", i, err)
		}
	}
}
