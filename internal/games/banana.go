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
	"math/rand"
	"sync"
	"time"

	"mapleprep/internal/domain"

	"github.com/facebookgo/clock"
)

// Banana slice tuning.
const (
	BananaLives         = 3
	BananaSpawnEvery    = 1500 * time.Millisecond
	BananaTickEvery     = 50 * time.Millisecond
	BananaFallPerTick   = 1.5
	BananaSpawnY        = -10.0
	BananaFloorY        = 100.0
	BananaHitScore      = 10
	BananaRoundProgress = 5
)

// FallingBanana is a banana on screen. X and Y are percentages of the
// play field.
type FallingBanana struct {
	ID      int
	Content string
	Correct bool
	X, Y    float64
}

// BananaGame drops bananas from the current round's templates. The player
// slices those matching the round target. Spawn and Fall are driven by Run
// or directly by the host; all methods are safe for concurrent use.
type BananaGame struct {
	mu       sync.Mutex
	clk      clock.Clock
	rng      *rand.Rand
	rounds   []domain.MathBananaRound
	round    int
	progress int
	score    int
	lives    int
	bananas  []FallingBanana
	nextID   int
	active   bool
	victory  bool
	onChange func()
}

// NewBananaGame requires at least one round, and every round needs a
// banana that is correct.
func NewBananaGame(rounds []domain.MathBananaRound, deps Deps) (*BananaGame, error) {
	if len(rounds) == 0 {
		return nil, loadErr(NameBanana, "no rounds")
	}
	for i, r := range rounds {
		if len(r.Bananas) == 0 {
			return nil, loadErr(NameBanana, "round %d has no bananas", i)
		}
		ok := false
		for _, b := range r.Bananas {
			ok = ok || b.IsCorrect
		}
		if !ok {
			return nil, loadErr(NameBanana, "round %d has no correct banana", i)
		}
	}
	deps = deps.withDefaults()
	return &BananaGame{
		clk:    deps.Clock,
		rng:    deps.Rand,
		rounds: append([]domain.MathBananaRound(nil), rounds...),
		lives:  BananaLives,
		active: true,
	}, nil
}

// OnChange registers fn to run after every state change made by Run.
func (g *BananaGame) OnChange(fn func()) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

// Spawn drops a random banana of the current round from the top edge.
func (g *BananaGame) Spawn() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return
	}
	tmpl := g.rounds[g.round].Bananas
	b := tmpl[g.rng.Intn(len(tmpl))]
	g.nextID++
	g.bananas = append(g.bananas, FallingBanana{
		ID:      g.nextID,
		Content: b.Content,
		Correct: b.IsCorrect,
		X:       g.rng.Float64()*80 + 10,
		Y:       BananaSpawnY,
	})
}

// Fall advances every banana one tick and drops those past the floor.
func (g *BananaGame) Fall() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return
	}
	kept := g.bananas[:0]
	for _, b := range g.bananas {
		b.Y += BananaFallPerTick
		if b.Y < BananaFloorY {
			kept = append(kept, b)
		}
	}
	g.bananas = kept
}

// Slice hits banana id. A correct banana scores and advances the round;
// a wrong one costs a life. It returns false when id is not on screen.
func (g *BananaGame) Slice(id int) (correct, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return false, false
	}
	idx := -1
	for i, b := range g.bananas {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, false
	}
	b := g.bananas[idx]
	g.bananas = append(g.bananas[:idx], g.bananas[idx+1:]...)
	if !b.Correct {
		g.lives--
		if g.lives <= 0 {
			g.lives = 0
			g.active = false
		}
		return false, true
	}
	g.score += BananaHitScore
	g.progress++
	if g.progress >= BananaRoundProgress {
		if g.round+1 < len(g.rounds) {
			g.round++
			g.progress = 0
			g.bananas = nil
		} else {
			g.victory = true
			g.active = false
		}
	}
	return true, true
}

// Run spawns and moves bananas on the clock until ctx is done or the game
// ends.
func (g *BananaGame) Run(ctx context.Context) error {
	spawn := g.clk.Ticker(BananaSpawnEvery)
	defer spawn.Stop()
	fall := g.clk.Ticker(BananaTickEvery)
	defer fall.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-spawn.C:
			g.Spawn()
		case <-fall.C:
			g.Fall()
		}
		g.mu.Lock()
		active, fn := g.active, g.onChange
		g.mu.Unlock()
		if fn != nil {
			fn()
		}
		if !active {
			return nil
		}
	}
}

// BananaState is a snapshot for drawing.
type BananaState struct {
	Round             int
	Rounds            int
	Target            float64
	TargetDescription string
	Progress          int
	Score             int
	Lives             int
	Bananas           []FallingBanana
	Active            bool
	Victory           bool
}

func (g *BananaGame) State() BananaState {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := g.rounds[g.round]
	return BananaState{
		Round:             g.round,
		Rounds:            len(g.rounds),
		Target:            r.Target,
		TargetDescription: r.TargetDescription,
		Progress:          g.progress,
		Score:             g.score,
		Lives:             g.lives,
		Bananas:           append([]FallingBanana(nil), g.bananas...),
		Active:            g.active,
		Victory:           g.victory,
	}
}

// GameOver reports whether the player ran out of lives.
func (g *BananaGame) GameOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lives == 0
}
