/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package games holds the state machines of the classroom mini-games.
// Each game is built from a generated seed by a constructor that validates
// it; a game that fails to seed is never returned half built. Sessions are
// ephemeral and are dropped when the game closes.
package games

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/facebookgo/clock"
)

// LoadFailedMessage is what the player sees when a game cannot be seeded.
const LoadFailedMessage = "Failed to load game. Please try again."

// ErrLoad marks every seeding failure. Match it with errors.Is and show
// LoadFailedMessage.
var ErrLoad = errors.New(LoadFailedMessage)

// Name identifies a game. It doubles as the task slot suffix and the
// telemetry label.
type Name string

const (
	NameMemory    Name = "memory"
	NameQuiz      Name = "quiz"
	NameWordChain Name = "wordchain"
	NameSorting   Name = "sorting"
	NameStory     Name = "story"
	NameBanana    Name = "banana"
)

// Names lists every game in menu order.
var Names = []Name{NameBanana, NameSorting, NameStory, NameMemory, NameQuiz, NameWordChain}

func loadErr(game Name, format string, args ...any) error {
	return fmt.Errorf("%w (%s: %s)", ErrLoad, game, fmt.Sprintf(format, args...))
}

// Dictionary reports whether a word exists. An error means the lookup
// itself failed and the caller skips the spelling check.
type Dictionary interface {
	Exists(ctx context.Context, word string) (bool, error)
}

// Deps carries the injectable time and randomness shared by the games.
type Deps struct {
	Clock clock.Clock
	Rand  *rand.Rand
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return d
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle[T any](r *rand.Rand, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
