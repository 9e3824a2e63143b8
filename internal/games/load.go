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
	"fmt"

	"mapleprep/internal/domain"
	"mapleprep/internal/task"
)

// Source generates game seeds. The AI client implements it.
type Source interface {
	GenerateBananaRounds(ctx context.Context, p domain.GameParams) ([]domain.MathBananaRound, error)
	GenerateSortingGame(ctx context.Context, p domain.GameParams) (domain.SortingGameData, error)
	GenerateStoryGame(ctx context.Context, p domain.GameParams) (domain.StoryGameData, error)
	GenerateMemoryGame(ctx context.Context, p domain.GameParams) (domain.MemoryGameData, error)
	GenerateQuizGame(ctx context.Context, p domain.GameParams) ([]domain.GameQuestion, error)
}

// Loader seeds games through Source. Each game has its own task slot, so
// reopening a game drops the seed of the previous attempt.
type Loader struct {
	Source Source
	Slots  *task.Slots
	Deps   Deps
}

func load[D, G any](l Loader, name Name, p domain.GameParams,
	gen func(context.Context, domain.GameParams) (D, error), build func(D) (G, error)) (G, error) {
	var zero G
	data, err := task.Run(l.Slots, task.Game(string(name)), func(ctx context.Context) (D, error) {
		return gen(ctx, p)
	})
	if errors.Is(err, task.ErrSuperseded) {
		return zero, err
	}
	if err != nil {
		return zero, fmt.Errorf("%w (%s: %w)", ErrLoad, name, err)
	}
	return build(data)
}

func (l Loader) Memory(p domain.GameParams) (*Memory, error) {
	return load(l, NameMemory, p, l.Source.GenerateMemoryGame, func(d domain.MemoryGameData) (*Memory, error) {
		return NewMemory(d, l.Deps)
	})
}

func (l Loader) Quiz(p domain.GameParams) (*Quiz, error) {
	return load(l, NameQuiz, p, l.Source.GenerateQuizGame, NewQuiz)
}

func (l Loader) Sorting(p domain.GameParams) (*Sorting, error) {
	return load(l, NameSorting, p, l.Source.GenerateSortingGame, NewSorting)
}

func (l Loader) Story(p domain.GameParams) (*Story, error) {
	return load(l, NameStory, p, l.Source.GenerateStoryGame, NewStory)
}

func (l Loader) Banana(p domain.GameParams) (*BananaGame, error) {
	return load(l, NameBanana, p, l.Source.GenerateBananaRounds, func(r []domain.MathBananaRound) (*BananaGame, error) {
		return NewBananaGame(r, l.Deps)
	})
}
