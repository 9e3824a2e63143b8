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
	"strings"
	"unicode"
	"unicode/utf8"

	applog "mapleprep/internal/log"
)

var (
	ErrWordUsed     = errors.New("Word already used!")
	ErrMisspelled   = errors.New("Wrong spelling!")
	ErrWrongLetter  = errors.New("wrong starting letter")
	levelThresholds = [...]struct{ words, level int }{{20, 2}, {50, 3}, {100, 4}}
)

// LetterError rejects a word that does not start with the last letter of
// the previous word.
type LetterError struct{ Want rune }

func (e *LetterError) Error() string { return fmt.Sprintf("Word must start with '%c'", e.Want) }

func (e *LetterError) Is(target error) bool { return target == ErrWrongLetter }

// WordChain validates a player-built chain of words. The dictionary is
// optional; without one every correctly chained word is accepted.
type WordChain struct {
	dict    Dictionary
	words   []string
	used    map[string]bool
	level   int
	levelUp bool
}

func NewWordChain(dict Dictionary) *WordChain {
	return &WordChain{dict: dict, used: make(map[string]bool), level: 1}
}

// ResumeWordChain rebuilds a chain from words accepted earlier without
// looking them up again. dict applies to later submissions.
func ResumeWordChain(dict Dictionary, words []string) (*WordChain, error) {
	w := NewWordChain(nil)
	for _, word := range words {
		if _, err := w.Submit(context.Background(), word); err != nil {
			return nil, fmt.Errorf("word %q: %w", word, err)
		}
	}
	w.dict = dict
	w.levelUp = false
	return w, nil
}

// Submit appends word to the chain. Blank input is ignored and returns
// (false, nil). A repeated word is reported before a wrong starting
// letter. A failed dictionary lookup skips the spelling check.
func (w *WordChain) Submit(ctx context.Context, word string) (bool, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return false, nil
	}
	key := strings.ToLower(word)
	if w.used[key] {
		return false, ErrWordUsed
	}
	if len(w.words) > 0 {
		want, _ := utf8.DecodeLastRuneInString(strings.ToLower(w.words[len(w.words)-1]))
		got, _ := utf8.DecodeRuneInString(key)
		if got != want {
			return false, &LetterError{Want: unicode.ToUpper(want)}
		}
	}
	if w.dict != nil {
		ok, err := w.dict.Exists(ctx, word)
		switch {
		case err != nil:
			applog.WithOperation(applog.WithComponent("games"), "wordchain.lookup").
				Warn("dictionary unavailable, accepting word", "word", word, "err", err)
		case !ok:
			return false, ErrMisspelled
		}
	}
	w.words = append(w.words, word)
	w.used[key] = true
	for _, t := range levelThresholds {
		if len(w.words) == t.words {
			w.level = t.level
			w.levelUp = true
		}
	}
	return true, nil
}

// Words returns the chain in play order.
func (w *WordChain) Words() []string { return append([]string(nil), w.words...) }

func (w *WordChain) Len() int   { return len(w.words) }
func (w *WordChain) Level() int { return w.level }

// NextLetter is the letter the next word must start with, or 0 for an
// empty chain.
func (w *WordChain) NextLetter() rune {
	if len(w.words) == 0 {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(w.words[len(w.words)-1])
	return unicode.ToUpper(r)
}

// TakeLevelUp reports a level reached since the last call, once.
func (w *WordChain) TakeLevelUp() (int, bool) {
	if !w.levelUp {
		return 0, false
	}
	w.levelUp = false
	return w.level, true
}

// Reset starts a new chain at level 1.
func (w *WordChain) Reset() {
	w.words = nil
	w.used = make(map[string]bool)
	w.level = 1
	w.levelUp = false
}
