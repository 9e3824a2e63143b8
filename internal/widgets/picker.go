/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package widgets

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"mapleprep/internal/domain"

	"github.com/facebookgo/clock"
)

const (
	Spins        = 25
	SpinInterval = 100 * time.Millisecond
	HistorySize  = 5
)

var (
	ErrNoStudents = errors.New("No students found for this selection.")
	ErrNoNames    = errors.New("Please enter some names.")
)

// AllGrades selects every student in ClassNames.
const AllGrades = "All"

// ClassNames lists the names of students in grade, or all of them.
func ClassNames(students []domain.Student, grade string) ([]string, error) {
	var out []string
	for _, s := range students {
		if grade == AllGrades || grade == "" || s.Grade == grade {
			out = append(out, s.Name)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoStudents
	}
	return out, nil
}

// CustomNames splits one name per line, skipping blank lines.
func CustomNames(text string) ([]string, error) {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if n := strings.TrimSpace(line); n != "" {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoNames
	}
	return out, nil
}

// Picker draws random names with a short spin animation.
type Picker struct {
	clk      clock.Clock
	rng      *rand.Rand
	interval time.Duration
	history  []string
}

// NewPicker returns a picker. Nil arguments use the wall clock and a
// time seeded source.
func NewPicker(clk clock.Clock, rng *rand.Rand) *Picker {
	if clk == nil {
		clk = clock.New()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Picker{clk: clk, rng: rng, interval: SpinInterval}
}

// Draw returns the names shown during one spin. The last one is the pick.
func (p *Picker) Draw(names []string) []string {
	seq := make([]string, Spins)
	for i := range seq {
		seq[i] = names[p.rng.Intn(len(names))]
	}
	return seq
}

// Spin shows a drawn name every interval through show, then records the
// final pick. A cancelled spin records nothing.
func (p *Picker) Spin(ctx context.Context, names []string, show func(string)) (string, error) {
	if len(names) == 0 {
		return "", ErrNoNames
	}
	seq := p.Draw(names)
	t := p.clk.Ticker(p.interval)
	defer t.Stop()
	for _, n := range seq {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
		if show != nil {
			show(n)
		}
	}
	pick := seq[len(seq)-1]
	p.Record(pick)
	return pick, nil
}

// Record adds pick to the front of the history.
func (p *Picker) Record(pick string) {
	p.history = pushFront(p.history, pick)
}

func (p *Picker) History() []string { return append([]string(nil), p.history...) }

func pushFront[T any](xs []T, v T) []T {
	xs = append([]T{v}, xs...)
	if len(xs) > HistorySize {
		xs = xs[:HistorySize]
	}
	return xs
}

// Scramble is one scrambled word with its answer.
type Scramble struct {
	Original  string
	Scrambled string
}

// Scrambler shuffles the letters of words for a guessing game.
type Scrambler struct {
	rng     *rand.Rand
	history []Scramble
}

func NewScrambler(rng *rand.Rand) *Scrambler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scrambler{rng: rng}
}

// Scramble upper-cases word and shuffles its letters, shuffling once more
// when the first result equals the word. Blank input returns false.
func (s *Scrambler) Scramble(word string) (Scramble, bool) {
	orig := strings.ToUpper(strings.TrimSpace(word))
	if orig == "" {
		return Scramble{}, false
	}
	out := s.shuffle(orig)
	if out == orig && utf8.RuneCountInString(orig) > 1 {
		out = s.shuffle(orig)
	}
	sc := Scramble{Original: orig, Scrambled: out}
	s.history = pushFront(s.history, sc)
	return sc, true
}

func (s *Scrambler) shuffle(w string) string {
	r := []rune(w)
	s.rng.Shuffle(len(r), func(i, j int) { r[i], r[j] = r[j], r[i] })
	return string(r)
}

func (s *Scrambler) History() []Scramble { return append([]Scramble(nil), s.history...) }
