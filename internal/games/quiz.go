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
	"strings"

	"mapleprep/internal/domain"
)

var (
	ErrAnswered    = errors.New("question already answered")
	ErrNotAnswered = errors.New("answer the question first")
	ErrFinished    = errors.New("game is over")
	ErrNoOption    = errors.New("not one of the options")
)

// Quiz is a multiple choice round. Each question takes exactly one answer.
type Quiz struct {
	questions []domain.GameQuestion
	index     int
	selected  string
	correct   bool
	feedback  string
	score     int
	finished  bool
}

// NewQuiz requires at least one question, each with two or more options
// that include its correct answer.
func NewQuiz(questions []domain.GameQuestion) (*Quiz, error) {
	if len(questions) == 0 {
		return nil, loadErr(NameQuiz, "no questions")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return nil, loadErr(NameQuiz, "question %d has no text", i)
		}
		if len(q.Options) < 2 {
			return nil, loadErr(NameQuiz, "question %d has %d options", i, len(q.Options))
		}
		found := false
		for _, o := range q.Options {
			if o == "" {
				return nil, loadErr(NameQuiz, "question %d has an empty option", i)
			}
			found = found || o == q.CorrectAnswer
		}
		if !found {
			return nil, loadErr(NameQuiz, "question %d: answer %q is not an option", i, q.CorrectAnswer)
		}
	}
	return &Quiz{questions: append([]domain.GameQuestion(nil), questions...)}, nil
}

// Answer locks in option for the current question and reports whether it
// was correct.
func (q *Quiz) Answer(option string) (bool, error) {
	if q.finished {
		return false, ErrFinished
	}
	if q.selected != "" {
		return false, ErrAnswered
	}
	cur := q.questions[q.index]
	valid := false
	for _, o := range cur.Options {
		if o == option {
			valid = true
			break
		}
	}
	if !valid {
		return false, ErrNoOption
	}
	q.selected = option
	q.correct = option == cur.CorrectAnswer
	if q.correct {
		q.score++
		q.feedback = "Correct! " + cur.Explanation
	} else {
		q.feedback = "Not quite. " + cur.Explanation
	}
	return q.correct, nil
}

// Next moves to the following question, or into the result state after
// the last one. The index then stays on the last question.
func (q *Quiz) Next() error {
	if q.finished {
		return ErrFinished
	}
	if q.selected == "" {
		return ErrNotAnswered
	}
	if q.index == len(q.questions)-1 {
		q.finished = true
		return nil
	}
	q.index++
	q.selected, q.feedback, q.correct = "", "", false
	return nil
}

func (q *Quiz) Current() domain.GameQuestion { return q.questions[q.index] }
func (q *Quiz) CurrentIndex() int            { return q.index }
func (q *Quiz) Len() int                     { return len(q.questions) }
func (q *Quiz) Score() int                   { return q.score }
func (q *Quiz) Finished() bool               { return q.finished }

// Selected returns the locked answer of the current question, if any.
func (q *Quiz) Selected() (string, bool) { return q.selected, q.selected != "" }

// Feedback is empty until the current question is answered.
func (q *Quiz) Feedback() string { return q.feedback }
