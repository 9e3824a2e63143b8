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
	"fmt"
	"regexp"
	"strings"

	"mapleprep/internal/domain"
)

// ErrBlanks is returned by Complete while a placeholder is unfilled.
var ErrBlanks = errors.New("fill in every blank first")

// ErrNoBlank rejects a key the story does not have.
var ErrNoBlank = errors.New("no such blank")

var (
	placeholderRe = regexp.MustCompile(`\{\d+\}`)
	keyRe         = regexp.MustCompile(`^\{\d+\}$`)
)

// Blank shows an unfilled placeholder in a rendered story.
const Blank = "___"

// Story is a fill-in-the-blanks story with {0}..{n} placeholders.
type Story struct {
	data   domain.StoryGameData
	inputs map[string]string
}

func NewStory(data domain.StoryGameData) (*Story, error) {
	if strings.TrimSpace(data.Template) == "" {
		return nil, loadErr(NameStory, "empty template")
	}
	if len(data.Placeholders) == 0 {
		return nil, loadErr(NameStory, "no placeholders")
	}
	seen := make(map[string]bool, len(data.Placeholders))
	for _, p := range data.Placeholders {
		if !keyRe.MatchString(p.Key) {
			return nil, loadErr(NameStory, "bad placeholder key %q", p.Key)
		}
		if seen[p.Key] {
			return nil, loadErr(NameStory, "duplicate placeholder %q", p.Key)
		}
		if !strings.Contains(data.Template, p.Key) {
			return nil, loadErr(NameStory, "placeholder %q missing from template", p.Key)
		}
		seen[p.Key] = true
	}
	return &Story{data: data, inputs: make(map[string]string)}, nil
}

func (s *Story) Title() string                           { return s.data.Title }
func (s *Story) Placeholders() []domain.StoryPlaceholder { return s.data.Placeholders }

// Fill sets the word for key, given as "{0}" or "0". An empty word clears
// the blank.
func (s *Story) Fill(key, word string) error {
	if !strings.HasPrefix(key, "{") {
		key = "{" + key + "}"
	}
	known := false
	for _, p := range s.data.Placeholders {
		if p.Key == key {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrNoBlank, key)
	}
	word = strings.TrimSpace(word)
	if word == "" {
		delete(s.inputs, key)
		return nil
	}
	s.inputs[key] = word
	return nil
}

// Missing lists the labels of unfilled blanks in order.
func (s *Story) Missing() []string {
	var out []string
	for _, p := range s.data.Placeholders {
		if s.inputs[p.Key] == "" {
			out = append(out, p.Label)
		}
	}
	return out
}

// Render substitutes the filled words, leaving Blank for the rest.
func (s *Story) Render() string {
	return placeholderRe.ReplaceAllStringFunc(s.data.Template, func(k string) string {
		if w := s.inputs[k]; w != "" {
			return w
		}
		return Blank
	})
}

// Complete returns the finished story once every blank is filled.
func (s *Story) Complete() (string, error) {
	if missing := s.Missing(); len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrBlanks, strings.Join(missing, ", "))
	}
	return s.Render(), nil
}
