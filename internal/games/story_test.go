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
	"testing"

	"mapleprep/internal/domain"
)

func storyData() domain.StoryGameData {
	return domain.StoryGameData{
		Title:    "The Moose",
		Template: "A {0} moose ate {1} pancakes in {2}.",
		Placeholders: []domain.StoryPlaceholder{
			{Key: "{0}", Label: "Adjective"},
			{Key: "{1}", Label: "Number"},
			{Key: "{2}", Label: "City"},
		},
	}
}

func TestStoryFillAndComplete(t *testing.T) {
	s, err := NewStory(storyData())
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Fill("{0}", "sleepy")
	_ = s.Fill("1", " 12 ")
	if got := s.Render(); got != "A sleepy moose ate 12 pancakes in ___." {
		t.Fatalf("render %q", got)
	}
	if _, err := s.Complete(); !errors.Is(err, ErrBlanks) {
		t.Fatalf("complete with blank: %v", err)
	}
	if m := s.Missing(); len(m) != 1 || m[0] != "City" {
		t.Fatalf("missing %v", m)
	}
	_ = s.Fill("{2}", "Halifax")
	got, err := s.Complete()
	if err != nil || got != "A sleepy moose ate 12 pancakes in Halifax." {
		t.Fatalf("complete %q %v", got, err)
	}
	if err := s.Fill("{9}", "x"); !errors.Is(err, ErrNoBlank) {
		t.Fatalf("unknown key: %v", err)
	}
}

func TestNewStoryRejectsBadSeeds(t *testing.T) {
	badKey := storyData()
	badKey.Placeholders[0].Key = "adj"
	notInTemplate := storyData()
	notInTemplate.Placeholders = append(notInTemplate.Placeholders, domain.StoryPlaceholder{Key: "{3}", Label: "Food"})
	noBlanks := storyData()
	noBlanks.Placeholders = nil
	for i, d := range []domain.StoryGameData{badKey, notInTemplate, noBlanks, {}} {
		if s, err := NewStory(d); !errors.Is(err, ErrLoad) || s != nil {
			t.Fatalf("case %d: %v", i, err)
		}
	}
}
