/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Generated seed payloads for the classroom games. They are decoded from
// the generator's JSON and never persisted.

type GameQuestion struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type SortingItem struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	CategoryIndex int    `json:"categoryIndex"`
}

type SortingGameData struct {
	Categories []string      `json:"categories"`
	Items      []SortingItem `json:"items"`
}

type StoryPlaceholder struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type StoryGameData struct {
	Title        string             `json:"title"`
	Template     string             `json:"template"`
	Placeholders []StoryPlaceholder `json:"placeholders"`
}

type MemoryPair struct {
	ID    string `json:"id"`
	Item1 string `json:"item1"`
	Item2 string `json:"item2"`
}

type MemoryGameData struct {
	Pairs []MemoryPair `json:"pairs"`
}

type Banana struct {
	Content   string  `json:"content"`
	Value     float64 `json:"value"`
	IsCorrect bool    `json:"isCorrect"`
}

type MathBananaRound struct {
	Target            float64  `json:"target"`
	TargetDescription string   `json:"targetDescription"`
	Bananas           []Banana `json:"bananas"`
}

// GameParams seeds every game generator.
type GameParams struct {
	Grade   string `json:"grade"`
	Topic   string `json:"topic"`
	Subject string `json:"subject,omitempty"`
}
