/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TeacherProfile is a school account's staff roster entry.
type TeacherProfile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Subject        string `json:"subject,omitempty"`
	Grade          string `json:"grade,omitempty"`
	Status         string `json:"status"` // active | pending
	JoinedDate     string `json:"joinedDate"`
	LessonsCreated int    `json:"lessonsCreated"`
}

const (
	TeacherActive  = "active"
	TeacherPending = "pending"
)

type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

type Bookmark struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	DateAdded string `json:"dateAdded"`
}

// PlannerEntry is one cell of the weekly planner.
type PlannerEntry struct {
	Subject        string `json:"subject"`
	Notes          string `json:"notes"`
	Color          string `json:"color,omitempty"`
	PresentationID string `json:"presentationId,omitempty"`
	ExternalURL    string `json:"externalUrl,omitempty"`
	SmartBoardData string `json:"smartBoardData,omitempty"`
}

// WeeklyPlan maps "Day-Period" keys such as "Monday-1" or "Friday-Lunch" to entries.
type WeeklyPlan map[string]PlannerEntry

// PlannerDays and PlannerPeriods define the planner grid.
var (
	PlannerDays    = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	PlannerPeriods = []string{"1", "2", "Recess", "3", "4", "Lunch", "5", "6"}
)

// PlannerKey validates day and period and returns the cell key.
// Day accepts full names or three letter abbreviations.
func PlannerKey(day, period string) (string, error) {
	d := ""
	for _, pd := range PlannerDays {
		if strings.EqualFold(day, pd) || (len(day) == 3 && strings.EqualFold(day, pd[:3])) {
			d = pd
			break
		}
	}
	if d == "" {
		return "", fmt.Errorf("unknown planner day %q", day)
	}
	for _, pp := range PlannerPeriods {
		if strings.EqualFold(strings.TrimSpace(period), pp) {
			return d + "-" + pp, nil
		}
	}
	return "", fmt.Errorf("unknown planner period %q", period)
}

// SmartBoardNotes are the four note panels of the smart board.
type SmartBoardNotes struct {
	Learning   string `json:"learning"`
	Activities string `json:"activities"`
	Reminders  string `json:"reminders"`
	Special    string `json:"special"`
}

// DefaultSmartBoardNotes is shown until a teacher saves their own board.
var DefaultSmartBoardNotes = SmartBoardNotes{
	Learning:   "• Math: Introduction to Fractions\n• Science: Parts of a Plant",
	Activities: "• Art Project at 2:00 PM\n• Gym Class at 10:30 AM",
	Reminders:  "• Return library books by Friday\n• Field trip slips due tomorrow!",
	Special:    "🎉 Happy Birthday Sarah!\n⭐ Star of the week: Mike",
}

// SmartBoardPreset is a named, reusable board layout.
type SmartBoardPreset struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Bg    string          `json:"bg"`
	Notes SmartBoardNotes `json:"notes"`
}

// SmartBoardConfig is the JSON payload embedded in planner cells and smart
// board library entries.
type SmartBoardConfig struct {
	Bg    string          `json:"bg"`
	Notes SmartBoardNotes `json:"notes"`
}

// Encode returns the config as a JSON string.
func (c SmartBoardConfig) Encode() string {
	b, _ := json.Marshal(c)
	return string(b)
}

// DecodeSmartBoardConfig parses a payload produced by Encode.
func DecodeSmartBoardConfig(s string) (SmartBoardConfig, error) {
	var c SmartBoardConfig
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return SmartBoardConfig{}, fmt.Errorf("decode smart board config: %w", err)
	}
	return c, nil
}

// SmartBoardBackground is a selectable board theme.
type SmartBoardBackground struct {
	ID   string
	Name string
	URL  string
}

var SmartBoardBackgrounds = []SmartBoardBackground{
	{"doodles", "Fun Doodles", "https://images.unsplash.com/photo-1620662776891-628d22324905?q=80&w=2560&auto=format&fit=crop"},
	{"math-chalk", "Math Chalkboard", "https://images.unsplash.com/photo-1509228468518-180dd4864904?q=80&w=2560&auto=format&fit=crop"},
	{"space", "Space Exploration", "https://images.unsplash.com/photo-1451187580459-43490279c0fa?q=80&w=2560&auto=format&fit=crop"},
	{"science-lab", "Science Lab", "https://images.unsplash.com/photo-1532094349884-543bc11b234d?q=80&w=2560&auto=format&fit=crop"},
	{"forest", "Calm Forest", "https://images.unsplash.com/photo-1448375240586-dfd8d395ea6c?q=80&w=2560&auto=format&fit=crop"},
	{"library", "Cozy Library", "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?q=80&w=2560&auto=format&fit=crop"},
}
