/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package appstate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"mapleprep/internal/domain"
)

// DefaultTeachers seeds the staff roster of a fresh install.
var DefaultTeachers = []domain.TeacherProfile{
	{ID: "1", Name: "Sarah Jenkins", Email: "s.jenkins@school.ca", Subject: "Mathematics", Grade: "Grade 4", Status: domain.TeacherActive, JoinedDate: "2023-09-01", LessonsCreated: 42},
	{ID: "2", Name: "Mike Ross", Email: "m.ross@school.ca", Subject: "Science", Grade: "Grade 6", Status: domain.TeacherActive, JoinedDate: "2023-09-15", LessonsCreated: 15},
	{ID: "3", Name: "Jessica Pearson", Email: "j.pearson@school.ca", Subject: "Language", Grade: "Grade 8", Status: domain.TeacherPending, JoinedDate: "2023-10-20", LessonsCreated: 0},
}

var reScheme = regexp.MustCompile(`(?i)^https?://`)

// Teachers returns the staff roster.
func (s *State) Teachers(ctx context.Context) []domain.TeacherProfile {
	return load(ctx, s, KeyTeachers, defaultTeachers())
}

func defaultTeachers() []domain.TeacherProfile {
	return append([]domain.TeacherProfile(nil), DefaultTeachers...)
}

// InviteTeacher adds a pending teacher.
func (s *State) InviteTeacher(ctx context.Context, name, email, subject, grade string) (domain.TeacherProfile, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || !strings.Contains(email, "@") {
		return domain.TeacherProfile{}, errors.New("a name and an email address are required")
	}
	t := domain.TeacherProfile{
		ID:         domain.NewID(),
		Name:       name,
		Email:      email,
		Subject:    subject,
		Grade:      grade,
		Status:     domain.TeacherPending,
		JoinedDate: s.today(),
	}
	ts, err := loadForUpdate(ctx, s, KeyTeachers, defaultTeachers())
	if err != nil {
		return domain.TeacherProfile{}, err
	}
	return t, save(ctx, s, KeyTeachers, append(ts, t))
}

// SetTeacherStatus marks a teacher active or pending.
func (s *State) SetTeacherStatus(ctx context.Context, id, status string) error {
	if status != domain.TeacherActive && status != domain.TeacherPending {
		return fmt.Errorf("unknown teacher status %q", status)
	}
	ts, err := loadForUpdate(ctx, s, KeyTeachers, defaultTeachers())
	if err != nil {
		return err
	}
	for i := range ts {
		if ts[i].ID == id {
			ts[i].Status = status
			return save(ctx, s, KeyTeachers, ts)
		}
	}
	return fmt.Errorf("teacher %s: %w", id, ErrNotFound)
}

// RemoveTeacher deletes a teacher from the roster.
func (s *State) RemoveTeacher(ctx context.Context, id string) error {
	return removeByID(ctx, s, KeyTeachers, defaultTeachers(), id, func(t domain.TeacherProfile) string { return t.ID })
}

// Students returns the class roster.
func (s *State) Students(ctx context.Context) []domain.Student {
	return load(ctx, s, KeyStudents, []domain.Student{})
}

// AddStudent appends a student with a fresh id.
func (s *State) AddStudent(ctx context.Context, name, grade string) (domain.Student, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Student{}, errors.New("student name is required")
	}
	ss, err := loadForUpdate(ctx, s, KeyStudents, []domain.Student{})
	if err != nil {
		return domain.Student{}, err
	}
	st := domain.Student{ID: domain.NewID(), Name: name, Grade: grade}
	return st, save(ctx, s, KeyStudents, append(ss, st))
}

func (s *State) RemoveStudent(ctx context.Context, id string) error {
	return removeByID(ctx, s, KeyStudents, []domain.Student{}, id, func(st domain.Student) string { return st.ID })
}

// Bookmarks returns saved links, newest first.
func (s *State) Bookmarks(ctx context.Context) []domain.Bookmark {
	return load(ctx, s, KeyBookmarks, []domain.Bookmark{})
}

// AddBookmark stores a link at the front of the list. A URL without a
// scheme gets https://.
func (s *State) AddBookmark(ctx context.Context, title, rawURL string) (domain.Bookmark, error) {
	title, rawURL = strings.TrimSpace(title), strings.TrimSpace(rawURL)
	if title == "" || rawURL == "" {
		return domain.Bookmark{}, errors.New("bookmark title and url are required")
	}
	if !reScheme.MatchString(rawURL) {
		rawURL = "https://" + rawURL
	}
	u, err := domain.ValidateURL(rawURL)
	if err != nil {
		return domain.Bookmark{}, err
	}
	bs, err := loadForUpdate(ctx, s, KeyBookmarks, []domain.Bookmark{})
	if err != nil {
		return domain.Bookmark{}, err
	}
	b := domain.Bookmark{ID: domain.NewID(), Title: title, URL: u, DateAdded: s.stamp()}
	return b, save(ctx, s, KeyBookmarks, append([]domain.Bookmark{b}, bs...))
}

func (s *State) RemoveBookmark(ctx context.Context, id string) error {
	return removeByID(ctx, s, KeyBookmarks, []domain.Bookmark{}, id, func(b domain.Bookmark) string { return b.ID })
}

// Planner returns the weekly planner.
func (s *State) Planner(ctx context.Context) domain.WeeklyPlan {
	p := load(ctx, s, KeyPlanner, domain.WeeklyPlan{})
	if p == nil {
		p = domain.WeeklyPlan{}
	}
	return p
}

func (s *State) plannerForUpdate(ctx context.Context) (domain.WeeklyPlan, error) {
	p, err := loadForUpdate(ctx, s, KeyPlanner, domain.WeeklyPlan{})
	if p == nil {
		p = domain.WeeklyPlan{}
	}
	return p, err
}

// SetPlannerCell stores entry at day and period.
func (s *State) SetPlannerCell(ctx context.Context, day, period string, e domain.PlannerEntry) (string, error) {
	key, err := domain.PlannerKey(day, period)
	if err != nil {
		return "", err
	}
	if e.ExternalURL != "" {
		u, err := domain.ValidateURL(e.ExternalURL)
		if err != nil {
			return "", err
		}
		e.ExternalURL = u
	}
	p, err := s.plannerForUpdate(ctx)
	if err != nil {
		return "", err
	}
	p[key] = e
	return key, save(ctx, s, KeyPlanner, p)
}

// ClearPlannerCell empties a cell. Clearing an empty cell is not an error.
func (s *State) ClearPlannerCell(ctx context.Context, day, period string) error {
	key, err := domain.PlannerKey(day, period)
	if err != nil {
		return err
	}
	p, err := s.plannerForUpdate(ctx)
	if err != nil {
		return err
	}
	if _, ok := p[key]; !ok {
		return nil
	}
	delete(p, key)
	return save(ctx, s, KeyPlanner, p)
}

// removeByID drops the element with id from the table under key. def is
// the table's value when nothing is stored yet.
func removeByID[T any](ctx context.Context, s *State, key string, def []T, id string, idOf func(T) string) error {
	list, err := loadForUpdate(ctx, s, key, def)
	if err != nil {
		return err
	}
	out := make([]T, 0, len(list))
	for _, v := range list {
		if idOf(v) != id {
			out = append(out, v)
		}
	}
	if len(out) == len(list) {
		return fmt.Errorf("%s %s: %w", key, id, ErrNotFound)
	}
	return save(ctx, s, key, out)
}
