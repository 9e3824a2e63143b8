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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"mapleprep/internal/domain"
	"mapleprep/internal/storage"
)

// KeepRevisions is how many snapshots are kept per lesson on backends that
// record revisions.
const KeepRevisions = 10

// ErrNoHistory is returned by backends that keep no lesson revisions.
var ErrNoHistory = errors.New("this storage backend keeps no lesson history (use the sqlite backend)")

type revisioner interface {
	SaveRevision(ctx context.Context, lessonID, body string, ts time.Time) (int64, error)
	ListRevisions(ctx context.Context, lessonID string, limit int) ([]storage.Revision, error)
	LoadRevision(ctx context.Context, id int64) (string, error)
	PruneRevisions(ctx context.Context, lessonID string, keep int) error
}

type thumbnailer interface {
	GetOrCreateThumbnail(ctx context.Context, k storage.ThumbKey, gen func(context.Context) ([]byte, error)) ([]byte, error)
	InvalidateThumbnails(ctx context.Context, lessonID string) error
}

// Lessons returns the library, newest first.
func (s *State) Lessons(ctx context.Context) []domain.LessonPlan {
	ls := load(ctx, s, KeyLessons, []domain.LessonPlan{})
	sort.SliceStable(ls, func(i, j int) bool { return ls[i].Created().After(ls[j].Created()) })
	return ls
}

// Lesson returns the lesson with id.
func (s *State) Lesson(ctx context.Context, id string) (domain.LessonPlan, error) {
	for _, p := range load(ctx, s, KeyLessons, []domain.LessonPlan{}) {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.LessonPlan{}, fmt.Errorf("lesson %s: %w", id, ErrNotFound)
}

// SaveLesson replaces the lesson with the same id in place or adds it at
// the front. It satisfies the editor's persister.
func (s *State) SaveLesson(ctx context.Context, p domain.LessonPlan) error {
	if p.ID == "" {
		p.ID = domain.NewID()
	}
	if p.CreatedAt == "" {
		p.CreatedAt = s.stamp()
	}
	ls, err := loadForUpdate(ctx, s, KeyLessons, []domain.LessonPlan{})
	if err != nil {
		return err
	}
	replaced := false
	for i := range ls {
		if ls[i].ID == p.ID {
			ls[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		ls = append([]domain.LessonPlan{p}, ls...)
	}
	if err := save(ctx, s, KeyLessons, ls); err != nil {
		return err
	}
	s.recordRevision(ctx, p)
	s.dropThumbnails(ctx, p.ID)
	s.reindex(ctx, ls)
	return nil
}

// SaveCopy stores a duplicate under a new id with " (Copy)" appended to the topic.
func (s *State) SaveCopy(ctx context.Context, p domain.LessonPlan) (domain.LessonPlan, error) {
	cp := p.Clone()
	cp.ID = domain.NewID()
	cp.Topic = p.Topic + " (Copy)"
	cp.CreatedAt = s.stamp()
	return cp, s.SaveLesson(ctx, cp)
}

// DeleteLesson removes a lesson from the library.
func (s *State) DeleteLesson(ctx context.Context, id string) error {
	ls, err := loadForUpdate(ctx, s, KeyLessons, []domain.LessonPlan{})
	if err != nil {
		return err
	}
	out := ls[:0]
	for _, p := range ls {
		if p.ID != id {
			out = append(out, p)
		}
	}
	if len(out) == len(ls) {
		return fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	if err := save(ctx, s, KeyLessons, out); err != nil {
		return err
	}
	s.dropThumbnails(ctx, id)
	s.reindex(ctx, out)
	return nil
}

// Revisions lists the stored snapshots of a lesson, newest first.
func (s *State) Revisions(ctx context.Context, lessonID string) ([]storage.Revision, error) {
	rv, ok := storage.Unwrap(s.kv).(revisioner)
	if !ok {
		return nil, ErrNoHistory
	}
	return rv.ListRevisions(ctx, lessonID, KeepRevisions)
}

// RestoreRevision saves the snapshot rev as the current version of its
// lesson and returns it.
func (s *State) RestoreRevision(ctx context.Context, rev int64) (domain.LessonPlan, error) {
	rv, ok := storage.Unwrap(s.kv).(revisioner)
	if !ok {
		return domain.LessonPlan{}, ErrNoHistory
	}
	body, err := rv.LoadRevision(ctx, rev)
	if err != nil {
		return domain.LessonPlan{}, err
	}
	var p domain.LessonPlan
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return domain.LessonPlan{}, fmt.Errorf("revision %d: %w", rev, err)
	}
	return p, s.SaveLesson(ctx, p)
}

// Thumbnail returns a slide thumbnail from the backend's cache, rendering
// it with gen on a miss. Backends without a cache always render.
func (s *State) Thumbnail(ctx context.Context, k storage.ThumbKey, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if th, ok := storage.Unwrap(s.kv).(thumbnailer); ok {
		return th.GetOrCreateThumbnail(ctx, k, gen)
	}
	return gen(ctx)
}

func (s *State) dropThumbnails(ctx context.Context, lessonID string) {
	th, ok := storage.Unwrap(s.kv).(thumbnailer)
	if !ok {
		return
	}
	if err := th.InvalidateThumbnails(ctx, lessonID); err != nil {
		s.log.Warn("drop thumbnails failed", slog.String("lesson", lessonID), slog.Any("err", err))
	}
}

// SearchLessons uses the backend's full text index when it has one and a
// word match over the library otherwise.
func (s *State) SearchLessons(ctx context.Context, q storage.SearchQuery) ([]storage.SearchResult, error) {
	if idx, ok := storage.IndexOf(s.kv); ok {
		return idx.SearchLessons(ctx, q)
	}
	return scanLessons(s.Lessons(ctx), q), nil
}

// Reindex rebuilds the backend's search index from the library.
func (s *State) Reindex(ctx context.Context) error {
	idx, ok := storage.IndexOf(s.kv)
	if !ok {
		return nil
	}
	return idx.ReplaceLessons(ctx, docs(load(ctx, s, KeyLessons, []domain.LessonPlan{})))
}

func (s *State) reindex(ctx context.Context, ls []domain.LessonPlan) {
	idx, ok := storage.IndexOf(s.kv)
	if !ok {
		return
	}
	if err := idx.ReplaceLessons(ctx, docs(ls)); err != nil {
		s.log.Warn("search index update failed", slog.Any("err", err))
	}
}

func (s *State) recordRevision(ctx context.Context, p domain.LessonPlan) {
	rv, ok := storage.Unwrap(s.kv).(revisioner)
	if !ok {
		return
	}
	body, err := jsonString(p)
	if err != nil {
		return
	}
	if _, err := rv.SaveRevision(ctx, p.ID, body, s.now()); err != nil {
		s.log.Warn("save revision failed", slog.String("lesson", p.ID), slog.Any("err", err))
		return
	}
	_ = rv.PruneRevisions(ctx, p.ID, KeepRevisions)
}

// LessonDoc is the searchable text of a lesson.
func LessonDoc(p domain.LessonPlan) storage.LessonDoc {
	var b strings.Builder
	for _, o := range p.LearningObjectives {
		b.WriteString(o)
		b.WriteByte('\n')
	}
	for _, sl := range p.Slides {
		b.WriteString(sl.Title)
		b.WriteByte('\n')
		for _, bp := range sl.BulletPoints {
			b.WriteString(bp)
			b.WriteByte('\n')
		}
	}
	for _, a := range p.Activities {
		b.WriteString(a.Title)
		b.WriteByte('\n')
	}
	if !p.IsSmartBoard() {
		b.WriteString(p.CurriculumExpectations)
		b.WriteByte('\n')
	}
	b.WriteString(p.WorksheetMarkdown)
	return storage.LessonDoc{
		ID:        p.ID,
		Topic:     p.Topic,
		Grade:     p.GradeLevel,
		Subject:   p.Subject,
		CreatedAt: p.CreatedAt,
		Text:      b.String(),
	}
}

func docs(ls []domain.LessonPlan) []storage.LessonDoc {
	out := make([]storage.LessonDoc, 0, len(ls))
	for _, p := range ls {
		out = append(out, LessonDoc(p))
	}
	return out
}

// scanLessons matches every query word as a case-insensitive substring of
// the topic or text. ls is already newest first.
func scanLessons(ls []domain.LessonPlan, q storage.SearchQuery) []storage.SearchResult {
	words := strings.Fields(strings.ToLower(q.Text))
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	var out []storage.SearchResult
	skipped := 0
	for _, p := range ls {
		if q.Grade != "" && p.GradeLevel != q.Grade {
			continue
		}
		if q.Subject != "" && p.Subject != q.Subject {
			continue
		}
		d := LessonDoc(p)
		hay := strings.ToLower(d.Topic + "\n" + d.Text)
		match := true
		for _, w := range words {
			if !strings.Contains(hay, w) {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		if skipped < q.Offset {
			skipped++
			continue
		}
		out = append(out, storage.SearchResult{ID: p.ID, Topic: p.Topic, Grade: p.GradeLevel, Subject: p.Subject, Snippet: snippet(d.Text, 80)})
		if len(out) == limit {
			break
		}
	}
	return out
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
