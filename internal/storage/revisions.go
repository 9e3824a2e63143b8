/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// language=SQL
// dialect=SQLite
const insertRevisionSQL = `INSERT INTO lesson_revisions(lesson_id, ts, body) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const listRevisionsSQL = `SELECT id, ts, length(body) FROM lesson_revisions WHERE lesson_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneRevisionsSQL = `DELETE FROM lesson_revisions WHERE lesson_id = ? AND id NOT IN (
	SELECT id FROM lesson_revisions WHERE lesson_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// ErrRevisionNotFound is returned by LoadRevision for an unknown id.
var ErrRevisionNotFound = errors.New("revision not found")

// Revision describes one stored lesson snapshot.
type Revision struct {
	ID       int64
	LessonID string
	At       time.Time
	Size     int
}

// SaveRevision stores body as a snapshot of the lesson taken at ts.
func (s *SQLiteKV) SaveRevision(ctx context.Context, lessonID, body string, ts time.Time) (int64, error) {
	if lessonID == "" {
		return 0, errors.New("lesson id is required")
	}
	res, err := s.db.ExecContext(ctx, insertRevisionSQL, lessonID, ts.UTC().Format(tsLayout), body)
	if err != nil {
		return 0, fmt.Errorf("save revision: %w", err)
	}
	return res.LastInsertId()
}

// ListRevisions returns up to limit snapshots of a lesson, newest first.
func (s *SQLiteKV) ListRevisions(ctx context.Context, lessonID string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, listRevisionsSQL, lessonID, limit)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()
	var out []Revision
	for rows.Next() {
		r := Revision{LessonID: lessonID}
		var ts string
		if err := rows.Scan(&r.ID, &ts, &r.Size); err != nil {
			return nil, err
		}
		r.At, _ = time.Parse(tsLayout, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadRevision returns the stored body of a snapshot.
func (s *SQLiteKV) LoadRevision(ctx context.Context, id int64) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM lesson_revisions WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %d", ErrRevisionNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("load revision: %w", err)
	}
	return body, nil
}

// PruneRevisions keeps the newest keep snapshots of a lesson.
func (s *SQLiteKV) PruneRevisions(ctx context.Context, lessonID string, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.db.ExecContext(ctx, pruneRevisionsSQL, lessonID, lessonID, keep)
	return err
}
