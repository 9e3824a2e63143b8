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
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultThumbsMaxBytes caps the thumbnail cache unless MPP_THUMBS_MAX_BYTES
// says otherwise.
const DefaultThumbsMaxBytes int64 = 32 << 20

// ThumbsMaxBytesFromEnv reads MPP_THUMBS_MAX_BYTES. Zero or negative values
// disable eviction.
func ThumbsMaxBytesFromEnv() int64 {
	v := strings.TrimSpace(os.Getenv("MPP_THUMBS_MAX_BYTES"))
	if v == "" {
		return DefaultThumbsMaxBytes
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return DefaultThumbsMaxBytes
	}
	return n
}

// ThumbKey identifies one rendered slide thumbnail variant.
type ThumbKey struct {
	LessonID string
	Slide    int
	W, H     int
}

// GetThumbnail returns the cached PNG for key, or nil, and marks it used.
func (s *SQLiteKV) GetThumbnail(ctx context.Context, k ThumbKey) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT png FROM thumbs WHERE lesson_id=? AND slide=? AND w=? AND h=?`,
		k.LessonID, k.Slide, k.W, k.H).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query thumbnail: %w", err)
	}
	now := time.Now().UTC().Format(tsLayout)
	_, _ = s.db.ExecContext(ctx, `UPDATE thumbs SET last_access=? WHERE lesson_id=? AND slide=? AND w=? AND h=?`,
		now, k.LessonID, k.Slide, k.W, k.H)
	return blob, nil
}

// PutThumbnail upserts a PNG and evicts least recently used entries down
// to the cache cap.
func (s *SQLiteKV) PutThumbnail(ctx context.Context, k ThumbKey, png []byte) error {
	now := time.Now().UTC().Format(tsLayout)
	_, err := s.db.ExecContext(ctx, `INSERT INTO thumbs(lesson_id, slide, w, h, png, size, updated_at, last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(lesson_id, slide, w, h) DO UPDATE SET png=excluded.png, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		k.LessonID, k.Slide, k.W, k.H, png, len(png), now, now)
	if err != nil {
		return fmt.Errorf("upsert thumbnail: %w", err)
	}
	if capBytes := ThumbsMaxBytesFromEnv(); capBytes > 0 {
		return s.EvictThumbnailsToFit(ctx, capBytes)
	}
	return nil
}

// GetOrCreateThumbnail returns the cached thumbnail or renders and stores it.
func (s *SQLiteKV) GetOrCreateThumbnail(ctx context.Context, k ThumbKey, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := s.GetThumbnail(ctx, k); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil || data == nil {
		return nil, err
	}
	if err := s.PutThumbnail(ctx, k, data); err != nil {
		return nil, err
	}
	return data, nil
}

// InvalidateThumbnails drops every cached thumbnail of a lesson.
func (s *SQLiteKV) InvalidateThumbnails(ctx context.Context, lessonID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM thumbs WHERE lesson_id=?`, lessonID)
	return err
}

// EvictThumbnailsToFit deletes least recently used rows until the total
// size is at most capBytes.
func (s *SQLiteKV) EvictThumbnailsToFit(ctx context.Context, capBytes int64) error {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM thumbs`).Scan(&total); err != nil {
		return fmt.Errorf("sum thumbnails: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, size FROM thumbs ORDER BY COALESCE(last_access, updated_at) ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("list thumbnails: %w", err)
	}
	var victims []int64
	for rows.Next() && total > capBytes {
		var id, size int64
		if err := rows.Scan(&id, &size); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		total -= size
	}
	_ = rows.Close()
	for _, id := range victims {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM thumbs WHERE id=?`, id); err != nil {
			return fmt.Errorf("evict thumbnail: %w", err)
		}
	}
	return nil
}
