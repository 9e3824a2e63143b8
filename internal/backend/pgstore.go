/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	applog "mapleprep/internal/log"
	"mapleprep/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PGStore is the Postgres backend: the storage.KV contract plus the lesson
// search index, on a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

var (
	_ storage.KV          = (*PGStore)(nil)
	_ storage.LessonIndex = (*PGStore)(nil)
)

// OpenPG connects, pings and applies pending migrations.
func OpenPG(ctx context.Context, dsn string) (*PGStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := &PGStore{pool: pool, log: applog.WithComponent("pgstore")}
	if err := s.applyMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Ping reports whether the database answers.
func (s *PGStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// applyMigrations applies embedded SQL migrations in filename order and
// records each one in schema_migrations.
func (s *PGStore) applyMigrations(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	rows, err := s.pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return err
	}
	done := make(map[int64]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, fname := range files {
		version, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if done[version] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		s.log.Info("applying migration", slog.String("file", fname))
		err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(b)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations(version, name) VALUES($1, $2)`, version, fname)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", fname, err)
		}
	}
	return nil
}

func parseVersion(name string) (int64, error) {
	prefix, _, _ := strings.Cut(path.Base(name), "_")
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}

func (s *PGStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *PGStore) Set(ctx context.Context, key, value string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO kv(key, value, updated_at) VALUES($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *PGStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ReplaceLessons rewrites the search index in one transaction.
func (s *PGStore) ReplaceLessons(ctx context.Context, docs []storage.LessonDoc) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM lessons`); err != nil {
			return fmt.Errorf("clear lessons: %w", err)
		}
		seen := make(map[string]bool, len(docs))
		uniq := docs[:0:0]
		for _, d := range docs {
			if !seen[d.ID] {
				seen[d.ID] = true
				uniq = append(uniq, d)
			}
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"lessons"},
			[]string{"id", "topic", "grade", "subject", "created_at", "body"},
			pgx.CopyFromSlice(len(uniq), func(i int) ([]any, error) {
				d := uniq[i]
				return []any{d.ID, d.Topic, d.Grade, d.Subject, d.CreatedAt, d.Text}, nil
			}))
		if err != nil {
			return fmt.Errorf("copy lessons: %w", err)
		}
		return nil
	})
}

// SearchLessons matches every whitespace separated term case-insensitively
// against topic and body. An empty query lists lessons newest first.
func (s *PGStore) SearchLessons(ctx context.Context, q storage.SearchQuery) ([]storage.SearchResult, error) {
	var (
		args []any
		b    strings.Builder
	)
	place := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	terms := strings.Fields(q.Text)
	b.WriteString("SELECT id, topic, grade, subject, body FROM lessons WHERE true")
	for _, t := range terms {
		b.WriteString(" AND (topic || ' ' || body) ILIKE " + place("%"+escapeLike(t)+"%"))
	}
	if q.Grade != "" {
		b.WriteString(" AND grade = " + place(q.Grade))
	}
	if q.Subject != "" {
		b.WriteString(" AND subject = " + place(q.Subject))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	b.WriteString(" ORDER BY created_at DESC, id")
	b.WriteString(" LIMIT " + place(limit) + " OFFSET " + place(max(q.Offset, 0)))

	rows, err := s.pool.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search lessons: %w", err)
	}
	defer rows.Close()
	var out []storage.SearchResult
	for rows.Next() {
		var (
			r    storage.SearchResult
			body string
		)
		if err := rows.Scan(&r.ID, &r.Topic, &r.Grade, &r.Subject, &body); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Snippet = snippet(body, terms)
		out = append(out, r)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// snippet returns up to 80 runes of body around the first term, with the
// hit marked by [ ].
func snippet(body string, terms []string) string {
	const width = 80
	lower := strings.ToLower(body)
	for _, t := range terms {
		i := strings.Index(lower, strings.ToLower(t))
		if i < 0 || len(lower) != len(body) {
			continue
		}
		start := max(0, i-20)
		for start > 0 && !utf8.RuneStart(body[start]) {
			start--
		}
		end := i + len(t)
		out := body[start:i] + "[" + body[i:end] + "]" + body[end:]
		return truncateRunes(out, width)
	}
	return truncateRunes(body, width)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
