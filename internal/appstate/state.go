/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package appstate holds the typed library tables. Each table is stored
// under a fixed key as {"schemaVersion": n, "data": ...}; values written by
// older releases as a bare document are read as version 0 and migrated.
package appstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	applog "mapleprep/internal/log"
	"mapleprep/internal/storage"
)

// Table keys.
const (
	KeyTeachers  = "mapleprep_teachers"
	KeyLessons   = "mapleprep_lessons"
	KeyStudents  = "mapleprep_students"
	KeyBookmarks = "mapleprep_bookmarks"
	KeyPlanner   = "mapleprep_planner"
	KeySBPresets = "mapleprep_sb_presets"
	KeySBNotes   = "mapleprep_sb_notes"
	KeySBBg      = "mapleprep_sb_bg"
)

// AllKeys lists every table in a stable order.
var AllKeys = []string{KeyTeachers, KeyLessons, KeyStudents, KeyBookmarks, KeyPlanner, KeySBPresets, KeySBNotes, KeySBBg}

// SchemaVersion is the envelope version written by this release.
const SchemaVersion = 1

var ErrNotFound = errors.New("not found")

// ErrUnreadable reports a stored table that could not be read or decoded.
// Updates fail with it and leave the stored value untouched.
var ErrUnreadable = errors.New("stored table could not be read")

// Warning reports a save that was dropped because storage is full. The
// in-memory change stands; the caller should tell the user and carry on.
type Warning struct {
	Key string
	Err error
}

func (w *Warning) Error() string {
	return fmt.Sprintf("%s was not saved: storage is full, delete some old lessons to make room (%v)", w.Key, w.Err)
}

func (w *Warning) Unwrap() error { return w.Err }

// IsWarning reports whether err is a non-fatal save Warning.
func IsWarning(err error) bool {
	var w *Warning
	return errors.As(err, &w)
}

// State reads and writes the tables through a storage.KV.
type State struct {
	kv  storage.KV
	log *slog.Logger
	now func() time.Time
}

// New binds a State to kv.
func New(kv storage.KV) *State {
	return &State{kv: kv, log: applog.WithComponent("appstate"), now: time.Now}
}

// KV returns the underlying store.
func (s *State) KV() storage.KV { return s.kv }

type envelope struct {
	SchemaVersion *int            `json:"schemaVersion"`
	Data          json.RawMessage `json:"data"`
}

// unwrap splits a stored value into its version and data document.
// Anything that is not an envelope is version 0.
func unwrap(raw string) (int, []byte) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var env envelope
		if err := json.Unmarshal([]byte(trimmed), &env); err == nil && env.SchemaVersion != nil && env.Data != nil {
			return *env.SchemaVersion, env.Data
		}
	}
	return 0, []byte(trimmed)
}

// migrate upgrades data of the given version to SchemaVersion.
func migrate(key string, version int, data []byte) []byte {
	if version == 0 && key == KeySBBg && !json.Valid(data) {
		// The background used to be stored as a plain string.
		b, _ := json.Marshal(string(data))
		return b
	}
	return data
}

// load decodes key into a value of type T, returning def when the key is
// missing or unreadable.
func load[T any](ctx context.Context, s *State, key string, def T) T {
	v, err := loadForUpdate(ctx, s, key, def)
	if err != nil {
		applog.WithOperation(s.log, "load").Warn("using default",
			slog.String("key", key), slog.Any("err", err))
		return def
	}
	return v
}

// loadForUpdate is load for read-modify-write paths. A table that exists
// but cannot be read yields ErrUnreadable so the caller does not write
// defaults over it.
func loadForUpdate[T any](ctx context.Context, s *State, key string, def T) (T, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return def, fmt.Errorf("%s: %w: %w", key, ErrUnreadable, err)
	}
	if !ok {
		return def, nil
	}
	ver, data := unwrap(raw)
	if ver > SchemaVersion {
		applog.WithOperation(s.log, "load").Warn("table written by a newer release",
			slog.String("key", key), slog.Int("schema", ver))
	}
	data = migrate(key, ver, data)
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return def, fmt.Errorf("%s: %w: %w", key, ErrUnreadable, err)
	}
	return v, nil
}

// save writes v under key in a current envelope. A full store yields a
// *Warning; other failures are returned as errors.
func save[T any](ctx context.Context, s *State, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	ver := SchemaVersion
	env, err := json.Marshal(envelope{SchemaVersion: &ver, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(env)); err != nil {
		if errors.Is(err, storage.ErrQuotaExceeded) {
			w := &Warning{Key: key, Err: err}
			applog.WithOperation(s.log, "save").Warn("storage full, change not saved", slog.String("key", key), slog.Any("err", err))
			return w
		}
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Migrate rewrites every legacy table in a current envelope.
func (s *State) Migrate(ctx context.Context) (int, error) {
	n := 0
	for _, key := range AllKeys {
		raw, ok, err := s.kv.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		ver, data := unwrap(raw)
		if ver >= SchemaVersion {
			continue
		}
		data = migrate(key, ver, data)
		if !json.Valid(data) {
			s.log.Warn("skipping unreadable legacy table", slog.String("key", key))
			continue
		}
		if err := save(ctx, s, key, json.RawMessage(data)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Tables returns the raw stored value of every present table.
func (s *State) Tables(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(AllKeys))
	for _, key := range AllKeys {
		raw, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		if ok {
			out[key] = raw
		}
	}
	return out, nil
}

// RestoreTables writes raw table values back. Unknown keys are rejected
// before anything is written.
func (s *State) RestoreTables(ctx context.Context, tables map[string]string) error {
	known := make(map[string]bool, len(AllKeys))
	for _, k := range AllKeys {
		known[k] = true
	}
	for k := range tables {
		if !known[k] {
			return fmt.Errorf("unknown table %q", k)
		}
	}
	for _, k := range AllKeys {
		v, ok := tables[k]
		if !ok {
			continue
		}
		if err := s.kv.Set(ctx, k, v); err != nil {
			return fmt.Errorf("restore %s: %w", k, err)
		}
	}
	return s.Reindex(ctx)
}

func (s *State) today() string { return s.now().UTC().Format("2006-01-02") }

func (s *State) stamp() string { return s.now().UTC().Format(time.RFC3339) }

func jsonString(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}
