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
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
)

var (
	// ErrQuotaExceeded means a write would grow the store past its limit.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrInvalidKey    = errors.New("invalid storage key")
	// ErrCorrupt means a stored value could not be read and no backup helped.
	ErrCorrupt = errors.New("stored value is corrupt")
)

// KV is a string key/value store. Get reports ok=false for missing keys.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// LessonDoc is the searchable projection of a lesson.
type LessonDoc struct {
	ID        string
	Topic     string
	Grade     string
	Subject   string
	CreatedAt string
	Text      string // objectives, slide titles, bullets, worksheet
}

// SearchQuery filters lessons. Text matches words by prefix; Grade and
// Subject are exact when set.
type SearchQuery struct {
	Text    string
	Grade   string
	Subject string
	Limit   int // 50 when zero
	Offset  int
}

// SearchResult is one matching lesson. Snippet marks hits with [ ].
type SearchResult struct {
	ID      string `json:"id"`
	Topic   string `json:"topic"`
	Grade   string `json:"grade"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
}

// LessonIndex is implemented by backends that can search lessons.
type LessonIndex interface {
	ReplaceLessons(ctx context.Context, docs []LessonDoc) error
	SearchLessons(ctx context.Context, q SearchQuery) ([]SearchResult, error)
}

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,127}$`)

// ValidateKey accepts lowercase keys that are safe as file names.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// MemoryKV keeps everything in a map.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{m: make(map[string]string)} }

func (s *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryKV) Set(_ context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *MemoryKV) Keys(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryKV) Close() error { return nil }

// Quota wraps a KV and rejects writes that would push the summed size of
// all keys and values past Limit bytes. Sizes are loaded lazily on the
// first write and tracked from then on.
type Quota struct {
	KV
	Limit int64

	mu    sync.Mutex
	sizes map[string]int64
	total int64
}

// NewQuota wraps kv. A limit <= 0 disables the check.
func NewQuota(kv KV, limit int64) *Quota { return &Quota{KV: kv, Limit: limit} }

func (q *Quota) load(ctx context.Context) error {
	if q.sizes != nil {
		return nil
	}
	keys, err := q.KV.Keys(ctx)
	if err != nil {
		return err
	}
	sizes := make(map[string]int64, len(keys))
	var total int64
	for _, k := range keys {
		v, ok, err := q.KV.Get(ctx, k)
		if err != nil {
			continue
		}
		if ok {
			sizes[k] = int64(len(k) + len(v))
			total += sizes[k]
		}
	}
	q.sizes, q.total = sizes, total
	return nil
}

func (q *Quota) Set(ctx context.Context, key, value string) error {
	if q.Limit <= 0 {
		return q.KV.Set(ctx, key, value)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.load(ctx); err != nil {
		return fmt.Errorf("quota: %w", err)
	}
	size := int64(len(key) + len(value))
	next := q.total - q.sizes[key] + size
	if next > q.Limit {
		return fmt.Errorf("%w: %s needs %d bytes, %d of %d in use", ErrQuotaExceeded, key, size, q.total, q.Limit)
	}
	if err := q.KV.Set(ctx, key, value); err != nil {
		return err
	}
	q.sizes[key] = size
	q.total = next
	return nil
}

func (q *Quota) Delete(ctx context.Context, key string) error {
	if err := q.KV.Delete(ctx, key); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.sizes != nil {
		q.total -= q.sizes[key]
		delete(q.sizes, key)
	}
	return nil
}

// Used returns the bytes counted against the limit.
func (q *Quota) Used(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.load(ctx); err != nil {
		return 0, err
	}
	return q.total, nil
}

// Index returns the lesson index of the wrapped store, if it has one.
func (q *Quota) Index() (LessonIndex, bool) {
	idx, ok := q.KV.(LessonIndex)
	return idx, ok
}

// Unwrap returns the store behind a Quota, or kv itself.
func Unwrap(kv KV) KV {
	if q, ok := kv.(*Quota); ok {
		return q.KV
	}
	return kv
}

// IndexOf finds the lesson index behind kv, looking through a Quota.
func IndexOf(kv KV) (LessonIndex, bool) {
	idx, ok := Unwrap(kv).(LessonIndex)
	return idx, ok
}

// Backend names accepted by OpenLocal.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// OpenLocal opens one of the local backends under dataDir. Postgres lives in
// the backend package.
func OpenLocal(backend, dataDir string) (KV, error) {
	switch backend {
	case "", BackendFile:
		return OpenFileKV(dataDir)
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dataDir, SQLiteFileName))
	case BackendMemory:
		return NewMemoryKV(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
