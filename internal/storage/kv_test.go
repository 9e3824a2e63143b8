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
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	for _, k := range []string{"mapleprep_lessons", "a", "x.y-z_1"} {
		if err := ValidateKey(k); err != nil {
			t.Errorf("ValidateKey(%q) = %v", k, err)
		}
	}
	for _, k := range []string{"", "../etc", "Upper", "_lead", "a/b", strings.Repeat("a", 200)} {
		if err := ValidateKey(k); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ValidateKey(%q) = %v, want ErrInvalidKey", k, err)
		}
	}
}

func TestMemoryKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	if _, ok, _ := kv.Get(ctx, "missing"); ok {
		t.Fatal("missing key reported present")
	}
	_ = kv.Set(ctx, "b", "2")
	_ = kv.Set(ctx, "a", "1")
	keys, _ := kv.Keys(ctx)
	if strings.Join(keys, ",") != "a,b" {
		t.Fatalf("keys = %v", keys)
	}
	_ = kv.Delete(ctx, "a")
	if _, ok, _ := kv.Get(ctx, "a"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestQuotaRejectsGrowthPastLimit(t *testing.T) {
	ctx := context.Background()
	q := NewQuota(NewMemoryKV(), 20)
	if err := q.Set(ctx, "k", strings.Repeat("x", 10)); err != nil {
		t.Fatalf("first set: %v", err)
	}
	err := q.Set(ctx, "other", strings.Repeat("y", 10))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("want ErrQuotaExceeded, got %v", err)
	}
	if _, ok, _ := q.Get(ctx, "other"); ok {
		t.Fatal("rejected value was stored")
	}
	// Replacing a key only counts the difference.
	if err := q.Set(ctx, "k", strings.Repeat("x", 19)); err != nil {
		t.Fatalf("replace within limit: %v", err)
	}
	used, _ := q.Used(ctx)
	if used != 20 {
		t.Fatalf("used = %d, want 20", used)
	}
	_ = q.Delete(ctx, "k")
	if err := q.Set(ctx, "other", strings.Repeat("y", 10)); err != nil {
		t.Fatalf("set after delete: %v", err)
	}
}

func TestQuotaCountsExistingValues(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryKV()
	_ = inner.Set(ctx, "old", strings.Repeat("z", 15))
	q := NewQuota(inner, 20)
	if err := q.Set(ctx, "new", "12345"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("want ErrQuotaExceeded, got %v", err)
	}
}

func TestOpenLocalBackends(t *testing.T) {
	dir := t.TempDir()
	for _, b := range []string{"", BackendFile, BackendSQLite, BackendMemory} {
		kv, err := OpenLocal(b, dir)
		if err != nil {
			t.Fatalf("OpenLocal(%q): %v", b, err)
		}
		_ = kv.Close()
	}
	if _, err := OpenLocal("floppy", dir); err == nil {
		t.Fatal("unknown backend accepted")
	}
}

func TestIndexOfLooksThroughQuota(t *testing.T) {
	s, err := OpenSQLite(t.TempDir() + "/x.sqlite")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := IndexOf(NewQuota(s, 100)); !ok {
		t.Fatal("sqlite index hidden by quota")
	}
	if _, ok := IndexOf(NewMemoryKV()); ok {
		t.Fatal("memory store reported an index")
	}
}
