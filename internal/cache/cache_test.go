/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 9, 2, 8, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	_ = m.Set(ctx, "short", []byte("a"), time.Minute)
	_ = m.Set(ctx, "forever", []byte("b"), 0)
	if v, ok, _ := m.Get(ctx, "short"); !ok || string(v) != "a" {
		t.Fatalf("get short = %q %v", v, ok)
	}
	now = now.Add(time.Minute)
	if _, ok, _ := m.Get(ctx, "short"); ok {
		t.Fatal("expired entry returned")
	}
	if _, ok, _ := m.Get(ctx, "forever"); !ok {
		t.Fatal("entry without ttl expired")
	}
	_ = m.Delete(ctx, "forever")
	if m.Len() != 0 {
		t.Fatalf("len = %d", m.Len())
	}
}

func TestMemorySweep(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(0, 0)
	m := NewMemory()
	m.now = func() time.Time { return now }
	for _, k := range []string{"a", "b", "c"} {
		_ = m.Set(ctx, k, []byte(k), time.Second)
	}
	_ = m.Set(ctx, "d", []byte("d"), time.Hour)
	now = now.Add(2 * time.Second)
	if n := m.Sweep(); n != 3 || m.Len() != 1 {
		t.Fatalf("swept %d, left %d", n, m.Len())
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	_ = m.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	v, _, _ := m.Get(ctx, "k")
	if string(v) != "abc" {
		t.Fatalf("stored value aliased caller buffer: %q", v)
	}
}

func TestKey(t *testing.T) {
	a := Key("img", "default", "a cat")
	if !strings.HasPrefix(a, "mapleprep:img:") || a == Key("img", "defaulta", " cat") {
		t.Fatalf("key %q", a)
	}
	if a != Key("img", "default", "a cat") {
		t.Fatal("key not stable")
	}
}

func TestOpenWithoutAddrIsMemory(t *testing.T) {
	c, err := Open(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*Memory); !ok {
		t.Fatalf("got %T", c)
	}
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("MPP_REDIS_ADDR")
	if addr == "" {
		t.Skip("MPP_REDIS_ADDR not set")
	}
	ctx := context.Background()
	r, err := DialRedis(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	key := Key("test", t.Name())
	if err := r.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if v, ok, err := r.Get(ctx, key); err != nil || !ok || string(v) != "v" {
		t.Fatalf("get %q %v %v", v, ok, err)
	}
	_ = r.Delete(ctx, key)
	if _, ok, _ := r.Get(ctx, key); ok {
		t.Fatal("deleted key still present")
	}
}
