/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"mapleprep/internal/config"
)

type sink struct {
	mu      sync.Mutex
	events  []map[string]any
	crashes []string
}

func newSink(t *testing.T) (*sink, *httptest.Server) {
	t.Helper()
	s := &sink{}
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		_ = json.NewDecoder(r.Body).Decode(&m)
		s.mu.Lock()
		s.events = append(s.events, m)
		s.mu.Unlock()
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.crashes = append(s.crashes, string(b))
		s.mu.Unlock()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return s, srv
}

func TestEventAndCrashUpload(t *testing.T) {
	s, srv := newSink(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()

	c.Event(LessonGenerated, map[string]any{"slides": 8, "subject": "Mathematics", "name": "spoofed", "plan": []string{"x"}})
	c.Flush(context.Background())

	s.mu.Lock()
	if len(s.events) != 1 {
		s.mu.Unlock()
		t.Fatalf("events = %d", len(s.events))
	}
	ev := s.events[0]
	s.mu.Unlock()
	if ev["name"] != LessonGenerated || ev["slides"] != float64(8) || ev["subject"] != "Mathematics" {
		t.Fatalf("event = %v", ev)
	}
	if _, ok := ev["plan"]; ok {
		t.Fatal("non-scalar property kept")
	}

	c.UploadCrash([]byte("STACKTRACE"))
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.crashes) != 1 || s.crashes[0] != "STACKTRACE" {
		t.Fatalf("crashes = %v", s.crashes)
	}
}

func TestDisabledSendsNothing(t *testing.T) {
	s, srv := newSink(t)
	cases := []Config{
		{OptIn: false, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash"},
		{OptIn: true},
	}
	for _, cfg := range cases {
		c := New(cfg)
		c.Event(GameStarted, nil)
		c.Event("", nil)
		c.UploadCrash([]byte("x"))
		c.Flush(context.Background())
		c.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) != 0 || len(s.crashes) != 0 {
		t.Fatalf("sent while disabled: %d events, %d crashes", len(s.events), len(s.crashes))
	}
	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatal("nil client enabled")
	}
}

func TestSendErrorsAreDropped(t *testing.T) {
	c := New(Config{OptIn: true, EventsURL: "http://127.0.0.1:1/events", Timeout: 100 * time.Millisecond, DebugLogging: true})
	defer c.Close()
	c.Event(ExportDone, map[string]any{"format": "pdf"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c.Flush(ctx)
}

func TestFromEnvAndConfig(t *testing.T) {
	t.Setenv(config.EnvTelemetryOptIn, "")
	t.Setenv(EnvURL, "http://127.0.0.1:0")
	t.Setenv(EnvTimeoutMS, "100")
	cfg := FromEnv()
	if cfg.OptIn || cfg.EventsURL == "" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv = %+v", cfg)
	}
	app := config.Defaults()
	app.General.TelemetryOptIn = true
	if !FromConfig(app).OptIn {
		t.Fatal("config opt-in ignored")
	}

	t.Setenv(config.EnvTelemetryOptIn, "yes")
	c := New(FromEnv())
	SetDefault(c)
	defer SetDefault(nil)
	if Default() != c || !Default().Enabled() {
		t.Fatal("default client not installed")
	}
}
