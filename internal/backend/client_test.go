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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mapleprep/internal/storage"
)

func TestClientAgainstServer(t *testing.T) {
	f := newFixture(t, nil)
	seedLesson(t, f.state, "L1", "Fractions")
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	c := NewClient(ts.URL+"/", f.token)
	ctx := context.Background()
	list, err := c.ListLessons(ctx)
	if err != nil || len(list) != 1 || list[0].ID != "L1" {
		t.Fatalf("ListLessons = %+v, %v", list, err)
	}
	p, err := c.GetLesson(ctx, "L1")
	if err != nil || p.Topic != "Fractions" || len(p.Slides) != 1 {
		t.Fatalf("GetLesson = %+v, %v", p, err)
	}
	res, err := c.Search(ctx, storage.SearchQuery{Text: "halves"})
	if err != nil || len(res) != 1 {
		t.Fatalf("Search = %+v, %v", res, err)
	}

	_, err = c.GetLesson(ctx, "missing")
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusNotFound || se.Message != "lesson not found" {
		t.Fatalf("missing lesson err = %v", err)
	}

	anon := NewClient(ts.URL, "")
	if _, err := anon.ListLessons(ctx); !errors.As(err, &se) || se.Status != http.StatusUnauthorized {
		t.Fatalf("anonymous err = %v", err)
	}
}
