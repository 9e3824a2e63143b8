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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mapleprep/internal/domain"
	"mapleprep/internal/storage"
)

// Client reads lessons from a remote MaplePrep server, e.g. to pull a
// colleague's library into the desktop app.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Method, Path string
	Status       int
	Message      string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("server %s %s: %d", e.Method, e.Path, e.Status)
}

func (c *Client) doJSON(ctx context.Context, method, path string, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		_ = json.Unmarshal(b, &e)
		return &StatusError{Method: method, Path: u.Path, Status: resp.StatusCode, Message: e.Error}
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// ListLessons returns the summaries of the remote library, newest first.
func (c *Client) ListLessons(ctx context.Context) ([]LessonSummary, error) {
	var list []LessonSummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/lessons", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetLesson fetches one complete lesson plan.
func (c *Client) GetLesson(ctx context.Context, id string) (domain.LessonPlan, error) {
	var p domain.LessonPlan
	err := c.doJSON(ctx, http.MethodGet, "/api/lessons/"+url.PathEscape(id), &p)
	return p, err
}

// Search runs a lesson search on the server.
func (c *Client) Search(ctx context.Context, q storage.SearchQuery) ([]storage.SearchResult, error) {
	v := url.Values{}
	v.Set("q", q.Text)
	if q.Grade != "" {
		v.Set("grade", q.Grade)
	}
	if q.Subject != "" {
		v.Set("subject", q.Subject)
	}
	if q.Limit > 0 {
		v.Set("limit", fmt.Sprint(q.Limit))
	}
	var out []storage.SearchResult
	if err := c.doJSON(ctx, http.MethodGet, "/api/search?"+v.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}
