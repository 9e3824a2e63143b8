/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package dictionary checks spelling against a public dictionary API.
// Concurrent lookups of one word share a request and answers are cached.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mapleprep/internal/cache"
	applog "mapleprep/internal/log"

	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the dictionaryapi.dev English entries endpoint.
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// ErrNotFound means the dictionary has no entry for the word.
var ErrNotFound = errors.New("word not found")

const (
	found    = "1"
	notFound = "0"
)

// Client looks words up at {BaseURL}/{word}.
type Client struct {
	base  string
	http  *http.Client
	cache cache.Cache
	ttl   time.Duration
	group singleflight.Group
	log   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache stores answers, both found and not found, for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) { cl.cache, cl.ttl = c, ttl }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(h *http.Client) Option {
	return func(cl *Client) { cl.http = h }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		log:  applog.WithComponent("dictionary"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Lookup returns nil when word exists and ErrNotFound when it does not.
// Any other error means the dictionary could not answer.
func (c *Client) Lookup(ctx context.Context, word string) error {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return ErrNotFound
	}
	key := cache.Key("dict", w)
	if c.cache != nil {
		if v, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if string(v) == found {
				return nil
			}
			return ErrNotFound
		}
	}
	v, err, shared := c.group.Do(w, func() (any, error) {
		return c.fetch(ctx, w)
	})
	if err != nil {
		return err
	}
	ans := v.(string)
	if c.cache != nil && !shared {
		if err := c.cache.Set(ctx, key, []byte(ans), c.ttl); err != nil {
			c.log.Debug("cache write failed", "err", err)
		}
	}
	if ans == found {
		return nil
	}
	return ErrNotFound
}

// Exists adapts Lookup to the word chain's dictionary.
func (c *Client) Exists(ctx context.Context, word string) (bool, error) {
	err := c.Lookup(ctx, word)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (c *Client) fetch(ctx context.Context, w string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+url.PathEscape(w), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("dictionary lookup %q: %w", w, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	switch resp.StatusCode {
	case http.StatusOK:
		return found, nil
	case http.StatusNotFound:
		return notFound, nil
	default:
		return "", fmt.Errorf("dictionary lookup %q: status %d", w, resp.StatusCode)
	}
}
