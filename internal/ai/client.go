/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mapleprep/internal/cache"
	"mapleprep/internal/config"
	"mapleprep/internal/domain"
	applog "mapleprep/internal/log"

	"golang.org/x/time/rate"
)

// Config configures a Client.
type Config struct {
	BaseURL           string
	Model             string
	ImageModel        string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	// Cache stores generated images; nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration
}

// ConfigFrom maps the application config section. The API key is resolved
// separately from the keyring.
func ConfigFrom(c config.AIConfig) Config {
	d := config.Defaults().AI
	cfg := Config{
		BaseURL:           c.BaseURL,
		Model:             c.Model,
		ImageModel:        c.ImageModel,
		Timeout:           c.Timeout(),
		RequestsPerMinute: c.RequestsPerMinute,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = d.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = d.Model
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = d.ImageModel
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = d.RequestsPerMinute
	}
	return cfg
}

// Client calls the generateContent REST endpoint.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// New returns a Client. An empty API key is rejected up front so the
// caller can prompt for one.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	lim := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		lim = rate.Limit(float64(cfg.RequestsPerMinute) / 60)
		burst = max(1, cfg.RequestsPerMinute/10)
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(lim, burst),
		log:     applog.WithComponent("ai"),
	}, nil
}

var _ Generator = (*Client)(nil)

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content      `json:"contents"`
	GenerationConfig map[string]any `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate posts one prompt and returns the parts of the first candidate.
func (c *Client) generate(ctx context.Context, model string, req generateRequest) ([]part, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	u := c.cfg.BaseURL + "/models/" + model + ":generateContent"
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("x-goog-api-key", c.cfg.APIKey)
	start := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, err
	}
	c.log.Debug("generate", slog.String("model", model), slog.Int("status", resp.StatusCode), slog.Duration("took", time.Since(start)))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env errorEnvelope
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	var out generateResponse
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("ai: decode response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return nil, nil
	}
	return out.Candidates[0].Content.Parts, nil
}

// generateJSON asks for a JSON document matching s, validates it and
// decodes it into dest. empty is returned when the model says nothing.
func (c *Client) generateJSON(ctx context.Context, prompt string, s *schema, empty error, dest any) error {
	parts, err := c.generate(ctx, c.cfg.Model, generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   s.gemini(),
		},
	})
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return empty
	}
	if err := s.validate([]byte(text)); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), dest); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

// GenerateLessonPlan writes a full lesson with exactly p.SlideCount slides.
func (c *Client) GenerateLessonPlan(ctx context.Context, p domain.GenerationParams) (domain.LessonPlan, error) {
	if err := p.Validate(); err != nil {
		return domain.LessonPlan{}, err
	}
	l := applog.WithOperation(c.log, "lesson")
	var plan domain.LessonPlan
	if err := c.generateJSON(ctx, lessonPrompt(p), lessonPlanSchema(p.SlideCount), ErrEmptyResponse, &plan); err != nil {
		l.Warn("generation failed", slog.String("topic", p.Topic), slog.Any("err", err))
		return domain.LessonPlan{}, err
	}
	plan = finishLesson(plan, p)
	l.Info("lesson generated", slog.String("id", plan.ID), slog.Int("slides", len(plan.Slides)))
	return plan, nil
}

// GenerateImage returns base64 image data for prompt. Results are cached
// by style and prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string, style domain.ImageStyle) (string, error) {
	key := cache.Key("img", string(style), prompt)
	if c.cfg.Cache != nil {
		if b, ok, err := c.cfg.Cache.Get(ctx, key); err == nil && ok {
			return string(b), nil
		} else if err != nil {
			c.log.Warn("image cache read failed", slog.Any("err", err))
		}
	}
	parts, err := c.generate(ctx, c.cfg.ImageModel, generateRequest{
		Contents:         []content{{Parts: []part{{Text: imagePrompt(prompt, style)}}}},
		GenerationConfig: map[string]any{"responseModalities": []string{"TEXT", "IMAGE"}},
	})
	if err != nil {
		return "", err
	}
	for _, p := range parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			if c.cfg.Cache != nil {
				if err := c.cfg.Cache.Set(ctx, key, []byte(p.InlineData.Data), c.cfg.CacheTTL); err != nil {
					c.log.Warn("image cache write failed", slog.Any("err", err))
				}
			}
			return p.InlineData.Data, nil
		}
	}
	return "", ErrNoImage
}

func (c *Client) GenerateBananaRounds(ctx context.Context, p domain.GameParams) ([]domain.MathBananaRound, error) {
	var out struct {
		Rounds []domain.MathBananaRound `json:"rounds"`
	}
	if err := c.generateJSON(ctx, bananaPrompt(p), bananaSchema(), ErrNoGame, &out); err != nil {
		return nil, err
	}
	return out.Rounds, nil
}

func (c *Client) GenerateSortingGame(ctx context.Context, p domain.GameParams) (domain.SortingGameData, error) {
	var out domain.SortingGameData
	err := c.generateJSON(ctx, sortingPrompt(p), sortingSchema(), ErrNoGame, &out)
	return out, err
}

func (c *Client) GenerateStoryGame(ctx context.Context, p domain.GameParams) (domain.StoryGameData, error) {
	var out domain.StoryGameData
	err := c.generateJSON(ctx, storyPrompt(p), storySchema(), ErrNoGame, &out)
	return out, err
}

func (c *Client) GenerateMemoryGame(ctx context.Context, p domain.GameParams) (domain.MemoryGameData, error) {
	var out domain.MemoryGameData
	err := c.generateJSON(ctx, memoryPrompt(p), memorySchema(), ErrNoGame, &out)
	return out, err
}

func (c *Client) GenerateQuizGame(ctx context.Context, p domain.GameParams) ([]domain.GameQuestion, error) {
	var out struct {
		Questions []domain.GameQuestion `json:"questions"`
	}
	if err := c.generateJSON(ctx, quizPrompt(p), quizGameSchema(), ErrNoGame, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// GenerateWorksheet writes a standalone worksheet and its answer key.
func (c *Client) GenerateWorksheet(ctx context.Context, r WorksheetRequest) (domain.GeneratedWorksheet, error) {
	var out domain.GeneratedWorksheet
	if err := c.generateJSON(ctx, worksheetPrompt(r), worksheetSchema(), ErrNoWorksheet, &out); err != nil {
		return domain.GeneratedWorksheet{}, err
	}
	out.Topic, out.Grade, out.Subject, out.Style = r.Topic, r.Grade, r.Subject, r.Style
	if out.Style == "" {
		out.Style = domain.StyleStandard
	}
	return out, nil
}
