/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package backend serves a lesson library over HTTP and stores it in
// Postgres when running as a shared school server.
package backend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mapleprep/internal/ai"
	"mapleprep/internal/appstate"
	"mapleprep/internal/domain"
	"mapleprep/internal/export"
	"mapleprep/internal/games"
	applog "mapleprep/internal/log"
	"mapleprep/internal/storage"
	"mapleprep/internal/version"

	"github.com/gin-gonic/gin"
)

// Options configures a Server.
type Options struct {
	State *appstate.State
	// Gen serves POST /api/lessons; nil answers 503.
	Gen ai.Generator
	// Dict checks word chain spelling; nil skips the check.
	Dict               games.Dictionary
	Secret             string
	AllowedOrigins     []string
	RateLimitPerMinute int
	// Ready backs /readyz; nil means always ready.
	Ready func(ctx context.Context) error
	Now   func() time.Time
}

type Server struct {
	opts    Options
	engine  *gin.Engine
	metrics *metrics
	limiter *ipLimiter
	log     *slog.Logger
}

// NewServer builds the router. A token secret is required.
func NewServer(opts Options) (*Server, error) {
	if opts.State == nil {
		return nil, errors.New("backend: state is required")
	}
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, errors.New("backend: token secret is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{
		opts:    opts,
		metrics: newMetrics(),
		limiter: newIPLimiter(opts.RateLimitPerMinute),
		log:     applog.WithComponent("backend"),
	}
	s.limiter.now = opts.Now
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestContext(s.log), s.metrics.middleware(), corsMiddleware(s.opts.AllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/readyz", s.ready)
	r.GET("/version", func(c *gin.Context) { c.String(http.StatusOK, version.String()) })
	r.GET("/metrics", s.metrics.handler())

	api := r.Group("/api", requireAuth(s.opts.Secret, s.opts.Now))
	api.GET("/lessons", s.listLessons)
	api.GET("/lessons/:id", s.getLesson)
	api.DELETE("/lessons/:id", s.deleteLesson)
	api.POST("/lessons", s.limiter.middleware(), s.generateLesson)
	api.GET("/lessons/:id/print", s.printLesson)
	api.GET("/search", s.search)
	api.POST("/wordchain/check", s.checkWord)
	return r
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then drains for up to 10s.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", slog.String("addr", addr))
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) ready(c *gin.Context) {
	if s.opts.Ready == nil {
		c.String(http.StatusOK, "ready")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.opts.Ready(ctx); err != nil {
		c.String(http.StatusServiceUnavailable, "db not ready")
		return
	}
	c.String(http.StatusOK, "ready")
}

// LessonSummary is one entry of GET /api/lessons.
type LessonSummary struct {
	ID         string `json:"id"`
	Topic      string `json:"topic"`
	GradeLevel string `json:"gradeLevel"`
	Province   string `json:"province"`
	Subject    string `json:"subject"`
	CreatedAt  string `json:"createdAt"`
	Slides     int    `json:"slides"`
}

func summarize(p domain.LessonPlan) LessonSummary {
	return LessonSummary{ID: p.ID, Topic: p.Topic, GradeLevel: p.GradeLevel, Province: p.Province,
		Subject: p.Subject, CreatedAt: p.CreatedAt, Slides: len(p.Slides)}
}

func (s *Server) listLessons(c *gin.Context) {
	ls := s.opts.State.Lessons(c.Request.Context())
	out := make([]LessonSummary, 0, len(ls))
	for _, p := range ls {
		out = append(out, summarize(p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) lesson(c *gin.Context) (domain.LessonPlan, bool) {
	p, err := s.opts.State.Lesson(c.Request.Context(), c.Param("id"))
	if errors.Is(err, appstate.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return p, false
	}
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return p, false
	}
	return p, true
}

func (s *Server) getLesson(c *gin.Context) {
	if p, ok := s.lesson(c); ok {
		c.JSON(http.StatusOK, p)
	}
}

func (s *Server) deleteLesson(c *gin.Context) {
	err := s.opts.State.DeleteLesson(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, appstate.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
	case appstate.IsWarning(err):
		c.Header("X-Storage-Warning", err.Error())
		c.Status(http.StatusNoContent)
	case err != nil:
		s.fail(c, http.StatusInternalServerError, err)
	default:
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) generateLesson(c *gin.Context) {
	if s.opts.Gen == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lesson generation is not configured"})
		return
	}
	var p domain.GenerationParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.SlideCount == 0 {
		p.SlideCount = domain.DefaultSlides
	}
	if err := p.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	plan, err := s.opts.Gen.GenerateLessonPlan(ctx, p)
	if err != nil {
		s.metrics.generated.WithLabelValues("error").Inc()
		s.fail(c, http.StatusBadGateway, err)
		return
	}
	s.metrics.generated.WithLabelValues("ok").Inc()
	err = s.opts.State.SaveLesson(applog.WithLessonID(ctx, plan.ID), plan)
	switch {
	case appstate.IsWarning(err):
		c.Header("X-Storage-Warning", err.Error())
	case err != nil:
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (s *Server) printLesson(c *gin.Context) {
	p, ok := s.lesson(c)
	if !ok {
		return
	}
	key, _ := strconv.ParseBool(c.DefaultQuery("key", "0"))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(export.PrintHTML(export.LessonPrintJob(p, key))))
}

func (s *Server) search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	res, err := s.opts.State.SearchLessons(c.Request.Context(), storage.SearchQuery{
		Text:    c.Query("q"),
		Grade:   c.Query("grade"),
		Subject: c.Query("subject"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	if res == nil {
		res = []storage.SearchResult{}
	}
	c.JSON(http.StatusOK, res)
}

// WordCheckRequest replays Words and submits Word on top of them.
type WordCheckRequest struct {
	Words []string `json:"words"`
	Word  string   `json:"word" binding:"required"`
}

type WordCheckResponse struct {
	Accepted   bool   `json:"accepted"`
	Message    string `json:"message,omitempty"`
	NextLetter string `json:"nextLetter,omitempty"`
	Level      int    `json:"level"`
	LevelUp    bool   `json:"levelUp,omitempty"`
}

func (s *Server) checkWord(c *gin.Context) {
	var req WordCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chain, err := games.ResumeWordChain(s.opts.Dict, req.Words)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ok, err := chain.Submit(c.Request.Context(), req.Word)
	resp := WordCheckResponse{Accepted: ok, Level: chain.Level()}
	if err != nil {
		resp.Message = err.Error()
	}
	if r := chain.NextLetter(); r != 0 {
		resp.NextLetter = string(r)
	}
	_, resp.LevelUp = chain.TakeLevelUp()
	c.JSON(http.StatusOK, resp)
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	applog.WithOperation(s.log, c.FullPath()).ErrorContext(c.Request.Context(), "request failed", slog.Any("err", err))
	c.JSON(status, gin.H{"error": err.Error()})
}
