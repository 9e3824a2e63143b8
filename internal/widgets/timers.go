/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package widgets holds the classroom tools shown next to the lesson
// library: stopwatch, countdown timer, name picker and word scramble.
package widgets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

const (
	StopwatchTick    = 10 * time.Millisecond
	CountdownTick    = time.Second
	DefaultCountdown = 300 * time.Second
)

// loop calls step on every tick until step returns false or stop is called.
type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startLoop(clk clock.Clock, every time.Duration, step func() bool) *loop {
	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{cancel: cancel, done: make(chan struct{})}
	t := clk.Ticker(every)
	go func() {
		defer close(l.done)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if !step() {
					return
				}
			}
		}
	}()
	return l
}

func (l *loop) stop() {
	if l == nil {
		return
	}
	l.cancel()
	<-l.done
}

// Stopwatch counts up in 10 ms steps while running.
type Stopwatch struct {
	mu      sync.Mutex
	clk     clock.Clock
	elapsed time.Duration
	active  bool
	loop    *loop
	onTick  func(time.Duration)
}

// NewStopwatch returns a stopped stopwatch. A nil clk uses the wall clock.
func NewStopwatch(clk clock.Clock, onTick func(time.Duration)) *Stopwatch {
	if clk == nil {
		clk = clock.New()
	}
	return &Stopwatch{clk: clk, onTick: onTick}
}

func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.loop = startLoop(s.clk, StopwatchTick, func() bool {
		return s.Tick()
	})
}

// Stop pauses the stopwatch and waits for its ticker to exit.
func (s *Stopwatch) Stop() {
	s.mu.Lock()
	l := s.loop
	s.active, s.loop = false, nil
	s.mu.Unlock()
	l.stop()
}

// Reset stops the stopwatch and zeroes it.
func (s *Stopwatch) Reset() {
	s.Stop()
	s.mu.Lock()
	s.elapsed = 0
	s.mu.Unlock()
}

// Tick adds one step while active and reports whether it is still active.
func (s *Stopwatch) Tick() bool {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return false
	}
	s.elapsed += StopwatchTick
	e, fn := s.elapsed, s.onTick
	s.mu.Unlock()
	if fn != nil {
		fn(e)
	}
	return true
}

func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Stopwatch) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// FormatStopwatch renders d as mm:ss.cc.
func FormatStopwatch(d time.Duration) string {
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d.%02d", ms/60000, (ms%60000)/1000, (ms%1000)/10)
}

// Countdown counts down in whole seconds and raises an alert at zero.
type Countdown struct {
	mu        sync.Mutex
	clk       clock.Clock
	remaining time.Duration
	active    bool
	alert     bool
	loop      *loop
	onTick    func(time.Duration)
	onAlert   func()
}

// NewCountdown returns a stopped countdown set to DefaultCountdown.
func NewCountdown(clk clock.Clock, onTick func(time.Duration), onAlert func()) *Countdown {
	if clk == nil {
		clk = clock.New()
	}
	return &Countdown{clk: clk, remaining: DefaultCountdown, onTick: onTick, onAlert: onAlert}
}

// Set stops the countdown and sets the time left, rounded down to seconds.
func (c *Countdown) Set(d time.Duration) {
	c.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	if d < 0 {
		d = 0
	}
	c.remaining = d.Truncate(time.Second)
	c.alert = false
}

// Start runs the countdown. It does nothing when no time is left.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active || c.remaining <= 0 {
		return
	}
	c.active, c.alert = true, false
	c.loop = startLoop(c.clk, CountdownTick, func() bool {
		return c.Tick()
	})
}

func (c *Countdown) Stop() {
	c.mu.Lock()
	l := c.loop
	c.active, c.loop = false, nil
	c.mu.Unlock()
	l.stop()
}

// Tick removes one second while active. Reaching zero deactivates the
// countdown and raises the alert once.
func (c *Countdown) Tick() bool {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return false
	}
	fired := false
	if c.remaining <= CountdownTick {
		c.remaining = 0
		c.active = false
		c.alert = true
		c.loop = nil
		fired = true
	} else {
		c.remaining -= CountdownTick
	}
	r, active, onTick, onAlert := c.remaining, c.active, c.onTick, c.onAlert
	c.mu.Unlock()
	if onTick != nil {
		onTick(r)
	}
	if fired && onAlert != nil {
		onAlert()
	}
	return active
}

// DismissAlert clears a raised alert.
func (c *Countdown) DismissAlert() {
	c.mu.Lock()
	c.alert = false
	c.mu.Unlock()
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Countdown) Alerting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alert
}

// FormatCountdown renders d as mm:ss.
func FormatCountdown(d time.Duration) string {
	s := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
