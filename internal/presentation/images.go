/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package presentation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"mapleprep/internal/domain"
	"mapleprep/internal/task"

	"golang.org/x/sync/errgroup"
)

// DefaultParallelImages bounds GenerateAll when no limit is given.
const DefaultParallelImages = 3

func slotFor(i int, t Target) string {
	if t == TargetExample {
		return task.SlideExample(i)
	}
	return task.SlideMain(i)
}

// Status reports the image state of slide i.
func (d *Deck) Status(i int, t Target) ImageStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status[slotFor(i, t)]
}

func promptFor(s domain.Slide, t Target) (string, domain.ImageStyle, error) {
	if t == TargetExample {
		if s.PracticalExample == nil {
			return "", "", ErrNoExample
		}
		return ExamplePrompt(*s.PracticalExample), domain.ImageChalkboard, nil
	}
	if strings.TrimSpace(s.ImageDescription) == "" {
		return "", "", ErrNoDescription
	}
	return s.ImageDescription, domain.ImageDefault, nil
}

// GenerateImage starts image generation for the current slide. A second
// request for the same image replaces the first, whose result is dropped.
// The result is stored in the lesson and saved when it arrives.
func (d *Deck) GenerateImage(t Target) error {
	d.mu.Lock()
	if len(d.plan.Slides) == 0 {
		d.mu.Unlock()
		return ErrNoSlide
	}
	i := d.index
	prompt, style, err := promptFor(d.plan.Slides[i], t)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	slot := slotFor(i, t)
	d.status[slot] = ImageGenerating
	d.mu.Unlock()

	_, err = task.Go(d.slots, slot, func(ctx context.Context) (string, error) {
		return d.gen.GenerateImage(ctx, prompt, style)
	}, func(img string, err error) {
		d.applyImage(i, t, img, err)
	})
	return err
}

func (d *Deck) applyImage(i int, t Target, img string, err error) {
	slot := slotFor(i, t)
	d.mu.Lock()
	if err != nil || img == "" {
		d.status[slot] = ImageFailed
		d.mu.Unlock()
		d.log.Warn("image generation failed", "slot", slot, "err", err)
		d.changed()
		return
	}
	setImage(&d.plan.Slides[i], t, img)
	d.status[slot] = ImageReady
	out := d.plan.Clone()
	d.mu.Unlock()
	d.saveInBackground(out)
	d.changed()
}

func setImage(s *domain.Slide, t Target, img string) {
	if t == TargetExample {
		ex := *s.PracticalExample
		ex.Base64Image = img
		s.PracticalExample = &ex
		return
	}
	s.Base64Image = img
}

// GenerateAll fills every missing main image, at most limit at a time, and
// saves the lesson once. Failed slides are reported together and do not
// stop the others.
func (d *Deck) GenerateAll(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = DefaultParallelImages
	}
	type job struct {
		i      int
		prompt string
	}
	d.mu.Lock()
	var jobs []job
	for i, s := range d.plan.Slides {
		if s.Base64Image != "" || strings.TrimSpace(s.ImageDescription) == "" {
			continue
		}
		jobs = append(jobs, job{i, s.ImageDescription})
		d.status[task.SlideMain(i)] = ImageGenerating
	}
	d.mu.Unlock()
	for _, j := range jobs {
		d.slots.Cancel(task.SlideMain(j.i))
	}

	var (
		mu     sync.Mutex
		images = make(map[int]string, len(jobs))
		errs   []error
	)
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for _, j := range jobs {
		g.Go(func() error {
			img, err := d.gen.GenerateImage(ctx, j.prompt, domain.ImageDefault)
			mu.Lock()
			defer mu.Unlock()
			if err == nil && img == "" {
				err = errors.New("empty image")
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("slide %d: %w", j.i+1, err))
				return nil
			}
			images[j.i] = img
			return nil
		})
	}
	_ = g.Wait()

	d.mu.Lock()
	for _, j := range jobs {
		slot := task.SlideMain(j.i)
		if img, ok := images[j.i]; ok {
			d.plan.Slides[j.i].Base64Image = img
			d.status[slot] = ImageReady
		} else {
			d.status[slot] = ImageFailed
		}
	}
	out := d.plan.Clone()
	d.mu.Unlock()
	if len(images) > 0 {
		if err := d.save(ctx, out); err != nil {
			errs = append(errs, err)
		}
	}
	d.changed()
	return len(images), errors.Join(errs...)
}
