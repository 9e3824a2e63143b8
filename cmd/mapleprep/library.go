/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"mapleprep/internal/backend"
	"mapleprep/internal/config"
	"mapleprep/internal/export"
	"mapleprep/internal/storage"
)

// history lists the saved revisions of a lesson or restores one.
func (c *commandLine) history(ctx context.Context, args []string) error {
	fs := c.flags("history")
	restore := fs.Int64("restore", 0, "revision id to restore")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *restore > 0 {
		p, err := c.state.RestoreRevision(ctx, *restore)
		if err := c.warn(err); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Restored %s to revision %d\n", p.ID, *restore)
		return nil
	}
	id, err := oneArg(fs, "lesson id")
	if err != nil {
		return err
	}
	revs, err := c.state.Revisions(ctx, id)
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		fmt.Fprintln(c.out, "No revisions.")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REV\tSAVED\tBYTES")
	for _, r := range revs {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", r.ID, r.At.Local().Format(time.DateTime), r.Size)
	}
	return tw.Flush()
}

// thumb writes a slide thumbnail, served from the backend's cache when it
// has one.
func (c *commandLine) thumb(ctx context.Context, args []string) error {
	fs := c.flags("thumb")
	slide := fs.Int("slide", 1, "slide number")
	width := fs.Int("w", 320, "width in pixels")
	out := fs.String("out", "", "output file (default <topic>-slide-<n>.png)")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneArg(fs, "lesson id")
	if err != nil {
		return err
	}
	p, err := c.state.Lesson(ctx, id)
	if err != nil {
		return err
	}
	i := *slide - 1
	if i < 0 || i >= len(p.Slides) {
		return fmt.Errorf("slide %d out of range (1-%d)", *slide, len(p.Slides))
	}
	w := max(*width, 64)
	h := w * 9 / 16
	k := storage.ThumbKey{LessonID: p.ID, Slide: i, W: w, H: h}
	fonts := c.slideFonts()
	png, err := c.state.Thumbnail(ctx, k, func(context.Context) ([]byte, error) {
		img, err := export.SlidePNG(p.Slides[i], export.PNGOptions{Width: w, Height: h, Elements: true, Fonts: fonts})
		if err != nil {
			return nil, err
		}
		return export.EncodePNG(img)
	})
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = fmt.Sprintf("%s-slide-%d.png", export.Slug(p.Topic), *slide)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Wrote", path)
	return nil
}

// remote reads lessons from another MaplePrep server.
func (c *commandLine) remote(ctx context.Context, args []string) error {
	fs := c.flags("remote")
	base := fs.String("url", "", "server base URL, e.g. http://school-server:8787")
	token := fs.String("token", os.Getenv("MPP_REMOTE_TOKEN"), "bearer token (see: mapleprep token)")
	pull := fs.Bool("pull", false, "with show: save the lesson into the local library")
	if err := parse(fs, args); err != nil {
		return err
	}
	rest := fs.Args()
	if *base == "" || len(rest) == 0 {
		fmt.Fprintln(c.errOut, "remote requires -url and <list|show <id>|search <text>>")
		return errHelp
	}
	cl := backend.NewClient(*base, *token)
	switch rest[0] {
	case "list":
		ls, err := cl.ListLessons(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		for _, l := range ls {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ID, l.GradeLevel, l.Subject, l.Topic)
		}
		return tw.Flush()
	case "show":
		if len(rest) != 2 {
			return errHelp
		}
		p, err := cl.GetLesson(ctx, rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s\n%s · %s · %d slides\n", p.Topic, p.GradeLevel, p.Subject, len(p.Slides))
		if *pull {
			if err := c.warn(c.state.SaveLesson(ctx, p)); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Saved to the local library")
		}
		return nil
	case "search":
		res, err := cl.Search(ctx, storage.SearchQuery{Text: strings.Join(rest[1:], " ")})
		if err != nil {
			return err
		}
		for _, r := range res {
			fmt.Fprintf(c.out, "%s  %s  %s\n", r.ID, r.Topic, r.Snippet)
		}
		return nil
	}
	return errHelp
}

// token issues a bearer token for this machine's API server.
func (c *commandLine) token(args []string) error {
	fs := c.flags("token")
	ttl := fs.Duration("ttl", backend.MaxTokenTTL, "token lifetime (at most 720h)")
	if err := parse(fs, args); err != nil {
		return err
	}
	subject, err := oneArg(fs, "subject")
	if err != nil {
		return err
	}
	secret, err := config.ServerSecret()
	if err != nil {
		return err
	}
	if secret == "" {
		return fmt.Errorf("no token secret: set %s or run: mapleprep key set-server-secret <value>", config.EnvServerSecretKey)
	}
	tok, err := backend.SignToken(secret, subject, time.Now(), *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, tok)
	return nil
}
