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
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"mapleprep/internal/domain"
	"mapleprep/internal/widgets"
)

func (c *commandLine) teachers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSTATUS\tLESSONS")
		for _, t := range c.state.Teachers(ctx) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", t.ID, t.Name, t.Email, t.Status, t.LessonsCreated)
		}
		return tw.Flush()
	}
	switch args[0] {
	case "invite":
		fs := c.flags("teachers invite")
		email := fs.String("email", "", "email address (required)")
		subject := fs.String("subject", "", "subject taught")
		grade := fs.String("grade", "", "grade taught")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		name := strings.Join(fs.Args(), " ")
		t, err := c.state.InviteTeacher(ctx, name, *email, *subject, *grade)
		if err := c.warn(err); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Invited %s <%s> (%s)\n", t.Name, t.Email, t.ID)
		return nil
	case "status":
		if len(args) != 3 {
			fmt.Fprintln(c.errOut, "teachers status requires <id> <active|pending>")
			return errHelp
		}
		return c.warn(c.state.SetTeacherStatus(ctx, args[1], args[2]))
	case "rm":
		if len(args) != 2 {
			return errHelp
		}
		return c.warn(c.state.RemoveTeacher(ctx, args[1]))
	}
	return errHelp
}

// board manages the smart board: notes, background, presets and planner
// and library entries.
func (c *commandLine) board(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.printBoard(c.state.SmartBoard(ctx))
		return nil
	}
	switch args[0] {
	case "set":
		fs := c.flags("board set")
		bg := fs.String("bg", "", "background id ("+boardBackgroundIDs()+") or image URL")
		learning := fs.String("learning", "", "learning goals")
		activities := fs.String("activities", "", "today's activities")
		reminders := fs.String("reminders", "", "reminders")
		special := fs.String("special", "", "special events")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		cfg := c.state.SmartBoard(ctx)
		var bgErr error
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bg":
				cfg.Bg, bgErr = boardBackground(*bg)
			case "learning":
				cfg.Notes.Learning = *learning
			case "activities":
				cfg.Notes.Activities = *activities
			case "reminders":
				cfg.Notes.Reminders = *reminders
			case "special":
				cfg.Notes.Special = *special
			}
		})
		if bgErr != nil {
			return bgErr
		}
		return c.warn(c.state.SaveSmartBoard(ctx, cfg))
	case "presets":
		for _, p := range c.state.Presets(ctx) {
			fmt.Fprintf(c.out, "%s  %s\n", p.ID, p.Name)
		}
		return nil
	case "preset":
		if len(args) != 3 {
			fmt.Fprintln(c.errOut, "board preset requires <save <name>|apply <id>|rm <id>>")
			return errHelp
		}
		switch args[1] {
		case "save":
			p, err := c.state.SavePreset(ctx, args[2], c.state.SmartBoard(ctx))
			if err := c.warn(err); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Saved preset %s (%s)\n", p.Name, p.ID)
			return nil
		case "apply":
			cfg, err := c.state.ApplyPreset(ctx, args[2])
			if err := c.warn(err); err != nil {
				return err
			}
			c.printBoard(cfg)
			return nil
		case "rm":
			return c.warn(c.state.DeletePreset(ctx, args[2]))
		}
		return errHelp
	case "plan":
		if len(args) != 3 {
			fmt.Fprintln(c.errOut, "board plan requires <day> <period>")
			return errHelp
		}
		key, err := c.state.AddSmartBoardToPlanner(ctx, args[1], args[2], c.state.SmartBoard(ctx))
		if err := c.warn(err); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Added smart board plan to", key)
		return nil
	case "save":
		if len(args) < 2 {
			return errHelp
		}
		p, err := c.state.SaveSmartBoardToLibrary(ctx, strings.Join(args[1:], " "), c.state.SmartBoard(ctx))
		if err := c.warn(err); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Saved board layout as lesson %s\n", p.ID)
		return nil
	case "load":
		if len(args) != 2 {
			return errHelp
		}
		cfg, err := c.state.LoadSmartBoardLesson(ctx, args[1])
		if err != nil {
			return err
		}
		if err := c.warn(c.state.SaveSmartBoard(ctx, cfg)); err != nil {
			return err
		}
		c.printBoard(cfg)
		return nil
	}
	return errHelp
}

func (c *commandLine) printBoard(cfg domain.SmartBoardConfig) {
	bg := cfg.Bg
	for _, b := range domain.SmartBoardBackgrounds {
		if b.URL == cfg.Bg {
			bg = b.Name
		}
	}
	fmt.Fprintf(c.out, "Background: %s\n", bg)
	fmt.Fprintf(c.out, "Learning:   %s\n", cfg.Notes.Learning)
	fmt.Fprintf(c.out, "Activities: %s\n", cfg.Notes.Activities)
	fmt.Fprintf(c.out, "Reminders:  %s\n", cfg.Notes.Reminders)
	fmt.Fprintf(c.out, "Special:    %s\n", cfg.Notes.Special)
}

func boardBackground(v string) (string, error) {
	v = strings.TrimSpace(v)
	for _, b := range domain.SmartBoardBackgrounds {
		if strings.EqualFold(v, b.ID) {
			return b.URL, nil
		}
	}
	return domain.ValidateURL(v)
}

func boardBackgroundIDs() string {
	ids := make([]string, len(domain.SmartBoardBackgrounds))
	for i, b := range domain.SmartBoardBackgrounds {
		ids[i] = b.ID
	}
	return strings.Join(ids, ", ")
}

func (c *commandLine) scramble(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(c.errOut, "scramble requires one or more words")
		return errHelp
	}
	s := widgets.NewScrambler(nil)
	for _, w := range args {
		if sc, ok := s.Scramble(w); ok {
			fmt.Fprintf(c.out, "%s\t(answer: %s)\n", sc.Scrambled, sc.Original)
		}
	}
	return nil
}
