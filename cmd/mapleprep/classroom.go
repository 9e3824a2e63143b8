/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"mapleprep/internal/config"
	"mapleprep/internal/domain"
	"mapleprep/internal/games"
	"mapleprep/internal/librarypack"
	"mapleprep/internal/task"
	"mapleprep/internal/telemetry"
	"mapleprep/internal/widgets"
)

func (c *commandLine) wordchain(ctx context.Context, args []string) error {
	fs := c.flags("wordchain")
	noDict := fs.Bool("no-dict", false, "skip the spelling check")
	if err := parse(fs, args); err != nil {
		return err
	}
	var dict games.Dictionary
	if !*noDict {
		dict = c.dict
	}
	w := games.NewWordChain(dict)
	telemetry.Event(telemetry.GameStarted, map[string]any{"game": "wordchain"})
	fmt.Fprintln(c.out, "Word chain: each word starts with the last letter of the previous one. Empty line or \"quit\" ends.")
	sc := bufio.NewScanner(c.in)
	for {
		if r := w.NextLetter(); r != 0 {
			fmt.Fprintf(c.out, "[level %d] next word starts with %c: ", w.Level(), r)
		} else {
			fmt.Fprint(c.out, "first word: ")
		}
		if !sc.Scan() {
			break
		}
		word := strings.TrimSpace(sc.Text())
		if word == "" || strings.EqualFold(word, "quit") {
			break
		}
		ok, err := w.Submit(ctx, word)
		switch {
		case err != nil:
			fmt.Fprintln(c.out, err)
		case ok:
			if lvl, up := w.TakeLevelUp(); up {
				fmt.Fprintf(c.out, "Level up! Now at level %d\n", lvl)
			}
		}
	}
	fmt.Fprintf(c.out, "\nChain of %d words: %s\n", w.Len(), strings.Join(w.Words(), " → "))
	return sc.Err()
}

func (c *commandLine) game(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(c.errOut, "game requires <quiz|sorting|story|memory|banana>")
		return errHelp
	}
	name := games.Name(args[0])
	fs := c.flags("game " + args[0])
	topic := fs.String("topic", "", "game topic")
	grade := fs.String("grade", c.cfg.General.DefaultGrade, "grade level")
	subject := fs.String("subject", c.cfg.General.DefaultSubject, "subject")
	if err := parse(fs, args[1:]); err != nil {
		return err
	}
	gen, err := c.generator()
	if err != nil {
		return err
	}
	slots := task.New(ctx)
	defer slots.Close()
	ld := games.Loader{Source: gen, Slots: slots}
	p := domain.GameParams{Grade: *grade, Topic: *topic, Subject: *subject}
	telemetry.Event(telemetry.GameStarted, map[string]any{"game": string(name)})
	sc := bufio.NewScanner(c.in)

	switch name {
	case games.NameQuiz:
		q, err := ld.Quiz(p)
		if err != nil {
			return err
		}
		return c.playQuiz(q, sc)
	case games.NameSorting:
		s, err := ld.Sorting(p)
		if err != nil {
			return err
		}
		return c.playSorting(s, sc)
	case games.NameStory:
		s, err := ld.Story(p)
		if err != nil {
			return err
		}
		return c.playStory(s, sc)
	case games.NameMemory:
		m, err := ld.Memory(p)
		if err != nil {
			return err
		}
		defer m.Close()
		fmt.Fprintf(c.out, "Memory match ready: %d cards. Play it in the presenter.\n", len(m.Cards()))
		return nil
	case games.NameBanana:
		b, err := ld.Banana(p)
		if err != nil {
			return err
		}
		st := b.State()
		fmt.Fprintf(c.out, "Math banana ready: %d rounds, first target %s. Play it in the presenter.\n", st.Rounds, st.TargetDescription)
		return nil
	}
	fmt.Fprintf(c.errOut, "unknown game %q\n", name)
	return errHelp
}

func (c *commandLine) playQuiz(q *games.Quiz, sc *bufio.Scanner) error {
	for !q.Finished() {
		cur := q.Current()
		fmt.Fprintf(c.out, "\nQ%d/%d: %s\n", q.CurrentIndex()+1, q.Len(), cur.Text)
		for i, o := range cur.Options {
			fmt.Fprintf(c.out, "  %d) %s\n", i+1, o)
		}
		fmt.Fprint(c.out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil || n < 1 || n > len(cur.Options) {
			fmt.Fprintln(c.out, "Pick an option number.")
			continue
		}
		if _, err := q.Answer(cur.Options[n-1]); err != nil {
			fmt.Fprintln(c.out, err)
			continue
		}
		fmt.Fprintln(c.out, q.Feedback())
		if err := q.Next(); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.out, "\nScore: %d / %d\n", q.Score(), q.Len())
	return nil
}

func (c *commandLine) playSorting(s *games.Sorting, sc *bufio.Scanner) error {
	cats := s.Categories()
	for !s.Done() {
		item, ok := s.Next()
		if !ok {
			break
		}
		fmt.Fprintf(c.out, "\n%s\n", item.Text)
		for i, cat := range cats {
			fmt.Fprintf(c.out, "  %d) %s\n", i+1, cat)
		}
		fmt.Fprint(c.out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil || n < 1 || n > len(cats) {
			fmt.Fprintln(c.out, "Pick a category number.")
			continue
		}
		if _, err := s.Drop(item.ID, n-1); err != nil {
			return err
		}
		fmt.Fprintln(c.out, s.Feedback())
	}
	fmt.Fprintf(c.out, "\nScore: %d, mistakes: %d\n", s.Score(), s.Mistakes())
	return nil
}

func (c *commandLine) playStory(s *games.Story, sc *bufio.Scanner) error {
	fmt.Fprintf(c.out, "%s\n", s.Title())
	for _, ph := range s.Placeholders() {
		for {
			fmt.Fprintf(c.out, "%s: ", ph.Label)
			if !sc.Scan() {
				return sc.Err()
			}
			if err := s.Fill(ph.Key, sc.Text()); err != nil {
				fmt.Fprintln(c.out, err)
				continue
			}
			break
		}
	}
	text, err := s.Complete()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\n%s\n", text)
	return nil
}

func (c *commandLine) students(ctx context.Context, args []string) error {
	if len(args) == 0 {
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tGRADE\tNAME")
		for _, s := range c.state.Students(ctx) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Grade, s.Name)
		}
		return tw.Flush()
	}
	switch args[0] {
	case "add":
		fs := c.flags("students add")
		grade := fs.String("grade", c.cfg.General.DefaultGrade, "grade level")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		name, err := oneArg(fs, "name")
		if err != nil {
			return err
		}
		s, err := c.state.AddStudent(ctx, name, *grade)
		if err := c.warn(err); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Added %s (%s)\n", s.Name, s.ID)
		return nil
	case "rm":
		if len(args) != 2 {
			return errHelp
		}
		return c.warn(c.state.RemoveStudent(ctx, args[1]))
	case "pick":
		fs := c.flags("students pick")
		grade := fs.String("grade", widgets.AllGrades, "only students of this grade")
		file := fs.String("file", "", "pick from a file with one name per line instead of the class list")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		var names []string
		var err error
		if *file != "" {
			b, rerr := os.ReadFile(*file)
			if rerr != nil {
				return rerr
			}
			names, err = widgets.CustomNames(string(b))
		} else {
			names, err = widgets.ClassNames(c.state.Students(ctx), *grade)
		}
		if err != nil {
			return err
		}
		pick, err := widgets.NewPicker(nil, nil).Spin(ctx, names, func(n string) {
			fmt.Fprintf(c.out, "\r%-30s", n)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "\r%-30s\n", "🎉 "+pick)
		return nil
	}
	return errHelp
}

func (c *commandLine) bookmarks(ctx context.Context, args []string) error {
	if len(args) == 0 {
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		for _, b := range c.state.Bookmarks(ctx) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, b.Title, b.URL)
		}
		return tw.Flush()
	}
	switch args[0] {
	case "add":
		if len(args) != 3 {
			fmt.Fprintln(c.errOut, "bookmarks add requires <title> <url>")
			return errHelp
		}
		b, err := c.state.AddBookmark(ctx, args[1], args[2])
		if err := c.warn(err); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Added %s (%s)\n", b.Title, b.ID)
		return nil
	case "rm":
		if len(args) != 2 {
			return errHelp
		}
		return c.warn(c.state.RemoveBookmark(ctx, args[1]))
	}
	return errHelp
}

func (c *commandLine) planner(ctx context.Context, args []string) error {
	if len(args) == 0 {
		plan := c.state.Planner(ctx)
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprint(tw, "PERIOD")
		for _, d := range domain.PlannerDays {
			fmt.Fprintf(tw, "\t%s", d)
		}
		fmt.Fprintln(tw)
		for _, per := range domain.PlannerPeriods {
			fmt.Fprint(tw, per)
			for _, d := range domain.PlannerDays {
				fmt.Fprintf(tw, "\t%s", plan[d+"-"+per].Subject)
			}
			fmt.Fprintln(tw)
		}
		return tw.Flush()
	}
	switch args[0] {
	case "set":
		if len(args) < 3 {
			fmt.Fprintln(c.errOut, "planner set requires <day> <period>")
			return errHelp
		}
		fs := c.flags("planner set")
		subject := fs.String("subject", "", "subject shown in the cell")
		notes := fs.String("notes", "", "notes")
		lesson := fs.String("lesson", "", "lesson id to link")
		link := fs.String("url", "", "external link")
		if err := parse(fs, args[3:]); err != nil {
			return err
		}
		if *lesson != "" {
			if _, err := c.state.Lesson(ctx, *lesson); err != nil {
				return err
			}
		}
		key, err := c.state.SetPlannerCell(ctx, args[1], args[2], domain.PlannerEntry{
			Subject: *subject, Notes: *notes, PresentationID: *lesson, ExternalURL: *link,
		})
		if err := c.warn(err); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Set", key)
		return nil
	case "clear":
		if len(args) != 3 {
			return errHelp
		}
		return c.warn(c.state.ClearPlannerCell(ctx, args[1], args[2]))
	}
	return errHelp
}

func (c *commandLine) pack(ctx context.Context, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(c.errOut, "pack requires <export|import|inspect> <zip>")
		return errHelp
	}
	switch args[0] {
	case "export":
		n, err := librarypack.Export(ctx, c.state, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Exported %d tables to %s\n", n, args[1])
		return nil
	case "import":
		fs := c.flags("pack import")
		overwrite := fs.Bool("overwrite", false, "replace tables that already exist")
		if err := parse(fs, args[2:]); err != nil {
			return err
		}
		n, err := librarypack.Import(ctx, c.state, args[1], librarypack.ImportOptions{Overwrite: *overwrite})
		if err := c.warn(err); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Imported %d tables\n", n)
		return nil
	case "inspect":
		m, err := librarypack.Inspect(args[1])
		if err != nil {
			return err
		}
		sort.Strings(m.Tables)
		fmt.Fprintf(c.out, "%s v%d from MaplePrep %s, created %s\n", m.Format, m.Version, m.AppVersion, m.Created)
		for _, t := range m.Tables {
			fmt.Fprintln(c.out, "  ", t)
		}
		return nil
	}
	return errHelp
}

// timer runs a classroom countdown in the terminal.
func (c *commandLine) timer(ctx context.Context, args []string) error {
	fs := c.flags("timer")
	minutes := fs.Int("m", int(widgets.DefaultCountdown/time.Minute), "minutes")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *minutes <= 0 {
		return errors.New("minutes must be positive")
	}
	done := make(chan struct{})
	cd := widgets.NewCountdown(nil, func(d time.Duration) {
		fmt.Fprintf(c.out, "\r%s ", widgets.FormatCountdown(d))
	}, func() { close(done) })
	cd.Set(time.Duration(*minutes) * time.Minute)
	cd.Start()
	defer cd.Stop()
	select {
	case <-done:
		cd.DismissAlert()
		fmt.Fprintln(c.out, "\rTime's up!")
		return nil
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return ctx.Err()
	}
}

func (c *commandLine) key(args []string) error {
	if len(args) == 0 {
		return errHelp
	}
	switch args[0] {
	case "status":
		k, err := config.APIKey()
		if err != nil {
			return err
		}
		if k == "" {
			fmt.Fprintf(c.out, "No API key. Set %s or run: mapleprep key set <key>\n", config.EnvAPIKey)
			return nil
		}
		fmt.Fprintf(c.out, "API key configured (…%s)\n", k[max(0, len(k)-4):])
		return nil
	case "set":
		if len(args) != 2 {
			return errHelp
		}
		if err := config.SetAPIKey(args[1]); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "API key stored in the OS keyring")
		return nil
	case "set-server-secret":
		if len(args) != 2 {
			return errHelp
		}
		return config.SetServerSecret(args[1])
	}
	return errHelp
}
