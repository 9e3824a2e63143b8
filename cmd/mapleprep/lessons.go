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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"mapleprep/internal/ai"
	"mapleprep/internal/domain"
	"mapleprep/internal/export"
	applog "mapleprep/internal/log"
	"mapleprep/internal/presentation"
	"mapleprep/internal/storage"
	"mapleprep/internal/telemetry"
)

func (c *commandLine) generate(ctx context.Context, args []string) error {
	fs := c.flags("generate")
	topic := fs.String("topic", "", "lesson topic (required)")
	grade := fs.String("grade", c.cfg.General.DefaultGrade, "grade level, e.g. \"Grade 3\" or 3")
	province := fs.String("province", c.cfg.General.DefaultProvince, "province or territory")
	subject := fs.String("subject", c.cfg.General.DefaultSubject, "subject")
	slides := fs.Int("slides", domain.DefaultSlides, "number of slides")
	images := fs.Bool("images", false, "also generate every slide image")
	if err := parse(fs, args); err != nil {
		return err
	}
	g, err := domain.ParseGrade(*grade)
	if err != nil {
		return err
	}
	pv, err := domain.ParseProvince(*province)
	if err != nil {
		return err
	}
	sb, err := domain.ParseSubject(*subject)
	if err != nil {
		return err
	}
	params := domain.GenerationParams{Topic: strings.TrimSpace(*topic), Grade: g, Province: pv, Subject: sb, SlideCount: *slides}
	if err := params.Validate(); err != nil {
		return err
	}
	gen, err := c.generator()
	if err != nil {
		return err
	}

	l := applog.WithOperation(c.log, "generate")
	fmt.Fprintf(c.out, "Generating %d slides on %q for %s %s…\n", params.SlideCount, params.Topic, params.Grade, params.Subject)
	plan, err := gen.GenerateLessonPlan(ctx, params)
	if err != nil {
		return err
	}
	ctx = applog.WithLessonID(ctx, plan.ID)
	if err := c.warn(c.state.SaveLesson(ctx, plan)); err != nil {
		return err
	}
	l.InfoContext(ctx, "lesson generated", slog.Int("slides", len(plan.Slides)))
	telemetry.Event(telemetry.LessonGenerated, map[string]any{
		"grade":   string(params.Grade),
		"subject": string(params.Subject),
		"slides":  len(plan.Slides),
	})
	fmt.Fprintf(c.out, "Saved lesson %s: %s\n", plan.ID, plan.Topic)

	if *images {
		deck := presentation.New(ctx, plan, gen, c.state)
		defer deck.Close()
		n, err := deck.GenerateAll(ctx, c.cfg.AI.MaxParallelImages)
		fmt.Fprintf(c.out, "Generated %d images\n", n)
		if err != nil {
			return c.warn(err)
		}
	}
	return nil
}

func (c *commandLine) list(ctx context.Context) error {
	lessons := c.state.Lessons(ctx)
	if len(lessons) == 0 {
		fmt.Fprintln(c.out, "No lessons yet. Try: mapleprep generate -topic \"Fractions\"")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tGRADE\tSUBJECT\tSLIDES\tTOPIC")
	for _, p := range lessons {
		created := p.CreatedAt
		if len(created) >= 10 {
			created = created[:10]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", p.ID, created, p.GradeLevel, p.Subject, len(p.Slides), p.Topic)
	}
	return tw.Flush()
}

func (c *commandLine) show(ctx context.Context, args []string) error {
	fs := c.flags("show")
	asJSON := fs.Bool("json", false, "print the stored JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneArg(fs, "id")
	if err != nil {
		return err
	}
	p, err := c.state.Lesson(ctx, id)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	fmt.Fprintf(c.out, "%s\n%s · %s · %s\n", p.Topic, p.GradeLevel, p.Province, p.Subject)
	if p.CurriculumExpectations != "" {
		fmt.Fprintf(c.out, "\nCurriculum: %s\n", p.CurriculumExpectations)
	}
	if len(p.LearningObjectives) > 0 {
		fmt.Fprintln(c.out, "\nObjectives:")
		for _, o := range p.LearningObjectives {
			fmt.Fprintf(c.out, "  - %s\n", o)
		}
	}
	fmt.Fprintln(c.out, "\nSlides:")
	for i, s := range p.Slides {
		img := ""
		if s.Base64Image != "" {
			img = " [image]"
		}
		fmt.Fprintf(c.out, "  %2d. %s%s\n", i+1, s.Title, img)
		for _, b := range s.BulletPoints {
			fmt.Fprintf(c.out, "      • %s\n", b)
		}
	}
	fmt.Fprintf(c.out, "\nActivities: %d  Quiz questions: %d\n", len(p.Activities), len(p.Quiz))
	return nil
}

func (c *commandLine) delete(ctx context.Context, args []string) error {
	fs := c.flags("delete")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneArg(fs, "id")
	if err != nil {
		return err
	}
	if err := c.warn(c.state.DeleteLesson(ctx, id)); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Deleted", id)
	return nil
}

func (c *commandLine) search(ctx context.Context, args []string) error {
	fs := c.flags("search")
	grade := fs.String("grade", "", "only this grade")
	subject := fs.String("subject", "", "only this subject")
	limit := fs.Int("limit", 20, "maximum results")
	if err := parse(fs, args); err != nil {
		return err
	}
	q := storage.SearchQuery{Text: strings.Join(fs.Args(), " "), Grade: *grade, Subject: *subject, Limit: *limit}
	res, err := c.state.SearchLessons(ctx, q)
	if err != nil {
		return err
	}
	if len(res) == 0 {
		fmt.Fprintln(c.out, "No matches.")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, r := range res {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Grade, r.Topic, r.Snippet)
	}
	return tw.Flush()
}

func (c *commandLine) worksheet(ctx context.Context, args []string) error {
	fs := c.flags("worksheet")
	topic := fs.String("topic", "", "worksheet topic (required)")
	grade := fs.String("grade", c.cfg.General.DefaultGrade, "grade level")
	subject := fs.String("subject", c.cfg.General.DefaultSubject, "subject")
	style := fs.String("style", string(domain.StyleStandard), "standard, vocabulary, critical_thinking or math_drill")
	count := fs.Int("count", 10, "number of questions")
	out := fs.String("out", ".", "output directory")
	pdf := fs.Bool("pdf", false, "write PDF instead of printable HTML")
	if err := parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*topic) == "" {
		fmt.Fprintln(c.errOut, "worksheet requires -topic")
		fs.Usage()
		return errHelp
	}
	gen, err := c.generator()
	if err != nil {
		return err
	}
	ws, err := gen.GenerateWorksheet(ctx, ai.WorksheetRequest{
		Topic:   *topic,
		Grade:   *grade,
		Subject: *subject,
		Style:   domain.ParseWorksheetStyle(*style),
		Count:   *count,
	})
	if err != nil {
		return err
	}
	base := export.Slug(ws.Topic)
	for _, teacher := range []bool{false, true} {
		job := export.WorksheetPrintJob(ws, teacher)
		name := base + "-worksheet"
		if teacher {
			name = base + "-answer-key"
		}
		var path string
		if *pdf {
			path = filepath.Join(*out, name+".pdf")
			err = export.WriteWorksheetPDF(job, path)
		} else {
			path, err = writeHTML(job, filepath.Join(*out, name+".html"))
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Wrote", path)
	}
	telemetry.Event(telemetry.WorksheetPrinted, map[string]any{"source": "cli", "style": string(ws.Style)})
	return nil
}

func writeHTML(job export.PrintJob, path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(export.PrintHTML(job)), 0o644)
}

func (c *commandLine) print(ctx context.Context, args []string) error {
	fs := c.flags("print")
	key := fs.Bool("key", false, "print the answer key")
	pdf := fs.String("pdf", "", "write a PDF to this path instead of opening the viewer")
	noOpen := fs.Bool("no-open", false, "only write the printable HTML file")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneArg(fs, "id")
	if err != nil {
		return err
	}
	p, err := c.state.Lesson(ctx, id)
	if err != nil {
		return err
	}
	job := export.LessonPrintJob(p, *key)
	var path string
	switch {
	case *pdf != "":
		path, err = *pdf, export.WriteWorksheetPDF(job, *pdf)
	case *noOpen:
		path, err = export.WritePrintFile(job, "")
	default:
		path, err = export.Print(job, "")
	}
	if err != nil {
		return err
	}
	telemetry.Event(telemetry.WorksheetPrinted, map[string]any{"source": "cli", "answerKey": *key})
	fmt.Fprintln(c.out, "Print file:", path)
	return nil
}

func (c *commandLine) export(ctx context.Context, args []string) error {
	fs := c.flags("export")
	preset := fs.String("preset", string(export.PresetClassroom), "classroom, digital or all")
	formats := fs.String("formats", "", "comma separated formats (print,pdf,png,epub); default per preset")
	out := fs.String("out", ".", "output directory")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneArg(fs, "id")
	if err != nil {
		return err
	}
	p, err := c.state.Lesson(ctx, id)
	if err != nil {
		return err
	}
	opt := export.BatchOptions{
		Preset: export.PresetName(*preset),
		OutDir: filepath.Join(*out, export.Slug(p.Topic)),
		PNG:    export.PNGOptions{Elements: true, Fonts: c.slideFonts()},
	}
	if *formats != "" {
		for _, f := range strings.Split(*formats, ",") {
			if f = strings.TrimSpace(f); f != "" {
				opt.Formats = append(opt.Formats, f)
			}
		}
	}
	files, err := export.BatchExport(p, opt)
	for _, f := range files {
		fmt.Fprintln(c.out, "Wrote", f)
	}
	if err != nil {
		return err
	}
	telemetry.Event(telemetry.ExportDone, map[string]any{"preset": *preset, "files": len(files)})
	return nil
}

func (c *commandLine) image(ctx context.Context, args []string) error {
	fs := c.flags("image")
	slide := fs.Int("slide", 1, "slide number")
	example := fs.Bool("example", false, "generate the practical example diagram")
	all := fs.Bool("all", false, "generate every missing slide image")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneArg(fs, "id")
	if err != nil {
		return err
	}
	gen, err := c.generator()
	if err != nil {
		return err
	}
	p, err := c.state.Lesson(ctx, id)
	if err != nil {
		return err
	}
	deck := presentation.New(applog.WithLessonID(ctx, p.ID), p, gen, c.state)
	defer deck.Close()

	if *all {
		n, err := deck.GenerateAll(ctx, c.cfg.AI.MaxParallelImages)
		fmt.Fprintf(c.out, "Generated %d images\n", n)
		return c.warn(err)
	}
	if err := deck.GoTo(*slide - 1); err != nil {
		return err
	}
	target := presentation.TargetMain
	if *example {
		target = presentation.TargetExample
	}
	done := make(chan struct{}, 1)
	deck.OnChange(func() {
		select {
		case done <- struct{}{}:
		default:
		}
	})
	if err := deck.GenerateImage(target); err != nil {
		return err
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if deck.Status(*slide-1, target) != presentation.ImageReady {
		return errors.New(presentation.ImageFailedMessage)
	}
	if err := deck.TakeSaveError(); err != nil {
		return c.warn(err)
	}
	fmt.Fprintf(c.out, "Slide %d image saved\n", *slide)
	return nil
}
