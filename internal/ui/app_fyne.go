//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"mapleprep/internal/appstate"
	"mapleprep/internal/crash"
	"mapleprep/internal/domain"
	"mapleprep/internal/editor"
	"mapleprep/internal/export"
	"mapleprep/internal/librarypack"
	applog "mapleprep/internal/log"
	"mapleprep/internal/presentation"
	"mapleprep/internal/storage"
	"mapleprep/internal/telemetry"
	"mapleprep/internal/version"
	"mapleprep/internal/widgets"
)

var errNoImages = errors.New("image generation needs an API key (set MPP_API_KEY)")

// presenter holds the window state of the open lesson.
type presenter struct {
	ctx    context.Context
	opts   Options
	app    fyne.App
	win    fyne.Window
	log    *slog.Logger
	status *widget.Label

	lessons []domain.LessonPlan
	list    *widget.List
	deck    *presentation.Deck
	store   *editor.Store

	canvas     *SlideCanvas
	heading    *widget.Label
	imgStatus  *widget.Label
	design     *widget.Check
	worksheet  *widget.RichText
	activities *widget.Label
	quiz       *fyne.Container
	quizResult *widget.Label
}

// Run opens the presenter window and blocks until it is closed.
func Run(opts Options) error {
	if opts.State == nil {
		return errors.New("ui: no library state")
	}
	l := applog.WithComponent("ui")
	l.Info("starting UI")
	defer crash.Recover(opts.Crash)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fyneApp := app.NewWithID("ca.mapleprep.desktop")
	w := fyneApp.NewWindow("MaplePrep")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1280)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	p := &presenter{
		ctx:    ctx,
		opts:   opts,
		app:    fyneApp,
		win:    w,
		log:    l,
		status: widget.NewLabel("Ready"),
	}
	p.canvas = NewSlideCanvas(ctx)
	p.canvas.OnError = p.showError
	p.canvas.OnEdit = p.editElement
	p.canvas.OnChanged = func() { p.status.SetText(p.selectionText()) }

	w.SetContent(p.layout())
	w.SetMainMenu(p.menu())
	p.bindKeys()

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		p.closeDeck()
		w.Close()
	})

	p.reload()
	start := opts.LessonID
	if start == "" {
		if rec := knownRecent(loadRecentLessons(prefs), p.lessons); len(rec) > 0 {
			start = rec[0]
		}
	}
	if start != "" {
		if err := p.open(start); err != nil {
			l.Error("auto-open lesson failed", slog.Any("err", err))
		}
	}

	w.ShowAndRun()
	return nil
}

func (p *presenter) layout() fyne.CanvasObject {
	p.list = widget.NewList(
		func() int { return len(p.lessons) },
		func() fyne.CanvasObject { return widget.NewLabel("lesson") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id < len(p.lessons) {
				o.(*widget.Label).SetText(lessonRow(p.lessons[id]))
			}
		},
	)
	p.list.OnSelected = func(id widget.ListItemID) {
		if id < len(p.lessons) {
			if err := p.open(p.lessons[id].ID); err != nil {
				p.showError(err)
			}
		}
	}

	p.heading = widget.NewLabel(slideHeading(0, 0))
	p.imgStatus = widget.NewLabel("")
	p.design = widget.NewCheck("Design", func(on bool) {
		if p.deck != nil {
			p.deck.SetDesign(on)
			p.refresh()
		}
	})
	nav := container.NewHBox(
		widget.NewButton("◀ Prev", p.prev),
		p.heading,
		widget.NewButton("Next ▶", p.next),
		widget.NewButton("Fullscreen", p.toggleFullscreen),
		widget.NewSeparator(),
		widget.NewButton("Image", func() { p.generate(presentation.TargetMain) }),
		widget.NewButton("Example image", func() { p.generate(presentation.TargetExample) }),
		widget.NewButton("All images", p.generateAll),
		p.imgStatus,
	)
	tools := container.NewHBox(
		p.design,
		widget.NewButton("+ Text", func() { p.addElement(domain.KindText, "New text") }),
		widget.NewButton("+ Sticker", func() { p.addElement(domain.KindSticker, "⭐") }),
		widget.NewButton("+ Venn", func() { p.addElement(domain.KindChart, string(domain.ChartVenn)) }),
		widget.NewButton("+ T-chart", func() { p.addElement(domain.KindChart, string(domain.ChartT)) }),
		widget.NewButton("+ Link", func() { p.addElement(domain.KindLink, "Link") }),
		widget.NewButton("+ Video", func() { p.addElement(domain.KindVideo, "") }),
		widget.NewButton("Delete", p.deleteSelected),
	)
	slides := container.NewBorder(container.NewVBox(nav, tools), nil, nil, nil, p.canvas)

	p.worksheet = widget.NewRichTextFromMarkdown("")
	p.worksheet.Wrapping = fyne.TextWrapWord
	answerKey := widget.NewCheck("Answer key", func(on bool) {
		if p.deck != nil {
			p.deck.ShowAnswerKey(on)
		}
	})
	worksheet := container.NewBorder(
		container.NewHBox(answerKey, widget.NewButton("Print…", p.print)), nil, nil, nil,
		container.NewVScroll(p.worksheet))

	p.activities = widget.NewLabel("")
	p.activities.Wrapping = fyne.TextWrapWord

	p.quiz = container.NewVBox()
	p.quizResult = widget.NewLabel("")
	quiz := container.NewBorder(
		container.NewHBox(
			widget.NewButton("Submit", p.submitQuiz),
			widget.NewButton("Reset", func() {
				if p.deck != nil {
					p.deck.ResetQuiz()
					p.buildQuiz()
				}
			}),
			p.quizResult),
		nil, nil, nil, container.NewVScroll(p.quiz))

	tabs := container.NewAppTabs(
		container.NewTabItem("Slides", slides),
		container.NewTabItem("Worksheet", worksheet),
		container.NewTabItem("Activities", container.NewVScroll(p.activities)),
		container.NewTabItem("Quiz", quiz),
		container.NewTabItem("Tools", p.toolsPanel()),
	)
	tabIDs := []presentation.Tab{presentation.TabSlides, presentation.TabWorksheet, presentation.TabActivities, presentation.TabQuiz}
	tabs.OnSelected = func(ti *container.TabItem) {
		if p.deck == nil {
			return
		}
		if i := tabs.SelectedIndex(); i < len(tabIDs) {
			p.deck.SetTab(tabIDs[i])
			p.refresh()
		}
	}

	split := container.NewHSplit(p.list, tabs)
	split.Offset = 0.22
	return container.NewBorder(nil, p.status, nil, nil, split)
}

// toolsPanel holds the classroom widgets: stopwatch, countdown and the
// random name picker.
func (p *presenter) toolsPanel() fyne.CanvasObject {
	swLabel := widget.NewLabel(widgets.FormatStopwatch(0))
	sw := widgets.NewStopwatch(nil, func(d time.Duration) {
		txt := widgets.FormatStopwatch(d)
		fyne.Do(func() { swLabel.SetText(txt) })
	})

	cdLabel := widget.NewLabel(widgets.FormatCountdown(widgets.DefaultCountdown))
	var cd *widgets.Countdown
	cd = widgets.NewCountdown(nil, func(d time.Duration) {
		txt := widgets.FormatCountdown(d)
		fyne.Do(func() { cdLabel.SetText(txt) })
	}, func() {
		fyne.Do(func() {
			dialog.ShowInformation("Timer", "Time's up!", p.win)
			cd.DismissAlert()
		})
	})
	minutes := widget.NewEntry()
	minutes.SetPlaceHolder("minutes")

	pick := widget.NewLabel("")
	picker := widgets.NewPicker(nil, nil)
	spin := func() {
		grade := widgets.AllGrades
		if p.deck != nil {
			grade = p.deck.Plan().GradeLevel
		}
		names, err := widgets.ClassNames(p.opts.State.Students(p.ctx), grade)
		if err != nil {
			p.showError(err)
			return
		}
		go func() {
			_, err := picker.Spin(p.ctx, names, func(n string) {
				fyne.Do(func() { pick.SetText(n) })
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				fyne.Do(func() { p.showError(err) })
			}
		}()
	}

	return container.NewVBox(
		widget.NewLabelWithStyle("Stopwatch", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(swLabel,
			widget.NewButton("Start", sw.Start),
			widget.NewButton("Stop", sw.Stop),
			widget.NewButton("Reset", func() { sw.Reset(); swLabel.SetText(widgets.FormatStopwatch(0)) })),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Countdown", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(cdLabel, minutes,
			widget.NewButton("Set", func() {
				m, err := strconv.Atoi(strings.TrimSpace(minutes.Text))
				if err != nil || m <= 0 {
					p.showError(fmt.Errorf("invalid minutes %q", minutes.Text))
					return
				}
				cd.Set(time.Duration(m) * time.Minute)
				cdLabel.SetText(widgets.FormatCountdown(cd.Remaining()))
			}),
			widget.NewButton("Start", cd.Start),
			widget.NewButton("Stop", cd.Stop)),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Name picker", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewButton("Pick a student", spin), pick),
	)
}

func (p *presenter) menu() *fyne.MainMenu {
	w := p.win
	searchItem := fyne.NewMenuItem("Search…", p.search)
	rebuildIndexItem := fyne.NewMenuItem("Rebuild Index", func() {
		p.status.SetText("Rebuilding index…")
		go func() {
			err := p.opts.State.Reindex(p.ctx)
			fyne.Do(func() {
				if err != nil {
					p.log.Error("rebuild index failed", slog.Any("err", err))
					dialog.ShowError(err, w)
					p.status.SetText("Rebuild failed.")
					return
				}
				p.status.SetText("Index rebuilt.")
			})
		}()
	})
	deleteLessonItem := fyne.NewMenuItem("Delete Lesson…", func() {
		if p.deck == nil {
			return
		}
		plan := p.deck.Plan()
		dialog.ShowConfirm("Delete lesson", fmt.Sprintf("Delete %q?", plan.Topic), func(ok bool) {
			if !ok {
				return
			}
			if err := p.opts.State.DeleteLesson(p.ctx, plan.ID); err != nil && !p.warn(err) {
				return
			}
			p.closeDeck()
			p.reload()
			p.refresh()
		}, w)
	})
	importPackItem := fyne.NewMenuItem("Import Library Pack…", func() {
		open := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			path := rc.URI().Path()
			_ = rc.Close()
			n, err := librarypack.Import(p.ctx, p.opts.State, path, librarypack.ImportOptions{})
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			p.reload()
			dialog.ShowInformation("Import", fmt.Sprintf("Imported %d tables.", n), w)
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		open.Show()
	})
	exportPackItem := fyne.NewMenuItem("Export Library Pack…", func() {
		p.saveAs("mapleprep-library.zip", ".zip", func(path string) error {
			_, err := librarypack.Export(p.ctx, p.opts.State, path)
			return err
		})
	})
	fileMenu := fyne.NewMenu("File", searchItem, rebuildIndexItem, fyne.NewMenuItemSeparator(),
		deleteLessonItem, fyne.NewMenuItemSeparator(), importPackItem, exportPackItem)

	undoItem := fyne.NewMenuItem("Undo", p.undo)
	redoItem := fyne.NewMenuItem("Redo", p.redo)
	deleteItem := fyne.NewMenuItem("Delete Element", p.deleteSelected)
	editMenu := fyne.NewMenu("Edit", undoItem, redoItem, deleteItem)

	exportPDFItem := fyne.NewMenuItem("Worksheet as PDF…", func() {
		if p.deck == nil {
			return
		}
		p.saveAs(export.Slug(p.deck.Plan().Topic)+".pdf", ".pdf", func(path string) error {
			return export.WriteWorksheetPDF(p.deck.PrintJob(), path)
		})
	})
	exportEPUBItem := fyne.NewMenuItem("Lesson as EPUB…", func() {
		if p.deck == nil {
			return
		}
		plan := p.deck.Plan()
		p.saveAs(export.Slug(plan.Topic)+".epub", ".epub", func(path string) error {
			return export.ExportLessonEPUB(plan, path, export.EPUBOptions{IncludeQuiz: true})
		})
	})
	exportPNGItem := fyne.NewMenuItem("Slides as PNG…", func() {
		if p.deck == nil {
			return
		}
		plan := p.deck.Plan()
		dialog.ShowFolderOpen(func(lu fyne.ListableURI, err error) {
			if err != nil || lu == nil {
				return
			}
			files, err := export.ExportSlidePNGs(plan, lu.Path(), export.PNGOptions{Elements: true, Fonts: p.opts.SlideFonts})
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			telemetry.Event(telemetry.ExportDone, map[string]any{"format": "png", "files": len(files)})
			dialog.ShowInformation("Export", fmt.Sprintf("Wrote %d slides.", len(files)), w)
		}, w)
	})
	exportMenu := fyne.NewMenu("Export", exportPDFItem, exportEPUBItem, exportPNGItem)

	aboutItem := fyne.NewMenuItem("About MaplePrep", func() {
		exe, _ := os.Executable()
		info := fmt.Sprintf("MaplePrep\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nExecutable: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), exe)
		dialog.ShowInformation("About", info, w)
	})
	aboutMenu := fyne.NewMenu("About", aboutItem)

	return fyne.NewMainMenu(fileMenu, editMenu, exportMenu, aboutMenu)
}

func (p *presenter) bindKeys() {
	c := p.win.Canvas()
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if p.deck == nil {
			return
		}
		key := map[fyne.KeyName]string{
			fyne.KeyRight:  "ArrowRight",
			fyne.KeyLeft:   "ArrowLeft",
			fyne.KeySpace:  " ",
			fyne.KeyReturn: "Enter",
			fyne.KeyEscape: "Escape",
		}[ev.Name]
		if key == "" {
			return
		}
		wasFull := p.deck.Fullscreen()
		if p.deck.Key(key) {
			if wasFull && !p.deck.Fullscreen() {
				p.win.SetFullScreen(false)
			}
			p.syncSlide()
		}
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { p.undo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { p.redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyF, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { p.search() })
}

func (p *presenter) reload() {
	p.lessons = p.opts.State.Lessons(p.ctx)
	if p.list != nil {
		p.list.Refresh()
	}
}

func (p *presenter) closeDeck() {
	if p.deck != nil {
		p.deck.Close()
		p.deck, p.store = nil, nil
	}
}

// open presents lesson id from slide one.
func (p *presenter) open(id string) error {
	plan, err := p.opts.State.Lesson(p.ctx, id)
	if err != nil {
		return err
	}
	p.closeDeck()
	p.deck = presentation.New(p.ctx, plan, p.opts.Images, p.opts.State)
	deck := p.deck
	deck.OnChange(func() {
		fyne.Do(func() {
			p.refresh()
			if err := deck.TakeSaveError(); err != nil {
				p.warn(err)
			}
		})
	})
	p.deck.SetDesign(p.design.Checked)
	p.store = p.deck.Editor(editor.WithUndo(editorUndo()), editor.WithSnap(editorSnap()))
	saveRecentLessons(p.app.Preferences(), pushRecent(loadRecentLessons(p.app.Preferences()), id))
	p.win.SetTitle("MaplePrep: " + plan.Topic)
	p.worksheet.ParseMarkdown(plan.WorksheetMarkdown)
	p.activities.SetText(activityText(plan.Activities))
	p.buildQuiz()
	p.refresh()
	p.status.SetText("Opened " + plan.Topic)
	return nil
}

func activityText(as []domain.Activity) string {
	var b strings.Builder
	for _, a := range as {
		fmt.Fprintf(&b, "%s (%s)\n%s\n", a.Title, a.Duration, a.Description)
		if len(a.Materials) > 0 {
			fmt.Fprintf(&b, "Materials: %s\n", strings.Join(a.Materials, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (p *presenter) buildQuiz() {
	p.quiz.RemoveAll()
	p.quizResult.SetText("")
	if p.deck == nil {
		return
	}
	for i, q := range p.deck.Plan().Quiz {
		p.quiz.Add(widget.NewLabelWithStyle(fmt.Sprintf("%d. %s", i+1, q.Question), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		p.quiz.Add(widget.NewRadioGroup(q.Options, func(opt string) {
			if err := p.deck.AnswerQuiz(i, opt); err != nil {
				p.status.SetText(err.Error())
			}
		}))
	}
}

func (p *presenter) submitQuiz() {
	if p.deck == nil {
		return
	}
	score, total := p.deck.SubmitQuiz()
	p.quizResult.SetText(fmt.Sprintf("Score: %d / %d", score, total))
}

// refresh redraws the slide view from the deck.
func (p *presenter) refresh() {
	if p.deck == nil {
		p.canvas.Show(domain.Slide{}, nil, false)
		p.heading.SetText(slideHeading(0, 0))
		p.imgStatus.SetText("")
		return
	}
	plan := p.deck.Plan()
	i := p.deck.Index()
	p.canvas.Show(p.deck.Slide(), p.store, p.deck.Designing())
	p.heading.SetText(slideHeading(i, len(plan.Slides)))
	txt := imageStatusText(p.deck.Status(i, presentation.TargetMain))
	if ex := imageStatusText(p.deck.Status(i, presentation.TargetExample)); ex != "" {
		txt = strings.TrimSpace(txt + " " + ex)
	}
	p.imgStatus.SetText(txt)
}

// syncSlide moves the element store to the deck's slide.
func (p *presenter) syncSlide() {
	if p.store != nil {
		if err := p.store.SetSlide(p.ctx, p.deck.Index()); err != nil {
			p.showError(err)
		}
	}
	p.refresh()
}

func (p *presenter) next() {
	if p.deck != nil {
		p.deck.Next()
		p.syncSlide()
	}
}

func (p *presenter) prev() {
	if p.deck != nil {
		p.deck.Prev()
		p.syncSlide()
	}
}

func (p *presenter) toggleFullscreen() {
	if p.deck == nil {
		return
	}
	on := !p.deck.Fullscreen()
	p.deck.SetFullscreen(on)
	p.win.SetFullScreen(on)
	p.refresh()
}

func (p *presenter) generate(t presentation.Target) {
	if p.deck == nil {
		return
	}
	if p.opts.Images == nil {
		p.showError(errNoImages)
		return
	}
	if err := p.deck.GenerateImage(t); err != nil {
		p.showError(err)
		return
	}
	p.refresh()
}

func (p *presenter) generateAll() {
	if p.deck == nil {
		return
	}
	if p.opts.Images == nil {
		p.showError(errNoImages)
		return
	}
	deck := p.deck
	p.status.SetText("Generating images…")
	go func() {
		n, err := deck.GenerateAll(p.ctx, p.opts.MaxParallelImages)
		fyne.Do(func() {
			if err != nil {
				p.log.Warn("some images failed", slog.Any("err", err))
				p.status.SetText(fmt.Sprintf("%d images generated, some failed: %v", n, err))
				return
			}
			p.status.SetText(fmt.Sprintf("%d images generated", n))
		})
	}()
}

func (p *presenter) addElement(kind domain.ElementKind, initial string) {
	if p.store == nil || !p.deck.Designing() {
		p.status.SetText("Turn on Design on the slides tab to add elements.")
		return
	}
	if _, err := p.store.AddElement(p.ctx, kind, initial, ""); err != nil && !p.warn(err) {
		return
	}
	if p.store.PendingURL() != "" {
		p.askURL()
	}
	p.refresh()
}

// askURL asks for the address of a new link or video element.
func (p *presenter) askURL() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://")
	dialog.ShowForm("Element URL", "Add", "Cancel", []*widget.FormItem{widget.NewFormItem("URL", entry)}, func(ok bool) {
		if !ok {
			p.store.CancelURL()
			p.refresh()
			return
		}
		if err := p.store.SubmitURL(p.ctx, entry.Text); err != nil && !p.warn(err) {
			p.askURL()
			return
		}
		p.refresh()
	}, p.win)
}

func (p *presenter) editElement(id string) {
	e, ok := p.store.Element(id)
	if !ok {
		return
	}
	if !p.deck.Designing() {
		if u := elementURL(e); u != "" {
			if parsed, err := url.Parse(u); err == nil {
				_ = p.app.OpenURL(parsed)
			}
		}
		return
	}
	if err := p.store.BeginEdit(p.ctx, id); err != nil {
		p.showError(err)
		return
	}
	entry := widget.NewMultiLineEntry()
	entry.SetText(e.Content())
	dialog.ShowForm("Edit element", "Save", "Cancel", []*widget.FormItem{widget.NewFormItem("Content", entry)}, func(ok bool) {
		if ok {
			if err := p.store.UpdateElementContent(id, entry.Text); err != nil {
				p.showError(err)
			}
		}
		if err := p.store.CommitEdit(p.ctx); err != nil {
			p.warn(err)
		}
		p.refresh()
	}, p.win)
}

func elementURL(e domain.Element) string {
	switch b := e.Body.(type) {
	case domain.LinkBody:
		return b.URL
	case domain.VideoBody:
		if embed := b.EmbedURL(); embed != "" {
			return embed
		}
		return b.URL
	}
	return ""
}

func (p *presenter) deleteSelected() {
	if p.store == nil {
		return
	}
	id, _ := p.store.Selection()
	if id == "" {
		return
	}
	if err := p.store.DeleteElement(p.ctx, id); err != nil {
		p.warn(err)
	}
	p.refresh()
}

func (p *presenter) undo() {
	if p.store == nil {
		return
	}
	if err := p.store.Undo(p.ctx); err != nil {
		p.status.SetText(err.Error())
	}
	p.refresh()
}

func (p *presenter) redo() {
	if p.store == nil {
		return
	}
	if err := p.store.Redo(p.ctx); err != nil {
		p.status.SetText(err.Error())
	}
	p.refresh()
}

func (p *presenter) print() {
	if p.deck == nil {
		return
	}
	dir := filepath.Join(os.TempDir(), "mapleprep-print")
	path, err := export.Print(p.deck.PrintJob(), dir)
	if err != nil {
		p.showError(err)
		return
	}
	telemetry.Event(telemetry.WorksheetPrinted, map[string]any{"source": "ui"})
	p.status.SetText("Print file: " + path)
}

func (p *presenter) search() {
	q := widget.NewEntry()
	q.SetPlaceHolder("Search terms")
	dialog.ShowForm("Search lessons", "Search", "Cancel", []*widget.FormItem{widget.NewFormItem("Query", q)}, func(ok bool) {
		if !ok {
			return
		}
		res, err := p.opts.State.SearchLessons(p.ctx, storage.SearchQuery{Text: q.Text, Limit: 50})
		if err != nil {
			p.showError(err)
			return
		}
		p.status.SetText(fmt.Sprintf("%d results", len(res)))
		if len(res) == 0 {
			return
		}
		items := make([]string, len(res))
		for i, r := range res {
			items[i] = fmt.Sprintf("%s · %s · %s", r.Topic, r.Grade, r.Subject)
		}
		sel := widget.NewSelect(items, nil)
		dialog.ShowForm("Results", "Open", "Close", []*widget.FormItem{widget.NewFormItem("Lesson", sel)}, func(ok bool) {
			if !ok || sel.SelectedIndex() < 0 {
				return
			}
			if err := p.open(res[sel.SelectedIndex()].ID); err != nil {
				p.showError(err)
			}
		}, p.win)
	}, p.win)
}

// saveAs asks for a target file and runs write with its path.
func (p *presenter) saveAs(name, ext string, write func(path string) error) {
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, p.win)
			return
		}
		if uc == nil {
			return
		}
		outPath := uc.URI().Path()
		_ = uc.Close()
		if err := write(outPath); err != nil {
			dialog.ShowError(err, p.win)
			return
		}
		telemetry.Event(telemetry.ExportDone, map[string]any{"format": strings.TrimPrefix(ext, ".")})
		dialog.ShowInformation("Export", "Exported to "+outPath, p.win)
	}, p.win)
	save.SetFileName(name)
	save.SetFilter(fstorage.NewExtensionFileFilter([]string{ext}))
	save.Show()
}

func (p *presenter) selectionText() string {
	if p.store == nil {
		return "Ready"
	}
	id, mode := p.store.Selection()
	if id == "" {
		return "Ready"
	}
	e, _ := p.store.Element(id)
	return fmt.Sprintf("%s %s (%s)", mode, e.Kind(), elementLabel(e))
}

// warn shows storage warnings in the status bar and reports whether err
// was only a warning.
func (p *presenter) warn(err error) bool {
	if appstate.IsWarning(err) {
		p.status.SetText(err.Error())
		return true
	}
	p.showError(err)
	return false
}

func (p *presenter) showError(err error) {
	if err == nil {
		return
	}
	p.log.Warn("ui error", slog.Any("err", err))
	dialog.ShowError(err, p.win)
}

const recentPrefsKey = "recent.lessons"

func loadRecentLessons(prefs fyne.Preferences) []string {
	raw := prefs.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		_ = json.Unmarshal([]byte(raw), &items)
	}
	return items
}

func saveRecentLessons(prefs fyne.Preferences, items []string) {
	b, _ := json.Marshal(items)
	prefs.SetString(recentPrefsKey, string(b))
}
