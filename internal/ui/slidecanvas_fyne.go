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
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"mapleprep/internal/domain"
	"mapleprep/internal/editor"
	"mapleprep/internal/export"
	"mapleprep/internal/geom"
)

// SlideCanvas draws one slide with its custom elements on top. In design
// mode elements can be selected and dragged; positions go through the
// editor store, which snaps and persists them.
type SlideCanvas struct {
	widget.BaseWidget

	ctx    context.Context
	slide  domain.Slide
	store  *editor.Store
	design bool

	// Drag state; dragging is set between the first Dragged and DragEnd.
	dragging bool
	guides   []geom.Guide

	OnError   func(error)
	OnChanged func()
	// OnEdit is called on a double tap on an element.
	OnEdit func(id string)
}

func NewSlideCanvas(ctx context.Context) *SlideCanvas {
	sc := &SlideCanvas{ctx: ctx}
	sc.ExtendBaseWidget(sc)
	return sc
}

// Show replaces the slide and the element store behind the canvas.
func (s *SlideCanvas) Show(slide domain.Slide, store *editor.Store, design bool) {
	s.slide, s.store, s.design = slide, store, design
	s.dragging, s.guides = false, nil
	s.Refresh()
}

func (s *SlideCanvas) elements() []domain.Element {
	if s.store == nil {
		return s.slide.CustomElements
	}
	return s.store.Elements()
}

func (s *SlideCanvas) slideRect() geom.Rect {
	sz := s.Size()
	return slideRect(float64(sz.Width), float64(sz.Height))
}

func (s *SlideCanvas) fail(err error) {
	if err != nil && s.OnError != nil {
		s.OnError(err)
	}
}

func (s *SlideCanvas) changed() {
	if s.OnChanged != nil {
		s.OnChanged()
	}
}

func pointOf(p fyne.Position) geom.Point { return geom.Point{X: float64(p.X), Y: float64(p.Y)} }

// Tapped selects the element under the pointer, or clears the selection.
func (s *SlideCanvas) Tapped(e *fyne.PointEvent) {
	if !s.design || s.store == nil {
		return
	}
	id := hitElement(s.elements(), pointOf(e.Position), s.slideRect())
	if id == "" {
		s.fail(s.store.Deselect(s.ctx))
	} else {
		s.fail(s.store.Select(s.ctx, id))
	}
	s.Refresh()
	s.changed()
}

func (s *SlideCanvas) DoubleTapped(e *fyne.PointEvent) {
	if s.store == nil || s.OnEdit == nil {
		return
	}
	if id := hitElement(s.elements(), pointOf(e.Position), s.slideRect()); id != "" {
		s.OnEdit(id)
	}
}

func (s *SlideCanvas) Dragged(e *fyne.DragEvent) {
	if !s.design || s.store == nil {
		return
	}
	rect := s.slideRect()
	if !s.dragging {
		start := fyne.NewPos(e.Position.X-e.Dragged.DX, e.Position.Y-e.Dragged.DY)
		id := hitElement(s.elements(), pointOf(start), rect)
		if id == "" {
			return
		}
		if err := s.store.BeginDrag(s.ctx, id, pointOf(start), rect); err != nil {
			s.fail(err)
			return
		}
		s.dragging = true
	}
	_, guides, err := s.store.DragMove(pointOf(e.Position), rect)
	if err != nil {
		s.fail(err)
		return
	}
	s.guides = guides
	s.Refresh()
}

func (s *SlideCanvas) DragEnd() {
	if !s.dragging {
		return
	}
	s.dragging, s.guides = false, nil
	s.fail(s.store.EndDrag(s.ctx))
	s.Refresh()
	s.changed()
}

func (s *SlideCanvas) MinSize() fyne.Size { return fyne.NewSize(480, 270) }

func (s *SlideCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.NRGBA{R: 30, G: 30, B: 34, A: 255})
	page := canvas.NewRectangle(color.White)
	page.StrokeColor = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
	page.StrokeWidth = 1
	title := canvas.NewText("", defaultInk)
	title.TextSize = 28
	title.TextStyle = fyne.TextStyle{Bold: true}
	bullets := widget.NewLabel("")
	bullets.Wrapping = fyne.TextWrapWord
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	r := &slideCanvasRenderer{sc: s, bg: bg, page: page, title: title, bullets: bullets, img: img}
	r.build()
	return r
}

type slideCanvasRenderer struct {
	sc      *SlideCanvas
	bg      *canvas.Rectangle
	page    *canvas.Rectangle
	title   *canvas.Text
	bullets *widget.Label
	img     *canvas.Image
	imgSrc  string

	elems   []elementView
	guides  []*canvas.Line
	objects []fyne.CanvasObject
}

type elementView struct {
	id    string
	box   *canvas.Rectangle
	label *canvas.Text
}

// build recreates the element and guide objects from the widget state.
func (r *slideCanvasRenderer) build() {
	s := r.sc
	r.title.Text = s.slide.Title
	r.bullets.SetText(bulletText(s.slide))
	if s.slide.Base64Image != r.imgSrc {
		r.imgSrc = s.slide.Base64Image
		r.img.Image = nil
		if r.imgSrc != "" {
			if im, err := export.DecodeImage(r.imgSrc); err == nil {
				r.img.Image = im
			}
		}
		r.img.Refresh()
	}

	selected := ""
	if s.store != nil {
		selected, _ = s.store.Selection()
	}
	r.elems = r.elems[:0]
	for _, e := range s.elements() {
		box := canvas.NewRectangle(color.NRGBA{R: 255, G: 255, B: 255, A: 200})
		if s.design {
			box.StrokeWidth = 1
			box.StrokeColor = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
		}
		if e.ID == selected {
			box.StrokeWidth = 2
			box.StrokeColor = color.NRGBA{R: 0, G: 170, B: 255, A: 255}
		}
		lbl := canvas.NewText(elementLabel(e), parseColor(e.Color))
		lbl.TextSize = float32(16 * max(e.Scale, 0.25))
		r.elems = append(r.elems, elementView{id: e.ID, box: box, label: lbl})
	}
	r.guides = r.guides[:0]
	for range s.guides {
		ln := canvas.NewLine(color.NRGBA{R: 255, G: 0, B: 128, A: 200})
		ln.StrokeWidth = 1
		r.guides = append(r.guides, ln)
	}

	r.objects = []fyne.CanvasObject{r.bg, r.page, r.title, r.bullets, r.img}
	for _, v := range r.elems {
		r.objects = append(r.objects, v.box, v.label)
	}
	for _, g := range r.guides {
		r.objects = append(r.objects, g)
	}
}

func (r *slideCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	rect := slideRect(float64(size.Width), float64(size.Height))
	x, y := float32(rect.X), float32(rect.Y)
	w, h := float32(rect.W), float32(rect.H)
	r.page.Move(fyne.NewPos(x, y))
	r.page.Resize(fyne.NewSize(w, h))

	pad := w * 0.04
	r.title.Move(fyne.NewPos(x+pad, y+pad))
	r.title.Resize(fyne.NewSize(w-2*pad, r.title.MinSize().Height))
	top := y + pad + r.title.MinSize().Height + pad/2
	textW := w - 2*pad
	if r.imgSrc != "" {
		textW = w*0.55 - pad
		r.img.Move(fyne.NewPos(x+w*0.58, top))
		r.img.Resize(fyne.NewSize(w*0.42-pad, h-(top-y)-pad))
		r.img.Show()
	} else {
		r.img.Hide()
	}
	r.bullets.Move(fyne.NewPos(x+pad, top))
	r.bullets.Resize(fyne.NewSize(textW, h-(top-y)-pad))

	elems := r.sc.elements()
	for i, v := range r.elems {
		if i >= len(elems) {
			break
		}
		b := elementBox(elems[i], rect)
		v.box.Move(fyne.NewPos(float32(b.X), float32(b.Y)))
		v.box.Resize(fyne.NewSize(float32(b.W), float32(b.H)))
		v.label.Move(fyne.NewPos(float32(b.X)+8, float32(b.Y)+4))
	}
	for i, g := range r.sc.guides {
		if i >= len(r.guides) {
			break
		}
		ln := r.guides[i]
		if g.Axis == geom.Vertical {
			gx := x + w*float32(g.Position/100)
			ln.Position1, ln.Position2 = fyne.NewPos(gx, y), fyne.NewPos(gx, y+h)
		} else {
			gy := y + h*float32(g.Position/100)
			ln.Position1, ln.Position2 = fyne.NewPos(x, gy), fyne.NewPos(x+w, gy)
		}
	}
}

func (r *slideCanvasRenderer) MinSize() fyne.Size           { return r.sc.MinSize() }
func (r *slideCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *slideCanvasRenderer) Destroy()                     {}

func (r *slideCanvasRenderer) Refresh() {
	r.build()
	r.Layout(r.sc.Size())
	canvas.Refresh(r.sc)
}
