/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	// Generated images arrive as PNG or JPEG.
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"

	"mapleprep/internal/domain"
	"mapleprep/internal/geom"
	"mapleprep/internal/textlayout"
)

// PNGOptions controls slide thumbnail rendering. Zero values get defaults.
type PNGOptions struct {
	Width, Height int // 960x540 by default
	Fonts         textlayout.Provider
	// Elements draws custom element markers at their slide positions.
	Elements bool
}

func (o PNGOptions) withDefaults() PNGOptions {
	if o.Width <= 0 {
		o.Width = 960
	}
	if o.Height <= 0 {
		o.Height = o.Width * 9 / 16
	}
	if o.Fonts == nil {
		o.Fonts = textlayout.BasicProvider{}
	}
	return o
}

var (
	pngBackground  = color.RGBA{255, 255, 255, 255}
	pngTitleBar    = color.RGBA{30, 41, 59, 255}
	pngText        = color.RGBA{30, 41, 59, 255}
	pngPlaceholder = color.RGBA{241, 245, 249, 255}
	pngMarker      = color.RGBA{37, 99, 235, 255}
)

// SlidePNG renders a slide thumbnail: title bar, wrapped bullets on the
// left, the generated image (or a placeholder) on the right.
func SlidePNG(s domain.Slide, opt PNGOptions) (*image.RGBA, error) {
	opt = opt.withDefaults()
	w, h := opt.Width, opt.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(img, 0, 0, w-1, h-1, pngBackground)

	pad := w / 32
	barH := h / 7
	fillRect(img, 0, 0, w-1, barH, pngTitleBar)
	titleSpec := textlayout.FontSpec{SizePt: 24, Bold: true}
	textlayout.Draw(img, opt.Fonts, titleSpec, textlayout.Wrap(opt.Fonts, titleSpec, s.Title, w-2*pad)[:1], pad, barH/3, color.White)

	colW := w/2 - pad
	y := barH + pad
	body := textlayout.FontSpec{SizePt: 14}
	for _, bp := range s.BulletPoints {
		lines := textlayout.Wrap(opt.Fonts, body, "• "+bp, colW)
		y = textlayout.Draw(img, opt.Fonts, body, lines, pad, y, pngText) + pad/3
		if y > h-pad {
			break
		}
	}

	box := image.Rect(w/2+pad/2, barH+pad, w-pad, h-pad)
	var err error
	if s.Base64Image != "" {
		var src image.Image
		src, err = DecodeImage(s.Base64Image)
		if err == nil {
			xdraw.CatmullRom.Scale(img, fit(src.Bounds(), box), src, src.Bounds(), xdraw.Over, nil)
		}
	}
	if s.Base64Image == "" || err != nil {
		fillRect(img, box.Min.X, box.Min.Y, box.Max.X-1, box.Max.Y-1, pngPlaceholder)
		strokeRect(img, box.Min.X, box.Min.Y, box.Max.X-1, box.Max.Y-1, pngText)
		lines := textlayout.Wrap(opt.Fonts, body, s.ImageDescription, box.Dx()-pad)
		textlayout.Draw(img, opt.Fonts, body, lines, box.Min.X+pad/2, box.Min.Y+pad/2, pngText)
	}

	if opt.Elements {
		size := geom.Size{W: float64(w), H: float64(h)}
		for _, e := range s.CustomElements {
			p := geom.ToPixel(geom.Percent{X: e.X, Y: e.Y}, size)
			x, y := int(p.X), int(p.Y)
			strokeRect(img, x, y, x+12, y+12, pngMarker)
			if e.Kind() == domain.KindText {
				textlayout.Draw(img, opt.Fonts, body, []string{e.Content()}, x+16, y, pngMarker)
			}
		}
	}
	if err != nil {
		return img, fmt.Errorf("decode slide image: %w", err)
	}
	return img, nil
}

// fit returns the largest rect with src's aspect ratio centred in box.
func fit(src, box image.Rectangle) image.Rectangle {
	if src.Dx() == 0 || src.Dy() == 0 {
		return box
	}
	scale := float64(box.Dx()) / float64(src.Dx())
	if s := float64(box.Dy()) / float64(src.Dy()); s < scale {
		scale = s
	}
	dw, dh := int(float64(src.Dx())*scale), int(float64(src.Dy())*scale)
	x := box.Min.X + (box.Dx()-dw)/2
	y := box.Min.Y + (box.Dy()-dh)/2
	return image.Rect(x, y, x+dw, y+dh)
}

// DecodeImage accepts raw base64 or a data URI.
func DecodeImage(b64 string) (image.Image, error) {
	if _, after, ok := strings.Cut(b64, ","); ok && strings.HasPrefix(b64, "data:") {
		b64 = after
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	return img, err
}

// EncodePNG returns the PNG bytes of img.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportSlidePNGs writes slide-<n>.png for every slide of the lesson into
// outDir. An undecodable slide image is drawn as a placeholder and does not
// stop the export.
func ExportSlidePNGs(p domain.LessonPlan, outDir string, opt PNGOptions) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var paths []string
	for i, s := range p.Slides {
		img, _ := SlidePNG(s, opt)
		data, err := EncodePNG(img)
		if err != nil {
			return paths, err
		}
		name := filepath.Join(outDir, fmt.Sprintf("slide-%d.png", i+1))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return paths, fmt.Errorf("write png: %w", err)
		}
		paths = append(paths, name)
	}
	return paths, nil
}

// strokeRect draws a 1px rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
