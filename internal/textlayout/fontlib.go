/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

var ErrNoRegularFont = errors.New("a regular font is required when a bold font is set")

// SlideFonts renders exported slides in a TTF or OTF typeface. Titles ask
// for bold and get the Bold face when one is loaded, the Regular face
// otherwise. FontSpec.Family is ignored since a slide uses one typeface.
type SlideFonts struct {
	Regular *opentype.Font
	Bold    *opentype.Font
	DPI     float64 // 72 when zero
}

// LoadSlideFonts reads the typeface files named in the export config. With
// no regular path it returns BasicProvider.
func LoadSlideFonts(regularPath, boldPath string) (Provider, error) {
	regularPath, boldPath = strings.TrimSpace(regularPath), strings.TrimSpace(boldPath)
	if regularPath == "" {
		if boldPath != "" {
			return BasicProvider{}, ErrNoRegularFont
		}
		return BasicProvider{}, nil
	}
	regular, err := os.ReadFile(regularPath)
	if err != nil {
		return BasicProvider{}, fmt.Errorf("read font %s: %w", regularPath, err)
	}
	var bold []byte
	if boldPath != "" {
		if bold, err = os.ReadFile(boldPath); err != nil {
			return BasicProvider{}, fmt.Errorf("read font %s: %w", boldPath, err)
		}
	}
	sf, err := ParseSlideFonts(regular, bold)
	if err != nil {
		return BasicProvider{}, err
	}
	return sf, nil
}

// ParseSlideFonts parses font data; bold may be nil.
func ParseSlideFonts(regular, bold []byte) (*SlideFonts, error) {
	r, err := opentype.Parse(regular)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	sf := &SlideFonts{Regular: r}
	if len(bold) > 0 {
		if sf.Bold, err = opentype.Parse(bold); err != nil {
			return nil, fmt.Errorf("parse bold font: %w", err)
		}
	}
	return sf, nil
}

// Resolve builds a fresh face per call; opentype faces are not safe for
// concurrent use.
func (sf *SlideFonts) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	dpi := sf.DPI
	if dpi <= 0 {
		dpi = 72
	}
	f := sf.Regular
	if spec.Bold && sf.Bold != nil {
		f = sf.Bold
	}
	if f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.SizePt, DPI: dpi, Hinting: font.HintingFull})
		if err == nil {
			return face, metricsOf(face)
		}
	}
	return BasicProvider{}.Resolve(spec)
}
