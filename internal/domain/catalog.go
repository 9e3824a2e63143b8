/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"strings"
)

type GradeLevel string

const (
	Kindergarten GradeLevel = "Kindergarten"
	Grade1       GradeLevel = "Grade 1"
	Grade2       GradeLevel = "Grade 2"
	Grade3       GradeLevel = "Grade 3"
	Grade4       GradeLevel = "Grade 4"
	Grade5       GradeLevel = "Grade 5"
	Grade6       GradeLevel = "Grade 6"
	Grade7       GradeLevel = "Grade 7"
	Grade8       GradeLevel = "Grade 8"
)

// Grades lists the supported grades in school order.
var Grades = []GradeLevel{Kindergarten, Grade1, Grade2, Grade3, Grade4, Grade5, Grade6, Grade7, Grade8}

// ParseGrade accepts "Grade 3", "3", "g3", "K" or "Kindergarten".
func ParseGrade(s string) (GradeLevel, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(strings.TrimPrefix(v, "grade"), "g")
	v = strings.TrimSpace(v)
	if v == "k" || v == "kindergarten" {
		return Kindergarten, nil
	}
	for _, g := range Grades[1:] {
		if v == strings.TrimPrefix(string(g), "Grade ") {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown grade %q", s)
}

type Province string

const (
	Alberta                 Province = "Alberta"
	BritishColumbia         Province = "British Columbia"
	Manitoba                Province = "Manitoba"
	NewBrunswick            Province = "New Brunswick"
	NewfoundlandAndLabrador Province = "Newfoundland and Labrador"
	NovaScotia              Province = "Nova Scotia"
	Ontario                 Province = "Ontario"
	PrinceEdwardIsland      Province = "Prince Edward Island"
	Quebec                  Province = "Quebec"
	Saskatchewan            Province = "Saskatchewan"
	NorthwestTerritories    Province = "Northwest Territories"
	Nunavut                 Province = "Nunavut"
	Yukon                   Province = "Yukon"
)

var provinceCodes = map[string]Province{
	"AB": Alberta, "BC": BritishColumbia, "MB": Manitoba, "NB": NewBrunswick,
	"NL": NewfoundlandAndLabrador, "NS": NovaScotia, "ON": Ontario, "PE": PrinceEdwardIsland,
	"QC": Quebec, "SK": Saskatchewan, "NT": NorthwestTerritories, "NU": Nunavut, "YT": Yukon,
}

// Provinces lists provinces then territories.
var Provinces = []Province{
	Alberta, BritishColumbia, Manitoba, NewBrunswick, NewfoundlandAndLabrador, NovaScotia,
	Ontario, PrinceEdwardIsland, Quebec, Saskatchewan, NorthwestTerritories, Nunavut, Yukon,
}

// ParseProvince accepts a full name or a two letter postal code, case-insensitive.
func ParseProvince(s string) (Province, error) {
	v := strings.TrimSpace(s)
	if p, ok := provinceCodes[strings.ToUpper(v)]; ok {
		return p, nil
	}
	for _, p := range Provinces {
		if strings.EqualFold(v, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown province %q", s)
}

type Subject string

const (
	Mathematics   Subject = "Mathematics"
	ScienceTech   Subject = "Science & Tech"
	SocialStudies Subject = "Social Studies"
	Language      Subject = "Language / English"
	HealthPE      Subject = "Health & PE"
	Arts          Subject = "The Arts"
	French        Subject = "French / FSL"
	Music         Subject = "Music"
)

var Subjects = []Subject{Mathematics, ScienceTech, SocialStudies, Language, HealthPE, Arts, French, Music}

var subjectAliases = map[string]Subject{
	"math": Mathematics, "maths": Mathematics, "science": ScienceTech, "social": SocialStudies,
	"language": Language, "english": Language, "health": HealthPE, "pe": HealthPE, "gym": HealthPE,
	"arts": Arts, "art": Arts, "french": French, "fsl": French, "music": Music,
}

// ParseSubject accepts the display name or a short alias such as "math".
func ParseSubject(s string) (Subject, error) {
	v := strings.TrimSpace(s)
	for _, sub := range Subjects {
		if strings.EqualFold(v, string(sub)) {
			return sub, nil
		}
	}
	if sub, ok := subjectAliases[strings.ToLower(v)]; ok {
		return sub, nil
	}
	return "", fmt.Errorf("unknown subject %q", s)
}

// SampleTopics are offered on an empty lesson form.
var SampleTopics = []string{
	"The Water Cycle",
	"Indigenous History: The Fur Trade",
	"Introduction to Fractions",
	"Canadian Government System",
	"Habitats and Communities",
	"Simple Machines",
}

// SubjectTemplates are quick-pick topics per subject.
var SubjectTemplates = map[Subject][]string{
	Mathematics: {
		"Introduction to Fractions", "Telling Time: Analog & Digital", "Canadian Money: Coins & Bills",
		"Identifying Geometric Shapes", "Simple Addition & Subtraction", "Patterning Rules",
	},
	ScienceTech: {
		"Plant Life Cycle", "Animal Habitats & Adaptations", "Daily & Seasonal Weather",
		"States of Matter: Solids, Liquids, Gas", "Simple Machines", "Light and Sound",
	},
	SocialStudies: {
		"My Local Community", "Map of Canada: Provinces & Territories", "Canadian Government Basics",
		"Indigenous Peoples: Early Life", "Community Helpers", "Needs vs. Wants",
	},
	Language: {
		"Nouns, Verbs, and Adjectives", "Writing a Friendly Letter", "Story Elements: Character & Setting",
		"Reading Comprehension Strategies", "Persuasive Writing", "Synonyms and Antonyms",
	},
	HealthPE: {
		"Healthy Eating & Canada's Food Guide", "Personal Safety & Boundaries",
		"Mental Health: Identifying Emotions", "Active Living Strategies",
	},
	Arts: {
		"Primary and Secondary Colours", "Elements of Dance", "Famous Canadian Artists", "Rhythm and Beat",
	},
	French: {
		"Basic Greetings & Introductions", "Colors and Numbers (1-20)", "Ma Famille (My Family)",
		"Food & Drink Vocabulary", "Les Saisons (The Seasons)", "Conjugating Avoir & Etre",
	},
	Music: {
		"Rhythm and Beat Basics", "Instruments of the Orchestra", "Reading Treble Clef Notes",
		"Famous Composers", "Music Dynamics (Loud & Soft)", "Tempo Terms",
	},
}

// GenerationParams is the lesson form.
type GenerationParams struct {
	Topic      string     `json:"topic"`
	Grade      GradeLevel `json:"grade"`
	Province   Province   `json:"province"`
	Subject    Subject    `json:"subject"`
	SlideCount int        `json:"slideCount"`
}

// Slide count bounds offered by the lesson form.
const (
	MinSlides     = 3
	MaxSlides     = 20
	DefaultSlides = 8
)

// Validate checks the form before any remote call is made.
func (p GenerationParams) Validate() error {
	if strings.TrimSpace(p.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if _, err := ParseGrade(string(p.Grade)); err != nil {
		return err
	}
	if _, err := ParseProvince(string(p.Province)); err != nil {
		return err
	}
	if _, err := ParseSubject(string(p.Subject)); err != nil {
		return err
	}
	if p.SlideCount < MinSlides || p.SlideCount > MaxSlides {
		return fmt.Errorf("slide count %d outside %d..%d", p.SlideCount, MinSlides, MaxSlides)
	}
	return nil
}

// WorksheetStyle selects the layout instructions of a standalone worksheet.
type WorksheetStyle string

const (
	StyleStandard         WorksheetStyle = "standard"
	StyleVocabulary       WorksheetStyle = "vocabulary"
	StyleCriticalThinking WorksheetStyle = "critical_thinking"
	StyleMathDrill        WorksheetStyle = "math_drill"
)

// ParseWorksheetStyle maps unknown or empty input to standard.
func ParseWorksheetStyle(s string) WorksheetStyle {
	switch ws := WorksheetStyle(strings.ToLower(strings.TrimSpace(s))); ws {
	case StyleVocabulary, StyleCriticalThinking, StyleMathDrill:
		return ws
	}
	return StyleStandard
}

// GeneratedWorksheet is a standalone worksheet with its answer key.
type GeneratedWorksheet struct {
	Topic           string         `json:"topic"`
	Grade           string         `json:"grade,omitempty"`
	Subject         string         `json:"subject,omitempty"`
	Style           WorksheetStyle `json:"style"`
	StudentMarkdown string         `json:"studentMarkdown"`
	TeacherMarkdown string         `json:"teacherMarkdown"`
}

// ImageStyle selects the prompt preset for slide images.
type ImageStyle string

const (
	ImageDefault    ImageStyle = "default"
	ImageChalkboard ImageStyle = "chalkboard"
)
