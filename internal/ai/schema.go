/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ai

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// schema describes one response shape. It renders both as the Gemini
// responseSchema and as a JSON Schema used to check what came back.
type schema struct {
	Type        string
	Description string
	Properties  []prop
	Items       *schema
	MinItems    int
	MaxItems    int
	MinLength   int
}

type prop struct {
	Name     string
	Optional bool
	Schema   *schema
}

func str(desc string) *schema     { return &schema{Type: "string", Description: desc} }
func num(desc string) *schema     { return &schema{Type: "number", Description: desc} }
func integer(desc string) *schema { return &schema{Type: "integer", Description: desc} }
func boolean(desc string) *schema { return &schema{Type: "boolean", Description: desc} }

func array(desc string, items *schema) *schema {
	return &schema{Type: "array", Description: desc, Items: items}
}

func object(props ...prop) *schema { return &schema{Type: "object", Properties: props} }

func req(name string, s *schema) prop { return prop{Name: name, Schema: s} }
func opt(name string, s *schema) prop { return prop{Name: name, Schema: s, Optional: true} }

// gemini renders the OpenAPI subset accepted by generateContent.
func (s *schema) gemini() map[string]any {
	m := map[string]any{"type": strings.ToUpper(s.Type)}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if s.Items != nil {
		m["items"] = s.Items.gemini()
	}
	if s.MinItems > 0 {
		m["minItems"] = fmt.Sprint(s.MinItems)
	}
	if s.MaxItems > 0 {
		m["maxItems"] = fmt.Sprint(s.MaxItems)
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		var order, required []string
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.gemini()
			order = append(order, p.Name)
			if !p.Optional {
				required = append(required, p.Name)
			}
		}
		m["properties"] = props
		m["propertyOrdering"] = order
		if len(required) > 0 {
			m["required"] = required
		}
	}
	return m
}

// jsonSchema renders a draft-07 schema for gojsonschema.
func (s *schema) jsonSchema() map[string]any {
	m := map[string]any{"type": s.Type}
	if s.Items != nil {
		m["items"] = s.Items.jsonSchema()
	}
	if s.MinItems > 0 {
		m["minItems"] = s.MinItems
	}
	if s.MaxItems > 0 {
		m["maxItems"] = s.MaxItems
	}
	if s.MinLength > 0 {
		m["minLength"] = s.MinLength
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		var required []string
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.jsonSchema()
			if !p.Optional {
				required = append(required, p.Name)
			}
		}
		m["properties"] = props
		if len(required) > 0 {
			m["required"] = required
		}
	}
	return m
}

// validate checks doc against s and lists every violation.
func (s *schema) validate(doc []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(s.jsonSchema()), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
}

func nonEmpty(s *schema) *schema { s.MinLength = 1; return s }

func practicalExampleSchema() *schema {
	return object(
		req("problem", str("A specific problem or scenario to solve (e.g. 'If I have 3/4 of a pizza...')")),
		req("solutionSteps", array("Step-by-step breakdown of how to solve it (e.g. 'Step 1: Identify the denominator')", str(""))),
	)
}

func slideSchema() *schema {
	bullets := array("Key educational points for the slide (3-5 points)", str(""))
	bullets.MinItems = 1
	return object(
		req("title", nonEmpty(str("Title of the slide"))),
		req("bulletPoints", bullets),
		req("teacherNotes", str("Script or notes for the teacher to say")),
		req("suggestedActivity", str("A quick interaction, question, or mini-activity for students during this slide")),
		req("imageDescription", str("A highly detailed visual description prompt for an AI image generator. Describe the style (e.g. 'colorful flat vector illustration') and the content.")),
		// Checked after decoding; a missing example gets a placeholder.
		opt("practicalExample", practicalExampleSchema()),
	)
}

func lessonPlanSchema(slides int) *schema {
	slideList := array("", slideSchema())
	slideList.MinItems, slideList.MaxItems = slides, slides
	return object(
		req("topic", str("")),
		req("gradeLevel", str("")),
		req("province", str("")),
		req("subject", str("")),
		req("curriculumExpectations", str("Specific curriculum codes or standards addressed")),
		req("learningObjectives", array("", str(""))),
		req("slides", slideList),
		req("activities", array("", object(
			req("title", str("")),
			req("description", str("Instructions for the activity")),
			req("duration", str("Estimated time (e.g. '15 mins')")),
			req("materials", array("List of materials needed", str(""))),
		))),
		req("worksheetMarkdown", str("A complete markdown formatted worksheet for students")),
		req("answerSheetMarkdown", str("The teacher's answer key for the worksheet, also in Markdown")),
		req("quiz", array("", object(
			req("question", str("")),
			req("options", array("4 possible answers", str(""))),
			req("correctAnswer", str("The correct answer text, must match one of the options exactly")),
		))),
	)
}

func bananaSchema() *schema {
	return object(req("rounds", array("", object(
		req("target", num("")),
		req("targetDescription", str("Rule for the round, e.g. 'Factors of 10' or 'Sums to 10'")),
		req("bananas", array("", object(
			req("content", str("The equation or number on the banana, e.g. '5+5'")),
			req("value", num("The calculated value")),
			req("isCorrect", boolean("Does this match the target?")),
		))),
	))))
}

func sortingSchema() *schema {
	cats := array("Exactly 2 contrasting categories, e.g. 'Living' vs 'Non-Living' or 'Magnetic' vs 'Non-Magnetic'", str(""))
	cats.MinItems, cats.MaxItems = 2, 2
	return object(
		req("categories", cats),
		req("items", array("", object(
			req("id", str("")),
			req("text", str("")),
			req("categoryIndex", integer("0 or 1, corresponding to categories array")),
		))),
	)
}

func storySchema() *schema {
	return object(
		req("title", str("")),
		req("template", str("The story text. Use placeholders like {0}, {1}, {2} etc. for missing words.")),
		req("placeholders", array("", object(
			req("key", str("The placeholder key, e.g. {0}")),
			req("label", str("The type of word needed, e.g. 'Adjective' or 'Animal'")),
		))),
	)
}

func memorySchema() *schema {
	return object(req("pairs", array("", object(
		req("id", str("")),
		req("item1", str("First item (e.g. French word)")),
		req("item2", str("Matching item (e.g. English meaning)")),
	))))
}

func quizGameSchema() *schema {
	return object(req("questions", array("", object(
		req("id", str("")),
		req("text", str("")),
		req("options", array("", str(""))),
		req("correctAnswer", str("")),
		req("explanation", str("")),
	))))
}

func worksheetSchema() *schema {
	return object(
		req("studentMarkdown", str("The formatted worksheet for the student to print and fill out.")),
		req("teacherMarkdown", str("The answer key with all answers filled in.")),
	)
}
