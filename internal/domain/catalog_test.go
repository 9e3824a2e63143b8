/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "testing"

func TestParseGrade(t *testing.T) {
	cases := map[string]GradeLevel{
		"K": Kindergarten, "kindergarten": Kindergarten, "3": Grade3, "Grade 8": Grade8, "g5": Grade5,
	}
	for in, want := range cases {
		got, err := ParseGrade(in)
		if err != nil || got != want {
			t.Fatalf("ParseGrade(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseGrade("Grade 12"); err == nil {
		t.Fatalf("grade 12 should be rejected")
	}
}

func TestParseProvinceAndSubject(t *testing.T) {
	if p, err := ParseProvince("on"); err != nil || p != Ontario {
		t.Fatalf("ParseProvince(on) = %q, %v", p, err)
	}
	if p, err := ParseProvince("british columbia"); err != nil || p != BritishColumbia {
		t.Fatalf("ParseProvince full name = %q, %v", p, err)
	}
	if len(Provinces) != 13 {
		t.Fatalf("expected 13 provinces and territories, got %d", len(Provinces))
	}
	if s, err := ParseSubject("math"); err != nil || s != Mathematics {
		t.Fatalf("ParseSubject(math) = %q, %v", s, err)
	}
	for _, s := range Subjects {
		if len(SubjectTemplates[s]) == 0 {
			t.Fatalf("no templates for %s", s)
		}
	}
}

func TestGenerationParamsValidate(t *testing.T) {
	ok := GenerationParams{Topic: "Fractions", Grade: Grade3, Province: Ontario, Subject: Mathematics, SlideCount: 8}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
	bad := ok
	bad.Topic = "  "
	if bad.Validate() == nil {
		t.Fatalf("empty topic accepted")
	}
	bad = ok
	bad.SlideCount = 50
	if bad.Validate() == nil {
		t.Fatalf("slide count 50 accepted")
	}
}

func TestPlannerKey(t *testing.T) {
	k, err := PlannerKey("mon", "lunch")
	if err != nil || k != "Monday-Lunch" {
		t.Fatalf("PlannerKey = %q, %v", k, err)
	}
	if _, err := PlannerKey("Saturday", "1"); err == nil {
		t.Fatalf("weekend accepted")
	}
	if _, err := PlannerKey("Friday", "9"); err == nil {
		t.Fatalf("period 9 accepted")
	}
}

func TestSmartBoardConfigEncodeDecode(t *testing.T) {
	c := SmartBoardConfig{Bg: "space", Notes: DefaultSmartBoardNotes}
	got, err := DecodeSmartBoardConfig(c.Encode())
	if err != nil || got != c {
		t.Fatalf("decode = %+v, %v", got, err)
	}
	if _, err := DecodeSmartBoardConfig("{"); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestParseWorksheetStyle(t *testing.T) {
	if ParseWorksheetStyle("Math_Drill") != StyleMathDrill || ParseWorksheetStyle("weird") != StyleStandard {
		t.Fatalf("style parsing mismatch")
	}
}
