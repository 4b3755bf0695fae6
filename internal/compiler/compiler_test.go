/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package compiler

import (
	"reflect"
	"strings"
	"testing"

	"dxeventgen/internal/domain"
	"dxeventgen/internal/enums"
)

func testRegistry(t *testing.T) *enums.Registry {
	t.Helper()
	reg, err := enums.Load(map[string][]byte{
		enums.CategoryTown:      []byte("KiyosuTown: 清洲城下\nOkazakiTown: 岡崎城下\n"),
		enums.CategoryFacility:  []byte("RiceShop: 米屋\nInn: 旅籠屋\n"),
		enums.CategoryCharacter: []byte("Hero: 主人公\nNobunaga: 織田信長\n"),
		enums.CategoryGender:    []byte("Male: 男性\nFemale: 女性\n"),
		enums.CategoryFaction:   []byte("Oda: 織田家\n"),
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func minimalDoc(script ...domain.Node) domain.EventDocument {
	return domain.EventDocument{
		Name: "test_event",
		Once: true,
		Trigger: domain.Trigger{
			Town:     "KiyosuTown",
			Facility: "RiceShop",
		},
		Script: script,
	}
}

// flatten collects instruction texts depth-first, in emit order.
func flatten(ins []Instruction) []string {
	var out []string
	for _, in := range ins {
		out = append(out, in.Text)
		out = append(out, flatten(in.Body)...)
	}
	return out
}

// scriptBody digs out the 腳本 block of a compiled program.
func scriptBody(t *testing.T, p *Program) []Instruction {
	t.Helper()
	if len(p.Instructions) != 2 {
		t.Fatalf("expected header + chapter, got %d instructions", len(p.Instructions))
	}
	event := p.Instructions[1].Body[0]
	last := event.Body[len(event.Body)-1]
	if last.Text != "腳本:" || !last.Block {
		t.Fatalf("last event section is not the script block: %+v", last)
	}
	return last.Body
}

func mustCompile(t *testing.T, doc domain.EventDocument) *Program {
	t.Helper()
	p, diags := Compile(doc, testRegistry(t), enums.LangTC)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return p
}

func TestCompileMinimalNarrationEvent(t *testing.T) {
	doc := minimalDoc(domain.Node{Narration: &domain.Narration{Text: "米屋に入った。"}})
	p := mustCompile(t, doc)

	if p.Instructions[0].Text != "太閣立志傳５事件原始碼" {
		t.Fatalf("missing source header, got %q", p.Instructions[0].Text)
	}
	event := p.Instructions[1].Body[0]
	if event.Text != "事件:test_event" || !event.Block {
		t.Fatalf("unexpected event instruction: %+v", event)
	}
	if event.Body[0].Text != "屬性:僅限一次" {
		t.Fatalf("once guard missing, got %q", event.Body[0].Text)
	}
	if event.Body[1].Text != "發生時機:室內畫面顯示後(清洲城下,米屋)" {
		t.Fatalf("unexpected timing line: %q", event.Body[1].Text)
	}

	body := scriptBody(t, p)
	if len(body) != 1 || body[0].Text != "旁白:[[米屋に入った。]]" {
		t.Fatalf("unexpected script body: %+v", body)
	}
}

func TestCompileOnceFalseOmitsGuard(t *testing.T) {
	doc := minimalDoc()
	doc.Once = false
	p := mustCompile(t, doc)
	for _, text := range flatten(p.Instructions) {
		if text == "屬性:僅限一次" {
			t.Fatalf("once guard emitted for a repeatable event")
		}
	}
}

func TestCompileDeterministic(t *testing.T) {
	doc := minimalDoc(
		domain.Node{Say: &domain.Say{Speaker: "Hero", Listener: "Nobunaga", Text: "はっ。"}},
		domain.Node{Mutate: &domain.Mutate{Resource: "money", Op: domain.OpAdd, Amount: 50}},
		domain.Node{Choice: &domain.Choice{Prompt: "どうする", Options: []domain.Option{
			{Label: "はい"}, {Label: "いいえ"},
		}}},
	)
	p1 := mustCompile(t, doc)
	p2 := mustCompile(t, doc)
	if !reflect.DeepEqual(p1, p2) {
		t.Fatalf("repeated compiles differ")
	}
}

func TestCompileUnresolvedSpeaker(t *testing.T) {
	doc := minimalDoc(domain.Node{Say: &domain.Say{Speaker: "Herro", Listener: "Nobunaga", Text: "x"}})
	p, diags := Compile(doc, testRegistry(t), enums.LangTC)
	if p != nil {
		t.Fatalf("expected nil program on diagnostic")
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	d := diags[0]
	if d.Path != "script[0].say.speaker" {
		t.Fatalf("diagnostic path = %q", d.Path)
	}
	found := false
	for _, s := range d.Suggestions {
		if s == "Hero" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Hero among suggestions, got %v", d.Suggestions)
	}
}

func TestCompileCollectsAllScriptDiagnostics(t *testing.T) {
	doc := minimalDoc(
		domain.Node{Say: &domain.Say{Speaker: "Herro", Listener: "Nobunagga", Text: "x"}},
		domain.Node{Narration: &domain.Narration{Text: "broken ]] text"}},
	)
	_, diags := Compile(doc, testRegistry(t), enums.LangTC)
	if len(diags) != 3 {
		t.Fatalf("expected 3 diagnostics, got %v", diags)
	}
	if diags[2].Path != "script[1].narration" {
		t.Fatalf("third diagnostic path = %q", diags[2].Path)
	}
}

func TestCompileFailsFastOnMalformedHead(t *testing.T) {
	doc := minimalDoc(domain.Node{Say: &domain.Say{Speaker: "Herro", Listener: "Nobunaga", Text: "x"}})
	doc.Trigger.Facility = ""
	_, diags := Compile(doc, testRegistry(t), enums.LangTC)
	// The script is never walked when the head is malformed, so the bad
	// speaker must not show up.
	if len(diags) != 1 || diags[0].Path != "trigger.facility" {
		t.Fatalf("expected single trigger.facility diagnostic, got %v", diags)
	}
}

func TestCompileUnresolvedTriggerStillWalksScript(t *testing.T) {
	doc := minimalDoc(domain.Node{Say: &domain.Say{Speaker: "Herro", Listener: "Nobunaga", Text: "x"}})
	doc.Trigger.Town = "KiyosuTwn"
	_, diags := Compile(doc, testRegistry(t), enums.LangTC)
	if len(diags) != 2 {
		t.Fatalf("expected trigger and script diagnostics, got %v", diags)
	}
	if diags[0].Path != "trigger.town" || diags[1].Path != "script[0].say.speaker" {
		t.Fatalf("unexpected paths: %v", diags)
	}
}

func TestMutateExpansionFixedShape(t *testing.T) {
	for _, tc := range []struct {
		op    string
		apply string
	}{
		{domain.OpAdd, "加算:(變數0,50)"},
		{domain.OpSub, "減算:(變數0,50)"},
		{domain.OpSet, "代入:(變數0,50)"},
	} {
		doc := minimalDoc(domain.Node{Mutate: &domain.Mutate{Resource: "money", Op: tc.op, Amount: 50}})
		body := scriptBody(t, mustCompile(t, doc))
		if len(body) != 3 {
			t.Fatalf("op %s: expected 3 instructions, got %d", tc.op, len(body))
		}
		want := []string{"代入:(變數0,所持金)", tc.apply, "代入:(所持金,變數0)"}
		for i, w := range want {
			if body[i].Text != w {
				t.Fatalf("op %s: instruction %d = %q, want %q", tc.op, i, body[i].Text, w)
			}
		}
	}
}

func TestChoiceCompilation(t *testing.T) {
	doc := minimalDoc(domain.Node{Choice: &domain.Choice{
		Prompt: "どの店に行く？",
		Options: []domain.Option{
			{Label: "米屋", Script: []domain.Node{{Narration: &domain.Narration{Text: "a"}}}},
			{Label: "旅籠屋", Script: []domain.Node{{Narration: &domain.Narration{Text: "b"}}}},
			{Label: "やめる", Script: []domain.Node{{Narration: &domain.Narration{Text: "c"}}}},
		},
	}})
	body := scriptBody(t, mustCompile(t, doc))
	if len(body) != 4 {
		t.Fatalf("expected prompt + 3 arms, got %d instructions", len(body))
	}
	if body[0].Text != "選擇:[[どの店に行く？]](變數0,變數1,變數2)" {
		t.Fatalf("unexpected prompt: %q", body[0].Text)
	}
	seen := map[string]bool{}
	wantArms := []string{"分歧:(變數0)[[米屋]]", "分歧:(變數1)[[旅籠屋]]", "分歧:(變數2)[[やめる]]"}
	wantBodies := []string{"旁白:[[a]]", "旁白:[[b]]", "旁白:[[c]]"}
	for i, arm := range body[1:] {
		if arm.Text != wantArms[i] {
			t.Fatalf("arm %d = %q, want %q", i, arm.Text, wantArms[i])
		}
		if seen[arm.Text] {
			t.Fatalf("colliding arm target: %q", arm.Text)
		}
		seen[arm.Text] = true
		if !arm.Block || len(arm.Body) != 1 || arm.Body[0].Text != wantBodies[i] {
			t.Fatalf("arm %d body = %+v", i, arm.Body)
		}
	}
}

func TestNestedChoiceTargetsDistinct(t *testing.T) {
	inner := domain.Node{Choice: &domain.Choice{Prompt: "inner", Options: []domain.Option{
		{Label: "x"}, {Label: "y"},
	}}}
	doc := minimalDoc(domain.Node{Choice: &domain.Choice{Prompt: "outer", Options: []domain.Option{
		{Label: "a", Script: []domain.Node{inner}},
		{Label: "b"},
	}}})
	texts := flatten(scriptBody(t, mustCompile(t, doc)))
	vars := map[string]int{}
	for _, text := range texts {
		if strings.HasPrefix(text, "分歧:(") {
			v := text[len("分歧:(") : strings.Index(text, ")")]
			vars[v]++
		}
	}
	if len(vars) != 4 {
		t.Fatalf("expected 4 distinct arm targets, got %v", vars)
	}
	for v, n := range vars {
		if n != 1 {
			t.Fatalf("target %s used %d times", v, n)
		}
	}
}

func TestBranchLeafCondition(t *testing.T) {
	doc := minimalDoc(domain.Node{Branch: &domain.Branch{
		If:   domain.Condition{Compare: &domain.Compare{Operand: "gender", Op: "==", Value: "Male"}},
		Then: []domain.Node{{Narration: &domain.Narration{Text: "t"}}},
		Else: []domain.Node{{Narration: &domain.Narration{Text: "e"}}},
	}})
	body := scriptBody(t, mustCompile(t, doc))
	if len(body) != 2 {
		t.Fatalf("expected guard + else, got %d", len(body))
	}
	if body[0].Text != "條件:(性別==男性)" || !body[0].Block {
		t.Fatalf("unexpected guard: %+v", body[0])
	}
	if body[0].Body[0].Text != "旁白:[[t]]" {
		t.Fatalf("unexpected then body: %+v", body[0].Body)
	}
	if body[1].Text != "其他:" || body[1].Body[0].Text != "旁白:[[e]]" {
		t.Fatalf("unexpected else: %+v", body[1])
	}
}

func TestBranchCompositeOrLowering(t *testing.T) {
	doc := minimalDoc(domain.Node{Branch: &domain.Branch{
		If: domain.Condition{Any: []domain.Condition{
			{Compare: &domain.Compare{Operand: "gender", Op: "==", Value: "Male"}},
			{Compare: &domain.Compare{Operand: "money", Op: ">=", Value: "100"}},
		}},
		Then: []domain.Node{{Narration: &domain.Narration{Text: "t"}}},
	}})
	body := scriptBody(t, mustCompile(t, doc))
	texts := flatten(body)
	want := []string{
		"代入:(變數0,0)",
		"代入:(變數1,0)",
		"條件:(性別==男性)",
		"代入:(變數1,1)",
		"條件:(變數1==0)",
		"條件:(所持金>=100)",
		"代入:(變數1,1)",
		"條件:(變數1==1)",
		"代入:(變數0,1)",
		"條件:(變數0==1)",
		"旁白:[[t]]",
	}
	if !reflect.DeepEqual(texts, want) {
		t.Fatalf("or lowering mismatch:\n got %v\nwant %v", texts, want)
	}
}

func TestBranchCompositeAndLowering(t *testing.T) {
	doc := minimalDoc(domain.Node{Branch: &domain.Branch{
		If: domain.Condition{All: []domain.Condition{
			{Compare: &domain.Compare{Operand: "faction", Op: "==", Value: "Oda"}},
			{Compare: &domain.Compare{Operand: "time", Op: "<", Value: "12"}},
		}},
		Then: []domain.Node{{Narration: &domain.Narration{Text: "t"}}},
	}})
	body := scriptBody(t, mustCompile(t, doc))
	texts := flatten(body)
	want := []string{
		"代入:(變數0,0)",
		"條件:(勢力==織田家)",
		"條件:(時刻<12)",
		"代入:(變數0,1)",
		"條件:(變數0==1)",
		"旁白:[[t]]",
	}
	if !reflect.DeepEqual(texts, want) {
		t.Fatalf("and lowering mismatch:\n got %v\nwant %v", texts, want)
	}
}

func TestConditionTypeErrors(t *testing.T) {
	cases := []struct {
		cmp  domain.Compare
		frag string
	}{
		{domain.Compare{Operand: "gender", Op: "<", Value: "Male"}, "== and != only"},
		{domain.Compare{Operand: "money", Op: ">=", Value: "lots"}, "non-negative integer"},
		{domain.Compare{Operand: "time", Op: "<", Value: "25"}, "out of range"},
		{domain.Compare{Operand: "karma", Op: "==", Value: "1"}, "unknown condition operand"},
	}
	for _, tc := range cases {
		doc := minimalDoc(domain.Node{Branch: &domain.Branch{
			If:   domain.Condition{Compare: &tc.cmp},
			Then: []domain.Node{{Narration: &domain.Narration{Text: "t"}}},
		}})
		_, diags := Compile(doc, testRegistry(t), enums.LangTC)
		if len(diags) != 1 || !strings.Contains(diags[0].Message, tc.frag) {
			t.Fatalf("cmp %+v: unexpected diagnostics %v", tc.cmp, diags)
		}
		if diags[0].Path != "script[0].branch.if" {
			t.Fatalf("cmp %+v: path = %q", tc.cmp, diags[0].Path)
		}
	}
}

func TestBranchBodyDiagnosticPaths(t *testing.T) {
	doc := minimalDoc(domain.Node{Branch: &domain.Branch{
		If:   domain.Condition{Compare: &domain.Compare{Operand: "gender", Op: "==", Value: "Male"}},
		Then: []domain.Node{{Say: &domain.Say{Speaker: "Herro", Listener: "Hero", Text: "x"}}},
		Else: []domain.Node{{Narration: &domain.Narration{Text: "bad ]] text"}}},
	}})
	_, diags := Compile(doc, testRegistry(t), enums.LangTC)
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", diags)
	}
	if diags[0].Path != "script[0].branch.then[0].say.speaker" {
		t.Fatalf("then path = %q", diags[0].Path)
	}
	if diags[1].Path != "script[0].branch.else[0].narration" {
		t.Fatalf("else path = %q", diags[1].Path)
	}
}

func TestConditionUnresolvedEnumValue(t *testing.T) {
	doc := minimalDoc(domain.Node{Branch: &domain.Branch{
		If:   domain.Condition{Compare: &domain.Compare{Operand: "faction", Op: "==", Value: "NinjaClan"}},
		Then: []domain.Node{{Narration: &domain.Narration{Text: "t"}}},
	}})
	_, diags := Compile(doc, testRegistry(t), enums.LangTC)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	if diags[0].Path != "script[0].branch.if.value" {
		t.Fatalf("path = %q", diags[0].Path)
	}
	if !strings.Contains(diags[0].Message, "NinjaClan") {
		t.Fatalf("message = %q", diags[0].Message)
	}
}

func TestTriggerConditions(t *testing.T) {
	doc := minimalDoc()
	doc.Trigger.Conditions = []domain.Condition{
		{Compare: &domain.Compare{Operand: "money", Op: ">=", Value: "100"}},
		{All: []domain.Condition{
			{Compare: &domain.Compare{Operand: "gender", Op: "==", Value: "Male"}},
			{Compare: &domain.Compare{Operand: "time", Op: ">=", Value: "6"}},
		}},
	}
	p := mustCompile(t, doc)
	event := p.Instructions[1].Body[0]
	var condBlock *Instruction
	for i := range event.Body {
		if event.Body[i].Text == "發生條件:" {
			condBlock = &event.Body[i]
		}
	}
	if condBlock == nil {
		t.Fatalf("missing trigger condition block")
	}
	want := []string{"所持金>=100", "性別==男性", "時刻>=6"}
	got := flatten(condBlock.Body)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("trigger conditions = %v, want %v", got, want)
	}
}

func TestTriggerRejectsOrConditions(t *testing.T) {
	doc := minimalDoc()
	doc.Trigger.Conditions = []domain.Condition{
		{Any: []domain.Condition{
			{Compare: &domain.Compare{Operand: "money", Op: ">=", Value: "100"}},
			{Compare: &domain.Compare{Operand: "time", Op: ">=", Value: "6"}},
		}},
	}
	_, diags := Compile(doc, testRegistry(t), enums.LangTC)
	if len(diags) != 1 || !strings.Contains(diags[0].Message, "or-conditions") {
		t.Fatalf("expected or-condition rejection, got %v", diags)
	}
	if diags[0].Path != "trigger.conditions[0]" {
		t.Fatalf("path = %q", diags[0].Path)
	}
}

func TestTextValidation(t *testing.T) {
	for _, tc := range []struct {
		text string
		frag string
	}{
		{"bad ]] text", `"]]"`},
		{"line\nbreak", "line breaks"},
	} {
		doc := minimalDoc(domain.Node{Narration: &domain.Narration{Text: tc.text}})
		_, diags := Compile(doc, testRegistry(t), enums.LangTC)
		if len(diags) != 1 || !strings.Contains(diags[0].Message, tc.frag) {
			t.Fatalf("text %q: unexpected diagnostics %v", tc.text, diags)
		}
		if diags[0].Path != "script[0].narration" {
			t.Fatalf("text %q: path = %q", tc.text, diags[0].Path)
		}
	}
}

func TestMissingLanguageSlotDiagnostic(t *testing.T) {
	// Shorthand entries populate tc only, so compiling for jp misses.
	doc := minimalDoc()
	_, diags := Compile(doc, testRegistry(t), enums.LangJP)
	if len(diags) == 0 {
		t.Fatalf("expected missing-localization diagnostics")
	}
	if !strings.Contains(diags[0].Message, "no jp token") {
		t.Fatalf("message = %q", diags[0].Message)
	}
}

func TestRenameSayAndHeroThink(t *testing.T) {
	doc := minimalDoc(
		domain.Node{RenameSay: &domain.RenameSay{
			Speaker: "Nobunaga", Listener: "Hero",
			Surname: "謎の", Name: "男", Text: "よう来たな。",
		}},
		domain.Node{HeroThink: &domain.HeroThink{Text: "誰だろう。"}},
	)
	body := scriptBody(t, mustCompile(t, doc))
	if body[0].Text != "變名對話:(織田信長,主人公,[[謎の]],[[男]])[[よう来たな。]]" {
		t.Fatalf("rename say = %q", body[0].Text)
	}
	if body[1].Text != "自言自語:[[誰だろう。]]" {
		t.Fatalf("hero think = %q", body[1].Text)
	}
}
