/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "testing"

func TestNodeKind(t *testing.T) {
	cases := []struct {
		node Node
		want string
	}{
		{Node{Narration: &Narration{}}, "narration"},
		{Node{HeroThink: &HeroThink{}}, "hero_think"},
		{Node{Say: &Say{}}, "say"},
		{Node{RenameSay: &RenameSay{}}, "rename_say"},
		{Node{Choice: &Choice{}}, "choice"},
		{Node{Mutate: &Mutate{}}, "mutate"},
		{Node{Branch: &Branch{}}, "branch"},
		{Node{}, ""},
	}
	for _, tc := range cases {
		if got := tc.node.Kind(); got != tc.want {
			t.Fatalf("Kind() = %q, want %q", got, tc.want)
		}
	}
}

func TestConditionKind(t *testing.T) {
	cases := []struct {
		cond Condition
		want string
	}{
		{Condition{Compare: &Compare{}}, "compare"},
		{Condition{All: []Condition{{}}}, "all"},
		{Condition{Any: []Condition{{}}}, "any"},
		{Condition{}, ""},
	}
	for _, tc := range cases {
		if got := tc.cond.Kind(); got != tc.want {
			t.Fatalf("Kind() = %q, want %q", got, tc.want)
		}
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Path: "script[0].say.speaker", Message: `unknown character "Herro"`}
	if got := d.String(); got != `script[0].say.speaker: unknown character "Herro"` {
		t.Fatalf("String() = %q", got)
	}
	d.Suggestions = []string{"Hero", "Herod"}
	want := `script[0].say.speaker: unknown character "Herro" (did you mean: Hero, Herod)`
	if got := d.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
