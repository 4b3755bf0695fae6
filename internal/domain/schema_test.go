/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"strings"
	"testing"
)

func validRawDoc() map[string]any {
	return map[string]any{
		"event_name": "test",
		"trigger": map[string]any{
			"town":     "KiyosuTown",
			"facility": "RiceShop",
		},
		"script": []any{
			map[string]any{"narration": "hello"},
			map[string]any{"mutate": map[string]any{
				"resource": "money", "op": "add", "amount": 10,
			}},
		},
	}
}

func TestValidateShapeAccepts(t *testing.T) {
	diags, err := ValidateShape(validRawDoc())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestValidateShapeMissingTrigger(t *testing.T) {
	doc := validRawDoc()
	delete(doc, "trigger")
	diags, err := ValidateShape(doc)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(diags) == 0 {
		t.Fatalf("expected a violation")
	}
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "trigger") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no diagnostic names trigger: %v", diags)
	}
}

func TestValidateShapeRejectsTwoVariantNode(t *testing.T) {
	doc := validRawDoc()
	doc["script"] = []any{map[string]any{
		"narration":  "a",
		"hero_think": "b",
	}}
	diags, err := ValidateShape(doc)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(diags) == 0 {
		t.Fatalf("node with two variants must be rejected")
	}
}

func TestValidateShapeRejectsBadMutate(t *testing.T) {
	for _, mutate := range []map[string]any{
		{"resource": "fame", "op": "add", "amount": 10},
		{"resource": "money", "op": "mul", "amount": 10},
		{"resource": "money", "op": "add", "amount": -1},
		{"resource": "money", "op": "add", "amount": "ten"},
	} {
		doc := validRawDoc()
		doc["script"] = []any{map[string]any{"mutate": mutate}}
		diags, err := ValidateShape(doc)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if len(diags) == 0 {
			t.Fatalf("mutate %v must be rejected", mutate)
		}
	}
}

func TestValidateShapeDiagnosticsSorted(t *testing.T) {
	doc := map[string]any{}
	diags, err := ValidateShape(doc)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	for i := 1; i < len(diags); i++ {
		if diags[i].Path < diags[i-1].Path {
			t.Fatalf("diagnostics not sorted by path: %v", diags)
		}
	}
	if len(diags) == 0 {
		t.Fatalf("empty document must be rejected")
	}
}
