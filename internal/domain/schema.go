/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	_ "embed"
	"fmt"
	"sort"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed event.schema.json
var eventSchema []byte

// ValidateShape checks a raw decoded document (generic maps/slices as
// produced by the YAML front-end) against the embedded event schema.
// Violations come back as structural diagnostics; the document must pass
// before the typed decode is trusted.
func ValidateShape(doc any) ([]Diagnostic, error) {
	schemaLoader := gojsonschema.NewBytesLoader(eventSchema)
	docLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	diags := make([]Diagnostic, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		path := e.Field()
		if path == "(root)" {
			path = ""
		}
		diags = append(diags, Diagnostic{Path: path, Message: e.Description()})
	}
	sort.Slice(diags, func(i, j int) bool {
		if diags[i].Path != diags[j].Path {
			return diags[i].Path < diags[j].Path
		}
		return diags[i].Message < diags[j].Message
	})
	return diags, nil
}
