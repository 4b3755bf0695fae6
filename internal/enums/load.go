/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package enums

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	applog "dxeventgen/internal/log"

	"gopkg.in/yaml.v3"
)

// Category source files under the enum directory. All of them must exist;
// an event may reference any category and the registry is frozen up front.
var categoryFiles = map[string]string{
	CategoryTown:      "towns.yaml",
	CategoryFacility:  "facilities.yaml",
	CategoryCharacter: "characters.yaml",
	CategoryGender:    "genders.yaml",
	CategoryFaction:   "factions.yaml",
}

// Identifier convention: ASCII letters and digits, leading letter. No
// whitespace, no script characters from the target language.
var keyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// LoadError describes a registry source rejection. Registry load errors are
// fatal: no compilation runs against a partially loaded registry.
type LoadError struct {
	Category string
	Key      string
	Line     int
	Msg      string
}

func (e *LoadError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("enum category %s: line %d: %s", e.Category, e.Line, e.Msg)
	}
	return fmt.Sprintf("enum category %s: %s (line %d): %s", e.Category, e.Key, e.Line, e.Msg)
}

// LoadDir loads the registry from the canonical category files in dir.
func LoadDir(dir string) (*Registry, error) {
	l := applog.WithOperation(applog.WithComponent("enums"), "load").With(slog.String("dir", dir))
	sources := make(map[string][]byte, len(categoryFiles))
	for cat, file := range categoryFiles {
		path := filepath.Join(dir, file)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("missing enum map file %s: %w", path, err)
		}
		sources[cat] = data
	}
	reg, err := Load(sources)
	if err != nil {
		return nil, err
	}
	l.Debug("registry loaded", slog.Int("categories", len(reg.categories)))
	return reg, nil
}

// Load builds the registry from raw category sources, keyed by category
// name. The whole registry loads or nothing does.
func Load(sources map[string][]byte) (*Registry, error) {
	reg := &Registry{categories: make(map[string]*category, len(sources))}
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c, err := loadCategory(name, sources[name])
		if err != nil {
			return nil, err
		}
		reg.categories[name] = c
	}
	return reg, nil
}

func loadCategory(name string, data []byte) (*category, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("enum category %s: %w", name, err)
	}

	c := &category{name: name, entries: map[string]Entry{}}
	if root.Kind == 0 || len(root.Content) == 0 {
		// empty file: a valid, empty category
		return c, nil
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, &LoadError{Category: name, Line: m.Line, Msg: "source must be a mapping of identifier to entry"}
	}

	for i := 0; i+1 < len(m.Content); i += 2 {
		keyNode, valNode := m.Content[i], m.Content[i+1]
		key := keyNode.Value
		if !keyPattern.MatchString(key) {
			return nil, &LoadError{Category: name, Key: key, Line: keyNode.Line, Msg: "identifier must match [A-Za-z][A-Za-z0-9]*"}
		}
		if _, dup := c.entries[key]; dup {
			return nil, &LoadError{Category: name, Key: key, Line: keyNode.Line, Msg: "duplicate identifier"}
		}
		entry, err := loadEntry(name, key, valNode)
		if err != nil {
			return nil, err
		}
		c.entries[key] = entry
		c.keys = append(c.keys, key)
	}
	sort.Strings(c.keys)
	return c, nil
}

// loadEntry accepts the two source forms:
//
//	Key: token                      (shorthand, fills the tc slot)
//	Key:
//	  value: {tc: ..., sc: "", jp: ...}
//	  comment: free text
//
// In the full form every language slot must be present; empty strings are
// fine, absence is not.
func loadEntry(cat, key string, n *yaml.Node) (Entry, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return Entry{Key: key, Text: LocalizedText{TC: n.Value}}, nil
	case yaml.MappingNode:
		e := Entry{Key: key}
		var sawValue bool
		for i := 0; i+1 < len(n.Content); i += 2 {
			field, val := n.Content[i], n.Content[i+1]
			switch field.Value {
			case "value":
				text, err := loadText(cat, key, val)
				if err != nil {
					return Entry{}, err
				}
				e.Text = text
				sawValue = true
			case "comment":
				e.Comment = val.Value
			default:
				return Entry{}, &LoadError{Category: cat, Key: key, Line: field.Line, Msg: fmt.Sprintf("unknown field %q", field.Value)}
			}
		}
		if !sawValue {
			return Entry{}, &LoadError{Category: cat, Key: key, Line: n.Line, Msg: "missing value record"}
		}
		return e, nil
	default:
		return Entry{}, &LoadError{Category: cat, Key: key, Line: n.Line, Msg: "entry must be a scalar token or a value/comment mapping"}
	}
}

func loadText(cat, key string, n *yaml.Node) (LocalizedText, error) {
	if n.Kind != yaml.MappingNode {
		return LocalizedText{}, &LoadError{Category: cat, Key: key, Line: n.Line, Msg: "value must be a mapping with tc, sc and jp slots"}
	}
	var text LocalizedText
	seen := map[string]bool{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		slot, val := n.Content[i], n.Content[i+1]
		switch slot.Value {
		case "tc":
			text.TC = val.Value
		case "sc":
			text.SC = val.Value
		case "jp":
			text.JP = val.Value
		default:
			return LocalizedText{}, &LoadError{Category: cat, Key: key, Line: slot.Line, Msg: fmt.Sprintf("unknown language slot %q", slot.Value)}
		}
		seen[slot.Value] = true
	}
	for _, slot := range []string{"tc", "sc", "jp"} {
		if !seen[slot] {
			return LocalizedText{}, &LoadError{Category: cat, Key: key, Line: n.Line, Msg: fmt.Sprintf("missing language slot %q", slot)}
		}
	}
	return text, nil
}
