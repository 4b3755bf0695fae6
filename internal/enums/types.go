/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package enums holds the frozen category tables that map author-facing
// identifiers to the localized engine tokens, plus the resolver that
// translates identifiers during compilation.
package enums

import (
	"fmt"
	"sort"
)

// Language selects which localized token slot is emitted.
type Language string

const (
	LangTC Language = "tc" // Traditional Chinese (the engine's shipped script)
	LangSC Language = "sc"
	LangJP Language = "jp"
)

// ParseLanguage validates a language code from config or flags.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LangTC, LangSC, LangJP:
		return Language(s), nil
	}
	return "", fmt.Errorf("unsupported output language %q (want tc, sc or jp)", s)
}

// LocalizedText carries one token per supported output language.
// Slots may be empty but are always structurally present in the sources.
type LocalizedText struct {
	TC string `yaml:"tc"`
	SC string `yaml:"sc"`
	JP string `yaml:"jp"`
}

// Get returns the token for the given language.
func (t LocalizedText) Get(lang Language) string {
	switch lang {
	case LangSC:
		return t.SC
	case LangJP:
		return t.JP
	default:
		return t.TC
	}
}

// Entry is a single registry row: an author-facing identifier bound to its
// localized tokens. Immutable once loaded.
type Entry struct {
	Key     string
	Text    LocalizedText
	Comment string
}

// Well-known category names. Categories are disjoint namespaces.
const (
	CategoryTown      = "town"
	CategoryFacility  = "facility"
	CategoryCharacter = "character"
	CategoryGender    = "gender"
	CategoryFaction   = "faction"
)

type category struct {
	name    string
	entries map[string]Entry
	keys    []string // sorted, for deterministic iteration
}

// Registry is the frozen set of category tables. It is fully loaded before
// any resolution begins and is safe for concurrent readers.
type Registry struct {
	categories map[string]*category
}

// Lookup returns the entry for (category, key). Exact, case-sensitive.
func (r *Registry) Lookup(categoryName, key string) (Entry, bool) {
	c, ok := r.categories[categoryName]
	if !ok {
		return Entry{}, false
	}
	e, ok := c.entries[key]
	return e, ok
}

// Categories returns the loaded category names, sorted.
func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.categories))
	for name := range r.categories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Keys returns the identifiers of one category, sorted. Nil if the
// category does not exist.
func (r *Registry) Keys(categoryName string) []string {
	c, ok := r.categories[categoryName]
	if !ok {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Len returns the number of entries in a category.
func (r *Registry) Len(categoryName string) int {
	c, ok := r.categories[categoryName]
	if !ok {
		return 0
	}
	return len(c.entries)
}
