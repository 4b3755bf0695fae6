/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package enums

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// Suggestion policy. These constants are part of the public contract:
// at most MaxSuggestions identifiers, each within an edit distance of
// maxDistance(len(key)), ordered best-first with identifier order as the
// tie-break so repeated runs rank identically.
const MaxSuggestions = 3

func maxDistance(keyLen int) int {
	if d := (keyLen + 3) / 4; d > 2 {
		return d
	}
	return 2
}

// Miss reports a failed resolution. Suggestions is ranked best-first and
// only ever drawn from the same category. MissingLanguage is set when the
// identifier exists but its slot for the selected language is empty.
type Miss struct {
	Category        string
	Key             string
	Suggestions     []string
	MissingLanguage Language
}

// Resolver translates author-facing identifiers into localized tokens for
// one selected output language. Misses are values, never panics; the
// caller folds them into its diagnostics.
type Resolver struct {
	reg  *Registry
	lang Language
}

// NewResolver binds a frozen registry to an output language.
func NewResolver(reg *Registry, lang Language) *Resolver {
	return &Resolver{reg: reg, lang: lang}
}

// Language returns the resolver's selected output language.
func (r *Resolver) Language() Language { return r.lang }

// Resolve maps (category, key) to the localized token. On a miss the
// returned token is empty and Miss carries ranked suggestions from the
// same category only.
func (r *Resolver) Resolve(category, key string) (string, *Miss) {
	entry, ok := r.reg.Lookup(category, key)
	if !ok {
		return "", &Miss{Category: category, Key: key, Suggestions: r.suggest(category, key)}
	}
	token := entry.Text.Get(r.lang)
	if token == "" {
		return "", &Miss{Category: category, Key: key, MissingLanguage: r.lang}
	}
	return token, nil
}

type scored struct {
	key  string
	dist int
}

func (r *Resolver) suggest(category, key string) []string {
	limit := maxDistance(len(key))
	var candidates []scored
	for _, cand := range r.reg.Keys(category) {
		d := levenshtein.ComputeDistance(key, cand)
		if d <= limit {
			candidates = append(candidates, scored{key: cand, dist: d})
		}
	}
	// Keys() is sorted, so a stable sort on distance keeps identifier
	// order as the tie-break.
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	if len(candidates) > MaxSuggestions {
		candidates = candidates[:MaxSuggestions]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.key
	}
	return out
}
