/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain defines the authoring-level event model handed to the
// compiler: one EventDocument per engine event, already parsed and typed.
// The compiler only traverses these values; it never mutates them.
package domain

import (
	"fmt"
	"strings"
)

// EventDocument is the root of one authored event. Name is free text used
// for traceability and as the engine event label; it is never interpreted.
type EventDocument struct {
	Name    string
	Once    bool
	Trigger Trigger
	Script  []Node
}

// Trigger describes where the event fires and under which conditions.
// Town and Facility are author-facing enum identifiers.
type Trigger struct {
	Town       string
	Facility   string
	Conditions []Condition
}

// Node is a single script construct. Exactly one variant field is set;
// Kind reports which.
type Node struct {
	Narration *Narration
	HeroThink *HeroThink
	Say       *Say
	RenameSay *RenameSay
	Choice    *Choice
	Mutate    *Mutate
	Branch    *Branch
}

// Kind returns the variant name of the node, matching the authoring field
// name, or "" for an empty node.
func (n Node) Kind() string {
	switch {
	case n.Narration != nil:
		return "narration"
	case n.HeroThink != nil:
		return "hero_think"
	case n.Say != nil:
		return "say"
	case n.RenameSay != nil:
		return "rename_say"
	case n.Choice != nil:
		return "choice"
	case n.Mutate != nil:
		return "mutate"
	case n.Branch != nil:
		return "branch"
	}
	return ""
}

// Narration is a narrator line shown without a speaker.
type Narration struct {
	Text string
}

// HeroThink is the protagonist's inner monologue line.
type HeroThink struct {
	Text string
}

// Say is a spoken line between two characters, both enum identifiers.
type Say struct {
	Speaker  string
	Listener string
	Text     string
}

// RenameSay is a spoken line where the speaker appears under an ad-hoc
// display name instead of the registered one.
type RenameSay struct {
	Speaker  string
	Listener string
	Surname  string
	Name     string
	Text     string
}

// Choice presents a prompt and branches into one nested script per option.
type Choice struct {
	Prompt  string
	Options []Option
}

// Option is one selectable choice branch.
type Option struct {
	Label  string
	Script []Node
}

// Mutation operations.
const (
	OpSet = "set"
	OpAdd = "add"
	OpSub = "sub"
)

// Mutate changes a player resource value. Resource currently covers
// "money" only, mirroring the numeric condition operands.
type Mutate struct {
	Resource string
	Op       string
	Amount   int
}

// Branch runs Then when the condition holds, Else otherwise. Else may be
// empty.
type Branch struct {
	If   Condition
	Then []Node
	Else []Node
}

// Condition is a tree over comparisons. Exactly one of Compare, All or
// Any is set.
type Condition struct {
	Compare *Compare
	All     []Condition
	Any     []Condition
}

// Kind returns "compare", "all" or "any", or "" for an empty condition.
func (c Condition) Kind() string {
	switch {
	case c.Compare != nil:
		return "compare"
	case c.All != nil:
		return "all"
	case c.Any != nil:
		return "any"
	}
	return ""
}

// Comparison operands.
const (
	OperandGender  = "gender"
	OperandFaction = "faction"
	OperandMoney   = "money"
	OperandTime    = "time"
)

// Compare is a single comparison. Value holds the right-hand side exactly
// as authored: an enum identifier for gender/faction, a decimal literal
// for money/time. The compiler type-checks it against the operand.
type Compare struct {
	Operand string
	Op      string
	Value   string
}

// Diagnostic is one compile-time finding: a dotted/indexed path into the
// document, a message, and ranked identifier suggestions when the finding
// is an unresolved symbol.
type Diagnostic struct {
	Path        string
	Message     string
	Suggestions []string
}

func (d Diagnostic) String() string {
	if len(d.Suggestions) == 0 {
		return fmt.Sprintf("%s: %s", d.Path, d.Message)
	}
	return fmt.Sprintf("%s: %s (did you mean: %s)", d.Path, d.Message, strings.Join(d.Suggestions, ", "))
}
