/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package compiler translates a typed EventDocument into the engine's
// instruction stream. Compilation is a pure function of (registry,
// document, language): it either yields a complete Program and no
// diagnostics, or diagnostics and no Program — never both, never partial
// output. Each call uses its own scratch-variable allocator, so
// independent documents may compile concurrently against one shared
// registry.
package compiler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"dxeventgen/internal/domain"
	"dxeventgen/internal/enums"
	applog "dxeventgen/internal/log"
)

// Compile runs the full pipeline for one document. Structural problems
// with the document head (name, trigger fields) abort before the script
// walk; once the walk starts every diagnostic in the whole script is
// collected in one pass.
func Compile(doc domain.EventDocument, reg *enums.Registry, lang enums.Language) (*Program, []domain.Diagnostic) {
	l := applog.WithOperation(applog.WithComponent("compiler"), "compile").With(
		slog.String("event", doc.Name),
		slog.String("lang", string(lang)),
	)

	c := &compilation{resolver: enums.NewResolver(reg, lang)}

	// Fail fast on a malformed head before spending work on the script.
	c.validateHead(doc)
	if len(c.diags) > 0 {
		l.Debug("document head invalid", slog.Int("diags", len(c.diags)))
		return nil, c.diags
	}

	town, miss := c.resolver.Resolve(enums.CategoryTown, doc.Trigger.Town)
	if miss != nil {
		c.miss("trigger.town", miss)
	}
	facility, miss := c.resolver.Resolve(enums.CategoryFacility, doc.Trigger.Facility)
	if miss != nil {
		c.miss("trigger.facility", miss)
	}
	triggerConds := c.compileTriggerConditions(doc.Trigger.Conditions)

	body := c.compileNodes(doc.Script, "script")

	if len(c.diags) > 0 {
		l.Debug("compile failed", slog.Int("diags", len(c.diags)))
		return nil, c.diags
	}

	event := Instruction{Text: tokEvent + doc.Name, Block: true}
	if doc.Once {
		event.Body = append(event.Body, Instruction{Text: tokOnce})
	}
	event.Body = append(event.Body,
		Instruction{Text: fmt.Sprintf(tokTiming, town, facility)},
		Instruction{Text: tokCondBlock, Block: true, Body: triggerConds},
		Instruction{Text: tokScript, Block: true, Body: body},
	)

	p := &Program{
		EventName: doc.Name,
		Instructions: []Instruction{
			{Text: tokHeader},
			{Text: tokChapter, Block: true, Body: []Instruction{event}},
		},
	}
	l.Debug("compile ok", slog.Int("instructions", p.Count()), slog.Int("vars", c.alloc.Count()))
	return p, nil
}

type compilation struct {
	resolver *enums.Resolver
	alloc    Allocator
	diags    []domain.Diagnostic
}

func (c *compilation) errf(path, format string, args ...any) {
	c.diags = append(c.diags, domain.Diagnostic{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *compilation) miss(path string, m *enums.Miss) {
	if m.MissingLanguage != "" {
		c.errf(path, "identifier %q has no %s token in category %s", m.Key, m.MissingLanguage, m.Category)
		return
	}
	c.diags = append(c.diags, domain.Diagnostic{
		Path:        path,
		Message:     fmt.Sprintf("unknown %s %q", m.Category, m.Key),
		Suggestions: m.Suggestions,
	})
}

func (c *compilation) validateHead(doc domain.EventDocument) {
	if strings.TrimSpace(doc.Name) == "" {
		c.errf("event_name", "event name is required")
	} else if strings.ContainsAny(doc.Name, "\r\n\t{}") {
		c.errf("event_name", "event name must be a single line without braces")
	}
	if strings.TrimSpace(doc.Trigger.Town) == "" {
		c.errf("trigger.town", "trigger town is required")
	}
	if strings.TrimSpace(doc.Trigger.Facility) == "" {
		c.errf("trigger.facility", "trigger facility is required")
	}
}

// checkText validates a free-text payload for the output format: it must
// survive the [[...]] delimiters, the line grammar, and the 16-bit output
// encoding.
func (c *compilation) checkText(path, text string) string {
	if !utf8.ValidString(text) {
		c.errf(path, "text is not valid UTF-8")
		return ""
	}
	if strings.ContainsAny(text, "\r\n\t") {
		c.errf(path, "text must not contain line breaks or tabs")
		return ""
	}
	if strings.Contains(text, "]]") {
		c.errf(path, `text must not contain "]]"`)
		return ""
	}
	return text
}

func (c *compilation) compileNodes(nodes []domain.Node, path string) []Instruction {
	var out []Instruction
	for i, n := range nodes {
		out = append(out, c.compileNode(n, fmt.Sprintf("%s[%d]", path, i))...)
	}
	return out
}

func (c *compilation) compileNode(n domain.Node, path string) []Instruction {
	switch {
	case n.Narration != nil:
		text := c.checkText(path+".narration", n.Narration.Text)
		return []Instruction{{Text: fmt.Sprintf(tokNarration, text)}}

	case n.HeroThink != nil:
		text := c.checkText(path+".hero_think", n.HeroThink.Text)
		return []Instruction{{Text: fmt.Sprintf(tokHeroThink, text)}}

	case n.Say != nil:
		sp := c.person(path+".say.speaker", n.Say.Speaker)
		ls := c.person(path+".say.listener", n.Say.Listener)
		text := c.checkText(path+".say.text", n.Say.Text)
		return []Instruction{{Text: fmt.Sprintf(tokSay, sp, ls, text)}}

	case n.RenameSay != nil:
		rs := n.RenameSay
		sp := c.person(path+".rename_say.speaker", rs.Speaker)
		ls := c.person(path+".rename_say.listener", rs.Listener)
		surname := c.checkText(path+".rename_say.surname", rs.Surname)
		name := c.checkText(path+".rename_say.name", rs.Name)
		text := c.checkText(path+".rename_say.text", rs.Text)
		return []Instruction{{Text: fmt.Sprintf(tokRenameSay, sp, ls, surname, name, text)}}

	case n.Choice != nil:
		return c.compileChoice(n.Choice, path)

	case n.Mutate != nil:
		return c.compileMutate(n.Mutate, path)

	case n.Branch != nil:
		return c.compileBranch(n.Branch, path)
	}
	c.errf(path, "empty script node")
	return nil
}

func (c *compilation) person(path, key string) string {
	token, miss := c.resolver.Resolve(enums.CategoryCharacter, key)
	if miss != nil {
		c.miss(path, miss)
		return ""
	}
	return token
}

// compileChoice emits the prompt instruction followed by one labeled arm
// per option in authored order. Every arm target is a freshly allocated
// variable, so nested choices can never collide on a jump target.
func (c *compilation) compileChoice(ch *domain.Choice, path string) []Instruction {
	prompt := c.checkText(path+".choice.prompt", ch.Prompt)
	if len(ch.Options) == 0 {
		c.errf(path+".choice.options", "choice needs at least one option")
		return nil
	}

	targets := make([]Var, len(ch.Options))
	names := make([]string, len(ch.Options))
	for i := range ch.Options {
		targets[i] = c.alloc.Alloc(fmt.Sprintf("choice-arm %s.choice.options[%d]", path, i))
		names[i] = targets[i].Token()
	}

	out := []Instruction{{Text: fmt.Sprintf(tokChoice, prompt, strings.Join(names, ","))}}
	for i, opt := range ch.Options {
		label := c.checkText(fmt.Sprintf("%s.choice.options[%d].label", path, i), opt.Label)
		body := c.compileNodes(opt.Script, fmt.Sprintf("%s.choice.options[%d].script", path, i))
		out = append(out, Instruction{
			Text:  fmt.Sprintf(tokChoiceArm, targets[i].Token(), label),
			Block: true,
			Body:  body,
		})
	}
	return out
}

// compileMutate expands a resource mutation into the safe three-step
// read/apply/write form. The engine's direct-modify spelling corrupts the
// resource under some event timings, so the expansion is mandatory and
// its instruction count fixed per operation kind.
func (c *compilation) compileMutate(m *domain.Mutate, path string) []Instruction {
	if m.Resource != "money" {
		c.errf(path+".mutate.resource", "unsupported resource %q (only money)", m.Resource)
		return nil
	}
	if m.Amount < 0 {
		c.errf(path+".mutate.amount", "amount must be non-negative, got %d", m.Amount)
		return nil
	}

	v := c.alloc.Alloc("mutate " + path)
	read := Instruction{Text: fmt.Sprintf(tokAssign, v.Token(), tokMoney)}
	write := Instruction{Text: fmt.Sprintf(tokAssign, tokMoney, v.Token())}

	var apply Instruction
	switch m.Op {
	case domain.OpAdd:
		apply = Instruction{Text: fmt.Sprintf(tokAdd, v.Token(), m.Amount)}
	case domain.OpSub:
		apply = Instruction{Text: fmt.Sprintf(tokSub, v.Token(), m.Amount)}
	case domain.OpSet:
		apply = Instruction{Text: fmt.Sprintf(tokAssign, v.Token(), strconv.Itoa(m.Amount))}
	default:
		c.errf(path+".mutate.op", "unknown op %q (want set, add or sub)", m.Op)
		return nil
	}
	return []Instruction{read, apply, write}
}
