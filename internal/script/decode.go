/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script is the document front-end: it decodes a YAML event
// description into the typed domain.EventDocument the compiler consumes.
// Structural problems surface as diagnostics with document paths, in the
// same shape the compiler itself reports.
package script

import (
	"fmt"
	"regexp"
	"strings"

	"dxeventgen/internal/domain"

	"gopkg.in/yaml.v3"
)

// Comparison form: operand operator value, e.g. "money >= 100" or
// "gender == Male". Operand names are validated by the compiler, not here.
var reCompare = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(==|!=|<=|>=|<|>)\s*(.+?)\s*$`)

type rawDoc struct {
	EventName string     `yaml:"event_name"`
	Once      *bool      `yaml:"once"`
	Trigger   rawTrigger `yaml:"trigger"`
	Script    []rawNode  `yaml:"script"`
}

type rawTrigger struct {
	Town       string         `yaml:"town"`
	Facility   string         `yaml:"facility"`
	Conditions []rawCondition `yaml:"conditions"`
}

type rawNode struct {
	Narration *string        `yaml:"narration"`
	HeroThink *string        `yaml:"hero_think"`
	Say       *rawSay        `yaml:"say"`
	RenameSay *rawRenameSay  `yaml:"rename_say"`
	Choice    *rawChoice     `yaml:"choice"`
	Mutate    *domain.Mutate `yaml:"mutate"`
	Branch    *rawBranch     `yaml:"branch"`
}

type rawSay struct {
	Speaker  string `yaml:"speaker"`
	Listener string `yaml:"listener"`
	Text     string `yaml:"text"`
}

type rawRenameSay struct {
	Speaker  string `yaml:"speaker"`
	Listener string `yaml:"listener"`
	Surname  string `yaml:"surname"`
	Name     string `yaml:"name"`
	Text     string `yaml:"text"`
}

type rawChoice struct {
	Prompt  string      `yaml:"prompt"`
	Options []rawOption `yaml:"options"`
}

type rawOption struct {
	Label  string    `yaml:"label"`
	Script []rawNode `yaml:"script"`
}

type rawBranch struct {
	If   rawCondition `yaml:"if"`
	Then []rawNode    `yaml:"then"`
	Else []rawNode    `yaml:"else"`
}

// rawCondition is either a comparison string or an all:/any: mapping.
type rawCondition struct {
	Expr string
	All  []rawCondition
	Any  []rawCondition
}

func (c *rawCondition) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		c.Expr = n.Value
		return nil
	case yaml.MappingNode:
		var m struct {
			All []rawCondition `yaml:"all"`
			Any []rawCondition `yaml:"any"`
		}
		if err := n.Decode(&m); err != nil {
			return err
		}
		c.All, c.Any = m.All, m.Any
		return nil
	default:
		return fmt.Errorf("line %d: condition must be a comparison string or an all/any mapping", n.Line)
	}
}

// Decode parses a YAML event description into a typed EventDocument.
// The raw shape is checked against the embedded document schema first, so
// unknown node keys and malformed records are reported with their paths
// before any field is trusted. A non-empty diagnostic slice means the
// returned document must not be compiled.
func Decode(data []byte) (domain.EventDocument, []domain.Diagnostic) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return domain.EventDocument{}, []domain.Diagnostic{{Message: fmt.Sprintf("invalid yaml: %v", err)}}
	}
	diags, err := domain.ValidateShape(generic)
	if err != nil {
		return domain.EventDocument{}, []domain.Diagnostic{{Message: err.Error()}}
	}
	if len(diags) > 0 {
		return domain.EventDocument{}, diags
	}

	var raw rawDoc
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.EventDocument{}, []domain.Diagnostic{{Message: fmt.Sprintf("invalid yaml: %v", err)}}
	}

	d := &decoder{}
	doc := domain.EventDocument{
		Name: raw.EventName,
		Once: true, // authored events fire once unless said otherwise
		Trigger: domain.Trigger{
			Town:     raw.Trigger.Town,
			Facility: raw.Trigger.Facility,
		},
	}
	if raw.Once != nil {
		doc.Once = *raw.Once
	}
	for i, rc := range raw.Trigger.Conditions {
		doc.Trigger.Conditions = append(doc.Trigger.Conditions, d.condition(rc, fmt.Sprintf("trigger.conditions[%d]", i)))
	}
	doc.Script = d.nodes(raw.Script, "script")
	return doc, d.diags
}

type decoder struct {
	diags []domain.Diagnostic
}

func (d *decoder) errf(path, format string, args ...any) {
	d.diags = append(d.diags, domain.Diagnostic{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (d *decoder) nodes(raw []rawNode, path string) []domain.Node {
	out := make([]domain.Node, 0, len(raw))
	for i, rn := range raw {
		out = append(out, d.node(rn, fmt.Sprintf("%s[%d]", path, i)))
	}
	return out
}

func (d *decoder) node(rn rawNode, path string) domain.Node {
	switch {
	case rn.Narration != nil:
		return domain.Node{Narration: &domain.Narration{Text: *rn.Narration}}
	case rn.HeroThink != nil:
		return domain.Node{HeroThink: &domain.HeroThink{Text: *rn.HeroThink}}
	case rn.Say != nil:
		return domain.Node{Say: &domain.Say{Speaker: rn.Say.Speaker, Listener: rn.Say.Listener, Text: rn.Say.Text}}
	case rn.RenameSay != nil:
		rs := rn.RenameSay
		return domain.Node{RenameSay: &domain.RenameSay{
			Speaker: rs.Speaker, Listener: rs.Listener,
			Surname: rs.Surname, Name: rs.Name, Text: rs.Text,
		}}
	case rn.Choice != nil:
		ch := &domain.Choice{Prompt: rn.Choice.Prompt}
		for i, opt := range rn.Choice.Options {
			ch.Options = append(ch.Options, domain.Option{
				Label:  opt.Label,
				Script: d.nodes(opt.Script, fmt.Sprintf("%s.choice.options[%d].script", path, i)),
			})
		}
		return domain.Node{Choice: ch}
	case rn.Mutate != nil:
		m := *rn.Mutate
		return domain.Node{Mutate: &m}
	case rn.Branch != nil:
		br := &domain.Branch{
			If:   d.condition(rn.Branch.If, path+".branch.if"),
			Then: d.nodes(rn.Branch.Then, path+".branch.then"),
			Else: d.nodes(rn.Branch.Else, path+".branch.else"),
		}
		return domain.Node{Branch: br}
	}
	// schema enforces exactly one variant; reaching here means the two
	// decodes disagreed
	d.errf(path, "unrecognized script node")
	return domain.Node{}
}

func (d *decoder) condition(rc rawCondition, path string) domain.Condition {
	switch {
	case rc.Expr != "":
		m := reCompare.FindStringSubmatch(rc.Expr)
		if m == nil {
			d.errf(path, "malformed comparison %q (want: operand operator value)", rc.Expr)
			return domain.Condition{}
		}
		return domain.Condition{Compare: &domain.Compare{
			Operand: m[1],
			Op:      m[2],
			Value:   strings.TrimSpace(m[3]),
		}}
	case rc.All != nil:
		out := make([]domain.Condition, 0, len(rc.All))
		for i, sub := range rc.All {
			out = append(out, d.condition(sub, fmt.Sprintf("%s.all[%d]", path, i)))
		}
		return domain.Condition{All: out}
	case rc.Any != nil:
		out := make([]domain.Condition, 0, len(rc.Any))
		for i, sub := range rc.Any {
			out = append(out, d.condition(sub, fmt.Sprintf("%s.any[%d]", path, i)))
		}
		return domain.Condition{Any: out}
	}
	d.errf(path, "empty condition")
	return domain.Condition{}
}
