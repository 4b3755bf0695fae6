/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package compiler

import (
	"fmt"
	"strconv"

	"dxeventgen/internal/domain"
)

// renderCompare turns one comparison into its engine expression, e.g.
// 性別==男性 or 所持金>=100. Type rules: enum operands (gender, faction)
// take equality operators and a registered identifier; numeric operands
// (money, time) take ordering operators and a non-negative literal.
// Violations become diagnostics and the empty string is returned.
func (c *compilation) renderCompare(cmp *domain.Compare, path string) (string, bool) {
	spec, ok := operands[cmp.Operand]
	if !ok {
		c.errf(path, "unknown condition operand %q (want gender, faction, money or time)", cmp.Operand)
		return "", false
	}
	if spec.category != "" {
		if !equalityOps[cmp.Op] {
			c.errf(path, "operand %s supports == and != only, got %q", cmp.Operand, cmp.Op)
			return "", false
		}
		token, miss := c.resolver.Resolve(spec.category, cmp.Value)
		if miss != nil {
			c.miss(path+".value", miss)
			return "", false
		}
		return spec.token + cmp.Op + token, true
	}
	if !orderingOps[cmp.Op] {
		c.errf(path, "unknown operator %q", cmp.Op)
		return "", false
	}
	n, err := strconv.Atoi(cmp.Value)
	if err != nil || n < 0 {
		c.errf(path, "operand %s needs a non-negative integer, got %q", cmp.Operand, cmp.Value)
		return "", false
	}
	if spec.maxValue >= 0 && n > spec.maxValue {
		c.errf(path, "operand %s value %d out of range (max %d)", cmp.Operand, n, spec.maxValue)
		return "", false
	}
	return spec.token + cmp.Op + strconv.Itoa(n), true
}

// guards wraps inner so it executes exactly when cond holds. Left-to-right
// authored order is preserved: AND nests guards with inner innermost, OR
// lowers through a fresh flag variable with each later alternative wrapped
// in a not-yet-set check so the first passing guard short-circuits the
// rest.
func (c *compilation) guards(cond domain.Condition, path string, inner []Instruction) []Instruction {
	switch {
	case cond.Compare != nil:
		expr, ok := c.renderCompare(cond.Compare, path)
		if !ok {
			return nil
		}
		return []Instruction{{Text: fmt.Sprintf(tokGuard, expr), Block: true, Body: inner}}
	case cond.All != nil:
		out := inner
		for i := len(cond.All) - 1; i >= 0; i-- {
			out = c.guards(cond.All[i], fmt.Sprintf("%s.all[%d]", path, i), out)
		}
		return out
	case cond.Any != nil:
		flag := c.alloc.Alloc("or-flag " + path)
		setFlag := []Instruction{{Text: fmt.Sprintf(tokAssign, flag.Token(), "1")}}
		out := []Instruction{{Text: fmt.Sprintf(tokAssign, flag.Token(), "0")}}
		for i, alt := range cond.Any {
			g := c.guards(alt, fmt.Sprintf("%s.any[%d]", path, i), setFlag)
			if i == 0 {
				out = append(out, g...)
				continue
			}
			out = append(out, Instruction{
				Text:  fmt.Sprintf(tokGuard, flag.Token()+"==0"),
				Block: true,
				Body:  g,
			})
		}
		out = append(out, Instruction{
			Text:  fmt.Sprintf(tokGuard, flag.Token()+"==1"),
			Block: true,
			Body:  inner,
		})
		return out
	}
	c.errf(path, "empty condition")
	return nil
}

// compileBranch lowers a condition branch. A leaf comparison renders
// directly as a guard; composites route through a flag variable so the
// then/else blocks appear exactly once.
func (c *compilation) compileBranch(br *domain.Branch, path string) []Instruction {
	then := c.compileNodes(br.Then, path+".branch.then")
	var els []Instruction
	if len(br.Else) > 0 {
		els = c.compileNodes(br.Else, path+".branch.else")
	}

	var out []Instruction
	if br.If.Compare != nil {
		expr, ok := c.renderCompare(br.If.Compare, path+".branch.if")
		if !ok {
			return nil
		}
		out = append(out, Instruction{Text: fmt.Sprintf(tokGuard, expr), Block: true, Body: then})
	} else {
		flag := c.alloc.Alloc("branch-flag " + path)
		out = append(out, Instruction{Text: fmt.Sprintf(tokAssign, flag.Token(), "0")})
		out = append(out, c.guards(br.If, path+".branch.if", []Instruction{
			{Text: fmt.Sprintf(tokAssign, flag.Token(), "1")},
		})...)
		out = append(out, Instruction{
			Text:  fmt.Sprintf(tokGuard, flag.Token()+"==1"),
			Block: true,
			Body:  then,
		})
	}
	if len(br.Else) > 0 {
		out = append(out, Instruction{Text: tokElse, Block: true, Body: els})
	}
	return out
}

// compileTriggerConditions fills the 發生條件 block. Trigger conditions
// are declarative engine lines, so only comparisons and flattened all-
// groups are representable there; an any-group needs runtime control flow
// the trigger block does not have.
func (c *compilation) compileTriggerConditions(conds []domain.Condition) []Instruction {
	var out []Instruction
	var walk func(cond domain.Condition, path string)
	walk = func(cond domain.Condition, path string) {
		switch {
		case cond.Compare != nil:
			if expr, ok := c.renderCompare(cond.Compare, path); ok {
				out = append(out, Instruction{Text: expr})
			}
		case cond.All != nil:
			for i, sub := range cond.All {
				walk(sub, fmt.Sprintf("%s.all[%d]", path, i))
			}
		case cond.Any != nil:
			c.errf(path, "or-conditions are not supported in the trigger; split the event instead")
		default:
			c.errf(path, "empty condition")
		}
	}
	for i, cond := range conds {
		walk(cond, fmt.Sprintf("trigger.conditions[%d]", i))
	}
	return out
}
