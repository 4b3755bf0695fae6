/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package compiler

import "fmt"

// Var is an allocator-issued scratch-variable handle. It renders as the
// engine's numbered variable token.
type Var int

// Token returns the engine spelling of the variable.
func (v Var) Token() string { return fmt.Sprintf(tokVar, int(v)) }

// Allocator issues scratch variables for one compilation unit. The target
// format has a flat, non-scoped variable space with no release, so the
// allocator is a monotonic counter: handles never repeat within a compile
// and the sequence is a pure function of allocation order, which keeps
// output byte-for-byte reproducible.
type Allocator struct {
	next  int
	hints []string
}

// Alloc issues the next handle. The hint is kept for troubleshooting only
// and has no effect on the handle.
func (a *Allocator) Alloc(hint string) Var {
	v := Var(a.next)
	a.next++
	a.hints = append(a.hints, hint)
	return v
}

// Count returns how many variables have been issued.
func (a *Allocator) Count() int { return a.next }

// Hints returns the allocation hints in issue order.
func (a *Allocator) Hints() []string { return append([]string(nil), a.hints...) }
