/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package compiler

// Instruction is one target-format operation. A block instruction opens a
// brace after its text and carries a nested body emitted one indentation
// level deeper; the emitter closes the brace at the opening depth. Body
// order is document order and is never rearranged.
type Instruction struct {
	Text  string
	Block bool
	Body  []Instruction
}

// Program is the complete instruction stream for one compiled event,
// starting at the source-file header line. Immutable once produced.
type Program struct {
	EventName    string
	Instructions []Instruction
}

// Count returns the total number of instructions including nested bodies.
// Closing braces are part of their block instruction, not counted.
func (p *Program) Count() int {
	return countInstr(p.Instructions)
}

func countInstr(ins []Instruction) int {
	n := len(ins)
	for _, in := range ins {
		n += countInstr(in.Body)
	}
	return n
}
