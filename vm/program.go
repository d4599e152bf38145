// This file is part of dsm - https://github.com/dsmachine/dsm
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

// Instruction is one decoded DSMAL instruction: an opcode plus its
// unsigned 16-bit parameter (zero and meaningless for opcodes that take
// none).
type Instruction struct {
	Op    Op
	Param uint16
}

// Program is the immutable compiled form of a DSMAL source string. It is
// normally produced by asm.Compile (via NewProgram) and is safe to share across
// goroutines and to instantiate into any number of concurrently-running
// Machines.
type Program struct {
	text         string
	varNames     []string
	varSlot      map[string]int
	constants    []*Value
	instructions []Instruction
}

// NewProgram assembles a Program from its already-validated parts. It is
// exported for the asm package (and any alternative compiler front end)
// to call; it performs no validation of its own beyond the invariant
// that Program always satisfies — the instruction table must be
// non-empty.
func NewProgram(text string, varNames []string, constants []*Value, instructions []Instruction) (*Program, error) {
	if len(instructions) == 0 {
		return nil, newError(InvalidProgram, "instruction section must not be empty")
	}
	slot := make(map[string]int, len(varNames))
	for i, name := range varNames {
		slot[name] = i
	}
	return &Program{
		text:         text,
		varNames:     append([]string(nil), varNames...),
		varSlot:      slot,
		constants:    constants,
		instructions: instructions,
	}, nil
}

// Text returns the original DSMAL source this Program was compiled from,
// enabling the round-trip serialization described in §6: re-compiling
// Text() reproduces an equivalent Program.
func (p *Program) Text() string { return p.text }

// Variables returns the program's variable names in declaration order.
func (p *Program) Variables() []string {
	return append([]string(nil), p.varNames...)
}

// VariableCount returns the number of declared variables.
func (p *Program) VariableCount() int { return len(p.varNames) }

// ConstantCount returns the number of declared constants.
func (p *Program) ConstantCount() int { return len(p.constants) }

// InstructionCount returns the number of compiled instructions.
func (p *Program) InstructionCount() int { return len(p.instructions) }

// InstructionAt returns the opcode and parameter at pc, for tooling that
// needs to disassemble or annotate a Program (e.g. a coverage report).
func (p *Program) InstructionAt(pc int) (Op, uint16) {
	instr := p.instructions[pc]
	return instr.Op, instr.Param
}

func (p *Program) slotOf(name string) (int, bool) {
	i, ok := p.varSlot[name]
	return i, ok
}
