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

func (m *Machine) push(v *Value) error {
	if m.stackUsed >= StackCapacity {
		return newError(StackOverflow, "operand stack is full")
	}
	m.stack[m.stackUsed] = v
	m.stackUsed++
	return nil
}

func (m *Machine) pop() *Value {
	m.stackUsed--
	v := m.stack[m.stackUsed]
	m.stack[m.stackUsed] = nil
	return v
}

func (m *Machine) peek() *Value {
	return m.stack[m.stackUsed-1]
}

// Run executes the program from instruction 0 until Xx halts it or an
// error occurs, returning the number of instructions executed. The
// operand stack is always cleared before Run returns, whether or not it
// succeeded; variables keep whatever state they held at the moment of
// failure (§7).
func (m *Machine) Run() (int, error) {
	executed, _, err := m.run(false)
	return executed, err
}

// RunWithCoverage behaves like Run but also returns a per-instruction
// slice recording which instructions were reached, for the coverage
// tooling described in §6.
func (m *Machine) RunWithCoverage() ([]bool, error) {
	_, coverage, err := m.run(true)
	return coverage, err
}

func (m *Machine) run(trackCoverage bool) (executed int, coverage []bool, err error) {
	defer func() { m.stackUsed = 0 }()

	instrs := m.program.instructions
	count := len(instrs)
	if trackCoverage {
		coverage = make([]bool, count)
	}

	pc := 0
	prevPC, prevOp := -1, OpExit
	for {
		if pc < 0 || pc >= count {
			e := newErrorf(OutOfBoundsPC, "pc %d is out of bounds (0..%d)", pc, count-1)
			if prevPC >= 0 {
				e = e.at(prevPC, prevOp)
			}
			return executed, coverage, e
		}
		instr := instrs[pc]
		if executed >= m.instructionLimit {
			return executed, coverage, newErrorf(InstructionLimitExceeded, "execution halted after %d instructions", executed).at(pc, instr.Op)
		}
		if m.stackUsed < instr.Op.Operands() {
			return executed, coverage, newErrorf(StackUnderflow, "%s requires %d operand(s), have %d",
				instr.Op.Mnemonic(), instr.Op.Operands(), m.stackUsed).at(pc, instr.Op)
		}
		if trackCoverage {
			coverage[pc] = true
		}
		executed++

		next, err := m.dispatch(pc, instr)
		if err != nil {
			if de, ok := err.(*Error); ok {
				return executed, coverage, de.at(pc, instr.Op)
			}
			return executed, coverage, err
		}
		if next < 0 {
			return executed, coverage, nil
		}
		prevPC, prevOp = pc, instr.Op
		pc = next
	}
}

// dispatch executes one instruction and returns the next pc, or a
// negative value if the instruction halted the machine (Xx). Jump
// targets are validated lazily: an out-of-bounds target is only
// discovered the next time around run's loop, which reports it as
// OutOfBoundsPC at the jump's own pc.
func (m *Machine) dispatch(pc int, instr Instruction) (int, error) {
	switch instr.Op {
	case OpExit:
		return -1, nil

	case OpJumpUnconditional:
		return int(instr.Param), nil

	case OpJumpIfNonZero:
		a := m.pop()
		if !a.isZero() {
			return int(instr.Param), nil
		}
		return pc + 1, nil

	case OpJumpIfZero:
		a := m.pop()
		if a.isZero() {
			return int(instr.Param), nil
		}
		return pc + 1, nil

	case OpLoadConstant:
		if err := m.push(m.program.constants[instr.Param]); err != nil {
			return 0, err
		}
		return pc + 1, nil

	case OpLoadVariable:
		if err := m.push(m.vars[instr.Param]); err != nil {
			return 0, err
		}
		return pc + 1, nil

	case OpLoadRandom:
		v, err := m.loadRandom()
		if err != nil {
			return 0, err
		}
		if err := m.push(v); err != nil {
			return 0, err
		}
		return pc + 1, nil

	case OpLoadZero:
		if err := m.push(internedZero()); err != nil {
			return 0, err
		}
		return pc + 1, nil

	case OpLoadOne:
		if err := m.push(internedOne()); err != nil {
			return 0, err
		}
		return pc + 1, nil

	case OpSetVariable:
		m.vars[instr.Param] = m.pop()
		return pc + 1, nil

	case OpCopy:
		if err := m.push(m.peek()); err != nil {
			return 0, err
		}
		return pc + 1, nil

	case OpPop:
		m.pop()
		return pc + 1, nil

	case OpNot:
		a := m.pop()
		if a.isZero() {
			return pc + 1, m.push(internedOne())
		}
		return pc + 1, m.push(internedZero())

	case OpNegate:
		a := m.pop()
		v, err := m.negate(a)
		if err != nil {
			return 0, err
		}
		return pc + 1, m.push(v)

	case OpAbsolute:
		a := m.pop()
		v, err := m.absolute(a)
		if err != nil {
			return 0, err
		}
		return pc + 1, m.push(v)

	case OpCeiling, OpFloor, OpRound:
		a := m.pop()
		v, err := m.roundOp(instr.Op, a)
		if err != nil {
			return 0, err
		}
		return pc + 1, m.push(v)

	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqual:
		b, a := m.pop(), m.pop()
		cmp, err := m.compare(a, b)
		if err != nil {
			return 0, err
		}
		result := false
		switch instr.Op {
		case OpEqual:
			result = cmp == 0
		case OpNotEqual:
			result = cmp != 0
		case OpGreaterThan:
			result = cmp > 0
		case OpGreaterThanOrEqual:
			result = cmp >= 0
		}
		if result {
			return pc + 1, m.push(internedOne())
		}
		return pc + 1, m.push(internedZero())

	case OpMin, OpMax:
		b, a := m.pop(), m.pop()
		cmp, err := m.compare(a, b)
		if err != nil {
			return 0, err
		}
		if instr.Op == OpMin {
			if cmp < 0 {
				return pc + 1, m.push(a)
			}
			return pc + 1, m.push(b)
		}
		if cmp > 0 {
			return pc + 1, m.push(a)
		}
		return pc + 1, m.push(b)

	case OpAdd:
		b, a := m.pop(), m.pop()
		v, err := m.add(a, b)
		if err != nil {
			return 0, err
		}
		return pc + 1, m.push(v)

	case OpSubtract:
		b, a := m.pop(), m.pop()
		v, err := m.subtract(a, b)
		if err != nil {
			return 0, err
		}
		return pc + 1, m.push(v)

	case OpMultiply:
		b, a := m.pop(), m.pop()
		v, err := m.multiply(a, b)
		if err != nil {
			return 0, err
		}
		return pc + 1, m.push(v)

	case OpDivide:
		b, a := m.pop(), m.pop()
		v, err := m.dividePath(a, b)
		if err != nil {
			return 0, err
		}
		return pc + 1, m.push(v)

	case OpPower:
		b, a := m.pop(), m.pop()
		v, err := m.powerPath(a, b)
		if err != nil {
			return 0, err
		}
		return pc + 1, m.push(v)

	default:
		return 0, newErrorf(InvalidProgram, "unimplemented opcode %s", instr.Op.Mnemonic())
	}
}

func (m *Machine) loadRandom() (*Value, error) {
	if !m.randomResolved {
		if m.random == nil {
			m.random = defaultRandomIterator()
		}
		m.randomResolved = true
	}
	if m.random == nil {
		return internedZero(), nil
	}
	hv, ok := m.random.Next()
	if !ok {
		return nil, newError(RandomExhausted, "random iterator exhausted")
	}
	return hv.toValue(m.allocate0)
}

// add implements Ad, including its algebraic short-circuits (§4.G):
// a+0 → a, 0+b → b, otherwise the fast-path-or-decimal sum.
func (m *Machine) add(a, b *Value) (*Value, error) {
	if b.isZero() {
		return a, nil
	}
	if a.isZero() {
		return b, nil
	}
	return m.addSubMul(OpAdd, a, b)
}

// subtract implements Sb: a-0 → a, 0-b → -b (via negate), a-a → 0 when
// cheaply provable equal, otherwise the fast-path-or-decimal difference.
func (m *Machine) subtract(a, b *Value) (*Value, error) {
	if b.isZero() {
		return a, nil
	}
	if a.isZero() {
		return m.negate(b)
	}
	if areObviouslyEqual(a, b) {
		return internedZero(), nil
	}
	return m.addSubMul(OpSubtract, a, b)
}

// multiply implements Ml: either operand zero collapses to zero (both
// operands discarded), 1×b → b, a×1 → a, otherwise the
// fast-path-or-decimal product.
func (m *Machine) multiply(a, b *Value) (*Value, error) {
	if a.isZero() || b.isZero() {
		return internedZero(), nil
	}
	if a.isObviouslyOne() {
		return b, nil
	}
	if b.isObviouslyOne() {
		return a, nil
	}
	return m.addSubMul(OpMultiply, a, b)
}

// dividePath implements Dv. Division never takes the int32 fast path;
// only its short-circuits do.
func (m *Machine) dividePath(a, b *Value) (*Value, error) {
	if b.isZero() {
		return nil, newError(DivisionByZero, "division by zero")
	}
	if b.isObviouslyOne() {
		return a, nil
	}
	if a.isZero() {
		return internedZero(), nil
	}
	if areObviouslyEqual(a, b) {
		return internedOne(), nil
	}
	return m.divide(a, b)
}

// powerPath implements Pw. Power never takes the int32 fast path; only
// its short-circuits do. a^2 re-enters multiply so a×a benefits from
// Ml's own fast path and short-circuits.
func (m *Machine) powerPath(a, b *Value) (*Value, error) {
	if b.isObviouslyOne() {
		return a, nil
	}
	if b.isZero() {
		if a.isZero() {
			return internedZero(), nil
		}
		return internedOne(), nil
	}
	if b.isObviouslyTwo() {
		return m.multiply(a, a)
	}
	if a.isObviouslyOne() {
		return internedOne(), nil
	}
	if a.isZero() && b.isNegative() {
		return nil, newError(IllegalOperation, "zero raised to a negative power")
	}
	return m.power(a, b)
}
