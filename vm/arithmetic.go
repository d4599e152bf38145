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

import (
	"math"

	"github.com/govalues/decimal"
)

// materializeInt wraps an int64 arithmetic result in the cheapest
// possible representation: an interned digit, a fast-path-only arena
// value, or (only if it doesn't fit 32 bits) a decimal-backed arena
// value — without ever invoking the decimal library's arithmetic.
func (m *Machine) materializeInt(n int64, roots ...*Value) (*Value, error) {
	if n >= -9 && n <= 9 {
		return internedDigit(int32(n)), nil
	}
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		v, err := m.allocate(roots...)
		if err != nil {
			return nil, err
		}
		v.fastInt = int32(n)
		v.fastValid = true
		return v, nil
	}
	v, err := m.allocate(roots...)
	if err != nil {
		return nil, err
	}
	if err := v.setFromInt64(n); err != nil {
		return nil, err
	}
	return v, nil
}

// materializeDecimal writes dec into a fresh arena value, simplifies it,
// and promotes it to an interned digit when simplification reduces it to
// a single digit in -9..9.
func (m *Machine) materializeDecimal(dec decimal.Decimal, roots ...*Value) (*Value, error) {
	v, err := m.allocate(roots...)
	if err != nil {
		return nil, err
	}
	v.dec = dec
	v.decValid = true
	v.strValid = false
	if err := v.simplify(); err != nil {
		return nil, err
	}
	if v.fastValid {
		if d := internedDigit(v.fastInt); d != nil {
			return d, nil
		}
	}
	return v, nil
}

// classifyArithError maps a decimal-provider failure to a DSM error kind
// based on which opcode produced it: Dv failures are always a division
// by zero, Pw failures are an illegal base/exponent combination, and
// Ad/Sb/Ml failures are an out-of-range result (the provider's own error
// policy never returns an Add/Sub/Mul/Quo error except for these two
// cases, per its documented Error Handling section).
func classifyArithError(op Op) Kind {
	switch op {
	case OpDivide:
		return DivisionByZero
	case OpPower:
		return IllegalOperation
	default:
		return Overflow
	}
}

func (m *Machine) addSubMul(op Op, a, b *Value) (*Value, error) {
	if a.fastValid && b.fastValid {
		var r int64
		switch op {
		case OpAdd:
			r = int64(a.fastInt) + int64(b.fastInt)
		case OpSubtract:
			r = int64(a.fastInt) - int64(b.fastInt)
		case OpMultiply:
			r = int64(a.fastInt) * int64(b.fastInt)
		}
		return m.materializeInt(r, a, b)
	}
	if err := a.ensureDecimalValid(); err != nil {
		return nil, err
	}
	if err := b.ensureDecimalValid(); err != nil {
		return nil, err
	}
	var dec decimal.Decimal
	var err error
	switch op {
	case OpAdd:
		dec, err = a.dec.Add(b.dec)
	case OpSubtract:
		dec, err = a.dec.Sub(b.dec)
	case OpMultiply:
		dec, err = a.dec.Mul(b.dec)
	}
	if err != nil {
		return nil, wrapError(classifyArithError(op), err, "decimal "+op.Mnemonic()+" failed")
	}
	return m.materializeDecimal(dec, a, b)
}

func (m *Machine) divide(a, b *Value) (*Value, error) {
	if err := a.ensureDecimalValid(); err != nil {
		return nil, err
	}
	if err := b.ensureDecimalValid(); err != nil {
		return nil, err
	}
	dec, err := a.dec.Quo(b.dec)
	if err != nil {
		return nil, wrapError(DivisionByZero, err, "division failed")
	}
	return m.materializeDecimal(dec, a, b)
}

func (m *Machine) power(a, b *Value) (*Value, error) {
	if err := a.ensureDecimalValid(); err != nil {
		return nil, err
	}
	if err := b.ensureDecimalValid(); err != nil {
		return nil, err
	}
	dec, err := a.dec.Pow(b.dec)
	if err != nil {
		return nil, wrapError(IllegalOperation, err, "illegal power")
	}
	return m.materializeDecimal(dec, a, b)
}

func (m *Machine) negate(v *Value) (*Value, error) {
	if v.fastValid && v.fastInt != math.MinInt32 {
		return m.materializeInt(-int64(v.fastInt), v)
	}
	if err := v.ensureDecimalValid(); err != nil {
		return nil, err
	}
	return m.materializeDecimal(v.dec.Neg(), v)
}

func (m *Machine) absolute(v *Value) (*Value, error) {
	if !v.isNegative() {
		return v, nil
	}
	return m.negate(v)
}

func (m *Machine) roundOp(op Op, v *Value) (*Value, error) {
	if v.fastValid {
		return v, nil
	}
	if err := v.ensureDecimalValid(); err != nil {
		return nil, err
	}
	var dec decimal.Decimal
	switch op {
	case OpCeiling:
		dec = v.dec.Ceil(0)
	case OpFloor:
		dec = v.dec.Floor(0)
	case OpRound:
		dec = v.dec.Round(0)
	}
	return m.materializeDecimal(dec, v)
}

// compare returns -1, 0, or 1, taking the int32 fast path when both
// operands have one.
func (m *Machine) compare(a, b *Value) (int, error) {
	if a.fastValid && b.fastValid {
		switch {
		case a.fastInt < b.fastInt:
			return -1, nil
		case a.fastInt > b.fastInt:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if err := a.ensureDecimalValid(); err != nil {
		return 0, err
	}
	if err := b.ensureDecimalValid(); err != nil {
		return 0, err
	}
	return a.dec.Cmp(b.dec), nil
}
