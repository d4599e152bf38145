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
	"strconv"
	"strings"

	"github.com/govalues/decimal"
)

// Value is a DSM decimal value. It carries two representations that may
// independently be valid: a 32-bit integer fast path and an
// arbitrary-precision decimal. At least one is valid whenever a Value is
// reachable from the stack or a variable slot. Values are never created
// directly by callers; they come from the interned digit table, a
// Program's constant table, or a Machine's arena.
type Value struct {
	fastValid bool
	fastInt   int32
	decValid  bool
	dec       decimal.Decimal
	str       string
	strValid  bool

	// marked is set during arena mark-and-sweep. It is meaningless (and
	// never inspected) on interned digits and program constants, which
	// live outside the arena's slice and are never swept.
	marked bool
	// next links a free arena slot into the arena's free list. Unused on
	// anything not owned by an arena.
	next *Value
}

func (v *Value) reset() {
	v.fastValid = false
	v.fastInt = 0
	v.decValid = false
	v.dec = decimal.Decimal{}
	v.str = ""
	v.strValid = false
	v.marked = false
}

// setFromString parses s as a decimal literal, populating the decimal
// form and, when the result is integral and fits in 32 bits, the integer
// form as well.
func (v *Value) setFromString(s string) error {
	dec, err := decimal.Parse(s)
	if err != nil {
		return wrapError(InvalidValue, err, "invalid decimal literal \""+s+"\"")
	}
	v.dec = dec
	v.decValid = true
	v.strValid = false
	if n, ok := int32FromDecimal(dec); ok {
		v.fastInt = n
		v.fastValid = true
	} else {
		v.fastValid = false
	}
	return nil
}

// setFromInt64 populates the integer fast form for values that fit in 32
// bits, and otherwise only the decimal form.
func (v *Value) setFromInt64(n int64) error {
	v.strValid = false
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		v.fastInt = int32(n)
		v.fastValid = true
		v.decValid = false
		return nil
	}
	dec, err := decimal.NewFromInt64(n, 0, 0)
	if err != nil {
		return wrapError(InvalidValue, err, "integer out of decimal range")
	}
	v.dec = dec
	v.decValid = true
	v.fastValid = false
	return nil
}

// ensureDecimalValid materializes the decimal form from the integer form
// if it is missing.
func (v *Value) ensureDecimalValid() error {
	if v.decValid {
		return nil
	}
	if !v.fastValid {
		return newError(InternalConversion, "value has neither representation")
	}
	dec, err := decimal.NewFromInt64(int64(v.fastInt), 0, 0)
	if err != nil {
		return wrapError(InternalConversion, err, "could not promote integer to decimal")
	}
	v.dec = dec
	v.decValid = true
	return nil
}

// int32FromDecimal reports whether dec is an integer representable in a
// signed 32-bit word, and returns it. It never inspects the provider's
// internal coefficient/scale representation, only its public,
// panic-free Round and Cmp methods.
func int32FromDecimal(dec decimal.Decimal) (int32, bool) {
	rounded := dec.Round(0)
	if rounded.Cmp(dec) != 0 {
		return 0, false
	}
	s := rounded.String()
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int32(n), true
}

// simplify normalizes v's decimal form in place: trailing fractional
// zeros are stripped, and if the result is a single-digit integer in
// -9..9 the caller should replace the reference with the corresponding
// interned digit (see internedDigit). Otherwise the integer fast value
// is refreshed if the simplified decimal now fits.
func (v *Value) simplify() error {
	if !v.decValid {
		return nil
	}
	s := v.dec.String()
	if strings.ContainsRune(s, '.') {
		trimmed := strings.TrimRight(s, "0")
		trimmed = strings.TrimSuffix(trimmed, ".")
		if trimmed == "" || trimmed == "-" {
			trimmed = "0"
		}
		if trimmed != s {
			reduced, err := decimal.Parse(trimmed)
			if err != nil {
				return wrapError(InternalConversion, err, "could not reduce decimal")
			}
			v.dec = reduced
			v.strValid = false
		}
	}
	if n, ok := int32FromDecimal(v.dec); ok {
		v.fastInt = n
		v.fastValid = true
	} else {
		v.fastValid = false
	}
	return nil
}

// isZero reports whether v is numerically zero.
func (v *Value) isZero() bool {
	if v.fastValid {
		return v.fastInt == 0
	}
	return v.dec.IsZero()
}

// isNegative reports whether v is numerically negative.
func (v *Value) isNegative() bool {
	if v.fastValid {
		return v.fastInt < 0
	}
	return v.dec.Sign() < 0
}

// isObviouslyOne reports whether v is exactly the value 1, cheaply.
func (v *Value) isObviouslyOne() bool {
	if v.fastValid {
		return v.fastInt == 1
	}
	return v.decValid && v.dec.Cmp(decimalOne) == 0
}

// isObviouslyTwo reports whether v is exactly the value 2, cheaply.
func (v *Value) isObviouslyTwo() bool {
	if v.fastValid {
		return v.fastInt == 2
	}
	return v.decValid && v.dec.Cmp(decimalTwo) == 0
}

// areObviouslyEqual reports whether a and b are cheaply known to be the
// same value, without invoking the decimal provider when both have a
// valid integer fast form.
func areObviouslyEqual(a, b *Value) bool {
	if a == b {
		return true
	}
	if a.fastValid && b.fastValid {
		return a.fastInt == b.fastInt
	}
	return false
}

// displayString returns v's canonical textual form, caching the result.
func (v *Value) displayString() string {
	if v.strValid {
		return v.str
	}
	var s string
	switch {
	case v.isZero():
		s = "0"
	case v.fastValid:
		s = strconv.FormatInt(int64(v.fastInt), 10)
	default:
		s = v.dec.String()
	}
	v.str = s
	v.strValid = true
	return s
}

// NewConstant parses s into a permanently-marked Value suitable for a
// Program's constant table. It lives outside any arena for the lifetime
// of the Program, exactly like an interned digit, and is shared read-only
// across every Machine instantiated from that Program — so its display
// string is precomputed here rather than cached lazily on first Get/Dump,
// which would otherwise race across concurrently running Machines.
func NewConstant(s string) (*Value, error) {
	v := &Value{}
	if err := v.setFromString(s); err != nil {
		return nil, err
	}
	if err := v.simplify(); err != nil {
		return nil, err
	}
	v.marked = true
	v.displayString()
	return v, nil
}

var (
	decimalZero = mustDecimalFromInt64(0)
	decimalOne  = mustDecimalFromInt64(1)
	decimalTwo  = mustDecimalFromInt64(2)
)

func mustDecimalFromInt64(n int64) decimal.Decimal {
	d, err := decimal.NewFromInt64(n, 0, 0)
	if err != nil {
		panic(err)
	}
	return d
}
