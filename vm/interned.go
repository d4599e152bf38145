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

// internedDigits holds one permanently-marked Value for every integer in
// -9..9. They live outside any arena, are built once at package
// initialization with every representation (fast, decimal, and display
// string) already materialized, and are never mutated afterwards — so
// that concurrent Machines sharing this table (spec §5) never race on a
// lazily-populated cache. The collector treats marking them as a safe
// no-op because it only ever sweeps an arena's own slice.
var internedDigits [19]Value

func init() {
	for n := -9; n <= 9; n++ {
		v := &internedDigits[n+9]
		v.fastValid = true
		v.fastInt = int32(n)
		v.dec = mustDecimalFromInt64(int64(n))
		v.decValid = true
		v.marked = true
		if n == 0 {
			v.str, v.strValid = "0", true
		} else {
			v.str, v.strValid = formatInternedDigit(n), true
		}
	}
}

func formatInternedDigit(n int) string {
	if n >= 0 {
		return string(rune('0' + n))
	}
	return "-" + string(rune('0'+(-n)))
}

// internedDigit returns the permanent Value for n, or nil if n is outside
// -9..9.
func internedDigit(n int32) *Value {
	if n < -9 || n > 9 {
		return nil
	}
	return &internedDigits[n+9]
}

// internedZero and internedOne are used pervasively enough by the
// interpreter (Lz, Lo, Nt, comparisons, algebraic short-circuits) to
// warrant direct accessors.
func internedZero() *Value { return &internedDigits[9] }
func internedOne() *Value  { return &internedDigits[10] }
