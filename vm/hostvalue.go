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

import "fmt"

type hostKind int

const (
	hostBool hostKind = iota
	hostInt
	hostText
)

// HostValue is the small, closed enumeration embedders use to hand
// values into a Machine, for variable assignment and for the values
// pulled from a RandomIterator. See §9: booleans and integers get direct
// fast paths, everything else is converted through its textual form.
type HostValue struct {
	kind hostKind
	b    bool
	i    int64
	s    string
}

// Bool wraps a boolean host value.
func Bool(b bool) HostValue { return HostValue{kind: hostBool, b: b} }

// Int wraps an integer host value. Values outside ±2^31-1 still convert
// correctly; they simply skip the 32-bit fast path.
func Int(i int64) HostValue { return HostValue{kind: hostInt, i: i} }

// Text wraps any other host value by its textual form, parsed as a
// decimal literal.
func Text(s string) HostValue { return HostValue{kind: hostText, s: s} }

// Stringer lets a caller hand in any fmt.Stringer and have it converted
// via its String method, matching the "anything else, stringify it"
// fallback of §9.
func Stringer(v fmt.Stringer) HostValue { return Text(v.String()) }

func (h HostValue) toValue(alloc func() (*Value, error)) (*Value, error) {
	switch h.kind {
	case hostBool:
		if h.b {
			return internedOne(), nil
		}
		return internedZero(), nil
	case hostInt:
		if d := internedDigit(int32FromInt64Clamped(h.i)); d != nil && int64(d.fastInt) == h.i {
			return d, nil
		}
		v, err := alloc()
		if err != nil {
			return nil, err
		}
		if err := v.setFromInt64(h.i); err != nil {
			return nil, err
		}
		return v, nil
	default:
		v, err := alloc()
		if err != nil {
			return nil, err
		}
		if err := v.setFromString(h.s); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func int32FromInt64Clamped(i int64) int32 {
	if i < -9 || i > 9 {
		return -100
	}
	return int32(i)
}
