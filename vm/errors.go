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
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the category of a DSM error, per the error taxonomy.
type Kind int

// The distinct error kinds a DSM program can raise.
const (
	// InvalidProgram marks a malformed DSMAL: bad section count, unknown
	// mnemonic, bad parameter, out-of-range slot reference, duplicate
	// variable name, or parameter overflow.
	InvalidProgram Kind = iota
	// InvalidValue marks a host-to-decimal conversion failure: parse
	// error or overflow/underflow on the literal.
	InvalidValue
	// UnknownVariable marks a reference to a variable name absent from
	// the program's variable map.
	UnknownVariable
	// OutOfBoundsPC marks a program counter at or past the end of the
	// instruction table at the start of a fetch.
	OutOfBoundsPC
	// StackUnderflow marks an opcode that needs more operands than the
	// stack currently holds.
	StackUnderflow
	// StackOverflow marks a push into a full operand stack.
	StackOverflow
	// OutOfSpace marks an arena that is still full after a collection.
	OutOfSpace
	// DivisionByZero marks Dv with a zero denominator.
	DivisionByZero
	// IllegalOperation marks an operation the decimal provider refuses,
	// such as raising zero to a negative power.
	IllegalOperation
	// Overflow marks an arithmetic result outside the decimal provider's
	// representable range.
	Overflow
	// Underflow marks an arithmetic result that rounded to zero or lost
	// significance beyond what the provider tolerates.
	Underflow
	// InternalConversion marks an unexpected failure while promoting an
	// integer fast value to its decimal form.
	InternalConversion
	// InstructionLimitExceeded marks a run that exhausted its
	// instruction budget before reaching Xx.
	InstructionLimitExceeded
	// RandomExhausted marks an Lr whose iterator had no more values.
	RandomExhausted
)

var kindNames = [...]string{
	InvalidProgram:           "InvalidProgram",
	InvalidValue:             "InvalidValue",
	UnknownVariable:          "UnknownVariable",
	OutOfBoundsPC:            "OutOfBoundsPC",
	StackUnderflow:           "StackUnderflow",
	StackOverflow:            "StackOverflow",
	OutOfSpace:               "OutOfSpace",
	DivisionByZero:           "DivisionByZero",
	IllegalOperation:         "IllegalOperation",
	Overflow:                 "Overflow",
	Underflow:                "Underflow",
	InternalConversion:       "InternalConversion",
	InstructionLimitExceeded: "InstructionLimitExceeded",
	RandomExhausted:          "RandomExhausted",
}

// String returns the error kind's name, e.g. "DivisionByZero".
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is the concrete error type returned by every exported function
// and method in vm and asm. PC and Op are only meaningful for errors
// raised during interpretation; PC is -1 and Op is empty otherwise.
type Error struct {
	Kind  Kind
	PC    int
	Op    string
	msg   string
	cause error
}

func (e *Error) Error() string {
	switch {
	case e.PC >= 0 && e.Op != "":
		return fmt.Sprintf("dsm: %s: %s (pc=%d, op=%s)", e.Kind, e.msg, e.PC, e.Op)
	case e.cause != nil:
		return fmt.Sprintf("dsm: %s: %s: %v", e.Kind, e.msg, e.cause)
	default:
		return fmt.Sprintf("dsm: %s: %s", e.Kind, e.msg)
	}
}

// Unwrap exposes the underlying cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, PC: -1, msg: msg}
}

func newErrorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, PC: -1, msg: fmt.Sprintf(format, args...)}
}

// NewError builds an *Error of the given Kind, for use by the asm package
// (and any alternative compiler front end) so that compile failures carry
// the same taxonomy as runtime failures.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return newErrorf(kind, format, args...)
}

func wrapError(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, PC: -1, msg: msg, cause: errors.WithStack(cause)}
}

// at annotates e with the pc/opcode of the instruction that raised it, as
// the interpreter's dispatch loop does before returning any error.
func (e *Error) at(pc int, op Op) *Error {
	e.PC = pc
	e.Op = op.Mnemonic()
	return e
}
