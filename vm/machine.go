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
	"io"
)

// DefaultInstructionLimit is the instruction budget a new Machine starts
// with, per §3.
const DefaultInstructionLimit = 10000

// Machine holds one execution's worth of mutable state for a Program: its
// operand stack, value arena, current and baseline variable vectors, and
// run controls. A Machine is single-threaded and cooperative — Run and
// RunWithCoverage are synchronous calls that never suspend (§5).
type Machine struct {
	program *Program
	arena   *arena

	stack     [StackCapacity]*Value
	stackUsed int

	// vars is sized 2*VariableCount: [0:n) is current, [n:2n) is
	// baseline.
	vars []*Value

	instructionLimit int
	random           RandomIterator
	randomResolved   bool
}

// MachineOption configures a Machine at construction time, mirroring the
// teacher's functional-options pattern (vm.Option in the teacher's
// package) generalized to this domain.
type MachineOption func(*Machine)

// WithInstructionLimit overrides DefaultInstructionLimit.
func WithInstructionLimit(n int) MachineOption {
	return func(m *Machine) { m.instructionLimit = n }
}

// WithRandomIterator sets the Machine's random source, taking precedence
// over any process-wide default.
func WithRandomIterator(it RandomIterator) MachineOption {
	return func(m *Machine) { m.random = it }
}

// NewMachine builds a Machine from p, setting every current and baseline
// slot to the interned zero, applying initial over the current slots,
// and then copying current into baseline so that baseline becomes part
// of the GC root set from this point on.
func (p *Program) NewMachine(initial map[string]HostValue, opts ...MachineOption) (*Machine, error) {
	n := len(p.varNames)
	m := &Machine{
		program:          p,
		arena:            newArena(ArenaCapacity),
		vars:             make([]*Value, 2*n),
		instructionLimit: DefaultInstructionLimit,
	}
	for i := range m.vars {
		m.vars[i] = internedZero()
	}
	for name, hv := range initial {
		if err := m.assignCurrent(name, hv); err != nil {
			return nil, err
		}
	}
	copy(m.vars[n:2*n], m.vars[:n])
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Program returns the Program this Machine was instantiated from.
func (m *Machine) Program() *Program { return m.program }

// SetInstructionLimit changes the per-run instruction budget.
func (m *Machine) SetInstructionLimit(n int) { m.instructionLimit = n }

// SetRandomIterator installs the Machine's random source, taking
// precedence over the process-wide default for every subsequent Lr.
func (m *Machine) SetRandomIterator(it RandomIterator) {
	m.random = it
	m.randomResolved = false
}

// Reset copies baseline back into current, then applies overrides onto
// current; baseline itself is left untouched. It returns m together with
// the first error from applying an override, if any.
func (m *Machine) Reset(overrides map[string]HostValue) (*Machine, error) {
	n := len(m.program.varNames)
	copy(m.vars[:n], m.vars[n:2*n])
	for name, hv := range overrides {
		if err := m.assignCurrent(name, hv); err != nil {
			return m, err
		}
	}
	return m, nil
}

// Set assigns a host value to the named current variable. It does not
// affect the variable's baseline.
func (m *Machine) Set(name string, hv HostValue) error {
	return m.assignCurrent(name, hv)
}

func (m *Machine) assignCurrent(name string, hv HostValue) error {
	slot, ok := m.program.slotOf(name)
	if !ok {
		return newErrorf(UnknownVariable, "unknown variable %q", name)
	}
	v, err := hv.toValue(m.allocate0)
	if err != nil {
		return err
	}
	m.vars[slot] = v
	return nil
}

// Get returns the canonical display string of the named current
// variable.
func (m *Machine) Get(name string) (string, error) {
	slot, ok := m.program.slotOf(name)
	if !ok {
		return "", newErrorf(UnknownVariable, "unknown variable %q", name)
	}
	return m.vars[slot].displayString(), nil
}

// allocate0 allocates an arena value with no extra explicit GC roots
// beyond the stack and variable vectors.
func (m *Machine) allocate0() (*Value, error) {
	return m.allocate()
}

// allocate returns a fresh, zeroed arena Value, collecting if necessary.
// roots are extra values to protect from collection beyond the operand
// stack and the variable vectors — used for operands of the instruction
// currently being executed that have already been popped off the stack
// and are not yet pushed back.
func (m *Machine) allocate(roots ...*Value) (*Value, error) {
	if v, ok := m.arena.bump(); ok {
		return v, nil
	}
	if v, ok := m.arena.popFree(); ok {
		return v, nil
	}
	m.markRoots(roots...)
	m.arena.sweep()
	if v, ok := m.arena.popFree(); ok {
		return v, nil
	}
	return nil, newError(OutOfSpace, "arena exhausted after collection")
}

func (m *Machine) markRoots(extra ...*Value) {
	for i := 0; i < m.stackUsed; i++ {
		mark(m.stack[i])
	}
	for _, v := range m.vars {
		mark(v)
	}
	for _, v := range extra {
		mark(v)
	}
}

// Dump writes the current stack, current variables, and baseline
// variables to w, for interactive debugging — the always-available
// analogue of the original implementation's TRACE_EXECUTION dump.
func (m *Machine) Dump(w io.Writer) {
	fmt.Fprintln(w, "STACK =")
	for i := 0; i < m.stackUsed; i++ {
		fmt.Fprintf(w, "  %d: %s\n", i, m.stack[i].displayString())
	}
	n := len(m.program.varNames)
	fmt.Fprintln(w, "VARIABLES =")
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "  %s: %s\n", m.program.varNames[i], m.vars[i].displayString())
	}
	fmt.Fprintln(w, "BASELINE =")
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "  %s: %s\n", m.program.varNames[i], m.vars[n+i].displayString())
	}
}
