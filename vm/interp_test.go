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

import "testing"

func runProgram(t *testing.T, vars []string, constants []*Value, instrs []Instruction, initial map[string]HostValue) *Machine {
	t.Helper()
	p, err := NewProgram("", vars, constants, instrs)
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	m, err := p.NewMachine(initial)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return m
}

func constValue(t *testing.T, s string) *Value {
	t.Helper()
	v := &Value{}
	if err := v.setFromString(s); err != nil {
		t.Fatalf("setFromString(%q): %v", s, err)
	}
	return v
}

func TestRunLoadConstantsAndAdd(t *testing.T) {
	c := []*Value{constValue(t, "10"), constValue(t, "32")}
	instrs := []Instruction{
		{Op: OpLoadConstant, Param: 0},
		{Op: OpLoadConstant, Param: 1},
		{Op: OpAdd},
		{Op: OpSetVariable, Param: 0},
		{Op: OpExit},
	}
	m := runProgram(t, []string{"result"}, c, instrs, nil)
	got, _ := m.Get("result")
	if got != "42" {
		t.Fatalf("result = %q, want \"42\"", got)
	}
}

func TestRunAddShortCircuitsOnZero(t *testing.T) {
	instrs := []Instruction{
		{Op: OpLoadVariable, Param: 0}, // a
		{Op: OpLoadZero},
		{Op: OpAdd},
		{Op: OpSetVariable, Param: 1}, // out = a + 0
		{Op: OpExit},
	}
	m := runProgram(t, []string{"a", "out"}, nil, instrs, map[string]HostValue{"a": Int(9)})
	got, _ := m.Get("out")
	if got != "9" {
		t.Fatalf("out = %q, want \"9\"", got)
	}
}

func TestRunSubtractObviouslyEqualIsZero(t *testing.T) {
	instrs := []Instruction{
		{Op: OpLoadVariable, Param: 0},
		{Op: OpLoadVariable, Param: 0},
		{Op: OpSubtract},
		{Op: OpSetVariable, Param: 1},
		{Op: OpExit},
	}
	m := runProgram(t, []string{"a", "out"}, nil, instrs, map[string]HostValue{"a": Int(7)})
	got, _ := m.Get("out")
	if got != "0" {
		t.Fatalf("out = %q, want \"0\"", got)
	}
}

func TestRunMultiplyByZeroDiscardsBothOperands(t *testing.T) {
	instrs := []Instruction{
		{Op: OpLoadVariable, Param: 0},
		{Op: OpLoadZero},
		{Op: OpMultiply},
		{Op: OpSetVariable, Param: 1},
		{Op: OpExit},
	}
	m := runProgram(t, []string{"a", "out"}, nil, instrs, map[string]HostValue{"a": Int(123)})
	got, _ := m.Get("out")
	if got != "0" {
		t.Fatalf("out = %q, want \"0\"", got)
	}
}

func TestRunDivideByZeroIsAnError(t *testing.T) {
	p, err := NewProgram("", []string{"a"}, nil, []Instruction{
		{Op: OpLoadVariable, Param: 0},
		{Op: OpLoadZero},
		{Op: OpDivide},
		{Op: OpExit},
	})
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	m, err := p.NewMachine(map[string]HostValue{"a": Int(5)})
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if _, err := m.Run(); err == nil {
		t.Fatal("expected a DivisionByZero error")
	} else if de := err.(*Error); de.Kind != DivisionByZero {
		t.Fatalf("expected DivisionByZero, got %v", de.Kind)
	}
	// The stack is cleared even after a failed run.
	if m.stackUsed != 0 {
		t.Fatalf("stackUsed = %d after failed run, want 0", m.stackUsed)
	}
}

func TestRunPowerShortCircuits(t *testing.T) {
	cases := []struct {
		name       string
		a, b       int64
		want       string
		wantErrKnd Kind
		wantErr    bool
	}{
		{name: "a^1=a", a: 9, b: 1, want: "9"},
		{name: "a^0=1", a: 9, b: 0, want: "1"},
		{name: "0^0=0", a: 0, b: 0, want: "0"},
		{name: "1^b=1", a: 1, b: 5, want: "1"},
		{name: "a^2=a*a", a: 4, b: 2, want: "16"},
		{name: "0^negative illegal", a: 0, b: -2, wantErr: true, wantErrKnd: IllegalOperation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewProgram("", []string{"a", "b"}, nil, []Instruction{
				{Op: OpLoadVariable, Param: 0},
				{Op: OpLoadVariable, Param: 1},
				{Op: OpPower},
				{Op: OpSetVariable, Param: 0},
				{Op: OpExit},
			})
			if err != nil {
				t.Fatalf("NewProgram: %v", err)
			}
			m, err := p.NewMachine(map[string]HostValue{"a": Int(tc.a), "b": Int(tc.b)})
			if err != nil {
				t.Fatalf("NewMachine: %v", err)
			}
			_, runErr := m.Run()
			if tc.wantErr {
				if runErr == nil {
					t.Fatal("expected an error")
				}
				if de := runErr.(*Error); de.Kind != tc.wantErrKnd {
					t.Fatalf("expected %v, got %v", tc.wantErrKnd, de.Kind)
				}
				return
			}
			if runErr != nil {
				t.Fatalf("Run: %v", runErr)
			}
			got, _ := m.Get("a")
			if got != tc.want {
				t.Fatalf("a = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRunJumpsAndComparisons(t *testing.T) {
	// if a > b then out = 1 else out = 0
	instrs := []Instruction{
		{Op: OpLoadVariable, Param: 0}, // 0: a
		{Op: OpLoadVariable, Param: 1}, // 1: b
		{Op: OpGreaterThan},            // 2
		{Op: OpJumpIfZero, Param: 6},   // 3
		{Op: OpLoadOne},                // 4
		{Op: OpJumpUnconditional, Param: 7}, // 5
		{Op: OpLoadZero},               // 6
		{Op: OpSetVariable, Param: 2},  // 7: out
		{Op: OpExit},                   // 8
	}
	m := runProgram(t, []string{"a", "b", "out"}, nil, instrs, map[string]HostValue{"a": Int(5), "b": Int(3)})
	got, _ := m.Get("out")
	if got != "1" {
		t.Fatalf("out = %q, want \"1\"", got)
	}
}

func TestRunStackUnderflow(t *testing.T) {
	p, err := NewProgram("", nil, nil, []Instruction{{Op: OpAdd}, {Op: OpExit}})
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	m, err := p.NewMachine(nil)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if _, err := m.Run(); err == nil {
		t.Fatal("expected a StackUnderflow error")
	} else if de := err.(*Error); de.Kind != StackUnderflow {
		t.Fatalf("expected StackUnderflow, got %v", de.Kind)
	}
}

func TestRunInstructionLimitExceeded(t *testing.T) {
	// An infinite loop: Ju 0.
	p, err := NewProgram("", nil, nil, []Instruction{{Op: OpJumpUnconditional, Param: 0}})
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	m, err := p.NewMachine(nil, WithInstructionLimit(50))
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	executed, err := m.Run()
	if err == nil {
		t.Fatal("expected an InstructionLimitExceeded error")
	}
	if de := err.(*Error); de.Kind != InstructionLimitExceeded {
		t.Fatalf("expected InstructionLimitExceeded, got %v", de.Kind)
	}
	if executed != 50 {
		t.Fatalf("executed = %d, want 50", executed)
	}
}

func TestRunOutOfBoundsPC(t *testing.T) {
	p, err := NewProgram("", nil, nil, []Instruction{{Op: OpJumpUnconditional, Param: 99}})
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	m, err := p.NewMachine(nil)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if _, err := m.Run(); err == nil {
		t.Fatal("expected an OutOfBoundsPC error")
	} else if de := err.(*Error); de.Kind != OutOfBoundsPC {
		t.Fatalf("expected OutOfBoundsPC, got %v", de.Kind)
	}
}

func TestRunWithCoverageMarksReachedInstructions(t *testing.T) {
	p, err := NewProgram("", []string{"a"}, nil, []Instruction{
		{Op: OpLoadVariable, Param: 0}, // 0
		{Op: OpJumpIfZero, Param: 3},   // 1
		{Op: OpSetVariable, Param: 0},  // 2: unreachable when a == 0
		{Op: OpExit},                   // 3
	})
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	m, err := p.NewMachine(map[string]HostValue{"a": Int(0)})
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	coverage, err := m.RunWithCoverage()
	if err != nil {
		t.Fatalf("RunWithCoverage: %v", err)
	}
	want := []bool{true, true, false, true}
	for i, w := range want {
		if coverage[i] != w {
			t.Fatalf("coverage[%d] = %v, want %v", i, coverage[i], w)
		}
	}
}

func TestRunCopyAndPop(t *testing.T) {
	instrs := []Instruction{
		{Op: OpLoadVariable, Param: 0},
		{Op: OpCopy},
		{Op: OpAdd},
		{Op: OpLoadZero},
		{Op: OpPop},
		{Op: OpSetVariable, Param: 1},
		{Op: OpExit},
	}
	m := runProgram(t, []string{"a", "out"}, nil, instrs, map[string]HostValue{"a": Int(21)})
	got, _ := m.Get("out")
	if got != "42" {
		t.Fatalf("out = %q, want \"42\"", got)
	}
}

func TestRunMinMax(t *testing.T) {
	instrs := []Instruction{
		{Op: OpLoadVariable, Param: 0},
		{Op: OpLoadVariable, Param: 1},
		{Op: OpMin},
		{Op: OpSetVariable, Param: 2},
		{Op: OpLoadVariable, Param: 0},
		{Op: OpLoadVariable, Param: 1},
		{Op: OpMax},
		{Op: OpSetVariable, Param: 3},
		{Op: OpExit},
	}
	m := runProgram(t, []string{"a", "b", "lo", "hi"}, nil, instrs, map[string]HostValue{"a": Int(8), "b": Int(3)})
	if got, _ := m.Get("lo"); got != "3" {
		t.Fatalf("lo = %q, want \"3\"", got)
	}
	if got, _ := m.Get("hi"); got != "8" {
		t.Fatalf("hi = %q, want \"8\"", got)
	}
}

func TestRunNegateAndAbsolute(t *testing.T) {
	instrs := []Instruction{
		{Op: OpLoadVariable, Param: 0},
		{Op: OpNegate},
		{Op: OpSetVariable, Param: 1},
		{Op: OpLoadVariable, Param: 1},
		{Op: OpAbsolute},
		{Op: OpSetVariable, Param: 2},
		{Op: OpExit},
	}
	m := runProgram(t, []string{"a", "neg", "abs"}, nil, instrs, map[string]HostValue{"a": Int(5)})
	if got, _ := m.Get("neg"); got != "-5" {
		t.Fatalf("neg = %q, want \"-5\"", got)
	}
	if got, _ := m.Get("abs"); got != "5" {
		t.Fatalf("abs = %q, want \"5\"", got)
	}
}

func TestRunRandomFallsBackToInternedZeroWithoutIterator(t *testing.T) {
	instrs := []Instruction{
		{Op: OpLoadRandom},
		{Op: OpSetVariable, Param: 0},
		{Op: OpExit},
	}
	m := runProgram(t, []string{"out"}, nil, instrs, nil)
	got, _ := m.Get("out")
	if got != "0" {
		t.Fatalf("out = %q, want \"0\"", got)
	}
}

func TestRunRandomUsesMachineIterator(t *testing.T) {
	p, err := NewProgram("", []string{"out"}, nil, []Instruction{
		{Op: OpLoadRandom},
		{Op: OpSetVariable, Param: 0},
		{Op: OpExit},
	})
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	m, err := p.NewMachine(nil, WithRandomIterator(NewSliceRandomIterator(Int(7))))
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, _ := m.Get("out")
	if got != "7" {
		t.Fatalf("out = %q, want \"7\"", got)
	}
}

func TestRunRandomExhausted(t *testing.T) {
	p, err := NewProgram("", []string{"out"}, nil, []Instruction{
		{Op: OpLoadRandom},
		{Op: OpSetVariable, Param: 0},
		{Op: OpExit},
	})
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	m, err := p.NewMachine(nil, WithRandomIterator(NewSliceRandomIterator()))
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if _, err := m.Run(); err == nil {
		t.Fatal("expected RandomExhausted")
	} else if de := err.(*Error); de.Kind != RandomExhausted {
		t.Fatalf("expected RandomExhausted, got %v", de.Kind)
	}
}
