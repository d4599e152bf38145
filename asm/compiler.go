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

package asm

import (
	"strconv"
	"strings"

	"github.com/dsmachine/dsm/vm"
)

const (
	maxVariables = 65535
	maxConstants = 65535
	maxParam     = 65535
)

// Compile parses DSMAL source text into an immutable *vm.Program. All
// failures are *vm.Error with Kind vm.InvalidProgram.
func Compile(text string) (*vm.Program, error) {
	sections := strings.Split(text, ";")
	if len(sections) != 3 {
		return nil, vm.NewError(vm.InvalidProgram, "expected exactly 3 sections separated by ';', got %d", len(sections))
	}

	varNames, err := parseVariables(sections[0])
	if err != nil {
		return nil, err
	}
	constants, err := parseConstants(sections[1])
	if err != nil {
		return nil, err
	}
	instructions, err := parseInstructions(sections[2], len(varNames), len(constants))
	if err != nil {
		return nil, err
	}

	return vm.NewProgram(text, varNames, constants, instructions)
}

func parseVariables(section string) ([]string, error) {
	if section == "" {
		return nil, nil
	}
	names := strings.Split(section, "|")
	if len(names) > maxVariables {
		return nil, vm.NewError(vm.InvalidProgram, "too many variables: %d (max %d)", len(names), maxVariables)
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return nil, vm.NewError(vm.InvalidProgram, "variable names must not be empty")
		}
		if seen[name] {
			return nil, vm.NewError(vm.InvalidProgram, "duplicate variable name %q", name)
		}
		seen[name] = true
	}
	return names, nil
}

func parseConstants(section string) ([]*vm.Value, error) {
	if section == "" {
		return nil, nil
	}
	literals := strings.Split(section, "|")
	if len(literals) > maxConstants {
		return nil, vm.NewError(vm.InvalidProgram, "too many constants: %d (max %d)", len(literals), maxConstants)
	}
	constants := make([]*vm.Value, len(literals))
	for i, lit := range literals {
		if lit == "" {
			return nil, vm.NewError(vm.InvalidProgram, "constant literals must not be empty")
		}
		v, err := vm.NewConstant(lit)
		if err != nil {
			return nil, vm.NewError(vm.InvalidProgram, "constant %d (%q): %v", i, lit, err)
		}
		constants[i] = v
	}
	return constants, nil
}

func parseInstructions(section string, varCount, constCount int) ([]vm.Instruction, error) {
	if section == "" {
		return nil, vm.NewError(vm.InvalidProgram, "instruction section must not be empty")
	}
	var instrs []vm.Instruction
	n := len(section)
	i := 0
	for i < n {
		if i+2 > n {
			return nil, vm.NewError(vm.InvalidProgram, "dangling character %q at end of instruction section", section[i:])
		}
		mnemonic := section[i : i+2]
		op, ok := vm.LookupMnemonic(mnemonic)
		if !ok {
			return nil, vm.NewError(vm.InvalidProgram, "unknown mnemonic %q at offset %d", mnemonic, i)
		}
		i += 2

		var param uint16
		if op.HasParam() {
			start := i
			for i < n && isDigit(section[i]) {
				i++
			}
			if i == start {
				return nil, vm.NewError(vm.InvalidProgram, "%s at offset %d requires a numeric parameter", mnemonic, i-2)
			}
			val, err := strconv.ParseUint(section[start:i], 10, 32)
			if err != nil || val > maxParam {
				return nil, vm.NewError(vm.InvalidProgram, "%s parameter %q out of range (max %d)", mnemonic, section[start:i], maxParam)
			}
			param = uint16(val)
			if err := validateSlot(op, param, varCount, constCount); err != nil {
				return nil, err
			}
		} else if i < n && !isUpper(section[i]) {
			return nil, vm.NewError(vm.InvalidProgram, "%s at offset %d must be followed by another mnemonic or the end of the section", mnemonic, i-2)
		}

		instrs = append(instrs, vm.Instruction{Op: op, Param: param})
	}
	return instrs, nil
}

// validateSlot enforces the compiler's only static bounds checks: Lc
// against the constant count and Lv/St against the variable count. Ju,
// Jn and Jz targets are deliberately left unchecked — they are only
// validated at run time.
func validateSlot(op vm.Op, param uint16, varCount, constCount int) error {
	switch op.Mnemonic() {
	case "Lc":
		if int(param) >= constCount {
			return vm.NewError(vm.InvalidProgram, "Lc %d: out of range (%d constant(s) declared)", param, constCount)
		}
	case "Lv", "St":
		if int(param) >= varCount {
			return vm.NewError(vm.InvalidProgram, "%s %d: out of range (%d variable(s) declared)", op.Mnemonic(), param, varCount)
		}
	}
	return nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
