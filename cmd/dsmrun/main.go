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

// Command dsmrun compiles and runs a DSMAL program from the command
// line, for quick manual testing of scenarios outside a host embedding.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dsmachine/dsm/asm"
	"github.com/dsmachine/dsm/internal/coverage"
	"github.com/dsmachine/dsm/vm"
)

var (
	assignments []string
	instrLimit  int
	dump        bool
	showCov     bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dsmrun: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dsmrun <file.dsmal>",
		Short: "Compile and run a DSMAL program",
		Args:  cobra.ExactArgs(1),
		RunE:  runDSMAL,
	}
	cmd.Flags().StringArrayVarP(&assignments, "set", "s", nil, "assign a variable, e.g. -s x=10 (repeatable)")
	cmd.Flags().IntVarP(&instrLimit, "limit", "l", vm.DefaultInstructionLimit, "instruction limit for the run")
	cmd.Flags().BoolVarP(&dump, "dump", "d", false, "dump the stack and variables after the run")
	cmd.Flags().BoolVarP(&showCov, "coverage", "c", false, "print a per-instruction coverage report")
	return cmd
}

func runDSMAL(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading program")
	}

	program, err := asm.Compile(string(src))
	if err != nil {
		return errors.Wrap(err, "compiling program")
	}

	initial, err := parseAssignments(assignments)
	if err != nil {
		return err
	}

	machine, err := program.NewMachine(initial, vm.WithInstructionLimit(instrLimit))
	if err != nil {
		return errors.Wrap(err, "instantiating machine")
	}

	var runErr error
	if showCov {
		var hits []bool
		hits, runErr = machine.RunWithCoverage()
		if err := coverage.WriteReport(cmd.OutOrStdout(), program, hits); err != nil {
			return errors.Wrap(err, "writing coverage report")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "coverage: %.0f%%\n", coverage.Summary(hits)*100)
	} else {
		var executed int
		executed, runErr = machine.Run()
		fmt.Fprintf(cmd.OutOrStdout(), "executed %d instruction(s)\n", executed)
	}
	if dump {
		machine.Dump(cmd.OutOrStdout())
	}
	if runErr != nil {
		return errors.Wrap(runErr, "run failed")
	}

	for _, name := range program.Variables() {
		val, err := machine.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, val)
	}
	return nil
}

func parseAssignments(raw []string) (map[string]vm.HostValue, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]vm.HostValue, len(raw))
	for _, a := range raw {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid --set value %q, want name=value", a)
		}
		out[name] = vm.Text(value)
	}
	return out, nil
}
