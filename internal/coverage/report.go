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

// Package coverage formats the per-instruction boolean slice returned by
// vm.Machine.RunWithCoverage into a human-readable report.
package coverage

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/dsmachine/dsm/vm"
)

// errWriter tracks the first write error instead of surfacing it from
// every subsequent Write, so a report loop can check once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	if err != nil {
		w.err = errors.Wrap(err, "write failed")
	}
	return n, w.err
}

// WriteReport writes one line per instruction in p, marking whether
// RunWithCoverage reached it, in the form:
//
//	   0  Lv0    hit
//	   1  Lz     hit
//	   2  Jz8    hit
//	   3  St1    miss
func WriteReport(w io.Writer, p *vm.Program, hits []bool) error {
	if p.InstructionCount() != len(hits) {
		return errors.Errorf("coverage length %d does not match instruction count %d", len(hits), p.InstructionCount())
	}
	ew := &errWriter{w: w}
	for pc := 0; pc < p.InstructionCount(); pc++ {
		status := "miss"
		if hits[pc] {
			status = "hit"
		}
		fmt.Fprintf(ew, "%4d  %-6s %s\n", pc, instructionLabel(p, pc), status)
	}
	return ew.err
}

// Summary returns the fraction of instructions reached, in [0,1].
func Summary(hits []bool) float64 {
	if len(hits) == 0 {
		return 1
	}
	var reached int
	for _, h := range hits {
		if h {
			reached++
		}
	}
	return float64(reached) / float64(len(hits))
}

func instructionLabel(p *vm.Program, pc int) string {
	op, param := p.InstructionAt(pc)
	if op.HasParam() {
		return fmt.Sprintf("%s%d", op.Mnemonic(), param)
	}
	return op.Mnemonic()
}
