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

import "sync"

// RandomIterator is the source of values for the Lr opcode. It is an
// injected collaborator — the DSM core never generates randomness
// itself (see §1). Next returns false once the sequence is exhausted.
type RandomIterator interface {
	Next() (HostValue, bool)
}

var (
	defaultRandomMu   sync.RWMutex
	defaultRandomIter RandomIterator
)

// SetDefaultRandomIterator installs a process-wide fallback RandomIterator
// used by any Machine that never received its own via
// Machine.SetRandomIterator. This mirrors the original implementation's
// `dsm.random_number_iterator` embedding convenience (see §9's open
// question); unlike that global, access here is mutex-guarded so it is
// safe to install before starting any goroutines that run Machines
// concurrently. Passing nil clears the fallback.
func SetDefaultRandomIterator(it RandomIterator) {
	defaultRandomMu.Lock()
	defaultRandomIter = it
	defaultRandomMu.Unlock()
}

func defaultRandomIterator() RandomIterator {
	defaultRandomMu.RLock()
	defer defaultRandomMu.RUnlock()
	return defaultRandomIter
}

// SliceRandomIterator adapts a fixed slice of HostValue into a
// RandomIterator, convenient for tests and for deterministic replays.
type SliceRandomIterator struct {
	values []HostValue
	pos    int
}

// NewSliceRandomIterator returns a RandomIterator that yields values in
// order and then reports exhaustion.
func NewSliceRandomIterator(values ...HostValue) *SliceRandomIterator {
	return &SliceRandomIterator{values: values}
}

// Next implements RandomIterator.
func (s *SliceRandomIterator) Next() (HostValue, bool) {
	if s.pos >= len(s.values) {
		return HostValue{}, false
	}
	v := s.values[s.pos]
	s.pos++
	return v, true
}
