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

// ArenaCapacity is the fixed number of reclaimable value slots a Machine
// owns, per §4.C.
const ArenaCapacity = 256

// StackCapacity is the fixed depth of a Machine's operand stack.
const StackCapacity = 32

// arena is a fixed-capacity pool of Value storage with a bump-pointer
// first-fill strategy, a free list for reclaimed slots, and a
// mark-and-sweep collector invoked when both are exhausted. Arena slots
// are allocated once as a contiguous slice at construction and never
// reallocated, so pointers into the slice remain stable for the life of
// the owning Machine; this is the Go equivalent of the original
// DSMMachine's in-line `DSMArenaValue arena[ARENA_SIZE]` array.
type arena struct {
	slots []Value
	used  int
	free  *Value
}

func newArena(capacity int) *arena {
	return &arena{slots: make([]Value, capacity)}
}

// bump hands out the next never-before-used slot, if any remain.
func (a *arena) bump() (*Value, bool) {
	if a.used >= len(a.slots) {
		return nil, false
	}
	v := &a.slots[a.used]
	a.used++
	return v, true
}

// popFree pops the head of the free list, resetting it for reuse.
func (a *arena) popFree() (*Value, bool) {
	if a.free == nil {
		return nil, false
	}
	v := a.free
	a.free = v.next
	v.next = nil
	v.reset()
	return v, true
}

// mark sets the marked bit on v. Safe to call on values outside the
// arena (interned digits, program constants): those are permanently
// marked from construction and sweep only walks a.slots, so mark never
// writes to them.
func mark(v *Value) {
	if v != nil && !v.marked {
		v.marked = true
	}
}

// sweep clears the marked bit on every reachable slot and rebuilds the
// free list from everything left unmarked.
func (a *arena) sweep() {
	a.free = nil
	for i := range a.slots[:a.used] {
		s := &a.slots[i]
		if s.marked {
			s.marked = false
		} else {
			s.next = a.free
			a.free = s
		}
	}
}
