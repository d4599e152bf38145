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

// Package vm implements the Decimal Stack Machine: a bounded-stack,
// arbitrary-precision-decimal interpreter for compiled DSMAL programs.
//
// A *Program is an immutable compiled form produced by the sibling asm
// package. A Program can be instantiated into any number of independent
// *Machine values, each holding its own operand stack, value arena, and
// current/baseline variable vectors. Machines derived from the same
// Program may run concurrently; a single Machine must not be shared
// across goroutines without external synchronization, since Run mutates
// unexported machine state with no locking of its own.
//
// The package never logs and never performs I/O; callers that need to
// observe a run should use Machine.Dump or the coverage result returned
// by RunWithCoverage.
package vm
