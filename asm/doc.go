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

// Package asm compiles DSMAL source text into a *vm.Program.
//
// A DSMAL program is UTF-8 text split, at the top level, into exactly
// three sections separated by two semicolons:
//
//	<variables>;<constants>;<instructions>
//
// Variables section (may be empty):
//
// Pipe-separated variable names, each non-empty and unique. A program may
// declare at most 65535 variables.
//
//	x|y|total
//
// Constants section (may be empty):
//
// Pipe-separated decimal literals, each parsed and simplified into the
// program's constant table. A program may declare at most 65535
// constants.
//
//	0.5|10|3.14159
//
// Instructions section (must be non-empty):
//
// A run of two-letter mnemonics with no delimiters between them. Some
// mnemonics are immediately followed by an unsigned decimal parameter
// (at most 65535); the rest take none, and the character immediately
// following one of those must be the start of the next mnemonic — never
// a digit. See the vm package's opcode table for the full mnemonic set
// and their operand counts.
//
//	LzLoAdSt0Xx
//
// compiles to: push 0, push 1, add, store into variable slot 0, exit.
//
// Lc, Lv and St parameters are validated against the constant and
// variable counts at compile time; jump targets (Ju, Jn, Jz) are not —
// an out-of-range jump target is only caught the first time the
// interpreter tries to fetch from it.
package asm
