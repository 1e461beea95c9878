// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package funcio defines FuncIO, the stable tagged handle that IR
// expressions use to refer to a runtime location. FuncIO values are
// serialisable and are what a back-end's lowering visitor ultimately
// resolves to its own storage (an MLIR SSA value, a Picus variable, etc).
package funcio

import (
	"fmt"

	"github.com/plonkir/ferrite/pkg/circuit"
)

// Tag discriminates the FuncIO constructors.
type Tag uint8

const (
	// TagArg refers to the nth argument of the enclosing group.
	TagArg Tag = iota
	// TagField refers to the nth named field of the enclosing component.
	TagField
	// TagAdvice refers to an advice cell.
	TagAdvice
	// TagFixed refers to a fixed cell.
	TagFixed
	// TagTableLookup refers to one column of one row of a lookup's
	// backing table, within a specific region instance.
	TagTableLookup
	// TagCallOutput refers to the idx'th output of the callNo'th
	// ConstraintCall in the enclosing group.
	TagCallOutput
	// TagTemp refers to a fresh temporary introduced during lowering
	// (e.g. by lookup expansion).
	TagTemp
	// TagChallenge refers to a verifier challenge drawn in a given
	// phase.
	TagChallenge
)

// FuncIO is a tagged, immutable identifier for a runtime location. Only the
// fields relevant to Tag are meaningful; the zero value of the others is
// ignored.
type FuncIO struct {
	Tag Tag
	// Arg, Field, Temp, CallOutput.OutIdx
	N uint
	// Advice, Fixed. An advice reference is absolute until relativisation
	// rewrites it; Rel then carries the region-relative form and Relative
	// is set.
	Cell     circuit.Cell
	Rel      circuit.RelativeCell
	Relative bool
	// TableLookup
	LookupID  uint
	Column    circuit.AnyColumn
	Row       circuit.Row
	Idx       uint
	RegionIdx circuit.Index
	// CallOutput
	CallNo uint
	// Challenge
	ChallengeIndex uint
	Phase          uint
}

// Arg constructs a reference to the nth argument.
func Arg(n uint) FuncIO { return FuncIO{Tag: TagArg, N: n} }

// Field constructs a reference to the nth named field.
func Field(n uint) FuncIO { return FuncIO{Tag: TagField, N: n} }

// Advice constructs an absolute reference to an advice cell.
func Advice(cell circuit.Cell) FuncIO { return FuncIO{Tag: TagAdvice, Cell: cell} }

// AdviceRel constructs a region-relative reference to an advice cell.
func AdviceRel(rel circuit.RelativeCell) FuncIO {
	return FuncIO{Tag: TagAdvice, Rel: rel, Relative: true}
}

// Fixed constructs a reference to a fixed cell.
func Fixed(cell circuit.Cell) FuncIO { return FuncIO{Tag: TagFixed, Cell: cell} }

// TableLookup constructs a reference to one cell of a lookup's backing
// table, scoped to a specific region instance (so that the same lookup
// expanded across multiple region-rows resolves to distinct locations).
func TableLookup(lookupID uint, col circuit.AnyColumn, row circuit.Row, idx uint, regionIdx circuit.Index) FuncIO {
	return FuncIO{
		Tag: TagTableLookup, LookupID: lookupID, Column: col, Row: row, Idx: idx, RegionIdx: regionIdx,
	}
}

// CallOutput constructs a reference to the outIdx'th output of the
// callNo'th call within the enclosing group.
func CallOutput(callNo, outIdx uint) FuncIO {
	return FuncIO{Tag: TagCallOutput, CallNo: callNo, N: outIdx}
}

// Temp constructs a reference to a fresh temporary.
func Temp(n uint) FuncIO { return FuncIO{Tag: TagTemp, N: n} }

// Challenge constructs a reference to a verifier challenge.
func Challenge(index, phase, n uint) FuncIO {
	return FuncIO{Tag: TagChallenge, ChallengeIndex: index, Phase: phase, N: n}
}

// String renders a FuncIO for diagnostics (comments, error messages).
func (f FuncIO) String() string {
	switch f.Tag {
	case TagArg:
		return fmt.Sprintf("arg(%d)", f.N)
	case TagField:
		return fmt.Sprintf("field(%d)", f.N)
	case TagAdvice:
		if f.Relative {
			return fmt.Sprintf("advice(%s)", f.Rel)
		}

		return fmt.Sprintf("advice(%s)", f.Cell)
	case TagFixed:
		return fmt.Sprintf("fixed(%s)", f.Cell)
	case TagTableLookup:
		return fmt.Sprintf("lookup(%d,%s@%d,%d,r%d)", f.LookupID, f.Column, f.Row, f.Idx, f.RegionIdx)
	case TagCallOutput:
		return fmt.Sprintf("call_output(%d,%d)", f.CallNo, f.N)
	case TagTemp:
		return fmt.Sprintf("tmp(%d)", f.N)
	case TagChallenge:
		return fmt.Sprintf("challenge(%d,%d,%d)", f.ChallengeIndex, f.Phase, f.N)
	default:
		panic(fmt.Sprintf("funcio: unknown tag %d", f.Tag))
	}
}

// Generator hands out fresh, strictly increasing Temp handles for a single
// group. The region-index allocator and the per-group temporary counter are
// shared resources local to a synthesis run and must be passed explicitly
// rather than held in process-wide state.
type Generator struct {
	next uint
}

// Fresh allocates and returns the next Temp handle.
func (g *Generator) Fresh() FuncIO {
	n := g.next
	g.next++

	return Temp(n)
}

// Peek returns the id the next Fresh call would allocate.
func (g *Generator) Peek() uint { return g.next }

// NewGeneratorAt constructs a generator whose first handle will be Temp(n),
// used to continue numbering above handles allocated elsewhere.
func NewGeneratorAt(n uint) *Generator {
	return &Generator{next: n}
}
