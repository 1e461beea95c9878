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
package cs

import (
	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/group"
)

// Gate is a named set of polynomials the circuit asserts to vanish on every
// row where the gate's selector is enabled.
type Gate struct {
	Name string
	// Polys holds the gate's vanishing polynomials, in declaration order.
	Polys []Poly
}

// LookupArg is one column of a lookup: an input expression that must, per
// row, take a value appearing in the table expression's column.
type LookupArg struct {
	Input Poly
	Table Poly
}

// Lookup is a constraint that a tuple of input expressions belongs to the
// set of tuples formed by the table expressions.
type Lookup struct {
	Name string
	Args []LookupArg
}

// TableRows is a lazy provider of a lookup's backing table rows. The
// returned sequence is materialised on first demand and consumed at most
// once per lookup; it need not be restartable.
type TableRows func() [][]felt.Felt

// System is what the upstream constraint system supplies to the middle-end:
// the gate list, the lookup list, and the column counts.
type System struct {
	Gates   []Gate
	Lookups []Lookup
	// NumSelectors, NumAdvice, NumFixed and NumInstance size the circuit
	// table.
	NumSelectors uint
	NumAdvice    uint
	NumFixed     uint
	NumInstance  uint
}

// Observer is the callback interface a circuit driver calls during one
// synthesis pass. The ordering contract: EnableSelector, OnAdviceAssigned,
// OnFixedAssigned, Copy and MarkRegionAsTable must occur inside a matched
// EnterRegion/ExitRegion pair; FillFromRow is the only callback permitted
// to assign fixed cells outside a region. EnterRegion may not nest;
// EnterGroup/ExitGroup may nest arbitrarily.
type Observer interface {
	EnterRegion(name string)
	ExitRegion()
	EnableSelector(sel Selector, row circuit.Row)
	OnAdviceAssigned(col circuit.Column, row circuit.Row)
	OnFixedAssigned(col circuit.Column, row circuit.Row, value felt.Felt)
	Copy(fromCol circuit.Column, fromRow circuit.Row, toCol circuit.Column, toRow circuit.Row)
	FillFromRow(col circuit.Column, row circuit.Row, value felt.Felt)
	MarkRegionAsTable()
	PushNamespace(name string)
	PopNamespace(name string)
	EnterGroup(name string, key uint64)
	ExitGroup(inputs, outputs []group.Cell)
}

// Circuit is the upstream contract in full: a constraint system, the
// circuit's top-level IO, and a callback-driven synthesis that replays the
// circuit against an observer.
type Circuit interface {
	ConstraintSystem() System
	// IO describes the inputs and outputs of the circuit's top-level
	// group.
	IO() (inputs, outputs []group.Cell)
	Synthesize(obs Observer) error
}
