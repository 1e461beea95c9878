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

// Package circuit defines the tabular data model shared by the synthesis
// observer, the constraint IR and the group-bounds analysis: columns, rows,
// cells and regions. It has no dependency on how a circuit is actually
// synthesised (pkg/synth) or lowered (pkg/gen) — it is the vocabulary both
// speak.
package circuit

import "fmt"

// Kind identifies which of the three column kinds a column belongs to.
type Kind uint8

const (
	// Advice columns hold witness values filled in during synthesis.
	Advice Kind = iota
	// Fixed columns hold public constants baked into the circuit.
	Fixed
	// Instance columns hold public instance values.
	Instance
)

// String renders the column kind for diagnostics.
func (k Kind) String() string {
	switch k {
	case Advice:
		return "advice"
	case Fixed:
		return "fixed"
	case Instance:
		return "instance"
	default:
		panic(fmt.Sprintf("circuit: unknown column kind %d", k))
	}
}

// Column identifies a column by its kind and its dense index within that
// kind (e.g. the third advice column has Kind=Advice, Index=2).
type Column struct {
	Kind  Kind
	Index uint
}

// Any returns the global, kind-erased view of this column. Two columns of
// different kinds but equal index are distinct Any values.
func (c Column) Any() AnyColumn {
	return AnyColumn{Kind: c.Kind, Index: c.Index}
}

// String renders "kind[index]", e.g. "advice[2]".
func (c Column) String() string {
	return fmt.Sprintf("%s[%d]", c.Kind, c.Index)
}

// AnyColumn is the kind-erased view of a column, used wherever a cell
// reference or equality-constraint vertex needs to treat columns of
// different kinds uniformly (e.g. the equality-constraint graph).
type AnyColumn struct {
	Kind  Kind
	Index uint
}

// String renders "kind[index]".
func (c AnyColumn) String() string {
	return fmt.Sprintf("%s[%d]", c.Kind, c.Index)
}

// Column recovers the typed Column view.
func (c AnyColumn) Column() Column {
	return Column{Kind: c.Kind, Index: c.Index}
}
