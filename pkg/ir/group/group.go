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

// Package group defines the Group and Tree types, and the bounds/arity
// analyses that operate on a flattened tree of them. A group is a named
// scope — a node in the circuit's callgraph — containing some regions,
// some child-group callsites, and the cells that cross its boundary as
// inputs or outputs.
package group

import "github.com/plonkir/ferrite/pkg/circuit"

// CellKind distinguishes the three ways a cell can appear in a group's
// input/output lists.
type CellKind uint8

const (
	// Assigned marks a cell whose value is produced by the group itself
	// (e.g. an advice cell assigned within one of its regions).
	Assigned CellKind = iota
	// InstanceIO marks a public instance cell crossing the group
	// boundary.
	InstanceIO
	// AdviceIO marks an advice cell crossing the group boundary (as
	// opposed to one merely Assigned internally).
	AdviceIO
)

// Cell is one entry of a group's input or output list.
type Cell struct {
	Kind CellKind
	Cell circuit.Cell
}

// Kind identifies whether a group is the unique TopLevel group, or an
// ordinary group carrying a caller-supplied equivalence key: two
// non-TopLevel groups sharing a Key are candidates for dedup — the key
// alone does not imply equivalence, it only makes them eligible for the
// comparison.
type Kind struct {
	TopLevel bool
	Key      uint64
}

// TopLevelKind constructs the kind of the unique root group.
func TopLevelKind() Kind { return Kind{TopLevel: true} }

// KeyedKind constructs the kind of an ordinary group with the given
// source-level equivalence key.
func KeyedKind(key uint64) Kind { return Kind{Key: key} }

// Group is a named scope: some regions, some child callsites, and the cells
// crossing its boundary.
type Group struct {
	Name string
	Kind Kind
	// Inputs and Outputs list the group's boundary cells in call order;
	// assigned fixed cells never appear here — only advice and instance
	// cells cross a group boundary.
	Inputs  []Cell
	Outputs []Cell
	// Regions is the ordered list of regions belonging to this group.
	Regions []circuit.Region
	// Children lists, in encounter order, the indices (into the
	// flattened Tree) of this group's child groups.
	Children []int
}

// InputCount and OutputCount report the boundary arity used by callsite
// validation.
func (g *Group) InputCount() int  { return len(g.Inputs) }
func (g *Group) OutputCount() int { return len(g.Outputs) }

// Tree is a synthesised group tree, flattened so that children are listed
// before parents: a Group's Children always refer to indices that appear
// *earlier* in Groups.
type Tree struct {
	Groups []Group
	// Main is the index of the unique TopLevel group.
	Main int
}

// CountTopLevel returns how many groups in the tree are TopLevel. A
// well-formed tree has exactly one.
func (t *Tree) CountTopLevel() int {
	n := 0

	for i := range t.Groups {
		if t.Groups[i].Kind.TopLevel {
			n++
		}
	}

	return n
}
