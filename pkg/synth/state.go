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
package synth

import (
	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/circuit/eqgraph"
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/group"
	"github.com/plonkir/ferrite/pkg/util"
)

// Fill records a fill_from_row call: the column holds value from Row
// onward, for every row not covered by an explicit assignment.
type Fill struct {
	Column circuit.Column
	Row    circuit.Row
	Value  felt.Felt
}

// Selectors records which rows each selector is enabled on.
type Selectors struct {
	enabled map[uint]map[circuit.Row]bool
}

// NewSelectors constructs an empty selector store.
func NewSelectors() *Selectors {
	return &Selectors{enabled: make(map[uint]map[circuit.Row]bool)}
}

// Enable marks the given selector as enabled on the given row.
func (s *Selectors) Enable(index uint, row circuit.Row) {
	rows, ok := s.enabled[index]
	if !ok {
		rows = make(map[circuit.Row]bool)
		s.enabled[index] = rows
	}

	rows[row] = true
}

// IsEnabled reports whether the given selector is enabled on the given row.
func (s *Selectors) IsEnabled(index uint, row circuit.Row) bool {
	return s.enabled[index][row]
}

// State is the finalised snapshot of one synthesis pass, handed to IR
// generation. It is read-only after Finalize returns it.
type State struct {
	// Regions holds every ordinary (non-table) region, in exit order.
	Regions []circuit.Region
	// TableRegions holds regions reclassified as lookup tables; their
	// indices were released back to the allocator on exit.
	TableRegions []circuit.Region
	// TableColumns is the set of columns belonging to lookup tables.
	TableColumns map[circuit.AnyColumn]bool
	// Fixed maps every explicitly assigned fixed cell to its value.
	Fixed map[circuit.Cell]felt.Felt
	// Fills lists fill_from_row calls, in call order. Later fills shadow
	// earlier ones for overlapping rows.
	Fills []Fill
	// Graph is the equality-constraint graph, complete with FixedToConst
	// edges for every fixed vertex.
	Graph *eqgraph.Graph
	// Selectors records which rows each selector was enabled on.
	Selectors *Selectors
	// Tree is the flattened group tree, children before parents.
	Tree group.Tree
}

// FixedValue resolves the value of a fixed cell: an explicit assignment
// wins; otherwise the most recent fill covering the cell applies.
func (s *State) FixedValue(cell circuit.Cell) util.Option[felt.Felt] {
	if v, ok := s.Fixed[cell]; ok {
		return util.Some(v)
	}

	for i := len(s.Fills) - 1; i >= 0; i-- {
		f := s.Fills[i]
		if f.Column.Any() == cell.Column && cell.Row >= f.Row {
			return util.Some(f.Value)
		}
	}

	return util.None[felt.Felt]()
}

// RegionContaining returns the unique ordinary region containing the given
// cell, if any. Used by relativisation and by equality-constraint scoping.
func (s *State) RegionContaining(cell circuit.Cell) util.Option[circuit.Region] {
	for _, r := range s.Regions {
		if r.HasColumn(cell.Column) && r.Contains(cell.Row) {
			return util.Some(r)
		}
	}

	return util.None[circuit.Region]()
}

// RegionByIndex returns the ordinary region carrying the given index.
func (s *State) RegionByIndex(idx circuit.Index) util.Option[circuit.Region] {
	for _, r := range s.Regions {
		if r.Index.HasValue() && r.Index.Unwrap() == idx {
			return util.Some(r)
		}
	}

	return util.None[circuit.Region]()
}
