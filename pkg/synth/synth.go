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

// Package synth implements the synthesis observer: it consumes the callback
// stream of a circuit driver (pkg/cs.Observer) and reconstructs everything
// IR generation needs — the region table, the fixed-value store, the
// equality-constraint graph, the lookup-table set, the selector map and the
// group tree. Protocol violations are recorded rather than panicking; only
// the first one encountered is kept, and Finalize reports it.
package synth

import (
	"strings"

	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/circuit/eqgraph"
	"github.com/plonkir/ferrite/pkg/cs"
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/failure"
	"github.com/plonkir/ferrite/pkg/ir/group"
	"github.com/plonkir/ferrite/pkg/util"
	"github.com/plonkir/ferrite/pkg/util/collection/stack"
	log "github.com/sirupsen/logrus"
)

// node is one under-construction group: the group's own data plus its
// not-yet-flattened children.
type node struct {
	g        group.Group
	children []*node
}

// Synthesizer implements cs.Observer over mutable state, building the
// finalised State snapshot incrementally across one driver pass. It is
// mutated only while a single driver callback is active.
type Synthesizer struct {
	alloc     circuit.Allocator
	regions   []circuit.Region
	tables    []circuit.Region
	tableCols map[circuit.AnyColumn]bool
	fixed     map[circuit.Cell]felt.Felt
	fills     []Fill
	graph     *eqgraph.Graph
	selectors *Selectors

	// current is the open region, if any. currentIsTable marks it for
	// reclassification on exit.
	current        *circuit.Region
	currentIsTable bool

	// stack is the active group stack; its bottom entry is the TopLevel
	// root and is never popped.
	stack      *stack.Stack[*node]
	namespaces *stack.Stack[string]

	// err records the first protocol violation; subsequent callbacks
	// still run so that the driver completes, but Finalize fails.
	err error
}

// NewSynthesizer constructs a fresh synthesizer whose TopLevel root group
// carries the circuit's declared IO.
func NewSynthesizer(name string, inputs, outputs []group.Cell) *Synthesizer {
	root := &node{g: group.Group{
		Name:    name,
		Kind:    group.TopLevelKind(),
		Inputs:  inputs,
		Outputs: outputs,
	}}

	groups := stack.NewStack[*node]()
	groups.Push(root)

	return &Synthesizer{
		tableCols:  make(map[circuit.AnyColumn]bool),
		fixed:      make(map[circuit.Cell]felt.Felt),
		graph:      eqgraph.New(),
		selectors:  NewSelectors(),
		stack:      groups,
		namespaces: stack.NewStack[string](),
	}
}

func (s *Synthesizer) fail(f failure.Failure) {
	if s.err == nil {
		s.err = f
	}
}

// qualified prefixes a name with the current namespace path.
func (s *Synthesizer) qualified(name string) string {
	if s.namespaces.IsEmpty() {
		return name
	}

	parts := make([]string, 0, s.namespaces.Len()+1)
	for off := int(s.namespaces.Len()) - 1; off >= 0; off-- {
		parts = append(parts, s.namespaces.Peek(uint(off)))
	}

	return strings.Join(append(parts, name), "/")
}

// EnterRegion opens a region. Regions may not nest.
func (s *Synthesizer) EnterRegion(name string) {
	if s.current != nil {
		s.fail(failure.Structuralf("enter_region(%q): region %q is still open", name, s.current.Name))
		return
	}

	r := circuit.NewRegion(s.qualified(name))
	r.Index = util.Some(s.alloc.Next())
	s.current = &r
	s.currentIsTable = false
}

// ExitRegion seals the open region. A region marked as a table gives its
// index back to the allocator and contributes its columns to the table set
// instead of joining the active group.
func (s *Synthesizer) ExitRegion() {
	if s.current == nil {
		s.fail(failure.Structuralf("exit_region: no region is open"))
		return
	}

	r := *s.current
	s.current = nil

	if s.currentIsTable {
		log.WithField("region", r.Name).Debug("reclassifying region as lookup table")
		s.alloc.Release(r.Index.Unwrap())

		r.Index = util.None[circuit.Index]()
		for _, col := range r.Columns {
			s.tableCols[col] = true
		}

		s.tables = append(s.tables, r)

		return
	}

	s.regions = append(s.regions, r)
	top := s.stack.Peek(0)
	top.g.Regions = append(top.g.Regions, r)
}

// EnableSelector records that a selector is enabled on a row, widening the
// open region's row extent. Selectors are not circuit columns, so only the
// row extent moves.
func (s *Synthesizer) EnableSelector(sel cs.Selector, row circuit.Row) {
	if s.current == nil {
		s.fail(failure.Structuralf("enable_selector(%d) at row %d outside any region", sel.Index, row))
		return
	}

	s.selectors.Enable(sel.Index, row)
	s.current.TouchRow(row)
}

// OnAdviceAssigned records an advice-cell assignment within the open
// region.
func (s *Synthesizer) OnAdviceAssigned(col circuit.Column, row circuit.Row) {
	if s.current == nil {
		s.fail(failure.Structuralf("advice assignment to %s@%d outside any region", col, row))
		return
	}

	s.current.Touch(col.Any(), row)
}

// OnFixedAssigned records a fixed-cell assignment within the open region.
func (s *Synthesizer) OnFixedAssigned(col circuit.Column, row circuit.Row, value felt.Felt) {
	if s.current == nil {
		s.fail(failure.Structuralf("fixed assignment to %s@%d outside any region", col, row))
		return
	}

	s.current.Touch(col.Any(), row)
	s.fixed[circuit.Cell{Column: col.Any(), Row: row}] = value
}

// Copy records a copy-constraint as an AnyToAny edge at exactly the rows
// given; no relativisation is applied here.
func (s *Synthesizer) Copy(fromCol circuit.Column, fromRow circuit.Row, toCol circuit.Column, toRow circuit.Row) {
	if s.current == nil {
		s.fail(failure.Structuralf("copy (%s@%d -> %s@%d) outside any region", fromCol, fromRow, toCol, toRow))
		return
	}

	s.graph.AddCopy(
		circuit.Cell{Column: fromCol.Any(), Row: fromRow},
		circuit.Cell{Column: toCol.Any(), Row: toRow},
	)
}

// FillFromRow blanket-fills a fixed column with value from row onward. It
// is the one callback permitted outside a region; when no region is open
// the extent update is discarded (the fill itself still takes effect).
func (s *Synthesizer) FillFromRow(col circuit.Column, row circuit.Row, value felt.Felt) {
	s.fills = append(s.fills, Fill{Column: col, Row: row, Value: value})

	if s.current != nil {
		s.current.Touch(col.Any(), row)
	} else {
		log.WithFields(log.Fields{"column": col.String(), "row": row}).
			Debug("fill_from_row outside any region; extent update discarded")
	}
}

// MarkRegionAsTable marks the open region for reclassification as a lookup
// table on exit.
func (s *Synthesizer) MarkRegionAsTable() {
	if s.current == nil {
		s.fail(failure.Structuralf("mark_region_as_table: no region is open"))
		return
	}

	s.currentIsTable = true
}

// PushNamespace pushes a namespace component.
func (s *Synthesizer) PushNamespace(name string) {
	s.namespaces.Push(name)
}

// PopNamespace pops the innermost namespace. A non-empty name must match
// the component being popped.
func (s *Synthesizer) PopNamespace(name string) {
	if s.namespaces.IsEmpty() {
		s.fail(failure.Structuralf("pop_namespace(%q): namespace stack is empty", name))
		return
	}

	if top := s.namespaces.Peek(0); name != "" && name != top {
		s.fail(failure.Structuralf("pop_namespace(%q): innermost namespace is %q", name, top))
		return
	}

	s.namespaces.Pop()
}

// EnterGroup pushes a fresh group onto the active stack.
func (s *Synthesizer) EnterGroup(name string, key uint64) {
	s.stack.Push(&node{g: group.Group{
		Name: s.qualified(name),
		Kind: group.KeyedKind(key),
	}})
}

// ExitGroup pops the innermost group, records its IO, and attaches it as a
// child of the group beneath it. Assigned fixed cells are dropped from the
// IO lists: fixed cells do not carry IO across a group boundary.
func (s *Synthesizer) ExitGroup(inputs, outputs []group.Cell) {
	if s.stack.Len() <= 1 {
		s.fail(failure.Structuralf("exit_group: only the top-level group is active"))
		return
	}

	top := s.stack.Pop()
	top.g.Inputs = dropAssignedFixed(inputs)
	top.g.Outputs = dropAssignedFixed(outputs)

	parent := s.stack.Peek(0)
	parent.children = append(parent.children, top)
}

func dropAssignedFixed(cells []group.Cell) []group.Cell {
	var out []group.Cell

	for _, c := range cells {
		if c.Kind == group.Assigned && c.Cell.Column.Kind == circuit.Fixed {
			continue
		}

		out = append(out, c)
	}

	return out
}

// Finalize seals the synthesis: it checks the protocol completed cleanly,
// joins every fixed vertex of the equality graph to its assigned value, and
// flattens the group tree depth-first (leaves before parents).
func (s *Synthesizer) Finalize() (*State, error) {
	if s.err != nil {
		return nil, s.err
	}

	if s.current != nil {
		return nil, failure.Structuralf("synthesis completed with region %q still open", s.current.Name)
	}

	if s.stack.Len() != 1 {
		return nil, failure.Structuralf("synthesis completed with %d group(s) still open", s.stack.Len()-1)
	}

	state := &State{
		Regions:      s.regions,
		TableRegions: s.tables,
		TableColumns: s.tableCols,
		Fixed:        s.fixed,
		Fills:        s.fills,
		Graph:        s.graph,
		Selectors:    s.selectors,
	}

	// Join every fixed cell referenced by the graph to its stored value.
	for _, cell := range s.graph.FixedVertices() {
		v := state.FixedValue(cell)
		if v.IsEmpty() {
			return nil, failure.Structuralf("fixed cell %s appears in a copy constraint but was never assigned", cell)
		}

		s.graph.AddFixedToConst(cell, v.Unwrap())
	}

	// Flatten the tree post-order so children always precede parents.
	var (
		groups  []group.Group
		flatten func(n *node) int
	)

	flatten = func(n *node) int {
		for _, c := range n.children {
			n.g.Children = append(n.g.Children, flatten(c))
		}

		groups = append(groups, n.g)

		return len(groups) - 1
	}

	main := flatten(s.stack.Peek(0))
	state.Tree = group.Tree{Groups: groups, Main: main}

	log.WithFields(log.Fields{
		"regions": len(state.Regions),
		"tables":  len(state.TableRegions),
		"groups":  len(groups),
	}).Debug("synthesis finalised")

	return state, nil
}
