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
	"testing"

	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/circuit/eqgraph"
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/group"
)

func adviceCol(i uint) circuit.Column { return circuit.Column{Kind: circuit.Advice, Index: i} }

func fixedCol(i uint) circuit.Column { return circuit.Column{Kind: circuit.Fixed, Index: i} }

func TestNestedRegionIsStructuralError(t *testing.T) {
	s := NewSynthesizer("Main", nil, nil)
	s.EnterRegion("outer")
	s.EnterRegion("inner")
	s.ExitRegion()

	if _, err := s.Finalize(); err == nil {
		t.Fatal("expected a structural error for nested enter_region")
	}
}

func TestExitRegionWithoutOpenIsStructuralError(t *testing.T) {
	s := NewSynthesizer("Main", nil, nil)
	s.ExitRegion()

	if _, err := s.Finalize(); err == nil {
		t.Fatal("expected a structural error for exit_region with no open region")
	}
}

func TestRegionExtentFollowsAssignments(t *testing.T) {
	s := NewSynthesizer("Main", nil, nil)
	s.EnterRegion("r0")
	s.OnAdviceAssigned(adviceCol(0), 3)
	s.OnAdviceAssigned(adviceCol(0), 5)
	s.ExitRegion()

	state, err := s.Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(state.Regions) != 1 {
		t.Fatalf("expected one region, got %d", len(state.Regions))
	}

	r := state.Regions[0]
	if r.Start.Unwrap() != 3 || r.End != 6 {
		t.Fatalf("expected extent [3,6), got [%d,%d)", r.Start.Unwrap(), r.End)
	}
}

func TestTableRegionReleasesItsIndex(t *testing.T) {
	s := NewSynthesizer("Main", nil, nil)

	s.EnterRegion("table")
	s.OnFixedAssigned(fixedCol(0), 0, felt.FromUint64(1))
	s.MarkRegionAsTable()
	s.ExitRegion()

	s.EnterRegion("r0")
	s.OnAdviceAssigned(adviceCol(0), 0)
	s.ExitRegion()

	state, err := s.Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The table's index 0 is recycled by the next region.
	if got := state.Regions[0].Index.Unwrap(); got != 0 {
		t.Fatalf("expected recycled region index 0, got %d", got)
	}

	if len(state.TableRegions) != 1 || !state.TableColumns[fixedCol(0).Any()] {
		t.Fatalf("expected the table region and its column recorded: %+v", state)
	}
}

func TestFillFromRowOutsideRegionStillFills(t *testing.T) {
	s := NewSynthesizer("Main", nil, nil)
	s.FillFromRow(fixedCol(0), 2, felt.FromUint64(9))

	state, err := s.Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cell := circuit.Cell{Column: fixedCol(0).Any(), Row: 7}
	if v := state.FixedValue(cell); v.IsEmpty() || !v.Unwrap().Equal(felt.FromUint64(9)) {
		t.Fatalf("expected fill to cover row 7, got %v", v)
	}

	before := circuit.Cell{Column: fixedCol(0).Any(), Row: 1}
	if v := state.FixedValue(before); v.HasValue() {
		t.Fatalf("expected no value before the fill row, got %v", v.Unwrap())
	}
}

func TestFinalizeAttachesFixedToConstEdges(t *testing.T) {
	s := NewSynthesizer("Main", nil, nil)

	s.EnterRegion("r0")
	s.OnFixedAssigned(fixedCol(0), 0, felt.FromUint64(7))
	s.OnAdviceAssigned(adviceCol(0), 0)
	s.Copy(fixedCol(0), 0, adviceCol(0), 0)
	s.ExitRegion()

	state, err := s.Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var found bool

	for _, e := range state.Graph.Edges() {
		if e.Kind == eqgraph.FixedToConst && e.To.Const.Equal(felt.FromUint64(7)) {
			found = true
		}
	}

	if !found {
		t.Fatal("expected a FixedToConst edge joining the fixed cell to 7")
	}
}

func TestGroupTreeFlattensChildrenBeforeParents(t *testing.T) {
	s := NewSynthesizer("Main", nil, nil)

	s.EnterGroup("outer", 1)
	s.EnterGroup("inner", 2)
	s.ExitGroup(nil, nil)
	s.ExitGroup(nil, nil)

	state, err := s.Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tree := state.Tree
	if len(tree.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(tree.Groups))
	}

	if tree.Groups[0].Name != "inner" || tree.Groups[1].Name != "outer" || tree.Groups[2].Name != "Main" {
		t.Fatalf("unexpected flatten order: %v, %v, %v",
			tree.Groups[0].Name, tree.Groups[1].Name, tree.Groups[2].Name)
	}

	if tree.Main != 2 || tree.CountTopLevel() != 1 {
		t.Fatalf("expected exactly one top-level at index 2, got main=%d", tree.Main)
	}

	if len(tree.Groups[1].Children) != 1 || tree.Groups[1].Children[0] != 0 {
		t.Fatalf("expected outer's child to be index 0, got %v", tree.Groups[1].Children)
	}
}

func TestExitGroupDropsAssignedFixedIO(t *testing.T) {
	s := NewSynthesizer("Main", nil, nil)

	fixedIO := group.Cell{Kind: group.Assigned, Cell: circuit.Cell{Column: fixedCol(0).Any(), Row: 0}}
	adviceIO := group.Cell{Kind: group.AdviceIO, Cell: circuit.Cell{Column: adviceCol(0).Any(), Row: 0}}

	s.EnterGroup("g", 1)
	s.ExitGroup([]group.Cell{fixedIO, adviceIO}, []group.Cell{fixedIO})

	state, err := s.Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g := state.Tree.Groups[0]
	if g.InputCount() != 1 || g.Inputs[0].Kind != group.AdviceIO {
		t.Fatalf("expected the assigned fixed input dropped, got %+v", g.Inputs)
	}

	if g.OutputCount() != 0 {
		t.Fatalf("expected the assigned fixed output dropped, got %+v", g.Outputs)
	}
}

func TestNamespaceMismatchIsStructuralError(t *testing.T) {
	s := NewSynthesizer("Main", nil, nil)
	s.PushNamespace("a")
	s.PopNamespace("b")

	if _, err := s.Finalize(); err == nil {
		t.Fatal("expected a structural error for mismatched pop_namespace")
	}
}
