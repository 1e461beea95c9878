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
package dedup

import (
	"errors"
	"math/big"
	"testing"

	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/config"
	"github.com/plonkir/ferrite/pkg/cs"
	"github.com/plonkir/ferrite/pkg/gen"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/failure"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
	"github.com/plonkir/ferrite/pkg/ir/group"
	"github.com/plonkir/ferrite/pkg/ir/stmt"
	"github.com/plonkir/ferrite/pkg/synth"
)

func adviceCol(i uint) circuit.Column { return circuit.Column{Kind: circuit.Advice, Index: i} }

// twoGadgets synthesises two structurally identical keyed groups at
// different base rows, each with one single-row region and one advice cell
// of IO on each side.
func twoGadgets(t *testing.T) (*synth.State, *gen.Result) {
	t.Helper()

	s := synth.NewSynthesizer("Main", nil, nil)

	for _, base := range []circuit.Row{0, 4} {
		in := group.Cell{Kind: group.AdviceIO, Cell: circuit.Cell{Column: adviceCol(0).Any(), Row: base}}
		out := group.Cell{Kind: group.AdviceIO, Cell: circuit.Cell{Column: adviceCol(1).Any(), Row: base}}

		s.EnterGroup("gadget", 42)
		s.EnterRegion("r")
		s.OnAdviceAssigned(adviceCol(0), base)
		s.OnAdviceAssigned(adviceCol(1), base)
		s.OnAdviceAssigned(adviceCol(2), base)
		s.ExitRegion()
		s.ExitGroup([]group.Cell{in}, []group.Cell{out})
	}

	state, err := s.Finalize()
	if err != nil {
		t.Fatalf("synthesis failed: %v", err)
	}

	sys := cs.System{Gates: []cs.Gate{{
		Name:  "vanish",
		Polys: []cs.Poly{cs.AdviceQuery{Column: adviceCol(2)}},
	}}}

	result, err := gen.Generate(state, sys, gen.Options{Config: config.Default(), Prime: big.NewInt(101)})
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	return state, result
}

func TestDedupMergesEquivalentGroups(t *testing.T) {
	state, result := twoGadgets(t)

	if err := Relativise(state, result); err != nil {
		t.Fatalf("relativisation failed: %v", err)
	}

	Deduplicate(result)

	if len(result.Groups) != 2 {
		t.Fatalf("expected one gadget plus main after dedup, got %d groups", len(result.Groups))
	}

	if result.Tree.CountTopLevel() != 1 {
		t.Fatal("expected exactly one top-level group after dedup")
	}

	// Both callsites in main must now point at the surviving gadget.
	main := result.Groups[result.Main]

	var calls int

	for _, s := range main.Calls.Stmts {
		if call, ok := s.(stmt.ConstraintCall); ok {
			calls++

			if call.CalleeID != 0 {
				t.Fatalf("expected callsite rewritten to group 0, got %d", call.CalleeID)
			}
		}
	}

	if calls != 2 {
		t.Fatalf("expected both callsites preserved, got %d", calls)
	}

	// Ids are densified: main is the last group.
	if result.Main != len(result.Groups)-1 {
		t.Fatalf("expected main renumbered densely, got %d", result.Main)
	}
}

func TestRelativisationMakesGadgetsComparable(t *testing.T) {
	state, result := twoGadgets(t)

	if err := Relativise(state, result); err != nil {
		t.Fatalf("relativisation failed: %v", err)
	}

	// After relativisation, the two gadgets' gate statements are
	// structurally equivalent despite their different base rows.
	leafEq := renamingLeafEq()
	if !stmt.Equiv(result.Groups[0].Gates, result.Groups[1].Gates, leafEq) {
		t.Fatal("expected relativised gate statements to be equivalent")
	}
}

func TestRelativisationFailsOutsideAnyRegion(t *testing.T) {
	s := synth.NewSynthesizer("Main", nil, nil)

	state, err := s.Finalize()
	if err != nil {
		t.Fatalf("synthesis failed: %v", err)
	}

	result := &gen.Result{Tree: state.Tree, Main: state.Tree.Main}
	result.Groups = []gen.LoweredGroup{{
		Group: state.Tree.Groups[0],
		Gates: stmt.NewSeq(stmt.Constraint{
			Op: expr.Eq,
			L:  expr.IO{Loc: funcio.Advice(circuit.Cell{Column: adviceCol(0).Any(), Row: 9})},
			R:  expr.IO{Loc: funcio.Advice(circuit.Cell{Column: adviceCol(0).Any(), Row: 9})},
		}),
	}}

	err = Relativise(state, result)
	if err == nil {
		t.Fatal("expected relativisation to fail for an uncontained advice cell")
	}

	var rerr *failure.Relativisation
	if !errors.As(err, &rerr) {
		t.Fatalf("expected a relativisation failure, got %T: %v", err, err)
	}
}

func TestDifferentKeysDoNotMerge(t *testing.T) {
	state, result := twoGadgets(t)

	if err := Relativise(state, result); err != nil {
		t.Fatalf("relativisation failed: %v", err)
	}

	// Force the second gadget onto a different key; dedup must keep both.
	result.Groups[1].Group.Kind = group.KeyedKind(43)
	result.Tree.Groups[1].Kind = group.KeyedKind(43)

	Deduplicate(result)

	if len(result.Groups) != 3 {
		t.Fatalf("expected no merge across distinct keys, got %d groups", len(result.Groups))
	}
}
