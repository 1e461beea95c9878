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
package group

import (
	"strings"
	"testing"

	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/util"
)

func regionAt(name string, start, end circuit.Row, cols ...circuit.AnyColumn) circuit.Region {
	r := circuit.NewRegion(name)
	r.Index = util.Some(circuit.Index(0))
	r.Start = util.Some(start)
	r.End = end
	r.Columns = cols

	return r
}

func anyAdvice(i uint) circuit.AnyColumn { return circuit.AnyColumn{Kind: circuit.Advice, Index: i} }

func anyFixed(i uint) circuit.AnyColumn { return circuit.AnyColumn{Kind: circuit.Fixed, Index: i} }

// boundsFixture builds a tree with one child group and one parent: the
// parent spans advice column 0 over rows [0,4), declares an IO cell inside
// its region and one outside it, and its child contributes one output cell.
func boundsFixture() *Tree {
	inIO := Cell{Kind: AdviceIO, Cell: circuit.Cell{Column: anyAdvice(0), Row: 1}}
	farIO := Cell{Kind: InstanceIO, Cell: circuit.Cell{Column: circuit.AnyColumn{Kind: circuit.Instance}, Row: 9}}
	childOut := Cell{Kind: AdviceIO, Cell: circuit.Cell{Column: anyAdvice(1), Row: 7}}

	child := Group{Name: "child", Kind: KeyedKind(1), Outputs: []Cell{childOut}}
	parent := Group{
		Name:     "parent",
		Kind:     TopLevelKind(),
		Inputs:   []Cell{inIO, farIO},
		Regions:  []circuit.Region{regionAt("r0", 0, 4, anyAdvice(0))},
		Children: []int{0},
	}

	return &Tree{Groups: []Group{child, parent}, Main: 1}
}

func TestClassify(t *testing.T) {
	b := NewBounds(boundsFixture(), 1)

	cases := []struct {
		name string
		cell circuit.Cell
		want Position
	}{
		{"io inside region", circuit.Cell{Column: anyAdvice(0), Row: 1}, IO},
		{"io outside region", circuit.Cell{Column: circuit.AnyColumn{Kind: circuit.Instance}, Row: 9}, ForeignIO},
		{"plain cell in region", circuit.Cell{Column: anyAdvice(0), Row: 2}, Within},
		{"child output", circuit.Cell{Column: anyAdvice(1), Row: 7}, Within},
		{"unrelated", circuit.Cell{Column: anyAdvice(5), Row: 0}, Outside},
	}

	for _, tc := range cases {
		if got := b.Classify(tc.cell); got != tc.want {
			t.Errorf("%s: classified %s as %s, want %s", tc.name, tc.cell, got, tc.want)
		}
	}
}

func TestAcceptsEdge(t *testing.T) {
	b := NewBounds(boundsFixture(), 1)

	within := circuit.Cell{Column: anyAdvice(0), Row: 2}
	io := circuit.Cell{Column: anyAdvice(0), Row: 1}
	foreign := circuit.Cell{Column: circuit.AnyColumn{Kind: circuit.Instance}, Row: 9}
	outsideAdvice := circuit.Cell{Column: anyAdvice(5), Row: 0}
	outsideFixed := circuit.Cell{Column: anyFixed(0), Row: 0}

	cases := []struct {
		name     string
		lhs, rhs circuit.Cell
		want     bool
	}{
		{"within-within", within, within, true},
		{"within-io", within, io, true},
		{"within-foreign", within, foreign, true},
		{"within-outside advice", within, outsideAdvice, false},
		{"within-outside fixed", within, outsideFixed, true},
		{"outside fixed-within", outsideFixed, within, true},
		{"io-io", io, io, true},
		{"io-foreign", io, foreign, true},
		{"io-outside", io, outsideAdvice, false},
		{"foreign-foreign", foreign, foreign, false},
		{"foreign-outside", foreign, outsideAdvice, false},
		{"outside-outside", outsideAdvice, outsideFixed, false},
	}

	for _, tc := range cases {
		if got := b.AcceptsEdge(tc.lhs, tc.rhs); got != tc.want {
			t.Errorf("%s: AcceptsEdge = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAcceptsFixedToConst(t *testing.T) {
	b := NewBounds(boundsFixture(), 1)

	outside := circuit.Cell{Column: anyFixed(0), Row: 0}
	if !b.AcceptsFixedToConst(outside) {
		t.Error("expected an outside fixed cell to be accepted")
	}
}

func TestValidateCallsitesReportsEveryMismatch(t *testing.T) {
	tree := boundsFixture()

	sites := []Callsite{
		{CallNo: 0, CalleeID: 0, Inputs: 2, Outputs: 1, OutputVars: 1},
		{CallNo: 1, CalleeID: 5, Inputs: 0, Outputs: 0, OutputVars: 0},
		{CallNo: 2, CalleeID: 0, Inputs: 0, Outputs: 1, OutputVars: 2},
	}

	err := ValidateCallsites(tree, 1, sites)
	if err == nil {
		t.Fatal("expected validation failures")
	}

	msg := err.Error()
	for _, want := range []string{"inputs", "out of range", "output variables"} {
		if !strings.Contains(msg, want) {
			t.Errorf("aggregated message %q missing %q", msg, want)
		}
	}
}

func TestValidateCallsitesAcceptsMatchingArity(t *testing.T) {
	tree := boundsFixture()

	if err := ValidateCallsites(tree, 1, []Callsite{
		{CallNo: 0, CalleeID: 0, Inputs: 0, Outputs: 1, OutputVars: 1},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
