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

// Package examples provides small built-in circuits implementing the
// upstream cs.Circuit contract, so the CLI can exercise the whole pipeline
// without an external constraint-system front-end.
package examples

import (
	"fmt"
	"sort"

	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/cs"
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/group"
)

// Registry maps example names to their circuits.
var Registry = map[string]cs.Circuit{
	"mul":  MulCircuit{},
	"copy": CopyCircuit{},
}

// Names returns the registered example names, sorted.
func Names() []string {
	out := make([]string, 0, len(Registry))
	for name := range Registry {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// Lookup returns the named example circuit.
func Lookup(name string) (cs.Circuit, error) {
	circ, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown example circuit %q (available: %v)", name, Names())
	}

	return circ, nil
}

func advice(i uint) circuit.Column { return circuit.Column{Kind: circuit.Advice, Index: i} }

func instance(i uint) circuit.Column { return circuit.Column{Kind: circuit.Instance, Index: i} }

// MulCircuit multiplies two witnesses per row under a selector-gated gate
// "s * (a * b - c) = 0", synthesised twice as two keyed groups so the
// pipeline's dedup pass has something to merge.
type MulCircuit struct{}

// ConstraintSystem implementation for cs.Circuit.
func (MulCircuit) ConstraintSystem() cs.System {
	a := cs.AdviceQuery{Column: advice(0)}
	b := cs.AdviceQuery{Column: advice(1)}
	c := cs.AdviceQuery{Column: advice(2)}
	s := cs.Selector{Index: 0}

	return cs.System{
		Gates: []cs.Gate{{
			Name:  "mul",
			Polys: []cs.Poly{cs.Product{L: s, R: cs.Sub(cs.Product{L: a, R: b}, c)}},
		}},
		NumSelectors: 1,
		NumAdvice:    3,
		NumInstance:  1,
	}
}

// IO implementation for cs.Circuit.
func (MulCircuit) IO() (inputs, outputs []group.Cell) {
	in := group.Cell{Kind: group.InstanceIO, Cell: circuit.Cell{Column: instance(0).Any(), Row: 0}}
	out := group.Cell{Kind: group.InstanceIO, Cell: circuit.Cell{Column: instance(0).Any(), Row: 1}}

	return []group.Cell{in}, []group.Cell{out}
}

// Synthesize implementation for cs.Circuit.
func (MulCircuit) Synthesize(obs cs.Observer) error {
	// Two structurally identical gadget instances at different rows.
	for i, base := range []circuit.Row{0, 1} {
		obs.EnterGroup(fmt.Sprintf("mul_gadget_%d", i), 0xa11ce)
		obs.EnterRegion("mul")
		obs.EnableSelector(cs.Selector{Index: 0}, base)
		obs.OnAdviceAssigned(advice(0), base)
		obs.OnAdviceAssigned(advice(1), base)
		obs.OnAdviceAssigned(advice(2), base)
		obs.ExitRegion()
		obs.ExitGroup(
			[]group.Cell{
				{Kind: group.AdviceIO, Cell: circuit.Cell{Column: advice(0).Any(), Row: base}},
				{Kind: group.AdviceIO, Cell: circuit.Cell{Column: advice(1).Any(), Row: base}},
			},
			[]group.Cell{
				{Kind: group.AdviceIO, Cell: circuit.Cell{Column: advice(2).Any(), Row: base}},
			},
		)
	}

	return nil
}

// CopyCircuit wires one advice cell to another across two regions with a
// copy constraint, and pins the first to a fixed constant.
type CopyCircuit struct{}

// ConstraintSystem implementation for cs.Circuit.
func (CopyCircuit) ConstraintSystem() cs.System {
	return cs.System{NumAdvice: 1, NumFixed: 1, NumInstance: 1}
}

// IO implementation for cs.Circuit.
func (CopyCircuit) IO() (inputs, outputs []group.Cell) {
	out := group.Cell{Kind: group.InstanceIO, Cell: circuit.Cell{Column: instance(0).Any(), Row: 0}}
	return nil, []group.Cell{out}
}

// Synthesize implementation for cs.Circuit.
func (CopyCircuit) Synthesize(obs cs.Observer) error {
	fixed := circuit.Column{Kind: circuit.Fixed, Index: 0}

	obs.EnterRegion("r0")
	obs.OnAdviceAssigned(advice(0), 0)
	obs.OnFixedAssigned(fixed, 0, felt.FromUint64(7))
	obs.Copy(fixed, 0, advice(0), 0)
	obs.ExitRegion()

	obs.EnterRegion("r1")
	obs.OnAdviceAssigned(advice(0), 5)
	obs.Copy(advice(0), 0, advice(0), 5)
	obs.ExitRegion()

	return nil
}
