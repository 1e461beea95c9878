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
	"github.com/plonkir/ferrite/pkg/gen"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
	"github.com/plonkir/ferrite/pkg/ir/group"
	"github.com/plonkir/ferrite/pkg/ir/stmt"
	log "github.com/sirupsen/logrus"
)

// renamingLeafEq compares location leaves modulo symbolic renaming: temps
// match under a bijection built up during the comparison, relativised
// advice cells match by (column, offset) regardless of which region they
// were relativised against, and everything else matches by value.
func renamingLeafEq() expr.LeafEq {
	fwd := make(map[uint]uint)
	rev := make(map[uint]uint)

	return func(x, y funcio.FuncIO) bool {
		if x.Tag != y.Tag {
			return false
		}

		switch x.Tag {
		case funcio.TagTemp:
			if v, ok := fwd[x.N]; ok {
				return v == y.N
			}

			if _, ok := rev[y.N]; ok {
				return false
			}

			fwd[x.N] = y.N
			rev[y.N] = x.N

			return true
		case funcio.TagAdvice:
			if x.Relative != y.Relative {
				return false
			}

			if x.Relative {
				return x.Rel.Column == y.Rel.Column && x.Rel.Offset == y.Rel.Offset
			}

			return x.Cell == y.Cell
		default:
			return x == y
		}
	}
}

// equivalent decides whether two non-main groups are equivalent: same key,
// matching IO arities, and structurally equivalent gate, equality, lookup
// and callsite sequences under one shared renaming.
func equivalent(result *gen.Result, a, b int) bool {
	ga, gb := &result.Groups[a], &result.Groups[b]

	if ga.Group.Kind.TopLevel || gb.Group.Kind.TopLevel {
		return false
	}

	if ga.Group.Kind.Key != gb.Group.Kind.Key {
		return false
	}

	if ga.Group.InputCount() != gb.Group.InputCount() || ga.Group.OutputCount() != gb.Group.OutputCount() {
		return false
	}

	leafEq := renamingLeafEq()

	return stmt.Equiv(ga.Gates, gb.Gates, leafEq) &&
		stmt.Equiv(ga.Equalities, gb.Equalities, leafEq) &&
		stmt.Equiv(ga.Lookups, gb.Lookups, leafEq) &&
		equivCalls(result, ga.Calls, gb.Calls, leafEq)
}

// equivCalls compares two callsite sequences element-wise. Callsites match
// when their callees carry the same key (not necessarily the same id) and
// their input and output expressions are equivalent; the interleaved
// binding constraints compare structurally.
func equivCalls(result *gen.Result, a, b stmt.Seq, leafEq expr.LeafEq) bool {
	if len(a.Stmts) != len(b.Stmts) {
		return false
	}

	for i := range a.Stmts {
		x, xok := a.Stmts[i].(stmt.ConstraintCall)
		y, yok := b.Stmts[i].(stmt.ConstraintCall)

		if xok != yok {
			return false
		}

		if !xok {
			if !stmt.Equiv(a.Stmts[i], b.Stmts[i], leafEq) {
				return false
			}

			continue
		}

		xCallee := &result.Tree.Groups[x.CalleeID]
		yCallee := &result.Tree.Groups[y.CalleeID]

		if xCallee.Kind.TopLevel || yCallee.Kind.TopLevel || xCallee.Kind.Key != yCallee.Kind.Key {
			return false
		}

		if len(x.Inputs) != len(y.Inputs) || len(x.Outputs) != len(y.Outputs) ||
			len(x.OutputVars) != len(y.OutputVars) {
			return false
		}

		for j := range x.Inputs {
			if !expr.EquivA(x.Inputs[j], y.Inputs[j], leafEq) {
				return false
			}
		}

		for j := range x.Outputs {
			if !expr.EquivA(x.Outputs[j], y.Outputs[j], leafEq) {
				return false
			}
		}
	}

	return true
}

// Deduplicate merges equivalent non-main groups in place: one
// representative survives per equivalence class, every callsite that
// pointed at a redundant group is rewritten to the representative, and
// group ids are renumbered densely. Relativise must run first.
func Deduplicate(result *gen.Result) {
	n := len(result.Groups)

	// remap[i] is the representative of group i (itself if kept). Groups
	// are visited children-first, so representatives are settled before
	// any parent comparing callsites by callee-key.
	remap := make([]int, n)
	for i := range remap {
		remap[i] = i
	}

	for i := 0; i < n; i++ {
		if result.Groups[i].Group.Kind.TopLevel {
			continue
		}

		for j := 0; j < i; j++ {
			if remap[j] != j {
				continue
			}

			if equivalent(result, j, i) {
				remap[i] = j

				log.WithFields(log.Fields{
					"redundant":      result.Groups[i].Group.Name,
					"representative": result.Groups[j].Group.Name,
				}).Debug("deduplicating equivalent group")

				break
			}
		}
	}

	// Dense renumbering over the survivors.
	newID := make([]int, n)
	kept := 0

	for i := 0; i < n; i++ {
		if remap[i] == i {
			newID[i] = kept
			kept++
		}
	}

	for i := 0; i < n; i++ {
		newID[i] = newID[remap[i]]
	}

	groups := make([]gen.LoweredGroup, 0, kept)
	treeGroups := make([]group.Group, 0, kept)

	for i := 0; i < n; i++ {
		if remap[i] != i {
			continue
		}

		lg := result.Groups[i]
		lg.Index = newID[i]
		lg.Group.Children = renumber(lg.Group.Children, newID)
		lg.Calls = rewriteCallees(lg.Calls, remap, newID, result)

		groups = append(groups, lg)
		treeGroups = append(treeGroups, lg.Group)
	}

	result.Groups = groups
	result.Tree = group.Tree{Groups: treeGroups, Main: newID[result.Tree.Main]}
	result.Main = result.Tree.Main
}

func renumber(children []int, newID []int) []int {
	out := make([]int, len(children))
	for i, c := range children {
		out[i] = newID[c]
	}

	return out
}

func rewriteCallees(calls stmt.Seq, remap, newID []int, result *gen.Result) stmt.Seq {
	stmts := make([]stmt.Stmt, len(calls.Stmts))

	for i, s := range calls.Stmts {
		call, ok := s.(stmt.ConstraintCall)
		if !ok {
			stmts[i] = s
			continue
		}

		rep := remap[call.CalleeID]
		call.Callee = result.Groups[rep].Group.Name
		call.CalleeID = newID[call.CalleeID]
		stmts[i] = call
	}

	return stmt.Seq{Stmts: stmts}
}
