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
package gen

import (
	"github.com/plonkir/ferrite/pkg/cs"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
	"github.com/plonkir/ferrite/pkg/ir/stmt"
)

// LookupCallback expands lookup queries into IR. It is invoked exactly once
// per generation run with the full lookup list, a lazy per-lookup table-row
// provider, and a temporary allocator; it returns one statement per lookup.
// Fresh locations introduced by the callback must be Temp handles drawn
// from the allocator — the generator clones the returned IR once per
// region-row and re-allocates every temporary from the second region-row
// onward, so hand-numbered temporaries would collide between rows.
type LookupCallback func(lookups []cs.Lookup, tables func(i int) cs.TableRows, temps *funcio.Generator) ([]stmt.Stmt, error)

// cloneWithFreshTemps rewrites every Temp handle in s to a fresh one drawn
// from gen, using one substitution per distinct incoming temp so that
// repeated references stay consistent within the clone. Traversal order is
// deterministic, which keeps the substitution stable across runs.
func cloneWithFreshTemps(s stmt.Stmt, gen *funcio.Generator) stmt.Stmt {
	subst := make(map[uint]funcio.FuncIO)

	remap := func(io funcio.FuncIO) funcio.FuncIO {
		if io.Tag != funcio.TagTemp {
			return io
		}

		fresh, ok := subst[io.N]
		if !ok {
			fresh = gen.Fresh()
			subst[io.N] = fresh
		}

		return fresh
	}

	fa := func(a expr.A) expr.A {
		if leaf, ok := a.(expr.IO); ok {
			return expr.IO{Loc: remap(leaf.Loc)}
		}

		return a
	}

	out := stmt.MapExprs(s, fa, func(b expr.B) expr.B { return b })

	return remapStmtLocs(out, remap)
}

// remapStmtLocs rewrites the FuncIO handles statements carry outside their
// expressions: ConstraintCall output variables and AssumeDeterministic
// locations.
func remapStmtLocs(s stmt.Stmt, remap func(funcio.FuncIO) funcio.FuncIO) stmt.Stmt {
	switch n := s.(type) {
	case stmt.Seq:
		stmts := make([]stmt.Stmt, len(n.Stmts))
		for i, x := range n.Stmts {
			stmts[i] = remapStmtLocs(x, remap)
		}

		return stmt.Seq{Stmts: stmts}
	case stmt.ConstraintCall:
		vars := make([]funcio.FuncIO, len(n.OutputVars))
		for i, v := range n.OutputVars {
			vars[i] = remap(v)
		}

		n.OutputVars = vars

		return n
	case stmt.AssumeDeterministic:
		n.Loc = remap(n.Loc)
		return n
	default:
		return n
	}
}
