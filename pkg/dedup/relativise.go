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

// Package dedup implements advice-cell relativisation and equivalence-driven
// group deduplication: after relativisation makes advice references
// comparable across groups, equivalent non-main groups collapse to a single
// representative, callsites are rewritten, and group ids are renumbered
// densely.
package dedup

import (
	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/gen"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/failure"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
	"github.com/plonkir/ferrite/pkg/ir/stmt"
	"github.com/plonkir/ferrite/pkg/synth"
)

// Relativise rewrites every absolute advice reference in every group of the
// result to an offset from its containing region's start. It fails if an
// advice reference is not contained in any region, or the containing region
// has no start or index.
func Relativise(state *synth.State, result *gen.Result) error {
	for i := range result.Groups {
		g := &result.Groups[i]

		var err error
		if g.Calls, err = relativiseSeq(state, g.Calls); err != nil {
			return err
		}

		if g.Gates, err = relativiseSeq(state, g.Gates); err != nil {
			return err
		}

		if g.Equalities, err = relativiseSeq(state, g.Equalities); err != nil {
			return err
		}

		if g.Lookups, err = relativiseSeq(state, g.Lookups); err != nil {
			return err
		}
	}

	return nil
}

func relativiseSeq(state *synth.State, s stmt.Seq) (stmt.Seq, error) {
	var firstErr error

	fa := func(a expr.A) expr.A {
		leaf, ok := a.(expr.IO)
		if !ok || leaf.Loc.Tag != funcio.TagAdvice || leaf.Loc.Relative {
			return a
		}

		rel, err := relativiseCell(state, leaf.Loc.Cell)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}

			return a
		}

		return expr.IO{Loc: funcio.AdviceRel(rel)}
	}

	out := stmt.MapExprs(s, fa, func(b expr.B) expr.B { return b })
	if firstErr != nil {
		return stmt.Seq{}, firstErr
	}

	seq, ok := out.(stmt.Seq)
	if !ok {
		seq = stmt.NewSeq(out)
	}

	return seq, nil
}

func relativiseCell(state *synth.State, cell circuit.Cell) (circuit.RelativeCell, error) {
	region := state.RegionContaining(cell)
	if region.IsEmpty() {
		return circuit.RelativeCell{}, &failure.Relativisation{
			Cell: cell.String(), Msg: "not contained in any region",
		}
	}

	rel, err := circuit.Relativise(cell, region.Unwrap())
	if err != nil {
		return circuit.RelativeCell{}, &failure.Relativisation{Cell: cell.String(), Msg: err.Error()}
	}

	return rel, nil
}
