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
	"errors"
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/config"
	"github.com/plonkir/ferrite/pkg/cs"
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/failure"
	"github.com/plonkir/ferrite/pkg/ir/stmt"
)

// ErrNoMatch is the sentinel a pattern returns to decline a gate without
// error; the next pattern in the set is tried.
var ErrNoMatch = errors.New("gate pattern did not match")

// GateScope is everything a pattern sees about one (region, gate) pair: the
// gate's polynomials, the region's row range, and the resolver for scoping
// queries into the enclosing group's IO.
type GateScope struct {
	Gate   cs.Gate
	Region circuit.Region
	// Resolver scopes cell queries into the enclosing group's IO maps.
	Resolver *Resolver
	// Config and Prime are the active compilation settings.
	Config config.CompilationConfig
	Prime  *big.Int
	// Coverage, when non-nil, records the absolute rows the default
	// pattern emitted at least one statement for.
	Coverage *bitset.BitSet
}

// Rows returns the region's absolute row range [lo, hi). A region with no
// start has no rows.
func (s *GateScope) Rows() (lo, hi circuit.Row) {
	if s.Region.Start.IsEmpty() {
		return 0, 0
	}

	return s.Region.Start.Unwrap(), s.Region.End
}

// SelectorsAllDisabled reports whether the polynomial mentions at least one
// selector and every selector it mentions is disabled on the given row —
// the condition under which ignore_disabled_gates suppresses emission.
func (s *GateScope) SelectorsAllDisabled(p cs.Poly, row circuit.Row) bool {
	sels := cs.CollectSelectors(p)
	if len(sels) == 0 {
		return false
	}

	for _, sel := range sels {
		if s.Resolver.state.Selectors.IsEnabled(sel.Index, row) {
			return false
		}
	}

	return true
}

// Pattern rewrites one (region, gate) pair into IR. The first pattern in
// the set to succeed wins; returning ErrNoMatch passes the gate to the next
// pattern, any other error is accumulated and reported only if no pattern
// ends up matching.
type Pattern interface {
	MatchAndRewrite(scope *GateScope) (stmt.Stmt, error)
}

// DefaultPattern is the passthrough pattern installed last in every pattern
// set: for each row of the region it emits one Assert(poly = 0) per gate
// polynomial. With IgnoreDisabledGates set, a polynomial whose selectors
// are all disabled on a row is skipped outright rather than folded away.
type DefaultPattern struct{}

// MatchAndRewrite implementation for the Pattern interface.
func (DefaultPattern) MatchAndRewrite(scope *GateScope) (stmt.Stmt, error) {
	var out []stmt.Stmt

	lo, hi := scope.Rows()

	for row := lo; row < hi; row++ {
		for _, poly := range scope.Gate.Polys {
			if scope.Config.IgnoreDisabledGates && scope.SelectorsAllDisabled(poly, row) {
				continue
			}

			lowered, err := scope.Resolver.LowerPoly(poly, row)
			if err != nil {
				return nil, err
			}

			folded := expr.FoldA(lowered, scope.Prime)
			if c, ok := expr.AsConst(folded); ok && c.IsZero() {
				// The polynomial is identically zero on this row.
				continue
			}

			if scope.Coverage != nil {
				scope.Coverage.Set(uint(row))
			}

			out = append(out, stmt.Assert{Cond: expr.Cmp{
				Op: expr.Eq,
				L:  folded,
				R:  expr.Const{Value: felt.Zero()},
			}})
		}
	}

	if len(out) > 0 && scope.Config.DebugComments {
		comment := stmt.Comment{Text: fmt.Sprintf(
			"gate '%s' @ %s @ rows %d..=%d", scope.Gate.Name, scope.Region.Name, lo, hi-1)}
		out = append([]stmt.Stmt{comment}, out...)
	}

	return stmt.NewSeq(out...), nil
}

// applyPatterns runs the pattern set over one scope: user patterns first,
// the default pattern last. Hard errors from individual patterns are
// accumulated; they surface only if no pattern succeeds.
func applyPatterns(patterns []Pattern, scope *GateScope) (stmt.Stmt, error) {
	var hard []error

	for _, p := range patterns {
		out, err := p.MatchAndRewrite(scope)

		switch {
		case err == nil:
			return out, nil
		case errors.Is(err, ErrNoMatch):
			continue
		default:
			hard = append(hard, err)
		}
	}

	return nil, &failure.Pattern{Gate: scope.Gate.Name, Region: scope.Region.Name, Errs: hard}
}
