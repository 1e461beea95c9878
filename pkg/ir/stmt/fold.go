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
package stmt

import (
	"fmt"
	"math/big"

	"github.com/plonkir/ferrite/pkg/ir/expr"
)

// InconsistentFoldError reports that a statement folded to a predicate that
// can never hold. It is fatal: the pass that produced it halts the
// pipeline rather than continuing with partial output.
type InconsistentFoldError struct {
	// Stmt names the offending statement for diagnostics.
	Stmt string
}

func (e *InconsistentFoldError) Error() string {
	return fmt.Sprintf("constant folding: statement %q folds to a predicate evaluating to 'false'", e.Stmt)
}

// ConstantFold applies expression-level folding to every embedded
// expression of s against the prime p. An Assert or Constraint whose
// condition folds to a tautology is removed (replaced by the empty
// sequence); one that folds to an unsatisfiable proposition is reported via
// an *InconsistentFoldError naming the statement, and the whole pass fails.
func ConstantFold(s Stmt, p *big.Int) (Stmt, error) {
	folded := MapExprs(s, func(a expr.A) expr.A { return expr.FoldA(a, p) }, func(b expr.B) expr.B { return expr.FoldB(b, p) })

	return pruneFolded(folded, p)
}

// pruneFolded walks a statement whose expressions are already folded and
// removes tautologies / reports contradictions at the Assert/Constraint
// level.
func pruneFolded(s Stmt, p *big.Int) (Stmt, error) {
	switch n := s.(type) {
	case Seq:
		var kept []Stmt

		for _, x := range n.Stmts {
			pruned, err := pruneFolded(x, p)
			if err != nil {
				return nil, err
			}

			if !IsEmpty(pruned) {
				kept = append(kept, pruned)
			}
		}

		return Seq{Stmts: kept}, nil
	case Assert:
		switch n.Cond.(type) {
		case expr.True:
			return Empty(), nil
		case expr.False:
			return nil, &InconsistentFoldError{Stmt: fmt.Sprintf("assert(%s)", describeB(n.Cond))}
		default:
			return n, nil
		}
	case Constraint:
		lc, lok := expr.AsConst(n.L)
		rc, rok := expr.AsConst(n.R)

		if lok && rok {
			switch expr.FoldB(expr.Cmp{Op: n.Op, L: n.L, R: n.R}, p).(type) {
			case expr.True:
				return Empty(), nil
			case expr.False:
				return nil, &InconsistentFoldError{
					Stmt: fmt.Sprintf("constraint(%s %s %s)", lc, n.Op, rc),
				}
			}
		}

		return n, nil
	default:
		return n, nil
	}
}

func describeB(b expr.B) string {
	switch b.(type) {
	case expr.True:
		return "true"
	case expr.False:
		return "false"
	default:
		return "<predicate>"
	}
}

// Canonicalize applies the B-level rewrite rules to every embedded boolean
// of s, then promotes each Assert over a bare comparison into a direct
// Constraint so back-ends take the solver-equality path. Ordering across a
// whole IR generation run is: ConstantFold, then Canonicalize, then
// ConstantFold again, which is idempotent for IR containing no
// user-supplied rewrites.
func Canonicalize(s Stmt) Stmt {
	return promoteAsserts(MapExprs(s, func(a expr.A) expr.A { return a }, expr.Canon))
}

func promoteAsserts(s Stmt) Stmt {
	switch n := s.(type) {
	case Seq:
		stmts := make([]Stmt, len(n.Stmts))
		for i, x := range n.Stmts {
			stmts[i] = promoteAsserts(x)
		}

		return Seq{Stmts: stmts}
	case Assert:
		if cmp, ok := n.Cond.(expr.Cmp); ok {
			return Constraint{Op: cmp.Op, L: cmp.L, R: cmp.R}
		}

		return n
	default:
		return n
	}
}
