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

// Package lower defines the lowering protocol each back-end implements: a
// visitor with one operation per expression constructor and one per
// statement form, parameterised over the back-end's opaque handle type. The
// walker here drives the visitor depth-first over an IR statement; the
// visitor is invoked from one thread only and must be reentrant for nested
// callsites.
package lower

import (
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/failure"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
	"github.com/plonkir/ferrite/pkg/ir/stmt"
)

// Visitor is the back-end contract. Each expression-lowering call returns
// an opaque handle H consumed by later calls; handle lifetimes are bounded
// by the visitor's lifetime. Det may be unimplemented (return an error) for
// back-ends that do not model determinism; GenerateComment may discard.
type Visitor[H any] interface {
	// Expression lowering (arithmetic).
	LowerConst(value felt.Felt) (H, error)
	LowerFuncIO(loc funcio.FuncIO) (H, error)
	LowerNeg(x H) (H, error)
	LowerSum(l, r H) (H, error)
	LowerProduct(l, r H) (H, error)

	// Expression lowering (boolean).
	LowerTrue() (H, error)
	LowerFalse() (H, error)
	LowerCmp(op expr.CmpOp, l, r H) (H, error)
	LowerAnd(xs []H) (H, error)
	LowerOr(xs []H) (H, error)
	LowerNot(x H) (H, error)
	LowerImplies(l, r H) (H, error)
	LowerIff(l, r H) (H, error)
	LowerDet(x H) (H, error)

	// Statement lowering.
	GenerateConstraint(op expr.CmpOp, lhs, rhs H) error
	GenerateAssert(cond H) error
	GenerateCall(callee string, calleeID int, inputs []H, outputs []funcio.FuncIO) error
	GenerateAssumeDeterministic(loc funcio.FuncIO) error
	GeneratePostCondition(cond H) error
	GenerateComment(text string) error

	// NumConstraints reports how many constraints have been generated so
	// far, for tests and telemetry.
	NumConstraints() uint
}

// ExprA lowers an arithmetic expression depth-first through the visitor.
func ExprA[H any](v Visitor[H], e expr.A) (H, error) {
	var zero H

	switch n := e.(type) {
	case expr.Const:
		return v.LowerConst(n.Value)
	case expr.IO:
		return v.LowerFuncIO(n.Loc)
	case expr.Neg:
		x, err := ExprA(v, n.X)
		if err != nil {
			return zero, err
		}

		return v.LowerNeg(x)
	case expr.Sum:
		l, err := ExprA(v, n.L)
		if err != nil {
			return zero, err
		}

		r, err := ExprA(v, n.R)
		if err != nil {
			return zero, err
		}

		return v.LowerSum(l, r)
	case expr.Product:
		l, err := ExprA(v, n.L)
		if err != nil {
			return zero, err
		}

		r, err := ExprA(v, n.R)
		if err != nil {
			return zero, err
		}

		return v.LowerProduct(l, r)
	default:
		return zero, failure.Structuralf("lowering: unknown arithmetic constructor %T", e)
	}
}

// ExprB lowers a boolean expression depth-first through the visitor.
func ExprB[H any](v Visitor[H], e expr.B) (H, error) {
	var zero H

	switch n := e.(type) {
	case expr.True:
		return v.LowerTrue()
	case expr.False:
		return v.LowerFalse()
	case expr.Cmp:
		l, err := ExprA(v, n.L)
		if err != nil {
			return zero, err
		}

		r, err := ExprA(v, n.R)
		if err != nil {
			return zero, err
		}

		return v.LowerCmp(n.Op, l, r)
	case expr.And:
		xs, err := lowerAll(v, n.Xs)
		if err != nil {
			return zero, err
		}

		return v.LowerAnd(xs)
	case expr.Or:
		xs, err := lowerAll(v, n.Xs)
		if err != nil {
			return zero, err
		}

		return v.LowerOr(xs)
	case expr.Not:
		x, err := ExprB(v, n.X)
		if err != nil {
			return zero, err
		}

		return v.LowerNot(x)
	case expr.Det:
		x, err := ExprA(v, n.X)
		if err != nil {
			return zero, err
		}

		return v.LowerDet(x)
	case expr.Implies:
		l, err := ExprB(v, n.L)
		if err != nil {
			return zero, err
		}

		r, err := ExprB(v, n.R)
		if err != nil {
			return zero, err
		}

		return v.LowerImplies(l, r)
	case expr.Iff:
		l, err := ExprB(v, n.L)
		if err != nil {
			return zero, err
		}

		r, err := ExprB(v, n.R)
		if err != nil {
			return zero, err
		}

		return v.LowerIff(l, r)
	default:
		return zero, failure.Structuralf("lowering: unknown boolean constructor %T", e)
	}
}

func lowerAll[H any](v Visitor[H], xs []expr.B) ([]H, error) {
	out := make([]H, len(xs))

	for i, x := range xs {
		h, err := ExprB(v, x)
		if err != nil {
			return nil, err
		}

		out[i] = h
	}

	return out, nil
}

// Stmt walks an IR statement depth-first and dispatches each constructor to
// the visitor. A Constraint with the Eq operator lowers directly through
// GenerateConstraint; other comparison operators evaluate the boolean and
// emit an assertion.
func Stmt[H any](v Visitor[H], s stmt.Stmt) error {
	switch n := s.(type) {
	case stmt.Seq:
		for _, x := range n.Stmts {
			if err := Stmt(v, x); err != nil {
				return err
			}
		}

		return nil
	case stmt.Constraint:
		l, err := ExprA(v, n.L)
		if err != nil {
			return err
		}

		r, err := ExprA(v, n.R)
		if err != nil {
			return err
		}

		if n.Op == expr.Eq {
			return v.GenerateConstraint(expr.Eq, l, r)
		}

		cond, err := v.LowerCmp(n.Op, l, r)
		if err != nil {
			return err
		}

		return v.GenerateAssert(cond)
	case stmt.ConstraintCall:
		inputs := make([]H, len(n.Inputs))

		for i, in := range n.Inputs {
			h, err := ExprA(v, in)
			if err != nil {
				return err
			}

			inputs[i] = h
		}

		return v.GenerateCall(n.Callee, n.CalleeID, inputs, n.OutputVars)
	case stmt.Assert:
		cond, err := ExprB(v, n.Cond)
		if err != nil {
			return err
		}

		return v.GenerateAssert(cond)
	case stmt.AssumeDeterministic:
		return v.GenerateAssumeDeterministic(n.Loc)
	case stmt.Comment:
		return v.GenerateComment(n.Text)
	case stmt.PostCond:
		cond, err := ExprB(v, n.Cond)
		if err != nil {
			return err
		}

		return v.GeneratePostCondition(cond)
	default:
		return failure.Structuralf("lowering: unknown statement constructor %T", s)
	}
}
