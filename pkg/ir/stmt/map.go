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

import "github.com/plonkir/ferrite/pkg/ir/expr"

// MapExprs performs a deep structural traversal, rewriting every embedded
// arithmetic leaf with fa and every embedded boolean with fb, and returns
// the rebuilt statement. Nested Seq, ConstraintCall inputs and Constraint
// operands are all visited.
func MapExprs(s Stmt, fa func(expr.A) expr.A, fb func(expr.B) expr.B) Stmt {
	switch n := s.(type) {
	case Seq:
		stmts := make([]Stmt, len(n.Stmts))
		for i, x := range n.Stmts {
			stmts[i] = MapExprs(x, fa, fb)
		}

		return NewSeq(stmts...)
	case Constraint:
		return Constraint{Op: n.Op, L: expr.MapA(n.L, fa), R: expr.MapA(n.R, fa)}
	case ConstraintCall:
		inputs := make([]expr.A, len(n.Inputs))
		for i, x := range n.Inputs {
			inputs[i] = expr.MapA(x, fa)
		}

		outputs := make([]expr.A, len(n.Outputs))
		for i, x := range n.Outputs {
			outputs[i] = expr.MapA(x, fa)
		}

		return ConstraintCall{
			Callee: n.Callee, CalleeID: n.CalleeID, Inputs: inputs, Outputs: outputs, OutputVars: n.OutputVars,
		}
	case Assert:
		return Assert{Cond: expr.MapB(n.Cond, fa, fb)}
	case PostCond:
		return PostCond{Cond: expr.MapB(n.Cond, fa, fb)}
	case AssumeDeterministic, Comment:
		return n
	default:
		panic("stmt: unknown Stmt constructor")
	}
}

// Equiv decides structural equivalence of two statements under leafEq,
// comparing nested Seq element-wise.
func Equiv(a, b Stmt, leafEq expr.LeafEq) bool {
	switch x := a.(type) {
	case Seq:
		y, ok := b.(Seq)
		if !ok || len(x.Stmts) != len(y.Stmts) {
			return false
		}

		for i := range x.Stmts {
			if !Equiv(x.Stmts[i], y.Stmts[i], leafEq) {
				return false
			}
		}

		return true
	case Constraint:
		y, ok := b.(Constraint)
		return ok && x.Op == y.Op && expr.EquivA(x.L, y.L, leafEq) && expr.EquivA(x.R, y.R, leafEq)
	case ConstraintCall:
		y, ok := b.(ConstraintCall)
		if !ok || x.CalleeID != y.CalleeID || len(x.Inputs) != len(y.Inputs) || len(x.Outputs) != len(y.Outputs) {
			return false
		}

		for i := range x.Inputs {
			if !expr.EquivA(x.Inputs[i], y.Inputs[i], leafEq) {
				return false
			}
		}

		for i := range x.Outputs {
			if !expr.EquivA(x.Outputs[i], y.Outputs[i], leafEq) {
				return false
			}
		}

		return true
	case Assert:
		y, ok := b.(Assert)
		return ok && expr.EquivB(x.Cond, y.Cond, leafEq)
	case PostCond:
		y, ok := b.(PostCond)
		return ok && expr.EquivB(x.Cond, y.Cond, leafEq)
	case AssumeDeterministic:
		y, ok := b.(AssumeDeterministic)
		return ok && leafEq(x.Loc, y.Loc)
	case Comment:
		y, ok := b.(Comment)
		return ok && x.Text == y.Text
	default:
		return false
	}
}
