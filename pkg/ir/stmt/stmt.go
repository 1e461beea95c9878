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

// Package stmt implements the statement kernel of the constraint IR: the
// Stmt sum type, sequencing, constant folding and canonicalisation of
// embedded expressions. Statements are single-assignment after
// construction; folding and canonicalisation produce new statements rather
// than mutating in place, mirroring the expression kernel.
package stmt

import (
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
)

// Stmt is an IR statement: a closed sum type over Seq, Constraint,
// ConstraintCall, Assert, AssumeDeterministic, Comment and PostCond.
type Stmt interface {
	isStmt()
}

// Seq sequences zero or more statements. NewSeq flattens nested Seq values
// at construction time, so that Equiv below can compare sequences purely
// element-wise rather than needing an associativity-aware comparator.
type Seq struct{ Stmts []Stmt }

// Constraint emits a solver equality directly: "lhs op rhs". Kept distinct
// from Assert(Cmp(...)) even though semantically equivalent, because
// back-ends treat a bare equality constraint differently from a general
// boolean assertion.
type Constraint struct {
	Op   expr.CmpOp
	L, R expr.A
}

// ConstraintCall invokes another group, binding one output variable per
// callee output. Outputs holds the actual output expressions at the
// callsite; OutputVars the CallOutput handles they are bound to. Arity is
// validated against the callee by pkg/ir/group.
type ConstraintCall struct {
	Callee     string
	CalleeID   int
	Inputs     []expr.A
	Outputs    []expr.A
	OutputVars []funcio.FuncIO
}

// Assert asserts that a boolean expression holds.
type Assert struct{ Cond expr.B }

// AssumeDeterministic hints that evaluating the given location is
// deterministic; a no-op for back-ends that don't model determinism.
type AssumeDeterministic struct{ Loc funcio.FuncIO }

// Comment carries a diagnostic string. Emitted only when the lowering
// configuration enables debug comments.
type Comment struct{ Text string }

// PostCond states a post-condition a back-end's solver must prove is
// entailed by the preceding constraints.
type PostCond struct{ Cond expr.B }

func (Seq) isStmt()                 {}
func (Constraint) isStmt()          {}
func (ConstraintCall) isStmt()      {}
func (Assert) isStmt()              {}
func (AssumeDeterministic) isStmt() {}
func (Comment) isStmt()             {}
func (PostCond) isStmt()            {}

// NewSeq builds a Seq, splicing any nested Seq argument's children in place
// so that the result never contains a Seq as a direct child.
func NewSeq(stmts ...Stmt) Seq {
	var out []Stmt

	for _, s := range stmts {
		if inner, ok := s.(Seq); ok {
			out = append(out, inner.Stmts...)
			continue
		}

		out = append(out, s)
	}

	return Seq{Stmts: out}
}

// IsEmpty reports whether s is the empty sequence — the representation used
// for "this statement vanished" after constant folding removes a tautology.
func IsEmpty(s Stmt) bool {
	seq, ok := s.(Seq)
	return ok && len(seq.Stmts) == 0
}

// Empty is the canonical empty statement.
func Empty() Stmt { return Seq{} }
