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
package expr

import "fmt"

// CmpOp is one of the six relational operators a Cmp may use.
type CmpOp uint8

const (
	// Eq is "=".
	Eq CmpOp = iota
	// Ne is "!=".
	Ne
	// Lt is "<".
	Lt
	// Le is "<=".
	Le
	// Gt is ">".
	Gt
	// Ge is ">=".
	Ge
)

// String renders the operator's conventional symbol.
func (op CmpOp) String() string {
	switch op {
	case Eq:
		return "="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		panic(fmt.Sprintf("expr: unknown CmpOp %d", op))
	}
}

// Dual returns the operator obtained by negating this one: ¬Eq=Ne, ¬Lt=Ge,
// etc, used by Not(Cmp) canonicalisation.
func (op CmpOp) Dual() CmpOp {
	switch op {
	case Eq:
		return Ne
	case Ne:
		return Eq
	case Lt:
		return Ge
	case Le:
		return Gt
	case Gt:
		return Le
	case Ge:
		return Lt
	default:
		panic(fmt.Sprintf("expr: unknown CmpOp %d", op))
	}
}

// B is a boolean expression: True | False | Cmp | And | Or | Not | Det |
// Implies | Iff.
type B interface {
	isBool()
}

// True is the boolean literal "true".
type True struct{}

// False is the boolean literal "false".
type False struct{}

// Cmp compares two arithmetic expressions with a relational operator.
type Cmp struct {
	Op   CmpOp
	L, R A
}

// And is the conjunction of zero or more boolean expressions. An empty And
// is the identity, True.
type And struct{ Xs []B }

// Or is the disjunction of zero or more boolean expressions. An empty Or is
// the identity, False.
type Or struct{ Xs []B }

// Not negates its operand.
type Not struct{ X B }

// Det asserts that evaluating the given arithmetic expression is
// deterministic; this is a hint consumed by determinism analysis
// back-ends and has no arithmetic meaning of its own.
type Det struct{ X A }

// Implies is logical implication, L ⇒ R.
type Implies struct{ L, R B }

// Iff is logical biconditional, L ⇔ R.
type Iff struct{ L, R B }

func (True) isBool()    {}
func (False) isBool()   {}
func (Cmp) isBool()     {}
func (And) isBool()     {}
func (Or) isBool()      {}
func (Not) isBool()     {}
func (Det) isBool()     {}
func (Implies) isBool() {}
func (Iff) isBool()     {}

// MapB transforms e by recursively rebuilding its children bottom-up with
// fb (applied to every B node) and fa (applied to every A leaf reached
// through a Cmp or Det), then applying fb once more to the rebuilt node.
func MapB(e B, fa func(A) A, fb func(B) B) B {
	out, _ := TryMapB(e, func(x A) (A, error) { return fa(x), nil }, func(x B) (B, error) { return fb(x), nil })
	return out
}

// TryMapB is the fallible counterpart to MapB.
func TryMapB(e B, fa func(A) (A, error), fb func(B) (B, error)) (B, error) {
	var (
		rebuilt B
		err     error
	)

	switch n := e.(type) {
	case True, False:
		rebuilt = n
	case Cmp:
		var l, r A
		if l, err = TryMapA(n.L, fa); err != nil {
			return nil, err
		}

		if r, err = TryMapA(n.R, fa); err != nil {
			return nil, err
		}

		rebuilt = Cmp{Op: n.Op, L: l, R: r}
	case Det:
		var x A
		if x, err = TryMapA(n.X, fa); err != nil {
			return nil, err
		}

		rebuilt = Det{X: x}
	case And:
		xs := make([]B, len(n.Xs))

		for i, x := range n.Xs {
			if xs[i], err = TryMapB(x, fa, fb); err != nil {
				return nil, err
			}
		}

		rebuilt = And{Xs: xs}
	case Or:
		xs := make([]B, len(n.Xs))

		for i, x := range n.Xs {
			if xs[i], err = TryMapB(x, fa, fb); err != nil {
				return nil, err
			}
		}

		rebuilt = Or{Xs: xs}
	case Not:
		var x B
		if x, err = TryMapB(n.X, fa, fb); err != nil {
			return nil, err
		}

		rebuilt = Not{X: x}
	case Implies:
		var l, r B
		if l, err = TryMapB(n.L, fa, fb); err != nil {
			return nil, err
		}

		if r, err = TryMapB(n.R, fa, fb); err != nil {
			return nil, err
		}

		rebuilt = Implies{L: l, R: r}
	case Iff:
		var l, r B
		if l, err = TryMapB(n.L, fa, fb); err != nil {
			return nil, err
		}

		if r, err = TryMapB(n.R, fa, fb); err != nil {
			return nil, err
		}

		rebuilt = Iff{L: l, R: r}
	default:
		panic("expr: unknown B constructor")
	}

	return fb(rebuilt)
}
