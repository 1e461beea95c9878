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

// Package expr implements the constraint IR's expression kernel: arithmetic
// expressions (A), boolean expressions (B), structural traversal, constant
// folding and canonicalisation, and equivalence under symbolic renaming. It
// is the innermost layer of the middle-end; everything else in pkg/ir is
// built on top of it.
package expr

import (
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
)

// A is an arithmetic expression: a closed sum type over Const, IO, Neg, Sum
// and Product. Each A is recursively, exclusively owned by its parent — the
// IR is a tree, never a DAG.
type A interface {
	isArith()
}

// Const is a literal field-element value.
type Const struct{ Value felt.Felt }

// IO refers to a named runtime location.
type IO struct{ Loc funcio.FuncIO }

// Neg negates its operand.
type Neg struct{ X A }

// Sum is the addition of two expressions.
type Sum struct{ L, R A }

// Product is the multiplication of two expressions.
type Product struct{ L, R A }

func (Const) isArith()   {}
func (IO) isArith()      {}
func (Neg) isArith()     {}
func (Sum) isArith()     {}
func (Product) isArith() {}

// AsConst returns the underlying value and true if e is a Const, otherwise
// the zero value and false. It performs no simplification.
func AsConst(e A) (felt.Felt, bool) {
	if c, ok := e.(Const); ok {
		return c.Value, true
	}

	return felt.Felt{}, false
}

// MapA transforms e by recursively rebuilding its children bottom-up with
// f, then applying f once more to the rebuilt node itself. Every
// sub-expression is visited exactly once, in left-to-right order. Used by
// constant folding and by relativisation (pkg/dedup) to rewrite IO leaves.
func MapA(e A, f func(A) A) A {
	out, _ := TryMapA(e, func(x A) (A, error) { return f(x), nil })
	return out
}

// TryMapA is the fallible counterpart to MapA: if f fails on any
// sub-expression, the whole traversal aborts and the error propagates
// immediately rather than being collected and continued past.
func TryMapA(e A, f func(A) (A, error)) (A, error) {
	var (
		rebuilt A
		err     error
	)

	switch n := e.(type) {
	case Const, IO:
		rebuilt = n
	case Neg:
		var x A
		if x, err = TryMapA(n.X, f); err != nil {
			return nil, err
		}

		rebuilt = Neg{X: x}
	case Sum:
		var l, r A
		if l, err = TryMapA(n.L, f); err != nil {
			return nil, err
		}

		if r, err = TryMapA(n.R, f); err != nil {
			return nil, err
		}

		rebuilt = Sum{L: l, R: r}
	case Product:
		var l, r A
		if l, err = TryMapA(n.L, f); err != nil {
			return nil, err
		}

		if r, err = TryMapA(n.R, f); err != nil {
			return nil, err
		}

		rebuilt = Product{L: l, R: r}
	default:
		panic("expr: unknown A constructor")
	}

	return f(rebuilt)
}
