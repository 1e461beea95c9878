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

import "github.com/plonkir/ferrite/pkg/ir/funcio"

// LeafEq decides whether two IO leaves are equivalent under some symbolic
// renaming (e.g. after advice-cell relativisation, two groups' temporaries
// may carry unrelated ids but still denote "the same" location). Const
// leaves are always compared by raw value, never through this relation.
type LeafEq func(x, y funcio.FuncIO) bool

// EquivA decides structural equivalence of two arithmetic expressions under
// leafEq. Constructors must match exactly; nothing is commutative —
// Sum(a,b) is never equivalent to Sum(b,a) unless a and b happen to be
// pairwise equivalent as given.
func EquivA(a, b A, leafEq LeafEq) bool {
	switch x := a.(type) {
	case Const:
		y, ok := b.(Const)
		return ok && x.Value.Equal(y.Value)
	case IO:
		y, ok := b.(IO)
		return ok && leafEq(x.Loc, y.Loc)
	case Neg:
		y, ok := b.(Neg)
		return ok && EquivA(x.X, y.X, leafEq)
	case Sum:
		y, ok := b.(Sum)
		return ok && EquivA(x.L, y.L, leafEq) && EquivA(x.R, y.R, leafEq)
	case Product:
		y, ok := b.(Product)
		return ok && EquivA(x.L, y.L, leafEq) && EquivA(x.R, y.R, leafEq)
	default:
		return false
	}
}

// EquivB decides structural equivalence of two boolean expressions under
// leafEq, comparing embedded arithmetic leaves with EquivA.
func EquivB(a, b B, leafEq LeafEq) bool {
	switch x := a.(type) {
	case True:
		_, ok := b.(True)
		return ok
	case False:
		_, ok := b.(False)
		return ok
	case Cmp:
		y, ok := b.(Cmp)
		return ok && x.Op == y.Op && EquivA(x.L, y.L, leafEq) && EquivA(x.R, y.R, leafEq)
	case Det:
		y, ok := b.(Det)
		return ok && EquivA(x.X, y.X, leafEq)
	case Not:
		y, ok := b.(Not)
		return ok && EquivB(x.X, y.X, leafEq)
	case Implies:
		y, ok := b.(Implies)
		return ok && EquivB(x.L, y.L, leafEq) && EquivB(x.R, y.R, leafEq)
	case Iff:
		y, ok := b.(Iff)
		return ok && EquivB(x.L, y.L, leafEq) && EquivB(x.R, y.R, leafEq)
	case And:
		y, ok := b.(And)
		return ok && equivBSlice(x.Xs, y.Xs, leafEq)
	case Or:
		y, ok := b.(Or)
		return ok && equivBSlice(x.Xs, y.Xs, leafEq)
	default:
		return false
	}
}

func equivBSlice(xs, ys []B, leafEq LeafEq) bool {
	if len(xs) != len(ys) {
		return false
	}

	for i := range xs {
		if !EquivB(xs[i], ys[i], leafEq) {
			return false
		}
	}

	return true
}
