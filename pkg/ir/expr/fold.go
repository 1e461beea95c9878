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

import (
	"math/big"

	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
)

// FoldA applies constant folding to e against the prime p: literal
// arithmetic reduces modulo p, and the zero/one identities (a+0=a, a*1=a,
// a*0=0) collapse trivial subtrees. Folding proceeds bottom-up so that a
// constant buried several levels deep still propagates upward. FoldA is
// idempotent: FoldA(FoldA(e,p),p) == FoldA(e,p).
func FoldA(e A, p *big.Int) A {
	return MapA(e, func(n A) A { return foldArithStep(n, p) })
}

// foldArithStep folds a single node whose children have already been
// folded (MapA guarantees this via its bottom-up traversal).
func foldArithStep(e A, p *big.Int) A {
	switch n := e.(type) {
	case Neg:
		if c, ok := AsConst(n.X); ok {
			return Const{Value: c.Neg(p)}
		}

		return n
	case Sum:
		lc, lok := AsConst(n.L)
		rc, rok := AsConst(n.R)

		switch {
		case lok && rok:
			return Const{Value: lc.Add(rc, p)}
		case rok && rc.IsZero():
			return n.L
		case lok && lc.IsZero():
			return n.R
		default:
			// a + (-a) and (-a) + a vanish for any a, by structural
			// identity of the two operands.
			if neg, ok := n.R.(Neg); ok && EquivA(n.L, neg.X, identicalLeaves) {
				return Const{Value: felt.Zero()}
			}

			if neg, ok := n.L.(Neg); ok && EquivA(neg.X, n.R, identicalLeaves) {
				return Const{Value: felt.Zero()}
			}

			return n
		}
	case Product:
		lc, lok := AsConst(n.L)
		rc, rok := AsConst(n.R)

		switch {
		case lok && rok:
			return Const{Value: lc.Mul(rc, p)}
		case rok && rc.IsOne():
			return n.L
		case lok && lc.IsOne():
			return n.R
		case (lok && lc.IsZero()) || (rok && rc.IsZero()):
			return Const{Value: felt.Zero()}
		default:
			return n
		}
	default:
		return e
	}
}

// FoldB applies constant folding to e against the prime p, folding every
// embedded A leaf with FoldA first. Literal booleans propagate through
// And/Or/Not/Implies/Iff. FoldB is idempotent.
func FoldB(e B, p *big.Int) B {
	return MapB(e,
		func(a A) A { return FoldA(a, p) },
		func(n B) B { return foldBoolStep(n, p) },
	)
}

func foldBoolStep(e B, p *big.Int) B {
	switch n := e.(type) {
	case Cmp:
		lc, lok := AsConst(n.L)
		rc, rok := AsConst(n.R)

		if !lok || !rok {
			return n
		}

		if evalCmp(n.Op, lc.Cmp(rc)) {
			return True{}
		}

		return False{}
	case And:
		var kept []B

		for _, x := range n.Xs {
			switch x.(type) {
			case False:
				return False{}
			case True:
				continue
			default:
				kept = append(kept, x)
			}
		}

		if len(kept) == 0 {
			return True{}
		}

		if len(kept) == 1 {
			return kept[0]
		}

		return And{Xs: kept}
	case Or:
		var kept []B

		for _, x := range n.Xs {
			switch x.(type) {
			case True:
				return True{}
			case False:
				continue
			default:
				kept = append(kept, x)
			}
		}

		if len(kept) == 0 {
			return False{}
		}

		if len(kept) == 1 {
			return kept[0]
		}

		return Or{Xs: kept}
	case Not:
		switch x := n.X.(type) {
		case True:
			return False{}
		case False:
			return True{}
		default:
			_ = x
			return n
		}
	case Implies:
		_, lTrue := n.L.(True)
		_, lFalse := n.L.(False)
		_, rTrue := n.R.(True)
		_, rFalse := n.R.(False)

		if (lTrue || lFalse) && (rTrue || rFalse) {
			if (lFalse) || rTrue {
				return True{}
			}

			return False{}
		}

		return n
	case Iff:
		_, lTrue := n.L.(True)
		_, lFalse := n.L.(False)
		_, rTrue := n.R.(True)
		_, rFalse := n.R.(False)

		if (lTrue || lFalse) && (rTrue || rFalse) {
			if lTrue == rTrue {
				return True{}
			}

			return False{}
		}

		return n
	default:
		return e
	}
}

// identicalLeaves is the leaf relation used by the structural cancellation
// rule: locations must match exactly.
func identicalLeaves(x, y funcio.FuncIO) bool { return x == y }

// evalCmp evaluates op against the sign of a three-way comparison result
// (as returned by felt.Felt.Cmp): negative means lhs<rhs, zero means equal,
// positive means lhs>rhs.
func evalCmp(op CmpOp, sign int) bool {
	switch op {
	case Eq:
		return sign == 0
	case Ne:
		return sign != 0
	case Lt:
		return sign < 0
	case Le:
		return sign <= 0
	case Gt:
		return sign > 0
	case Ge:
		return sign >= 0
	default:
		panic("expr: unknown CmpOp")
	}
}
