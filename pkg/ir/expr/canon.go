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

// Canon applies the canonicalisation rewrite rules to e, bottom-up: "A +
// (-B) = 0" and "(-A) + B = 0" become "A = B"; a leading
// "1 *" around such a sum canonicalises identically; "¬Cmp" rewrites to the
// dual comparison; and double negation cancels. Canon is idempotent:
// Canon(Canon(e)) == Canon(e).
func Canon(e B) B {
	return MapB(e, func(a A) A { return a }, canonStep)
}

func canonStep(e B) B {
	switch n := e.(type) {
	case Cmp:
		if n.Op == Eq {
			if zero, ok := AsConst(n.R); ok && zero.IsZero() {
				if l, r, ok := splitVanishingSum(n.L); ok {
					return Cmp{Op: Eq, L: l, R: r}
				}
			}
		}

		return n
	case Not:
		switch inner := n.X.(type) {
		case Cmp:
			return Cmp{Op: inner.Op.Dual(), L: inner.L, R: inner.R}
		case Not:
			return inner.X
		default:
			return n
		}
	default:
		return n
	}
}

// splitVanishingSum recognises "X + (-Y)" or "(-X) + Y", optionally wrapped
// in "1 * (...)", and returns (X, Y) in the order they appear on the page.
func splitVanishingSum(e A) (A, A, bool) {
	if p, ok := e.(Product); ok {
		if one, ok := AsConst(p.L); ok && one.IsOne() {
			return splitVanishingSum(p.R)
		}
	}

	s, ok := e.(Sum)
	if !ok {
		return nil, nil, false
	}

	if neg, ok := s.R.(Neg); ok {
		return s.L, neg.X, true
	}

	if neg, ok := s.L.(Neg); ok {
		return neg.X, s.R, true
	}

	return nil, nil, false
}
