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
	"testing"

	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
)

func c(v uint64) A { return Const{Value: felt.FromUint64(v)} }

func TestFoldA_Boundary_WrapAround(t *testing.T) {
	p := big.NewInt(7)
	e := Sum{L: c(6), R: c(1)}

	got := FoldA(e, p)
	if v, ok := AsConst(got); !ok || !v.Equal(felt.Zero()) {
		t.Fatalf("fold(6+1 mod 7) = %v, want 0", got)
	}
}

func TestFoldA_NegZero(t *testing.T) {
	p := big.NewInt(7)

	got := FoldA(Neg{X: c(0)}, p)
	if v, ok := AsConst(got); !ok || !v.Equal(felt.Zero()) {
		t.Fatalf("fold(-0) = %v, want 0", got)
	}
}

func TestFoldA_SumWithNegSelf_IsZero(t *testing.T) {
	p := big.NewInt(101)
	x := IO{Loc: funcio.Arg(0)}

	for _, e := range []A{
		Sum{L: x, R: Neg{X: x}},
		Sum{L: Neg{X: x}, R: x},
	} {
		got := FoldA(e, p)
		if v, ok := AsConst(got); !ok || !v.IsZero() {
			t.Fatalf("fold(a+(-a)) = %#v, want 0", got)
		}
	}
}

func TestFoldA_Idempotent(t *testing.T) {
	p := big.NewInt(13)
	e := Product{L: Sum{L: c(4), R: c(5)}, R: c(1)}

	once := FoldA(e, p)
	twice := FoldA(once, p)

	if !EquivA(once, twice, func(x, y funcio.FuncIO) bool { return x == y }) {
		t.Fatalf("fold not idempotent: once=%#v twice=%#v", once, twice)
	}
}

func TestFoldA_AllConstLeaves_InRange(t *testing.T) {
	p := big.NewInt(97)
	e := Sum{L: Product{L: c(50), R: c(3)}, R: Neg{X: c(10)}}

	got := FoldA(e, p)

	v, ok := AsConst(got)
	if !ok {
		t.Fatalf("fold of all-const expression did not produce a constant: %#v", got)
	}

	if v.Cmp(felt.Zero()) < 0 || v.Cmp(felt.FromUint64(97)) >= 0 {
		t.Fatalf("folded constant %s out of range [0,97)", v)
	}
}

func TestFoldA_Identities(t *testing.T) {
	p := big.NewInt(97)
	x := IO{Loc: funcio.Arg(0)}

	if got := FoldA(Sum{L: x, R: c(0)}, p); got != A(x) {
		t.Fatalf("a+0 = %#v, want a", got)
	}

	if got := FoldA(Product{L: x, R: c(1)}, p); got != A(x) {
		t.Fatalf("a*1 = %#v, want a", got)
	}

	got := FoldA(Product{L: x, R: c(0)}, p)
	if v, ok := AsConst(got); !ok || !v.IsZero() {
		t.Fatalf("a*0 = %#v, want 0", got)
	}
}

func TestFoldB_BooleanPropagation(t *testing.T) {
	p := big.NewInt(7)

	if _, ok := FoldB(And{Xs: nil}, p).(True); !ok {
		t.Fatalf("empty And should canonicalise to True")
	}

	if _, ok := FoldB(Or{Xs: nil}, p).(False); !ok {
		t.Fatalf("empty Or should canonicalise to False")
	}

	if _, ok := FoldB(Not{X: True{}}, p).(False); !ok {
		t.Fatalf("Not(True) should fold to False")
	}
}

func TestFoldB_Idempotent(t *testing.T) {
	p := big.NewInt(11)
	b := Implies{L: Cmp{Op: Eq, L: c(3), R: c(3)}, R: Cmp{Op: Ne, L: c(1), R: c(2)}}

	once := FoldB(b, p)
	twice := FoldB(once, p)

	if !EquivB(once, twice, func(x, y funcio.FuncIO) bool { return x == y }) {
		t.Fatalf("FoldB not idempotent: once=%#v twice=%#v", once, twice)
	}
}
