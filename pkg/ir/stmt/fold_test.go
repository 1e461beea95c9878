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
	"math/big"
	"strings"
	"testing"

	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
)

func konst(v uint64) expr.A { return expr.Const{Value: felt.FromUint64(v)} }

func TestConstantFold_UnsatisfiableConstraint(t *testing.T) {
	p := big.NewInt(7)
	s := Constraint{Op: expr.Eq, L: konst(3), R: konst(5)}

	_, err := ConstantFold(s, p)
	if err == nil {
		t.Fatalf("expected an error for 3 = 5 mod 7")
	}

	if !strings.Contains(err.Error(), "predicate evaluating to 'false'") {
		t.Fatalf("error message %q missing expected text", err.Error())
	}
}

func TestConstantFold_RemovesTautology(t *testing.T) {
	p := big.NewInt(7)
	s := NewSeq(Assert{Cond: expr.True{}}, Constraint{Op: expr.Eq, L: konst(3), R: konst(3)})

	got, err := ConstantFold(s, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !IsEmpty(got) {
		t.Fatalf("expected all-tautology sequence to fold to empty, got %#v", got)
	}
}

func TestNewSeq_FlattensNested(t *testing.T) {
	a := Comment{Text: "a"}
	b := Comment{Text: "b"}
	c := Comment{Text: "c"}

	got := NewSeq(NewSeq(a, b), c)
	if len(got.Stmts) != 3 {
		t.Fatalf("expected flattened sequence of 3, got %d: %#v", len(got.Stmts), got)
	}
}

func TestSimpleEqualityGate_CanonicalisesToConstraint(t *testing.T) {
	// A gate with a single polynomial "advice(a,0) - 0" lowers via the
	// default pattern to Assert(Cmp(Eq, advice, 0)), which canonicalisation
	// then turns into Constraint(Eq, advice, 0).
	p := big.NewInt(101)
	advice := expr.IO{Loc: funcio.Advice(circuit.Cell{Column: circuit.AnyColumn{Kind: circuit.Advice}})}

	gate := Assert{Cond: expr.Cmp{Op: expr.Eq, L: advice, R: konst(0)}}

	folded, err := ConstantFold(gate, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	canon := Canonicalize(folded)

	c, ok := canon.(Constraint)
	if !ok {
		t.Fatalf("expected canonicalisation to promote the assert to a constraint, got %#v", canon)
	}

	if c.Op != expr.Eq {
		t.Fatalf("expected Eq constraint, got %v", c.Op)
	}
}
