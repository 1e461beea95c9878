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
package picus

import (
	"math/big"
	"strings"
	"testing"

	"github.com/plonkir/ferrite/pkg/config"
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
	"github.com/plonkir/ferrite/pkg/ir/lower"
	"github.com/plonkir/ferrite/pkg/ir/stmt"
)

func TestLowerConstraintEmitsAssertEquality(t *testing.T) {
	mod := &Module{Name: "Main"}
	e := NewEmitter(mod, config.Default())

	s := stmt.Constraint{
		Op: expr.Eq,
		L:  expr.IO{Loc: funcio.Arg(0)},
		R:  expr.Const{Value: felt.FromUint64(3)},
	}

	if err := lower.Stmt[Expr](e, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.NumConstraints() != 1 {
		t.Fatalf("expected one constraint, got %d", e.NumConstraints())
	}

	if len(mod.Lines) != 1 || mod.Lines[0] != "(assert (= x0 3))" {
		t.Fatalf("unexpected output: %v", mod.Lines)
	}
}

func TestExprCutoffExtractsTemporary(t *testing.T) {
	mod := &Module{Name: "Main"}

	cfg := config.Default()
	cfg.ExprCutoff = 3
	e := NewEmitter(mod, cfg)

	// ((x0 + x1) + x2) + x3 exceeds a cutoff of 3 and must be split.
	var sum expr.A = expr.IO{Loc: funcio.Arg(0)}
	for i := uint(1); i < 4; i++ {
		sum = expr.Sum{L: sum, R: expr.IO{Loc: funcio.Arg(i)}}
	}

	s := stmt.Constraint{Op: expr.Eq, L: sum, R: expr.Const{Value: felt.Zero()}}

	if err := lower.Stmt[Expr](e, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var extracted int

	for _, line := range mod.Lines {
		if strings.Contains(line, "(= pt") {
			extracted++
		}
	}

	if extracted == 0 {
		t.Fatalf("expected at least one extracted temporary, got %v", mod.Lines)
	}
}

func TestExprCutoffDoesNotAliasTempHandles(t *testing.T) {
	mod := &Module{Name: "Main"}

	cfg := config.Default()
	cfg.ExprCutoff = 3
	e := NewEmitter(mod, cfg)

	// ((t0 + t1) + t2) + t3: the middle sum triggers extraction before
	// Temp(3) is ever seen, so an extraction drawing from the Temp name
	// space would collide with it.
	var sum expr.A = expr.IO{Loc: funcio.Temp(0)}
	for i := uint(1); i < 4; i++ {
		sum = expr.Sum{L: sum, R: expr.IO{Loc: funcio.Temp(i)}}
	}

	s := stmt.Constraint{Op: expr.Eq, L: sum, R: expr.Const{Value: felt.Zero()}}

	if err := lower.Stmt[Expr](e, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every extraction names a pt variable; t3 appears only as the
	// genuine Temp(3) reference, never as an extraction target.
	for _, line := range mod.Lines {
		if strings.Contains(line, "(= t3 ") {
			t.Fatalf("extraction reused the Temp name space: %v", mod.Lines)
		}
	}

	joined := strings.Join(mod.Lines, "\n")
	if !strings.Contains(joined, "pt0") || !strings.Contains(joined, "t3") {
		t.Fatalf("expected both an extraction and the genuine t3 reference:\n%s", joined)
	}
}

func TestDeterminismLowering(t *testing.T) {
	mod := &Module{Name: "Main"}
	e := NewEmitter(mod, config.Default())

	s := stmt.NewSeq(
		stmt.AssumeDeterministic{Loc: funcio.Arg(0)},
		stmt.PostCond{Cond: expr.Det{X: expr.IO{Loc: funcio.Field(0)}}},
	)

	if err := lower.Stmt[Expr](e, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"(assume (deterministic x0))",
		"(postcondition (deterministic y0))",
	}

	for i, line := range want {
		if mod.Lines[i] != line {
			t.Fatalf("line %d: got %q, want %q", i, mod.Lines[i], line)
		}
	}
}

func TestProgramWriteTo(t *testing.T) {
	prog := NewProgram(big.NewInt(101))
	mod := prog.AddModule("Main")
	mod.Inputs = []string{"x0"}
	mod.Outputs = []string{"y0"}
	mod.Lines = []string{"(assert (= x0 y0))"}

	var sb strings.Builder
	if _, err := prog.WriteTo(&sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := sb.String()
	for _, want := range []string{
		"(prime-number 101)",
		"(begin-module Main)",
		"(input x0)",
		"(output y0)",
		"(assert (= x0 y0))",
		"(end-module)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
