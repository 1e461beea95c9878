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
package llzk

import (
	"strings"
	"testing"

	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
	"github.com/plonkir/ferrite/pkg/ir/lower"
	"github.com/plonkir/ferrite/pkg/ir/stmt"
)

func TestLowerConstraintCountsAndEmits(t *testing.T) {
	comp := Component{Name: "Main", Inputs: 1}
	e := NewEmitter(&comp)

	s := stmt.NewSeq(
		stmt.Comment{Text: "binding"},
		stmt.Constraint{
			Op: expr.Eq,
			L:  expr.IO{Loc: funcio.Arg(0)},
			R:  expr.Const{Value: felt.FromUint64(5)},
		},
	)

	if err := lower.Stmt[Value](e, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.NumConstraints() != 1 {
		t.Fatalf("expected one constraint, got %d", e.NumConstraints())
	}

	joined := strings.Join(comp.Body, "\n")
	for _, want := range []string{"// binding", "function.arg 0", "felt.const 5", "constrain.eq"} {
		if !strings.Contains(joined, want) {
			t.Errorf("body missing %q:\n%s", want, joined)
		}
	}
}

func TestNonEqConstraintLowersViaAssert(t *testing.T) {
	comp := Component{Name: "Main"}
	e := NewEmitter(&comp)

	s := stmt.Constraint{
		Op: expr.Lt,
		L:  expr.IO{Loc: funcio.Arg(0)},
		R:  expr.Const{Value: felt.FromUint64(8)},
	}

	if err := lower.Stmt[Value](e, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(comp.Body, "\n")
	if !strings.Contains(joined, "bool.cmp lt") || !strings.Contains(joined, "constrain.assert") {
		t.Fatalf("expected an lt comparison lowered through an assert:\n%s", joined)
	}
}

func TestVerifyRejectsUndefinedOperand(t *testing.T) {
	mod := &Module{Components: []Component{{
		Name: "Broken",
		Body: []string{"constrain.eq %0, %1"},
	}}}

	err := mod.Verify()
	if err == nil {
		t.Fatal("expected verification to reject an undefined operand")
	}

	if !strings.Contains(err.Error(), "used before definition") {
		t.Fatalf("unexpected diagnostics: %v", err)
	}
}

func TestWriteToRendersStructPerComponent(t *testing.T) {
	mod := &Module{Components: []Component{{
		Name:    "Main",
		Inputs:  2,
		Outputs: 1,
		Body:    []string{"%0 = felt.const 1"},
	}}, Main: "Main"}

	var sb strings.Builder
	if _, err := mod.WriteTo(&sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := sb.String()
	for _, want := range []string{
		"struct.def @Main {",
		"struct.field @out0 : !felt.type",
		"function.def @constrain(2 args) {",
		"%0 = felt.const 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
