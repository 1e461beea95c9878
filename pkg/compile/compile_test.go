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
package compile

import (
	"math/big"
	"strings"
	"testing"

	"github.com/plonkir/ferrite/pkg/config"
	"github.com/plonkir/ferrite/pkg/examples"
	"github.com/plonkir/ferrite/pkg/gen"
)

func options() gen.Options {
	return gen.Options{Config: config.Default(), Prime: big.NewInt(2013265921)}
}

func TestMulCircuitDedupsGadgets(t *testing.T) {
	art, err := Run(examples.MulCircuit{}, options())
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	// Two identical gadgets collapse into one, plus the main group.
	if len(art.Result.Groups) != 2 {
		t.Fatalf("expected 2 groups after dedup, got %d", len(art.Result.Groups))
	}

	if art.Result.Tree.CountTopLevel() != 1 {
		t.Fatal("expected exactly one top-level group")
	}
}

func TestCopyCircuitLowersToLLZK(t *testing.T) {
	art, err := Run(examples.CopyCircuit{}, options())
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	mod, err := ToLLZK(art, options().Config)
	if err != nil {
		t.Fatalf("llzk lowering failed: %v", err)
	}

	if mod.Main != "Main" {
		t.Fatalf("expected main component named Main, got %q", mod.Main)
	}

	var sb strings.Builder
	if _, err := mod.WriteTo(&sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(sb.String(), "struct.def @Main {") {
		t.Fatalf("expected a Main struct in the output:\n%s", sb.String())
	}
}

func TestCopyCircuitLowersToPicus(t *testing.T) {
	opts := options()

	art, err := Run(examples.CopyCircuit{}, opts)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	prog, err := ToPicus(art, opts)
	if err != nil {
		t.Fatalf("picus lowering failed: %v", err)
	}

	var sb strings.Builder
	if _, err := prog.WriteTo(&sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := sb.String()
	if !strings.Contains(out, "(prime-number 2013265921)") {
		t.Fatalf("expected the prime header:\n%s", out)
	}

	if !strings.Contains(out, "(begin-module Main)") {
		t.Fatalf("expected the main module:\n%s", out)
	}
}

func TestTopLevelNameIsConfigurable(t *testing.T) {
	opts := options()
	opts.Config.TopLevel = "Circuit"

	art, err := Run(examples.CopyCircuit{}, opts)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	main := art.Result.Groups[art.Result.Main]
	if main.Group.Name != "Circuit" {
		t.Fatalf("expected top-level named Circuit, got %q", main.Group.Name)
	}
}
