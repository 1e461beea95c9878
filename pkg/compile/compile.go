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

// Package compile runs the middle-end pipeline end to end: synthesis,
// IR generation, relativisation, group deduplication, constant folding and
// canonicalisation, and finally lowering into one of the back-ends.
package compile

import (
	"fmt"

	"github.com/plonkir/ferrite/pkg/backend/llzk"
	"github.com/plonkir/ferrite/pkg/backend/picus"
	"github.com/plonkir/ferrite/pkg/config"
	"github.com/plonkir/ferrite/pkg/cs"
	"github.com/plonkir/ferrite/pkg/dedup"
	"github.com/plonkir/ferrite/pkg/gen"
	"github.com/plonkir/ferrite/pkg/ir/lower"
	"github.com/plonkir/ferrite/pkg/ir/stmt"
	"github.com/plonkir/ferrite/pkg/synth"
	log "github.com/sirupsen/logrus"
)

// Artifacts bundles what the pipeline produces before back-end lowering.
type Artifacts struct {
	State  *synth.State
	Result *gen.Result
}

// Run executes the middle-end over one circuit: a single synthesis pass,
// IR generation, advice relativisation, dedup, then the fold-canonicalise-
// fold ordering of the statement-level pass.
func Run(circ cs.Circuit, opts gen.Options) (*Artifacts, error) {
	inputs, outputs := circ.IO()
	syn := synth.NewSynthesizer(opts.Config.MainName(), inputs, outputs)

	if err := circ.Synthesize(syn); err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	state, err := syn.Finalize()
	if err != nil {
		return nil, err
	}

	result, err := gen.Generate(state, circ.ConstraintSystem(), opts)
	if err != nil {
		return nil, err
	}

	if err := dedup.Relativise(state, result); err != nil {
		return nil, err
	}

	before := len(result.Groups)
	dedup.Deduplicate(result)

	if merged := before - len(result.Groups); merged > 0 {
		log.WithField("merged", merged).Debug("group deduplication removed redundant groups")
	}

	for i := range result.Groups {
		g := &result.Groups[i]

		if g.Calls, err = foldSeq(g.Calls, opts); err != nil {
			return nil, err
		}

		if g.Gates, err = foldSeq(g.Gates, opts); err != nil {
			return nil, err
		}

		if g.Equalities, err = foldSeq(g.Equalities, opts); err != nil {
			return nil, err
		}

		if g.Lookups, err = foldSeq(g.Lookups, opts); err != nil {
			return nil, err
		}
	}

	return &Artifacts{State: state, Result: result}, nil
}

// foldSeq applies the statement-level pass in its fixed order: folding,
// canonicalisation, then a final folding pass.
func foldSeq(s stmt.Seq, opts gen.Options) (stmt.Seq, error) {
	folded, err := stmt.ConstantFold(s, opts.Prime)
	if err != nil {
		return stmt.Seq{}, err
	}

	canon := stmt.Canonicalize(folded)

	final, err := stmt.ConstantFold(canon, opts.Prime)
	if err != nil {
		return stmt.Seq{}, err
	}

	if seq, ok := final.(stmt.Seq); ok {
		return seq, nil
	}

	return stmt.NewSeq(final), nil
}

// ToLLZK lowers the middle-end result into an LLZK module and runs the
// back-end's native verification.
func ToLLZK(art *Artifacts, cfg config.CompilationConfig) (*llzk.Module, error) {
	mod := &llzk.Module{}

	for i := range art.Result.Groups {
		g := &art.Result.Groups[i]

		comp := llzk.Component{
			Name:    g.Group.Name,
			Inputs:  g.Group.InputCount(),
			Outputs: g.Group.OutputCount(),
		}

		emitter := llzk.NewEmitter(&comp)

		body := g.Body()
		if err := lower.Stmt[llzk.Value](emitter, body); err != nil {
			return nil, err
		}

		mod.Components = append(mod.Components, comp)

		if g.Index == art.Result.Main {
			mod.Main = comp.Name
		}
	}

	if err := mod.Verify(); err != nil {
		return nil, err
	}

	return mod, nil
}

// ToPicus lowers the middle-end result into a PCL program.
func ToPicus(art *Artifacts, opts gen.Options) (*picus.Program, error) {
	prog := picus.NewProgram(opts.Prime)

	for i := range art.Result.Groups {
		g := &art.Result.Groups[i]
		mod := prog.AddModule(g.Group.Name)

		for j := range g.Group.Inputs {
			mod.Inputs = append(mod.Inputs, fmt.Sprintf("x%d", j))
		}

		for j := range g.Group.Outputs {
			mod.Outputs = append(mod.Outputs, fmt.Sprintf("y%d", j))
		}

		emitter := picus.NewEmitter(mod, opts.Config)

		if err := lower.Stmt[picus.Expr](emitter, g.Body()); err != nil {
			return nil, err
		}
	}

	return prog, nil
}
