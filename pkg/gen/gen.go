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

// Package gen implements IR generation: it walks the flattened group tree
// of a finalised synthesis state and lowers each group into IR statements —
// callsites first, then gates via the pattern set, then equality
// constraints selected by the group's bounds, then lookups cloned per
// region-row. The emission order within a group is deterministic.
package gen

import (
	"errors"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/plonkir/ferrite/pkg/circuit/eqgraph"
	"github.com/plonkir/ferrite/pkg/config"
	"github.com/plonkir/ferrite/pkg/cs"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/failure"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
	"github.com/plonkir/ferrite/pkg/ir/group"
	"github.com/plonkir/ferrite/pkg/ir/stmt"
	"github.com/plonkir/ferrite/pkg/synth"
	log "github.com/sirupsen/logrus"
)

// Options parameterises one generation run.
type Options struct {
	// Patterns are the user-supplied gate patterns, tried in order; the
	// default passthrough pattern is always installed last.
	Patterns []Pattern
	// Lookup expands lookup queries into IR; when nil, lookups are left
	// unexpanded and contribute no statements.
	Lookup LookupCallback
	// Tables lazily provides lookup i's backing table rows.
	Tables func(i int) cs.TableRows
	// Config and Prime are the active compilation settings.
	Config config.CompilationConfig
	Prime  *big.Int
}

// LoweredGroup is the IR of one group, kept in its four emission sections
// so group deduplication can compare them independently.
type LoweredGroup struct {
	// Index is this group's position in the tree.
	Index int
	Group group.Group
	// Calls holds the ConstraintCall statements and the Eq constraints
	// binding each CallOutput variable to its actual output expression.
	Calls stmt.Seq
	// Gates holds the pattern-rewritten gate statements.
	Gates stmt.Seq
	// Equalities holds the equality constraints selected by the group's
	// bounds, plus the explicit double-annotated-cell equalities.
	Equalities stmt.Seq
	// Lookups holds the lookup IR, cloned once per region-row.
	Lookups stmt.Seq
	// Injected holds IR added after generation (nothing adds to it during
	// the pass itself; back-end pipelines may).
	Injected stmt.Seq
	// Coverage records, when enabled, the absolute rows on which the
	// default gate pattern emitted at least one statement.
	Coverage *bitset.BitSet
}

// Body concatenates the group's sections in emission order.
func (g *LoweredGroup) Body() stmt.Seq {
	return stmt.NewSeq(g.Calls, g.Gates, g.Equalities, g.Lookups, g.Injected)
}

// Callsites extracts the arity-relevant view of the group's callsites for
// validation.
func (g *LoweredGroup) Callsites() []group.Callsite {
	var (
		out    []group.Callsite
		callNo uint
	)

	for _, s := range g.Calls.Stmts {
		call, ok := s.(stmt.ConstraintCall)
		if !ok {
			continue
		}

		out = append(out, group.Callsite{
			CallNo:     callNo,
			CalleeID:   call.CalleeID,
			Inputs:     len(call.Inputs),
			Outputs:    len(call.Outputs),
			OutputVars: len(call.OutputVars),
		})
		callNo++
	}

	return out
}

// Result is the output of one generation run: one LoweredGroup per tree
// group, in tree order.
type Result struct {
	Tree   group.Tree
	Groups []LoweredGroup
	// Main indexes the unique TopLevel group.
	Main int
}

// Generate lowers every group of the synthesis state into IR. It fails on
// structural violations, on gates no pattern could rewrite, and on callsite
// arity mismatches; pattern errors within one gate are accumulated before
// being reported.
func Generate(state *synth.State, sys cs.System, opts Options) (*Result, error) {
	if n := state.Tree.CountTopLevel(); n != 1 {
		return nil, failure.Structuralf("expected exactly one top-level group, found %d", n)
	}

	patterns := append(append([]Pattern{}, opts.Patterns...), DefaultPattern{})

	// The lookup callback runs exactly once; its output is the template
	// cloned per region-row below.
	var (
		templates []stmt.Stmt
		tempBase  uint
	)

	if len(sys.Lookups) > 0 && opts.Lookup != nil {
		tgen := &funcio.Generator{}

		var err error
		if templates, err = opts.Lookup(sys.Lookups, opts.Tables, tgen); err != nil {
			return nil, err
		}

		if len(templates) != len(sys.Lookups) {
			return nil, failure.Structuralf(
				"lookup callback returned %d statements for %d lookups", len(templates), len(sys.Lookups))
		}

		tempBase = tgen.Peek()
	}

	result := &Result{Tree: state.Tree, Main: state.Tree.Main}

	var errs []error

	for idx := range state.Tree.Groups {
		lowered, err := generateGroup(state, sys, opts, patterns, templates, tempBase, idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		result.Groups = append(result.Groups, *lowered)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Arity validation runs over the completed result so callee arities
	// are final.
	for i := range result.Groups {
		if err := group.ValidateCallsites(&result.Tree, i, result.Groups[i].Callsites()); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return result, nil
}

func generateGroup(
	state *synth.State, sys cs.System, opts Options,
	patterns []Pattern, templates []stmt.Stmt, tempBase uint, idx int,
) (*LoweredGroup, error) {
	g := &state.Tree.Groups[idx]
	resolver := NewResolver(state, &state.Tree, idx)
	bounds := group.NewBounds(&state.Tree, idx)

	lowered := &LoweredGroup{Index: idx, Group: *g}
	if opts.Config.Coverage {
		lowered.Coverage = bitset.New(64)
	}

	log.WithFields(log.Fields{"group": g.Name, "regions": len(g.Regions)}).Debug("lowering group")

	// 1. Callsites, in child order.
	calls, err := lowerCallsites(state, resolver, g)
	if err != nil {
		return nil, err
	}

	lowered.Calls = calls

	// 2. Gates, in (region, gate) lexicographic order.
	gates, err := lowerGates(sys, opts, patterns, resolver, g, lowered.Coverage)
	if err != nil {
		return nil, err
	}

	lowered.Gates = gates

	// 3. Equality constraints, in graph-edge order, then the explicit
	// double-annotated-cell equalities.
	eqs, err := lowerEqualities(state.Graph, bounds, resolver, g)
	if err != nil {
		return nil, err
	}

	lowered.Equalities = eqs

	// 4. Lookups, in (lookup, region-row) order.
	lowered.Lookups = lowerLookups(templates, tempBase, g)

	return lowered, nil
}

// lowerCallsites emits one ConstraintCall per child group, followed by the
// Eq constraints binding each CallOutput variable to the actual expression
// of the corresponding output cell.
func lowerCallsites(state *synth.State, resolver *Resolver, g *group.Group) (stmt.Seq, error) {
	var out []stmt.Stmt

	for callNo, childIdx := range g.Children {
		child := &state.Tree.Groups[childIdx]

		inputs := make([]expr.A, len(child.Inputs))

		for i, c := range child.Inputs {
			e, err := resolver.CellExprNoChild(c.Cell)
			if err != nil {
				return stmt.Seq{}, err
			}

			inputs[i] = e
		}

		outputs := make([]expr.A, len(child.Outputs))
		vars := make([]funcio.FuncIO, len(child.Outputs))

		for i, c := range child.Outputs {
			e, err := resolver.CellExprNoChild(c.Cell)
			if err != nil {
				return stmt.Seq{}, err
			}

			outputs[i] = e
			vars[i] = funcio.CallOutput(uint(callNo), uint(i))
		}

		out = append(out, stmt.ConstraintCall{
			Callee:     child.Name,
			CalleeID:   childIdx,
			Inputs:     inputs,
			Outputs:    outputs,
			OutputVars: vars,
		})

		for i := range outputs {
			out = append(out, stmt.Constraint{Op: expr.Eq, L: expr.IO{Loc: vars[i]}, R: outputs[i]})
		}
	}

	return stmt.Seq{Stmts: out}, nil
}

// lowerGates runs the pattern set over every (region, gate) pair of the
// group. Per-gate pattern failures are accumulated and reported together.
func lowerGates(
	sys cs.System, opts Options, patterns []Pattern, resolver *Resolver, g *group.Group, coverage *bitset.BitSet,
) (stmt.Seq, error) {
	var (
		out  []stmt.Stmt
		errs []error
	)

	for _, region := range g.Regions {
		for _, gate := range sys.Gates {
			scope := &GateScope{
				Gate:     gate,
				Region:   region,
				Resolver: resolver,
				Config:   opts.Config,
				Prime:    opts.Prime,
				Coverage: coverage,
			}

			rewritten, err := applyPatterns(patterns, scope)
			if err != nil {
				errs = append(errs, err)
				continue
			}

			if !stmt.IsEmpty(rewritten) {
				out = append(out, rewritten)
			}
		}
	}

	if len(errs) > 0 {
		return stmt.Seq{}, errors.Join(errs...)
	}

	return stmt.NewSeq(out...), nil
}

// lowerEqualities selects the equality-graph edges concerning this group
// and lowers each to a constraint, then emits the double-annotated-cell
// equalities.
func lowerEqualities(
	graph *eqgraph.Graph, bounds *group.Bounds, resolver *Resolver, g *group.Group,
) (stmt.Seq, error) {
	var out []stmt.Stmt

	for _, edge := range graph.Edges() {
		switch edge.Kind {
		case eqgraph.FixedToConst:
			if !bounds.AcceptsFixedToConst(edge.From.Cell) {
				continue
			}

			out = append(out, stmt.Constraint{
				Op: expr.Eq,
				L:  expr.IO{Loc: funcio.Fixed(edge.From.Cell)},
				R:  expr.Const{Value: edge.To.Const},
			})
		case eqgraph.AnyToAny:
			if !bounds.AcceptsEdge(edge.From.Cell, edge.To.Cell) {
				continue
			}

			lhs, err := resolver.CellExpr(edge.From.Cell)
			if err != nil {
				return stmt.Seq{}, err
			}

			rhs, err := resolver.CellExpr(edge.To.Cell)
			if err != nil {
				return stmt.Seq{}, err
			}

			out = append(out, stmt.Constraint{Op: expr.Eq, L: lhs, R: rhs})
		}
	}

	// A cell listed both as input and output binds its two handles
	// explicitly rather than being silently dropped.
	for i, in := range g.Inputs {
		if io, ok := resolver.OutputIO(in.Cell); ok {
			out = append(out, stmt.Constraint{
				Op: expr.Eq,
				L:  expr.IO{Loc: funcio.Arg(uint(i))},
				R:  expr.IO{Loc: io},
			})
		}
	}

	return stmt.Seq{Stmts: out}, nil
}

// lowerLookups clones each lookup template once per region-row of the
// group. The first region-row reuses the template verbatim; every later one
// re-allocates its temporaries from the group's counter (seeded above the
// template's own) so rows never share a temporary.
func lowerLookups(templates []stmt.Stmt, tempBase uint, g *group.Group) stmt.Seq {
	if len(templates) == 0 {
		return stmt.Seq{}
	}

	var (
		out   []stmt.Stmt
		temps = funcio.NewGeneratorAt(tempBase)
	)

	for _, template := range templates {
		first := true

		for _, region := range g.Regions {
			if region.Start.IsEmpty() {
				continue
			}

			for row := region.Start.Unwrap(); row < region.End; row++ {
				if first {
					out = append(out, template)
					first = false

					continue
				}

				out = append(out, cloneWithFreshTemps(template, temps))
			}
		}
	}

	return stmt.NewSeq(out...)
}

