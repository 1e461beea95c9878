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

// Package picus emits PCL (Picus Constraint Language) programs for
// determinism analysis. Each group lowers to one module; expressions lower
// to s-expression fragments, with oversized ones extracted into fresh
// temporaries when an expression cutoff is configured.
package picus

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/plonkir/ferrite/pkg/config"
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/failure"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
	"github.com/plonkir/ferrite/pkg/ir/lower"
)

// Expr is the opaque handle per lowered expression: the rendered
// s-expression plus its node count, which drives cutoff extraction.
type Expr struct {
	S    string
	Size uint
}

// Module is one PCL module: named variables crossing its boundary plus its
// constraint lines.
type Module struct {
	Name    string
	Inputs  []string
	Outputs []string
	Lines   []string
}

// Program is a complete PCL program.
type Program struct {
	Prime   *big.Int
	Modules []*Module
}

// NewProgram constructs an empty program over the given prime.
func NewProgram(prime *big.Int) *Program {
	return &Program{Prime: prime}
}

// AddModule appends a fresh module and returns it.
func (p *Program) AddModule(name string) *Module {
	m := &Module{Name: name}
	p.Modules = append(p.Modules, m)

	return m
}

// Emitter implements the lowering visitor for one module, naming variables
// per the configured convention and checking that one location handle is
// never given two different names.
type Emitter struct {
	mod *Module
	cfg config.CompilationConfig
	// names caches the variable assigned to each location handle.
	names map[funcio.FuncIO]string
	// nextExtract numbers the temporaries introduced by cutoff
	// extraction. These live in their own "pt" name space, disjoint from
	// the "t" names of genuine Temp handles, so an extraction can never
	// alias a lookup-generated temporary.
	nextExtract uint
	constraints uint
	callNo      uint
}

// NewEmitter constructs an emitter targeting the given module.
func NewEmitter(mod *Module, cfg config.CompilationConfig) *Emitter {
	return &Emitter{mod: mod, cfg: cfg, names: make(map[funcio.FuncIO]string)}
}

// VarName renders the short-form name of a location handle.
func VarName(loc funcio.FuncIO) string {
	switch loc.Tag {
	case funcio.TagArg:
		return fmt.Sprintf("x%d", loc.N)
	case funcio.TagField:
		return fmt.Sprintf("y%d", loc.N)
	case funcio.TagAdvice:
		if loc.Relative {
			return fmt.Sprintf("a%d_r%d_%d", loc.Rel.Column.Index, loc.Rel.Region, loc.Rel.Offset)
		}

		return fmt.Sprintf("a%d_%d", loc.Cell.Column.Index, loc.Cell.Row)
	case funcio.TagFixed:
		return fmt.Sprintf("f%d_%d", loc.Cell.Column.Index, loc.Cell.Row)
	case funcio.TagTableLookup:
		return fmt.Sprintf("l%d_%d_%d_%d", loc.LookupID, loc.Column.Index, loc.Row, loc.Idx)
	case funcio.TagCallOutput:
		return fmt.Sprintf("c%d_%d", loc.CallNo, loc.N)
	case funcio.TagTemp:
		return fmt.Sprintf("t%d", loc.N)
	case funcio.TagChallenge:
		return fmt.Sprintf("ch%d_%d", loc.ChallengeIndex, loc.Phase)
	default:
		return "v"
	}
}

// name resolves the variable for a location, enforcing name consistency:
// if the handle was seen before under a different name the lowering fails.
func (e *Emitter) name(loc funcio.FuncIO) (string, error) {
	fresh := VarName(loc)

	if existing, ok := e.names[loc]; ok {
		if existing != fresh {
			return "", &failure.VariableConsistency{Key: loc.String(), Existing: existing, Fresh: fresh}
		}

		return existing, nil
	}

	e.names[loc] = fresh

	return fresh, nil
}

// cutoff extracts an expression into a fresh "pt" temporary when it
// exceeds the configured size, keeping downstream constraints shallow for
// the solver. The "pt" prefix and its own counter keep these names
// disjoint from the "t" names VarName gives genuine Temp handles.
func (e *Emitter) cutoff(x Expr) Expr {
	if e.cfg.ExprCutoff == 0 || x.Size <= e.cfg.ExprCutoff {
		return x
	}

	t := fmt.Sprintf("pt%d", e.nextExtract)
	e.nextExtract++
	e.mod.Lines = append(e.mod.Lines, fmt.Sprintf("(assert (= %s %s))", t, x.S))
	e.constraints++

	return Expr{S: t, Size: 1}
}

// LowerConst implementation for the lowering visitor.
func (e *Emitter) LowerConst(value felt.Felt) (Expr, error) {
	return Expr{S: value.String(), Size: 1}, nil
}

// LowerFuncIO implementation for the lowering visitor.
func (e *Emitter) LowerFuncIO(loc funcio.FuncIO) (Expr, error) {
	n, err := e.name(loc)
	if err != nil {
		return Expr{}, err
	}

	return Expr{S: n, Size: 1}, nil
}

// LowerNeg implementation for the lowering visitor.
func (e *Emitter) LowerNeg(x Expr) (Expr, error) {
	return e.cutoff(Expr{S: fmt.Sprintf("(- 0 %s)", x.S), Size: x.Size + 1}), nil
}

// LowerSum implementation for the lowering visitor.
func (e *Emitter) LowerSum(l, r Expr) (Expr, error) {
	return e.cutoff(Expr{S: fmt.Sprintf("(+ %s %s)", l.S, r.S), Size: l.Size + r.Size + 1}), nil
}

// LowerProduct implementation for the lowering visitor.
func (e *Emitter) LowerProduct(l, r Expr) (Expr, error) {
	return e.cutoff(Expr{S: fmt.Sprintf("(* %s %s)", l.S, r.S), Size: l.Size + r.Size + 1}), nil
}

// LowerTrue implementation for the lowering visitor.
func (e *Emitter) LowerTrue() (Expr, error) {
	return Expr{S: "true", Size: 1}, nil
}

// LowerFalse implementation for the lowering visitor.
func (e *Emitter) LowerFalse() (Expr, error) {
	return Expr{S: "false", Size: 1}, nil
}

// LowerCmp implementation for the lowering visitor.
func (e *Emitter) LowerCmp(op expr.CmpOp, l, r Expr) (Expr, error) {
	return Expr{S: fmt.Sprintf("(%s %s %s)", op, l.S, r.S), Size: l.Size + r.Size + 1}, nil
}

// LowerAnd implementation for the lowering visitor.
func (e *Emitter) LowerAnd(xs []Expr) (Expr, error) {
	return e.connective("&&", "true", xs), nil
}

// LowerOr implementation for the lowering visitor.
func (e *Emitter) LowerOr(xs []Expr) (Expr, error) {
	return e.connective("||", "false", xs), nil
}

// connective folds a variadic boolean connective into nested binary form,
// PCL having no n-ary conjunction.
func (e *Emitter) connective(op, identity string, xs []Expr) Expr {
	if len(xs) == 0 {
		return Expr{S: identity, Size: 1}
	}

	acc := xs[0]
	for _, x := range xs[1:] {
		acc = Expr{S: fmt.Sprintf("(%s %s %s)", op, acc.S, x.S), Size: acc.Size + x.Size + 1}
	}

	return acc
}

// LowerNot implementation for the lowering visitor.
func (e *Emitter) LowerNot(x Expr) (Expr, error) {
	return Expr{S: fmt.Sprintf("(! %s)", x.S), Size: x.Size + 1}, nil
}

// LowerImplies implementation for the lowering visitor.
func (e *Emitter) LowerImplies(l, r Expr) (Expr, error) {
	return Expr{S: fmt.Sprintf("(=> %s %s)", l.S, r.S), Size: l.Size + r.Size + 1}, nil
}

// LowerIff implementation for the lowering visitor.
func (e *Emitter) LowerIff(l, r Expr) (Expr, error) {
	return Expr{S: fmt.Sprintf("(<=> %s %s)", l.S, r.S), Size: l.Size + r.Size + 1}, nil
}

// LowerDet implementation for the lowering visitor: Picus models
// determinism directly.
func (e *Emitter) LowerDet(x Expr) (Expr, error) {
	return Expr{S: fmt.Sprintf("(deterministic %s)", x.S), Size: x.Size + 1}, nil
}

// GenerateConstraint implementation for the lowering visitor.
func (e *Emitter) GenerateConstraint(op expr.CmpOp, lhs, rhs Expr) error {
	e.mod.Lines = append(e.mod.Lines, fmt.Sprintf("(assert (%s %s %s))", op, lhs.S, rhs.S))
	e.constraints++

	return nil
}

// GenerateAssert implementation for the lowering visitor.
func (e *Emitter) GenerateAssert(cond Expr) error {
	e.mod.Lines = append(e.mod.Lines, fmt.Sprintf("(assert %s)", cond.S))
	e.constraints++

	return nil
}

// GenerateCall implementation for the lowering visitor.
func (e *Emitter) GenerateCall(callee string, calleeID int, inputs []Expr, outputs []funcio.FuncIO) error {
	ins := make([]string, len(inputs))
	for i, in := range inputs {
		ins[i] = in.S
	}

	outs := make([]string, len(outputs))

	for i, out := range outputs {
		n, err := e.name(out)
		if err != nil {
			return err
		}

		outs[i] = n
	}

	e.mod.Lines = append(e.mod.Lines, fmt.Sprintf("(call #%d %s (%s) (%s))",
		e.callNo, callee, strings.Join(ins, " "), strings.Join(outs, " ")))
	e.callNo++
	e.constraints++

	return nil
}

// GenerateAssumeDeterministic implementation for the lowering visitor.
func (e *Emitter) GenerateAssumeDeterministic(loc funcio.FuncIO) error {
	n, err := e.name(loc)
	if err != nil {
		return err
	}

	e.mod.Lines = append(e.mod.Lines, fmt.Sprintf("(assume (deterministic %s))", n))

	return nil
}

// GeneratePostCondition implementation for the lowering visitor.
func (e *Emitter) GeneratePostCondition(cond Expr) error {
	e.mod.Lines = append(e.mod.Lines, fmt.Sprintf("(postcondition %s)", cond.S))
	return nil
}

// GenerateComment implementation for the lowering visitor.
func (e *Emitter) GenerateComment(text string) error {
	e.mod.Lines = append(e.mod.Lines, "; "+text)
	return nil
}

// NumConstraints implementation for the lowering visitor.
func (e *Emitter) NumConstraints() uint {
	return e.constraints
}

var _ lower.Visitor[Expr] = (*Emitter)(nil)

// WriteTo renders the program in PCL form.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	var total int64

	n, err := fmt.Fprintf(w, "(prime-number %v)\n", p.Prime)
	total += int64(n)

	if err != nil {
		return total, err
	}

	for _, m := range p.Modules {
		wn, err := m.WriteTo(w)
		total += wn

		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// WriteTo renders one module: begin-module, inputs, outputs, constraint
// lines, end-module.
func (m *Module) WriteTo(w io.Writer) (int64, error) {
	var total int64

	n, err := fmt.Fprintf(w, "(begin-module %s)\n", m.Name)
	total += int64(n)

	if err != nil {
		return total, err
	}

	for _, in := range m.Inputs {
		n, err = fmt.Fprintf(w, "(input %s)\n", in)
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	for _, out := range m.Outputs {
		n, err = fmt.Fprintf(w, "(output %s)\n", out)
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	for _, line := range m.Lines {
		n, err = fmt.Fprintf(w, "%s\n", line)
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	n, err = io.WriteString(w, "(end-module)\n")
	total += int64(n)

	return total, err
}
