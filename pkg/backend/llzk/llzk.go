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

// Package llzk emits the LLZK-shaped structural IR: one component struct
// per group, with the group's inputs as constrain-function arguments, its
// outputs as struct fields, and its IR statements lowered into the
// function body as SSA-form operations.
package llzk

import (
	"fmt"
	"io"
	"strings"

	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/failure"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
	"github.com/plonkir/ferrite/pkg/ir/lower"
)

// Value is the opaque handle the emitter hands back per lowered
// expression: the SSA name of the operation's result.
type Value string

// Component is one lowered group: a struct definition whose constrain
// function holds the group's constraints.
type Component struct {
	Name    string
	Inputs  int
	Outputs int
	// Body holds the constrain function's operations, one line each.
	Body []string
}

// Module is a complete lowered program: components in dependency order
// (callees before callers), the last of which is the main component.
type Module struct {
	Components []Component
	Main       string
}

// Emitter implements the lowering visitor for one component. SSA names are
// numbered from zero per component.
type Emitter struct {
	comp *Component
	next uint
	// defined tracks the SSA names produced so far; Verify uses it to
	// reject operands that were never defined.
	defined map[Value]bool
	// constraints counts emitted constraint-producing operations.
	constraints uint
	// callNo numbers callsites in emission order, matching the CallOutput
	// handles generated by pkg/gen.
	callNo uint
}

// NewEmitter constructs an emitter targeting the given component.
func NewEmitter(comp *Component) *Emitter {
	return &Emitter{comp: comp, defined: make(map[Value]bool)}
}

func (e *Emitter) fresh() Value {
	v := Value(fmt.Sprintf("%%%d", e.next))
	e.next++
	e.defined[v] = true

	return v
}

func (e *Emitter) op(format string, args ...any) Value {
	v := e.fresh()
	e.comp.Body = append(e.comp.Body, fmt.Sprintf("%s = ", v)+fmt.Sprintf(format, args...))

	return v
}

// LowerConst implementation for the lowering visitor.
func (e *Emitter) LowerConst(value felt.Felt) (Value, error) {
	return e.op("felt.const %s", value), nil
}

// LowerFuncIO implementation for the lowering visitor.
func (e *Emitter) LowerFuncIO(loc funcio.FuncIO) (Value, error) {
	switch loc.Tag {
	case funcio.TagArg:
		return e.op("function.arg %d", loc.N), nil
	case funcio.TagField:
		return e.op("struct.readf self[%d]", loc.N), nil
	case funcio.TagCallOutput:
		return e.op("struct.readf call%d[%d]", loc.CallNo, loc.N), nil
	default:
		return e.op("felt.read %s", loc), nil
	}
}

// LowerNeg implementation for the lowering visitor.
func (e *Emitter) LowerNeg(x Value) (Value, error) {
	return e.op("felt.neg %s", x), nil
}

// LowerSum implementation for the lowering visitor.
func (e *Emitter) LowerSum(l, r Value) (Value, error) {
	return e.op("felt.add %s, %s", l, r), nil
}

// LowerProduct implementation for the lowering visitor.
func (e *Emitter) LowerProduct(l, r Value) (Value, error) {
	return e.op("felt.mul %s, %s", l, r), nil
}

// LowerTrue implementation for the lowering visitor.
func (e *Emitter) LowerTrue() (Value, error) {
	return e.op("bool.const true"), nil
}

// LowerFalse implementation for the lowering visitor.
func (e *Emitter) LowerFalse() (Value, error) {
	return e.op("bool.const false"), nil
}

// LowerCmp implementation for the lowering visitor.
func (e *Emitter) LowerCmp(op expr.CmpOp, l, r Value) (Value, error) {
	return e.op("bool.cmp %s(%s, %s)", cmpName(op), l, r), nil
}

func cmpName(op expr.CmpOp) string {
	switch op {
	case expr.Eq:
		return "eq"
	case expr.Ne:
		return "ne"
	case expr.Lt:
		return "lt"
	case expr.Le:
		return "le"
	case expr.Gt:
		return "gt"
	case expr.Ge:
		return "ge"
	default:
		return "eq"
	}
}

// LowerAnd implementation for the lowering visitor.
func (e *Emitter) LowerAnd(xs []Value) (Value, error) {
	return e.variadic("bool.and", xs)
}

// LowerOr implementation for the lowering visitor.
func (e *Emitter) LowerOr(xs []Value) (Value, error) {
	return e.variadic("bool.or", xs)
}

func (e *Emitter) variadic(name string, xs []Value) (Value, error) {
	args := make([]string, len(xs))
	for i, x := range xs {
		args[i] = string(x)
	}

	return e.op("%s %s", name, strings.Join(args, ", ")), nil
}

// LowerNot implementation for the lowering visitor.
func (e *Emitter) LowerNot(x Value) (Value, error) {
	return e.op("bool.not %s", x), nil
}

// LowerImplies implementation for the lowering visitor.
func (e *Emitter) LowerImplies(l, r Value) (Value, error) {
	return e.op("bool.implies %s, %s", l, r), nil
}

// LowerIff implementation for the lowering visitor.
func (e *Emitter) LowerIff(l, r Value) (Value, error) {
	return e.op("bool.iff %s, %s", l, r), nil
}

// LowerDet is unimplemented: LLZK does not model determinism analysis.
func (e *Emitter) LowerDet(x Value) (Value, error) {
	return "", failure.Structuralf("llzk: determinism hints are not supported")
}

// GenerateConstraint implementation for the lowering visitor.
func (e *Emitter) GenerateConstraint(op expr.CmpOp, lhs, rhs Value) error {
	e.constraints++
	e.comp.Body = append(e.comp.Body, fmt.Sprintf("constrain.%s %s, %s", cmpName(op), lhs, rhs))

	return nil
}

// GenerateAssert implementation for the lowering visitor.
func (e *Emitter) GenerateAssert(cond Value) error {
	e.constraints++
	e.comp.Body = append(e.comp.Body, fmt.Sprintf("constrain.assert %s", cond))

	return nil
}

// GenerateCall implementation for the lowering visitor.
func (e *Emitter) GenerateCall(callee string, calleeID int, inputs []Value, outputs []funcio.FuncIO) error {
	args := make([]string, len(inputs))
	for i, in := range inputs {
		args[i] = string(in)
	}

	e.comp.Body = append(e.comp.Body, fmt.Sprintf(
		"call%d = function.call @%s::@constrain(%s) : %d outputs",
		e.callNo, callee, strings.Join(args, ", "), len(outputs)))
	e.callNo++

	return nil
}

// GenerateAssumeDeterministic is a no-op: LLZK does not model determinism.
func (e *Emitter) GenerateAssumeDeterministic(loc funcio.FuncIO) error {
	return nil
}

// GeneratePostCondition implementation for the lowering visitor.
func (e *Emitter) GeneratePostCondition(cond Value) error {
	e.constraints++
	e.comp.Body = append(e.comp.Body, fmt.Sprintf("constrain.post %s", cond))

	return nil
}

// GenerateComment implementation for the lowering visitor.
func (e *Emitter) GenerateComment(text string) error {
	e.comp.Body = append(e.comp.Body, "// "+text)
	return nil
}

// NumConstraints implementation for the lowering visitor.
func (e *Emitter) NumConstraints() uint {
	return e.constraints
}

var _ lower.Visitor[Value] = (*Emitter)(nil)

// Verify performs the native structural check on a component: every SSA
// operand referenced by an operation must have been defined by an earlier
// operation in the same body.
func (m *Module) Verify() error {
	for _, comp := range m.Components {
		defined := make(map[string]bool)

		for _, line := range comp.Body {
			if strings.HasPrefix(line, "//") {
				continue
			}

			for _, tok := range strings.FieldsFunc(line, func(r rune) bool {
				return r == ' ' || r == ',' || r == '(' || r == ')'
			}) {
				if !strings.HasPrefix(tok, "%") {
					continue
				}

				if name, _, isDef := strings.Cut(line, " = "); isDef && strings.TrimSpace(name) == tok {
					continue
				}

				if !defined[tok] {
					return &failure.BackendVerification{
						Backend:     "llzk",
						Diagnostics: fmt.Sprintf("operand %s used before definition", tok),
						Fragment:    fmt.Sprintf("component %q: %s", comp.Name, line),
					}
				}
			}

			if name, _, isDef := strings.Cut(line, " = "); isDef {
				defined[strings.TrimSpace(name)] = true
			}
		}
	}

	return nil
}

// WriteTo renders the module textually, one struct.def per component.
func (m *Module) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, comp := range m.Components {
		n, err := fmt.Fprintf(w, "struct.def @%s {\n", comp.Name)
		total += int64(n)

		if err != nil {
			return total, err
		}

		for i := 0; i < comp.Outputs; i++ {
			n, err = fmt.Fprintf(w, "  struct.field @out%d : !felt.type\n", i)
			total += int64(n)

			if err != nil {
				return total, err
			}
		}

		n, err = fmt.Fprintf(w, "  function.def @constrain(%d args) {\n", comp.Inputs)
		total += int64(n)

		if err != nil {
			return total, err
		}

		for _, line := range comp.Body {
			n, err = fmt.Fprintf(w, "    %s\n", line)
			total += int64(n)

			if err != nil {
				return total, err
			}
		}

		n, err = fmt.Fprintf(w, "  }\n}\n")
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}
