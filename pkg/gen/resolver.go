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
package gen

import (
	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/cs"
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/ir/expr"
	"github.com/plonkir/ferrite/pkg/ir/failure"
	"github.com/plonkir/ferrite/pkg/ir/funcio"
	"github.com/plonkir/ferrite/pkg/ir/group"
	"github.com/plonkir/ferrite/pkg/synth"
)

// Resolver scopes cell references into one group's IO: input cells become
// Arg handles, output cells Field handles, child-group outputs CallOutput
// handles, and anything else falls back to a raw advice/fixed reference.
// Fixed cells with a known assigned value resolve directly to constants.
type Resolver struct {
	state *synth.State

	inputs   map[circuit.Cell]funcio.FuncIO
	outputs  map[circuit.Cell]funcio.FuncIO
	childOut map[circuit.Cell]funcio.FuncIO
}

// NewResolver builds the resolver for the group at index idx of the tree.
// Child-output handles are numbered by the callsite order used by the
// generator: child i in the group's Children list is callsite i.
func NewResolver(state *synth.State, t *group.Tree, idx int) *Resolver {
	g := &t.Groups[idx]
	r := &Resolver{
		state:    state,
		inputs:   make(map[circuit.Cell]funcio.FuncIO),
		outputs:  make(map[circuit.Cell]funcio.FuncIO),
		childOut: make(map[circuit.Cell]funcio.FuncIO),
	}

	for i, c := range g.Inputs {
		r.inputs[c.Cell] = funcio.Arg(uint(i))
	}

	for i, c := range g.Outputs {
		r.outputs[c.Cell] = funcio.Field(uint(i))
	}

	for callNo, child := range g.Children {
		for outIdx, c := range t.Groups[child].Outputs {
			r.childOut[c.Cell] = funcio.CallOutput(uint(callNo), uint(outIdx))
		}
	}

	return r
}

// CellIO resolves a cell to its handle in this group's scope. Inputs win
// over outputs (a double-annotated cell reads as its input handle; the
// generator emits an explicit equality binding the two).
func (r *Resolver) CellIO(cell circuit.Cell) (funcio.FuncIO, error) {
	if io, ok := r.inputs[cell]; ok {
		return io, nil
	}

	if io, ok := r.outputs[cell]; ok {
		return io, nil
	}

	if io, ok := r.childOut[cell]; ok {
		return io, nil
	}

	switch cell.Column.Kind {
	case circuit.Advice:
		return funcio.Advice(cell), nil
	case circuit.Fixed:
		return funcio.Fixed(cell), nil
	default:
		return funcio.FuncIO{}, failure.Structuralf(
			"instance cell %s is referenced but is not part of any group IO", cell)
	}
}

// OutputIO resolves a cell specifically as an output handle, bypassing the
// inputs-win rule; used when emitting the double-annotated-cell equality.
func (r *Resolver) OutputIO(cell circuit.Cell) (funcio.FuncIO, bool) {
	io, ok := r.outputs[cell]
	return io, ok
}

// CellExprNoChild resolves a cell like CellExpr but without routing through
// child-output handles. Callsite emission uses it for the actual output
// expressions, which are then bound to the CallOutput variables the rest of
// the group sees.
func (r *Resolver) CellExprNoChild(cell circuit.Cell) (expr.A, error) {
	if io, ok := r.inputs[cell]; ok {
		return expr.IO{Loc: io}, nil
	}

	if io, ok := r.outputs[cell]; ok {
		return expr.IO{Loc: io}, nil
	}

	switch cell.Column.Kind {
	case circuit.Advice:
		return expr.IO{Loc: funcio.Advice(cell)}, nil
	case circuit.Fixed:
		if v := r.state.FixedValue(cell); v.HasValue() {
			return expr.Const{Value: v.Unwrap()}, nil
		}

		return expr.IO{Loc: funcio.Fixed(cell)}, nil
	default:
		return nil, failure.Structuralf(
			"instance cell %s is referenced but is not part of any group IO", cell)
	}
}

// CellExpr resolves a cell to an IR expression. A fixed cell whose value is
// known folds directly to that constant.
func (r *Resolver) CellExpr(cell circuit.Cell) (expr.A, error) {
	if cell.Column.Kind == circuit.Fixed {
		if _, isIO := r.inputs[cell]; !isIO {
			if v := r.state.FixedValue(cell); v.HasValue() {
				return expr.Const{Value: v.Unwrap()}, nil
			}
		}
	}

	io, err := r.CellIO(cell)
	if err != nil {
		return nil, err
	}

	return expr.IO{Loc: io}, nil
}

// LowerPoly lowers one gate polynomial at an absolute row into an IR
// expression: queries resolve through the cell maps at the query's
// rotation, selectors evaluate to literal 0/1 from the selector store, and
// Scaled becomes an explicit product with a constant.
func (r *Resolver) LowerPoly(p cs.Poly, row circuit.Row) (expr.A, error) {
	switch n := p.(type) {
	case cs.Constant:
		return expr.Const{Value: n.Value}, nil
	case cs.Selector:
		if r.state.Selectors.IsEnabled(n.Index, row) {
			return expr.Const{Value: felt.One()}, nil
		}

		return expr.Const{Value: felt.Zero()}, nil
	case cs.FixedQuery:
		cell, err := rotated(n.Column, row, n.Rotation)
		if err != nil {
			return nil, err
		}

		return r.CellExpr(cell)
	case cs.AdviceQuery:
		cell, err := rotated(n.Column, row, n.Rotation)
		if err != nil {
			return nil, err
		}

		return r.CellExpr(cell)
	case cs.InstanceQuery:
		cell, err := rotated(n.Column, row, n.Rotation)
		if err != nil {
			return nil, err
		}

		return r.CellExpr(cell)
	case cs.Challenge:
		return expr.IO{Loc: funcio.Challenge(n.Index, n.Phase, 0)}, nil
	case cs.Neg:
		x, err := r.LowerPoly(n.X, row)
		if err != nil {
			return nil, err
		}

		return expr.Neg{X: x}, nil
	case cs.Sum:
		l, err := r.LowerPoly(n.L, row)
		if err != nil {
			return nil, err
		}

		rr, err := r.LowerPoly(n.R, row)
		if err != nil {
			return nil, err
		}

		return expr.Sum{L: l, R: rr}, nil
	case cs.Product:
		l, err := r.LowerPoly(n.L, row)
		if err != nil {
			return nil, err
		}

		rr, err := r.LowerPoly(n.R, row)
		if err != nil {
			return nil, err
		}

		return expr.Product{L: l, R: rr}, nil
	case cs.Scaled:
		x, err := r.LowerPoly(n.X, row)
		if err != nil {
			return nil, err
		}

		return expr.Product{L: expr.Const{Value: n.Scalar}, R: x}, nil
	default:
		return nil, failure.Structuralf("unknown polynomial constructor %T", p)
	}
}

// rotated applies a query rotation to an absolute row.
func rotated(col circuit.Column, row circuit.Row, rot cs.Rotation) (circuit.Cell, error) {
	shifted := int(row) + int(rot)
	if shifted < 0 {
		return circuit.Cell{}, failure.Structuralf(
			"query on %s rotated to negative row %d", col, shifted)
	}

	return circuit.Cell{Column: col.Any(), Row: circuit.Row(shifted)}, nil
}
