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
package group

import "github.com/plonkir/ferrite/pkg/circuit"

// Position classifies a cell relative to a group's bounds.
type Position uint8

const (
	// Within means the cell lies inside one of the group's regions (or is
	// an output of one of its children) without being IO.
	Within Position = iota
	// IO means the cell is one of the group's own inputs or outputs and
	// lies inside the group's regions.
	IO
	// ForeignIO means the cell is declared as group IO but lies outside
	// the group's regions.
	ForeignIO
	// Outside means the cell is unrelated to this group.
	Outside
)

// String renders the position for diagnostics.
func (p Position) String() string {
	switch p {
	case Within:
		return "within"
	case IO:
		return "io"
	case ForeignIO:
		return "foreign-io"
	case Outside:
		return "outside"
	default:
		return "unknown"
	}
}

// rowRange is a half-open [lo, hi) row interval.
type rowRange struct {
	lo, hi circuit.Row
}

// Bounds precomputes, for one group, the cell sets that drive
// equality-constraint selection: the (column, rowRange) cover of its
// regions, its IO cells split by whether they fall inside those regions,
// and the output cells contributed by its children.
type Bounds struct {
	colsAndRows    map[circuit.AnyColumn][]rowRange
	io             map[circuit.Cell]bool
	foreignIO      map[circuit.Cell]bool
	childrenOutput map[circuit.Cell]bool
}

// NewBounds computes the bounds of the group at index idx in the tree.
func NewBounds(t *Tree, idx int) *Bounds {
	g := &t.Groups[idx]
	b := &Bounds{
		colsAndRows:    make(map[circuit.AnyColumn][]rowRange),
		io:             make(map[circuit.Cell]bool),
		foreignIO:      make(map[circuit.Cell]bool),
		childrenOutput: make(map[circuit.Cell]bool),
	}

	for _, r := range g.Regions {
		if r.Start.IsEmpty() {
			continue
		}

		rng := rowRange{lo: r.Start.Unwrap(), hi: r.End}
		for _, col := range r.Columns {
			b.colsAndRows[col] = append(b.colsAndRows[col], rng)
		}
	}

	for _, c := range g.Inputs {
		b.addIO(c.Cell)
	}

	for _, c := range g.Outputs {
		b.addIO(c.Cell)
	}

	for _, child := range g.Children {
		for _, c := range t.Groups[child].Outputs {
			b.childrenOutput[c.Cell] = true
		}
	}

	return b
}

func (b *Bounds) addIO(cell circuit.Cell) {
	if b.covered(cell) {
		b.io[cell] = true
	} else {
		b.foreignIO[cell] = true
	}
}

// covered reports whether the cell falls inside the group's region cover.
func (b *Bounds) covered(cell circuit.Cell) bool {
	for _, rng := range b.colsAndRows[cell.Column] {
		if cell.Row >= rng.lo && cell.Row < rng.hi {
			return true
		}
	}

	return false
}

// Classify labels a cell relative to this group's bounds.
func (b *Bounds) Classify(cell circuit.Cell) Position {
	switch {
	case b.io[cell]:
		return IO
	case b.foreignIO[cell]:
		return ForeignIO
	case b.covered(cell) || b.childrenOutput[cell]:
		return Within
	default:
		return Outside
	}
}

// AcceptsEdge decides whether an equality edge between two cells concerns
// this group. The acceptance matrix: Within pairs with anything except a
// non-fixed Outside; IO pairs with Within, IO and ForeignIO; ForeignIO
// pairs with Within and IO only; two Outside cells never concern the group
// (nor does Outside paired with IO/ForeignIO), except that a fixed Outside
// cell may pair with a Within cell.
func (b *Bounds) AcceptsEdge(lhs, rhs circuit.Cell) bool {
	lp, rp := b.Classify(lhs), b.Classify(rhs)

	// Normalise so lp <= rp in declaration order; the matrix is symmetric.
	if lp > rp {
		lp, rp = rp, lp
		lhs, rhs = rhs, lhs
	}

	switch lp {
	case Within:
		if rp == Outside {
			return rhs.Column.Kind == circuit.Fixed
		}

		return true
	case IO:
		return rp != Outside
	case ForeignIO:
		return rp != ForeignIO && rp != Outside
	default:
		return false
	}
}

// AcceptsFixedToConst decides whether a fixed-to-constant edge on the given
// fixed cell concerns this group: accepted when the cell is Within or
// Outside. Other positions are unreachable by construction, since fixed
// cells never appear in group IO.
func (b *Bounds) AcceptsFixedToConst(cell circuit.Cell) bool {
	p := b.Classify(cell)
	return p == Within || p == Outside
}
