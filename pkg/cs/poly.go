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

// Package cs defines the upstream constraint-system contract: the
// polynomial expression language gates are written in, the gate and lookup
// descriptions a constraint system supplies, and the observer interface a
// circuit driver calls back into during synthesis. The middle-end consumes
// this package; it never constructs circuits itself.
package cs

import (
	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/felt"
)

// Rotation is a signed row offset relative to the current region row; a
// query at rotation -1 reads the previous row.
type Rotation int

// Poly is a polynomial expression over circuit queries, as supplied by the
// upstream constraint system: a closed sum type over Constant, Selector,
// the three query kinds, Challenge, Neg, Sum, Product and Scaled.
type Poly interface {
	isPoly()
}

// Constant is a literal field element.
type Constant struct{ Value felt.Felt }

// Selector queries a selector column; it evaluates to 0 or 1 depending on
// whether the selector is enabled on the row.
type Selector struct{ Index uint }

// FixedQuery reads a fixed column at a rotation.
type FixedQuery struct {
	Column   circuit.Column
	Rotation Rotation
}

// AdviceQuery reads an advice column at a rotation.
type AdviceQuery struct {
	Column   circuit.Column
	Rotation Rotation
	Phase    uint
}

// InstanceQuery reads an instance column at a rotation.
type InstanceQuery struct {
	Column   circuit.Column
	Rotation Rotation
}

// Challenge reads a verifier challenge drawn in a given phase.
type Challenge struct {
	Index uint
	Phase uint
}

// Neg negates its operand.
type Neg struct{ X Poly }

// Sum adds two polynomials.
type Sum struct{ L, R Poly }

// Product multiplies two polynomials.
type Product struct{ L, R Poly }

// Scaled multiplies a polynomial by a constant scalar.
type Scaled struct {
	X      Poly
	Scalar felt.Felt
}

func (Constant) isPoly()      {}
func (Selector) isPoly()      {}
func (FixedQuery) isPoly()    {}
func (AdviceQuery) isPoly()   {}
func (InstanceQuery) isPoly() {}
func (Challenge) isPoly()     {}
func (Neg) isPoly()           {}
func (Sum) isPoly()           {}
func (Product) isPoly()       {}
func (Scaled) isPoly()        {}

// Sub builds L - R, the usual way gate polynomials express "these two are
// equal" as a vanishing difference.
func Sub(l, r Poly) Poly {
	return Sum{L: l, R: Neg{X: r}}
}

// CollectSelectors returns every Selector appearing anywhere in p, in
// left-to-right encounter order and without deduplication.
func CollectSelectors(p Poly) []Selector {
	var out []Selector

	var walk func(Poly)

	walk = func(q Poly) {
		switch n := q.(type) {
		case Selector:
			out = append(out, n)
		case Neg:
			walk(n.X)
		case Scaled:
			walk(n.X)
		case Sum:
			walk(n.L)
			walk(n.R)
		case Product:
			walk(n.L)
			walk(n.R)
		}
	}

	walk(p)

	return out
}
