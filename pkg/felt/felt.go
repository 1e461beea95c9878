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

// Package felt provides an arbitrary-precision nonnegative field element.
//
// Unlike the curve-specific element types in gnark-crypto (e.g.
// ecc/bls12-377/fr.Element), a Felt does not know its own prime: every
// arithmetic operation takes the modulus as an explicit parameter, since the
// compiler that uses it is handed an arbitrary caller-supplied prime rather
// than one fixed at compile time. There is no type parameter tying a Felt to
// a single curve.
package felt

import "math/big"

// Felt is a nonnegative arbitrary-precision integer. Canonical form requires
// 0 <= x, reduction modulo a prime happens only when an operation is given
// one; a freshly constructed Felt need not be reduced.
type Felt struct {
	v big.Int
}

// Zero constructs the Felt representing 0.
func Zero() Felt {
	return Felt{}
}

// One constructs the Felt representing 1.
func One() Felt {
	var f Felt
	f.v.SetUint64(1)
	return f
}

// FromUint64 constructs a Felt from a uint64.
func FromUint64(val uint64) Felt {
	var f Felt
	f.v.SetUint64(val)
	return f
}

// FromBigInt constructs a Felt from a big.Int. Panics if val is negative.
func FromBigInt(val *big.Int) Felt {
	if val.Sign() < 0 {
		panic("felt: negative value encountered")
	}

	var f Felt
	f.v.Set(val)

	return f
}

// BigInt returns the underlying big.Int value of this Felt. The result must
// not be mutated by the caller.
func (f Felt) BigInt() *big.Int {
	return &f.v
}

// IsZero checks whether this value is (literally) zero.
func (f Felt) IsZero() bool {
	return f.v.Sign() == 0
}

// IsOne checks whether this value is (literally) one.
func (f Felt) IsOne() bool {
	return f.v.Cmp(big.NewInt(1)) == 0
}

// Cmp returns 1 if f > g, 0 if f == g, and -1 if f < g. This compares the raw
// representations and does not reduce modulo any prime.
func (f Felt) Cmp(g Felt) int {
	return f.v.Cmp(&g.v)
}

// Equal checks raw (unreduced) equality.
func (f Felt) Equal(g Felt) bool {
	return f.Cmp(g) == 0
}

// String renders the decimal representation of the raw value.
func (f Felt) String() string {
	return f.v.String()
}

// Text renders the value in the given base (2, 10, 16, etc).
func (f Felt) Text(base int) string {
	return f.v.Text(base)
}

// Reduce returns f mod p, canonicalised into [0, p).
func (f Felt) Reduce(p *big.Int) Felt {
	var r Felt
	r.v.Mod(&f.v, p)

	return r
}

// Add computes (f + g) mod p.
func (f Felt) Add(g Felt, p *big.Int) Felt {
	var r Felt
	r.v.Add(&f.v, &g.v)
	r.v.Mod(&r.v, p)

	return r
}

// Sub computes (f - g) mod p, canonicalised into [0, p).
func (f Felt) Sub(g Felt, p *big.Int) Felt {
	var r Felt
	r.v.Sub(&f.v, &g.v)
	r.v.Mod(&r.v, p)

	return r
}

// Mul computes (f * g) mod p.
func (f Felt) Mul(g Felt, p *big.Int) Felt {
	var r Felt
	r.v.Mul(&f.v, &g.v)
	r.v.Mod(&r.v, p)

	return r
}

// Neg computes (-f) mod p, i.e. (p - f) mod p.
func (f Felt) Neg(p *big.Int) Felt {
	var r Felt
	r.v.Neg(&f.v)
	r.v.Mod(&r.v, p)

	return r
}
