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
package felt

import (
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Named primes recognised by the --field CLI flag and by tests that want a
// small, legible prime instead of the full BLS12-377 scalar field. Modelled
// on the usual registry-of-named-fields shape.
const (
	// BLS12377 is the scalar field of the BLS12-377 curve, the default
	// field used throughout the compiler.
	BLS12377 = "BLS12_377"
	// GF251 is a tiny 8-bit-ish prime field useful for hand-checkable
	// examples and golden tests.
	GF251 = "GF_251"
	// GoldilocksLike is a convenient 31-bit prime, large enough to avoid
	// accidental wraparound in small test traces but still legible.
	GoldilocksLike = "GF_2013265921"
)

// Registry maps a field name to its modulus.
var registry = map[string]*big.Int{
	BLS12377:       fr.Modulus(),
	GF251:          big.NewInt(251),
	GoldilocksLike: big.NewInt(2013265921),
}

// ModulusOf looks up the modulus for a named field, returning nil if the name
// is not recognised. Lookups are case-insensitive to match the CLI's
// tolerance for "bls12_377" vs "BLS12_377".
func ModulusOf(name string) *big.Int {
	if p, ok := registry[strings.ToUpper(name)]; ok {
		return new(big.Int).Set(p)
	}

	return nil
}
