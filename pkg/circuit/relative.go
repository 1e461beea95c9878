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
package circuit

import "fmt"

// RelativeCell is a cell reference whose row is an offset within a region,
// rather than an absolute table row. Only an absolute Cell whose row falls
// within a region's [Start, End) may be relativised against it.
type RelativeCell struct {
	Column AnyColumn
	Region Index
	Offset uint
}

// String renders "kind[index]@r<region>+offset", e.g. "advice[0]@r3+2".
func (r RelativeCell) String() string {
	return fmt.Sprintf("%s@r%d+%d", r.Column, r.Region, r.Offset)
}

// Relativise rewrites an absolute cell as an offset from the given region's
// start. It fails if the cell's row does not fall within the region, or if
// the region has no start (and so contains no absolute cells at all) or no
// allocated index.
func Relativise(cell Cell, region Region) (RelativeCell, error) {
	if region.Index.IsEmpty() {
		return RelativeCell{}, fmt.Errorf("relativise %s: region %q has no allocated index", cell, region.Name)
	}

	if region.Start.IsEmpty() {
		return RelativeCell{}, fmt.Errorf("relativise %s: region %q has no start", cell, region.Name)
	}

	start := region.Start.Unwrap()
	if cell.Row < start || cell.Row >= region.End {
		return RelativeCell{}, fmt.Errorf("relativise %s: not contained in region %q [%d,%d)",
			cell, region.Name, start, region.End)
	}

	return RelativeCell{
		Column: cell.Column,
		Region: region.Index.Unwrap(),
		Offset: cell.Row - start,
	}, nil
}

// Absolute recovers the absolute cell a RelativeCell denotes, given the
// region it was relativised against.
func (r RelativeCell) Absolute(region Region) Cell {
	return Cell{Column: r.Column, Row: region.Start.Unwrap() + r.Offset}
}
