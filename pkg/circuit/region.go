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

import (
	"github.com/plonkir/ferrite/pkg/util"
)

// Row is a nonnegative row index within a column.
type Row = uint

// Index identifies a region uniquely within a synthesis run. Indices are
// allocated from a monotonic counter (see Allocator) that may be recycled
// when a region is reclassified as a lookup table on exit.
type Index uint

// Cell is an (column, row) pair in the circuit table.
type Cell struct {
	Column AnyColumn
	Row    Row
}

// String renders "kind[index]@row".
func (c Cell) String() string {
	return c.Column.String() + "@" + itoa(c.Row)
}

func itoa(v uint) string {
	if v == 0 {
		return "0"
	}

	var buf [20]byte

	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}

	return string(buf[i:])
}

// Region is a half-open row interval [Start, End) over a subset of columns —
// the unit of local assignment during synthesis. A region's Start is either
// unset (it has not yet had any cell assigned, and so contributes no
// absolute cells) or is the row at which it begins.
type Region struct {
	// Index is this region's identity, assigned when synthesis enters the
	// region; a region reclassified as a lookup table has it cleared.
	// Every region used after synthesis completion must have an index.
	Index util.Option[Index]
	// Name is a textual, non-unique label (e.g. supplied to enter_region).
	Name string
	// Columns is the subset of columns this region spans.
	Columns []AnyColumn
	// Start is the row at which this region begins, or empty if no cell
	// has been assigned within it yet.
	Start util.Option[Row]
	// End is one past the last row assigned within this region (the
	// region covers [Start, End)).
	End Row
}

// NewRegion constructs an empty, as-yet-unindexed region with the given
// name. Its Start is unset until the first cell is assigned within it.
func NewRegion(name string) Region {
	return Region{Name: name}
}

// Contains reports whether row r falls within [Start, End) of this region.
// A region with no Start never contains any row.
func (r Region) Contains(row Row) bool {
	if r.Start.IsEmpty() {
		return false
	}

	start := r.Start.Unwrap()

	return row >= start && row < r.End
}

// HasColumn reports whether this region spans the given column.
func (r Region) HasColumn(col AnyColumn) bool {
	for _, c := range r.Columns {
		if c == col {
			return true
		}
	}

	return false
}

// Touch extends the region's extent and column set to cover (col, row),
// widening Start (if unset, or row precedes it) and End as necessary. This
// is the mutation point used by on_advice_assigned, on_fixed_assigned and
// fill_from_row during synthesis; enable_selector calls TouchRow directly.
func (r *Region) Touch(col AnyColumn, row Row) {
	if !r.HasColumn(col) {
		r.Columns = append(r.Columns, col)
	}

	r.TouchRow(row)
}

// TouchRow widens the region's row extent to cover row without affecting
// its column set; enable_selector uses this since selectors are not
// circuit columns.
func (r *Region) TouchRow(row Row) {
	if r.Start.IsEmpty() || row < r.Start.Unwrap() {
		r.Start = util.Some(row)
	}

	if row >= r.End {
		r.End = row + 1
	}
}

// Allocator hands out monotonically increasing region indices. An index
// freed by Release is recycled by the next Next call, matching the
// behaviour where a region reclassified as a lookup table gives its index
// back to the pool.
type Allocator struct {
	next uint
	free []Index
}

// Next allocates a region index, preferring a previously released one.
func (a *Allocator) Next() Index {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]

		return idx
	}

	idx := Index(a.next)
	a.next++

	return idx
}

// Release returns an index to the pool for reuse.
func (a *Allocator) Release(idx Index) {
	a.free = append(a.free, idx)
}
