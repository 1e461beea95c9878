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

// Package eqgraph implements the equality-constraint graph: an undirected
// multigraph whose vertices are either an (AnyColumn, row) pair or a
// fixed-to-constant witness (FixedColumn, row, value), and whose edges are
// copy-constraints or fixed-to-constant derivations.
package eqgraph

import (
	"github.com/plonkir/ferrite/pkg/circuit"
	"github.com/plonkir/ferrite/pkg/felt"
)

// Vertex identifies a vertex of the equality graph: a plain cell, or a fixed
// cell known to equal a constant.
type Vertex struct {
	Cell circuit.Cell
	// Const is only meaningful when the vertex denotes a FixedToConst
	// witness; HasConst distinguishes it from an ordinary cell vertex at
	// the same (column, row).
	Const    felt.Felt
	HasConst bool
}

// CellVertex constructs a plain (column, row) vertex.
func CellVertex(cell circuit.Cell) Vertex {
	return Vertex{Cell: cell}
}

// ConstVertex constructs a fixed-to-constant witness vertex.
func ConstVertex(cell circuit.Cell, value felt.Felt) Vertex {
	return Vertex{Cell: cell, Const: value, HasConst: true}
}

// EdgeKind distinguishes a copy constraint from a fixed-to-constant
// derivation.
type EdgeKind uint8

const (
	// AnyToAny is an edge introduced by a copy-constraint between two
	// cells of any kind.
	AnyToAny EdgeKind = iota
	// FixedToConst is an edge joining a fixed cell to the constant value
	// assigned to it.
	FixedToConst
)

// Edge is an undirected edge of the equality graph.
type Edge struct {
	Kind EdgeKind
	From Vertex
	To   Vertex
}

// Graph is an undirected multigraph of equality constraints. It is
// append-only during synthesis and read-only afterwards.
type Graph struct {
	edges    []Edge
	adjacent map[circuit.Cell][]int
}

// New constructs an empty equality graph.
func New() *Graph {
	return &Graph{adjacent: make(map[circuit.Cell][]int)}
}

// AddCopy records a copy-constraint edge between two cells, exactly as
// reported by the `copy` driver callback: an AnyToAny edge at the rows
// given, with no relativisation applied.
func (g *Graph) AddCopy(from, to circuit.Cell) {
	g.addEdge(Edge{Kind: AnyToAny, From: CellVertex(from), To: CellVertex(to)})
}

// AddFixedToConst records that a fixed cell is known to equal a constant.
func (g *Graph) AddFixedToConst(cell circuit.Cell, value felt.Felt) {
	g.addEdge(Edge{Kind: FixedToConst, From: CellVertex(cell), To: ConstVertex(cell, value)})
}

func (g *Graph) addEdge(e Edge) {
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.adjacent[e.From.Cell] = append(g.adjacent[e.From.Cell], idx)

	if e.To.Cell != e.From.Cell {
		g.adjacent[e.To.Cell] = append(g.adjacent[e.To.Cell], idx)
	}
}

// Edges returns all edges, in the order they were added. Equality lowering
// relies on this order being stable across runs.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// FixedVertices returns every distinct fixed cell referenced anywhere in the
// graph that is not itself already a FixedToConst witness vertex. The
// synthesis observer uses this after synthesis completes to attach each
// fixed cell to its assigned value.
func (g *Graph) FixedVertices() []circuit.Cell {
	seen := make(map[circuit.Cell]bool)

	var out []circuit.Cell

	for _, e := range g.edges {
		for _, v := range [2]Vertex{e.From, e.To} {
			if v.HasConst || v.Cell.Column.Kind != circuit.Fixed {
				continue
			}

			if !seen[v.Cell] {
				seen[v.Cell] = true

				out = append(out, v.Cell)
			}
		}
	}

	return out
}
