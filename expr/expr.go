// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package expr provides the public recording API: declare free variables
// on a Graph, combine the returned Expr handles with ordinary method
// calls, and every operation is appended to the underlying tape for later
// replay and differentiation.
//
// Example:
//
//	g := expr.NewGraph()
//	x := g.Var(1.0)
//	y := g.Var(2.0)
//	x.Square().Add(y.Square()).Neg()
//
//	tr := tape.NewTrace(g.Tape())
//	tr.Play() // gradient in tr.Adjoints(), Hessian in tr.Hessian()
package expr

import (
	"github.com/born-ml/sparsegrad/internal/expr"
)

// Graph owns the tape being recorded.
type Graph = expr.Graph

// Expr is an immutable reference to a contiguous slot range of a graph.
type Expr = expr.Expr

// NewGraph returns a graph over a fresh tape.
func NewGraph() *Graph {
	return expr.NewGraph()
}
