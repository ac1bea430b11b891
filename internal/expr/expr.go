// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package expr provides the recording front end over a tape: a Graph on
// which free variables are declared and an Expr handle whose method calls
// append differentiable operators to the graph's tape.
//
// Recording is single-assignment. Every operation allocates fresh output
// slots, so an Expr is an immutable reference to a contiguous slot range
// and may be reused in any number of later expressions. Aliased operand
// combinations that the operator catalog rejects are routed to the
// dedicated self variants here (x+x becomes Double, x*x becomes Square,
// x^x becomes SelfPow, x·x becomes SumSquares), so callers never see the
// aliasing panics for well-formed expressions.
package expr

import (
	"fmt"

	"github.com/born-ml/sparsegrad/internal/ops"
	"github.com/born-ml/sparsegrad/internal/tape"
	"github.com/born-ml/sparsegrad/internal/tensor"
)

// Graph owns the tape being recorded.
type Graph struct {
	tape *tape.Tape
}

// NewGraph returns a graph over a fresh tape.
func NewGraph() *Graph {
	return &Graph{tape: tape.New()}
}

// Tape returns the underlying tape, for trace construction and replay.
func (g *Graph) Tape() *tape.Tape { return g.tape }

// Var declares a free scalar variable with initial value x.
func (g *Graph) Var(x float64) Expr {
	begin := g.tape.Input(x)
	return Expr{g: g, r: ops.Scalar(begin)}
}

// VarVector declares a free vector variable with the given initial values.
func (g *Graph) VarVector(xs []float64) Expr {
	begin := g.tape.Input(xs...)
	return Expr{g: g, r: ops.Range{Begin: begin, End: begin + len(xs)}}
}

// VarTensor declares the tensor's values as free inputs, registers the
// tensor in m and correlates its id with the input slot, so replayed
// values can be moved both ways with the tape's tensor synchronization.
func (g *Graph) VarTensor(m *tensor.Map, t *tensor.Tensor) Expr {
	id := m.Register(t)
	begin := g.tape.Input(t.Values()...)
	g.tape.MapExternal(begin, id)
	return Expr{g: g, r: ops.Range{Begin: begin, End: begin + t.Size()}}
}

// Expr is an immutable reference to a contiguous slot range of a graph.
// The zero value is invalid.
type Expr struct {
	g *Graph
	r ops.Range
}

// Graph returns the owning graph.
func (e Expr) Graph() *Graph { return e.g }

// Range returns the slot range the expression refers to.
func (e Expr) Range() ops.Range { return e.r }

// Size returns the number of slots, 1 for a scalar expression.
func (e Expr) Size() int { return e.r.Size() }

// IsScalar reports whether the expression is a single slot.
func (e Expr) IsScalar() bool { return e.r.Size() == 1 }

// Slot returns the slot of a scalar expression.
func (e Expr) Slot() int {
	if !e.IsScalar() {
		panic(fmt.Sprintf("expr: Slot on a %d-element expression", e.r.Size()))
	}
	return e.r.Begin
}

func (e Expr) push(op ops.Operator) Expr {
	e.g.tape.Record(op)
	return Expr{g: e.g, r: op.Out()}
}

func (e Expr) sameGraph(o Expr) {
	if e.g != o.g {
		panic("expr: operands recorded on different graphs")
	}
}

// At extracts element i of a vector expression as a scalar expression,
// recording a copy so the element gets its own slot.
func (e Expr) At(i int) Expr {
	if i < 0 || i >= e.r.Size() {
		panic(fmt.Sprintf("expr: index %d out of range for %d elements", i, e.r.Size()))
	}
	out := e.g.tape.Alloc(1)
	return e.push(ops.NewIdentity(ops.Scalar(e.r.At(i)), out))
}

// At2 extracts the (i, j) element of an expression recorded from a
// rows x cols row-major layout.
func (e Expr) At2(i, j, cols int) Expr {
	return e.At(i*cols + j)
}

// Add records e + o. Scalar operands broadcast over vector operands.
func (e Expr) Add(o Expr) Expr {
	e.sameGraph(o)
	switch {
	case e.r == o.r:
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewDouble(e.r, out))
	case e.IsScalar() && o.IsScalar():
		out := e.g.tape.Alloc(1)
		return e.push(ops.NewAddScalars(e.Slot(), o.Slot(), out))
	case o.IsScalar():
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewAddVectorScalar(e.r, o.Slot(), out))
	case e.IsScalar():
		out := e.g.tape.Alloc(o.Size())
		return e.push(ops.NewAddVectorScalar(o.r, e.Slot(), out))
	default:
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewAddVectors(e.r, o.r, out))
	}
}

// Sub records e - o. An expression minus itself records the zero function
// so its derivatives vanish as well.
func (e Expr) Sub(o Expr) Expr {
	e.sameGraph(o)
	switch {
	case e.r == o.r:
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewMulConst(e.r, 0, out))
	case e.IsScalar() && o.IsScalar():
		out := e.g.tape.Alloc(1)
		return e.push(ops.NewSubScalars(e.Slot(), o.Slot(), out))
	case o.IsScalar():
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewSubVectorScalar(e.r, o.Slot(), out))
	case e.IsScalar():
		out := e.g.tape.Alloc(o.Size())
		return e.push(ops.NewSubScalarVector(e.Slot(), o.r, out))
	default:
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewSubVectors(e.r, o.r, out))
	}
}

// Mul records e * o, element-wise for vectors.
func (e Expr) Mul(o Expr) Expr {
	e.sameGraph(o)
	switch {
	case e.r == o.r:
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewSquare(e.r, out))
	case e.IsScalar() && o.IsScalar():
		out := e.g.tape.Alloc(1)
		return e.push(ops.NewMulScalars(e.Slot(), o.Slot(), out))
	case o.IsScalar():
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewMulVectorScalar(e.r, o.Slot(), out))
	case e.IsScalar():
		out := e.g.tape.Alloc(o.Size())
		return e.push(ops.NewMulVectorScalar(o.r, e.Slot(), out))
	default:
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewMulVectors(e.r, o.r, out))
	}
}

// Div records e / o, element-wise for vectors. An expression divided by
// itself records the constant one with vanishing derivatives.
func (e Expr) Div(o Expr) Expr {
	e.sameGraph(o)
	switch {
	case e.r == o.r:
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewPowConst(e.r, 0, out))
	case e.IsScalar() && o.IsScalar():
		out := e.g.tape.Alloc(1)
		return e.push(ops.NewDivScalars(e.Slot(), o.Slot(), out))
	case o.IsScalar():
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewDivVectorScalar(e.r, o.Slot(), out))
	case e.IsScalar():
		// s / v as s * (1/v); there is no scalar-over-vector operator.
		recip := o.DivFrom(1)
		out := e.g.tape.Alloc(recip.Size())
		return e.push(ops.NewMulVectorScalar(recip.r, e.Slot(), out))
	default:
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewDivVectors(e.r, o.r, out))
	}
}

// Pow records e ^ o for scalar operands, or the element-wise self power
// when both sides are the same expression.
func (e Expr) Pow(o Expr) Expr {
	e.sameGraph(o)
	switch {
	case e.r == o.r:
		out := e.g.tape.Alloc(e.Size())
		return e.push(ops.NewSelfPow(e.r, out))
	case e.IsScalar() && o.IsScalar():
		out := e.g.tape.Alloc(1)
		return e.push(ops.NewPowScalars(e.Slot(), o.Slot(), out))
	default:
		panic("expr: Pow needs scalar operands or identical ranges")
	}
}

// AddScalar records e + c element-wise.
func (e Expr) AddScalar(c float64) Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewAddConst(e.r, c, out))
}

// AddVector records eᵢ + cᵢ for a fixed vector c.
func (e Expr) AddVector(c []float64) Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewAddConstVector(e.r, c, out))
}

// SubScalar records e - c element-wise.
func (e Expr) SubScalar(c float64) Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewAddConst(e.r, -c, out))
}

// SubVector records eᵢ - cᵢ for a fixed vector c.
func (e Expr) SubVector(c []float64) Expr {
	neg := make([]float64, len(c))
	for i, x := range c {
		neg[i] = -x
	}
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewAddConstVector(e.r, neg, out))
}

// SubFrom records c - e element-wise.
func (e Expr) SubFrom(c float64) Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewSubFromConst(c, e.r, out))
}

// MulScalar records e * c element-wise.
func (e Expr) MulScalar(c float64) Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewMulConst(e.r, c, out))
}

// MulVector records eᵢ * cᵢ for a fixed vector c.
func (e Expr) MulVector(c []float64) Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewMulConstVector(e.r, c, out))
}

// DivScalar records e / c element-wise.
func (e Expr) DivScalar(c float64) Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewMulConst(e.r, 1/c, out))
}

// DivFrom records c / e element-wise.
func (e Expr) DivFrom(c float64) Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewDivFromConst(c, e.r, out))
}

// PowScalar records e ^ c element-wise for a fixed exponent c.
func (e Expr) PowScalar(c float64) Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewPowConst(e.r, c, out))
}

// PowFrom records c ^ e element-wise for a fixed base c.
func (e Expr) PowFrom(c float64) Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewPowBase(c, e.r, out))
}

// Neg records -e element-wise.
func (e Expr) Neg() Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewNeg(e.r, out))
}

// Log records the element-wise natural logarithm.
func (e Expr) Log() Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewLog(e.r, out))
}

// Log1p records log(1 + e) element-wise.
func (e Expr) Log1p() Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewLog1p(e.r, out))
}

// Exp records the element-wise exponential.
func (e Expr) Exp() Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewExp(e.r, out))
}

// Sqrt records the element-wise square root.
func (e Expr) Sqrt() Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewSqrt(e.r, out))
}

// Sin records the element-wise sine.
func (e Expr) Sin() Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewSin(e.r, out))
}

// Cos records the element-wise cosine.
func (e Expr) Cos() Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewCos(e.r, out))
}

// Lgamma records the element-wise log-gamma function.
func (e Expr) Lgamma() Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewLgamma(e.r, out))
}

// Logistic records the element-wise standard logistic 1/(1+exp(-e)).
func (e Expr) Logistic() Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewLogistic(e.r, out))
}

// Square records e * e element-wise.
func (e Expr) Square() Expr {
	out := e.g.tape.Alloc(e.Size())
	return e.push(ops.NewSquare(e.r, out))
}

// Broadcast records a fan-out of a scalar expression into an n-element
// vector expression.
func (e Expr) Broadcast(n int) Expr {
	if !e.IsScalar() {
		panic(fmt.Sprintf("expr: Broadcast on a %d-element expression", e.r.Size()))
	}
	out := e.g.tape.Alloc(n)
	return e.push(ops.NewBroadcast(e.Slot(), out))
}

// Sum records the element sum of e as a scalar.
func (e Expr) Sum() Expr {
	out := e.g.tape.Alloc(1)
	return e.push(ops.NewSum(e.r, out))
}

// SumSquares records the sum of squared elements of e as a scalar.
func (e Expr) SumSquares() Expr {
	out := e.g.tape.Alloc(1)
	return e.push(ops.NewSumSquares(e.r, out))
}

// Dot records the inner product of e and o as a scalar. The inner product
// of an expression with itself routes to SumSquares.
func (e Expr) Dot(o Expr) Expr {
	e.sameGraph(o)
	if e.r == o.r {
		return e.SumSquares()
	}
	out := e.g.tape.Alloc(1)
	return e.push(ops.NewDot(e.r, o.r, out))
}
