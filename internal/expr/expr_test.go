// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package expr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsegrad/internal/expr"
	"github.com/born-ml/sparsegrad/internal/ops"
	"github.com/born-ml/sparsegrad/internal/tape"
)

func lastOp(g *expr.Graph) ops.Operator {
	log := g.Tape().Ops()
	return log[len(log)-1]
}

func TestExpr_SelfVariantRouting(t *testing.T) {
	g := expr.NewGraph()
	x := g.Var(1.5)
	v := g.VarVector([]float64{1, 2, 3})

	x.Add(x)
	assert.IsType(t, &ops.Double{}, lastOp(g))

	x.Mul(x)
	assert.IsType(t, &ops.Square{}, lastOp(g))

	x.Pow(x)
	assert.IsType(t, &ops.SelfPow{}, lastOp(g))

	v.Dot(v)
	assert.IsType(t, &ops.SumSquares{}, lastOp(g))

	// x - x and x / x degenerate to constants with vanishing derivatives.
	zero := x.Sub(x)
	one := x.Div(x)

	tr := tape.NewTrace(g.Tape()).Play()
	assert.InDelta(t, 0.0, tr.Values()[zero.Slot()], 1e-12)
	assert.InDelta(t, 1.0, tr.Values()[one.Slot()], 1e-12)
}

func TestExpr_ScalarArithmetic(t *testing.T) {
	g := expr.NewGraph()
	x := g.Var(2.0)
	y := g.Var(3.0)

	// f = (x + y) * (x - y) / y = (x² - y²) / y
	x.Add(y).Mul(x.Sub(y)).Div(y)

	tr := tape.NewTrace(g.Tape()).Play()
	assert.InDelta(t, (4.0-9.0)/3.0, tr.Result(), 1e-12)
	assert.InDelta(t, 2*2.0/3.0, tr.Partial(0), 1e-12)          // 2x/y
	assert.InDelta(t, -1-4.0/9.0, tr.Partial(1), 1e-12)         // -1 - x²/y²
	assert.InDelta(t, 2.0/3.0, tr.Partial2(0, 0), 1e-12)        // 2/y
	assert.InDelta(t, -2*2.0/9.0, tr.Partial2(0, 1), 1e-12)     // -2x/y²
	assert.InDelta(t, 2*4.0/27.0, tr.Partial2(1, 1), 1e-12)     // 2x²/y³
}

func TestExpr_VectorBroadcasting(t *testing.T) {
	g := expr.NewGraph()
	v := g.VarVector([]float64{1, 2, 3})
	s := g.Var(10.0)

	sum := v.Add(s).Sum() // Σ (vᵢ + s) = 6 + 30
	require.Equal(t, 1, sum.Size())

	tr := tape.NewTrace(g.Tape()).Play()
	assert.InDelta(t, 36.0, tr.Result(), 1e-12)
	assert.InDelta(t, 1.0, tr.Partial(0), 1e-12)
	assert.InDelta(t, 3.0, tr.Partial(3), 1e-12)
}

func TestExpr_ScalarOverVector(t *testing.T) {
	g := expr.NewGraph()
	s := g.Var(6.0)
	v := g.VarVector([]float64{1, 2, 3})

	s.Div(v).Sum() // 6/1 + 6/2 + 6/3

	tr := tape.NewTrace(g.Tape()).Play()
	assert.InDelta(t, 11.0, tr.Result(), 1e-12)
	// d/ds Σ s/vᵢ = Σ 1/vᵢ
	assert.InDelta(t, 1+0.5+1.0/3, tr.Partial(0), 1e-12)
	// d/dv₁ = -s/v₁²
	assert.InDelta(t, -6.0, tr.Partial(1), 1e-12)
}

func TestExpr_Broadcast(t *testing.T) {
	g := expr.NewGraph()
	x := g.Var(2.5)

	b := x.Broadcast(4)
	require.Equal(t, 4, b.Size())
	b.SumSquares() // 4x²

	tr := tape.NewTrace(g.Tape()).Play()
	assert.InDelta(t, 25.0, tr.Result(), 1e-12)
	assert.InDelta(t, 8*2.5, tr.Partial(0), 1e-12)
	assert.InDelta(t, 8.0, tr.Partial2(0, 0), 1e-12)

	g2 := expr.NewGraph()
	v := g2.VarVector([]float64{1, 2})
	assert.Panics(t, func() { v.Broadcast(3) })
}

func TestExpr_At(t *testing.T) {
	g := expr.NewGraph()
	v := g.VarVector([]float64{4, 5, 6})

	v.At(1).Square()

	tr := tape.NewTrace(g.Tape()).Play()
	assert.InDelta(t, 25.0, tr.Result(), 1e-12)
	assert.InDelta(t, 10.0, tr.Partial(1), 1e-12)
	assert.InDelta(t, 0.0, tr.Partial(0), 1e-12)

	assert.Panics(t, func() { v.At(3) })
	assert.Panics(t, func() { v.At(-1) })
}

func TestExpr_ConstantVariants(t *testing.T) {
	g := expr.NewGraph()
	x := g.Var(3.0)

	// ((5 - x)·2 + 1)^2 / 4 at x=3: (4+1)² / 4 = 6.25
	x.SubFrom(5).MulScalar(2).AddScalar(1).PowScalar(2).DivScalar(4)

	tr := tape.NewTrace(g.Tape()).Play()
	assert.InDelta(t, 6.25, tr.Result(), 1e-12)
	// d/dx (2(5-x)+1)²/4 = 2(11-2x)·(-2)/4 = -(11-2x)
	assert.InDelta(t, -5.0, tr.Partial(0), 1e-12)
	assert.InDelta(t, 2.0, tr.Partial2(0, 0), 1e-12)
}

func TestExpr_UnaryChain(t *testing.T) {
	g := expr.NewGraph()
	x := g.Var(0.4)

	x.Exp().Log() // identity on the value, derivatives 1 and 0

	tr := tape.NewTrace(g.Tape()).Play()
	assert.InDelta(t, 0.4, tr.Result(), 1e-12)
	assert.InDelta(t, 1.0, tr.Partial(0), 1e-12)
	assert.InDelta(t, 0.0, tr.Partial2(0, 0), 1e-10)

	g2 := expr.NewGraph()
	y := g2.Var(1.3)
	y.Logistic()
	tr2 := tape.NewTrace(g2.Tape()).Play()
	s := 1 / (1 + math.Exp(-1.3))
	assert.InDelta(t, s, tr2.Result(), 1e-12)
	assert.InDelta(t, s*(1-s), tr2.Partial(0), 1e-12)
}

func TestExpr_CrossGraphPanics(t *testing.T) {
	g1 := expr.NewGraph()
	g2 := expr.NewGraph()
	x := g1.Var(1.0)
	y := g2.Var(2.0)

	assert.Panics(t, func() { x.Add(y) })
	assert.Panics(t, func() { x.Dot(y) })
}

func TestExpr_SlotOnVectorPanics(t *testing.T) {
	g := expr.NewGraph()
	v := g.VarVector([]float64{1, 2})
	assert.Panics(t, func() { v.Slot() })
}
