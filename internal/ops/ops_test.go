// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsegrad/internal/ops"
)

// evalAt runs the operator over a copy of values and returns the output
// slot values.
func evalAt(op ops.Operator, values []float64) []float64 {
	v := append([]float64(nil), values...)
	op.Evaluate(v)
	out := op.Out()
	return v[out.Begin:out.End]
}

// checkDerivatives verifies every Partial against a central finite
// difference of Evaluate, and every Partial2 against a central finite
// difference of Partial.
func checkDerivatives(t *testing.T, op ops.Operator, values []float64) {
	t.Helper()
	const h = 1e-5
	const tol = 1e-4

	in := op.In()
	out := op.Out()

	for i := 0; i < out.Size(); i++ {
		local := op.LocalDiff(values)
		for j := 0; j < in.Size(); j++ {
			slot := in.At(j)

			up := append([]float64(nil), values...)
			dn := append([]float64(nil), values...)
			up[slot] += h
			dn[slot] -= h
			fd := (evalAt(op, up)[i] - evalAt(op, dn)[i]) / (2 * h)

			got := local.Partial(i, j)
			assert.InDelta(t, fd, got, tol*math.Max(1, math.Abs(fd)),
				"partial d out[%d] / d operand[%d]", i, j)

			// Second partials, as finite differences of the first.
			for k := 0; k < in.Size(); k++ {
				kslot := in.At(k)
				up := append([]float64(nil), values...)
				dn := append([]float64(nil), values...)
				up[kslot] += h
				dn[kslot] -= h
				op.Evaluate(up)
				op.Evaluate(dn)
				fd2 := (op.LocalDiff(up).Partial(i, j) - op.LocalDiff(dn).Partial(i, j)) / (2 * h)

				got2 := local.Partial2(i, j, k)
				assert.InDelta(t, fd2, got2, tol*math.Max(1, math.Abs(fd2)),
					"partial2 d² out[%d] / d operand[%d] d operand[%d]", i, j, k)
			}
		}
	}
}

func TestOperators_Derivatives(t *testing.T) {
	// Input slots 0..4 hold generic positive values; output ranges start
	// at slot 5. Positive operands keep log, sqrt and pow in-domain.
	values := func() []float64 {
		return []float64{1.3, 0.7, 2.1, 0.4, 1.9, 0, 0, 0, 0, 0}
	}
	vec := ops.Range{Begin: 0, End: 2}
	vec2 := ops.Range{Begin: 2, End: 4}
	out1 := ops.Scalar(5)
	out2 := ops.Range{Begin: 5, End: 7}

	cases := []struct {
		name string
		op   ops.Operator
	}{
		{"Identity", ops.NewIdentity(vec, out2)},
		{"Broadcast", ops.NewBroadcast(1, out2)},

		{"AddScalars", ops.NewAddScalars(0, 1, out1)},
		{"AddConst", ops.NewAddConst(vec, 2.5, out2)},
		{"AddConstVector", ops.NewAddConstVector(vec, []float64{1, -2}, out2)},
		{"AddVectors", ops.NewAddVectors(vec, vec2, out2)},
		{"AddVectorScalar", ops.NewAddVectorScalar(vec, 4, out2)},
		{"Double", ops.NewDouble(vec, out2)},

		{"SubScalars", ops.NewSubScalars(0, 1, out1)},
		{"SubFromConst", ops.NewSubFromConst(3, vec, out2)},
		{"Neg", ops.NewNeg(vec, out2)},
		{"SubVectors", ops.NewSubVectors(vec, vec2, out2)},
		{"SubVectorScalar", ops.NewSubVectorScalar(vec, 4, out2)},
		{"SubScalarVector", ops.NewSubScalarVector(4, vec, out2)},

		{"MulScalars", ops.NewMulScalars(0, 1, out1)},
		{"MulConst", ops.NewMulConst(vec, -1.5, out2)},
		{"MulConstVector", ops.NewMulConstVector(vec, []float64{2, 3}, out2)},
		{"MulVectors", ops.NewMulVectors(vec, vec2, out2)},
		{"MulVectorScalar", ops.NewMulVectorScalar(vec, 4, out2)},
		{"Square", ops.NewSquare(vec, out2)},

		{"DivScalars", ops.NewDivScalars(0, 1, out1)},
		{"DivFromConst", ops.NewDivFromConst(2, vec, out2)},
		{"DivVectors", ops.NewDivVectors(vec, vec2, out2)},
		{"DivVectorScalar", ops.NewDivVectorScalar(vec, 4, out2)},

		{"PowScalars", ops.NewPowScalars(0, 1, out1)},
		{"PowConst", ops.NewPowConst(vec, 1.7, out2)},
		{"PowBase", ops.NewPowBase(2.2, vec, out2)},
		{"SelfPow", ops.NewSelfPow(vec, out2)},

		{"Log", ops.NewLog(vec, out2)},
		{"Log1p", ops.NewLog1p(vec, out2)},
		{"Exp", ops.NewExp(vec, out2)},
		{"Sqrt", ops.NewSqrt(vec, out2)},
		{"Sin", ops.NewSin(vec, out2)},
		{"Cos", ops.NewCos(vec, out2)},
		{"Lgamma", ops.NewLgamma(vec, out2)},
		{"Logistic", ops.NewLogistic(vec, out2)},

		{"Sum", ops.NewSum(ops.Range{Begin: 0, End: 4}, out1)},
		{"SumSquares", ops.NewSumSquares(ops.Range{Begin: 0, End: 4}, out1)},
		{"Dot", ops.NewDot(vec, vec2, out1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkDerivatives(t, tc.op, values())
		})
	}
}

func TestOperators_EvaluateValues(t *testing.T) {
	v := []float64{1.5, 4.0, 0, 0}

	ops.NewPowScalars(0, 1, ops.Scalar(2)).Evaluate(v)
	assert.InDelta(t, math.Pow(1.5, 4), v[2], 1e-12)

	ops.NewDot(ops.Scalar(0), ops.Scalar(1), ops.Scalar(3)).Evaluate(v)
	assert.InDelta(t, 6.0, v[3], 1e-12)
}

func TestOperators_AliasPanics(t *testing.T) {
	out := ops.Scalar(5)
	assert.Panics(t, func() { ops.NewAddScalars(1, 1, out) })
	assert.Panics(t, func() { ops.NewMulScalars(2, 2, out) })
	assert.Panics(t, func() { ops.NewPowScalars(0, 0, out) })
	assert.Panics(t, func() { ops.NewDivScalars(3, 3, out) })
	assert.Panics(t, func() { ops.NewSubScalars(1, 1, out) })

	a := ops.Range{Begin: 0, End: 3}
	b := ops.Range{Begin: 2, End: 5}
	out3 := ops.Range{Begin: 5, End: 8}
	assert.Panics(t, func() { ops.NewAddVectors(a, b, out3) })
	assert.Panics(t, func() { ops.NewMulVectors(a, b, out3) })
	assert.Panics(t, func() { ops.NewDot(a, b, ops.Scalar(5)) })
	assert.Panics(t, func() { ops.NewAddVectorScalar(a, 1, out3) })
}

func TestOperators_SizePanics(t *testing.T) {
	a := ops.Range{Begin: 0, End: 3}
	b := ops.Range{Begin: 3, End: 5}
	assert.Panics(t, func() { ops.NewAddVectors(a, b, ops.Range{Begin: 5, End: 8}) })
	assert.Panics(t, func() { ops.NewAddConstVector(a, []float64{1, 2}, ops.Range{Begin: 5, End: 8}) })
	assert.Panics(t, func() { ops.NewSum(a, ops.Range{Begin: 3, End: 5}) })
}

func TestRange_Basics(t *testing.T) {
	r := ops.Range{Begin: 2, End: 5}
	require.Equal(t, 3, r.Size())
	assert.Equal(t, 4, r.At(2))
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(5))
	assert.True(t, r.Overlaps(ops.Range{Begin: 4, End: 9}))
	assert.False(t, r.Overlaps(ops.Range{Begin: 5, End: 9}))
}

func TestFlags_StructuralZeros(t *testing.T) {
	// Operators tagging their local Hessian as structurally zero must
	// return zero from every Partial2.
	v := []float64{1.3, 0.7, 2.1, 0.4, 1.9, 0, 0}
	vec := ops.Range{Begin: 0, End: 2}
	out2 := ops.Range{Begin: 5, End: 7}

	tagged := []ops.Operator{
		ops.NewAddVectors(vec, ops.Range{Begin: 2, End: 4}, out2),
		ops.NewIdentity(vec, out2),
		ops.NewSum(ops.Range{Begin: 0, End: 4}, ops.Scalar(5)),
		ops.NewDouble(vec, out2),
	}
	for _, op := range tagged {
		require.Equal(t, ops.HessianZero, op.Flags()&ops.HessianZero, "%T", op)
		local := op.LocalDiff(v)
		in := op.In()
		for i := 0; i < op.Out().Size(); i++ {
			for j := 0; j < in.Size(); j++ {
				for k := 0; k < in.Size(); k++ {
					assert.Zero(t, local.Partial2(i, j, k), "%T", op)
				}
			}
		}
	}
}
