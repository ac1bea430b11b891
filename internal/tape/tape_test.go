// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tape_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsegrad/internal/ops"
	"github.com/born-ml/sparsegrad/internal/tape"
	"github.com/born-ml/sparsegrad/internal/tensor"
)

func TestTape_InputAfterRecordPanics(t *testing.T) {
	tp := tape.New()
	tp.Input(1.0)
	tp.Record(ops.NewIdentity(ops.Scalar(0), tp.Alloc(1)))

	assert.Panics(t, func() { tp.Input(2.0) })
	assert.Panics(t, func() { tp.Input() })
}

func TestTape_RecordMisplacedOutputPanics(t *testing.T) {
	tp := tape.New()
	tp.Input(1.0, 2.0)

	assert.Panics(t, func() {
		tp.Record(ops.NewIdentity(ops.Scalar(0), ops.Scalar(5)))
	})
}

func TestTrace_ForwardValues(t *testing.T) {
	tp := tape.New()
	x := tp.Input(1.5)
	y := tp.Input(2.0)
	prod := tp.Record(ops.NewMulScalars(x, y, tp.Alloc(1)))
	tp.Record(ops.NewAddConst(ops.Scalar(prod), 1, tp.Alloc(1)))

	tr := tape.NewTrace(tp).PlayForward()
	assert.InDelta(t, 4.0, tr.Result(), 1e-12)
	assert.Equal(t, 4, tp.TraceSize())
	assert.Equal(t, 2, tp.InputSize())
}

// TestTrace_QuadraticComposition checks gradient and Hessian of
// f(x, y) = (x·y + sin x)² against the closed form.
func TestTrace_QuadraticComposition(t *testing.T) {
	x0, x1 := 1.2, 0.8

	tp := tape.New()
	a := tp.Input(x0)
	b := tp.Input(x1)
	prod := tp.Record(ops.NewMulScalars(a, b, tp.Alloc(1)))
	sin := tp.Record(ops.NewSin(ops.Scalar(a), tp.Alloc(1)))
	sum := tp.Record(ops.NewAddScalars(prod, sin, tp.Alloc(1)))
	tp.Record(ops.NewSquare(ops.Scalar(sum), tp.Alloc(1)))

	tr := tape.NewTrace(tp).Play()

	u := x0*x1 + math.Sin(x0)
	du0 := x1 + math.Cos(x0)

	assert.InDelta(t, u*u, tr.Result(), 1e-12)
	assert.InDelta(t, 2*u*du0, tr.Partial(a), 1e-12)
	assert.InDelta(t, 2*u*x0, tr.Partial(b), 1e-12)

	assert.InDelta(t, 2*du0*du0-2*u*math.Sin(x0), tr.Partial2(a, a), 1e-12)
	assert.InDelta(t, 2*du0*x0+2*u, tr.Partial2(a, b), 1e-12)
	assert.InDelta(t, 2*x0*x0, tr.Partial2(b, b), 1e-12)
}

// buildMixedTape records a composition crossing every operand-set shape:
// vector/vector, vector/scalar, scalar/vector, plain ranges and scalar
// pairs, ending in f = sumsq(a + a·s) · dot(a·s, exp(s - (a + a·s))) + s.
func buildMixedTape(x []float64) *tape.Tape {
	tp := tape.New()
	a := tp.Input(x[0], x[1], x[2])
	s := tp.Input(x[3])
	av := ops.Range{Begin: a, End: a + 3}

	v1 := tp.Record(ops.NewMulVectorScalar(av, s, tp.Alloc(3)))
	v1r := ops.Range{Begin: v1, End: v1 + 3}
	v2 := tp.Record(ops.NewAddVectors(av, v1r, tp.Alloc(3)))
	v2r := ops.Range{Begin: v2, End: v2 + 3}
	v3 := tp.Record(ops.NewSubScalarVector(s, v2r, tp.Alloc(3)))
	v3r := ops.Range{Begin: v3, End: v3 + 3}
	v4 := tp.Record(ops.NewExp(v3r, tp.Alloc(3)))
	v4r := ops.Range{Begin: v4, End: v4 + 3}

	y1 := tp.Record(ops.NewSumSquares(v2r, tp.Alloc(1)))
	y2 := tp.Record(ops.NewDot(v1r, v4r, tp.Alloc(1)))
	y3 := tp.Record(ops.NewMulScalars(y1, y2, tp.Alloc(1)))
	tp.Record(ops.NewAddScalars(y3, s, tp.Alloc(1)))
	return tp
}

func evalTape(tp *tape.Tape, x []float64) float64 {
	tr := tape.NewTrace(tp)
	copy(tr.Values()[:len(x)], x)
	return tr.PlayForward().Result()
}

// TestTrace_MixedOperandsAgainstFiniteDifferences verifies the full
// reverse sweep on the mixed composition against finite differences.
func TestTrace_MixedOperandsAgainstFiniteDifferences(t *testing.T) {
	x := []float64{0.5, -0.3, 0.8, 0.7}
	n := len(x)
	tp := buildMixedTape(x)

	tr := tape.NewTrace(tp).Play()

	const h = 1e-4
	for i := 0; i < n; i++ {
		up := append([]float64(nil), x...)
		dn := append([]float64(nil), x...)
		up[i] += h
		dn[i] -= h
		fd := (evalTape(tp, up) - evalTape(tp, dn)) / (2 * h)
		assert.InDelta(t, fd, tr.Partial(i), 1e-5*math.Max(1, math.Abs(fd)),
			"gradient component %d", i)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pp := append([]float64(nil), x...)
			pm := append([]float64(nil), x...)
			mp := append([]float64(nil), x...)
			mm := append([]float64(nil), x...)
			pp[i] += h
			pp[j] += h
			pm[i] += h
			pm[j] -= h
			mp[i] -= h
			mp[j] += h
			mm[i] -= h
			mm[j] -= h
			fd := (evalTape(tp, pp) - evalTape(tp, pm) - evalTape(tp, mp) + evalTape(tp, mm)) / (4 * h * h)
			assert.InDelta(t, fd, tr.Partial2(i, j), 1e-3*math.Max(1, math.Abs(fd)),
				"hessian entry (%d,%d)", i, j)
		}
	}
}

func TestTrace_HessianConfinedToInputs(t *testing.T) {
	x := []float64{0.5, -0.3, 0.8, 0.7}
	tp := buildMixedTape(x)
	tr := tape.NewTrace(tp).Play()

	n := tp.InputSize()
	for _, trip := range tr.Hessian().Triplets() {
		assert.Less(t, trip.Row, n)
		assert.Less(t, trip.Col, n)
	}
}

func TestTrace_HessianSymmetry(t *testing.T) {
	x := []float64{0.5, -0.3, 0.8, 0.7}
	tp := buildMixedTape(x)
	tr := tape.NewTrace(tp).Play()

	h := tr.Hessian()
	for i := 0; i < tp.InputSize(); i++ {
		for j := 0; j < tp.InputSize(); j++ {
			assert.Equal(t, h.Read(i, j), h.Read(j, i))
		}
	}
}

func TestTrace_ReplayAfterValueChange(t *testing.T) {
	tp := tape.New()
	x := tp.Input(2.0)
	tp.Record(ops.NewSquare(ops.Scalar(x), tp.Alloc(1)))

	tr := tape.NewTrace(tp).Play()
	assert.InDelta(t, 4.0, tr.Result(), 1e-12)
	assert.InDelta(t, 4.0, tr.Partial(x), 1e-12)

	tr.Values()[x] = 3.0
	tr.Play()
	assert.InDelta(t, 9.0, tr.Result(), 1e-12)
	assert.InDelta(t, 6.0, tr.Partial(x), 1e-12)
	assert.InDelta(t, 2.0, tr.Partial2(x, x), 1e-12)
}

func TestTape_TensorSynchronization(t *testing.T) {
	m := tensor.NewMap()
	data := tensor.Vector([]float64{1, 2, 3})
	id := m.Register(data)

	tp := tape.New()
	a := tp.Input(0, 0, 0)
	tp.MapExternal(a, id)
	tp.Record(ops.NewSum(ops.Range{Begin: a, End: a + 3}, tp.Alloc(1)))

	require.Equal(t, a, tp.Slot(id))
	require.Equal(t, id, tp.ExternalID(a))
	assert.Equal(t, -1, tp.Slot(99))
	assert.Equal(t, -1, tp.ExternalID(99))

	tr := tape.NewTrace(tp)
	tp.WriteTensorsToTrace(tr, m)
	assert.InDelta(t, 6.0, tr.PlayForward().Result(), 1e-12)

	tr.Values()[a] = 10
	tp.ReadTensorsFromTrace(tr, m)
	assert.Equal(t, 10.0, data.Values()[0])
}
