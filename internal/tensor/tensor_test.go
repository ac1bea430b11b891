// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsegrad/internal/tensor"
)

func TestScalar(t *testing.T) {
	s := tensor.Scalar(2.5)
	assert.True(t, s.IsScalar())
	assert.Equal(t, 1, s.Size())
	assert.Equal(t, 2.5, s.Scalar())
	assert.Empty(t, s.Dims())
}

func TestVector_CopiesInput(t *testing.T) {
	src := []float64{1, 2, 3}
	v := tensor.Vector(src)
	src[0] = 99

	assert.Equal(t, 1.0, v.At(0))
	assert.Equal(t, []int{3}, v.Dims())
	assert.False(t, v.IsScalar())
}

func TestMatrix_RowMajorIndexing(t *testing.T) {
	m := tensor.Matrix(2, 3, []float64{1, 2, 3, 4, 5, 6})

	assert.Equal(t, 6.0, m.At(1, 2))
	assert.Equal(t, 3.0, m.At(0, 2))
	assert.Equal(t, 5, m.VecIndex(1, 2))

	m.Set(42, 1, 0)
	assert.Equal(t, 42.0, m.At(1, 0))
}

func TestMatrix_SizeMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { tensor.Matrix(2, 2, []float64{1, 2, 3}) })
}

func TestNew_ZeroFilled(t *testing.T) {
	x := tensor.New(2, 2, 2)
	require.Equal(t, 8, x.Size())
	assert.Equal(t, 0.0, x.At(1, 1, 1))

	assert.Panics(t, func() { tensor.New(2, 0) })
}

func TestTensor_IndexPanics(t *testing.T) {
	m := tensor.Matrix(2, 2, []float64{1, 2, 3, 4})
	assert.Panics(t, func() { m.At(2, 0) })
	assert.Panics(t, func() { m.At(0) })
	assert.Panics(t, func() { m.At(0, -1) })

	v := tensor.Vector([]float64{1})
	assert.Panics(t, func() { v.Scalar() })
}

func TestMap_RegisterAndLookup(t *testing.T) {
	m := tensor.NewMap()
	a := tensor.Scalar(1)
	b := tensor.Vector([]float64{1, 2})

	ida := m.Register(a)
	idb := m.Register(b)
	require.NotEqual(t, ida, idb)

	assert.Same(t, a, m.Get(ida))
	assert.Same(t, b, m.Get(idb))
	assert.True(t, m.Has(ida))
	assert.False(t, m.Has(99))
	assert.Panics(t, func() { m.Get(99) })
}
