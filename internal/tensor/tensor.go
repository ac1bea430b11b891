// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the flat N-dimensional container used to feed
// values into and out of a tape, and the external-id map correlating
// caller-owned tensors with tape slots.
package tensor

import "fmt"

// Tensor is a dense N-dimensional array stored flat in row-major order.
// A scalar has no dimensions and a single value.
type Tensor struct {
	dims []int
	vals []float64
}

// Scalar returns a 0-dimensional tensor.
func Scalar(x float64) *Tensor {
	return &Tensor{vals: []float64{x}}
}

// Vector returns a 1-dimensional tensor over a copy of vals.
func Vector(vals []float64) *Tensor {
	v := make([]float64, len(vals))
	copy(v, vals)
	return &Tensor{dims: []int{len(vals)}, vals: v}
}

// Matrix returns a rows x cols tensor over a copy of the row-major vals.
func Matrix(rows, cols int, vals []float64) *Tensor {
	if rows*cols != len(vals) {
		panic(fmt.Sprintf("tensor: matrix %dx%d needs %d values, got %d", rows, cols, rows*cols, len(vals)))
	}
	v := make([]float64, len(vals))
	copy(v, vals)
	return &Tensor{dims: []int{rows, cols}, vals: v}
}

// New returns a zero-filled tensor with the given dimensions.
func New(dims ...int) *Tensor {
	n := 1
	for _, d := range dims {
		if d <= 0 {
			panic(fmt.Sprintf("tensor: invalid dimension %d", d))
		}
		n *= d
	}
	return &Tensor{dims: append([]int(nil), dims...), vals: make([]float64, n)}
}

// Dims returns the dimension sizes; nil for a scalar.
func (t *Tensor) Dims() []int { return t.dims }

// Size returns the number of stored values.
func (t *Tensor) Size() int { return len(t.vals) }

// IsScalar reports whether the tensor holds exactly one value with no
// dimensions.
func (t *Tensor) IsScalar() bool { return len(t.dims) == 0 }

// Values returns the live flat storage.
func (t *Tensor) Values() []float64 { return t.vals }

// VecIndex converts a multi-dimensional index to the flat offset.
func (t *Tensor) VecIndex(idx ...int) int {
	if len(idx) != len(t.dims) {
		panic(fmt.Sprintf("tensor: got %d indices for %d dimensions", len(idx), len(t.dims)))
	}
	flat := 0
	for k, i := range idx {
		if i < 0 || i >= t.dims[k] {
			panic(fmt.Sprintf("tensor: index %d out of range for dimension %d of size %d", i, k, t.dims[k]))
		}
		flat = flat*t.dims[k] + i
	}
	return flat
}

// At returns the value at the given multi-dimensional index.
func (t *Tensor) At(idx ...int) float64 { return t.vals[t.VecIndex(idx...)] }

// Set assigns the value at the given multi-dimensional index.
func (t *Tensor) Set(x float64, idx ...int) { t.vals[t.VecIndex(idx...)] = x }

// Scalar returns the single value of a scalar tensor.
func (t *Tensor) Scalar() float64 {
	if !t.IsScalar() {
		panic("tensor: Scalar called on a non-scalar tensor")
	}
	return t.vals[0]
}
