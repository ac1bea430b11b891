// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense containers that
// feed values into and out of recorded tapes.
//
//   - Tensor: flat row-major N-dimensional array of float64
//   - Map: id-keyed registry correlating caller-owned tensors with tape
//     slots
package tensor

import (
	"github.com/born-ml/sparsegrad/internal/tensor"
)

// Tensor is a dense N-dimensional array stored flat in row-major order.
type Tensor = tensor.Tensor

// Map is an id-keyed registry of caller-owned tensors.
type Map = tensor.Map

// Scalar returns a 0-dimensional tensor.
func Scalar(x float64) *Tensor {
	return tensor.Scalar(x)
}

// Vector returns a 1-dimensional tensor over a copy of vals.
func Vector(vals []float64) *Tensor {
	return tensor.Vector(vals)
}

// Matrix returns a rows x cols tensor over a copy of the row-major vals.
func Matrix(rows, cols int, vals []float64) *Tensor {
	return tensor.Matrix(rows, cols, vals)
}

// New returns a zero-filled tensor with the given dimensions.
func New(dims ...int) *Tensor {
	return tensor.New(dims...)
}

// NewMap returns an empty tensor registry.
func NewMap() *Map {
	return tensor.NewMap()
}
