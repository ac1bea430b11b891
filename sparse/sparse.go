// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sparse provides the public API for the dynamic sparse symmetric
// matrix used to accumulate Hessians.
//
// Entries are stored as a map of rows with every write mirrored across the
// diagonal, so the matrix stays exactly symmetric by construction. Exact
// zeros are never stored and emptied rows vanish, keeping the memory
// footprint proportional to the live sparsity pattern.
package sparse

import (
	"github.com/born-ml/sparsegrad/internal/sparse"
)

// Matrix is a square symmetric sparse matrix of float64 values.
type Matrix = sparse.Matrix

// Row maps a column index to the stored value.
type Row = sparse.Row

// Triplet is one stored entry in (row, col, value) form.
type Triplet = sparse.Triplet

// New returns an empty width x width symmetric matrix.
func New(width int) *Matrix {
	return sparse.New(width)
}
