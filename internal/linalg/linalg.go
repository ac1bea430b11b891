// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package linalg adapts the sparse Hessian to the dense gonum/mat solvers
// used by the Newton maximizer and the likelihood methods.
package linalg

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/sparsegrad/internal/sparse"
)

// ErrBadHessian reports a Hessian that is not negative definite, so the
// curvature-based quantity requested does not exist.
var ErrBadHessian = errors.New("linalg: hessian is not negative definite")

// NewtonStep solves ((1-λ)·H + λ·I)·d = -g for the damped Newton
// direction d. Fixed slots are carved out of the system: their rows and
// columns are replaced by a -1 diagonal and their right-hand side by 0,
// so the returned direction leaves them untouched at any λ. A singular
// blended matrix surfaces as the factorization error, the caller's cue to
// raise λ.
func NewtonStep(h *sparse.Matrix, g []float64, lambda float64, fixed []bool) ([]float64, error) {
	n := len(g)
	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		if fixed[i] {
			a.Set(i, i, -1)
			continue
		}
		a.Set(i, i, lambda)
		b.SetVec(i, -g[i])
	}
	for _, t := range h.Triplets() {
		if t.Row >= n || t.Col >= n || fixed[t.Row] || fixed[t.Col] {
			continue
		}
		a.Set(t.Row, t.Col, a.At(t.Row, t.Col)+(1-lambda)*t.Value)
	}

	var lu mat.LU
	lu.Factorize(a)
	var d mat.VecDense
	if err := lu.SolveVecTo(&d, false, b); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	copy(out, d.RawVector().Data)
	return out, nil
}

// StandardErrors returns the asymptotic standard deviations
// sqrt(diag((-H)⁻¹)) over the free slots, via the Cholesky factor of -H
// restricted to them. Fixed slots carry no uncertainty and report 0.
// A -H that is not positive definite yields ErrBadHessian.
func StandardErrors(h *sparse.Matrix, n int, fixed []bool) ([]float64, error) {
	free := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !fixed[i] {
			free = append(free, i)
		}
	}
	m := len(free)
	out := make([]float64, n)
	if m == 0 {
		return out, nil
	}

	// Dense -H over the free block. back[i] maps a global slot to its
	// position in the block.
	back := make(map[int]int, m)
	for k, i := range free {
		back[i] = k
	}
	sym := mat.NewSymDense(m, nil)
	for _, t := range h.Triplets() {
		if t.Row > t.Col {
			continue
		}
		ri, ok1 := back[t.Row]
		ci, ok2 := back[t.Col]
		if !ok1 || !ok2 {
			continue
		}
		sym.SetSym(ri, ci, -t.Value)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, ErrBadHessian
	}
	var l mat.TriDense
	chol.LTo(&l)

	// With -H = L·Lᵀ and X = L⁻¹, the covariance is XᵀX, so the j-th
	// variance is the squared norm of column j of X.
	var x mat.Dense
	if err := x.Solve(&l, identity(m)); err != nil {
		return nil, ErrBadHessian
	}
	for j := 0; j < m; j++ {
		s := 0.0
		for i := 0; i < m; i++ {
			v := x.At(i, j)
			s += v * v
		}
		out[free[j]] = math.Sqrt(s)
	}
	return out, nil
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}
