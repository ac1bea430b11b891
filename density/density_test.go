// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package density_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsegrad/density"
	"github.com/born-ml/sparsegrad/expr"
	"github.com/born-ml/sparsegrad/solver"
	"github.com/born-ml/sparsegrad/tape"
)

func logdnorm(x, mu, sd float64) float64 {
	z := (x - mu) / sd
	return -0.918938533204672741780330 - 0.5*z*z - math.Log(sd)
}

func TestNormal_ValueMatchesDirectSum(t *testing.T) {
	y := []float64{1.2, -0.4, 2.5, 0.9}

	g := expr.NewGraph()
	mu := g.Var(0.7)
	sd := g.Var(1.3)
	density.Normal(y, mu, sd)

	tr := tape.NewTrace(g.Tape()).PlayForward()

	want := 0.0
	for _, v := range y {
		want += logdnorm(v, 0.7, 1.3)
	}
	assert.InDelta(t, want, tr.Result(), 1e-10)
}

func TestNormal_VectorMean(t *testing.T) {
	y := []float64{1.0, 2.0, 3.0}
	means := []float64{0.5, 2.5, 2.0}

	g := expr.NewGraph()
	mu := g.VarVector(means)
	sd := g.Var(0.8)
	density.Normal(y, mu, sd)

	tr := tape.NewTrace(g.Tape()).PlayForward()

	want := 0.0
	for i, v := range y {
		want += logdnorm(v, means[i], 0.8)
	}
	assert.InDelta(t, want, tr.Result(), 1e-10)
}

func TestNormal_MaximumLikelihood(t *testing.T) {
	y := []float64{2.1, 3.4, 1.8, 4.2, 2.9, 3.1, 2.5, 3.8}
	n := float64(len(y))

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= n
	ss := 0.0
	for _, v := range y {
		ss += (v - mean) * (v - mean)
	}
	sdHat := math.Sqrt(ss / n)

	g := expr.NewGraph()
	mu := g.Var(0.0)
	sd := g.Var(1.0)
	density.Normal(y, mu, sd)

	cfg := solver.DefaultConfig()
	cfg.ObjectiveTolerance = 1e-9
	s := solver.NewWithConfig(tape.NewTrace(g.Tape()), cfg)

	res, err := s.Maximize()
	require.NoError(t, err)

	assert.InDelta(t, mean, res.Parameters[0], 1e-3)
	assert.InDelta(t, sdHat, res.Parameters[1], 1e-3)

	// Score vanishes at the maximum.
	assert.InDelta(t, 0.0, s.Trace().Partial(0), 1e-2)
	assert.InDelta(t, 0.0, s.Trace().Partial(1), 1e-2)
}

func TestPoisson_ValueAndMLE(t *testing.T) {
	y := []float64{2, 0, 3, 1, 4, 2, 1}
	n := float64(len(y))

	g := expr.NewGraph()
	lambda := g.Var(1.0)
	density.Poisson(y, lambda)

	tr := tape.NewTrace(g.Tape()).PlayForward()
	want := 0.0
	for _, v := range y {
		lg, _ := math.Lgamma(v + 1)
		want += v*math.Log(1.0) - 1.0 - lg
	}
	assert.InDelta(t, want, tr.Result(), 1e-10)

	cfg := solver.DefaultConfig()
	cfg.ObjectiveTolerance = 1e-9
	s := solver.NewWithConfig(tr, cfg)
	res, err := s.Maximize()
	require.NoError(t, err)

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= n
	assert.InDelta(t, mean, res.Parameters[0], 1e-3)
}

func TestPoisson_VectorRates(t *testing.T) {
	y := []float64{1, 3}
	rates := []float64{0.5, 2.0}

	g := expr.NewGraph()
	lambda := g.VarVector(rates)
	density.Poisson(y, lambda)

	tr := tape.NewTrace(g.Tape()).PlayForward()
	want := 0.0
	for i, v := range y {
		lg, _ := math.Lgamma(v + 1)
		want += v*math.Log(rates[i]) - rates[i] - lg
	}
	assert.InDelta(t, want, tr.Result(), 1e-10)
}

func TestLogistic_ValueAndMLE(t *testing.T) {
	y := []float64{-0.5, 1.2, 0.3, 2.0, -1.1, 0.8}

	g := expr.NewGraph()
	mu := g.Var(0.0)
	density.Logistic(y, mu)

	tr := tape.NewTrace(g.Tape()).PlayForward()
	want := 0.0
	for _, v := range y {
		mz := 0.0 - v
		want += mz - 2*math.Log1p(math.Exp(mz))
	}
	assert.InDelta(t, want, tr.Result(), 1e-10)

	s := solver.New(tr)
	_, err := s.Maximize()
	require.NoError(t, err)

	// The location MLE zeroes the score.
	assert.InDelta(t, 0.0, s.Trace().Partial(0), 1e-2)
}

func TestBeta_Value(t *testing.T) {
	y := []float64{0.2, 0.5, 0.7}
	alpha, beta := 2.0, 3.0

	g := expr.NewGraph()
	a := g.Var(alpha)
	b := g.Var(beta)
	density.Beta(y, a, b)

	tr := tape.NewTrace(g.Tape()).PlayForward()

	lgab, _ := math.Lgamma(alpha + beta)
	lga, _ := math.Lgamma(alpha)
	lgb, _ := math.Lgamma(beta)
	want := 0.0
	for _, v := range y {
		want += (alpha-1)*math.Log(v) + (beta-1)*math.Log1p(-v) + lgab - lga - lgb
	}
	assert.InDelta(t, want, tr.Result(), 1e-10)
}

func TestGamma_Value(t *testing.T) {
	y := []float64{1.0, 2.0, 0.5}
	shape, scale := 2.0, 1.5

	g := expr.NewGraph()
	a := g.Var(shape)
	s := g.Var(scale)
	density.Gamma(y, a, s)

	tr := tape.NewTrace(g.Tape()).PlayForward()

	lga, _ := math.Lgamma(shape)
	want := 0.0
	for _, v := range y {
		bd := v / scale
		want += shape*math.Log(bd) - lga - math.Log(v) - bd
	}
	assert.InDelta(t, want, tr.Result(), 1e-10)
}

func TestGamma_DomainBarrier(t *testing.T) {
	y := []float64{1.0, 2.0}

	g := expr.NewGraph()
	a := g.Var(-0.5)
	s := g.Var(1.0)
	density.Gamma(y, a, s)

	tr := tape.NewTrace(g.Tape()).PlayForward()
	assert.True(t, math.IsNaN(tr.Result()))
}

func TestDensity_ShapePanics(t *testing.T) {
	y := []float64{1, 2, 3}

	g := expr.NewGraph()
	muVec := g.VarVector([]float64{1, 2}) // wrong length for y
	sd := g.Var(1.0)
	assert.Panics(t, func() { density.Normal(y, muVec, sd) })

	g2 := expr.NewGraph()
	sdVec := g2.VarVector([]float64{1, 2})
	mu := g2.Var(0.0)
	assert.Panics(t, func() { density.Normal(y, mu, sdVec) })
}
