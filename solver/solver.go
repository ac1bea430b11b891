// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package solver provides the public API for the safeguarded
// Newton-Marquardt maximizer.
//
// The solver climbs a recorded trace's scalar result: each iteration
// solves the regularized Newton system for a direction, then Brent's
// method picks the step size. Parameters can be held fixed for profiling,
// and DiagnosticMode records a full State snapshot per iteration.
package solver

import (
	"github.com/born-ml/sparsegrad/internal/solver"
	"github.com/born-ml/sparsegrad/internal/tape"
)

// Solver drives the maximization of one trace.
type Solver = solver.Solver

// Config tunes the maximizer.
type Config = solver.Config

// State is a per-iteration diagnostic snapshot.
type State = solver.State

// Result summarizes a completed maximization.
type Result = solver.Result

// BrentResult reports the outcome of one Brent search.
type BrentResult = solver.BrentResult

// Sentinel errors returned by Maximize.
var (
	ErrLineSearch         = solver.ErrLineSearch
	ErrObjectiveUnbounded = solver.ErrObjectiveUnbounded
	ErrRegularization     = solver.ErrRegularization
)

// DefaultBrentTolerance is the default Brent convergence tolerance.
const DefaultBrentTolerance = solver.DefaultBrentTolerance

// New returns a solver over the trace with default settings.
func New(tr *tape.Trace) *Solver {
	return solver.New(tr)
}

// NewWithConfig returns a solver over the trace with the given settings.
func NewWithConfig(tr *tape.Trace, cfg Config) *Solver {
	return solver.NewWithConfig(tr, cfg)
}

// DefaultConfig returns the standard solver settings.
func DefaultConfig() Config {
	return solver.DefaultConfig()
}

// BrentOptimize finds a minimum (or maximum) of f inside [left, right]
// with Brent's combined golden-section and parabolic search.
func BrentOptimize(f func(float64) float64, left, right float64, maximize bool, tol float64) BrentResult {
	return solver.BrentOptimize(f, left, right, maximize, tol)
}
