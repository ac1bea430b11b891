// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package likelihood provides the public API for likelihood-based
// inference over a solved maximum-likelihood trace.
//
//   - StandardErrors: asymptotic standard deviations from the inverse
//     observed information
//   - AsymptoticIntervals: Wald-type confidence intervals
//   - ProfileIntervals: profile-likelihood intervals from repeated
//     constrained maximizations
package likelihood

import (
	"github.com/born-ml/sparsegrad/internal/likelihood"
	"github.com/born-ml/sparsegrad/internal/solver"
)

// Methods exposes likelihood-based inference over a solver whose trace
// currently sits at a maximum.
type Methods = likelihood.Methods

// Interval is a two-sided confidence interval around a point estimate.
type Interval = likelihood.Interval

// ProfileResult is one profile-likelihood interval with its per-bound
// search diagnostics.
type ProfileResult = likelihood.ProfileResult

// ProfileBound carries diagnostics for one side of a profile interval.
type ProfileBound = likelihood.ProfileBound

// Sentinel errors of the inference methods.
var (
	ErrBadHessian    = likelihood.ErrBadHessian
	ErrBracketFailed = likelihood.ErrBracketFailed
)

// New returns likelihood methods bound to the solver.
func New(s *solver.Solver) *Methods {
	return likelihood.New(s)
}
