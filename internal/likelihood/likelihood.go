// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package likelihood provides confidence-interval methods over a solved
// maximum-likelihood trace: asymptotic intervals from the inverse observed
// information, and profile-likelihood intervals from repeated constrained
// maximizations.
package likelihood

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/sparsegrad/internal/linalg"
	"github.com/born-ml/sparsegrad/internal/solver"
)

// ErrBadHessian mirrors the curvature failure from the linear algebra
// layer: the Hessian at the optimum is not negative definite.
var ErrBadHessian = linalg.ErrBadHessian

// ErrBracketFailed reports a profile likelihood too flat to cross the
// cutpoint within the configured number of bracket doublings.
var ErrBracketFailed = errors.New("likelihood: failed to bracket the profile cutpoint")

// Half of the 95% quantile of the chi-squared distribution with one degree
// of freedom, the usual likelihood-ratio cutpoint.
const lrtCutpoint95Half = 1.920729410347062016129

// Interval is a two-sided confidence interval around a point estimate.
type Interval struct {
	Estimate float64
	Lower    float64
	Upper    float64
	Coverage float64
}

// ProfileBound carries diagnostics for one side of a profile interval.
type ProfileBound struct {
	// Bracket is the parameter value that finally crossed the cutpoint.
	Bracket float64
	// BracketLogLik is the profile log-likelihood at the bracket.
	BracketLogLik float64
	// Deviation is the squared log-likelihood deviation from the cutpoint
	// at the accepted bound.
	Deviation float64
	// Evaluations counts the Brent refinement iterations.
	Evaluations int
}

// ProfileResult is one profile-likelihood interval with its per-bound
// search diagnostics.
type ProfileResult struct {
	Interval Interval
	Lower    ProfileBound
	Upper    ProfileBound
}

// Methods exposes likelihood-based inference over a solver whose trace
// currently sits at a maximum.
type Methods struct {
	solver *solver.Solver
}

// New returns likelihood methods bound to the solver.
func New(s *solver.Solver) *Methods {
	return &Methods{solver: s}
}

// StandardErrors returns the asymptotic standard deviations of the free
// parameters, sqrt(diag((-H)⁻¹)) at the current trace state. Fixed
// parameters report 0.
func (m *Methods) StandardErrors() ([]float64, error) {
	tr := m.solver.Trace()
	n := tr.Tape().InputSize()
	return linalg.StandardErrors(tr.Hessian(), n, m.solver.FixedMask())
}

// AsymptoticIntervals returns Wald-type confidence intervals, the point
// estimate plus and minus the normal quantile times the asymptotic
// standard deviation.
func (m *Methods) AsymptoticIntervals(coverage float64) ([]Interval, error) {
	checkCoverage(coverage)
	sds, err := m.StandardErrors()
	if err != nil {
		return nil, err
	}
	tr := m.solver.Trace()
	alpha := 1 - coverage
	out := make([]Interval, len(sds))
	for i, sd := range sds {
		dist := distuv.Normal{Mu: tr.Values()[i], Sigma: sd}
		out[i] = Interval{
			Estimate: tr.Values()[i],
			Lower:    dist.Quantile(0.5 * alpha),
			Upper:    dist.Quantile(1 - 0.5*alpha),
			Coverage: coverage,
		}
	}
	return out, nil
}

// profiler evaluates the profile log-likelihood of one parameter: the
// parameter is set, every other free parameter is re-maximized, and the
// squared deviation from the cutpoint is minimized to locate a bound.
// Solver failures are latched into err and flatten the objective so the
// surrounding search unwinds quickly.
type profiler struct {
	s      *solver.Solver
	index  int
	target float64
	err    error
}

func (p *profiler) loglik(x float64) float64 {
	if p.err != nil {
		return math.Inf(-1)
	}
	tr := p.s.Trace()
	tr.Values()[p.index] = x
	if _, err := p.s.Maximize(); err != nil {
		p.err = fmt.Errorf("likelihood: constrained maximization at %g: %w", x, err)
		return math.Inf(-1)
	}
	return tr.Result()
}

func (p *profiler) objective(x float64) float64 {
	diff := p.loglik(x) - p.target
	return diff * diff
}

// bracket doubles width until the profile log-likelihood at
// estimate+sign*width falls below the cutpoint, and returns the final
// width. A likelihood still above the cutpoint after the configured number
// of doublings yields ErrBracketFailed.
func (p *profiler) bracket(estimate, width, sign float64) (float64, error) {
	max := p.s.Config().MaxBracketExpansions
	for n := 0; p.loglik(estimate+sign*width) > p.target; n++ {
		if n >= max {
			return width, fmt.Errorf("%w: parameter %d still above the cutpoint at half-width %g", ErrBracketFailed, p.index, width)
		}
		width *= 2
	}
	return width, p.err
}

// ProfileInterval computes the profile-likelihood interval of the input
// slot at index. The trace must sit at the unconstrained maximum;
// halfWidthGuess seeds the bracket on both sides. The trace and the fixed
// mask are restored and replayed before returning.
func (m *Methods) ProfileInterval(index int, coverage, halfWidthGuess float64) (ProfileResult, error) {
	checkCoverage(coverage)
	tr := m.solver.Trace()
	n := tr.Tape().InputSize()

	estimate := tr.Values()[index]
	maxLogLik := tr.Result()
	saved := append([]float64(nil), tr.Values()[:n]...)

	m.solver.Fix(index)
	defer func() {
		m.solver.Unfix(index)
		copy(tr.Values()[:n], saved)
		tr.Play()
	}()

	p := &profiler{
		s:      m.solver,
		index:  index,
		target: maxLogLik - likelihoodDelta(coverage),
	}

	var res ProfileResult

	// Lower bound: bracket downward, then shrink the deviation to zero
	// inside [estimate-width, estimate].
	tr.Values()[index] = estimate
	lowerWidth, err := p.bracket(estimate, halfWidthGuess, -1)
	if err != nil {
		return res, err
	}
	lower := solver.BrentOptimize(p.objective, estimate-lowerWidth, estimate, false, solver.DefaultBrentTolerance)
	if p.err != nil {
		return res, p.err
	}
	res.Lower = ProfileBound{
		Bracket:       estimate - lowerWidth,
		BracketLogLik: p.loglik(estimate - lowerWidth),
		Deviation:     lower.F,
		Evaluations:   lower.Iterations,
	}

	// Upper bound, mirrored.
	tr.Values()[index] = estimate
	upperWidth, err := p.bracket(estimate, halfWidthGuess, 1)
	if err != nil {
		return res, err
	}
	upper := solver.BrentOptimize(p.objective, estimate, estimate+upperWidth, false, solver.DefaultBrentTolerance)
	if p.err != nil {
		return res, p.err
	}
	res.Upper = ProfileBound{
		Bracket:       estimate + upperWidth,
		BracketLogLik: p.loglik(estimate + upperWidth),
		Deviation:     upper.F,
		Evaluations:   upper.Iterations,
	}
	if p.err != nil {
		return res, p.err
	}

	res.Interval = Interval{
		Estimate: estimate,
		Lower:    lower.X,
		Upper:    upper.X,
		Coverage: coverage,
	}
	return res, nil
}

// ProfileIntervals computes profile-likelihood intervals for every input
// slot, seeding each bracket with the asymptotic half-width. The trace is
// restored to the optimum and replayed before returning.
func (m *Methods) ProfileIntervals(coverage float64) ([]ProfileResult, error) {
	checkCoverage(coverage)
	tr := m.solver.Trace()
	n := tr.Tape().InputSize()

	optimal := append([]float64(nil), tr.Values()[:n]...)

	asym, err := m.AsymptoticIntervals(coverage)
	if err != nil {
		return nil, err
	}

	out := make([]ProfileResult, n)
	for i := 0; i < n; i++ {
		guess := 0.5 * (asym[i].Upper - asym[i].Lower)
		res, err := m.ProfileInterval(i, coverage, guess)
		if err != nil {
			return nil, err
		}
		out[i] = res

		// ProfileInterval replays at the saved point, but profiling the
		// next parameter must restart exactly at the optimum.
		copy(tr.Values()[:n], optimal)
		tr.Play()
	}
	return out, nil
}

// likelihoodDelta returns half the chi-squared(1) quantile at the given
// coverage, the drop from the maximum defining the cutpoint of a
// likelihood-ratio test at level 1-coverage.
func likelihoodDelta(coverage float64) float64 {
	if coverage == 0.95 {
		return lrtCutpoint95Half
	}
	return 0.5 * distuv.ChiSquared{K: 1}.Quantile(coverage)
}

func checkCoverage(coverage float64) {
	if !(coverage > 0 && coverage < 1) {
		panic(fmt.Sprintf("likelihood: coverage %g outside (0, 1)", coverage))
	}
}
