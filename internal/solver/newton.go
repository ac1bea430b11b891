// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package solver implements a safeguarded Newton-Marquardt maximizer over
// a recorded trace.
//
// Each iteration plays the trace, solves the damped system
// ((1-λ)·H + λ·I)·d = -g for the search direction, regularizing λ upward
// along a fixed ladder until the factorization succeeds, then line-searches
// the step size along d with Brent's method on a feasibility-restricted
// interval. Individual parameters may be held fixed, which pins their
// gradient and direction components to zero; the profile likelihood
// machinery relies on this.
package solver

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/sparsegrad/internal/linalg"
	"github.com/born-ml/sparsegrad/internal/tape"
)

var (
	// ErrLineSearch reports a line search that ended below the incumbent
	// objective by more than the line-search tolerance. The quadratic model
	// has broken down and continuing would diverge.
	ErrLineSearch = errors.New("solver: backtracking line search failed")
	// ErrObjectiveUnbounded reports an objective evaluation of +Inf, after
	// which no maximum exists.
	ErrObjectiveUnbounded = errors.New("solver: objective is unbounded above")
	// ErrRegularization reports a Hessian whose damped blend stayed
	// singular at every rung of the regularization ladder, λ = 1 included.
	ErrRegularization = errors.New("solver: hessian factorization failed at every regularization level")
)

// Config tunes the maximizer. Use DefaultConfig as the baseline.
type Config struct {
	// MaxIterations caps the number of Newton iterations.
	MaxIterations int
	// ObjectiveTolerance stops the iteration once an iteration improves
	// the objective by no more than this.
	ObjectiveTolerance float64
	// DiagnosticMode records a full State snapshot per iteration.
	DiagnosticMode bool
	// MaxRegularizationAttempts sets the number of rungs on the λ ladder.
	MaxRegularizationAttempts int
	// RegularizationDamping is the exponent shaping the ladder,
	// λ = (attempt/max)^damping.
	RegularizationDamping float64
	// BrentToleranceFactor scales ObjectiveTolerance into the line-search
	// tolerance.
	BrentToleranceFactor float64
	// BrentBoundaryLeft and BrentBoundaryRight bound the step size searched
	// along the Newton direction. The negative left boundary admits ascent
	// steps against a fully damped direction.
	BrentBoundaryLeft  float64
	BrentBoundaryRight float64
	// BrentRestrictionFactor shrinks an infeasible search boundary toward
	// zero until the objective is finite there.
	BrentRestrictionFactor float64
	// MaxBracketExpansions caps the doubling of the profile-likelihood
	// bracket before giving up on a flat likelihood.
	MaxBracketExpansions int
}

// DefaultConfig returns the standard solver settings.
func DefaultConfig() Config {
	return Config{
		MaxIterations:             1000,
		ObjectiveTolerance:        1e-3,
		DiagnosticMode:            false,
		MaxRegularizationAttempts: 10,
		RegularizationDamping:     2.0,
		BrentToleranceFactor:      1.0,
		BrentBoundaryLeft:         -1.0,
		BrentBoundaryRight:        2.0,
		BrentRestrictionFactor:    0.75,
		MaxBracketExpansions:      60,
	}
}

// State is a per-iteration diagnostic snapshot.
type State struct {
	Iteration        int
	ObjectiveInitial float64
	ObjectiveFinal   float64
	Lambda           float64
	// Parameters holds the iteration's starting point; Gradient and
	// Hessian (dense, row-major N x N) are those of the reverse sweep at
	// the accepted step.
	Parameters      []float64
	Gradient        []float64
	Hessian         []float64
	Direction       []float64
	BrentLeft       float64
	BrentRight      float64
	OptimalStep     float64
	Evaluations     int
	Regularizations int
}

func (s *State) String() string {
	var b strings.Builder
	n := len(s.Parameters)
	fmt.Fprintf(&b, "Step #%d:\n", s.Iteration)
	fmt.Fprintf(&b, "Parameter vector: %v\n", s.Parameters)
	fmt.Fprintf(&b, "Gradient vector: %v\n", s.Gradient)
	b.WriteString("Hessian matrix:\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "  %v\n", s.Hessian[i*n:(i+1)*n])
	}
	fmt.Fprintf(&b, "Regularization lambda = %g found after %d regularization attempts.\n", s.Lambda, s.Regularizations)
	fmt.Fprintf(&b, "Direction vector: %v\n", s.Direction)
	fmt.Fprintf(&b, "Optimal step amplitude = %g found after %d objective evaluations.\n", s.OptimalStep, s.Evaluations)
	fmt.Fprintf(&b, "Objective changed from %g to %g\n", s.ObjectiveInitial, s.ObjectiveFinal)
	return b.String()
}

// Result summarizes a completed maximization.
type Result struct {
	// Objective is the maximized function value.
	Objective float64
	// Parameters holds the argmax.
	Parameters []float64
	// Iterations is the number of Newton iterations taken.
	Iterations int
}

// Solver drives the maximization of one trace. It owns scratch buffers and
// the fixed-parameter mask; the trace's current input values are both the
// starting point and, after Maximize, the solution.
type Solver struct {
	trace  *tape.Trace
	config Config
	fixed  []bool
	states []State

	params    []float64
	direction []float64

	forwardEvals int
	reverseEvals int
}

// New returns a solver over the trace with default settings.
func New(tr *tape.Trace) *Solver {
	return NewWithConfig(tr, DefaultConfig())
}

// NewWithConfig returns a solver over the trace with the given settings.
func NewWithConfig(tr *tape.Trace, cfg Config) *Solver {
	n := tr.Tape().InputSize()
	return &Solver{
		trace:     tr,
		config:    cfg,
		fixed:     make([]bool, n),
		params:    make([]float64, n),
		direction: make([]float64, n),
	}
}

// Trace returns the trace being maximized.
func (s *Solver) Trace() *tape.Trace { return s.trace }

// Config returns the active settings.
func (s *Solver) Config() Config { return s.config }

// SetConfig replaces the settings.
func (s *Solver) SetConfig(cfg Config) { s.config = cfg }

// Fix holds input slot index at its current value during maximization.
func (s *Solver) Fix(index int) { s.fixed[index] = true }

// Unfix releases input slot index.
func (s *Solver) Unfix(index int) { s.fixed[index] = false }

// Fixed reports whether input slot index is held.
func (s *Solver) Fixed(index int) bool { return s.fixed[index] }

// FixedMask returns the live fixed-parameter mask.
func (s *Solver) FixedMask() []bool { return s.fixed }

// States returns the diagnostic snapshots collected so far. Empty unless
// DiagnosticMode is set.
func (s *Solver) States() []State { return s.states }

// Evaluations returns the cumulative forward and reverse sweep counts.
func (s *Solver) Evaluations() (forward, reverse int) {
	return s.forwardEvals, s.reverseEvals
}

// Maximize runs safeguarded Newton iterations from the trace's current
// input values until the per-iteration improvement drops to
// ObjectiveTolerance or MaxIterations is reached. On return the trace
// holds the solution; gradient and Hessian are those of the last reverse
// sweep.
func (s *Solver) Maximize() (Result, error) {
	n := s.trace.Tape().InputSize()

	objOld := math.Inf(-1)
	objNew := s.trace.Play().Result()
	s.forwardEvals++
	s.reverseEvals++

	iter := 0
	for objNew-objOld > s.config.ObjectiveTolerance && iter <= s.config.MaxIterations {
		iter++
		evals := 0
		copy(s.params, s.trace.Values()[:n])

		// Fixed parameters contribute no gradient; their Hessian rows are
		// neutralized inside the solve.
		grad := s.trace.Adjoints()[:n]
		for i := range grad {
			if s.fixed[i] {
				grad[i] = 0
			}
		}

		lambda, nRegul := 0.0, 0
		d, err := linalg.NewtonStep(s.trace.Hessian(), grad, lambda, s.fixed)
		if err != nil {
			nRegul++
			step := 1 / float64(s.config.MaxRegularizationAttempts)
			for nRegul <= s.config.MaxRegularizationAttempts {
				lambda = math.Pow(float64(nRegul)*step, s.config.RegularizationDamping)
				d, err = linalg.NewtonStep(s.trace.Hessian(), grad, lambda, s.fixed)
				if err == nil {
					break
				}
				nRegul++
			}
			if err != nil {
				return Result{}, fmt.Errorf("%w after %d attempts: %v", ErrRegularization, nRegul, err)
			}
		}
		copy(s.direction, d)

		// Objective along the direction. +Inf is unrecoverable; NaN and
		// -Inf mark the step infeasible so the search pulls back.
		unbounded := false
		phi := func(t float64) float64 {
			evals++
			vals := s.trace.Values()
			for i := 0; i < n; i++ {
				vals[i] = s.params[i] + t*s.direction[i]
			}
			y := s.trace.PlayForward().Result()
			if math.IsInf(y, 1) {
				unbounded = true
				return math.Inf(-1)
			}
			if math.IsNaN(y) || math.IsInf(y, -1) {
				return math.Inf(-1)
			}
			return y
		}

		// Restrict the search interval to the feasible region around the
		// current point. Step 0 reproduces the current finite objective, so
		// the geometric shrinkage terminates.
		left := s.config.BrentBoundaryLeft
		right := s.config.BrentBoundaryRight
		for math.IsInf(phi(left), -1) && !unbounded {
			left *= s.config.BrentRestrictionFactor
		}
		for math.IsInf(phi(right), -1) && !unbounded {
			right *= s.config.BrentRestrictionFactor
		}
		if unbounded {
			return Result{}, ErrObjectiveUnbounded
		}

		// The line-search tolerance must not exceed the squared interval
		// width, or the accepted point could undercut the incumbent by more
		// than the overall tolerance admits.
		width := right - left
		brentTol := math.Min(s.config.ObjectiveTolerance*s.config.BrentToleranceFactor, width*width)

		out := BrentOptimize(phi, left, right, true, brentTol)
		if unbounded {
			return Result{}, ErrObjectiveUnbounded
		}
		if out.F < objNew-brentTol {
			return Result{}, fmt.Errorf("%w: step %g moved the objective from %g to %g", ErrLineSearch, out.X, objNew, out.F)
		}

		objOld = objNew
		objNew = out.F
		s.trace.PlayReverse()
		s.forwardEvals += evals
		s.reverseEvals++

		if s.config.DiagnosticMode {
			st := State{
				Iteration:        iter,
				ObjectiveInitial: objOld,
				ObjectiveFinal:   objNew,
				Lambda:           lambda,
				Parameters:       append([]float64(nil), s.params...),
				Gradient:         append([]float64(nil), s.trace.Adjoints()[:n]...),
				Hessian:          s.trace.Hessian().Dense(),
				Direction:        append([]float64(nil), s.direction...),
				BrentLeft:        left,
				BrentRight:       right,
				OptimalStep:      out.X,
				Evaluations:      evals,
				Regularizations:  nRegul,
			}
			s.states = append(s.states, st)
		}
	}

	return Result{
		Objective:  objNew,
		Parameters: append([]float64(nil), s.trace.Values()[:n]...),
		Iterations: iter,
	}, nil
}
