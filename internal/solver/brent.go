// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package solver

import "math"

// Port of the public domain fmin routine (netlib FORTRAN original, Java
// translation by Steve Verrill, USDA Forest Products Laboratory, 1998):
// Brent's minimum finding procedure combining golden-section steps with
// safeguarded parabolic interpolation.

const (
	dblEpsilon     = 2.220446049250313e-16
	dblEpsilonSqrt = 1.490116119384765625e-08
	goldenSqrtInv  = 0.3819660112501050974743
)

// BrentResult reports the outcome of one Brent search.
type BrentResult struct {
	// Abscissa of the optimum.
	X float64
	// Objective value at X, on the caller's scale even when maximizing.
	F float64
	// Number of refinement iterations.
	Iterations int
}

// DefaultBrentTolerance is the default convergence tolerance, the square
// root of the machine epsilon.
const DefaultBrentTolerance = dblEpsilonSqrt

// BrentOptimize finds a minimum (or maximum) of f inside [left, right].
// The last call to f is made at the returned abscissa, so stateful
// objectives are left evaluated at the optimum. A degenerate interval
// short-circuits to the left endpoint.
func BrentOptimize(f func(float64) float64, left, right float64, maximize bool, tol float64) BrentResult {
	if math.Abs(right-left) <= dblEpsilon {
		return BrentResult{X: left, F: f(left)}
	}

	obj := f
	if maximize {
		obj = func(t float64) float64 { return -f(t) }
	}

	a, b := left, right
	v := a + goldenSqrtInv*(b-a)
	w, x := v, v
	d, e := 0.0, 0.0

	fx := obj(x)
	fv, fw := fx, fx
	tol3 := tol / 3
	eps := dblEpsilonSqrt

	iter := 0
	for {
		xm := (a + b) * 0.5
		tol1 := eps*math.Abs(x) + tol3
		t2 := tol1 * 2

		if math.Abs(x-xm) <= t2-(b-a)*0.5 {
			break
		}

		p, q, r := 0.0, 0.0, 0.0
		if math.Abs(e) > tol1 {
			// Fit a parabola through (v, fv), (w, fw), (x, fx).
			r = (x - w) * (fx - fv)
			q = (x - v) * (fx - fw)
			p = (x-v)*q - (x-w)*r
			q = (q - r) * 2
			if q > 0 {
				p = -p
			} else {
				q = -q
			}
			r = e
			e = d
		}

		if math.Abs(p) >= math.Abs(q*0.5*r) || p <= q*(a-x) || p >= q*(b-x) {
			// Golden-section step.
			if x < xm {
				e = b - x
			} else {
				e = a - x
			}
			d = goldenSqrtInv * e
		} else {
			// Parabolic step, pushed off the bracket boundaries.
			d = p / q
			u := x + d
			if u-a < t2 || b-u < t2 {
				d = tol1
				if x >= xm {
					d = -d
				}
			}
		}

		// Never evaluate closer than tol1 to x.
		var u float64
		switch {
		case math.Abs(d) >= tol1:
			u = x + d
		case d > 0:
			u = x + tol1
		default:
			u = x - tol1
		}

		fu := obj(u)
		if fu <= fx {
			if u < x {
				b = x
			} else {
				a = x
			}
			v, w = w, x
			x = u
			fv, fw, fx = fw, fx, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, fv = w, fw
				w, fw = u, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}
		iter++
	}

	return BrentResult{X: x, F: f(x), Iterations: iter}
}
