// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package density builds summed log-likelihood expressions for common
// distributions over observed data, with distribution parameters given as
// recorded expressions. Each function returns a scalar expression suitable
// as a maximization objective; data enters as constants, so gradients and
// Hessians are taken with respect to the parameters only.
package density

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/sparsegrad/expr"
)

// log(1/sqrt(2*pi))
const logSqrt2PiInv = -0.918938533204672741780330

// Normal returns the Gaussian log-likelihood of y under mean mu and
// standard deviation sd. mu is either a scalar shared by all observations
// or a vector of per-observation means; sd must be scalar.
func Normal(y []float64, mu, sd expr.Expr) expr.Expr {
	n := float64(len(y))
	if !sd.IsScalar() {
		panic("density: Normal needs a scalar standard deviation")
	}

	// Sum of squared residuals, via the sufficient statistics for a shared
	// mean and via the residual vector otherwise.
	var ss expr.Expr
	if mu.IsScalar() {
		sumY := floats.Sum(y)
		sumSq := floats.Dot(y, y)
		ss = mu.Square().MulScalar(n).
			Add(mu.MulScalar(-2 * sumY)).
			AddScalar(sumSq)
	} else {
		checkLen("Normal", mu, len(y))
		ss = mu.SubVector(y).SumSquares()
	}

	return sd.Log().MulScalar(-n).
		Sub(ss.Div(sd.Square().MulScalar(2))).
		AddScalar(n * logSqrt2PiInv)
}

// Poisson returns the Poisson log-likelihood of the counts y under rate
// lambda, a shared scalar or a vector of per-observation rates.
func Poisson(y []float64, lambda expr.Expr) expr.Expr {
	n := float64(len(y))
	logFact := 0.0
	for _, v := range y {
		lg, _ := math.Lgamma(v + 1)
		logFact += lg
	}

	if lambda.IsScalar() {
		sumY := floats.Sum(y)
		return lambda.Log().MulScalar(sumY).
			Sub(lambda.MulScalar(n)).
			AddScalar(-logFact)
	}
	checkLen("Poisson", lambda, len(y))
	return lambda.Log().MulVector(y).Sum().
		Sub(lambda.Sum()).
		AddScalar(-logFact)
}

// Logistic returns the log-likelihood of y under the unit-scale logistic
// distribution with location mu, a shared scalar or a vector of
// per-observation locations.
func Logistic(y []float64, mu expr.Expr) expr.Expr {
	if mu.IsScalar() {
		mu = mu.Broadcast(len(y))
	}
	checkLen("Logistic", mu, len(y))
	mz := mu.SubVector(y)
	return mz.Sum().Sub(mz.Exp().Log1p().Sum().MulScalar(2))
}

// Beta returns the Beta log-likelihood of y, all observations in (0, 1),
// under scalar shape parameters alpha and beta.
func Beta(y []float64, alpha, beta expr.Expr) expr.Expr {
	if !alpha.IsScalar() || !beta.IsScalar() {
		panic("density: Beta needs scalar shape parameters")
	}
	n := float64(len(y))
	sumLog := 0.0
	sumLog1m := 0.0
	for _, v := range y {
		sumLog += math.Log(v)
		sumLog1m += math.Log1p(-v)
	}

	norm := alpha.Add(beta).Lgamma().
		Sub(alpha.Lgamma()).
		Sub(beta.Lgamma())
	return alpha.SubScalar(1).MulScalar(sumLog).
		Add(beta.SubScalar(1).MulScalar(sumLog1m)).
		Add(norm.MulScalar(n))
}

// Gamma returns the Gamma log-likelihood of the positive observations y
// under scalar shape alpha and scale parameters. The zero-weighted
// logarithm of alpha acts as a domain barrier: outside alpha > 0 it
// evaluates to NaN, which the maximizer treats as infeasible.
func Gamma(y []float64, alpha, scale expr.Expr) expr.Expr {
	if !alpha.IsScalar() || !scale.IsScalar() {
		panic("density: Gamma needs scalar shape and scale parameters")
	}
	n := float64(len(y))
	sumY := floats.Sum(y)
	sumLog := 0.0
	for _, v := range y {
		sumLog += math.Log(v)
	}

	barrier := alpha.Log().MulScalar(0)
	shapeTerm := alpha.Mul(scale.Log().MulScalar(-n).AddScalar(sumLog))
	return shapeTerm.
		Sub(alpha.Lgamma().MulScalar(n)).
		AddScalar(-sumLog).
		Sub(scale.DivFrom(sumY)).
		Add(barrier)
}

func checkLen(name string, e expr.Expr, n int) {
	if e.Size() != n {
		panic(fmt.Sprintf("density: %s parameter has %d elements for %d observations", name, e.Size(), n))
	}
}
