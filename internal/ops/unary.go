// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

// unaryFn bundles a differentiable scalar function with its first and
// second derivatives.
type unaryFn struct {
	name string
	eval func(x float64) float64
	d1   func(x float64) float64
	d2   func(x float64) float64
}

var (
	logFn = &unaryFn{
		name: "Log",
		eval: math.Log,
		d1:   func(x float64) float64 { return 1 / x },
		d2:   func(x float64) float64 { return -1 / (x * x) },
	}
	log1pFn = &unaryFn{
		name: "Log1p",
		eval: math.Log1p,
		d1:   func(x float64) float64 { return 1 / (1 + x) },
		d2:   func(x float64) float64 { return -1 / ((1 + x) * (1 + x)) },
	}
	expFn = &unaryFn{
		name: "Exp",
		eval: math.Exp,
		d1:   math.Exp,
		d2:   math.Exp,
	}
	sqrtFn = &unaryFn{
		name: "Sqrt",
		eval: math.Sqrt,
		d1:   func(x float64) float64 { return 0.5 / math.Sqrt(x) },
		d2:   func(x float64) float64 { return -0.25 / (x * math.Sqrt(x)) },
	}
	sinFn = &unaryFn{
		name: "Sin",
		eval: math.Sin,
		d1:   math.Cos,
		d2:   func(x float64) float64 { return -math.Sin(x) },
	}
	cosFn = &unaryFn{
		name: "Cos",
		eval: math.Cos,
		d1:   func(x float64) float64 { return -math.Sin(x) },
		d2:   func(x float64) float64 { return -math.Cos(x) },
	}
	lgammaFn = &unaryFn{
		name: "Lgamma",
		eval: func(x float64) float64 {
			y, _ := math.Lgamma(x)
			return y
		},
		d1: mathext.Digamma,
		// Trigamma as the Hurwitz zeta function ζ(2, x).
		d2: func(x float64) float64 { return mathext.Zeta(2, x) },
	}
	logisticFn = &unaryFn{
		name: "Logistic",
		eval: logistic,
		d1: func(x float64) float64 {
			s := logistic(x)
			return s * (1 - s)
		},
		d2: func(x float64) float64 {
			s := logistic(x)
			return s * (1 - s) * (1 - 2*s)
		},
	}
)

func logistic(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// Unary applies a differentiable scalar function element-wise:
// outᵢ = f(aᵢ). A single-slot range covers the scalar case.
type Unary struct {
	fn  *unaryFn
	in  Range
	out Range
}

func newUnary(fn *unaryFn, in, out Range) *Unary {
	checkSameSize(fn.name, in, out)
	return &Unary{fn: fn, in: in, out: out}
}

// NewLog records outᵢ = ln aᵢ (requires a > 0).
func NewLog(in, out Range) *Unary { return newUnary(logFn, in, out) }

// NewLog1p records outᵢ = ln(1 + aᵢ).
func NewLog1p(in, out Range) *Unary { return newUnary(log1pFn, in, out) }

// NewExp records outᵢ = exp aᵢ.
func NewExp(in, out Range) *Unary { return newUnary(expFn, in, out) }

// NewSqrt records outᵢ = √aᵢ (requires a > 0).
func NewSqrt(in, out Range) *Unary { return newUnary(sqrtFn, in, out) }

// NewSin records outᵢ = sin aᵢ.
func NewSin(in, out Range) *Unary { return newUnary(sinFn, in, out) }

// NewCos records outᵢ = cos aᵢ.
func NewCos(in, out Range) *Unary { return newUnary(cosFn, in, out) }

// NewLgamma records outᵢ = ln Γ(aᵢ) (requires a > 0).
func NewLgamma(in, out Range) *Unary { return newUnary(lgammaFn, in, out) }

// NewLogistic records outᵢ = 1/(1 + exp(−aᵢ)).
func NewLogistic(in, out Range) *Unary { return newUnary(logisticFn, in, out) }

func (op *Unary) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = op.fn.eval(v[op.in.At(i)])
	}
}

type unaryDiff struct {
	op *Unary
	v  []float64
}

func (d unaryDiff) Partial(i, j int) float64 {
	if j != i {
		return 0
	}
	return d.op.fn.d1(d.v[d.op.in.At(i)])
}

func (d unaryDiff) Partial2(i, j, k int) float64 {
	if j != i || k != i {
		return 0
	}
	return d.op.fn.d2(d.v[d.op.in.At(i)])
}

func (op *Unary) LocalDiff(v []float64) LocalDiff { return unaryDiff{op: op, v: v} }
func (op *Unary) In() Operands                    { return op.in }
func (op *Unary) Out() Range                      { return op.out }
func (op *Unary) Flags() Flag                     { return HessianOffDiagZero | ElementWise }

// Name returns the function name, for diagnostics.
func (op *Unary) Name() string { return op.fn.name }
