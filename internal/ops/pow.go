// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops

import "math"

// PowScalars computes out = a^b for two distinct free scalars. Requires
// a > 0 for the derivatives to exist.
//
//	∂out/∂a = b·a^(b−1)             ∂out/∂b = a^b·ln a
//	∂²out/∂a² = b(b−1)·a^(b−2)      ∂²out/∂b² = a^b·ln²a
//	∂²out/∂a∂b = a^(b−1) + b·a^(b−1)·ln a
type PowScalars struct {
	in  Pair
	out Range
}

func NewPowScalars(a, b int, out Range) *PowScalars {
	checkDistinct("PowScalars", a, b)
	checkOutSize("PowScalars", out, 1)
	return &PowScalars{in: Pair{Left: a, Right: b}, out: out}
}

func (op *PowScalars) Evaluate(v []float64) {
	v[op.out.Begin] = math.Pow(v[op.in.Left], v[op.in.Right])
}

type powScalarsDiff struct {
	a, b    float64
	logA    float64
	powABm1 float64 // a^(b-1)
}

func (d powScalarsDiff) Partial(i, j int) float64 {
	if j == 0 {
		return d.b * d.powABm1
	}
	return math.Pow(d.a, d.b) * d.logA
}

func (d powScalarsDiff) Partial2(i, j, k int) float64 {
	if j == k {
		if j == 0 {
			return (d.b - 1) * d.b * math.Pow(d.a, d.b-2)
		}
		return math.Pow(d.a, d.b) * d.logA * d.logA
	}
	return d.powABm1 + d.b*d.powABm1*d.logA
}

func (op *PowScalars) LocalDiff(v []float64) LocalDiff {
	a, b := v[op.in.Left], v[op.in.Right]
	return powScalarsDiff{a: a, b: b, logA: math.Log(a), powABm1: math.Pow(a, b-1)}
}
func (op *PowScalars) In() Operands { return op.in }
func (op *PowScalars) Out() Range   { return op.out }
func (op *PowScalars) Flags() Flag  { return 0 }

// PowConst computes outᵢ = aᵢ^c element-wise for a fixed exponent c.
type PowConst struct {
	in  Range
	c   float64
	out Range
}

func NewPowConst(in Range, c float64, out Range) *PowConst {
	checkSameSize("PowConst", in, out)
	return &PowConst{in: in, c: c, out: out}
}

func (op *PowConst) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = math.Pow(v[op.in.At(i)], op.c)
	}
}

type powConstDiff struct {
	op *PowConst
	v  []float64
}

func (d powConstDiff) Partial(i, j int) float64 {
	if j != i {
		return 0
	}
	return d.op.c * math.Pow(d.v[d.op.in.At(i)], d.op.c-1)
}

func (d powConstDiff) Partial2(i, j, k int) float64 {
	if j != i || k != i {
		return 0
	}
	return (d.op.c - 1) * d.op.c * math.Pow(d.v[d.op.in.At(i)], d.op.c-2)
}

func (op *PowConst) LocalDiff(v []float64) LocalDiff { return powConstDiff{op: op, v: v} }
func (op *PowConst) In() Operands                    { return op.in }
func (op *PowConst) Out() Range                      { return op.out }
func (op *PowConst) Flags() Flag                     { return HessianOffDiagZero | ElementWise }

// PowBase computes outᵢ = c^aᵢ element-wise for a fixed base c > 0.
type PowBase struct {
	in   Range
	c    float64
	logC float64
	out  Range
}

func NewPowBase(c float64, in Range, out Range) *PowBase {
	checkSameSize("PowBase", in, out)
	return &PowBase{in: in, c: c, logC: math.Log(c), out: out}
}

func (op *PowBase) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = math.Pow(op.c, v[op.in.At(i)])
	}
}

type powBaseDiff struct {
	op *PowBase
	v  []float64
}

func (d powBaseDiff) Partial(i, j int) float64 {
	if j != i {
		return 0
	}
	return math.Pow(d.op.c, d.v[d.op.in.At(i)]) * d.op.logC
}

func (d powBaseDiff) Partial2(i, j, k int) float64 {
	if j != i || k != i {
		return 0
	}
	return math.Pow(d.op.c, d.v[d.op.in.At(i)]) * d.op.logC * d.op.logC
}

func (op *PowBase) LocalDiff(v []float64) LocalDiff { return powBaseDiff{op: op, v: v} }
func (op *PowBase) In() Operands                    { return op.in }
func (op *PowBase) Out() Range                      { return op.out }
func (op *PowBase) Flags() Flag                     { return HessianOffDiagZero | ElementWise }

// SelfPow computes outᵢ = aᵢ^aᵢ. Self variant of PowScalars for aliased
// operands; requires a > 0.
//
//	d/da a^a = a^a·(ln a + 1)
//	d²/da² a^a = a^a·((ln a + 1)² + 1/a)
type SelfPow struct {
	in  Range
	out Range
}

func NewSelfPow(in, out Range) *SelfPow {
	checkSameSize("SelfPow", in, out)
	return &SelfPow{in: in, out: out}
}

func (op *SelfPow) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		a := v[op.in.At(i)]
		v[op.out.At(i)] = math.Pow(a, a)
	}
}

type selfPowDiff struct {
	op *SelfPow
	v  []float64
}

func (d selfPowDiff) Partial(i, j int) float64 {
	if j != i {
		return 0
	}
	a := d.v[d.op.in.At(i)]
	return math.Pow(a, a) * (math.Log(a) + 1)
}

func (d selfPowDiff) Partial2(i, j, k int) float64 {
	if j != i || k != i {
		return 0
	}
	a := d.v[d.op.in.At(i)]
	l1 := math.Log(a) + 1
	return math.Pow(a, a) * (l1*l1 + 1/a)
}

func (op *SelfPow) LocalDiff(v []float64) LocalDiff { return selfPowDiff{op: op, v: v} }
func (op *SelfPow) In() Operands                    { return op.in }
func (op *SelfPow) Out() Range                      { return op.out }
func (op *SelfPow) Flags() Flag                     { return HessianOffDiagZero | ElementWise }
