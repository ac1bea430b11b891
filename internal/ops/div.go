// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops

// DivScalars computes out = a/b for two distinct free scalars.
//
//	∂out/∂a = 1/b        ∂out/∂b = −a/b²
//	∂²out/∂a² = 0        ∂²out/∂b² = 2a/b³      ∂²out/∂a∂b = −1/b²
type DivScalars struct {
	in  Pair
	out Range
}

func NewDivScalars(a, b int, out Range) *DivScalars {
	checkDistinct("DivScalars", a, b)
	checkOutSize("DivScalars", out, 1)
	return &DivScalars{in: Pair{Left: a, Right: b}, out: out}
}

func (op *DivScalars) Evaluate(v []float64) {
	v[op.out.Begin] = v[op.in.Left] / v[op.in.Right]
}

type divScalarsDiff struct{ a, b float64 }

func (d divScalarsDiff) Partial(i, j int) float64 {
	if j == 0 {
		return 1 / d.b
	}
	return -d.a / (d.b * d.b)
}

func (d divScalarsDiff) Partial2(i, j, k int) float64 {
	switch {
	case j == 0 && k == 0:
		return 0
	case j == 1 && k == 1:
		return 2 * d.a / (d.b * d.b * d.b)
	default:
		return -1 / (d.b * d.b)
	}
}

func (op *DivScalars) LocalDiff(v []float64) LocalDiff {
	return divScalarsDiff{a: v[op.in.Left], b: v[op.in.Right]}
}
func (op *DivScalars) In() Operands { return op.in }
func (op *DivScalars) Out() Range   { return op.out }
func (op *DivScalars) Flags() Flag  { return 0 }

// DivFromConst computes outᵢ = c/aᵢ element-wise for a fixed scalar c.
type DivFromConst struct {
	in  Range
	c   float64
	out Range
}

func NewDivFromConst(c float64, in Range, out Range) *DivFromConst {
	checkSameSize("DivFromConst", in, out)
	return &DivFromConst{in: in, c: c, out: out}
}

func (op *DivFromConst) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = op.c / v[op.in.At(i)]
	}
}

type divFromConstDiff struct {
	op *DivFromConst
	v  []float64
}

func (d divFromConstDiff) Partial(i, j int) float64 {
	if j != i {
		return 0
	}
	a := d.v[d.op.in.At(i)]
	return -d.op.c / (a * a)
}

func (d divFromConstDiff) Partial2(i, j, k int) float64 {
	if j != i || k != i {
		return 0
	}
	a := d.v[d.op.in.At(i)]
	return 2 * d.op.c / (a * a * a)
}

func (op *DivFromConst) LocalDiff(v []float64) LocalDiff { return divFromConstDiff{op: op, v: v} }
func (op *DivFromConst) In() Operands                    { return op.in }
func (op *DivFromConst) Out() Range                      { return op.out }
func (op *DivFromConst) Flags() Flag                     { return HessianOffDiagZero | ElementWise }

// DivVectors computes outᵢ = aᵢ/bᵢ for two disjoint free ranges.
type DivVectors struct {
	in  RangePair
	out Range
}

func NewDivVectors(a, b, out Range) *DivVectors {
	checkSameSize("DivVectors", a, b)
	checkDisjoint("DivVectors", a, b)
	checkSameSize("DivVectors", a, out)
	return &DivVectors{in: RangePair{Left: a, Right: b}, out: out}
}

func (op *DivVectors) Evaluate(v []float64) {
	for i := 0; i < op.in.Left.Size(); i++ {
		v[op.out.At(i)] = v[op.in.Left.At(i)] / v[op.in.Right.At(i)]
	}
}

type divVectorsDiff struct {
	op *DivVectors
	v  []float64
	n  int
}

func (d divVectorsDiff) Partial(i, j int) float64 {
	b := d.v[d.op.in.Right.At(i)]
	switch j {
	case i:
		return 1 / b
	case i + d.n:
		return -d.v[d.op.in.Left.At(i)] / (b * b)
	}
	return 0
}

func (d divVectorsDiff) Partial2(i, j, k int) float64 {
	b := d.v[d.op.in.Right.At(i)]
	switch {
	case j == i && k == i:
		return 0
	case j == i+d.n && k == i+d.n:
		return 2 * d.v[d.op.in.Left.At(i)] / (b * b * b)
	case j == i && k == i+d.n || k == i && j == i+d.n:
		return -1 / (b * b)
	}
	return 0
}

func (op *DivVectors) LocalDiff(v []float64) LocalDiff {
	return divVectorsDiff{op: op, v: v, n: op.in.Left.Size()}
}
func (op *DivVectors) In() Operands { return op.in }
func (op *DivVectors) Out() Range   { return op.out }
func (op *DivVectors) Flags() Flag  { return ElementWise }

// DivVectorScalar computes outᵢ = aᵢ/s for a free vector and a free scalar
// outside the vector range.
type DivVectorScalar struct {
	in  RangeScalar
	out Range
}

func NewDivVectorScalar(a Range, s int, out Range) *DivVectorScalar {
	if a.Contains(s) {
		panicAliased("DivVectorScalar", s)
	}
	checkSameSize("DivVectorScalar", a, out)
	return &DivVectorScalar{in: RangeScalar{Left: a, Right: s}, out: out}
}

func (op *DivVectorScalar) Evaluate(v []float64) {
	s := v[op.in.Right]
	for i := 0; i < op.in.Left.Size(); i++ {
		v[op.out.At(i)] = v[op.in.Left.At(i)] / s
	}
}

type divVectorScalarDiff struct {
	op *DivVectorScalar
	v  []float64
	n  int
}

func (d divVectorScalarDiff) Partial(i, j int) float64 {
	s := d.v[d.op.in.Right]
	switch j {
	case i:
		return 1 / s
	case d.n:
		return -d.v[d.op.in.Left.At(i)] / (s * s)
	}
	return 0
}

func (d divVectorScalarDiff) Partial2(i, j, k int) float64 {
	s := d.v[d.op.in.Right]
	switch {
	case j == i && k == i:
		return 0
	case j == d.n && k == d.n:
		return 2 * d.v[d.op.in.Left.At(i)] / (s * s * s)
	case j == i && k == d.n || k == i && j == d.n:
		return -1 / (s * s)
	}
	return 0
}

func (op *DivVectorScalar) LocalDiff(v []float64) LocalDiff {
	return divVectorScalarDiff{op: op, v: v, n: op.in.Left.Size()}
}
func (op *DivVectorScalar) In() Operands { return op.in }
func (op *DivVectorScalar) Out() Range   { return op.out }
func (op *DivVectorScalar) Flags() Flag  { return ElementWise }
