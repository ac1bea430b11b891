// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops

// SubScalars computes out = a − b for two distinct free scalars.
type SubScalars struct {
	in  Pair
	out Range
}

func NewSubScalars(a, b int, out Range) *SubScalars {
	checkDistinct("SubScalars", a, b)
	checkOutSize("SubScalars", out, 1)
	return &SubScalars{in: Pair{Left: a, Right: b}, out: out}
}

func (op *SubScalars) Evaluate(v []float64) {
	v[op.out.Begin] = v[op.in.Left] - v[op.in.Right]
}

type subDiff struct{}

func (subDiff) Partial(i, j int) float64 {
	if j == 0 {
		return 1
	}
	return -1
}

func (subDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *SubScalars) LocalDiff(v []float64) LocalDiff { return subDiff{} }
func (op *SubScalars) In() Operands                    { return op.in }
func (op *SubScalars) Out() Range                      { return op.out }
func (op *SubScalars) Flags() Flag                     { return HessianZero }

// SubFromConst computes outᵢ = c − aᵢ element-wise for a fixed scalar c.
type SubFromConst struct {
	in  Range
	c   float64
	out Range
}

func NewSubFromConst(c float64, in Range, out Range) *SubFromConst {
	checkSameSize("SubFromConst", in, out)
	return &SubFromConst{in: in, c: c, out: out}
}

func (op *SubFromConst) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = op.c - v[op.in.At(i)]
	}
}

type negDiff struct{}

func (negDiff) Partial(i, j int) float64 {
	if j == i {
		return -1
	}
	return 0
}

func (negDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *SubFromConst) LocalDiff(v []float64) LocalDiff { return negDiff{} }
func (op *SubFromConst) In() Operands                    { return op.in }
func (op *SubFromConst) Out() Range                      { return op.out }
func (op *SubFromConst) Flags() Flag                     { return HessianZero | ElementWise }

// Neg computes outᵢ = −aᵢ.
type Neg struct {
	in  Range
	out Range
}

func NewNeg(in, out Range) *Neg {
	checkSameSize("Neg", in, out)
	return &Neg{in: in, out: out}
}

func (op *Neg) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = -v[op.in.At(i)]
	}
}

func (op *Neg) LocalDiff(v []float64) LocalDiff { return negDiff{} }
func (op *Neg) In() Operands                    { return op.in }
func (op *Neg) Out() Range                      { return op.out }
func (op *Neg) Flags() Flag                     { return HessianZero | ElementWise }

// SubVectors computes outᵢ = aᵢ − bᵢ for two disjoint free ranges.
type SubVectors struct {
	in  RangePair
	out Range
}

func NewSubVectors(a, b, out Range) *SubVectors {
	checkSameSize("SubVectors", a, b)
	checkDisjoint("SubVectors", a, b)
	checkSameSize("SubVectors", a, out)
	return &SubVectors{in: RangePair{Left: a, Right: b}, out: out}
}

func (op *SubVectors) Evaluate(v []float64) {
	for i := 0; i < op.in.Left.Size(); i++ {
		v[op.out.At(i)] = v[op.in.Left.At(i)] - v[op.in.Right.At(i)]
	}
}

type subVectorsDiff struct{ n int }

func (d subVectorsDiff) Partial(i, j int) float64 {
	switch j {
	case i:
		return 1
	case i + d.n:
		return -1
	}
	return 0
}

func (subVectorsDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *SubVectors) LocalDiff(v []float64) LocalDiff {
	return subVectorsDiff{n: op.in.Left.Size()}
}
func (op *SubVectors) In() Operands { return op.in }
func (op *SubVectors) Out() Range   { return op.out }
func (op *SubVectors) Flags() Flag  { return HessianZero | ElementWise }

// SubVectorScalar computes outᵢ = aᵢ − s for a free vector and a free
// scalar outside the vector range.
type SubVectorScalar struct {
	in  RangeScalar
	out Range
}

func NewSubVectorScalar(a Range, s int, out Range) *SubVectorScalar {
	if a.Contains(s) {
		panicAliased("SubVectorScalar", s)
	}
	checkSameSize("SubVectorScalar", a, out)
	return &SubVectorScalar{in: RangeScalar{Left: a, Right: s}, out: out}
}

func (op *SubVectorScalar) Evaluate(v []float64) {
	s := v[op.in.Right]
	for i := 0; i < op.in.Left.Size(); i++ {
		v[op.out.At(i)] = v[op.in.Left.At(i)] - s
	}
}

type subVectorScalarDiff struct{ n int }

func (d subVectorScalarDiff) Partial(i, j int) float64 {
	switch j {
	case i:
		return 1
	case d.n:
		return -1
	}
	return 0
}

func (subVectorScalarDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *SubVectorScalar) LocalDiff(v []float64) LocalDiff {
	return subVectorScalarDiff{n: op.in.Left.Size()}
}
func (op *SubVectorScalar) In() Operands { return op.in }
func (op *SubVectorScalar) Out() Range   { return op.out }
func (op *SubVectorScalar) Flags() Flag  { return HessianZero | ElementWise }

// SubScalarVector computes outᵢ = s − aᵢ for a free scalar outside the
// vector range.
type SubScalarVector struct {
	in  ScalarRange
	out Range
}

func NewSubScalarVector(s int, a Range, out Range) *SubScalarVector {
	if a.Contains(s) {
		panicAliased("SubScalarVector", s)
	}
	checkSameSize("SubScalarVector", a, out)
	return &SubScalarVector{in: ScalarRange{Left: s, Right: a}, out: out}
}

func (op *SubScalarVector) Evaluate(v []float64) {
	s := v[op.in.Left]
	for i := 0; i < op.in.Right.Size(); i++ {
		v[op.out.At(i)] = s - v[op.in.Right.At(i)]
	}
}

type subScalarVectorDiff struct{}

func (subScalarVectorDiff) Partial(i, j int) float64 {
	switch j {
	case 0:
		return 1
	case i + 1:
		return -1
	}
	return 0
}

func (subScalarVectorDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *SubScalarVector) LocalDiff(v []float64) LocalDiff { return subScalarVectorDiff{} }
func (op *SubScalarVector) In() Operands                    { return op.in }
func (op *SubScalarVector) Out() Range                      { return op.out }
func (op *SubScalarVector) Flags() Flag                     { return HessianZero | ElementWise }
