// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops

// MulScalars computes out = a·b for two distinct free scalars.
//
// ∂out/∂a = b, ∂out/∂b = a, the mixed second partial is constant 1 and the
// diagonal vanishes. Construction rejects a == b: use Square instead.
type MulScalars struct {
	in  Pair
	out Range
}

func NewMulScalars(a, b int, out Range) *MulScalars {
	checkDistinct("MulScalars", a, b)
	checkOutSize("MulScalars", out, 1)
	return &MulScalars{in: Pair{Left: a, Right: b}, out: out}
}

func (op *MulScalars) Evaluate(v []float64) {
	v[op.out.Begin] = v[op.in.Left] * v[op.in.Right]
}

type mulScalarsDiff struct{ a, b float64 }

func (d mulScalarsDiff) Partial(i, j int) float64 {
	if j == 0 {
		return d.b
	}
	return d.a
}

func (mulScalarsDiff) Partial2(i, j, k int) float64 {
	if j != k {
		return 1
	}
	return 0
}

func (op *MulScalars) LocalDiff(v []float64) LocalDiff {
	return mulScalarsDiff{a: v[op.in.Left], b: v[op.in.Right]}
}
func (op *MulScalars) In() Operands { return op.in }
func (op *MulScalars) Out() Range   { return op.out }
func (op *MulScalars) Flags() Flag  { return HessianDiagZero | HessianOffDiagOne }

// MulConst computes outᵢ = c·aᵢ element-wise for a fixed scalar c.
type MulConst struct {
	in  Range
	c   float64
	out Range
}

func NewMulConst(in Range, c float64, out Range) *MulConst {
	checkSameSize("MulConst", in, out)
	return &MulConst{in: in, c: c, out: out}
}

func (op *MulConst) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = op.c * v[op.in.At(i)]
	}
}

type mulConstDiff struct{ c float64 }

func (d mulConstDiff) Partial(i, j int) float64 {
	if j == i {
		return d.c
	}
	return 0
}

func (mulConstDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *MulConst) LocalDiff(v []float64) LocalDiff { return mulConstDiff{c: op.c} }
func (op *MulConst) In() Operands                    { return op.in }
func (op *MulConst) Out() Range                      { return op.out }
func (op *MulConst) Flags() Flag                     { return HessianZero | ElementWise }

// MulConstVector computes outᵢ = cᵢ·aᵢ for a fixed vector c.
type MulConstVector struct {
	in  Range
	c   []float64
	out Range
}

func NewMulConstVector(in Range, c []float64, out Range) *MulConstVector {
	if in.Size() != len(c) {
		panicSize("MulConstVector", in.Size(), len(c))
	}
	checkSameSize("MulConstVector", in, out)
	return &MulConstVector{in: in, c: c, out: out}
}

func (op *MulConstVector) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = op.c[i] * v[op.in.At(i)]
	}
}

type mulConstVectorDiff struct{ c []float64 }

func (d mulConstVectorDiff) Partial(i, j int) float64 {
	if j == i {
		return d.c[i]
	}
	return 0
}

func (mulConstVectorDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *MulConstVector) LocalDiff(v []float64) LocalDiff { return mulConstVectorDiff{c: op.c} }
func (op *MulConstVector) In() Operands                    { return op.in }
func (op *MulConstVector) Out() Range                      { return op.out }
func (op *MulConstVector) Flags() Flag                     { return HessianZero | ElementWise }

// MulVectors computes outᵢ = aᵢ·bᵢ for two disjoint free ranges.
type MulVectors struct {
	in  RangePair
	out Range
}

func NewMulVectors(a, b, out Range) *MulVectors {
	checkSameSize("MulVectors", a, b)
	checkDisjoint("MulVectors", a, b)
	checkSameSize("MulVectors", a, out)
	return &MulVectors{in: RangePair{Left: a, Right: b}, out: out}
}

func (op *MulVectors) Evaluate(v []float64) {
	for i := 0; i < op.in.Left.Size(); i++ {
		v[op.out.At(i)] = v[op.in.Left.At(i)] * v[op.in.Right.At(i)]
	}
}

type mulVectorsDiff struct {
	op *MulVectors
	v  []float64
	n  int
}

func (d mulVectorsDiff) Partial(i, j int) float64 {
	switch j {
	case i:
		return d.v[d.op.in.Right.At(i)]
	case i + d.n:
		return d.v[d.op.in.Left.At(i)]
	}
	return 0
}

func (d mulVectorsDiff) Partial2(i, j, k int) float64 {
	if j != k && (j == i && k == i+d.n || k == i && j == i+d.n) {
		return 1
	}
	return 0
}

func (op *MulVectors) LocalDiff(v []float64) LocalDiff {
	return mulVectorsDiff{op: op, v: v, n: op.in.Left.Size()}
}
func (op *MulVectors) In() Operands { return op.in }
func (op *MulVectors) Out() Range   { return op.out }
func (op *MulVectors) Flags() Flag {
	return HessianDiagZero | HessianOffDiagOne | ElementWise
}

// MulVectorScalar computes outᵢ = aᵢ·s for a free vector and a free scalar
// outside the vector range.
type MulVectorScalar struct {
	in  RangeScalar
	out Range
}

func NewMulVectorScalar(a Range, s int, out Range) *MulVectorScalar {
	if a.Contains(s) {
		panicAliased("MulVectorScalar", s)
	}
	checkSameSize("MulVectorScalar", a, out)
	return &MulVectorScalar{in: RangeScalar{Left: a, Right: s}, out: out}
}

func (op *MulVectorScalar) Evaluate(v []float64) {
	s := v[op.in.Right]
	for i := 0; i < op.in.Left.Size(); i++ {
		v[op.out.At(i)] = v[op.in.Left.At(i)] * s
	}
}

type mulVectorScalarDiff struct {
	op *MulVectorScalar
	v  []float64
	n  int
}

func (d mulVectorScalarDiff) Partial(i, j int) float64 {
	switch j {
	case i:
		return d.v[d.op.in.Right]
	case d.n:
		return d.v[d.op.in.Left.At(i)]
	}
	return 0
}

func (d mulVectorScalarDiff) Partial2(i, j, k int) float64 {
	if j != k && (j == i && k == d.n || k == i && j == d.n) {
		return 1
	}
	return 0
}

func (op *MulVectorScalar) LocalDiff(v []float64) LocalDiff {
	return mulVectorScalarDiff{op: op, v: v, n: op.in.Left.Size()}
}
func (op *MulVectorScalar) In() Operands { return op.in }
func (op *MulVectorScalar) Out() Range   { return op.out }
func (op *MulVectorScalar) Flags() Flag {
	return HessianDiagZero | HessianOffDiagOne | ElementWise
}

// Square computes outᵢ = aᵢ². Self variant of MulScalars/MulVectors for
// aliased operands.
type Square struct {
	in  Range
	out Range
}

func NewSquare(in, out Range) *Square {
	checkSameSize("Square", in, out)
	return &Square{in: in, out: out}
}

func (op *Square) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		x := v[op.in.At(i)]
		v[op.out.At(i)] = x * x
	}
}

type squareDiff struct {
	op *Square
	v  []float64
}

func (d squareDiff) Partial(i, j int) float64 {
	if j == i {
		return 2 * d.v[d.op.in.At(i)]
	}
	return 0
}

func (squareDiff) Partial2(i, j, k int) float64 {
	if j == i && k == i {
		return 2
	}
	return 0
}

func (op *Square) LocalDiff(v []float64) LocalDiff { return squareDiff{op: op, v: v} }
func (op *Square) In() Operands                    { return op.in }
func (op *Square) Out() Range                      { return op.out }
func (op *Square) Flags() Flag                     { return HessianOffDiagZero | ElementWise }
