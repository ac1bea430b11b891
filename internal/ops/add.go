// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops

// AddScalars computes out = a + b for two distinct free scalars.
//
// ∂out/∂a = ∂out/∂b = 1, all second partials vanish. Construction rejects
// a == b: adding a slot to itself must use Double instead, since the
// operand indexing scheme assumes distinct slots.
type AddScalars struct {
	in  Pair
	out Range
}

func NewAddScalars(a, b int, out Range) *AddScalars {
	checkDistinct("AddScalars", a, b)
	checkOutSize("AddScalars", out, 1)
	return &AddScalars{in: Pair{Left: a, Right: b}, out: out}
}

func (op *AddScalars) Evaluate(v []float64) {
	v[op.out.Begin] = v[op.in.Left] + v[op.in.Right]
}

type addDiff struct{}

func (addDiff) Partial(i, j int) float64     { return 1 }
func (addDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *AddScalars) LocalDiff(v []float64) LocalDiff { return addDiff{} }
func (op *AddScalars) In() Operands                    { return op.in }
func (op *AddScalars) Out() Range                      { return op.out }
func (op *AddScalars) Flags() Flag                     { return HessianZero }

// AddConst computes outᵢ = aᵢ + c element-wise for a fixed scalar c. With a
// single-slot range this is the scalar-plus-constant operator.
type AddConst struct {
	in  Range
	c   float64
	out Range
}

func NewAddConst(in Range, c float64, out Range) *AddConst {
	checkSameSize("AddConst", in, out)
	return &AddConst{in: in, c: c, out: out}
}

func (op *AddConst) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = v[op.in.At(i)] + op.c
	}
}

func (op *AddConst) LocalDiff(v []float64) LocalDiff { return identityDiff{} }
func (op *AddConst) In() Operands                    { return op.in }
func (op *AddConst) Out() Range                      { return op.out }
func (op *AddConst) Flags() Flag                     { return HessianZero | ElementWise }

// AddConstVector computes outᵢ = aᵢ + cᵢ for a fixed vector c.
type AddConstVector struct {
	in  Range
	c   []float64
	out Range
}

func NewAddConstVector(in Range, c []float64, out Range) *AddConstVector {
	if in.Size() != len(c) {
		panicSize("AddConstVector", in.Size(), len(c))
	}
	checkSameSize("AddConstVector", in, out)
	return &AddConstVector{in: in, c: c, out: out}
}

func (op *AddConstVector) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = v[op.in.At(i)] + op.c[i]
	}
}

func (op *AddConstVector) LocalDiff(v []float64) LocalDiff { return identityDiff{} }
func (op *AddConstVector) In() Operands                    { return op.in }
func (op *AddConstVector) Out() Range                      { return op.out }
func (op *AddConstVector) Flags() Flag                     { return HessianZero | ElementWise }

// AddVectors computes outᵢ = aᵢ + bᵢ for two disjoint free ranges.
type AddVectors struct {
	in  RangePair
	out Range
}

func NewAddVectors(a, b, out Range) *AddVectors {
	checkSameSize("AddVectors", a, b)
	checkDisjoint("AddVectors", a, b)
	checkSameSize("AddVectors", a, out)
	return &AddVectors{in: RangePair{Left: a, Right: b}, out: out}
}

func (op *AddVectors) Evaluate(v []float64) {
	for i := 0; i < op.in.Left.Size(); i++ {
		v[op.out.At(i)] = v[op.in.Left.At(i)] + v[op.in.Right.At(i)]
	}
}

type addVectorsDiff struct{ n int }

func (d addVectorsDiff) Partial(i, j int) float64 {
	if j == i || j == i+d.n {
		return 1
	}
	return 0
}

func (addVectorsDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *AddVectors) LocalDiff(v []float64) LocalDiff {
	return addVectorsDiff{n: op.in.Left.Size()}
}
func (op *AddVectors) In() Operands { return op.in }
func (op *AddVectors) Out() Range   { return op.out }
func (op *AddVectors) Flags() Flag  { return HessianZero | ElementWise }

// AddVectorScalar computes outᵢ = aᵢ + s for a free vector and a free
// scalar outside the vector range.
type AddVectorScalar struct {
	in  RangeScalar
	out Range
}

func NewAddVectorScalar(a Range, s int, out Range) *AddVectorScalar {
	if a.Contains(s) {
		panicAliased("AddVectorScalar", s)
	}
	checkSameSize("AddVectorScalar", a, out)
	return &AddVectorScalar{in: RangeScalar{Left: a, Right: s}, out: out}
}

func (op *AddVectorScalar) Evaluate(v []float64) {
	s := v[op.in.Right]
	for i := 0; i < op.in.Left.Size(); i++ {
		v[op.out.At(i)] = v[op.in.Left.At(i)] + s
	}
}

type addVectorScalarDiff struct{ n int }

func (d addVectorScalarDiff) Partial(i, j int) float64 {
	if j == i || j == d.n {
		return 1
	}
	return 0
}

func (addVectorScalarDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *AddVectorScalar) LocalDiff(v []float64) LocalDiff {
	return addVectorScalarDiff{n: op.in.Left.Size()}
}
func (op *AddVectorScalar) In() Operands { return op.in }
func (op *AddVectorScalar) Out() Range   { return op.out }
func (op *AddVectorScalar) Flags() Flag  { return HessianZero | ElementWise }

// Double computes outᵢ = 2·aᵢ. Self variant of AddScalars/AddVectors for
// aliased operands.
type Double struct {
	in  Range
	out Range
}

func NewDouble(in, out Range) *Double {
	checkSameSize("Double", in, out)
	return &Double{in: in, out: out}
}

func (op *Double) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = 2 * v[op.in.At(i)]
	}
}

type doubleDiff struct{}

func (doubleDiff) Partial(i, j int) float64 {
	if j == i {
		return 2
	}
	return 0
}

func (doubleDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *Double) LocalDiff(v []float64) LocalDiff { return doubleDiff{} }
func (op *Double) In() Operands                    { return op.in }
func (op *Double) Out() Range                      { return op.out }
func (op *Double) Flags() Flag                     { return HessianZero | ElementWise }
