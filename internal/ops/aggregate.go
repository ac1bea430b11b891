// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops

// Sum reduces a free range to its element sum: out = Σ aᵢ.
type Sum struct {
	in  Range
	out Range
}

func NewSum(in, out Range) *Sum {
	checkOutSize("Sum", out, 1)
	return &Sum{in: in, out: out}
}

func (op *Sum) Evaluate(v []float64) {
	y := 0.0
	for i := 0; i < op.in.Size(); i++ {
		y += v[op.in.At(i)]
	}
	v[op.out.Begin] = y
}

func (op *Sum) LocalDiff(v []float64) LocalDiff { return addDiff{} }
func (op *Sum) In() Operands                    { return op.in }
func (op *Sum) Out() Range                      { return op.out }
func (op *Sum) Flags() Flag                     { return HessianZero }

// SumSquares reduces a free range to its sum of squares: out = Σ aᵢ².
type SumSquares struct {
	in  Range
	out Range
}

func NewSumSquares(in, out Range) *SumSquares {
	checkOutSize("SumSquares", out, 1)
	return &SumSquares{in: in, out: out}
}

func (op *SumSquares) Evaluate(v []float64) {
	y := 0.0
	for i := 0; i < op.in.Size(); i++ {
		x := v[op.in.At(i)]
		y += x * x
	}
	v[op.out.Begin] = y
}

type sumSquaresDiff struct {
	op *SumSquares
	v  []float64
}

func (d sumSquaresDiff) Partial(i, j int) float64 {
	return 2 * d.v[d.op.in.At(j)]
}

func (sumSquaresDiff) Partial2(i, j, k int) float64 {
	if j == k {
		return 2
	}
	return 0
}

func (op *SumSquares) LocalDiff(v []float64) LocalDiff { return sumSquaresDiff{op: op, v: v} }
func (op *SumSquares) In() Operands                    { return op.in }
func (op *SumSquares) Out() Range                      { return op.out }
func (op *SumSquares) Flags() Flag                     { return HessianOffDiagZero }

// Dot reduces two disjoint free ranges to their inner product:
// out = Σ aᵢ·bᵢ.
type Dot struct {
	in  RangePair
	out Range
}

func NewDot(a, b, out Range) *Dot {
	checkSameSize("Dot", a, b)
	checkDisjoint("Dot", a, b)
	checkOutSize("Dot", out, 1)
	return &Dot{in: RangePair{Left: a, Right: b}, out: out}
}

func (op *Dot) Evaluate(v []float64) {
	y := 0.0
	for i := 0; i < op.in.Left.Size(); i++ {
		y += v[op.in.Left.At(i)] * v[op.in.Right.At(i)]
	}
	v[op.out.Begin] = y
}

type dotDiff struct {
	op *Dot
	v  []float64
	n  int
}

func (d dotDiff) Partial(i, j int) float64 {
	if j < d.n {
		return d.v[d.op.in.Right.At(j)]
	}
	return d.v[d.op.in.Left.At(j-d.n)]
}

func (d dotDiff) Partial2(i, j, k int) float64 {
	if j-k == d.n || k-j == d.n {
		return 1
	}
	return 0
}

func (op *Dot) LocalDiff(v []float64) LocalDiff {
	return dotDiff{op: op, v: v, n: op.in.Left.Size()}
}
func (op *Dot) In() Operands { return op.in }
func (op *Dot) Out() Range   { return op.out }
func (op *Dot) Flags() Flag  { return HessianDiagZero }
