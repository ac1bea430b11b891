// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops defines the differentiable operator catalog recorded onto a
// tape.
//
// Each operator is an immutable record of input references (slots into a
// trace, or embedded constants), an output slot range, and the local
// derivative rules. The contract has two halves:
//
//   - Evaluate writes the output slot(s) as a pure function of the free
//     inputs and embedded constants.
//   - LocalDiff returns a view exposing Partial(i, j) = ∂outᵢ/∂operandⱼ and
//     Partial2(i, j, k) = ∂²outᵢ/∂operandⱼ∂operandₖ, with indices local to
//     the operator (0-based outputs and operands).
//
// Structural flags declare sparsity known at construction time. They are
// pure performance short-circuits for the reverse sweep: clearing every
// flag only costs extra zero-valued work, never changes a result.
//
// Operand ranges must not alias unless the operator is an explicit self
// variant (Double, Square, SelfPow). Constructors panic on aliased
// operands; the expression builder routes aliased calls to the self
// variants before construction.
package ops

import "fmt"

// Flag is a bit set of structural sparsity tags.
type Flag uint8

const (
	// HessianDiagZero marks ∂²outᵢ/∂operandⱼ² == 0 for all i, j.
	HessianDiagZero Flag = 1 << iota
	// HessianOffDiagZero marks ∂²outᵢ/∂operandⱼ∂operandₖ == 0 for j != k.
	HessianOffDiagZero
	// HessianOffDiagOne marks the mixed second partial as constant 1.
	HessianOffDiagOne
	// ElementWise marks operators whose output element i depends only on
	// scalar operands and the i-th element of each vector operand.
	ElementWise
)

// HessianZero marks a fully vanishing local Hessian.
const HessianZero = HessianDiagZero | HessianOffDiagZero

// Range is a contiguous slot interval [Begin, End).
type Range struct {
	Begin, End int
}

// Size returns the number of slots in the range.
func (r Range) Size() int { return r.End - r.Begin }

// At returns the i-th slot of the range.
func (r Range) At(i int) int { return r.Begin + i }

// Overlaps reports whether two ranges share at least one slot.
func (r Range) Overlaps(o Range) bool {
	return r.Begin < o.End && o.Begin < r.End
}

// Contains reports whether slot i lies within the range.
func (r Range) Contains(i int) bool { return i >= r.Begin && i < r.End }

// Scalar returns a single-slot range at i.
func Scalar(i int) Range { return Range{Begin: i, End: i + 1} }

// Operands enumerates the free operand slots of an operator. Local operand
// index k maps to the global trace slot At(k).
type Operands interface {
	// Size returns the number of free operands.
	Size() int
	// At returns the trace slot of local operand i.
	At(i int) int
}

// Pair is a two-scalar operand set (left, right).
type Pair struct {
	Left, Right int
}

func (p Pair) Size() int { return 2 }

func (p Pair) At(i int) int {
	if i == 0 {
		return p.Left
	}
	return p.Right
}

// RangePair is a vector/vector operand set. Local operands enumerate the
// left range first, then the right.
type RangePair struct {
	Left, Right Range
}

func (p RangePair) Size() int { return p.Left.Size() + p.Right.Size() }

func (p RangePair) At(i int) int {
	if n := p.Left.Size(); i < n {
		return p.Left.At(i)
	} else {
		return p.Right.At(i - n)
	}
}

// RangeScalar is a vector/scalar operand set; the scalar is the last local
// operand.
type RangeScalar struct {
	Left  Range
	Right int
}

func (p RangeScalar) Size() int { return p.Left.Size() + 1 }

func (p RangeScalar) At(i int) int {
	if i < p.Left.Size() {
		return p.Left.At(i)
	}
	return p.Right
}

// ScalarRange is a scalar/vector operand set; the scalar is local operand 0.
type ScalarRange struct {
	Left  int
	Right Range
}

func (p ScalarRange) Size() int { return 1 + p.Right.Size() }

func (p ScalarRange) At(i int) int {
	if i == 0 {
		return p.Left
	}
	return p.Right.At(i - 1)
}

// LocalDiff exposes first and second partial derivatives of an operator's
// outputs with respect to its free operands, all indices local.
type LocalDiff interface {
	Partial(i, j int) float64
	Partial2(i, j, k int) float64
}

// Operator is one recorded node of the computational graph. Implementations
// are immutable once constructed.
type Operator interface {
	// Evaluate writes the output slots of values from its operand slots
	// and embedded constants.
	Evaluate(values []float64)
	// LocalDiff returns the local derivative view at the given values.
	LocalDiff(values []float64) LocalDiff
	// In returns the free operand set.
	In() Operands
	// Out returns the output slot range.
	Out() Range
	// Flags returns the structural sparsity tags.
	Flags() Flag
}

func panicAliased(op string, slot int) {
	panic(fmt.Sprintf("ops: %s: operands alias slot %d, use the self variant", op, slot))
}

func panicOverlap(op string, a, b Range) {
	panic(fmt.Sprintf("ops: %s: operand ranges [%d,%d) and [%d,%d) overlap", op, a.Begin, a.End, b.Begin, b.End))
}

func panicSize(op string, a, b int) {
	panic(fmt.Sprintf("ops: %s: operand sizes %d and %d differ", op, a, b))
}

func checkDistinct(op string, a, b int) {
	if a == b {
		panicAliased(op, a)
	}
}

func checkDisjoint(op string, a, b Range) {
	if a.Overlaps(b) {
		panicOverlap(op, a, b)
	}
}

func checkSameSize(op string, a, b Range) {
	if a.Size() != b.Size() {
		panicSize(op, a.Size(), b.Size())
	}
}

func checkOutSize(op string, out Range, want int) {
	if out.Size() != want {
		panic(fmt.Sprintf("ops: %s: output range size %d, want %d", op, out.Size(), want))
	}
}
