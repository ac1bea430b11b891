// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tape

import (
	"github.com/born-ml/sparsegrad/internal/sparse"
)

// Trace is one evaluation context bound to a tape: function values and
// adjoints for every slot, and a sparse symmetric Hessian over the free
// input block. Several traces may share one tape; each owns its storage.
type Trace struct {
	tape     *Tape
	values   []float64
	adjoints []float64
	hessian  *sparse.Matrix

	// Scratch for local operand enumeration during the reverse sweep.
	operands []int
}

// NewTrace allocates a trace for the tape and copies the declared initial
// input values.
func NewTrace(t *Tape) *Trace {
	tr := &Trace{
		tape:     t,
		values:   make([]float64, t.TraceSize()),
		adjoints: make([]float64, t.TraceSize()),
		hessian:  sparse.New(t.InputSize()),
	}
	copy(tr.values, t.InitialValues())
	return tr
}

// Tape returns the bound tape.
func (tr *Trace) Tape() *Tape { return tr.tape }

// Values returns the live slot value vector.
func (tr *Trace) Values() []float64 { return tr.values }

// Adjoints returns the live adjoint vector. After PlayReverse the first
// InputSize entries hold the gradient.
func (tr *Trace) Adjoints() []float64 { return tr.adjoints }

// Hessian returns the sparse Hessian. After PlayReverse every stored entry
// has both indices below InputSize.
func (tr *Trace) Hessian() *sparse.Matrix { return tr.hessian }

// Result returns the last trace value, the scalar function result.
func (tr *Trace) Result() float64 { return tr.values[len(tr.values)-1] }

// Partial returns the first-order partial of the result with respect to
// slot j, valid after PlayReverse.
func (tr *Trace) Partial(j int) float64 { return tr.adjoints[j] }

// Partial2 returns the second-order partial with respect to slots j and k,
// valid after PlayReverse.
func (tr *Trace) Partial2(j, k int) float64 { return tr.hessian.Read(j, k) }

// PlayForward evaluates every recorded operator in order, filling the
// value vector.
func (tr *Trace) PlayForward() *Trace {
	for _, op := range tr.tape.Ops() {
		op.Evaluate(tr.values)
	}
	return tr
}

// Play runs the forward then the reverse sweep.
func (tr *Trace) Play() *Trace {
	return tr.PlayForward().PlayReverse()
}
