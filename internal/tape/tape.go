// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tape implements the computational-graph core: the Tape, an
// append-only log of recorded operators, and the Trace, one evaluation
// context holding values, adjoints and a sparse Hessian over a tape.
//
// A tape is recorded once and may then back any number of traces. Free
// inputs occupy the first InputSize slots of the shared address space;
// every recorded operator appends its output slots after them. Once the
// first operator has been recorded the input section is sealed: declaring
// another free input is a programmer error.
package tape

import (
	"fmt"

	"github.com/born-ml/sparsegrad/internal/ops"
	"github.com/born-ml/sparsegrad/internal/tensor"
)

// Tape is the append-only operation log. The zero value is not usable;
// construct with New.
type Tape struct {
	inputSize int
	traceSize int
	log       []ops.Operator

	// Initial values of the free inputs, copied into each new Trace.
	initialValues []float64

	// Bidirectional slot <-> external tensor id correlation. Non-owning;
	// synchronization is explicit through WriteTensorsToTrace and
	// ReadTensorsFromTrace.
	toExternal map[int]int
	toSlot     map[int]int
}

// New returns an empty tape.
func New() *Tape {
	return &Tape{
		log:        make([]ops.Operator, 0, 64),
		toExternal: make(map[int]int),
		toSlot:     make(map[int]int),
	}
}

// InputSize returns the number of free input slots.
func (t *Tape) InputSize() int { return t.inputSize }

// TraceSize returns the total slot count: inputs plus all recorded
// operator outputs.
func (t *Tape) TraceSize() int { return t.traceSize }

// Ops returns the recorded operator log. Callers must not mutate it.
func (t *Tape) Ops() []ops.Operator { return t.log }

// InitialValues returns the declared initial values of the free inputs.
func (t *Tape) InitialValues() []float64 { return t.initialValues }

// Input declares a free input of len(values) slots with the given initial
// values and returns its first slot. Declaring an input after any operator
// has been recorded is a programmer error and panics.
func (t *Tape) Input(values ...float64) int {
	if len(t.log) > 0 {
		panic("tape: attempt to declare an input after recording started")
	}
	if len(values) == 0 {
		panic("tape: attempt to declare an empty input")
	}
	begin := t.inputSize
	t.inputSize += len(values)
	t.traceSize += len(values)
	t.initialValues = append(t.initialValues, values...)
	return begin
}

// Alloc reserves size output slots at the end of the trace and returns
// them as a range. Record must be called next with an operator writing
// exactly this range.
func (t *Tape) Alloc(size int) ops.Range {
	return ops.Range{Begin: t.traceSize, End: t.traceSize + size}
}

// Record appends an operator to the log. The operator's output range must
// sit exactly at the current end of the trace; anything else is a
// programmer error and panics. Returns the first output slot.
func (t *Tape) Record(op ops.Operator) int {
	out := op.Out()
	if out.Begin != t.traceSize {
		panic(fmt.Sprintf("tape: operator output begins at slot %d, want %d", out.Begin, t.traceSize))
	}
	if out.Size() <= 0 {
		panic("tape: operator output range is empty")
	}
	t.log = append(t.log, op)
	t.traceSize = out.End
	return out.Begin
}

// MapExternal correlates a tape slot with an external tensor id. Both
// directions are kept; re-mapping overwrites.
func (t *Tape) MapExternal(slot, externalID int) {
	t.toExternal[slot] = externalID
	t.toSlot[externalID] = slot
}

// ExternalID returns the external id mapped to slot, or -1.
func (t *Tape) ExternalID(slot int) int {
	if id, ok := t.toExternal[slot]; ok {
		return id
	}
	return -1
}

// Slot returns the tape slot mapped to externalID, or -1.
func (t *Tape) Slot(externalID int) int {
	if s, ok := t.toSlot[externalID]; ok {
		return s
	}
	return -1
}

// WriteTensorsToTrace copies every mapped external tensor from m into the
// trace values at its correlated slot.
func (t *Tape) WriteTensorsToTrace(tr *Trace, m *tensor.Map) {
	for slot, id := range t.toExternal {
		if !m.Has(id) {
			continue
		}
		copy(tr.values[slot:], m.Get(id).Values())
	}
}

// ReadTensorsFromTrace copies trace values back into every mapped external
// tensor of m.
func (t *Tape) ReadTensorsFromTrace(tr *Trace, m *tensor.Map) {
	for slot, id := range t.toExternal {
		if !m.Has(id) {
			continue
		}
		vals := m.Get(id).Values()
		copy(vals, tr.values[slot:slot+len(vals)])
	}
}
