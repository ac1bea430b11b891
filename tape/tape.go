// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tape provides the public API for the computational-graph core:
// the append-only operation log and the evaluation traces replayed over
// it.
//
//   - Tape: recorded once, shared by any number of traces
//   - Trace: values, adjoints and a sparse Hessian for one evaluation
//
// A trace's Play runs the forward sweep then the reverse edge-pushing
// sweep, after which the adjoints of the input slots hold the exact
// gradient and the sparse matrix holds the exact Hessian of the scalar
// result. Most callers record through the expr package rather than
// building operators by hand.
package tape

import (
	"github.com/born-ml/sparsegrad/internal/tape"
)

// Tape is the append-only operation log.
type Tape = tape.Tape

// Trace is one evaluation context bound to a tape.
type Trace = tape.Trace

// New returns an empty tape.
func New() *Tape {
	return tape.New()
}

// NewTrace allocates a trace for the tape with its declared initial input
// values.
func NewTrace(t *Tape) *Trace {
	return tape.NewTrace(t)
}
