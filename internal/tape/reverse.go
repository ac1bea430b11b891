// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tape

import (
	"fmt"

	"github.com/born-ml/sparsegrad/internal/ops"
)

// The reverse sweep follows the Basic Reverse Mode Hessian algorithm of
// Mu Wang, Assefaw Gebremedhin & Alex Pothen, "Capitalizing on live
// variables: new algorithms for efficient Hessian computation via
// automatic differentiation", Math. Prog. Comp. (2016) 8:393-433
// (DOI 10.1007/s12532-016-0100-3), in its edge-pushing formulation.
//
// For each output slot i of each operator, taken in reverse recording
// order, with w = adjoint(i) and local partials d(i,j):
//
//	adjoint(j) += d(i,j)·w                          adjoint update
//	H(m,k)     += d(i,k)·H(i,m)     for m != i      pushing part 1
//	H(j,k)     += d(i,j)·d(i,k)·H(i,i)              pushing part 2
//	H(j,k)     += d²(i,j,k)·w                       creating part
//
// followed by erasure of row/column i, whose contribution is now fully
// redistributed onto the operands. Strict reverse-topological order plus
// the purge bound the live Hessian to unresolved slots only.

// PlayReverse zeroes the adjoints, seeds the result adjoint with 1, clears
// the Hessian and propagates gradient and Hessian through the recorded
// operators in reverse order.
func (tr *Trace) PlayReverse() *Trace {
	for i := range tr.adjoints {
		tr.adjoints[i] = 0
	}
	tr.adjoints[len(tr.adjoints)-1] = 1
	tr.hessian.Clear()

	log := tr.tape.Ops()
	for n := len(log) - 1; n >= 0; n-- {
		tr.reverseOp(log[n])
	}
	return tr
}

func (tr *Trace) reverseOp(op ops.Operator) {
	in := op.In()
	out := op.Out()
	flags := op.Flags()
	local := op.LocalDiff(tr.values)
	h := tr.hessian

	for iLocal := 0; iLocal < out.Size(); iLocal++ {
		i := out.At(iLocal)
		w := tr.adjoints[i]
		locs := tr.operandLocals(in, flags, iLocal)

		// Adjoint update.
		if w != 0 {
			for _, jl := range locs {
				d := local.Partial(iLocal, jl)
				if d == 0 {
					continue
				}
				tr.adjoints[in.At(jl)] += d * w
			}
		}

		// Pushing part 1: a live entry H(i,m) implies m is unresolved;
		// redistribute it onto every operand k. Operands strictly precede
		// i, so no write below touches row i while it is iterated.
		row := h.Row(i)
		for m, him := range row {
			if m == i {
				continue
			}
			for _, kl := range locs {
				d := local.Partial(iLocal, kl)
				if d == 0 {
					continue
				}
				h.Add(m, in.At(kl), d*him)
			}
		}

		// Pushing part 2: the diagonal entry H(i,i) spreads over every
		// unordered operand pair, including j == k.
		if hii, ok := row[i]; ok {
			for a, jl := range locs {
				dj := local.Partial(iLocal, jl)
				if dj == 0 {
					continue
				}
				for _, kl := range locs[a:] {
					dk := local.Partial(iLocal, kl)
					if dk == 0 {
						continue
					}
					h.Add(in.At(jl), in.At(kl), dj*dk*hii)
				}
			}
		}

		// Creating part: the operator's own local curvature, weighted by
		// the adjoint. Structural flags only skip work that would add 0.
		if w != 0 {
			if flags&ops.HessianDiagZero == 0 {
				for _, jl := range locs {
					d2 := local.Partial2(iLocal, jl, jl)
					if d2 != 0 {
						h.Add(in.At(jl), in.At(jl), d2*w)
					}
				}
			}
			if flags&ops.HessianOffDiagZero == 0 {
				for a, jl := range locs {
					for _, kl := range locs[a+1:] {
						d2 := local.Partial2(iLocal, jl, kl)
						if d2 != 0 {
							h.Add(in.At(jl), in.At(kl), d2*w)
						}
					}
				}
			}
		}

		// Housekeeping: row i is resolved, keeping it would both grow the
		// structure unboundedly and go stale once operands update.
		h.Erase(i)
	}
}

// operandLocals returns the local operand indices relevant to output
// iLocal. Element-wise operators restrict the set to the same-index vector
// element plus any scalar operand; everything else considers all operands.
func (tr *Trace) operandLocals(in ops.Operands, flags ops.Flag, iLocal int) []int {
	tr.operands = tr.operands[:0]
	if flags&ops.ElementWise != 0 {
		switch p := in.(type) {
		case ops.Range:
			tr.operands = append(tr.operands, iLocal)
		case ops.RangePair:
			tr.operands = append(tr.operands, iLocal, iLocal+p.Left.Size())
		case ops.RangeScalar:
			tr.operands = append(tr.operands, iLocal, p.Left.Size())
		case ops.ScalarRange:
			tr.operands = append(tr.operands, 0, iLocal+1)
		default:
			panic(fmt.Sprintf("tape: element-wise operator with operand set %T", in))
		}
		return tr.operands
	}
	for j := 0; j < in.Size(); j++ {
		tr.operands = append(tr.operands, j)
	}
	return tr.operands
}
