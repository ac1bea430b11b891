// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops

// Identity copies a slot range verbatim: outᵢ = aᵢ.
//
// Recorded by the expression builder for element and sub-tensor access,
// where a fresh handle must point at its own output slots.
type Identity struct {
	in  Range
	out Range
}

// NewIdentity creates an identity copy of in into out.
func NewIdentity(in, out Range) *Identity {
	checkSameSize("Identity", in, out)
	return &Identity{in: in, out: out}
}

func (op *Identity) Evaluate(v []float64) {
	for i := 0; i < op.in.Size(); i++ {
		v[op.out.At(i)] = v[op.in.At(i)]
	}
}

type identityDiff struct{}

func (identityDiff) Partial(i, j int) float64 {
	if j == i {
		return 1
	}
	return 0
}

func (identityDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *Identity) LocalDiff(v []float64) LocalDiff { return identityDiff{} }
func (op *Identity) In() Operands                    { return op.in }
func (op *Identity) Out() Range                      { return op.out }
func (op *Identity) Flags() Flag                     { return HessianZero | ElementWise }

// Broadcast fans a free scalar out to every slot of the output range:
// outᵢ = s. Its single operand rules out the element-wise shortcut.
type Broadcast struct {
	in  int
	out Range
}

// NewBroadcast creates a broadcast of scalar slot s into out.
func NewBroadcast(s int, out Range) *Broadcast {
	return &Broadcast{in: s, out: out}
}

func (op *Broadcast) Evaluate(v []float64) {
	s := v[op.in]
	for i := 0; i < op.out.Size(); i++ {
		v[op.out.At(i)] = s
	}
}

type broadcastDiff struct{}

func (broadcastDiff) Partial(i, j int) float64     { return 1 }
func (broadcastDiff) Partial2(i, j, k int) float64 { return 0 }

func (op *Broadcast) LocalDiff(v []float64) LocalDiff { return broadcastDiff{} }
func (op *Broadcast) In() Operands                    { return Scalar(op.in) }
func (op *Broadcast) Out() Range                      { return op.out }
func (op *Broadcast) Flags() Flag                     { return HessianZero }
