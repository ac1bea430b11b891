// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "fmt"

// Map is an id-keyed registry of caller-owned tensors. Ids are handed out
// sequentially and stay stable for the life of the map.
type Map struct {
	tensors map[int]*Tensor
	next    int
}

// NewMap returns an empty registry.
func NewMap() *Map {
	return &Map{tensors: make(map[int]*Tensor)}
}

// Register stores t and returns its id.
func (m *Map) Register(t *Tensor) int {
	id := m.next
	m.next++
	m.tensors[id] = t
	return id
}

// Get returns the tensor registered under id, panicking on an unknown id.
func (m *Map) Get(id int) *Tensor {
	t, ok := m.tensors[id]
	if !ok {
		panic(fmt.Sprintf("tensor: unknown tensor id %d", id))
	}
	return t
}

// Has reports whether id is registered.
func (m *Map) Has(id int) bool {
	_, ok := m.tensors[id]
	return ok
}
