// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sparse implements the dynamic sparse symmetric matrix backing
// the Hessian accumulated during the reverse sweep.
//
// Storage is a map of rows, each row a map from column index to value.
// Every write at (i, j) is mirrored at (j, i), a value of exactly zero is
// never stored, and rows disappear as soon as their last entry is removed.
// The reverse sweep relies on Erase to purge a resolved slot in one call.
package sparse

// Row maps a column index to the stored value.
type Row map[int]float64

// Matrix is a square symmetric sparse matrix of float64 values.
//
// The zero value is not usable; construct with New.
type Matrix struct {
	width int
	rows  map[int]Row
}

// New returns an empty width x width symmetric matrix.
func New(width int) *Matrix {
	return &Matrix{
		width: width,
		rows:  make(map[int]Row),
	}
}

// Width returns the number of rows (= columns).
func (m *Matrix) Width() int { return m.width }

// SetWidth resizes the logical dimension without touching stored entries.
func (m *Matrix) SetWidth(width int) { m.width = width }

// Read returns the value at (i, j), or 0 if no entry is stored.
func (m *Matrix) Read(i, j int) float64 {
	row, ok := m.rows[i]
	if !ok {
		return 0
	}
	return row[j]
}

// Row returns row i, or nil if the row holds no entry. The returned map is
// the live storage: callers must not mutate it directly, and must not hold
// it across calls to Set, Add or Erase.
func (m *Matrix) Row(i int) Row {
	return m.rows[i]
}

// Add accumulates x into (i, j) and its mirror (j, i). Adding zero is a
// no-op; an entry that reaches exactly zero stays stored until assigned
// zero through Set or removed through Erase.
func (m *Matrix) Add(i, j int, x float64) {
	if x == 0 {
		return
	}
	m.insert(i, j, m.read(i, j)+x)
}

// Set assigns x to (i, j) and its mirror (j, i). Assigning exactly zero
// removes the entry.
func (m *Matrix) Set(i, j int, x float64) {
	if x == 0 {
		m.remove(i, j)
		return
	}
	m.insert(i, j, x)
}

func (m *Matrix) read(i, j int) float64 {
	if row, ok := m.rows[i]; ok {
		return row[j]
	}
	return 0
}

func (m *Matrix) insert(i, j int, x float64) {
	m.rowFor(i)[j] = x
	if i != j {
		m.rowFor(j)[i] = x
	}
}

func (m *Matrix) rowFor(i int) Row {
	row, ok := m.rows[i]
	if !ok {
		row = make(Row)
		m.rows[i] = row
	}
	return row
}

func (m *Matrix) remove(i, j int) {
	row, ok := m.rows[i]
	if !ok {
		return
	}
	if _, ok := row[j]; !ok {
		return
	}
	delete(row, j)
	if len(row) == 0 {
		delete(m.rows, i)
	}
	if i == j {
		return
	}
	mirror := m.rows[j]
	delete(mirror, i)
	if len(mirror) == 0 {
		delete(m.rows, j)
	}
}

// Erase removes row i and every mirrored entry (j, i), shrinking away any
// row emptied in the process.
func (m *Matrix) Erase(i int) {
	row, ok := m.rows[i]
	if !ok {
		return
	}
	for j := range row {
		if j == i {
			continue // Row i is deleted wholesale below.
		}
		mirror := m.rows[j]
		delete(mirror, i)
		if len(mirror) == 0 {
			delete(m.rows, j)
		}
	}
	delete(m.rows, i)
}

// Clear removes every stored entry.
func (m *Matrix) Clear() {
	m.rows = make(map[int]Row)
}

// NonZero returns the number of stored entries, mirrored entries counted
// separately.
func (m *Matrix) NonZero() int {
	n := 0
	for _, row := range m.rows {
		n += len(row)
	}
	return n
}

// Triplet is one stored entry in (row, col, value) form.
type Triplet struct {
	Row, Col int
	Value    float64
}

// Triplets returns every stored entry, mirrored entries included. Order is
// unspecified.
func (m *Matrix) Triplets() []Triplet {
	out := make([]Triplet, 0, m.NonZero())
	for i, row := range m.rows {
		for j, x := range row {
			out = append(out, Triplet{Row: i, Col: j, Value: x})
		}
	}
	return out
}

// Dense materializes the matrix as a row-major width*width slice, for
// diagnostics.
func (m *Matrix) Dense() []float64 {
	out := make([]float64, m.width*m.width)
	for i, row := range m.rows {
		for j, x := range row {
			out[i*m.width+j] = x
		}
	}
	return out
}
