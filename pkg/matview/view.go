// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package matview

// View is a non-owning, column-major window into externally owned storage.
// Element (i, j) resolves to base[off+i+j*ld]. A View's identity (base, ld,
// shape) is immutable once constructed; only CopyFrom mutates the elements
// it addresses. Lifetime is strictly nested inside the referent's lifetime —
// the caller must keep the backing slice alive for as long as the View is in
// use.
type View[T Scalar] struct {
	base []T
	off  int
	ld   int
	rows int
	cols int
}

// NewFromSlice builds a view directly over base with the given leading
// dimension. ld must be >= rows and the addressed range must fit base.
func NewFromSlice[T Scalar](base []T, rows, cols, ld int) View[T] {
	mustValidShape(rows, cols, ld)
	if (rows-1)+(cols-1)*ld >= len(base) && rows > 0 && cols > 0 {
		panic("matview: view does not fit backing slice")
	}
	return View[T]{base: base, ld: ld, rows: rows, cols: cols}
}

// NewSquareFromSlice builds a square view with ld == n.
func NewSquareFromSlice[T Scalar](base []T, n int) View[T] {
	return NewFromSlice(base, n, n, n)
}

// FromMatrix builds a view over the whole of m.
func FromMatrix[T Scalar](m *Matrix[T]) View[T] {
	return View[T]{base: m.data, ld: m.ld, rows: m.rows, cols: m.cols}
}

// FromMatrixOffset builds a view over the sub-block of m starting at
// (offI, offJ) and extending to m's far edges.
func FromMatrixOffset[T Scalar](m *Matrix[T], offI, offJ int) View[T] {
	return FromMatrixBlock(m, offI, offJ, m.rows-offI, m.cols-offJ)
}

// FromMatrixBlock builds a view over the ni x nj sub-block of m starting at
// (offI, offJ). Panics if the block does not fit inside m.
func FromMatrixBlock[T Scalar](m *Matrix[T], offI, offJ, ni, nj int) View[T] {
	if offI < 0 || offJ < 0 || ni+offI > m.rows || nj+offJ > m.cols {
		panic("matview: offset block does not fit parent matrix")
	}
	mustValidShape(ni, nj, m.ld)
	return View[T]{base: m.data, off: offI + offJ*m.ld, ld: m.ld, rows: ni, cols: nj}
}

func mustValidShape(rows, cols, ld int) {
	if rows < 0 || cols < 0 {
		panic("matview: negative shape")
	}
	if ld < rows {
		panic("matview: leading dimension smaller than row count")
	}
}

func (v View[T]) Rows() int { return v.rows }
func (v View[T]) Cols() int { return v.cols }
func (v View[T]) LeadingDimension() int { return v.ld }
func (v View[T]) IsSquare() bool { return v.rows == v.cols }

// At returns the element at (i, j). Bounds are only checked in qmcdebug
// builds; an out-of-range access is undefined otherwise.
func (v View[T]) At(i, j int) T {
	checkBounds(i, j, v.rows, v.cols)
	return v.base[v.off+i+j*v.ld]
}

// Set writes the element at (i, j).
func (v View[T]) Set(i, j int, x T) {
	checkBounds(i, j, v.rows, v.cols)
	v.base[v.off+i+j*v.ld] = x
}

// Ptr returns the backing slice starting at element (i, j).
func (v View[T]) Ptr(i, j int) []T {
	checkBounds(i, j, v.rows, v.cols)
	return v.base[v.off+i+j*v.ld:]
}

// CopyFrom overwrites every element of v with the corresponding element of
// src. Both views must have identical shape; v's identity (base, ld, offset)
// never changes.
func (v View[T]) CopyFrom(src View[T]) {
	if v.rows != src.rows || v.cols != src.cols {
		panic("matview: CopyFrom shape mismatch")
	}
	for j := 0; j < v.cols; j++ {
		for i := 0; i < v.rows; i++ {
			v.Set(i, j, src.At(i, j))
		}
	}
}

// ReadOnlyView is the read-only counterpart of View. It is constructed
// directly from a logically-const Matrix rather than laundered from a
// read-write View — there is deliberately no function that turns a
// ReadOnlyView back into a writable View (design note: no const-escape
// hatch).
type ReadOnlyView[T Scalar] struct {
	v View[T]
}

// NewReadOnlyView builds a read-only view over the whole of m.
func NewReadOnlyView[T Scalar](m *Matrix[T]) ReadOnlyView[T] {
	return ReadOnlyView[T]{v: FromMatrix(m)}
}

func (r ReadOnlyView[T]) Rows() int { return r.v.rows }
func (r ReadOnlyView[T]) Cols() int { return r.v.cols }
func (r ReadOnlyView[T]) LeadingDimension() int { return r.v.ld }
func (r ReadOnlyView[T]) At(i, j int) T { return r.v.At(i, j) }
func (r ReadOnlyView[T]) Ptr(i, j int) []T {
	p := r.v.Ptr(i, j)
	return p[:len(p):len(p)]
}
