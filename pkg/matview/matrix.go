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

// Package matview provides a non-owning, column-major rectangular view into
// a matrix buffer, plus the minimal owning Matrix type a view is carved out
// of. Views are the currency passed between a Monte Carlo walker and its
// accumulator on the sampling hot path.
package matview

// Scalar is the set of element types a Matrix/View can hold.
type Scalar interface {
	float64 | complex128
}

// Matrix is a small owning column-major buffer: element (i, j) lives at
// data[i+j*ld]. It exists so that View has something concrete to reference;
// real callers on the hot path normally already own a buffer shaped like
// this one and construct a View directly over it.
type Matrix[T Scalar] struct {
	data []T
	ld   int
	rows int
	cols int
}

// NewMatrix allocates a zeroed rows x cols matrix with ld == rows.
func NewMatrix[T Scalar](rows, cols int) *Matrix[T] {
	if rows < 0 || cols < 0 {
		panic("matview: negative matrix dimension")
	}
	return &Matrix[T]{data: make([]T, rows*cols), ld: rows, rows: rows, cols: cols}
}

func (m *Matrix[T]) Rows() int { return m.rows }
func (m *Matrix[T]) Cols() int { return m.cols }
func (m *Matrix[T]) LeadingDimension() int { return m.ld }

func (m *Matrix[T]) At(i, j int) T {
	checkBounds(i, j, m.rows, m.cols)
	return m.data[i+j*m.ld]
}

func (m *Matrix[T]) Set(i, j int, v T) {
	checkBounds(i, j, m.rows, m.cols)
	m.data[i+j*m.ld] = v
}

// Ptr returns the backing slice starting at element (i, j), for code that
// wants to hand a contiguous column off to a BLAS-like routine.
func (m *Matrix[T]) Ptr(i, j int) []T {
	checkBounds(i, j, m.rows, m.cols)
	return m.data[i+j*m.ld:]
}
