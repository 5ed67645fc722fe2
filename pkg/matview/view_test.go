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

import "testing"

// TestView_RoundTrip exercises a 4x5
// matrix, a 3x3 offset view into it, and a write through the view must be
// visible at the corresponding parent coordinate.
func TestView_RoundTrip(t *testing.T) {
	mat := NewMatrix[float64](4, 5)
	sub := FromMatrixBlock(mat, 1, 2, 3, 3)
	sub.Set(0, 0, 7)

	if got := mat.At(1, 2); got != 7 {
		t.Fatalf("mat.At(1,2) = %v, want 7", got)
	}
}

// TestView_Addressing validates the universal addressing invariant:
// view(i,j) == base[i+j*ld], and an offset view's (i,j) equals the parent's
// (i+oi, j+oj).
func TestView_Addressing(t *testing.T) {
	base := make([]float64, 30)
	for i := range base {
		base[i] = float64(i)
	}
	ld := 5
	v := NewFromSlice(base, 4, 6, ld)
	for j := 0; j < 6; j++ {
		for i := 0; i < 4; i++ {
			want := base[i+j*ld]
			if got := v.At(i, j); got != want {
				t.Fatalf("v.At(%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}

	mat := NewMatrix[float64](8, 8)
	for j := 0; j < 8; j++ {
		for i := 0; i < 8; i++ {
			mat.Set(i, j, float64(i*10+j))
		}
	}
	off := FromMatrixOffset(mat, 2, 3)
	for j := 0; j < off.Cols(); j++ {
		for i := 0; i < off.Rows(); i++ {
			if got, want := off.At(i, j), mat.At(i+2, j+3); got != want {
				t.Fatalf("offset view (%d,%d) = %v, want parent(%d,%d) = %v", i, j, got, i+2, j+3, want)
			}
		}
	}
}

func TestView_CopyFrom(t *testing.T) {
	dst := NewMatrix[complex128](2, 2)
	src := NewMatrix[complex128](2, 2)
	src.Set(0, 0, 1+2i)
	src.Set(1, 0, 3)
	src.Set(0, 1, -1i)
	src.Set(1, 1, 4+4i)

	FromMatrix(dst).CopyFrom(FromMatrix(src))

	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			if got, want := dst.At(i, j), src.At(i, j); got != want {
				t.Fatalf("dst.At(%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestView_CopyFrom_ShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on shape mismatch")
		}
	}()
	dst := NewMatrix[float64](2, 2)
	src := NewMatrix[float64](3, 3)
	FromMatrix(dst).CopyFrom(FromMatrix(src))
}

func TestReadOnlyView_Basics(t *testing.T) {
	mat := NewMatrix[float64](3, 3)
	mat.Set(1, 1, 42)
	ro := NewReadOnlyView(mat)
	if got := ro.At(1, 1); got != 42 {
		t.Fatalf("ro.At(1,1) = %v, want 42", got)
	}
}
