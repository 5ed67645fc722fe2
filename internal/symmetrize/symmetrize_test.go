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

package symmetrize

import (
	"math/cmplx"
	"testing"

	"dcaqmc/internal/symmetrize/domain"
)

func timeAxis(n int) domain.Axis      { return domain.Axis{Kind: domain.Time, Size: n} }
func matsubaraAxis(n int) domain.Axis { return domain.Axis{Kind: domain.Matsubara, Size: n} }
func bandAxis(n int) domain.Axis      { return domain.Axis{Kind: domain.Band, Size: n} }

// TestTimeSymmetrization_Scenario5 pins the time-domain antiperiodicity
// projection for f=[1,2,3,4].
func TestTimeSymmetrization_Scenario5(t *testing.T) {
	f := New[float64]("G", timeAxis(4))
	for i, v := range []float64{1, 2, 3, 4} {
		f.SetAt(v, i)
	}

	Execute(f, Context{}, Options{})

	want := []float64{-1, -1, 1, 1}
	for i, w := range want {
		if got := f.At(i); got != w {
			t.Errorf("f(%d) = %v, want %v", i, got, w)
		}
	}
}

// TestTimeSymmetrization_AntiPeriodicity checks the universal anti-periodicity invariant:
// after time symmetrization, f(i) + f(i+Nt/2) = 0 for every i < Nt/2.
func TestTimeSymmetrization_AntiPeriodicity(t *testing.T) {
	f := New[float64]("G", timeAxis(6))
	for i, v := range []float64{1, -2, 3, 0.5, 7, -4} {
		f.SetAt(v, i)
	}
	Execute(f, Context{}, Options{})

	shift := 3
	for i := 0; i < shift; i++ {
		if sum := f.At(i) + f.At(i+shift); sum != 0 {
			t.Errorf("f(%d)+f(%d) = %v, want 0", i, i+shift, sum)
		}
	}
}

// TestTimeSymmetrization_Idempotent checks the idempotence invariant.
func TestTimeSymmetrization_Idempotent(t *testing.T) {
	f := New[float64]("G", timeAxis(4))
	for i, v := range []float64{1, 2, 3, 4} {
		f.SetAt(v, i)
	}
	Execute(f, Context{}, Options{})
	once := append([]float64{}, f.Raw()...)

	Execute(f, Context{}, Options{})
	for i, v := range once {
		if got := f.Raw()[i]; absFloat(got-v) > Epsilon {
			t.Errorf("f(%d) changed on second pass: %v -> %v", i, v, got)
		}
	}
}

// TestMatsubaraSymmetrization_Scenario6 pins the Hermitian-in-frequency
// projection, both an already-symmetric input and one that isn't.
func TestMatsubaraSymmetrization_Scenario6(t *testing.T) {
	t.Run("already_symmetric", func(t *testing.T) {
		f := New[complex128]("G", matsubaraAxis(4))
		vals := []complex128{1 + 1i, 2, 2, 1 - 1i}
		for i, v := range vals {
			f.SetAt(v, i)
		}
		diag := Execute(f, Context{}, Options{DoDiff: true})
		for i, v := range vals {
			if got := f.At(i); got != v {
				t.Errorf("f(%d) = %v, want unchanged %v", i, got, v)
			}
		}
		if r := diag.MaxResidual["w"]; r > Epsilon {
			t.Errorf("residual = %v, want ~0", r)
		}
	})

	t.Run("projects_to_hermitian", func(t *testing.T) {
		f := New[complex128]("G", matsubaraAxis(4))
		f.SetAt(1, 0)
		Execute(f, Context{}, Options{})

		want := []complex128{0.5, 0, 0, 0.5}
		for i, w := range want {
			if got := f.At(i); got != w {
				t.Errorf("f(%d) = %v, want %v", i, got, w)
			}
		}
	})
}

// TestMatsubaraSymmetrization_Hermiticity checks the universal Hermiticity invariant:
// after omega-symmetrization, f(i) = conj(f(Nw-1-i)).
func TestMatsubaraSymmetrization_Hermiticity(t *testing.T) {
	f := New[complex128]("G", matsubaraAxis(6))
	for i, v := range []complex128{1 + 2i, 3 - 1i, 0.5i, 2, -1, 4 + 4i} {
		f.SetAt(v, i)
	}
	Execute(f, Context{}, Options{})

	n := 6
	for i := 0; i < n; i++ {
		j := n - 1 - i
		if got, want := f.At(i), cmplx.Conj(f.At(j)); cmplx.Abs(got-want) > Epsilon {
			t.Errorf("f(%d)=%v, want conj(f(%d))=%v", i, got, j, want)
		}
	}
}

// TestMatsubaraSymmetrization_Idempotent checks the idempotence invariant
// for a complex domain.
func TestMatsubaraSymmetrization_Idempotent(t *testing.T) {
	f := New[complex128]("G", matsubaraAxis(4))
	for i, v := range []complex128{1 + 1i, 2 - 3i, -1i, 5} {
		f.SetAt(v, i)
	}
	Execute(f, Context{}, Options{})
	once := append([]complex128{}, f.Raw()...)
	Execute(f, Context{}, Options{})
	for i, v := range once {
		if got := f.Raw()[i]; cmplx.Abs(got-v) > Epsilon {
			t.Errorf("f(%d) changed on second pass: %v -> %v", i, v, got)
		}
	}
}

// TestRealFrequency_NoOp checks the real-frequency domain's explicit
// identity rule.
func TestRealFrequency_NoOp(t *testing.T) {
	f := New[float64]("G", domain.Axis{Kind: domain.RealFrequency, Size: 4})
	want := []float64{9, -2, 3.5, 0}
	for i, v := range want {
		f.SetAt(v, i)
	}
	Execute(f, Context{}, Options{})
	for i, w := range want {
		if got := f.At(i); got != w {
			t.Errorf("f(%d) = %v, want unchanged %v", i, got, w)
		}
	}
}

// TestSpinSymmetrization checks the spin-symmetry invariant.
func TestSpinSymmetrization(t *testing.T) {
	axes := []domain.Axis{
		bandAxis(2), {Kind: domain.Spin, Size: 2}, bandAxis(2), {Kind: domain.Spin, Size: 2},
		timeAxis(2), timeAxis(2),
	}
	f := New[float64]("G", axes...)
	// Seed with distinct values so the test can't pass by accident of zeros.
	v := 1.0
	for i0 := 0; i0 < 2; i0++ {
		for s0 := 0; s0 < 2; s0++ {
			for i1 := 0; i1 < 2; i1++ {
				for s1 := 0; s1 < 2; s1++ {
					for d0 := 0; d0 < 2; d0++ {
						for d1 := 0; d1 < 2; d1++ {
							f.SetAt(v, i0, s0, i1, s1, d0, d1)
							v++
						}
					}
				}
			}
		}
	}

	Execute(f, Context{}, Options{})

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for d0 := 0; d0 < 2; d0++ {
				for d1 := 0; d1 < 2; d1++ {
					if got := f.At(i, 0, j, 1, d0, d1); got != 0 {
						t.Errorf("f(%d,up,%d,dn,%d,%d) = %v, want 0", i, j, d0, d1, got)
					}
					if got := f.At(i, 1, j, 0, d0, d1); got != 0 {
						t.Errorf("f(%d,dn,%d,up,%d,%d) = %v, want 0", i, j, d0, d1, got)
					}
					up := f.At(i, 0, j, 0, d0, d1)
					dn := f.At(i, 1, j, 1, d0, d1)
					if up != dn {
						t.Errorf("f(%d,up,%d,up,%d,%d)=%v != f(%d,dn,%d,dn,%d,%d)=%v", i, j, d0, d1, up, i, j, d0, d1, dn)
					}
				}
			}
		}
	}
}

// twoSiteInversionTable builds a 2-site, 1-band cluster with a
// point group of order 2: the identity, and the inversion that swaps
// site 0 and site 1 and leaves bands fixed.
func twoSiteInversionTable() *SymmetryTable {
	table := NewSymmetryTable(2, 1, 2)
	for r := 0; r < 2; r++ {
		table.Set(r, 0, 0, Image{Site: r, Band: 0})
	}
	table.Set(0, 0, 1, Image{Site: 1, Band: 0})
	table.Set(1, 0, 1, Image{Site: 0, Band: 0})
	return table
}

// TestRealSpaceClusterSymmetry checks the cluster-symmetry invariant:
// f(r) = f(S(r)) for every symmetry element S, after symmetrization.
func TestRealSpaceClusterSymmetry(t *testing.T) {
	table := twoSiteInversionTable()
	f := New[float64]("G", domain.Axis{Kind: domain.RealSpaceCluster, Size: 2})
	f.SetAt(1, 0)
	f.SetAt(2, 1)

	Execute(f, Context{RealSpace: table}, Options{})

	if got := f.At(0); got != 1.5 {
		t.Errorf("f(0) = %v, want 1.5", got)
	}
	if got := f.At(1); got != 1.5 {
		t.Errorf("f(1) = %v, want 1.5", got)
	}
	// S maps 0<->1; post-symmetrization both images must agree.
	if f.At(0) != f.At(1) {
		t.Errorf("f(0)=%v != f(S(0))=f(1)=%v", f.At(0), f.At(1))
	}
}

// TestRealSpaceClusterSymmetry_Idempotent checks the idempotence invariant
// for the cluster-domain rule.
func TestRealSpaceClusterSymmetry_Idempotent(t *testing.T) {
	table := twoSiteInversionTable()
	f := New[float64]("G", domain.Axis{Kind: domain.RealSpaceCluster, Size: 2})
	f.SetAt(5, 0)
	f.SetAt(-3, 1)

	Execute(f, Context{RealSpace: table}, Options{})
	once := append([]float64{}, f.Raw()...)
	Execute(f, Context{RealSpace: table}, Options{})
	for i, v := range once {
		if got := f.Raw()[i]; absFloat(got-v) > Epsilon {
			t.Errorf("f(%d) changed on second pass: %v -> %v", i, v, got)
		}
	}
}

// TestRealSpaceClusterSymmetry_EmptyGroupPanics checks that an empty
// symmetry group is treated as a fatal invariant violation, not a silent
// no-op.
func TestRealSpaceClusterSymmetry_EmptyGroupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty symmetry group")
		}
	}()
	f := New[float64]("G", domain.Axis{Kind: domain.RealSpaceCluster, Size: 2})
	Execute(f, Context{RealSpace: NewSymmetryTable(2, 1, 0)}, Options{})
}

// bandDependentSiteTable builds a contrived 2-site, 2-band, order-2 table
// whose site image under the non-identity element depends on the band
// index: Lookup(r, b, 1) = {Site: (r+b)%2, Band: 1-b}. This is the minimal
// shape needed to tell apart the real-space and momentum-space band-pair
// lookups, since only the latter's (reproduced) bug ever reads the site
// image at a non-zero band.
func bandDependentSiteTable() *SymmetryTable {
	table := NewSymmetryTable(2, 2, 2)
	for r := 0; r < 2; r++ {
		for b := 0; b < 2; b++ {
			table.Set(r, b, 0, Image{Site: r, Band: b})
			table.Set(r, b, 1, Image{Site: (r + b) % 2, Band: 1 - b})
		}
	}
	return table
}

func bandPairFunction(axis domain.Axis, values [8]float64) *Function[float64] {
	f := New[float64]("G", bandAxis(2), bandAxis(2), axis)
	idx := 0
	for b0 := 0; b0 < 2; b0++ {
		for b1 := 0; b1 < 2; b1++ {
			for r := 0; r < axis.Size; r++ {
				f.SetAt(values[idx], b0, b1, r)
				idx++
			}
		}
	}
	return f
}

// TestMomentumSpaceClusterBandPair_ReproducesKSymBug pins the design-note
// Known discrepancy: the momentum-space band-pair path looks up the new-k
// index at k_sym[k, b0, S] rather than k_sym[k, 0, S] as the real-space
// path does. On a table where the site image is band-dependent, the two
// paths must disagree at (b0, b1, k) = (1, 0, 0) — this is not "fixed" by
// this port, only reproduced and pinned.
func TestMomentumSpaceClusterBandPair_ReproducesKSymBug(t *testing.T) {
	values := [8]float64{1, 2, 3, 4, 5, 6, 7, 8} // (b0,b1,idx): (0,0,{0,1}),(0,1,{0,1}),(1,0,{0,1}),(1,1,{0,1})
	table := bandDependentSiteTable()

	rAxis := domain.Axis{Kind: domain.RealSpaceCluster, Size: 2}
	kAxis := domain.Axis{Kind: domain.MomentumSpaceCluster, Size: 2}

	fr := bandPairFunction(rAxis, values)
	fk := bandPairFunction(kAxis, values)

	Execute(fr, Context{RealSpace: table}, Options{})
	Execute(fk, Context{MomentumSpace: table}, Options{})

	if got, want := fr.At(1, 0, 0), 4.0; absFloat(got-want) > Epsilon {
		t.Errorf("real-space f_new(1,0,0) = %v, want %v", got, want)
	}
	if got, want := fk.At(1, 0, 0), 4.5; absFloat(got-want) > Epsilon {
		t.Errorf("momentum-space f_new(1,0,0) = %v, want %v (the reproduced bug)", got, want)
	}
	if fr.At(1, 0, 0) == fk.At(1, 0, 0) {
		t.Error("real-space and momentum-space band-pair results coincide; the k_sym discrepancy should make them differ here")
	}
}

// TestBandPairOuterSymmetrization exercises the (b, b, d0, d1) promotion
// path end to end on a time domain, checking anti-periodicity holds per
// band pair after symmetrization.
func TestBandPairOuterSymmetrization(t *testing.T) {
	f := New[float64]("G", bandAxis(2), bandAxis(2), timeAxis(4), timeAxis(4))
	v := 1.0
	for b0 := 0; b0 < 2; b0++ {
		for b1 := 0; b1 < 2; b1++ {
			for i := 0; i < 4; i++ {
				for j := 0; j < 4; j++ {
					f.SetAt(v, b0, b1, i, j)
					v++
				}
			}
		}
	}

	Execute(f, Context{}, Options{})

	for b0 := 0; b0 < 2; b0++ {
		for b1 := 0; b1 < 2; b1++ {
			for j := 0; j < 4; j++ {
				if sum := f.At(b0, b1, 0, j) + f.At(b0, b1, 2, j); absFloat(sum) > Epsilon {
					t.Errorf("d0 anti-periodicity broken at (%d,%d,*,%d): %v", b0, b1, j, sum)
				}
			}
		}
	}
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
