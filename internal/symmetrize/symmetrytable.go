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

// Image is the point-group image (r', b') of a (site, band) pair under one
// symmetry operation.
type Image struct {
	Site int
	Band int
}

// SymmetryTable is the precomputed sym[r, b, S] table: the
// image of (r, b) under the S-th point-group element. One SymmetryTable
// serves either the real-space or the momentum-space cluster domain —
// which one it describes is a fact about how it was built, not about its
// type.
type SymmetryTable struct {
	sites int
	bands int
	order int
	data  []Image
}

// NewSymmetryTable allocates a zeroed table for a cluster of sites sites,
// bands bands, and a point group of order elements. order == 0 is
// accepted here (construction never fails); consumers that require a
// non-empty group enforce that themselves: "|G| > 0 is required; zero is
// a fatal error" is a property of symmetrization,
// not of the table.
func NewSymmetryTable(sites, bands, order int) *SymmetryTable {
	return &SymmetryTable{
		sites: sites,
		bands: bands,
		order: order,
		data:  make([]Image, sites*bands*order),
	}
}

func (t *SymmetryTable) index(r, b, s int) int {
	return (r*t.bands+b)*t.order + s
}

// Set records the image of (r, b) under symmetry element s.
func (t *SymmetryTable) Set(r, b, s int, img Image) {
	t.data[t.index(r, b, s)] = img
}

// Lookup returns the image of (r, b) under symmetry element s.
func (t *SymmetryTable) Lookup(r, b, s int) Image {
	return t.data[t.index(r, b, s)]
}

// Order is the point group's order |G|.
func (t *SymmetryTable) Order() int { return t.order }

// Sites is the cluster's site (or momentum-point) count.
func (t *SymmetryTable) Sites() int { return t.sites }

// Bands is the band count the table was built against.
func (t *SymmetryTable) Bands() int { return t.bands }

// Context bundles the two cluster symmetry tables a symmetrization pass may
// need. Either field may be nil if the corresponding domain never appears
// in the functions being symmetrized.
type Context struct {
	RealSpace     *SymmetryTable
	MomentumSpace *SymmetryTable
}
