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

// Package domain names the index spaces a single-particle function can be
// defined over. The symmetrizer dispatches on a Function's axis sequence
// (a []Axis) rather than on its Go type, since shape selection should be
// data-driven, not type-driven: a template-specialized implementation would
// resolve this at compile time via overloading on the domain type; here the
// same decision is made at runtime from the shape alone.
package domain

// Kind names one index space a Function axis can range over.
type Kind int

const (
	// Time is the imaginary-time domain t, periodic half-antiperiodic, even size.
	Time Kind = iota
	// Matsubara is the Matsubara-frequency domain omega, Hermitian in frequency, even size.
	Matsubara
	// VertexCompact is the compact vertex-frequency domain; symmetrized identically to Matsubara.
	VertexCompact
	// VertexExtended is the extended vertex-frequency domain; symmetrized identically to Matsubara.
	VertexExtended
	// RealFrequency is the real-frequency domain w_REAL; symmetrization is a no-op.
	RealFrequency
	// Band is the electron band index b.
	Band
	// Spin is the electron spin index s, always size 2.
	Spin
	// RealSpaceCluster is the real-space cluster domain r.
	RealSpaceCluster
	// MomentumSpaceCluster is the momentum-space cluster domain k.
	MomentumSpaceCluster
)

func (k Kind) String() string {
	switch k {
	case Time:
		return "t"
	case Matsubara:
		return "w"
	case VertexCompact:
		return "w_VERTEX"
	case VertexExtended:
		return "w_VERTEX_EXTENDED"
	case RealFrequency:
		return "w_REAL"
	case Band:
		return "b"
	case Spin:
		return "s"
	case RealSpaceCluster:
		return "r"
	case MomentumSpaceCluster:
		return "k"
	default:
		return "unknown"
	}
}

// Axis is one dimension of a Function's shape: a domain kind and its size.
type Axis struct {
	Kind Kind
	Size int
}

// IsHermitianFrequency reports whether a's symmetrization rule is the
// Matsubara-style Hermitian-in-frequency one (Matsubara and both vertex
// variants share it).
func (a Axis) IsHermitianFrequency() bool {
	switch a.Kind {
	case Matsubara, VertexCompact, VertexExtended:
		return true
	default:
		return false
	}
}
