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

package coordinator

import (
	"fmt"

	"dcaqmc/internal/qmc/contract"
	"dcaqmc/internal/qmc/metrics"
	"dcaqmc/internal/qmc/snapshot"
)

// Config holds the read-only knobs the coordinator is constructed with.
// New validates the counts (Walkers, Accumulators, WarmUpSweeps,
// Measurements); Seed is parsed later, when Integrate builds each walker's
// RNG, and panics there if invalid. Construction-time invalid counts are a
// fatal invariant violation (returned as an error here, left for the caller
// to treat as fatal — main.go does, tests don't have to).
type Config struct {
	Walkers       int
	Accumulators  int
	Shared        bool
	WarmUpSweeps  int
	Measurements  int
	FixedPerWalker bool

	// Seed is the user-facing RNG seed, folded together with
	// (process_id, process_count) to build each walker's stream: an integer
	// for a reproducible run, or the literal string "random". Empty
	// defaults to "0".
	Seed string

	Snapshots snapshot.Store // nil disables snapshot load/save entirely

	DCAIteration   int
	DCAIterations  int

	Metrics *metrics.Recorder // nil disables all instrumentation

	Concurrency contract.Concurrency // nil defaults to contract.LocalConcurrency{}
}

func (c Config) validate() error {
	if c.Walkers < 1 {
		return fmt.Errorf("coordinator: walkers must be >= 1, got %d", c.Walkers)
	}
	if c.Accumulators < 1 {
		return fmt.Errorf("coordinator: accumulators must be >= 1, got %d", c.Accumulators)
	}
	if c.WarmUpSweeps < 0 {
		return fmt.Errorf("coordinator: warm-up sweeps must be >= 0, got %d", c.WarmUpSweeps)
	}
	if c.Measurements < 0 {
		return fmt.Errorf("coordinator: measurements must be >= 0, got %d", c.Measurements)
	}
	return nil
}

// ConvergenceInfo is the (external) convergence-metric collaborator the
// embedded solver reports through on the last DCA iteration. The core
// treats it as opaque; it only needs a place to write the scalar result.
type ConvergenceInfo struct {
	L2Norm float64
}
