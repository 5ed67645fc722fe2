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

// Package contract declares the external collaborators the coordinator
// drives: the Walker performing a Markov chain sweep, the Accumulator
// folding sampled states into estimators, and the process-level Concurrency
// collaborator. Their physics, I/O, and distributed-process internals are
// out of scope here — only the calling contract the coordinator relies on.
package contract

// Walker performs a Markov-chain sweep over a sampled configuration.
type Walker interface {
	// Initialize prepares the walker's internal state before warm-up.
	Initialize()
	// ReadConfig seeds the walker from a previously dumped configuration.
	// Called before Initialize when a non-empty snapshot is available.
	ReadConfig(buf []byte)
	// DumpConfig serializes the walker's current Markov-chain state.
	DumpConfig() []byte
	// DoSweep performs one block of Monte Carlo updates.
	DoSweep()
	// UpdateShell reports progress (done out of total) to whatever progress
	// sink the walker is wired to.
	UpdateShell(done, total int)
	// SetThermalized marks whether warm-up has completed.
	SetThermalized(thermalized bool)
	// DeviceFingerprint reports the walker's device-resident scratch, in
	// bytes.
	DeviceFingerprint() uint64
	// PrintSummary prints a human-readable end-of-run summary.
	PrintSummary()
}

// Accumulator folds sampled walker states into running observable
// estimators.
type Accumulator interface {
	// Initialize prepares per-iteration state; iteration is the DCA
	// self-consistency step this accumulation belongs to.
	Initialize(iteration int)
	// UpdateFrom copies the walker's current sample. The coordinator calls
	// this either once the rendezvous channel has already woken the
	// accumulator with that sample, or inline right after the sweep on a
	// combined walker+accumulator thread, so no further blocking is needed
	// here.
	UpdateFrom(w Walker)
	// Measure folds the most recently transferred sample into the running
	// estimator.
	Measure()
	// NotifyDone is the terminate signal an idle accumulator observes once
	// every walker has finished.
	NotifyDone()
	// SumTo merges this accumulator's local estimator into other.
	SumTo(other Accumulator)
	// Finalize runs any end-of-integration bookkeeping on the (already
	// merged) global accumulator.
	Finalize()
	// ComputeErrorBars derives error bars from the accumulated samples.
	// Only called on the global accumulator, and only on the last DCA
	// iteration.
	ComputeErrorBars()
	// DeviceFingerprint reports this accumulator's device-resident scratch,
	// in bytes.
	DeviceFingerprint() uint64
}

// AccumulatorFactory constructs per-thread Accumulators and reports the
// fixed device-resident footprint shared by every instance — the Go
// stand-in for a static method, since interfaces have none.
type AccumulatorFactory interface {
	New(threadID int) Accumulator
	StaticDeviceFingerprint() uint64
}

// Concurrency is the process-level collaborator the coordinator consults to
// seed RNGs and to decide which process prints shared status lines.
type Concurrency interface {
	ID() int
	First() int
	NumberOfProcessors() int
}

// LocalConcurrency is the trivial single-process Concurrency: id 0 of 1.
// Most of the core's invariants are defined per-process; the demo and
// the coordinator's tests run this way unless a multi-process collaborator
// is supplied externally.
type LocalConcurrency struct{}

func (LocalConcurrency) ID() int                 { return 0 }
func (LocalConcurrency) First() int               { return 0 }
func (LocalConcurrency) NumberOfProcessors() int { return 1 }
