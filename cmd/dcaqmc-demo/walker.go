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

package main

import (
	"encoding/binary"
	"fmt"
	"math"

	"dcaqmc/internal/rng"
)

// toyWalker is a stand-in Markov chain: a single real-valued configuration
// that takes a random step each sweep. Its physics is deliberately out of
// scope; it exists only to exercise the coordinator's lifecycle,
// rendezvous, and snapshot round-trip end to end.
type toyWalker struct {
	id      int
	rng     *rng.Source
	config  float64
	sweeps  int
}

func newToyWalker(threadID, walkerIdx int, source *rng.Source) *toyWalker {
	return &toyWalker{id: walkerIdx, rng: source}
}

func (w *toyWalker) Initialize() {}

func (w *toyWalker) ReadConfig(buf []byte) {
	if len(buf) != 8 {
		return
	}
	w.config = math.Float64frombits(binary.LittleEndian.Uint64(buf))
}

func (w *toyWalker) DumpConfig() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(w.config))
	return buf
}

func (w *toyWalker) DoSweep() {
	w.config += w.rng.Float64() - 0.5
	w.sweeps++
}

func (w *toyWalker) UpdateShell(done, total int) {
	if done%50 == 0 || done == total {
		fmt.Printf("[qmci] walker %d: %d/%d sweeps\n", w.id, done, total)
	}
}

func (w *toyWalker) SetThermalized(bool) {}

func (w *toyWalker) DeviceFingerprint() uint64 { return 0 }

func (w *toyWalker) PrintSummary() {
	fmt.Printf("[qmci] walker %d finished: %d sweeps, config=%.4f\n", w.id, w.sweeps, w.config)
}

// Sample returns the configuration UpdateFrom reads. Walkers expose their
// sample this way rather than through contract.Walker, which has no sample
// accessor by design: the accumulator's UpdateFrom is given the
// contract.Walker and must downcast to whatever concrete type the demo
// wires in, exactly as a real accumulator downcasts to its physics-specific
// walker type.
func (w *toyWalker) Sample() float64 { return w.config }
