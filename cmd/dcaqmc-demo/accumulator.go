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
	"fmt"
	"math"

	"dcaqmc/internal/qmc/contract"
)

// toyAccumulator folds the toy walker's scalar configuration into a running
// mean and sum-of-squares — enough to report an L2-norm-flavored
// convergence metric at the end of a DCA iteration without pretending to
// model real physics.
type toyAccumulator struct {
	threadID int
	sum      float64
	sumSq    float64
	n        int64
	last     float64
	errorBar float64
}

func newToyAccumulator(threadID int) *toyAccumulator {
	return &toyAccumulator{threadID: threadID}
}

func (a *toyAccumulator) Initialize(iteration int) {}

func (a *toyAccumulator) UpdateFrom(w contract.Walker) {
	tw, ok := w.(*toyWalker)
	if !ok {
		panic(fmt.Sprintf("toyAccumulator: unexpected walker type %T", w))
	}
	a.last = tw.Sample()
}

func (a *toyAccumulator) NotifyDone() {}

func (a *toyAccumulator) Measure() {
	a.sum += a.last
	a.sumSq += a.last * a.last
	a.n++
}

func (a *toyAccumulator) SumTo(other contract.Accumulator) {
	o, ok := other.(*toyAccumulator)
	if !ok {
		panic(fmt.Sprintf("toyAccumulator: unexpected accumulator type %T", other))
	}
	o.sum += a.sum
	o.sumSq += a.sumSq
	o.n += a.n
}

func (a *toyAccumulator) Finalize() {}

// ComputeErrorBars derives the standard error of the mean from the running
// sum and sum-of-squares. Only meaningful once called on the merged global
// accumulator.
func (a *toyAccumulator) ComputeErrorBars() {
	if a.n < 2 {
		a.errorBar = 0
		return
	}
	mean := a.sum / float64(a.n)
	variance := a.sumSq/float64(a.n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	a.errorBar = math.Sqrt(variance / float64(a.n))
}

func (a *toyAccumulator) DeviceFingerprint() uint64 { return 0 }

// L2Norm reports sqrt(mean of squares) over every measurement folded into
// this accumulator — the demo's convergence.ConvergenceInfo.L2Norm.
func (a *toyAccumulator) L2Norm() float64 {
	if a.n == 0 {
		return 0
	}
	return math.Sqrt(a.sumSq / float64(a.n))
}

// ErrorBar reports the standard error of the mean computed by the most
// recent ComputeErrorBars call.
func (a *toyAccumulator) ErrorBar() float64 { return a.errorBar }

type toyAccumulatorFactory struct{}

func (toyAccumulatorFactory) New(threadID int) contract.Accumulator {
	return newToyAccumulator(threadID)
}

func (toyAccumulatorFactory) StaticDeviceFingerprint() uint64 { return 0 }
