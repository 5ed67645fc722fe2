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

// Package coordinator spawns the walker and accumulator threads for one DCA
// iteration's Monte Carlo integration, drives their rendezvous, and merges
// the result into a single global accumulator.
package coordinator

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"dcaqmc/internal/qmc/contract"
	"dcaqmc/internal/qmc/tasktable"
	"dcaqmc/internal/qmc/workload"
	"dcaqmc/internal/rng"
)

// WalkerFactory builds the Walker for one task-table entry: threadID is the
// entry's position in the table, walkerIdx is its position among walker
// roles only (the RNG and snapshot index).
type WalkerFactory func(threadID, walkerIdx int, source *rng.Source) contract.Walker

// Coordinator is the QMC coordinator: constructed once per DCA
// self-consistency loop, `Initialize`d and `Integrate`d once per iteration.
type Coordinator struct {
	cfg      Config
	table    tasktable.Table
	newWalker WalkerFactory
	accFactory contract.AccumulatorFactory

	global contract.Accumulator
	merge  sync.Mutex

	snapMu    sync.Mutex
	snapshots [][]byte // loaded by Initialize, written by Finalize

	totalMeasurements int // this process's share of cfg.Measurements, set by Initialize

	walkerFingerprints []uint64 // DeviceFingerprint() per walker/combined thread, indexed by threadID
	accumFingerprints  []uint64 // DeviceFingerprint() per accumulator/combined thread, indexed by threadID
}

// New validates cfg and builds the thread-task table. A bad configuration
// is a fatal invariant violation, returned as an error for the caller to
// abort on.
func New(cfg Config, newWalker WalkerFactory, accFactory contract.AccumulatorFactory, globalAcc contract.Accumulator) (*Coordinator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	table, err := tasktable.New(cfg.Walkers, cfg.Accumulators, cfg.Shared)
	if err != nil {
		return nil, err
	}
	if cfg.Concurrency == nil {
		cfg.Concurrency = contract.LocalConcurrency{}
	}
	return &Coordinator{
		cfg:        cfg,
		table:      table,
		newWalker:  newWalker,
		accFactory: accFactory,
		global:     globalAcc,
	}, nil
}

// Initialize resets the per-iteration counters and, on the first call for
// this Coordinator, loads per-walker snapshots from the configured read
// directory. Snapshot I/O failures are logged and degrade gracefully to
// empty buffers.
func (c *Coordinator) Initialize(dcaIteration int) {
	c.cfg.DCAIteration = dcaIteration
	c.global.Initialize(dcaIteration)
	c.totalMeasurements = workload.SplitFor(c.cfg.Measurements, c.cfg.Concurrency)

	if c.snapshots == nil && c.cfg.Snapshots != nil {
		n := c.table.NumWalkerRoles()
		slots, err := c.cfg.Snapshots.Read(c.cfg.Concurrency.ID(), n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[qmci] snapshot read failed, starting from scratch: %v\n", err)
		}
		c.snapshots = slots
	}
}

// Integrate spawns every thread named by the task table, blocks until all
// have finished, then finalizes the merged global accumulator. ctx allows
// the caller to observe cancellation between Initialize/Integrate/Finalize
// calls; the core itself offers no mid-run cancellation.
func (c *Coordinator) Integrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	walkerRoles := c.table.NumWalkerRoles()
	stack := newIdleStack(c.cfg.Accumulators-sharedCount(c.table), walkerRoles)

	c.walkerFingerprints = make([]uint64, len(c.table))
	c.accumFingerprints = make([]uint64, len(c.table))

	var measurementsDone atomic.Int64
	var wg sync.WaitGroup
	errs := make(chan error, len(c.table))

	walkerIdx := 0
	for threadID, entry := range c.table {
		entry := entry
		threadID := threadID
		switch entry.Role {
		case tasktable.RoleWalker:
			source := rng.New(c.cfg.Concurrency.ID(), c.cfg.Concurrency.NumberOfProcessors(), c.seedFor(entry.RNGIndex))
			wIdx := walkerIdx
			walkerIdx++
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.runWalker(threadID, wIdx, source, stack, &measurementsDone, errs)
			}()
		case tasktable.RoleAccumulator:
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.runAccumulator(threadID, stack, errs)
			}()
		case tasktable.RoleBoth:
			source := rng.New(c.cfg.Concurrency.ID(), c.cfg.Concurrency.NumberOfProcessors(), c.seedFor(entry.RNGIndex))
			wIdx := walkerIdx
			walkerIdx++
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.runCombined(threadID, wIdx, source, stack, &measurementsDone, errs)
			}()
		}
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			// A worker exception is fatal: it propagates out of Integrate on
			// join. The first error observed is reported; the run as a whole
			// is considered failed regardless of how many threads hit one.
			return err
		}
	}

	c.reportFingerprints()
	c.global.Finalize()
	return nil
}

// reportFingerprints prints the device-resident footprint every walker and
// accumulator thread reported this iteration, plus the fixed per-instance
// accumulator footprint. Only the first process in the concurrency
// collaborator prints, mirroring how shared per-run status lines are
// reported elsewhere in the coordinator.
func (c *Coordinator) reportFingerprints() {
	if c.cfg.Concurrency.ID() != c.cfg.Concurrency.First() {
		return
	}
	fmt.Printf("[qmci] walker fingerprints [bytes]: %v\n", c.walkerFingerprints)
	fmt.Printf("[qmci] accumulator fingerprints [bytes]: %v\n", c.accumFingerprints)
	fmt.Printf("[qmci] static accumulator fingerprint [bytes]: %d\n", c.accFactory.StaticDeviceFingerprint())
}

// Finalize runs the end-of-iteration bookkeeping. On the last DCA iteration
// it computes error bars on the merged global accumulator and (whenever a
// write directory is configured) persists per-walker snapshots; the
// convergence metric carried by info is reported back to the caller on
// every iteration.
func (c *Coordinator) Finalize(info *ConvergenceInfo) (float64, error) {
	lastIteration := c.cfg.DCAIteration == c.cfg.DCAIterations-1

	if lastIteration {
		c.global.ComputeErrorBars()
	}

	if lastIteration && c.cfg.Snapshots != nil && c.snapshots != nil {
		if err := c.cfg.Snapshots.Write(c.cfg.Concurrency.ID(), c.snapshots); err != nil {
			fmt.Fprintf(os.Stderr, "[qmci] snapshot write failed: %v\n", err)
		}
	}
	if info == nil {
		return 0, nil
	}
	return info.L2Norm, nil
}

func sharedCount(t tasktable.Table) int {
	n := 0
	for _, e := range t {
		if e.Role == tasktable.RoleBoth {
			n++
		}
	}
	return n
}

// seedFor derives the seed string handed to rng.New for one walker. Each
// walker's RNG is seeded from (process_id, process_count, user_seed);
// rng.New itself folds in process_id and process_count, so seedFor's own
// job is only to keep distinct walkers (same process, same user_seed)
// from drawing the same stream, by folding in the walker's RNG index —
// except under "random" seeding, where rng.New draws fresh entropy per
// call and no folding is needed.
func (c *Coordinator) seedFor(rngIndex int) string {
	if c.cfg.Seed == "random" {
		return "random"
	}
	userSeed := c.cfg.Seed
	if userSeed == "" {
		userSeed = "0"
	}
	n, err := strconv.ParseInt(userSeed, 10, 64)
	if err != nil {
		panic(fmt.Sprintf("coordinator: invalid seed %q: %v", userSeed, err))
	}
	return fmt.Sprintf("%d", hashSeed(n, rngIndex))
}

func hashSeed(userSeed int64, rngIndex int) int64 {
	h := uint64(userSeed)
	h = h*1099511628211 + uint64(uint32(rngIndex))
	h ^= 0xcbf29ce484222325
	return int64(h & 0x7fffffffffffffff)
}

// localMeasurementCount returns how many measurements this walker should
// perform under the fixed-per-walker regime: a fixed, deterministic
// workload.Split share of this process's measurement total. It is only
// consulted in that regime; otherwise walkers claim units one at a time
// through nextSharedMeasurement. cfg.Measurements is the global budget
// across all processes; totalMeasurements (set by Initialize via
// workload.SplitFor) is this process's share of it, and is what actually
// gets split across walkers or bounds the shared counter.
func (c *Coordinator) localMeasurementCount(walkerIdx int) int {
	return workload.Split(c.totalMeasurements, c.table.NumWalkerRoles(), walkerIdx)
}

// nextSharedMeasurement claims the next unit of this process's measurement
// budget. Returns false once the budget is exhausted.
func (c *Coordinator) nextSharedMeasurement(counter *atomic.Int64) bool {
	for {
		cur := counter.Load()
		if cur >= int64(c.totalMeasurements) {
			return false
		}
		if counter.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

func (c *Coordinator) runWalker(threadID, walkerIdx int, source *rng.Source, stack *idleStack, measurementsDone *atomic.Int64, errs chan<- error) {
	defer func() {
		if r := recover(); r != nil {
			errs <- fmt.Errorf("coordinator: walker thread %d panicked: %v", threadID, r)
		}
	}()

	w := c.newWalker(threadID, walkerIdx, source)

	if c.snapshots != nil && walkerIdx < len(c.snapshots) && len(c.snapshots[walkerIdx]) > 0 {
		w.ReadConfig(c.snapshots[walkerIdx])
	}
	w.Initialize()
	for i := 0; i < c.cfg.WarmUpSweeps; i++ {
		w.DoSweep()
	}
	w.SetThermalized(true)

	local := 0
	if c.cfg.FixedPerWalker {
		local = c.localMeasurementCount(walkerIdx)
	}

	done := 0
	for {
		if c.cfg.FixedPerWalker {
			if done >= local {
				break
			}
		} else {
			if !c.nextSharedMeasurement(measurementsDone) {
				break
			}
		}

		w.DoSweep()
		done++

		if c.cfg.FixedPerWalker {
			if walkerIdx == 0 {
				w.UpdateShell(done, local)
			}
		} else {
			w.UpdateShell(int(measurementsDone.Load()), c.totalMeasurements)
		}

		start := time.Now()
		sl, ok := stack.pop()
		c.cfg.Metrics.ObserveRendezvousWait(time.Since(start))
		if !ok {
			// Rendezvous already drained: no accumulator can ever serve
			// this sample. This cannot happen while any walker is still
			// sweeping, so treat it as a logic error rather than silently
			// dropping the sample.
			errs <- fmt.Errorf("coordinator: walker %d popped from a drained rendezvous", walkerIdx)
			return
		}
		sl.ch <- sampleOrDone{walker: w}
		c.cfg.Metrics.IncSamplesAccumulated()
	}

	stack.walkerFinished()
	c.walkerFingerprints[threadID] = w.DeviceFingerprint()
	w.PrintSummary()
	c.storeSnapshot(walkerIdx, w.DumpConfig())
}

func (c *Coordinator) runAccumulator(threadID int, stack *idleStack, errs chan<- error) {
	defer func() {
		if r := recover(); r != nil {
			errs <- fmt.Errorf("coordinator: accumulator thread %d panicked: %v", threadID, r)
		}
	}()

	acc := c.accFactory.New(threadID)
	acc.Initialize(c.cfg.DCAIteration)

	sl := &slot{acc: acc, ch: make(chan sampleOrDone, 1)}
	for {
		if !stack.pushOrDone(sl) {
			break
		}
		c.cfg.Metrics.SetIdleAccumulators(stack.idleCount())

		msg := <-sl.ch
		if msg.done {
			break
		}
		acc.UpdateFrom(msg.walker)
		acc.Measure()
		c.cfg.Metrics.IncMeasurements()
	}

	c.merge.Lock()
	acc.SumTo(c.global)
	c.merge.Unlock()
	c.accumFingerprints[threadID] = acc.DeviceFingerprint()
}

func (c *Coordinator) runCombined(threadID, walkerIdx int, source *rng.Source, stack *idleStack, measurementsDone *atomic.Int64, errs chan<- error) {
	defer func() {
		if r := recover(); r != nil {
			errs <- fmt.Errorf("coordinator: combined thread %d panicked: %v", threadID, r)
		}
	}()

	w := c.newWalker(threadID, walkerIdx, source)
	acc := c.accFactory.New(threadID)

	if c.snapshots != nil && walkerIdx < len(c.snapshots) && len(c.snapshots[walkerIdx]) > 0 {
		w.ReadConfig(c.snapshots[walkerIdx])
	}
	w.Initialize()
	acc.Initialize(c.cfg.DCAIteration)
	for i := 0; i < c.cfg.WarmUpSweeps; i++ {
		w.DoSweep()
	}
	w.SetThermalized(true)

	local := 0
	if c.cfg.FixedPerWalker {
		local = c.localMeasurementCount(walkerIdx)
	}

	done := 0
	for {
		if c.cfg.FixedPerWalker {
			if done >= local {
				break
			}
		} else {
			if !c.nextSharedMeasurement(measurementsDone) {
				break
			}
		}
		w.DoSweep()
		done++
		acc.UpdateFrom(w)
		acc.Measure()
		c.cfg.Metrics.IncMeasurements()
	}

	stack.walkerFinished()
	w.PrintSummary()
	c.storeSnapshot(walkerIdx, w.DumpConfig())

	c.merge.Lock()
	acc.SumTo(c.global)
	c.merge.Unlock()
	c.walkerFingerprints[threadID] = w.DeviceFingerprint()
	c.accumFingerprints[threadID] = acc.DeviceFingerprint()
}

// storeSnapshot records walkerIdx's final configuration. Every walker and
// combined thread calls this concurrently at the end of its run, so the
// lazy init of c.snapshots (first caller in, on the first-ever iteration
// with no prior Initialize) is guarded rather than left racy.
func (c *Coordinator) storeSnapshot(walkerIdx int, cfg []byte) {
	if c.cfg.Snapshots == nil {
		return
	}
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	if c.snapshots == nil {
		c.snapshots = make([][]byte, c.table.NumWalkerRoles())
	}
	if walkerIdx < len(c.snapshots) {
		c.snapshots[walkerIdx] = cfg
	}
}
