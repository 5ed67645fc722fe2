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
	"sync"

	"dcaqmc/internal/qmc/contract"
)

// sampleOrDone is the private "sample available" signal an accumulator
// blocks on. done set means the coordinator is terminating the
// rendezvous; the accumulator must exit its loop without measuring.
type sampleOrDone struct {
	walker contract.Walker
	done   bool
}

// slot is one accumulator's rendezvous handle: the channel a walker sends
// a sample (or the coordinator sends termination) through.
type slot struct {
	acc contract.Accumulator
	ch  chan sampleOrDone
}

// idleStack is the LIFO of accumulators ready to receive a sample, plus a
// buffered token channel a walker can block on when the LIFO is empty.
// Popping under mu and then finding no free slot is impossible: pushOrDone
// publishes to both the LIFO and the free-slot channel atomically under mu,
// and pop only removes from the LIFO after receiving a token, under the
// same mu. This realizes the idle stack as message-passing rather than an
// intrusive mutex+condvar+stack, while keeping its LIFO tie-break and its
// "no accumulator exits while its private event may still be signaled"
// guarantee.
type idleStack struct {
	mu        sync.Mutex
	stack     []*slot
	freeSlots chan struct{}

	walkFinished int
	walkersTotal int
	drained      bool
}

func newIdleStack(accumulators, walkersTotal int) *idleStack {
	return &idleStack{
		freeSlots:    make(chan struct{}, accumulators),
		walkersTotal: walkersTotal,
	}
}

// pushOrDone is the accumulator side of the rendezvous loop step: under
// the idle-stack mutex, if every walker has finished, exit the loop;
// otherwise push self onto the idle stack. Both the check and the push
// happen under mu so an
// accumulator can never publish itself after the drain has already run.
// Returns false when the accumulator should exit without publishing.
func (s *idleStack) pushOrDone(sl *slot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.walkFinished == s.walkersTotal {
		return false
	}
	s.stack = append(s.stack, sl)
	s.freeSlots <- struct{}{}
	return true
}

// pop blocks until a slot is free, then returns the most recently pushed
// one (LIFO). Returns ok=false if the rendezvous has already been drained —
// the caller (a walker) must stop issuing pops once this happens, so that
// no walker blocks forever.
func (s *idleStack) pop() (*slot, bool) {
	<-s.freeSlots
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) == 0 {
		return nil, false
	}
	n := len(s.stack) - 1
	sl := s.stack[n]
	s.stack = s.stack[:n]
	return sl, true
}

// walkerFinished increments the finished-walker count and, once every
// walker has finished, drains every currently idle accumulator with a
// termination signal so no accumulator is left blocked on a depleted
// producer. Must be called exactly once per walker thread (or, for a
// combined walker+accumulator thread, once per combined thread).
func (s *idleStack) walkerFinished() {
	s.mu.Lock()
	s.walkFinished++
	var toNotify []*slot
	if s.walkFinished == s.walkersTotal && !s.drained {
		toNotify = s.stack
		s.stack = nil
		s.drained = true
	}
	s.mu.Unlock()

	for _, sl := range toNotify {
		sl.acc.NotifyDone()
		sl.ch <- sampleOrDone{done: true}
	}
}

// idleCount reports how many accumulators are currently parked on the
// stack, for the idle-accumulator gauge.
func (s *idleStack) idleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}
