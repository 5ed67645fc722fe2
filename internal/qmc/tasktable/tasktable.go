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

// Package tasktable assigns each worker thread one of three roles (walk,
// accumulate, or both) given configured walker/accumulator counts and
// whether the run shares the first few threads across both roles.
package tasktable

import "fmt"

// Role is the task a single thread in the table performs.
type Role int

const (
	RoleWalker Role = iota
	RoleAccumulator
	RoleBoth
)

func (r Role) String() string {
	switch r {
	case RoleWalker:
		return "walker"
	case RoleAccumulator:
		return "accumulator"
	case RoleBoth:
		return "walker and accumulator"
	default:
		return fmt.Sprintf("tasktable.Role(%d)", int(r))
	}
}

// Entry is one row of the table: a role, plus (for walker and combined
// entries) the RNG index the owning walker should use.
type Entry struct {
	Role     Role
	RNGIndex int
}

// Table is the full thread-to-role assignment for a run: length
// W + A - S, where S = min(W, A) if shared is set, else 0.
type Table []Entry

// New builds a Table for walkers walker threads and accumulators
// accumulator threads. When shared is true, the first min(walkers,
// accumulators) threads do both roles instead of one each. Returns an
// invariant-violation error if walkers < 1 or accumulators < 1 — the
// coordinator decides whether that is fatal.
func New(walkers, accumulators int, shared bool) (Table, error) {
	if walkers < 1 {
		return nil, fmt.Errorf("tasktable: walkers must be >= 1, got %d", walkers)
	}
	if accumulators < 1 {
		return nil, fmt.Errorf("tasktable: accumulators must be >= 1, got %d", accumulators)
	}

	shared_ := 0
	if shared {
		shared_ = min(walkers, accumulators)
	}

	table := make(Table, 0, walkers+accumulators-shared_)
	for i := 0; i < shared_; i++ {
		table = append(table, Entry{Role: RoleBoth, RNGIndex: i})
	}
	for i := shared_; i < walkers; i++ {
		table = append(table, Entry{Role: RoleWalker, RNGIndex: i})
	}
	for i := 0; i < accumulators-shared_; i++ {
		table = append(table, Entry{Role: RoleAccumulator})
	}
	return table, nil
}

// NumWalkerRoles reports how many entries perform walker work (RoleWalker or
// RoleBoth), i.e. the number of walkers that will run.
func (t Table) NumWalkerRoles() int {
	n := 0
	for _, e := range t {
		if e.Role == RoleWalker || e.Role == RoleBoth {
			n++
		}
	}
	return n
}
