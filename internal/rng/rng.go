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

// Package rng builds the per-walker random source from a process's
// position in the run (id, process count) and a user-supplied seed.
package rng

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strconv"
)

// Source is a per-walker random source. It wraps math/rand/v2's PCG so the
// stream is fast and has a well-defined, reproducible construction from a
// seed.
type Source struct {
	*rand.Rand
}

// New builds the RNG for one walker, following the construction contract
// Rng(concurrency.id(), concurrency.number_of_processors(), seed): the
// stream is a deterministic function of (processID, processCount, seed)
// unless seed is the literal string "random", in which case it is drawn
// from crypto/rand and practically never repeats across calls.
func New(processID, processCount int, seed string) *Source {
	var seed1, seed2 uint64
	if seed == "random" {
		seed1, seed2 = randomSeeds()
	} else {
		n, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			panic(fmt.Sprintf("rng: invalid seed %q: %v", seed, err))
		}
		seed1 = foldSeed(n, processID, processCount)
		seed2 = foldSeed(n, processCount, processID) ^ 0x9e3779b97f4a7c15
	}
	return &Source{Rand: rand.New(rand.NewPCG(seed1, seed2))}
}

// foldSeed combines the user seed with the walker's position in the run so
// that distinct (processID, processCount) pairs with the same user seed
// still draw distinct streams.
func foldSeed(userSeed int64, a, b int) uint64 {
	h := uint64(userSeed)
	h = h*1099511628211 + uint64(uint32(a))
	h = h*1099511628211 + uint64(uint32(b))
	return h
}

// randomSeeds draws 16 bytes from crypto/rand and folds them into two PCG
// seed words. The "random" seeding requirement is that successive
// calls yield, with overwhelming probability, distinct nonzero-entropy
// streams — not a cryptographic guarantee, which this doesn't need.
func randomSeeds() (uint64, uint64) {
	var buf [16]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("rng: crypto/rand unavailable: %v", err))
	}
	return binary.LittleEndian.Uint64(buf[:8]), binary.LittleEndian.Uint64(buf[8:])
}
