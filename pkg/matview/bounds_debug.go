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

//go:build qmcdebug

package matview

import "fmt"

// checkBounds panics on an out-of-range element access. Only compiled in
// with -tags qmcdebug; release builds skip the check entirely (see
// bounds_release.go), matching a debug-only assert's semantics.
func checkBounds(i, j, rows, cols int) {
	if i < 0 || i >= rows || j < 0 || j >= cols {
		panic(fmt.Sprintf("matview: index (%d,%d) out of bounds for %dx%d matrix", i, j, rows, cols))
	}
}
