// Copyright 2025 The docdecoupler Authors
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

package impl

import (
	"slices"

	"github.com/draphael123/docdecoupler/internal/rvecs"
	"github.com/draphael123/docdecoupler/internal/tokens"
)

// ProgressInterval is the number of elements of x processed between two progress reports in
// [Fuzzy].
const ProgressInterval = 10

// Fuzzy pairs elements of x and y whose token sets have a similarity of at least threshold.
//
// The assignment is greedy: x is processed in order and every x[s] is compared with all unpaired
// elements of y. x[s] is paired with the best scoring candidate; on ties the candidate that comes
// first in y wins. This takes O(len(x)*len(y)) similarity computations.
//
// If progress is not nil, it's called with the number of processed elements of x every
// [ProgressInterval] elements. It has no influence on the result.
//
// Fuzzy returns the pairs in increasing order of S.
func Fuzzy(x, y []tokens.Set, threshold float64, progress func(done, total int)) []Pair {
	rx, ry := rvecs.Make(x, y)

	// Unpaired elements of y in their original order. Scanning this instead of all of y skips
	// candidates that have been consumed already.
	free := make([]int, len(y))
	for t := range free {
		free[t] = t
	}

	var pairs []Pair
	for s := range x {
		if progress != nil && s%ProgressInterval == 0 {
			progress(s, len(x))
		}

		best, bestScore := -1, 0.0 // best is an index into free
		for i, t := range free {
			score := x[s].Jaccard(y[t])
			if score < threshold {
				continue
			}
			if best < 0 || score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			continue
		}

		t := free[best]
		rvecs.Pair(rx, ry, s, t)
		pairs = append(pairs, Pair{S: s, T: t, Score: bestScore})
		free = slices.Delete(free, best, best+1)
	}
	if progress != nil && len(x) > 0 {
		progress(len(x), len(x))
	}
	return pairs
}
