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

// Package impl contains the matchers that pair lines of two documents.
//
// The matchers work on plain indexes into the inputs of the caller and never see the user facing
// types. All state is local to a single call, the matchers are pure functions of their inputs.
package impl

import "github.com/draphael123/docdecoupler/internal/rvecs"

// Pair describes a matched pair x[S], y[T] and its score in [0, 1].
type Pair struct {
	S, T  int
	Score float64
}

// Exact pairs elements of x and y with identical fingerprints.
//
// The assignment is greedy: x is processed in order and every x[s] is paired with the first
// unpaired y[t] that has the same fingerprint. If k elements in x and y share a fingerprint, they
// are paired in their original relative order. Every pair has a score of 1.
//
// Exact returns the pairs in increasing order of S, and the indexes of all unpaired elements in x
// and y.
func Exact(x, y []string) (pairs []Pair, freeX, freeY []int) {
	rx, ry := rvecs.Make(x, y)

	// Index y by fingerprint. Instead of a map to a list of candidates, candidates with the same
	// fingerprint are chained via next; head[id] is the first unconsumed candidate for id. This
	// makes consuming the first candidate O(1).
	ids := make(map[string]int, len(y))
	head := make([]int, 0, len(y))
	tail := make([]int, 0, len(y))
	next := make([]int, len(y))
	for t, fp := range y {
		next[t] = rvecs.None
		id, ok := ids[fp]
		if !ok {
			id = len(head)
			ids[fp] = id
			head = append(head, t)
			tail = append(tail, t)
			continue
		}
		next[tail[id]] = t
		tail[id] = t
	}

	var n int
	for s, fp := range x {
		id, ok := ids[fp]
		if !ok {
			continue
		}
		t := head[id]
		if t == rvecs.None {
			continue // All candidates consumed.
		}
		head[id] = next[t]
		rvecs.Pair(rx, ry, s, t)
		n++
	}

	if n > 0 {
		pairs = make([]Pair, 0, n)
		for s, t := range rvecs.Pairs(rx) {
			pairs = append(pairs, Pair{S: s, T: t, Score: 1})
		}
	}
	return pairs, rvecs.Free(rx), rvecs.Free(ry)
}
