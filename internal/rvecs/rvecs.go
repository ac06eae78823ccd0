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

// Package rvecs contains functions to work with the result vectors, the internal representation
// of a matching that's used by the matchers and is then translated to the user facing API.
//
// A matching between x and y is represented by two vectors rx and ry with len(rx) == len(x) and
// len(ry) == len(y). rx[s] is the index of the element in y that x[s] is paired with or [None] if
// x[s] is unpaired, and the other way around for ry. Both vectors are always kept consistent, that
// is rx[s] == t if and only if ry[t] == s.
package rvecs

import "iter"

// None marks an unpaired element.
const None = -1

// Make returns result vectors for x and y with every element unpaired.
func Make[T any](x, y []T) (rx, ry []int) {
	r := make([]int, len(x)+len(y))
	for i := range r {
		r[i] = None
	}
	rx = r[:len(x):len(x)]
	ry = r[len(x):]
	return
}

// Pair pairs x[s] with y[t]. It panics if either of them is already paired, because a matching
// must be a partial bijection.
func Pair(rx, ry []int, s, t int) {
	if rx[s] != None || ry[t] != None {
		panic("element paired twice")
	}
	rx[s] = t
	ry[t] = s
}

// Free returns the indexes of all unpaired elements of r in increasing order.
func Free(r []int) []int {
	var n int
	for _, v := range r {
		if v == None {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	out := make([]int, 0, n)
	for i, v := range r {
		if v == None {
			out = append(out, i)
		}
	}
	return out
}

// Pairs returns an iterator over all pairs (s, t) in increasing order of s.
func Pairs(rx []int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for s, t := range rx {
			if t == None {
				continue
			}
			if !yield(s, t) {
				return
			}
		}
	}
}
