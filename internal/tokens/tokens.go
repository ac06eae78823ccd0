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

// Package tokens splits normalized text into tokens and computes the set overlap similarity used
// for fuzzy matching.
package tokens

import (
	"slices"
	"strings"

	"github.com/draphael123/docdecoupler/internal/normalize"
)

// Tokenize splits s on runs of whitespace and drops empty tokens.
func Tokenize(s string) []string {
	toks := strings.FieldsFunc(s, normalize.IsSpace)
	if len(toks) == 0 {
		return nil
	}
	return toks
}

// Similarity returns the Jaccard index of the token sets of a and b. Duplicate tokens collapse.
//
// If both a and b are empty, the similarity is 1. If only one of them is empty, it's 0.
func Similarity(a, b []string) float64 {
	return NewSet(a).Jaccard(NewSet(b))
}

// Set is an immutable set of tokens.
//
// A Set is precomputed once per line so that comparing a line against many others doesn't need
// to rebuild hash sets for every pair. Internally, it's a sorted slice of unique tokens which
// allows intersecting two sets with a single merge pass.
type Set struct {
	toks []string
}

// NewSet creates a token set from toks.
func NewSet(toks []string) Set {
	if len(toks) == 0 {
		return Set{}
	}
	s := slices.Clone(toks)
	slices.Sort(s)
	return Set{slices.Compact(s)}
}

// Len returns the number of unique tokens in the set.
func (s Set) Len() int { return len(s.toks) }

// Jaccard returns |s ∩ t| / |s ∪ t|, see [Similarity] for the handling of empty sets.
func (s Set) Jaccard(t Set) float64 {
	n, m := len(s.toks), len(t.toks)
	switch {
	case n == 0 && m == 0:
		return 1
	case n == 0 || m == 0:
		return 0
	}

	common := 0
	for i, j := 0, 0; i < n && j < m; {
		switch strings.Compare(s.toks[i], t.toks[j]) {
		case -1:
			i++
		case +1:
			j++
		default:
			common++
			i++
			j++
		}
	}
	return float64(common) / float64(n+m-common)
}
