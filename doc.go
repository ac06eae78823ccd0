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

// Package decouple compares two documents line by line and classifies every line as shared
// (appearing exactly or approximately in both documents) or unique (appearing in only one).
//
// The input to a comparison are two ordered sequences of [TextUnit]s, one per document, usually
// produced by the [github.com/draphael123/docdecoupler/extract] package. [Compare] runs the
// matching pipeline:
//
//  1. Exact matching pairs lines with identical fingerprints of their normalized text. Lines are
//     paired greedily in document order.
//  2. Fuzzy matching pairs the remaining lines if the Jaccard index of their token sets is at
//     least the configured [Threshold]. Every line of A is paired with its best unpaired
//     candidate in B.
//  3. Partitioning derives the shared and unique lines from the matches.
//
// A reviewer can reclassify individual matches; [ApplyOverrides] recomputes the partitions for a
// set of decisions without rerunning the matchers.
//
// Performance: Exact matching is O(N+M). Fuzzy matching compares every unmatched line of A with
// every unmatched line of B and is O(N*M) for N and M unmatched lines. There's no indexing or
// bucketing of candidates, inputs are expected to have at most tens of thousands of lines.
//
// Note: All functions in this package are synchronous and don't start goroutines. For running a
// comparison in the background, see [github.com/draphael123/docdecoupler/session].
package decouple
