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

package decouple

import (
	"errors"
	"fmt"

	"github.com/draphael123/docdecoupler/internal/config"
	"github.com/draphael123/docdecoupler/internal/impl"
	"github.com/draphael123/docdecoupler/internal/tokens"
)

var (
	// ErrInvalidThreshold is returned for a fuzzy threshold outside of [0, 1].
	ErrInvalidThreshold = config.ErrThreshold

	// ErrInvalidInput is returned if the units passed to a comparison are inconsistent, e.g. if
	// a unit is passed for the wrong document or two units share an ID.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvariant is returned if the matching violates one of its invariants. This always
	// indicates a bug; no partial result is returned.
	ErrInvariant = errors.New("invariant violation")
)

// MatchType describes how a match was found.
//
//go:generate go tool golang.org/x/tools/cmd/stringer -type=MatchType -linecomment
type MatchType int

const (
	Exact MatchType = iota // exact
	Fuzzy                  // fuzzy
)

// Decision is a reviewer's classification of a match.
//
//go:generate go tool golang.org/x/tools/cmd/stringer -type=Decision -linecomment
type Decision int

const (
	Undecided Decision = iota // none
	Shared                    // shared
	Unique                    // unique
)

// Match describes a pair of lines from A and B that are considered the same.
type Match struct {
	ID         string    `json:"id"`
	A          TextUnit  `json:"unitA"`
	B          TextUnit  `json:"unitB"`
	Confidence float64   `json:"confidence"`             // 1 for exact matches, the similarity otherwise.
	Type       MatchType `json:"matchType"`              // How the match was found.
	Override   Decision  `json:"userOverride,omitempty"` // Reviewer decision, if any.
}

// MatchID returns the ID of the match between a and b.
func MatchID(a, b TextUnit) string {
	return "match-" + a.ID + "-" + b.ID
}

// Result is the result of a comparison.
//
// Every unit of A is either in Shared or in UniqueA, every unit of B is either in Shared or in
// UniqueB. Shared lists the shared units of A in document order followed by those of B.
//
// A Result is a value: it's never modified by this package after it has been returned and it must
// not be modified by callers. Results share their unit slices.
type Result struct {
	UnitsA  []TextUnit `json:"unitsA"`
	UnitsB  []TextUnit `json:"unitsB"`
	Matches []Match    `json:"matches"`
	Shared  []TextUnit `json:"sharedUnits"`
	UniqueA []TextUnit `json:"uniqueA"`
	UniqueB []TextUnit `json:"uniqueB"`
}

// Compare matches the units of document A with the units of document B and partitions them into
// shared and unique units.
//
// The matches are ordered: exact matches in the order of a, followed by fuzzy matches in the order
// of a. Compare is deterministic, running it twice on the same inputs returns identical results.
// Empty inputs are valid.
//
// The following options are supported: [Threshold], [Observer]
func Compare(a, b []TextUnit, opts ...Option) (Result, error) {
	cfg := config.FromOptions(opts, config.Threshold|config.Progress)
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := checkUnits(DocA, a); err != nil {
		return Result{}, err
	}
	if err := checkUnits(DocB, b); err != nil {
		return Result{}, err
	}

	p := pipeline{progress: cfg.Progress}
	p.report(0, "Starting match pipeline...")

	p.enter(ExactMatching)
	p.report(0.1, "Finding exact matches...")
	exact, freeA, freeB := impl.Exact(fingerprints(a), fingerprints(b))

	p.enter(FuzzyMatching)
	p.report(0.4, "Finding fuzzy matches...")
	var progress func(done, total int)
	if p.progress != nil {
		progress = func(done, total int) {
			p.report(0.4+0.5*float64(done)/float64(total), "Finding fuzzy matches...")
		}
	}
	fuzzy := impl.Fuzzy(tokenSets(a, freeA), tokenSets(b, freeB), cfg.Threshold, progress)

	p.enter(Partitioning)
	p.report(0.9, "Organizing results...")
	matches := make([]Match, 0, len(exact)+len(fuzzy))
	for _, m := range exact {
		matches = append(matches, newMatch(a[m.S], b[m.T], m.Score, Exact))
	}
	for _, m := range fuzzy {
		matches = append(matches, newMatch(a[freeA[m.S]], b[freeB[m.T]], m.Score, Fuzzy))
	}
	r, err := partition(a, b, matches)
	if err != nil {
		return Result{}, err
	}

	p.enter(Done)
	p.report(1, fmt.Sprintf("Found %d matches", len(matches)))
	return r, nil
}

// ApplyOverrides returns a copy of r with the reviewer decisions in overrides applied.
//
// The overrides map from match ID to a decision. A match without an entry has no override. The
// shared and unique units are recomputed from scratch: a match contributes its units to the shared
// units unless it's overridden as [Unique]. Overridden matches are never removed from the matches.
// IDs that don't belong to a match in r are ignored.
//
// ApplyOverrides(r, nil) returns the partition computed by [Compare].
func ApplyOverrides(r Result, overrides map[string]Decision) (Result, error) {
	if err := checkUnits(DocA, r.UnitsA); err != nil {
		return Result{}, err
	}
	if err := checkUnits(DocB, r.UnitsB); err != nil {
		return Result{}, err
	}

	matches := make([]Match, len(r.Matches))
	for i, m := range r.Matches {
		d := overrides[m.ID]
		if d < Undecided || d > Unique {
			return Result{}, fmt.Errorf("%w: unknown decision %v for %s", ErrInvalidInput, d, m.ID)
		}
		m.Override = d
		matches[i] = m
	}
	return partition(r.UnitsA, r.UnitsB, matches)
}

// Stats summarizes a result.
type Stats struct {
	Matches    int `json:"matches"`
	Exact      int `json:"exact"`
	Fuzzy      int `json:"fuzzy"`
	Overridden int `json:"overridden"`
	Shared     int `json:"shared"`
	UniqueA    int `json:"uniqueA"`
	UniqueB    int `json:"uniqueB"`
}

// Stats returns summary statistics for r.
func (r Result) Stats() Stats {
	s := Stats{
		Matches: len(r.Matches),
		Shared:  len(r.Shared),
		UniqueA: len(r.UniqueA),
		UniqueB: len(r.UniqueB),
	}
	for _, m := range r.Matches {
		switch m.Type {
		case Exact:
			s.Exact++
		case Fuzzy:
			s.Fuzzy++
		}
		if m.Override != Undecided {
			s.Overridden++
		}
	}
	return s
}

// partition computes the shared and unique units of a and b.
func partition(a, b []TextUnit, matches []Match) (Result, error) {
	inA := ids(a)
	inB := ids(b)
	pairedA := make(map[string]bool, len(matches))
	pairedB := make(map[string]bool, len(matches))
	sharedA := make(map[string]bool, len(matches))
	sharedB := make(map[string]bool, len(matches))
	for _, m := range matches {
		switch {
		case !inA[m.A.ID]:
			return Result{}, fmt.Errorf("%w: match %s references unknown unit %s", ErrInvariant, m.ID, m.A.ID)
		case !inB[m.B.ID]:
			return Result{}, fmt.Errorf("%w: match %s references unknown unit %s", ErrInvariant, m.ID, m.B.ID)
		case pairedA[m.A.ID]:
			return Result{}, fmt.Errorf("%w: unit %s is part of more than one match", ErrInvariant, m.A.ID)
		case pairedB[m.B.ID]:
			return Result{}, fmt.Errorf("%w: unit %s is part of more than one match", ErrInvariant, m.B.ID)
		}
		pairedA[m.A.ID] = true
		pairedB[m.B.ID] = true
		if m.Override == Unique {
			continue
		}
		sharedA[m.A.ID] = true
		sharedB[m.B.ID] = true
	}

	r := Result{
		UnitsA:  a,
		UnitsB:  b,
		Matches: matches,
		Shared:  make([]TextUnit, 0, len(sharedA)+len(sharedB)),
		UniqueA: make([]TextUnit, 0, len(a)-len(sharedA)),
		UniqueB: make([]TextUnit, 0, len(b)-len(sharedB)),
	}
	for _, u := range a {
		if sharedA[u.ID] {
			r.Shared = append(r.Shared, u)
		} else {
			r.UniqueA = append(r.UniqueA, u)
		}
	}
	for _, u := range b {
		if sharedB[u.ID] {
			r.Shared = append(r.Shared, u)
		} else {
			r.UniqueB = append(r.UniqueB, u)
		}
	}
	return r, nil
}

func checkUnits(doc DocID, units []TextUnit) error {
	seen := make(map[string]bool, len(units))
	for _, u := range units {
		if u.Doc != doc {
			return fmt.Errorf("%w: unit %s belongs to document %s, not %s", ErrInvalidInput, u.ID, u.Doc, doc)
		}
		if seen[u.ID] {
			return fmt.Errorf("%w: duplicate unit %s", ErrInvalidInput, u.ID)
		}
		seen[u.ID] = true
	}
	return nil
}

func newMatch(a, b TextUnit, confidence float64, typ MatchType) Match {
	return Match{
		ID:         MatchID(a, b),
		A:          a,
		B:          b,
		Confidence: confidence,
		Type:       typ,
	}
}

func ids(units []TextUnit) map[string]bool {
	m := make(map[string]bool, len(units))
	for _, u := range units {
		m[u.ID] = true
	}
	return m
}

func fingerprints(units []TextUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Fingerprint
	}
	return out
}

func tokenSets(units []TextUnit, idx []int) []tokens.Set {
	out := make([]tokens.Set, len(idx))
	for i, j := range idx {
		out[i] = tokens.NewSet(tokens.Tokenize(units[j].Normalized))
	}
	return out
}

// pipeline tracks the stage of a running comparison.
type pipeline struct {
	stage    Stage
	progress func(stage int, fraction float64, msg string)
}

// enter advances the pipeline to the next stage.
func (p *pipeline) enter(next Stage) {
	if next != p.stage+1 {
		panic(fmt.Sprintf("pipeline can't go from stage %v to %v", p.stage, next))
	}
	p.stage = next
}

func (p *pipeline) report(fraction float64, msg string) {
	if p.progress != nil {
		p.progress(int(p.stage), fraction, msg)
	}
}
