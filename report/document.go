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

package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/draphael123/docdecoupler"
	"github.com/draphael123/docdecoupler/internal/byteview"
)

// Source identifies the part of a result a line of a generated document comes from.
type Source int

const (
	FromShared Source = iota
	FromUniqueA
	FromUniqueB
)

// String returns the section title of s.
func (s Source) String() string {
	switch s {
	case FromShared:
		return "Shared Content"
	case FromUniqueA:
		return "Unique to Document A"
	case FromUniqueB:
		return "Unique to Document B"
	}
	panic("never reached")
}

// Selection configures which lines of a result end up in a generated document.
type Selection struct {
	Title string

	Shared  bool // Include shared lines, taken from document A.
	UniqueA bool // Include lines unique to document A.
	UniqueB bool // Include lines unique to document B.

	OnlyShared bool // Exclude unique lines, regardless of UniqueA and UniqueB.
	OnlyUnique bool // Exclude shared lines, regardless of Shared.

	// Filters for shared lines.
	HideExact      bool
	HideFuzzy      bool
	HideOverridden bool    // Hide lines from matches with any override.
	MinConfidence  float64 // Hide lines from matches with a lower confidence.

	PageNumbers        bool // Prefix every line with its page number.
	HideSectionHeaders bool
	SourceInfo         bool // List the included sections after the title.
}

// Entry is a line of a generated document.
type Entry struct {
	Source Source
	Page   int
	Text   string
}

// Document is a document generated from a result.
type Document struct {
	Title     string
	Generated time.Time // If not zero, it's printed in the source info.
	Sections  []Source
	Entries   []Entry

	pageNumbers    bool
	sectionHeaders bool
	sourceInfo     bool
}

// Build generates a document from the lines in r selected by sel.
//
// Lines are ordered by their page number. Lines from the same page keep the order of their
// sections: shared lines in match order, then the lines unique to A and B in document order.
func Build(r decouple.Result, sel Selection) Document {
	doc := Document{
		Title:          sel.Title,
		pageNumbers:    sel.PageNumbers,
		sectionHeaders: !sel.HideSectionHeaders,
		sourceInfo:     sel.SourceInfo,
	}
	if doc.Title == "" {
		doc.Title = "Generated Document"
	}

	if sel.Shared && !sel.OnlyUnique {
		doc.Sections = append(doc.Sections, FromShared)
		for _, m := range r.Matches {
			if m.Override == decouple.Unique || !sel.keep(m) {
				continue
			}
			doc.Entries = append(doc.Entries, Entry{FromShared, m.A.Page, m.A.Raw})
		}
	}
	if sel.UniqueA && !sel.OnlyShared {
		doc.Sections = append(doc.Sections, FromUniqueA)
		for _, u := range r.UniqueA {
			doc.Entries = append(doc.Entries, Entry{FromUniqueA, u.Page, u.Raw})
		}
	}
	if sel.UniqueB && !sel.OnlyShared {
		doc.Sections = append(doc.Sections, FromUniqueB)
		for _, u := range r.UniqueB {
			doc.Entries = append(doc.Entries, Entry{FromUniqueB, u.Page, u.Raw})
		}
	}

	slices.SortStableFunc(doc.Entries, func(a, b Entry) int { return cmp.Compare(a.Page, b.Page) })
	return doc
}

func (sel Selection) keep(m decouple.Match) bool {
	switch {
	case sel.HideOverridden && m.Override != decouple.Undecided:
		return false
	case sel.HideExact && m.Type == decouple.Exact:
		return false
	case sel.HideFuzzy && m.Type == decouple.Fuzzy:
		return false
	case m.Confidence < sel.MinConfidence:
		return false
	}
	return true
}

// ContentStats counts the lines of a document per section.
type ContentStats struct {
	Total, Shared, UniqueA, UniqueB int
}

// Stats counts the entries of d per section.
func (d Document) Stats() ContentStats {
	var st ContentStats
	for _, e := range d.Entries {
		switch e.Source {
		case FromShared:
			st.Shared++
		case FromUniqueA:
			st.UniqueA++
		case FromUniqueB:
			st.UniqueB++
		}
	}
	st.Total = len(d.Entries)
	return st
}

// Text renders the document as plain text. A section header is printed whenever the section
// changes between two consecutive entries.
func (d Document) Text() string {
	var b byteview.Builder
	b.WriteString(d.Title + "\n")
	b.WriteString(strings.Repeat("=", len(d.Title)) + "\n\n")

	if d.sourceInfo && len(d.Sections) > 0 {
		b.WriteString("Source Information\n")
		b.WriteString("------------------\n")
		names := make([]string, len(d.Sections))
		for i, s := range d.Sections {
			names[i] = s.String()
		}
		fmt.Fprintf(&b, "Sections included: %s\n", strings.Join(names, ", "))
		if !d.Generated.IsZero() {
			fmt.Fprintf(&b, "Generated: %s\n", d.Generated.UTC().Format(time.RFC3339))
		}
		b.WriteString("\n")
	}

	current := Source(-1)
	for _, e := range d.Entries {
		if e.Source != current && d.sectionHeaders {
			fmt.Fprintf(&b, "=== %v ===\n\n", e.Source)
		}
		current = e.Source
		if d.pageNumbers {
			fmt.Fprintf(&b, "[Page %d] ", e.Page)
		}
		b.WriteString(e.Text + "\n\n")
	}
	return b.Build()
}
