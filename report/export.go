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

// Package report renders comparison results for humans and for other programs.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/draphael123/docdecoupler"
	"github.com/goccy/go-yaml"
)

// Names are the display names of the compared documents, usually their file names.
type Names struct {
	A, B string
}

// Data is the exported form of a comparison result.
type Data struct {
	Metadata        Metadata      `json:"metadata" yaml:"metadata"`
	CanonicalShared []SharedEntry `json:"canonicalShared" yaml:"canonicalShared"`
	UniqueByDoc     UniqueByDoc   `json:"uniqueByDoc" yaml:"uniqueByDoc"`
	AllMatches      []MatchEntry  `json:"allMatches" yaml:"allMatches"`
}

// Metadata describes the export and the compared documents.
type Metadata struct {
	ExportDate   time.Time `json:"exportDate" yaml:"exportDate"`
	DocAName     string    `json:"docAName" yaml:"docAName"`
	DocBName     string    `json:"docBName" yaml:"docBName"`
	TotalMatches int       `json:"totalMatches" yaml:"totalMatches"`
	ExactMatches int       `json:"exactMatches" yaml:"exactMatches"`
	FuzzyMatches int       `json:"fuzzyMatches" yaml:"fuzzyMatches"`
}

// Location is the position of a line in its document.
type Location struct {
	Page int `json:"pageNumber" yaml:"pageNumber"`
	Line int `json:"lineNumber" yaml:"lineNumber"`
}

// Occurrence is the location of a shared line in one of the documents.
type Occurrence struct {
	Doc      decouple.DocID `json:"docId" yaml:"docId"`
	Location `yaml:",inline"`
}

// SharedEntry is a line that exists in both documents. The text is taken from document A.
type SharedEntry struct {
	Text        string       `json:"text" yaml:"text"`
	Occurrences []Occurrence `json:"occurrences" yaml:"occurrences"`
}

// UniqueEntry is a line that only exists in one of the documents.
type UniqueEntry struct {
	Location `yaml:",inline"`
	Text     string `json:"text" yaml:"text"`
}

// UniqueByDoc lists the unique lines of both documents.
type UniqueByDoc struct {
	A []UniqueEntry `json:"A" yaml:"A"`
	B []UniqueEntry `json:"B" yaml:"B"`
}

// MatchEntry describes a match, including matches that have been overridden as unique.
type MatchEntry struct {
	MatchID    string             `json:"matchId" yaml:"matchId"`
	Confidence float64            `json:"confidence" yaml:"confidence"`
	MatchType  decouple.MatchType `json:"matchType" yaml:"matchType"`
	Override   decouple.Decision  `json:"userOverride,omitempty" yaml:"userOverride,omitempty"`
	TextA      string             `json:"textA" yaml:"textA"`
	TextB      string             `json:"textB" yaml:"textB"`
	LocationA  Location           `json:"locationA" yaml:"locationA"`
	LocationB  Location           `json:"locationB" yaml:"locationB"`
}

// Export converts r into its exported form. now is recorded as the export date.
func Export(r decouple.Result, names Names, now time.Time) Data {
	st := r.Stats()
	d := Data{
		Metadata: Metadata{
			ExportDate:   now.UTC(),
			DocAName:     names.A,
			DocBName:     names.B,
			TotalMatches: st.Matches,
			ExactMatches: st.Exact,
			FuzzyMatches: st.Fuzzy,
		},
		CanonicalShared: []SharedEntry{},
		UniqueByDoc: UniqueByDoc{
			A: uniqueEntries(r.UniqueA),
			B: uniqueEntries(r.UniqueB),
		},
		AllMatches: make([]MatchEntry, 0, len(r.Matches)),
	}
	for _, m := range r.Matches {
		if m.Override != decouple.Unique {
			d.CanonicalShared = append(d.CanonicalShared, SharedEntry{
				Text: m.A.Raw,
				Occurrences: []Occurrence{
					{Doc: decouple.DocA, Location: location(m.A)},
					{Doc: decouple.DocB, Location: location(m.B)},
				},
			})
		}
		d.AllMatches = append(d.AllMatches, MatchEntry{
			MatchID:    m.ID,
			Confidence: m.Confidence,
			MatchType:  m.Type,
			Override:   m.Override,
			TextA:      m.A.Raw,
			TextB:      m.B.Raw,
			LocationA:  location(m.A),
			LocationB:  location(m.B),
		})
	}
	return d
}

func location(u decouple.TextUnit) Location {
	return Location{Page: u.Page, Line: u.Index}
}

func uniqueEntries(units []decouple.TextUnit) []UniqueEntry {
	out := make([]UniqueEntry, len(units))
	for i, u := range units {
		out[i] = UniqueEntry{Location: location(u), Text: u.Raw}
	}
	return out
}

// Format is an export format.
type Format int

const (
	JSON     Format = iota // Indented JSON.
	YAML                   // YAML, multi-line text in literal style.
	CSV                    // Matches followed by the unique lines of A and B.
	Markdown               // A human readable report.
)

var formatNames = []string{"json", "yaml", "csv", "markdown"}

// String returns the name of f as accepted by [ParseFormat].
func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
	return formatNames[f]
}

// ParseFormat parses the name of a format. "md" and "yml" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	}
	return 0, fmt.Errorf("unknown format %q, want one of %s", s, strings.Join(formatNames, ", "))
}

// ContentType returns the MIME type of documents in format f.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case YAML:
		return "application/yaml"
	case CSV:
		return "text/csv; charset=utf-8"
	case Markdown:
		return "text/markdown; charset=utf-8"
	}
	panic("never reached")
}

// Write encodes d in format f.
func Write(w io.Writer, f Format, d Data) error {
	switch f {
	case JSON:
		return WriteJSON(w, d)
	case YAML:
		return WriteYAML(w, d)
	case CSV:
		return WriteCSV(w, d)
	case Markdown:
		return WriteMarkdown(w, d)
	}
	return fmt.Errorf("unknown format %v", f)
}

// WriteJSON writes d as indented JSON.
func WriteJSON(w io.Writer, d Data) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// WriteYAML writes d as YAML.
func WriteYAML(w io.Writer, d Data) error {
	b, err := yaml.MarshalWithOptions(d, yaml.UseLiteralStyleIfMultiline(true))
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// WriteCSV writes the matches followed by the unique lines of both documents as CSV.
func WriteCSV(w io.Writer, d Data) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"Match ID", "Type", "Confidence", "Page A", "Text A", "Page B", "Text B"}}
	for _, m := range d.AllMatches {
		records = append(records, []string{
			m.MatchID,
			m.MatchType.String(),
			strconv.FormatFloat(m.Confidence, 'f', -1, 64),
			strconv.Itoa(m.LocationA.Page),
			m.TextA,
			strconv.Itoa(m.LocationB.Page),
			m.TextB,
		})
	}
	for _, sec := range []struct {
		title   string
		entries []UniqueEntry
	}{
		{"Unique to Document A", d.UniqueByDoc.A},
		{"Unique to Document B", d.UniqueByDoc.B},
	} {
		records = append(records, nil, []string{sec.title}, []string{"Page", "Text"})
		for _, e := range sec.entries {
			records = append(records, []string{strconv.Itoa(e.Page), e.Text})
		}
	}
	return cw.WriteAll(records)
}

// WriteMarkdown writes a human readable report as Markdown.
func WriteMarkdown(w io.Writer, d Data) error {
	ew := &errWriter{w: w}
	md := d.Metadata
	ew.printf("# Document Comparison Report\n\n")
	ew.printf("**Generated:** %s\n\n", md.ExportDate.Format(time.RFC3339))
	ew.printf("**Documents:**\n")
	ew.printf("- Document A: %s\n", md.DocAName)
	ew.printf("- Document B: %s\n\n", md.DocBName)
	ew.printf("## Summary\n\n")
	ew.printf("- **Total Matches:** %d\n", md.TotalMatches)
	ew.printf("- **Shared Units:** %d\n", 2*len(d.CanonicalShared))
	ew.printf("- **Unique to A:** %d\n", len(d.UniqueByDoc.A))
	ew.printf("- **Unique to B:** %d\n\n", len(d.UniqueByDoc.B))

	ew.printf("## Shared Content\n\n")
	for i, m := range d.AllMatches {
		ew.printf("### Match %d (%.1f%% confidence)\n\n", i+1, m.Confidence*100)
		if m.Override != decouple.Undecided {
			ew.printf("**Override:** %v\n\n", m.Override)
		}
		ew.printf("**Page A:** %d | **Page B:** %d\n\n", m.LocationA.Page, m.LocationB.Page)
		ew.printf("**Document A:**\n```\n%s\n```\n\n", m.TextA)
		ew.printf("**Document B:**\n```\n%s\n```\n\n", m.TextB)
		ew.printf("---\n\n")
	}

	ew.printf("## Unique to Document A\n\n")
	for i, e := range d.UniqueByDoc.A {
		ew.printf("%d. [Page %d] %s\n\n", i+1, e.Page, e.Text)
	}
	ew.printf("## Unique to Document B\n\n")
	for i, e := range d.UniqueByDoc.B {
		ew.printf("%d. [Page %d] %s\n\n", i+1, e.Page, e.Text)
	}
	return ew.err
}

// errWriter remembers the first error and skips all writes after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
