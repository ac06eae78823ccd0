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
	"strconv"

	"github.com/draphael123/docdecoupler/internal/normalize"
	"github.com/draphael123/docdecoupler/internal/tokens"
)

// DocID identifies one of the two compared documents.
type DocID string

const (
	DocA DocID = "A"
	DocB DocID = "B"
)

// Line is a line of text extracted from a document.
type Line struct {
	Doc   DocID
	Page  int // Page number, starting at 1.
	Index int // Index of the line within the page, starting at 0.
	Text  string
}

// TextUnit is a line prepared for comparison.
type TextUnit struct {
	ID          string `json:"id"` // Unique per comparison, derived from document, page and line index.
	Doc         DocID  `json:"docId"`
	Page        int    `json:"pageNumber"`
	Index       int    `json:"lineNumber"`
	Raw         string `json:"rawText"`
	Normalized  string `json:"normalizedText"`
	Fingerprint string `json:"fingerprint"`
}

// NewUnit prepares l for comparison.
func NewUnit(l Line) TextUnit {
	norm := normalize.Normalize(l.Text)
	return TextUnit{
		ID:          UnitID(l.Doc, l.Page, l.Index),
		Doc:         l.Doc,
		Page:        l.Page,
		Index:       l.Index,
		Raw:         l.Text,
		Normalized:  norm,
		Fingerprint: normalize.Fingerprint(norm),
	}
}

// Units prepares all meaningful lines for comparison, see [IsMeaningful]. Other lines are dropped.
func Units(lines []Line) []TextUnit {
	var units []TextUnit
	for _, l := range lines {
		if !IsMeaningful(l.Text) {
			continue
		}
		units = append(units, NewUnit(l))
	}
	return units
}

// UnitID returns the ID of the unit for the line with the given index on the given page.
func UnitID(doc DocID, page, index int) string {
	return string(doc) + "-p" + strconv.Itoa(page) + "-l" + strconv.Itoa(index)
}

// Normalize returns the canonical form of s that is used for comparisons: s is lowercased, all
// characters that are neither ASCII letters, digits, underscores nor whitespace are removed, and
// whitespace runs are collapsed to a single space. Leading and trailing whitespace is removed.
func Normalize(s string) string { return normalize.Normalize(s) }

// Fingerprint returns a hash of the normalized text s that is used for exact matching.
func Fingerprint(s string) string { return normalize.Fingerprint(s) }

// IsMeaningful reports whether s has at least three characters after normalization. Shorter lines
// are not compared.
func IsMeaningful(s string) bool { return normalize.IsMeaningful(s) }

// Tokenize splits the normalized text s into tokens.
func Tokenize(s string) []string { return tokens.Tokenize(s) }

// Similarity returns the Jaccard index of the token sets a and b. The similarity of two empty sets
// is 1.
func Similarity(a, b []string) float64 { return tokens.Similarity(a, b) }
