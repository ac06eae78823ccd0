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

// Package mcptool exposes document comparisons as a Model Context Protocol tool.
package mcptool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/draphael123/docdecoupler"
	"github.com/draphael123/docdecoupler/extract"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	// ErrNoRoot is returned for documents given by path if the tool has no document root.
	ErrNoRoot = errors.New("document paths are disabled, pass the document as text")

	// ErrOutsideRoot is returned for paths that aren't local to the document root.
	ErrOutsideRoot = errors.New("path is outside of the document root")
)

// MetadataCompareDocuments describes the compare_documents tool.
var MetadataCompareDocuments = &mcp.Tool{
	Name: "compare_documents",
	Description: "Compare two documents line by line and report which lines they share and which " +
		"lines are unique to either of them. Lines are compared after lowercasing and removing " +
		"punctuation. Identical lines are exact matches, lines with a token overlap of at least " +
		"the threshold are fuzzy matches. Documents are passed either as text (pages separated " +
		"by form feeds) or as paths to .txt, .md or .pdf files. Paths are relative to the " +
		"document root of the server and can't leave it; without a document root only text " +
		"is accepted.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"document_a": map[string]interface{}{
				"type":        "string",
				"description": "Text of document A",
			},
			"document_b": map[string]interface{}{
				"type":        "string",
				"description": "Text of document B",
			},
			"path_a": map[string]interface{}{
				"type":        "string",
				"description": "Path of document A relative to the document root, used instead of document_a",
			},
			"path_b": map[string]interface{}{
				"type":        "string",
				"description": "Path of document B relative to the document root, used instead of document_b",
			},
			"threshold": map[string]interface{}{
				"type":        "number",
				"description": "Minimum token overlap in [0, 1] for fuzzy matches. Defaults to 0.65.",
				"minimum":     0,
				"maximum":     1,
			},
			"overrides": map[string]interface{}{
				"type":                 "object",
				"description":          "Reviewer decisions by match ID, either shared or unique",
				"additionalProperties": map[string]interface{}{"type": "string", "enum": []string{"shared", "unique"}},
			},
		},
	},
}

// InputCompareDocuments is the input for the CompareDocuments tool.
type InputCompareDocuments struct {
	DocumentA string            `json:"document_a"`
	DocumentB string            `json:"document_b"`
	PathA     string            `json:"path_a"`
	PathB     string            `json:"path_b"`
	Threshold *float64          `json:"threshold"`
	Overrides map[string]string `json:"overrides"`
}

// OutputCompareDocuments is the output for the CompareDocuments tool.
type OutputCompareDocuments struct {
	Stats   decouple.Stats `json:"stats"`
	Matches []MatchSummary `json:"matches"`
	UniqueA []LineSummary  `json:"unique_a"`
	UniqueB []LineSummary  `json:"unique_b"`
}

// MatchSummary describes a match without the normalized text of its lines.
type MatchSummary struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"` // exact or fuzzy
	Confidence float64     `json:"confidence"`
	Override   string      `json:"override,omitempty"` // shared or unique
	A          LineSummary `json:"a"`
	B          LineSummary `json:"b"`
}

// LineSummary is a line and its location.
type LineSummary struct {
	Page int    `json:"page"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Tool implements the tools of this package.
type Tool struct {
	// Root is the directory documents given by path are read from. Paths must be local to it,
	// see [filepath.IsLocal], and symbolic links can't leave it. If Root is nil, documents can
	// only be passed as text.
	Root *os.Root
}

// CompareDocuments compares the two documents of the input.
func (tl *Tool) CompareDocuments(ctx context.Context, _ *mcp.CallToolRequest, input InputCompareDocuments) (*mcp.CallToolResult, OutputCompareDocuments, error) {
	a, err := tl.units(decouple.DocA, input.DocumentA, input.PathA)
	if err != nil {
		return nil, OutputCompareDocuments{}, fmt.Errorf("document A: %w", err)
	}
	b, err := tl.units(decouple.DocB, input.DocumentB, input.PathB)
	if err != nil {
		return nil, OutputCompareDocuments{}, fmt.Errorf("document B: %w", err)
	}
	overrides := make(map[string]decouple.Decision, len(input.Overrides))
	for id, v := range input.Overrides {
		d, err := decouple.ParseDecision(v)
		if err != nil {
			return nil, OutputCompareDocuments{}, fmt.Errorf("override for %s: %w", id, err)
		}
		overrides[id] = d
	}
	if err := ctx.Err(); err != nil {
		return nil, OutputCompareDocuments{}, err
	}

	var opts []decouple.Option
	if input.Threshold != nil {
		opts = append(opts, decouple.Threshold(*input.Threshold))
	}
	r, err := decouple.Compare(a, b, opts...)
	if err != nil {
		return nil, OutputCompareDocuments{}, err
	}
	if r, err = decouple.ApplyOverrides(r, overrides); err != nil {
		return nil, OutputCompareDocuments{}, err
	}

	out := OutputCompareDocuments{
		Stats:   r.Stats(),
		Matches: make([]MatchSummary, len(r.Matches)),
		UniqueA: lineSummaries(r.UniqueA),
		UniqueB: lineSummaries(r.UniqueB),
	}
	for i, m := range r.Matches {
		out.Matches[i] = MatchSummary{
			ID:         m.ID,
			Type:       m.Type.String(),
			Confidence: m.Confidence,
			A:          lineSummary(m.A),
			B:          lineSummary(m.B),
		}
		if m.Override != decouple.Undecided {
			out.Matches[i].Override = m.Override.String()
		}
	}
	return nil, out, nil
}

func (tl *Tool) units(doc decouple.DocID, text, path string) ([]decouple.TextUnit, error) {
	var lines []decouple.Line
	var err error
	switch {
	case path != "" && text != "":
		return nil, errors.New("either text or path is allowed, not both")
	case path != "":
		lines, err = tl.read(doc, path)
	default:
		lines, err = extract.Text(doc, strings.NewReader(text))
	}
	if err != nil {
		return nil, err
	}
	return decouple.Units(lines), nil
}

func (tl *Tool) read(doc decouple.DocID, path string) ([]decouple.Line, error) {
	switch {
	case tl.Root == nil:
		return nil, ErrNoRoot
	case !filepath.IsLocal(path):
		return nil, fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	case extract.FormatOf(path) == extract.FormatUnknown:
		return nil, fmt.Errorf("%s: %w", path, extract.ErrUnsupported)
	}
	f, err := tl.Root.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return extract.Read(doc, f)
}

func lineSummary(u decouple.TextUnit) LineSummary {
	return LineSummary{Page: u.Page, Line: u.Index, Text: u.Raw}
}

func lineSummaries(units []decouple.TextUnit) []LineSummary {
	out := make([]LineSummary, len(units))
	for i, u := range units {
		out[i] = lineSummary(u)
	}
	return out
}

// NewServer returns an MCP server that provides all tools of this package. Documents given by path
// are read from root, which may be nil to accept text only.
func NewServer(version string, root *os.Root) *mcp.Server {
	tl := &Tool{Root: root}
	s := mcp.NewServer(&mcp.Implementation{Name: "docdecoupler", Version: version}, nil)
	mcp.AddTool(s, MetadataCompareDocuments, tl.CompareDocuments)
	return s
}
