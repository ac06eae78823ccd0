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

package mcptool

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/draphael123/docdecoupler"
	"github.com/draphael123/docdecoupler/extract"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCompareDocuments(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(pathA, []byte("The quick fox\nHello world\n"), 0o644))
	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { root.Close() })

	tests := []struct {
		name           string
		noRoot         bool
		input          InputCompareDocuments
		wantErr        error
		errContains    string
		validateOutput func(t *testing.T, output OutputCompareDocuments)
	}{
		{
			name: "text documents",
			input: InputCompareDocuments{
				DocumentA: "The quick fox\nHello world\nOnly in A",
				DocumentB: "Hello, world!\nThe quick fox jumps\nOnly in B",
			},
			validateOutput: func(t *testing.T, output OutputCompareDocuments) {
				assert.Equal(t, decouple.Stats{Matches: 2, Exact: 1, Fuzzy: 1, Shared: 4, UniqueA: 1, UniqueB: 1}, output.Stats)
				require.Len(t, output.Matches, 2)
				assert.Equal(t, "exact", output.Matches[0].Type)
				assert.Equal(t, "Hello world", output.Matches[0].A.Text)
				assert.Equal(t, "Hello, world!", output.Matches[0].B.Text)
				assert.Equal(t, "fuzzy", output.Matches[1].Type)
				assert.InDelta(t, 0.75, output.Matches[1].Confidence, 1e-9)
				assert.Equal(t, []LineSummary{{Page: 1, Line: 2, Text: "Only in A"}}, output.UniqueA)
			},
		},
		{
			name: "threshold",
			input: InputCompareDocuments{
				DocumentA: "The quick fox",
				DocumentB: "The quick fox jumps",
				Threshold: ptr(0.8),
			},
			validateOutput: func(t *testing.T, output OutputCompareDocuments) {
				assert.Empty(t, output.Matches)
				assert.Len(t, output.UniqueA, 1)
				assert.Len(t, output.UniqueB, 1)
			},
		},
		{
			name: "overrides",
			input: InputCompareDocuments{
				DocumentA: "The quick fox",
				DocumentB: "The quick fox",
				Overrides: map[string]string{"match-A-p1-l0-B-p1-l0": "unique"},
			},
			validateOutput: func(t *testing.T, output OutputCompareDocuments) {
				require.Len(t, output.Matches, 1)
				assert.Equal(t, "unique", output.Matches[0].Override)
				assert.Equal(t, 0, output.Stats.Shared)
			},
		},
		{
			name:  "path",
			input: InputCompareDocuments{PathA: "a.txt", DocumentB: "Hello world"},
			validateOutput: func(t *testing.T, output OutputCompareDocuments) {
				assert.Equal(t, 1, output.Stats.Exact)
				assert.Len(t, output.UniqueA, 1)
			},
		},
		{
			name:        "path and text",
			input:       InputCompareDocuments{PathA: "a.txt", DocumentA: "x"},
			errContains: "either text or path",
		},
		{
			name:    "unsupported file",
			input:   InputCompareDocuments{PathB: "b.docx"},
			wantErr: extract.ErrUnsupported,
		},
		{
			name:    "absolute path",
			input:   InputCompareDocuments{PathA: pathA},
			wantErr: ErrOutsideRoot,
		},
		{
			name:    "parent directory",
			input:   InputCompareDocuments{PathA: "../a.txt"},
			wantErr: ErrOutsideRoot,
		},
		{
			name:    "missing file",
			input:   InputCompareDocuments{PathA: "missing.txt"},
			wantErr: os.ErrNotExist,
		},
		{
			name:    "no root",
			noRoot:  true,
			input:   InputCompareDocuments{PathA: "a.txt"},
			wantErr: ErrNoRoot,
		},
		{
			name:    "invalid threshold",
			input:   InputCompareDocuments{Threshold: ptr(1.5)},
			wantErr: decouple.ErrInvalidThreshold,
		},
		{
			name:        "invalid override",
			input:       InputCompareDocuments{Overrides: map[string]string{"m": "maybe"}},
			errContains: "unknown decision",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &Tool{Root: root}
			if tt.noRoot {
				tool = &Tool{}
			}
			_, output, err := tool.CompareDocuments(ctx, req, tt.input)

			if tt.wantErr != nil || tt.errContains != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestServer(t *testing.T) {
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	server := NewServer("test", nil)
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "compare_documents", tools.Tools[0].Name)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name: "compare_documents",
		Arguments: map[string]any{
			"document_a": "Hello world",
			"document_b": "hello world",
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out OutputCompareDocuments
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 1, out.Stats.Exact)
}
