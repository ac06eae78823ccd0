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

package extract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/draphael123/docdecoupler"
	"github.com/google/go-cmp/cmp"
	"rsc.io/pdf"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []decouple.Line
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name:  "single-page",
			input: "Section 1\n\nThe quick fox\r\n",
			want: []decouple.Line{
				{Doc: decouple.DocA, Page: 1, Index: 0, Text: "Section 1"},
				{Doc: decouple.DocA, Page: 1, Index: 1, Text: ""},
				{Doc: decouple.DocA, Page: 1, Index: 2, Text: "The quick fox"},
			},
		},
		{
			name:  "pages",
			input: "Cover\n\fSection 1\nBody\n\f\fAppendix",
			want: []decouple.Line{
				{Doc: decouple.DocA, Page: 1, Index: 0, Text: "Cover"},
				{Doc: decouple.DocA, Page: 2, Index: 0, Text: "Section 1"},
				{Doc: decouple.DocA, Page: 2, Index: 1, Text: "Body"},
				{Doc: decouple.DocA, Page: 4, Index: 0, Text: "Appendix"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text(decouple.DocA, strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Text(...) failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Text(...) differs [-want,+got]:\n%s", diff)
			}
		})
	}
}

var samplePDF = []decouple.Line{
	{Doc: decouple.DocB, Page: 1, Index: 0, Text: "Section 1: Introduction"},
	{Doc: decouple.DocB, Page: 1, Index: 1, Text: "This agreement is made."},
	{Doc: decouple.DocB, Page: 1, Index: 2, Text: "ok"},
	{Doc: decouple.DocB, Page: 2, Index: 0, Text: "Appendix A"},
}

func TestPDF(t *testing.T) {
	data, err := os.ReadFile("testdata/sample.pdf")
	if err != nil {
		t.Fatal(err)
	}
	got, err := PDF(decouple.DocB, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("PDF(...) failed: %v", err)
	}
	if diff := cmp.Diff(samplePDF, got); diff != "" {
		t.Errorf("PDF(...) differs [-want,+got]:\n%s", diff)
	}
}

func TestPDFCorrupt(t *testing.T) {
	data, err := os.ReadFile("testdata/sample.pdf")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not-a-pdf", data: []byte("The quick fox\n")},
		{name: "truncated", data: data[:len(data)/2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PDF(decouple.DocA, bytes.NewReader(tt.data), int64(len(tt.data)))
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("PDF(...) = %v, want %v", err, ErrCorrupt)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if err := classify(pdf.ErrInvalidPassword); !errors.Is(err, ErrEncrypted) {
		t.Errorf("classify(ErrInvalidPassword) = %v, want %v", err, ErrEncrypted)
	}
	if err := classify(errors.New("malformed PDF: reading at offset 0")); !errors.Is(err, ErrCorrupt) {
		t.Errorf("classify(...) = %v, want %v", err, ErrCorrupt)
	}
}

func TestPageLines(t *testing.T) {
	runs := []pdf.Text{
		{FontSize: 10, X: 50, Y: 100.8, W: 20, S: "world"},
		{FontSize: 10, X: 10, Y: 100, W: 20, S: "Hello"},
		{FontSize: 10, X: 10, Y: 200, W: 5, S: "T"},
		{FontSize: 10, X: 15, Y: 200, W: 5, S: "i"},
		{FontSize: 10, X: 20, Y: 200, W: 5, S: "tle"},
		{FontSize: 10, X: 10, Y: 50, W: 5, S: " "},
	}
	want := []string{"Title", "Hello world"}
	if diff := cmp.Diff(want, pageLines(runs)); diff != "" {
		t.Errorf("pageLines(...) differs [-want,+got]:\n%s", diff)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "a.TXT")
	if err := os.WriteFile(txt, []byte("Hello world\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := File(decouple.DocA, txt)
	if err != nil {
		t.Fatalf("File(%q) failed: %v", txt, err)
	}
	want := []decouple.Line{{Doc: decouple.DocA, Page: 1, Index: 0, Text: "Hello world"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("File(%q) differs [-want,+got]:\n%s", txt, diff)
	}

	got, err = File(decouple.DocB, "testdata/sample.pdf")
	if err != nil {
		t.Fatalf("File(sample.pdf) failed: %v", err)
	}
	if diff := cmp.Diff(samplePDF, got); diff != "" {
		t.Errorf("File(sample.pdf) differs [-want,+got]:\n%s", diff)
	}

	if _, err := File(decouple.DocA, filepath.Join(dir, "a.docx")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("File(a.docx) = %v, want %v", err, ErrUnsupported)
	}
	if _, err := File(decouple.DocA, filepath.Join(dir, "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("File(missing.txt) = %v, want %v", err, os.ErrNotExist)
	}

	bad := filepath.Join(dir, "bad.pdf")
	if err := os.WriteFile(bad, []byte("%PDF-1.4\ngarbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := File(decouple.DocA, bad); !errors.Is(err, ErrCorrupt) {
		t.Errorf("File(bad.pdf) = %v, want %v", err, ErrCorrupt)
	}
}

func TestReadUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.docx")
	if err := os.WriteFile(path, []byte("Hello world\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := Read(decouple.DocA, f); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Read(a.docx) = %v, want %v", err, ErrUnsupported)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.pdf", FormatPDF},
		{"dir/A.PDF", FormatPDF},
		{"a.txt", FormatText},
		{"notes.md", FormatText},
		{"a.docx", FormatUnknown},
		{"README", FormatUnknown},
	}
	for _, tt := range tests {
		if got := FormatOf(tt.path); got != tt.want {
			t.Errorf("FormatOf(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
