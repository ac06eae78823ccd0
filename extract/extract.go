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

// Package extract turns documents into lines that can be compared with [decouple.Compare].
//
// Lines are numbered per page, starting at 0, in reading order. Blank lines are dropped before
// numbering in PDF documents, where they don't exist as such, but they are kept in plain text
// documents. Use [decouple.Units] to turn the lines into units.
package extract

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/draphael123/docdecoupler"
	"github.com/draphael123/docdecoupler/internal/byteview"
	"rsc.io/pdf"
)

var (
	// ErrUnsupported is returned for documents of an unknown format.
	ErrUnsupported = errors.New("unsupported document format")

	// ErrEncrypted is returned for password protected PDF documents.
	ErrEncrypted = errors.New("document is encrypted")

	// ErrCorrupt is returned for documents that can't be parsed.
	ErrCorrupt = errors.New("corrupt document")
)

// Format is the format of a document.
type Format int

const (
	FormatUnknown Format = iota // Not supported.
	FormatText                  // Plain text, pages separated by form feeds.
	FormatPDF                   // PDF.
)

// FormatOf returns the format of the document at path based on its extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF
	case ".txt", ".text", ".md":
		return FormatText
	default:
		return FormatUnknown
	}
}

// File extracts the lines of the document at path.
func File(doc decouple.DocID, path string) ([]decouple.Line, error) {
	if FormatOf(path) == FormatUnknown {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(doc, f)
}

// Read extracts the lines of the open document f. The format is derived from the name of f, see
// [FormatOf].
func Read(doc decouple.DocID, f *os.File) ([]decouple.Line, error) {
	var (
		lines []decouple.Line
		err   error
	)
	switch FormatOf(f.Name()) {
	case FormatText:
		lines, err = Text(doc, f)
	case FormatPDF:
		var st os.FileInfo
		st, err = f.Stat()
		if err != nil {
			return nil, err
		}
		lines, err = PDF(doc, f, st.Size())
	default:
		err = ErrUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return lines, nil
}

// Text extracts the lines of a plain text document. Pages are separated by form feeds.
func Text(doc decouple.DocID, r io.Reader) ([]decouple.Line, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// data is owned by this function and never modified, the lines can point into it.
	var lines []decouple.Line
	for p, page := range byteview.SplitPages(byteview.From(data)) {
		for i, line := range byteview.SplitLines(page) {
			lines = append(lines, decouple.Line{Doc: doc, Page: p + 1, Index: i, Text: line.String()})
		}
	}
	return lines, nil
}

// PDF extracts the lines of a PDF document of the given size.
//
// Text runs are grouped into lines by their vertical position, rounded to multiples of
// [LineTolerance] units. Lines are ordered top to bottom, runs within a line left to right.
// Runs that are separated by a gap are joined with a single space.
func PDF(doc decouple.DocID, r io.ReaderAt, size int64) (lines []decouple.Line, err error) {
	// The PDF reader panics on many kinds of malformed input.
	defer func() {
		if p := recover(); p != nil {
			lines, err = nil, fmt.Errorf("%w: %v", ErrCorrupt, p)
		}
	}()

	rd, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, classify(err)
	}
	for n := 1; n <= rd.NumPage(); n++ {
		page := rd.Page(n)
		if page.V.IsNull() {
			continue
		}
		for i, text := range pageLines(page.Content().Text) {
			lines = append(lines, decouple.Line{Doc: doc, Page: n, Index: i, Text: text})
		}
	}
	return lines, nil
}

// LineTolerance is the granularity, in PDF units, at which vertical positions are compared when
// grouping text runs into lines.
const LineTolerance = 2

// gapFactor is the horizontal gap between two runs, relative to the font size, above which they
// are separated by a space.
const gapFactor = 0.2

func pageLines(runs []pdf.Text) []string {
	byY := make(map[float64][]pdf.Text)
	for _, r := range runs {
		y := math.Floor(r.Y/LineTolerance+0.5) * LineTolerance
		byY[y] = append(byY[y], r)
	}
	ys := make([]float64, 0, len(byY))
	for y := range byY {
		ys = append(ys, y)
	}
	slices.Sort(ys)
	slices.Reverse(ys) // PDF coordinates grow upwards

	var out []string
	for _, y := range ys {
		if line := joinRuns(byY[y]); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func joinRuns(runs []pdf.Text) string {
	slices.SortStableFunc(runs, func(a, b pdf.Text) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})
	var sb strings.Builder
	for i, r := range runs {
		if i > 0 {
			prev := runs[i-1]
			if r.X-(prev.X+prev.W) > gapFactor*r.FontSize {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(r.S)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func classify(err error) error {
	if errors.Is(err, pdf.ErrInvalidPassword) || strings.Contains(err.Error(), "encrypt") {
		return fmt.Errorf("%w: %v", ErrEncrypted, err)
	}
	return fmt.Errorf("%w: %v", ErrCorrupt, err)
}
