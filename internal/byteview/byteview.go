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

// Package byteview provides immutable views of byte slices and helpers to split
// documents into pages and lines without copying.
package byteview

import (
	"strings"
	"sync"
	"unsafe"
)

// ByteView is a read-only view of a byte slice.
type ByteView struct {
	data string
}

// From returns a view of in. in must not be modified while the view or any string derived from
// it is in use.
func From(in []byte) ByteView {
	return ByteView{unsafe.String(unsafe.SliceData(in), len(in))}
}

func (v ByteView) String() string { return v.data }

// SplitPages splits the input on form feed characters. The input always has at least one page,
// even if it's empty.
func SplitPages(v ByteView) []ByteView {
	s := v.data
	a := make([]ByteView, 0, strings.Count(s, "\f")+1)
	for {
		m := strings.IndexByte(s, '\f')
		if m < 0 {
			break
		}
		a = append(a, ByteView{s[:m]})
		s = s[m+1:]
	}
	return append(a, ByteView{s})
}

// SplitLines splits the input on '\n' and returns the lines without their line endings; "\r\n"
// and "\n" are both accepted. A final line ending does not start another line.
func SplitLines(v ByteView) []ByteView {
	s := v.data
	n := strings.Count(s, "\n")
	if len(s) > 0 && s[len(s)-1] != '\n' {
		n++
	}
	a := make([]ByteView, 0, n)
	for len(s) > 0 {
		line := s
		m := strings.IndexByte(s, '\n')
		if m < 0 {
			s = ""
		} else {
			line, s = s[:m], s[m+1:]
		}
		line = strings.TrimSuffix(line, "\r")
		a = append(a, ByteView{line})
	}
	return a
}

// Builder accumulates text and returns it as a string without copying.
type Builder struct {
	_   [0]sync.Mutex // don't copy
	buf []byte
}

func (b *Builder) Write(v []byte) (n int, err error) {
	b.buf = append(b.buf, v...)
	return len(v), nil
}

func (b *Builder) WriteString(v string) (n int, err error) {
	b.buf = append(b.buf, v...)
	return len(v), nil
}

// Build returns the accumulated text and resets the builder.
func (b *Builder) Build() string {
	s := unsafe.String(unsafe.SliceData(b.buf), len(b.buf))
	b.buf = nil
	return s
}
