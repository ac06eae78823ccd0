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

package byteview

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
)

func TestFrom(t *testing.T) {
	in := []byte("my byte slice")

	got := From(in)
	if unsafe.StringData(got.data) != unsafe.SliceData(in) {
		t.Errorf("From(in) points to different memory")
	}
	if got.String() != "my byte slice" {
		t.Errorf("From(in).String() = %q, want %q", got.String(), "my byte slice")
	}

	allocs := testing.AllocsPerRun(10, func() {
		_ = From(in)
	})
	if allocs > 0 {
		t.Errorf("From(...) allocated %v times, want 0", allocs)
	}
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{""}},
		{name: "single", input: "foo\nbar\n", want: []string{"foo\nbar\n"}},
		{name: "two", input: "foo\n\fbar", want: []string{"foo\n", "bar"}},
		{name: "trailing-form-feed", input: "foo\f", want: []string{"foo", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitPages(From([]byte(tt.input)))
			if diff := cmp.Diff(tt.want, strs(got)); diff != "" {
				t.Errorf("SplitPages(...) differs [-want,+got]:\n%s", diff)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty",
			input: "",
			want:  []string{},
		},
		{
			name:  "newline-only",
			input: "\n",
			want:  []string{""},
		},
		{
			name:  "missing-newline",
			input: "foo\nbar",
			want:  []string{"foo", "bar"},
		},
		{
			name:  "missing-newline-in-first-line",
			input: "foo",
			want:  []string{"foo"},
		},
		{
			name:  "no-missing-newline",
			input: "foo\nbar\nbaz\n",
			want:  []string{"foo", "bar", "baz"},
		},
		{
			name:  "crlf",
			input: "foo\r\n\r\nbar\r\n",
			want:  []string{"foo", "", "bar"},
		},
		{
			name:  "blank-lines",
			input: "foo\n\n\nbar",
			want:  []string{"foo", "", "", "bar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines(From([]byte(tt.input)))
			if diff := cmp.Diff(tt.want, strs(got)); diff != "" {
				t.Errorf("SplitLines(...) differs [-want,+got]:\n%s", diff)
			}
		})
	}
}

func strs(v []ByteView) []string {
	out := make([]string, len(v))
	for i, b := range v {
		out[i] = b.String()
	}
	return out
}

func TestBuilder(t *testing.T) {
	var b Builder
	b.WriteString("a")
	fmt.Fprintf(&b, "[%d]", 2)
	b.Write([]byte{'c'})

	if got, want := b.Build(), "a[2]c"; got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
	if got := b.Build(); got != "" {
		t.Errorf("second call to Build() = %q, want empty", got)
	}
}

func TestBuilderBuildAlloc(t *testing.T) {
	var b Builder
	allocs := testing.AllocsPerRun(10, func() {
		b.WriteString("page")
		b.Write([]byte{'\n'})
		_ = b.Build()
	})
	if allocs > 1 {
		t.Errorf("Builder.Build() allocated %v times, want <= 1", allocs)
	}
}
