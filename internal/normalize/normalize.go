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

// Package normalize turns raw line text into the canonical form used for comparison and computes
// the fingerprint used for exact matching.
//
// The canonical form is ASCII only: everything that is not an ASCII word character or whitespace
// is removed. This is intentional and matches the behavior of the reviewer tooling the results are
// shared with, i.e. "café" and "caf" normalize to the same text.
package normalize

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// MinMeaningfulLen is the minimum length of a normalized line for it to take part in a comparison.
const MinMeaningfulLen = 3

// Normalize lowercases s, removes all runes that are neither ASCII word characters nor
// whitespace, collapses runs of whitespace into a single space and trims both ends.
//
// Normalize is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false // pending whitespace
	for _, r := range s {
		switch {
		case IsSpace(r):
			space = true
		case isWord(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
		// Everything else is dropped without affecting pending whitespace, "a - b" becomes
		// "a b" and "a-b" becomes "ab".
	}
	return b.String()
}

// Fingerprint returns a 32-bit rolling polynomial hash of s rendered in base 36.
//
// The hash is computed over the UTF-16 code units of s as h = h*31 + c with 32-bit signed
// wraparound. Collisions are possible.
func Fingerprint(s string) string {
	var h int32
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x80 {
			h = h*31 + int32(c)
			continue
		}
		// Non-ASCII input, fall back to the slow path for the remainder of the string.
		for _, c := range utf16.Encode([]rune(s[i:])) {
			h = h*31 + int32(c)
		}
		break
	}
	return strconv.FormatInt(int64(h), 36)
}

// IsMeaningful reports whether s is long enough after normalization to take part in a
// comparison.
func IsMeaningful(s string) bool {
	return len(Normalize(s)) >= MinMeaningfulLen
}

// IsSpace reports whether r is whitespace.
//
// The set of whitespace runes is the one used by the regular expression class \s in browsers,
// which differs from [unicode.IsSpace] in two places: U+0085 is not a space, U+FEFF is.
func IsSpace(r rune) bool {
	switch r {
	case 0x85:
		return false
	case 0xFEFF:
		return true
	}
	return unicode.IsSpace(r)
}

func isWord(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' || r == '_'
}
