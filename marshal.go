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

import "fmt"

// ParseMatchType parses the string representation of a [MatchType].
func ParseMatchType(s string) (MatchType, error) {
	switch s {
	case "exact":
		return Exact, nil
	case "fuzzy":
		return Fuzzy, nil
	}
	return 0, fmt.Errorf("unknown match type %q", s)
}

// ParseDecision parses the string representation of a [Decision]. The empty string is parsed as
// [Undecided].
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "", "none":
		return Undecided, nil
	case "shared":
		return Shared, nil
	case "unique":
		return Unique, nil
	}
	return 0, fmt.Errorf("unknown decision %q", s)
}

// MarshalText implements [encoding.TextMarshaler].
func (t MatchType) MarshalText() ([]byte, error) {
	if t != Exact && t != Fuzzy {
		return nil, fmt.Errorf("invalid match type %v", t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (t *MatchType) UnmarshalText(text []byte) error {
	v, err := ParseMatchType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Decision) MarshalText() ([]byte, error) {
	if d < Undecided || d > Unique {
		return nil, fmt.Errorf("invalid decision %v", d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Decision) UnmarshalText(text []byte) error {
	v, err := ParseDecision(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
