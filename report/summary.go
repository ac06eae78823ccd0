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

package report

import (
	"fmt"
	"strings"

	"github.com/draphael123/docdecoupler"
	"github.com/draphael123/docdecoupler/report/color"
)

// Summary renders a short overview of r for a terminal, followed by the lines that are unique to
// either document. Without options, the output is not colored; see [color.Terminal].
func Summary(r decouple.Result, names Names, opts ...color.Option) string {
	cc := color.Config(opts...)
	st := r.Stats()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s (%d lines)\n", cc.Wrap(cc.Header, "Document A:"), names.A, len(r.UnitsA))
	fmt.Fprintf(&sb, "%s %s (%d lines)\n", cc.Wrap(cc.Header, "Document B:"), names.B, len(r.UnitsB))
	fmt.Fprintf(&sb, "%s %d (%d exact, %s fuzzy",
		cc.Wrap(cc.Header, "Matches:"), st.Matches, st.Exact, cc.Wrap(cc.Fuzzy, fmt.Sprint(st.Fuzzy)))
	if st.Overridden > 0 {
		fmt.Fprintf(&sb, ", %d overridden", st.Overridden)
	}
	sb.WriteString(")\n")
	fmt.Fprintf(&sb, "%s %s\n", cc.Wrap(cc.Header, "Shared:"), cc.Wrap(cc.Shared, fmt.Sprint(st.Shared)))
	fmt.Fprintf(&sb, "%s %s\n", cc.Wrap(cc.Header, "Unique to A:"), cc.Wrap(cc.UniqueA, fmt.Sprint(st.UniqueA)))
	fmt.Fprintf(&sb, "%s %s\n", cc.Wrap(cc.Header, "Unique to B:"), cc.Wrap(cc.UniqueB, fmt.Sprint(st.UniqueB)))

	for _, u := range r.UniqueA {
		fmt.Fprintf(&sb, "%s %s\n", cc.Wrap(cc.UniqueA, fmt.Sprintf("A p%d:", u.Page)), u.Raw)
	}
	for _, u := range r.UniqueB {
		fmt.Fprintf(&sb, "%s %s\n", cc.Wrap(cc.UniqueB, fmt.Sprintf("B p%d:", u.Page)), u.Raw)
	}
	return sb.String()
}
