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

package session

import (
	"maps"

	"github.com/draphael123/docdecoupler"
)

// MaxHistory is the maximum number of states kept for undo.
const MaxHistory = 50

// Overrides maps match IDs to reviewer decisions.
type Overrides map[string]decouple.Decision

// History records the override states of a review for undo and redo. The zero value is an empty
// history without overrides.
type History struct {
	past    []Overrides // oldest first
	present Overrides
	future  []Overrides // next first
}

// Present returns a copy of the current overrides.
func (h *History) Present() Overrides {
	return maps.Clone(h.present)
}

// Toggle sets the decision for the match with the given ID. Setting the decision a match already
// has, or [decouple.Undecided], removes its override. Toggling discards all redo states.
func (h *History) Toggle(matchID string, d decouple.Decision) {
	next := maps.Clone(h.present)
	if next == nil {
		next = make(Overrides)
	}
	if d == decouple.Undecided || next[matchID] == d {
		delete(next, matchID)
	} else {
		next[matchID] = d
	}
	h.push(next)
}

// Reset replaces the current overrides with o. Reset can be undone like a toggle.
func (h *History) Reset(o Overrides) {
	h.push(maps.Clone(o))
}

func (h *History) push(next Overrides) {
	h.past = append(h.past, h.present)
	if len(h.past) > MaxHistory {
		h.past = h.past[len(h.past)-MaxHistory:]
	}
	h.present = next
	h.future = nil
}

// CanUndo reports whether there is a state to go back to.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether an undone state can be restored.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Undo restores the previous state. It reports false if there is nothing to undo.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	n := len(h.past) - 1
	h.future = append([]Overrides{h.present}, h.future...)
	h.present = h.past[n]
	h.past = h.past[:n]
	return true
}

// Redo restores the state before the last undo. It reports false if there is nothing to redo.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.past = append(h.past, h.present)
	h.present = h.future[0]
	h.future = h.future[1:]
	return true
}
