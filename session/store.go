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
	"slices"
	"sync"

	"github.com/draphael123/docdecoupler/report"
	"github.com/google/uuid"
)

// MaxSessions is the number of sessions a [Store] keeps.
const MaxSessions = 20

// Store keeps the most recent sessions in memory. It's safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	max      int
	sessions map[string]*Session
	order    []string // oldest first
}

// NewStore returns a store that keeps up to max sessions. If max is not positive, [MaxSessions]
// is used.
func NewStore(max int) *Store {
	if max <= 0 {
		max = MaxSessions
	}
	return &Store{max: max, sessions: make(map[string]*Session)}
}

// Create adds a new session with a random ID. If the store is full, the oldest session is evicted.
func (st *Store) Create(names report.Names) *Session {
	s := New(uuid.NewString(), names)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	st.order = append(st.order, s.ID)
	for len(st.order) > st.max {
		delete(st.sessions, st.order[0])
		st.order = st.order[1:]
	}
	return s
}

// Get returns the session with the given ID.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes the session with the given ID and reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	st.order = slices.DeleteFunc(st.order, func(s string) bool { return s == id })
	return true
}

// List returns all sessions, most recent first.
func (st *Store) List() []*Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]*Session, 0, len(st.order))
	for _, id := range slices.Backward(st.order) {
		out = append(out, st.sessions[id])
	}
	return out
}

// Len returns the number of sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
