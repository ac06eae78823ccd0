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

// Package session manages interactive reviews of comparisons: comparisons run in the background
// and reviewer overrides can be undone and redone.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/draphael123/docdecoupler"
	"github.com/draphael123/docdecoupler/internal/config"
	"github.com/draphael123/docdecoupler/report"
)

var (
	// ErrNoResult is returned if a session has no completed comparison.
	ErrNoResult = errors.New("no comparison result")

	// ErrUnknownMatch is returned for overrides of matches that don't exist.
	ErrUnknownMatch = errors.New("unknown match")
)

// Status describes the state of the latest comparison of a session.
type Status struct {
	Generation uint64
	Running    bool
	Progress   decouple.Progress
	Err        error // Error of the latest comparison, if it failed.
	CanUndo    bool
	CanRedo    bool
}

// Session is the review of the comparison of two documents. It's safe for concurrent use.
type Session struct {
	ID      string
	Names   report.Names
	Created time.Time

	mu       sync.Mutex
	gen      uint64
	running  bool
	progress decouple.Progress
	err      error
	done     chan struct{} // closed when the run of generation gen finishes
	base     decouple.Result
	result   decouple.Result
	ready    bool
	history  History
}

// New returns an empty session.
func New(id string, names report.Names) *Session {
	done := make(chan struct{})
	close(done)
	return &Session{ID: id, Names: names, Created: time.Now(), done: done}
}

// Start runs a comparison of a and b in the background and returns its generation. A comparison
// that is still running when Start is called again is superseded: it runs to completion but its
// progress and result are discarded. Starting a comparison clears all overrides.
//
// A progress observer installed with [decouple.Observer] is called from the background goroutine.
func (s *Session) Start(a, b []decouple.TextUnit, opts ...decouple.Option) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	done := make(chan struct{})
	s.running = true
	s.progress = decouple.Progress{}
	s.err = nil
	s.done = done
	s.ready = false
	s.base, s.result = decouple.Result{}, decouple.Result{}
	s.history = History{}

	cfg := config.FromOptions(opts, config.Threshold|config.Progress)
	observer := cfg.Progress
	progress := func(p decouple.Progress) {
		s.mu.Lock()
		if s.gen == gen {
			s.progress = p
		}
		s.mu.Unlock()
		if observer != nil {
			observer(int(p.Stage), p.Fraction, p.Message)
		}
	}
	go func() {
		defer close(done)
		r, err := decouple.Compare(a, b, decouple.Threshold(cfg.Threshold), decouple.Observer(progress))

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return
		}
		s.running = false
		if err != nil {
			s.err = err
			return
		}
		s.base, s.result, s.ready = r, r, true
	}()
	return gen
}

// Wait blocks until the latest comparison has finished and returns its result.
func (s *Session) Wait(ctx context.Context) (decouple.Result, error) {
	for {
		s.mu.Lock()
		gen, done := s.gen, s.done
		s.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return decouple.Result{}, ctx.Err()
		}

		s.mu.Lock()
		if s.gen == gen {
			defer s.mu.Unlock()
			return s.resultLocked()
		}
		s.mu.Unlock()
	}
}

// Status returns the state of the latest comparison.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	return Status{
		Generation: s.gen,
		Running:    s.running,
		Progress:   s.progress,
		Err:        s.err,
		CanUndo:    s.history.CanUndo(),
		CanRedo:    s.history.CanRedo(),
	}
}

// Result returns the result of the latest comparison with all overrides applied.
func (s *Session) Result() (decouple.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultLocked()
}

func (s *Session) resultLocked() (decouple.Result, error) {
	switch {
	case s.err != nil:
		return decouple.Result{}, s.err
	case !s.ready:
		return decouple.Result{}, ErrNoResult
	}
	return s.result, nil
}

// Snapshot is a consistent view of a session: the result has exactly the overrides applied.
type Snapshot struct {
	Status
	Overrides Overrides
	Result    decouple.Result
	HasResult bool // Result is only set if the latest comparison has finished successfully.
}

// Snapshot returns the status, the overrides and the result of the session at a single point in
// time.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.resultLocked()
	return Snapshot{
		Status:    s.statusLocked(),
		Overrides: s.history.Present(),
		Result:    r,
		HasResult: err == nil,
	}
}

// Overrides returns the current overrides.
func (s *Session) Overrides() Overrides {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Present()
}

// Toggle toggles the override of a match, see [History.Toggle], and returns the updated result.
func (s *Session) Toggle(matchID string, d decouple.Decision) (decouple.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.resultLocked(); err != nil {
		return decouple.Result{}, err
	}
	if !slices.ContainsFunc(s.base.Matches, func(m decouple.Match) bool { return m.ID == matchID }) {
		return decouple.Result{}, fmt.Errorf("%w: %s", ErrUnknownMatch, matchID)
	}
	return s.update(func() bool {
		s.history.Toggle(matchID, d)
		return true
	})
}

// SetOverrides replaces all overrides at once.
func (s *Session) SetOverrides(o Overrides) (decouple.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.resultLocked(); err != nil {
		return decouple.Result{}, err
	}
	return s.update(func() bool {
		s.history.Reset(o)
		return true
	})
}

// Undo reverts the last override change. It returns the unchanged result if there is nothing to
// undo.
func (s *Session) Undo() (decouple.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.resultLocked(); err != nil {
		return decouple.Result{}, err
	}
	return s.update(s.history.Undo)
}

// Redo reapplies the last undone override change. It returns the unchanged result if there is
// nothing to redo.
func (s *Session) Redo() (decouple.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.resultLocked(); err != nil {
		return decouple.Result{}, err
	}
	return s.update(s.history.Redo)
}

// update applies change to the history and recomputes the result.
func (s *Session) update(change func() bool) (decouple.Result, error) {
	prev := s.history
	if !change() {
		return s.result, nil
	}
	r, err := decouple.ApplyOverrides(s.base, s.history.Present())
	if err != nil {
		s.history = prev
		return decouple.Result{}, err
	}
	s.result = r
	return r, nil
}
