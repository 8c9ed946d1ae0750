// Copyright 2026 The mcp-go Authors
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

// Package httpmcp implements the Streamable HTTP transport (C6): a single
// /mcp endpoint with a POST request/response path, a GET SSE upgrade for
// server-to-client messages, and a DELETE to terminate a session. It
// generalizes the teacher's sseManager/stdioSession pair in mcp.go to a
// session store plus per-session redelivery queue, and adopts chi,
// render and uuid the same way the teacher's server.go does.
package httpmcp

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxSessionIDLen = 128

// Session is the server-side record for one Streamable HTTP client,
// tracked from first initialize POST until DELETE, TTL expiry or server
// shutdown, per §3's Session shape.
type Session struct {
	ID            string
	CreatedAt     time.Time
	LastEventID   string
	ActiveStreams map[string]struct{}

	mu       sync.Mutex
	queue    *Queue
	lastSeen time.Time
}

// touch records activity for TTL purposes.
func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// idleFor reports how long the session has gone without activity.
func (s *Session) idleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Queue returns the session's redelivery queue.
func (s *Session) Queue() *Queue { return s.queue }

// Store is the session-id -> *Session mapping, guarded for concurrent
// access from many request goroutines.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewStore builds an empty session store with the given idle TTL. A TTL
// of zero disables expiry sweeping.
func NewStore(ttl time.Duration) *Store {
	return &Store{sessions: make(map[string]*Session), ttl: ttl}
}

// Create allocates a new session with a fresh uuid, as the server does on
// the first initialize POST.
func (st *Store) Create() *Session {
	s := &Session{
		ID:            uuid.New().String(),
		CreatedAt:     time.Now(),
		ActiveStreams: make(map[string]struct{}),
		queue:         newQueue(),
		lastSeen:      time.Now(),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get looks up a session by id.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// Delete removes a session, e.g. on explicit DELETE.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// ExpireIdle purges every session idle longer than the store's TTL; it is
// meant to run on a periodic ticker, mirroring the teacher's
// sseManager.cleanupRoutine.
func (st *Store) ExpireIdle() {
	if st.ttl <= 0 {
		return
	}
	now := time.Now()
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		if s.idleFor(now) > st.ttl {
			delete(st.sessions, id)
		}
	}
}

// ValidSessionID reports whether id satisfies the create/update format
// required of mcp-session-id: non-empty, bounded length.
func ValidSessionID(id string) bool {
	return id != "" && len(id) <= maxSessionIDLen
}
