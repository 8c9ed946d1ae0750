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

// Package correlator implements the cancellation & progress registry (C3)
// and the request correlator & dispatcher (C8): the in-flight request
// table, cancellation propagation, progress routing, the ping keep-alive
// loop, and the send/await/dispatch machinery built on top of a
// transport.Transport.
package correlator

import (
	"sync"
	"time"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
)

// Record is the in-flight request record from the data model.
type Record struct {
	ID           jsonrpc.ID
	Method       string
	CreatedAt    time.Time
	Cancelled    bool
	CancelReason string
}

// CancellationRegistry tracks in-flight requests and their cancellation
// state. It is safe for concurrent use.
type CancellationRegistry struct {
	mu     sync.RWMutex
	byID   map[string]*Record
}

// NewCancellationRegistry builds an empty registry.
func NewCancellationRegistry() *CancellationRegistry {
	return &CancellationRegistry{byID: make(map[string]*Record)}
}

// Register adds a fresh in-flight record for id.
func (r *CancellationRegistry) Register(id jsonrpc.ID, method string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id.String()] = &Record{ID: id, Method: method, CreatedAt: time.Now()}
}

// IsCancelled reports whether id has been cancelled.
func (r *CancellationRegistry) IsCancelled(id jsonrpc.ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id.String()]
	return ok && rec.Cancelled
}

// Cancel marks id as cancelled. It is idempotent: the returned bool
// reports whether this call was the first to cancel id (false if id is
// unknown or was already cancelled).
func (r *CancellationRegistry) Cancel(id jsonrpc.ID, reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id.String()]
	if !ok || rec.Cancelled {
		return false
	}
	rec.Cancelled = true
	rec.CancelReason = reason
	return true
}

// Complete removes id's record, e.g. once a response has been observed.
func (r *CancellationRegistry) Complete(id jsonrpc.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id.String())
}

// Active returns a snapshot of every currently tracked record.
func (r *CancellationRegistry) Active() []*Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Record, 0, len(r.byID))
	for _, rec := range r.byID {
		out = append(out, rec)
	}
	return out
}

// GC removes records older than maxAge that are already cancelled or that
// have otherwise gone stale, mirroring cleanup_old_requests from the
// original implementation: still-active (non-cancelled, recently created)
// records are never swept, only abandoned ones.
func (r *CancellationRegistry) GC(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for k, rec := range r.byID {
		if rec.CreatedAt.Before(cutoff) {
			delete(r.byID, k)
			removed++
		}
	}
	return removed
}

// HandleCancelledNotification processes an inbound "$/cancelled"
// notification: it cancels the named request so any waiter observes it
// before a response (if any) ever arrives.
func (r *CancellationRegistry) HandleCancelledNotification(id jsonrpc.ID, reason string) bool {
	return r.Cancel(id, reason)
}
