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

package transport

import (
	"sync"
	"sync/atomic"
	"time"
)

// HealthCounters is the writer-exclusive-per-update, eventually-consistent
// counter set named in §5's shared-resource policy. Concrete transports
// embed it and call the Record* methods as messages flow.
type HealthCounters struct {
	mu         sync.RWMutex
	state      State
	connectedAt *time.Time
	lastActivity *time.Time
	sent       atomic.Uint64
	received   atomic.Uint64
	errs       atomic.Uint64
	lastError  atomic.Pointer[string]
}

// SetState updates the transport's connection state.
func (h *HealthCounters) SetState(s State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = s
	now := time.Now()
	if s == StateConnected && h.connectedAt == nil {
		h.connectedAt = &now
	}
	if s == StateDisconnected || s == StateFailed {
		h.connectedAt = nil
	}
}

// State reports the current state.
func (h *HealthCounters) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// RecordSent increments the sent-message counter and touches last activity.
func (h *HealthCounters) RecordSent() {
	h.sent.Add(1)
	h.touch()
}

// RecordReceived increments the received-message counter and touches last activity.
func (h *HealthCounters) RecordReceived() {
	h.received.Add(1)
	h.touch()
}

// RecordError increments the error counter and records the message.
func (h *HealthCounters) RecordError(msg string) {
	h.errs.Add(1)
	h.lastError.Store(&msg)
}

func (h *HealthCounters) touch() {
	now := time.Now()
	h.mu.Lock()
	h.lastActivity = &now
	h.mu.Unlock()
}

// Snapshot reports a point-in-time Health value.
func (h *HealthCounters) Snapshot() Health {
	h.mu.RLock()
	state := h.state
	lastActivity := h.lastActivity
	connectedAt := h.connectedAt
	h.mu.RUnlock()

	var dur *time.Duration
	if connectedAt != nil {
		d := time.Since(*connectedAt)
		dur = &d
	}
	var lastErr string
	if p := h.lastError.Load(); p != nil {
		lastErr = *p
	}
	return Health{
		State:              state,
		LastActivity:       lastActivity,
		MessagesSent:       h.sent.Load(),
		MessagesReceived:   h.received.Load(),
		ConnectionDuration: dur,
		ErrorCount:         h.errs.Load(),
		LastError:          lastErr,
	}
}
