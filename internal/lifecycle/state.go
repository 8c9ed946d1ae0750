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

// Package lifecycle implements the MCP lifecycle state machine (C7)
// shared by both client and server peers: Uninitialized -> Initializing
// -> Initialized -> Operating -> ShuttingDown -> Shutdown, plus Failed and
// Reconnecting.
package lifecycle

import (
	"sync"

	"github.com/mcpkit/mcp-go/internal/mcperr"
)

// State is a lifecycle state shared by both peers.
type State int

const (
	Uninitialized State = iota
	Initializing
	Initialized
	Operating
	ShuttingDown
	Shutdown
	Reconnecting
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Initializing:
		return "Initializing"
	case Initialized:
		return "Initialized"
	case Operating:
		return "Operating"
	case ShuttingDown:
		return "ShuttingDown"
	case Shutdown:
		return "Shutdown"
	case Reconnecting:
		return "Reconnecting"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether s is one of the two terminal states.
func (s State) IsTerminal() bool { return s == Shutdown || s == Failed }

// Machine is a single peer's lifecycle state, guarded by a mutex since
// the reader goroutine and application goroutines both observe it.
type Machine struct {
	mu    sync.RWMutex
	state State
}

// New returns a Machine starting in Uninitialized.
func New() *Machine {
	return &Machine{state: Uninitialized}
}

// Current reports the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// transitions enumerates the legal edges of the state diagram in §4.7.
var transitions = map[State]map[State]bool{
	Uninitialized: {Initializing: true},
	Initializing:  {Initialized: true, Failed: true},
	Initialized:   {Operating: true},
	Operating:     {ShuttingDown: true, Reconnecting: true},
	ShuttingDown:  {Shutdown: true},
	Reconnecting:  {Operating: true, Failed: true},
}

// Transition moves the machine to next if the edge is legal, returning a
// NotReady error (carrying the current state) otherwise.
func (m *Machine) Transition(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	edges, ok := transitions[m.state]
	if !ok || !edges[next] {
		return mcperr.Newf(mcperr.KindNotReady, "illegal lifecycle transition %s -> %s", m.state, next).
			WithData(map[string]any{"state": m.state.String()})
	}
	m.state = next
	return nil
}

// restrictedMethods maps the gating states to the only methods legal
// within them, per §4.7's gating rule. Other states allow any method
// subject only to capability gating, except ShuttingDown and Shutdown,
// which CheckMethodAllowed rejects separately.
var restrictedMethods = map[State]map[string]bool{
	Uninitialized: {"initialize": true},
	Initializing:  {"initialize": true},
}

// CheckMethodAllowed enforces §4.7's gating rule: while Uninitialized or
// Initializing only "initialize" is legal; while ShuttingDown or Shutdown
// only a pending response may still flow (callers issuing a fresh method
// get NotReady).
func (m *Machine) CheckMethodAllowed(method string) error {
	m.mu.RLock()
	state := m.state
	m.mu.RUnlock()

	if allowed, gated := restrictedMethods[state]; gated {
		if !allowed[method] {
			return mcperr.Newf(mcperr.KindNotReady, "connection not ready: method %q not allowed in state %s", method, state)
		}
		return nil
	}
	if state == ShuttingDown || state == Shutdown {
		return mcperr.Newf(mcperr.KindNotReady, "connection not ready: method %q not allowed in state %s", method, state)
	}
	return nil
}
