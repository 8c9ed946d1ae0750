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

// Package transport defines the duplex message channel contract (C4)
// shared by every concrete transport (stdio, Streamable HTTP), plus the
// generic recovering wrapper (C11) that can wrap any of them.
package transport

import (
	"context"
	"time"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
)

// State is a transport's connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateShuttingDown
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateReconnecting:
		return "Reconnecting"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Health is a point-in-time snapshot of a transport's counters.
type Health struct {
	State              State
	LastActivity       *time.Time
	MessagesSent       uint64
	MessagesReceived   uint64
	ConnectionDuration *time.Duration
	ErrorCount         uint64
	LastError          string
}

// Transport is the duplex message channel contract every concrete
// transport implements. All blocking operations take a context and must
// return promptly once it is cancelled.
type Transport interface {
	// Send appends msg to the outbound stream. It fails if the transport
	// is not Connected.
	Send(ctx context.Context, msg *jsonrpc.Message) error
	// Recv yields the next inbound message. It fails with a
	// ConnectionClosed error once the peer has closed and the inbound
	// queue is drained.
	Recv(ctx context.Context) (*jsonrpc.Message, error)
	// Close performs a graceful shutdown bounded by ctx's deadline; after
	// it returns, further Sends fail.
	Close(ctx context.Context) error
	// ForceClose tears the transport down unconditionally.
	ForceClose() error
	// Reconnect attempts to re-establish the same logical endpoint. A
	// transport without reconnect support returns an error (stdio always
	// returns a ConnectionError).
	Reconnect(ctx context.Context) error
	// Reset clears cached state (queues, session id) and returns to
	// Disconnected.
	Reset() error
	// State reports the current connection state.
	State() State
	// HealthSnapshot reports the current health counters.
	HealthSnapshot() Health
}
