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

package correlator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mcpkit/mcp-go/internal/log"
)

// PingSender issues a single ping request and waits for its reply,
// returning an error on failure or timeout. Implementations typically
// wrap a Correlator's SendRequest for the "ping" method.
type PingSender interface {
	SendPing(ctx context.Context) error
}

// PingManager runs a keep-alive loop: every PingInterval it sends a ping
// bounded by PingTimeout; on the first failure or timeout it stops and
// reports the error once via the Errors channel.
type PingManager struct {
	PingInterval time.Duration
	PingTimeout  time.Duration
	Enabled      bool

	sender PingSender
	logger log.Logger
	errCh  chan error
	cancel context.CancelFunc
}

// NewPingManager builds a PingManager that uses sender to issue pings.
func NewPingManager(sender PingSender, interval, timeout time.Duration, logger log.Logger) *PingManager {
	return &PingManager{
		PingInterval: interval,
		PingTimeout:  timeout,
		Enabled:      true,
		sender:       sender,
		logger:       logger,
		errCh:        make(chan error, 1),
	}
}

// Errors returns the channel on which StartMonitoring reports a terminal
// ping failure (delivered at most once).
func (p *PingManager) Errors() <-chan error { return p.errCh }

// StartMonitoring runs the keep-alive loop until ctx is cancelled or a
// ping fails/times out, whichever comes first. It runs synchronously;
// callers invoke it in their own goroutine.
func (p *PingManager) StartMonitoring(ctx context.Context) {
	if !p.Enabled {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	ticker := time.NewTicker(p.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, p.PingTimeout)
			err := p.sender.SendPing(pingCtx)
			pingCancel()
			if err != nil {
				if p.logger != nil {
					p.logger.Warn("ping failed, stopping keep-alive loop", "error", err)
				}
				select {
				case p.errCh <- err:
				default:
				}
				return
			}
		}
	}
}

// Stop cancels a running monitoring loop.
func (p *PingManager) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

// HandlePing implements the ping-handler primitive: it echoes the data
// field verbatim in the result.
func HandlePing(data json.RawMessage) json.RawMessage {
	if len(data) == 0 {
		return json.RawMessage(`{}`)
	}
	return data
}
