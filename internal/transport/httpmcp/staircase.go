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

package httpmcp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
	"github.com/mcpkit/mcp-go/internal/mcperr"
	"github.com/mcpkit/mcp-go/internal/transport"
)

// staircaseSteps is the client polling cadence from §4.6: very tight for
// ~1s, then looser for a few seconds, then backoff to seconds, for a total
// budget of ~10s before giving up.
var staircaseSteps = []struct {
	interval time.Duration
	untilTot time.Duration
}{
	{10 * time.Millisecond, 1 * time.Second},
	{50 * time.Millisecond, 4 * time.Second},
	{1 * time.Second, 10 * time.Second},
}

// StaircasePoller is the fallback Transport used by clients that cannot
// maintain an SSE connection: it polls via empty-bodied POSTs carrying the
// session id, at increasing intervals, per §4.6's "Client polling
// discipline". It wraps a Client for the POST/session plumbing and differs
// only in how Recv waits for data.
type StaircasePoller struct {
	*Client
}

// NewStaircasePoller builds a poller around a fresh Client.
func NewStaircasePoller(baseURL string, httpClient *http.Client) *StaircasePoller {
	return &StaircasePoller{Client: NewClient(baseURL, httpClient)}
}

// Recv polls the session with the staircase cadence until a message
// arrives, the budget is exhausted, or ctx is cancelled.
func (p *StaircasePoller) Recv(ctx context.Context) (*jsonrpc.Message, error) {
	select {
	case msg := <-p.recvCh:
		return msg, nil
	default:
	}

	start := time.Now()
	for _, step := range staircaseSteps {
		ticker := time.NewTicker(step.interval)
		for time.Since(start) < step.untilTot {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return nil, ctx.Err()
			case msg := <-p.recvCh:
				ticker.Stop()
				return msg, nil
			case <-ticker.C:
				if err := p.poll(ctx); err != nil {
					ticker.Stop()
					return nil, err
				}
				select {
				case msg := <-p.recvCh:
					ticker.Stop()
					return msg, nil
				default:
				}
			}
		}
		ticker.Stop()
	}
	return nil, mcperr.New(mcperr.KindConnectionTimeout, "no messages within polling budget")
}

// poll issues one empty-bodied POST carrying only the session id. A 200
// response body is decoded and queued for Recv; any other status is
// ignored. This package's Handler has no bare-poll path and answers such
// a POST with 400.
func (p *StaircasePoller) poll(ctx context.Context) error {
	p.mu.Lock()
	sessionID := p.sessionID
	protocolVersion := p.protocolVersion
	p.mu.Unlock()
	if sessionID == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(nil))
	if err != nil {
		return mcperr.Wrap(mcperr.KindConnectionError, "building poll request", err)
	}
	req.Header.Set(headerProtocolVersion, protocolVersion)
	req.Header.Set(headerSessionID, sessionID)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return mcperr.Wrap(mcperr.KindConnectionError, "poll request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err == nil && len(body) > 0 {
			if msg, err := p.codec.Decode(body); err == nil {
				select {
				case p.recvCh <- msg:
				case <-ctx.Done():
				}
			}
		}
	}
	return nil
}

var _ transport.Transport = (*StaircasePoller)(nil)
