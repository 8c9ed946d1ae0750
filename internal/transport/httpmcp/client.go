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
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
	"github.com/mcpkit/mcp-go/internal/mcperr"
	"github.com/mcpkit/mcp-go/internal/protocol"
	"github.com/mcpkit/mcp-go/internal/transport"
)

// Client is the client-side Streamable HTTP transport.Transport
// implementation: POST to submit, a background SSE GET to receive
// server-to-client messages, per §4.6.
type Client struct {
	baseURL    string
	httpClient *http.Client
	codec      *jsonrpc.Codec

	mu              sync.Mutex
	sessionID       string
	protocolVersion string
	lastEventID     string

	recvCh chan *jsonrpc.Message
	errCh  chan error
	cancel context.CancelFunc

	transport.HealthCounters
}

// NewClient builds a Client targeting the given /mcp base URL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      httpClient,
		codec:           jsonrpc.NewCodec(),
		protocolVersion: protocol.Latest,
		recvCh:          make(chan *jsonrpc.Message, 64),
		errCh:           make(chan error, 1),
	}
	c.SetState(transport.StateDisconnected)
	return c
}

// Connect starts the background SSE stream and marks the client Connected.
// It is idempotent-ish: calling it twice restarts the stream.
func (c *Client) Connect(ctx context.Context) error {
	streamCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.mu.Unlock()
	c.SetState(transport.StateConnected)
	go c.runSSE(streamCtx)
	return nil
}

func (c *Client) runSSE(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		c.deliverErr(err)
		return
	}
	c.mu.Lock()
	req.Header.Set(headerProtocolVersion, c.protocolVersion)
	if c.sessionID != "" {
		req.Header.Set(headerSessionID, c.sessionID)
	}
	if c.lastEventID != "" {
		req.Header.Set(headerLastEventID, c.lastEventID)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.deliverErr(mcperr.Wrap(mcperr.KindConnectionError, "sse connect failed", err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.deliverErr(mcperr.Newf(mcperr.KindConnectionError, "sse connect failed: status %d", resp.StatusCode))
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	var eventID string
	var dataLines []string
	flush := func() {
		if len(dataLines) == 0 {
			return
		}
		payload := strings.Join(dataLines, "\n")
		dataLines = nil
		msg, err := c.codec.Decode([]byte(payload))
		if err != nil {
			return
		}
		if eventID != "" {
			c.mu.Lock()
			c.lastEventID = eventID
			c.mu.Unlock()
		}
		c.RecordReceived()
		select {
		case c.recvCh <- msg:
		case <-ctx.Done():
		}
	}
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
			eventID = ""
		case strings.HasPrefix(line, "id: "):
			eventID = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		}
	}
}

func (c *Client) deliverErr(err error) {
	c.SetState(transport.StateFailed)
	c.RecordError(err.Error())
	select {
	case c.errCh <- err:
	default:
	}
}

// HealthSnapshot reports the current counters.
func (c *Client) HealthSnapshot() transport.Health { return c.Snapshot() }

// Send POSTs msg to the /mcp endpoint. A request method's correlated
// response, if returned synchronously as HTTP 200, is pushed onto the recv
// channel exactly as if it had arrived over SSE. Send does not check the
// connection state: it also works before Connect, which is how the
// initialize POST that allocates the session is sent.
func (c *Client) Send(ctx context.Context, msg *jsonrpc.Message) error {
	body, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return mcperr.Wrap(mcperr.KindConnectionError, "building post request", err)
	}
	req.Header.Set("content-type", "application/json")
	c.mu.Lock()
	req.Header.Set(headerProtocolVersion, c.protocolVersion)
	if c.sessionID != "" {
		req.Header.Set(headerSessionID, c.sessionID)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mcperr.Wrap(mcperr.KindConnectionError, "post request failed", err)
	}
	defer resp.Body.Close()

	if sid := resp.Header.Get(headerSessionID); sid != "" {
		c.mu.Lock()
		c.sessionID = sid
		c.mu.Unlock()
	}
	c.RecordSent()

	switch resp.StatusCode {
	case http.StatusAccepted:
		return nil
	case http.StatusOK:
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcperr.Wrap(mcperr.KindConnectionError, "reading post response", err)
		}
		respMsg, err := c.codec.Decode(respBody)
		if err != nil {
			return err
		}
		select {
		case c.recvCh <- respMsg:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	default:
		return mcperr.Newf(mcperr.KindConnectionError, "post request failed: status %d", resp.StatusCode)
	}
}

// Recv yields the next inbound message, from either an SSE frame or a
// synchronous POST response.
func (c *Client) Recv(ctx context.Context) (*jsonrpc.Message, error) {
	select {
	case msg := <-c.recvCh:
		return msg, nil
	case err := <-c.errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close terminates the session server-side and stops the SSE stream.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	sessionID := c.sessionID
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if sessionID != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL, nil)
		if err == nil {
			req.Header.Set(headerSessionID, sessionID)
			resp, err := c.httpClient.Do(req)
			if err == nil {
				resp.Body.Close()
			}
		}
	}
	c.SetState(transport.StateShuttingDown)
	return nil
}

// ForceClose tears the stream down unconditionally.
func (c *Client) ForceClose() error {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.SetState(transport.StateDisconnected)
	return nil
}

// Reconnect re-opens the SSE stream using the cached session id and
// last-event-id, letting the server replay anything missed.
func (c *Client) Reconnect(ctx context.Context) error {
	return c.Connect(ctx)
}

// Reset clears cached session/event state and returns to Disconnected.
func (c *Client) Reset() error {
	c.mu.Lock()
	c.sessionID = ""
	c.lastEventID = ""
	c.mu.Unlock()
	c.SetState(transport.StateDisconnected)
	return nil
}

var _ transport.Transport = (*Client)(nil)
