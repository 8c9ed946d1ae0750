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

// Package mcp is the library's public surface: it wires the protocol
// codec (C1), version negotiation (C2), correlator (C8), lifecycle gate
// (C7) and a chosen transport (C4/C5/C6) into a single Client a host
// program constructs and drives, mirroring how the teacher's cmd/root.go
// assembles a Server from its constituent internal packages.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcpkit/mcp-go/internal/correlator"
	"github.com/mcpkit/mcp-go/internal/lifecycle"
	"github.com/mcpkit/mcp-go/internal/log"
	"github.com/mcpkit/mcp-go/internal/mcperr"
	"github.com/mcpkit/mcp-go/internal/protocol"
	"github.com/mcpkit/mcp-go/internal/subscription"
	"github.com/mcpkit/mcp-go/internal/transport"
)

// ClientInfo identifies the host application to the server during
// initialize, per §4.7's handshake payload.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerInfo is the server's self-identification returned from
// initialize.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult is the decoded response body of the initialize
// handshake.
type InitializeResult struct {
	ProtocolVersion string                       `json:"protocolVersion"`
	Capabilities    protocol.ServerCapabilities   `json:"capabilities"`
	ServerInfo      ServerInfo                    `json:"serverInfo"`
}

// Client is the host-facing MCP client: one lifecycle machine, one
// correlator, one transport (optionally wrapped in transport.Recovering
// for automatic reconnect), and the subscription table for resource
// updates.
type Client struct {
	info   ClientInfo
	caps   protocol.ClientCapabilities
	tr     transport.Transport
	corr   *correlator.Correlator
	life   *lifecycle.Machine
	subs   *subscription.Table
	logger log.Logger

	serverCaps *protocol.ServerCapabilities
	runErrCh   chan error
}

// NewClient builds a Client over tr. Call Initialize before issuing any
// other request; the lifecycle machine rejects everything else until
// then.
func NewClient(tr transport.Transport, info ClientInfo, caps protocol.ClientCapabilities, logger log.Logger) *Client {
	c := &Client{
		info:   info,
		caps:   caps,
		tr:     tr,
		corr:   correlator.New(tr, logger),
		life:   lifecycle.New(),
		subs:   subscription.New(),
		logger: logger,
	}
	c.corr.OnNotification(c.handleNotification)
	return c
}

// Subscriptions exposes the client's resource-update subscription table.
func (c *Client) Subscriptions() *subscription.Table { return c.subs }

// ServerCapabilities reports the capability set the server advertised
// during initialize, or nil before that completes.
func (c *Client) ServerCapabilities() *protocol.ServerCapabilities { return c.serverCaps }

// Lifecycle exposes the underlying state machine for callers that need to
// observe or gate on connection state directly.
func (c *Client) Lifecycle() *lifecycle.Machine { return c.life }

func (c *Client) handleNotification(method string, params json.RawMessage) {
	switch {
	case method == "notifications/resources/updated":
		var payload struct {
			URI     string `json:"uri"`
			Payload any    `json:"payload"`
		}
		if err := json.Unmarshal(params, &payload); err == nil {
			c.subs.Notify(payload.URI, payload.Payload)
		}
	case method == "notifications/tools/list_changed":
		c.subs.ListChanged("tools")
	case method == "notifications/resources/list_changed":
		c.subs.ListChanged("resources")
	case method == "notifications/prompts/list_changed":
		c.subs.ListChanged("prompts")
	}
}

// Run starts the correlator's single reader loop in the background. The
// caller must invoke this (or manage the loop itself) before Initialize
// can observe a response.
func (c *Client) Run(ctx context.Context) {
	c.runErrCh = make(chan error, 1)
	go func() {
		c.runErrCh <- c.corr.Run(ctx)
	}()
}

// Initialize performs the handshake: sends "initialize", transitions the
// lifecycle machine through Initializing -> Initialized, negotiates the
// protocol version, records the server's capabilities, then sends the
// "initialized" notification and moves to Operating, per §4.7.
func (c *Client) Initialize(ctx context.Context, requestedVersion string) (*InitializeResult, error) {
	if err := c.life.Transition(lifecycle.Initializing); err != nil {
		return nil, err
	}

	params, err := json.Marshal(map[string]any{
		"protocolVersion": requestedVersion,
		"capabilities":    c.caps,
		"clientInfo":      c.info,
	})
	if err != nil {
		return nil, mcperr.Wrap(mcperr.KindSerializationError, "encoding initialize params", err)
	}

	raw, err := c.corr.SendRequest(ctx, "initialize", params)
	if err != nil {
		_ = c.life.Transition(lifecycle.Failed)
		return nil, err
	}

	var result InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		_ = c.life.Transition(lifecycle.Failed)
		return nil, mcperr.Wrap(mcperr.KindSerializationError, "decoding initialize result", err)
	}
	negotiated := protocol.Negotiate(result.ProtocolVersion)
	result.ProtocolVersion = negotiated
	c.serverCaps = &result.Capabilities

	if err := c.life.Transition(lifecycle.Initialized); err != nil {
		return nil, err
	}
	if err := c.corr.SendNotification(ctx, "initialized", nil); err != nil {
		return nil, err
	}
	if err := c.life.Transition(lifecycle.Operating); err != nil {
		return nil, err
	}
	return &result, nil
}

// Call issues a request method, gated by the lifecycle machine.
func (c *Client) Call(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	if err := c.life.CheckMethodAllowed(method); err != nil {
		return nil, err
	}
	return c.corr.SendRequest(ctx, method, params)
}

// Notify sends a fire-and-forget notification, gated by the lifecycle
// machine.
func (c *Client) Notify(ctx context.Context, method string, params json.RawMessage) error {
	if err := c.life.CheckMethodAllowed(method); err != nil {
		return err
	}
	return c.corr.SendNotification(ctx, method, params)
}

// Subscribe requests resource update notifications for uri, first
// confirming the server advertised resources.subscribe.
func (c *Client) Subscribe(ctx context.Context, uri string, sink subscription.Sink) error {
	if err := subscription.CheckSubscribeCapability(c.serverCaps); err != nil {
		return err
	}
	params, err := json.Marshal(map[string]string{"uri": uri})
	if err != nil {
		return mcperr.Wrap(mcperr.KindSerializationError, "encoding subscribe params", err)
	}
	if _, err := c.Call(ctx, "resources/subscribe", params); err != nil {
		return err
	}
	c.subs.Subscribe(uri, c.subscriberID(), sink)
	return nil
}

func (c *Client) subscriberID() string {
	return fmt.Sprintf("client-%p", c)
}

// Shutdown transitions to ShuttingDown/Shutdown and closes the transport.
func (c *Client) Shutdown(ctx context.Context) error {
	if err := c.life.Transition(lifecycle.ShuttingDown); err != nil {
		return err
	}
	err := c.tr.Close(ctx)
	_ = c.life.Transition(lifecycle.Shutdown)
	return err
}
