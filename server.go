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

package mcp

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mcpkit/mcp-go/internal/correlator"
	"github.com/mcpkit/mcp-go/internal/jsonrpc"
	"github.com/mcpkit/mcp-go/internal/lifecycle"
	"github.com/mcpkit/mcp-go/internal/log"
	"github.com/mcpkit/mcp-go/internal/mcperr"
	"github.com/mcpkit/mcp-go/internal/protocol"
	"github.com/mcpkit/mcp-go/internal/subscription"
	"github.com/mcpkit/mcp-go/internal/transport"
	"github.com/mcpkit/mcp-go/internal/util"
)

// MethodHandler answers one application method (e.g. "tools/call") over a
// decoded params blob, returning either a result or a structured error.
type MethodHandler func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

// Server is the host-facing MCP server: a method registry dispatched
// through the lifecycle gate, usable over any C4 transport (stdio
// directly via Serve, or Streamable HTTP via Dispatch wired into
// httpmcp.Handler). It mirrors the teacher's Server/ResourceManager split,
// generalized from tool/source/toolset registries to a single method
// table.
type Server struct {
	info protocol.ServerCapabilities
	name string
	ver  string

	mu       sync.RWMutex
	handlers map[string]MethodHandler

	subs   *subscription.Table
	logger log.Logger
}

// NewServer builds an empty Server advertising the given capabilities.
func NewServer(name, version string, caps protocol.ServerCapabilities, logger log.Logger) *Server {
	return &Server{
		name:     name,
		ver:      version,
		info:     caps,
		handlers: make(map[string]MethodHandler),
		subs:     subscription.New(),
		logger:   logger,
	}
}

// Subscriptions exposes the server's resource-update subscription table.
func (s *Server) Subscriptions() *subscription.Table { return s.subs }

// Handle registers the handler for an application method. "initialize"
// and "initialized" are reserved; registering either panics, mirroring
// the teacher's fail-fast config validation.
func (s *Server) Handle(method string, h MethodHandler) {
	if method == "initialize" || method == "initialized" {
		panic("mcp: method " + method + " is handled by the lifecycle layer, not application code")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

func (s *Server) lookup(method string) (MethodHandler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[method]
	return h, ok
}

// handleInitialize answers the initialize handshake with the server's
// capabilities and negotiated protocol version.
func (s *Server) handleInitialize(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	_ = json.Unmarshal(params, &req)
	negotiated := protocol.Negotiate(req.ProtocolVersion)
	return json.Marshal(InitializeResult{
		ProtocolVersion: negotiated,
		Capabilities:    s.info,
		ServerInfo:      ServerInfo{Name: s.name, Version: s.ver},
	})
}

// dispatch is the internal request router shared by Serve (stdio) and
// Dispatch (Streamable HTTP).
func (s *Server) dispatch(ctx context.Context, life *lifecycle.Machine, method string, params json.RawMessage) (json.RawMessage, *jsonrpc.ErrorObject) {
	if s.logger != nil {
		ctx = util.WithLogger(ctx, s.logger)
	}
	if err := life.CheckMethodAllowed(method); err != nil {
		return nil, &jsonrpc.ErrorObject{Code: mcperr.CodeInitializationFailed, Message: err.Error()}
	}

	if method == "initialize" {
		result, err := s.handleInitialize(ctx, params)
		if err != nil {
			return nil, &jsonrpc.ErrorObject{Code: mcperr.CodeInternalError, Message: err.Error()}
		}
		_ = life.Transition(lifecycle.Initializing)
		_ = life.Transition(lifecycle.Initialized)
		return result, nil
	}

	h, ok := s.lookup(method)
	if !ok {
		return nil, &jsonrpc.ErrorObject{Code: mcperr.CodeMethodNotFound, Message: "method not found: " + method}
	}
	result, err := h(ctx, params)
	if err != nil {
		if merr, ok := err.(*mcperr.Error); ok {
			var data json.RawMessage
			if merr.Data != nil {
				data, _ = json.Marshal(merr.Data)
			}
			return nil, &jsonrpc.ErrorObject{Code: merr.Code(), Message: merr.Message, Data: data}
		}
		return nil, &jsonrpc.ErrorObject{Code: mcperr.CodeInternalError, Message: err.Error()}
	}
	return result, nil
}

// Serve drives a Server over a single transport (typically stdio): one
// lifecycle machine and one correlator per connected peer.
func (s *Server) Serve(ctx context.Context, tr transport.Transport) error {
	life := lifecycle.New()
	corr := correlator.New(tr, s.logger)
	corr.OnRequest(func(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *jsonrpc.ErrorObject) {
		return s.dispatch(ctx, life, method, params)
	})
	corr.OnNotification(func(method string, params json.RawMessage) {
		if method == "initialized" {
			_ = life.Transition(lifecycle.Operating)
		}
	})
	return corr.Run(ctx)
}

// HTTPDispatch adapts Server to httpmcp.Dispatch: each HTTP session gets
// its own lifecycle machine, keyed by session id, so concurrent sessions
// don't share initialize state.
type HTTPDispatch struct {
	srv *Server

	mu        sync.Mutex
	lifecycle map[string]*lifecycle.Machine
}

// NewHTTPDispatch builds the per-session dispatch adapter used by
// httpmcp.NewHandler.
func NewHTTPDispatch(srv *Server) *HTTPDispatch {
	return &HTTPDispatch{srv: srv, lifecycle: make(map[string]*lifecycle.Machine)}
}

func (d *HTTPDispatch) lifecycleFor(sessionID string) *lifecycle.Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	life, ok := d.lifecycle[sessionID]
	if !ok {
		life = lifecycle.New()
		d.lifecycle[sessionID] = life
	}
	return life
}

// Dispatch decodes one inbound message for sessionID and returns the
// correlated response, or (nil, nil) for notifications/responses per
// httpmcp.Dispatch's contract.
func (d *HTTPDispatch) Dispatch(ctx context.Context, sessionID string, msg *jsonrpc.Message) (*jsonrpc.Message, error) {
	switch msg.Classify() {
	case jsonrpc.KindNotification:
		if msg.Method == "initialized" {
			_ = d.lifecycleFor(sessionID).Transition(lifecycle.Operating)
		}
		return nil, nil
	case jsonrpc.KindResponse:
		return nil, nil
	case jsonrpc.KindRequest:
		life := d.lifecycleFor(sessionID)
		result, errObj := d.srv.dispatch(ctx, life, msg.Method, msg.Params)
		if errObj != nil {
			return jsonrpc.NewErrorResponse(*msg.ID, errObj), nil
		}
		return jsonrpc.NewResultResponse(*msg.ID, result), nil
	default:
		return nil, mcperr.New(mcperr.KindInvalidRequestID, "message matches no known jsonrpc shape")
	}
}
