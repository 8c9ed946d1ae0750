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
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
	"github.com/mcpkit/mcp-go/internal/log"
	"github.com/mcpkit/mcp-go/internal/mcperr"
	"github.com/mcpkit/mcp-go/internal/transport"
)

// internalMethods are handled by the correlator itself rather than routed
// to an application handler, per §4.8's inbound dispatch categorisation.
var internalMethods = map[string]bool{
	"initialized": true,
	"$/cancelled": true,
	"$/progress":  true,
	"ping":        true,
}

func isListChanged(method string) bool {
	return strings.HasSuffix(method, "/list_changed") || strings.HasSuffix(method, "listChanged") ||
		method == "notifications/resources/updated"
}

// NotificationHandler receives every inbound notification except
// "$/cancelled", "$/progress" and "ping", which the correlator consumes
// itself; "initialized", list-changed and resources/updated notifications
// are forwarded to it as well.
type NotificationHandler func(method string, params json.RawMessage)

// RequestHandler receives an inbound request whose method is not one of
// the internal methods above and returns either a result or an error.
type RequestHandler func(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *jsonrpc.ErrorObject)

// DefaultRequestTimeout is the per-request deadline from §5, applied when
// a caller does not supply its own context deadline.
const DefaultRequestTimeout = 30 * time.Second

// Correlator is the request correlator & dispatcher (C8): it sends
// requests over a transport.Transport and resolves the matching response,
// and it fans inbound notifications out to registered handlers. One
// Correlator owns exactly one transport and one reader goroutine.
type Correlator struct {
	tr     transport.Transport
	codec  jsonrpc.Codec
	logger log.Logger

	cancelReg *CancellationRegistry
	progress  *ProgressRouter

	idCounter atomic.Int64

	mu      sync.Mutex
	waiters map[string]chan *jsonrpc.Message

	notifHandler  NotificationHandler
	requestHandler RequestHandler
}

// New builds a Correlator over tr.
func New(tr transport.Transport, logger log.Logger) *Correlator {
	return &Correlator{
		tr:        tr,
		logger:    logger,
		cancelReg: NewCancellationRegistry(),
		progress:  NewProgressRouter(),
		waiters:   make(map[string]chan *jsonrpc.Message),
	}
}

// CancellationRegistry exposes C3's registry for capability gating and
// lifecycle wiring elsewhere.
func (c *Correlator) CancellationRegistry() *CancellationRegistry { return c.cancelReg }

// ProgressRouter exposes C3's progress router so callers can register
// sinks before issuing a long-running request.
func (c *Correlator) ProgressRouter() *ProgressRouter { return c.progress }

// OnNotification registers the single handler invoked for inbound
// notifications outside the internal method set.
func (c *Correlator) OnNotification(h NotificationHandler) { c.notifHandler = h }

// OnRequest registers the single handler invoked for inbound requests
// outside the internal method set.
func (c *Correlator) OnRequest(h RequestHandler) { c.requestHandler = h }

func (c *Correlator) nextID() jsonrpc.ID {
	return jsonrpc.NumberID(c.idCounter.Add(1))
}

// SendRequest allocates a request ID, registers it with C3, sends it, and
// waits for the matching response, cancellation, or ctx's deadline.
func (c *Correlator) SendRequest(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultRequestTimeout)
		defer cancel()
	}

	id := c.nextID()
	c.cancelReg.Register(id, method)
	defer c.cancelReg.Complete(id)

	waiter := make(chan *jsonrpc.Message, 1)
	key := id.String()
	c.mu.Lock()
	c.waiters[key] = waiter
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.waiters, key)
		c.mu.Unlock()
	}()

	req := jsonrpc.NewRequest(id, method, params)
	if err := c.tr.Send(ctx, req); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		c.cancelReg.Cancel(id, "timeout")
		return nil, mcperr.New(mcperr.KindRequestTimeout, "request timed out")
	case resp := <-waiter:
		if c.cancelReg.IsCancelled(id) {
			return nil, mcperr.New(mcperr.KindCancelled, "request was cancelled")
		}
		if resp.Error != nil {
			return nil, mcperr.Newf(mcperr.KindInternalError, "%s", resp.Error.Message).WithData(resp.Error)
		}
		return resp.Result, nil
	}
}

// SendNotification sends a fire-and-forget notification.
func (c *Correlator) SendNotification(ctx context.Context, method string, params json.RawMessage) error {
	return c.tr.Send(ctx, jsonrpc.NewNotification(method, params))
}

// SendPing implements PingSender by issuing a "ping" request.
func (c *Correlator) SendPing(ctx context.Context) error {
	_, err := c.SendRequest(ctx, "ping", nil)
	return err
}

// Run drives the single reader loop: it blocks reading from the
// transport and dispatching each inbound message until ctx is cancelled
// or the transport closes.
func (c *Correlator) Run(ctx context.Context) error {
	for {
		msg, err := c.tr.Recv(ctx)
		if err != nil {
			return err
		}
		c.dispatch(ctx, msg)
	}
}

func (c *Correlator) dispatch(ctx context.Context, msg *jsonrpc.Message) {
	switch msg.Classify() {
	case jsonrpc.KindResponse:
		c.dispatchResponse(msg)
	case jsonrpc.KindNotification:
		c.dispatchNotification(ctx, msg)
	case jsonrpc.KindRequest:
		c.dispatchRequest(ctx, msg)
	default:
		if c.logger != nil {
			c.logger.Warn("dropping message matching no known jsonrpc shape")
		}
	}
}

func (c *Correlator) dispatchResponse(msg *jsonrpc.Message) {
	key := msg.ID.String()
	c.mu.Lock()
	waiter, ok := c.waiters[key]
	c.mu.Unlock()
	if !ok {
		if c.logger != nil {
			c.logger.Warn("dropping response for unknown request id", "id", key)
		}
		return
	}
	select {
	case waiter <- msg:
	default:
	}
}

func (c *Correlator) dispatchNotification(ctx context.Context, msg *jsonrpc.Message) {
	switch {
	case msg.Method == "$/cancelled":
		var params struct {
			RequestID jsonrpc.ID `json:"requestId"`
			Reason    string     `json:"reason"`
		}
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			c.cancelReg.HandleCancelledNotification(params.RequestID, params.Reason)
			c.mu.Lock()
			waiter, ok := c.waiters[params.RequestID.String()]
			c.mu.Unlock()
			if ok {
				select {
				case waiter <- &jsonrpc.Message{JSONRPC: jsonrpc.Version, ID: &params.RequestID}:
				default:
				}
			}
		}
	case msg.Method == "$/progress":
		var update ProgressUpdate
		if err := json.Unmarshal(msg.Params, &update); err == nil {
			c.progress.Route(update)
		}
	case msg.Method == "initialized", isListChanged(msg.Method):
		// Internal bookkeeping notifications: the correlator takes no action
		// of its own and forwards them to the registered handler, through
		// which the lifecycle and subscription wiring at a higher layer
		// observe them.
		if c.notifHandler != nil {
			c.notifHandler(msg.Method, msg.Params)
		}
	case msg.Method == "ping":
		// A ping notification needs no action.
	default:
		if c.notifHandler != nil {
			c.notifHandler(msg.Method, msg.Params)
		} else if c.logger != nil {
			c.logger.Warn("no handler registered for notification", "method", msg.Method)
		}
	}
}

func (c *Correlator) dispatchRequest(ctx context.Context, msg *jsonrpc.Message) {
	if msg.Method == "ping" {
		result := HandlePing(msg.Params)
		_ = c.tr.Send(ctx, jsonrpc.NewResultResponse(*msg.ID, result))
		return
	}
	if c.requestHandler == nil {
		errObj := &jsonrpc.ErrorObject{Code: mcperr.CodeMethodNotFound, Message: "method not found: " + msg.Method}
		_ = c.tr.Send(ctx, jsonrpc.NewErrorResponse(*msg.ID, errObj))
		return
	}
	result, errObj := c.requestHandler(ctx, msg.Method, msg.Params)
	if errObj != nil {
		_ = c.tr.Send(ctx, jsonrpc.NewErrorResponse(*msg.ID, errObj))
		return
	}
	_ = c.tr.Send(ctx, jsonrpc.NewResultResponse(*msg.ID, result))
}
