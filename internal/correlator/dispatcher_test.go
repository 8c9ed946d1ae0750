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
	"testing"
	"time"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
	"github.com/mcpkit/mcp-go/internal/mcperr"
	"github.com/mcpkit/mcp-go/internal/transport"
)

// pipeTransport is an in-memory duplex Transport for tests: Send on one
// end delivers to the peer's Recv.
type pipeTransport struct {
	out chan *jsonrpc.Message
	in  chan *jsonrpc.Message
}

func newPipePair() (a, b *pipeTransport) {
	c1 := make(chan *jsonrpc.Message, 16)
	c2 := make(chan *jsonrpc.Message, 16)
	return &pipeTransport{out: c1, in: c2}, &pipeTransport{out: c2, in: c1}
}

func (p *pipeTransport) Send(ctx context.Context, msg *jsonrpc.Message) error {
	select {
	case p.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
func (p *pipeTransport) Recv(ctx context.Context) (*jsonrpc.Message, error) {
	select {
	case m := <-p.in:
		return m, nil
	case <-ctx.Done():
		return nil, mcperr.Wrap(mcperr.KindConnectionClosed, "closed", ctx.Err())
	}
}
func (p *pipeTransport) Close(_ context.Context) error  { return nil }
func (p *pipeTransport) ForceClose() error              { return nil }
func (p *pipeTransport) Reconnect(_ context.Context) error { return nil }
func (p *pipeTransport) Reset() error                   { return nil }
func (p *pipeTransport) State() transport.State         { return transport.StateConnected }
func (p *pipeTransport) HealthSnapshot() transport.Health { return transport.Health{} }

var _ transport.Transport = (*pipeTransport)(nil)

func TestSendRequestRoundTrip(t *testing.T) {
	clientTr, serverTr := newPipePair()
	client := New(clientTr, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	go func() {
		msg, err := serverTr.Recv(ctx)
		if err != nil {
			return
		}
		result, _ := json.Marshal(map[string]string{"echo": "Hello"})
		_ = serverTr.Send(ctx, jsonrpc.NewResultResponse(*msg.ID, result))
	}()

	result, err := client.SendRequest(ctx, "tools/call", nil)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(result, &got); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if got["echo"] != "Hello" {
		t.Fatalf("got %v, want echo=Hello", got)
	}
}

func TestCancelledNotificationResolvesWaiterWithoutResponse(t *testing.T) {
	clientTr, serverTr := newPipePair()
	client := New(clientTr, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		msg, err := serverTr.Recv(ctx)
		if err != nil {
			return
		}
		// Server observes the request, then the client cancels it before
		// any response is sent.
		cancelParams, _ := json.Marshal(map[string]any{"requestId": msg.ID})
		_ = serverTr.Send(ctx, jsonrpc.NewNotification("$/cancelled", cancelParams))
	}()

	_, err := client.SendRequest(ctx, "tools/call", nil)
	if err == nil {
		t.Fatal("expected cancelled outcome")
	}
	merr, ok := err.(*mcperr.Error)
	if !ok || merr.Kind != mcperr.KindCancelled {
		t.Fatalf("expected Cancelled kind, got %v", err)
	}
	select {
	case <-serverDone:
	case <-time.After(time.Second):
		t.Fatal("server goroutine did not complete")
	}
}

func TestResponseForUnknownIDIsDropped(t *testing.T) {
	clientTr, serverTr := newPipePair()
	client := New(clientTr, nil)
	ctx := context.Background()

	result, _ := json.Marshal("unexpected")
	stray := jsonrpc.NewResultResponse(jsonrpc.NumberID(9999), result)
	if err := serverTr.Send(ctx, stray); err != nil {
		t.Fatalf("send stray response: %v", err)
	}

	recvCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	msg, err := client.tr.Recv(recvCtx)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	// dispatch should not panic and should simply drop the stray response.
	client.dispatch(ctx, msg)
}

func TestPingHandlerEchoesDataVerbatim(t *testing.T) {
	data := json.RawMessage(`{"nonce":"abc"}`)
	echoed := HandlePing(data)
	if string(echoed) != string(data) {
		t.Fatalf("got %s, want %s", echoed, data)
	}
}
