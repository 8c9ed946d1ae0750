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
	"io"
	"testing"
	"time"

	"github.com/mcpkit/mcp-go/internal/protocol"
	"github.com/mcpkit/mcp-go/internal/transport/stdio"
)

// pipePair builds two stdio transports wired back to back, one for the
// client side and one for the server side, so the handshake and a round
// trip call can be exercised without a real process boundary.
func pipePair() (client, server *stdio.Transport) {
	clientIn, serverOut := io.Pipe()
	serverIn, clientOut := io.Pipe()
	client = stdio.New(clientIn, clientOut)
	server = stdio.New(serverIn, serverOut)
	return client, server
}

func TestClientServerInitializeHandshake(t *testing.T) {
	clientTr, serverTr := pipePair()

	srv := NewServer("test-server", "0.1.0", protocol.ServerCapabilities{}, nil)
	srv.Handle("ping/echo", func(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
		return params, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = srv.Serve(ctx, serverTr) }()

	client := NewClient(clientTr, ClientInfo{Name: "test-client", Version: "0.1.0"}, protocol.ClientCapabilities{}, nil)
	client.Run(ctx)

	result, err := client.Initialize(ctx, protocol.Latest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ServerInfo.Name != "test-server" {
		t.Fatalf("got server name %q, want test-server", result.ServerInfo.Name)
	}
	if client.Lifecycle().Current().String() != "Operating" {
		t.Fatalf("got lifecycle state %s, want Operating", client.Lifecycle().Current())
	}

	resp, err := client.Call(ctx, "ping/echo", json.RawMessage(`{"hello":"world"}`))
	if err != nil {
		t.Fatalf("unexpected error calling ping/echo: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(resp, &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got["hello"] != "world" {
		t.Fatalf("got %v, want hello=world", got)
	}
}

func TestCallBeforeInitializeIsRejected(t *testing.T) {
	clientTr, _ := pipePair()
	client := NewClient(clientTr, ClientInfo{Name: "c", Version: "0.1.0"}, protocol.ClientCapabilities{}, nil)

	_, err := client.Call(context.Background(), "tools/list", nil)
	if err == nil {
		t.Fatal("expected a NotReady error before initialize completes")
	}
}
