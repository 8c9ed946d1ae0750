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
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
)

// TestSessionResumptionReplaysMessageAfterLastEventID exercises scenario D:
// a notification enqueued while the client isn't streaming is replayed once
// the client reconnects with last-event-id.
func TestSessionResumptionReplaysMessageAfterLastEventID(t *testing.T) {
	h := newTestHandler()
	session := h.Store.Create()

	firstID := session.Queue().Enqueue(mustEncode(t, jsonrpc.NewNotification("notifications/progress", nil)))
	secondID := session.Queue().Enqueue(mustEncode(t, jsonrpc.NewNotification("notifications/message", nil)))

	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	client.mu.Lock()
	client.sessionID = session.ID
	client.lastEventID = firstID
	client.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := client.Recv(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Method != "notifications/message" {
		t.Fatalf("got method %q, want notifications/message (replay should skip %s)", msg.Method, firstID)
	}
	_ = secondID
}

func mustEncode(t *testing.T, msg *jsonrpc.Message) []byte {
	t.Helper()
	codec := jsonrpc.NewCodec()
	b, err := codec.Encode(msg)
	if err != nil {
		t.Fatalf("encoding message: %v", err)
	}
	return b
}

func TestClientSendOnInitializeCapturesSessionHeader(t *testing.T) {
	h := newTestHandler()
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	err := client.Send(context.Background(), jsonrpc.NewRequest(jsonrpc.NumberID(1), "initialize", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client.mu.Lock()
	sid := client.sessionID
	client.mu.Unlock()
	if sid == "" {
		t.Fatal("expected client to capture the allocated session id")
	}

	resp, err := client.Recv(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Classify() != jsonrpc.KindResponse {
		t.Fatalf("expected a response message, got %+v", resp)
	}
}
