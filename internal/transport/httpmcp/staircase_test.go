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
	"testing"
	"time"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
)

func TestStaircasePollerReturnsQueuedMessageWithoutPolling(t *testing.T) {
	p := NewStaircasePoller("http://example.invalid/mcp", nil)
	want := jsonrpc.NewNotification("ping", nil)
	p.recvCh <- want

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := p.Recv(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("got a different message than was queued")
	}
}

func TestStaircasePollerRespectsContextCancellation(t *testing.T) {
	p := NewStaircasePoller("http://example.invalid/mcp", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Recv(ctx); err == nil {
		t.Fatal("expected an error once context is cancelled")
	}
}
