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

package stdio

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
)

func TestSendWritesNewlineDelimitedJSON(t *testing.T) {
	var out bytes.Buffer
	tr := New(strings.NewReader(""), &out)

	msg := jsonrpc.NewRequest(jsonrpc.NumberID(1), "ping", nil)
	if err := tr.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasSuffix(out.String(), "\n") {
		t.Fatalf("expected newline-terminated frame, got %q", out.String())
	}
	if strings.Count(out.String(), "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", out.String())
	}
}

func TestRecvDecodesOneLine(t *testing.T) {
	in := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo","arguments":{"message":"Hello"}}}` + "\n"
	tr := New(strings.NewReader(in), &bytes.Buffer{})

	msg, err := tr.Recv(context.Background())
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if msg.Method != "tools/call" {
		t.Fatalf("got method %q, want tools/call", msg.Method)
	}
	if msg.Classify() != jsonrpc.KindRequest {
		t.Fatalf("expected request, got kind %v", msg.Classify())
	}
}

func TestRecvRespectsContextCancellation(t *testing.T) {
	tr := New(blockingReader{}, &bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := tr.Recv(ctx)
	if err == nil {
		t.Fatal("expected context deadline error")
	}
}

// blockingReader never returns, simulating a stalled peer; Recv must still
// unblock via context cancellation.
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}
