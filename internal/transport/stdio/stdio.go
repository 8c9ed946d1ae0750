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

// Package stdio implements the newline-delimited JSON stdio transport
// (C5): one JSON-RPC message per line over a reader/writer byte-pair.
package stdio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
	"github.com/mcpkit/mcp-go/internal/mcperr"
	"github.com/mcpkit/mcp-go/internal/transport"
)

// Transport is a newline-delimited JSON transport over a reader/writer
// byte-pair, the shape stdio MCP peers (and Claude Desktop-style hosts)
// speak.
type Transport struct {
	codec  jsonrpc.Codec
	reader *bufio.Reader
	writer io.Writer

	transport.HealthCounters

	writeMu sync.Mutex
}

// New wraps r/w as a stdio Transport, starting in Connected state.
func New(r io.Reader, w io.Writer) *Transport {
	t := &Transport{reader: bufio.NewReader(r), writer: w}
	t.SetState(transport.StateConnected)
	return t
}

// Send encodes msg and writes it as a single newline-terminated line.
func (t *Transport) Send(_ context.Context, msg *jsonrpc.Message) error {
	if t.State() != transport.StateConnected {
		return mcperr.New(mcperr.KindConnectionError, "stdio transport is not connected")
	}
	b, err := t.codec.Encode(msg)
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := fmt.Fprintf(t.writer, "%s\n", b); err != nil {
		t.RecordError(err.Error())
		return mcperr.Wrap(mcperr.KindConnectionError, "stdio write failed", err)
	}
	t.RecordSent()
	return nil
}

// Recv reads one line, decodes and validates it. A line that fails to
// decode or validate is counted as an error and Recv returns that error
// directly, whether or not the line carried a recoverable ID; no
// parse-error response is sent to the peer, and the caller decides
// whether to close the connection.
func (t *Transport) Recv(ctx context.Context) (*jsonrpc.Message, error) {
	line, err := t.readLine(ctx)
	if err != nil {
		if err == io.EOF {
			t.SetState(transport.StateDisconnected)
			return nil, mcperr.Wrap(mcperr.KindConnectionClosed, "stdio peer closed", err)
		}
		return nil, mcperr.Wrap(mcperr.KindNetworkError, "stdio read failed", err)
	}
	msg, err := t.codec.DecodeValidate([]byte(line))
	if err != nil {
		t.RecordError(err.Error())
		return nil, err
	}
	t.RecordReceived()
	return msg, nil
}

// readLine runs the blocking ReadString in its own goroutine so ctx
// cancellation can unblock a caller even though bufio.Reader has no
// native cancellation hook.
func (t *Transport) readLine(ctx context.Context) (string, error) {
	readChan := make(chan string, 1)
	errChan := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			select {
			case errChan <- err:
			case <-done:
			}
			return
		}
		select {
		case readChan <- line:
		case <-done:
		}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errChan:
		return "", err
	case line := <-readChan:
		return line, nil
	}
}

// Close marks the transport shutting down; stdio has no handshake to
// perform, so this always succeeds immediately.
func (t *Transport) Close(_ context.Context) error {
	t.SetState(transport.StateShuttingDown)
	t.SetState(transport.StateDisconnected)
	return nil
}

// ForceClose is equivalent to Close for stdio.
func (t *Transport) ForceClose() error {
	t.SetState(transport.StateDisconnected)
	return nil
}

// Reconnect is unsupported for stdio: there is no logical endpoint to
// re-establish once the underlying pipe is gone.
func (t *Transport) Reconnect(_ context.Context) error {
	return mcperr.New(mcperr.KindConnectionError, "stdio transport does not support reconnect")
}

// Reset returns the transport to Disconnected; the health counters are
// kept. Stdio carries no queues or session id to clear beyond state.
func (t *Transport) Reset() error {
	t.SetState(transport.StateDisconnected)
	return nil
}

// HealthSnapshot reports the current counters.
func (t *Transport) HealthSnapshot() transport.Health { return t.Snapshot() }

var _ transport.Transport = (*Transport)(nil)
