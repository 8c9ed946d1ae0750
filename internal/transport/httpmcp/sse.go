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
	"fmt"
	"net/http"
	"time"

	"github.com/mcpkit/mcp-go/internal/log"
)

const keepAliveInterval = 15 * time.Second

// streamSSE upgrades w to an event-stream and replays any messages enqueued
// after lastEventID, per §4.6's GET semantics: "if resumability is enabled
// the server replays any messages enqueued after that event." After the
// replay it only writes keep-alive comments until ctx ends; messages
// enqueued after the replay are not written to this stream.
func streamSSE(ctx context.Context, w http.ResponseWriter, session *Session, lastEventID string, logger log.Logger) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	streamID := fmt.Sprintf("%s-%d", session.ID, time.Now().UnixNano())
	session.mu.Lock()
	session.ActiveStreams[streamID] = struct{}{}
	session.mu.Unlock()
	defer func() {
		session.mu.Lock()
		delete(session.ActiveStreams, streamID)
		session.mu.Unlock()
	}()

	for _, m := range session.Queue().Since(lastEventID) {
		writeSSEFrame(w, flusher, m.EventID, m.Payload)
		session.LastEventID = m.EventID
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if logger != nil {
				logger.DebugContext(ctx, "sse client disconnected")
			}
			return
		case <-ticker.C:
			_, _ = fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

func writeSSEFrame(w http.ResponseWriter, flusher http.Flusher, eventID string, payload []byte) {
	_, _ = fmt.Fprintf(w, "id: %s\ndata: %s\n\n", eventID, payload)
	flusher.Flush()
}
