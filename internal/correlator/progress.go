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

import "sync"

// ProgressUpdate is the payload of a "$/progress" notification.
type ProgressUpdate struct {
	Token    any     `json:"progressToken"`
	Progress float64 `json:"progress"`
	Total    *float64 `json:"total,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// ProgressSink receives progress updates routed by token.
type ProgressSink func(ProgressUpdate)

// ProgressRouter routes inbound progress notifications to the
// application-level sink registered for their token.
type ProgressRouter struct {
	mu    sync.RWMutex
	sinks map[string]ProgressSink
}

// NewProgressRouter builds an empty router.
func NewProgressRouter() *ProgressRouter {
	return &ProgressRouter{sinks: make(map[string]ProgressSink)}
}

func tokenKey(token any) string {
	switch t := token.(type) {
	case string:
		return "s:" + t
	default:
		return "n:" + toString(t)
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case int64:
		return itoa(t)
	case float64:
		return itoa(int64(t))
	default:
		return ""
	}
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Register associates a progress token with a sink. Routing for a given
// token preserves the order progress notifications were delivered, since
// a single reader goroutine calls Route sequentially.
func (r *ProgressRouter) Register(token any, sink ProgressSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[tokenKey(token)] = sink
}

// Unregister removes a token's sink, e.g. once its request completes.
func (r *ProgressRouter) Unregister(token any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, tokenKey(token))
}

// Route delivers an update to its token's sink, if any is registered.
func (r *ProgressRouter) Route(update ProgressUpdate) {
	r.mu.RLock()
	sink, ok := r.sinks[tokenKey(update.Token)]
	r.mu.RUnlock()
	if ok {
		sink(update)
	}
}
