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

// Package subscription implements the subscription & notification engine
// (C9): a resource-URI -> subscriber-set mapping with fan-out for
// resource-updated and list-changed events. Subscriber identity is always
// supplied by the caller and must be derived from the transport session
// (never a constant placeholder), per the Open Question decision recorded
// in SPEC_FULL.md and DESIGN.md.
package subscription

import (
	"sync"

	"github.com/mcpkit/mcp-go/internal/mcperr"
	"github.com/mcpkit/mcp-go/internal/protocol"
)

// Update is a single resource-updated payload delivered to subscribers of
// a URI.
type Update struct {
	URI     string
	Payload any
}

// Sink receives updates routed to a subscriber.
type Sink func(Update)

// ListChangedSink receives a list-changed event for one of
// tools/resources/prompts.
type ListChangedSink func(kind string)

// Table is the RWMutex-guarded (resource URI -> subscriber set) mapping
// from §3/§4.9. The locking discipline mirrors the teacher's
// ResourceManager: reader-shared for dispatch, writer-exclusive for
// subscribe/unsubscribe.
type Table struct {
	mu    sync.RWMutex
	byURI map[string]map[string]Sink

	listMu sync.RWMutex
	listSinks map[string]ListChangedSink
}

// New builds an empty subscription table.
func New() *Table {
	return &Table{
		byURI:     make(map[string]map[string]Sink),
		listSinks: make(map[string]ListChangedSink),
	}
}

// Subscribe registers subscriberID to receive updates for uri. The caller
// must have already confirmed resources.subscribe is advertised via
// CheckSubscribeCapability; Subscribe itself does not re-check it so the table has
// no dependency on a particular capability representation.
func (t *Table) Subscribe(uri, subscriberID string, sink Sink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs, ok := t.byURI[uri]
	if !ok {
		subs = make(map[string]Sink)
		t.byURI[uri] = subs
	}
	subs[subscriberID] = sink
}

// Unsubscribe removes subscriberID's registration for uri.
func (t *Table) Unsubscribe(uri, subscriberID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if subs, ok := t.byURI[uri]; ok {
		delete(subs, subscriberID)
		if len(subs) == 0 {
			delete(t.byURI, uri)
		}
	}
}

// Notify fans payload out to every current subscriber of uri, in the
// order Notify is called for that URI; there is no cross-URI ordering
// guarantee. Subscribers added after this call started are not
// guaranteed to see it (invariant 7 only binds subscribers added before
// the call).
func (t *Table) Notify(uri string, payload any) {
	t.mu.RLock()
	subs := make([]Sink, 0, len(t.byURI[uri]))
	for _, s := range t.byURI[uri] {
		subs = append(subs, s)
	}
	t.mu.RUnlock()
	update := Update{URI: uri, Payload: payload}
	for _, s := range subs {
		s(update)
	}
}

// SubscriberCount reports how many subscribers currently hold uri,
// primarily for tests and diagnostics.
func (t *Table) SubscriberCount(uri string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byURI[uri])
}

// OnListChanged registers a sink invoked by ListChanged, keyed by an
// arbitrary subscriber id distinct from the per-URI table above (a
// listChanged subscriber need not also hold any URI subscription).
func (t *Table) OnListChanged(subscriberID string, sink ListChangedSink) {
	t.listMu.Lock()
	defer t.listMu.Unlock()
	t.listSinks[subscriberID] = sink
}

// RemoveListChanged unregisters a listChanged subscriber.
func (t *Table) RemoveListChanged(subscriberID string) {
	t.listMu.Lock()
	defer t.listMu.Unlock()
	delete(t.listSinks, subscriberID)
}

// ListChanged broadcasts a list-changed event of the given kind
// ("tools", "resources", "prompts") to every registered listChanged
// subscriber, regardless of URI.
func (t *Table) ListChanged(kind string) {
	t.listMu.RLock()
	sinks := make([]ListChangedSink, 0, len(t.listSinks))
	for _, s := range t.listSinks {
		sinks = append(sinks, s)
	}
	t.listMu.RUnlock()
	for _, s := range sinks {
		s(kind)
	}
}

// CheckSubscribeCapability enforces §4.9's feature gate: subscribing
// requires the server to have advertised resources.subscribe; otherwise
// the correlator must reject locally without placing anything on the
// wire (scenario F).
func CheckSubscribeCapability(serverCaps *protocol.ServerCapabilities) error {
	if !protocol.SupportsResourceSubscribe(serverCaps) {
		return mcperr.New(mcperr.KindCapabilityNotSupported, "server does not advertise resources.subscribe")
	}
	return nil
}
