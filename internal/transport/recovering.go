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

package transport

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
	"github.com/mcpkit/mcp-go/internal/log"
	"github.com/mcpkit/mcp-go/internal/mcperr"
)

// RetryPolicy configures the backoff schedule C11 uses between reconnect
// attempts: exponential backoff with jitter, applied to transport
// connection errors.
type RetryPolicy struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterFraction    float64
}

// DefaultRetryPolicy returns sensible defaults: 5 attempts, 100ms initial
// delay, 2x multiplier, capped at 10s, +/-20% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        5,
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
		JitterFraction:    0.2,
	}
}

// delay returns the sleep duration before retry attempt (0-indexed).
func (p RetryPolicy) delay(attempt int) time.Duration {
	if attempt <= 0 {
		return p.InitialDelay
	}
	d := float64(p.InitialDelay) * math.Pow(p.BackoffMultiplier, float64(attempt))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.JitterFraction > 0 {
		jitterRange := d * p.JitterFraction
		d += (rand.Float64()*2 - 1) * jitterRange
		if d < 0 {
			d = 0
		}
	}
	return time.Duration(d)
}

// isConnectionError reports whether err represents a transport connection
// failure eligible for reconnect-and-retry, as opposed to a
// serialization/protocol error that must surface immediately.
func isConnectionError(err error) bool {
	var e *mcperr.Error
	if me, ok := err.(*mcperr.Error); ok {
		e = me
	} else {
		return false
	}
	switch e.Kind {
	case mcperr.KindConnectionError, mcperr.KindConnectionClosed, mcperr.KindNetworkError, mcperr.KindConnectionTimeout:
		return true
	default:
		return false
	}
}

// LifecycleEvent is emitted by Recovering as it moves through its own
// reconnect state machine.
type LifecycleEvent struct {
	State State
	Err   error
}

// Recovering wraps any Transport with the generic retry/backoff/jitter
// policy from §4.11. Non-connection errors (serialization, protocol) pass
// through untouched and are never retried.
type Recovering struct {
	inner  Transport
	policy RetryPolicy
	logger log.Logger

	mu      sync.Mutex
	retries int

	events chan LifecycleEvent
}

// NewRecovering wraps inner with the given retry policy.
func NewRecovering(inner Transport, policy RetryPolicy, logger log.Logger) *Recovering {
	return &Recovering{inner: inner, policy: policy, logger: logger, events: make(chan LifecycleEvent, 16)}
}

// Events returns the channel on which lifecycle transitions (Reconnecting,
// Failed) are published.
func (r *Recovering) Events() <-chan LifecycleEvent { return r.events }

func (r *Recovering) publish(ev LifecycleEvent) {
	select {
	case r.events <- ev:
	default:
	}
}

// Send retries a failed send exactly once after a successful reconnect,
// per the replay-once-on-reconnect rule: notifications/responses are
// idempotent to resend; callers issuing requests must instead cancel and
// reissue once the request has reached the wire (§9 retry policy note).
func (r *Recovering) Send(ctx context.Context, msg *jsonrpc.Message) error {
	err := r.inner.Send(ctx, msg)
	if err == nil || !isConnectionError(err) {
		return err
	}
	if recErr := r.recover(ctx); recErr != nil {
		return recErr
	}
	return r.inner.Send(ctx, msg)
}

// Recv retries a failed recv exactly once after a successful reconnect.
func (r *Recovering) Recv(ctx context.Context) (*jsonrpc.Message, error) {
	msg, err := r.inner.Recv(ctx)
	if err == nil || !isConnectionError(err) {
		return msg, err
	}
	if recErr := r.recover(ctx); recErr != nil {
		return nil, recErr
	}
	return r.inner.Recv(ctx)
}

func (r *Recovering) recover(ctx context.Context) error {
	r.mu.Lock()
	attempt := r.retries
	r.mu.Unlock()

	r.publish(LifecycleEvent{State: StateReconnecting})
	if r.logger != nil {
		r.logger.Warn("transport connection error, attempting recovery", "attempt", attempt)
	}

	for attempt < r.policy.MaxRetries {
		d := r.policy.delay(attempt)
		select {
		case <-ctx.Done():
			return mcperr.Wrap(mcperr.KindConnectionError, "recovery aborted", ctx.Err())
		case <-time.After(d):
		}
		if err := r.inner.Reconnect(ctx); err == nil {
			r.mu.Lock()
			r.retries = 0
			r.mu.Unlock()
			r.publish(LifecycleEvent{State: StateConnected})
			return nil
		}
		attempt++
		r.mu.Lock()
		r.retries = attempt
		r.mu.Unlock()
	}

	failErr := mcperr.Newf(mcperr.KindRecoveryFailed, "recovery failed after %d attempts", attempt).WithData(map[string]any{"attempts": attempt})
	r.publish(LifecycleEvent{State: StateFailed, Err: failErr})
	return failErr
}

// Close delegates to the inner transport.
func (r *Recovering) Close(ctx context.Context) error { return r.inner.Close(ctx) }

// ForceClose delegates to the inner transport.
func (r *Recovering) ForceClose() error { return r.inner.ForceClose() }

// Reconnect delegates to the inner transport directly, bypassing the
// retry loop (used by callers driving reconnection explicitly).
func (r *Recovering) Reconnect(ctx context.Context) error { return r.inner.Reconnect(ctx) }

// Reset delegates to the inner transport and clears the retry counter.
func (r *Recovering) Reset() error {
	r.mu.Lock()
	r.retries = 0
	r.mu.Unlock()
	return r.inner.Reset()
}

// State delegates to the inner transport.
func (r *Recovering) State() State { return r.inner.State() }

// HealthSnapshot delegates to the inner transport.
func (r *Recovering) HealthSnapshot() Health { return r.inner.HealthSnapshot() }

var _ Transport = (*Recovering)(nil)
