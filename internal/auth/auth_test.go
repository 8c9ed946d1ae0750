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

package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/mcpkit/mcp-go/internal/mcperr"
)

func newReq(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/mcp", nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	return req
}

func TestNoneAppliesNothing(t *testing.T) {
	req := newReq(t)
	if err := (None{}).Apply(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Header.Get("authorization") != "" {
		t.Fatalf("expected no authorization header, got %q", req.Header.Get("authorization"))
	}
}

func TestBearerTokenAttachesHeaderWithoutRefreshWhenNotExpired(t *testing.T) {
	b := &BearerToken{Token: "abc123", ExpiresAt: time.Now().Add(time.Hour)}
	req := newReq(t)
	if err := b.Apply(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("authorization"); got != "Bearer abc123" {
		t.Fatalf("got %q, want 'Bearer abc123'", got)
	}
}

func TestBearerTokenRefreshesWhenExpired(t *testing.T) {
	called := false
	b := &BearerToken{
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
		Refresh: func(context.Context) (string, time.Time, error) {
			called = true
			return "fresh", time.Now().Add(time.Hour), nil
		},
	}
	req := newReq(t)
	if err := b.Apply(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected refresh to be invoked")
	}
	if got := req.Header.Get("authorization"); got != "Bearer fresh" {
		t.Fatalf("got %q, want 'Bearer fresh'", got)
	}
}

func TestBasicAuthAttachesExpectedHeader(t *testing.T) {
	b := BasicAuth{User: "alice", Pass: "hunter2"}
	req := newReq(t)
	if err := b.Apply(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := basicAuthHeader("alice", "hunter2")
	if got := req.Header.Get("authorization"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestApiKeyDefaultsHeaderName(t *testing.T) {
	a := ApiKey{Value: "secret"}
	req := newReq(t)
	if err := a.Apply(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("x-api-key"); got != "secret" {
		t.Fatalf("got %q, want 'secret'", got)
	}
}

func TestApiKeyHonorsCustomHeaderName(t *testing.T) {
	a := ApiKey{HeaderName: "x-custom-key", Value: "secret"}
	req := newReq(t)
	if err := a.Apply(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("x-custom-key"); got != "secret" {
		t.Fatalf("got %q, want 'secret'", got)
	}
}

func TestCustomAttachesAllHeaders(t *testing.T) {
	c := Custom{Headers: map[string]string{"x-a": "1", "x-b": "2"}}
	req := newReq(t)
	if err := c.Apply(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Header.Get("x-a") != "1" || req.Header.Get("x-b") != "2" {
		t.Fatalf("unexpected headers: %v", req.Header)
	}
}

func TestStaticTokenValidatorAcceptsKnownToken(t *testing.T) {
	v := StaticTokenValidator{
		Name: "test-idp",
		Tokens: map[string]Identity{
			"tok-1": {UserID: "user-1", Scopes: []string{"tools:read"}},
		},
	}
	h := http.Header{}
	h.Set("authorization", "Bearer tok-1")

	id, err := v.Validate(context.Background(), h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !id.Authenticated || id.UserID != "user-1" || id.AuthMethod != "static-token" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestStaticTokenValidatorRejectsMissingHeader(t *testing.T) {
	v := StaticTokenValidator{Tokens: map[string]Identity{}}
	_, err := v.Validate(context.Background(), http.Header{})
	requireKind(t, err, mcperr.KindInvalidCredentials)
}

func TestStaticTokenValidatorRejectsUnknownToken(t *testing.T) {
	v := StaticTokenValidator{Tokens: map[string]Identity{"tok-1": {}}}
	h := http.Header{}
	h.Set("authorization", "Bearer nope")
	_, err := v.Validate(context.Background(), h)
	requireKind(t, err, mcperr.KindInvalidToken)
}

func TestIdentityRequireScopesReportsMissing(t *testing.T) {
	id := Identity{Scopes: []string{"tools:read"}}
	err := id.RequireScopes("tools:read", "tools:write")
	requireKind(t, err, mcperr.KindMissingScope)

	merr := err.(*mcperr.Error)
	missing, ok := merr.Data.(map[string]any)["missing"].([]string)
	if !ok || len(missing) != 1 || missing[0] != "tools:write" {
		t.Fatalf("unexpected missing-scope data: %+v", merr.Data)
	}
}

func TestIdentityRequireScopesSatisfiedReturnsNil(t *testing.T) {
	id := Identity{Scopes: []string{"tools:read", "tools:write"}}
	if err := id.RequireScopes("tools:read"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func requireKind(t *testing.T, err error, want mcperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %s, got nil", want)
	}
	merr, ok := err.(*mcperr.Error)
	if !ok {
		t.Fatalf("expected *mcperr.Error, got %T", err)
	}
	if merr.Kind != want {
		t.Fatalf("got kind %s, want %s", merr.Kind, want)
	}
}
