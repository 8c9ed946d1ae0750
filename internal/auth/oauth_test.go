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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func newTestAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing token request form: %v", err)
		}
		if r.PostForm.Get("code_verifier") == "" {
			http.Error(w, "missing code_verifier", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-tok",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	return httptest.NewServer(mux)
}

func newTestPKCE(t *testing.T, server *httptest.Server) *OAuth2PKCE {
	t.Helper()
	cfg := &oauth2.Config{
		ClientID:    "client-1",
		RedirectURL: "http://localhost/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  server.URL + "/authorize",
			TokenURL: server.URL + "/token",
		},
		Scopes: []string{"tools:read"},
	}
	return NewOAuth2PKCE(cfg)
}

func TestAuthorizationURLIncludesS256Challenge(t *testing.T) {
	server := newTestAuthServer(t)
	defer server.Close()
	p := newTestPKCE(t, server)

	rawURL, err := p.AuthorizationURL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parsing authorization url: %v", err)
	}
	q := parsed.Query()
	if q.Get("code_challenge_method") != "S256" {
		t.Fatalf("got challenge method %q, want S256", q.Get("code_challenge_method"))
	}
	if q.Get("code_challenge") == "" {
		t.Fatal("expected non-empty code_challenge")
	}
	if q.Get("state") == "" {
		t.Fatal("expected non-empty state")
	}
}

func TestExchangeCodeRejectsMismatchedState(t *testing.T) {
	server := newTestAuthServer(t)
	defer server.Close()
	p := newTestPKCE(t, server)

	if _, err := p.AuthorizationURL(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := p.ExchangeCode(context.Background(), "wrong-state", "code-1")
	if err == nil {
		t.Fatal("expected state mismatch error")
	}
}

func TestExchangeCodeSendsVerifierAndApplyAttachesToken(t *testing.T) {
	server := newTestAuthServer(t)
	defer server.Close()
	p := newTestPKCE(t, server)

	rawURL, err := p.AuthorizationURL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parsing authorization url: %v", err)
	}
	state := parsed.Query().Get("state")

	if err := p.ExchangeCode(context.Background(), state, "auth-code-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/mcp", nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if err := p.Apply(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("authorization"); !strings.HasPrefix(got, "Bearer ") {
		t.Fatalf("got %q, want a bearer header", got)
	}
}

func TestApplyFailsBeforeExchangeCompletes(t *testing.T) {
	server := newTestAuthServer(t)
	defer server.Close()
	p := newTestPKCE(t, server)

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/mcp", nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if err := p.Apply(context.Background(), req); err == nil {
		t.Fatal("expected error when no token has been obtained yet")
	}
}
