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
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/mcpkit/mcp-go/internal/mcperr"
)

// OAuth2PKCE drives the canonical OAuth 2.1 authorization-code-with-PKCE
// (S256) flow described in §4.10: it does not drive a browser, only
// surfaces the authorization URL and consumes the returned code.
type OAuth2PKCE struct {
	Config *oauth2.Config

	mu       sync.Mutex
	verifier string
	state    string
	token    *oauth2.Token
}

// NewOAuth2PKCE builds an adapter around an oauth2.Config (client id,
// endpoints, scopes, redirect URL already populated by the caller).
func NewOAuth2PKCE(cfg *oauth2.Config) *OAuth2PKCE {
	return &OAuth2PKCE{Config: cfg}
}

// generateVerifier returns a cryptographically random, URL-safe PKCE code
// verifier (43-128 chars per RFC 7636; 32 random bytes base64url-encodes
// to 43).
func generateVerifier() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// challengeS256 derives the S256 code challenge from a verifier.
func challengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// AuthorizationURL generates a fresh PKCE verifier/challenge pair and a
// random state, and returns the URL the resource owner must visit.
func (o *OAuth2PKCE) AuthorizationURL() (string, error) {
	verifier, err := generateVerifier()
	if err != nil {
		return "", mcperr.Wrap(mcperr.KindAuthorizationServer, "generate pkce verifier", err)
	}
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", mcperr.Wrap(mcperr.KindAuthorizationServer, "generate oauth state", err)
	}
	state := base64.RawURLEncoding.EncodeToString(stateBytes)

	o.mu.Lock()
	o.verifier = verifier
	o.state = state
	o.mu.Unlock()

	challenge := challengeS256(verifier)
	url := o.Config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	return url, nil
}

// ExchangeCode completes the flow: it validates state and exchanges code
// for a token at the authorization server's token endpoint, presenting
// the original verifier per PKCE.
func (o *OAuth2PKCE) ExchangeCode(ctx context.Context, state, code string) error {
	o.mu.Lock()
	expectedState := o.state
	verifier := o.verifier
	o.mu.Unlock()

	if state != expectedState {
		return mcperr.New(mcperr.KindTokenExchangeError, "oauth state mismatch")
	}
	tok, err := o.Config.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", verifier))
	if err != nil {
		return mcperr.Wrap(mcperr.KindTokenExchangeError, "oauth code exchange failed", err)
	}
	o.mu.Lock()
	o.token = tok
	o.mu.Unlock()
	return nil
}

// Apply attaches the current access token, refreshing via the
// oauth2.TokenSource machinery when it has expired.
func (o *OAuth2PKCE) Apply(ctx context.Context, req *http.Request) error {
	o.mu.Lock()
	tok := o.token
	o.mu.Unlock()
	if tok == nil {
		return mcperr.New(mcperr.KindInvalidToken, "oauth2 flow has not completed")
	}
	src := o.Config.TokenSource(ctx, tok)
	fresh, err := src.Token()
	if err != nil {
		return mcperr.Wrap(mcperr.KindTokenExchangeError, "oauth2 token refresh failed", err)
	}
	o.mu.Lock()
	o.token = fresh
	o.mu.Unlock()
	fresh.SetAuthHeader(req)
	return nil
}

var _ OutboundMethod = (*OAuth2PKCE)(nil)
