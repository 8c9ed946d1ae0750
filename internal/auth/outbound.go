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

// Package auth implements the auth adapter (C10): outbound credential
// attachment and inbound credential validation. The shallow interface
// shape (a single "AuthMethod" capability, variants as a closed set of
// implementing structs) follows §9's "deep trait hierarchies kept
// shallow" note, generalizing the teacher's single Google-specific
// AuthService into a provider-agnostic adapter.
package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/mcpkit/mcp-go/internal/mcperr"
)

// OutboundMethod attaches a credential to an outgoing HTTP request, the
// single capability every outbound auth variant implements.
type OutboundMethod interface {
	Apply(ctx context.Context, req *http.Request) error
}

// None attaches nothing.
type None struct{}

// Apply is a no-op.
func (None) Apply(context.Context, *http.Request) error { return nil }

// TokenRefreshFunc fetches a fresh bearer token, e.g. from a token cache
// or an OAuth2 refresh call.
type TokenRefreshFunc func(ctx context.Context) (token string, expiresAt time.Time, err error)

// BearerToken attaches `authorization: Bearer <token>`, refreshing via
// Refresh when the cached token has expired.
type BearerToken struct {
	Token     string
	ExpiresAt time.Time
	Refresh   TokenRefreshFunc
}

// Apply attaches the bearer token, refreshing first if it is expired and
// a refresh function is configured.
func (b *BearerToken) Apply(ctx context.Context, req *http.Request) error {
	if b.Refresh != nil && !b.ExpiresAt.IsZero() && time.Now().After(b.ExpiresAt) {
		token, exp, err := b.Refresh(ctx)
		if err != nil {
			return mcperr.Wrap(mcperr.KindTokenExchangeError, "bearer token refresh failed", err)
		}
		b.Token, b.ExpiresAt = token, exp
	}
	req.Header.Set("authorization", "Bearer "+b.Token)
	return nil
}

// BasicAuth attaches `authorization: Basic <base64(user:pass)>`.
type BasicAuth struct {
	User string
	Pass string
}

// Apply attaches the basic-auth header.
func (b BasicAuth) Apply(_ context.Context, req *http.Request) error {
	req.SetBasicAuth(b.User, b.Pass)
	return nil
}

// ApiKey attaches an API key under a configurable header name, defaulting
// to "x-api-key".
type ApiKey struct {
	HeaderName string
	Value      string
}

// Apply attaches the API key header.
func (a ApiKey) Apply(_ context.Context, req *http.Request) error {
	name := a.HeaderName
	if name == "" {
		name = "x-api-key"
	}
	req.Header.Set(name, a.Value)
	return nil
}

// Custom attaches an arbitrary set of headers.
type Custom struct {
	Headers map[string]string
}

// Apply attaches every configured header.
func (c Custom) Apply(_ context.Context, req *http.Request) error {
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

var _ OutboundMethod = None{}
var _ OutboundMethod = (*BearerToken)(nil)
var _ OutboundMethod = BasicAuth{}
var _ OutboundMethod = ApiKey{}
var _ OutboundMethod = Custom{}

// basicAuthHeader is a small helper mirrored from net/http's internal
// encoding, kept local so tests can assert the exact header shape without
// round-tripping through a live http.Request.
func basicAuthHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}
