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

	"github.com/mcpkit/mcp-go/internal/mcperr"
)

// Identity is what an inbound credential resolves to: the authenticated
// context record from §4.10.
type Identity struct {
	UserID        string
	Scopes        []string
	AuthMethod    string
	Authenticated bool
	Claims        map[string]any
}

// HasScope reports whether id carries scope s.
func (id Identity) HasScope(s string) bool {
	for _, have := range id.Scopes {
		if have == s {
			return true
		}
	}
	return false
}

// RequireScopes validates id against a required scope set, returning
// MissingScope{missing} for whatever is absent.
func (id Identity) RequireScopes(required ...string) error {
	var missing []string
	for _, r := range required {
		if !id.HasScope(r) {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return mcperr.New(mcperr.KindMissingScope, "missing required scopes").WithData(map[string]any{"missing": missing})
	}
	return nil
}

// Validator extracts a credential from an inbound request's headers and
// resolves it to an Identity. Implementations back BearerToken, ApiKey,
// Basic and OAuth2 inbound validation with whatever provider-specific
// verification (JWT signature check, introspection endpoint, user store
// lookup) they need; token/JWT validation mechanics themselves are
// delegated to the auth provider per §1's Non-goals.
type Validator interface {
	Kind() string
	Validate(ctx context.Context, h http.Header) (Identity, error)
}

// StaticTokenValidator validates a bearer token against a fixed table of
// tokens to identities, useful for tests and simple deployments; it is
// the generic stand-in for the teacher's Google-ID-token-specific
// AuthService, generalized per §4.10 to any provider.
type StaticTokenValidator struct {
	Name   string
	Tokens map[string]Identity
}

// Kind identifies this validator's auth method name.
func (s StaticTokenValidator) Kind() string { return "static-token" }

// Validate extracts the bearer token from the Authorization header and
// looks it up in Tokens.
func (s StaticTokenValidator) Validate(_ context.Context, h http.Header) (Identity, error) {
	authz := h.Get("authorization")
	const prefix = "Bearer "
	if len(authz) <= len(prefix) || authz[:len(prefix)] != prefix {
		return Identity{}, mcperr.New(mcperr.KindInvalidCredentials, "missing or malformed authorization header")
	}
	token := authz[len(prefix):]
	id, ok := s.Tokens[token]
	if !ok {
		return Identity{}, mcperr.New(mcperr.KindInvalidToken, "unrecognized bearer token")
	}
	id.AuthMethod = s.Kind()
	id.Authenticated = true
	return id, nil
}

var _ Validator = StaticTokenValidator{}
