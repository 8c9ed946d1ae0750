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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
	"github.com/mcpkit/mcp-go/internal/log"
	"github.com/mcpkit/mcp-go/internal/mcperr"
	"github.com/mcpkit/mcp-go/internal/protocol"
)

const (
	headerProtocolVersion = "mcp-protocol-version"
	headerSessionID       = "mcp-session-id"
	headerLastEventID     = "last-event-id"
)

// Dispatch hands a decoded inbound message to the application and returns
// the correlated response, if the message was a request. Notifications and
// responses from the client return (nil, nil): the caller renders 202.
type Dispatch func(ctx context.Context, sessionID string, msg *jsonrpc.Message) (*jsonrpc.Message, error)

// Handler is the chi-mountable /mcp endpoint: POST request/response, GET
// SSE upgrade, DELETE session termination, per §4.6.
type Handler struct {
	Store          *Store
	Codec          *jsonrpc.Codec
	Logger         log.Logger
	Dispatch       Dispatch
	AllowedOrigins map[string]struct{}
	RequestTimeout time.Duration
}

// NewHandler builds a Handler with a default store TTL and request
// timeout, matching the ~5s default budget from §5's Timeouts note.
func NewHandler(dispatch Dispatch, logger log.Logger, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Handler{
		Store:          NewStore(30 * time.Minute),
		Codec:          jsonrpc.NewCodec(),
		Logger:         logger,
		Dispatch:       dispatch,
		AllowedOrigins: allowed,
		RequestTimeout: 5 * time.Second,
	}
}

// Router builds the chi.Router mounted at /mcp, wiring chi's StripSlashes
// middleware and render's JSON content type. No request-logging
// middleware is installed.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.handlePost)
	r.Get("/", h.handleGet)
	r.Delete("/", h.handleDelete)
	return r
}

// checkOrigin enforces the configurable allow-list; an empty allow-list
// denies every cross-origin request by default, per §4.6's "Allowed
// origins configurable; default deny."
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, ok := h.AllowedOrigins[origin]
	return ok
}

func renderErr(w http.ResponseWriter, r *http.Request, httpStatus, rpcCode int, err error) {
	_ = render.Render(w, r, newErrResponse(err, httpStatus, rpcCode))
}

// errCode reports err's mcperr code if it carries one, else fallback. Used
// for errors that already flowed up from a lower, mcperr-aware layer (the
// codec, the dispatcher) so the HTTP envelope doesn't have to re-derive
// the right wire code by hand.
func errCode(err error, fallback int) int {
	if merr, ok := err.(*mcperr.Error); ok {
		return merr.Code()
	}
	return fallback
}

// resolveSession implements §4.6's "session resolution (create on
// initialize, else look up mcp-session-id)" step. isInitialize tells it
// whether the inbound body is an initialize request.
func (h *Handler) resolveSession(r *http.Request, isInitialize bool) (*Session, error) {
	headerID := r.Header.Get(headerSessionID)
	if isInitialize {
		return h.Store.Create(), nil
	}
	if headerID == "" {
		return nil, fmt.Errorf("missing %s header", headerSessionID)
	}
	if !ValidSessionID(headerID) {
		return nil, fmt.Errorf("malformed %s header", headerSessionID)
	}
	s, ok := h.Store.Get(headerID)
	if !ok {
		return nil, fmt.Errorf("unknown session %q", headerID)
	}
	return s, nil
}

// handlePost implements the POST path: validation order is origin ->
// protocol-version -> session -> body, per §4.6's adopted ordering.
func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		renderErr(w, r, http.StatusForbidden, mcperr.CodeAccessDenied, fmt.Errorf("origin not allowed"))
		return
	}

	reqVersion := r.Header.Get(headerProtocolVersion)
	if reqVersion == "" {
		renderErr(w, r, http.StatusBadRequest, mcperr.CodeInvalidRequest, fmt.Errorf("missing %s header", headerProtocolVersion))
		return
	}
	// §4.6: a present mcp-protocol-version header must name a version this
	// server understands, or the request is rejected outright rather than
	// silently negotiated down, unlike the initialize handshake's own
	// negotiate() which always succeeds.
	if !protocol.IsSupported(reqVersion) {
		renderErr(w, r, http.StatusBadRequest, mcperr.CodeProtocolVersionNotSupported,
			fmt.Errorf("unsupported %s %q", headerProtocolVersion, reqVersion))
		return
	}
	negotiated := protocol.Negotiate(reqVersion)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		renderErr(w, r, http.StatusBadRequest, mcperr.CodeParseError, fmt.Errorf("reading request body: %w", err))
		return
	}
	var peek struct {
		Method string `json:"method"`
	}
	_ = json.Unmarshal(body, &peek)
	isInitialize := peek.Method == "initialize"

	session, err := h.resolveSession(r, isInitialize)
	if err != nil {
		renderErr(w, r, http.StatusBadRequest, mcperr.CodeInvalidRequest, err)
		return
	}

	msg, err := h.Codec.DecodeValidate(body)
	if err != nil {
		renderErr(w, r, http.StatusBadRequest, errCode(err, mcperr.CodeParseError), err)
		return
	}

	w.Header().Set(headerSessionID, session.ID)
	w.Header().Set(headerProtocolVersion, negotiated)

	ctx, cancel := context.WithTimeout(r.Context(), h.RequestTimeout)
	defer cancel()

	resp, err := h.Dispatch(ctx, session.ID, msg)
	if err != nil {
		renderErr(w, r, http.StatusInternalServerError, errCode(err, mcperr.CodeInternalError), err)
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	encoded, err := h.Codec.Encode(resp)
	if err != nil {
		renderErr(w, r, http.StatusInternalServerError, errCode(err, mcperr.CodeInternalError), err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(encoded)
}

// handleGet upgrades to an SSE stream, replaying any queued messages newer
// than last-event-id and then keeping the stream open with keep-alives
// (see streamSSE).
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		renderErr(w, r, http.StatusForbidden, mcperr.CodeAccessDenied, fmt.Errorf("origin not allowed"))
		return
	}
	reqVersion := r.Header.Get(headerProtocolVersion)
	if reqVersion == "" {
		renderErr(w, r, http.StatusBadRequest, mcperr.CodeInvalidRequest, fmt.Errorf("missing %s header", headerProtocolVersion))
		return
	}
	if !protocol.IsSupported(reqVersion) {
		renderErr(w, r, http.StatusBadRequest, mcperr.CodeProtocolVersionNotSupported,
			fmt.Errorf("unsupported %s %q", headerProtocolVersion, reqVersion))
		return
	}
	sessionID := r.Header.Get(headerSessionID)
	session, ok := h.Store.Get(sessionID)
	if !ok {
		renderErr(w, r, http.StatusBadRequest, mcperr.CodeInvalidRequest, fmt.Errorf("unknown session %q", sessionID))
		return
	}

	streamSSE(r.Context(), w, session, r.Header.Get(headerLastEventID), h.Logger)
}

// handleDelete terminates a session by removing it, and with it its queue,
// from the store. Subscription-table entries are not touched.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(headerSessionID)
	if sessionID == "" {
		renderErr(w, r, http.StatusBadRequest, mcperr.CodeInvalidRequest, fmt.Errorf("missing %s header", headerSessionID))
		return
	}
	h.Store.Delete(sessionID)
	w.WriteHeader(http.StatusNoContent)
}
