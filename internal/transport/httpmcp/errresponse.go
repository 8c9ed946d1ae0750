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
	"net/http"

	"github.com/go-chi/render"

	"github.com/mcpkit/mcp-go/internal/jsonrpc"
)

var _ render.Renderer = &errResponse{}

// newErrResponse wraps err as a JSON-RPC error envelope, the shape §6
// requires every rejected request to carry on the wire, keyed by an
// mcperr code rather than the teacher's generic {status, error} pair.
func newErrResponse(err error, httpStatus, rpcCode int) *errResponse {
	return &errResponse{
		HTTPStatusCode: httpStatus,
		Message: &jsonrpc.Message{
			JSONRPC: jsonrpc.Version,
			Error:   &jsonrpc.ErrorObject{Code: rpcCode, Message: err.Error()},
		},
	}
}

// errResponse renders a *jsonrpc.Message carrying an error object; the
// embedded Message's fields are promoted to the top level of the response
// body so the wire shape is exactly {"jsonrpc":"2.0","error":{...}}.
type errResponse struct {
	*jsonrpc.Message

	HTTPStatusCode int `json:"-"`
}

func (e *errResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}
