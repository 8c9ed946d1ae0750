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

// Package jsonrpc implements the JSON-RPC 2.0 wire codec (C1): the message
// shapes, the request identifier, and validation of the framing rules every
// MCP message must satisfy.
package jsonrpc

import (
	"encoding/json"
	"strings"

	"github.com/mcpkit/mcp-go/internal/mcperr"
)

// Version is the only JSON-RPC version this codec speaks.
const Version = "2.0"

const (
	maxIDStringLen = 100
	minIDNumber    = -1_000_000_000
	maxIDNumber    = 1_000_000_000
)

// ID is a JSON-RPC request identifier: a non-empty string (<=100 chars) or
// a signed integer in [-1e9, 1e9]. The zero value is not a valid ID.
type ID struct {
	str    string
	num    int64
	isStr  bool
	isNum  bool
}

// StringID builds a string-valued request ID.
func StringID(s string) ID { return ID{str: s, isStr: true} }

// NumberID builds a numeric request ID.
func NumberID(n int64) ID { return ID{num: n, isNum: true} }

// IsZero reports whether the ID was never set (i.e. absent, as on a notification).
func (id ID) IsZero() bool { return !id.isStr && !id.isNum }

// String renders the ID for logging; it is not the wire representation.
func (id ID) String() string {
	if id.isStr {
		return id.str
	}
	if id.isNum {
		return strconvItoa(id.num)
	}
	return "<none>"
}

func strconvItoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

// Validate enforces the request-identifier invariants from the data model:
// a string ID must be non-empty and at most 100 characters; a numeric ID
// must fall within [-1e9, 1e9].
func (id ID) Validate() error {
	switch {
	case id.isStr:
		if id.str == "" {
			return mcperr.New(mcperr.KindInvalidRequestID, "request id string cannot be empty")
		}
		if len(id.str) > maxIDStringLen {
			return mcperr.New(mcperr.KindInvalidRequestID, "request id string too long")
		}
	case id.isNum:
		if id.num < minIDNumber || id.num > maxIDNumber {
			return mcperr.New(mcperr.KindInvalidRequestID, "request id number out of range")
		}
	default:
		return mcperr.New(mcperr.KindInvalidRequestID, "request id is absent")
	}
	return nil
}

// MarshalJSON serialises the ID as its native JSON type.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.isStr {
		return json.Marshal(id.str)
	}
	if id.isNum {
		return json.Marshal(id.num)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a JSON string or number (or null, coerced to the
// zero ID, mirroring what stdio peers occasionally send).
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ID{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = StringID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return mcperr.Wrap(mcperr.KindInvalidRequestID, "request id is neither string nor number", err)
	}
	i, err := n.Int64()
	if err != nil {
		return mcperr.Wrap(mcperr.KindInvalidRequestID, "request id number is not an integer", err)
	}
	*id = NumberID(i)
	return nil
}

// ErrorObject is the JSON-RPC error shape.
type ErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Message is the wire-level envelope; exactly one of the Request,
// Response or Notification shapes applies, distinguished by Method/ID
// presence (see Kind).
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *ID             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// Kind classifies a decoded Message.
type Kind int

const (
	KindUnknown Kind = iota
	KindRequest
	KindResponse
	KindNotification
)

// Classify determines which of the three JSON-RPC shapes m represents.
func (m *Message) Classify() Kind {
	switch {
	case m.Method != "" && m.ID != nil:
		return KindRequest
	case m.Method != "" && m.ID == nil:
		return KindNotification
	case m.Method == "" && m.ID != nil:
		return KindResponse
	default:
		return KindUnknown
	}
}

// NewRequest builds a well-formed request message.
func NewRequest(id ID, method string, params json.RawMessage) *Message {
	return &Message{JSONRPC: Version, ID: &id, Method: method, Params: params}
}

// NewNotification builds a well-formed notification message.
func NewNotification(method string, params json.RawMessage) *Message {
	return &Message{JSONRPC: Version, Method: method, Params: params}
}

// NewResultResponse builds a well-formed success response.
func NewResultResponse(id ID, result json.RawMessage) *Message {
	return &Message{JSONRPC: Version, ID: &id, Result: result}
}

// NewErrorResponse builds a well-formed error response.
func NewErrorResponse(id ID, errObj *ErrorObject) *Message {
	return &Message{JSONRPC: Version, ID: &id, Error: errObj}
}

// Validate enforces the framing invariants from the data model: version
// must be "2.0"; a method, when present, must be non-empty and must not
// begin with the reserved "rpc." prefix; a response must carry exactly one
// of result/error.
func (m *Message) Validate() error {
	if m.JSONRPC != Version {
		return mcperr.Newf(mcperr.KindInvalidParams, "unsupported jsonrpc version %q", m.JSONRPC)
	}
	switch m.Classify() {
	case KindRequest, KindNotification:
		if m.Method == "" {
			return mcperr.New(mcperr.KindInvalidParams, "method must not be empty")
		}
		if strings.HasPrefix(m.Method, "rpc.") {
			return mcperr.Newf(mcperr.KindInvalidParams, "method %q uses reserved rpc. prefix", m.Method)
		}
		if m.ID != nil {
			if err := m.ID.Validate(); err != nil {
				return err
			}
		}
	case KindResponse:
		hasResult := len(m.Result) > 0
		hasError := m.Error != nil
		if hasResult == hasError {
			return mcperr.New(mcperr.KindInvalidParams, "response must carry exactly one of result or error")
		}
		if err := m.ID.Validate(); err != nil {
			return err
		}
	default:
		return mcperr.New(mcperr.KindInvalidParams, "message matches no known jsonrpc shape")
	}
	return nil
}
