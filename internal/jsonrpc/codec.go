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

package jsonrpc

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"

	"github.com/mcpkit/mcp-go/internal/mcperr"
	"github.com/mcpkit/mcp-go/internal/util"
)

var jsoniterAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Codec encodes and decodes JSON-RPC messages. It holds no state and is
// safe for concurrent use by many readers and writers.
type Codec struct{}

// NewCodec returns a stateless Codec.
func NewCodec() *Codec { return &Codec{} }

// Encode serialises a message to its wire bytes. Absent optional fields
// are omitted.
func (Codec) Encode(m *Message) ([]byte, error) {
	b, err := jsoniterAPI.Marshal(m)
	if err != nil {
		return nil, mcperr.Wrap(mcperr.KindSerializationError, "encode jsonrpc message", err)
	}
	return b, nil
}

// Decode parses wire bytes into a Message without validating framing
// rules beyond what JSON structure itself implies; call Validate
// separately to enforce §3's invariants.
func (Codec) Decode(b []byte) (*Message, error) {
	var m Message
	if err := util.DecodeJSON(bytes.NewReader(b), &m); err != nil {
		return nil, mcperr.Wrap(mcperr.KindSerializationError, "decode jsonrpc message", err)
	}
	return &m, nil
}

// DecodeValidate decodes and validates in one step, the common case for
// any transport ingesting untrusted bytes.
func (c Codec) DecodeValidate(b []byte) (*Message, error) {
	m, err := c.Decode(b)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
