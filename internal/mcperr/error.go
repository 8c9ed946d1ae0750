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

// Package mcperr defines the structured error taxonomy shared across the
// transport, protocol, auth and application layers. No layer in the core
// panics; every failure is returned as an *Error carrying a Kind.
package mcperr

import "fmt"

// Kind identifies the broad category an Error belongs to.
type Kind string

const (
	// Transport kinds.
	KindConnectionError    Kind = "ConnectionError"
	KindConnectionClosed   Kind = "ConnectionClosed"
	KindConnectionTimeout  Kind = "ConnectionTimeout"
	KindNetworkError       Kind = "NetworkError"
	KindInitializationErr  Kind = "InitializationError"
	KindShutdownTimeout    Kind = "ShutdownTimeout"
	KindNotReady           Kind = "NotReady"
	KindRecoveryFailed     Kind = "RecoveryFailed"

	// Protocol kinds.
	KindInvalidVersion             Kind = "InvalidVersion"
	KindInvalidRequestID           Kind = "InvalidRequestId"
	KindInvalidParams              Kind = "InvalidParams"
	KindMethodNotFound              Kind = "MethodNotFound"
	KindCapabilityNotSupported     Kind = "CapabilityNotSupported"
	KindProtocolVersionNotSupported Kind = "ProtocolVersionNotSupported"

	// Auth kinds.
	KindInvalidCredentials   Kind = "InvalidCredentials"
	KindInvalidToken         Kind = "InvalidToken"
	KindMissingScope         Kind = "MissingScope"
	KindAuthorizationServer  Kind = "AuthorizationServerError"
	KindTokenExchangeError   Kind = "TokenExchangeError"
	KindTokenValidationError Kind = "TokenValidationError"

	// Application kinds.
	KindToolExecutionError Kind = "ToolExecutionError"
	KindResourceNotFound   Kind = "ResourceNotFound"
	KindAccessDenied       Kind = "AccessDenied"
	KindInvalidURI         Kind = "InvalidUri"
	KindRequestTimeout     Kind = "RequestTimeout"
	KindSerializationError Kind = "SerializationError"
	KindInternalError      Kind = "InternalError"

	// Cancelled is a dedicated correlator-layer outcome, not a transport error.
	KindCancelled Kind = "Cancelled"
)

// Error is the structured value every core operation returns on failure.
type Error struct {
	Kind    Kind
	Message string
	// Data carries kind-specific payload, e.g. {attempts:int} for RecoveryFailed
	// or {missing:[]string} for MissingScope.
	Data  any
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an existing cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithData attaches a structured payload and returns the same error.
func (e *Error) WithData(data any) *Error {
	e.Data = data
	return e
}

// Code maps an Error's Kind to the JSON-RPC error code used on the wire,
// per the MCP error taxonomy. Kinds without a direct protocol code map to
// the generic internal-error code.
func (e *Error) Code() int {
	switch e.Kind {
	case KindInvalidParams:
		return CodeInvalidParams
	case KindMethodNotFound:
		return CodeMethodNotFound
	case KindInitializationErr, KindNotReady:
		return CodeInitializationFailed
	case KindCapabilityNotSupported:
		return CodeCapabilityNotSupported
	case KindResourceNotFound:
		return CodeResourceNotFound
	case KindToolExecutionError:
		return CodeToolExecutionError
	case KindInvalidURI:
		return CodeInvalidURI
	case KindAccessDenied:
		return CodeAccessDenied
	case KindRequestTimeout, KindConnectionTimeout:
		return CodeRequestTimeout
	case KindProtocolVersionNotSupported, KindInvalidVersion:
		return CodeProtocolVersionNotSupported
	case KindInvalidRequestID:
		return CodeInvalidRequest
	default:
		return CodeInternalError
	}
}

// Reserved JSON-RPC 2.0 and MCP-specific error codes, per the wire spec.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeInitializationFailed        = -32000
	CodeCapabilityNotSupported      = -32001
	CodeResourceNotFound            = -32002
	CodeToolExecutionError          = -32003
	CodeInvalidURI                  = -32004
	CodeAccessDenied                = -32005
	CodeRequestTimeout               = -32006
	CodeProtocolVersionNotSupported = -32007
)
