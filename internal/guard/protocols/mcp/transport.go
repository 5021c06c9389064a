// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
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

// Package mcp implements Model Context Protocol transport detection and
// per-transport request inspection: HTTP, SSE, WebSocket, and STDIO
// bypass detection (STDIO itself carries no network traffic to inspect,
// so detection here is a heuristic audit signal, not an enforcement
// boundary).
package mcp

import "strings"

// Transport identifies which wire transport an MCP request arrived on.
type Transport int

const (
	TransportHTTP Transport = iota
	TransportSSE
	TransportWebSocket
	TransportStreamableHTTP
	TransportStdio
)

func (t Transport) String() string {
	switch t {
	case TransportHTTP:
		return "http"
	case TransportSSE:
		return "sse"
	case TransportWebSocket:
		return "websocket"
	case TransportStreamableHTTP:
		return "streamable_http"
	case TransportStdio:
		return "stdio"
	default:
		return "unknown"
	}
}

// IsAllowed reports whether this transport may carry mesh traffic. STDIO
// is always disallowed: it has no network visibility for the filter to
// inspect.
func (t Transport) IsAllowed() bool { return t != TransportStdio }

// DetectTransport inspects request headers to determine the MCP
// transport in use, defaulting to HTTP when nothing more specific is
// signaled. An explicit x-mcp-transport header always overrides whatever
// Upgrade/Accept otherwise imply, and is checked first so the result
// never depends on Go's randomized map iteration order when a request
// carries both.
func DetectTransport(headers map[string]string) Transport {
	for name, value := range headers {
		if strings.ToLower(name) != "x-mcp-transport" {
			continue
		}
		switch strings.ToLower(value) {
		case "http":
			return TransportHTTP
		case "sse":
			return TransportSSE
		case "websocket":
			return TransportWebSocket
		case "stdio":
			return TransportStdio
		}
	}

	for name, value := range headers {
		nameLower := strings.ToLower(name)
		valueLower := strings.ToLower(value)

		if nameLower == "upgrade" && valueLower == "websocket" {
			return TransportWebSocket
		}
		if nameLower == "accept" && strings.Contains(valueLower, "text/event-stream") {
			return TransportSSE
		}
	}
	return TransportHTTP
}

// ValidationErrorKind enumerates the classes of MCP validation failure.
type ValidationErrorKind int

const (
	ErrInvalidJSON ValidationErrorKind = iota
	ErrInvalidVersion
	ErrMethodNotAllowed
	ErrTransportBlocked
	ErrMissingField
	ErrInvalidFormat
)

// ValidationError is returned by the transport handlers on a malformed
// or disallowed MCP request.
type ValidationError struct {
	Kind    ValidationErrorKind
	Detail  string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrInvalidJSON:
		return "invalid JSON: " + e.Detail
	case ErrInvalidVersion:
		return "invalid JSON-RPC version: " + e.Detail
	case ErrMethodNotAllowed:
		return "method not allowed: " + e.Detail
	case ErrTransportBlocked:
		return "transport blocked: " + e.Detail
	case ErrMissingField:
		return "missing field: " + e.Detail
	default:
		return "invalid format: " + e.Detail
	}
}
