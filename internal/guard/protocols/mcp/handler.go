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

package mcp

import "aiguard/internal/guard/protocols/jsonrpc"

// Request wraps a validated JSON-RPC request with the transport it
// arrived on.
type Request struct {
	RPC           jsonrpc.Request
	Transport     Transport
	StdioAttempts []StdioBypassAttempt
}

// Handler ties together the per-transport sub-handlers and the
// allow-listed method set, mirroring how a proxy worker owns one
// Handler per mesh sidecar.
type Handler struct {
	http       *HTTPHandler
	sse        *SSEHandler
	websocket  *WebSocketHandler
	stdio      *StdioDetector
	blockStdio bool
}

// NewHandler builds a Handler restricted to allowedMethods.
func NewHandler(allowedMethods []string) *Handler {
	return &Handler{
		http:       NewHTTPHandler(allowedMethods),
		sse:        NewSSEHandler(),
		websocket:  NewWebSocketHandler(),
		stdio:      NewStdioDetector(),
		blockStdio: true,
	}
}

// InitPatterns wires blocked-pattern scanning into the streaming
// sub-handlers (SSE and WebSocket); the HTTP handler inspects whole
// bodies and has no streaming scanner of its own.
func (h *Handler) InitPatterns(patterns []string, bufferSize int) {
	h.sse.InitPatterns(patterns, bufferSize)
	h.websocket.InitPatterns(patterns, bufferSize)
}

// ValidateRequest validates an MCP request body for the given transport.
// STDIO is rejected outright: this filter has no network visibility
// into STDIO traffic to inspect it. headers and body are also scanned
// for signals that the caller is attempting (or already used) a STDIO
// bypass over a transport this filter can otherwise see; any such
// signals are returned on Request.StdioAttempts rather than blocking
// the request, since the traffic itself still passed validation.
func (h *Handler) ValidateRequest(body []byte, headers map[string]string, transport Transport) (Request, error) {
	if transport == TransportStdio && h.blockStdio {
		return Request{}, &ValidationError{Kind: ErrTransportBlocked, Detail: "STDIO transport is blocked for mesh visibility"}
	}
	req, err := h.http.ValidateRequest(body)
	if err != nil {
		return Request{}, err
	}
	var attempts []StdioBypassAttempt
	attempts = append(attempts, h.stdio.DetectFromHeaders(headers)...)
	attempts = append(attempts, h.stdio.DetectInBody(body)...)
	return Request{RPC: req, Transport: transport, StdioAttempts: attempts}, nil
}

// IsMethodAllowed reports whether method passes the configured allow-list.
func (h *Handler) IsMethodAllowed(method string) bool {
	return h.http.IsMethodAllowed(method)
}

// HTTP returns the HTTP sub-handler.
func (h *Handler) HTTP() *HTTPHandler { return h.http }

// SSE returns the SSE sub-handler.
func (h *Handler) SSE() *SSEHandler { return h.sse }

// WebSocket returns the WebSocket sub-handler.
func (h *Handler) WebSocket() *WebSocketHandler { return h.websocket }

// Stdio returns the STDIO bypass detector, used to audit requests
// arriving on transports other than STDIO that still show signs of an
// attempted STDIO bypass.
func (h *Handler) Stdio() *StdioDetector { return h.stdio }
