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

import (
	"encoding/json"

	"aiguard/internal/guard/protocols/jsonrpc"
)

// HTTPHandler validates MCP requests carried over plain HTTP.
type HTTPHandler struct {
	allowedMethods []string
}

// NewHTTPHandler builds a handler restricted to allowedMethods. A single
// "*" entry allows every method.
func NewHTTPHandler(allowedMethods []string) *HTTPHandler {
	return &HTTPHandler{allowedMethods: allowedMethods}
}

// IsMethodAllowed reports whether method passes the allow-list.
func (h *HTTPHandler) IsMethodAllowed(method string) bool {
	for _, m := range h.allowedMethods {
		if m == "*" || m == method {
			return true
		}
	}
	return false
}

// ValidateRequest parses and validates a single JSON-RPC request body.
func (h *HTTPHandler) ValidateRequest(body []byte) (jsonrpc.Request, error) {
	var req jsonrpc.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return jsonrpc.Request{}, &ValidationError{Kind: ErrInvalidJSON, Detail: err.Error()}
	}
	if err := req.Validate(); err != nil {
		return jsonrpc.Request{}, &ValidationError{Kind: ErrInvalidFormat, Detail: err.Error()}
	}
	if !h.IsMethodAllowed(req.Method) {
		return jsonrpc.Request{}, &ValidationError{Kind: ErrMethodNotAllowed, Detail: req.Method}
	}
	return req, nil
}

// ValidateBatch parses and validates a JSON-RPC batch (JSON array) body.
func (h *HTTPHandler) ValidateBatch(body []byte) ([]jsonrpc.Request, error) {
	var reqs []jsonrpc.Request
	if err := json.Unmarshal(body, &reqs); err != nil {
		return nil, &ValidationError{Kind: ErrInvalidJSON, Detail: err.Error()}
	}
	for _, req := range reqs {
		if err := req.Validate(); err != nil {
			return nil, &ValidationError{Kind: ErrInvalidFormat, Detail: err.Error()}
		}
		if !h.IsMethodAllowed(req.Method) {
			return nil, &ValidationError{Kind: ErrMethodNotAllowed, Detail: req.Method}
		}
	}
	return reqs, nil
}

// CreateBlockedResponse builds the policy-violation JSON-RPC error
// response for a blocked request.
func (h *HTTPHandler) CreateBlockedResponse(id json.RawMessage, reason string) jsonrpc.Response {
	return jsonrpc.ErrorResponse(id, jsonrpc.PolicyViolation(reason))
}
