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

package a2a

import "strings"

// Binding is a wire binding an A2A message may arrive over.
type Binding int

const (
	BindingJSONRPC Binding = iota
	BindingGRPC
	BindingHTTPJSON
)

func (b Binding) String() string {
	switch b {
	case BindingJSONRPC:
		return "jsonrpc"
	case BindingGRPC:
		return "grpc"
	case BindingHTTPJSON:
		return "http+json"
	default:
		return "unknown"
	}
}

// DetectBinding inspects a Content-Type header to determine which A2A
// binding a request used. Returns ok=false when no recognizable
// Content-Type is present.
func DetectBinding(headers map[string]string) (Binding, bool) {
	for name, value := range headers {
		if !strings.EqualFold(name, "content-type") {
			continue
		}
		lower := strings.ToLower(value)
		if strings.Contains(lower, "application/grpc") {
			return BindingGRPC, true
		}
		if strings.Contains(lower, "application/json") {
			return BindingJSONRPC, true
		}
	}
	return 0, false
}

// Handler ties the validator and security enforcer together for a
// single A2A-speaking sidecar.
type Handler struct {
	validator       *Validator
	security        *SecurityEnforcer
	allowedBindings []Binding
}

// NewHandler builds a handler with TLS not required.
func NewHandler() *Handler {
	return &Handler{
		validator:       NewValidator(),
		security:        NewSecurityEnforcer(false),
		allowedBindings: []Binding{BindingJSONRPC, BindingGRPC, BindingHTTPJSON},
	}
}

// NewHandlerWithTLS builds a handler with the given TLS requirement.
func NewHandlerWithTLS(requireTLS bool) *Handler {
	return &Handler{
		validator:       NewValidator(),
		security:        NewSecurityEnforcer(requireTLS),
		allowedBindings: []Binding{BindingJSONRPC, BindingGRPC, BindingHTTPJSON},
	}
}

// ValidateMessage validates body as an A2A message.
func (h *Handler) ValidateMessage(body []byte) (Message, error) {
	return h.validator.ValidateMessage(body)
}

// ValidateTask validates body as an A2A task.
func (h *Handler) ValidateTask(body []byte) (Task, error) {
	return h.validator.ValidateTask(body)
}

// IsBindingAllowed reports whether binding is in the allow-list.
func (h *Handler) IsBindingAllowed(binding Binding) bool {
	for _, b := range h.allowedBindings {
		if b == binding {
			return true
		}
	}
	return false
}

// Security returns the security enforcer.
func (h *Handler) Security() *SecurityEnforcer { return h.security }

// Validator returns the message/task validator.
func (h *Handler) Validator() *Validator { return h.validator }
