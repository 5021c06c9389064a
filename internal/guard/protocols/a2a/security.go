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

import (
	"fmt"
	"strings"
)

// TLSVersion is an ordered TLS protocol version; ordering matters since
// the enforcer compares a connection's version against a configured
// floor.
type TLSVersion int

const (
	TLS10 TLSVersion = iota
	TLS11
	TLS12
	TLS13
)

func (v TLSVersion) String() string {
	switch v {
	case TLS10:
		return "TLS1.0"
	case TLS11:
		return "TLS1.1"
	case TLS12:
		return "TLS1.2"
	case TLS13:
		return "TLS1.3"
	default:
		return "unknown"
	}
}

// TLSInfo describes an established TLS connection.
type TLSInfo struct {
	Version    TLSVersion
	Cipher     string
	ClientCert string
}

// AuthScheme is a supported A2A authentication mechanism.
type AuthScheme int

const (
	AuthBearer AuthScheme = iota
	AuthAPIKey
	AuthMTLS
)

// Validate checks an Authorization header value against this scheme and
// extracts an Identity on success.
func (s AuthScheme) Validate(authHeader string) (Identity, bool) {
	switch s {
	case AuthBearer:
		if len(authHeader) >= 7 && strings.EqualFold(authHeader[:7], "bearer ") {
			token := strings.TrimSpace(authHeader[7:])
			if token != "" {
				return Identity{Scheme: s, Identifier: token}, true
			}
		}
	case AuthAPIKey:
		if len(authHeader) >= 7 && strings.EqualFold(authHeader[:7], "apikey ") {
			key := strings.TrimSpace(authHeader[7:])
			if key != "" {
				return Identity{Scheme: s, Identifier: key}, true
			}
		}
	case AuthMTLS:
		// mTLS identity comes from the transport layer, not this header.
	}
	return Identity{}, false
}

// Identity is an authenticated caller extracted from request headers.
type Identity struct {
	Scheme     AuthScheme
	Identifier string
}

// SecurityErrorKind enumerates the classes of A2A security failure.
type SecurityErrorKind int

const (
	ErrTLSRequired SecurityErrorKind = iota
	ErrTLSVersionTooLow
	ErrMissingCredentials
	ErrInvalidCredentials
	ErrInsufficientPermissions
)

// SecurityError is returned by SecurityEnforcer on a transport or
// authentication failure.
type SecurityError struct {
	Kind     SecurityErrorKind
	Required TLSVersion
	Actual   TLSVersion
	Detail   string
}

func (e *SecurityError) Error() string {
	switch e.Kind {
	case ErrTLSRequired:
		return "TLS is required for A2A communication"
	case ErrTLSVersionTooLow:
		return fmt.Sprintf("TLS version %s is below minimum %s", e.Actual, e.Required)
	case ErrMissingCredentials:
		return "authentication credentials required"
	case ErrInvalidCredentials:
		return "invalid authentication credentials"
	default:
		return "insufficient permissions: " + e.Detail
	}
}

// SecurityEnforcer enforces the A2A enterprise profile's transport and
// authentication requirements.
type SecurityEnforcer struct {
	tlsRequired  bool
	minTLS       TLSVersion
	authRequired bool
	authSchemes  []AuthScheme
}

// NewSecurityEnforcer builds an enforcer with the default auth scheme
// set (Bearer, API key) and a TLS 1.2 floor.
func NewSecurityEnforcer(requireTLS bool) *SecurityEnforcer {
	return &SecurityEnforcer{
		tlsRequired: requireTLS,
		minTLS:      TLS12,
		authSchemes: []AuthScheme{AuthBearer, AuthAPIKey},
	}
}

// NewSecurityEnforcerWithConfig builds a fully configured enforcer.
func NewSecurityEnforcerWithConfig(requireTLS bool, minTLS TLSVersion, authRequired bool, schemes []AuthScheme) *SecurityEnforcer {
	return &SecurityEnforcer{
		tlsRequired:  requireTLS,
		minTLS:       minTLS,
		authRequired: authRequired,
		authSchemes:  schemes,
	}
}

// CheckTransport validates tlsInfo against the configured TLS floor.
// tlsInfo is nil when the connection is plaintext.
func (e *SecurityEnforcer) CheckTransport(tlsInfo *TLSInfo) error {
	if !e.tlsRequired {
		return nil
	}
	if tlsInfo == nil {
		return &SecurityError{Kind: ErrTLSRequired}
	}
	if tlsInfo.Version < e.minTLS {
		return &SecurityError{Kind: ErrTLSVersionTooLow, Required: e.minTLS, Actual: tlsInfo.Version}
	}
	return nil
}

// CheckAuthentication validates the Authorization header against the
// configured auth schemes, trying each in order and returning the first
// scheme that accepts the header. When authentication is not required,
// it still attempts extraction so the caller's identity can be recorded
// for audit purposes when present.
func (e *SecurityEnforcer) CheckAuthentication(headers map[string]string) (*Identity, error) {
	authValue, hasAuth := findHeader(headers, "authorization")

	if !e.authRequired {
		if !hasAuth {
			return nil, nil
		}
		id, ok := e.tryAuthSchemes(authValue)
		if !ok {
			return nil, nil
		}
		return &id, nil
	}

	if !hasAuth {
		return nil, &SecurityError{Kind: ErrMissingCredentials}
	}
	id, ok := e.tryAuthSchemes(authValue)
	if !ok {
		return nil, &SecurityError{Kind: ErrInvalidCredentials}
	}
	return &id, nil
}

func (e *SecurityEnforcer) tryAuthSchemes(authValue string) (Identity, bool) {
	for _, scheme := range e.authSchemes {
		if id, ok := scheme.Validate(authValue); ok {
			return id, true
		}
	}
	return Identity{}, false
}

func findHeader(headers map[string]string, name string) (string, bool) {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
