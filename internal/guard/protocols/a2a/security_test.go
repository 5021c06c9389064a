// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package a2a

import "testing"

func TestNoTLSRequired(t *testing.T) {
	e := NewSecurityEnforcer(false)
	if err := e.CheckTransport(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTLSRequiredMissing(t *testing.T) {
	e := NewSecurityEnforcer(true)
	err := e.CheckTransport(nil)
	se, ok := err.(*SecurityError)
	if !ok || se.Kind != ErrTLSRequired {
		t.Fatalf("err = %v, want ErrTLSRequired", err)
	}
}

func TestTLSVersionOK(t *testing.T) {
	e := NewSecurityEnforcer(true)
	if err := e.CheckTransport(&TLSInfo{Version: TLS12}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTLSVersionTooLow(t *testing.T) {
	e := NewSecurityEnforcer(true)
	err := e.CheckTransport(&TLSInfo{Version: TLS11})
	se, ok := err.(*SecurityError)
	if !ok || se.Kind != ErrTLSVersionTooLow {
		t.Fatalf("err = %v, want ErrTLSVersionTooLow", err)
	}
}

func TestBearerAuth(t *testing.T) {
	e := NewSecurityEnforcerWithConfig(false, TLS12, true, []AuthScheme{AuthBearer})
	id, err := e.CheckAuthentication(map[string]string{"authorization": "Bearer my-secret-token"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == nil || id.Identifier != "my-secret-token" {
		t.Fatalf("identity = %+v, want my-secret-token", id)
	}
}

func TestMissingAuth(t *testing.T) {
	e := NewSecurityEnforcerWithConfig(false, TLS12, true, []AuthScheme{AuthBearer})
	_, err := e.CheckAuthentication(map[string]string{})
	se, ok := err.(*SecurityError)
	if !ok || se.Kind != ErrMissingCredentials {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	e := NewSecurityEnforcerWithConfig(false, TLS12, true, []AuthScheme{AuthAPIKey})
	id, err := e.CheckAuthentication(map[string]string{"Authorization": "ApiKey abc123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == nil || id.Identifier != "abc123" {
		t.Fatalf("identity = %+v, want abc123", id)
	}
}
