// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestValidRequest(t *testing.T) {
	r := Request{JSONRPC: "2.0", Method: "tools/list", ID: json.RawMessage(`1`)}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInvalidVersion(t *testing.T) {
	r := Request{JSONRPC: "1.0", Method: "test", ID: json.RawMessage(`1`)}
	err := r.Validate()
	ve, ok := err.(*ValidationError)
	if !ok || ve.Kind != "invalid_version" {
		t.Fatalf("err = %v, want invalid_version", err)
	}
}

func TestReservedMethod(t *testing.T) {
	r := Request{JSONRPC: "2.0", Method: "rpc.internal", ID: json.RawMessage(`1`)}
	err := r.Validate()
	ve, ok := err.(*ValidationError)
	if !ok || ve.Kind != "reserved_method" {
		t.Fatalf("err = %v, want reserved_method", err)
	}
}

func TestNotification(t *testing.T) {
	r := Request{JSONRPC: "2.0", Method: "notify"}
	if !r.IsNotification() {
		t.Fatal("expected notification (no id)")
	}
}

func TestErrorResponse(t *testing.T) {
	err := PolicyViolation("prompt injection detected")
	resp := ErrorResponse(json.RawMessage(`1`), err)
	if !resp.IsError() {
		t.Fatal("expected an error response")
	}
}
