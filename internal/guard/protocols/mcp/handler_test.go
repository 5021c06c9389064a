// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package mcp

import "testing"

func validRequestBody() []byte {
	return []byte(`{"jsonrpc":"2.0","method":"tools/call","id":1}`)
}

func TestValidateRequestRejectsStdioTransport(t *testing.T) {
	h := NewHandler([]string{"*"})
	_, err := h.ValidateRequest(validRequestBody(), nil, TransportStdio)
	if err == nil {
		t.Fatal("expected STDIO transport to be rejected")
	}
}

func TestValidateRequestSurfacesStdioHeaderBypass(t *testing.T) {
	h := NewHandler([]string{"*"})
	headers := map[string]string{"x-mcp-server-command": "stdio"}
	req, err := h.ValidateRequest(validRequestBody(), headers, TransportHTTP)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.StdioAttempts) == 0 {
		t.Fatal("expected a STDIO bypass attempt to be surfaced from headers")
	}
}

func TestValidateRequestSurfacesStdioBodyBypass(t *testing.T) {
	h := NewHandler([]string{"*"})
	body := []byte(`{"jsonrpc":"2.0","method":"tools/call","id":1,"params":{"command":"npx mcp-server"}}`)
	req, err := h.ValidateRequest(body, nil, TransportHTTP)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.StdioAttempts) == 0 {
		t.Fatal("expected a STDIO bypass attempt to be surfaced from the body")
	}
}

func TestValidateRequestCleanRequestHasNoStdioAttempts(t *testing.T) {
	h := NewHandler([]string{"*"})
	req, err := h.ValidateRequest(validRequestBody(), map[string]string{"content-type": "application/json"}, TransportHTTP)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.StdioAttempts) != 0 {
		t.Fatalf("StdioAttempts = %v, want none", req.StdioAttempts)
	}
}
