// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package a2a

import "testing"

func TestDetectGRPC(t *testing.T) {
	b, ok := DetectBinding(map[string]string{"content-type": "application/grpc"})
	if !ok || b != BindingGRPC {
		t.Fatalf("binding = %v, ok = %v, want grpc", b, ok)
	}
}

func TestDetectJSON(t *testing.T) {
	b, ok := DetectBinding(map[string]string{"content-type": "application/json"})
	if !ok || b != BindingJSONRPC {
		t.Fatalf("binding = %v, ok = %v, want jsonrpc", b, ok)
	}
}

func TestBindingAllowed(t *testing.T) {
	h := NewHandler()
	if !h.IsBindingAllowed(BindingJSONRPC) || !h.IsBindingAllowed(BindingGRPC) {
		t.Fatal("expected jsonrpc and grpc to be allowed by default")
	}
}
