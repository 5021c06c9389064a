// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package mcp

import "testing"

func TestStdioDetectHeader(t *testing.T) {
	d := NewStdioDetector()
	attempts := d.DetectFromHeaders(map[string]string{"X-Mcp-Transport": "stdio"})
	if len(attempts) != 1 || attempts[0].Severity != StdioHigh {
		t.Fatalf("attempts = %+v, want one high-severity header indicator", attempts)
	}
}

func TestStdioNoDetectionOnHTTP(t *testing.T) {
	d := NewStdioDetector()
	attempts := d.DetectFromHeaders(map[string]string{"Accept": "application/json"})
	if len(attempts) != 0 {
		t.Fatalf("attempts = %+v, want none", attempts)
	}
}

func TestStdioDetectCommandPattern(t *testing.T) {
	d := NewStdioDetector()
	body := []byte(`{"command": "npx some-mcp-server", "exec": true}`)
	attempts := d.DetectInBody(body)
	if len(attempts) == 0 {
		t.Fatal("expected a command-pattern detection")
	}
}

func TestStdioDetectConfig(t *testing.T) {
	d := NewStdioDetector()
	body := []byte(`{"transport": "stdio", "command": "node server.js"}`)
	attempts := d.DetectInBody(body)
	found := false
	for _, a := range attempts {
		if a.BypassType == BypassProcessSpawn && a.Severity == StdioHigh {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a high-severity process-spawn detection for stdio+transport body")
	}
}

func TestStdioCreateAuditEvent(t *testing.T) {
	d := NewStdioDetector()
	ev := d.CreateAuditEvent(StdioBypassAttempt{
		BypassType:  BypassHeaderIndicator,
		Description: "test",
		Severity:    StdioHigh,
	})
	if ev.EventType != "stdio_bypass_attempt" || ev.ActionTaken != "blocked" {
		t.Fatalf("unexpected audit event: %+v", ev)
	}
}
