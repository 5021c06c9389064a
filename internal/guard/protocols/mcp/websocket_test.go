// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package mcp

import "testing"

func TestWebSocketTextFrameAllowed(t *testing.T) {
	h := NewWebSocketHandler()
	action, _ := h.OnFrame(WsText, []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`), true)
	if action != WsFrameContinue {
		t.Fatalf("action = %v, want continue", action)
	}
	if h.MessageCount() != 1 {
		t.Fatalf("MessageCount = %d, want 1", h.MessageCount())
	}
}

func TestWebSocketBinaryBlocked(t *testing.T) {
	h := NewWebSocketHandler()
	action, reason := h.OnFrame(WsBinary, []byte{0x01, 0x02, 0x03}, true)
	if action != WsFrameBlock {
		t.Fatal("expected binary frame to be blocked")
	}
	if reason == "" {
		t.Fatal("expected a non-empty block reason")
	}
}

func TestWebSocketPatternDetection(t *testing.T) {
	h := NewWebSocketHandler()
	h.InitPatterns([]string{"ignore previous instructions"}, 4096)
	action, _ := h.OnFrame(WsText, []byte("ignore previous instructions"), true)
	if action != WsFrameBlock {
		t.Fatal("expected pattern match to block the frame")
	}
}

func TestWebSocketFragmentedMessage(t *testing.T) {
	h := NewWebSocketHandler()
	if action, _ := h.OnFrame(WsText, []byte(`{"jsonrpc":"2.0",`), false); action != WsFrameContinue {
		t.Fatal("first fragment unexpectedly blocked")
	}
	action, _ := h.OnFrame(WsContinuation, []byte(`"method":"ping","id":1}`), true)
	if action != WsFrameContinue {
		t.Fatal("expected reassembled message to validate cleanly")
	}
	if h.MessageCount() != 1 {
		t.Fatalf("MessageCount = %d, want 1", h.MessageCount())
	}
}

func TestWebSocketFragmentTooLarge(t *testing.T) {
	h := NewWebSocketHandler()
	if action, _ := h.OnFrame(WsText, make([]byte, 1024), false); action != WsFrameContinue {
		t.Fatal("first fragment unexpectedly blocked")
	}
	action, reason := h.OnFrame(WsContinuation, make([]byte, maxFragmentedMessageBytes), true)
	if action != WsFrameBlock {
		t.Fatal("expected oversize fragmented message to be blocked")
	}
	if reason == "" {
		t.Fatal("expected a non-empty block reason")
	}
}

func TestWebSocketUnexpectedContinuation(t *testing.T) {
	h := NewWebSocketHandler()
	action, _ := h.OnFrame(WsContinuation, []byte("stray"), true)
	if action != WsFrameBlock {
		t.Fatal("expected continuation frame with no prior fragment to be blocked")
	}
}

func TestWebSocketCloseSetsClosingState(t *testing.T) {
	h := NewWebSocketHandler()
	action, _ := h.OnFrame(WsClose, nil, true)
	if action != WsFrameContinue {
		t.Fatal("close frame should not itself be blocked")
	}
	if h.State() != WsClosing {
		t.Fatalf("state = %v, want closing", h.State())
	}
}

func TestWebSocketPingPongPassThrough(t *testing.T) {
	h := NewWebSocketHandler()
	if action, _ := h.OnFrame(WsPing, nil, true); action != WsFrameContinue {
		t.Fatal("ping unexpectedly blocked")
	}
	if action, _ := h.OnFrame(WsPong, nil, true); action != WsFrameContinue {
		t.Fatal("pong unexpectedly blocked")
	}
}

func TestWebSocketNonRPCPayloadAllowed(t *testing.T) {
	h := NewWebSocketHandler()
	action, _ := h.OnFrame(WsText, []byte(`{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`), true)
	if action != WsFrameContinue {
		t.Fatal("a response payload (no method) should pass through")
	}
}
