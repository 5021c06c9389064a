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
	"fmt"
	"sync"

	"golang.org/x/sys/cpu"

	"aiguard/internal/guard/protocols/jsonrpc"
	"aiguard/pkg/streaming"
)

// fragmentBufPool recycles the []byte backing arrays used to reassemble
// fragmented WebSocket messages across many concurrent connections. Each
// pooled entry is paired with cache-line padding so that two goroutines
// pulling adjacent pool slots don't bounce the same cache line between
// cores under heavy fragmentation traffic.
type pooledFragmentBuf struct {
	buf []byte
	_   cpu.CacheLinePad
}

var fragmentBufPool = sync.Pool{
	New: func() any {
		return &pooledFragmentBuf{buf: make([]byte, 0, 4096)}
	},
}

func getFragmentBuf() *pooledFragmentBuf {
	return fragmentBufPool.Get().(*pooledFragmentBuf)
}

func putFragmentBuf(p *pooledFragmentBuf) {
	p.buf = p.buf[:0]
	fragmentBufPool.Put(p)
}

// WsOpcode is a WebSocket frame opcode, per RFC 6455 §5.2.
type WsOpcode uint8

const (
	WsContinuation WsOpcode = 0x0
	WsText         WsOpcode = 0x1
	WsBinary       WsOpcode = 0x2
	WsClose        WsOpcode = 0x8
	WsPing         WsOpcode = 0x9
	WsPong         WsOpcode = 0xA
	wsUnknown      WsOpcode = 0xFF
)

// ToWsOpcode maps a raw frame header byte's low nibble to an opcode.
func ToWsOpcode(b byte) WsOpcode {
	switch b & 0x0F {
	case 0x0:
		return WsContinuation
	case 0x1:
		return WsText
	case 0x2:
		return WsBinary
	case 0x8:
		return WsClose
	case 0x9:
		return WsPing
	case 0xA:
		return WsPong
	default:
		return wsUnknown
	}
}

// WsState is the MCP-visible connection lifecycle state.
type WsState int

const (
	WsOpen WsState = iota
	WsClosing
	WsClosed
)

// WsFrameAction is the outcome of feeding one frame to a WebSocketHandler.
type WsFrameAction int

const (
	WsFrameContinue WsFrameAction = iota
	WsFrameBlock
)

// maxFragmentedMessageBytes bounds how large a reassembled fragmented
// message may grow before the handler gives up and blocks it, to stop an
// attacker exhausting memory with an unbounded stream of continuation
// frames.
const maxFragmentedMessageBytes = 10 * 1024 * 1024

// WebSocketHandler inspects MCP traffic carried over a WebSocket
// connection. MCP only uses text frames for JSON-RPC; binary frames are
// always blocked.
type WebSocketHandler struct {
	state          WsState
	ring           *streaming.RingBuffer
	fragment       *pooledFragmentBuf
	fragmentOpcode *WsOpcode
	messageCount   uint64
}

// NewWebSocketHandler builds a handler with no pattern scanning configured.
func NewWebSocketHandler() *WebSocketHandler {
	return &WebSocketHandler{state: WsOpen}
}

// InitPatterns attaches a ring buffer scanning for the given literals.
func (h *WebSocketHandler) InitPatterns(patterns []string, bufferSize int) {
	h.ring = streaming.RingBufferFromStrings(bufferSize, patterns)
}

// OnFrame processes one WebSocket frame.
func (h *WebSocketHandler) OnFrame(opcode WsOpcode, payload []byte, fin bool) (WsFrameAction, string) {
	switch opcode {
	case WsText:
		return h.onTextFrame(payload, fin)
	case WsBinary:
		return WsFrameBlock, "binary WebSocket frames not allowed for MCP"
	case WsContinuation:
		return h.onContinuationFrame(payload, fin)
	case WsClose:
		h.state = WsClosing
		return WsFrameContinue, ""
	case WsPing, WsPong:
		return WsFrameContinue, ""
	default:
		return WsFrameBlock, "unknown WebSocket opcode"
	}
}

func (h *WebSocketHandler) onTextFrame(payload []byte, fin bool) (WsFrameAction, string) {
	if h.ring != nil {
		if m, ok := h.ring.ProcessChunk(payload); ok {
			return WsFrameBlock, fmt.Sprintf("pattern %q detected in WebSocket message", m.PatternName)
		}
	}

	if fin {
		h.messageCount++
		if err := h.validateMessage(payload); err != nil {
			return WsFrameBlock, err.Error()
		}
		return WsFrameContinue, ""
	}

	op := WsText
	h.fragmentOpcode = &op
	h.fragment = getFragmentBuf()
	h.fragment.buf = append(h.fragment.buf, payload...)
	return WsFrameContinue, ""
}

func (h *WebSocketHandler) onContinuationFrame(payload []byte, fin bool) (WsFrameAction, string) {
	if h.ring != nil {
		if m, ok := h.ring.ProcessChunk(payload); ok {
			return WsFrameBlock, fmt.Sprintf("pattern %q detected in WebSocket message", m.PatternName)
		}
	}

	if h.fragmentOpcode == nil || h.fragment == nil {
		return WsFrameBlock, "unexpected continuation frame"
	}

	if len(h.fragment.buf)+len(payload) > maxFragmentedMessageBytes {
		h.releaseFragment()
		return WsFrameBlock, "WebSocket message too large"
	}
	h.fragment.buf = append(h.fragment.buf, payload...)

	if fin {
		h.messageCount++
		opcode := *h.fragmentOpcode
		assembled := h.fragment.buf
		if opcode == WsText {
			if err := h.validateMessage(assembled); err != nil {
				h.releaseFragment()
				return WsFrameBlock, err.Error()
			}
		}
		h.releaseFragment()
	}
	return WsFrameContinue, ""
}

// releaseFragment returns the in-flight fragment buffer to the pool and
// clears the handler's reassembly state.
func (h *WebSocketHandler) releaseFragment() {
	if h.fragment != nil {
		putFragmentBuf(h.fragment)
		h.fragment = nil
	}
	h.fragmentOpcode = nil
}

// validateMessage best-effort parses payload as JSON-RPC and validates
// the envelope; non-request payloads (responses, malformed JSON) are
// allowed through, since an MCP WebSocket connection is bidirectional
// and not every message is a request.
func (h *WebSocketHandler) validateMessage(payload []byte) error {
	var req jsonrpc.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil
	}
	if req.Method == "" {
		return nil
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid JSON-RPC: %w", err)
	}
	return nil
}

// State returns the connection's lifecycle state.
func (h *WebSocketHandler) State() WsState { return h.state }

// MessageCount returns the number of complete messages processed.
func (h *WebSocketHandler) MessageCount() uint64 { return h.messageCount }

// Reset clears all handler state including the pattern scanner.
func (h *WebSocketHandler) Reset() {
	h.state = WsOpen
	h.releaseFragment()
	h.messageCount = 0
	if h.ring != nil {
		h.ring.Reset()
	}
}
