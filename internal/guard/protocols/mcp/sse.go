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
	"fmt"

	"aiguard/pkg/streaming"
)

// SSEAction is the outcome of feeding one chunk to an SSEHandler.
type SSEAction int

const (
	SSEContinue SSEAction = iota
	SSEBlock
)

// SSEHandler scans Server-Sent Events streams for blocked patterns.
//
// It scans the entire raw stream byte-for-byte, including comment lines
// (":..."), rather than only "data:" field values. That is intentional:
// an attacker who knows data-only scanning is in effect can smuggle a
// payload through a comment line a naive line-field parser would skip.
type SSEHandler struct {
	ring        *streaming.RingBuffer
	currentEvt  string
	lineBuf     []byte
}

// NewSSEHandler builds a handler with no pattern scanning configured;
// call InitPatterns before processing chunks that must be inspected.
func NewSSEHandler() *SSEHandler {
	return &SSEHandler{}
}

// InitPatterns attaches a ring buffer scanning for the given literals.
func (h *SSEHandler) InitPatterns(patterns []string, bufferSize int) {
	h.ring = streaming.RingBufferFromStrings(bufferSize, patterns)
}

// ProcessChunk scans chunk for blocked patterns and parses SSE field
// lines for bookkeeping (current event name tracking).
func (h *SSEHandler) ProcessChunk(chunk []byte) (SSEAction, string) {
	if h.ring != nil {
		if m, ok := h.ring.ProcessChunk(chunk); ok {
			return SSEBlock, fmt.Sprintf("pattern %q detected in SSE stream", m.PatternName)
		}
	}

	i := 0
	for i < len(chunk) {
		b := chunk[i]
		if b == '\n' {
			h.processLine()
			i++
			continue
		}
		if b == '\r' && i+1 < len(chunk) && chunk[i+1] == '\n' {
			h.processLine()
			i += 2
			continue
		}
		h.lineBuf = append(h.lineBuf, b)
		i++
	}
	return SSEContinue, ""
}

func (h *SSEHandler) processLine() {
	defer func() { h.lineBuf = h.lineBuf[:0] }()

	if len(h.lineBuf) == 0 {
		h.currentEvt = ""
		return
	}
	line := string(h.lineBuf)
	if line[0] == ':' {
		return // comment line; still already scanned by the ring buffer above
	}

	colon := -1
	for i, c := range line {
		if c == ':' {
			colon = i
			break
		}
	}
	if colon < 0 {
		return
	}
	field := line[:colon]
	value := line[colon+1:]
	if len(value) > 0 && value[0] == ' ' {
		value = value[1:]
	}

	switch field {
	case "event":
		h.currentEvt = value
	}
}

// Reset clears all handler state including the pattern scanner.
func (h *SSEHandler) Reset() {
	h.currentEvt = ""
	h.lineBuf = h.lineBuf[:0]
	if h.ring != nil {
		h.ring.Reset()
	}
}
