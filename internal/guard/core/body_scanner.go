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

// Package core implements the request-filter state machine: the streaming
// body scanner and the controller that drives it through the proxy host's
// callback lifecycle.
package core

import (
	"fmt"

	"aiguard/pkg/streaming"
)

// ScanDecision is the outcome of feeding one chunk to a BodyScanner.
type ScanDecision int

const (
	// ScanContinue means more chunks are expected; no decision yet.
	ScanContinue ScanDecision = iota
	// ScanAllow means the body (or what was scanned of it) is clean.
	ScanAllow
	// ScanBlock means a blocked pattern was found.
	ScanBlock
	// ScanSkip means scanning was abandoned (e.g. oversize body):
	// fail-open, the request proceeds unscanned.
	ScanSkip
)

func (d ScanDecision) String() string {
	switch d {
	case ScanContinue:
		return "continue"
	case ScanAllow:
		return "allow"
	case ScanBlock:
		return "block"
	case ScanSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// ScanResult pairs a decision with a human-readable reason, set only for
// Block and Skip. Severity is set only for Block, derived from the
// matched pattern the same way InjectionMatch.Severity classifies an
// A2A-side match.
type ScanResult struct {
	Decision ScanDecision
	Reason   string
	Severity InjectionSeverity
}

// BodyScanner streams a request or response body through a ring buffer
// without ever holding the whole body in memory. Memory use is O(1) in
// body size; only max_bytes bounds how many bytes get scanned before the
// scanner gives up and fails open.
type BodyScanner struct {
	ring       *streaming.RingBuffer
	totalBytes int
	maxBytes   int
	complete   bool
	terminal   ScanResult
}

// NewBodyScanner builds a scanner for the given blocked-pattern literals.
func NewBodyScanner(patterns []string, ringBufferSize, maxBodySize int) *BodyScanner {
	return &BodyScanner{
		ring:     streaming.RingBufferFromStrings(ringBufferSize, patterns),
		maxBytes: maxBodySize,
	}
}

// OnBodyChunk is the main entry point: call once per chunk as it arrives.
// O(len(chunk)) time, O(1) additional memory.
func (s *BodyScanner) OnBodyChunk(chunk []byte, endOfStream bool) ScanResult {
	if s.complete {
		return s.terminal
	}

	s.totalBytes += len(chunk)

	if s.totalBytes > s.maxBytes {
		return s.finish(ScanResult{Decision: ScanSkip, Reason: "body exceeds max size"})
	}

	if m, ok := s.ring.ProcessChunk(chunk); ok {
		severity := InjectionMatch{Pattern: m.PatternName}.Severity()
		return s.finish(ScanResult{
			Decision: ScanBlock,
			Reason:   fmt.Sprintf("pattern %q detected", m.PatternName),
			Severity: severity,
		})
	}

	if endOfStream {
		return s.finish(ScanResult{Decision: ScanAllow})
	}
	return ScanResult{Decision: ScanContinue}
}

func (s *BodyScanner) finish(result ScanResult) ScanResult {
	s.complete = true
	s.terminal = result
	return result
}

// IsComplete reports whether scanning has reached a terminal decision.
func (s *BodyScanner) IsComplete() bool { return s.complete }

// TotalBytes returns the number of bytes seen so far.
func (s *BodyScanner) TotalBytes() int { return s.totalBytes }

// Reset clears scanner state for reuse across requests.
func (s *BodyScanner) Reset() {
	s.ring.Reset()
	s.totalBytes = 0
	s.complete = false
	s.terminal = ScanResult{}
}
