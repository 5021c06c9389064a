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

// Package streaming provides flat-memory, single-pass primitives for
// inspecting request/response bodies as they arrive in chunks: a ring
// buffer, a UTF-8 boundary buffer, and a degenerate-KMP pattern FSM.
//
// None of these types allocate proportional to body size. A regex engine
// is deliberately not used here: regex backtracking on attacker-controlled
// input is a memory and CPU amplification risk inside a request filter.
package streaming

import "strings"

// Pattern is a single literal to scan for, matched case-insensitively.
type Pattern struct {
	Name  string
	bytes []byte
}

// NewPattern builds a pattern whose name is the literal itself.
func NewPattern(s string) Pattern {
	return Pattern{Name: s, bytes: []byte(strings.ToLower(s))}
}

// NewNamedPattern builds a pattern with a name distinct from the literal.
func NewNamedPattern(name, literal string) Pattern {
	return Pattern{Name: name, bytes: []byte(strings.ToLower(literal))}
}

// PatternState tracks one pattern's match progress. Advancing is O(1).
type PatternState struct {
	position int
}

// Advance feeds one byte into the FSM. It implements a degenerate KMP:
// patterns used here rarely self-overlap, so on mismatch we only check
// whether the current byte restarts the match at position 1, rather than
// computing a full failure function.
func (s *PatternState) Advance(b byte, p Pattern) {
	lower := toLowerByte(b)
	var expected byte
	var haveExpected bool
	if s.position < len(p.bytes) {
		expected = p.bytes[s.position]
		haveExpected = true
	}

	switch {
	case haveExpected && expected == lower:
		s.position++
	case s.position > 0:
		if len(p.bytes) > 0 && p.bytes[0] == lower {
			s.position = 1
		} else {
			s.position = 0
		}
	}
}

// IsMatch reports whether the pattern has been fully matched.
func (s *PatternState) IsMatch(p Pattern) bool { return s.position >= len(p.bytes) }

// Reset clears match progress.
func (s *PatternState) Reset() { s.position = 0 }

func toLowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// Match describes a completed pattern match.
type Match struct {
	PatternIndex int
	Position     int // byte offset (1-based, scanner-relative) where the match ended
	PatternName  string
}

// Scanner runs many patterns over a byte stream concurrently, one FSM per
// pattern, first-match-wins.
type Scanner struct {
	patterns     []Pattern
	states       []PatternState
	bytesScanned int
}

// NewScanner builds a scanner for the given patterns.
func NewScanner(patterns []Pattern) *Scanner {
	return &Scanner{patterns: patterns, states: make([]PatternState, len(patterns))}
}

// ScannerFromStrings builds a scanner from plain literals.
func ScannerFromStrings(literals []string) *Scanner {
	patterns := make([]Pattern, len(literals))
	for i, l := range literals {
		patterns[i] = NewPattern(l)
	}
	return NewScanner(patterns)
}

// ScanByte scans one byte against every pattern. Returns the first match,
// if any, with ok=true.
func (s *Scanner) ScanByte(b byte) (Match, bool) {
	s.bytesScanned++
	for i := range s.states {
		s.states[i].Advance(b, s.patterns[i])
		if s.states[i].IsMatch(s.patterns[i]) {
			s.states[i].Reset()
			return Match{PatternIndex: i, Position: s.bytesScanned, PatternName: s.patterns[i].Name}, true
		}
	}
	return Match{}, false
}

// ScanBytes scans a slice, stopping at the first match.
func (s *Scanner) ScanBytes(b []byte) (Match, bool) {
	for _, c := range b {
		if m, ok := s.ScanByte(c); ok {
			return m, true
		}
	}
	return Match{}, false
}

// Reset clears all pattern state and the scanned-byte counter.
func (s *Scanner) Reset() {
	for i := range s.states {
		s.states[i].Reset()
	}
	s.bytesScanned = 0
}

// BytesScanned returns the number of bytes scanned since creation or Reset.
func (s *Scanner) BytesScanned() int { return s.bytesScanned }

// PatternCount returns the number of patterns being scanned.
func (s *Scanner) PatternCount() int { return len(s.patterns) }
