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

package core

import (
	"strings"

	"aiguard/pkg/streaming"
)

// InjectionSeverity classifies how dangerous a detected injection attempt
// is, derived from which keyword matched.
type InjectionSeverity int

const (
	SeverityLow InjectionSeverity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s InjectionSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

// DefaultInjectionPatterns returns the built-in prompt-injection literal
// set, grouped by technique: instruction override, jailbreaking, role
// manipulation, system-prompt extraction, dangerous operations, and
// context manipulation.
func DefaultInjectionPatterns() []string {
	return []string{
		"ignore previous instructions",
		"ignore all previous",
		"disregard previous",
		"disregard all previous",
		"forget your instructions",
		"forget all instructions",
		"override your instructions",
		"ignore your system prompt",
		"ignore the system prompt",
		"bypass your restrictions",
		"bypass the restrictions",
		"jailbreak",
		"DAN mode",
		"developer mode",
		"do anything now",
		"pretend you are",
		"act as if you",
		"roleplay as",
		"you are now",
		"reveal your system prompt",
		"show your system prompt",
		"what is your system prompt",
		"display your instructions",
		"delete database",
		"drop table",
		"rm -rf",
		"format disk",
		"end of context",
		"new context",
		"reset context",
	}
}

// InjectionMatch is a detected prompt-injection attempt.
type InjectionMatch struct {
	Pattern  string
	Position int
}

// Severity classifies the match by which keyword it hit.
func (m InjectionMatch) Severity() InjectionSeverity {
	lower := strings.ToLower(m.Pattern)

	switch {
	case strings.Contains(lower, "delete"), strings.Contains(lower, "drop"),
		strings.Contains(lower, "rm -rf"), strings.Contains(lower, "format"):
		return SeverityCritical
	case strings.Contains(lower, "jailbreak"), strings.Contains(lower, "dan mode"),
		strings.Contains(lower, "bypass"):
		return SeverityHigh
	case strings.Contains(lower, "ignore"), strings.Contains(lower, "disregard"),
		strings.Contains(lower, "forget"), strings.Contains(lower, "override"):
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// InjectionDetector scans text for prompt-injection attempts using the
// same FSM scanner as the body scanner, independent of a request's size
// cap — used for targeted scans of individual A2A message parts.
type InjectionDetector struct {
	scanner *streaming.Scanner
}

// NewInjectionDetector builds a detector using the built-in pattern set.
func NewInjectionDetector() *InjectionDetector {
	return NewInjectionDetectorWithPatterns(DefaultInjectionPatterns())
}

// NewInjectionDetectorWithPatterns builds a detector with a custom pattern set.
func NewInjectionDetectorWithPatterns(patterns []string) *InjectionDetector {
	return &InjectionDetector{scanner: streaming.ScannerFromStrings(patterns)}
}

// Scan checks data for an injection pattern. Returns ok=false if clean.
func (d *InjectionDetector) Scan(data []byte) (InjectionMatch, bool) {
	m, ok := d.scanner.ScanBytes(data)
	if !ok {
		return InjectionMatch{}, false
	}
	return InjectionMatch{Pattern: m.PatternName, Position: m.Position}, true
}

// ScanString is a convenience wrapper around Scan.
func (d *InjectionDetector) ScanString(text string) (InjectionMatch, bool) {
	return d.Scan([]byte(text))
}

// Reset clears scanner state.
func (d *InjectionDetector) Reset() { d.scanner.Reset() }
