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

import "strings"

// StdioBypassType classifies how a STDIO bypass attempt was surfaced.
type StdioBypassType int

const (
	BypassHeaderIndicator StdioBypassType = iota
	BypassCommandPattern
	BypassProcessSpawn
)

func (t StdioBypassType) String() string {
	switch t {
	case BypassHeaderIndicator:
		return "header_indicator"
	case BypassCommandPattern:
		return "command_pattern"
	case BypassProcessSpawn:
		return "process_spawn"
	default:
		return "unknown"
	}
}

// StdioSeverity is how confident the detector is that a given signal
// represents an actual attempt to route traffic around the mesh via a
// STDIO-transport MCP server.
type StdioSeverity int

const (
	StdioLow StdioSeverity = iota
	StdioMedium
	StdioHigh
)

func (s StdioSeverity) String() string {
	switch s {
	case StdioLow:
		return "low"
	case StdioMedium:
		return "medium"
	case StdioHigh:
		return "high"
	default:
		return "unknown"
	}
}

// StdioBypassAttempt is one detected signal that a caller may be trying
// to reach an MCP server over STDIO, which carries no network traffic
// for this filter to inspect.
type StdioBypassAttempt struct {
	BypassType  StdioBypassType
	Description string
	Severity    StdioSeverity
}

// StdioAuditEvent is the structured record emitted when a bypass attempt
// is detected, for the audit log rather than the enforcement path:
// actual blocking of STDIO-transport MCP servers belongs to network
// policy outside this filter's visibility.
type StdioAuditEvent struct {
	EventType      string `json:"event_type"`
	BypassType     string `json:"bypass_type"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	ActionTaken    string `json:"action_taken"`
	Recommendation string `json:"recommendation"`
}

// knownStdioCommands are command literals that, combined with other
// signals, indicate a caller is spawning a local MCP server process
// rather than talking to one over the mesh.
var knownStdioCommands = []string{"npx", "uvx", "python -m", "node", "mcp-server", "stdio"}

// StdioDetector scans headers and request bodies for signals that a
// caller intends to use (or already used) STDIO transport instead of a
// mesh-visible one.
type StdioDetector struct {
	knownCommands []string
}

// NewStdioDetector builds a detector using the built-in command literal
// list.
func NewStdioDetector() *StdioDetector {
	return &StdioDetector{knownCommands: knownStdioCommands}
}

// DetectFromHeaders inspects request headers for STDIO transport
// indicators.
func (d *StdioDetector) DetectFromHeaders(headers map[string]string) []StdioBypassAttempt {
	var attempts []StdioBypassAttempt
	for name, value := range headers {
		nameLower := strings.ToLower(name)
		valueLower := strings.ToLower(value)

		if nameLower == "x-mcp-transport" && valueLower == "stdio" {
			attempts = append(attempts, StdioBypassAttempt{
				BypassType:  BypassHeaderIndicator,
				Description: "x-mcp-transport header explicitly requests stdio",
				Severity:    StdioHigh,
			})
			continue
		}
		if strings.Contains(valueLower, "stdio") {
			attempts = append(attempts, StdioBypassAttempt{
				BypassType:  BypassHeaderIndicator,
				Description: "header value references stdio: " + name,
				Severity:    StdioMedium,
			})
		}
	}
	return attempts
}

// DetectInBody inspects a request body for command literals combined
// with execution verbs, or an explicit "stdio"+"transport" pairing.
func (d *StdioDetector) DetectInBody(body []byte) []StdioBypassAttempt {
	var attempts []StdioBypassAttempt
	text := strings.ToLower(string(body))

	hasCommand := false
	for _, cmd := range d.knownCommands {
		if strings.Contains(text, cmd) {
			hasCommand = true
			break
		}
	}

	if hasCommand && (strings.Contains(text, "command") || strings.Contains(text, "exec")) {
		attempts = append(attempts, StdioBypassAttempt{
			BypassType:  BypassCommandPattern,
			Description: "request body combines a known STDIO server command with an exec/command field",
			Severity:    StdioMedium,
		})
	}
	if strings.Contains(text, "stdio") && strings.Contains(text, "transport") {
		attempts = append(attempts, StdioBypassAttempt{
			BypassType:  BypassProcessSpawn,
			Description: "request body configures stdio transport directly",
			Severity:    StdioHigh,
		})
	}
	return attempts
}

// CreateAuditEvent converts a detected attempt into the structured
// record written to the audit log.
func (d *StdioDetector) CreateAuditEvent(a StdioBypassAttempt) StdioAuditEvent {
	return StdioAuditEvent{
		EventType:      "stdio_bypass_attempt",
		BypassType:     a.BypassType.String(),
		Description:    a.Description,
		Severity:       a.Severity.String(),
		ActionTaken:    "blocked",
		Recommendation: "route MCP traffic through an HTTP, SSE, or WebSocket transport that this filter can inspect",
	}
}
