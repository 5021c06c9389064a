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

package telemetry

import (
	"encoding/json"
	"log"
)

// AuditEventType enumerates the kinds of structured audit records the
// filter emits.
type AuditEventType string

const (
	EventRequestAllowed AuditEventType = "request_allowed"
	EventRequestBlocked AuditEventType = "request_blocked"
	EventPIIDetected    AuditEventType = "pii_detected"
	EventRateLimited    AuditEventType = "rate_limited"
	EventA2AControl     AuditEventType = "a2a_control"
	EventStdioBypass    AuditEventType = "stdio_bypass_attempt"
)

// AuditEvent is one structured record written to the audit log. A
// Logger's Sink is optional: when set (for example persistence.RedisSink),
// events are also mirrored to a shared store for cross-worker visibility.
type AuditEvent struct {
	EventType AuditEventType `json:"event_type"`
	RequestID string         `json:"request_id,omitempty"`
	Identity  string         `json:"identity,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Severity  string         `json:"severity,omitempty"`
	Detail    any            `json:"detail,omitempty"`
}

// Sink receives every emitted audit event, in addition to the process
// log line. Implementations must not block the calling goroutine for
// long; the Redis-backed sink in the persistence package does no
// buffering of its own and issues its Redis writes within Record.
type Sink interface {
	Record(AuditEvent)
}

// Logger writes structured audit events as single-line JSON to the
// process log, and forwards a copy to an optional Sink.
type Logger struct {
	sink Sink
}

// NewLogger builds a Logger with no sink attached.
func NewLogger() *Logger {
	return &Logger{}
}

// WithSink attaches a Sink that receives every emitted event.
func (l *Logger) WithSink(sink Sink) *Logger {
	l.sink = sink
	return l
}

// isWarnEvent reports whether ev's type represents an adverse outcome
// (a block, a throttle, or a protocol-level bypass attempt) that an
// operator watching the log should notice, as opposed to routine
// request accounting.
func isWarnEvent(t AuditEventType) bool {
	switch t {
	case EventRequestBlocked, EventRateLimited, EventStdioBypass, EventA2AControl:
		return true
	default:
		return false
	}
}

// Emit writes ev as a JSON log line, leveled WARN or INFO depending on
// its EventType, and forwards it to the sink, if any.
func (l *Logger) Emit(ev AuditEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("ai-guard: failed to marshal audit event: %v", err)
		return
	}
	if isWarnEvent(ev.EventType) {
		log.Printf("WARN ai-guard: %s", b)
	} else {
		log.Printf("INFO ai-guard: %s", b)
	}
	if l.sink != nil {
		l.sink.Record(ev)
	}
}
