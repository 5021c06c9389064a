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

// Package a2a validates Agent-to-Agent protocol messages and tasks, and
// enforces the transport-level security features (TLS floor,
// authentication) that the A2A enterprise profile expects of a gateway.
package a2a

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"aiguard/internal/guard/core"
)

// Role is the sender of an A2A message.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAgent Role = "ROLE_AGENT"
)

// Part is one unit of an A2A message: exactly one of Text, File, or Data
// is expected to be populated, though the validator does not enforce
// that exclusivity since the wire format allows any combination. Data
// carries an arbitrary structured payload (tool call arguments, agent
// card extensions) and is represented with structpb.Struct rather than
// a bespoke map type, since it needs to round-trip through both the
// JSON binding and a future gRPC binding without a second conversion
// layer.
type Part struct {
	Text *string          `json:"text,omitempty"`
	File *File            `json:"file,omitempty"`
	Data *structpb.Struct `json:"data,omitempty"`
}

// File is a file reference carried in a message Part.
type File struct {
	Name     *string `json:"name,omitempty"`
	MimeType *string `json:"mimeType,omitempty"`
	Bytes    *string `json:"bytes,omitempty"`
	URI      *string `json:"uri,omitempty"`
}

// Message is a single A2A message exchanged between agents.
type Message struct {
	MessageID string          `json:"messageId"`
	Role      Role            `json:"role"`
	Parts     []Part          `json:"parts"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// TaskState is the lifecycle state of an A2A task.
type TaskState string

const (
	StatePending       TaskState = "pending"
	StateRunning       TaskState = "running"
	StateWorking       TaskState = "working"
	StateInputRequired TaskState = "input-required"
	StateCompleted     TaskState = "completed"
	StateFailed        TaskState = "failed"
	StateCancelled     TaskState = "cancelled"
)

// IsTerminal reports whether state has no valid outbound transition.
func (s TaskState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// allowedTransitions enumerates every valid task state transition. Any
// transition not listed here is a policy violation. Submission starts a
// task in "submitted" (aliased below to "pending" for wire
// compatibility with callers that use either term); "running" is
// treated as a synonym of "working" for the same reason.
var allowedTransitions = map[TaskState]map[TaskState]bool{
	StatePending: {
		StateWorking:   true,
		StateRunning:   true,
		StateCancelled: true,
	},
	StateRunning: {
		StateInputRequired: true,
		StateCompleted:     true,
		StateFailed:        true,
		StateCancelled:     true,
	},
	StateWorking: {
		StateInputRequired: true,
		StateCompleted:     true,
		StateFailed:        true,
		StateCancelled:     true,
	},
	StateInputRequired: {
		StateWorking:   true,
		StateRunning:   true,
		StateCancelled: true,
	},
}

// CanTransition reports whether moving from from to to is a valid task
// state transition.
func CanTransition(from, to TaskState) bool {
	if from == to {
		return true
	}
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// TaskStatus is a task's current state plus an optional human-readable
// status message.
type TaskStatus struct {
	State   TaskState `json:"state"`
	Message *string   `json:"message,omitempty"`
}

// Artifact is a named output produced by a task.
type Artifact struct {
	Name  string `json:"name"`
	Parts []Part `json:"parts"`
	Index *uint32 `json:"index,omitempty"`
}

// Task is an A2A unit of work tracked across one or more messages.
type Task struct {
	TaskID    string     `json:"taskId"`
	SessionID *string    `json:"sessionId,omitempty"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts"`
	Messages  []Message  `json:"messages"`
}

// ValidationErrorKind enumerates the classes of A2A validation failure.
type ValidationErrorKind int

const (
	ErrInvalidJSON ValidationErrorKind = iota
	ErrMissingField
	ErrInvalidStateTransition
	ErrPromptInjection
	ErrInvalidArtifact
	ErrInvalidRole
)

// ValidationError is returned by Validator on a malformed or
// policy-violating A2A message or task.
type ValidationError struct {
	Kind   ValidationErrorKind
	Detail string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrInvalidJSON:
		return "invalid JSON: " + e.Detail
	case ErrMissingField:
		return "missing field: " + e.Detail
	case ErrInvalidStateTransition:
		return "invalid state transition: " + e.Detail
	case ErrPromptInjection:
		return "prompt injection: " + e.Detail
	case ErrInvalidRole:
		return "invalid role: " + e.Detail
	default:
		return "invalid artifact: " + e.Detail
	}
}

// isValidRole reports whether role is one of the A2A message sender
// roles.
func isValidRole(role Role) bool {
	switch role {
	case RoleUser, RoleAgent:
		return true
	default:
		return false
	}
}

// Validator parses and validates A2A messages and tasks, scanning every
// textual part for prompt injection.
type Validator struct {
	detector *core.InjectionDetector
}

// NewValidator builds a validator using the built-in injection pattern
// set.
func NewValidator() *Validator {
	return &Validator{detector: core.NewInjectionDetector()}
}

// ValidateMessage parses body as an A2A message and checks required
// fields and textual parts for prompt injection.
func (v *Validator) ValidateMessage(body []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, &ValidationError{Kind: ErrInvalidJSON, Detail: err.Error()}
	}
	if msg.MessageID == "" {
		return Message{}, &ValidationError{Kind: ErrMissingField, Detail: "messageId"}
	}
	if !isValidRole(msg.Role) {
		return Message{}, &ValidationError{Kind: ErrInvalidRole, Detail: string(msg.Role)}
	}
	if len(msg.Parts) == 0 {
		return Message{}, &ValidationError{Kind: ErrMissingField, Detail: "parts"}
	}
	for i, part := range msg.Parts {
		if part.Text == nil {
			continue
		}
		if m, ok := v.scanText(*part.Text); ok {
			return Message{}, &ValidationError{Kind: ErrPromptInjection, Detail: fmt.Sprintf("part %d: %s", i, m.Pattern)}
		}
	}
	return msg, nil
}

// ValidateTask parses body as an A2A task and checks required fields,
// the task's own state (transitions are checked separately via
// CanTransition, since a single task snapshot carries no prior state to
// compare against), its artifacts, and every message's textual parts for
// prompt injection.
func (v *Validator) ValidateTask(body []byte) (Task, error) {
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return Task{}, &ValidationError{Kind: ErrInvalidJSON, Detail: err.Error()}
	}
	if task.TaskID == "" {
		return Task{}, &ValidationError{Kind: ErrMissingField, Detail: "taskId"}
	}
	if _, known := allowedTransitions[task.Status.State]; !known && !task.Status.State.IsTerminal() {
		return Task{}, &ValidationError{Kind: ErrInvalidStateTransition, Detail: fmt.Sprintf("unknown task state %q", task.Status.State)}
	}
	for _, artifact := range task.Artifacts {
		if err := v.validateArtifact(artifact); err != nil {
			return Task{}, err
		}
	}
	for _, msg := range task.Messages {
		for _, part := range msg.Parts {
			if part.Text == nil {
				continue
			}
			if m, ok := v.scanText(*part.Text); ok {
				return Task{}, &ValidationError{Kind: ErrPromptInjection, Detail: "task message: " + m.Pattern}
			}
		}
	}
	return task, nil
}

// ValidateTransition checks a task's proposed state change against the
// state machine, given the task's previously recorded state.
func (v *Validator) ValidateTransition(from, to TaskState) error {
	if !CanTransition(from, to) {
		return &ValidationError{Kind: ErrInvalidStateTransition, Detail: fmt.Sprintf("%s -> %s", from, to)}
	}
	return nil
}

func (v *Validator) validateArtifact(a Artifact) error {
	if a.Name == "" {
		return &ValidationError{Kind: ErrMissingField, Detail: "artifact.name"}
	}
	for _, part := range a.Parts {
		if part.Text == nil {
			continue
		}
		if m, ok := v.scanText(*part.Text); ok {
			return &ValidationError{Kind: ErrPromptInjection, Detail: fmt.Sprintf("artifact %q: %s", a.Name, m.Pattern)}
		}
	}
	return nil
}

func (v *Validator) scanText(text string) (core.InjectionMatch, bool) {
	v.detector.Reset()
	return v.detector.ScanString(text)
}
