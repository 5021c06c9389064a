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
	"encoding/json"
	"fmt"

	"aiguard/internal/guard/config"
	"aiguard/internal/guard/pii"
	"aiguard/internal/guard/ratelimit"
	"aiguard/internal/guard/tokens"
)

// Phase identifies where in a single request's lifecycle the controller
// currently sits.
type Phase int

const (
	PhaseInspecting Phase = iota
	PhaseScanning
	PhaseDecided
	PhaseAnnotating
)

// Decision is the controller's final disposition for a request.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionBlock
	DecisionSkip
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionBlock:
		return "block"
	default:
		return "skip"
	}
}

// BlockedResponse is the synthesized HTTP body returned to the caller
// when the controller blocks a request, alongside the
// x-ai-guard-blocked / x-ai-guard-action response headers.
type BlockedResponse struct {
	Error     string `json:"error"`
	Reason    string `json:"reason"`
	BlockedBy string `json:"blocked_by"`
	Severity  string `json:"severity,omitempty"`
}

// Controller drives one request through Inspect -> Scanning ->
// Block/Allow/Skip -> Annotate. A Controller is scoped to a single
// request; callers construct a fresh one per request from a shared
// *Shared (limiter, injection patterns, etc. configured once per
// worker).
type Controller struct {
	shared *Shared

	phase     Phase
	decision  Decision
	reason    string
	blockedBy string
	severity  InjectionSeverity

	bodyScanner     *BodyScanner
	bodyBytesCursor int
	piiMatches      []pii.Match
	usage           tokens.Usage
	hasUsage        bool
}

// Shared holds the per-worker state that every Controller for that
// worker reuses: injection/PII detection configuration and the rate
// limiter (which does need to persist across requests to enforce
// windows).
type Shared struct {
	Config  config.Config
	Limiter ratelimit.RateLimiter
	PII     *pii.Detector
	Tokens  *tokens.Extractor
}

// NewShared builds per-worker shared state from cfg. Config.RateLimitShards
// greater than 1 opts into a ShardedLimiter instead of a single Limiter,
// for hosts that drive many concurrent goroutines against one Shared.
func NewShared(cfg config.Config) *Shared {
	var limiter ratelimit.RateLimiter
	if cfg.RateLimitShards > 1 {
		limiter = ratelimit.NewShardedLimiter(cfg.RateLimitShards, ratelimit.DefaultLimits())
	} else {
		limiter = ratelimit.NewLimiter()
	}
	return &Shared{
		Config:  cfg,
		Limiter: limiter,
		PII:     pii.New(pii.ActionRedact),
		Tokens:  tokens.NewExtractor(),
	}
}

// NewController starts a fresh per-request state machine.
func NewController(shared *Shared) *Controller {
	return &Controller{
		shared:      shared,
		phase:       PhaseInspecting,
		bodyScanner: NewBodyScanner(shared.Config.BlockedPatterns, shared.Config.RingBufferSize, shared.Config.MaxBodySize),
	}
}

// CheckRateLimit consumes one request slot for identity before body
// inspection begins. A limited request is a terminal Block decision:
// the body is never scanned.
func (c *Controller) CheckRateLimit(identity string, nowSecs uint64) bool {
	if c.phase != PhaseInspecting {
		return c.decision != DecisionBlock
	}
	d := c.shared.Limiter.CheckRequest(identity, nowSecs)
	if d.Limited {
		c.setDecision(DecisionBlock, d.Reason, "rate_limiter", SeverityLow)
		return false
	}
	c.phase = PhaseScanning
	return true
}

// OnBodyChunk feeds one body chunk through the streaming scanner and PII
// detector. Call repeatedly as chunks arrive; once the controller
// reaches a terminal decision, further calls are no-ops returning that
// same decision.
func (c *Controller) OnBodyChunk(chunk []byte, endOfStream bool) Decision {
	if c.phase == PhaseDecided {
		return c.decision
	}
	c.bodyBytesCursor += len(chunk)

	result := c.bodyScanner.OnBodyChunk(chunk, endOfStream)
	switch result.Decision {
	case ScanBlock:
		c.setDecision(DecisionBlock, result.Reason, "injection_detector", result.Severity)
		return c.decision
	case ScanSkip:
		c.setDecision(DecisionSkip, result.Reason, "body_scanner", SeverityLow)
		return c.decision
	}

	for _, m := range c.shared.PII.Scan(string(chunk)) {
		if c.piiTypeEnabled(m.Type) {
			c.piiMatches = append(c.piiMatches, m)
		}
	}

	if result.Decision == ScanAllow {
		c.setDecision(DecisionAllow, "", "", SeverityLow)
	}
	return c.decision
}

// OnResponseBody extracts token usage from a (typically buffered, since
// responses are usually small JSON) model response body, for annotation
// headers and cost telemetry. Never itself a source of a block decision.
func (c *Controller) OnResponseBody(body []byte) {
	if usage, ok := c.shared.Tokens.ExtractFromBody(body); ok {
		c.usage = usage
		c.hasUsage = true
	}
}

// BytesProcessed returns the cursor into the request body the
// controller has consumed so far, so a host can avoid re-scanning bytes
// it has already handed over.
func (c *Controller) BytesProcessed() int { return c.bodyBytesCursor }

// PIIMatches returns every PII match accumulated across body chunks.
func (c *Controller) PIIMatches() []pii.Match { return c.piiMatches }

// Usage returns the extracted token usage, if any.
func (c *Controller) Usage() (tokens.Usage, bool) { return c.usage, c.hasUsage }

// Decision returns the controller's current (possibly non-terminal)
// decision.
func (c *Controller) Decision() Decision { return c.decision }

// IsTerminal reports whether the controller has reached Block, Allow, or
// Skip and will not change its decision for the remainder of the request,
// matching BodyScanner's own terminal-decision stickiness.
func (c *Controller) IsTerminal() bool { return c.phase == PhaseDecided }

func (c *Controller) piiTypeEnabled(t pii.Type) bool {
	for _, name := range c.shared.Config.PIITypes {
		if name == t.String() {
			return true
		}
	}
	return false
}

func (c *Controller) setDecision(d Decision, reason, blockedBy string, severity InjectionSeverity) {
	c.decision = d
	c.reason = reason
	c.blockedBy = blockedBy
	c.severity = severity
	c.phase = PhaseDecided
}

// BuildBlockedResponse synthesizes the JSON body and header set for a
// blocked request. Callers write BlockedResponse.Error's HTTP status as
// 403.
func (c *Controller) BuildBlockedResponse() (BlockedResponse, map[string]string) {
	resp := BlockedResponse{
		Error:     "request blocked by ai-guard",
		Reason:    c.reason,
		BlockedBy: c.blockedBy,
		Severity:  c.severity.String(),
	}
	headers := map[string]string{
		"x-ai-guard-blocked": "true",
		"x-ai-guard-action":  c.blockedBy,
	}
	return resp, headers
}

// BuildAnnotationHeaders synthesizes the response headers describing
// what the controller observed for a non-blocked request.
func (c *Controller) BuildAnnotationHeaders() map[string]string {
	headers := map[string]string{
		"x-ai-guard-inspected": "true",
	}
	if c.hasUsage {
		headers["x-ai-guard-tokens-total"] = fmt.Sprintf("%d", c.usage.TotalTokens)
	}
	return headers
}

// MarshalBlockedResponse renders BuildBlockedResponse's body as JSON
// bytes for writing directly to the downstream connection.
func (c *Controller) MarshalBlockedResponse() ([]byte, error) {
	resp, _ := c.BuildBlockedResponse()
	return json.Marshal(resp)
}
