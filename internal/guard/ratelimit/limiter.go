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

// Package ratelimit implements per-identity, fixed-window request and
// token rate limiting.
//
// Each proxy worker owns its own Limiter and there is no cross-worker
// coordination, so enforcement is approximate across a fleet of workers
// but exact within one. Limiter itself takes no lock; callers that do
// need to shard across goroutines should use ShardedLimiter.
package ratelimit

import "fmt"

// Limits configures the request/token ceilings for one identity.
type Limits struct {
	RequestsPerMinute  uint32
	TokensPerMinute    uint32
	ConcurrentRequests uint32 // not enforced; tracked for reporting only
}

// DefaultLimits returns a conservative starting point for a single identity.
func DefaultLimits() Limits {
	return Limits{RequestsPerMinute: 100, TokensPerMinute: 100_000, ConcurrentRequests: 10}
}

type windowState struct {
	requestCount uint32
	tokenCount   uint32
	windowStart  uint64 // unix seconds
}

// WindowSeconds is the fixed tumbling-window size.
const WindowSeconds = 60

// Limiter tracks per-identity fixed windows. The zero value is not usable;
// construct with NewLimiter.
type Limiter struct {
	limits Limits
	state  map[string]*windowState
}

// NewLimiter builds a limiter with the default limits.
func NewLimiter() *Limiter { return NewLimiterWithLimits(DefaultLimits()) }

// NewLimiterWithLimits builds a limiter with explicit limits.
func NewLimiterWithLimits(limits Limits) *Limiter {
	return &Limiter{limits: limits, state: make(map[string]*windowState)}
}

// RateLimiter is the interface Controller drives: satisfied by both
// Limiter and ShardedLimiter, so a host can opt into sharding without
// the call site caring which one it holds.
type RateLimiter interface {
	CheckRequest(identity string, nowSecs uint64) Decision
	RecordTokens(identity string, tokens uint32, nowSecs uint64) Decision
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Limited      bool
	Reason       string
	Limit        uint32
	Current      uint32
	RetryAfterS  uint64
}

func (l *Limiter) getOrCreate(identity string, nowSecs uint64) *windowState {
	s, ok := l.state[identity]
	if !ok {
		s = &windowState{windowStart: nowSecs}
		l.state[identity] = s
		return s
	}
	if nowSecs-s.windowStart >= WindowSeconds {
		s.requestCount = 0
		s.tokenCount = 0
		s.windowStart = nowSecs
	}
	return s
}

func retryAfter(nowSecs, windowStart uint64) uint64 {
	elapsed := nowSecs - windowStart
	if elapsed > WindowSeconds {
		elapsed = WindowSeconds
	}
	return WindowSeconds - elapsed
}

// CheckRequest consumes one request slot for identity, returning Limited
// if the requests-per-minute ceiling has already been reached.
func (l *Limiter) CheckRequest(identity string, nowSecs uint64) Decision {
	s := l.getOrCreate(identity, nowSecs)
	if s.requestCount >= l.limits.RequestsPerMinute {
		return Decision{
			Limited:     true,
			Reason:      "requests_per_minute exceeded",
			Limit:       l.limits.RequestsPerMinute,
			Current:     s.requestCount,
			RetryAfterS: retryAfter(nowSecs, s.windowStart),
		}
	}
	s.requestCount++
	return Decision{}
}

// RecordTokens adds tokens to identity's window, returning Limited if
// doing so would exceed tokens-per-minute. The tokens are NOT recorded
// when the check fails (consistent with request checks being rejected
// before the increment).
func (l *Limiter) RecordTokens(identity string, tokens uint32, nowSecs uint64) Decision {
	s := l.getOrCreate(identity, nowSecs)
	if s.tokenCount+tokens > l.limits.TokensPerMinute {
		return Decision{
			Limited:     true,
			Reason:      "tokens_per_minute exceeded",
			Limit:       l.limits.TokensPerMinute,
			Current:     s.tokenCount,
			RetryAfterS: retryAfter(nowSecs, s.windowStart),
		}
	}
	s.tokenCount += tokens
	return Decision{}
}

// StateInfo is a read-only snapshot of an identity's current window.
type StateInfo struct {
	RequestCount uint32
	TokenCount   uint32
	WindowStart  uint64
}

// GetState returns the current window for identity, if any.
func (l *Limiter) GetState(identity string) (StateInfo, bool) {
	s, ok := l.state[identity]
	if !ok {
		return StateInfo{}, false
	}
	return StateInfo{RequestCount: s.requestCount, TokenCount: s.tokenCount, WindowStart: s.windowStart}, true
}

// Reset clears state for a single identity.
func (l *Limiter) Reset(identity string) { delete(l.state, identity) }

// ResetAll clears state for every identity.
func (l *Limiter) ResetAll() { l.state = make(map[string]*windowState) }

// RetryAfterHeader formats the seconds-until-reset for an HTTP
// Retry-After response header.
func RetryAfterHeader(d Decision) string { return fmt.Sprintf("%d", d.RetryAfterS) }
