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

// Package persistence provides an optional shared sink for audit events,
// so that events emitted by independent proxy workers can be read back
// from one place rather than scraped out of each worker's own log.
// Nothing in the enforcement path depends on this package: a sink
// failure never blocks or delays a request decision.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aiguard/internal/guard/telemetry"
)

// RedisPusher abstracts the minimal surface needed from a Redis client:
// pushing onto a capped list. Implementations typically wrap
// github.com/redis/go-redis/v9's Cmdable.
type RedisPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) error
	LTrim(ctx context.Context, key string, start, stop int64) error
}

// RedisSink mirrors audit events into a capped Redis list, keyed by
// event type, so an out-of-process reader (a log shipper, an on-call
// dashboard) can tail recent decisions across every worker sharing the
// same Redis instance.
type RedisSink struct {
	client   RedisPusher
	ctx      context.Context
	maxItems int64
}

// NewRedisSink builds a sink bounding each event-type list to maxItems
// entries (oldest are trimmed). A background context is used for
// best-effort fire-and-forget writes; callers needing cancellation
// should wrap client accordingly.
func NewRedisSink(client RedisPusher, maxItems int64) *RedisSink {
	if maxItems <= 0 {
		maxItems = 10_000
	}
	return &RedisSink{client: client, ctx: context.Background(), maxItems: maxItems}
}

// Record implements telemetry.Sink. Marshal failures and Redis errors
// are swallowed: the audit sink is observability, not the source of
// truth for a request's decision.
func (s *RedisSink) Record(ev telemetry.AuditEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	key := fmt.Sprintf("ai-guard:audit:%s", ev.EventType)
	if err := s.client.LPush(s.ctx, key, string(b)); err != nil {
		return
	}
	_ = s.client.LTrim(s.ctx, key, 0, s.maxItems-1)
}

// auditTTL is how long a capped audit list is allowed to go without a
// new entry before an operator should treat it as stale; informational
// only, not enforced by this package.
const auditTTL = 24 * time.Hour
