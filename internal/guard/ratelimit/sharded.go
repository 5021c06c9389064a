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

package ratelimit

import (
	"sync"

	"github.com/dgryski/go-rendezvous"
)

// ShardedLimiter spreads per-identity state across N independent
// Limiters, each behind its own mutex, to collapse hot-counter
// contention by striping across shards rather than locking one shared
// map. Identities are stable across calls: rendezvous hashing sends the
// same identity to the same shard every time, so a given identity's
// window is never split across two shards.
//
// Useful when a single host process drives many concurrent goroutines
// against one logical limiter (a load generator, a multiplexed gateway
// embedding the filter as a library) rather than one Limiter per
// single-threaded worker.
type ShardedLimiter struct {
	shards []*shardedEntry
	hash   *rendezvous.Rendezvous
}

type shardedEntry struct {
	mu      sync.Mutex
	limiter *Limiter
}

func shardNodeName(i int) string {
	return "shard-" + string(rune('a'+i))
}

// NewShardedLimiter builds a ShardedLimiter with the given shard count,
// each shard configured with limits.
func NewShardedLimiter(shardCount int, limits Limits) *ShardedLimiter {
	if shardCount < 1 {
		shardCount = 1
	}
	names := make([]string, shardCount)
	shards := make([]*shardedEntry, shardCount)
	for i := 0; i < shardCount; i++ {
		names[i] = shardNodeName(i)
		shards[i] = &shardedEntry{limiter: NewLimiterWithLimits(limits)}
	}
	return &ShardedLimiter{
		shards: shards,
		hash:   rendezvous.New(names, xxhashSeed),
	}
}

func xxhashSeed(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

func (s *ShardedLimiter) shardFor(identity string) *shardedEntry {
	name := s.hash.Lookup(identity)
	for i := 0; i < len(s.shards); i++ {
		if shardNodeName(i) == name {
			return s.shards[i]
		}
	}
	return s.shards[0]
}

// CheckRequest routes identity to its shard and checks its request quota.
func (s *ShardedLimiter) CheckRequest(identity string, nowSecs uint64) Decision {
	sh := s.shardFor(identity)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.limiter.CheckRequest(identity, nowSecs)
}

// RecordTokens routes identity to its shard and records token usage.
func (s *ShardedLimiter) RecordTokens(identity string, tokens uint32, nowSecs uint64) Decision {
	sh := s.shardFor(identity)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.limiter.RecordTokens(identity, tokens, nowSecs)
}
