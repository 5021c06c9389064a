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

// Package config loads filter configuration from the host's plugin
// configuration blob (an inline JSON document, not a file on disk: the
// filter runs inside a sandboxed proxy worker with no filesystem access
// of its own).
package config

import (
	"encoding/json"
	"fmt"
)

// Config is the filter's full runtime configuration.
type Config struct {
	BlockedPatterns   []string `json:"blocked_patterns"`
	PIITypes          []string `json:"pii_types"`
	MCPAllowedMethods []string `json:"mcp_allowed_methods"`
	MaxBodySize       int      `json:"max_body_size"`
	RingBufferSize    int      `json:"ring_buffer_size"`
	LogMatches        bool     `json:"log_matches"`
	// RateLimitShards selects the rate limiter implementation: 0 or 1
	// uses a single Limiter; any larger value stripes identities across
	// that many ShardedLimiter shards. Only worth raising when one
	// filter instance is driving enough concurrent goroutines against a
	// shared limiter for map-lock contention to matter.
	RateLimitShards int `json:"rate_limit_shards"`
}

const (
	defaultMaxBodySize    = 10 * 1024 * 1024
	defaultRingBufferSize = 64 * 1024
)

func defaultBlockedPatterns() []string {
	return []string{
		"ignore previous instructions",
		"ignore all previous",
		"disregard previous",
		"forget your instructions",
		"override your instructions",
		"ignore your system prompt",
		"bypass your restrictions",
		"jailbreak",
		"DAN mode",
		"delete database",
		"drop table",
		"rm -rf",
	}
}

func defaultPIITypes() []string {
	return []string{"ssn", "credit_card", "email"}
}

func defaultMCPMethods() []string {
	return []string{"*"}
}

// Default returns the built-in configuration used when no plugin
// configuration is supplied, or when it fails to parse.
func Default() Config {
	return Config{
		BlockedPatterns:   defaultBlockedPatterns(),
		PIITypes:          defaultPIITypes(),
		MCPAllowedMethods: defaultMCPMethods(),
		MaxBodySize:       defaultMaxBodySize,
		RingBufferSize:    defaultRingBufferSize,
		LogMatches:        true,
		RateLimitShards:   1,
	}
}

// Load parses a JSON configuration document, filling in built-in
// defaults for any field the document omits. A malformed document is
// reported as an error; callers on the hot path should fail open to
// Default() rather than refuse to start.
func Load(data []byte) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing filter config: %w", err)
	}
	return cfg, nil
}

// IsMCPMethodAllowed reports whether method passes the configured
// allow-list, where a single "*" entry allows every method.
func (c Config) IsMCPMethodAllowed(method string) bool {
	for _, m := range c.MCPAllowedMethods {
		if m == "*" || m == method {
			return true
		}
	}
	return false
}
