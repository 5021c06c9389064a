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

// Package telemetry exposes Prometheus counters/histograms for the
// filter's own decisions, a structured audit log, and SampleKey, a
// deterministic sampling helper. The audit Logger itself writes every
// event; it does not call SampleKey.
package telemetry

import (
	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_guard_requests_total",
		Help: "Total requests seen by the filter, labeled by final decision",
	}, []string{"decision"})

	injectionMatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_guard_injection_matches_total",
		Help: "Total prompt-injection pattern matches, labeled by severity",
	}, []string{"severity"})

	piiMatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_guard_pii_matches_total",
		Help: "Total PII matches, labeled by PII type",
	}, []string{"type"})

	rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ai_guard_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	})

	stdioBypassTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_guard_stdio_bypass_attempts_total",
		Help: "Total detected STDIO transport bypass attempts, labeled by severity",
	}, []string{"severity"})

	tokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_guard_tokens_total",
		Help: "Total tokens observed in model responses, labeled by model",
	}, []string{"model"})

	bodyBytesScanned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ai_guard_body_bytes_scanned",
		Help:    "Distribution of request/response body bytes inspected per request",
		Buckets: prometheus.ExponentialBuckets(256, 4, 12),
	})
)

func init() {
	prometheus.MustRegister(
		requestsTotal,
		injectionMatchesTotal,
		piiMatchesTotal,
		rateLimitedTotal,
		stdioBypassTotal,
		tokensTotal,
		bodyBytesScanned,
	)
}

// ObserveRequest records a request's final decision (allow, block, skip).
func ObserveRequest(decision string) {
	requestsTotal.WithLabelValues(decision).Inc()
}

// ObserveInjectionMatch records a detected prompt-injection attempt.
func ObserveInjectionMatch(severity string) {
	injectionMatchesTotal.WithLabelValues(severity).Inc()
}

// ObservePIIMatch records a detected PII match.
func ObservePIIMatch(piiType string) {
	piiMatchesTotal.WithLabelValues(piiType).Inc()
}

// ObserveRateLimited records a request rejected by the rate limiter.
func ObserveRateLimited() {
	rateLimitedTotal.Inc()
}

// ObserveStdioBypass records a detected STDIO bypass attempt.
func ObserveStdioBypass(severity string) {
	stdioBypassTotal.WithLabelValues(severity).Inc()
}

// ObserveTokens records token usage attributed to a model.
func ObserveTokens(model string, total int) {
	if total <= 0 {
		return
	}
	tokensTotal.WithLabelValues(model).Add(float64(total))
}

// ObserveBodyBytes records how many body bytes were inspected for one
// request.
func ObserveBodyBytes(n int) {
	bodyBytesScanned.Observe(float64(n))
}

// SampleKey deterministically decides whether a given audit-log key
// (typically a request or trace ID) falls within rate's sampling
// fraction, using xxhash rather than a random draw so that repeated
// calls for the same key are stable and so the decision needs no shared
// mutable state between proxy workers.
func SampleKey(key string, rate float64) bool {
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	h := xxhash.Sum64String(key)
	threshold := uint64(rate * float64(^uint64(0)))
	return h <= threshold
}
