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

// Overview:
//   ai-guard-demo is a tiny HTTP harness that exercises the filter
//   end-to-end outside of any proxy host: it terminates a raw HTTP
//   request, runs the body through the Controller state machine, and
//   either forwards a synthesized "allow" response or writes the 403
//   block body the filter would otherwise hand back to an Envoy-style
//   caller.
//
// Usage:
//   go run ./cmd/ai-guard-demo -http :9090
//   Endpoints:
//     POST /inspect   → runs body through the filter, returns decision + headers
//     POST /mcp       → validates a JSON-RPC body against the MCP allow-list
//     POST /a2a       → validates an A2A message/task envelope
//     GET  /metrics   → Prometheus metrics
//     GET  /healthz   → liveness probe
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"aiguard/internal/guard/config"
	"aiguard/internal/guard/core"
	"aiguard/internal/guard/persistence"
	"aiguard/internal/guard/protocols/a2a"
	"aiguard/internal/guard/protocols/mcp"
	"aiguard/internal/guard/telemetry"
)

func main() {
	addr := flag.String("http", ":9090", "HTTP listen address")
	configPath := flag.String("config", "", "path to a JSON filter configuration file (optional)")
	redisAddr := flag.String("redis", "", "address of a Redis instance to mirror audit events to (optional)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("read config: %v", err)
		}
		parsed, err := config.Load(data)
		if err != nil {
			guardErr := core.WrapError(core.ErrConfigInvalid, "parsing filter config", err)
			log.Printf("ai-guard: %v, falling back to defaults", guardErr)
		} else {
			cfg = parsed
		}
	}

	shared := core.NewShared(cfg)
	mcpHandler := mcp.NewHandler(cfg.MCPAllowedMethods)
	mcpHandler.InitPatterns(cfg.BlockedPatterns, cfg.RingBufferSize)
	audit := telemetry.NewLogger()

	if *redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		sink := persistence.NewRedisSink(persistence.NewGoRedisAdapter(client), 10_000)
		audit = audit.WithSink(sink)
		log.Printf("ai-guard: mirroring audit events to redis at %s", *redisAddr)
	}

	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "time": time.Now().UTC()})
	})

	http.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		identity := r.Header.Get("x-ai-guard-identity")
		if identity == "" {
			identity = r.RemoteAddr
		}

		c := core.NewController(shared)
		if !c.CheckRateLimit(identity, uint64(time.Now().Unix())) {
			writeBlocked(w, c, audit)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, int64(cfg.MaxBodySize)+1))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		decision := c.OnBodyChunk(body, true)
		telemetry.ObserveBodyBytes(len(body))
		telemetry.ObserveRequest(decision.String())

		if decision == core.DecisionBlock {
			writeBlocked(w, c, audit)
			return
		}

		for _, m := range c.PIIMatches() {
			telemetry.ObservePIIMatch(m.Type.String())
		}

		headers := c.BuildAnnotationHeaders()
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"decision":    decision.String(),
			"pii_matches": len(c.PIIMatches()),
		})
		audit.Emit(telemetry.AuditEvent{EventType: telemetry.EventRequestAllowed, Identity: identity})
	})

	http.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		headers := flattenHeaders(r.Header)
		transport := mcp.DetectTransport(headers)
		if !transport.IsAllowed() {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "transport blocked: " + transport.String()})
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		req, err := mcpHandler.ValidateRequest(body, headers, transport)
		if err != nil {
			writeProtocolError(w, audit, err)
			return
		}

		for _, a := range req.StdioAttempts {
			telemetry.ObserveStdioBypass(a.Severity.String())
			audit.Emit(telemetry.AuditEvent{
				EventType: telemetry.EventStdioBypass,
				Reason:    a.Description,
				Severity:  a.Severity.String(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"method":    req.RPC.Method,
			"transport": req.Transport.String(),
		})
	})

	a2aHandler := a2a.NewHandler()

	http.HandleFunc("/a2a", func(w http.ResponseWriter, r *http.Request) {
		headers := flattenHeaders(r.Header)

		if _, err := a2aHandler.Security().CheckAuthentication(headers); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		if binding, ok := a2a.DetectBinding(headers); ok && !a2aHandler.IsBindingAllowed(binding) {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "binding not allowed: " + binding.String()})
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("kind") == "task" {
			task, err := a2aHandler.ValidateTask(body)
			if err != nil {
				writeProtocolError(w, audit, err)
				return
			}
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]any{"taskId": task.TaskID, "state": task.Status.State})
			return
		}

		msg, err := a2aHandler.ValidateMessage(body)
		if err != nil {
			writeProtocolError(w, audit, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"messageId": msg.MessageID, "role": msg.Role})
	})

	go func() {
		log.Printf("ai-guard-demo listening on %s", *addr)
		if err := http.ListenAndServe(*addr, nil); err != nil {
			log.Fatalf("http: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}

func writeBlocked(w http.ResponseWriter, c *core.Controller, audit *telemetry.Logger) {
	resp, headers := c.BuildBlockedResponse()
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(resp)
	telemetry.ObserveRequest(c.Decision().String())
	if resp.BlockedBy == "injection_detector" {
		telemetry.ObserveInjectionMatch(resp.Severity)
	}
	audit.Emit(telemetry.AuditEvent{
		EventType: telemetry.EventRequestBlocked,
		Reason:    resp.Reason,
		Severity:  resp.Severity,
	})
}

// writeProtocolError writes a 400 response for a protocol-level
// validation failure (malformed JSON-RPC, a disallowed MCP method, an
// A2A envelope that fails schema checks) and records it as a GuardError
// in the audit log, mirroring writeBlocked's treatment of filter
// decisions.
func writeProtocolError(w http.ResponseWriter, audit *telemetry.Logger, err error) {
	guardErr := core.WrapError(core.ErrProtocolInvalid, "request validation", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	audit.Emit(telemetry.AuditEvent{
		EventType: telemetry.EventRequestBlocked,
		Reason:    guardErr.Error(),
	})
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
