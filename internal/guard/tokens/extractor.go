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

// Package tokens extracts token-usage accounting from AI provider
// responses (OpenAI- and Anthropic-shaped JSON, plus proxy usage
// headers) and attributes an estimated cost from a static pricing table.
package tokens

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Usage is the normalized token accounting for one response.
type Usage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
	EstimatedCostUSD *float64
	Model            string
}

// CalculateTotal fills TotalTokens from Prompt+Completion if it is unset.
func (u *Usage) CalculateTotal() {
	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
}

type pricing struct {
	inputPer1k  float64
	outputPer1k float64
}

// Extractor extracts and prices token usage from provider responses.
type Extractor struct {
	pricing map[string]pricing
}

// NewExtractor builds an extractor with the built-in pricing table
// (approximate 2024-era OpenAI and Anthropic list prices).
func NewExtractor() *Extractor {
	return &Extractor{pricing: map[string]pricing{
		"gpt-4":           {inputPer1k: 0.03, outputPer1k: 0.06},
		"gpt-4-turbo":     {inputPer1k: 0.01, outputPer1k: 0.03},
		"gpt-3.5-turbo":   {inputPer1k: 0.0005, outputPer1k: 0.0015},
		"claude-3-opus":   {inputPer1k: 0.015, outputPer1k: 0.075},
		"claude-3-sonnet": {inputPer1k: 0.003, outputPer1k: 0.015},
	}}
}

// ExtractFromHeaders reads proxy-added usage headers
// (x-usage-prompt-tokens, x-usage-completion-tokens,
// x-usage-total-tokens). Returns ok=false if none were present.
func (e *Extractor) ExtractFromHeaders(headers map[string]string) (Usage, bool) {
	var usage Usage
	found := false
	for name, value := range headers {
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "x-usage-prompt-tokens"):
			if v, err := strconv.ParseUint(value, 10, 32); err == nil {
				usage.PromptTokens = uint32(v)
				found = true
			}
		case strings.Contains(lower, "x-usage-completion-tokens"):
			if v, err := strconv.ParseUint(value, 10, 32); err == nil {
				usage.CompletionTokens = uint32(v)
				found = true
			}
		case strings.Contains(lower, "x-usage-total-tokens"):
			if v, err := strconv.ParseUint(value, 10, 32); err == nil {
				usage.TotalTokens = uint32(v)
				found = true
			}
		}
	}
	if !found {
		return Usage{}, false
	}
	usage.CalculateTotal()
	return usage, true
}

type openAIResponse struct {
	Usage *openAIUsage `json:"usage"`
	Model string       `json:"model"`
}

type openAIUsage struct {
	PromptTokens     *uint32 `json:"prompt_tokens"`
	CompletionTokens *uint32 `json:"completion_tokens"`
	TotalTokens      *uint32 `json:"total_tokens"`
}

type anthropicResponse struct {
	Usage *anthropicUsage `json:"usage"`
	Model string          `json:"model"`
}

type anthropicUsage struct {
	InputTokens  *uint32 `json:"input_tokens"`
	OutputTokens *uint32 `json:"output_tokens"`
}

// ExtractFromBody parses a JSON response body and extracts token usage,
// trying the OpenAI shape first, then the Anthropic shape.
func (e *Extractor) ExtractFromBody(body []byte) (Usage, bool) {
	if usage, ok := e.extractOpenAI(body); ok {
		return usage, true
	}
	if usage, ok := e.extractAnthropic(body); ok {
		return usage, true
	}
	return Usage{}, false
}

func derefU32(p *uint32) uint32 {
	if p == nil {
		return 0
	}
	return *p
}

func (e *Extractor) extractOpenAI(body []byte) (Usage, bool) {
	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Usage == nil {
		return Usage{}, false
	}
	if resp.Usage.PromptTokens == nil && resp.Usage.CompletionTokens == nil && resp.Usage.TotalTokens == nil {
		return Usage{}, false
	}
	usage := Usage{
		PromptTokens:     derefU32(resp.Usage.PromptTokens),
		CompletionTokens: derefU32(resp.Usage.CompletionTokens),
		TotalTokens:      derefU32(resp.Usage.TotalTokens),
		Model:            resp.Model,
	}
	usage.CalculateTotal()
	if resp.Model != "" {
		if cost, ok := e.CalculateCost(resp.Model, usage); ok {
			usage.EstimatedCostUSD = &cost
		}
	}
	return usage, true
}

func (e *Extractor) extractAnthropic(body []byte) (Usage, bool) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Usage == nil {
		return Usage{}, false
	}
	usage := Usage{
		PromptTokens:     derefU32(resp.Usage.InputTokens),
		CompletionTokens: derefU32(resp.Usage.OutputTokens),
		Model:            resp.Model,
	}
	usage.CalculateTotal()
	if resp.Model != "" {
		if cost, ok := e.CalculateCost(resp.Model, usage); ok {
			usage.EstimatedCostUSD = &cost
		}
	}
	return usage, true
}

// CalculateCost prices usage against the longest pricing-table key that
// is a substring of model (so "gpt-4-turbo" is priced as gpt-4-turbo,
// not gpt-4). Returns ok=false for unknown models.
func (e *Extractor) CalculateCost(model string, usage Usage) (float64, bool) {
	best := ""
	for key := range e.pricing {
		if strings.Contains(model, key) && (len(key) > len(best) || (len(key) == len(best) && key < best)) {
			best = key
		}
	}
	if best == "" {
		return 0, false
	}
	p := e.pricing[best]
	inputCost := (float64(usage.PromptTokens) / 1000.0) * p.inputPer1k
	outputCost := (float64(usage.CompletionTokens) / 1000.0) * p.outputPer1k
	return inputCost + outputCost, true
}
