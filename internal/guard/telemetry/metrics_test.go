// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package telemetry

import "testing"

func TestSampleKeyBounds(t *testing.T) {
	if SampleKey("any", 0) {
		t.Fatal("rate 0 should never sample")
	}
	if !SampleKey("any", 1) {
		t.Fatal("rate 1 should always sample")
	}
}

func TestSampleKeyDeterministic(t *testing.T) {
	a := SampleKey("req-42", 0.5)
	b := SampleKey("req-42", 0.5)
	if a != b {
		t.Fatal("expected sampling decision to be deterministic for the same key")
	}
}

func TestObserveFunctionsDoNotPanic(t *testing.T) {
	ObserveRequest("allowed")
	ObserveInjectionMatch("high")
	ObservePIIMatch("ssn")
	ObserveRateLimited()
	ObserveStdioBypass("medium")
	ObserveTokens("gpt-4", 100)
	ObserveBodyBytes(2048)
}
