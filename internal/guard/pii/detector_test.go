// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package pii

import "testing"

func TestSSNDetection(t *testing.T) {
	d := New(ActionLog)
	matches := d.Scan("My SSN is 123-45-6789")
	if len(matches) != 1 || matches[0].Type != SSN {
		t.Fatalf("matches = %+v, want one SSN match", matches)
	}
}

func TestCreditCardDetection(t *testing.T) {
	d := New(ActionLog)
	matches := d.Scan("Card: 4111-1111-1111-1111")
	if len(matches) != 1 || matches[0].Type != CreditCard {
		t.Fatalf("matches = %+v, want one CreditCard match", matches)
	}
}

func TestCreditCardSeventeenDigitsNotMatched(t *testing.T) {
	d := New(ActionLog)
	matches := d.Scan("Account: 41111111111111112")
	for _, m := range matches {
		if m.Type == CreditCard {
			t.Fatalf("matches = %+v, want no CreditCard match on a 17-digit run", matches)
		}
	}
}

func TestEmailDetection(t *testing.T) {
	d := New(ActionLog)
	matches := d.Scan("Contact me at user@example.com for details")
	if len(matches) != 1 || matches[0].Type != Email {
		t.Fatalf("matches = %+v, want one Email match", matches)
	}
}

func TestPhoneDetection(t *testing.T) {
	d := New(ActionLog)
	matches := d.Scan("Call me at 555-123-4567")
	if len(matches) != 1 || matches[0].Type != Phone {
		t.Fatalf("matches = %+v, want one Phone match", matches)
	}
}

func TestNoPII(t *testing.T) {
	d := New(ActionLog)
	if d.ContainsPII("What is the weather like today?") {
		t.Fatal("expected no PII")
	}
}

func TestMultiplePII(t *testing.T) {
	d := New(ActionLog)
	matches := d.Scan("SSN: 123-45-6789, Email: test@example.com")
	if len(matches) < 2 {
		t.Fatalf("matches = %+v, want at least 2", matches)
	}
}
