// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package streaming

import (
	"bytes"
	"testing"
)

func TestUtf8BufferASCIIPassthrough(t *testing.T) {
	var buf Utf8Buffer
	chunk := []byte("Hello, World!")
	p := buf.ProcessChunk(chunk)
	if p.Prefix != nil {
		t.Fatal("expected no prefix for pure ASCII")
	}
	if !bytes.Equal(p.Main, chunk) {
		t.Fatalf("main = %q, want %q", p.Main, chunk)
	}
}

func TestUtf8BufferSplitEmoji(t *testing.T) {
	var buf Utf8Buffer
	emoji := []byte{0xF0, 0x9F, 0xA6, 0x80} // crab emoji, 4 bytes

	chunk1 := []byte{'H', 'i', ' ', 0xF0, 0x9F}
	p1 := buf.ProcessChunk(chunk1)
	if p1.Prefix != nil {
		t.Fatal("expected no prefix on first chunk")
	}
	if !bytes.Equal(p1.Main, []byte("Hi ")) {
		t.Fatalf("main = %q, want %q", p1.Main, "Hi ")
	}

	chunk2 := []byte{0xA6, 0x80, '!'}
	p2 := buf.ProcessChunk(chunk2)
	if p2.Prefix == nil {
		t.Fatal("expected completed emoji prefix")
	}
	if !bytes.Equal(p2.Prefix, emoji) {
		t.Fatalf("prefix = %x, want %x", p2.Prefix, emoji)
	}
	if !bytes.Equal(p2.Main, []byte("!")) {
		t.Fatalf("main = %q, want %q", p2.Main, "!")
	}
}

func TestSequenceLength(t *testing.T) {
	cases := []struct {
		lead byte
		want int
	}{
		{'A', 1},
		{0xC3, 2},
		{0xE2, 3},
		{0xF0, 4},
	}
	for _, c := range cases {
		if got := SequenceLength(c.lead); got != c.want {
			t.Errorf("SequenceLength(%#x) = %d, want %d", c.lead, got, c.want)
		}
	}
}

func TestIsContinuation(t *testing.T) {
	if IsContinuation('A') {
		t.Error("'A' should not be a continuation byte")
	}
	if !IsContinuation(0x80) {
		t.Error("0x80 should be a continuation byte")
	}
	if !IsContinuation(0xBF) {
		t.Error("0xBF should be a continuation byte")
	}
	if IsContinuation(0xC0) {
		t.Error("0xC0 is a lead byte, not a continuation byte")
	}
}
