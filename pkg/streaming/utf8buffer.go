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

package streaming

import "unicode/utf8"

// Utf8Buffer absorbs multi-byte UTF-8 sequences that split across chunk
// boundaries ("split emoji"), so the pattern scanner never sees a partial
// code point and never needs to buffer more than 4 bytes.
type Utf8Buffer struct {
	leftover    [4]byte
	leftoverLen int
}

// ProcessedChunk is the result of feeding one chunk through Utf8Buffer.
type ProcessedChunk struct {
	// Prefix is a completed sequence assembled from the previous chunk's
	// leftover bytes plus the head of this chunk. Nil if there was nothing
	// to complete.
	Prefix []byte
	// Main is the valid, boundary-aligned remainder of this chunk.
	Main []byte
}

// IsContinuation reports whether b is a UTF-8 continuation byte (10xxxxxx).
func IsContinuation(b byte) bool { return b&0b11000000 == 0b10000000 }

// SequenceLength returns the expected total length of the UTF-8 sequence
// starting with the given lead byte. Invalid lead bytes are treated as
// length 1 so the scanner always makes forward progress.
func SequenceLength(lead byte) int {
	switch {
	case lead <= 0x7F:
		return 1
	case lead >= 0xC0 && lead <= 0xDF:
		return 2
	case lead >= 0xE0 && lead <= 0xEF:
		return 3
	case lead >= 0xF0 && lead <= 0xF7:
		return 4
	default:
		return 1
	}
}

// ProcessChunk handles any leftover bytes from the previous call, then
// returns the boundary-aligned content of this chunk. Any trailing
// incomplete sequence is buffered for the next call.
func (u *Utf8Buffer) ProcessChunk(chunk []byte) ProcessedChunk {
	var prefix []byte
	if u.leftoverLen > 0 {
		prefix = u.completeSequence(chunk)
	}

	var chunkStart int
	switch {
	case prefix != nil:
		expected := SequenceLength(u.leftover[0])
		consumed := expected - u.leftoverLen
		if consumed < 0 {
			consumed = 0
		}
		if consumed > len(chunk) {
			consumed = len(chunk)
		}
		chunkStart = consumed
	case u.leftoverLen > 0:
		start := 0
		for start < len(chunk) && IsContinuation(chunk[start]) {
			start++
		}
		chunkStart = start
	default:
		chunkStart = 0
	}

	if prefix != nil || u.leftoverLen > 0 {
		u.leftoverLen = 0
	}

	remaining := chunk[chunkStart:]
	validEnd, newLeftoverStart, newLeftoverLen := findValidBoundary(remaining)
	if newLeftoverLen > 0 {
		copy(u.leftover[:newLeftoverLen], remaining[newLeftoverStart:newLeftoverStart+newLeftoverLen])
		u.leftoverLen = newLeftoverLen
	}

	return ProcessedChunk{Prefix: prefix, Main: remaining[:validEnd]}
}

// completeSequence tries to finish the buffered sequence using the head of
// chunk. Returns nil if there aren't enough bytes yet, or if the assembled
// bytes are not valid UTF-8 (malformed input: treated as unrecoverable, the
// leftover is discarded by the caller resetting leftoverLen).
func (u *Utf8Buffer) completeSequence(chunk []byte) []byte {
	if u.leftoverLen == 0 || len(chunk) == 0 {
		return nil
	}
	expected := SequenceLength(u.leftover[0])
	needed := expected - u.leftoverLen
	if needed <= 0 || len(chunk) < needed {
		return nil
	}
	for i := 0; i < needed; i++ {
		if !IsContinuation(chunk[i]) {
			return nil
		}
	}
	complete := make([]byte, 0, expected)
	complete = append(complete, u.leftover[:u.leftoverLen]...)
	complete = append(complete, chunk[:needed]...)
	if !utf8.Valid(complete) {
		return nil
	}
	return complete
}

// findValidBoundary scans backward up to 4 bytes from the end of chunk to
// find an incomplete trailing sequence. Returns the index at which the
// chunk should be truncated (validEnd) and, if a sequence was left
// incomplete, its start index and the number of bytes available.
func findValidBoundary(chunk []byte) (validEnd int, leftoverStart int, leftoverLen int) {
	if len(chunk) == 0 {
		return 0, 0, 0
	}
	i := len(chunk)
	floor := len(chunk) - 4
	if floor < 0 {
		floor = 0
	}
	for i > 0 && i > floor {
		i--
		if !IsContinuation(chunk[i]) {
			expected := SequenceLength(chunk[i])
			available := len(chunk) - i
			if available < expected {
				return i, i, available
			}
			break
		}
	}
	return len(chunk), 0, 0
}

// Reset clears any buffered leftover bytes.
func (u *Utf8Buffer) Reset() { u.leftoverLen = 0 }
