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

// RingBuffer is a fixed-capacity circular store that scans bytes for
// patterns as they are written. Memory stays flat regardless of how much
// of the body has streamed through: old bytes are simply overwritten.
type RingBuffer struct {
	buffer       []byte
	capacity     int
	writePos     int
	totalWritten int
	scanner      *Scanner
	utf8         Utf8Buffer
}

// NewRingBuffer allocates a ring buffer of the given capacity once; it
// never grows.
func NewRingBuffer(capacity int, patterns []Pattern) *RingBuffer {
	return &RingBuffer{
		buffer:   make([]byte, capacity),
		capacity: capacity,
		scanner:  NewScanner(patterns),
	}
}

// RingBufferFromStrings builds a ring buffer from plain literals.
func RingBufferFromStrings(capacity int, literals []string) *RingBuffer {
	patterns := make([]Pattern, len(literals))
	for i, l := range literals {
		patterns[i] = NewPattern(l)
	}
	return NewRingBuffer(capacity, patterns)
}

// ProcessChunk handles UTF-8 boundary reassembly, writes the result into
// the ring, and scans it for patterns. It never buffers the chunk itself:
// on return, only up to 4 leftover UTF-8 bytes survive internally.
func (r *RingBuffer) ProcessChunk(chunk []byte) (Match, bool) {
	processed := r.utf8.ProcessChunk(chunk)

	if processed.Prefix != nil {
		if m, ok := r.writeAndScan(processed.Prefix); ok {
			return m, true
		}
	}
	return r.writeAndScan(processed.Main)
}

func (r *RingBuffer) writeAndScan(b []byte) (Match, bool) {
	for _, c := range b {
		r.buffer[r.writePos] = c
		r.writePos = (r.writePos + 1) % r.capacity
		r.totalWritten++

		if m, ok := r.scanner.ScanByte(c); ok {
			return m, true
		}
	}
	return Match{}, false
}

// TotalWritten returns the number of bytes written into the ring so far.
func (r *RingBuffer) TotalWritten() int { return r.totalWritten }

// BytesScanned returns the number of bytes the pattern scanner has seen.
func (r *RingBuffer) BytesScanned() int { return r.scanner.BytesScanned() }

// Capacity returns the ring's fixed capacity.
func (r *RingBuffer) Capacity() int { return r.capacity }

// PatternCount returns the number of patterns being scanned.
func (r *RingBuffer) PatternCount() int { return r.scanner.PatternCount() }

// Reset clears scan state. The underlying buffer bytes are left as-is;
// they are overwritten on the next write.
func (r *RingBuffer) Reset() {
	r.writePos = 0
	r.totalWritten = 0
	r.scanner.Reset()
	r.utf8.Reset()
}

// RecentBytes returns up to count most-recently-written bytes, oldest
// first. Useful for audit context around a match.
func (r *RingBuffer) RecentBytes(count int) []byte {
	if count > r.capacity {
		count = r.capacity
	}
	if count > r.totalWritten {
		count = r.totalWritten
	}
	out := make([]byte, count)
	for i := 0; i < count; i++ {
		var pos int
		if r.writePos >= i+1 {
			pos = r.writePos - i - 1
		} else {
			pos = r.capacity - (i + 1 - r.writePos)
		}
		out[count-1-i] = r.buffer[pos]
	}
	return out
}
