package keystream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

const (
	// ChunkSize is the number of bytes harvested per tick.
	ChunkSize = 8
	// DefaultCapacity bounds the retained window (128 Ki ticks).
	DefaultCapacity = 1 << 20
)

var (
	ErrShortBuffer = errors.New("keystream: not enough bytes harvested")
)

// Buffer is the harvested keystream of one synchronization episode.
// It is not safe for concurrent use; a session owns its buffer.
//
// Once capacity is reached the buffer stops growing rather than sliding:
// the oldest bytes are where the sender's window starts, so dropping them
// would lose the window. Space is only freed by Consume.
type Buffer struct {
	data     []byte
	capacity int
	consumed int
}

// NewBuffer returns a buffer that retains at most capacity bytes.
func NewBuffer(capacity int) *Buffer {
	if capacity < WindowSize {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity}
}

// Append harvests the little-endian bytes of y. It reports false without
// appending when the buffer is full.
func (b *Buffer) Append(y float64) bool {
	if b.Full() {
		return false
	}
	b.data = binary.LittleEndian.AppendUint64(b.data, math.Float64bits(y))
	return true
}

// Len returns the number of unconsumed bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Cap returns the retention bound.
func (b *Buffer) Cap() int { return b.capacity }

// Full reports whether another tick would exceed the retention bound.
func (b *Buffer) Full() bool { return len(b.data)+ChunkSize > b.capacity }

// Consumed returns how many bytes have been handed out and dropped since the
// last Reset.
func (b *Buffer) Consumed() int { return b.consumed }

// Window returns a copy of the n bytes at off.
func (b *Buffer) Window(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(b.data) {
		return nil, ErrShortBuffer
	}
	out := make([]byte, n)
	copy(out, b.data[off:off+n])
	return out, nil
}

// Consume drops the first n bytes.
func (b *Buffer) Consume(n int) {
	if n > len(b.data) {
		n = len(b.data)
	}
	b.data = b.data[n:]
	b.consumed += n
}

// Find returns the offset of the first occurrence of fp.
func (b *Buffer) Find(fp []byte) (int, bool) {
	return b.FindFrom(fp, 0)
}

// FindFrom is Find starting at offset from, for callers that already know
// the earlier bytes do not match.
func (b *Buffer) FindFrom(fp []byte, from int) (int, bool) {
	if len(fp) == 0 || from < 0 || from > len(b.data) {
		return 0, false
	}
	i := bytes.Index(b.data[from:], fp)
	if i < 0 {
		return 0, false
	}
	return from + i, true
}

// Reset empties the buffer for a new episode.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.consumed = 0
}
