package stream

import "io"

// MemorySource is an in-memory Source. Writes append to an internal slice,
// reads consume from the front. Useful for tests, for capturing a stream's
// flushed output, and for piping between in-process components.
type MemorySource struct {
	buf    []byte
	pos    int // read position
	closed bool
}

// NewMemorySource creates an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

// NewMemorySourceBytes creates a MemorySource pre-loaded with b. The slice
// is used directly until the first write grows it.
func NewMemorySourceBytes(b []byte) *MemorySource {
	return &MemorySource{buf: b}
}

// Good reports whether the source is still open.
func (m *MemorySource) Good() bool { return !m.closed }

// Write appends p to the internal buffer.
func (m *MemorySource) Write(p []byte) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	m.buf = append(m.buf, p...)
	return len(p), nil
}

// Flush is a no-op; memory needs no persisting.
func (m *MemorySource) Flush() error { return nil }

// Read consumes up to len(p) bytes from the front.
func (m *MemorySource) Read(p []byte) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	if m.pos >= len(m.buf) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += n
	return n, nil
}

// Peek copies up to len(p) bytes without consuming them.
func (m *MemorySource) Peek(p []byte) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	if m.pos >= len(m.buf) {
		return 0, nil
	}
	return copy(p, m.buf[m.pos:]), nil
}

// Available returns the number of unread bytes.
func (m *MemorySource) Available() int {
	if n := len(m.buf) - m.pos; n > 0 {
		return n
	}
	return 0
}

// Skip discards up to n unread bytes.
func (m *MemorySource) Skip(n int) error {
	if m.closed {
		return ErrClosed
	}
	if n < 0 {
		return ErrSkipNegative
	}
	m.pos += n
	if m.pos > len(m.buf) {
		m.pos = len(m.buf)
	}
	return nil
}

// Bytes returns the full captured contents, including already-read bytes.
func (m *MemorySource) Bytes() []byte { return m.buf }

// Len returns the total number of bytes held.
func (m *MemorySource) Len() int { return len(m.buf) }

// Reset drops all contents and reopens the source for reuse.
func (m *MemorySource) Reset() {
	m.buf = m.buf[:0]
	m.pos = 0
	m.closed = false
}

// Close marks the source closed; subsequent operations fail with ErrClosed.
func (m *MemorySource) Close() error {
	m.closed = true
	return nil
}
