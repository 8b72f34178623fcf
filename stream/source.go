// Package stream provides a buffered binary stream over pluggable byte
// backends, with a typed serialization surface layered on top.
//
// A Stream owns a small-buffer-optimized byte buffer with independent read
// and write cursors and delegates overflow and underflow to an optional
// Source. The wire format is native byte order throughout; two peers must
// agree on architecture class.
package stream

// Source is the narrow byte-oriented backend capability consumed by Stream.
// Implementations wrap a file handle, a socket, or an in-memory view. A
// Source never owns the stream's buffer; it only moves raw bytes.
//
// Error conventions: Read returns (0, io.EOF) at end-of-stream and (0, nil)
// when no data is immediately available. A non-nil, non-EOF error from any
// operation is a hard failure and latches the owning Stream into !Good().
type Source interface {
	// Good reports whether the backend is still open. When it returns false,
	// all other operations fail with ErrClosed.
	Good() bool

	// Write pushes a block of bytes to the backend. On success the returned
	// count must equal len(p).
	Write(p []byte) (int, error)

	// Flush forces the backend to persist any internal buffers. Errors are
	// best-effort and may be swallowed by the caller.
	Flush() error

	// Read pulls up to len(p) bytes from the backend.
	Read(p []byte) (int, error)

	// Peek reads up to len(p) bytes without consuming them. Sources that
	// cannot peek return (0, ErrPeekUnsupported).
	Peek(p []byte) (int, error)

	// Available reports a best-effort count of immediately readable bytes,
	// or -1 when the backend cannot tell.
	Available() int

	// Skip discards n bytes from the read side.
	Skip(n int) error
}
