package stream

import "errors"

var (
	// ErrClosed indicates an operation on a source whose backend is no longer open.
	ErrClosed = errors.New("stream: source is closed")

	// ErrShortWrite indicates that a flush pushed fewer bytes to the source than
	// were buffered. The unsent tail is dropped; retry semantics are left to the caller.
	ErrShortWrite = errors.New("stream: short write during flush")

	// ErrDecodeUnderflow indicates a typed read could not assemble the required
	// number of bytes. The destination is left zero-initialized.
	ErrDecodeUnderflow = errors.New("stream: not enough bytes to decode value")

	// ErrDecodeMalformed indicates a length prefix was negative or inconsistent
	// with the surrounding framing.
	ErrDecodeMalformed = errors.New("stream: malformed length prefix")

	// ErrPeekUnsupported indicates the source cannot peek without consuming.
	ErrPeekUnsupported = errors.New("stream: source does not support peeking")

	// ErrSkipNegative indicates a Skip operation was attempted with a negative byte count.
	ErrSkipNegative = errors.New("stream: cannot skip negative number of bytes")
)
