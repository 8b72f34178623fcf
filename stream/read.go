package stream

import (
	"encoding/binary"
	"io"
	"math"
)

// Read delivers up to len(p) bytes, draining the buffer first and pulling
// the remainder from the source. A short count is not an error by itself;
// Read returns (0, io.EOF) only when nothing at all could be delivered.
// Implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if s.BufferedSize() >= len(p) {
		return s.bufferRead(p), nil
	}
	n := s.fragmentedRead(p)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// bufferRead copies from the buffer; the caller guarantees enough is buffered.
func (s *Stream) bufferRead(p []byte) int {
	n := copy(p, s.buf[s.readPos:s.end])
	s.readPos += n
	return n
}

// fill replaces the buffer contents with a fresh read from the source.
// Only call with an empty buffer: anything unread is discarded.
func (s *Stream) fill() int {
	n, err := s.src.Read(s.buf[:s.capacity])
	s.readPos = 0
	if n < 0 {
		n = 0
	}
	s.writePos = n
	s.end = n
	if err != nil && err != io.EOF {
		s.fail(err)
	}
	return n
}

// topUp appends source bytes behind the current buffered data, compacting
// the buffer first if the tail has no room. Used by peeks, which must not
// discard what is already buffered.
func (s *Stream) topUp() {
	if s.end >= s.capacity && s.readPos > 0 {
		n := copy(s.buf, s.buf[s.readPos:s.end])
		s.readPos = 0
		s.writePos = n
		s.end = n
	}
	if s.end >= s.capacity {
		return
	}
	n, err := s.src.Read(s.buf[s.end:s.capacity])
	if n > 0 {
		s.writePos = s.end + n
		s.end += n
	}
	if err != nil && err != io.EOF {
		s.fail(err)
	}
}

// fragmentedRead drains the buffer, then either refills the buffer from the
// source or, for requests of a full buffer capacity or more, bypasses the
// buffer and reads straight into p.
func (s *Stream) fragmentedRead(p []byte) int {
	total := 0
	if n := s.BufferedSize(); n > 0 {
		copy(p, s.buf[s.readPos:s.end])
		s.Clear()
		total = n
	}
	if s.src == nil {
		return total
	}
	remaining := len(p) - total

	if s.capacity > 0 && remaining < s.capacity {
		// worth buffering: refill and serve from the buffer
		for remaining > 0 {
			filled := s.fill()
			if filled <= 0 || s.err != nil {
				break
			}
			n := filled
			if n > remaining {
				n = remaining
			}
			total += s.bufferRead(p[total : total+n])
			remaining -= n
		}
		return total
	}

	// large request: no point buffering, read straight into p
	for remaining > 0 {
		n, err := s.src.Read(p[total:])
		if n > 0 {
			total += n
			remaining -= n
		}
		if err != nil {
			if err != io.EOF {
				s.fail(err)
			}
			break
		}
		if n == 0 {
			break
		}
	}
	return total
}

// readFixed fills b exactly or records a decode underflow and reports false.
func (s *Stream) readFixed(b []byte) bool {
	if s.err != nil {
		return false
	}
	n, _ := s.Read(b)
	if n < len(b) {
		s.note(ErrDecodeUnderflow)
		return false
	}
	return true
}

// ReadBool reads 1 byte; any non-zero value decodes as true.
// On underflow dst is zeroed and ErrDecodeUnderflow is recorded.
func (s *Stream) ReadBool(dst *bool) {
	var b [1]byte
	if !s.readFixed(b[:]) {
		*dst = false
		return
	}
	*dst = b[0] != 0
}

// ReadUint8 reads a single byte.
func (s *Stream) ReadUint8(dst *uint8) {
	var b [1]byte
	if !s.readFixed(b[:]) {
		*dst = 0
		return
	}
	*dst = b[0]
}

// ReadInt8 reads a single byte.
func (s *Stream) ReadInt8(dst *int8) {
	var b [1]byte
	if !s.readFixed(b[:]) {
		*dst = 0
		return
	}
	*dst = int8(b[0])
}

// ReadUint16 reads 2 bytes in native order.
func (s *Stream) ReadUint16(dst *uint16) {
	var b [2]byte
	if !s.readFixed(b[:]) {
		*dst = 0
		return
	}
	*dst = binary.NativeEndian.Uint16(b[:])
}

// ReadInt16 reads 2 bytes in native order.
func (s *Stream) ReadInt16(dst *int16) {
	var v uint16
	s.ReadUint16(&v)
	*dst = int16(v)
}

// ReadUint32 reads 4 bytes in native order.
func (s *Stream) ReadUint32(dst *uint32) {
	var b [4]byte
	if !s.readFixed(b[:]) {
		*dst = 0
		return
	}
	*dst = binary.NativeEndian.Uint32(b[:])
}

// ReadInt32 reads 4 bytes in native order.
func (s *Stream) ReadInt32(dst *int32) {
	var v uint32
	s.ReadUint32(&v)
	*dst = int32(v)
}

// ReadUint64 reads 8 bytes in native order.
func (s *Stream) ReadUint64(dst *uint64) {
	var b [8]byte
	if !s.readFixed(b[:]) {
		*dst = 0
		return
	}
	*dst = binary.NativeEndian.Uint64(b[:])
}

// ReadInt64 reads 8 bytes in native order.
func (s *Stream) ReadInt64(dst *int64) {
	var v uint64
	s.ReadUint64(&v)
	*dst = int64(v)
}

// ReadFloat32 reads an IEEE-754 binary32 value in native order.
func (s *Stream) ReadFloat32(dst *float32) {
	var v uint32
	s.ReadUint32(&v)
	*dst = math.Float32frombits(v)
}

// ReadFloat64 reads an IEEE-754 binary64 value in native order.
func (s *Stream) ReadFloat64(dst *float64) {
	var v uint64
	s.ReadUint64(&v)
	*dst = math.Float64frombits(v)
}

// ReadString reads a [int32 length][bytes] string. A negative length records
// ErrDecodeMalformed. If the stream cannot deliver the full payload, the
// undeliverable tail is skipped so the stream stays framed consistently.
func (s *Stream) ReadString() string {
	var length int32
	s.ReadInt32(&length)
	if s.err != nil {
		return ""
	}
	if length < 0 {
		s.note(ErrDecodeMalformed)
		return ""
	}
	if length == 0 {
		return ""
	}
	b := make([]byte, length)
	n, _ := s.Read(b)
	if n < int(length) {
		s.note(ErrDecodeUnderflow)
		s.Skip(int(length) - n)
	}
	return string(b[:n])
}

// ReadStrings reads a [int32 count] sequence of length-prefixed strings.
func (s *Stream) ReadStrings() []string {
	var count int32
	s.ReadInt32(&count)
	if s.err != nil || count == 0 {
		return nil
	}
	if count < 0 {
		s.note(ErrDecodeMalformed)
		return nil
	}
	items := make([]string, 0, minInt(int(count), 4096))
	for i := int32(0); i < count; i++ {
		prev := s.soft
		items = append(items, s.ReadString())
		// stop rather than spin on an exhausted stream
		if s.err != nil || s.soft != prev {
			break
		}
	}
	return items
}

// Peek copies the next len(p) bytes without advancing the read cursor. If
// the buffer holds fewer bytes it is topped up from the source at most once.
// With buffering disabled the peek is delegated to the source. Returns
// len(p), or 0 if still short after one refill cycle.
func (s *Stream) Peek(p []byte) int {
	if s.err != nil || len(p) == 0 {
		return 0
	}
	if s.capacity == 0 && s.src != nil {
		// no buffer to assemble in, so the source must peek for us
		n, err := s.src.Peek(p)
		if err != nil && err != ErrPeekUnsupported {
			s.fail(err)
		}
		if n < len(p) {
			return 0
		}
		return len(p)
	}
	if s.BufferedSize() < len(p) && s.src != nil && s.capacity > 0 {
		s.topUp()
	}
	if s.BufferedSize() < len(p) {
		return 0
	}
	copy(p, s.buf[s.readPos:])
	return len(p)
}

// PeekUint8 peeks a single byte. Reports false if a byte could not be peeked.
func (s *Stream) PeekUint8(dst *uint8) bool {
	var b [1]byte
	if s.Peek(b[:]) == 0 {
		*dst = 0
		return false
	}
	*dst = b[0]
	return true
}

// PeekUint16 peeks 2 bytes in native order without advancing the cursor.
func (s *Stream) PeekUint16(dst *uint16) bool {
	var b [2]byte
	if s.Peek(b[:]) == 0 {
		*dst = 0
		return false
	}
	*dst = binary.NativeEndian.Uint16(b[:])
	return true
}

// PeekUint32 peeks 4 bytes in native order without advancing the cursor.
func (s *Stream) PeekUint32(dst *uint32) bool {
	var b [4]byte
	if s.Peek(b[:]) == 0 {
		*dst = 0
		return false
	}
	*dst = binary.NativeEndian.Uint32(b[:])
	return true
}

// PeekUint64 peeks 8 bytes in native order without advancing the cursor.
func (s *Stream) PeekUint64(dst *uint64) bool {
	var b [8]byte
	if s.Peek(b[:]) == 0 {
		*dst = 0
		return false
	}
	*dst = binary.NativeEndian.Uint64(b[:])
	return true
}

// PeekString peeks a [int32 length][bytes] string without consuming it.
// Returns "" if the whole string is not currently peekable.
func (s *Stream) PeekString() string {
	var length int32
	var b [4]byte
	if s.Peek(b[:]) == 0 {
		return ""
	}
	length = int32(binary.NativeEndian.Uint32(b[:]))
	if length <= 0 {
		return ""
	}
	tmp := make([]byte, 4+int(length))
	if s.Peek(tmp) == 0 {
		return ""
	}
	return string(tmp[4:])
}

// Skip discards n bytes: first from the buffer, then from the source.
func (s *Stream) Skip(n int) {
	if s.err != nil {
		return
	}
	if n < 0 {
		s.note(ErrSkipNegative)
		return
	}
	k := n
	if b := s.BufferedSize(); k > b {
		k = b
	}
	s.readPos += k
	if s.src != nil && k < n {
		if err := s.src.Skip(n - k); err != nil {
			s.fail(err)
		}
	}
}

// Undo moves the read cursor back up to n bytes within the buffer. Bytes
// already consumed from the source cannot be un-read.
func (s *Stream) Undo(n int) {
	if n > s.readPos {
		n = s.readPos
	}
	if n > 0 {
		s.readPos -= n
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
