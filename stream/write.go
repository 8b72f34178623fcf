package stream

import (
	"encoding/binary"
	"math"
)

// Write buffers p, growing the buffer as needed. The source is never invoked
// implicitly; bytes stay in the buffer until Flush. With buffering disabled
// and a source attached, p goes straight through. Implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if s.capacity == 0 && s.src != nil {
		n, err := s.src.Write(p)
		if err != nil {
			s.fail(err)
		} else if n < len(p) {
			s.note(ErrShortWrite)
		}
		return n, s.err
	}
	s.ensureSpace(len(p))
	copy(s.buf[s.writePos:], p)
	s.advanceWrite(len(p))
	return len(p), nil
}

func (s *Stream) advanceWrite(n int) {
	s.writePos += n
	if s.writePos > s.end {
		s.end = s.writePos
	}
}

// WriteBytes buffers p, ignoring the count. Convenience over Write.
func (s *Stream) WriteBytes(p []byte) {
	_, _ = s.Write(p)
}

// WriteStream appends the unread bytes of another stream's buffer.
func (s *Stream) WriteStream(other *Stream) {
	if other != nil {
		_, _ = s.Write(other.Buffered())
	}
}

// WriteBool writes 1 byte: 0 for false, 1 for true.
func (s *Stream) WriteBool(v bool) {
	if v {
		s.WriteUint8(1)
	} else {
		s.WriteUint8(0)
	}
}

// WriteUint8 writes a single byte.
func (s *Stream) WriteUint8(v uint8) {
	_, _ = s.Write([]byte{v})
}

// WriteInt8 writes a single byte.
func (s *Stream) WriteInt8(v int8) { s.WriteUint8(uint8(v)) }

// WriteUint16 writes 2 bytes in native order.
func (s *Stream) WriteUint16(v uint16) {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], v)
	_, _ = s.Write(b[:])
}

// WriteInt16 writes 2 bytes in native order.
func (s *Stream) WriteInt16(v int16) { s.WriteUint16(uint16(v)) }

// WriteUint32 writes 4 bytes in native order.
func (s *Stream) WriteUint32(v uint32) {
	var b [4]byte
	binary.NativeEndian.PutUint32(b[:], v)
	_, _ = s.Write(b[:])
}

// WriteInt32 writes 4 bytes in native order.
func (s *Stream) WriteInt32(v int32) { s.WriteUint32(uint32(v)) }

// WriteUint64 writes 8 bytes in native order.
func (s *Stream) WriteUint64(v uint64) {
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], v)
	_, _ = s.Write(b[:])
}

// WriteInt64 writes 8 bytes in native order.
func (s *Stream) WriteInt64(v int64) { s.WriteUint64(uint64(v)) }

// WriteFloat32 writes an IEEE-754 binary32 value in native order.
func (s *Stream) WriteFloat32(v float32) { s.WriteUint32(math.Float32bits(v)) }

// WriteFloat64 writes an IEEE-754 binary64 value in native order.
func (s *Stream) WriteFloat64(v float64) { s.WriteUint64(math.Float64bits(v)) }

// WriteString writes v as [int32 length][length raw bytes], no NUL.
func (s *Stream) WriteString(v string) {
	if s.err != nil {
		return
	}
	s.WriteInt32(int32(len(v)))
	if len(v) == 0 || s.err != nil {
		return
	}
	if s.capacity == 0 && s.src != nil {
		_, _ = s.Write([]byte(v))
		return
	}
	s.ensureSpace(len(v))
	copy(s.buf[s.writePos:], v)
	s.advanceWrite(len(v))
}

// WriteStrings writes a sequence of strings as [int32 count] followed by
// count length-prefixed strings.
func (s *Stream) WriteStrings(items []string) {
	if s.err != nil {
		return
	}
	s.WriteInt32(int32(len(items)))
	for _, v := range items {
		s.WriteString(v)
	}
}
