package stream

import "unsafe"

// Scalar is the constraint for trivially copyable element types: fixed-size
// values whose in-memory representation is also their wire representation.
// The platform-sized int, uint and uintptr are deliberately excluded; the
// wire format only carries explicitly sized types.
//
// Classification between the bulk byte-copy path and the per-element Record
// path is static: a type is either a Scalar or it implements Record.
type Scalar interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64
}

// Record is a user-defined type that knows how to encode itself onto a
// Stream. Both methods follow the stream's sticky-error discipline: they are
// no-ops once the stream has latched an error, so records can be chained
// without per-field error checks.
type Record interface {
	EncodeStream(s *Stream)
	DecodeStream(s *Stream)
}

// scalarBytes reinterprets a scalar slice as its native-order byte image.
// Valid because Scalar admits no indirections and the codec is native order.
func scalarBytes[T Scalar](items []T) []byte {
	if len(items) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&items[0])),
		len(items)*int(unsafe.Sizeof(items[0])))
}

// WriteScalar writes one fixed-size value in native byte order.
func WriteScalar[T Scalar](s *Stream, v T) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(&v)), int(unsafe.Sizeof(v)))
	_, _ = s.Write(b)
}

// ReadScalar reads one fixed-size value. On underflow it returns the zero
// value and records ErrDecodeUnderflow on the stream.
func ReadScalar[T Scalar](s *Stream) T {
	var v T
	b := unsafe.Slice((*byte)(unsafe.Pointer(&v)), int(unsafe.Sizeof(v)))
	if !s.readFixed(b) {
		var zero T
		return zero
	}
	return v
}

// PeekScalar peeks one fixed-size value without advancing the read cursor.
// Reports false if the value could not be assembled after one refill cycle.
func PeekScalar[T Scalar](s *Stream) (T, bool) {
	var v T
	b := unsafe.Slice((*byte)(unsafe.Pointer(&v)), int(unsafe.Sizeof(v)))
	if s.Peek(b) == 0 {
		var zero T
		return zero, false
	}
	return v, true
}

// WriteSeq writes a homogeneous scalar sequence as [int32 count] followed by
// count*sizeof(T) bytes in one bulk copy.
func WriteSeq[T Scalar](s *Stream, items []T) {
	if s.err != nil {
		return
	}
	s.WriteInt32(int32(len(items)))
	_, _ = s.Write(scalarBytes(items))
}

// ReadSeq reads a scalar sequence written by WriteSeq. A negative count
// records ErrDecodeMalformed; a short payload records ErrDecodeUnderflow and
// returns only the fully decoded elements.
func ReadSeq[T Scalar](s *Stream) []T {
	var count int32
	s.ReadInt32(&count)
	if s.err != nil || count == 0 {
		return nil
	}
	if count < 0 {
		s.note(ErrDecodeMalformed)
		return nil
	}
	// decode in bounded chunks so a malformed giant count cannot trigger a
	// huge up-front allocation
	items := make([]T, 0, minInt(int(count), 4096))
	remaining := int(count)
	for remaining > 0 {
		chunk := make([]T, minInt(remaining, 4096))
		b := scalarBytes(chunk)
		n, _ := s.Read(b)
		elemSize := int(unsafe.Sizeof(chunk[0]))
		items = append(items, chunk[:n/elemSize]...)
		if n < len(b) {
			s.note(ErrDecodeUnderflow)
			break
		}
		remaining -= len(chunk)
	}
	return items
}

// WriteRecords writes a record sequence as [int32 count] followed by count
// per-element encodings.
func WriteRecords[T Record](s *Stream, items []T) {
	if s.err != nil {
		return
	}
	s.WriteInt32(int32(len(items)))
	for _, item := range items {
		item.EncodeStream(s)
	}
}

// recordPtr constrains PT to be a pointer to T that implements Record.
// Lets ReadRecords allocate elements without reflection.
type recordPtr[T any] interface {
	Record
	*T
}

// ReadRecords reads a record sequence written by WriteRecords. Decoding
// stops early if the stream runs dry mid-sequence.
func ReadRecords[T any, PT recordPtr[T]](s *Stream) []T {
	var count int32
	s.ReadInt32(&count)
	if s.err != nil || count == 0 {
		return nil
	}
	if count < 0 {
		s.note(ErrDecodeMalformed)
		return nil
	}
	items := make([]T, 0, minInt(int(count), 4096))
	for i := int32(0); i < count; i++ {
		var item T
		prev := s.soft
		PT(&item).DecodeStream(s)
		if s.err != nil || s.soft != prev {
			// drop the element that failed to decode in full
			break
		}
		items = append(items, item)
	}
	return items
}
