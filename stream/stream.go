package stream

import (
	"sync"

	"go.uber.org/zap"
)

// SmallBufferSize is the capacity of the inline buffer every Stream carries.
// Streams only move to a heap buffer when a write needs more space than this.
const SmallBufferSize = 512

// noCopy triggers go vet's copylocks check. A Stream must not be copied: its
// buffer may alias the inline array inside the struct.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Stream is a buffered binary stream over an optional Source.
//
// The buffer holds bytes between a read cursor and an end mark; writes append
// at the write cursor. Nothing is pushed to the source until Flush is called
// or buffering is disabled. Reads drain the buffer first and pull the
// remainder from the source on demand.
//
// A Stream is single-threaded. Two goroutines sharing one Stream (or two
// Streams sharing one Source) must coordinate externally; see Shared.
//
// The first hard I/O error latches: Good() turns false and every subsequent
// operation becomes a no-op. Soft conditions such as decode underflow are
// recorded and observable via Err() without stopping the stream.
type Stream struct {
	noCopy noCopy

	readPos  int // read cursor into buf
	writePos int // write cursor into buf
	end      int // end of buffered data
	capacity int // current buffer capacity; 0 disables buffering
	heap     bool
	buf      []byte

	src  Source
	err  error // first hard failure; latches the stream dead
	soft error // most recent recoverable condition
	log  *zap.Logger

	inline [SmallBufferSize]byte
}

// Option configures a Stream at construction time.
type Option func(*Stream)

// WithLogger attaches a logger used for flush anomalies and teardown errors.
func WithLogger(log *zap.Logger) Option {
	return func(s *Stream) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Stream with the default inline buffer. src may be nil, in
// which case the Stream is a pure in-memory buffer.
func New(src Source, opts ...Option) *Stream {
	return NewSize(SmallBufferSize, src, opts...)
}

// NewSize creates a Stream with a buffer of exactly capacity bytes. A
// capacity of 0 disables buffering: writes go straight to the source and
// reads pull exactly as many bytes as asked for.
func NewSize(capacity int, src Source, opts ...Option) *Stream {
	s := &Stream{src: src, log: zap.NewNop()}
	s.buf = s.inline[:]
	s.capacity = capacity
	if capacity > SmallBufferSize {
		s.buf = make([]byte, capacity)
		s.heap = true
	} else if capacity < 0 {
		s.capacity = 0
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the attached backend, or nil.
func (s *Stream) Source() Source { return s.src }

// BufferedSize returns the number of unread bytes held in the buffer.
func (s *Stream) BufferedSize() int { return s.end - s.readPos }

// Capacity returns the current buffer capacity. 0 means buffering is disabled.
func (s *Stream) Capacity() int { return s.capacity }

// ReadPos returns the read cursor offset into the buffer.
func (s *Stream) ReadPos() int { return s.readPos }

// WritePos returns the write cursor offset into the buffer.
func (s *Stream) WritePos() int { return s.writePos }

// Buffered returns a zero-copy view of the unread bytes in the buffer. The
// view is invalidated by any subsequent operation on the stream.
func (s *Stream) Buffered() []byte { return s.buf[s.readPos:s.end] }

// Available returns the buffered byte count plus whatever the source reports
// as immediately readable.
func (s *Stream) Available() int {
	n := s.BufferedSize()
	if s.src != nil {
		if a := s.src.Available(); a > 0 {
			n += a
		}
	}
	return n
}

// Good reports whether the stream can keep moving bytes. With a source
// attached this mirrors the source's open state; without one it reports
// whether unread data remains.
func (s *Stream) Good() bool {
	if s.err != nil {
		return false
	}
	if s.src != nil {
		return s.src.Good()
	}
	return s.BufferedSize() > 0
}

// Err returns the first hard failure if one occurred, otherwise the most
// recent recoverable condition, otherwise nil.
func (s *Stream) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.soft
}

// fail latches the first hard error. Subsequent operations become no-ops.
func (s *Stream) fail(err error) {
	if s.err == nil && err != nil {
		s.err = err
	}
}

// note records a recoverable condition without stopping the stream.
func (s *Stream) note(err error) {
	if err != nil {
		s.soft = err
	}
}

// Clear resets all cursors to zero. Buffered data is dropped, not flushed.
func (s *Stream) Clear() {
	s.readPos = 0
	s.writePos = 0
	s.end = 0
}

// Rewind moves the read and write cursors to pos within the buffer, clamped
// to [0, end]. Subsequent reads and writes begin from there.
func (s *Stream) Rewind(pos int) {
	if pos < 0 {
		pos = 0
	} else if pos > s.end {
		pos = s.end
	}
	s.readPos = pos
	s.writePos = pos
}

// Reserve grows the buffer to the given capacity. Passing 0 reverts to the
// inline buffer and drops buffered data. Reserve never shrinks a buffer
// below its current data end.
func (s *Stream) Reserve(capacity int) {
	switch {
	case capacity <= 0:
		s.buf = s.inline[:]
		s.heap = false
		s.capacity = 0
		s.Clear()
	case capacity > SmallBufferSize:
		if capacity < s.end {
			capacity = s.end
		}
		nb := make([]byte, capacity)
		copy(nb, s.buf[:s.end])
		s.buf = nb
		s.heap = true
		s.capacity = capacity
	default:
		if !s.heap {
			if capacity < s.end {
				capacity = s.end
			}
			s.capacity = capacity
		}
		// already on a larger heap buffer: keep it, never shrink
	}
}

// ensureSpace makes room for n more bytes at the write cursor, growing by
// max(n, capacity) rounded up to the current capacity's alignment.
func (s *Stream) ensureSpace(n int) {
	if s.writePos+n <= s.capacity {
		return
	}
	align := s.capacity
	if align <= 0 {
		align = SmallBufferSize
	}
	grow := n
	if s.capacity > grow {
		grow = s.capacity
	}
	s.Reserve(roundup(s.capacity+grow, align))
}

// DisableBuffering flushes pending data, frees any heap buffer and sets the
// capacity to 0. From then on writes go straight to the source and reads pull
// exactly the requested byte counts.
func (s *Stream) DisableBuffering() {
	s.Flush()
	s.buf = s.inline[:]
	s.heap = false
	s.capacity = 0
	s.Clear()
}

// Flush pushes buffered bytes to the source and asks the source to persist
// them, then resets the cursors. A partial write is logged and recorded in
// the error slot but not retried. Without a source, Flush just clears.
func (s *Stream) Flush() error {
	if s.src == nil {
		s.Clear()
		return s.err
	}
	if s.err != nil {
		return s.err
	}
	if n := s.BufferedSize(); n > 0 {
		wrote, err := s.src.Write(s.buf[s.readPos:s.end])
		switch {
		case err != nil:
			s.log.Warn("flush failed", zap.Int("buffered", n), zap.Error(err))
			s.fail(err)
		case wrote < n:
			s.log.Warn("partial flush, dropping tail",
				zap.Int("buffered", n), zap.Int("wrote", wrote))
			s.note(ErrShortWrite)
		}
	}
	s.Clear()
	if err := s.src.Flush(); err != nil {
		// source-level flush failures are best-effort
		s.log.Warn("source flush failed", zap.Error(err))
	}
	return s.err
}

// Close performs a best-effort flush. Errors are swallowed and logged; Close
// is safe to call from deferred teardown paths.
func (s *Stream) Close() error {
	if err := s.Flush(); err != nil {
		s.log.Warn("flush during close failed", zap.Error(err))
	}
	return nil
}

// Shared bundles a Stream with a mutex for the case where two goroutines
// must funnel through one stream or one source.
type Shared struct {
	mu sync.Mutex
	st *Stream
}

// NewShared wraps st. The wrapped stream must no longer be used directly.
func NewShared(st *Stream) *Shared {
	return &Shared{st: st}
}

// Acquire locks the stream and returns it together with the release func.
//
//	st, release := sh.Acquire()
//	defer release()
func (s *Shared) Acquire() (*Stream, func()) {
	s.mu.Lock()
	return s.st, s.mu.Unlock
}

// Do runs f with the stream locked.
func (s *Shared) Do(f func(*Stream)) {
	st, release := s.Acquire()
	defer release()
	f(st)
}
