package stream

import (
	"io"
	"os"
)

// FileMode selects how OpenFile opens the backing file.
type FileMode int

const (
	// ModeReadOnly opens an existing file for reading.
	ModeReadOnly FileMode = iota
	// ModeReadWrite opens an existing file for reading and writing.
	ModeReadWrite
	// ModeCreateTruncate creates the file, truncating any existing contents.
	ModeCreateTruncate
)

// FileSource is a Source over a file handle with a current absolute
// position. Writes append at the position, reads advance it, peeks read and
// seek back, skips seek forward.
type FileSource struct {
	f     *os.File
	owned bool // whether Close should close the handle
}

// OpenFile opens path in the given mode and returns an owning FileSource.
func OpenFile(path string, mode FileMode) (*FileSource, error) {
	var flag int
	switch mode {
	case ModeReadOnly:
		flag = os.O_RDONLY
	case ModeReadWrite:
		flag = os.O_RDWR
	case ModeCreateTruncate:
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileSource{f: f, owned: true}, nil
}

// NewFileSource wraps an already-open handle without taking ownership. The
// handle must outlive the source.
func NewFileSource(f *os.File) *FileSource {
	return &FileSource{f: f}
}

// Good reports whether the handle is usable.
func (fs *FileSource) Good() bool { return fs.f != nil }

// Write appends a block at the current position.
func (fs *FileSource) Write(p []byte) (int, error) {
	if fs.f == nil {
		return 0, ErrClosed
	}
	return fs.f.Write(p)
}

// Flush forces written data to stable storage.
func (fs *FileSource) Flush() error {
	if fs.f == nil {
		return ErrClosed
	}
	return fs.f.Sync()
}

// Read pulls bytes and advances the file position.
func (fs *FileSource) Read(p []byte) (int, error) {
	if fs.f == nil {
		return 0, ErrClosed
	}
	return fs.f.Read(p)
}

// Peek reads bytes then seeks back to the prior position.
func (fs *FileSource) Peek(p []byte) (int, error) {
	if fs.f == nil {
		return 0, ErrClosed
	}
	pos, err := fs.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	n, err := fs.f.Read(p)
	if _, serr := fs.f.Seek(pos, io.SeekStart); serr != nil {
		return n, serr
	}
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

// Available reports the bytes between the current position and end of file.
func (fs *FileSource) Available() int {
	if fs.f == nil {
		return -1
	}
	pos, err := fs.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	st, err := fs.f.Stat()
	if err != nil {
		return -1
	}
	if n := st.Size() - pos; n > 0 {
		return int(n)
	}
	return 0
}

// Skip advances the read position by a relative seek.
func (fs *FileSource) Skip(n int) error {
	if fs.f == nil {
		return ErrClosed
	}
	_, err := fs.f.Seek(int64(n), io.SeekCurrent)
	return err
}

// File returns the underlying handle.
func (fs *FileSource) File() *os.File { return fs.f }

// Close closes the handle if this source owns it, then marks the source
// closed either way.
func (fs *FileSource) Close() error {
	f := fs.f
	fs.f = nil
	if f != nil && fs.owned {
		return f.Close()
	}
	return nil
}
