package storage

import (
	"errors"
	"io"
	"sync/atomic"
)

const (
	handleOpen int32 = iota
	handleClosed
)

// Reader is a pull-based stream over one object. It is not safe for
// concurrent Read calls; Close may be called from another goroutine to
// cancel a blocked Read.
type Reader struct {
	key     string
	rc      io.ReadCloser
	state   atomic.Int32
	read    atomic.Int64
	onClose func(n int64, err error)
}

func newReader(key string, rc io.ReadCloser, onClose func(int64, error)) *Reader {
	return &Reader{key: key, rc: rc, onClose: onClose}
}

// Key returns the key the reader was opened on. Pipe readers have none.
func (r *Reader) Key() string { return r.key }

// Read reads up to len(p) bytes. Short reads are not errors; io.EOF marks
// the end of the stream.
func (r *Reader) Read(p []byte) (int, error) {
	if r == nil || r.state.Load() != handleOpen {
		return 0, r.invalid("read")
	}
	n, err := r.rc.Read(p)
	r.read.Add(int64(n))
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}
	if r.state.Load() != handleOpen {
		return n, r.invalid("read")
	}
	return n, NewError("read", r.key, ErrIOFailure, err)
}

// Close releases the underlying stream. It is idempotent.
func (r *Reader) Close() error {
	if r == nil || !r.state.CompareAndSwap(handleOpen, handleClosed) {
		return nil
	}
	err := r.rc.Close()
	if r.onClose != nil {
		r.onClose(r.read.Load(), err)
	}
	if err != nil {
		return NewError("close", r.key, ErrIOFailure, err)
	}
	return nil
}

// Closed reports whether the reader can no longer be used.
func (r *Reader) Closed() bool { return r == nil || r.state.Load() != handleOpen }

func (r *Reader) invalid(op string) error {
	key := ""
	if r != nil {
		key = r.key
	}
	return NewError(op, key, ErrInvalidState, errors.New("reader is closed"))
}

// Writer is a push-based sink for one object. Written bytes become
// visible only after Close succeeds.
type Writer struct {
	key     string
	w       StreamWriter
	state   atomic.Int32
	written atomic.Int64
	onClose func(n int64, err error)
}

func newWriter(key string, w StreamWriter, onClose func(int64, error)) *Writer {
	return &Writer{key: key, w: w, onClose: onClose}
}

// Key returns the destination key. Pipe writers have none.
func (w *Writer) Key() string { return w.key }

// Write appends p to the stream.
func (w *Writer) Write(p []byte) (int, error) {
	if w == nil || w.state.Load() != handleOpen {
		return 0, w.invalid("write")
	}
	n, err := w.w.Write(p)
	w.written.Add(int64(n))
	if err != nil {
		return n, NewError("write", w.key, ErrIOFailure, err)
	}
	return n, nil
}

// Close finalizes the object. It is the only point at which a failed
// commit is guaranteed to be reported. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w == nil || !w.state.CompareAndSwap(handleOpen, handleClosed) {
		return nil
	}
	err := w.w.Close()
	if w.onClose != nil {
		w.onClose(w.written.Load(), err)
	}
	if err != nil {
		return NewError("close", w.key, ErrIOFailure, err)
	}
	return nil
}

// Abort discards the stream; nothing becomes visible at the key.
func (w *Writer) Abort() error {
	if w == nil || !w.state.CompareAndSwap(handleOpen, handleClosed) {
		return nil
	}
	if err := w.w.Abort(); err != nil {
		return NewError("abort", w.key, ErrIOFailure, err)
	}
	return nil
}

// Closed reports whether the writer can no longer be used.
func (w *Writer) Closed() bool { return w == nil || w.state.Load() != handleOpen }

func (w *Writer) invalid(op string) error {
	key := ""
	if w != nil {
		key = w.key
	}
	return NewError(op, key, ErrInvalidState, errors.New("writer is closed"))
}

// putWriter adapts a driver without native streaming writes: bytes flow
// through a pipe into a background Driver.Put.
type putWriter struct {
	pw   *PipeWriter
	done chan error
}

func (w *putWriter) Write(p []byte) (int, error) { return w.pw.Write(p) }

func (w *putWriter) Close() error {
	_ = w.pw.Close()
	return <-w.done
}

func (w *putWriter) Abort() error {
	_ = w.pw.Abort()
	<-w.done
	return nil
}

// emptyReader serves zero-length ranges without touching the backend.
type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }
func (emptyReader) Close() error             { return nil }
