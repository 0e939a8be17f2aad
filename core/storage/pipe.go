package storage

import (
	"errors"
	"io"
	"sync"
)

var errAborted = errors.New("write aborted")

// pipe is a bounded FIFO ring buffer shared by one PipeReader and one
// PipeWriter. Writers block while the buffer is full, readers block while
// it is empty and the write end is open.
type pipe struct {
	mu       sync.Mutex
	readable *sync.Cond
	writable *sync.Cond

	buf  []byte
	head int
	n    int

	wclosed bool
	werr    error
	rclosed bool
	rerr    error
}

// PipeReader is the read end of a pipe.
type PipeReader struct{ p *pipe }

// PipeWriter is the write end of a pipe.
type PipeWriter struct{ p *pipe }

// NewPipe allocates a pipe holding at most capacity bytes in flight.
// A non-positive capacity selects the default of 64 KiB.
func NewPipe(capacity int) (*PipeReader, *PipeWriter) {
	if capacity <= 0 {
		capacity = defaultPipeBufferSize
	}
	p := &pipe{buf: make([]byte, capacity)}
	p.readable = sync.NewCond(&p.mu)
	p.writable = sync.NewCond(&p.mu)
	return &PipeReader{p}, &PipeWriter{p}
}

func (p *pipe) read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.n == 0 && !p.wclosed && !p.rclosed {
		p.readable.Wait()
	}
	if p.rclosed {
		return 0, NewError("read", "", ErrInvalidState, errors.New("read on closed pipe"))
	}
	if len(b) == 0 {
		return 0, nil
	}
	if p.n == 0 {
		return 0, p.werr
	}

	read := 0
	for read < len(b) && p.n > 0 {
		end := p.head + p.n
		if end > len(p.buf) {
			end = len(p.buf)
		}
		c := copy(b[read:], p.buf[p.head:end])
		read += c
		p.n -= c
		p.head = (p.head + c) % len(p.buf)
	}
	if p.n == 0 {
		p.head = 0
	}
	p.writable.Broadcast()
	return read, nil
}

// fill copies as much of b as fits. The caller holds p.mu.
func (p *pipe) fill(b []byte) int {
	written := 0
	for written < len(b) && p.n < len(p.buf) {
		tail := (p.head + p.n) % len(p.buf)
		end := len(p.buf)
		if tail < p.head {
			end = p.head
		}
		c := copy(p.buf[tail:end], b[written:])
		written += c
		p.n += c
	}
	if written > 0 {
		p.readable.Broadcast()
	}
	return written
}

// writeErr reports why the write end cannot proceed. The caller holds p.mu.
func (p *pipe) writeErr() error {
	if p.wclosed {
		return NewError("write", "", ErrInvalidState, errors.New("write on closed pipe"))
	}
	if p.rclosed {
		return &Error{Op: "write", Kind: ErrBrokenPipe, Err: p.rerr}
	}
	return nil
}

func (p *pipe) write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	written := 0
	for {
		if err := p.writeErr(); err != nil {
			return written, err
		}
		if written == len(b) {
			return written, nil
		}
		for p.n == len(p.buf) && !p.rclosed && !p.wclosed {
			p.writable.Wait()
		}
		if p.rclosed || p.wclosed {
			continue
		}
		written += p.fill(b[written:])
	}
}

func (p *pipe) tryWrite(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.writeErr(); err != nil {
		return 0, err
	}
	if len(b) > 0 && p.n == len(p.buf) {
		return 0, NewError("write", "", ErrWouldBlock, nil)
	}
	return p.fill(b), nil
}

func (p *pipe) closeWrite(err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.wclosed {
		return nil
	}
	if err == nil {
		err = io.EOF
	}
	p.wclosed = true
	p.werr = err
	p.readable.Broadcast()
	p.writable.Broadcast()
	return nil
}

func (p *pipe) closeRead(err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rclosed {
		return nil
	}
	p.rclosed = true
	p.rerr = err
	p.n = 0
	p.head = 0
	p.readable.Broadcast()
	p.writable.Broadcast()
	return nil
}

// Read blocks until data is available or the write end is closed. Once
// the buffer is drained after the writer closed, it returns io.EOF, or
// the error passed to CloseWithError.
func (r *PipeReader) Read(b []byte) (int, error) { return r.p.read(b) }

// Close closes the read end. Subsequent writes fail with ErrBrokenPipe.
func (r *PipeReader) Close() error { return r.p.closeRead(nil) }

// CloseWithError closes the read end; writers see err as the cause of
// their ErrBrokenPipe failure.
func (r *PipeReader) CloseWithError(err error) error { return r.p.closeRead(err) }

// Write writes all of b, blocking while the buffer is full.
func (w *PipeWriter) Write(b []byte) (int, error) { return w.p.write(b) }

// TryWrite is the non-blocking variant of Write. It writes as much of b
// as currently fits and fails with ErrWouldBlock only when nothing fits.
func (w *PipeWriter) TryWrite(b []byte) (int, error) { return w.p.tryWrite(b) }

// Close closes the write end. Readers drain the buffer and then see io.EOF.
func (w *PipeWriter) Close() error { return w.p.closeWrite(nil) }

// CloseWithError closes the write end; readers see err after draining.
func (w *PipeWriter) CloseWithError(err error) error { return w.p.closeWrite(err) }

// Abort closes the write end so the reader fails instead of seeing io.EOF.
func (w *PipeWriter) Abort() error { return w.p.closeWrite(errAborted) }
