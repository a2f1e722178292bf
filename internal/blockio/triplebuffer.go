// Package blockio streams a file's bytes from a dedicated disk goroutine
// into the calling (decoder) goroutine through a lock-light triple buffer,
// with optional direct-I/O sector alignment. It knows nothing about gate
// or container layout; callers slice blocks out of the buffers it hands
// back.
package blockio

import "unsafe"

// TripleBuffer hands three equally-sized buffers back and forth between one
// writer (the disk goroutine) and one reader (the decoder goroutine), each
// side always a buffer ahead or behind the other so the side under less
// load never blocks the other by more than one buffer's worth of latency.
//
// It is not a general-purpose pool: exactly one writer and one reader may
// use a given TripleBuffer, matching the single-disk-goroutine,
// single-decoder-goroutine topology every reader/writer in this module
// opens.
type TripleBuffer struct {
	bufs    [3][]byte
	latest  chan bufMsg
	free    chan int
	stop    chan struct{}
	stopped bool
}

// bufMsg is what the writer side publishes: either a filled slot, or a
// terminal signal (err == io.EOF for a clean end of stream, anything else
// for a disk error) that tells the reader no further slot will ever be
// published.
type bufMsg struct {
	slot int
	done bool
	err  error
}

// NewTripleBuffer allocates three buffers of bufSize bytes (the caller is
// responsible for any alignment bufSize or the buffers themselves need;
// see NewAlignedTripleBuffer) and wires up the handover channels. Buffer 0
// starts owned by the writer; buffers 1 and 2 start in the free pool.
func NewTripleBuffer(bufSize int) *TripleBuffer {
	return newTripleBuffer([][]byte{
		make([]byte, bufSize),
		make([]byte, bufSize),
		make([]byte, bufSize),
	})
}

// NewAlignedTripleBuffer is like NewTripleBuffer but returns buffers whose
// backing array starts on an align-byte boundary, as direct I/O requires.
func NewAlignedTripleBuffer(bufSize, align int) *TripleBuffer {
	return newTripleBuffer([][]byte{
		alignedAlloc(bufSize, align),
		alignedAlloc(bufSize, align),
		alignedAlloc(bufSize, align),
	})
}

func newTripleBuffer(bufs [][]byte) *TripleBuffer {
	t := &TripleBuffer{
		latest: make(chan bufMsg, 1),
		free:   make(chan int, 2),
		stop:   make(chan struct{}),
	}

	copy(t.bufs[:], bufs)
	t.free <- 1
	t.free <- 2

	return t
}

// Buffer returns the buffer at the given slot index (0, 1, or 2), as
// handed back by WriterBuf/Publish/Next.
func (t *TripleBuffer) Buffer(slot int) []byte {
	return t.bufs[slot]
}

// WriterBuf returns the slot index the writer should fill first, before
// any Publish call.
func (t *TripleBuffer) WriterBuf() int {
	return 0
}

// Publish suspends until the reader has picked up any previously published
// buffer, then makes slot the latest published buffer and returns the next
// slot the writer should fill. It returns ErrCancelled if Stop is called
// first.
func (t *TripleBuffer) Publish(slot int) (next int, err error) {
	select {
	case t.latest <- bufMsg{slot: slot}:
	case <-t.stop:
		return 0, ErrCancelled
	}

	select {
	case next = <-t.free:
		return next, nil
	case <-t.stop:
		return 0, ErrCancelled
	}
}

// Finish suspends until the reader has picked up any previously published
// buffer, then tells the reader no further slot will ever be published.
// err is io.EOF for a clean end of stream, or the disk error that ended
// the stream early. The writer goroutine exits after calling Finish; it
// never waits for a free slot in return.
func (t *TripleBuffer) Finish(err error) {
	select {
	case t.latest <- bufMsg{done: true, err: err}:
	case <-t.stop:
	}
}

// Next suspends until a published buffer or a Finish signal exists. prev is
// the slot the reader previously held (or a negative number on the first
// call, when the reader holds nothing yet); it is returned to the writer's
// free pool once the new slot is in hand. It returns ErrCancelled if Stop
// is called first, or the error passed to Finish (io.EOF on clean
// completion) once the writer is done.
func (t *TripleBuffer) Next(prev int) (slot int, err error) {
	var msg bufMsg

	select {
	case msg = <-t.latest:
	case <-t.stop:
		return 0, ErrCancelled
	}

	if msg.done {
		return 0, msg.err
	}

	if prev >= 0 {
		select {
		case t.free <- prev:
		case <-t.stop:
			return 0, ErrCancelled
		}
	}

	return msg.slot, nil
}

// Stop signals cancellation to both sides; any in-flight or future
// Publish/Next call returns ErrCancelled. Safe to call more than once.
func (t *TripleBuffer) Stop() {
	if t.stopped {
		return
	}

	t.stopped = true

	close(t.stop)
}

func alignedAlloc(size, align int) []byte {
	buf := make([]byte, size+align)
	off := alignOffset(buf, align)

	return buf[off : off+size : off+size]
}

// alignOffset returns the smallest offset into buf whose address is a
// multiple of align (a power of two).
func alignOffset(buf []byte, align int) int {
	addr := uintptr(unsafe.Pointer(&buf[0]))
	mask := uintptr(align - 1)

	if addr&mask == 0 {
		return 0
	}

	return int(uintptr(align) - addr&mask)
}
