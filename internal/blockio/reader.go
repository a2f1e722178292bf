package blockio

import (
	"io"

	"github.com/zk2u/ckt/pkg/fs"
)

// DefaultBufSize is the page-aligned buffer size each slot of a Reader's
// triple buffer uses absent a caller override.
const DefaultBufSize = 1 << 20 // 1 MiB

// Reader streams a byte region [start, end) of a file through a disk
// goroutine into block-sized slices for a single calling (decoder)
// goroutine. It is the Go-side "disk thread / decoder thread" pair: the
// disk goroutine stands in for the single-threaded cooperative I/O
// scheduler the design calls for, since no widely used pure-Go io_uring
// binding exists in this module's dependency set.
type Reader struct {
	file       fs.File
	tb         *TripleBuffer
	prefixSkip int

	cur        []byte
	curSlot    int
	haveCur    bool
	readSoFar  int64
	regionSize int64
}

// Open starts streaming [start, end) of file. useDirect requests
// sector-aligned reads (the caller should have opened file with
// fs.OpenDirect); when useDirect is false, reads are unaligned and
// prefixSkip is always zero.
func Open(file fs.File, start, end int64, useDirect bool, bufSize int) *Reader {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}

	if bufSize < fs.SectorSize {
		bufSize = fs.SectorSize
	}

	r := &Reader{
		file:       file,
		regionSize: end - start,
		curSlot:    -1,
		tb:         NewAlignedTripleBuffer(bufSize, fs.SectorSize),
	}

	alignedStart := start
	alignedEnd := end

	if useDirect {
		alignedStart = fs.AlignDown(start)
		alignedEnd = fs.AlignUp(end)
		r.prefixSkip = int(start - alignedStart)
	}

	go r.diskLoop(alignedStart, alignedEnd, bufSize)

	return r
}

func (r *Reader) diskLoop(start, end int64, bufSize int) {
	info, err := r.file.Stat()
	if err != nil {
		r.tb.Finish(err)
		return
	}

	fileSize := info.Size()

	slot := r.tb.WriterBuf()
	off := start

	for off < end {
		buf := r.tb.Buffer(slot)
		want := int64(bufSize)
		if off+want > end {
			want = end - off
		}

		// A direct-I/O region's aligned end can run past the file's true
		// size (O_DIRECT needs a sector-aligned length, the file doesn't).
		// Nothing past fileSize is really there to read, and advance()
		// never hands the caller anything past the unaligned regionSize
		// anyway, so the unread tail only needs to exist as zero bytes.
		readWant := want
		if off+readWant > fileSize {
			readWant = fileSize - off
			if readWant < 0 {
				readWant = 0
			}
		}

		if readWant > 0 {
			n, err := io.ReadFull(io.NewSectionReader(r.file, off, readWant), buf[:readWant])
			if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				r.tb.Finish(err)
				return
			}

			if int64(n) < readWant {
				r.tb.Finish(ErrShortRead)
				return
			}
		}

		clear(buf[readWant:want])

		off += want

		next, perr := r.tb.Publish(slot)
		if perr != nil {
			return
		}

		slot = next
	}

	r.tb.Finish(io.EOF)
}

// NextBlock returns the next blockSize bytes of the region, reading
// through as many published buffers as needed (a block may straddle a
// buffer boundary). It returns io.EOF together with the region's last
// slice: a short one when fewer than blockSize bytes remained, or a full
// one when the region ends exactly on a block boundary. Once nothing is
// left it returns (nil, io.EOF).
func (r *Reader) NextBlock(blockSize int) ([]byte, error) {
	out := make([]byte, 0, blockSize)

	for len(out) < blockSize {
		if !r.haveCur || len(r.cur) == 0 {
			if err := r.advance(); err != nil {
				if err == io.EOF && len(out) > 0 {
					return out, io.EOF
				}

				return nil, err
			}
		}

		n := blockSize - len(out)
		if n > len(r.cur) {
			n = len(r.cur)
		}

		out = append(out, r.cur[:n]...)
		r.cur = r.cur[n:]
	}

	if r.readSoFar >= r.regionSize && len(r.cur) == 0 {
		return out, io.EOF
	}

	return out, nil
}

// advance pulls the next published buffer, trimming the direct-I/O prefix
// skip as needed, and skips any buffer entirely consumed by the prefix
// skip, so a block-sized slice is still produced even when the first
// buffer is nothing but skip.
func (r *Reader) advance() error {
	for {
		slot, err := r.tb.Next(r.curSlot)
		if err != nil {
			r.haveCur = false
			return err
		}

		r.curSlot = slot
		buf := r.tb.Buffer(slot)

		lo := 0
		if r.prefixSkip > 0 {
			if r.prefixSkip >= len(buf) {
				r.prefixSkip -= len(buf)
				r.haveCur = false

				continue
			}

			lo = r.prefixSkip
			r.prefixSkip = 0
		}

		hi := len(buf)
		remaining := r.regionSize - r.readSoFar

		if int64(hi-lo) > remaining {
			hi = lo + int(remaining)
		}

		r.cur = buf[lo:hi]
		r.readSoFar += int64(len(r.cur))
		r.haveCur = true

		if len(r.cur) == 0 {
			continue
		}

		return nil
	}
}

// Close stops the disk goroutine and releases the triple buffer. It does
// not close the underlying file.
func (r *Reader) Close() {
	r.tb.Stop()
}
