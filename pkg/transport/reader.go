package transport

import (
	"encoding/binary"
	"fmt"
	"io"
)

type readState uint8

const (
	readingSize readState = iota
	readingBody
)

// frameReader is a resumable length-prefixed frame decoder: each call to
// feed consumes whatever is currently available from src and returns any
// frames completed so far, preserving partial progress across calls. This
// mirrors the original Rust Reader enum (ReadingSize{bytes} /
// ReadingBody{bytes, size}), since CASTV2 frames routinely straddle
// arbitrary TCP read boundaries (spec.md §4.2, property #1).
type frameReader struct {
	state   readState
	maxSize uint32

	sizeBuf    [LengthPrefixSize]byte
	sizeFilled int

	bodyBuf    []byte
	bodyFilled int
}

func newFrameReader(maxSize uint32) *frameReader {
	return &frameReader{maxSize: maxSize}
}

// feed reads from src until it would block (or errors), returning every
// frame body completed along the way. A wouldBlockError is not treated as
// a failure: callers should inspect it with isWouldBlock and simply wait
// for the next readiness event.
func (r *frameReader) feed(src io.Reader) ([][]byte, error) {
	var frames [][]byte

	for {
		switch r.state {
		case readingSize:
			n, err := src.Read(r.sizeBuf[r.sizeFilled:])
			if n > 0 {
				r.sizeFilled += n
			}
			if r.sizeFilled == LengthPrefixSize {
				size := binary.BigEndian.Uint32(r.sizeBuf[:])
				if size == 0 {
					return frames, ErrMessageEmpty
				}
				if size > r.maxSize {
					return frames, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, size, r.maxSize)
				}
				r.bodyBuf = make([]byte, size)
				r.bodyFilled = 0
				r.sizeFilled = 0
				r.state = readingBody
				continue
			}
			if err != nil {
				return frames, err
			}

		case readingBody:
			n, err := src.Read(r.bodyBuf[r.bodyFilled:])
			if n > 0 {
				r.bodyFilled += n
			}
			if r.bodyFilled == len(r.bodyBuf) {
				frames = append(frames, r.bodyBuf)
				r.bodyBuf = nil
				r.bodyFilled = 0
				r.state = readingSize
				continue
			}
			if err != nil {
				return frames, err
			}
		}
	}
}
