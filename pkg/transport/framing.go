package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Framing constants (spec.md §6: CASTV2 frames are a 4-byte big-endian
// length prefix followed by a serialized protobuf CastMessage).
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4

	// DefaultMaxMessageSize bounds a single frame's body (SPEC_FULL.md §4.2).
	// Real receivers never send anything close to this; the bound exists
	// purely to keep a malformed or hostile length prefix from causing an
	// unbounded allocation.
	DefaultMaxMessageSize = 1 << 20
)

// Framing errors.
var (
	// ErrMessageTooLarge indicates the message exceeds the maximum size.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrMessageEmpty indicates an empty message.
	ErrMessageEmpty = errors.New("message is empty")
)

// EncodeFrame prepends the 4-byte big-endian length prefix to payload.
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrMessageEmpty
	}
	if uint32(len(payload)) > DefaultMaxMessageSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(payload), DefaultMaxMessageSize)
	}

	frame := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[LengthPrefixSize:], payload)
	return frame, nil
}

// FrameSize returns the total frame size including the length prefix.
func FrameSize(payloadSize int) int {
	return LengthPrefixSize + payloadSize
}
