package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// eventEncMode and eventDecMode are the CBOR modes every Event on the wire
// to a .clog trace file is encoded/decoded with: canonical sort so two
// traces of the same events compare byte-equal, and nanosecond-precision
// timestamps since PING/PONG round-trip timing is worth preserving exactly.
var (
	eventEncMode cbor.EncMode
	eventDecMode cbor.DecMode
)

func init() {
	enc, err := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: building CBOR encoder mode: %v", err))
	}
	eventEncMode = enc

	dec, err := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: building CBOR decoder mode: %v", err))
	}
	eventDecMode = dec
}

// EncodeEvent encodes event to CBOR using its integer-keyed field tags.
func EncodeEvent(event Event) ([]byte, error) {
	return eventEncMode.Marshal(event)
}

// DecodeEvent decodes one CBOR-encoded Event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := eventDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns a streaming CBOR encoder over w, for writing a
// sequence of Events one at a time (as FileLogger does).
func NewEncoder(w io.Writer) *cbor.Encoder {
	return eventEncMode.NewEncoder(w)
}

// NewDecoder returns a streaming CBOR decoder over r, for replaying a
// sequence of Events previously written by NewEncoder (as Reader does).
func NewDecoder(r io.Reader) *cbor.Decoder {
	return eventDecMode.NewDecoder(r)
}
