// Package wire implements the CASTV2 wire format: the protobuf CastMessage
// envelope (field numbers preserved for bit-exact interop with real
// receivers) and the JSON payloads carried inside it.
//
// Encoding is hand-rolled against google.golang.org/protobuf/encoding/protowire
// at the wire level rather than through a protoc-generated struct, since no
// .proto stub is available in this environment and the schema is small and
// fixed (spec.md §6).
package wire
