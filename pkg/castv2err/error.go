// Package castv2err defines the single tagged error type returned across
// the CASTV2 session engine. Every public operation that can fail —
// discovery, transport I/O, TLS handshake, envelope/payload decode —
// surfaces one of these instead of an ad-hoc sentinel per package.
package castv2err

import (
	"errors"
	"fmt"
)

// Kind classifies the layer and reason an Error originated from.
type Kind uint8

const (
	// Dns indicates an mDNS discovery failure.
	Dns Kind = iota

	// Io indicates an underlying socket I/O error (excluding would-block,
	// which is swallowed by the transport and never surfaced here).
	Io

	// TlsHandshake indicates the TLS client handshake failed.
	TlsHandshake

	// Protobuf indicates the CastMessage envelope failed to encode or decode.
	Protobuf

	// UnknownMessageType indicates a payload whose "type" tag is
	// unrecognized, or whose envelope payload_type is BINARY.
	UnknownMessageType

	// UuidParse indicates a session or device UUID could not be parsed.
	UuidParse
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case Dns:
		return "Dns"
	case Io:
		return "Io"
	case TlsHandshake:
		return "TlsHandshake"
	case Protobuf:
		return "Protobuf"
	case UnknownMessageType:
		return "UnknownMessageType"
	case UuidParse:
		return "UuidParse"
	default:
		return "Unknown"
	}
}

// Error is the single tagged error type surfaced by this module.
type Error struct {
	Kind Kind
	// Tag carries the unrecognized message type for UnknownMessageType errors.
	Tag string
	Err error
}

func (e *Error) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Tag)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps cause under the given Kind.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// Newf formats a message and wraps it under the given Kind.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// NewUnknownMessageType builds the UnknownMessageType("tag") error from §4.3/§7.
func NewUnknownMessageType(tag string) *Error {
	return &Error{Kind: UnknownMessageType, Tag: tag}
}

// Is reports whether err, or any error it wraps, is a *Error of the given
// kind, e.g. castv2err.Is(err, castv2err.Dns).
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
