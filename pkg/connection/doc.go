// Package connection composes a transport.Transport with the wire codec:
// callers send and receive typed wire.Message values instead of raw
// frames (spec.md §4.4).
package connection
