// Package transport drives the raw, non-blocking, TLS-wrapped TCP
// connection to a single Cast receiver. A Transport starts
// PendingConnected on a non-blocking socket whose connect(2) is still in
// flight, and moves to Connected the first time the reactor reports the
// socket writable and the subsequent TLS handshake completes (spec.md
// §4.2). All I/O is driven by feeding reactor.Event values into
// HandleEvent; nothing here blocks the calling goroutine on the network
// except the TLS handshake, which runs with the socket temporarily in
// blocking mode (see Transport.advanceHandshake).
package transport
