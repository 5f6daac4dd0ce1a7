package transport

import (
	"io"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// wouldBlockError signals that a non-blocking read had no data available
// yet. It satisfies net.Error so crypto/tls's record layer treats it as a
// transient condition rather than a fatal one, letting the caller resume
// the read later once the reactor reports readiness again.
type wouldBlockError struct{}

func (wouldBlockError) Error() string   { return "transport: read would block" }
func (wouldBlockError) Timeout() bool   { return true }
func (wouldBlockError) Temporary() bool { return true }

var errWouldBlock net.Error = wouldBlockError{}

func isWouldBlock(err error) bool {
	var ne net.Error
	return err != nil && errorsAs(err, &ne) && ne.Timeout()
}

// rawConn adapts a non-blocking socket fd to net.Conn so it can be wrapped
// by tls.Client. Reads surface errWouldBlock on EAGAIN so the reactor-driven
// caller can retry on the next readiness event (spec.md §4.2's resumable
// Reader).
//
// Writes never block either: crypto/tls requires its underlying io.Writer
// to accept a whole TLS record or permanently fail the connection (it has
// no notion of resuming a short write), but spec.md §4.2/§5 forbid this
// library from ever blocking the host thread outside the TLS handshake.
// Write buffers whatever tls.Conn hands it, makes one non-blocking attempt
// to drain that buffer to the socket, and always reports the full byte
// count accepted to the TLS layer regardless of how much actually reached
// the kernel. Flush repeats that non-blocking drain attempt; Transport
// calls it on every Writable readiness event until the buffer empties,
// which is the same "retry on the next readiness event" policy the Reader
// already uses for non-blocking reads.
type rawConn struct {
	fd         int
	localAddr  net.Addr
	remoteAddr net.Addr

	pending []byte
	werr    error
}

func (c *rawConn) Read(b []byte) (int, error) {
	n, err := unix.Read(c.fd, b)
	if err != nil {
		if err == unix.EAGAIN {
			return 0, errWouldBlock
		}
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write never touches the kernel beyond one non-blocking attempt: it
// appends b to any already-pending bytes, tries once to drain the
// combined buffer, and reports (len(b), nil) unless a previous Write or
// Flush latched a hard (non-EAGAIN) error. tls.Conn never sees a short
// write, and the caller never blocks.
func (c *rawConn) Write(b []byte) (int, error) {
	if c.werr != nil {
		return 0, c.werr
	}
	c.pending = append(c.pending, b...)
	c.drain()
	if c.werr != nil {
		return 0, c.werr
	}
	return len(b), nil
}

// Flush makes one more non-blocking attempt to drain bytes buffered by a
// prior Write. Transport calls this on every Writable reactor readiness
// event until the buffer empties (mirroring how the resumable Reader is
// fed on every Readable event). errWouldBlock from Flush means the
// buffer isn't empty yet, not a failure.
func (c *rawConn) Flush() error {
	if c.werr != nil {
		return c.werr
	}
	c.drain()
	if c.werr != nil {
		return c.werr
	}
	if len(c.pending) > 0 {
		return errWouldBlock
	}
	return nil
}

// drain makes one non-blocking pass writing c.pending to the fd,
// trimming off whatever the kernel accepted. A hard error is latched in
// c.werr so every subsequent Write/Flush call reports it rather than
// silently resuming.
func (c *rawConn) drain() {
	for len(c.pending) > 0 {
		n, err := unix.Write(c.fd, c.pending)
		if n > 0 {
			c.pending = c.pending[n:]
		}
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			c.werr = err
			return
		}
	}
}

func (c *rawConn) Close() error                       { return unix.Close(c.fd) }
func (c *rawConn) LocalAddr() net.Addr                { return c.localAddr }
func (c *rawConn) RemoteAddr() net.Addr               { return c.remoteAddr }
func (c *rawConn) SetDeadline(t time.Time) error      { return nil }
func (c *rawConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *rawConn) SetWriteDeadline(t time.Time) error { return nil }

// errorsAs reports whether err itself implements net.Error, storing it in
// target if so. Unlike errors.As it does not unwrap err.
func errorsAs(err error, target *net.Error) bool {
	if e, ok := err.(net.Error); ok {
		*target = e
		return true
	}
	return false
}
