package transport

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/castgo/castv2/pkg/castv2err"
	"github.com/castgo/castv2/pkg/log"
	"github.com/castgo/castv2/pkg/reactor"
)

// maxLogFrameDataSize bounds how much of a frame's body is copied into a
// log event; larger frames are truncated to avoid excessive memory use.
const maxLogFrameDataSize = 4096

// State is the Transport's connection lifecycle state.
type State uint8

const (
	// Disconnected is the zero-value state before ConnectTo is called.
	Disconnected State = iota

	// PendingConnected covers the in-flight connect(2); once that
	// completes, the TLS handshake runs within a single HandleEvent call.
	PendingConnected

	// Connected means the TLS handshake finished; Send/Receive are live.
	Connected
)

// Transport owns one non-blocking, TLS-wrapped TCP socket to a receiver.
type Transport struct {
	state State

	fd      int
	token   reactor.Token
	reactor *reactor.Reactor

	raw       *rawConn
	tlsConfig *tls.Config
	tlsConn   *tls.Conn

	reader   *frameReader
	received [][]byte
	writeBuf []byte

	logger log.Logger
	connID string
}

// SetLogger configures protocol-event logging for this transport. Pass
// nil to disable logging.
func (t *Transport) SetLogger(logger log.Logger, connID string) {
	t.logger = logger
	t.connID = connID
}

func (t *Transport) logFrame(data []byte, direction log.Direction) {
	if t.logger == nil {
		return
	}
	frameData := data
	truncated := false
	if len(data) > maxLogFrameDataSize {
		frameData = data[:maxLogFrameDataSize]
		truncated = true
	}
	t.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.connID,
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size:      FrameSize(len(data)),
			Data:      frameData,
			Truncated: truncated,
		},
	})
}

// NewTransport constructs a Transport not yet connected to anything, with
// the frame reader bounded at DefaultMaxMessageSize.
func NewTransport() *Transport {
	return NewTransportWithMaxSize(DefaultMaxMessageSize)
}

// NewTransportWithMaxSize is NewTransport with an explicit frame-size
// ceiling, so a host (e.g. cmd/castctl, via pkg/config) can raise or lower
// DefaultMaxMessageSize without forking the Transport type.
func NewTransportWithMaxSize(maxSize uint32) *Transport {
	return &Transport{
		state:     Disconnected,
		reader:    newFrameReader(maxSize),
		tlsConfig: NewClientTLSConfig(),
	}
}

// State reports the current lifecycle state.
func (t *Transport) State() State { return t.state }

// Token returns the reactor token this Transport was registered under.
// Valid only once ConnectTo has succeeded.
func (t *Transport) Token() reactor.Token { return t.token }

// ConnectTo opens a non-blocking socket to addr and registers it with r
// for readable | writable | hup readiness, level-triggered, per spec.md
// §4.2's PendingConnected start state.
// It returns as soon as the connect(2) call is issued; completion is
// observed later via HandleEvent.
func (t *Transport) ConnectTo(addr *net.TCPAddr, r *reactor.Reactor) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return castv2err.New(castv2err.Io, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return castv2err.New(castv2err.Io, err)
	}

	ip4 := addr.IP.To4()
	if ip4 == nil {
		unix.Close(fd)
		return castv2err.Newf(castv2err.Io, "transport: only IPv4 receivers are supported, got %s", addr.IP)
	}
	sa := &unix.SockaddrInet4{Port: addr.Port}
	copy(sa.Addr[:], ip4)

	if err := unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return castv2err.New(castv2err.Io, err)
	}

	token := r.CreateToken()
	if err := r.Register(fd, token, reactor.LevelTriggered); err != nil {
		unix.Close(fd)
		return castv2err.New(castv2err.Io, err)
	}

	t.fd = fd
	t.token = token
	t.reactor = r
	t.raw = &rawConn{fd: fd, remoteAddr: addr}
	t.state = PendingConnected
	return nil
}

// HandleEvent advances the Transport's state machine in response to one
// reactor.Event. Events for a different token are ignored so callers can
// fan events from a single Reactor.Poll out to many transports.
func (t *Transport) HandleEvent(ev reactor.Event) error {
	if ev.Token != t.token {
		return nil
	}

	switch t.state {
	case PendingConnected:
		return t.advanceHandshake()
	case Connected:
		if ev.Readiness&reactor.Writable != 0 {
			if err := t.flushWriteBuf(); err != nil {
				return err
			}
		}
		if ev.Readiness&reactor.Readable != 0 {
			if err := t.fillReceived(); err != nil {
				return err
			}
		}
	}
	return nil
}

// advanceHandshake checks for connect(2) completion, then runs the TLS
// handshake to completion. crypto/tls keeps the first error a handshake
// returns, so a handshake interrupted by a would-block read could never
// be resumed; the socket is therefore put in blocking mode for the
// handshake and returned to non-blocking mode afterwards.
func (t *Transport) advanceHandshake() error {
	if t.tlsConn == nil {
		errno, err := unix.GetsockoptInt(t.fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return castv2err.New(castv2err.Io, err)
		}
		if errno != 0 {
			return castv2err.New(castv2err.Io, fmt.Errorf("connect: %w", unix.Errno(errno)))
		}
		t.tlsConn = tls.Client(t.raw, t.tlsConfig)
	}

	if err := unix.SetNonblock(t.fd, false); err != nil {
		return castv2err.New(castv2err.Io, err)
	}
	hsErr := t.tlsConn.Handshake()
	if err := unix.SetNonblock(t.fd, true); err != nil {
		return castv2err.New(castv2err.Io, err)
	}
	if hsErr != nil {
		return castv2err.New(castv2err.TlsHandshake, hsErr)
	}

	t.state = Connected
	return t.flushWriteBuf()
}

// Send encodes and appends payload to the outbound queue; it never
// blocks and never performs I/O itself (spec.md §4.2). The queue is
// drained by flushWriteBuf, which only runs from HandleEvent on a
// Writable readiness event (or immediately after the handshake
// completes, since rawConn.Write/Flush are themselves non-blocking).
func (t *Transport) Send(payload []byte) error {
	frame, err := EncodeFrame(payload)
	if err != nil {
		return err
	}
	t.writeBuf = append(t.writeBuf, frame...)
	t.logFrame(payload, log.DirectionOut)
	return nil
}

// flushWriteBuf hands any queued frame bytes to the TLS layer and then
// makes a non-blocking attempt to drain whatever rawConn has buffered
// underneath it. Neither step blocks: rawConn.Write/Flush always return
// immediately, reporting errWouldBlock (not an error Send's caller needs
// to see) when the kernel socket buffer is still full. A stalled
// receiver therefore just leaves bytes queued for the next Writable
// readiness event instead of blocking the host loop.
func (t *Transport) flushWriteBuf() error {
	if t.state != Connected {
		return nil
	}
	if len(t.writeBuf) > 0 {
		n, err := t.tlsConn.Write(t.writeBuf)
		if n > 0 {
			t.writeBuf = t.writeBuf[n:]
		}
		if err != nil && !isWouldBlock(err) {
			return castv2err.New(castv2err.Io, err)
		}
	}
	if err := t.raw.Flush(); err != nil && !isWouldBlock(err) {
		return castv2err.New(castv2err.Io, err)
	}
	return nil
}

func (t *Transport) fillReceived() error {
	frames, err := t.reader.feed(t.tlsConn)
	for _, frame := range frames {
		t.logFrame(frame, log.DirectionIn)
	}
	t.received = append(t.received, frames...)
	if err == nil || isWouldBlock(err) {
		return nil
	}
	if errors.Is(err, ErrMessageTooLarge) || errors.Is(err, ErrMessageEmpty) {
		return castv2err.New(castv2err.Protobuf, err)
	}
	return castv2err.New(castv2err.Io, err)
}

// Receive drains and returns every frame body completed since the last
// call.
func (t *Transport) Receive() [][]byte {
	out := t.received
	t.received = nil
	return out
}

// Close deregisters the socket from the reactor and closes it.
func (t *Transport) Close() error {
	if t.reactor != nil {
		_ = t.reactor.Deregister(t.fd)
	}
	if t.tlsConn != nil {
		return t.tlsConn.Close()
	}
	if t.raw != nil {
		return t.raw.Close()
	}
	return nil
}
