package reactor

import (
	"fmt"
	"sync/atomic"
)

// EventBufferCapacity is the pre-allocated size of the readiness event
// buffer passed to the underlying poller on each Poll call.
const EventBufferCapacity = 1024

// Token uniquely identifies a registered socket within one Reactor.
// Readiness events carry a Token so the host can demultiplex them back to
// the owning Transport.
type Token uint64

// Readiness is a bitmask of the interest/observed conditions on a socket.
type Readiness uint8

const (
	// Readable indicates the socket has data available to read, or (for a
	// still-connecting socket) is otherwise ready to be checked.
	Readable Readiness = 1 << iota
	// Writable indicates the socket can accept a write without blocking,
	// or (for a connecting socket) that the TCP handshake has completed.
	Writable
	// Hup indicates the peer closed its end of the connection.
	Hup
)

func (r Readiness) String() string {
	s := ""
	if r&Readable != 0 {
		s += "R"
	}
	if r&Writable != 0 {
		s += "W"
	}
	if r&Hup != 0 {
		s += "H"
	}
	if s == "" {
		return "-"
	}
	return s
}

// TriggerMode selects edge- or level-triggered readiness semantics.
// The Framed Transport in pkg/transport requires LevelTriggered (see
// spec.md §4.2): readiness keeps firing until the socket is fully drained
// or written, rather than only once per state transition.
type TriggerMode uint8

const (
	// LevelTriggered re-delivers readiness every Poll call while the
	// condition still holds.
	LevelTriggered TriggerMode = iota
	// EdgeTriggered delivers readiness only once per transition.
	EdgeTriggered
)

// Event is one readiness notification for a registered Token.
type Event struct {
	Token     Token
	Readiness Readiness
}

// ErrUnsupportedPlatform is returned by NewReactor on platforms with no
// poller backend.
var ErrUnsupportedPlatform = fmt.Errorf("reactor: unsupported platform")

// Reactor owns a readiness poller, a pre-allocated event buffer, and a
// monotonically increasing token allocator shared by every Transport
// registered against it. It is never a process-wide singleton: construct
// one per host event loop and pass it by reference to each constructor
// that needs to register a socket (spec.md §9).
type Reactor struct {
	nextToken atomic.Uint64
	poller    poller
	eventBuf  []Event
}

// poller is the platform-specific backend. See reactor_linux.go.
type poller interface {
	register(fd int, token Token, mode TriggerMode) error
	deregister(fd int) error
	wait(timeoutMillis int, buf []Event) ([]Event, error)
	close() error
}

// NewReactor creates a Reactor ready to register sockets.
func NewReactor() (*Reactor, error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}
	return &Reactor{poller: p, eventBuf: make([]Event, 0, EventBufferCapacity)}, nil
}

// CreateToken allocates a new Token, unique for the lifetime of this Reactor.
func (r *Reactor) CreateToken() Token {
	return Token(r.nextToken.Add(1))
}

// Register begins tracking fd for the given readiness interest under mode,
// associated with token. Transport.ConnectTo calls this once per socket
// at construction time (spec.md §4.2: readable | writable | hup, level-triggered).
func (r *Reactor) Register(fd int, token Token, mode TriggerMode) error {
	return r.poller.register(fd, token, mode)
}

// Deregister stops tracking fd. Called when a Transport is torn down.
func (r *Reactor) Deregister(fd int) error {
	return r.poller.deregister(fd)
}

// Poll blocks for up to timeoutMillis (negative means forever) and returns
// the readiness events observed, using the Reactor's pre-allocated
// EventBufferCapacity-sized buffer. The returned slice aliases reactor-
// owned storage and is only valid until the next Poll call.
func (r *Reactor) Poll(timeoutMillis int) ([]Event, error) {
	r.eventBuf = r.eventBuf[:0]
	return r.poller.wait(timeoutMillis, r.eventBuf)
}

// Close releases the underlying poller resources (e.g. the epoll fd).
func (r *Reactor) Close() error {
	return r.poller.close()
}
