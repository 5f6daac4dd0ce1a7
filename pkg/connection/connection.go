package connection

import (
	"net"

	"github.com/castgo/castv2/pkg/reactor"
	"github.com/castgo/castv2/pkg/transport"
	"github.com/castgo/castv2/pkg/wire"
)

// Connection is a thin composition of Transport + Codec.
type Connection struct {
	transport *transport.Transport
}

// Connect opens a Connection to addr, registering its socket with r. The
// returned Connection begins in transport.PendingConnected; the caller
// must keep feeding it reactor events via HandleEvent until State()
// reports transport.Connected. The transport's frame reader is bounded at
// transport.DefaultMaxMessageSize; use ConnectWithMaxSize to override it.
func Connect(addr *net.TCPAddr, r *reactor.Reactor) (*Connection, error) {
	return ConnectWithMaxSize(addr, r, transport.DefaultMaxMessageSize)
}

// ConnectWithMaxSize is Connect with an explicit frame-size ceiling,
// passed through to transport.NewTransportWithMaxSize so a configured
// castctl tunable actually reaches the reader it documents bounding.
func ConnectWithMaxSize(addr *net.TCPAddr, r *reactor.Reactor, maxSize uint32) (*Connection, error) {
	t := transport.NewTransportWithMaxSize(maxSize)
	if err := t.ConnectTo(addr, r); err != nil {
		return nil, err
	}
	return &Connection{transport: t}, nil
}

// Token returns the reactor token this Connection's transport is
// registered under.
func (c *Connection) Token() reactor.Token { return c.transport.Token() }

// State reports the underlying transport's lifecycle state.
func (c *Connection) State() transport.State { return c.transport.State() }

// HandleEvent drives the underlying transport forward.
func (c *Connection) HandleEvent(ev reactor.Event) error {
	return c.transport.HandleEvent(ev)
}

// Send encodes msg to its wire envelope and queues it for delivery.
func (c *Connection) Send(msg *wire.Message) error {
	data, err := wire.EncodeMessage(msg)
	if err != nil {
		return err
	}
	return c.transport.Send(data)
}

// Receive drains the transport's completed frames and decodes each to a
// Message. A decode error aborts the drain and is returned; frames
// decoded before the failing one are still returned alongside the error.
func (c *Connection) Receive() ([]wire.Message, error) {
	raw := c.transport.Receive()
	messages := make([]wire.Message, 0, len(raw))
	for _, frame := range raw {
		msg, err := wire.DecodeMessage(frame)
		if err != nil {
			return messages, err
		}
		messages = append(messages, *msg)
	}
	return messages, nil
}

// Close releases the underlying transport.
func (c *Connection) Close() error {
	return c.transport.Close()
}
