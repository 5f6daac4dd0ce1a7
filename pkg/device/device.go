package device

import (
	"net"

	"github.com/castgo/castv2/pkg/connection"
	"github.com/castgo/castv2/pkg/discovery"
	"github.com/castgo/castv2/pkg/reactor"
	"github.com/castgo/castv2/pkg/transport"
	"github.com/castgo/castv2/pkg/wire"
)

// Device is the high-level session handle: it owns exactly one
// Connection, enforces the CASTV2 session protocol (auto-PONG, status
// caching, event emission), and exposes the command surface (spec.md §4.6).
type Device struct {
	conn        *connection.Connection
	source      wire.EndpointName
	destination wire.EndpointName

	status *wire.Status
	queue  eventQueue
}

// Connect opens a Connection to info and sends exactly one Connect
// message on the connection namespace before returning (spec.md §4.6,
// invariant "after construction..."). The transport itself connects
// asynchronously; Connect merely queues the CONNECT frame, which the
// underlying Transport flushes automatically once the TLS handshake
// completes (spec.md §4.2).
//
// Messages are addressed from "sender-0" to "receiver-0" rather than the
// literal "sender-0"/"sender-0" pairing — see SPEC_FULL.md's resolution
// of open question #1.
func Connect(info discovery.DeviceInfo, r *reactor.Reactor) (*Device, error) {
	return connectToAddr(&net.TCPAddr{IP: info.IPAddr, Port: discovery.Port}, r, transport.DefaultMaxMessageSize)
}

// ConnectWithMaxSize is Connect with an explicit frame-size ceiling for the
// underlying transport, so a host driver (cmd/castctl, via pkg/config) can
// raise or lower transport.DefaultMaxMessageSize per device.
func ConnectWithMaxSize(info discovery.DeviceInfo, r *reactor.Reactor, maxMessageSize uint32) (*Device, error) {
	return connectToAddr(&net.TCPAddr{IP: info.IPAddr, Port: discovery.Port}, r, maxMessageSize)
}

// connectToAddr is Connect's implementation, parameterized on the full
// address so tests can dial a fake receiver's ephemeral port directly.
func connectToAddr(addr *net.TCPAddr, r *reactor.Reactor, maxMessageSize uint32) (*Device, error) {
	conn, err := connection.ConnectWithMaxSize(addr, r, maxMessageSize)
	if err != nil {
		return nil, err
	}

	d := &Device{
		conn:        conn,
		source:      wire.EndpointSender,
		destination: wire.EndpointReceiver,
	}

	connectMsg := wire.NewMessage(d.source, d.destination, wire.NamespaceConnection, wire.MessageKind{Tag: wire.TagConnect})
	if err := conn.Send(&connectMsg); err != nil {
		return nil, err
	}

	return d, nil
}

// Token returns the reactor token this Device's connection is registered
// under.
func (d *Device) Token() reactor.Token { return d.conn.Token() }

// State reports the underlying transport's lifecycle state.
func (d *Device) State() transport.State { return d.conn.State() }

// UpdateStatus requests a fresh RECEIVER_STATUS.
func (d *Device) UpdateStatus() error {
	return d.send(wire.NamespaceReceiver, wire.MessageKind{Tag: wire.TagGetStatus})
}

// Launch requests the receiver start appId.
func (d *Device) Launch(appID wire.ApplicationId) error {
	return d.send(wire.NamespaceReceiver, wire.MessageKind{
		Tag:    wire.TagLaunch,
		Launch: &wire.LaunchPayload{AppId: appID, RequestId: 1},
	})
}

// Stop ends the application session identified by sessionID.
func (d *Device) Stop(sessionID string) error {
	return d.send(wire.NamespaceReceiver, wire.MessageKind{
		Tag:  wire.TagStop,
		Stop: &wire.StopPayload{SessionId: sessionID},
	})
}

// SetVolume requests a volume change. Either level or muted (or both) may
// be nil; only the non-nil fields are emitted (spec.md §4.3 scenario E).
func (d *Device) SetVolume(level *wire.VolumeLevel, muted *bool) error {
	return d.send(wire.NamespaceReceiver, wire.MessageKind{
		Tag:       wire.TagSetVolume,
		SetVolume: &wire.SetVolumePayload{Level: level, Muted: muted},
	})
}

// QueryAppAvailability asks the receiver whether each app ID is
// available. Additive to spec.md's command table (SPEC_FULL.md §4.6).
func (d *Device) QueryAppAvailability(appIDs []wire.ApplicationId) error {
	return d.send(wire.NamespaceReceiver, wire.MessageKind{
		Tag:                wire.TagGetAppAvailability,
		GetAppAvailability: &wire.GetAppAvailabilityPayload{AppIds: appIDs},
	})
}

func (d *Device) send(ns wire.Namespace, kind wire.MessageKind) error {
	msg := wire.NewMessage(d.source, d.destination, ns, kind)
	return d.conn.Send(&msg)
}

// HandleIO drives the connection forward, then applies the CASTV2
// session protocol to every message that became available: auto-PONG on
// PING, status caching plus StatusUpdated on RECEIVER_STATUS, and
// LaunchFailed on LAUNCH_ERROR. Any other kind is ignored.
func (d *Device) HandleIO(ev reactor.Event) error {
	if err := d.conn.HandleEvent(ev); err != nil {
		return err
	}

	messages, err := d.conn.Receive()
	for _, msg := range messages {
		if handleErr := d.handleMessage(msg); handleErr != nil && err == nil {
			err = handleErr
		}
	}
	return err
}

// handleMessage applies session-level policy to one inbound message. A
// non-nil return (currently only a failed auto-PONG send) must reach
// HandleIO's caller per spec.md §7: I/O errors on any operation the
// library performs, including the PONG this method sends on the caller's
// behalf, are surfaced rather than swallowed.
func (d *Device) handleMessage(msg wire.Message) error {
	switch msg.Kind.Tag {
	case wire.TagPing:
		pong := wire.NewMessage(msg.Destination, msg.Source, msg.Namespace, wire.MessageKind{Tag: wire.TagPong})
		return d.conn.Send(&pong)
	case wire.TagReceiverStatus:
		d.status = msg.Kind.ReceiverStatus
		d.queue.push(Event{Tag: EventStatusUpdated})
	case wire.TagLaunchError:
		d.queue.push(Event{Tag: EventLaunchFailed, LaunchError: msg.Kind.LaunchError})
	default:
		// Ignored: no other inbound kind carries session-level policy.
	}
	return nil
}

// Events drains and returns all queued events, leaving the queue empty.
func (d *Device) Events() []Event {
	return d.queue.drain()
}

// Status returns the most recently cached RECEIVER_STATUS, or nil if none
// has been received yet.
func (d *Device) Status() *wire.Status {
	return d.status
}

// Close releases the underlying connection.
func (d *Device) Close() error {
	return d.conn.Close()
}
