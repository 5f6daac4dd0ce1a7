package device

import (
	"crypto/tls"
	"net"
	"testing"
	"time"

	"github.com/castgo/castv2/internal/testtls"
	"github.com/castgo/castv2/pkg/reactor"
	"github.com/castgo/castv2/pkg/transport"
	"github.com/castgo/castv2/pkg/wire"
)

// fakeReceiver starts a local TLS listener and hands the accepted
// connection to handler on its own goroutine, standing in for a real
// Cast receiver's side of the session.
func fakeReceiver(t *testing.T, handler func(net.Conn)) net.Listener {
	t.Helper()
	cert, err := testtls.GenerateSelfSignedLeaf("fake-receiver")
	if err != nil {
		t.Fatalf("GenerateSelfSignedLeaf: %v", err)
	}
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{cert}})
	if err != nil {
		t.Fatalf("tls.Listen: %v", err)
	}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}()
	return ln
}

func readFrame(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	var lenBuf [4]byte
	if _, err := readFull(conn, lenBuf[:]); err != nil {
		t.Fatalf("read length prefix: %v", err)
	}
	size := int(lenBuf[0])<<24 | int(lenBuf[1])<<16 | int(lenBuf[2])<<8 | int(lenBuf[3])
	body := make([]byte, size)
	if _, err := readFull(conn, body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return body
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func writeFrame(t *testing.T, conn net.Conn, msg *wire.Message) {
	t.Helper()
	data, err := wire.EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	frame, err := transport.EncodeFrame(data)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if _, err := conn.Write(frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

// connectAt is a test-only variant of Connect that dials the listener's
// actual ephemeral port directly (discovery.Port is fixed at 8009 in the
// real client).
func connectAt(t *testing.T, addr *net.TCPAddr, r *reactor.Reactor) *Device {
	t.Helper()
	d, err := connectToAddr(addr, r, transport.DefaultMaxMessageSize)
	if err != nil {
		t.Fatalf("connectToAddr: %v", err)
	}
	return d
}

func pumpUntilConnected(t *testing.T, d *Device, r *reactor.Reactor) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for d.State() != transport.Connected && time.Now().Before(deadline) {
		events, err := r.Poll(100)
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		for _, ev := range events {
			if err := d.HandleIO(ev); err != nil {
				t.Fatalf("HandleIO: %v", err)
			}
		}
	}
	if d.State() != transport.Connected {
		t.Fatal("device never reached Connected")
	}
}

func pumpUntil(t *testing.T, d *Device, r *reactor.Reactor, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !done() && time.Now().Before(deadline) {
		events, err := r.Poll(100)
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		for _, ev := range events {
			if err := d.HandleIO(ev); err != nil {
				t.Fatalf("HandleIO: %v", err)
			}
		}
	}
	if !done() {
		t.Fatal("condition never satisfied within deadline")
	}
}

func TestDevicePingPong(t *testing.T) {
	responses := make(chan []byte, 1)
	ln := fakeReceiver(t, func(conn net.Conn) {
		readFrame(t, conn) // the CONNECT sent on construction
		ping := wire.NewMessage(wire.EndpointReceiver, wire.EndpointSender, wire.NamespaceHeartbeat, wire.MessageKind{Tag: wire.TagPing})
		writeFrame(t, conn, &ping)
		responses <- readFrame(t, conn)
	})
	defer ln.Close()

	r, err := reactor.NewReactor()
	if err != nil {
		t.Fatalf("NewReactor: %v", err)
	}
	defer r.Close()
	d := connectAt(t, ln.Addr().(*net.TCPAddr), r)
	defer d.Close()

	pumpUntilConnected(t, d, r)

	var pongBytes []byte
	deadline := time.Now().Add(5 * time.Second)
	for pongBytes == nil && time.Now().Before(deadline) {
		select {
		case pongBytes = <-responses:
		default:
			events, err := r.Poll(100)
			if err != nil {
				t.Fatalf("Poll: %v", err)
			}
			for _, ev := range events {
				if err := d.HandleIO(ev); err != nil {
					t.Fatalf("HandleIO: %v", err)
				}
			}
		}
	}
	if pongBytes == nil {
		t.Fatal("never received a PONG frame")
	}

	pong, err := wire.DecodeMessage(pongBytes)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if pong.Kind.Tag != wire.TagPong {
		t.Fatalf("got tag %v, want TagPong", pong.Kind.Tag)
	}
	if pong.Source != wire.EndpointSender || pong.Destination != wire.EndpointReceiver {
		t.Fatalf("pong addressing mismatch: %+v", pong)
	}
}

func TestDeviceStatusUpdate(t *testing.T) {
	ln := fakeReceiver(t, func(conn net.Conn) {
		readFrame(t, conn)
		env := &wire.Envelope{
			ProtocolVersion: wire.ProtocolVersionCastV2_1_0,
			SourceId:        string(wire.EndpointReceiver),
			DestinationId:   string(wire.EndpointSender),
			Namespace:       string(wire.NamespaceReceiver),
			PayloadType:     wire.PayloadString,
			PayloadUtf8:     `{"type":"RECEIVER_STATUS","status":{"volume":{"controlType":"attenuation","level":0.85,"muted":true,"stepInterval":0.125},"applications":[{"appId":"YouTube","displayName":"YouTube","isIdleScreen":false,"sessionId":"e32a8e92-29cd-4afb-9d2b-6314040022d8","statusText":"YouTube TV"}]}}`,
		}
		frame, _ := transport.EncodeFrame(wire.EncodeEnvelope(env))
		conn.Write(frame)
	})
	defer ln.Close()

	r, err := reactor.NewReactor()
	if err != nil {
		t.Fatalf("NewReactor: %v", err)
	}
	defer r.Close()
	d := connectAt(t, ln.Addr().(*net.TCPAddr), r)
	defer d.Close()

	pumpUntilConnected(t, d, r)
	pumpUntil(t, d, r, func() bool { return d.Status() != nil })

	status := d.Status()
	if status.Volume.Level != 0.85 || !status.Volume.Muted {
		t.Fatalf("volume mismatch: %+v", status.Volume)
	}
	if len(status.Applications) != 1 || status.Applications[0].Id != "YouTube" {
		t.Fatalf("applications mismatch: %+v", status.Applications)
	}

	events := d.Events()
	if len(events) != 1 || events[0].Tag != EventStatusUpdated {
		t.Fatalf("got events %+v, want exactly one StatusUpdated", events)
	}

	if drained := d.Events(); len(drained) != 0 {
		t.Fatalf("second drain returned %+v, want empty", drained)
	}
}

func TestDeviceLaunchEncoding(t *testing.T) {
	captured := make(chan []byte, 1)
	ln := fakeReceiver(t, func(conn net.Conn) {
		readFrame(t, conn)
		captured <- readFrame(t, conn)
	})
	defer ln.Close()

	r, err := reactor.NewReactor()
	if err != nil {
		t.Fatalf("NewReactor: %v", err)
	}
	defer r.Close()
	d := connectAt(t, ln.Addr().(*net.TCPAddr), r)
	defer d.Close()

	pumpUntilConnected(t, d, r)
	if err := d.Launch("YouTube"); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	var frame []byte
	select {
	case frame = <-captured:
	case <-time.After(5 * time.Second):
		t.Fatal("never captured LAUNCH frame")
	}

	env, err := wire.DecodeEnvelope(frame)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if env.Namespace != string(wire.NamespaceReceiver) {
		t.Fatalf("got namespace %q, want receiver", env.Namespace)
	}
	if env.PayloadUtf8 != `{"type":"LAUNCH","appId":"YouTube","requestId":1}` {
		t.Fatalf("got payload %q", env.PayloadUtf8)
	}
}

func TestDeviceSetVolumePartial(t *testing.T) {
	captured := make(chan []byte, 1)
	ln := fakeReceiver(t, func(conn net.Conn) {
		readFrame(t, conn)
		captured <- readFrame(t, conn)
	})
	defer ln.Close()

	r, err := reactor.NewReactor()
	if err != nil {
		t.Fatalf("NewReactor: %v", err)
	}
	defer r.Close()
	d := connectAt(t, ln.Addr().(*net.TCPAddr), r)
	defer d.Close()

	pumpUntilConnected(t, d, r)
	muted := true
	if err := d.SetVolume(nil, &muted); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}

	var frame []byte
	select {
	case frame = <-captured:
	case <-time.After(5 * time.Second):
		t.Fatal("never captured SET_VOLUME frame")
	}

	env, err := wire.DecodeEnvelope(frame)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if env.PayloadUtf8 != `{"type":"SET_VOLUME","volume":{"muted":true}}` {
		t.Fatalf("got payload %q", env.PayloadUtf8)
	}
}

func TestDeviceUnknownMessageType(t *testing.T) {
	ln := fakeReceiver(t, func(conn net.Conn) {
		readFrame(t, conn)
		env := &wire.Envelope{
			ProtocolVersion: wire.ProtocolVersionCastV2_1_0,
			SourceId:        string(wire.EndpointReceiver),
			DestinationId:   string(wire.EndpointSender),
			Namespace:       string(wire.NamespaceReceiver),
			PayloadType:     wire.PayloadString,
			PayloadUtf8:     `{"type":"WHATEVER"}`,
		}
		frame, _ := transport.EncodeFrame(wire.EncodeEnvelope(env))
		conn.Write(frame)
	})
	defer ln.Close()

	r, err := reactor.NewReactor()
	if err != nil {
		t.Fatalf("NewReactor: %v", err)
	}
	defer r.Close()
	d := connectAt(t, ln.Addr().(*net.TCPAddr), r)
	defer d.Close()

	pumpUntilConnected(t, d, r)

	deadline := time.Now().Add(5 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		events, err := r.Poll(100)
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		for _, ev := range events {
			if err := d.HandleIO(ev); err != nil {
				lastErr = err
			}
		}
		if lastErr != nil {
			break
		}
	}
	if lastErr == nil {
		t.Fatal("expected UnknownMessageType error from HandleIO")
	}
}
