package discovery

import (
	"net"

	"github.com/google/uuid"
)

// Port is the well-known CASTV2 TCP port every discovered receiver
// listens on (spec.md §6).
const Port = 8009

// DeviceInfo identifies a discovered device: its IPv4 address and
// 128-bit UUID. Immutable once constructed (spec.md §3).
type DeviceInfo struct {
	IPAddr net.IP
	UUID   uuid.UUID
}
