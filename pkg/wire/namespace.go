package wire

// Namespace is an opaque URN string identifying a CASTV2 protocol channel.
type Namespace string

// Well-known namespaces (spec.md §6).
const (
	// NamespaceConnection carries CONNECT/CLOSE virtual-connection control.
	NamespaceConnection Namespace = "urn:x-cast:com.google.cast.tp.connection"

	// NamespaceHeartbeat carries PING/PONG keep-alive messages.
	NamespaceHeartbeat Namespace = "urn:x-cast:com.google.cast.tp.heartbeat"

	// NamespaceReceiver carries receiver status, launch, stop, and volume control.
	NamespaceReceiver Namespace = "urn:x-cast:com.google.cast.receiver"

	// NamespaceDeviceAuth carries the device authentication challenge.
	// No message content for this namespace is modeled by this client;
	// the constant exists so callers can recognize it on the wire (see
	// SPEC_FULL.md §3 — no device-auth challenge/response is implemented,
	// this client never performs it).
	NamespaceDeviceAuth Namespace = "cast:com.google.cast.tp.deviceauth"
)

// EndpointName identifies a virtual sender or receiver endpoint, e.g.
// "sender-0", "receiver-0", or "*" for broadcast.
type EndpointName string

// Well-known endpoints.
const (
	EndpointSender   EndpointName = "sender-0"
	EndpointReceiver EndpointName = "receiver-0"
	EndpointBroadcast EndpointName = "*"
)

// ApplicationId identifies a receiver application, e.g. "YouTube" or a hex
// app ID like "0F5096E8".
type ApplicationId string

// WellKnownApps lists commonly referenced application IDs as a convenience
// table. "youtube" matches spec.md's own example app ID; the rest have no
// original-source precedent and are invented for convenience — see
// SPEC_FULL.md §3 and DESIGN.md for the corrected grounding note.
var WellKnownApps = map[string]ApplicationId{
	"youtube":                "YouTube",
	"netflix":                "NLF-NMCDM",
	"default_media_receiver": "CC1AD845",
}
