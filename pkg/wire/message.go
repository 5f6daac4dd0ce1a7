package wire

// MessageTag discriminates the variant carried by a MessageKind.
type MessageTag uint8

const (
	TagConnect MessageTag = iota
	TagClose
	TagPing
	TagPong
	TagGetStatus
	TagLaunch
	TagStop
	TagSetVolume
	TagReceiverStatus
	TagLaunchError
	TagGetAppAvailability
	TagAppAvailability
)

// String returns the JSON "type" tag this variant encodes to/decodes from.
func (t MessageTag) String() string {
	switch t {
	case TagConnect:
		return "CONNECT"
	case TagClose:
		return "CLOSE"
	case TagPing:
		return "PING"
	case TagPong:
		return "PONG"
	case TagGetStatus:
		return "GET_STATUS"
	case TagLaunch:
		return "LAUNCH"
	case TagStop:
		return "STOP"
	case TagSetVolume:
		return "SET_VOLUME"
	case TagReceiverStatus:
		return "RECEIVER_STATUS"
	case TagLaunchError:
		return "LAUNCH_ERROR"
	case TagGetAppAvailability:
		return "GET_APP_AVAILABILITY"
	case TagAppAvailability:
		return "APP_AVAILABILITY"
	default:
		return "UNKNOWN"
	}
}

// MessageKind is a tagged union over every CASTV2 payload variant this
// client encodes or decodes (spec.md §3, supplemented per SPEC_FULL.md §4.3).
// Exactly the field named by Tag is meaningful; the others are the zero
// value. This mirrors the original Rust `enum MessageKind` as an
// idiomatic Go discriminated struct rather than an interface, since every
// variant is known at compile time and callers want to switch on Tag.
type MessageKind struct {
	Tag MessageTag

	Launch             *LaunchPayload
	Stop               *StopPayload
	SetVolume          *SetVolumePayload
	ReceiverStatus     *Status
	LaunchError        *LaunchErrorPayload
	GetAppAvailability *GetAppAvailabilityPayload
	AppAvailability    *AppAvailabilityPayload
}

// LaunchPayload is the payload for MessageKind{Tag: TagLaunch}.
type LaunchPayload struct {
	AppId     ApplicationId
	RequestId int64
}

// StopPayload is the payload for MessageKind{Tag: TagStop}.
type StopPayload struct {
	SessionId string
}

// SetVolumePayload is the payload for MessageKind{Tag: TagSetVolume}.
// Level and Muted are optional: only fields the caller set are emitted on
// encode (spec.md §4.3, scenario E).
type SetVolumePayload struct {
	Level *VolumeLevel
	Muted *bool
}

// LaunchErrorPayload is the payload for MessageKind{Tag: TagLaunchError}.
// Additive to spec.md's enumerated kinds (see SPEC_FULL.md §3).
type LaunchErrorPayload struct {
	Reason    string
	RequestId int64
}

// GetAppAvailabilityPayload is the payload for MessageKind{Tag: TagGetAppAvailability}.
type GetAppAvailabilityPayload struct {
	AppIds []ApplicationId
}

// Availability is the result of an app-availability query for one app ID.
type Availability uint8

const (
	AvailabilityUnknown Availability = iota
	AvailabilityAvailable
	AvailabilityUnavailable
)

// AppAvailabilityPayload is the payload for MessageKind{Tag: TagAppAvailability}.
type AppAvailabilityPayload struct {
	Availability map[ApplicationId]Availability
}

// Message is one CASTV2 envelope: addressing plus a typed payload.
// Every outbound Message must have non-empty Source, Destination, and
// Namespace (spec.md §3 invariants).
type Message struct {
	Source      EndpointName
	Destination EndpointName
	Namespace   Namespace
	Kind        MessageKind
}

// NewMessage builds a Message, useful for the common case of building a
// control-only kind inline.
func NewMessage(source, destination EndpointName, ns Namespace, kind MessageKind) Message {
	return Message{Source: source, Destination: destination, Namespace: ns, Kind: kind}
}
