package wire

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/castgo/castv2/pkg/castv2err"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope field numbers, preserved bit-for-bit from the real CASTV2
// CastMessage protobuf schema (spec.md §6).
const (
	fieldProtocolVersion = 1
	fieldSourceId        = 2
	fieldDestinationId   = 3
	fieldNamespace       = 4
	fieldPayloadType     = 5
	fieldPayloadUtf8     = 6
	fieldPayloadBinary   = 7
)

// PayloadType mirrors the CastMessage.PayloadType enum.
type PayloadType int32

const (
	PayloadString PayloadType = 0
	PayloadBinary PayloadType = 1
)

// ProtocolVersion mirrors the CastMessage.ProtocolVersion enum. This
// client only ever emits and expects CASTV2_1_0.
const ProtocolVersionCastV2_1_0 = 0

// Envelope is the decoded protobuf CastMessage: addressing plus a raw
// payload, before JSON payload parsing.
type Envelope struct {
	ProtocolVersion int32
	SourceId        string
	DestinationId   string
	Namespace       string
	PayloadType     PayloadType
	PayloadUtf8     string
	PayloadBinary   []byte
}

// EncodeEnvelope serializes an Envelope to protobuf wire bytes using
// google.golang.org/protobuf/encoding/protowire directly, since no
// protoc-generated stub for CastMessage is available in this environment
// (see SPEC_FULL.md §4.3).
func EncodeEnvelope(e *Envelope) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldProtocolVersion, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.ProtocolVersion))

	buf = protowire.AppendTag(buf, fieldSourceId, protowire.BytesType)
	buf = protowire.AppendString(buf, e.SourceId)

	buf = protowire.AppendTag(buf, fieldDestinationId, protowire.BytesType)
	buf = protowire.AppendString(buf, e.DestinationId)

	buf = protowire.AppendTag(buf, fieldNamespace, protowire.BytesType)
	buf = protowire.AppendString(buf, e.Namespace)

	buf = protowire.AppendTag(buf, fieldPayloadType, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.PayloadType))

	if e.PayloadType == PayloadString {
		buf = protowire.AppendTag(buf, fieldPayloadUtf8, protowire.BytesType)
		buf = protowire.AppendString(buf, e.PayloadUtf8)
	} else if len(e.PayloadBinary) > 0 {
		buf = protowire.AppendTag(buf, fieldPayloadBinary, protowire.BytesType)
		buf = protowire.AppendBytes(buf, e.PayloadBinary)
	}

	return buf
}

// DecodeEnvelope parses protobuf wire bytes into an Envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	e := &Envelope{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, castv2err.New(castv2err.Protobuf, protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case fieldProtocolVersion:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, castv2err.New(castv2err.Protobuf, protowire.ParseError(n))
			}
			e.ProtocolVersion = int32(v)
			data = data[n:]
		case fieldSourceId:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, castv2err.New(castv2err.Protobuf, protowire.ParseError(n))
			}
			e.SourceId = v
			data = data[n:]
		case fieldDestinationId:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, castv2err.New(castv2err.Protobuf, protowire.ParseError(n))
			}
			e.DestinationId = v
			data = data[n:]
		case fieldNamespace:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, castv2err.New(castv2err.Protobuf, protowire.ParseError(n))
			}
			e.Namespace = v
			data = data[n:]
		case fieldPayloadType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, castv2err.New(castv2err.Protobuf, protowire.ParseError(n))
			}
			e.PayloadType = PayloadType(v)
			data = data[n:]
		case fieldPayloadUtf8:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, castv2err.New(castv2err.Protobuf, protowire.ParseError(n))
			}
			e.PayloadUtf8 = v
			data = data[n:]
		case fieldPayloadBinary:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, castv2err.New(castv2err.Protobuf, protowire.ParseError(n))
			}
			e.PayloadBinary = append([]byte(nil), v...)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, castv2err.New(castv2err.Protobuf, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	return e, nil
}

// EncodeMessage encodes a Message to the wire bytes ready for framing:
// a protobuf envelope whose payload_utf8 holds the JSON-encoded payload
// for Kind (spec.md §4.3). Only STRING payloads are ever produced.
func EncodeMessage(m *Message) ([]byte, error) {
	payload, err := encodePayload(m.Kind)
	if err != nil {
		return nil, err
	}

	env := &Envelope{
		ProtocolVersion: ProtocolVersionCastV2_1_0,
		SourceId:        string(m.Source),
		DestinationId:   string(m.Destination),
		Namespace:       string(m.Namespace),
		PayloadType:     PayloadString,
		PayloadUtf8:     payload,
	}
	return EncodeEnvelope(env), nil
}

// DecodeMessage parses wire bytes into a Message. A BINARY payload_type
// fails with UnknownMessageType("binary message") (spec.md §4.3).
func DecodeMessage(data []byte) (*Message, error) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	if env.PayloadType == PayloadBinary {
		return nil, castv2err.NewUnknownMessageType("binary message")
	}

	kind, err := decodePayload([]byte(env.PayloadUtf8))
	if err != nil {
		return nil, err
	}

	return &Message{
		Source:      EndpointName(env.SourceId),
		Destination: EndpointName(env.DestinationId),
		Namespace:   Namespace(env.Namespace),
		Kind:        *kind,
	}, nil
}

// payloadTag is the common discriminator every JSON payload carries.
type payloadTag struct {
	Type string `json:"type"`
}

func encodePayload(kind MessageKind) (string, error) {
	switch kind.Tag {
	case TagConnect:
		return `{"type":"CONNECT"}`, nil
	case TagClose:
		return `{"type":"CLOSE"}`, nil
	case TagPing:
		return `{"type":"PING"}`, nil
	case TagPong:
		return `{"type":"PONG"}`, nil
	case TagGetStatus:
		return `{"type":"GET_STATUS"}`, nil
	case TagLaunch:
		if kind.Launch == nil {
			return "", fmt.Errorf("launch message missing payload")
		}
		b, err := json.Marshal(struct {
			Type      string        `json:"type"`
			AppId     ApplicationId `json:"appId"`
			RequestId int64         `json:"requestId"`
		}{"LAUNCH", kind.Launch.AppId, kind.Launch.RequestId})
		return string(b), err
	case TagStop:
		if kind.Stop == nil {
			return "", fmt.Errorf("stop message missing payload")
		}
		b, err := json.Marshal(struct {
			Type      string `json:"type"`
			SessionId string `json:"sessionId"`
		}{"STOP", kind.Stop.SessionId})
		return string(b), err
	case TagSetVolume:
		if kind.SetVolume == nil {
			return "", fmt.Errorf("set-volume message missing payload")
		}
		volume := map[string]any{}
		if kind.SetVolume.Level != nil {
			volume["level"] = float64(*kind.SetVolume.Level)
		}
		if kind.SetVolume.Muted != nil {
			volume["muted"] = *kind.SetVolume.Muted
		}
		b, err := json.Marshal(struct {
			Type   string         `json:"type"`
			Volume map[string]any `json:"volume"`
		}{"SET_VOLUME", volume})
		return string(b), err
	case TagGetAppAvailability:
		if kind.GetAppAvailability == nil {
			return "", fmt.Errorf("get-app-availability message missing payload")
		}
		b, err := json.Marshal(struct {
			Type   string          `json:"type"`
			AppIds []ApplicationId `json:"appId"`
		}{"GET_APP_AVAILABILITY", kind.GetAppAvailability.AppIds})
		return string(b), err
	default:
		return "", fmt.Errorf("message kind %v is not emitted by this client", kind.Tag)
	}
}

func decodePayload(data []byte) (*MessageKind, error) {
	var tag payloadTag
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, castv2err.New(castv2err.Protobuf, err)
	}

	switch tag.Type {
	case "CONNECT":
		return &MessageKind{Tag: TagConnect}, nil
	case "CLOSE":
		return &MessageKind{Tag: TagClose}, nil
	case "PING":
		return &MessageKind{Tag: TagPing}, nil
	case "PONG":
		return &MessageKind{Tag: TagPong}, nil
	case "GET_STATUS":
		return &MessageKind{Tag: TagGetStatus}, nil
	case "LAUNCH":
		var wire struct {
			AppId     ApplicationId `json:"appId"`
			RequestId int64         `json:"requestId"`
		}
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, castv2err.New(castv2err.Protobuf, err)
		}
		return &MessageKind{Tag: TagLaunch, Launch: &LaunchPayload{AppId: wire.AppId, RequestId: wire.RequestId}}, nil
	case "STOP":
		var wire struct {
			SessionId string `json:"sessionId"`
		}
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, castv2err.New(castv2err.Protobuf, err)
		}
		return &MessageKind{Tag: TagStop, Stop: &StopPayload{SessionId: wire.SessionId}}, nil
	case "SET_VOLUME":
		var wire struct {
			Volume struct {
				Level *float64 `json:"level"`
				Muted *bool    `json:"muted"`
			} `json:"volume"`
		}
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, castv2err.New(castv2err.Protobuf, err)
		}
		payload := &SetVolumePayload{Muted: wire.Volume.Muted}
		if wire.Volume.Level != nil {
			level, err := NewVolumeLevel(*wire.Volume.Level)
			if err != nil {
				return nil, castv2err.New(castv2err.Protobuf, err)
			}
			payload.Level = &level
		}
		return &MessageKind{Tag: TagSetVolume, SetVolume: payload}, nil
	case "LAUNCH_ERROR":
		var wire struct {
			Reason    string `json:"reason"`
			RequestId int64  `json:"requestId"`
		}
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, castv2err.New(castv2err.Protobuf, err)
		}
		return &MessageKind{Tag: TagLaunchError, LaunchError: &LaunchErrorPayload{Reason: wire.Reason, RequestId: wire.RequestId}}, nil
	case "APP_AVAILABILITY":
		var wire struct {
			Availability map[ApplicationId]string `json:"availability"`
		}
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, castv2err.New(castv2err.Protobuf, err)
		}
		result := make(map[ApplicationId]Availability, len(wire.Availability))
		for app, v := range wire.Availability {
			switch v {
			case "APP_AVAILABLE":
				result[app] = AvailabilityAvailable
			case "APP_UNAVAILABLE":
				result[app] = AvailabilityUnavailable
			default:
				result[app] = AvailabilityUnknown
			}
		}
		return &MessageKind{Tag: TagAppAvailability, AppAvailability: &AppAvailabilityPayload{Availability: result}}, nil
	case "RECEIVER_STATUS":
		var env receiverStatusEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, castv2err.New(castv2err.Protobuf, err)
		}
		status, err := decodeStatus(env.Status)
		if err != nil {
			return nil, castv2err.New(castv2err.Protobuf, err)
		}
		return &MessageKind{Tag: TagReceiverStatus, ReceiverStatus: status}, nil
	default:
		return nil, castv2err.NewUnknownMessageType(tag.Type)
	}
}
