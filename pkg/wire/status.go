package wire

import "fmt"

// VolumeLevel is a float in [0.0, 1.0] (spec.md §3 invariant).
type VolumeLevel float64

// NewVolumeLevel validates and constructs a VolumeLevel.
func NewVolumeLevel(v float64) (VolumeLevel, error) {
	if v < 0.0 || v > 1.0 {
		return 0, fmt.Errorf("volume level %v out of range [0.0, 1.0]", v)
	}
	return VolumeLevel(v), nil
}

// Percent returns the level as a 0-100 percentage view.
func (v VolumeLevel) Percent() float64 {
	return float64(v) * 100
}

// Volume is the receiver's current volume state.
type Volume struct {
	ControlType  string
	Level        VolumeLevel
	Muted        bool
	StepInterval VolumeLevel
}

// Application is one running application instance reported by the receiver.
type Application struct {
	Id           ApplicationId
	DisplayName  string
	IsIdleScreen bool
	SessionId    string
	StatusText   string
}

// Status is the parsed RECEIVER_STATUS payload: the receiver is
// authoritative, the client only mirrors the most recently received copy
// (spec.md §3).
type Status struct {
	Volume       Volume
	Applications []Application
}

// receiverStatusEnvelope is the raw JSON shape of a RECEIVER_STATUS
// payload: {"type":"RECEIVER_STATUS","status":{"volume":{...},"applications":[...]}}.
type receiverStatusEnvelope struct {
	Type   string             `json:"type"`
	Status receiverStatusBody `json:"status"`
}

type receiverStatusBody struct {
	Volume       *volumeWire       `json:"volume"`
	Applications []applicationWire `json:"applications"`
}

type volumeWire struct {
	ControlType  *string  `json:"controlType"`
	Level        *float64 `json:"level"`
	Muted        *bool    `json:"muted"`
	StepInterval *float64 `json:"stepInterval"`
}

type applicationWire struct {
	AppId        string `json:"appId"`
	DisplayName  string `json:"displayName"`
	IsIdleScreen bool   `json:"isIdleScreen"`
	SessionId    string `json:"sessionId"`
	StatusText   string `json:"statusText"`
}

// decodeStatus turns the RECEIVER_STATUS wire shape into a Status.
// Missing or mistyped fields in "volume" are a decode error; a missing
// "applications" array decodes to an empty slice (spec.md §4.3).
func decodeStatus(body receiverStatusBody) (*Status, error) {
	if body.Volume == nil {
		return nil, fmt.Errorf("receiver status missing volume")
	}
	if body.Volume.ControlType == nil {
		return nil, fmt.Errorf("receiver status volume missing controlType")
	}
	if body.Volume.Level == nil {
		return nil, fmt.Errorf("receiver status volume missing level")
	}
	if body.Volume.Muted == nil {
		return nil, fmt.Errorf("receiver status volume missing muted")
	}
	if body.Volume.StepInterval == nil {
		return nil, fmt.Errorf("receiver status volume missing stepInterval")
	}

	level, err := NewVolumeLevel(*body.Volume.Level)
	if err != nil {
		return nil, fmt.Errorf("receiver status volume: %w", err)
	}
	step, err := NewVolumeLevel(*body.Volume.StepInterval)
	if err != nil {
		return nil, fmt.Errorf("receiver status volume step interval: %w", err)
	}

	status := &Status{
		Volume: Volume{
			ControlType:  *body.Volume.ControlType,
			Level:        level,
			Muted:        *body.Volume.Muted,
			StepInterval: step,
		},
	}

	for _, app := range body.Applications {
		status.Applications = append(status.Applications, Application{
			Id:           ApplicationId(app.AppId),
			DisplayName:  app.DisplayName,
			IsIdleScreen: app.IsIdleScreen,
			SessionId:    app.SessionId,
			StatusText:   app.StatusText,
		})
	}

	return status, nil
}
