package main

import (
	"fmt"

	"github.com/castgo/castv2/pkg/device"
)

// printStatus renders the device's most recently cached RECEIVER_STATUS.
func printStatus(d *device.Device) {
	status := d.Status()
	if status == nil {
		fmt.Println("no status received yet")
		return
	}

	fmt.Printf("volume: %.0f%% (muted=%v, control=%s)\n",
		status.Volume.Level.Percent(), status.Volume.Muted, status.Volume.ControlType)

	if len(status.Applications) == 0 {
		fmt.Println("applications: none running")
		return
	}
	fmt.Println("applications:")
	for _, app := range status.Applications {
		fmt.Printf("  %s\t%s\tsession=%s\tidle=%v\n", app.Id, app.DisplayName, app.SessionId, app.IsIdleScreen)
	}
}
