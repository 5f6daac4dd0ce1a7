package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/castgo/castv2/pkg/device"
	"github.com/castgo/castv2/pkg/wire"
)

func newLaunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "launch <ip> <uuid> <app-id>",
		Short: "Connect to a receiver and launch an application",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			info, err := parseTarget(args[0], args[1])
			if err != nil {
				return err
			}
			appID := resolveAppID(args[2])

			d, r, err := dial(info, cfg)
			if err != nil {
				return err
			}
			defer r.Close()
			defer d.Close()

			if err := d.Launch(appID); err != nil {
				return err
			}

			var failed *wire.LaunchErrorPayload
			deadline := time.Now().Add(cfg.ConnectTimeout)
			err = pumpUntil(d, r, cfg, deadline, func() bool {
				for _, ev := range d.Events() {
					switch ev.Tag {
					case device.EventStatusUpdated:
						return true
					case device.EventLaunchFailed:
						failed = ev.LaunchError
						return true
					}
				}
				return false
			})
			if err != nil {
				return err
			}
			if failed != nil {
				return fmt.Errorf("launch failed: %s", failed.Reason)
			}

			printStatus(d)
			return nil
		},
	}
}

// resolveAppID accepts either a raw Cast app ID or one of the well-known
// names from wire.WellKnownApps (e.g. "youtube").
func resolveAppID(arg string) wire.ApplicationId {
	if id, ok := wire.WellKnownApps[arg]; ok {
		return id
	}
	return wire.ApplicationId(arg)
}
