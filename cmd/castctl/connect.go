package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <ip> <uuid>",
		Short: "Connect to a receiver and print its status once",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			info, err := parseTarget(args[0], args[1])
			if err != nil {
				return err
			}

			d, r, err := dial(info, cfg)
			if err != nil {
				return err
			}
			defer r.Close()
			defer d.Close()

			if err := d.UpdateStatus(); err != nil {
				return err
			}
			deadline := time.Now().Add(cfg.ConnectTimeout)
			if err := pumpUntil(d, r, cfg, deadline, func() bool { return d.Status() != nil }); err != nil {
				return err
			}

			printStatus(d)
			return nil
		},
	}
}
