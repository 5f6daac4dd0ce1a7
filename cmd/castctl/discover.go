package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/castgo/castv2/pkg/discovery"
)

func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Browse the local network for Cast receivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			found := 0
			err = discovery.Run(context.Background(), cfg.DiscoveryWindow, func(info discovery.DeviceInfo) {
				found++
				fmt.Printf("%s\t%s\n", info.IPAddr, info.UUID)
			})
			if err != nil {
				return err
			}
			if found == 0 {
				fmt.Println("no receivers found")
			}
			return nil
		},
	}
}
