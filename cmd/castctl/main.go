// Command castctl is a reference command-line driver for this CASTV2
// client library.
//
// Usage:
//
//	castctl discover
//	castctl connect <ip> <uuid>
//	castctl launch <ip> <uuid> <app-id>
//	castctl interactive <ip> <uuid>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/castgo/castv2/pkg/config"
)

var cfgPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "castctl",
		Short: "Drive Cast receivers over CASTV2",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file (defaults to built-in tunables)")

	root.AddCommand(newDiscoverCmd())
	root.AddCommand(newConnectCmd())
	root.AddCommand(newLaunchCmd())
	root.AddCommand(newInteractiveCmd())
	return root
}

func loadConfig() (config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.Load(cfgPath)
}
