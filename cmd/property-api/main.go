// Command property-api serves the property listings API and provides
// operational subcommands against the same configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "property-api",
		Short:         "Property listings API with Redis-backed caching",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (defaults plus environment when empty)")

	root.AddCommand(
		newServeCmd(&configPath),
		newMetricsCmd(&configPath),
		newSeedCmd(&configPath),
		newListCmd(),
	)

	return root
}
