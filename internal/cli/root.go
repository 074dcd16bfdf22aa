// Package cli implements the prybar command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prybar-dev/prybar/internal/trust"
)

var rootCmd = &cobra.Command{
	Use:   "prybar",
	Short: "Capability broker for the Go runtime's reflection access controls",
	Long:  "Forces accessibility on access-checked members, rewrites package visibility policy, and unfilters suppressed member enumeration. The runtime layout probe gates every command.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := trust.Probe(); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			os.Exit(78) // EX_CONFIG
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
