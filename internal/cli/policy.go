package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prybar-dev/prybar/internal/filter"
)

func init() {
	policyCmd.AddCommand(policyValidateCmd)
	rootCmd.AddCommand(policyCmd)
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Work with filter policy files",
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a suppression pattern file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := filter.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("valid: %d scope(s), %d field list(s), %d method list(s)\n",
			p.Scopes(), len(p.Fields), len(p.Methods))
		return nil
	},
}
