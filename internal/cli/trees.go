package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forestguardian/forest-guardian/internal/analysis"
)

func newTreesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "trees",
		Short: "List supported tree types and their detection modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !o.text() {
				return printJSON(cmd.OutOrStdout(), analysis.TreeTypes)
			}
			for _, t := range analysis.TreeTypes {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-17s %s\n", t.ID, t.DefaultMode, t.Label)
			}
			return nil
		},
	}
}
