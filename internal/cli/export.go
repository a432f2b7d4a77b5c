package cli

import (
	"github.com/spf13/cobra"

	"github.com/forestguardian/forest-guardian/internal/store"
)

func newExportCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export history and settings as JSON",
		Long:  "Write a JSON backup of the history and settings to stdout. Restore it with import.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.openApp()
			if err != nil {
				return wrapErr("open store", err)
			}
			defer a.Close()

			if _, err := a.settings.Load(cmd.Context()); err != nil {
				return wrapErr("export", err)
			}

			backup, err := store.Export(cmd.Context(), a.records, a.settings)
			if err != nil {
				return wrapErr("export", err)
			}
			return printJSON(cmd.OutOrStdout(), backup)
		},
	}
}
