package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/forestguardian/forest-guardian/internal/store"
)

func newImportCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON backup",
		Long:  "Import a backup produced by export, from --file or stdin. Existing findings are kept; settings are replaced.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			skipSettings, _ := cmd.Flags().GetBool("skip-settings")

			var r io.Reader = cmd.InOrStdin()
			if path != "" {
				f, err := os.Open(path)
				if err != nil {
					return wrapErr("open backup", err)
				}
				defer f.Close()
				r = f
			}

			data, err := io.ReadAll(r)
			if err != nil {
				return wrapErr("read backup", err)
			}

			var backup store.Backup
			if err := json.Unmarshal(data, &backup); err != nil {
				return wrapErr("parse json", err)
			}
			if skipSettings {
				backup.Settings = nil
			}

			a, err := o.openApp()
			if err != nil {
				return wrapErr("open store", err)
			}
			defer a.Close()

			res, err := store.Import(cmd.Context(), a.records, a.settings, &backup)
			if err != nil {
				return wrapErr("import", err)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().String("file", "", "Backup file (default: stdin)")
	cmd.Flags().Bool("skip-settings", false, "Import findings only")

	return cmd
}
