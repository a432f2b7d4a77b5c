package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forestguardian/forest-guardian/internal/format"
)

func newStatsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show history and storage statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.openApp()
			if err != nil {
				return wrapErr("open store", err)
			}
			defer a.Close()

			st, err := a.records.Stats(cmd.Context())
			if err != nil {
				return wrapErr("stats", err)
			}
			if a.sqlite != nil {
				st.DBPath = a.sqlite.Path()
				st.DBSizeBytes = a.sqlite.SizeBytes()
			}
			st.ImageBytes, err = a.images.UsedBytes(cmd.Context())
			if err != nil {
				return wrapErr("stats", err)
			}

			if !o.text() {
				return printJSON(cmd.OutOrStdout(), st)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Findings:  %d (high %d, medium %d, low %d)\n", st.TotalRecords,
				st.BySeverity["high"], st.BySeverity["medium"], st.BySeverity["low"])
			for _, t := range st.TreeTypes {
				fmt.Fprintf(w, "  %-8s %d\n", t.TreeType, t.Count)
			}
			fmt.Fprintf(w, "Images:    %s\n", format.Bytes(st.ImageBytes))
			if st.DBPath != "" {
				fmt.Fprintf(w, "Database:  %s (%s)\n", st.DBPath, format.Bytes(st.DBSizeBytes))
			}
			return nil
		},
	}
}
