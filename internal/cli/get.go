package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forestguardian/forest-guardian/internal/format"
)

func newShowCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one finding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.openApp()
			if err != nil {
				return wrapErr("open store", err)
			}
			defer a.Close()

			rec, err := a.records.Get(cmd.Context(), args[0])
			if err != nil {
				return wrapErr("show", err)
			}

			if !o.text() {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID:             %s\n", rec.ID)
			fmt.Fprintf(w, "Date:           %s (%s)\n", format.Date(rec.Date, a.loc), format.Ago(rec.Date))
			fmt.Fprintf(w, "Finding:        %s\n", rec.Label)
			fmt.Fprintf(w, "Confidence:     %s\n", format.Confidence(rec.Confidence))
			fmt.Fprintf(w, "Severity:       %s\n", format.SeverityLabel(rec.Severity))
			if rec.TreeType != "" {
				fmt.Fprintf(w, "Tree:           %s\n", rec.TreeType)
			}
			if rec.Mode != "" {
				fmt.Fprintf(w, "Mode:           %s\n", rec.Mode)
			}
			if rec.Description != "" {
				fmt.Fprintf(w, "Description:    %s\n", rec.Description)
			}
			if rec.Recommendation != "" {
				fmt.Fprintf(w, "Recommendation: %s\n", rec.Recommendation)
			}
			if rec.ImageURI != "" {
				status := ""
				if !a.images.Exists(rec.ImageURI) {
					status = " (missing)"
				}
				fmt.Fprintf(w, "Image:          %s%s\n", rec.ImageURI, status)
			}
			return nil
		},
	}
}
