package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forestguardian/forest-guardian/internal/format"
	"github.com/forestguardian/forest-guardian/internal/model"
)

func newHistoryCmd(o *options) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"h"},
		Short:   "Browse and manage saved findings",
	}

	historyCmd.AddCommand(
		newListCmd(o),
		newShowCmd(o),
		newSearchCmd(o),
		newRmCmd(o),
		newClearCmd(o),
	)
	return historyCmd
}

func newListCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List findings, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			a, err := o.openApp()
			if err != nil {
				return wrapErr("open store", err)
			}
			defer a.Close()

			records, err := a.records.List(cmd.Context())
			if err != nil {
				return wrapErr("list", err)
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			return printRecords(cmd, o, a, records)
		},
	}

	cmd.Flags().IntP("limit", "l", 0, "Max results (0 for all)")

	return cmd
}

func printRecords(cmd *cobra.Command, o *options, a *app, records []model.DetectionRecord) error {
	if !o.text() {
		return printJSON(cmd.OutOrStdout(), records)
	}
	w := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(w, "No findings yet.")
		return nil
	}
	for _, r := range records {
		fmt.Fprintln(w, format.Record(r, a.loc))
	}
	return nil
}
