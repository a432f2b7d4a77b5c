package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forestguardian/forest-guardian/internal/model"
)

// recordFilter selects records from a full listing.
type recordFilter struct {
	Query    string
	Severity model.Severity
	TreeType string
}

func (f recordFilter) match(r model.DetectionRecord) bool {
	if f.Severity != "" && r.Severity != f.Severity {
		return false
	}
	if f.TreeType != "" && r.TreeType != f.TreeType {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	for _, field := range []string{r.Label, r.Description, r.Recommendation, r.TreeType} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func filterRecords(records []model.DetectionRecord, f recordFilter) []model.DetectionRecord {
	out := []model.DetectionRecord{}
	for _, r := range records {
		if f.match(r) {
			out = append(out, r)
		}
	}
	return out
}

func newSearchCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search findings by text, severity or tree type",
		Long:  "Case-insensitive substring match over label, description, recommendation and tree type.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			severity, _ := cmd.Flags().GetString("severity")
			tree, _ := cmd.Flags().GetString("tree")

			f := recordFilter{Severity: model.Severity(severity), TreeType: tree}
			if len(args) > 0 {
				f.Query = strings.TrimSpace(args[0])
			}
			if f.Severity != "" && !model.ValidSeverities[f.Severity] {
				return fmt.Errorf("invalid severity %q (valid: low, medium, high)", severity)
			}

			a, err := o.openApp()
			if err != nil {
				return wrapErr("open store", err)
			}
			defer a.Close()

			records, err := a.records.List(cmd.Context())
			if err != nil {
				return wrapErr("search", err)
			}
			return printRecords(cmd, o, a, filterRecords(records, f))
		},
	}

	cmd.Flags().StringP("severity", "s", "", "Filter by severity: low, medium, high")
	cmd.Flags().StringP("tree", "t", "", "Filter by tree type")

	return cmd
}
