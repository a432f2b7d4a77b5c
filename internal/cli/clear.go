package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forestguardian/forest-guardian/internal/store"
)

func newClearCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			images, _ := cmd.Flags().GetBool("images")
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}

			a, err := o.openApp()
			if err != nil {
				return wrapErr("open store", err)
			}
			defer a.Close()

			if images {
				if err := a.images.Clear(cmd.Context()); err != nil {
					return wrapErr("clear images", err)
				}
			}

			if err := a.records.Clear(cmd.Context()); err != nil {
				if store.DataMayRemain(err) {
					return wrapErr("clear (history may not have been deleted)", err)
				}
				return wrapErr("clear", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imagesCleared":%t}`+"\n", images)
			return nil
		},
	}

	cmd.Flags().Bool("images", false, "Also delete every stored image")
	cmd.Flags().BoolP("yes", "y", false, "Confirm the deletion")

	return cmd
}
