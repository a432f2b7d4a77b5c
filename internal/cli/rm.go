package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forestguardian/forest-guardian/internal/files"
	"github.com/forestguardian/forest-guardian/internal/store"
)

func newRmCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a finding and its image",
		Long: `Delete a finding. The stored image is deleted first and the record second,
so a failure can leave an orphaned image but never a record pointing at a
deleted image. Unknown ids are not an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keepImage, _ := cmd.Flags().GetBool("keep-image")
			id := args[0]
			ctx := cmd.Context()

			a, err := o.openApp()
			if err != nil {
				return wrapErr("open store", err)
			}
			defer a.Close()

			rec, err := a.records.Get(ctx, id)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return wrapErr("rm", err)
			}

			imageDeleted := false
			if rec != nil && rec.ImageURI != "" && !keepImage {
				err := a.images.Delete(ctx, rec.ImageURI)
				switch {
				case errors.Is(err, files.ErrOutsideStore):
					o.log.Debug("image not owned by store, leaving it", zap.String("path", rec.ImageURI))
				case err != nil:
					return wrapErr("delete image", err)
				default:
					imageDeleted = true
				}
			}

			if err := a.records.Remove(ctx, id); err != nil {
				return wrapErr("rm", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q,"removed":%t,"imageDeleted":%t}`+"\n",
				id, rec != nil, imageDeleted)
			return nil
		},
	}

	cmd.Flags().Bool("keep-image", false, "Keep the stored image file")

	return cmd
}
