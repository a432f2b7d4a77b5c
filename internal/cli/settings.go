package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forestguardian/forest-guardian/internal/files"
	"github.com/forestguardian/forest-guardian/internal/model"
	"github.com/forestguardian/forest-guardian/internal/store"
)

func newSettingsCmd(o *options) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change profile settings",
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.openApp()
			if err != nil {
				return wrapErr("open store", err)
			}
			defer a.Close()

			s, err := a.settings.Load(cmd.Context())
			if err != nil {
				return wrapErr("load settings", err)
			}
			return printSettings(cmd, o, s)
		},
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsSet(cmd, o)
		},
	}
	setCmd.Flags().String("name", "", "Profile name")
	setCmd.Flags().String("email", "", "Profile e-mail")
	setCmd.Flags().String("avatar", "", "Photo to use as avatar (copied into the image store)")
	setCmd.Flags().Bool("no-avatar", false, "Remove the avatar")
	setCmd.Flags().StringP("language", "l", "", "Language: cs, en, es")
	setCmd.Flags().Bool("dark-mode", false, "Dark mode (use --dark-mode=false to turn off)")
	setCmd.MarkFlagsMutuallyExclusive("avatar", "no-avatar")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.openApp()
			if err != nil {
				return wrapErr("open store", err)
			}
			defer a.Close()

			s, err := a.settings.Reset(cmd.Context())
			if err != nil {
				if store.DataMayRemain(err) {
					return wrapErr("reset (saved settings may remain)", err)
				}
				return wrapErr("reset", err)
			}
			return printSettings(cmd, o, s)
		},
	}

	languagesCmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !o.text() {
				return printJSON(cmd.OutOrStdout(), model.Languages)
			}
			for _, l := range model.Languages {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s\n", l.Code, l.Flag, l.Label)
			}
			return nil
		},
	}

	settingsCmd.AddCommand(getCmd, setCmd, resetCmd, languagesCmd)
	return settingsCmd
}

func runSettingsSet(cmd *cobra.Command, o *options) error {
	flags := cmd.Flags()
	ctx := cmd.Context()

	var p model.SettingsPatch
	if flags.Changed("name") {
		v, _ := flags.GetString("name")
		p.Name = &v
	}
	if flags.Changed("email") {
		v, _ := flags.GetString("email")
		p.Email = &v
	}
	if flags.Changed("language") {
		v, _ := flags.GetString("language")
		p.Language = &v
	}
	if flags.Changed("dark-mode") {
		v, _ := flags.GetBool("dark-mode")
		p.DarkMode = &v
	}
	if flags.Changed("no-avatar") {
		empty := ""
		p.AvatarURI = &empty
	}
	avatarSrc, _ := flags.GetString("avatar")
	if p.Empty() && avatarSrc == "" {
		return fmt.Errorf("nothing to change (see --help)")
	}

	a, err := o.openApp()
	if err != nil {
		return wrapErr("open store", err)
	}
	defer a.Close()

	// Writes are only allowed once the persisted settings are in memory.
	prev, err := a.settings.Load(ctx)
	if err != nil {
		return wrapErr("load settings", err)
	}

	var newAvatar string
	if avatarSrc != "" {
		newAvatar, err = a.images.Save(ctx, avatarSrc)
		if err != nil {
			return wrapErr("save avatar", err)
		}
		p.AvatarURI = &newAvatar
	}

	s, err := a.settings.Update(ctx, p)
	if err != nil {
		if newAvatar != "" {
			a.discardImage(cmd, o, newAvatar)
		}
		return wrapErr("update settings", err)
	}

	if p.AvatarURI != nil && prev.AvatarURI != "" && prev.AvatarURI != s.AvatarURI {
		if err := a.images.Delete(ctx, prev.AvatarURI); err != nil && !errors.Is(err, files.ErrOutsideStore) {
			o.log.Warn("old avatar not deleted", zap.String("path", prev.AvatarURI), zap.Error(err))
		}
	}

	return printSettings(cmd, o, s)
}

func printSettings(cmd *cobra.Command, o *options, s model.AppSettings) error {
	if !o.text() {
		return printJSON(cmd.OutOrStdout(), s)
	}
	w := cmd.OutOrStdout()
	lang := model.CurrentLanguage(s.Language)
	fmt.Fprintf(w, "Name:      %s\n", s.Name)
	fmt.Fprintf(w, "E-mail:    %s\n", s.Email)
	fmt.Fprintf(w, "Language:  %s %s\n", lang.Flag, lang.Label)
	fmt.Fprintf(w, "Dark mode: %t\n", s.DarkMode)
	if s.AvatarURI != "" {
		fmt.Fprintf(w, "Avatar:    %s\n", s.AvatarURI)
	}
	return nil
}
