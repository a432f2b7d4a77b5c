// Package cli implements the forest-guardian CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/forestguardian/forest-guardian/internal/config"
	"github.com/forestguardian/forest-guardian/internal/logging"
)

// options carries global flags and the resolved configuration to every
// subcommand.
type options struct {
	v       *viper.Viper
	cfgFile string
	format  string
	verbose bool

	cfg *config.Config
	log *zap.Logger
}

// NewRootCmd builds the top-level command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	o := &options{v: config.New()}

	root := &cobra.Command{
		Use:   "forest-guardian",
		Short: "Bark beetle detection history and settings",
		Long: `forest-guardian analyses tree photos for bark beetle damage, keeps a local
history of the findings and stores the user's profile settings.
SQLite-backed, single binary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.log != nil {
				_ = o.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.cfgFile, "config", "", "Config file (default: ~/.forest-guardian/config.yaml)")
	pf.StringP("db", "d", "", "Database path (default: $FOREST_GUARDIAN_DB or ~/.forest-guardian/forest-guardian.db, :memory: for a throwaway store)")
	pf.String("images-dir", "", "Directory for stored images")
	pf.StringVarP(&o.format, "format", "f", "json", "Output format: json or text")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "Debug logging to stderr")

	o.v.BindPFlag("db", pf.Lookup("db"))
	o.v.BindPFlag("images_dir", pf.Lookup("images-dir"))

	root.AddCommand(
		newAnalyzeCmd(o),
		newHistoryCmd(o),
		newSettingsCmd(o),
		newTreesCmd(o),
		newExportCmd(o),
		newImportCmd(o),
		newStatsCmd(o),
	)
	return root
}

func (o *options) init() error {
	if o.format != "json" && o.format != "text" {
		return fmt.Errorf("invalid format %q (valid: json, text)", o.format)
	}
	if err := config.ReadFile(o.v, o.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(o.v)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, o.verbose)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.log = log
	o.log.Debug("config resolved",
		zap.String("db", cfg.DBPath),
		zap.String("images_dir", cfg.ImagesDir))
	return nil
}

func (o *options) text() bool {
	return o.format == "text"
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func wrapErr(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
