// Package config loads forest-guardian settings from file, environment and
// flags through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/forestguardian/forest-guardian/internal/analysis"
	"github.com/forestguardian/forest-guardian/internal/files"
)

// EnvPrefix prefixes every environment variable, e.g. FOREST_GUARDIAN_DB.
const EnvPrefix = "FOREST_GUARDIAN"

// MemoryDB selects the in-memory backend instead of a database file.
const MemoryDB = ":memory:"

// Config is the resolved runtime configuration.
type Config struct {
	DBPath        string        `mapstructure:"db"`
	ImagesDir     string        `mapstructure:"images_dir"`
	AnalysisDelay time.Duration `mapstructure:"analysis_delay"`
	DefaultTree   string        `mapstructure:"default_tree"`
	LogLevel      string        `mapstructure:"log_level"`
	Timezone      string        `mapstructure:"timezone"`
}

// DataDir returns the default data directory, ~/.forest-guardian.
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".forest-guardian")
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	dataDir := DataDir()
	v.SetDefault("db", filepath.Join(dataDir, "forest-guardian.db"))
	v.SetDefault("images_dir", filepath.Join(dataDir, files.DirName))
	v.SetDefault("analysis_delay", analysis.DefaultDelay)
	v.SetDefault("default_tree", "unknown")
	v.SetDefault("log_level", "warn")
	v.SetDefault("timezone", "Local")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads cfgFile, or config.yaml from the data directory when
// cfgFile is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(DataDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if c.DBPath == "" {
		return nil, fmt.Errorf("db path is empty")
	}
	if c.AnalysisDelay < 0 {
		return nil, fmt.Errorf("analysis_delay must not be negative")
	}
	if _, ok := analysis.LookupTreeType(c.DefaultTree); !ok {
		return nil, fmt.Errorf("unknown default_tree %q", c.DefaultTree)
	}
	if _, err := c.Location(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Location returns the time zone used for displaying dates.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}
