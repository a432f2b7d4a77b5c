package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestguardian/forest-guardian/internal/analysis"
)

func TestDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	v := New()
	require.NoError(t, ReadFile(v, ""))

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(DataDir(), "forest-guardian.db"), c.DBPath)
	assert.Equal(t, filepath.Join(DataDir(), "forest_guardian"), c.ImagesDir)
	assert.Equal(t, analysis.DefaultDelay, c.AnalysisDelay)
	assert.Equal(t, "unknown", c.DefaultTree)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FOREST_GUARDIAN_DB", "/tmp/fg.db")
	t.Setenv("FOREST_GUARDIAN_ANALYSIS_DELAY", "0s")
	t.Setenv("FOREST_GUARDIAN_DEFAULT_TREE", "spruce")

	c, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fg.db", c.DBPath)
	assert.Equal(t, time.Duration(0), c.AnalysisDelay)
	assert.Equal(t, "spruce", c.DefaultTree)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: /data/fg.db
images_dir: /data/images
analysis_delay: 500ms
timezone: UTC
`), 0o644))

	v := New()
	require.NoError(t, ReadFile(v, path))
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/data/fg.db", c.DBPath)
	assert.Equal(t, "/data/images", c.ImagesDir)
	assert.Equal(t, 500*time.Millisecond, c.AnalysisDelay)

	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestMissingExplicitFile(t *testing.T) {
	v := New()
	assert.Error(t, ReadFile(v, filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestInvalidValues(t *testing.T) {
	t.Run("tree", func(t *testing.T) {
		t.Setenv("FOREST_GUARDIAN_DEFAULT_TREE", "birch")
		_, err := Load(New())
		assert.Error(t, err)
	})
	t.Run("timezone", func(t *testing.T) {
		t.Setenv("FOREST_GUARDIAN_TIMEZONE", "Mars/Olympus")
		_, err := Load(New())
		assert.Error(t, err)
	})
}
