package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRunConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeConfig(t, `
regions:
  - us-east-1
  - eu-west-1
services:
  - ELB
  - EC2
filters:
  tags:
    Environment: production
`)
		cfg, err := LoadRunConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"us-east-1", "eu-west-1"}, cfg.Regions)
		assert.Equal(t, []string{"ELB", "EC2"}, cfg.Services)
		assert.Equal(t, map[string]string{"Environment": "production"}, cfg.Filters.Tags)
	})

	t.Run("services default to the dependency set", func(t *testing.T) {
		path := writeConfig(t, "regions:\n  - us-east-1\n")
		cfg, err := LoadRunConfig(path)
		require.NoError(t, err)
		assert.Equal(t, DependencyServices, cfg.Services)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRunConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "regions: [unclosed")
		_, err := LoadRunConfig(path)
		assert.Error(t, err)
	})

	t.Run("no regions", func(t *testing.T) {
		path := writeConfig(t, "services:\n  - ELB\n")
		_, err := LoadRunConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one region")
	})

	t.Run("duplicate region", func(t *testing.T) {
		path := writeConfig(t, "regions:\n  - us-east-1\n  - us-east-1\n")
		_, err := LoadRunConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate region")
	})

	t.Run("duplicate service", func(t *testing.T) {
		path := writeConfig(t, "regions:\n  - us-east-1\nservices:\n  - ELB\n  - ELB\n")
		_, err := LoadRunConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate service")
	})

	t.Run("empty region entry", func(t *testing.T) {
		path := writeConfig(t, "regions:\n  - \"\"\n")
		_, err := LoadRunConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not be empty")
	})
}
