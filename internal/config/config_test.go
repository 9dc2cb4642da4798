package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("does-not-exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  ged_file: acourt.ged
  media_root: /srv/tree
resolver:
  concurrency: 4
log:
  json: true
`), 0o644))

	t.Setenv("PEDIGREE_DB", "/tmp/tree.db")
	t.Setenv("PEDIGREE_CONCURRENCY", "2")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "acourt.ged", cfg.Source.GedFile)
	assert.Equal(t, "/srv/tree", cfg.Source.MediaRoot)
	assert.Equal(t, "/tmp/tree.db", cfg.Storage.DBPath)
	assert.Equal(t, 2, cfg.Resolver.Concurrency)
	assert.True(t, cfg.Log.JSON)
	// untouched sections keep their defaults
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "public/data/people", cfg.Export.Dir)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
