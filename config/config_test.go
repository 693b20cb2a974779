package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/classdep/classdep/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilteredKeys(t *testing.T) {
	cfg := config.Parse([]byte("java.*=filtered\n# a comment\njavax.*=filtered\nsome.key=value\n"))
	assert.ElementsMatch(t, []string{"java.*", "javax.*"}, cfg.FilterPrefixes)
}

func TestParseComponentsKey(t *testing.T) {
	cfg := config.Parse([]byte("components=com.acme.ejb,com.acme.web, com.acme.util\n"))
	assert.Equal(t, []string{"com.acme.ejb", "com.acme.web", "com.acme.util"}, cfg.ComponentPrefixes)
}

func TestParseIgnoresBlankAndCommentLines(t *testing.T) {
	cfg := config.Parse([]byte("\n# comment\n   \njava.*=filtered\n"))
	assert.Equal(t, []string{"java.*"}, cfg.FilterPrefixes)
}

func TestParseIgnoresMalformedLines(t *testing.T) {
	cfg := config.Parse([]byte("not-a-key-value-line\njava.*=filtered\n"))
	assert.Equal(t, []string{"java.*"}, cfg.FilterPrefixes)
}

func TestLoadExplicitFileTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.properties")
	require.NoError(t, os.WriteFile(path, []byte("com.custom.*=filtered\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.custom.*"}, cfg.FilterPrefixes)
}

func TestLoadMissingExplicitFileIsConfigurationError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.properties"))
	assert.Error(t, err)
}

func TestLoadFallsBackToEmbeddedDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.FilterPrefixes)
}
