package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCfg struct {
	Name string `mapstructure:"name"`
	Feed struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"feed"`
}

func TestLoadAndWatchDir_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "name: cfgtest\nfeed:\n  base_url: https://example.test/api/v3\n  api_key: from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cfgtest.yaml"), []byte(yaml), 0644))

	t.Setenv("CFGTEST_FEED_API_KEY", "from-env")

	var cfg testCfg
	v, err := LoadAndWatchDir("cfgtest", dir, &cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "cfgtest", cfg.Name)
	assert.Equal(t, "https://example.test/api/v3", cfg.Feed.BaseURL)
	assert.Equal(t, "from-env", cfg.Feed.APIKey)
}

func TestLoadAndWatchDir_MissingFile(t *testing.T) {
	var cfg testCfg
	_, err := LoadAndWatchDir("definitely-missing-service", t.TempDir(), &cfg, nil)
	assert.Error(t, err)
}
