package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, DefaultAgentBaseURL, cfg.Agent.BaseURL)
	assert.Equal(t, DefaultModel, cfg.Generator.Model)
	assert.Equal(t, DefaultAPIKeyEnv, cfg.Generator.APIKeyEnv)
	assert.Equal(t, dir, cfg.Dir())
	assert.NoError(t, cfg.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefault()
	cfg.SetDir(dir)
	cfg.Agent.BaseURL = "https://localhost:9999"
	cfg.Agent.Timeout = "5s"
	cfg.TUI.TitleLines = 3
	require.NoError(t, cfg.Save())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://localhost:9999", loaded.Agent.BaseURL)
	assert.Equal(t, 5*time.Second, loaded.AgentTimeout())
	assert.Equal(t, 3, loaded.TitleLines())
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"bad version":     "version: 99\n",
		"empty agent url": "agent:\n  base_url: \"\"\n",
		"empty model":     "generator:\n  model: \"\"\n",
		"bad timeout":     "agent:\n  timeout: soon\n",
		"bad defaults":    "defaults:\n  company_size: huge\n",
		"bad title lines": "tui:\n  title_lines: 9\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
			_, err := Load(dir)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version: [oops"), 0o600))
	_, err := Load(dir)
	require.Error(t, err)
}

func TestPaths(t *testing.T) {
	cfg := NewDefault()
	cfg.SetDir("/data/ksef")
	assert.Equal(t, filepath.Join("/data/ksef", StateFileName), cfg.StatePath())
	assert.Equal(t, filepath.Join("/data/ksef", LockFileName), cfg.LockPath())
	assert.Equal(t, filepath.Join("/data/ksef", LogFileName), cfg.LogPath())
	assert.Equal(t, filepath.Join("/data/ksef", ConfigFileName), cfg.ConfigPath())
}

func TestAgentTimeoutFallback(t *testing.T) {
	cfg := NewDefault()
	assert.Equal(t, DefaultAgentTimeout, cfg.AgentTimeout())
	cfg.Agent.Timeout = "250ms"
	assert.Equal(t, 250*time.Millisecond, cfg.AgentTimeout())
}

func TestDefaultProfileIsValid(t *testing.T) {
	cfg := NewDefault()
	p := cfg.DefaultProfile()
	assert.NoError(t, p.Validate())
	assert.Empty(t, p.Industry)
}
