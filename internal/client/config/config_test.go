package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"cmd"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoadConfig_Defaults(t *testing.T) {
	withArgs(t)

	c := LoadConfig()
	require.NotNil(t, c)
	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, 60*time.Second, c.RequestTimeout)
	assert.Equal(t, 5*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "console", c.LogFormat)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "client.json",
			content: `{"server_url":"http://rent.example:9090","request_timeout":"10s","online_check_interval":2000000000}`,
		},
		{
			name:    "yaml",
			file:    "client.yaml",
			content: "server_url: http://rent.example:9090\nrequest_timeout: 10s\nonline_check_interval: 2s\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			withArgs(t, "-c", path)

			var c Config
			c.LoadDefaults()
			parseFile(&c)

			assert.Equal(t, "http://rent.example:9090", c.ServerURL)
			assert.Equal(t, 10*time.Second, c.RequestTimeout)
			assert.Equal(t, 2*time.Second, c.OnlineCheckInterval)
			assert.Equal(t, "warn", c.LogLevel, "absent keys keep defaults")
		})
	}
}

func TestParseFile_BrokenPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	withArgs(t, "-config", path)

	var c Config
	assert.Panics(t, func() { parseFile(&c) })
}

func TestParseFlags(t *testing.T) {
	withArgs(t, "-a", "http://localhost:1234", "-t", "15", "-i", "1", "-log", "debug", "-x", "ignored")

	var c Config
	c.LoadDefaults()
	parseFlags(&c)

	assert.Equal(t, "http://localhost:1234", c.ServerURL)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: http://from-file\n"), 0o600))
	withArgs(t, "-c", path, "-a", "http://from-flag")

	c := LoadConfig()
	assert.Equal(t, "http://from-flag", c.ServerURL)
}
