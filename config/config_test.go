package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emperance/statify/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statify.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
listen_addr = "127.0.0.1:9999"
`)

	cfg, err := config.ParseConfig(path)
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9999", cfg.Server.ListenAddr)
	require.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, 4, cfg.Precision)
	require.Equal(t, config.HistoryBackendMemory, cfg.History.Backend)
	require.Equal(t, 100, cfg.History.Limit)
}

func TestParseConfigDurations(t *testing.T) {
	path := writeConfig(t, `
[server]
read_timeout = "30s"
write_timeout = "1m"

[market]
interval = "5m"
`)

	cfg, err := config.ParseConfig(path)
	require.NoError(t, err)

	require.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	require.Equal(t, 5*time.Minute, cfg.Market.Interval)
}

func TestParseConfigInvalid(t *testing.T) {
	testCases := map[string]string{
		"bad history backend": `
[history]
backend = "couchdb"
`,
		"postgres without dsn": `
[history]
backend = "postgres"
`,
		"market without symbols": `
[market]
enabled = true
api_key = "demo"
`,
		"precision out of range": `
precision = 12
`,
	}

	for name, content := range testCases {
		content := content

		t.Run(name, func(t *testing.T) {
			_, err := config.ParseConfig(writeConfig(t, content))
			require.Error(t, err)
		})
	}
}

func TestParseConfigEmptyPath(t *testing.T) {
	_, err := config.ParseConfig("")
	require.ErrorIs(t, err, config.ErrEmptyConfigPath)
}
