package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("JOURNAL_DSN", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Parse([]byte("journal:\n  tickers: [NQ, ES]\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"NQ", "ES"}, cfg.Journal.Tickers)
	assert.Equal(t, 60, cfg.Telegram.PollTimeoutSeconds)
	assert.Equal(t, 25.0, cfg.Telegram.SendRatePerSec)
	assert.Equal(t, 10, cfg.Journal.RecentLimit)
	assert.Equal(t, "journal.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingToken)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("JOURNAL_DSN", ":memory:")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Parse([]byte("telegram:\n  token: from-yaml\nstorage:\n  dsn: file.db\n"))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("journal: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram:\n  token: tok\n  send_rate_per_sec: 5\ndispatch:\n  workers: 3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Telegram.Token)
	assert.Equal(t, 5.0, cfg.Telegram.SendRatePerSec)
	assert.Equal(t, 3, cfg.Dispatch.Workers)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
