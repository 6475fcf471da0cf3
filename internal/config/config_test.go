package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads values from yaml", func(t *testing.T) {
		// Given: a config file with redis settings
		path := writeConfig(t, "log-level: debug\nhttp-port: \"8080\"\nredis:\n  host: cache\n  port: \"6380\"\n")

		// When: loading the config
		conf, err := Load(path)

		// Then: the file values are used
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
	})

	t.Run("Applies defaults for missing values", func(t *testing.T) {
		// Given: an almost empty config file
		path := writeConfig(t, "log-level: info\n")

		// When: loading the config
		conf, err := Load(path)

		// Then: channel prefixes fall back to defaults
		require.NoError(t, err)
		assert.Equal(t, "tictactoelobby--", conf.Channels.LobbyPrefix)
		assert.Equal(t, "tictactoegame--", conf.Channels.GamePrefix)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		// Given: a config file and a REDIS_HOST variable
		path := writeConfig(t, "redis:\n  host: cache\n")
		t.Setenv("REDIS_HOST", "redis.internal")

		// When: loading the config
		conf, err := Load(path)

		// Then: the environment wins
		require.NoError(t, err)
		assert.Equal(t, "redis.internal", conf.Redis.Host)
	})

	t.Run("Returns error for missing file", func(t *testing.T) {
		// When: loading a file that does not exist
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))

		// Then: an error is returned
		require.Error(t, err)
	})
}

func TestRedis_GetRedisAddr(t *testing.T) {
	redis := &Redis{Host: "", Port: "6379"}

	assert.Empty(t, redis.GetRedisAddr())
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		logLevel string
		want     slog.Level
	}{
		{logLevel: "debug", want: slog.LevelDebug},
		{logLevel: "info", want: slog.LevelInfo},
		{logLevel: "WARN", want: slog.LevelWarn},
		{logLevel: "error", want: slog.LevelError},
		{logLevel: "debug+2", want: slog.LevelDebug + 2},
		{logLevel: "", want: slog.LevelInfo},
		{logLevel: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			conf := &Config{LogLevel: tt.logLevel}

			assert.Equal(t, tt.want, conf.SlogLevel())
		})
	}
}
