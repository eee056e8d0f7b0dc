package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateStoreBackend(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{"memory", Config{StoreBackend: BackendMemory}, false},
		{"file with path", Config{StoreBackend: BackendFile, StorePath: "data/x.json"}, false},
		{"file without path", Config{StoreBackend: BackendFile}, true},
		{"sqlite without path", Config{StoreBackend: BackendSQLite}, true},
		{"postgres without dsn", Config{StoreBackend: BackendPostgres}, true},
		{"postgres with dsn", Config{StoreBackend: BackendPostgres, DatabaseURL: "postgres://u:p@localhost/db"}, false},
		{"redis without url", Config{StoreBackend: BackendRedis}, true},
		{"redis with url", Config{StoreBackend: BackendRedis, RedisURL: "redis://localhost:6379"}, false},
		{"unknown backend", Config{StoreBackend: "floppy"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cfg
			c.Port = "8420"
			c.TracingSampleRatio = 1

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRequiresPort(t *testing.T) {
	c := &Config{StoreBackend: BackendMemory}
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateSampleRatio(t *testing.T) {
	c := &Config{Port: "1", StoreBackend: BackendMemory, TracingSampleRatio: 1.5}
	assert.Error(t, c.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_BACKEND", "  MEMORY ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, c.StoreBackend)
	assert.Equal(t, "8420", c.Port)
	assert.Equal(t, []string{"NeoCitizen", "VibeExplorer", "CyberPanda"}, c.Citizens())
	assert.Equal(t, "gemini-3-pro-preview", c.GeminiChatModel)
	assert.Equal(t, "gemini-3-flash-preview", c.GeminiFastModel)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList(""))
}
