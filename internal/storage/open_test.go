package storage

import (
	"context"
	"path/filepath"
	"testing"

	"mooderia/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  config.Config
		want any
	}{
		{"memory", config.Config{StoreBackend: config.BackendMemory}, &Memory{}},
		{"file", config.Config{StoreBackend: config.BackendFile, StorePath: filepath.Join(t.TempDir(), "s.json")}, &File{}},
		{"sqlite", config.Config{StoreBackend: config.BackendSQLite, SQLitePath: ":memory:"}, &SQL{}},
		{"redis", config.Config{StoreBackend: config.BackendRedis, RedisURL: mr.Addr(), RedisPrefix: "m:"}, &Redis{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, &tt.cfg, nil)
			require.NoError(t, err)
			defer func() { _ = s.Close() }()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestOpen_Unknown(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), &config.Config{StoreBackend: "tape"}, nil)
	assert.Error(t, err)
}
