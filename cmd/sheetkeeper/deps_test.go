package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sheetkeeper/internal/infrastructure/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		level   string
		wantErr string
	}{
		{name: "defaults", cfg: config.LogConfig{Level: "info"}},
		{name: "json", cfg: config.LogConfig{Level: "warn", Format: "json"}},
		{name: "flag overrides config", cfg: config.LogConfig{Level: "nonsense"}, level: "debug"},
		{name: "bad level", cfg: config.LogConfig{Level: "loud"}, wantErr: "invalid log level"},
		{name: "bad format", cfg: config.LogConfig{Level: "info", Format: "xml"}, wantErr: "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := newLogger(tt.cfg, tt.level, &buf)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNewLogger_Filtering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LogConfig{Level: "warn", Format: "json"}, "", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "character", "Aria")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "shown", record["msg"])
	assert.Equal(t, "Aria", record["character"])
}

func TestNewNPCGenerator_NoKey(t *testing.T) {
	assert.Nil(t, newNPCGenerator(config.LLMConfig{}, nil))
}

func TestOpenRelationalDB_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sheets.db")

	db, err := openRelationalDB(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.EnsureSchema(context.Background()))
	assert.FileExists(t, path)
}

func TestBuildDeps_OwnerOverride(t *testing.T) {
	cfg := config.Default()
	cfg.OwnerID = "from-config"

	d := buildDeps(cfg, config.DefaultSystems(), nil, nil, nil, nil)
	assert.Equal(t, "from-config", d.Owner)

	globalOwner = "from-flag"
	t.Cleanup(func() { globalOwner = "" })

	d = buildDeps(cfg, config.DefaultSystems(), nil, nil, nil, nil)
	assert.Equal(t, "from-flag", d.Owner)
}
