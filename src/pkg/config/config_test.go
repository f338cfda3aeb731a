package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoadWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	require.NoError(t, ConfigLoad(path))

	cfg := ConfigGet()
	require.NotNil(t, cfg)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "treeData", cfg.CacheSlot)
	assert.Equal(t, "Root", cfg.RootName)

	_, err := os.Stat(path)
	assert.NoError(t, err, "default config should be written on first load")
}

func TestConfigLoadYAMLKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "cache_slot: other\nhistory_limit: 5\nexport_format: yaml\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, ConfigLoad(path))

	cfg := ConfigGet()
	assert.Equal(t, "other", cfg.CacheSlot)
	assert.Equal(t, 5, cfg.HistoryLimit)
	assert.Equal(t, "yaml", cfg.ExportFormat)
	assert.Equal(t, "powertree.db", cfg.DatabaseFile)
}

func TestConfigLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown database", `{"database_type": "postgres"}`, "DatabaseType must be one of"},
		{"negative history", `{"history_limit": -1}`, "HistoryLimit must be at least 0"},
		{"empty slot", `{"cache_slot": ""}`, "CacheSlot is required"},
		{"bad export format", `{"export_format": "csv"}`, "ExportFormat must be one of"},
		{"malformed", `{"cache_slot": `, "error parsing config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			err := ConfigLoad(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigDefaultIsValid(t *testing.T) {
	assert.NoError(t, ConfigValidate(ConfigDefault()))
}
