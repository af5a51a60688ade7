package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ROWINGDB_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Database.Path)
	require.Equal(t, "2006-01-02", cfg.UI.DateFormat)
	require.Equal(t, 9, cfg.Season.StartMonth)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := "[database]\npath = \"/tmp/custom.db\"\n\n[season]\nstart_month = 8\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("ROWINGDB_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.db", cfg.Database.Path)
	require.Equal(t, 8, cfg.Season.StartMonth)
}

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("ROWINGDB_CONFIG", path)

	first, err := Load()
	require.NoError(t, err)

	// the defaults were persisted and round-trip
	_, err = os.Stat(path)
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("ROWINGDB_CONFIG", path)

	want := Config{
		Database: DatabaseConfig{Path: "/tmp/rowing.db"},
		UI:       UIConfig{DateFormat: "02/01/2006", Timezone: "UTC"},
		Season:   SeasonConfig{StartMonth: 9},
	}
	require.NoError(t, Save(want))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadRejectsBadSeasonMonth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[season]\nstart_month = 13\n"), 0o644))
	t.Setenv("ROWINGDB_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
}
