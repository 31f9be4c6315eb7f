package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFillsMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "search:\n  dimension: 64\nserver:\n  port: 9999\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Search.Dimension)
	assert.Equal(t, 9999, cfg.Server.Port)
	// Everything unspecified comes from the defaults.
	assert.InDelta(t, 0.1, cfg.Search.IDFBoost, 1e-9)
	assert.InDelta(t, 20000, cfg.Safety.CutoffMaxHz, 1e-9)
	assert.Equal(t, "200-800", cfg.Roles["pad"].Attack)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Server.Port = 1234
	cfg.Roles["pad"] = RoleDefaults{Attack: "10ms", Release: "2s"}

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefaultCoversEveryRole(t *testing.T) {
	cfg := Default()
	for _, role := range []string{"pad", "bass", "lead", "fx", "texture", "arp", "drone", "rhythm", "bell", "chord", "pluck"} {
		rd, ok := cfg.Roles[role]
		require.True(t, ok, "role %s", role)
		assert.NotEmpty(t, rd.Attack, "role %s", role)
		assert.NotEmpty(t, rd.Release, "role %s", role)
	}
}
