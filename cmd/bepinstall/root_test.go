package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"bepinstall/internal/domain"
	"bepinstall/internal/storage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"error", errors.New("boom"), 1},
		{"partial", ErrPartial, 2},
		{"wrapped partial", fmt.Errorf("install: %w", ErrPartial), 2},
		{"game not found", domain.ErrGameNotFound, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestColorEnabled(t *testing.T) {
	resetFlags(t)
	t.Setenv("NO_COLOR", "")
	assert.True(t, colorEnabled())

	noColor = true
	assert.False(t, colorEnabled())

	noColor = false
	jsonOutput = true
	assert.False(t, colorEnabled(), "JSON output is never colored")

	jsonOutput = false
	t.Setenv("NO_COLOR", "1")
	assert.False(t, colorEnabled())
}

func TestGetServiceConfig_Defaults(t *testing.T) {
	resetFlags(t)

	cfg, err := getServiceConfig()
	require.NoError(t, err)

	assert.Equal(t, configDir, cfg.ConfigDir)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.False(t, cfg.NoHooks)
	assert.NotNil(t, cfg.Logger)
	require.NotNil(t, cfg.Config)
	assert.Equal(t, config.Default().Game, cfg.Config.Game)
	assert.Equal(t, config.Default().ManifestURL, cfg.Config.ManifestURL)
}

func TestGetServiceConfig_HomeFallback(t *testing.T) {
	resetFlags(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	configDir, dataDir = "", ""

	cfg, err := getServiceConfig()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "bepinstall"), cfg.ConfigDir)
	assert.Equal(t, filepath.Join(home, ".local", "share", "bepinstall"), cfg.DataDir)
}

func TestGetServiceConfig_FlagsOverrideConfig(t *testing.T) {
	resetFlags(t)
	writeConfig(t, "game: valheim\nmanifest_url: https://example.com/from-config.json\nmanifest_format: legacy\n")

	gameID = "valheim_server"
	manifestURL = "./mods.json"
	manifestFormat = "hints"
	noHooks = true

	cfg, err := getServiceConfig()
	require.NoError(t, err)

	assert.Equal(t, "valheim_server", cfg.Config.Game)
	assert.Equal(t, "./mods.json", cfg.Config.ManifestURL)
	assert.Equal(t, "hints", cfg.Config.ManifestFormat)
	assert.True(t, cfg.NoHooks)
}

func TestGetServiceConfig_InvalidFormat(t *testing.T) {
	resetFlags(t)
	manifestFormat = "xml"

	_, err := getServiceConfig()
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestGetServiceConfig_BrokenConfigFile(t *testing.T) {
	resetFlags(t)
	writeConfig(t, "game: [unclosed\n")

	_, err := getServiceConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestInitService_RegistersNexusModsWithKey(t *testing.T) {
	resetFlags(t)
	t.Setenv("NEXUSMODS_API_KEY", "test-key")

	svc, err := initService()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, svc.Close())
	})

	_, err = svc.Registry().Get("nexusmods")
	assert.NoError(t, err)
}

func TestRootCmd_Subcommands(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"install", "uninstall", "locate", "manifest", "status", "games", "cache", "auth", "ui"} {
		assert.Contains(t, names, want)
	}
}
