package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModKey(t *testing.T) {
	tests := []struct {
		sourceID string
		modID    string
		want     string
	}{
		{"thunderstore", "denikson-BepInExPack_Valheim", "thunderstore:denikson-BepInExPack_Valheim"},
		{"nexusmods", "12345", "nexusmods:12345"},
		{"", "", ":"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ModKey(tt.sourceID, tt.modID))
	}
}

func TestMapping_IsWildcard(t *testing.T) {
	assert.True(t, Mapping{From: "*"}.IsWildcard())
	assert.True(t, Mapping{From: ""}.IsWildcard())
	assert.False(t, Mapping{From: "BepInExPack_Valheim"}.IsWildcard())
}

func TestModEntry_DisplayName(t *testing.T) {
	assert.Equal(t, "Jotunn 2.20.0", ModEntry{Name: "Jotunn", Version: "2.20.0"}.DisplayName())
	assert.Equal(t, "Jotunn", ModEntry{Name: "Jotunn"}.DisplayName())
	assert.Equal(t, "http://x/a.zip", ModEntry{ID: "http://x/a.zip"}.DisplayName())
}

func TestInstallManifest_LoadersAndMods(t *testing.T) {
	m := InstallManifest{Entries: []ModEntry{
		{ID: "a"},
		{ID: "loader", Loader: true},
		{ID: "b"},
	}}

	loaders := m.Loaders()
	mods := m.Mods()

	assert.Len(t, loaders, 1)
	assert.Equal(t, "loader", loaders[0].ID)
	assert.Len(t, mods, 2)
	assert.Equal(t, "a", mods[0].ID)
	assert.Equal(t, "b", mods[1].ID)
}

func TestGame_Artifacts(t *testing.T) {
	var nilGame *Game
	assert.Equal(t, DefaultLoaderArtifacts, nilGame.Artifacts())
	assert.Equal(t, DefaultLoaderArtifacts, (&Game{}).Artifacts())
	assert.Equal(t, []string{"x"}, (&Game{LoaderArtifacts: []string{"x"}}).Artifacts())
}

func TestRunState(t *testing.T) {
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateSucceeded.Terminal())
	assert.True(t, StatePartial.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.Equal(t, "partial", StatePartial.String())
}

func TestEvent_Fraction(t *testing.T) {
	assert.Equal(t, 0.0, Event{}.Fraction())
	assert.Equal(t, 0.5, Event{Step: 2, Total: 4}.Fraction())
	assert.Equal(t, 1.0, Event{Step: 5, Total: 4}.Fraction())
}
