package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"bepinstall/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMappings(t *testing.T) {
	tests := []struct {
		name     string
		mappings []domain.Mapping
		want     string
	}{
		{"none", nil, ""},
		{"game root", []domain.Mapping{{From: "BepInExPack_Valheim", To: ""}}, "BepInExPack_Valheim -> ."},
		{
			"several",
			[]domain.Mapping{{From: "*", To: "BepInEx/plugins"}, {From: "config", To: "BepInEx/config"}},
			"* -> BepInEx/plugins, config -> BepInEx/config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMappings(tt.mappings))
		})
	}
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mods.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const testLegacyManifest = `[
  {"url": "https://example.com/BepInExPack_Valheim.zip", "mapping": [["BepInExPack_Valheim", ""]]},
  {"url": "https://example.com/plugin.zip", "mapping": [["*", "BepInEx/plugins"]]}
]`

func TestManifestCmd_Table(t *testing.T) {
	resetFlags(t)
	manifestURL = writeManifest(t, testLegacyManifest)

	cmd, buf := newTestCmd()
	require.NoError(t, runManifest(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "legacy format")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "BepInExPack_Valheim (loader)")
	assert.Contains(t, out, "* -> BepInEx/plugins")
	assert.Contains(t, out, "2 entries")
}

func TestManifestCmd_JSON(t *testing.T) {
	resetFlags(t)
	jsonOutput = true
	manifestURL = writeManifest(t, testLegacyManifest)

	cmd, buf := newTestCmd()
	require.NoError(t, runManifest(cmd, nil))

	var result struct {
		Format  string              `json:"format"`
		Entries []manifestEntryJSON `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))

	assert.Equal(t, "legacy", result.Format)
	require.Len(t, result.Entries, 2)
	assert.True(t, result.Entries[0].Loader)
	assert.Equal(t, "plugin", result.Entries[1].Name)
	assert.Equal(t, [][2]string{{"*", "BepInEx/plugins"}}, result.Entries[1].Mappings)
}

func TestManifestCmd_Invalid(t *testing.T) {
	resetFlags(t)
	manifestURL = writeManifest(t, `{"not": "a manifest"}`)

	cmd, _ := newTestCmd()
	err := runManifest(cmd, nil)
	assert.Error(t, err)
}

func TestManifestCmd_Missing(t *testing.T) {
	resetFlags(t)
	manifestURL = filepath.Join(t.TempDir(), "missing.json")

	cmd, _ := newTestCmd()
	err := runManifest(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading manifest")
}
