package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"bepinstall/internal/core"
	"bepinstall/internal/domain"
	"bepinstall/internal/source/steam"
	"bepinstall/internal/storage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockResolver serves hint lookups from a map keyed by hint ID
type mockResolver struct {
	entries map[string]*domain.ModEntry
}

func (m *mockResolver) ID() string   { return "mock" }
func (m *mockResolver) Name() string { return "Mock Source" }
func (m *mockResolver) Resolve(ctx context.Context, hint domain.ModHint) (*domain.ModEntry, error) {
	if e, ok := m.entries[hint.ID]; ok {
		return e, nil
	}
	return nil, domain.ErrModNotFound
}

type testEnv struct {
	svc    *core.Service
	root   string // Valheim install dir
	server *archiveServer
}

type entryJSON struct {
	URL     string      `json:"url"`
	Mapping [][2]string `json:"mapping"`
}

// setupService builds a fake Steam library holding Valheim and a server that
// serves the manifest plus the archives
func setupService(t *testing.T, manifest func(base string) any, archives map[string][]byte, opts ...func(*config.Config)) *testEnv {
	t.Helper()
	t.Setenv(core.NexusAPIKeyEnv, "")

	steamRoot := filepath.Join(t.TempDir(), "Steam")
	root := filepath.Join(steamRoot, "steamapps", "common", "Valheim")
	require.NoError(t, os.MkdirAll(root, 0755))

	bodies := map[string][]byte{}
	for k, v := range archives {
		bodies[k] = v
	}
	env := &testEnv{root: root}
	env.server = newArchiveServer(t, bodies)
	if manifest != nil {
		data, err := json.Marshal(manifest(env.server.URL))
		require.NoError(t, err)
		bodies["/manifest.json"] = data
	}

	cfg := config.Default()
	cfg.ManifestURL = env.server.URL + "/manifest.json"
	cfg.ThunderstoreURL = env.server.URL
	for _, opt := range opts {
		opt(cfg)
	}

	svc, err := core.NewService(core.ServiceConfig{
		ConfigDir: t.TempDir(),
		DataDir:   t.TempDir(),
		Config:    cfg,
		Locator: steam.NewLocator(
			steam.WithRoots(steamRoot),
			steam.WithRegistry(func() []string { return nil }),
			steam.WithDrives(func() []string { return nil }),
		),
		HTTPClient: env.server.Client(),
		TempDir:    t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	env.svc = svc
	return env
}

func legacyManifest(entries ...entryJSON) func(string) any {
	return func(base string) any {
		out := make([]entryJSON, len(entries))
		for i, e := range entries {
			out[i] = entryJSON{URL: base + e.URL, Mapping: e.Mapping}
		}
		return out
	}
}

func loaderArchive(t *testing.T) []byte {
	return makeZip(t, map[string]string{
		"BepInExPack_Valheim/winhttp.dll":                  "dll",
		"BepInExPack_Valheim/BepInEx/core/BepInEx.dll":     "core",
		"BepInExPack_Valheim/doorstop_libs/libdoorstop.so": "so",
		"icon.png": "png",
	})
}

var (
	loaderJSON = entryJSON{URL: "/pack.zip", Mapping: [][2]string{{"BepInExPack_Valheim", ""}}}
	pluginJSON = entryJSON{URL: "/a.zip", Mapping: [][2]string{{"*", "BepInEx/plugins"}}}
)

func runInstall(t *testing.T, svc *core.Service, opts core.InstallOptions) domain.Event {
	t.Helper()
	events, err := svc.StartInstall(context.Background(), opts)
	require.NoError(t, err)
	got := collect(t, events)
	require.Equal(t, 1, terminalCount(got))
	return got[len(got)-1]
}

func runUninstall(t *testing.T, svc *core.Service, tracked bool) domain.Event {
	t.Helper()
	events, err := svc.StartUninstall(context.Background(), tracked)
	require.NoError(t, err)
	got := collect(t, events)
	require.Equal(t, 1, terminalCount(got))
	return got[len(got)-1]
}

func TestNewService(t *testing.T) {
	env := setupService(t, nil, nil)

	assert.NotNil(t, env.svc.DB())
	assert.Nil(t, env.svc.Cache())
	assert.Equal(t, "valheim", env.svc.Config().Game)

	game, err := env.svc.Game()
	require.NoError(t, err)
	assert.Equal(t, "Valheim", game.FolderName)

	root, err := env.svc.Locate()
	require.NoError(t, err)
	assert.Equal(t, env.root, root)

	_, err = env.svc.Registry().Get("thunderstore")
	assert.NoError(t, err)
	_, err = env.svc.Registry().Get("nexusmods")
	assert.ErrorIs(t, err, domain.ErrUnknownSource)
}

func TestService_NexusRegisteredWithKey(t *testing.T) {
	env := setupService(t, nil, nil, func(c *config.Config) { c.NexusAPIKey = "key" })
	_, err := env.svc.Registry().Get("nexusmods")
	assert.NoError(t, err)
}

func TestService_Install(t *testing.T) {
	env := setupService(t, legacyManifest(loaderJSON, pluginJSON), map[string][]byte{
		"/pack.zip": loaderArchive(t),
		"/a.zip":    makeZip(t, map[string]string{"plugin.dll": "MZ"}),
	})

	last := runInstall(t, env.svc, core.InstallOptions{CleanInstall: true})
	require.Equal(t, domain.StateSucceeded, last.State, last.Message)
	assert.Equal(t, last.Total, last.Step)

	assert.Equal(t, "dll", readFile(t, filepath.Join(env.root, "winhttp.dll")))
	assert.Equal(t, "MZ", readFile(t, filepath.Join(env.root, "BepInEx", "plugins", "plugin.dll")))
	assert.NoFileExists(t, filepath.Join(env.root, "icon.png"))

	mods, err := env.svc.InstalledMods(env.root)
	require.NoError(t, err)
	assert.Len(t, mods, 2)

	runs, err := env.svc.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, last.RunID, runs[0].ID)
	assert.Equal(t, domain.StateSucceeded, runs[0].State)
	assert.Equal(t, env.root, runs[0].InstallRoot)
}

func TestService_InstallPartial(t *testing.T) {
	missing := entryJSON{URL: "/missing.zip", Mapping: [][2]string{{"*", "BepInEx/plugins"}}}
	env := setupService(t, legacyManifest(loaderJSON, missing, pluginJSON), map[string][]byte{
		"/pack.zip": loaderArchive(t),
		"/a.zip":    makeZip(t, map[string]string{"plugin.dll": "MZ"}),
	})

	last := runInstall(t, env.svc, core.InstallOptions{})
	assert.Equal(t, domain.StatePartial, last.State)
	assert.FileExists(t, filepath.Join(env.root, "BepInEx", "plugins", "plugin.dll"))

	runs, err := env.svc.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.StatePartial, runs[0].State)
}

func TestService_InstallLoaderFailureAborts(t *testing.T) {
	env := setupService(t, legacyManifest(loaderJSON, pluginJSON), map[string][]byte{
		"/a.zip": makeZip(t, map[string]string{"plugin.dll": "MZ"}),
	})

	last := runInstall(t, env.svc, core.InstallOptions{})
	assert.Equal(t, domain.StateFailed, last.State)
	assert.ErrorIs(t, last.Err, domain.ErrLoaderInstallFailed)
	assert.NoFileExists(t, filepath.Join(env.root, "BepInEx", "plugins", "plugin.dll"))
	assert.Equal(t, int32(2), env.server.hits.Load(), "only the manifest and the loader are requested")
}

func TestService_InstallManifestFailure(t *testing.T) {
	env := setupService(t, nil, nil)

	last := runInstall(t, env.svc, core.InstallOptions{})
	assert.Equal(t, domain.StateFailed, last.State)
	assert.Contains(t, last.Message, "fetching manifest")
}

func TestService_InstallGameNotFound(t *testing.T) {
	env := setupService(t, legacyManifest(loaderJSON), map[string][]byte{"/pack.zip": loaderArchive(t)})
	require.NoError(t, os.RemoveAll(env.root))

	last := runInstall(t, env.svc, core.InstallOptions{})
	assert.Equal(t, domain.StateFailed, last.State)
	assert.ErrorIs(t, last.Err, domain.ErrGameNotFound)
}

func TestService_InstallPathOverride(t *testing.T) {
	custom := t.TempDir()
	env := setupService(t, legacyManifest(loaderJSON), map[string][]byte{"/pack.zip": loaderArchive(t)},
		func(c *config.Config) { c.InstallPath = custom })

	last := runInstall(t, env.svc, core.InstallOptions{})
	require.Equal(t, domain.StateSucceeded, last.State, last.Message)
	assert.FileExists(t, filepath.Join(custom, "winhttp.dll"))
	assert.NoFileExists(t, filepath.Join(env.root, "winhttp.dll"))
}

func TestService_CleanInstall(t *testing.T) {
	env := setupService(t, legacyManifest(loaderJSON), map[string][]byte{"/pack.zip": loaderArchive(t)})
	stale := filepath.Join(env.root, "BepInEx", "plugins", "stale.dll")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	last := runInstall(t, env.svc, core.InstallOptions{CleanInstall: true})
	require.Equal(t, domain.StateSucceeded, last.State, last.Message)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(env.root, "BepInEx", "core", "BepInEx.dll"))
}

func TestService_InstallHints(t *testing.T) {
	hints := func(base string) any {
		return []map[string]any{
			{"source": "mock", "namespace": "", "name": "", "id": "jotunn", "to": "BepInEx/plugins/Jotunn"},
			{"source": "mock", "namespace": "", "name": "", "id": "unknown"},
			{"namespace": "", "name": ""},
		}
	}
	env := setupService(t, hints, map[string][]byte{
		"/jotunn.zip": makeZip(t, map[string]string{"Jotunn.dll": "dll"}),
	})
	env.svc.Registry().Register(&mockResolver{entries: map[string]*domain.ModEntry{
		"jotunn": {
			ID:          "jotunn",
			SourceID:    "mock",
			Name:        "Jotunn",
			DownloadURL: env.server.URL + "/jotunn.zip",
			Mappings:    []domain.Mapping{{From: "*", To: "BepInEx/plugins/Jotunn"}},
		},
	}})

	last := runInstall(t, env.svc, core.InstallOptions{})
	assert.Equal(t, domain.StatePartial, last.State)
	assert.FileExists(t, filepath.Join(env.root, "BepInEx", "plugins", "Jotunn", "Jotunn.dll"))
}

func TestService_InstallThenUninstall(t *testing.T) {
	mod := entryJSON{URL: "/mod.zip", Mapping: [][2]string{{"*", "valheim_Data"}}}
	env := setupService(t, legacyManifest(loaderJSON, mod), map[string][]byte{
		"/pack.zip": loaderArchive(t),
		"/mod.zip":  makeZip(t, map[string]string{"textures/rock.png": "png"}),
	})

	require.Equal(t, domain.StateSucceeded, runInstall(t, env.svc, core.InstallOptions{}).State)

	last := runUninstall(t, env.svc, false)
	require.Equal(t, domain.StateSucceeded, last.State, last.Message)
	assert.NoDirExists(t, filepath.Join(env.root, "BepInEx"))
	assert.NoFileExists(t, filepath.Join(env.root, "winhttp.dll"))
	assert.NoDirExists(t, filepath.Join(env.root, "doorstop_libs"))
	assert.FileExists(t, filepath.Join(env.root, "valheim_Data", "textures", "rock.png"))

	// Second run is a no-op
	assert.Equal(t, domain.StateSucceeded, runUninstall(t, env.svc, false).State)
}

func TestService_UninstallTracked(t *testing.T) {
	mod := entryJSON{URL: "/mod.zip", Mapping: [][2]string{{"*", "valheim_Data"}}}
	env := setupService(t, legacyManifest(loaderJSON, mod), map[string][]byte{
		"/pack.zip": loaderArchive(t),
		"/mod.zip":  makeZip(t, map[string]string{"textures/rock.png": "png"}),
	})
	require.Equal(t, domain.StateSucceeded, runInstall(t, env.svc, core.InstallOptions{}).State)

	last := runUninstall(t, env.svc, true)
	require.Equal(t, domain.StateSucceeded, last.State, last.Message)
	assert.NoDirExists(t, filepath.Join(env.root, "valheim_Data"))

	mods, err := env.svc.InstalledMods(env.root)
	require.NoError(t, err)
	assert.Empty(t, mods)
}

func TestService_RemoveMod(t *testing.T) {
	rock := entryJSON{URL: "/rock.zip", Mapping: [][2]string{{"*", "valheim_Data"}}}
	tree := entryJSON{URL: "/tree.zip", Mapping: [][2]string{{"*", "BepInEx/plugins"}}}
	env := setupService(t, legacyManifest(loaderJSON, rock, tree), map[string][]byte{
		"/pack.zip": loaderArchive(t),
		"/rock.zip": makeZip(t, map[string]string{"textures/rock.png": "png"}),
		"/tree.zip": makeZip(t, map[string]string{"tree.dll": "MZ"}),
	})
	require.Equal(t, domain.StateSucceeded, runInstall(t, env.svc, core.InstallOptions{}).State)

	mods, err := env.svc.InstalledMods(env.root)
	require.NoError(t, err)
	var key string
	for _, m := range mods {
		if filepath.Base(m.DownloadURL) == "rock.zip" {
			key = m.Key
		}
	}
	require.NotEmpty(t, key)

	events, err := env.svc.StartRemoveMod(context.Background(), key)
	require.NoError(t, err)
	got := collect(t, events)
	require.Equal(t, 1, terminalCount(got))
	last := got[len(got)-1]
	require.Equal(t, domain.StateSucceeded, last.State, last.Message)

	assert.NoDirExists(t, filepath.Join(env.root, "valheim_Data"))
	assert.FileExists(t, filepath.Join(env.root, "BepInEx", "plugins", "tree.dll"))
	assert.FileExists(t, filepath.Join(env.root, "winhttp.dll"))

	// Unknown keys fail the run
	events, err = env.svc.StartRemoveMod(context.Background(), key)
	require.NoError(t, err)
	got = collect(t, events)
	last = got[len(got)-1]
	assert.Equal(t, domain.StateFailed, last.State)
	assert.ErrorIs(t, last.Err, domain.ErrModNotFound)
}

func TestService_UninstallGameNotFound(t *testing.T) {
	env := setupService(t, nil, nil)
	require.NoError(t, os.RemoveAll(env.root))

	last := runUninstall(t, env.svc, false)
	assert.Equal(t, domain.StateSucceeded, last.State)
}

func TestService_OneRunAtATime(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks")
	}
	hookDir := t.TempDir()
	gate := filepath.Join(hookDir, "gate")
	hook := filepath.Join(hookDir, "wait.sh")
	require.NoError(t, os.WriteFile(hook, []byte("#!/bin/sh\nwhile [ ! -f \""+gate+"\" ]; do sleep 0.05; done\n"), 0755))

	env := setupService(t, legacyManifest(loaderJSON), map[string][]byte{"/pack.zip": loaderArchive(t)},
		func(c *config.Config) { c.Hooks.Install.BeforeAll = hook })

	events, err := env.svc.StartInstall(context.Background(), core.InstallOptions{})
	require.NoError(t, err)

	_, err = env.svc.StartUninstall(context.Background(), false)
	assert.True(t, errors.Is(err, domain.ErrRunInProgress))

	require.NoError(t, os.WriteFile(gate, nil, 0644))
	assert.Equal(t, domain.StateSucceeded, core.Wait(events).State)
}

func TestService_HookFailureAbortsInstall(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks")
	}
	hook := filepath.Join(t.TempDir(), "fail.sh")
	require.NoError(t, os.WriteFile(hook, []byte("#!/bin/sh\nexit 1\n"), 0755))

	env := setupService(t, legacyManifest(loaderJSON), map[string][]byte{"/pack.zip": loaderArchive(t)},
		func(c *config.Config) { c.Hooks.Install.BeforeAll = hook })

	last := runInstall(t, env.svc, core.InstallOptions{})
	assert.Equal(t, domain.StateFailed, last.State)
	assert.Contains(t, last.Message, "before_all")
	assert.NoFileExists(t, filepath.Join(env.root, "winhttp.dll"))
}

func TestService_SourceTokens(t *testing.T) {
	env := setupService(t, nil, nil)

	require.NoError(t, env.svc.SaveSourceToken("nexusmods", "secret"))
	token, err := env.svc.DB().GetToken("nexusmods")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "secret", token.APIKey)

	require.NoError(t, env.svc.DeleteSourceToken("nexusmods"))
	token, err = env.svc.DB().GetToken("nexusmods")
	require.NoError(t, err)
	assert.Nil(t, token)
}
