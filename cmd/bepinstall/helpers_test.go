package main

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// resetFlags points the global flags at temp directories and restores them afterwards
func resetFlags(t *testing.T) {
	t.Helper()

	saved := struct {
		configDir, dataDir, gameID, manifestURL, manifestFormat string
		verbose, noHooks, jsonOutput, noColor                   bool
		installInit, installNoClean, uninstallTracked           bool
		uninstallMod                                            string
	}{configDir, dataDir, gameID, manifestURL, manifestFormat, verbose, noHooks, jsonOutput, noColor, installInit, installNoClean, uninstallTracked, uninstallMod}
	savedNoColor := color.NoColor
	t.Cleanup(func() {
		color.NoColor = savedNoColor
		configDir, dataDir = saved.configDir, saved.dataDir
		gameID, manifestURL, manifestFormat = saved.gameID, saved.manifestURL, saved.manifestFormat
		verbose, noHooks, jsonOutput, noColor = saved.verbose, saved.noHooks, saved.jsonOutput, saved.noColor
		installInit, installNoClean, uninstallTracked = saved.installInit, saved.installNoClean, saved.uninstallTracked
		uninstallMod = saved.uninstallMod
	})

	configDir = t.TempDir()
	dataDir = t.TempDir()
	gameID, manifestURL, manifestFormat = "", "", ""
	verbose, noHooks, jsonOutput, noColor = false, false, false, false
	installInit, installNoClean, uninstallTracked = false, false, false
	uninstallMod = ""
	color.NoColor = true
	t.Setenv("NEXUSMODS_API_KEY", "")
}

// newTestCmd returns a bare command with a context and a captured stdout
func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd, buf
}

func writeConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644))
}

func makeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// serveArchives serves each body at its path and 404s everything else
func serveArchives(t *testing.T, bodies map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
