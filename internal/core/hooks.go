package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"bepinstall/internal/domain"
)

// HookContext is what a hook script learns about the run through BEPINSTALL_* variables
type HookContext struct {
	GameID      string
	InstallRoot string // Also the script's working directory
	ModID       string // Mod fields are empty for *_all hooks
	ModName     string
	ModVersion  string
	HookName    string // "install.before_all", "uninstall.after_all", ...
}

func (hc HookContext) env() []string {
	vars := map[string]string{
		"GAME_ID":     hc.GameID,
		"GAME_PATH":   hc.InstallRoot,
		"MOD_ID":      hc.ModID,
		"MOD_NAME":    hc.ModName,
		"MOD_VERSION": hc.ModVersion,
		"HOOK":        hc.HookName,
	}
	env := os.Environ()
	for k, v := range vars {
		env = append(env, "BEPINSTALL_"+k+"="+v)
	}
	return env
}

// HookResult is the captured output of one script
type HookResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// HookError reports a script that ran and exited non-zero
type HookError struct {
	Script   string
	ExitCode int
	Stderr   string
}

func (e *HookError) Error() string {
	msg := fmt.Sprintf("hook %s exited with code %d", e.Script, e.ExitCode)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// HookRunner runs user scripts, each bounded by the same timeout
type HookRunner struct {
	timeout time.Duration
}

func NewHookRunner(timeout time.Duration) *HookRunner {
	return &HookRunner{timeout: timeout}
}

// Run executes scriptPath with hc in its environment. The result is returned
// even on failure so callers can log the output.
func (r *HookRunner) Run(ctx context.Context, scriptPath string, hc HookContext) (*HookResult, error) {
	var res HookResult

	switch info, err := os.Stat(scriptPath); {
	case errors.Is(err, fs.ErrNotExist):
		return &res, fmt.Errorf("hook script not found: %s", scriptPath)
	case err != nil:
		return &res, fmt.Errorf("inspecting hook %s: %w", scriptPath, err)
	case info.Mode().Perm()&0o111 == 0:
		return &res, fmt.Errorf("hook script not executable: %s", scriptPath)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr strings.Builder
	cmd := exec.CommandContext(runCtx, scriptPath)
	cmd.Dir = hc.InstallRoot
	cmd.Env = hc.env()
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	cmd.WaitDelay = 100 * time.Millisecond

	err := cmd.Run()
	res.Stdout, res.Stderr = stdout.String(), stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return &res, nil
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return &res, fmt.Errorf("hook %s timed out after %v", scriptPath, r.timeout)
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return &res, &HookError{Script: scriptPath, ExitCode: res.ExitCode, Stderr: res.Stderr}
	default:
		return &res, fmt.Errorf("starting hook %s: %w", scriptPath, err)
	}
}

// hookSet binds a HookConfig to the runner so callers can fire hooks by phase
type hookSet struct {
	runner *HookRunner
	config domain.HookConfig
	kind   string // "install" or "uninstall"
	base   HookContext
}

// run fires script if set. An empty script is a no-op.
func (h *hookSet) run(ctx context.Context, phase, script string, mod *domain.ModEntry) error {
	if h == nil || h.runner == nil || script == "" {
		return nil
	}
	hc := h.base
	hc.HookName = h.kind + "." + phase
	if mod != nil {
		hc.ModID, hc.ModName, hc.ModVersion = mod.ID, mod.Name, mod.Version
	}
	_, err := h.runner.Run(ctx, script, hc)
	return err
}

func (h *hookSet) beforeAll(ctx context.Context) error {
	if h == nil {
		return nil
	}
	return h.run(ctx, "before_all", h.config.BeforeAll, nil)
}

func (h *hookSet) afterAll(ctx context.Context) error {
	if h == nil {
		return nil
	}
	return h.run(ctx, "after_all", h.config.AfterAll, nil)
}

func (h *hookSet) beforeEach(ctx context.Context, mod domain.ModEntry) error {
	if h == nil {
		return nil
	}
	return h.run(ctx, "before_each", h.config.BeforeEach, &mod)
}

func (h *hookSet) afterEach(ctx context.Context, mod domain.ModEntry) error {
	if h == nil {
		return nil
	}
	return h.run(ctx, "after_each", h.config.AfterEach, &mod)
}
