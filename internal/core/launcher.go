package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"bepinstall/internal/domain"
)

// DefaultInitTimeout bounds how long the game may take to create the loader config
const DefaultInitTimeout = 300 * time.Second

// LoaderLauncher runs the game once so BepInEx can write its initial config
type LoaderLauncher struct {
	timeout      time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewLoaderLauncher creates a launcher. A zero timeout uses DefaultInitTimeout.
func NewLoaderLauncher(timeout time.Duration, logger *slog.Logger) *LoaderLauncher {
	if timeout <= 0 {
		timeout = DefaultInitTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoaderLauncher{timeout: timeout, pollInterval: 500 * time.Millisecond, logger: logger}
}

// Initialize starts the game's executable in installRoot and waits until the
// game's init marker exists, then kills the process. It returns immediately
// when the marker is already present.
func (l *LoaderLauncher) Initialize(ctx context.Context, game *domain.Game, installRoot string) error {
	if game == nil || game.InitMarker == "" {
		return nil
	}
	marker, err := ResolveInside(installRoot, game.InitMarker)
	if err != nil {
		return err
	}
	if fileExists(marker) {
		return nil
	}

	exe := findExecutable(installRoot, game.Executables)
	if exe == "" {
		return fmt.Errorf("no executable for %s found in %s", game.Name, installRoot)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	cmd := exec.Command(exe)
	cmd.Dir = installRoot
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", filepath.Base(exe), err)
	}
	l.logger.Info("launched game to initialize loader", "exe", exe, "pid", cmd.Process.Pid)

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	stop := func() {
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			l.logger.Warn("killing game process", "error", err)
		}
		<-exited
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if fileExists(marker) {
				stop()
				return nil
			}
		case err := <-exited:
			if fileExists(marker) {
				return nil
			}
			return fmt.Errorf("game exited before the loader initialized: %v", err)
		case <-ctx.Done():
			stop()
			if fileExists(marker) {
				return nil
			}
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("loader did not initialize within %v", l.timeout)
			}
			return ctx.Err()
		}
	}
}

// findExecutable returns the first candidate that exists and can run on this OS
func findExecutable(installRoot string, candidates []string) string {
	for _, c := range candidates {
		isExe := strings.EqualFold(filepath.Ext(c), ".exe")
		if isExe != (runtime.GOOS == "windows") {
			continue
		}
		path, err := ResolveInside(installRoot, c)
		if err != nil {
			continue
		}
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
