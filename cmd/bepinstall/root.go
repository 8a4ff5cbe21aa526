package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"bepinstall/internal/core"
	"bepinstall/internal/domain"
	"bepinstall/internal/logging"
	"bepinstall/internal/storage/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ErrPartial is returned when a run finished but some mods failed.
// When returned from a command, Execute exits with code 2.
var ErrPartial = errors.New("finished with warnings")

var (
	version = "0.3.0"

	// Global flags
	configDir      string
	dataDir        string
	gameID         string
	manifestURL    string
	manifestFormat string
	verbose        bool
	noHooks        bool
	jsonOutput     bool
	noColor        bool
	logConfig      logging.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bepinstall",
	Short: "BepInEx mod installer for Valheim",
	Long: `bepinstall installs the BepInEx mod loader and a remote list of mods into a
Steam game directory (Valheim by default), and removes them again.

Run 'bepinstall install' to install, 'bepinstall uninstall' to remove BepInEx,
or 'bepinstall ui' for the terminal interface.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		color.NoColor = !colorEnabled()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config", "", "config directory (default: ~/.config/bepinstall)")
	flags.StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/bepinstall)")
	flags.StringVarP(&gameID, "game", "g", "", "game ID (default from config, then valheim)")
	flags.StringVar(&manifestURL, "manifest", "", "manifest URL or file path (overrides config)")
	flags.StringVar(&manifestFormat, "format", "", "manifest format: auto, legacy, settings, hints")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&noHooks, "no-hooks", false, "disable all hooks")
	flags.BoolVar(&jsonOutput, "json", false, "output in JSON format")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	logConfig.AddFlags(flags)
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
func colorEnabled() bool {
	if noColor || jsonOutput {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

var (
	colorGreen  = color.New(color.FgGreen).SprintFunc()
	colorRed    = color.New(color.FgRed).SprintFunc()
	colorYellow = color.New(color.FgYellow).SprintFunc()
	colorBold   = color.New(color.Bold).SprintFunc()
)

// exitCode maps a command error to the process exit code: 0 success, 1 error, 2 partial
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrPartial):
		return 2
	default:
		return 1
	}
}

// Execute runs the root command.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	code := exitCode(err)
	if code == 1 {
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", colorRed("Error:"), err)
		}
	}
	os.Exit(code)
}

// newLogger builds the logger from --log-level/--log-json; -v lowers the level to info
func newLogger() (*slog.Logger, error) {
	cfg := logConfig
	if verbose && cfg.Level == "warn" {
		cfg.Level = "info"
	}
	return cfg.Configure(os.Stderr)
}

// initService creates and initializes the core service
func initService() (*core.Service, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}
	return core.NewService(cfg)
}

// getServiceConfig returns the service configuration with defaults and flag overrides applied
func getServiceConfig() (core.ServiceConfig, error) {
	cfg := core.ServiceConfig{
		ConfigDir: configDir,
		DataDir:   dataDir,
		NoHooks:   noHooks,
	}

	if cfg.ConfigDir == "" || cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
		}
		if cfg.ConfigDir == "" {
			cfg.ConfigDir = filepath.Join(homeDir, ".config", "bepinstall")
		}
		if cfg.DataDir == "" {
			cfg.DataDir = filepath.Join(homeDir, ".local", "share", "bepinstall")
		}
	}

	appConfig, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return core.ServiceConfig{}, err
	}
	if gameID != "" {
		appConfig.Game = gameID
	}
	if manifestURL != "" {
		appConfig.ManifestURL = manifestURL
	}
	if manifestFormat != "" {
		appConfig.ManifestFormat = manifestFormat
	}
	if err := appConfig.Validate(); err != nil {
		return core.ServiceConfig{}, err
	}
	cfg.Config = appConfig

	logger, err := newLogger()
	if err != nil {
		return core.ServiceConfig{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	cfg.Logger = logger

	return cfg, nil
}

// closeService closes the service, reporting failures on stderr
func closeService(service *core.Service) {
	if err := service.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing service: %v\n", err)
	}
}
