package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bepinstall/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGame            = "valheim"
	DefaultManifestURL     = "https://raw.githubusercontent.com/IdotNuerk/CumHeim/master/mods.json"
	DefaultThunderstoreURL = "https://thunderstore.io"
	DefaultInitTimeout     = 5 * time.Minute
	DefaultHookTimeout     = 60 * time.Second
	DefaultScanDepth       = 3
)

// Manifest formats accepted by manifest_format
const (
	FormatAuto     = "auto"
	FormatLegacy   = "legacy"
	FormatSettings = "settings"
	FormatHints    = "hints"
)

// Config holds global application settings
type Config struct {
	Game            string            `yaml:"game"`
	ManifestURL     string            `yaml:"manifest_url"`
	ManifestFormat  string            `yaml:"manifest_format"`
	InstallPath     string            `yaml:"install_path,omitempty"` // Skips discovery when set
	SteamPath       string            `yaml:"steam_path,omitempty"`   // Probed before the well-known roots
	ScanDepth       int               `yaml:"scan_depth"`             // Directory levels searched per drive
	LinkMethod      domain.LinkMethod `yaml:"-"`
	LinkMethodStr   string            `yaml:"link_method"`
	InitLoader      bool              `yaml:"init_loader"`
	InitTimeout     time.Duration     `yaml:"init_timeout"`
	CleanInstall    bool              `yaml:"clean_install"`
	KeepArchives    bool              `yaml:"keep_archives"`
	CachePath       string            `yaml:"cache_path,omitempty"`
	ThunderstoreURL string            `yaml:"thunderstore_url"`
	NexusAPIKey     string            `yaml:"nexus_api_key,omitempty"`
	HookTimeout     time.Duration     `yaml:"hook_timeout"`
	Hooks           domain.Hooks      `yaml:"hooks,omitempty"`
	LogLevel        string            `yaml:"log_level"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Game:            DefaultGame,
		ManifestURL:     DefaultManifestURL,
		ManifestFormat:  FormatAuto,
		LinkMethod:      domain.LinkCopy,
		InitTimeout:     DefaultInitTimeout,
		ScanDepth:       DefaultScanDepth,
		CleanInstall:    true,
		ThunderstoreURL: DefaultThunderstoreURL,
		HookTimeout:     DefaultHookTimeout,
		LogLevel:        "info",
	}
}

// Load reads configuration from the given directory
func Load(configDir string) (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.LinkMethodStr != "" {
		cfg.LinkMethod = domain.ParseLinkMethod(cfg.LinkMethodStr)
	}
	cfg.InstallPath = ExpandPath(cfg.InstallPath)
	cfg.SteamPath = ExpandPath(cfg.SteamPath)
	cfg.CachePath = ExpandPath(cfg.CachePath)
	cfg.Hooks.Install = expandHooks(cfg.Hooks.Install)
	cfg.Hooks.Uninstall = expandHooks(cfg.Hooks.Uninstall)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.ManifestFormat {
	case "", FormatAuto, FormatLegacy, FormatSettings, FormatHints:
	default:
		return fmt.Errorf("%w: unknown manifest_format %q", domain.ErrInvalidConfig, c.ManifestFormat)
	}
	if c.LinkMethodStr != "" && c.LinkMethodStr != "copy" && c.LinkMethodStr != "hardlink" {
		return fmt.Errorf("%w: unknown link_method %q", domain.ErrInvalidConfig, c.LinkMethodStr)
	}
	if c.InitTimeout < 0 || c.HookTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", domain.ErrInvalidConfig)
	}
	if c.ScanDepth < 0 {
		return fmt.Errorf("%w: scan_depth must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	c.LinkMethodStr = c.LinkMethod.String()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return p
}

func expandHooks(h domain.HookConfig) domain.HookConfig {
	return domain.HookConfig{
		BeforeAll:  ExpandPath(h.BeforeAll),
		BeforeEach: ExpandPath(h.BeforeEach),
		AfterEach:  ExpandPath(h.AfterEach),
		AfterAll:   ExpandPath(h.AfterAll),
	}
}
