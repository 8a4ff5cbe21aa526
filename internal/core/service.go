package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"bepinstall/internal/domain"
	"bepinstall/internal/linker"
	"bepinstall/internal/manifest"
	"bepinstall/internal/source"
	"bepinstall/internal/source/nexusmods"
	"bepinstall/internal/source/steam"
	"bepinstall/internal/source/thunderstore"
	"bepinstall/internal/storage/cache"
	"bepinstall/internal/storage/config"
	"bepinstall/internal/storage/db"

	"github.com/dustin/go-humanize"
)

// NexusAPIKeyEnv overrides the stored and configured Nexus Mods API key
const NexusAPIKeyEnv = "NEXUSMODS_API_KEY"

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir string // Directory for configuration files
	DataDir   string // Directory for the ledger database and archive cache

	Config     *config.Config // Preloaded config; loaded from ConfigDir when nil
	Locator    *steam.Locator // Game locator; platform default when nil
	HTTPClient *http.Client   // Client for manifests, indexes and downloads
	Logger     *slog.Logger   // Defaults to slog.Default()
	NoDB       bool           // Run without the install ledger
	NoHooks    bool           // Skip configured hooks
	TempDir    string         // Where archives are downloaded and extracted
}

// Service is the main orchestrator for install and uninstall runs
type Service struct {
	config   *config.Config
	db       *db.DB
	cache    *cache.Cache
	games    steam.KnownGames
	registry *source.Registry
	locator  *steam.Locator
	fetcher  *manifest.Fetcher
	logger   *slog.Logger

	installer   *ArchiveInstaller
	uninstaller *Uninstaller
	launcher    *LoaderLauncher
	hooks       *HookRunner
	runner      *Runner
	noHooks     bool
}

// NewService creates a new core service instance
func NewService(cfg ServiceConfig) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appConfig := cfg.Config
	if appConfig == nil {
		loaded, err := config.Load(cfg.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		appConfig = loaded
	}

	games, err := steam.LoadKnownGames(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading games: %w", err)
	}

	var database *db.DB
	if !cfg.NoDB {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		database, err = db.New(filepath.Join(cfg.DataDir, "bepinstall.db"))
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
	}

	var archiveCache *cache.Cache
	if appConfig.KeepArchives {
		cachePath := appConfig.CachePath
		if cachePath == "" {
			cachePath = filepath.Join(cfg.DataDir, "cache")
		}
		archiveCache = cache.New(cachePath)
	}

	locator := cfg.Locator
	if locator == nil {
		locator = steam.NewLocator(
			steam.WithLogger(logger),
			steam.WithSteamPath(appConfig.SteamPath),
			steam.WithScanDepth(appConfig.ScanDepth),
		)
	}

	s := &Service{
		config:      appConfig,
		db:          database,
		cache:       archiveCache,
		games:       games,
		registry:    source.NewRegistry(thunderstore.SourceID),
		locator:     locator,
		logger:      logger,
		uninstaller: NewUninstaller(database, logger),
		launcher:    NewLoaderLauncher(appConfig.InitTimeout, logger),
		hooks:       NewHookRunner(appConfig.HookTimeout),
		runner:      NewRunner(logger),
		noHooks:     cfg.NoHooks,
	}

	s.installer = NewArchiveInstaller(
		NewDownloader(cfg.HTTPClient),
		NewPlacer(linker.New(appConfig.LinkMethod)),
		archiveCache, database, logger,
	)
	s.installer.SetTempDir(cfg.TempDir)

	s.registry.Register(thunderstore.New(cfg.HTTPClient, appConfig.ThunderstoreURL))
	if key := s.nexusAPIKey(); key != "" {
		game, _ := s.Game()
		nexusDomain := config.DefaultGame
		if game != nil {
			nexusDomain = game.NexusDomain
		}
		s.registry.Register(nexusmods.New(cfg.HTTPClient, key, nexusDomain))
	}
	s.fetcher = manifest.NewFetcher(cfg.HTTPClient, s.registry, logger)

	return s, nil
}

// Close releases resources held by the service
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// nexusAPIKey picks the key from the environment, then the ledger, then config
func (s *Service) nexusAPIKey() string {
	if key := os.Getenv(NexusAPIKeyEnv); key != "" {
		return key
	}
	if s.db != nil {
		if token, err := s.db.GetToken(nexusmods.SourceID); err == nil && token != nil {
			return token.APIKey
		}
	}
	return s.config.NexusAPIKey
}

// Config returns the loaded configuration
func (s *Service) Config() *config.Config {
	return s.config
}

// DB returns the ledger, or nil when it is disabled
func (s *Service) DB() *db.DB {
	return s.db
}

// Cache returns the archive cache, or nil when keep_archives is off
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// Registry returns the mod source registry
func (s *Service) Registry() *source.Registry {
	return s.registry
}

// Game returns the configured game
func (s *Service) Game() (*domain.Game, error) {
	return s.games.Get(s.config.Game)
}

// ListGames returns every known game
func (s *Service) ListGames() []*domain.Game {
	return s.games.List()
}

// Locate returns the configured game's install directory. The install_path
// setting skips discovery.
func (s *Service) Locate() (string, error) {
	if s.config.InstallPath != "" {
		info, err := os.Stat(s.config.InstallPath)
		if err != nil || !info.IsDir() {
			return "", fmt.Errorf("%w: install_path %s is not a directory", domain.ErrGameNotFound, s.config.InstallPath)
		}
		return filepath.Abs(s.config.InstallPath)
	}

	game, err := s.Game()
	if err != nil {
		return "", err
	}
	return s.locator.Find(game)
}

// Libraries returns the Steam libraries the locator can see
func (s *Service) Libraries() []string {
	return s.locator.Libraries()
}

// FetchManifest downloads and parses the configured manifest
func (s *Service) FetchManifest(ctx context.Context) (*manifest.Result, error) {
	return s.fetcher.Fetch(ctx, s.config.ManifestURL, s.config.ManifestFormat)
}

// InstallOptions tunes one install run
type InstallOptions struct {
	CleanInstall bool // Remove the loader allowlist first when BepInEx/ exists
	InitLoader   bool // Launch the game once after the loader to create its config
}

// DefaultInstallOptions returns the install options from config
func (s *Service) DefaultInstallOptions() InstallOptions {
	return InstallOptions{
		CleanInstall: s.config.CleanInstall,
		InitLoader:   s.config.InitLoader,
	}
}

// StartInstall begins an install run in the background
func (s *Service) StartInstall(ctx context.Context, opts InstallOptions) (<-chan domain.Event, error) {
	return s.start(ctx, domain.RunInstall, func(ctx context.Context, rep *Reporter, root *string) error {
		return s.install(ctx, rep, opts, root)
	})
}

// StartUninstall begins an uninstall run in the background
func (s *Service) StartUninstall(ctx context.Context, tracked bool) (<-chan domain.Event, error) {
	return s.start(ctx, domain.RunUninstall, func(ctx context.Context, rep *Reporter, root *string) error {
		return s.uninstall(ctx, rep, tracked, root)
	})
}

// StartRemoveMod begins a run that deletes one tracked mod's files, leaving
// the loader and every other mod in place
func (s *Service) StartRemoveMod(ctx context.Context, modKey string) (<-chan domain.Event, error) {
	return s.start(ctx, domain.RunUninstall, func(ctx context.Context, rep *Reporter, root *string) error {
		return s.removeMod(ctx, rep, modKey, root)
	})
}

// start wraps fn so its outcome is recorded in the run history
func (s *Service) start(ctx context.Context, kind domain.RunKind, fn func(context.Context, *Reporter, *string) error) (<-chan domain.Event, error) {
	return s.runner.Start(ctx, kind, func(ctx context.Context, rep *Reporter) (err error) {
		var root string
		s.recordStart(rep.RunID(), kind)
		defer func() {
			if p := recover(); p != nil {
				s.recordFinish(rep.RunID(), domain.StateFailed, root, fmt.Sprint(p))
				panic(p)
			}
			state, msg := domain.StateSucceeded, ""
			switch {
			case err != nil:
				state, msg = domain.StateFailed, err.Error()
			case len(rep.Warnings()) > 0:
				state, msg = domain.StatePartial, fmt.Sprintf("%d warning(s)", len(rep.Warnings()))
			}
			s.recordFinish(rep.RunID(), state, root, msg)
		}()
		return fn(ctx, rep, &root)
	})
}

func (s *Service) recordStart(id string, kind domain.RunKind) {
	if s.db == nil {
		return
	}
	if err := s.db.StartRun(id, kind, "", time.Now()); err != nil {
		s.logger.Warn("recording run start", "error", err)
	}
}

func (s *Service) recordFinish(id string, state domain.RunState, root, msg string) {
	if s.db == nil {
		return
	}
	if err := s.db.FinishRun(id, state, root, msg, time.Now()); err != nil {
		s.logger.Warn("recording run finish", "error", err)
	}
}

func (s *Service) hookSet(kind string, cfg domain.HookConfig, game *domain.Game, root string) *hookSet {
	if s.noHooks {
		return nil
	}
	return &hookSet{
		runner: s.hooks,
		config: cfg,
		kind:   kind,
		base:   HookContext{GameID: game.ID, InstallRoot: root},
	}
}

func (s *Service) install(ctx context.Context, rep *Reporter, opts InstallOptions, rootOut *string) error {
	game, err := s.Game()
	if err != nil {
		return err
	}

	rep.Status("locating %s", game.Name)
	root, err := s.Locate()
	if err != nil {
		return err
	}
	*rootOut = root
	s.logger.Info("installing", "game", game.Name, "root", root)

	rep.Status("fetching manifest")
	res, err := s.FetchManifest(ctx)
	if err != nil {
		return fmt.Errorf("fetching manifest: %w", err)
	}
	for _, w := range res.Warnings {
		rep.Warn("skipped: %s", w)
	}

	loaders, mods := res.Manifest.Loaders(), res.Manifest.Mods()
	total := len(loaders) + len(mods)
	if opts.CleanInstall {
		total++
	}
	if opts.InitLoader {
		total++
	}
	rep.SetTotal(total)

	hooks := s.hookSet("install", s.config.Hooks.Install, game, root)
	if err := hooks.beforeAll(ctx); err != nil {
		return fmt.Errorf("install.before_all hook: %w", err)
	}

	if opts.CleanInstall {
		if info, err := os.Stat(filepath.Join(root, "BepInEx")); err == nil && info.IsDir() {
			if _, err := s.uninstaller.Uninstall(ctx, root, UninstallOptions{Artifacts: game.Artifacts()}); err != nil {
				return fmt.Errorf("removing previous install: %w", err)
			}
			rep.Step("removed previous BepInEx install")
		} else {
			rep.Step("no previous BepInEx install")
		}
	}

	for _, entry := range loaders {
		if err := s.installEntry(ctx, rep, hooks, entry, root); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrLoaderInstallFailed, entry.DisplayName(), err)
		}
	}

	if opts.InitLoader {
		rep.Status("launching %s to initialize BepInEx", game.Name)
		if err := s.launcher.Initialize(ctx, game, root); err != nil {
			rep.Warn("initializing loader: %v", err)
		} else {
			rep.Step("BepInEx initialized")
		}
	}

	for _, entry := range mods {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.installEntry(ctx, rep, hooks, entry, root); err != nil {
			rep.Warn("%s failed: %v", entry.DisplayName(), err)
			continue
		}
	}

	if err := hooks.afterAll(ctx); err != nil {
		rep.Warn("install.after_all hook: %v", err)
	}
	return nil
}

func (s *Service) installEntry(ctx context.Context, rep *Reporter, hooks *hookSet, entry domain.ModEntry, root string) error {
	if err := hooks.beforeEach(ctx, entry); err != nil {
		return fmt.Errorf("install.before_each hook: %w", err)
	}

	rep.Status("downloading %s", entry.DisplayName())
	result, err := s.installer.InstallWithProgress(ctx, entry, root, downloadStatus(rep, entry.DisplayName()))
	if err != nil {
		return err
	}
	if n := len(result.Replaced); n > 0 {
		rep.Step("installed %s (%d files, %d taken over from other mods)", entry.DisplayName(), len(result.Files), n)
	} else {
		rep.Step("installed %s (%d files)", entry.DisplayName(), len(result.Files))
	}

	if err := hooks.afterEach(ctx, entry); err != nil {
		rep.Warn("install.after_each hook for %s: %v", entry.DisplayName(), err)
	}
	return nil
}

// downloadStatus reports download progress as a status line, at most once per
// tenth of the archive (or per MiB when the size is unknown)
func downloadStatus(rep *Reporter, name string) ProgressFunc {
	var last int64
	return func(received, total int64) {
		step := int64(1 << 20)
		if total > 0 {
			step = max(total/10, 1)
		}
		if received-last < step && received != total {
			return
		}
		last = received
		if total > 0 {
			rep.Status("downloading %s (%s of %s)", name, humanize.Bytes(uint64(received)), humanize.Bytes(uint64(total)))
		} else {
			rep.Status("downloading %s (%s)", name, humanize.Bytes(uint64(received)))
		}
	}
}

func (s *Service) uninstall(ctx context.Context, rep *Reporter, tracked bool, rootOut *string) error {
	game, err := s.Game()
	if err != nil {
		return err
	}

	rep.Status("locating %s", game.Name)
	root, err := s.Locate()
	if errors.Is(err, domain.ErrGameNotFound) {
		rep.Status("%s not found, nothing to uninstall", game.Name)
		return nil
	}
	if err != nil {
		return err
	}
	*rootOut = root
	rep.SetTotal(1)

	hooks := s.hookSet("uninstall", s.config.Hooks.Uninstall, game, root)
	if err := hooks.beforeAll(ctx); err != nil {
		return fmt.Errorf("uninstall.before_all hook: %w", err)
	}

	res, err := s.uninstaller.Uninstall(ctx, root, UninstallOptions{Artifacts: game.Artifacts(), Tracked: tracked})
	if err != nil {
		return err
	}
	if tracked {
		rep.Step("removed %d loader item(s) and %d mod file(s)", len(res.Removed), res.Tracked)
	} else {
		rep.Step("removed %d loader item(s)", len(res.Removed))
	}

	if err := hooks.afterAll(ctx); err != nil {
		rep.Warn("uninstall.after_all hook: %v", err)
	}
	return nil
}

func (s *Service) removeMod(ctx context.Context, rep *Reporter, modKey string, rootOut *string) error {
	game, err := s.Game()
	if err != nil {
		return err
	}

	rep.Status("locating %s", game.Name)
	root, err := s.Locate()
	if err != nil {
		return err
	}
	*rootOut = root
	rep.SetTotal(1)

	n, err := s.uninstaller.RemoveMod(ctx, root, modKey)
	if err != nil {
		return err
	}
	rep.Step("removed %s (%d files)", modKey, n)
	return nil
}

// InstalledMods returns the ledger records for an install root
func (s *Service) InstalledMods(root string) ([]domain.InstalledMod, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.GetInstalledMods(root)
}

// RecentRuns returns the newest run records
func (s *Service) RecentRuns(limit int) ([]domain.RunRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.RecentRuns(limit)
}

// SaveSourceToken stores an API key for a mod source
func (s *Service) SaveSourceToken(sourceID, apiKey string) error {
	if s.db == nil {
		return errors.New("the ledger is disabled")
	}
	return s.db.SaveToken(sourceID, apiKey)
}

// DeleteSourceToken removes a stored API key
func (s *Service) DeleteSourceToken(sourceID string) error {
	if s.db == nil {
		return nil
	}
	return s.db.DeleteToken(sourceID)
}
