package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"yousum/internal/artifacts"
	"yousum/internal/backend"
	"yousum/internal/config"
	"yousum/internal/diagnostics"
	"yousum/internal/domain"
	"yousum/internal/poll"
	"yousum/internal/summary"
	"yousum/internal/video"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// ErrNoVideoURL is returned by fetch operations before a video is selected.
var ErrNoVideoURL = errors.New("no youtube video selected")

// App is the window controller. It owns the settings record and both
// artifact states, and is bound to the frontend by Wails.
type App struct {
	Config      config.AppConfig
	Store       config.Store
	Diagnostics domain.DiagnosticReport

	fetcher   *artifacts.Fetcher
	titles    titleResolver
	checker   *diagnostics.Checker
	artifacts *artifacts.Manager
	events    *artifacts.EventBus
	logger    *slog.Logger
	assets    fs.FS
	closers   []func() error

	mu             sync.Mutex
	settings       domain.Settings
	videoURL       string
	showTranscript bool
	cancels        map[domain.ArtifactKind]context.CancelFunc
	runtimeCtx     context.Context
	inflight       sync.WaitGroup
}

// titleResolver reads a display title for a watch URL.
type titleResolver interface {
	Resolve(ctx context.Context, watchURL string) (string, error)
}

// New builds the controller from the default config file without embedded assets.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets loads config.yaml and builds the controller with optional
// embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	cfg, err := config.LoadAppConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewFromConfig(cfg, assets)
}

// NewFromConfig wires store, backend client, poller and diagnostics from cfg
// and loads persisted settings.
func NewFromConfig(cfg config.AppConfig, assets fs.FS) (*App, error) {
	logger := cfg.NewLogger()

	store, closeStore, err := cfg.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}

	client, err := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, backend.WithUserAgent(cfg.Backend.UserAgent))
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("configure backend: %w", err)
	}

	settings, err := store.Load()
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("load settings: %w", err)
	}

	fetcher := artifacts.NewFetcher(client, poll.NewPoller(client, cfg.Poll.Interval, cfg.Poll.MaxAttempts, logger))
	app := newApp(store, fetcher, logger)
	app.Config = cfg
	app.settings = settings
	app.assets = assets
	app.titles = video.NewTitleResolver(&http.Client{Timeout: 5 * time.Second}, cfg.Backend.UserAgent)
	app.checker = diagnostics.NewChecker(nil, cfg.Backend.UserAgent)
	app.closers = append(app.closers, closeStore)
	app.Diagnostics = app.runDiagnostics()
	return app, nil
}

// newApp builds a controller around already constructed collaborators.
func newApp(store config.Store, fetcher *artifacts.Fetcher, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		Config:    config.DefaultAppConfig(),
		Store:     store,
		fetcher:   fetcher,
		artifacts: artifacts.NewManager(),
		events:    artifacts.NewEventBus(1000),
		logger:    logger,
		settings:  config.DefaultSettings(),
		cancels:   make(map[domain.ArtifactKind]context.CancelFunc, len(domain.ArtifactKinds)),
	}
}

// Run starts the Wails window and binds controller methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "YouSum",
		Width:       420,
		Height:      640,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// Startup stores the Wails runtime context and looks for a video URL on the clipboard.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	a.mu.Unlock()

	go func() {
		if _, err := a.DetectVideoURL(); err != nil {
			a.logger.Debug("video url detection failed", "error", err)
		}
	}()
}

// Shutdown cancels every in-flight fetch, waits for them to unwind and
// releases the settings store.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	for kind, cancel := range a.cancels {
		cancel()
		delete(a.cancels, kind)
	}
	a.runtimeCtx = nil
	a.mu.Unlock()

	a.inflight.Wait()

	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn("close resource", "error", err)
		}
	}
	a.closers = nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then re-fetches the summary
// once when a video is selected.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.NormalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.settings = normalized
	a.mu.Unlock()
	a.logger.Info("settings saved", "length", normalized.Length, "focus_areas", normalized.FocusAreas, "language", normalized.Language)

	if _, err := a.startFetch(domain.ArtifactSummary); err != nil && !errors.Is(err, ErrNoVideoURL) {
		return normalized, err
	}
	return normalized, nil
}

// CloseSettings regenerates the summary with the current settings.
func (a *App) CloseSettings() error {
	if _, err := a.startFetch(domain.ArtifactSummary); err != nil && !errors.Is(err, ErrNoVideoURL) {
		return err
	}
	return nil
}

// SettingsOptions returns the choices offered by the settings form.
func (a *App) SettingsOptions() domain.SettingsOptions {
	return domain.SettingsOptions{
		Lengths:    domain.LengthOptions,
		FocusAreas: domain.FocusAreaOptions,
		Languages:  domain.LanguageOptions,
	}
}

// FormatSummary splits summary text into display lines.
func (a *App) FormatSummary(content string) []summary.Line {
	return summary.Format(content)
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reruns the backend and storage checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	if a.checker == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostics are not configured")
	}

	report := a.runDiagnostics()
	a.mu.Lock()
	a.Diagnostics = report
	a.mu.Unlock()
	return report, nil
}

// runDiagnostics probes the configured backend and settings storage.
func (a *App) runDiagnostics() domain.DiagnosticReport {
	if a.checker == nil {
		return domain.DiagnosticReport{}
	}

	report := a.checker.Run(context.Background(), domain.DiagnosticTarget{
		BackendURL:      a.Config.Backend.BaseURL,
		StorageDriver:   a.Config.Storage.Driver,
		StorageLocation: a.Config.StorageLocation(),
	})
	for _, item := range report.Items {
		if item.Status != domain.DiagnosticStatusPass {
			a.logger.Warn("diagnostic check", "id", item.ID, "status", item.Status, "message", item.Message)
		}
	}
	return report
}

// OpenVideoInBrowser opens the selected video in the system browser.
func (a *App) OpenVideoInBrowser() error {
	ctx, err := a.runtimeContext()
	if err != nil {
		return err
	}

	a.mu.Lock()
	videoURL := a.videoURL
	a.mu.Unlock()
	if videoURL == "" {
		return ErrNoVideoURL
	}

	wailsruntime.BrowserOpenURL(ctx, videoURL)
	return nil
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event artifacts.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "artifact:event", published)
	}
}

// runtimeContext returns current Wails runtime context for runtime APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}
