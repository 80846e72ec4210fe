package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"yousum/internal/artifacts"
	"yousum/internal/backend"
	"yousum/internal/config"
	"yousum/internal/domain"
	"yousum/internal/poll"
	"yousum/internal/summary"
	"yousum/internal/video"
)

// artifactOutput is what summarize and transcript print.
type artifactOutput struct {
	Kind      domain.ArtifactKind   `json:"kind" yaml:"kind"`
	VideoURL  string                `json:"videoUrl" yaml:"video_url"`
	VideoID   string                `json:"videoId,omitempty" yaml:"video_id,omitempty"`
	Title     string                `json:"title,omitempty" yaml:"title,omitempty"`
	Status    domain.ArtifactStatus `json:"status" yaml:"status"`
	Content   string                `json:"content,omitempty" yaml:"content,omitempty"`
	Error     string                `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind string                `json:"errorKind,omitempty" yaml:"error_kind,omitempty"`
}

// environment is the config, logger and settings store shared by every action.
type environment struct {
	cfg        config.AppConfig
	logger     *slog.Logger
	store      config.Store
	closeStore func() error
}

// openEnvironment loads config.yaml, applies global flag overrides and opens the store.
func openEnvironment(c *cli.Context) (*environment, error) {
	cfg, err := config.LoadAppConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if c.IsSet("backend-url") {
		cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.String("backend-url")), "/")
	}
	if c.IsSet("storage") {
		cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(c.String("storage")))
	}

	level := cfg.LogLevel()
	if c.Bool("quiet") {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))

	store, closeStore, err := cfg.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}

	return &environment{cfg: cfg, logger: logger, store: store, closeStore: closeStore}, nil
}

// Close releases the settings store.
func (e *environment) Close() error {
	return e.closeStore()
}

// SummarizeAction fetches a summary for one video and prints it.
func SummarizeAction(c *cli.Context) error {
	return fetchAction(c, domain.ArtifactSummary)
}

// TranscriptAction fetches a transcript for one video and prints it.
func TranscriptAction(c *cli.Context) error {
	return fetchAction(c, domain.ArtifactTranscript)
}

// fetchAction runs one artifact fetch to completion and exits 1 on failure.
func fetchAction(c *cli.Context, kind domain.ArtifactKind) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one youtube url, got %d arguments", c.NArg())
	}
	videoURL, err := video.Normalize(c.Args().First())
	if err != nil {
		return fmt.Errorf("%w: %q", err, c.Args().First())
	}

	env, err := openEnvironment(c)
	if err != nil {
		return err
	}
	defer env.Close()

	settings, err := env.store.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings = config.NormalizeSettings(applySettingFlags(c, settings))

	client, err := backend.NewClient(env.cfg.Backend.BaseURL, env.cfg.Backend.Timeout, backend.WithUserAgent(env.cfg.Backend.UserAgent))
	if err != nil {
		return fmt.Errorf("configure backend: %w", err)
	}
	poller := poll.NewPoller(client, env.cfg.Poll.Interval, env.cfg.Poll.MaxAttempts, env.logger)
	fetcher := artifacts.NewFetcher(client, poller)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	manager := artifacts.NewManager()
	started, err := manager.StartFetch(kind, video.VideoID(videoURL))
	if err != nil {
		return err
	}

	begin := time.Now()
	env.logger.Info("fetch started", "artifact", kind, "video_url", videoURL, "backend", client.BaseURL())
	completed, fetchErr := fetcher.Fetch(ctx, kind, videoURL, settings, func(attempt int) {
		env.logger.Info("waiting for result", "artifact", kind, "attempt", attempt, "max_attempts", poller.MaxAttempts())
	})

	var result domain.Artifact
	switch {
	case errors.Is(fetchErr, context.Canceled):
		return cli.Exit("interrupted", 130)
	case fetchErr != nil:
		env.logger.Warn("fetch failed", "artifact", kind, "kind", backend.KindOf(fetchErr), "error", fetchErr)
		result, err = manager.ResolveError(kind, started.Generation, backend.UserMessage(fetchErr), string(backend.KindOf(fetchErr)))
	default:
		title := ""
		if c.Bool("resolve-title") {
			title = lookupTitle(ctx, env, videoURL)
		}
		videoID := completed.VideoID
		if videoID == "" {
			videoID = started.VideoID
		}
		result, err = manager.ResolveSuccess(kind, started.Generation, videoID, title, completed.Result)
		env.logger.Info("fetch completed", "artifact", kind, "video_id", videoID, "elapsed", time.Since(begin))
	}
	if err != nil {
		return err
	}

	if err := writeArtifact(c.App.Writer, format, videoURL, result); err != nil {
		return err
	}
	if result.Status == domain.ArtifactStatusError {
		return cli.Exit(fmt.Sprintf("%s failed: %s", kind, result.Error), 1)
	}
	return nil
}

// lookupTitle resolves the watch page title, logging failures.
func lookupTitle(ctx context.Context, env *environment, videoURL string) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	title, err := video.NewTitleResolver(nil, env.cfg.Backend.UserAgent).Resolve(ctx, videoURL)
	if err != nil {
		env.logger.Warn("title lookup failed", "video_url", videoURL, "error", err)
	}
	return title
}

// SettingsShowAction prints the persisted settings.
func SettingsShowAction(c *cli.Context) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}

	env, err := openEnvironment(c)
	if err != nil {
		return err
	}
	defer env.Close()

	settings, err := env.store.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	return writeSettings(c.App.Writer, format, settings)
}

// SettingsSetAction updates the persisted settings from flags and prints the result.
func SettingsSetAction(c *cli.Context) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	if !c.IsSet("length") && !c.IsSet("focus") && !c.IsSet("language") {
		return errors.New("nothing to change: pass --length, --focus or --language")
	}

	env, err := openEnvironment(c)
	if err != nil {
		return err
	}
	defer env.Close()

	settings, err := env.store.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings = config.NormalizeSettings(applySettingFlags(c, settings))
	if err := env.store.Save(settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	env.logger.Info("settings saved", "driver", env.cfg.Storage.Driver, "location", env.cfg.StorageLocation())

	return writeSettings(c.App.Writer, format, settings)
}

// applySettingFlags overlays explicitly set flags on settings.
func applySettingFlags(c *cli.Context, settings domain.Settings) domain.Settings {
	if c.IsSet("length") {
		settings.Length = domain.SummaryLength(c.String("length"))
	}
	if c.IsSet("focus") {
		settings.FocusAreas = splitList(c.StringSlice("focus"))
	}
	if c.IsSet("language") {
		settings.Language = c.String("language")
	}
	return settings
}

// splitList flattens repeated and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// outputFormat validates --format.
func outputFormat(c *cli.Context) (string, error) {
	format := strings.ToLower(strings.TrimSpace(c.String("format")))
	switch format {
	case "", "text":
		return "text", nil
	case "json", "yaml":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use text, json or yaml", format)
	}
}

// writeArtifact prints one fetched artifact.
func writeArtifact(w io.Writer, format, videoURL string, artifact domain.Artifact) error {
	out := artifactOutput{
		Kind:      artifact.Kind,
		VideoURL:  videoURL,
		VideoID:   artifact.VideoID,
		Title:     artifact.Title,
		Status:    artifact.Status,
		Content:   artifact.Content,
		Error:     artifact.Error,
		ErrorKind: artifact.ErrorKind,
	}

	if format != "text" {
		return writeStructured(w, format, out)
	}

	if artifact.Status == domain.ArtifactStatusError {
		_, err := fmt.Fprintf(w, "error (%s): %s\n", artifact.ErrorKind, artifact.Error)
		return err
	}

	body := artifact.Content
	if artifact.Kind == domain.ArtifactSummary {
		body = summary.Plain(summary.Format(artifact.Content))
	}
	_, err := fmt.Fprintf(w, "%s [%s]\n\n%s\n", artifact.Title, artifact.VideoID, body)
	return err
}

// writeSettings prints a settings record.
func writeSettings(w io.Writer, format string, settings domain.Settings) error {
	if format != "text" {
		return writeStructured(w, format, settings)
	}
	_, err := fmt.Fprintf(w, "length: %s\nfocus_areas: %s\nlanguage: %s\n",
		settings.Length, strings.Join(settings.EffectiveFocusAreas(), ", "), settings.Language)
	return err
}

// writeStructured encodes v as indented JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)
	if format == "yaml" {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode %s output: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}
