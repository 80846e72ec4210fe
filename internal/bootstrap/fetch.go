package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yousum/internal/artifacts"
	"yousum/internal/backend"
	"yousum/internal/domain"
	"yousum/internal/video"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

const titleTimeout = 5 * time.Second

// DetectVideoURL reads the clipboard and selects it when it holds a watch URL.
// It returns "" without error when the clipboard holds anything else.
func (a *App) DetectVideoURL() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	text, err := wailsruntime.ClipboardGetText(ctx)
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	if !video.IsWatchURL(text) {
		return "", nil
	}

	if _, err := a.SetVideoURL(text); err != nil {
		return "", err
	}
	return a.State().VideoURL, nil
}

// SetVideoURL selects a video, resets both artifacts and starts the summary.
// The transcript is fetched too when its view is showing.
func (a *App) SetVideoURL(raw string) (domain.ViewState, error) {
	videoURL, err := video.Normalize(raw)
	if err != nil {
		return domain.ViewState{}, fmt.Errorf("%w: %q", err, raw)
	}

	a.mu.Lock()
	a.videoURL = videoURL
	showTranscript := a.showTranscript
	a.mu.Unlock()

	a.logger.Info("video selected", "video_url", videoURL)
	a.publishEvent(artifacts.Event{Type: artifacts.EventTypeVideo, VideoURL: videoURL})

	for _, kind := range domain.ArtifactKinds {
		a.cancelFetch(kind)
		reset, err := a.artifacts.Reset(kind)
		if err != nil {
			return domain.ViewState{}, err
		}
		a.publishArtifact(reset)
	}

	if _, err := a.startFetch(domain.ArtifactSummary); err != nil {
		return domain.ViewState{}, err
	}
	if showTranscript {
		if _, err := a.startFetch(domain.ArtifactTranscript); err != nil {
			return domain.ViewState{}, err
		}
	}
	return a.State(), nil
}

// ToggleTranscript flips between the summary and transcript views.
func (a *App) ToggleTranscript() (domain.ViewState, error) {
	a.mu.Lock()
	show := !a.showTranscript
	a.mu.Unlock()
	return a.ShowTranscript(show)
}

// ShowTranscript switches views. Showing an idle transcript starts its fetch.
func (a *App) ShowTranscript(show bool) (domain.ViewState, error) {
	a.mu.Lock()
	a.showTranscript = show
	hasVideo := a.videoURL != ""
	a.mu.Unlock()

	if show && hasVideo && a.artifacts.Current(domain.ArtifactTranscript).Status == domain.ArtifactStatusIdle {
		if _, err := a.startFetch(domain.ArtifactTranscript); err != nil {
			return domain.ViewState{}, err
		}
	}
	return a.State(), nil
}

// RefreshSummary fetches the summary again for the selected video.
func (a *App) RefreshSummary() (domain.Artifact, error) {
	return a.startFetch(domain.ArtifactSummary)
}

// RefreshTranscript fetches the transcript again for the selected video.
func (a *App) RefreshTranscript() (domain.Artifact, error) {
	return a.startFetch(domain.ArtifactTranscript)
}

// State returns a snapshot of the whole view.
func (a *App) State() domain.ViewState {
	a.mu.Lock()
	state := domain.ViewState{
		VideoURL:       a.videoURL,
		ShowTranscript: a.showTranscript,
		Settings:       a.settings,
	}
	a.mu.Unlock()

	state.Summary = a.artifacts.Current(domain.ArtifactSummary)
	state.Transcript = a.artifacts.Current(domain.ArtifactTranscript)
	state.LastSeq = a.events.LastSeq()
	return state
}

// ArtifactEvents returns all events with sequence greater than sinceSeq.
func (a *App) ArtifactEvents(sinceSeq int64) []artifacts.Event {
	return a.events.Since(sinceSeq)
}

// startFetch cancels any running chain for kind, moves it to processing and
// runs the new chain in the background.
func (a *App) startFetch(kind domain.ArtifactKind) (domain.Artifact, error) {
	a.mu.Lock()
	videoURL := a.videoURL
	settings := a.settings
	if videoURL == "" {
		a.mu.Unlock()
		return domain.Artifact{}, ErrNoVideoURL
	}
	if cancel := a.cancels[kind]; cancel != nil {
		cancel()
	}

	started, err := a.artifacts.StartFetch(kind, video.VideoID(videoURL))
	if err != nil {
		a.mu.Unlock()
		return domain.Artifact{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancels[kind] = cancel
	a.inflight.Add(1)
	a.mu.Unlock()

	a.publishArtifact(started)
	go a.runFetch(ctx, cancel, started, videoURL, settings)
	return started, nil
}

// cancelFetch stops the running chain for kind, if any.
func (a *App) cancelFetch(kind domain.ArtifactKind) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cancel := a.cancels[kind]; cancel != nil {
		cancel()
		delete(a.cancels, kind)
	}
}

// runFetch executes one fetch chain and maps its outcome to a view transition.
func (a *App) runFetch(ctx context.Context, cancel context.CancelFunc, started domain.Artifact, videoURL string, settings domain.Settings) {
	defer a.inflight.Done()
	defer a.releaseFetch(started.Kind, started.Generation, cancel)

	kind := started.Kind
	begin := time.Now()
	a.logger.Info("fetch started", "artifact", kind, "video_url", videoURL, "generation", started.Generation)

	maxAttempts := a.fetcher.MaxAttempts()
	completed, err := a.fetcher.Fetch(ctx, kind, videoURL, settings, func(attempt int) {
		a.publishEvent(artifacts.Event{
			Type:        artifacts.EventTypeAttempt,
			Kind:        kind,
			Attempt:     attempt,
			MaxAttempts: maxAttempts,
		})
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			a.logger.Debug("fetch cancelled", "artifact", kind, "generation", started.Generation)
			return
		}

		resolved, resolveErr := a.artifacts.ResolveError(kind, started.Generation, backend.UserMessage(err), string(backend.KindOf(err)))
		if resolveErr != nil {
			a.logResolveSkip(kind, started.Generation, resolveErr)
			return
		}
		a.logger.Warn("fetch failed", "artifact", kind, "kind", backend.KindOf(err), "error", err, "elapsed", time.Since(begin))
		a.publishArtifact(resolved)
		return
	}

	videoID := completed.VideoID
	if videoID == "" {
		videoID = started.VideoID
	}
	title := a.resolveTitle(ctx, videoURL)

	resolved, err := a.artifacts.ResolveSuccess(kind, started.Generation, videoID, title, completed.Result)
	if err != nil {
		a.logResolveSkip(kind, started.Generation, err)
		return
	}
	a.logger.Info("fetch completed", "artifact", kind, "video_id", videoID, "elapsed", time.Since(begin))
	a.publishArtifact(resolved)
}

// resolveTitle returns the watch page title, or "" to use the default.
func (a *App) resolveTitle(ctx context.Context, videoURL string) string {
	if a.titles == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, titleTimeout)
	defer cancel()

	title, err := a.titles.Resolve(ctx, videoURL)
	if err != nil {
		a.logger.Debug("title lookup failed", "video_url", videoURL, "error", err)
	}
	return title
}

// releaseFetch drops the cancel handle when it still belongs to gen.
func (a *App) releaseFetch(kind domain.ArtifactKind, gen uint64, cancel context.CancelFunc) {
	cancel()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.artifacts.IsCurrent(kind, gen) {
		delete(a.cancels, kind)
	}
}

// logResolveSkip records a resolution dropped because a newer fetch superseded it.
func (a *App) logResolveSkip(kind domain.ArtifactKind, gen uint64, err error) {
	if errors.Is(err, artifacts.ErrStaleGeneration) {
		a.logger.Debug("discarding stale result", "artifact", kind, "generation", gen)
		return
	}
	a.logger.Warn("resolve artifact", "artifact", kind, "generation", gen, "error", err)
}

// publishArtifact pushes one accepted state transition.
func (a *App) publishArtifact(artifact domain.Artifact) {
	snapshot := artifact
	a.publishEvent(artifacts.Event{
		Type:     artifacts.EventTypeState,
		Kind:     artifact.Kind,
		Artifact: &snapshot,
	})
}
