package artifacts

import (
	"context"
	"fmt"

	"yousum/internal/backend"
	"yousum/internal/domain"
	"yousum/internal/poll"
)

// Backend starts summary and transcript requests.
type Backend interface {
	Summarize(ctx context.Context, videoURL string, settings domain.Settings) (backend.Response, error)
	Transcript(ctx context.Context, videoURL, language string) (backend.Response, error)
}

// ResultPoller follows a deferred result URL to completion.
type ResultPoller interface {
	Run(ctx context.Context, req poll.Request) (backend.Completed, error)
	MaxAttempts() int
}

// Fetcher runs one artifact request: the initial call, then the poll chain
// when the backend defers the result.
type Fetcher struct {
	backend Backend
	poller  ResultPoller
}

// NewFetcher combines a backend client with a poller.
func NewFetcher(b Backend, p ResultPoller) *Fetcher {
	return &Fetcher{backend: b, poller: p}
}

// MaxAttempts returns the poll budget of one chain.
func (f *Fetcher) MaxAttempts() int {
	return f.poller.MaxAttempts()
}

// Fetch returns the completed artifact. onAttempt, when set, runs before each
// status request. Cancelling ctx returns ctx's error.
func (f *Fetcher) Fetch(ctx context.Context, kind domain.ArtifactKind, videoURL string, settings domain.Settings, onAttempt func(attempt int)) (backend.Completed, error) {
	var (
		resp backend.Response
		err  error
	)
	switch kind {
	case domain.ArtifactSummary:
		resp, err = f.backend.Summarize(ctx, videoURL, settings)
	case domain.ArtifactTranscript:
		resp, err = f.backend.Transcript(ctx, videoURL, settings.Language)
	default:
		return backend.Completed{}, fmt.Errorf("%w: %s", ErrUnknownArtifact, kind)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backend.Completed{}, ctxErr
		}
		return backend.Completed{}, err
	}

	switch r := resp.(type) {
	case backend.Completed:
		return r, nil
	case backend.Processing:
		return f.poller.Run(ctx, poll.Request{
			ResultURL: r.ResultURL,
			Artifact:  string(kind),
			OnAttempt: onAttempt,
		})
	default:
		return backend.Completed{}, &backend.Error{Kind: backend.KindProtocol, Op: string(kind), Message: fmt.Sprintf("unexpected response %T", resp)}
	}
}
