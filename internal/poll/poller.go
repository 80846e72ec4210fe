package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"yousum/internal/backend"
)

const (
	// DefaultInterval is the fixed delay between two status requests.
	DefaultInterval = 2 * time.Second
	// DefaultMaxAttempts bounds the number of status requests in one chain.
	DefaultMaxAttempts = 30
)

// errStillProcessing marks a tick whose job has not finished yet.
var errStillProcessing = errors.New("result not ready")

// StatusChecker queries a result URL once.
type StatusChecker interface {
	Status(ctx context.Context, resultURL string) (backend.Response, error)
}

// Request describes one poll chain.
type Request struct {
	ResultURL string
	Artifact  string
	// OnAttempt runs before every status request with the 1-based attempt number.
	OnAttempt func(attempt int)
}

// Poller re-queries result URLs on a fixed interval.
type Poller struct {
	checker     StatusChecker
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// NewPoller builds a poller; non-positive values fall back to the defaults.
func NewPoller(checker StatusChecker, interval time.Duration, maxAttempts int, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		checker:     checker,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Interval returns the delay between two status requests.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// MaxAttempts returns the status request budget of one chain.
func (p *Poller) MaxAttempts() int {
	return p.maxAttempts
}

// Run polls until the result completes, a tick fails, the budget runs out or
// ctx is cancelled. The first request is sent immediately. Transport and
// protocol failures stop the chain without retry; budget exhaustion returns a
// *backend.Error of kind KindTimedOut; cancellation returns ctx's error.
func (p *Poller) Run(ctx context.Context, req Request) (backend.Completed, error) {
	attempt := 0
	operation := func() (backend.Completed, error) {
		attempt++
		if req.OnAttempt != nil {
			req.OnAttempt(attempt)
		}
		p.logger.Debug("polling result", "artifact", req.Artifact, "attempt", attempt, "result_url", req.ResultURL)

		resp, err := p.checker.Status(ctx, req.ResultURL)
		if err != nil {
			return backend.Completed{}, backoff.Permanent(err)
		}

		switch r := resp.(type) {
		case backend.Completed:
			return r, nil
		case backend.Processing:
			return backend.Completed{}, errStillProcessing
		default:
			return backend.Completed{}, backoff.Permanent(&backend.Error{
				Kind:    backend.KindProtocol,
				Op:      "status",
				Message: fmt.Sprintf("unexpected poll response %T", resp),
			})
		}
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(p.interval)),
		backoff.WithMaxTries(uint(p.maxAttempts)),
	)
	if err == nil {
		p.logger.Debug("poll completed", "artifact", req.Artifact, "attempts", attempt)
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return backend.Completed{}, ctxErr
	}
	if errors.Is(err, errStillProcessing) {
		return backend.Completed{}, &backend.Error{
			Kind:    backend.KindTimedOut,
			Op:      "status",
			Message: fmt.Sprintf("result not ready after %d attempts", attempt),
			Err:     err,
		}
	}
	return backend.Completed{}, err
}
