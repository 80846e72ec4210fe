package diagnostics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yousum/internal/domain"
)

const probeTimeout = 3 * time.Second

// Checker validates that the backend answers and settings can be persisted.
type Checker struct {
	probe      func(ctx context.Context, url string) (int, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real HTTP and OS dependencies.
func NewChecker(httpClient *http.Client, userAgent string) *Checker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: probeTimeout}
	}
	return &Checker{
		probe:      httpProbe(httpClient, userAgent),
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(ctx context.Context, target domain.DiagnosticTarget) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkBackend(ctx, target.BackendURL),
		c.checkStorage(target.StorageDriver, target.StorageLocation),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkBackend reports whether anything answers HTTP at the backend root.
func (c *Checker) checkBackend(ctx context.Context, baseURL string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "backend",
		Name: "Summary backend",
	}

	if strings.TrimSpace(baseURL) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Backend URL is empty."
		item.Hint = "Set backend.base_url in config.yaml or YOUSUM_BACKEND_URL."
		return item
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status, err := c.probe(ctx, baseURL)
	switch {
	case err != nil:
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Backend is not reachable: %s", baseURL)
		item.Hint = "Start the summary service or point backend.base_url at a running instance."
	case status >= http.StatusInternalServerError:
		item.Status = domain.DiagnosticStatusWarn
		item.Message = fmt.Sprintf("Backend answered with status %d: %s", status, baseURL)
		item.Hint = "Requests may fail until the service recovers."
	default:
		item.Status = domain.DiagnosticStatusPass
		item.Message = fmt.Sprintf("Backend reachable: %s", baseURL)
	}
	return item
}

// checkStorage validates that the settings location accepts writes.
func (c *Checker) checkStorage(driver, location string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "settings_storage",
		Name: "Settings storage",
	}

	switch driver {
	case "redis":
		item.Status = domain.DiagnosticStatusPass
		item.Message = "Settings are stored in redis."
		return item
	case "json", "sqlite":
	default:
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Unknown storage driver: %q", driver)
		item.Hint = "Use json, sqlite or redis for storage.driver."
		return item
	}

	if strings.TrimSpace(location) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Settings path is empty."
		item.Hint = "Set storage.path or storage.sqlite_path in config.yaml."
		return item
	}

	dir := filepath.Dir(location)
	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create settings directory: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Settings directory is not writable: %s", dir)
		item.Hint = "Settings changes will not survive a restart."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable settings location: %s", location)
	return item
}

// httpProbe issues a GET and returns the status code of any answer.
func httpProbe(client *http.Client, userAgent string) func(ctx context.Context, url string) (int, error) {
	return func(ctx context.Context, url string) (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		if userAgent != "" {
			req.Header.Set("User-Agent", userAgent)
		}

		resp, err := client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()
		return resp.StatusCode, nil
	}
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	probe func(ctx context.Context, url string) (int, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		probe:      probe,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
