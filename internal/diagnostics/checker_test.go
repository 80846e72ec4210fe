package diagnostics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"yousum/internal/domain"
)

// TestCheckerRunAllPass validates happy-path diagnostics report.
func TestCheckerRunAllPass(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	root := t.TempDir()
	checker := NewChecker(server.Client(), "yousum-test")
	report := checker.Run(context.Background(), domain.DiagnosticTarget{
		BackendURL:      server.URL,
		StorageDriver:   "json",
		StorageLocation: filepath.Join(root, "nested", "settings.json"),
	})

	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	assertStatusByID(t, report, "backend", domain.DiagnosticStatusPass)
	assertStatusByID(t, report, "settings_storage", domain.DiagnosticStatusPass)
	if _, err := os.Stat(filepath.Join(root, "nested")); err != nil {
		t.Fatalf("settings dir not created: %v", err)
	}
}

// TestCheckerRunUnreachableBackendAndUnwritableStorage validates failure reporting.
func TestCheckerRunUnreachableBackendAndUnwritableStorage(t *testing.T) {
	checker := NewCheckerForTests(
		func(context.Context, string) (int, error) { return 0, errors.New("connection refused") },
		func(string, os.FileMode) error { return nil },
		func(string, string) (*os.File, error) { return nil, os.ErrPermission },
		os.Remove,
	)

	report := checker.Run(context.Background(), domain.DiagnosticTarget{
		BackendURL:      "http://127.0.0.1:1",
		StorageDriver:   "sqlite",
		StorageLocation: "/readonly/yousum.db",
	})
	if !report.HasFailures {
		t.Fatal("expected failures")
	}

	assertStatusByID(t, report, "backend", domain.DiagnosticStatusFail)
	assertStatusByID(t, report, "settings_storage", domain.DiagnosticStatusFail)
}

// TestCheckerRunServerErrorWarns validates that a 5xx answer is not fatal.
func TestCheckerRunServerErrorWarns(t *testing.T) {
	checker := NewCheckerForTests(
		func(context.Context, string) (int, error) { return http.StatusBadGateway, nil },
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(context.Background(), domain.DiagnosticTarget{
		BackendURL:      "http://backend.local",
		StorageDriver:   "redis",
		StorageLocation: "redis://127.0.0.1:6379/0",
	})
	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	assertStatusByID(t, report, "backend", domain.DiagnosticStatusWarn)
	assertStatusByID(t, report, "settings_storage", domain.DiagnosticStatusPass)
}

// TestCheckerRunRejectsUnknownDriverAndEmptyURL validates config mistakes.
func TestCheckerRunRejectsUnknownDriverAndEmptyURL(t *testing.T) {
	checker := NewCheckerForTests(
		func(context.Context, string) (int, error) { return http.StatusOK, nil },
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(context.Background(), domain.DiagnosticTarget{StorageDriver: "etcd"})
	assertStatusByID(t, report, "backend", domain.DiagnosticStatusFail)
	assertStatusByID(t, report, "settings_storage", domain.DiagnosticStatusFail)
}

// assertStatusByID checks status for one diagnostic item by ID.
func assertStatusByID(t *testing.T, report domain.DiagnosticReport, id string, want domain.DiagnosticStatus) {
	t.Helper()
	for _, item := range report.Items {
		if item.ID == id {
			if item.Status != want {
				t.Fatalf("item %s: got %s, want %s", id, item.Status, want)
			}
			return
		}
	}
	t.Fatalf("diagnostic item not found: %s", id)
}
