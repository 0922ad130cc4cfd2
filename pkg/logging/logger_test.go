package logging

import (
	"os"
	"path/filepath"
	"testing"

	"hikefly/pkg/config"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	requestLog := filepath.Join(tempDir, "requests.log")

	cfg := &config.LogConfig{
		Server: config.LogSettings{
			Path:  serverLog,
			Level: "DEBUG",
		},
		Requests: config.LogSettings{
			Path:  requestLog,
			Level: "INFO",
		},
	}

	// Run Init
	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	// Verify Files Created
	if _, err := os.Stat(serverLog); os.IsNotExist(err) {
		t.Error("Server log file not created")
	}
	if _, err := os.Stat(requestLog); os.IsNotExist(err) {
		t.Error("Request log file not created")
	}

	// Verify RequestLogger is set
	if RequestLogger == nil {
		t.Error("RequestLogger was not initialized")
	}
}

func TestInitRotatesExistingLogs(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")

	if err := os.WriteFile(serverLog, []byte("stale run\n"), 0o644); err != nil {
		t.Fatalf("failed to seed stale log: %v", err)
	}

	cfg := &config.LogConfig{
		Server:   config.LogSettings{Path: serverLog, Level: "INFO"},
		Requests: config.LogSettings{Path: filepath.Join(tempDir, "requests.log"), Level: "INFO"},
	}

	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	old, err := os.ReadFile(serverLog + ".old")
	if err != nil {
		t.Fatalf("expected rotated .old file: %v", err)
	}
	if string(old) != "stale run\n" {
		t.Errorf("rotated file content = %q, want %q", old, "stale run\n")
	}
}
