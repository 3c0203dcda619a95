package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleanup.log")

	logger, err := New(false, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("walk entry")
	logger.Info("scan finished")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected debug and info in the file, got %d lines:\n%s", len(lines), data)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "scan finished" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
}

func TestNewBadLogFile(t *testing.T) {
	if _, err := New(true, filepath.Join(t.TempDir(), "missing", "x.log")); err == nil {
		t.Error("expected error for unwritable log path")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
