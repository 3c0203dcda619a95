package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fenilsonani/codeclean/internal/cleaner"
)

func TestExitCode(t *testing.T) {
	safety := &cleaner.SafetyError{Violations: []cleaner.Violation{{Kind: cleaner.ViolationTooManyFiles, Message: "too many"}}}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"plain", errors.New("boom"), exitError},
		{"safety", safety, exitRefused},
		{"wrapped safety", fmt.Errorf("clean: %w", safety), exitRefused},
		{"canceled", fmt.Errorf("scan failed: %w", context.Canceled), exitCanceled},
		{"partial", &exitCodeError{code: exitPartial, err: errors.New("2 failures")}, exitPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestSetupResolvesProjectPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	projectPath, configPath, noBackup = "", "", true
	defer func() { noBackup = false }()

	env, err := setup([]string{dir})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if env.root != dir {
		t.Errorf("root = %q, want %q", env.root, dir)
	}
	if env.cfg.SafetyChecks.CreateBackup {
		t.Error("--no-backup should disable backups")
	}
}
