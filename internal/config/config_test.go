package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// GetDefault Tests
// =============================================================================

func TestGetDefault(t *testing.T) {
	cfg := GetDefault()

	if cfg == nil {
		t.Fatal("GetDefault returned nil")
	}

	if len(cfg.TestDirectories) != 6 || cfg.TestDirectories[0] != "src/test" {
		t.Errorf("unexpected default test directories: %v", cfg.TestDirectories)
	}
	if len(cfg.TestFilePatterns) != 8 {
		t.Errorf("expected 8 test file patterns, got %d", len(cfg.TestFilePatterns))
	}
	if !cfg.DependencyAnalysis.CheckUnusedDependencies {
		t.Error("expected dependency analysis to be enabled by default")
	}
	if !cfg.IsExcludedDependency("androidx.core:core-ktx") {
		t.Error("expected core-ktx to be excluded by default")
	}
}

func TestGetDefaultSafetyChecks(t *testing.T) {
	sc := GetDefault().SafetyChecks

	if !sc.RequireConfirmation {
		t.Error("expected confirmation to be required by default")
	}
	if !sc.CreateBackup {
		t.Error("expected backups to be enabled by default")
	}
	if sc.RequireBackup {
		t.Error("expected require_backup to be off by default")
	}
	if sc.BackupDirectory != ".cleanup_backup" {
		t.Errorf("expected backup directory '.cleanup_backup', got %q", sc.BackupDirectory)
	}
	if sc.MaxFilesPerOperation != 1000 {
		t.Errorf("expected ceiling 1000, got %d", sc.MaxFilesPerOperation)
	}
}

func TestGetDefaultIsValid(t *testing.T) {
	if err := GetDefault().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	threshold, err := GetDefault().LargeFileThresholdBytes()
	if err != nil {
		t.Fatal(err)
	}
	if threshold != 10*1024*1024 {
		t.Errorf("expected 10 MiB threshold, got %d", threshold)
	}
}

// =============================================================================
// Load / Save Tests
// =============================================================================

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SafetyChecks.MaxFilesPerOperation != 1000 {
		t.Error("expected defaults for a missing file")
	}
}

func TestLoadMergesNestedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
safety_checks:
  max_files_per_operation: 50
test_file_patterns:
  - "*IT.kt"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SafetyChecks.MaxFilesPerOperation != 50 {
		t.Errorf("expected ceiling 50, got %d", cfg.SafetyChecks.MaxFilesPerOperation)
	}
	// Sibling keys in the same section keep their defaults.
	if !cfg.SafetyChecks.CreateBackup || cfg.SafetyChecks.BackupDirectory != ".cleanup_backup" {
		t.Errorf("nested defaults lost: %+v", cfg.SafetyChecks)
	}
	if len(cfg.TestFilePatterns) != 1 || cfg.TestFilePatterns[0] != "*IT.kt" {
		t.Errorf("expected list to be replaced, got %v", cfg.TestFilePatterns)
	}
	if len(cfg.ProtectedFiles) == 0 {
		t.Error("untouched top-level keys should keep defaults")
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleanup_config.json")
	data := `{"safety_checks": {"create_backup": false}, "risk": {"large_file_threshold": "1MiB"}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SafetyChecks.CreateBackup {
		t.Error("expected create_backup=false from JSON")
	}
	if n, _ := cfg.LargeFileThresholdBytes(); n != 1024*1024 {
		t.Errorf("expected 1 MiB threshold, got %d", n)
	}
}

func TestLoadPreservesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
future_feature: enabled
safety_checks:
  sandbox: strict
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Extra["future_feature"] != "enabled" {
		t.Errorf("unknown top-level key lost: %v", cfg.Extra)
	}
	if cfg.SafetyChecks.Extra["sandbox"] != "strict" {
		t.Errorf("unknown nested key lost: %v", cfg.SafetyChecks.Extra)
	}

	out := filepath.Join(dir, "saved.yaml")
	if err := Save(cfg, out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(saved), "future_feature: enabled") {
		t.Errorf("unknown key not written back:\n%s", saved)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("safety_checks: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefault()
	cfg.SafetyChecks.MaxFilesPerOperation = 42
	cfg.ProtectedDirectories = append(cfg.ProtectedDirectories, "docs")

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SafetyChecks.MaxFilesPerOperation != 42 {
		t.Errorf("expected 42, got %d", loaded.SafetyChecks.MaxFilesPerOperation)
	}
	if loaded.ProtectedDirectories[len(loaded.ProtectedDirectories)-1] != "docs" {
		t.Errorf("protected directories not saved: %v", loaded.ProtectedDirectories)
	}
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero ceiling", func(c *Config) { c.SafetyChecks.MaxFilesPerOperation = 0 }, "max_files_per_operation"},
		{"negative retries", func(c *Config) { c.SafetyChecks.RetryAttempts = -1 }, "retry_attempts"},
		{"absolute backup dir", func(c *Config) { c.SafetyChecks.BackupDirectory = "/tmp/backups" }, "backup_directory"},
		{"traversal backup dir", func(c *Config) { c.SafetyChecks.BackupDirectory = "../out" }, "backup_directory"},
		{"bad threshold", func(c *Config) { c.Risk.LargeFileThreshold = "huge" }, "large_file_threshold"},
		{"bad glob", func(c *Config) { c.TestFilePatterns = []string{"[abc"} }, "test file pattern"},
		{"traversal glob", func(c *Config) { c.ObsoleteFilePatterns = []string{"../*.tmp"} }, "obsolete file pattern"},
		{"absolute test dir", func(c *Config) { c.TestDirectories = []string{"/src/test"} }, "test directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// Environment Tests
// =============================================================================

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvMaxFiles, "25")
	t.Setenv(EnvBackupDir, "backups")
	t.Setenv(EnvCreateBackup, "false")
	t.Setenv(EnvLargeFileThreshold, "2MiB")

	cfg := GetDefault()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.SafetyChecks.MaxFilesPerOperation != 25 {
		t.Errorf("expected 25, got %d", cfg.SafetyChecks.MaxFilesPerOperation)
	}
	if cfg.SafetyChecks.BackupDirectory != "backups" {
		t.Errorf("expected backups, got %q", cfg.SafetyChecks.BackupDirectory)
	}
	if cfg.SafetyChecks.CreateBackup {
		t.Error("expected create_backup=false")
	}
	if cfg.Risk.LargeFileThreshold != "2MiB" {
		t.Errorf("expected 2MiB, got %q", cfg.Risk.LargeFileThreshold)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv(EnvMaxFiles, "many")

	if err := GetDefault().ApplyEnv(); err == nil {
		t.Error("expected error for non-numeric max files")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := LoadEnvFile(dir); err != nil {
		t.Fatalf("missing .env should not fail: %v", err)
	}

	// Register cleanup for the variable godotenv is about to set.
	t.Setenv(EnvBackupDir, "")
	os.Unsetenv(EnvBackupDir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvBackupDir+"=from_dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnvFile(dir); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv(EnvBackupDir); got != "from_dotenv" {
		t.Errorf("expected from_dotenv, got %q", got)
	}
}

func TestGetExampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.yaml")
	if err := os.WriteFile(path, []byte(GetExampleConfig()), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("example config should load: %v", err)
	}
	if len(cfg.Extra) != 0 {
		t.Errorf("example config has keys the struct does not know: %v", cfg.Extra)
	}
}
