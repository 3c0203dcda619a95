package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file.
const (
	EnvMaxFiles           = "CODECLEAN_MAX_FILES"
	EnvBackupDir          = "CODECLEAN_BACKUP_DIR"
	EnvCreateBackup       = "CODECLEAN_CREATE_BACKUP"
	EnvLargeFileThreshold = "CODECLEAN_LARGE_FILE_THRESHOLD"
)

// LoadEnvFile loads <projectRoot>/.env into the process environment.
// Variables already set win over the file. A missing file is not an error.
func LoadEnvFile(projectRoot string) error {
	path := filepath.Join(projectRoot, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from CODECLEAN_* environment variables
// and re-validates the result.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvMaxFiles); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxFiles, err)
		}
		c.SafetyChecks.MaxFilesPerOperation = n
	}

	if v, ok := os.LookupEnv(EnvBackupDir); ok && v != "" {
		c.SafetyChecks.BackupDirectory = v
	}

	if v, ok := os.LookupEnv(EnvCreateBackup); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCreateBackup, err)
		}
		c.SafetyChecks.CreateBackup = b
	}

	if v, ok := os.LookupEnv(EnvLargeFileThreshold); ok && v != "" {
		c.Risk.LargeFileThreshold = v
	}

	return c.Validate()
}
