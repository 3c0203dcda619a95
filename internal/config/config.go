package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/codeclean/internal/security"
	"github.com/fenilsonani/codeclean/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
//
// Unknown keys at any level are kept in the inline Extra maps so a config
// written by a newer version survives a load/save round trip.
type Config struct {
	TestDirectories        []string           `yaml:"test_directories" json:"test_directories"`
	TestFilePatterns       []string           `yaml:"test_file_patterns" json:"test_file_patterns"`
	ObsoleteFilePatterns   []string           `yaml:"obsolete_file_patterns" json:"obsolete_file_patterns"`
	UnusedResourcePatterns []string           `yaml:"unused_resource_patterns" json:"unused_resource_patterns"`
	ProtectedDirectories   []string           `yaml:"protected_directories" json:"protected_directories"`
	ProtectedFiles         []string           `yaml:"protected_files" json:"protected_files"`
	DependencyAnalysis     DependencyAnalysis `yaml:"dependency_analysis" json:"dependency_analysis"`
	SafetyChecks           SafetyChecks       `yaml:"safety_checks" json:"safety_checks"`
	Risk                   RiskConfig         `yaml:"risk" json:"risk"`
	Reporting              Reporting          `yaml:"reporting" json:"reporting"`

	Extra map[string]interface{} `yaml:",inline" json:"-"`
}

// DependencyAnalysis controls unused build dependency detection.
type DependencyAnalysis struct {
	CheckUnusedDependencies bool     `yaml:"check_unused_dependencies" json:"check_unused_dependencies"`
	ExcludeDependencies     []string `yaml:"exclude_dependencies" json:"exclude_dependencies"`

	Extra map[string]interface{} `yaml:",inline" json:"-"`
}

// SafetyChecks bounds what a single cleanup run is allowed to do.
type SafetyChecks struct {
	RequireConfirmation  bool   `yaml:"require_confirmation" json:"require_confirmation"`
	CreateBackup         bool   `yaml:"create_backup" json:"create_backup"`
	RequireBackup        bool   `yaml:"require_backup" json:"require_backup"` // skip entries whose backup copy failed
	BackupDirectory      string `yaml:"backup_directory" json:"backup_directory"`
	MaxFilesPerOperation int    `yaml:"max_files_per_operation" json:"max_files_per_operation"`
	RetryAttempts        int    `yaml:"retry_attempts" json:"retry_attempts"`

	Extra map[string]interface{} `yaml:",inline" json:"-"`
}

// RiskConfig holds the heuristics used to flag entries for manual review.
type RiskConfig struct {
	LargeFileThreshold   string   `yaml:"large_file_threshold" json:"large_file_threshold"` // e.g., "10MiB"
	Keywords             []string `yaml:"keywords" json:"keywords"`
	ImportantDirectories []string `yaml:"important_directories" json:"important_directories"`

	Extra map[string]interface{} `yaml:",inline" json:"-"`
}

// Reporting selects what the cleanup report contains.
type Reporting struct {
	GenerateHTMLReport           bool   `yaml:"generate_html_report" json:"generate_html_report"`
	IncludeFileSizes             bool   `yaml:"include_file_sizes" json:"include_file_sizes"`
	IncludeDependencyTree        bool   `yaml:"include_dependency_tree" json:"include_dependency_tree"`
	IncludeBeforeAfterComparison bool   `yaml:"include_before_after_comparison" json:"include_before_after_comparison"`
	ReportFile                   string `yaml:"report_file" json:"report_file"`

	Extra map[string]interface{} `yaml:",inline" json:"-"`
}

// Load loads configuration from a YAML or JSON file and merges it onto the
// defaults. A missing file yields the defaults.
func Load(configPath string) (*Config, error) {
	cfg := GetDefault()

	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// yaml.v3 decodes into the populated struct, so keys absent from the file
	// keep their default values, including nested sections.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SafetyChecks.MaxFilesPerOperation <= 0 {
		return fmt.Errorf("max_files_per_operation must be > 0")
	}
	if c.SafetyChecks.RetryAttempts < 0 {
		return fmt.Errorf("retry_attempts must be >= 0")
	}

	backupDir := c.SafetyChecks.BackupDirectory
	if backupDir == "" {
		return fmt.Errorf("backup_directory must not be empty")
	}
	if filepath.IsAbs(backupDir) || strings.Contains(backupDir, "..") {
		return fmt.Errorf("backup_directory must be relative to the project: %s", backupDir)
	}

	if _, err := c.LargeFileThresholdBytes(); err != nil {
		return fmt.Errorf("invalid large_file_threshold: %w", err)
	}

	patternSets := []struct {
		name     string
		patterns []string
	}{
		{"test file", c.TestFilePatterns},
		{"obsolete file", c.ObsoleteFilePatterns},
		{"unused resource", c.UnusedResourcePatterns},
	}
	for _, set := range patternSets {
		for _, pattern := range set.patterns {
			if err := security.ValidateGlobPattern(pattern); err != nil {
				return fmt.Errorf("invalid %s pattern '%s': %w", set.name, pattern, err)
			}
		}
	}

	for _, dir := range c.TestDirectories {
		if filepath.IsAbs(dir) || strings.Contains(dir, "..") {
			return fmt.Errorf("test directory must be relative to a module: %s", dir)
		}
	}

	return nil
}

// LargeFileThresholdBytes parses the configured large file threshold.
func (c *Config) LargeFileThresholdBytes() (int64, error) {
	return utils.ParseSize(c.Risk.LargeFileThreshold)
}

// IsExcludedDependency reports whether a dependency name is always kept.
func (c *Config) IsExcludedDependency(name string) bool {
	for _, excluded := range c.DependencyAnalysis.ExcludeDependencies {
		if excluded == name {
			return true
		}
	}
	return false
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", "codeclean")
	return filepath.Join(configDir, "config.yaml"), nil
}

// EnsureConfigExists writes the defaults to the default path unless a config
// already exists there.
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(GetDefault(), configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}
