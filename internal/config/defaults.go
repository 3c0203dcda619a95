package config

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		TestDirectories: []string{
			"src/test",
			"src/androidTest",
			"test",
			"androidTest",
			"src/testDebug",
			"src/testRelease",
		},
		TestFilePatterns: []string{
			"*Test.kt",
			"*Test.java",
			"*Tests.kt",
			"*Tests.java",
			"Test*.kt",
			"Test*.java",
			"*Spec.kt",
			"*Spec.java",
		},
		ObsoleteFilePatterns: []string{
			"*.tmp",
			"*.bak",
			"*.old",
			"*.backup",
			".DS_Store",
			"Thumbs.db",
			"*.log",
			"*.cache",
		},
		UnusedResourcePatterns: []string{
			"res/drawable-*dpi/ic_launcher_background.xml",
			"res/drawable/ic_launcher_foreground.xml",
			"res/mipmap-*dpi/ic_launcher.png",
			"res/mipmap-*dpi/ic_launcher_round.png",
		},
		ProtectedDirectories: []string{
			"src/main",
			".git",
			".gradle",
			"gradle",
			"build",
		},
		ProtectedFiles: []string{
			"build.gradle",
			"build.gradle.kts",
			"settings.gradle",
			"settings.gradle.kts",
			"gradle.properties",
			"gradlew",
			"gradlew.bat",
			"AndroidManifest.xml",
			"proguard-rules.pro",
			"README.md",
			"LICENSE",
		},
		DependencyAnalysis: DependencyAnalysis{
			CheckUnusedDependencies: true,
			ExcludeDependencies: []string{
				"androidx.core:core-ktx",
				"androidx.appcompat:appcompat",
				"com.google.android.material:material",
			},
		},
		SafetyChecks: SafetyChecks{
			RequireConfirmation:  true,
			CreateBackup:         true,
			RequireBackup:        false,
			BackupDirectory:      ".cleanup_backup",
			MaxFilesPerOperation: 1000,
			RetryAttempts:        2,
		},
		Risk: RiskConfig{
			LargeFileThreshold: "10MiB",
			Keywords:           []string{"main", "src", "important", "config", "key"},
			ImportantDirectories: []string{
				"src/main",
				"app/src/main",
			},
		},
		Reporting: Reporting{
			GenerateHTMLReport:           true,
			IncludeFileSizes:             true,
			IncludeDependencyTree:        true,
			IncludeBeforeAfterComparison: true,
			ReportFile:                   "cleanup_report.html",
		},
	}
}

// GetExampleConfig returns an example configuration with comments
func GetExampleConfig() string {
	return `# codeclean configuration
# Location: ~/.config/codeclean/config.yaml (or pass --config)
# JSON files with the same keys are accepted too.

# Directories, relative to each module, whose contents are test code
test_directories:
  - src/test
  - src/androidTest
  - test
  - androidTest
  - src/testDebug
  - src/testRelease

# File name globs for test sources found anywhere in the project
test_file_patterns:
  - "*Test.kt"
  - "*Test.java"
  - "*Tests.kt"
  - "*Tests.java"
  - "Test*.kt"
  - "Test*.java"
  - "*Spec.kt"
  - "*Spec.java"

# File name globs for backup, temp, log and other leftover files
obsolete_file_patterns:
  - "*.tmp"
  - "*.bak"
  - "*.old"
  - "*.backup"
  - ".DS_Store"
  - "Thumbs.db"
  - "*.log"
  - "*.cache"

# Globs matched under each module's src/main (** is supported)
unused_resource_patterns:
  - "res/drawable-*dpi/ic_launcher_background.xml"
  - "res/drawable/ic_launcher_foreground.xml"
  - "res/mipmap-*dpi/ic_launcher.png"
  - "res/mipmap-*dpi/ic_launcher_round.png"

# Never touched. Directory entries are path prefixes relative to the
# project root; file entries are matched by name anywhere.
protected_directories:
  - src/main
  - .git
  - .gradle
  - gradle
  - build
protected_files:
  - build.gradle
  - build.gradle.kts
  - settings.gradle
  - settings.gradle.kts
  - gradle.properties
  - gradlew
  - gradlew.bat
  - AndroidManifest.xml
  - proguard-rules.pro
  - README.md
  - LICENSE

dependency_analysis:
  check_unused_dependencies: true
  # Always treated as used
  exclude_dependencies:
    - androidx.core:core-ktx
    - androidx.appcompat:appcompat
    - com.google.android.material:material

safety_checks:
  require_confirmation: true
  create_backup: true
  # Skip deleting entries whose backup copy failed
  require_backup: false
  backup_directory: .cleanup_backup
  # Refuse to run when more files than this are selected
  max_files_per_operation: 1000
  # Extra attempts for deletions that fail with a transient error
  retry_attempts: 2

risk:
  large_file_threshold: 10MiB
  keywords: [main, src, important, config, key]
  important_directories: [src/main, app/src/main]

reporting:
  generate_html_report: true
  include_file_sizes: true
  include_dependency_tree: true
  include_before_after_comparison: true
  report_file: cleanup_report.html
`
}
