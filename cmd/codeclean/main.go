package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fenilsonani/codeclean/internal/backup"
	"github.com/fenilsonani/codeclean/internal/cleaner"
	"github.com/fenilsonani/codeclean/internal/config"
	"github.com/fenilsonani/codeclean/internal/logging"
	"github.com/fenilsonani/codeclean/internal/progress"
	"github.com/fenilsonani/codeclean/internal/reporter"
	"github.com/fenilsonani/codeclean/internal/scanner"
	"github.com/fenilsonani/codeclean/internal/ui"
	"github.com/fenilsonani/codeclean/pkg/utils"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Exit codes
const (
	exitOK       = 0
	exitError    = 1
	exitRefused  = 2
	exitPartial  = 3
	exitCanceled = 130
)

var (
	projectPath  string
	configPath   string
	logFile      string
	verbose      bool
	dryRun       bool
	force        bool
	noBackup     bool
	scanFormat   string
	reportFormat string
	outputFile   string
)

// exitCodeError carries a process exit code out of a command
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if code := exitCode(err); code != exitOK {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(code)
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	var safety *cleaner.SafetyError
	if errors.As(err, &safety) {
		return exitRefused
	}
	if errors.Is(err, context.Canceled) {
		return exitCanceled
	}
	return exitError
}

var rootCmd = &cobra.Command{
	Use:   "codeclean",
	Short: "Safe cleanup for Gradle projects",
	Long: `codeclean finds disposable artifacts in a Gradle project (test sources,
obsolete, backup, temp and log files, unused resources, empty directories and
unused dependency declarations) and removes them after taking a backup.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var scanCmd = &cobra.Command{
	Use:   "scan [project]",
	Short: "Scan a project for cleanable files",
	Long:  `Scans the project and reports what can be cleaned without making any changes.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := reporter.ParseFormat(scanFormat)
		if err != nil {
			return err
		}

		env, err := setup(args)
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		result, err := env.scan(cmd.Context(), format == reporter.FormatSummary)
		if err != nil {
			return err
		}

		return reporter.New(cmd.OutOrStdout(), format, reporter.WithOptions(env.cfg.Reporting)).Report(result)
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean [project]",
	Short: "Clean the project",
	Long: `Scans the project, asks for confirmation, backs up the files about to be
removed and deletes them. Unused dependency declarations are removed from the
module build files.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(args)
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		result, err := env.scan(ctx, true)
		if err != nil {
			return err
		}

		if result.CleanableCount() == 0 && len(result.Directories()) == 0 && len(result.UnusedDependencies) == 0 {
			fmt.Fprintln(out, "\n✨ Nothing to clean. The project is already tidy!")
			return nil
		}

		if err := reporter.New(out, reporter.FormatSummary, reporter.WithOptions(env.cfg.Reporting)).Report(result); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		if env.cfg.SafetyChecks.RequireConfirmation && !force && !dryRun {
			ok, err := ui.ConfirmCleanup(ctx, result, dryRun, cmd.InOrStdin(), out)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Cleanup cancelled")
				return nil
			}
		}

		if dryRun {
			fmt.Fprintln(out, "\n[DRY RUN MODE] No files will be deleted.")
		} else {
			fmt.Fprintln(out, "\nCleaning...")
		}

		sink := env.logSink
		live := env.liveProgress(out)
		if live != nil {
			sink = progress.Multi(env.logSink, live)
		}
		res, err := cleaner.Execute(ctx, result, env.cfg, dryRun,
			cleaner.WithLogger(env.logger),
			cleaner.WithSink(sink),
		)
		if live != nil {
			live.Finish()
		}
		if res == nil {
			return err
		}

		if rerr := reporter.New(out, reporter.FormatSummary, reporter.WithOptions(env.cfg.Reporting)).ReportCleanup(res); rerr != nil {
			env.logger.Warn("failed to print cleanup summary", zap.Error(rerr))
		}

		if len(res.Failures) > 0 {
			fmt.Fprintf(out, "\n%s", cleaner.FormatErrorSummary(res.Failures))
		}

		if env.cfg.Reporting.GenerateHTMLReport && env.cfg.Reporting.ReportFile != "" {
			path := env.cfg.Reporting.ReportFile
			if !filepath.IsAbs(path) {
				path = filepath.Join(result.ProjectPath, path)
			}
			if rerr := reporter.SaveCleanupReport(res, path, reporter.WithOptions(env.cfg.Reporting)); rerr != nil {
				env.logger.Warn("failed to write report", zap.String("path", path), zap.Error(rerr))
			} else {
				fmt.Fprintf(out, "Report saved to: %s\n", path)
			}
		}

		if err != nil {
			return err
		}
		if !res.Successful() {
			return &exitCodeError{code: exitPartial, err: fmt.Errorf("cleanup finished with %d failures", res.Failed)}
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [project]",
	Short: "Generate a detailed report",
	Long:  `Scans the project and writes a detailed report of cleanup opportunities.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := reporter.ParseFormat(reportFormat)
		if err != nil {
			return err
		}

		env, err := setup(args)
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		result, err := env.scan(cmd.Context(), outputFile != "")
		if err != nil {
			return err
		}

		if outputFile == "" {
			return reporter.New(cmd.OutOrStdout(), format, reporter.WithOptions(env.cfg.Reporting)).Report(result)
		}

		if err := reporter.SaveToFile(result, outputFile, format, reporter.WithOptions(env.cfg.Reporting)); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", outputFile)
		return nil
	},
}

var backupsCmd = &cobra.Command{
	Use:   "backups [project]",
	Short: "List backups taken before cleanups",
	Long: `Lists the backups under the project's backup directory, newest first.
With --verify every copy is re-hashed against its manifest checksum.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(args)
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		out := cmd.OutOrStdout()
		dir := env.cfg.SafetyChecks.BackupDirectory
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(env.root, dir)
		}

		records, err := backup.List(dir)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintf(out, "No backups in %s\n", dir)
			return nil
		}

		verify, _ := cmd.Flags().GetBool("verify")
		manager := backup.NewManager(backup.WithLogger(env.logger))
		var broken int
		for _, rec := range records {
			m := rec.Manifest
			fmt.Fprintf(out, "%s  %s  %d files  %s\n",
				filepath.Base(rec.Dir), m.BackupTime.Format(time.DateTime), m.TotalFiles, utils.FormatBytes(m.TotalSize))
			if len(m.Failed) > 0 {
				fmt.Fprintf(out, "  %d files could not be copied\n", len(m.Failed))
			}
			if verify {
				if err := manager.Verify(rec); err != nil {
					broken++
					fmt.Fprintf(out, "  ✗ %v\n", err)
				} else {
					fmt.Fprintln(out, "  ✓ checksums match")
				}
			}
		}

		if broken > 0 {
			return fmt.Errorf("%d backups failed verification", broken)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display current configuration",
	Long:  `Shows where the configuration is read from, or prints an example file with --example.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if example, _ := cmd.Flags().GetBool("example"); example {
			fmt.Fprint(out, config.GetExampleConfig())
			return nil
		}

		if create, _ := cmd.Flags().GetBool("init"); create {
			path, err := config.EnsureConfigExists()
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(out, "Config file: %s\n", path)
			return nil
		}

		cfgPath := configPath
		if cfgPath == "" {
			var err error
			if cfgPath, err = config.GetConfigPath(); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "Config file: %s\n", cfgPath)

		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			fmt.Fprintln(out, "Config file does not exist. Using default configuration.")
			fmt.Fprintln(out, "\nTo create a config file:")
			fmt.Fprintln(out, "  codeclean config --init")
			return nil
		}

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Max files per operation: %d\n", cfg.SafetyChecks.MaxFilesPerOperation)
		fmt.Fprintf(out, "Backups: %t (directory %s)\n", cfg.SafetyChecks.CreateBackup, cfg.SafetyChecks.BackupDirectory)
		fmt.Fprintf(out, "Dependency analysis: %t\n", cfg.DependencyAnalysis.CheckUnusedDependencies)
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&projectPath, "project-path", "p", "", "project root (defaults to the argument or the working directory)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write a JSON log to this file")

	// Scan command flags
	scanCmd.Flags().StringVarP(&scanFormat, "output", "o", "summary", "output format (summary, table, json, yaml, html)")

	// Clean command flags
	cleanCmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "show what would be deleted without actually deleting")
	cleanCmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompts")
	cleanCmd.Flags().BoolVar(&noBackup, "no-backup", false, "do not copy files to the backup directory first")

	// Report command flags
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "html", "report format (summary, table, json, yaml, html)")
	reportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "save report to file")

	backupsCmd.Flags().Bool("verify", false, "re-hash every backup copy")

	configCmd.Flags().Bool("example", false, "print an example configuration")
	configCmd.Flags().Bool("init", false, "write the default configuration if none exists")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(configCmd)
}

// environment is what every project command needs after flag handling
type environment struct {
	root    string
	cfg     *config.Config
	logger  *zap.Logger
	logSink progress.Sink
}

func setup(args []string) (*environment, error) {
	root := projectPath
	if root == "" && len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid project path: %w", err)
	}

	if err := config.LoadEnvFile(root); err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	if noBackup {
		cfg.SafetyChecks.CreateBackup = false
		cfg.SafetyChecks.RequireBackup = false
	}

	logger, err := logging.New(verbose, logFile)
	if err != nil {
		return nil, err
	}

	return &environment{
		root:    root,
		cfg:     cfg,
		logger:  logger,
		logSink: progress.NewLogSink(logger),
	}, nil
}

// scan runs the scanner, behind a spinner when interactive is set and
// stderr is a terminal
func (env *environment) scan(ctx context.Context, interactive bool) (*scanner.ScanResult, error) {
	run := func(ctx context.Context, sink progress.Sink) (*scanner.ScanResult, error) {
		return scanner.Scan(ctx, env.root, env.cfg,
			scanner.WithLogger(env.logger),
			scanner.WithSink(progress.Multi(env.logSink, sink)),
		)
	}

	var (
		result *scanner.ScanResult
		err    error
	)
	if interactive {
		result, err = ui.RunScan(ctx, os.Stderr, run)
	} else {
		result, err = run(ctx, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	env.logger.Debug("scan finished",
		zap.Int("files", result.CleanableCount()),
		zap.String("size", utils.FormatBytes(result.CleanableSize())),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// liveProgress returns a status line on out when it is a terminal
func (env *environment) liveProgress(out io.Writer) *ui.LiveProgress {
	f, ok := out.(*os.File)
	if !ok || !ui.IsTerminal(f) || verbose {
		return nil
	}
	return ui.NewLiveProgress(out)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}

	return config.Load(cfgPath)
}
