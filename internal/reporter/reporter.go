package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/codeclean/internal/cleaner"
	"github.com/fenilsonani/codeclean/internal/config"
	"github.com/fenilsonani/codeclean/internal/deps"
	"github.com/fenilsonani/codeclean/internal/scanner"
	"github.com/fenilsonani/codeclean/internal/ui/styles"
	"github.com/fenilsonani/codeclean/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
	FormatHTML    OutputFormat = "html"
)

// Formats lists every supported output format
var Formats = []OutputFormat{FormatSummary, FormatTable, FormatJSON, FormatYAML, FormatHTML}

// ParseFormat parses a format name, case-insensitively
func ParseFormat(name string) (OutputFormat, error) {
	for _, f := range Formats {
		if strings.EqualFold(name, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s", name)
}

// Reporter handles report generation
type Reporter struct {
	writer  io.Writer
	format  OutputFormat
	options config.Reporting
	now     func() time.Time
}

// Option configures a Reporter
type Option func(*Reporter)

// WithOptions applies the reporting section of the config
func WithOptions(opts config.Reporting) Option {
	return func(r *Reporter) {
		r.options = opts
	}
}

// WithClock sets the time source used for report timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat, opts ...Option) *Reporter {
	r := &Reporter{
		writer:  writer,
		format:  format,
		options: config.GetDefault().Reporting,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report renders the findings of a scan
func (r *Reporter) Report(result *scanner.ScanResult) error {
	if result == nil {
		return fmt.Errorf("no scan result to report")
	}

	switch r.format {
	case FormatTable:
		return r.scanTable(result)
	case FormatJSON:
		return r.encodeJSON(r.scanDocument(result))
	case FormatYAML:
		return r.encodeYAML(r.scanDocument(result))
	case FormatSummary:
		return r.scanSummary(result)
	case FormatHTML:
		return r.renderHTML(r.scanPage(result))
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// ReportCleanup renders what a cleanup run did (or would do, for a dry run)
func (r *Reporter) ReportCleanup(res *cleaner.CleanupResult) error {
	if res == nil {
		return fmt.Errorf("no cleanup result to report")
	}

	switch r.format {
	case FormatTable:
		return r.cleanupTable(res)
	case FormatJSON:
		return r.encodeJSON(r.cleanupDocument(res))
	case FormatYAML:
		return r.encodeYAML(r.cleanupDocument(res))
	case FormatSummary:
		return r.cleanupSummary(res)
	case FormatHTML:
		return r.renderHTML(r.cleanupPage(res))
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// =============================================================================
// Summary
// =============================================================================

func (r *Reporter) scanSummary(result *scanner.ScanResult) error {
	w := r.writer
	stats := result.Stats

	fmt.Fprintln(w, styles.TitleStyle.Render("=== Scan Summary ==="))
	fmt.Fprintf(w, "Project: %s\n", styles.FilePathStyle.Render(result.ProjectPath))
	fmt.Fprintf(w, "Modules: %d\n", stats.Modules)
	fmt.Fprintf(w, "Cleanable files: %d (%s)\n", stats.TotalFiles, styles.FileSizeStyle.Render(utils.FormatBytes(stats.TotalSize)))
	fmt.Fprintf(w, "Cleanable directories: %d\n", stats.TotalDirectories)
	fmt.Fprintf(w, "Unused dependencies: %d\n", stats.UnusedDependencies)

	fmt.Fprintf(w, "\nBreakdown by Category:\n")
	for _, c := range allCategories() {
		cs, ok := stats.ByCategory[c]
		if !ok || cs.Count == 0 {
			continue
		}
		unit := "files"
		if c.IsDirectory() {
			unit = "directories"
		}
		fmt.Fprintf(w, "  %s: %d %s, %s\n", styles.CategoryStyle.Render(c.Label()), cs.Count, unit, utils.FormatBytes(cs.Size))
	}

	if len(result.UnusedDependencies) > 0 {
		fmt.Fprintf(w, "\nUnused dependencies:\n")
		for _, d := range result.UnusedDependencies {
			fmt.Fprintf(w, "  %s (%s, module %s)\n", d.Coordinate(), d.Configuration, d.Module)
		}
	}

	if len(result.HighRisk) > 0 {
		fmt.Fprintf(w, "\n%s\n", styles.WarningStyle.Render(fmt.Sprintf("High-risk entries: %d (review before cleaning)", len(result.HighRisk))))
		for _, e := range result.HighRisk {
			fmt.Fprintf(w, "  %s\n", relTo(result.ProjectPath, e.Path))
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, msg := range result.Warnings {
			fmt.Fprintf(w, "  %s %s\n", styles.WarningStyle.Render("!"), msg)
		}
	}

	fmt.Fprintf(w, "\nScan took %s\n", styles.DimStyle.Render(result.Duration.Round(time.Millisecond).String()))
	return nil
}

func (r *Reporter) cleanupSummary(res *cleaner.CleanupResult) error {
	w := r.writer

	title := "=== Cleanup Summary ==="
	if res.DryRun {
		title = "=== Cleanup Summary (dry run) ==="
	}
	fmt.Fprintln(w, styles.TitleStyle.Render(title))

	verb := "Deleted"
	if res.DryRun {
		verb = "Would delete"
	}
	fmt.Fprintf(w, "%s files: %d\n", verb, len(res.DeletedFiles))
	fmt.Fprintf(w, "%s directories: %d\n", verb, len(res.DeletedDirectories))
	fmt.Fprintf(w, "Removed dependencies: %d\n", len(res.RemovedDependencies))
	fmt.Fprintf(w, "Freed: %s\n", styles.FileSizeStyle.Render(utils.FormatBytes(res.FreedBytes())))
	fmt.Fprintf(w, "Succeeded: %s  Failed: %s  Skipped: %d\n",
		styles.SuccessStyle.Render(fmt.Sprint(res.Succeeded)),
		styles.ErrorStyle.Render(fmt.Sprint(res.Failed)),
		res.Skipped)

	if res.BackupCreated {
		fmt.Fprintf(w, "Backup: %s\n", styles.FilePathStyle.Render(res.BackupPath))
	}

	if len(res.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, msg := range res.Warnings {
			fmt.Fprintf(w, "  %s %s\n", styles.WarningStyle.Render("!"), msg)
		}
	}

	if len(res.Failures) > 0 {
		fmt.Fprint(w, cleaner.FormatErrorSummary(res.Failures))
	}
	if len(res.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors: %d\n", len(res.Errors))
		for _, msg := range res.Errors {
			fmt.Fprintf(w, "  %s\n", styles.ErrorStyle.Render(msg))
		}
	}

	status := styles.SuccessStyle.Render("✓ Cleanup completed")
	if !res.Successful() {
		status = styles.ErrorStyle.Render("✗ Cleanup completed with errors")
	}
	fmt.Fprintf(w, "\n%s in %s (state: %s)\n", status, res.Duration.Round(time.Millisecond), res.State)
	return nil
}

// =============================================================================
// Table
// =============================================================================

const tableWidth = 120

func (r *Reporter) tableHeader() {
	fmt.Fprintf(r.writer, "%-60s | %-12s | %-20s | %s\n", "Path", "Size", "Category", "Modified")
	fmt.Fprintln(r.writer, strings.Repeat("-", tableWidth))
}

func (r *Reporter) tableRow(root string, e scanner.Entry) {
	path := relTo(root, e.Path)
	if e.IsDir {
		path += "/"
	}
	if len(path) > 60 {
		path = "..." + path[len(path)-57:]
	}

	size := "-"
	if r.options.IncludeFileSizes {
		size = utils.FormatBytes(e.Size)
	}

	fmt.Fprintf(r.writer, "%-60s | %-12s | %-20s | %s\n",
		path,
		size,
		e.Category,
		e.ModTime.Format("2006-01-02 15:04:05"))
}

func (r *Reporter) dependencyTable(list []deps.Dependency) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintf(r.writer, "\n%-50s | %-12s | %-20s | %s\n", "Dependency", "Version", "Configuration", "Module")
	fmt.Fprintln(r.writer, strings.Repeat("-", tableWidth))
	for _, d := range list {
		fmt.Fprintf(r.writer, "%-50s | %-12s | %-20s | %s\n", d.Name, d.Version, d.Configuration, d.Module)
	}
}

func (r *Reporter) scanTable(result *scanner.ScanResult) error {
	r.tableHeader()
	for _, e := range result.All() {
		r.tableRow(result.ProjectPath, e)
	}
	if r.options.IncludeDependencyTree {
		r.dependencyTable(result.UnusedDependencies)
	}

	fmt.Fprintf(r.writer, "\n%s\n", strings.Repeat("-", tableWidth))
	fmt.Fprintf(r.writer, "Total: %d files, %d directories, %s\n",
		result.Stats.TotalFiles, result.Stats.TotalDirectories, utils.FormatBytes(result.Stats.TotalSize))
	return nil
}

func (r *Reporter) cleanupTable(res *cleaner.CleanupResult) error {
	root := projectPath(res)

	r.tableHeader()
	for _, e := range res.DeletedFiles {
		r.tableRow(root, e)
	}
	for _, e := range res.DeletedDirectories {
		r.tableRow(root, e)
	}
	r.dependencyTable(res.RemovedDependencies)

	fmt.Fprintf(r.writer, "\n%s\n", strings.Repeat("-", tableWidth))
	fmt.Fprintf(r.writer, "Total: %d removed, %s freed, %d failed, %d skipped\n",
		res.DeletedCount(), utils.FormatBytes(res.FreedBytes()), res.Failed, res.Skipped)
	return nil
}

// =============================================================================
// JSON / YAML
// =============================================================================

type scanDocument struct {
	Timestamp          string            `json:"timestamp" yaml:"timestamp"`
	ProjectPath        string            `json:"project_path" yaml:"project_path"`
	Duration           string            `json:"duration" yaml:"duration"`
	TotalFiles         int               `json:"total_files" yaml:"total_files"`
	TotalDirectories   int               `json:"total_directories" yaml:"total_directories"`
	TotalSize          int64             `json:"total_size" yaml:"total_size"`
	TotalSizeFormatted string            `json:"total_size_formatted" yaml:"total_size_formatted"`
	Stats              scanner.Stats     `json:"stats" yaml:"stats"`
	Entries            []scanner.Entry   `json:"entries" yaml:"entries"`
	Modules            []scanner.Module  `json:"modules" yaml:"modules"`
	UnusedDependencies []deps.Dependency `json:"unused_dependencies" yaml:"unused_dependencies"`
	HighRisk           []scanner.Entry   `json:"high_risk" yaml:"high_risk"`
	Warnings           []string          `json:"warnings" yaml:"warnings"`
}

func (r *Reporter) scanDocument(result *scanner.ScanResult) scanDocument {
	return scanDocument{
		Timestamp:          r.now().Format(time.RFC3339),
		ProjectPath:        result.ProjectPath,
		Duration:           result.Duration.String(),
		TotalFiles:         result.Stats.TotalFiles,
		TotalDirectories:   result.Stats.TotalDirectories,
		TotalSize:          result.Stats.TotalSize,
		TotalSizeFormatted: utils.FormatBytes(result.Stats.TotalSize),
		Stats:              result.Stats,
		Entries:            nonNil(result.All()),
		Modules:            result.Modules,
		UnusedDependencies: result.UnusedDependencies,
		HighRisk:           result.HighRisk,
		Warnings:           result.Warnings,
	}
}

type cleanupDocument struct {
	Timestamp           string            `json:"timestamp" yaml:"timestamp"`
	ProjectPath         string            `json:"project_path" yaml:"project_path"`
	DryRun              bool              `json:"dry_run" yaml:"dry_run"`
	State               string            `json:"state" yaml:"state"`
	Successful          bool              `json:"successful" yaml:"successful"`
	Duration            string            `json:"duration" yaml:"duration"`
	Succeeded           int               `json:"succeeded" yaml:"succeeded"`
	Failed              int               `json:"failed" yaml:"failed"`
	Skipped             int               `json:"skipped" yaml:"skipped"`
	FreedBytes          int64             `json:"freed_bytes" yaml:"freed_bytes"`
	FreedFormatted      string            `json:"freed_formatted" yaml:"freed_formatted"`
	DeletedFiles        []scanner.Entry   `json:"deleted_files" yaml:"deleted_files"`
	DeletedDirectories  []scanner.Entry   `json:"deleted_directories" yaml:"deleted_directories"`
	RemovedDependencies []deps.Dependency `json:"removed_dependencies" yaml:"removed_dependencies"`
	BackupPath          string            `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	Errors              []string          `json:"errors" yaml:"errors"`
	Warnings            []string          `json:"warnings" yaml:"warnings"`
}

func (r *Reporter) cleanupDocument(res *cleaner.CleanupResult) cleanupDocument {
	return cleanupDocument{
		Timestamp:           r.now().Format(time.RFC3339),
		ProjectPath:         projectPath(res),
		DryRun:              res.DryRun,
		State:               res.State.String(),
		Successful:          res.Successful(),
		Duration:            res.Duration.String(),
		Succeeded:           res.Succeeded,
		Failed:              res.Failed,
		Skipped:             res.Skipped,
		FreedBytes:          res.FreedBytes(),
		FreedFormatted:      utils.FormatBytes(res.FreedBytes()),
		DeletedFiles:        res.DeletedFiles,
		DeletedDirectories:  res.DeletedDirectories,
		RemovedDependencies: res.RemovedDependencies,
		BackupPath:          res.BackupPath,
		Errors:              res.Errors,
		Warnings:            res.Warnings,
	}
}

func (r *Reporter) encodeJSON(v interface{}) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (r *Reporter) encodeYAML(v interface{}) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(v)
}

// =============================================================================
// Files
// =============================================================================

// SaveToFile writes the scan report to path
func SaveToFile(result *scanner.ScanResult, path string, format OutputFormat, opts ...Option) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return New(file, format, opts...).Report(result)
}

// SaveCleanupReport writes the cleanup report to path. The format follows the
// file extension (.json, .yaml/.yml, .html/.htm), defaulting to HTML.
func SaveCleanupReport(res *cleaner.CleanupResult, path string, opts ...Option) error {
	format := FormatHTML
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = FormatJSON
	case ".yaml", ".yml":
		format = FormatYAML
	case ".txt":
		format = FormatTable
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer file.Close()

	return New(file, format, opts...).ReportCleanup(res)
}

func allCategories() []scanner.Category {
	return append(append([]scanner.Category{}, scanner.FileCategories...), scanner.DirectoryCategories...)
}

func projectPath(res *cleaner.CleanupResult) string {
	if res.ScanResult == nil {
		return ""
	}
	return res.ScanResult.ProjectPath
}

func relTo(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func nonNil(entries []scanner.Entry) []scanner.Entry {
	if entries == nil {
		return []scanner.Entry{}
	}
	return entries
}
