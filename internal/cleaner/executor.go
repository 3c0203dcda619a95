package cleaner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fenilsonani/codeclean/internal/backup"
	"github.com/fenilsonani/codeclean/internal/config"
	"github.com/fenilsonani/codeclean/internal/deps"
	"github.com/fenilsonani/codeclean/internal/progress"
	"github.com/fenilsonani/codeclean/internal/scanner"
	"github.com/fenilsonani/codeclean/internal/security"
	"github.com/fenilsonani/codeclean/pkg/utils"
)

// State is a step of the cleanup state machine
type State int

const (
	StateNotStarted State = iota
	StateSafetyChecked
	StateBackedUp
	StateFilesRemoved
	StateDirectoriesRemoved
	StateDependenciesRemoved
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateSafetyChecked:
		return "safety_checked"
	case StateBackedUp:
		return "backed_up"
	case StateFilesRemoved:
		return "files_removed"
	case StateDirectoriesRemoved:
		return "directories_removed"
	case StateDependenciesRemoved:
		return "dependencies_removed"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CleanupResult is the outcome of one Execute call
type CleanupResult struct {
	ScanResult          *scanner.ScanResult `json:"-" yaml:"-"`
	State               State               `json:"state" yaml:"state"`
	DryRun              bool                `json:"dry_run" yaml:"dry_run"`
	StartedAt           time.Time           `json:"started_at" yaml:"started_at"`
	Duration            time.Duration       `json:"duration" yaml:"duration"`
	DeletedFiles        []scanner.Entry     `json:"deleted_files" yaml:"deleted_files"`
	DeletedDirectories  []scanner.Entry     `json:"deleted_directories" yaml:"deleted_directories"`
	RemovedDependencies []deps.Dependency   `json:"removed_dependencies" yaml:"removed_dependencies"`
	Succeeded           int                 `json:"succeeded" yaml:"succeeded"`
	Failed              int                 `json:"failed" yaml:"failed"`
	Skipped             int                 `json:"skipped" yaml:"skipped"`
	Errors              []string            `json:"errors" yaml:"errors"`
	Warnings            []string            `json:"warnings" yaml:"warnings"`
	BackupCreated       bool                `json:"backup_created" yaml:"backup_created"`
	BackupPath          string              `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	Backup              *backup.Record      `json:"-" yaml:"-"`

	// Failures keeps the categorized per-item errors for FormatErrorSummary
	Failures []*DeletionError `json:"-" yaml:"-"`

	seenErrors map[string]bool
}

func newCleanupResult(result *scanner.ScanResult, dryRun bool) *CleanupResult {
	return &CleanupResult{
		ScanResult:          result,
		State:               StateNotStarted,
		DryRun:              dryRun,
		StartedAt:           time.Now(),
		DeletedFiles:        []scanner.Entry{},
		DeletedDirectories:  []scanner.Entry{},
		RemovedDependencies: []deps.Dependency{},
		Errors:              []string{},
		Warnings:            []string{},
		seenErrors:          make(map[string]bool),
	}
}

// Successful is false once any failure or error has been recorded
func (r *CleanupResult) Successful() bool {
	return r.Failed == 0 && len(r.Errors) == 0
}

// FreedBytes is the total size of the deleted files and directories. Files
// deleted on their own before their directory went are counted once.
func (r *CleanupResult) FreedBytes() int64 {
	var total int64
	for _, e := range r.DeletedFiles {
		total += e.Size
	}
	for _, dir := range r.DeletedDirectories {
		size := dir.Size
		prefix := dir.Path + string(filepath.Separator)
		for _, f := range r.DeletedFiles {
			if strings.HasPrefix(f.Path, prefix) {
				size -= f.Size
			}
		}
		if size > 0 {
			total += size
		}
	}
	return total
}

// DeletedCount is the number of removed files, directories and dependencies
func (r *CleanupResult) DeletedCount() int {
	return len(r.DeletedFiles) + len(r.DeletedDirectories) + len(r.RemovedDependencies)
}

// AddError records msg once
func (r *CleanupResult) AddError(msg string) {
	if r.seenErrors == nil {
		r.seenErrors = make(map[string]bool)
	}
	if r.seenErrors[msg] {
		return
	}
	r.seenErrors[msg] = true
	r.Errors = append(r.Errors, msg)
}

func (r *CleanupResult) addWarning(msg string) {
	for _, w := range r.Warnings {
		if w == msg {
			return
		}
	}
	r.Warnings = append(r.Warnings, msg)
}

func (r *CleanupResult) fail(err *DeletionError) {
	r.Failed++
	r.Failures = append(r.Failures, err)
	r.AddError(err.Error())
}

// defaultRetryDelays are the waits between attempts on a busy file
var defaultRetryDelays = []time.Duration{
	100 * time.Millisecond,
	500 * time.Millisecond,
	2 * time.Second,
}

// Executor runs the cleanup state machine over a ScanResult
type Executor struct {
	config      *config.Config
	logger      *zap.Logger
	sink        progress.Sink
	backups     *backup.Manager
	rewriter    deps.Rewriter
	retryDelays []time.Duration
}

// Option configures an Executor
type Option func(*Executor)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSink sets the progress sink
func WithSink(sink progress.Sink) Option {
	return func(e *Executor) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithBackupManager replaces the default backup manager
func WithBackupManager(m *backup.Manager) Option {
	return func(e *Executor) {
		if m != nil {
			e.backups = m
		}
	}
}

// WithRewriter replaces the build-file rewriter
func WithRewriter(r deps.Rewriter) Option {
	return func(e *Executor) {
		if r != nil {
			e.rewriter = r
		}
	}
}

// WithRetryDelays sets the waits between delete attempts on a busy file
func WithRetryDelays(delays ...time.Duration) Option {
	return func(e *Executor) {
		e.retryDelays = delays
	}
}

// NewExecutor creates an Executor for cfg
func NewExecutor(cfg *config.Config, opts ...Option) *Executor {
	e := &Executor{
		config:      cfg,
		logger:      zap.NewNop(),
		sink:        progress.Nop(),
		rewriter:    deps.NewRewriter(),
		retryDelays: defaultRetryDelays,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.backups == nil {
		e.backups = backup.NewManager(backup.WithLogger(e.logger), backup.WithSink(e.sink))
	}
	return e
}

// Execute runs the cleanup for result with a new Executor
func Execute(ctx context.Context, result *scanner.ScanResult, cfg *config.Config, dryRun bool, opts ...Option) (*CleanupResult, error) {
	return NewExecutor(cfg, opts...).Execute(ctx, result, dryRun)
}

// Execute checks the safety rules, backs up, then removes files, directories
// and unused dependency declarations in that order.
//
// A *SafetyError is returned, with the result in StateFailed, when the run is
// refused; nothing has been touched. Per-item failures are counted on the
// result and never returned. A cancelled ctx stops before the next unit of
// work and returns ctx.Err() with what was done so far.
//
// In a dry run the same checks and bookkeeping happen but nothing is backed
// up, deleted or rewritten.
func (e *Executor) Execute(ctx context.Context, result *scanner.ScanResult, dryRun bool) (*CleanupResult, error) {
	if result == nil {
		return nil, fmt.Errorf("no scan result to clean")
	}

	res := newCleanupResult(result, dryRun)
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	validator := security.NewPathValidator(result.ProjectPath, e.config.ProtectedDirectories, e.config.ProtectedFiles)
	if dir := e.config.SafetyChecks.BackupDirectory; dir != "" && !filepath.IsAbs(dir) {
		validator.AddProtectedDir(dir)
	}

	if err := e.checkSafety(result, validator, res); err != nil {
		return res, err
	}

	rec, err := e.backup(ctx, result, res, dryRun)
	if err != nil {
		return res, err
	}
	res.State = StateBackedUp

	run := &run{Executor: e, ctx: ctx, res: res, validator: validator, dryRun: dryRun, backup: rec}

	if err := run.removeFiles(result.Files()); err != nil {
		return res, err
	}
	res.State = StateFilesRemoved

	if err := run.removeDirectories(result.Directories()); err != nil {
		return res, err
	}
	res.State = StateDirectoriesRemoved

	if err := run.removeDependencies(result.UnusedDependencies); err != nil {
		return res, err
	}
	res.State = StateDependenciesRemoved

	res.State = StateDone
	res.Duration = time.Since(res.StartedAt)
	e.logSummary(res)

	return res, nil
}

func (e *Executor) checkSafety(result *scanner.ScanResult, validator *security.PathValidator, res *CleanupResult) error {
	var violations []Violation

	if limit := e.config.SafetyChecks.MaxFilesPerOperation; result.CleanableCount() > limit {
		violations = append(violations, Violation{
			Kind:    ViolationTooManyFiles,
			Message: fmt.Sprintf("%d files exceed the per-operation limit of %d", result.CleanableCount(), limit),
		})
	}

	for _, entry := range result.All() {
		if security.IsBuildCritical(filepath.Base(entry.Path)) {
			violations = append(violations, Violation{
				Kind:    ViolationBuildFile,
				Path:    entry.Path,
				Message: fmt.Sprintf("refusing to delete build file %s", entry.Path),
			})
		}
	}

	for _, entry := range result.Entries[scanner.CategoryTestDirectory] {
		rel, err := validator.Rel(entry.Path)
		if err != nil {
			rel = filepath.ToSlash(entry.Path)
		}
		if hasSegments(rel, "src", "main") {
			violations = append(violations, Violation{
				Kind:    ViolationImportantTestDirectory,
				Path:    entry.Path,
				Message: fmt.Sprintf("test directory %s is inside src/main", rel),
			})
		}
	}

	if len(violations) > 0 {
		safetyErr := &SafetyError{Violations: violations}
		res.State = StateFailed
		res.AddError(safetyErr.Error())
		progress.Emit(e.sink, progress.Event{Stage: progress.StageSafety, Kind: progress.KindError, Message: safetyErr.Error()})
		e.logger.Error("safety check failed", zap.Int("violations", len(violations)), zap.Error(safetyErr))
		return safetyErr
	}

	res.State = StateSafetyChecked
	progress.Emit(e.sink, progress.Event{Stage: progress.StageSafety, Kind: progress.KindFinish, Total: result.CleanableCount()})
	return nil
}

func (e *Executor) backup(ctx context.Context, result *scanner.ScanResult, res *CleanupResult, dryRun bool) (*backup.Record, error) {
	if dryRun || !e.config.SafetyChecks.CreateBackup || len(result.Files()) == 0 {
		return nil, nil
	}

	dest := e.config.SafetyChecks.BackupDirectory
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(result.ProjectPath, dest)
	}

	rec, err := e.backups.Backup(ctx, result, dest)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		res.AddError(fmt.Sprintf("backup failed: %v", err))
		e.logger.Warn("backup failed, continuing without it", zap.Error(err))
		return nil, nil
	}

	res.BackupCreated = true
	res.BackupPath = rec.Dir
	res.Backup = rec
	for _, f := range rec.Manifest.Failed {
		res.addWarning(fmt.Sprintf("not backed up: %s (%s)", f.Path, f.Error))
	}
	return rec, nil
}

// run is the per-call state of Execute
type run struct {
	*Executor
	ctx       context.Context
	res       *CleanupResult
	validator *security.PathValidator
	dryRun    bool
	backup    *backup.Record
}

func (r *run) requireBackup() bool {
	return !r.dryRun && r.config.SafetyChecks.CreateBackup && r.config.SafetyChecks.RequireBackup
}

func (r *run) skip(stage progress.Stage, path, why string) {
	r.res.Skipped++
	r.logger.Debug("skipped", zap.String("path", path), zap.String("reason", why))
	progress.Emit(r.sink, progress.Event{Stage: stage, Kind: progress.KindWarning, Path: path, Message: why})
}

func (r *run) failItem(stage progress.Stage, err *DeletionError) {
	r.res.fail(err)
	r.logger.Warn("cleanup failed", zap.String("path", err.Path), zap.Stringer("reason", err.Reason), zap.Error(err.Original))
	progress.Emit(r.sink, progress.Event{Stage: stage, Kind: progress.KindError, Path: err.Path, Message: err.UserMessage()})
}

func (r *run) removeFiles(entries []scanner.Entry) error {
	progress.Emit(r.sink, progress.Event{Stage: progress.StageFiles, Kind: progress.KindStart, Total: len(entries)})

	for i, entry := range entries {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		r.removeFile(entry)
		progress.Emit(r.sink, progress.Event{Stage: progress.StageFiles, Kind: progress.KindProgress, Path: entry.Path, Done: i + 1, Total: len(entries)})
	}

	progress.Emit(r.sink, progress.Event{Stage: progress.StageFiles, Kind: progress.KindFinish, Done: len(r.res.DeletedFiles), Total: len(entries)})
	return nil
}

func (r *run) removeFile(entry scanner.Entry) {
	info, err := os.Lstat(entry.Path)
	if err != nil {
		if os.IsNotExist(err) {
			r.skip(progress.StageFiles, entry.Path, "already gone")
			return
		}
		r.failItem(progress.StageFiles, CategorizeError(entry.Path, err))
		return
	}

	if info.IsDir() {
		r.failItem(progress.StageFiles, &DeletionError{Path: entry.Path, Reason: ErrorIsDirectory, Original: errors.New("expected a file")})
		return
	}
	if err := checkSpecialFile(info); err != nil {
		r.failItem(progress.StageFiles, &DeletionError{Path: entry.Path, Reason: ErrorInvalidPath, Original: err})
		return
	}
	if err := r.validator.ValidatePathForDeletion(entry.Path); err != nil {
		r.failItem(progress.StageFiles, &DeletionError{Path: entry.Path, Reason: ErrorInvalidPath, Original: err})
		return
	}

	if r.requireBackup() && !r.backup.Copied(entry.Path) {
		r.skip(progress.StageFiles, entry.Path, "no backup copy")
		r.res.addWarning(fmt.Sprintf("kept %s: no backup copy", entry.Path))
		return
	}

	if r.dryRun {
		r.res.Succeeded++
		r.res.DeletedFiles = append(r.res.DeletedFiles, entry)
		return
	}

	if delErr := r.deleteWithRetry(entry.Path, os.Remove); delErr != nil {
		if delErr.Reason == ErrorFileNotFound {
			r.skip(progress.StageFiles, entry.Path, "already gone")
			return
		}
		r.failItem(progress.StageFiles, delErr)
		return
	}

	r.res.Succeeded++
	r.res.DeletedFiles = append(r.res.DeletedFiles, entry)
	r.logger.Debug("deleted file", zap.String("path", entry.Path), zap.Int64("size", entry.Size))
}

// deleteWithRetry calls remove until it succeeds, fails with a non-retryable
// error or the configured attempts run out
func (r *run) deleteWithRetry(path string, remove func(string) error) *DeletionError {
	attempts := 1 + r.config.SafetyChecks.RetryAttempts

	var lastErr *DeletionError
	for attempt := 0; attempt < attempts; attempt++ {
		err := remove(path)
		if err == nil {
			return nil
		}

		lastErr = CategorizeError(path, err)
		if !lastErr.Retryable || attempt == attempts-1 {
			break
		}

		r.logger.Debug("retrying busy file", zap.String("path", path), zap.Int("attempt", attempt+1))
		if !r.wait(attempt) {
			break
		}
	}

	return lastErr
}

func (r *run) wait(attempt int) bool {
	if len(r.retryDelays) == 0 {
		return r.ctx.Err() == nil
	}
	delay := r.retryDelays[min(attempt, len(r.retryDelays)-1)]

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-r.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (r *run) removeDirectories(entries []scanner.Entry) error {
	progress.Emit(r.sink, progress.Event{Stage: progress.StageDirectories, Kind: progress.KindStart, Total: len(entries)})

	for i, entry := range entries {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		r.removeDirectory(entry)
		progress.Emit(r.sink, progress.Event{Stage: progress.StageDirectories, Kind: progress.KindProgress, Path: entry.Path, Done: i + 1, Total: len(entries)})
	}

	progress.Emit(r.sink, progress.Event{Stage: progress.StageDirectories, Kind: progress.KindFinish, Done: len(r.res.DeletedDirectories), Total: len(entries)})
	return nil
}

func (r *run) removeDirectory(entry scanner.Entry) {
	info, err := os.Lstat(entry.Path)
	if err != nil {
		if os.IsNotExist(err) {
			r.skip(progress.StageDirectories, entry.Path, "already gone")
			return
		}
		r.failItem(progress.StageDirectories, CategorizeError(entry.Path, err))
		return
	}
	if !info.IsDir() {
		r.skip(progress.StageDirectories, entry.Path, "no longer a directory")
		return
	}
	if err := r.validator.ValidatePathForDeletion(entry.Path); err != nil {
		r.failItem(progress.StageDirectories, &DeletionError{Path: entry.Path, Reason: ErrorInvalidPath, Original: err})
		return
	}
	if protected := r.protectedInside(entry.Path); protected != "" {
		r.failItem(progress.StageDirectories, &DeletionError{
			Path:     entry.Path,
			Reason:   ErrorInvalidPath,
			Original: fmt.Errorf("contains protected path %s", protected),
		})
		return
	}

	if r.requireBackup() && entry.FileCount > 0 {
		r.skip(progress.StageDirectories, entry.Path, "directory contents are not backed up")
		r.res.addWarning(fmt.Sprintf("kept %s: directory contents are not backed up", entry.Path))
		return
	}

	if r.dryRun {
		r.res.Succeeded++
		r.res.DeletedDirectories = append(r.res.DeletedDirectories, entry)
		return
	}

	// An empty directory must still be empty; anything else goes recursively.
	remove := os.RemoveAll
	if entry.Category == scanner.CategoryEmptyDirectory {
		remove = os.Remove
	}

	if delErr := r.deleteWithRetry(entry.Path, remove); delErr != nil {
		if delErr.Reason == ErrorFileNotFound {
			r.skip(progress.StageDirectories, entry.Path, "already gone")
			return
		}
		r.failItem(progress.StageDirectories, delErr)
		return
	}

	r.res.Succeeded++
	r.res.DeletedDirectories = append(r.res.DeletedDirectories, entry)
	r.logger.Debug("deleted directory", zap.String("path", entry.Path), zap.Int("files", entry.FileCount))
}

// protectedInside returns the first protected path below dir, or ""
func (r *run) protectedInside(dir string) string {
	var found string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == dir {
			return nil
		}
		if r.validator.IsProtected(path) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

// moduleDeps is the unused dependencies of one module, in scan order
type moduleDeps struct {
	name string
	path string
	deps []deps.Dependency
}

type declaration struct {
	name          string
	configuration string
}

// groupByModule groups by module directory, so a child module named like
// the root module stays separate from it
func groupByModule(root string, list []deps.Dependency) []moduleDeps {
	var groups []moduleDeps
	index := make(map[string]int)
	for _, d := range list {
		path := modulePath(root, d)
		i, ok := index[path]
		if !ok {
			i = len(groups)
			index[path] = i
			groups = append(groups, moduleDeps{name: d.Module, path: path})
		}
		groups[i].deps = append(groups[i].deps, d)
	}
	return groups
}

func (r *run) removeDependencies(list []deps.Dependency) error {
	progress.Emit(r.sink, progress.Event{Stage: progress.StageDependencies, Kind: progress.KindStart, Total: len(list)})

	done := 0
	for _, group := range groupByModule(r.res.ScanResult.ProjectPath, list) {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		r.rewriteModule(group)
		done += len(group.deps)
		progress.Emit(r.sink, progress.Event{Stage: progress.StageDependencies, Kind: progress.KindProgress, Path: group.name, Done: done, Total: len(list)})
	}

	progress.Emit(r.sink, progress.Event{Stage: progress.StageDependencies, Kind: progress.KindFinish, Done: len(r.res.RemovedDependencies), Total: len(list)})
	return nil
}

func modulePath(root string, d deps.Dependency) string {
	if d.ModulePath != "" {
		return d.ModulePath
	}
	if d.Module == scanner.RootModuleName {
		return root
	}
	return filepath.Join(root, d.Module)
}

func (r *run) rewriteModule(group moduleDeps) {
	buildFile := findBuildFile(group.path)
	if buildFile == "" {
		for _, d := range group.deps {
			r.skip(progress.StageDependencies, d.Coordinate(), "no build file")
		}
		r.res.addWarning(fmt.Sprintf("no build file found for module %s; %d dependencies kept", group.name, len(group.deps)))
		return
	}

	info, err := os.Stat(buildFile)
	if err != nil {
		r.failModule(group, buildFile, err)
		return
	}
	data, err := os.ReadFile(buildFile)
	if err != nil {
		r.failModule(group, buildFile, err)
		return
	}

	original := string(data)
	text := original
	var removed []deps.Dependency
	// One rewrite drops every line declaring name under configuration, so
	// later duplicates of a removed declaration were removed with it.
	gone := make(map[declaration]bool)
	for _, d := range group.deps {
		key := declaration{name: d.Name, configuration: d.Configuration}
		if gone[key] {
			removed = append(removed, d)
			continue
		}
		next := r.rewriter.RemoveDeclaration(text, d)
		if next == text {
			r.skip(progress.StageDependencies, d.Coordinate(), "declaration not found on a line of its own")
			continue
		}
		text = next
		gone[key] = true
		removed = append(removed, d)
	}

	if len(removed) == 0 {
		return
	}

	if !r.dryRun && text != original {
		if err := os.WriteFile(buildFile, []byte(text), info.Mode().Perm()); err != nil {
			r.failModule(moduleDeps{name: group.name, path: group.path, deps: removed}, buildFile, err)
			return
		}
		r.logger.Info("rewrote build file", zap.String("path", buildFile), zap.Int("removed", len(removed)))
	}

	r.res.Succeeded += len(removed)
	r.res.RemovedDependencies = append(r.res.RemovedDependencies, removed...)
}

func (r *run) failModule(group moduleDeps, buildFile string, err error) {
	delErr := CategorizeError(buildFile, err)
	r.res.Failed += len(group.deps)
	r.res.Failures = append(r.res.Failures, delErr)
	r.res.AddError(fmt.Sprintf("module %s: %v", group.name, delErr))
	r.logger.Warn("build file rewrite failed", zap.String("module", group.name), zap.String("path", buildFile), zap.Error(err))
	progress.Emit(r.sink, progress.Event{Stage: progress.StageDependencies, Kind: progress.KindError, Path: buildFile, Message: delErr.UserMessage()})
}

func (e *Executor) logSummary(res *CleanupResult) {
	e.logger.Info("cleanup finished",
		zap.Bool("dry_run", res.DryRun),
		zap.Stringer("state", res.State),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
		zap.Int("files", len(res.DeletedFiles)),
		zap.Int("directories", len(res.DeletedDirectories)),
		zap.Int("dependencies", len(res.RemovedDependencies)),
		zap.String("freed", utils.FormatBytes(res.FreedBytes())),
		zap.Duration("duration", res.Duration))
	for _, msg := range res.Errors {
		e.logger.Warn("cleanup error", zap.String("error", msg))
	}
}

func findBuildFile(dir string) string {
	for _, name := range []string{"build.gradle.kts", "build.gradle"} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// hasSegments reports whether the slash path rel contains segs as
// consecutive path segments
func hasSegments(rel string, segs ...string) bool {
	parts := strings.Split(strings.Trim(rel, "/"), "/")
	for i := 0; i+len(segs) <= len(parts); i++ {
		match := true
		for j, s := range segs {
			if parts[i+j] != s {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
