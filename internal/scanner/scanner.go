package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fenilsonani/codeclean/internal/config"
	"github.com/fenilsonani/codeclean/internal/deps"
	"github.com/fenilsonani/codeclean/internal/progress"
	"go.uber.org/zap"
)

// ErrInvalidRoot is returned when the project root is missing or not a directory
var ErrInvalidRoot = errors.New("invalid project root")

// RootModuleName names the module at the project root
const RootModuleName = "root"

// buildFileNames are looked up in order; the Kotlin script wins when both exist.
var buildFileNames = []string{"build.gradle.kts", "build.gradle"}

var projectMarkers = []string{"build.gradle", "build.gradle.kts", "settings.gradle", "settings.gradle.kts", "gradlew"}

var moduleSourceDirs = []string{
	filepath.Join("src", "main", "java"),
	filepath.Join("src", "main", "kotlin"),
	filepath.Join("src", "main", "res"),
}

// progressInterval is how many walked files pass between progress events
const progressInterval = 250

// Option configures a Scanner
type Option func(*Scanner)

// WithLogger sets the logger; nil keeps the no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSink sets the progress event sink
func WithSink(sink progress.Sink) Option {
	return func(s *Scanner) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// Scanner walks a Gradle project and classifies cleanable paths
type Scanner struct {
	config *config.Config
	logger *zap.Logger
	sink   progress.Sink
}

// New creates a new Scanner
func New(cfg *config.Config, opts ...Option) *Scanner {
	if cfg == nil {
		cfg = config.GetDefault()
	}
	s := &Scanner{
		config: cfg,
		logger: zap.NewNop(),
		sink:   progress.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan is a convenience wrapper around New(cfg, opts...).Scan(ctx, root)
func Scan(ctx context.Context, root string, cfg *config.Config, opts ...Option) (*ScanResult, error) {
	return New(cfg, opts...).Scan(ctx, root)
}

// Scan discovers modules and their dependencies, classifies every reachable
// non-protected path, and runs the risk assessment. The tree is not modified.
func (s *Scanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, abs)
	}

	result := NewScanResult(abs)
	start := result.StartedAt
	classifier := NewClassifier(abs, s.config, s.config.SafetyChecks.BackupDirectory)

	s.logger.Info("scanning project", zap.String("path", abs))
	progress.Emit(s.sink, progress.Event{Stage: progress.StageScan, Kind: progress.KindStart, Path: abs})

	s.checkProjectStructure(abs, result)

	counter := deps.NewUsageCounter(s.logger, 0)
	result.Modules = s.discoverModules(abs, classifier, counter)

	steps := []func(context.Context, *Classifier, *ScanResult) error{
		s.sweepTestDirectories,
		s.scanResources,
		s.walk,
	}
	for _, step := range steps {
		if err := step(ctx, classifier, result); err != nil {
			return nil, err
		}
	}

	if s.config.DependencyAnalysis.CheckUnusedDependencies {
		for _, m := range result.Modules {
			for _, d := range m.Dependencies {
				if d.Unused() {
					result.UnusedDependencies = append(result.UnusedDependencies, d)
				}
			}
		}
	}

	progress.Emit(s.sink, progress.Event{Stage: progress.StageAssess, Kind: progress.KindStart})
	Assess(result, s.config).apply(result)
	for _, w := range result.Warnings {
		progress.Emit(s.sink, progress.Event{Stage: progress.StageAssess, Kind: progress.KindWarning, Message: w})
	}

	result.Duration = time.Since(start)
	result.UpdateStats()

	progress.Emit(s.sink, progress.Event{
		Stage: progress.StageScan,
		Kind:  progress.KindFinish,
		Done:  result.Stats.TotalFiles + result.Stats.TotalDirectories,
		Bytes: result.Stats.TotalSize,
	})
	s.logSummary(result)

	return result, nil
}

func (s *Scanner) checkProjectStructure(root string, result *ScanResult) {
	for _, marker := range projectMarkers {
		if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
			return
		}
	}
	result.AddWarning("no Gradle build files found at the project root; this may not be a Gradle project")
}

// discoverModules returns the root module (when the root has a build file)
// followed by every non-hidden, non-protected child directory with one.
func (s *Scanner) discoverModules(root string, cl *Classifier, counter *deps.UsageCounter) []Module {
	var modules []Module

	if buildFile := findBuildFile(root); buildFile != "" {
		modules = append(modules, s.analyzeModule(RootModuleName, root, buildFile, counter))
	}

	children, err := os.ReadDir(root)
	if err != nil {
		s.logger.Warn("cannot list project root", zap.Error(err))
		return modules
	}

	for _, child := range children {
		if !child.IsDir() || strings.HasPrefix(child.Name(), ".") {
			continue
		}
		path := filepath.Join(root, child.Name())
		if cl.IsProtected(path) {
			continue
		}
		if buildFile := findBuildFile(path); buildFile != "" {
			modules = append(modules, s.analyzeModule(child.Name(), path, buildFile, counter))
		}
	}

	return modules
}

func (s *Scanner) analyzeModule(name, path, buildFile string, counter *deps.UsageCounter) Module {
	m := Module{Name: name, Path: path, BuildFile: buildFile}

	content, err := os.ReadFile(buildFile)
	if err != nil {
		s.logger.Warn("cannot read build file", zap.String("module", name), zap.String("path", buildFile), zap.Error(err))
	} else {
		m.Dependencies = deps.Extract(string(content), name)
	}

	for i := range m.Dependencies {
		d := &m.Dependencies[i]
		d.ModulePath = path
		d.Excluded = s.config.IsExcludedDependency(d.Name)
		if s.config.DependencyAnalysis.CheckUnusedDependencies {
			d.UsageCount = counter.Count(path, d.Name)
		}
	}

	for _, dir := range s.config.TestDirectories {
		if info, ok := s.dirInfo(filepath.Join(path, filepath.FromSlash(dir))); ok {
			m.TestDirectories = append(m.TestDirectories, info)
		}
	}
	for _, dir := range moduleSourceDirs {
		if info, ok := s.dirInfo(filepath.Join(path, dir)); ok {
			m.SourceDirectories = append(m.SourceDirectories, info)
		}
	}

	s.logger.Debug("module analyzed",
		zap.String("module", name),
		zap.Int("dependencies", len(m.Dependencies)),
		zap.Int("test_dirs", len(m.TestDirectories)))

	return m
}

// sweepTestDirectories classifies the files below each module's configured
// test directories.
func (s *Scanner) sweepTestDirectories(ctx context.Context, cl *Classifier, result *ScanResult) error {
	for _, m := range result.Modules {
		for _, dir := range s.config.TestDirectories {
			testRoot := filepath.Join(m.Path, filepath.FromSlash(dir))
			if !isDir(testRoot) || cl.IsProtected(testRoot) {
				continue
			}
			err := s.walkFiles(ctx, testRoot, cl, func(path string, info fs.FileInfo) {
				if entry, ok := cl.ClassifyFile(path, info); ok {
					result.Add(entry)
				}
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// scanResources matches each module's src/main/res tree against the
// configured resource globs. Patterns are tried against the path relative to
// src/main and relative to the module.
func (s *Scanner) scanResources(ctx context.Context, cl *Classifier, result *ScanResult) error {
	for _, m := range result.Modules {
		mainDir := filepath.Join(m.Path, "src", "main")
		resDir := filepath.Join(mainDir, "res")
		if !isDir(resDir) || cl.IsProtected(resDir) {
			continue
		}

		err := s.walkFiles(ctx, resDir, cl, func(path string, info fs.FileInfo) {
			if cl.IsProtected(path) {
				return
			}
			relMain, _ := filepath.Rel(mainDir, path)
			relModule, _ := filepath.Rel(m.Path, path)
			for _, pattern := range s.config.UnusedResourcePatterns {
				if matchPath(pattern, relMain) || matchPath(pattern, relModule) {
					result.Add(Entry{
						Path:     path,
						Size:     info.Size(),
						ModTime:  info.ModTime(),
						Category: CategoryUnusedResource,
						Reason:   "matches resource pattern " + pattern,
					})
					return
				}
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// walk visits the whole project once, classifying files and directories.
// Descendants of a recorded test directory are not classified as
// directories themselves; their files still are.
func (s *Scanner) walk(ctx context.Context, cl *Classifier, result *ScanResult) error {
	root := result.ProjectPath
	var testRoots []string
	walked := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn("cannot access path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		if d.IsDir() {
			if cl.IsProtected(path) {
				return filepath.SkipDir
			}
			if within(path, testRoots) {
				return nil
			}
			s.classifyDir(path, d, cl, result, &testRoots)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.logger.Warn("cannot stat file", zap.String("path", path), zap.Error(err))
			return nil
		}
		if entry, ok := cl.ClassifyFile(path, info); ok {
			result.Add(entry)
		}

		walked++
		if walked%progressInterval == 0 {
			progress.Emit(s.sink, progress.Event{
				Stage: progress.StageScan,
				Kind:  progress.KindProgress,
				Path:  path,
				Done:  walked,
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}
	return nil
}

func (s *Scanner) classifyDir(path string, d fs.DirEntry, cl *Classifier, result *ScanResult, testRoots *[]string) {
	children, err := os.ReadDir(path)
	if err != nil {
		s.logger.Warn("cannot list directory", zap.String("path", path), zap.Error(err))
		return
	}
	info, err := d.Info()
	if err != nil {
		s.logger.Warn("cannot stat directory", zap.String("path", path), zap.Error(err))
		return
	}

	entry, ok := cl.ClassifyDir(path, info, children)
	if !ok {
		return
	}

	if entry.Category == CategoryTestDirectory {
		size, count, clean := measureDir(path, cl)
		if !clean {
			// Recursive removal would reach protected paths.
			s.logger.Debug("test directory contains protected paths, not selecting it", zap.String("path", path))
			return
		}
		entry.Size, entry.FileCount = size, count
		if result.Add(entry) {
			*testRoots = append(*testRoots, path)
		}
		return
	}

	result.Add(entry)
}

// walkFiles calls fn for each non-directory below dir, skipping protected
// directories and honouring ctx.
func (s *Scanner) walkFiles(ctx context.Context, dir string, cl *Classifier, fn func(string, fs.FileInfo)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("cannot access path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && cl.IsProtected(path) {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		fn(path, info)
		return nil
	})
}

func (s *Scanner) dirInfo(path string) (DirInfo, bool) {
	if !isDir(path) {
		return DirInfo{}, false
	}
	info := DirInfo{Path: path}
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			info.Size += fi.Size()
			info.FileCount++
		}
		return nil
	})
	return info, true
}

func (s *Scanner) logSummary(result *ScanResult) {
	fields := []zap.Field{
		zap.Int("modules", result.Stats.Modules),
		zap.Int("files", result.Stats.TotalFiles),
		zap.Int("directories", result.Stats.TotalDirectories),
		zap.Int64("bytes", result.Stats.TotalSize),
		zap.Int("unused_dependencies", result.Stats.UnusedDependencies),
		zap.Int("high_risk", result.Stats.HighRisk),
		zap.Duration("duration", result.Duration),
	}
	for _, c := range append(FileCategories, DirectoryCategories...) {
		if n := result.Stats.ByCategory[c].Count; n > 0 {
			fields = append(fields, zap.Int(c.String(), n))
		}
	}
	s.logger.Info("scan complete", fields...)
	for _, w := range result.Warnings {
		s.logger.Warn(w)
	}
}

// measureDir sums file sizes below path and reports whether the subtree is
// free of protected paths.
func measureDir(path string, cl *Classifier) (int64, int, bool) {
	var size int64
	count := 0
	clean := true

	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if p != path && cl.IsProtected(p) {
			clean = false
			return filepath.SkipAll
		}
		if d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			size += fi.Size()
			count++
		}
		return nil
	})

	return size, count, clean
}

func findBuildFile(dir string) string {
	for _, name := range buildFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func within(path string, roots []string) bool {
	for _, root := range roots {
		if strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func matchPath(pattern, rel string) bool {
	ok, err := doublestar.Match(pattern, filepath.ToSlash(rel))
	return err == nil && ok
}
