package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fenilsonani/codeclean/internal/config"
	"github.com/fenilsonani/codeclean/internal/security"
)

// obsoleteExtensions match regardless of the configured obsolete patterns.
var obsoleteExtensions = map[string]bool{
	".tmp":    true,
	".temp":   true,
	".bak":    true,
	".old":    true,
	".backup": true,
	".log":    true,
	".cache":  true,
}

// obsoleteSubstrings mark a file as obsolete wherever they appear in its
// name. Source files caught this way under src/main are flagged high-risk.
var obsoleteSubstrings = []string{"backup", "temp", "log"}

// Classifier assigns a Category to a single path. It holds no state beyond
// its configuration, so the same path always classifies the same way.
type Classifier struct {
	validator        *security.PathValidator
	testDirs         []string
	testPatterns     []string
	obsoletePatterns []string
}

// NewClassifier builds a classifier for the project rooted at root.
// extraProtected directories (relative to root) are protected in addition to
// the configured ones.
func NewClassifier(root string, cfg *config.Config, extraProtected ...string) *Classifier {
	validator := security.NewPathValidator(root, cfg.ProtectedDirectories, cfg.ProtectedFiles)
	for _, dir := range extraProtected {
		validator.AddProtectedDir(dir)
	}

	testDirs := make([]string, 0, len(cfg.TestDirectories))
	for _, dir := range cfg.TestDirectories {
		if dir = strings.Trim(filepath.ToSlash(dir), "/"); dir != "" {
			testDirs = append(testDirs, dir)
		}
	}

	return &Classifier{
		validator:        validator,
		testDirs:         testDirs,
		testPatterns:     cfg.TestFilePatterns,
		obsoletePatterns: cfg.ObsoleteFilePatterns,
	}
}

// Validator returns the protected-path policy the classifier applies
func (c *Classifier) Validator() *security.PathValidator {
	return c.validator
}

// IsProtected reports whether path must never be touched
func (c *Classifier) IsProtected(path string) bool {
	return c.validator.IsProtected(path)
}

// ClassifyFile returns the entry for a non-protected file, or false when the
// file is protected or matches no category. Obsolete patterns take priority
// over test patterns.
func (c *Classifier) ClassifyFile(path string, info fs.FileInfo) (Entry, bool) {
	if c.IsProtected(path) {
		return Entry{}, false
	}

	name := filepath.Base(path)
	entry := Entry{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	if reason, ok := c.matchObsolete(name); ok {
		entry.Category = ObsoleteCategory(name)
		entry.Reason = reason
		return entry, true
	}

	if pattern, ok := matchAny(name, c.testPatterns); ok {
		entry.Category = CategoryTestFile
		entry.Reason = "matches test pattern " + pattern
		return entry, true
	}

	if rel, err := c.validator.Rel(path); err == nil {
		if dir, ok := c.underTestDir(slashDir(rel)); ok {
			entry.Category = CategoryTestFile
			entry.Reason = "inside test directory " + dir
			return entry, true
		}
	}

	return Entry{}, false
}

// ClassifyDir returns the entry for a directory that is a configured test
// directory or has no children at all. A test directory is never reported
// as empty.
func (c *Classifier) ClassifyDir(path string, info fs.FileInfo, children []fs.DirEntry) (Entry, bool) {
	if c.IsProtected(path) {
		return Entry{}, false
	}
	rel, err := c.validator.Rel(path)
	if err != nil || rel == "." {
		return Entry{}, false
	}

	entry := Entry{
		Path:    path,
		ModTime: info.ModTime(),
		IsDir:   true,
	}

	if dir, ok := c.matchTestDir(rel); ok {
		entry.Category = CategoryTestDirectory
		entry.Reason = "test directory " + dir
		return entry, true
	}

	// Protected children still count: removing the directory would take
	// them with it.
	if len(children) > 0 {
		return Entry{}, false
	}
	entry.Category = CategoryEmptyDirectory
	entry.Reason = "empty directory"
	return entry, true
}

// ObsoleteCategory sub-types an obsolete file by extension, then by name.
func ObsoleteCategory(name string) Category {
	lower := strings.ToLower(name)
	ext := filepath.Ext(lower)

	switch {
	case ext == ".bak" || ext == ".backup" || ext == ".old" || strings.Contains(lower, "backup"):
		return CategoryBackupFile
	case ext == ".tmp" || ext == ".temp" || ext == ".cache" || strings.Contains(lower, "temp"):
		return CategoryTempFile
	case ext == ".log" || strings.Contains(lower, "log"):
		return CategoryLogFile
	default:
		return CategoryObsoleteFile
	}
}

func (c *Classifier) matchObsolete(name string) (string, bool) {
	if pattern, ok := matchAny(name, c.obsoletePatterns); ok {
		return "matches obsolete pattern " + pattern, true
	}

	lower := strings.ToLower(name)
	if ext := filepath.Ext(lower); obsoleteExtensions[ext] {
		return "obsolete extension " + ext, true
	}

	for _, sub := range obsoleteSubstrings {
		if strings.Contains(lower, sub) {
			return "name contains " + sub, true
		}
	}
	return "", false
}

// matchTestDir reports whether rel is, or ends with, a configured test directory.
func (c *Classifier) matchTestDir(rel string) (string, bool) {
	for _, dir := range c.testDirs {
		if rel == dir || strings.HasSuffix(rel, "/"+dir) {
			return dir, true
		}
	}
	return "", false
}

// underTestDir reports whether relDir is inside a configured test directory.
func (c *Classifier) underTestDir(relDir string) (string, bool) {
	if relDir == "." {
		return "", false
	}
	padded := "/" + relDir + "/"
	for _, dir := range c.testDirs {
		if strings.Contains(padded, "/"+dir+"/") {
			return dir, true
		}
	}
	return "", false
}

func matchAny(name string, patterns []string) (string, bool) {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return pattern, true
		}
	}
	return "", false
}

func slashDir(rel string) string {
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		return rel[:i]
	}
	return "."
}
