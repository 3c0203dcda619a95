package scanner

import (
	"fmt"
	"time"

	"github.com/fenilsonani/codeclean/internal/deps"
)

// Category classifies a cleanable path
type Category int

const (
	CategoryTestFile Category = iota
	CategoryObsoleteFile
	CategoryBackupFile
	CategoryTempFile
	CategoryLogFile
	CategoryUnusedResource
	CategoryTestDirectory
	CategoryEmptyDirectory
)

// FileCategories lists the file categories in report and deletion order
var FileCategories = []Category{
	CategoryTestFile,
	CategoryObsoleteFile,
	CategoryBackupFile,
	CategoryTempFile,
	CategoryLogFile,
	CategoryUnusedResource,
}

// DirectoryCategories lists the directory categories in deletion order
var DirectoryCategories = []Category{
	CategoryTestDirectory,
	CategoryEmptyDirectory,
}

var categoryNames = map[Category]string{
	CategoryTestFile:       "test_file",
	CategoryObsoleteFile:   "obsolete_file",
	CategoryBackupFile:     "backup_file",
	CategoryTempFile:       "temp_file",
	CategoryLogFile:        "log_file",
	CategoryUnusedResource: "unused_resource",
	CategoryTestDirectory:  "test_directory",
	CategoryEmptyDirectory: "empty_directory",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Label returns a title for reports, e.g. "Test files"
func (c Category) Label() string {
	switch c {
	case CategoryTestFile:
		return "Test files"
	case CategoryObsoleteFile:
		return "Obsolete files"
	case CategoryBackupFile:
		return "Backup files"
	case CategoryTempFile:
		return "Temp files"
	case CategoryLogFile:
		return "Log files"
	case CategoryUnusedResource:
		return "Unused resources"
	case CategoryTestDirectory:
		return "Test directories"
	case CategoryEmptyDirectory:
		return "Empty directories"
	default:
		return c.String()
	}
}

// IsDirectory reports whether entries of this category are directories
func (c Category) IsDirectory() bool {
	return c == CategoryTestDirectory || c == CategoryEmptyDirectory
}

// MarshalText renders the category by name in JSON and YAML reports
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a category name
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory parses a category name such as "temp_file"
func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category: %s", name)
}

// Entry is a single cleanable path found during a scan
type Entry struct {
	Path      string    `json:"path" yaml:"path"`
	Size      int64     `json:"size" yaml:"size"`
	ModTime   time.Time `json:"mod_time" yaml:"mod_time"`
	Category  Category  `json:"category" yaml:"category"`
	Reason    string    `json:"reason" yaml:"reason"` // Why this path was flagged for cleanup
	Protected bool      `json:"protected,omitempty" yaml:"protected,omitempty"`
	IsDir     bool      `json:"is_dir,omitempty" yaml:"is_dir,omitempty"`
	FileCount int       `json:"file_count,omitempty" yaml:"file_count,omitempty"` // directories only
}

// DirInfo summarises a test or source directory of a module
type DirInfo struct {
	Path      string `json:"path" yaml:"path"`
	Size      int64  `json:"size" yaml:"size"`
	FileCount int    `json:"file_count" yaml:"file_count"`
}

// Module is the project root or an immediate child directory with a build file
type Module struct {
	Name              string            `json:"name" yaml:"name"`
	Path              string            `json:"path" yaml:"path"`
	BuildFile         string            `json:"build_file" yaml:"build_file"`
	Dependencies      []deps.Dependency `json:"dependencies" yaml:"dependencies"`
	TestDirectories   []DirInfo         `json:"test_directories,omitempty" yaml:"test_directories,omitempty"`
	SourceDirectories []DirInfo         `json:"source_directories,omitempty" yaml:"source_directories,omitempty"`
}

// CategoryStats is the count and size of one category
type CategoryStats struct {
	Count int   `json:"count" yaml:"count"`
	Size  int64 `json:"size" yaml:"size"`
}

// Stats summarises a ScanResult
type Stats struct {
	ByCategory         map[Category]CategoryStats `json:"by_category" yaml:"by_category"`
	TotalFiles         int                        `json:"total_files" yaml:"total_files"`
	TotalDirectories   int                        `json:"total_directories" yaml:"total_directories"`
	TotalSize          int64                      `json:"total_size" yaml:"total_size"`
	Modules            int                        `json:"modules" yaml:"modules"`
	UnusedDependencies int                        `json:"unused_dependencies" yaml:"unused_dependencies"`
	HighRisk           int                        `json:"high_risk" yaml:"high_risk"`
}

// ScanResult represents the result of a scan operation.
// Entry groups are disjoint by path.
type ScanResult struct {
	ProjectPath        string                `json:"project_path" yaml:"project_path"`
	StartedAt          time.Time             `json:"started_at" yaml:"started_at"`
	Duration           time.Duration         `json:"duration" yaml:"duration"`
	Modules            []Module              `json:"modules" yaml:"modules"`
	Entries            map[Category][]Entry  `json:"entries" yaml:"entries"`
	UnusedDependencies []deps.Dependency     `json:"unused_dependencies" yaml:"unused_dependencies"`
	HighRisk           []Entry               `json:"high_risk" yaml:"high_risk"`
	Warnings           []string              `json:"warnings" yaml:"warnings"`
	Stats              Stats                 `json:"stats" yaml:"stats"`

	seen map[string]Category
}

// NewScanResult creates an empty result for the project at path
func NewScanResult(projectPath string) *ScanResult {
	return &ScanResult{
		ProjectPath: projectPath,
		StartedAt:   time.Now(),
		Entries:     make(map[Category][]Entry),
		seen:        make(map[string]Category),
	}
}

// Add records an entry unless its path has already been classified.
// It reports whether the entry was added.
func (r *ScanResult) Add(e Entry) bool {
	if r.seen == nil {
		r.seen = make(map[string]Category)
		for c, entries := range r.Entries {
			for _, existing := range entries {
				r.seen[existing.Path] = c
			}
		}
	}
	if _, dup := r.seen[e.Path]; dup {
		return false
	}
	if r.Entries == nil {
		r.Entries = make(map[Category][]Entry)
	}
	r.seen[e.Path] = e.Category
	r.Entries[e.Category] = append(r.Entries[e.Category], e)
	return true
}

// Has reports whether path has been classified
func (r *ScanResult) Has(path string) bool {
	_, ok := r.seen[path]
	return ok
}

// AddWarning appends a warning unless the same text is already recorded
func (r *ScanResult) AddWarning(msg string) {
	for _, w := range r.Warnings {
		if w == msg {
			return
		}
	}
	r.Warnings = append(r.Warnings, msg)
}

// Files returns the cleanable file entries in category order
func (r *ScanResult) Files() []Entry {
	var files []Entry
	for _, c := range FileCategories {
		files = append(files, r.Entries[c]...)
	}
	return files
}

// Directories returns test directories followed by empty directories
func (r *ScanResult) Directories() []Entry {
	var dirs []Entry
	for _, c := range DirectoryCategories {
		dirs = append(dirs, r.Entries[c]...)
	}
	return dirs
}

// All returns every entry, files first
func (r *ScanResult) All() []Entry {
	return append(r.Files(), r.Directories()...)
}

// CleanableCount is the number of cleanable files; it is the figure the
// per-operation ceiling applies to.
func (r *ScanResult) CleanableCount() int {
	n := 0
	for _, c := range FileCategories {
		n += len(r.Entries[c])
	}
	return n
}

// CleanableSize is the total size of cleanable files
func (r *ScanResult) CleanableSize() int64 {
	var total int64
	for _, c := range FileCategories {
		for _, e := range r.Entries[c] {
			total += e.Size
		}
	}
	return total
}

// UpdateStats recomputes Stats from the current entries
func (r *ScanResult) UpdateStats() {
	stats := Stats{
		ByCategory:         make(map[Category]CategoryStats),
		Modules:            len(r.Modules),
		UnusedDependencies: len(r.UnusedDependencies),
		HighRisk:           len(r.HighRisk),
	}

	for c, entries := range r.Entries {
		cs := CategoryStats{Count: len(entries)}
		for _, e := range entries {
			cs.Size += e.Size
		}
		stats.ByCategory[c] = cs
		if c.IsDirectory() {
			stats.TotalDirectories += cs.Count
		} else {
			stats.TotalFiles += cs.Count
			stats.TotalSize += cs.Size
		}
	}

	r.Stats = stats
}
