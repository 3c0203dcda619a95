package deps

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// namespaceAliases maps well-known artifacts to the package prefix their
// classes are imported under when it differs from the plain group.
var namespaceAliases = map[string]string{
	"androidx.core:core-ktx":               "androidx.core",
	"androidx.appcompat:appcompat":         "androidx.appcompat",
	"com.google.android.material:material": "com.google.android.material",
	"androidx.lifecycle:lifecycle":         "androidx.lifecycle",
	"androidx.navigation:navigation":       "androidx.navigation",
	"androidx.room:room":                   "androidx.room",
	"androidx.compose:compose":             "androidx.compose",
}

// sourceRoots are the module-relative directories searched for imports.
var sourceRoots = []string{
	filepath.Join("src", "main", "java"),
	filepath.Join("src", "main", "kotlin"),
}

var sourceExtensions = map[string]bool{".kt": true, ".java": true}

const defaultCacheSize = 1024

// Namespace returns the package prefix searched for when counting usage.
func Namespace(name string) string {
	if ns, ok := namespaceAliases[name]; ok {
		return ns
	}
	group, _, _ := strings.Cut(name, ":")
	return group
}

// UsageCounter counts import statements per namespace. Source file listings
// and contents are cached, so counting many dependencies of one module reads
// each file once. A counter is meant for a single scan.
type UsageCounter struct {
	logger   *zap.Logger
	contents *lru.Cache[string, string]
	listings map[string][]string
}

// NewUsageCounter creates a counter that keeps up to cacheSize file contents
// in memory; cacheSize <= 0 selects a default.
func NewUsageCounter(logger *zap.Logger, cacheSize int) *UsageCounter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	contents, err := lru.New[string, string](cacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &UsageCounter{
		logger:   logger,
		contents: contents,
		listings: make(map[string][]string),
	}
}

// Count returns the number of "import <namespace>" occurrences across the
// .kt and .java files under the module's src/main/java and src/main/kotlin.
// Unreadable files are skipped with a warning.
func (u *UsageCounter) Count(modulePath, name string) int {
	re := regexp.MustCompile(`import\s+` + regexp.QuoteMeta(Namespace(name)))

	total := 0
	for _, file := range u.sourceFiles(modulePath) {
		content, ok := u.read(file)
		if !ok {
			continue
		}
		total += len(re.FindAllStringIndex(content, -1))
	}
	return total
}

func (u *UsageCounter) read(path string) (string, bool) {
	if content, ok := u.contents.Get(path); ok {
		return content, true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		u.logger.Warn("cannot read source file", zap.String("path", path), zap.Error(err))
		return "", false
	}
	content := string(data)
	u.contents.Add(path, content)
	return content, true
}

func (u *UsageCounter) sourceFiles(modulePath string) []string {
	if files, ok := u.listings[modulePath]; ok {
		return files
	}

	var files []string
	for _, root := range sourceRoots {
		dir := filepath.Join(modulePath, root)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				u.logger.Warn("cannot walk source directory", zap.String("path", path), zap.Error(err))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && sourceExtensions[filepath.Ext(path)] {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			u.logger.Warn("source walk aborted", zap.String("dir", dir), zap.Error(err))
		}
	}

	u.listings[modulePath] = files
	return files
}
