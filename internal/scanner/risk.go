package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/codeclean/internal/config"
)

// Assessment is the outcome of a risk assessment over a scan result
type Assessment struct {
	HighRisk []Entry
	Warnings []string
}

// Assess flags high-risk files and produces warnings. It does not modify result.
//
// A file is high risk when it is larger than the configured threshold or its
// path relative to the project root contains one of the risk keywords,
// case-insensitively. Relative paths keep the outcome independent of where
// the project is checked out.
func Assess(result *ScanResult, cfg *config.Config) Assessment {
	var a Assessment

	threshold, err := cfg.LargeFileThresholdBytes()
	if err != nil || threshold <= 0 {
		threshold = 10 * 1024 * 1024
	}

	keywords := make([]string, 0, len(cfg.Risk.Keywords))
	for _, kw := range cfg.Risk.Keywords {
		if kw != "" {
			keywords = append(keywords, strings.ToLower(kw))
		}
	}

	for _, e := range result.Files() {
		if e.Size > threshold || containsAny(strings.ToLower(relPath(result.ProjectPath, e.Path)), keywords) {
			a.HighRisk = append(a.HighRisk, e)
		}
	}

	if n := len(a.HighRisk); n > 0 {
		a.Warnings = append(a.Warnings, fmt.Sprintf("%d high-risk files found", n))
	}

	if limit := cfg.SafetyChecks.MaxFilesPerOperation; result.CleanableCount() > limit {
		a.Warnings = append(a.Warnings, fmt.Sprintf(
			"file count %d exceeds the per-operation limit of %d", result.CleanableCount(), limit))
	}

	for _, dir := range result.Entries[CategoryTestDirectory] {
		rel := relPath(result.ProjectPath, dir.Path)
		for _, important := range cfg.Risk.ImportantDirectories {
			if containsSegments(rel, important) {
				a.Warnings = append(a.Warnings, fmt.Sprintf(
					"test directory %s is inside important directory %s", rel, important))
				break
			}
		}
	}

	return a
}

// apply copies an assessment into the result
func (a Assessment) apply(result *ScanResult) {
	result.HighRisk = a.HighRisk
	for _, w := range a.Warnings {
		result.AddWarning(w)
	}
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// containsSegments reports whether the slash path rel contains the segment
// sequence seq, e.g. "app/src/main/test" contains "src/main".
func containsSegments(rel, seq string) bool {
	seq = strings.Trim(filepath.ToSlash(seq), "/")
	if seq == "" {
		return false
	}
	return strings.Contains("/"+rel+"/", "/"+seq+"/")
}
