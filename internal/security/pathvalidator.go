package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// buildCriticalNames are files whose removal breaks the Gradle build outright.
// They are refused at deletion time even if a custom config stops protecting
// them during the scan.
var buildCriticalNames = map[string]struct{}{
	"build.gradle":        {},
	"build.gradle.kts":    {},
	"settings.gradle":     {},
	"settings.gradle.kts": {},
}

// PathValidator decides which paths inside a project may never be touched.
//
// A path is protected when its base name is one of the protected file names,
// or when its slash-separated path relative to the project root starts with
// one of the protected directory prefixes. The prefix test is textual, so a
// "build" entry also covers "buildSrc".
type PathValidator struct {
	root           string
	protectedDirs  []string
	protectedFiles map[string]struct{}
}

// NewPathValidator creates a validator for the project rooted at root.
func NewPathValidator(root string, protectedDirs, protectedFiles []string) *PathValidator {
	pv := &PathValidator{
		root:           filepath.Clean(root),
		protectedFiles: make(map[string]struct{}, len(protectedFiles)),
	}
	for _, dir := range protectedDirs {
		pv.AddProtectedDir(dir)
	}
	for _, name := range protectedFiles {
		pv.protectedFiles[name] = struct{}{}
	}
	return pv
}

// Root returns the project root the validator was built for.
func (pv *PathValidator) Root() string {
	return pv.root
}

// AddProtectedDir adds a protected directory prefix, relative to the root.
func (pv *PathValidator) AddProtectedDir(dir string) {
	dir = strings.Trim(filepath.ToSlash(dir), "/")
	if dir == "" || dir == "." {
		return
	}
	pv.protectedDirs = append(pv.protectedDirs, dir)
}

// Rel returns path relative to the project root with forward slashes.
func (pv *PathValidator) Rel(path string) (string, error) {
	rel, err := filepath.Rel(pv.root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsProtected reports whether path (absolute, or relative to the root) is
// covered by a protected file name or protected directory prefix.
func (pv *PathValidator) IsProtected(path string) bool {
	if _, ok := pv.protectedFiles[filepath.Base(path)]; ok {
		return true
	}
	return pv.IsProtectedDir(path)
}

// IsProtectedDir reports whether path falls under a protected directory prefix.
func (pv *PathValidator) IsProtectedDir(path string) bool {
	rel := filepath.ToSlash(path)
	if filepath.IsAbs(path) {
		var err error
		if rel, err = pv.Rel(path); err != nil {
			return false
		}
	}
	if rel == "." {
		return false
	}
	for _, prefix := range pv.protectedDirs {
		if strings.HasPrefix(rel, prefix) {
			return true
		}
	}
	return false
}

// ValidatePathForDeletion is the last check before anything is removed:
// the path must be absolute and clean, strictly inside the project root
// (also after resolving symlinked parents), not protected, and not a
// build-critical file.
func (pv *PathValidator) ValidatePathForDeletion(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}
	if filepath.Clean(path) != path {
		return fmt.Errorf("path contains suspicious elements: %s", path)
	}

	rel, err := pv.Rel(path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return fmt.Errorf("refusing to delete path outside project: %s", path)
	}

	// The entry itself may be a symlink and is removed as such; only its
	// parent chain has to stay within the project.
	if err := pv.checkResolvedParent(path); err != nil {
		return err
	}

	if pv.IsProtected(path) {
		return fmt.Errorf("refusing to delete protected path: %s", rel)
	}
	if IsBuildCritical(filepath.Base(path)) {
		return fmt.Errorf("refusing to delete build file: %s", rel)
	}
	return nil
}

func (pv *PathValidator) checkResolvedParent(path string) error {
	root, err := filepath.EvalSymlinks(pv.root)
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}

	parent, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	if parent != root && !strings.HasPrefix(parent, root+string(filepath.Separator)) {
		return fmt.Errorf("path escapes project through a symlink: %s", path)
	}
	return nil
}

// IsBuildCritical reports whether a file name is a Gradle build or settings script.
func IsBuildCritical(name string) bool {
	_, ok := buildCriticalNames[name]
	return ok
}

// ValidateGlobPattern validates that a glob pattern is safe
func ValidateGlobPattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("glob pattern is empty")
	}
	if strings.Contains(pattern, "..") {
		return fmt.Errorf("glob pattern contains directory traversal: %s", pattern)
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	return nil
}
