// Package testutil provides test helpers and fixtures for codeclean tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

// TestFixture is a throwaway Gradle project on disk
type TestFixture struct {
	T       *testing.T
	RootDir string // Project root (auto-cleaned)
}

// NewFixture creates an empty project directory
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	return &TestFixture{
		T:       t,
		RootDir: t.TempDir(),
	}
}

// NewAndroidProject creates a small two-module Android project:
// a root build script, settings, and an "app" module with main sources,
// unit tests, instrumented tests, launcher resources and some leftovers.
func NewAndroidProject(t *testing.T) *TestFixture {
	t.Helper()

	f := NewFixture(t)

	f.CreateFile("settings.gradle.kts", []byte("rootProject.name = \"demo\"\ninclude(\":app\")\n"))
	f.CreateFile("build.gradle.kts", []byte(RootBuildScript))
	f.CreateFile("gradlew", []byte("#!/bin/sh\n"))
	f.CreateFile("README.md", []byte("# demo\n"))

	f.CreateFile("app/build.gradle.kts", []byte(AppBuildScript))
	f.CreateFile("app/src/main/AndroidManifest.xml", []byte("<manifest/>\n"))
	f.CreateFile("app/src/main/java/com/example/MainActivity.kt", []byte(
		"package com.example\n\nimport androidx.appcompat.app.AppCompatActivity\nimport com.squareup.okhttp3.OkHttpClient\n\nclass MainActivity : AppCompatActivity()\n"))
	f.CreateFile("app/src/main/res/mipmap-hdpi/ic_launcher.png", []byte("png"))
	f.CreateFile("app/src/main/res/values/strings.xml", []byte("<resources/>\n"))

	f.CreateFile("app/src/test/java/com/example/MainActivityTest.kt", []byte("class MainActivityTest\n"))
	f.CreateFile("app/src/test/java/com/example/fixtures.json", []byte("{}\n"))
	f.CreateFile("app/src/androidTest/java/com/example/UiTest.kt", []byte("class UiTest\n"))

	f.CreateFile("app/debug.log", []byte("log line\n"))
	f.CreateFile("notes.bak", []byte("old notes\n"))
	f.CreateDir("app/unused")

	return f
}

// RootBuildScript is the root build.gradle.kts of NewAndroidProject
const RootBuildScript = `plugins {
    id("com.android.application") version "8.2.0" apply false
}
`

// AppBuildScript is app/build.gradle.kts of NewAndroidProject. okhttp and
// appcompat are imported by MainActivity, room is not imported anywhere,
// core-ktx is excluded by default.
const AppBuildScript = `plugins {
    id("com.android.application")
}

dependencies {
    implementation("androidx.core:core-ktx:1.12.0")
    implementation("androidx.appcompat:appcompat:1.6.1")
    implementation("com.squareup.okhttp3:okhttp:4.12.0")
    implementation("androidx.room:room:2.6.1")
    testImplementation("junit:junit:4.13.2")
}
`

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateSizedFile creates a file of exactly size bytes
func (f *TestFixture) CreateSizedFile(relPath string, size int) string {
	f.T.Helper()
	return f.CreateFile(relPath, make([]byte, size))
}

// CreateRandomFile creates a file with random content
func (f *TestFixture) CreateRandomFile(relPath string, size int) string {
	f.T.Helper()
	content := make([]byte, size)
	rand.Read(content)
	return f.CreateFile(relPath, content)
}

// CreateFileWithAge creates a file and sets its modification time to the past
func (f *TestFixture) CreateFileWithAge(relPath string, content []byte, age time.Duration) string {
	f.T.Helper()

	fullPath := f.CreateFile(relPath, content)
	oldTime := time.Now().Add(-age)

	if err := os.Chtimes(fullPath, oldTime, oldTime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateManyFiles creates n small files named <prefix><i><suffix> under dir
func (f *TestFixture) CreateManyFiles(dir, prefix, suffix string, n int) []string {
	f.T.Helper()

	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rel := filepath.Join(dir, prefix+strconv.Itoa(i)+suffix)
		paths = append(paths, f.CreateFile(rel, []byte("x")))
	}
	return paths
}

// =============================================================================
// Directory Helpers
// =============================================================================

// CreateDir creates a directory and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateReadOnlyDir makes a directory read-only after placing a file in it,
// so the file cannot be deleted. Permissions are restored on cleanup.
func (f *TestFixture) CreateReadOnlyDir(relPath, fileName string) (string, string) {
	f.T.Helper()

	dirPath := f.CreateDir(relPath)
	filePath := f.CreateFile(filepath.Join(relPath, fileName), []byte("trapped"))
	if err := os.Chmod(dirPath, 0555); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", dirPath, err)
	}

	f.T.Cleanup(func() {
		os.Chmod(dirPath, 0755)
	})

	return dirPath, filePath
}

// =============================================================================
// Symlink Helpers
// =============================================================================

// CreateSymlink creates a symbolic link
func (f *TestFixture) CreateSymlink(target, linkPath string) string {
	f.T.Helper()

	fullLinkPath := f.Path(linkPath)
	if err := os.MkdirAll(filepath.Dir(fullLinkPath), 0755); err != nil {
		f.T.Fatalf("failed to create directory for %s: %v", fullLinkPath, err)
	}

	if err := os.Symlink(target, fullLinkPath); err != nil {
		f.T.Skipf("symlinks not supported: %v", err)
	}

	return fullLinkPath
}

// =============================================================================
// Path Helpers
// =============================================================================

// Path returns the full path for a slash-separated relative path
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, filepath.FromSlash(relPath))
}

// RelPath returns the slash-separated path relative to the fixture root
func (f *TestFixture) RelPath(fullPath string) string {
	rel, _ := filepath.Rel(f.RootDir, fullPath)
	return filepath.ToSlash(rel)
}

// ReadFile returns the content of a file in the fixture
func (f *TestFixture) ReadFile(relPath string) string {
	f.T.Helper()

	data, err := os.ReadFile(f.Path(relPath))
	if err != nil {
		f.T.Fatalf("failed to read %s: %v", relPath, err)
	}
	return string(data)
}

// =============================================================================
// Snapshot Helpers
// =============================================================================

// Snapshot maps every path under the root (slash-separated, relative) to a
// content hash; directories map to "dir". Paths under any of skip are left out.
func (f *TestFixture) Snapshot(skip ...string) map[string]string {
	f.T.Helper()

	snap := make(map[string]string)
	err := filepath.WalkDir(f.RootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := f.RelPath(path)
		if rel == "." {
			return nil
		}
		for _, prefix := range skip {
			if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if d.IsDir() {
			snap[rel] = "dir"
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			target, _ := os.Readlink(path)
			snap[rel] = "link:" + target
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		snap[rel] = hex.EncodeToString(sum[:])
		return nil
	})
	if err != nil {
		f.T.Fatalf("failed to snapshot %s: %v", f.RootDir, err)
	}
	return snap
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// FileExists checks if a path exists (without following a final symlink)
func (f *TestFixture) FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// AssertFileExists fails the test if the file doesn't exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if the file exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected file to not exist: %s", path)
	}
}
