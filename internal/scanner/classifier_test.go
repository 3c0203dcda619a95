package scanner

import (
	"os"
	"testing"

	"github.com/fenilsonani/codeclean/internal/config"
	"github.com/fenilsonani/codeclean/internal/testutil"
)

func TestObsoleteCategory(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"notes.bak", CategoryBackupFile},
		{"db.backup", CategoryBackupFile},
		{"layout.old", CategoryBackupFile},
		{"settings-backup.json", CategoryBackupFile},
		{"build.tmp", CategoryTempFile},
		{"index.cache", CategoryTempFile},
		{"temp_output.txt", CategoryTempFile},
		{"debug.log", CategoryLogFile},
		{"Thumbs.db", CategoryObsoleteFile},
		{".DS_Store", CategoryObsoleteFile},
	}

	for _, tt := range tests {
		if got := ObsoleteCategory(tt.name); got != tt.want {
			t.Errorf("ObsoleteCategory(%s) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestClassifyFile(t *testing.T) {
	f := testutil.NewFixture(t)
	cl := NewClassifier(f.RootDir, config.GetDefault())

	tests := []struct {
		rel  string
		want Category
		ok   bool
	}{
		{"app/crash.log", CategoryLogFile, true},
		{"app/session-log.txt", CategoryLogFile, true},
		{"app/old-backup.zip", CategoryBackupFile, true},
		{"app/.DS_Store", CategoryObsoleteFile, true},
		{"lib/src/com/RepoTest.java", CategoryTestFile, true},
		{"lib/src/com/TestUtils.kt", CategoryTestFile, true},
		{"lib/src/com/ParserSpec.kt", CategoryTestFile, true},
		{"lib/androidTest/data.json", CategoryTestFile, true},
		{"notes/mybackup.txt", CategoryBackupFile, true},
		{"notes/tempfile.txt", CategoryTempFile, true},
		{"notes/buildlog.txt", CategoryLogFile, true},
		{"lib/src/com/LoginActivity.kt", CategoryLogFile, true},
		{"lib/src/com/Dialog.kt", CategoryLogFile, true},
		{"lib/src/com/TemplateTest.kt", CategoryTempFile, true},
		{"lib/src/com/Attestation.kt", 0, false},
		{"lib/testdata/sample.json", 0, false},
		{"README.md", 0, false},
		{"app/build.gradle", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			path := f.CreateFile(tt.rel, []byte("x"))
			info, err := os.Lstat(path)
			if err != nil {
				t.Fatal(err)
			}

			entry, ok := cl.ClassifyFile(path, info)
			if ok != tt.ok {
				t.Fatalf("ClassifyFile ok = %v, want %v (reason %q)", ok, tt.ok, entry.Reason)
			}
			if ok && entry.Category != tt.want {
				t.Errorf("category = %s, want %s", entry.Category, tt.want)
			}
			if ok && entry.Reason == "" {
				t.Error("expected a reason")
			}
		})
	}
}

func TestClassifyDirNeverBothTestAndEmpty(t *testing.T) {
	f := testutil.NewFixture(t)
	cl := NewClassifier(f.RootDir, config.GetDefault())

	path := f.CreateDir("core/src/test")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	entry, ok := cl.ClassifyDir(path, info, nil)
	if !ok || entry.Category != CategoryTestDirectory {
		t.Errorf("empty test directory should be a test directory, got %s (%v)", entry.Category, ok)
	}
}

func TestClassifyDirRootIsNeverSelected(t *testing.T) {
	f := testutil.NewFixture(t)
	cl := NewClassifier(f.RootDir, config.GetDefault())

	info, err := os.Stat(f.RootDir)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cl.ClassifyDir(f.RootDir, info, nil); ok {
		t.Error("project root must never be selected")
	}
}

func TestCategoryText(t *testing.T) {
	for _, c := range append(append([]Category{}, FileCategories...), DirectoryCategories...) {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Category
		if err := back.UnmarshalText(text); err != nil || back != c {
			t.Errorf("category %s did not survive text round trip: %v", c, err)
		}
	}

	if _, err := ParseCategory("nonsense"); err == nil {
		t.Error("expected error for unknown category")
	}
	if !CategoryEmptyDirectory.IsDirectory() || CategoryLogFile.IsDirectory() {
		t.Error("IsDirectory is wrong")
	}
}
