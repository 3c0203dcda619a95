package scanner

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/fenilsonani/codeclean/internal/config"
	"github.com/fenilsonani/codeclean/internal/progress"
	"github.com/fenilsonani/codeclean/internal/testutil"
)

func scanFixture(t *testing.T, f *testutil.TestFixture, cfg *config.Config) *ScanResult {
	t.Helper()
	if cfg == nil {
		cfg = config.GetDefault()
	}
	result, err := Scan(context.Background(), f.RootDir, cfg)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return result
}

func relPaths(f *testutil.TestFixture, entries []Entry) []string {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, f.RelPath(e.Path))
	}
	sort.Strings(paths)
	return paths
}

func assertPaths(t *testing.T, got []string, want ...string) {
	t.Helper()
	sort.Strings(want)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got paths %v, want %v", got, want)
	}
}

// =============================================================================
// Scan Tests
// =============================================================================

func TestScanAndroidProject(t *testing.T) {
	f := testutil.NewAndroidProject(t)
	result := scanFixture(t, f, nil)

	assertPaths(t, relPaths(f, result.Entries[CategoryTestFile]),
		"app/src/androidTest/java/com/example/UiTest.kt",
		"app/src/test/java/com/example/MainActivityTest.kt",
		"app/src/test/java/com/example/fixtures.json",
	)
	assertPaths(t, relPaths(f, result.Entries[CategoryBackupFile]), "notes.bak")
	assertPaths(t, relPaths(f, result.Entries[CategoryLogFile]), "app/debug.log")
	assertPaths(t, relPaths(f, result.Entries[CategoryUnusedResource]), "app/src/main/res/mipmap-hdpi/ic_launcher.png")
	assertPaths(t, relPaths(f, result.Entries[CategoryTestDirectory]), "app/src/androidTest", "app/src/test")
	assertPaths(t, relPaths(f, result.Entries[CategoryEmptyDirectory]), "app/unused")

	if result.CleanableCount() != 6 {
		t.Errorf("expected 6 cleanable files, got %d", result.CleanableCount())
	}
	if result.Stats.TotalFiles != 6 || result.Stats.TotalDirectories != 3 {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}

	for _, d := range result.Entries[CategoryTestDirectory] {
		if strings.HasSuffix(d.Path, filepath.Join("src", "test")) && d.FileCount != 2 {
			t.Errorf("expected 2 files in %s, got %d", d.Path, d.FileCount)
		}
	}
}

func TestScanModulesAndDependencies(t *testing.T) {
	f := testutil.NewAndroidProject(t)
	result := scanFixture(t, f, nil)

	if len(result.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(result.Modules))
	}
	if result.Modules[0].Name != RootModuleName || result.Modules[1].Name != "app" {
		t.Errorf("unexpected module names: %s, %s", result.Modules[0].Name, result.Modules[1].Name)
	}

	app := result.Modules[1]
	if len(app.Dependencies) != 5 {
		t.Fatalf("expected 5 app dependencies, got %d", len(app.Dependencies))
	}
	if len(app.TestDirectories) != 2 {
		t.Errorf("expected 2 test directories on app, got %d", len(app.TestDirectories))
	}
	if len(app.SourceDirectories) != 2 {
		t.Errorf("expected java and res source directories, got %d", len(app.SourceDirectories))
	}

	var unused []string
	for _, d := range result.UnusedDependencies {
		unused = append(unused, d.Name)
	}
	// junit is only imported from test sources, which are not searched.
	if strings.Join(unused, ",") != "androidx.room:room,junit:junit" {
		t.Errorf("unexpected unused dependencies: %v", unused)
	}

	for _, d := range app.Dependencies {
		if d.Name == "androidx.core:core-ktx" && (!d.Excluded || d.Unused()) {
			t.Errorf("core-ktx should be excluded and kept: %+v", d)
		}
		if d.Name == "com.squareup.okhttp3:okhttp" && d.UsageCount != 1 {
			t.Errorf("expected okhttp usage 1, got %d", d.UsageCount)
		}
	}
}

func TestScanDependencyAnalysisDisabled(t *testing.T) {
	f := testutil.NewAndroidProject(t)
	cfg := config.GetDefault()
	cfg.DependencyAnalysis.CheckUnusedDependencies = false

	result := scanFixture(t, f, cfg)
	if len(result.UnusedDependencies) != 0 {
		t.Errorf("expected no unused dependencies, got %d", len(result.UnusedDependencies))
	}
	if len(result.Modules[1].Dependencies) != 5 {
		t.Error("declarations should still be listed")
	}
}

func TestScanFooTestAndRoom(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("build.gradle", []byte("dependencies {\n    implementation 'androidx.room:room:2.6.1'\n}\n"))
	f.CreateFile("src/test/FooTest.kt", []byte("class FooTest\n"))

	result := scanFixture(t, f, nil)

	assertPaths(t, relPaths(f, result.Entries[CategoryTestFile]), "src/test/FooTest.kt")
	if len(result.UnusedDependencies) != 1 || result.UnusedDependencies[0].Name != "androidx.room:room" {
		t.Errorf("expected only androidx.room:room unused, got %+v", result.UnusedDependencies)
	}
	if result.UnusedDependencies[0].Module != RootModuleName {
		t.Errorf("expected module root, got %s", result.UnusedDependencies[0].Module)
	}
}

func TestScanProtectedExclusion(t *testing.T) {
	f := testutil.NewAndroidProject(t)
	protected := []string{
		f.CreateFile("build/outputs/app.log", []byte("x")),
		f.CreateFile(".git/objects/tmp.tmp", []byte("x")),
		f.CreateFile(".gradle/8.2/cache.cache", []byte("x")),
		f.CreateFile("gradle/wrapper/WrapperTest.kt", []byte("x")),
		f.CreateFile("src/main/java/OldTest.kt", []byte("x")),
		f.CreateFile("buildSrc/src/test/DepsTest.kt", []byte("x")),
		f.CreateFile("app/src/test/README.md", []byte("x")),
		f.CreateFile("app/proguard-rules.pro", []byte("x")),
	}
	f.CreateDir("build/empty")
	f.CreateDir("src/main/empty")

	result := scanFixture(t, f, nil)

	for _, e := range result.All() {
		rel := f.RelPath(e.Path)
		for _, p := range protected {
			if e.Path == p {
				t.Errorf("protected file selected: %s", rel)
			}
		}
		for _, prefix := range []string{"build/", ".git/", ".gradle/", "gradle/", "src/main/", "buildSrc/"} {
			if strings.HasPrefix(rel+"/", prefix) {
				t.Errorf("entry under protected directory: %s", rel)
			}
		}
	}

	// src/test now holds a protected README, so removing it recursively
	// would delete the README: it must not be selected as a directory.
	for _, d := range result.Entries[CategoryTestDirectory] {
		if f.RelPath(d.Path) == "app/src/test" {
			t.Error("test directory containing a protected file was selected")
		}
	}
}

func TestScanCategoriesAreDisjoint(t *testing.T) {
	f := testutil.NewAndroidProject(t)
	// Matches both an obsolete and a test pattern.
	f.CreateFile("app/src/test/java/CacheTest.kt.bak", []byte("x"))
	f.CreateFile("app/src/main/res/mipmap-xhdpi/ic_launcher_round.png", []byte("x"))

	result := scanFixture(t, f, nil)

	seen := make(map[string]Category)
	for c, entries := range result.Entries {
		for _, e := range entries {
			if prev, dup := seen[e.Path]; dup {
				t.Errorf("%s appears in %s and %s", e.Path, prev, c)
			}
			seen[e.Path] = c
		}
	}

	if c := seen[f.Path("app/src/test/java/CacheTest.kt.bak")]; c != CategoryBackupFile {
		t.Errorf("obsolete pattern should win over test pattern, got %s", c)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	f := testutil.NewAndroidProject(t)

	first := scanFixture(t, f, nil)
	second := scanFixture(t, f, nil)

	key := func(r *ScanResult) string {
		var parts []string
		for _, e := range r.All() {
			parts = append(parts, e.Category.String()+":"+e.Path)
		}
		for _, d := range r.UnusedDependencies {
			parts = append(parts, "dep:"+d.Module+":"+d.Name)
		}
		sort.Strings(parts)
		return strings.Join(parts, "\n")
	}

	if key(first) != key(second) {
		t.Errorf("scans differ:\n%s\n---\n%s", key(first), key(second))
	}
}

func TestScanDoesNotModifyTree(t *testing.T) {
	f := testutil.NewAndroidProject(t)
	before := f.Snapshot()

	scanFixture(t, f, nil)

	after := f.Snapshot()
	if len(before) != len(after) {
		t.Fatalf("tree changed: %d paths before, %d after", len(before), len(after))
	}
	for path, sum := range before {
		if after[path] != sum {
			t.Errorf("%s changed during scan", path)
		}
	}
}

func TestScanDirectoryRules(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("build.gradle", []byte(""))
	f.CreateDir("lib/test/java/empty")        // nested empty dir inside a test dir
	f.CreateFile("docs/README.md", []byte("")) // only a protected child
	f.CreateDir("tools/a/b")                   // b is empty, a and tools are not

	result := scanFixture(t, f, nil)

	assertPaths(t, relPaths(f, result.Entries[CategoryTestDirectory]), "lib/test")
	assertPaths(t, relPaths(f, result.Entries[CategoryEmptyDirectory]), "tools/a/b")
}

func TestScanExcludesBackupDirectory(t *testing.T) {
	f := testutil.NewAndroidProject(t)
	f.CreateFile(".cleanup_backup/backup_20250101_120000/notes.bak", []byte("old"))

	result := scanFixture(t, f, nil)
	for _, e := range result.All() {
		if strings.HasPrefix(f.RelPath(e.Path), ".cleanup_backup") {
			t.Errorf("backup directory content selected: %s", e.Path)
		}
	}
}

func TestScanWarnsWithoutGradleMarkers(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("notes.tmp", []byte("x"))

	result := scanFixture(t, f, nil)
	if len(result.Modules) != 0 {
		t.Errorf("expected no modules, got %d", len(result.Modules))
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Gradle") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a Gradle marker warning, got %v", result.Warnings)
	}
	assertPaths(t, relPaths(f, result.Entries[CategoryTempFile]), "notes.tmp")
}

func TestScanInvalidRoot(t *testing.T) {
	f := testutil.NewFixture(t)
	file := f.CreateFile("plain.txt", []byte("x"))

	for _, root := range []string{filepath.Join(f.RootDir, "missing"), file} {
		result, err := Scan(context.Background(), root, config.GetDefault())
		if !errors.Is(err, ErrInvalidRoot) {
			t.Errorf("Scan(%s) error = %v, want ErrInvalidRoot", root, err)
		}
		if result != nil {
			t.Errorf("Scan(%s) returned a result alongside the error", root)
		}
	}
}

func TestScanCancelled(t *testing.T) {
	f := testutil.NewAndroidProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, f.RootDir, config.GetDefault())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScanEmitsEvents(t *testing.T) {
	f := testutil.NewAndroidProject(t)

	var events []progress.Event
	sink := progress.SinkFunc(func(e progress.Event) { events = append(events, e) })

	if _, err := Scan(context.Background(), f.RootDir, config.GetDefault(), WithSink(sink)); err != nil {
		t.Fatal(err)
	}

	if len(events) < 2 {
		t.Fatalf("expected start and finish events, got %d", len(events))
	}
	if events[0].Kind != progress.KindStart || events[0].Stage != progress.StageScan {
		t.Errorf("first event should be scan start, got %+v", events[0])
	}
	last := events[len(events)-1]
	if last.Kind != progress.KindFinish || last.Done != 9 {
		t.Errorf("last event should be scan finish with 9 items, got %+v", last)
	}
}

func TestScanResultAddDeduplicates(t *testing.T) {
	r := NewScanResult("/p")
	if !r.Add(Entry{Path: "/p/a.tmp", Category: CategoryTempFile}) {
		t.Fatal("first add should succeed")
	}
	if r.Add(Entry{Path: "/p/a.tmp", Category: CategoryTestFile}) {
		t.Error("second add of the same path should be ignored")
	}
	if len(r.Entries[CategoryTestFile]) != 0 {
		t.Error("duplicate leaked into another category")
	}

	r.AddWarning("w")
	r.AddWarning("w")
	if len(r.Warnings) != 1 {
		t.Errorf("warnings not deduplicated: %v", r.Warnings)
	}
}
