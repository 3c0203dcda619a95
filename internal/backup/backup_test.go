package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fenilsonani/codeclean/internal/scanner"
	"github.com/fenilsonani/codeclean/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func plentyOfSpace(context.Context, string) (uint64, error) { return 1 << 40, nil }

func newTestManager(opts ...Option) *Manager {
	base := []Option{
		WithClock(func() time.Time { return fixedTime }),
		WithFreeSpace(plentyOfSpace),
	}
	return NewManager(append(base, opts...)...)
}

func resultWith(f *testutil.TestFixture, entries ...scanner.Entry) *scanner.ScanResult {
	r := scanner.NewScanResult(f.RootDir)
	for _, e := range entries {
		r.Add(e)
	}
	return r
}

func entry(path string, c scanner.Category) scanner.Entry {
	info, err := os.Lstat(path)
	e := scanner.Entry{Path: path, Category: c, Reason: "test"}
	if err == nil {
		e.Size = info.Size()
		e.ModTime = info.ModTime()
	}
	return e
}

func TestBackupCopiesFilesAndWritesManifest(t *testing.T) {
	f := testutil.NewFixture(t)
	a := f.CreateRandomFile("app/debug.log", 4096)
	b := f.CreateFileWithAge("notes.bak", []byte("old notes"), 72*time.Hour)
	require.NoError(t, os.Chmod(b, 0600))

	result := resultWith(f,
		entry(a, scanner.CategoryLogFile),
		entry(b, scanner.CategoryBackupFile),
	)

	rec, err := newTestManager().Backup(context.Background(), result, f.Path(".cleanup_backup"))
	require.NoError(t, err)

	assert.Equal(t, f.Path(".cleanup_backup/backup_20250314_092653"), rec.Dir)
	assert.FileExists(t, rec.ManifestPath)

	for _, rel := range []string{"app/debug.log", "notes.bak"} {
		want, err := os.ReadFile(f.Path(rel))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(rec.Dir, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Equal(t, want, got, "backup of %s differs", rel)
	}

	copyInfo, err := os.Stat(filepath.Join(rec.Dir, "notes.bak"))
	require.NoError(t, err)
	origInfo, err := os.Stat(b)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), copyInfo.Mode().Perm())
	assert.True(t, copyInfo.ModTime().Equal(origInfo.ModTime()), "mtime not preserved")

	manifest, err := LoadManifest(rec.Dir)
	require.NoError(t, err)
	assert.NotEmpty(t, manifest.ID)
	assert.Equal(t, f.RootDir, manifest.ProjectPath)
	assert.Equal(t, 2, manifest.TotalFiles)
	assert.Equal(t, int64(4096+9), manifest.TotalSize)
	require.Len(t, manifest.Files, 2)
	// Files follow category order: backup files before log files.
	assert.Equal(t, "notes.bak", manifest.Files[0].Path)
	assert.Equal(t, "app/debug.log", manifest.Files[1].Path)
	assert.Equal(t, "log_file", manifest.Files[1].Type)
	assert.Len(t, manifest.Files[1].SHA256, 64)

	assert.True(t, rec.Copied(a))
	assert.False(t, rec.Copied(f.Path("other.tmp")))

	require.NoError(t, newTestManager().Verify(rec))
}

func TestBackupVerifyDetectsTampering(t *testing.T) {
	f := testutil.NewFixture(t)
	a := f.CreateFile("a.tmp", []byte("original"))

	rec, err := newTestManager().Backup(context.Background(), resultWith(f, entry(a, scanner.CategoryTempFile)), f.Path(".cleanup_backup"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(rec.Dir, "a.tmp"), []byte("changed"), 0644))
	assert.Error(t, newTestManager().Verify(rec))
}

func TestBackupSkipsMissingAndRecordsFailures(t *testing.T) {
	f := testutil.NewFixture(t)
	ok := f.CreateFile("keep.tmp", []byte("x"))
	gone := f.Path("gone.tmp")
	// A directory where a file is expected cannot be copied.
	broken := f.CreateDir("weird.tmp")

	result := resultWith(f,
		entry(ok, scanner.CategoryTempFile),
		scanner.Entry{Path: gone, Category: scanner.CategoryTempFile},
		scanner.Entry{Path: broken, Category: scanner.CategoryTempFile},
	)

	rec, err := newTestManager().Backup(context.Background(), result, f.Path(".cleanup_backup"))
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Manifest.TotalFiles)
	require.Len(t, rec.Manifest.Failed, 1)
	assert.Equal(t, "weird.tmp", rec.Manifest.Failed[0].Path)
	assert.False(t, rec.Copied(broken))
	assert.False(t, rec.Copied(gone))
}

func TestBackupInsufficientSpace(t *testing.T) {
	f := testutil.NewFixture(t)
	a := f.CreateFile("a.tmp", []byte("data"))

	mgr := newTestManager(WithFreeSpace(func(context.Context, string) (uint64, error) { return 10, nil }))
	rec, err := mgr.Backup(context.Background(), resultWith(f, entry(a, scanner.CategoryTempFile)), f.Path(".cleanup_backup"))

	assert.ErrorIs(t, err, ErrInsufficientSpace)
	assert.Nil(t, rec)

	records, err := List(f.Path(".cleanup_backup"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBackupSameSecondGetsSuffix(t *testing.T) {
	f := testutil.NewFixture(t)
	a := f.CreateFile("a.tmp", []byte("data"))
	result := resultWith(f, entry(a, scanner.CategoryTempFile))
	dest := f.Path(".cleanup_backup")

	first, err := newTestManager().Backup(context.Background(), result, dest)
	require.NoError(t, err)
	second, err := newTestManager().Backup(context.Background(), result, dest)
	require.NoError(t, err)

	assert.NotEqual(t, first.Dir, second.Dir)
	assert.Equal(t, first.Dir+"_2", second.Dir)
}

func TestBackupCancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	a := f.CreateFile("a.tmp", []byte("data"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestManager().Backup(ctx, resultWith(f, entry(a, scanner.CategoryTempFile)), f.Path(".cleanup_backup"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListNewestFirst(t *testing.T) {
	f := testutil.NewFixture(t)
	a := f.CreateFile("a.tmp", []byte("data"))
	result := resultWith(f, entry(a, scanner.CategoryTempFile))
	dest := f.Path(".cleanup_backup")

	older := NewManager(WithFreeSpace(plentyOfSpace), WithClock(func() time.Time { return fixedTime }))
	newer := NewManager(WithFreeSpace(plentyOfSpace), WithClock(func() time.Time { return fixedTime.Add(time.Hour) }))

	_, err := older.Backup(context.Background(), result, dest)
	require.NoError(t, err)
	_, err = newer.Backup(context.Background(), result, dest)
	require.NoError(t, err)

	// Stray directories without a manifest are ignored.
	f.CreateDir(".cleanup_backup/not_a_backup")

	records, err := List(dest)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Manifest.BackupTime.After(records[1].Manifest.BackupTime))
}

func TestListMissingRoot(t *testing.T) {
	records, err := List(filepath.Join(t.TempDir(), "nothing"))
	assert.NoError(t, err)
	assert.Empty(t, records)
}
