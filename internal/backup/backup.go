// Package backup copies the files selected by a scan into a timestamped
// directory inside the project before anything is deleted, and records what
// was copied in a JSON manifest next to the copies.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fenilsonani/codeclean/internal/progress"
	"github.com/fenilsonani/codeclean/internal/scanner"
	"github.com/fenilsonani/codeclean/pkg/utils"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/disk"
	"go.uber.org/zap"
)

const (
	// ManifestName is the manifest file written into every backup directory
	ManifestName = "backup_manifest.json"

	dirPrefix    = "backup_"
	timeLayout   = "20060102_150405"
	spaceReserve = 1 << 20 // headroom kept free on the destination volume
)

// ErrInsufficientSpace is returned when the destination volume cannot hold the backup
var ErrInsufficientSpace = errors.New("insufficient disk space for backup")

// FileRecord describes one backed-up file
type FileRecord struct {
	Path     string `json:"path"` // relative to the project root
	Size     int64  `json:"size"`
	Type     string `json:"type"`
	Reason   string `json:"reason"`
	SHA256   string `json:"sha256"`
	Mode     uint32 `json:"mode"`
	Modified string `json:"modified"`
}

// FailedCopy records a file that could not be backed up
type FailedCopy struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Manifest is the JSON sidecar describing a backup
type Manifest struct {
	ID          string       `json:"id"`
	BackupTime  time.Time    `json:"backup_time"`
	ProjectPath string       `json:"project_path"`
	TotalFiles  int          `json:"total_files"`
	TotalSize   int64        `json:"total_size"`
	Files       []FileRecord `json:"files"`
	Failed      []FailedCopy `json:"failed,omitempty"`
}

// Record is what Backup returns: where the copies went and what they hold
type Record struct {
	Dir          string
	ManifestPath string
	Manifest     *Manifest
}

// Copied reports whether path (absolute, as in the scan result) was backed up
func (r *Record) Copied(path string) bool {
	if r == nil || r.Manifest == nil {
		return false
	}
	rel, err := filepath.Rel(r.Manifest.ProjectPath, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, f := range r.Manifest.Files {
		if f.Path == rel {
			return true
		}
	}
	return false
}

// FreeSpaceFunc reports the bytes available on the volume holding path
type FreeSpaceFunc func(ctx context.Context, path string) (uint64, error)

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSink sets the progress event sink
func WithSink(sink progress.Sink) Option {
	return func(m *Manager) {
		if sink != nil {
			m.sink = sink
		}
	}
}

// WithClock overrides the time source used to name backup directories
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithFreeSpace overrides the free-space probe
func WithFreeSpace(fn FreeSpaceFunc) Option {
	return func(m *Manager) { m.freeSpace = fn }
}

// Manager creates and inspects backups
type Manager struct {
	logger    *zap.Logger
	sink      progress.Sink
	now       func() time.Time
	freeSpace FreeSpaceFunc
}

// NewManager creates a backup manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		logger:    zap.NewNop(),
		sink:      progress.Nop(),
		now:       time.Now,
		freeSpace: diskFree,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func diskFree(ctx context.Context, path string) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// Backup copies every cleanable file of result that still exists into a new
// backup_<timestamp> directory under destinationRoot and writes the manifest.
//
// A file that cannot be copied is logged and listed under Failed; the backup
// carries on. An error is returned only when no usable backup exists: the
// destination cannot be created, the volume is too small, or the manifest
// cannot be written.
func (m *Manager) Backup(ctx context.Context, result *scanner.ScanResult, destinationRoot string) (*Record, error) {
	files := existingFiles(result.Files())

	var needed int64
	for _, e := range files {
		needed += e.Size
	}

	if err := os.MkdirAll(destinationRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup root: %w", err)
	}

	if free, err := m.freeSpace(ctx, destinationRoot); err != nil {
		m.logger.Warn("cannot determine free disk space, continuing", zap.Error(err))
	} else if uint64(needed)+spaceReserve > free {
		return nil, fmt.Errorf("%w: need %s, have %s", ErrInsufficientSpace,
			utils.FormatBytes(needed), utils.FormatBytes(int64(free)))
	}

	dir, err := m.createDir(destinationRoot)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		ID:          uuid.NewString(),
		BackupTime:  m.now(),
		ProjectPath: result.ProjectPath,
		Files:       make([]FileRecord, 0, len(files)),
	}

	progress.Emit(m.sink, progress.Event{Stage: progress.StageBackup, Kind: progress.KindStart, Total: len(files), Path: dir})
	m.logger.Info("creating backup", zap.String("dir", dir), zap.Int("files", len(files)), zap.Int64("bytes", needed))

	for i, e := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rel, err := filepath.Rel(result.ProjectPath, e.Path)
		if err != nil {
			manifest.Failed = append(manifest.Failed, FailedCopy{Path: e.Path, Error: err.Error()})
			continue
		}

		rec, err := copyFile(e.Path, filepath.Join(dir, rel))
		if err != nil {
			m.logger.Warn("backup copy failed", zap.String("path", e.Path), zap.Error(err))
			progress.Emit(m.sink, progress.Event{Stage: progress.StageBackup, Kind: progress.KindWarning, Path: e.Path, Message: "backup copy failed"})
			manifest.Failed = append(manifest.Failed, FailedCopy{Path: filepath.ToSlash(rel), Error: err.Error()})
			continue
		}

		rec.Path = filepath.ToSlash(rel)
		rec.Type = e.Category.String()
		rec.Reason = e.Reason
		manifest.Files = append(manifest.Files, rec)
		manifest.TotalFiles++
		manifest.TotalSize += rec.Size

		progress.Emit(m.sink, progress.Event{Stage: progress.StageBackup, Kind: progress.KindProgress, Path: e.Path, Done: i + 1, Total: len(files)})
	}

	manifestPath := filepath.Join(dir, ManifestName)
	if err := writeManifest(manifestPath, manifest); err != nil {
		return nil, err
	}

	progress.Emit(m.sink, progress.Event{Stage: progress.StageBackup, Kind: progress.KindFinish, Done: manifest.TotalFiles, Bytes: manifest.TotalSize})
	m.logger.Info("backup created",
		zap.String("dir", dir),
		zap.Int("files", manifest.TotalFiles),
		zap.Int64("bytes", manifest.TotalSize),
		zap.Int("failed", len(manifest.Failed)))

	return &Record{Dir: dir, ManifestPath: manifestPath, Manifest: manifest}, nil
}

// Verify re-hashes every copy listed in the record's manifest
func (m *Manager) Verify(rec *Record) error {
	var errs []error
	for _, f := range rec.Manifest.Files {
		sum, err := utils.HashFile(filepath.Join(rec.Dir, filepath.FromSlash(f.Path)))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, err))
			continue
		}
		if sum != f.SHA256 {
			errs = append(errs, fmt.Errorf("%s: checksum mismatch", f.Path))
		}
	}
	return errors.Join(errs...)
}

// createDir makes backup_<timestamp>, adding a numeric suffix when a backup
// from the same second already exists.
func (m *Manager) createDir(root string) (string, error) {
	base := filepath.Join(root, dirPrefix+m.now().Format(timeLayout))
	dir := base
	for i := 2; ; i++ {
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to create backup directory: %w", err)
		}
		dir = fmt.Sprintf("%s_%d", base, i)
	}
}

func copyFile(src, dst string) (FileRecord, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return FileRecord{}, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return FileRecord{}, err
	}

	rec := FileRecord{
		Mode:     uint32(info.Mode()),
		Modified: info.ModTime().UTC().Format(time.RFC3339),
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return FileRecord{}, err
		}
		if err := os.Symlink(target, dst); err != nil {
			return FileRecord{}, err
		}
		rec.SHA256 = "symlink:" + target
		return rec, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return FileRecord{}, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return FileRecord{}, err
	}

	n, sum, err := utils.CopyAndHash(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return FileRecord{}, err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return FileRecord{}, err
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return FileRecord{}, err
	}

	rec.Size = n
	rec.SHA256 = sum
	return rec, nil
}

func existingFiles(entries []scanner.Entry) []scanner.Entry {
	out := make([]scanner.Entry, 0, len(entries))
	for _, e := range entries {
		if _, err := os.Lstat(e.Path); err == nil {
			out = append(out, e)
		}
	}
	return out
}

func writeManifest(path string, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads the manifest of the backup in dir
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &manifest, nil
}

// List returns the backups under destinationRoot, newest first. Directories
// without a readable manifest are skipped.
func List(destinationRoot string) ([]*Record, error) {
	entries, err := os.ReadDir(destinationRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var records []*Record
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(destinationRoot, entry.Name())
		manifest, err := LoadManifest(dir)
		if err != nil {
			continue
		}
		records = append(records, &Record{
			Dir:          dir,
			ManifestPath: filepath.Join(dir, ManifestName),
			Manifest:     manifest,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Manifest.BackupTime.After(records[j].Manifest.BackupTime)
	})
	return records, nil
}
