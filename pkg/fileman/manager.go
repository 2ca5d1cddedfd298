// Package fileman manages filesystem concerns around optimization: input
// resolution, output path derivation, temp files, and backups.
package fileman

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/namuan/dev-boost-sub001/internal/platform"
	"github.com/namuan/dev-boost-sub001/pkg/detect"
	"github.com/namuan/dev-boost-sub001/pkg/models"
	"github.com/namuan/dev-boost-sub001/pkg/settings"
)

// tempPrefix marks temp files created by the optimizer so stale ones are
// recognizable in the OS temp directory
const tempPrefix = "devboost-opt-"

// outputSuffix is appended to the stem of every optimized file
const outputSuffix = "-compressed"

// Automatic output extension remapping, applied unless the settings name an
// explicit output format. HEIC converts for compatibility, TIFF and BMP for
// better lossless compression, WEBP because only external tools can write
// it back and optimization must not depend on them being installed.
var conversionRules = map[string]string{
	".heic": ".jpg",
	".tiff": ".png",
	".tif":  ".png",
	".bmp":  ".png",
	".webp": ".png",
}

// Explicit output format names accepted in settings
var formatExtensions = map[string]string{
	"jpeg": ".jpg",
	"jpg":  ".jpg",
	"png":  ".png",
	"webp": ".webp",
	"mp4":  ".mp4",
	"webm": ".webm",
	"gif":  ".gif",
}

// BackupInfo describes one file in the backup directory
type BackupInfo struct {
	Path     string
	Name     string
	Size     int64
	Modified time.Time
}

// Manager owns path derivation, the temp-file registry, and the backup
// directory for one session.
type Manager struct {
	backupDir string

	mu        sync.Mutex
	tempFiles []string
}

// NewManager creates a Manager using backupDir, or the OS-appropriate
// default when backupDir is empty. The backup directory is created lazily
// on first backup.
func NewManager(backupDir string) *Manager {
	if backupDir == "" {
		if dir, err := platform.BackupDir(); err == nil {
			backupDir = dir
		}
	}
	return &Manager{backupDir: backupDir}
}

// ResolveInput resolves a user-supplied path to an existing regular file and
// classifies it. Missing files and directories yield an empty slice rather
// than an error.
func (m *Manager) ResolveInput(path string) []models.FileRecord {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return nil
	}

	return []models.FileRecord{detect.Detect(abs)}
}

// OutputPath derives the destination path for an input file: same directory
// (or outputDir when given), `{stem}-compressed{ext}`, with the extension
// remapped per the conversion rules or the settings' explicit format.
func (m *Manager) OutputPath(inputPath, outputDir string, s *settings.OptimizationSettings) string {
	dir := filepath.Dir(inputPath)
	if outputDir != "" {
		dir = outputDir
	}

	base := filepath.Base(inputPath)
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(dir, stem+outputSuffix+outputExtension(ext, s))
}

// outputExtension applies the explicit format override first, then the
// automatic conversion rules, then keeps the input extension.
func outputExtension(inputExt string, s *settings.OptimizationSettings) string {
	if s != nil && s.OutputFormat != nil {
		if ext, ok := formatExtensions[strings.ToLower(*s.OutputFormat)]; ok {
			return ext
		}
	}
	if ext, ok := conversionRules[inputExt]; ok {
		return ext
	}
	return inputExt
}

// CreateTemp creates an empty temp file with the session prefix and
// registers it for cleanup. The caller receives the path; the file handle
// is closed.
func (m *Manager) CreateTemp(suffix string) (string, error) {
	f, err := os.CreateTemp("", tempPrefix+"*"+suffix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	f.Close()

	m.mu.Lock()
	m.tempFiles = append(m.tempFiles, path)
	m.mu.Unlock()

	return path, nil
}

// Track registers a temp artifact created elsewhere (engine temp siblings,
// frame dump directories) so Cleanup removes it with the rest.
func (m *Manager) Track(path string) {
	if path == "" {
		return
	}
	m.mu.Lock()
	m.tempFiles = append(m.tempFiles, path)
	m.mu.Unlock()
}

// Cleanup removes all registered temp artifacts, directories included. It
// is idempotent and tolerates paths that were already deleted.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	files := m.tempFiles
	m.tempFiles = nil
	m.mu.Unlock()

	for _, path := range files {
		// Already-deleted paths are fine; anything else is best-effort
		_ = os.RemoveAll(path)
	}
}

// BackupDir returns the backup directory in use
func (m *Manager) BackupDir() string {
	return m.backupDir
}

// CreateBackup copies the file into the backup directory under a
// timestamped name and returns the backup path.
func (m *Manager) CreateBackup(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot back up %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("cannot back up a directory: %s", path)
	}

	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(m.backupDir, fmt.Sprintf("%s_%s%s", stem, stamp, ext))

	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return backupPath, nil
}

// ListBackups returns backup files with metadata, newest first
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:     filepath.Join(m.backupDir, entry.Name()),
			Name:     entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Modified.After(backups[j].Modified)
	})
	return backups, nil
}

// copyFile copies src to dst, preserving the source permissions
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
