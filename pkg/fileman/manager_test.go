package fileman

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/namuan/dev-boost-sub001/pkg/settings"
)

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(file, []byte("\x89PNG\r\n\x1a\ndata"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(t.TempDir())

	t.Run("existing file", func(t *testing.T) {
		records := m.ResolveInput(file)
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0].Path != file {
			t.Errorf("Path = %q, want %q", records[0].Path, file)
		}
		if !records[0].IsSupported {
			t.Error("IsSupported = false, want true")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if records := m.ResolveInput(filepath.Join(dir, "nope.png")); len(records) != 0 {
			t.Errorf("got %d records for missing file, want 0", len(records))
		}
	})

	t.Run("directory", func(t *testing.T) {
		if records := m.ResolveInput(dir); len(records) != 0 {
			t.Errorf("got %d records for directory, want 0", len(records))
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if records := m.ResolveInput("  "); len(records) != 0 {
			t.Errorf("got %d records for blank path, want 0", len(records))
		}
	})
}

func TestOutputPath(t *testing.T) {
	m := NewManager(t.TempDir())

	tests := []struct {
		name     string
		input    string
		dir      string
		settings *settings.OptimizationSettings
		want     string
	}{
		{
			name:  "same directory with suffix",
			input: "/data/photo.png",
			want:  "/data/photo-compressed.png",
		},
		{
			name:  "output directory override",
			input: "/data/photo.png",
			dir:   "/out",
			want:  "/out/photo-compressed.png",
		},
		{
			name:  "heic converts to jpg",
			input: "/data/photo.heic",
			want:  "/data/photo-compressed.jpg",
		},
		{
			name:  "tiff converts to png",
			input: "/data/scan.tiff",
			want:  "/data/scan-compressed.png",
		},
		{
			name:  "bmp converts to png",
			input: "/data/scan.bmp",
			want:  "/data/scan-compressed.png",
		},
		{
			name:  "webp converts to png",
			input: "/data/sticker.webp",
			want:  "/data/sticker-compressed.png",
		},
		{
			name:  "explicit format wins over conversion rule",
			input: "/data/photo.heic",
			settings: &settings.OptimizationSettings{
				OutputFormat: settings.String("webp"),
			},
			want: "/data/photo-compressed.webp",
		},
		{
			name:  "video keeps extension",
			input: "/data/clip.mp4",
			want:  "/data/clip-compressed.mp4",
		},
		{
			name:  "explicit mp4 converts mov",
			input: "/data/clip.mov",
			settings: &settings.OptimizationSettings{
				OutputFormat: settings.String("mp4"),
			},
			want: "/data/clip-compressed.mp4",
		},
		{
			name:  "explicit gif converts video",
			input: "/data/clip.mp4",
			settings: &settings.OptimizationSettings{
				OutputFormat: settings.String("gif"),
			},
			want: "/data/clip-compressed.gif",
		},
		{
			name:  "uppercase extension normalized",
			input: "/data/photo.HEIC",
			want:  "/data/photo-compressed.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.OutputPath(tt.input, tt.dir, tt.settings)
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("OutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCreateTempAndCleanup(t *testing.T) {
	m := NewManager(t.TempDir())

	path, err := m.CreateTemp(".png")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if !strings.Contains(filepath.Base(path), "devboost-opt-") {
		t.Errorf("temp file %q missing session prefix", path)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("temp file %q missing suffix", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("temp file not created: %v", err)
	}

	m.Cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("temp file still exists after Cleanup")
	}

	// Cleanup is idempotent, including over already-deleted files
	m.Cleanup()
}

func TestTrackExternalArtifacts(t *testing.T) {
	m := NewManager(t.TempDir())
	dir := t.TempDir()

	// A temp sibling the way the video and pdf engines create them
	sibling := filepath.Join(dir, ".devboost-opt-clip.mp4")
	if err := os.WriteFile(sibling, []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}

	// A non-empty frame dump directory
	frameDir := filepath.Join(dir, "frames")
	if err := os.MkdirAll(frameDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(frameDir, "frame_0001.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	m.Track(sibling)
	m.Track(frameDir)
	m.Track("") // ignored

	m.Cleanup()

	if _, err := os.Stat(sibling); !os.IsNotExist(err) {
		t.Error("tracked sibling still exists after Cleanup")
	}
	if _, err := os.Stat(frameDir); !os.IsNotExist(err) {
		t.Error("tracked directory still exists after Cleanup")
	}
}

func TestCreateBackup(t *testing.T) {
	backupDir := t.TempDir()
	srcDir := t.TempDir()

	src := filepath.Join(srcDir, "report.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4 content"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(backupDir)

	backupPath, err := m.CreateBackup(src)
	if err != nil {
		t.Fatalf("CreateBackup: %v", err)
	}

	base := filepath.Base(backupPath)
	if !strings.HasPrefix(base, "report_") || !strings.HasSuffix(base, ".pdf") {
		t.Errorf("backup name %q, want report_<timestamp>.pdf", base)
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if string(data) != "%PDF-1.4 content" {
		t.Error("backup content differs from source")
	}

	backups, err := m.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("got %d backups, want 1", len(backups))
	}
	if backups[0].Path != backupPath {
		t.Errorf("backup path = %q, want %q", backups[0].Path, backupPath)
	}
}

func TestCreateBackupErrors(t *testing.T) {
	m := NewManager(t.TempDir())

	if _, err := m.CreateBackup(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("CreateBackup(missing) = nil error, want error")
	}
	if _, err := m.CreateBackup(t.TempDir()); err == nil {
		t.Error("CreateBackup(directory) = nil error, want error")
	}
}

func TestListBackupsEmpty(t *testing.T) {
	// Backup dir that was never created
	m := NewManager(filepath.Join(t.TempDir(), "never-created"))

	backups, err := m.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("got %d backups, want 0", len(backups))
	}
}
