package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/namuan/dev-boost-sub001/pkg/models"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n" + "0000000000000000000000000000")

func TestDetectMagicNumbers(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  []byte
		wantMIME string
		wantCat  models.Category
	}{
		{
			name:     "png",
			file:     "photo.png",
			content:  pngHeader,
			wantMIME: "image/png",
			wantCat:  models.CategoryImage,
		},
		{
			name:     "jpeg",
			file:     "photo.jpg",
			content:  append([]byte{0xff, 0xd8, 0xff, 0xe0}, make([]byte, 28)...),
			wantMIME: "image/jpeg",
			wantCat:  models.CategoryImage,
		},
		{
			name:     "gif89a",
			file:     "anim.gif",
			content:  []byte("GIF89a" + "464646464646464646464646464646"),
			wantMIME: "image/gif",
			wantCat:  models.CategoryImage,
		},
		{
			name:     "webp in riff container",
			file:     "photo.webp",
			content:  []byte("RIFF\x10\x00\x00\x00WEBPVP8 aaaaaaaaaaaaaaaa"),
			wantMIME: "image/webp",
			wantCat:  models.CategoryImage,
		},
		{
			name:     "avi in riff container",
			file:     "clip.avi",
			content:  []byte("RIFF\x10\x00\x00\x00AVI LISTaaaaaaaaaaaaaaaa"),
			wantMIME: "video/avi",
			wantCat:  models.CategoryVideo,
		},
		{
			name:     "mp4 ftyp",
			file:     "clip.mp4",
			content:  []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1"),
			wantMIME: "video/mp4",
			wantCat:  models.CategoryVideo,
		},
		{
			name:     "heic ftyp brand",
			file:     "photo.heic",
			content:  []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00heicmif1"),
			wantMIME: "image/heic",
			wantCat:  models.CategoryImage,
		},
		{
			name:     "matroska",
			file:     "clip.mkv",
			content:  append([]byte{0x1a, 0x45, 0xdf, 0xa3}, make([]byte, 28)...),
			wantMIME: "video/x-matroska",
			wantCat:  models.CategoryVideo,
		},
		{
			name:     "pdf",
			file:     "doc.pdf",
			content:  []byte("%PDF-1.4\n%äöü\n1 0 obj\n<<>>"),
			wantMIME: "application/pdf",
			wantCat:  models.CategoryPDF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			rec := Detect(path)

			if rec.MIMEType != tt.wantMIME {
				t.Errorf("MIMEType = %q, want %q", rec.MIMEType, tt.wantMIME)
			}
			if rec.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", rec.Category, tt.wantCat)
			}
			if !rec.MagicDetected {
				t.Error("MagicDetected = false, want true")
			}
			if rec.Size != int64(len(tt.content)) {
				t.Errorf("Size = %d, want %d", rec.Size, len(tt.content))
			}
		})
	}
}

func TestDetectMagicOverridesExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "actually-a-png.txt", pngHeader)

	rec := Detect(path)

	if rec.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png", rec.MIMEType)
	}
	if rec.Category != models.CategoryImage {
		t.Errorf("Category = %q, want image", rec.Category)
	}
	if !rec.MagicDetected {
		t.Error("MagicDetected = false, want true")
	}
	// The extension allow-list still decides supportability
	if rec.IsSupported {
		t.Error("IsSupported = true for .txt, want false")
	}
}

func TestDetectExtensionFallback(t *testing.T) {
	dir := t.TempDir()
	// Content with no recognizable signature
	path := writeFile(t, dir, "photo.jpg", []byte("not really a jpeg"))

	rec := Detect(path)

	if rec.MIMEType != "image/jpeg" {
		t.Errorf("MIMEType = %q, want image/jpeg from extension", rec.MIMEType)
	}
	if rec.MagicDetected {
		t.Error("MagicDetected = true, want false")
	}
	if !rec.IsSupported {
		t.Error("IsSupported = false, want true")
	}
}

func TestDetectTruncatedHeader(t *testing.T) {
	dir := t.TempDir()
	// Shorter than any signature prefix
	path := writeFile(t, dir, "tiny.png", []byte{0x89})

	rec := Detect(path)

	if rec.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want extension fallback image/png", rec.MIMEType)
	}
	if rec.MagicDetected {
		t.Error("MagicDetected = true for truncated header, want false")
	}
}

func TestDetectMissingFile(t *testing.T) {
	rec := Detect(filepath.Join(t.TempDir(), "does-not-exist.png"))

	if rec.Size != 0 {
		t.Errorf("Size = %d, want 0", rec.Size)
	}
	if rec.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want extension-based image/png", rec.MIMEType)
	}
	if rec.MagicDetected {
		t.Error("MagicDetected = true, want false")
	}
}

func TestDetectUnknownType(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", []byte("hello"))

	rec := Detect(path)

	if rec.Category != models.CategoryUnknown {
		t.Errorf("Category = %q, want unknown", rec.Category)
	}
	if rec.IsSupported {
		t.Error("IsSupported = true, want false")
	}
	if rec.MIMEType != "application/octet-stream" {
		t.Errorf("MIMEType = %q, want application/octet-stream", rec.MIMEType)
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.PNG", true},
		{"clip.webm", true},
		{"doc.pdf", true},
		{"archive.zip", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := IsSupported(tt.path); got != tt.want {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()

	if len(formats[models.CategoryImage]) != 9 {
		t.Errorf("image formats = %d, want 9", len(formats[models.CategoryImage]))
	}
	if len(formats[models.CategoryVideo]) != 5 {
		t.Errorf("video formats = %d, want 5", len(formats[models.CategoryVideo]))
	}
	if len(formats[models.CategoryPDF]) != 1 {
		t.Errorf("pdf formats = %d, want 1", len(formats[models.CategoryPDF]))
	}

	// Sorted within each category
	exts := formats[models.CategoryImage]
	for i := 1; i < len(exts); i++ {
		if exts[i-1] >= exts[i] {
			t.Errorf("image formats not sorted: %v", exts)
			break
		}
	}
}
