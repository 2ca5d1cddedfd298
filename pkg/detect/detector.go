// Package detect classifies files for optimization using both extension
// and magic-number analysis.
package detect

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/namuan/dev-boost-sub001/pkg/models"
)

// headerSize is how many leading bytes are read for magic-number sniffing
const headerSize = 32

// signature maps a byte prefix to the MIME type it identifies
type signature struct {
	prefix []byte
	mime   string
}

// Ordered signature table. RIFF and ftyp containers need secondary checks
// and are handled separately in sniffHeader.
var signatures = []signature{
	{[]byte("\x89PNG\r\n\x1a\n"), "image/png"},
	{[]byte{0xff, 0xd8, 0xff}, "image/jpeg"},
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("GIF89a"), "image/gif"},
	{[]byte("II*\x00"), "image/tiff"},
	{[]byte("MM\x00*"), "image/tiff"},
	{[]byte{0x1a, 0x45, 0xdf, 0xa3}, "video/x-matroska"},
	{[]byte("%PDF"), "application/pdf"},
}

// Extension allow-list per category. Only these extensions are considered
// supported for optimization.
var supportedExtensions = map[string]models.Category{
	".png":  models.CategoryImage,
	".jpg":  models.CategoryImage,
	".jpeg": models.CategoryImage,
	".gif":  models.CategoryImage,
	".heic": models.CategoryImage,
	".tiff": models.CategoryImage,
	".tif":  models.CategoryImage,
	".webp": models.CategoryImage,
	".bmp":  models.CategoryImage,
	".mov":  models.CategoryVideo,
	".mp4":  models.CategoryVideo,
	".avi":  models.CategoryVideo,
	".mkv":  models.CategoryVideo,
	".webm": models.CategoryVideo,
	".pdf":  models.CategoryPDF,
}

// Extension to MIME table. A fixed table rather than the platform MIME
// registry so classification is stable across hosts.
var extensionMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".heic": "image/heic",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".avi":  "video/avi",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".pdf":  "application/pdf",
}

// MIME to category table used after detection settles on a final MIME type
var mimeCategories = map[string]models.Category{
	"image/png":        models.CategoryImage,
	"image/jpeg":       models.CategoryImage,
	"image/gif":        models.CategoryImage,
	"image/webp":       models.CategoryImage,
	"image/tiff":       models.CategoryImage,
	"image/heic":       models.CategoryImage,
	"image/bmp":        models.CategoryImage,
	"video/mp4":        models.CategoryVideo,
	"video/quicktime":  models.CategoryVideo,
	"video/avi":        models.CategoryVideo,
	"video/x-msvideo":  models.CategoryVideo,
	"video/x-matroska": models.CategoryVideo,
	"video/webm":       models.CategoryVideo,
	"application/pdf":  models.CategoryPDF,
}

const fallbackMIME = "application/octet-stream"

// Detect classifies the file at path. It never returns an error: on any I/O
// problem the result falls back to extension-based classification, and an
// unreadable or unrecognized file comes back with CategoryUnknown.
func Detect(path string) models.FileRecord {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	ext := strings.ToLower(filepath.Ext(abs))

	var size int64
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		size = info.Size()
	}

	// Extension-based baseline
	mimeType, ok := extensionMIME[ext]
	if !ok {
		mimeType = fallbackMIME
	}
	magicDetected := false

	// Magic numbers override the extension when the header matches
	if size > 0 {
		if detected := sniffFile(abs); detected != "" {
			mimeType = detected
			magicDetected = true
		}
	}

	category, ok := mimeCategories[mimeType]
	if !ok {
		category = models.CategoryUnknown
	}

	_, supported := supportedExtensions[ext]

	return models.FileRecord{
		Path:          abs,
		Size:          size,
		MIMEType:      mimeType,
		Category:      category,
		Extension:     ext,
		IsSupported:   supported,
		MagicDetected: magicDetected,
	}
}

// IsSupported reports whether the file's extension is on the allow-list
func IsSupported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedFormats returns the extension allow-list grouped by category
func SupportedFormats() map[models.Category][]string {
	out := make(map[models.Category][]string)
	for ext, cat := range supportedExtensions {
		out[cat] = append(out[cat], ext)
	}
	for _, exts := range out {
		sort.Strings(exts)
	}
	return out
}

// sniffFile reads the file header and returns the sniffed MIME type, or
// empty string when nothing matched or the file could not be read.
func sniffFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := f.Read(header)
	if n == 0 && err != nil {
		return ""
	}
	return sniffHeader(header[:n])
}

// sniffHeader matches the header against the signature table
func sniffHeader(header []byte) string {
	// RIFF is a container shared by WebP and AVI; bytes 8-12 disambiguate
	if bytes.HasPrefix(header, []byte("RIFF")) {
		if len(header) >= 12 {
			switch string(header[8:12]) {
			case "WEBP":
				return "image/webp"
			case "AVI ":
				return "video/avi"
			}
		}
		return ""
	}

	// ISO base media files carry "ftyp" at offset 4; the brand at bytes
	// 8-12 separates HEIC stills from MP4 video
	if len(header) >= 12 && string(header[4:8]) == "ftyp" {
		if bytes.Contains(header[8:12], []byte("hei")) {
			return "image/heic"
		}
		return "video/mp4"
	}

	for _, sig := range signatures {
		if bytes.HasPrefix(header, sig.prefix) {
			return sig.mime
		}
	}
	return ""
}
