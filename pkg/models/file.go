package models

// Category classifies a file for engine dispatch
type Category string

const (
	// CategoryImage covers raster image formats (PNG, JPEG, GIF, WebP, TIFF, HEIC, BMP)
	CategoryImage Category = "image"
	// CategoryVideo covers video container formats (MP4, MOV, AVI, MKV, WebM)
	CategoryVideo Category = "video"
	// CategoryPDF covers PDF documents
	CategoryPDF Category = "pdf"
	// CategoryUnknown is used when no category could be determined
	CategoryUnknown Category = "unknown"
)

// FileRecord holds the result of classifying a single file.
// It is a value object: produced once by detection, never mutated.
type FileRecord struct {
	// Path is the absolute path to the file
	Path string

	// Size is the file size in bytes (0 if the file is missing)
	Size int64

	// MIMEType is the detected MIME type
	MIMEType string

	// Category is the file category derived from the MIME type
	Category Category

	// Extension is the lowercase file extension including the dot
	Extension string

	// IsSupported indicates whether the extension is on the optimization allow-list
	IsSupported bool

	// MagicDetected is true when the MIME type came from magic-number
	// sniffing rather than the extension
	MagicDetected bool
}
