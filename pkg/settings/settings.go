// Package settings holds optimization settings, quality presets, and their
// persistence.
package settings

import (
	"fmt"
	"regexp"

	"github.com/namuan/dev-boost-sub001/pkg/models"
)

// QualityPreset names a point on the fidelity scale
type QualityPreset string

const (
	PresetMaximum QualityPreset = "maximum"
	PresetHigh    QualityPreset = "high"
	PresetMedium  QualityPreset = "medium"
	PresetLow     QualityPreset = "low"
	PresetMinimum QualityPreset = "minimum"
)

// ParseQualityPreset validates and converts a preset name
func ParseQualityPreset(s string) (QualityPreset, error) {
	switch QualityPreset(s) {
	case PresetMaximum, PresetHigh, PresetMedium, PresetLow, PresetMinimum:
		return QualityPreset(s), nil
	}
	return "", fmt.Errorf("unknown quality preset: %q (use: maximum, high, medium, low, minimum)", s)
}

// Quality values per preset and category. Image and PDF use a 0-100 quality
// scale; video uses CRF where lower means higher quality.
var presetQuality = map[QualityPreset]map[models.Category]int{
	PresetMaximum: {models.CategoryImage: 95, models.CategoryVideo: 18, models.CategoryPDF: 90},
	PresetHigh:    {models.CategoryImage: 85, models.CategoryVideo: 23, models.CategoryPDF: 80},
	PresetMedium:  {models.CategoryImage: 75, models.CategoryVideo: 28, models.CategoryPDF: 70},
	PresetLow:     {models.CategoryImage: 60, models.CategoryVideo: 35, models.CategoryPDF: 60},
	PresetMinimum: {models.CategoryImage: 40, models.CategoryVideo: 45, models.CategoryPDF: 50},
}

// OptimizationSettings configures a single optimization run. Optional fields
// are pointers so that "unset" survives a JSON round-trip.
type OptimizationSettings struct {
	// General
	QualityPreset    QualityPreset `json:"quality_preset"`
	CreateBackup     bool          `json:"create_backup"`
	PreserveMetadata bool          `json:"preserve_metadata"`

	// Image
	ImageQuality    *int    `json:"image_quality"`
	MaxWidth        *int    `json:"max_width"`
	MaxHeight       *int    `json:"max_height"`
	OutputFormat    *string `json:"output_format"`
	ProgressiveJPEG bool    `json:"progressive_jpeg"`

	// Video
	VideoQuality *int    `json:"video_quality"`
	VideoBitrate *string `json:"video_bitrate"`
	VideoFPS     *int    `json:"video_fps"`

	// PDF
	PDFQuality *int `json:"pdf_quality"`
	PDFDPI     *int `json:"pdf_dpi"`
}

// Default returns settings with the medium preset and no overrides
func Default() *OptimizationSettings {
	return &OptimizationSettings{
		QualityPreset:   PresetMedium,
		CreateBackup:    true,
		ProgressiveJPEG: true,
	}
}

// EffectiveQuality resolves the quality value for a category: a per-type
// override always wins over the preset table. Unknown categories fall back
// to the image column.
func (s *OptimizationSettings) EffectiveQuality(category models.Category) int {
	switch category {
	case models.CategoryImage:
		if s.ImageQuality != nil {
			return *s.ImageQuality
		}
	case models.CategoryVideo:
		if s.VideoQuality != nil {
			return *s.VideoQuality
		}
	case models.CategoryPDF:
		if s.PDFQuality != nil {
			return *s.PDFQuality
		}
	}

	row, ok := presetQuality[s.QualityPreset]
	if !ok {
		row = presetQuality[PresetMedium]
	}
	if q, ok := row[category]; ok {
		return q
	}
	return row[models.CategoryImage]
}

var bitratePattern = regexp.MustCompile(`^\d+[kKmM]?$`)

// Validate checks all fields and returns human-readable violations. The
// settings themselves are never mutated or clamped.
func (s *OptimizationSettings) Validate() []string {
	var errs []string

	if _, err := ParseQualityPreset(string(s.QualityPreset)); err != nil {
		errs = append(errs, err.Error())
	}
	if s.ImageQuality != nil && (*s.ImageQuality < 0 || *s.ImageQuality > 100) {
		errs = append(errs, "Image quality must be between 0 and 100")
	}
	if s.VideoQuality != nil && (*s.VideoQuality < 0 || *s.VideoQuality > 51) {
		errs = append(errs, "Video quality must be between 0 and 51")
	}
	if s.PDFQuality != nil && (*s.PDFQuality < 0 || *s.PDFQuality > 100) {
		errs = append(errs, "PDF quality must be between 0 and 100")
	}
	if s.MaxWidth != nil && *s.MaxWidth <= 0 {
		errs = append(errs, "Maximum width must be positive")
	}
	if s.MaxHeight != nil && *s.MaxHeight <= 0 {
		errs = append(errs, "Maximum height must be positive")
	}
	if s.VideoFPS != nil && *s.VideoFPS <= 0 {
		errs = append(errs, "Video FPS must be positive")
	}
	if s.PDFDPI != nil && (*s.PDFDPI < 72 || *s.PDFDPI > 600) {
		errs = append(errs, "PDF DPI must be between 72 and 600")
	}
	if s.VideoBitrate != nil && !bitratePattern.MatchString(*s.VideoBitrate) {
		errs = append(errs, "Video bitrate must be in format like '1M', '500k', or '1000'")
	}

	return errs
}

// Clone returns a deep copy so presets cannot alias live settings
func (s *OptimizationSettings) Clone() *OptimizationSettings {
	out := *s
	out.ImageQuality = cloneInt(s.ImageQuality)
	out.MaxWidth = cloneInt(s.MaxWidth)
	out.MaxHeight = cloneInt(s.MaxHeight)
	out.OutputFormat = cloneString(s.OutputFormat)
	out.VideoQuality = cloneInt(s.VideoQuality)
	out.VideoBitrate = cloneString(s.VideoBitrate)
	out.VideoFPS = cloneInt(s.VideoFPS)
	out.PDFQuality = cloneInt(s.PDFQuality)
	out.PDFDPI = cloneInt(s.PDFDPI)
	return &out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Int is a convenience for building optional int fields
func Int(v int) *int { return &v }

// String is a convenience for building optional string fields
func String(v string) *string { return &v }
