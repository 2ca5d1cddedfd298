package settings

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/namuan/dev-boost-sub001/pkg/models"
)

func TestDefaultSettings(t *testing.T) {
	s := Default()

	if s.QualityPreset != PresetMedium {
		t.Errorf("QualityPreset = %q, want medium", s.QualityPreset)
	}
	if !s.CreateBackup {
		t.Error("CreateBackup = false, want true")
	}
	if s.PreserveMetadata {
		t.Error("PreserveMetadata = true, want false")
	}
	if !s.ProgressiveJPEG {
		t.Error("ProgressiveJPEG = false, want true")
	}
	if errs := s.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors", errs)
	}
}

func TestParseQualityPreset(t *testing.T) {
	for _, valid := range []string{"maximum", "high", "medium", "low", "minimum"} {
		if _, err := ParseQualityPreset(valid); err != nil {
			t.Errorf("ParseQualityPreset(%q) error: %v", valid, err)
		}
	}
	if _, err := ParseQualityPreset("ultra"); err == nil {
		t.Error("ParseQualityPreset(\"ultra\") = nil error, want error")
	}
}

func TestEffectiveQualityMonotonic(t *testing.T) {
	// Image and PDF quality must not increase as the preset declines;
	// video CRF must not decrease (lower CRF is higher quality).
	order := []QualityPreset{PresetMaximum, PresetHigh, PresetMedium, PresetLow, PresetMinimum}

	for i := 1; i < len(order); i++ {
		higher := &OptimizationSettings{QualityPreset: order[i-1]}
		lower := &OptimizationSettings{QualityPreset: order[i]}

		if lower.EffectiveQuality(models.CategoryImage) >= higher.EffectiveQuality(models.CategoryImage) {
			t.Errorf("image quality not decreasing from %s to %s", order[i-1], order[i])
		}
		if lower.EffectiveQuality(models.CategoryPDF) >= higher.EffectiveQuality(models.CategoryPDF) {
			t.Errorf("pdf quality not decreasing from %s to %s", order[i-1], order[i])
		}
		if lower.EffectiveQuality(models.CategoryVideo) <= higher.EffectiveQuality(models.CategoryVideo) {
			t.Errorf("video CRF not increasing from %s to %s", order[i-1], order[i])
		}
	}
}

func TestEffectiveQualityOverrideWins(t *testing.T) {
	s := Default()
	s.QualityPreset = PresetMaximum
	s.ImageQuality = Int(42)

	if got := s.EffectiveQuality(models.CategoryImage); got != 42 {
		t.Errorf("EffectiveQuality(image) = %d, want override 42", got)
	}
	// Other categories still come from the preset
	if got := s.EffectiveQuality(models.CategoryVideo); got != 18 {
		t.Errorf("EffectiveQuality(video) = %d, want 18", got)
	}
}

func TestEffectiveQualityUnknownCategory(t *testing.T) {
	s := Default()
	if got, want := s.EffectiveQuality(models.CategoryUnknown), s.EffectiveQuality(models.CategoryImage); got != want {
		t.Errorf("EffectiveQuality(unknown) = %d, want image value %d", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*OptimizationSettings)
		wantMsg string
	}{
		{
			name:    "image quality too high",
			mutate:  func(s *OptimizationSettings) { s.ImageQuality = Int(101) },
			wantMsg: "Image quality must be between 0 and 100",
		},
		{
			name:    "image quality negative",
			mutate:  func(s *OptimizationSettings) { s.ImageQuality = Int(-1) },
			wantMsg: "Image quality must be between 0 and 100",
		},
		{
			name:    "video crf out of range",
			mutate:  func(s *OptimizationSettings) { s.VideoQuality = Int(52) },
			wantMsg: "Video quality must be between 0 and 51",
		},
		{
			name:    "pdf dpi too low",
			mutate:  func(s *OptimizationSettings) { s.PDFDPI = Int(71) },
			wantMsg: "PDF DPI must be between 72 and 600",
		},
		{
			name:    "pdf dpi too high",
			mutate:  func(s *OptimizationSettings) { s.PDFDPI = Int(601) },
			wantMsg: "PDF DPI must be between 72 and 600",
		},
		{
			name:    "bad bitrate",
			mutate:  func(s *OptimizationSettings) { s.VideoBitrate = String("10x") },
			wantMsg: "Video bitrate must be in format like '1M', '500k', or '1000'",
		},
		{
			name:    "zero width",
			mutate:  func(s *OptimizationSettings) { s.MaxWidth = Int(0) },
			wantMsg: "Maximum width must be positive",
		},
		{
			name:    "bad preset",
			mutate:  func(s *OptimizationSettings) { s.QualityPreset = "ultra" },
			wantMsg: "unknown quality preset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)

			errs := s.Validate()
			if len(errs) == 0 {
				t.Fatal("Validate() returned no errors")
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.wantMsg) {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want message containing %q", errs, tt.wantMsg)
			}
		})
	}
}

func TestValidateBitrateFormats(t *testing.T) {
	for _, valid := range []string{"1M", "500k", "1000", "2m", "800K"} {
		s := Default()
		s.VideoBitrate = String(valid)
		if errs := s.Validate(); len(errs) != 0 {
			t.Errorf("bitrate %q rejected: %v", valid, errs)
		}
	}
	for _, invalid := range []string{"", "M", "1.5M", "k500", "10G"} {
		s := Default()
		s.VideoBitrate = String(invalid)
		if errs := s.Validate(); len(errs) == 0 {
			t.Errorf("bitrate %q accepted, want rejection", invalid)
		}
	}
}

func TestSettingsJSONRoundTrip(t *testing.T) {
	s := Default()
	s.QualityPreset = PresetHigh
	s.ImageQuality = Int(88)
	s.MaxWidth = Int(1920)
	s.OutputFormat = String("webp")
	s.VideoBitrate = String("2M")

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back OptimizationSettings
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.QualityPreset != PresetHigh {
		t.Errorf("QualityPreset = %q, want high", back.QualityPreset)
	}
	if back.ImageQuality == nil || *back.ImageQuality != 88 {
		t.Errorf("ImageQuality = %v, want 88", back.ImageQuality)
	}
	if back.MaxHeight != nil {
		t.Errorf("MaxHeight = %v, want nil after round-trip", back.MaxHeight)
	}
	if back.OutputFormat == nil || *back.OutputFormat != "webp" {
		t.Errorf("OutputFormat = %v, want webp", back.OutputFormat)
	}
}

func TestClone(t *testing.T) {
	s := Default()
	s.ImageQuality = Int(70)

	c := s.Clone()
	*c.ImageQuality = 30
	c.QualityPreset = PresetLow

	if *s.ImageQuality != 70 {
		t.Errorf("original ImageQuality mutated to %d", *s.ImageQuality)
	}
	if s.QualityPreset != PresetMedium {
		t.Errorf("original QualityPreset mutated to %s", s.QualityPreset)
	}
}
