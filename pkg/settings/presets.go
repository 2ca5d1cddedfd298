package settings

// Preset bundles named, reusable optimization settings
type Preset struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Settings    *OptimizationSettings `json:"settings"`
	IsBuiltin   bool                  `json:"is_builtin"`
}

// builtinPresets returns the presets seeded on every startup. They are
// read-only and never persisted.
func builtinPresets() []*Preset {
	webOptimized := Default()
	webOptimized.MaxWidth = Int(1920)
	webOptimized.MaxHeight = Int(1080)

	emailFriendly := Default()
	emailFriendly.QualityPreset = PresetLow
	emailFriendly.MaxWidth = Int(1024)
	emailFriendly.MaxHeight = Int(768)

	highQuality := Default()
	highQuality.QualityPreset = PresetHigh
	highQuality.PreserveMetadata = true

	maxCompression := Default()
	maxCompression.QualityPreset = PresetMinimum
	maxCompression.MaxWidth = Int(800)
	maxCompression.MaxHeight = Int(600)

	socialMedia := Default()
	socialMedia.MaxWidth = Int(1200)
	socialMedia.MaxHeight = Int(1200)

	return []*Preset{
		{
			Name:        "Web Optimized",
			Description: "Optimized for web use with good quality and small file sizes",
			Settings:    webOptimized,
			IsBuiltin:   true,
		},
		{
			Name:        "Email Friendly",
			Description: "Small file sizes suitable for email attachments",
			Settings:    emailFriendly,
			IsBuiltin:   true,
		},
		{
			Name:        "High Quality",
			Description: "Minimal compression with maximum quality retention",
			Settings:    highQuality,
			IsBuiltin:   true,
		},
		{
			Name:        "Maximum Compression",
			Description: "Aggressive compression for minimum file sizes",
			Settings:    maxCompression,
			IsBuiltin:   true,
		},
		{
			Name:        "Social Media",
			Description: "Optimized for social media platforms",
			Settings:    socialMedia,
			IsBuiltin:   true,
		},
	}
}
