package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/namuan/dev-boost-sub001/pkg/detect"
	"github.com/namuan/dev-boost-sub001/pkg/models"
	"github.com/namuan/dev-boost-sub001/pkg/output"
)

// NewDetectCommand creates the detect command
func NewDetectCommand() *cobra.Command {
	var asJSON bool
	var listFormats bool

	cmd := &cobra.Command{
		Use:   "detect [files...]",
		Short: "Detect and classify file types",
		Long: `Inspect files and report their detected type. Detection reads the
file's magic bytes and falls back to the extension, so a renamed file
is still classified by its actual content.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listFormats {
				return runListFormats()
			}
			if len(args) == 0 {
				return fmt.Errorf("requires at least 1 file (or --formats)")
			}
			return runDetect(args, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of text")
	cmd.Flags().BoolVar(&listFormats, "formats", false, "list supported formats per category")

	return cmd
}

func runDetect(paths []string, asJSON bool) error {
	records := make([]detectRecord, 0, len(paths))
	for _, path := range paths {
		rec := detect.Detect(path)
		records = append(records, detectRecord{
			Path:          rec.Path,
			Category:      string(rec.Category),
			MIMEType:      rec.MIMEType,
			Size:          rec.Size,
			IsSupported:   rec.IsSupported,
			MagicDetected: rec.MagicDetected,
		})
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	for _, r := range records {
		supported := "supported"
		if !r.IsSupported {
			supported = "unsupported"
		}
		source := "extension"
		if r.MagicDetected {
			source = "magic"
		}
		fmt.Printf("%s: %s (%s, %s, %s, %s)\n",
			r.Path, r.Category, r.MIMEType, output.FormatBytes(r.Size), supported, source)
	}
	return nil
}

type detectRecord struct {
	Path          string `json:"path"`
	Category      string `json:"category"`
	MIMEType      string `json:"mime_type"`
	Size          int64  `json:"size"`
	IsSupported   bool   `json:"is_supported"`
	MagicDetected bool   `json:"magic_detected"`
}

func runListFormats() error {
	formats := detect.SupportedFormats()

	categories := make([]string, 0, len(formats))
	for cat := range formats {
		categories = append(categories, string(cat))
	}
	sort.Strings(categories)

	for _, cat := range categories {
		fmt.Printf("%s:\n", cat)
		for _, ext := range formats[models.Category(cat)] {
			fmt.Printf("  %s\n", ext)
		}
	}
	return nil
}
