package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/namuan/dev-boost-sub001/pkg/engine"
)

// NewToolsCommand creates the tools command
func NewToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Report availability of external optimization tools",
		Long: `Probe the external tools the optimization engines can use and report
which are installed. Missing tools reduce quality or disable a
category; images always work through the built-in fallback.`,
		RunE: runTools,
	}
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	runner := engine.NewRunner()
	tools := engine.NewToolCache(runner)

	fmt.Println("Image tools:")
	reportTool(tools, "pngquant", "PNG optimization")
	reportTool(tools, "jpegoptim", "JPEG optimization")
	reportTool(tools, "gifsicle", "GIF optimization")
	reportTool(tools, "vips", "general image processing")
	fmt.Printf("  %-12s available   (built-in fallback)\n", "imaging")

	fmt.Println("Recommended per image format:")
	fmt.Printf("  %-12s %s\n", "png", firstAvailable(tools, "pngquant", "vips"))
	fmt.Printf("  %-12s %s\n", "jpeg", firstAvailable(tools, "jpegoptim", "vips"))
	fmt.Printf("  %-12s %s\n", "gif", firstAvailable(tools, "gifsicle"))
	webpTool := "none (install vips)"
	if tools.Available("vips") {
		webpTool = "vips"
	}
	fmt.Printf("  %-12s %s\n", "webp", webpTool)

	fmt.Println("Video tools:")
	reportTool(tools, "ffmpeg", "video transcoding (required)")
	reportTool(tools, "ffprobe", "video inspection")
	reportTool(tools, "gifski", "high quality video to GIF")

	fmt.Println("PDF tools:")
	pdfEngine := engine.NewPDFEngine(runner, nil)
	if cfg.Tools.GhostscriptPath != "" {
		pdfEngine.SetPath(cfg.Tools.GhostscriptPath)
	}
	if path := pdfEngine.GhostscriptPath(); path != "" {
		version, err := pdfEngine.Info()
		if err != nil {
			version = "unknown version"
		}
		fmt.Printf("  %-12s available   %s (%s)\n", "ghostscript", path, version)
	} else {
		fmt.Printf("  %-12s missing     PDF optimization disabled\n", "ghostscript")
	}

	return nil
}

// firstAvailable returns the first installed tool, or the built-in
// fallback when none is
func firstAvailable(tools *engine.ToolCache, names ...string) string {
	for _, name := range names {
		if tools.Available(name) {
			return name
		}
	}
	return "imaging"
}

func reportTool(tools *engine.ToolCache, name, purpose string) {
	status := "missing"
	if tools.Available(name) {
		status = "available"
	}
	fmt.Printf("  %-12s %-11s %s\n", name, status, purpose)
}
