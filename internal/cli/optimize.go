package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/namuan/dev-boost-sub001/pkg/batch"
	"github.com/namuan/dev-boost-sub001/pkg/config"
	"github.com/namuan/dev-boost-sub001/pkg/engine"
	"github.com/namuan/dev-boost-sub001/pkg/fileman"
	"github.com/namuan/dev-boost-sub001/pkg/logging"
	"github.com/namuan/dev-boost-sub001/pkg/models"
	"github.com/namuan/dev-boost-sub001/pkg/output"
	"github.com/namuan/dev-boost-sub001/pkg/settings"
)

// OptimizeFlags holds optimize command flags
type OptimizeFlags struct {
	Preset       string
	NamedPreset  string
	OutputDir    string
	OutputFormat string
	Workers      int
	NoBackup     bool
	Preserve     bool

	// Per-type overrides
	ImageQuality int
	MaxWidth     int
	MaxHeight    int
	ImageFormat  string
	VideoQuality int
	VideoBitrate string
	VideoFPS     int
	PDFQuality   int
	PDFDPI       int

	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var optimizeFlags OptimizeFlags

// NewOptimizeCommand creates the optimize command
func NewOptimizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize [files...]",
		Short: "Optimize images, videos and PDFs",
		Long: `Optimize one or more files. The file type is detected from content,
the matching engine is selected automatically and files are processed
in parallel. Output files are written next to the input with a
-compressed suffix unless --output-dir is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runOptimize,
	}

	cmd.Flags().StringVarP(&optimizeFlags.Preset, "preset", "P", "medium", "quality preset: maximum, high, medium, low, minimum")
	cmd.Flags().StringVar(&optimizeFlags.NamedPreset, "use-preset", "", "apply a saved preset by name (see 'fileopt presets')")
	cmd.Flags().StringVarP(&optimizeFlags.OutputDir, "output-dir", "d", "", "directory for optimized files (default: next to input)")
	cmd.Flags().StringVarP(&optimizeFlags.OutputFormat, "output", "o", "", "output format: human, json, progress")
	cmd.Flags().IntVarP(&optimizeFlags.Workers, "parallel", "p", 0, "number of parallel workers (default: 4)")
	cmd.Flags().BoolVar(&optimizeFlags.NoBackup, "no-backup", false, "skip creating backups before optimization")
	cmd.Flags().BoolVar(&optimizeFlags.Preserve, "preserve-metadata", false, "keep EXIF and other embedded metadata")

	cmd.Flags().IntVar(&optimizeFlags.ImageQuality, "image-quality", -1, "image quality 0-100 (overrides preset)")
	cmd.Flags().IntVar(&optimizeFlags.MaxWidth, "max-width", 0, "maximum image/video width in pixels")
	cmd.Flags().IntVar(&optimizeFlags.MaxHeight, "max-height", 0, "maximum image/video height in pixels")
	cmd.Flags().StringVar(&optimizeFlags.ImageFormat, "format", "", "convert to format: jpeg, png, webp (images), mp4, webm, gif (videos)")
	cmd.Flags().IntVar(&optimizeFlags.VideoQuality, "video-quality", -1, "video CRF 0-51, lower is better (overrides preset)")
	cmd.Flags().StringVar(&optimizeFlags.VideoBitrate, "bitrate", "", "video bitrate (e.g. \"1M\", \"500k\")")
	cmd.Flags().IntVar(&optimizeFlags.VideoFPS, "fps", 0, "video frame rate")
	cmd.Flags().IntVar(&optimizeFlags.PDFQuality, "pdf-quality", -1, "PDF quality 0-100 (overrides preset)")
	cmd.Flags().IntVar(&optimizeFlags.PDFDPI, "dpi", 0, "PDF image resolution 72-600")

	cmd.Flags().StringVar(&optimizeFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&optimizeFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&optimizeFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	s, err := buildSettings(cfg)
	if err != nil {
		return err
	}
	if violations := s.Validate(); len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "Error: %s\n", v)
		}
		return fmt.Errorf("invalid settings")
	}

	logger, err := createLogger(optimizeFlags.LogFile, optimizeFlags.LogFormat, optimizeFlags.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	formatName := optimizeFlags.OutputFormat
	if formatName == "" {
		formatName = cfg.Output.Format
	}
	formatter, err := output.NewFormatter(formatName)
	if err != nil {
		return err
	}

	if err := formatter.Start(quietWriter(globalFlags.Quiet), len(args)); err != nil {
		return err
	}

	workers := optimizeFlags.Workers
	if workers <= 0 {
		workers = cfg.Performance.MaxWorkers
	}

	orchestrator, files := newOrchestrator(cfg, logger, workers)
	defer files.Cleanup()
	orchestrator.AddObserver(formatter)

	// SIGINT requests cooperative cancellation; in-flight files finish.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nCancelling, waiting for running files...")
		orchestrator.Cancel()
	}()

	report, err := orchestrator.OptimizeBatch(ctx, args, optimizeFlags.OutputDir, s)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	if err := formatter.Complete(report); err != nil {
		return err
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// quietWriter returns the formatter destination. Quiet mode hands the
// formatters an untyped nil so their writer guards engage.
func quietWriter(quiet bool) io.Writer {
	if quiet {
		return nil
	}
	return os.Stdout
}

// newOrchestrator wires the engines and file manager for a batch run.
// The returned manager owns the session's temp artifacts; the caller
// runs its Cleanup when the batch is over.
func newOrchestrator(cfg *config.Config, logger logging.Logger, workers int) (*batch.Orchestrator, *fileman.Manager) {
	runner := engine.NewRunner()
	tools := engine.NewToolCache(runner)
	files := fileman.NewManager(cfg.Backup.Dir)

	videoEngine := engine.NewVideoEngine(runner, tools, logger)
	videoEngine.SetTempRegistry(files)

	pdfEngine := engine.NewPDFEngine(runner, logger)
	pdfEngine.SetTempRegistry(files)
	if cfg.Tools.GhostscriptPath != "" {
		pdfEngine.SetPath(cfg.Tools.GhostscriptPath)
	}

	engines := map[models.Category]engine.Engine{
		models.CategoryImage: engine.NewImageEngine(runner, tools, logger),
		models.CategoryVideo: videoEngine,
		models.CategoryPDF:   pdfEngine,
	}

	return batch.NewOrchestrator(engines, files, logger, workers), files
}

// buildSettings resolves the effective settings for the run: a named
// preset when requested, the preset flag otherwise, then explicit flag
// overrides on top.
func buildSettings(cfg *config.Config) (*settings.OptimizationSettings, error) {
	var s *settings.OptimizationSettings

	if optimizeFlags.NamedPreset != "" {
		manager, err := newSettingsManager()
		if err != nil {
			return nil, err
		}
		preset, ok := manager.Preset(optimizeFlags.NamedPreset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %q (see 'fileopt presets')", optimizeFlags.NamedPreset)
		}
		s = preset.Settings.Clone()
	} else {
		s = settings.Default()
		preset, err := settings.ParseQualityPreset(optimizeFlags.Preset)
		if err != nil {
			return nil, err
		}
		s.QualityPreset = preset
	}

	if optimizeFlags.NoBackup {
		s.CreateBackup = false
	}
	if optimizeFlags.Preserve {
		s.PreserveMetadata = true
	}
	if optimizeFlags.ImageQuality >= 0 {
		s.ImageQuality = settings.Int(optimizeFlags.ImageQuality)
	}
	if optimizeFlags.MaxWidth > 0 {
		s.MaxWidth = settings.Int(optimizeFlags.MaxWidth)
	}
	if optimizeFlags.MaxHeight > 0 {
		s.MaxHeight = settings.Int(optimizeFlags.MaxHeight)
	}
	if optimizeFlags.ImageFormat != "" {
		s.OutputFormat = settings.String(optimizeFlags.ImageFormat)
	}
	if optimizeFlags.VideoQuality >= 0 {
		s.VideoQuality = settings.Int(optimizeFlags.VideoQuality)
	}
	if optimizeFlags.VideoBitrate != "" {
		s.VideoBitrate = settings.String(optimizeFlags.VideoBitrate)
	}
	if optimizeFlags.VideoFPS > 0 {
		s.VideoFPS = settings.Int(optimizeFlags.VideoFPS)
	}
	if optimizeFlags.PDFQuality >= 0 {
		s.PDFQuality = settings.Int(optimizeFlags.PDFQuality)
	}
	if optimizeFlags.PDFDPI > 0 {
		s.PDFDPI = settings.Int(optimizeFlags.PDFDPI)
	}

	return s, nil
}

// loadConfig loads the configuration, preferring an explicit --config
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// createLogger creates a logger based on configuration
func createLogger(logFile, logFormat, logLevel string) (logging.Logger, error) {
	if logFile == "" {
		return logging.NewNullLogger(), nil
	}

	var format logging.Format
	switch logFormat {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	config := logging.FileLoggerConfig{
		Path:       logFile,
		Format:     format,
		Level:      logging.ParseLevel(logLevel),
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	}

	return logging.NewFileLogger(config)
}
