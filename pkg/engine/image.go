package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/namuan/dev-boost-sub001/pkg/logging"
	"github.com/namuan/dev-boost-sub001/pkg/models"
	"github.com/namuan/dev-boost-sub001/pkg/settings"
)

const imageToolTimeout = 30 * time.Second

// ImageEngine optimizes images. Dedicated tools (pngquant, jpegoptim,
// gifsicle) are tried first for the formats they know, then the vips CLI,
// and finally a pure in-process path that needs no external binaries at
// all. The in-process fallback means the engine is always available.
type ImageEngine struct {
	runner     Runner
	tools      *ToolCache
	logger     logging.Logger
	strategies []strategy
}

func NewImageEngine(runner Runner, tools *ToolCache, logger logging.Logger) *ImageEngine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	e := &ImageEngine{runner: runner, tools: tools, logger: logger}
	e.strategies = []strategy{
		{
			name:      "pngquant",
			available: func() bool { return tools.Available("pngquant") },
			applies: func(in, out string, s *settings.OptimizationSettings) bool {
				return isExt(in, ".png") && isExt(out, ".png") && !wantsResize(s)
			},
			attempt: e.runPngquant,
		},
		{
			name:      "jpegoptim",
			available: func() bool { return tools.Available("jpegoptim") },
			applies: func(in, out string, s *settings.OptimizationSettings) bool {
				return isExt(in, ".jpg", ".jpeg") && isExt(out, ".jpg", ".jpeg") && !wantsResize(s)
			},
			attempt: e.runJpegoptim,
		},
		{
			name:      "gifsicle",
			available: func() bool { return tools.Available("gifsicle") },
			applies: func(in, out string, s *settings.OptimizationSettings) bool {
				return isExt(in, ".gif") && isExt(out, ".gif") && !wantsResize(s)
			},
			attempt: e.runGifsicle,
		},
		{
			name:      "vips",
			available: func() bool { return tools.Available("vips") },
			applies: func(in, out string, s *settings.OptimizationSettings) bool {
				return isExt(out, ".jpg", ".jpeg", ".png", ".webp")
			},
			attempt: e.runVips,
		},
		{
			name:      "imaging",
			available: func() bool { return true },
			applies: func(in, out string, s *settings.OptimizationSettings) bool {
				return true
			},
			attempt: e.runNative,
		},
	}
	return e
}

func (e *ImageEngine) Category() models.Category { return models.CategoryImage }

// Available always reports true because of the in-process fallback.
func (e *ImageEngine) Available() bool { return true }

func (e *ImageEngine) Optimize(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error) {
	var lastErr error
	for _, st := range e.strategies {
		if !st.available() || !st.applies(inputPath, outputPath, s) {
			continue
		}
		result, err := st.attempt(ctx, inputPath, outputPath, s)
		if err == nil {
			fields := logging.FileFields(inputPath, outputPath)
			fields[logging.FieldMethod] = st.name
			e.logger.Debug(ctx, "image optimized", fields)
			return result, nil
		}
		lastErr = err
		fields := logging.FailureFields(inputPath, err)
		fields[logging.FieldStrategy] = st.name
		e.logger.Warn(ctx, "image strategy failed, trying next", fields)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no strategy applies to %s", inputPath)
	}
	return nil, fmt.Errorf("image optimization failed for %s: %w", inputPath, lastErr)
}

func (e *ImageEngine) runPngquant(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error) {
	q := s.EffectiveQuality(models.CategoryImage)
	low := q - 10
	if low < 0 {
		low = 0
	}
	high := q + 5
	if high > 100 {
		high = 100
	}
	args := []string{
		"--quality", fmt.Sprintf("%d-%d", low, high),
		"--output", outputPath,
	}
	if !s.PreserveMetadata {
		args = append(args, "--strip")
	}
	args = append(args, inputPath)

	res := e.runner.Run(ctx, imageToolTimeout, "pngquant", args...)
	if !res.Success {
		// Exit 98/99 mean the result would be larger than the input;
		// keeping the original is not a failure.
		if res.ExitCode == 98 || res.ExitCode == 99 {
			if err := copyContents(inputPath, outputPath); err != nil {
				return nil, err
			}
			return &Result{Method: "pngquant", Format: "png"}, nil
		}
		return nil, toolError("pngquant", res)
	}
	return &Result{Method: "pngquant", Format: "png", MetadataStripped: !s.PreserveMetadata}, nil
}

func (e *ImageEngine) runJpegoptim(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error) {
	// jpegoptim rewrites files in place, so the input is copied to the
	// destination first and optimized there.
	if !samePath(inputPath, outputPath) {
		if err := copyContents(inputPath, outputPath); err != nil {
			return nil, err
		}
	}
	q := s.EffectiveQuality(models.CategoryImage)
	args := []string{fmt.Sprintf("--max=%d", q)}
	if s.ProgressiveJPEG {
		args = append(args, "--all-progressive")
	}
	if s.PreserveMetadata {
		args = append(args, "--preserve")
	} else {
		args = append(args, "--strip-all")
	}
	args = append(args, outputPath)

	res := e.runner.Run(ctx, imageToolTimeout, "jpegoptim", args...)
	if !res.Success {
		return nil, toolError("jpegoptim", res)
	}
	return &Result{Method: "jpegoptim", Format: "jpeg", MetadataStripped: !s.PreserveMetadata}, nil
}

func (e *ImageEngine) runGifsicle(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error) {
	args := []string{"--optimize=3", "-o", outputPath, inputPath}
	res := e.runner.Run(ctx, imageToolTimeout, "gifsicle", args...)
	if !res.Success {
		return nil, toolError("gifsicle", res)
	}
	return &Result{Method: "gifsicle", Format: "gif"}, nil
}

func (e *ImageEngine) runVips(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error) {
	q := s.EffectiveQuality(models.CategoryImage)
	opts := make([]string, 0, 2)
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".jpg", ".jpeg", ".webp":
		opts = append(opts, fmt.Sprintf("Q=%d", q))
	case ".png":
		opts = append(opts, "compression=9")
	}
	if !s.PreserveMetadata {
		opts = append(opts, "strip")
	}
	target := outputPath
	if len(opts) > 0 {
		target = fmt.Sprintf("%s[%s]", outputPath, strings.Join(opts, ","))
	}

	var args []string
	if w, h, ok := resizeBounds(s); ok {
		// thumbnail keeps aspect ratio and only ever scales down.
		args = []string{"thumbnail", inputPath, target, fmt.Sprintf("%d", w),
			"--height", fmt.Sprintf("%d", h), "--size", "down"}
	} else {
		args = []string{"copy", inputPath, target}
	}

	res := e.runner.Run(ctx, imageToolTimeout, "vips", args...)
	if !res.Success {
		return nil, toolError("vips", res)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(outputPath)), ".")
	if format == "jpg" {
		format = "jpeg"
	}
	return &Result{
		Method:           "vips",
		Format:           format,
		Converted:        !sameExt(inputPath, outputPath),
		MetadataStripped: !s.PreserveMetadata,
	}, nil
}

func isExt(path string, exts ...string) bool {
	got := strings.ToLower(filepath.Ext(path))
	for _, ext := range exts {
		if got == ext {
			return true
		}
	}
	return false
}

func sameExt(a, b string) bool {
	ea := strings.ToLower(filepath.Ext(a))
	eb := strings.ToLower(filepath.Ext(b))
	if ea == ".jpeg" {
		ea = ".jpg"
	}
	if eb == ".jpeg" {
		eb = ".jpg"
	}
	return ea == eb
}

func samePath(a, b string) bool {
	ra, err1 := filepath.Abs(a)
	rb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return a == b
	}
	return ra == rb
}

func wantsResize(s *settings.OptimizationSettings) bool {
	_, _, ok := resizeBounds(s)
	return ok
}

// resizeBounds returns the bounding box for downscaling. When only one
// dimension is set the other is left effectively unbounded.
func resizeBounds(s *settings.OptimizationSettings) (int, int, bool) {
	if s.MaxWidth == nil && s.MaxHeight == nil {
		return 0, 0, false
	}
	const unbounded = 100000
	w, h := unbounded, unbounded
	if s.MaxWidth != nil {
		w = *s.MaxWidth
	}
	if s.MaxHeight != nil {
		h = *s.MaxHeight
	}
	return w, h, true
}

func toolError(tool string, res RunResult) error {
	if res.TimedOut {
		return fmt.Errorf("%s timed out", tool)
	}
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = res.Err
	}
	return fmt.Errorf("%s failed (exit %d): %s", tool, res.ExitCode, msg)
}

func copyContents(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
