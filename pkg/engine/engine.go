// Package engine implements the per-category optimization engines. Each
// engine tries an ordered list of strategies, preferring dedicated
// external tools and falling back to more general ones, so the best
// available tool on the host wins without any configuration.
package engine

import (
	"context"

	"github.com/namuan/dev-boost-sub001/pkg/models"
	"github.com/namuan/dev-boost-sub001/pkg/settings"
)

// Result describes how a single file was optimized.
type Result struct {
	// Method names the strategy that produced the output, e.g. "pngquant"
	// or "ffmpeg".
	Method string
	// Format is the output format actually written.
	Format string
	// Converted is true when the output format differs from the input.
	Converted bool
	// MetadataStripped is true when embedded metadata was removed.
	MetadataStripped bool
}

// TempRegistry receives the paths of temp artifacts an engine creates
// (in-place siblings, frame dump directories), so the session owner can
// remove whatever a crash or cancellation left behind.
type TempRegistry interface {
	Track(path string)
}

// Engine optimizes files of a single category.
type Engine interface {
	// Category returns the file category this engine handles.
	Category() models.Category
	// Available reports whether the engine can do useful work on this
	// host. Engines with a pure in-process fallback always return true.
	Available() bool
	// Optimize reads inputPath, writes an optimized version to
	// outputPath and reports how it was done. inputPath and outputPath
	// may be the same file.
	Optimize(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error)
}

// strategy is one way an engine can process a file. Strategies are tried
// in order; the first one that is available and applies to the input is
// attempted, and on failure the engine moves on to the next.
type strategy struct {
	name      string
	available func() bool
	applies   func(inputPath, outputPath string, s *settings.OptimizationSettings) bool
	attempt   func(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error)
}
