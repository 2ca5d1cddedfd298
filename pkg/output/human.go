package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/namuan/dev-boost-sub001/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	mu         sync.Mutex
	writer     io.Writer
	totalFiles int
	completed  int
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalFiles int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writer = writer
	f.totalFiles = totalFiles
	f.completed = 0

	if writer != nil {
		fmt.Fprintf(writer, "Optimizing %d file(s)\n", totalFiles)
	}
	return nil
}

// FileStarted reports that a file was picked up
func (f *HumanFormatter) FileStarted(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writer == nil {
		return
	}
	fmt.Fprintf(f.writer, "  Optimizing %s...\n", path)
}

// FileCompleted reports the outcome of one file
func (f *HumanFormatter) FileCompleted(result models.OperationResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed++
	if f.writer == nil {
		return
	}
	if result.Success {
		notes := result.MethodUsed
		if result.Converted {
			notes += ", converted"
		}
		if result.MetadataStripped {
			notes += ", metadata stripped"
		}
		fmt.Fprintf(f.writer, "[%d/%d] ✓ %s: %s -> %s (%.1f%%, %s)\n",
			f.completed, f.totalFiles, result.Path,
			FormatBytes(result.OriginalSize), FormatBytes(result.OptimizedSize),
			result.CompressionRatio, notes)
	} else {
		fmt.Fprintf(f.writer, "[%d/%d] ✗ %s: %s\n",
			f.completed, f.totalFiles, result.Path, result.ErrorMessage)
	}
}

// ProgressUpdated is unused; the per-file lines carry the progress
func (f *HumanFormatter) ProgressUpdated(progress models.BatchProgress) {}

// BatchCompleted is handled by Complete, which the caller invokes with
// the final report
func (f *HumanFormatter) BatchCompleted(report models.BatchReport) {}

// Error output is folded into the per-file failure line
func (f *HumanFormatter) Error(path string, message string) {}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(report *models.BatchReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writer == nil {
		f.writer = io.Discard
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Batch completed in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Summary:\n")
	fmt.Fprintf(f.writer, "  Files optimized:  %d\n", report.SuccessCount)
	fmt.Fprintf(f.writer, "  Files failed:     %d\n", report.ErrorCount)
	fmt.Fprintf(f.writer, "  Original size:    %s\n", FormatBytes(report.TotalOriginalSize))
	fmt.Fprintf(f.writer, "  Optimized size:   %s\n", FormatBytes(report.TotalOptimizedSize))
	fmt.Fprintf(f.writer, "  Space saved:      %s (%.1f%%)\n",
		FormatBytes(report.TotalOriginalSize-report.TotalOptimizedSize),
		report.TotalCompressionRatio())
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Status: %s\n", report.Status)

	if report.ErrorCount > 0 {
		fmt.Fprintf(f.writer, "\nErrors:\n")
		for _, r := range report.Results {
			if !r.Success {
				fmt.Fprintf(f.writer, "  %s: %s\n", r.Path, r.ErrorMessage)
			}
		}
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}
