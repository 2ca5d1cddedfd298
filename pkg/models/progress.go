package models

import (
	"time"
)

// BatchProgress tracks the state of a running batch operation.
//
// A single instance is shared between the orchestrator and its workers; the
// orchestrator guards every mutation with one mutex and hands immutable
// copies to subscribers. All quantities below are stored; derived values
// (percentage, speed, ETA) are computed on demand from the stored fields.
type BatchProgress struct {
	// TotalFiles is the number of files submitted to the batch
	TotalFiles int

	// CompletedFiles is the number of files that finished (success or failure)
	CompletedFiles int

	// SuccessCount and ErrorCount partition CompletedFiles
	SuccessCount int
	ErrorCount   int

	// TotalOriginalSize and TotalOptimizedSize accumulate byte totals of
	// successfully optimized files
	TotalOriginalSize  int64
	TotalOptimizedSize int64

	// BytesProcessed is the total input bytes of completed files
	BytesProcessed int64

	// StartTime is when the batch began
	StartTime time.Time

	// CurrentFile is the path of the most recently started file
	CurrentFile string

	// CurrentOperation is a human-readable status line
	CurrentOperation string
}

// ProgressPercentage returns completion as a value in [0, 100]
func (p *BatchProgress) ProgressPercentage() float64 {
	if p.TotalFiles == 0 {
		return 0
	}
	return float64(p.CompletedFiles) / float64(p.TotalFiles) * 100
}

// TotalCompressionRatio returns the aggregate percentage size reduction so far
func (p *BatchProgress) TotalCompressionRatio() float64 {
	return CompressionRatio(p.TotalOriginalSize, p.TotalOptimizedSize)
}

// ElapsedTime returns time since the batch started
func (p *BatchProgress) ElapsedTime() time.Duration {
	if p.StartTime.IsZero() {
		return 0
	}
	return time.Since(p.StartTime)
}

// RemainingTime extrapolates the time left from the per-file average so far.
// Returns 0 until at least one file has completed.
func (p *BatchProgress) RemainingTime() time.Duration {
	if p.CompletedFiles == 0 || p.TotalFiles == 0 {
		return 0
	}
	remaining := p.TotalFiles - p.CompletedFiles
	if remaining <= 0 {
		return 0
	}
	elapsed := p.ElapsedTime()
	if elapsed <= 0 {
		return 0
	}
	perFile := elapsed / time.Duration(p.CompletedFiles)
	return perFile * time.Duration(remaining)
}

// ProcessingSpeed returns throughput in files per second
func (p *BatchProgress) ProcessingSpeed() float64 {
	elapsed := p.ElapsedTime().Seconds()
	if elapsed == 0 || p.CompletedFiles == 0 {
		return 0
	}
	return float64(p.CompletedFiles) / elapsed
}

// BytesPerSecond returns throughput in input bytes per second
func (p *BatchProgress) BytesPerSecond() float64 {
	elapsed := p.ElapsedTime().Seconds()
	if elapsed == 0 || p.BytesProcessed == 0 {
		return 0
	}
	return float64(p.BytesProcessed) / elapsed
}
