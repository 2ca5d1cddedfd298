package models

import (
	"time"
)

// OperationResult describes the outcome of optimizing a single file.
// It is created once per file and never mutated afterwards.
type OperationResult struct {
	// Path is the input file path
	Path string `json:"path"`

	// Success indicates whether the optimization succeeded
	Success bool `json:"success"`

	// OriginalSize is the input size in bytes
	OriginalSize int64 `json:"original_size"`

	// OptimizedSize is the output size in bytes (0 on failure)
	OptimizedSize int64 `json:"optimized_size"`

	// CompressionRatio is the percentage reduction in size
	CompressionRatio float64 `json:"compression_ratio"`

	// ProcessingTime is how long the optimization took
	ProcessingTime time.Duration `json:"processing_time"`

	// MethodUsed names the tool or engine path that produced the output
	MethodUsed string `json:"method_used,omitempty"`

	// Converted indicates the output format differs from the input format
	Converted bool `json:"converted,omitempty"`

	// MetadataStripped indicates embedded metadata (EXIF and the like) was
	// removed from the output
	MetadataStripped bool `json:"metadata_stripped,omitempty"`

	// ErrorMessage is set if and only if Success is false
	ErrorMessage string `json:"error_message,omitempty"`
}

// CompressionRatio computes the percentage reduction from original to
// optimized size. Returns 0 when the original size is 0.
func CompressionRatio(originalSize, optimizedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(originalSize-optimizedSize) / float64(originalSize) * 100
}

// BatchStatus represents the overall result of a batch run
type BatchStatus string

const (
	// StatusCompleted indicates every file optimized successfully
	StatusCompleted BatchStatus = "completed"
	// StatusPartial indicates some files failed
	StatusPartial BatchStatus = "partial"
	// StatusCancelled indicates the batch was cancelled before all files ran
	StatusCancelled BatchStatus = "cancelled"
)

// ExitCode returns the appropriate process exit code for the batch status
func (s BatchStatus) ExitCode() int {
	switch s {
	case StatusCompleted:
		return 0
	case StatusPartial:
		return 1
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// BatchReport is the terminal summary of a batch run
type BatchReport struct {
	// ID uniquely identifies the batch run
	ID string

	// Results holds one entry per processed file, in completion order
	Results []OperationResult

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Totals
	TotalOriginalSize  int64
	TotalOptimizedSize int64
	SuccessCount       int
	ErrorCount         int

	// Status is the overall batch outcome
	Status BatchStatus
}

// TotalCompressionRatio returns the aggregate percentage reduction across
// all successfully optimized files
func (r *BatchReport) TotalCompressionRatio() float64 {
	return CompressionRatio(r.TotalOriginalSize, r.TotalOptimizedSize)
}
