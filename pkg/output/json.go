package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/namuan/dev-boost-sub001/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting.
// Nothing is emitted while the batch runs; a single document with the
// full report is written at the end so the output stays parseable.
type JSONFormatter struct {
	mu     sync.Mutex
	writer io.Writer
	errors []JSONErrorData
}

// JSONReportData represents the final report
type JSONReportData struct {
	BatchID     string           `json:"batch_id"`
	Status      string           `json:"status"`
	Duration    string           `json:"duration"`
	DurationMs  int64            `json:"duration_ms"`
	Summary     JSONSummaryData  `json:"summary"`
	Results     []models.OperationResult `json:"results"`
	Errors      []JSONErrorData  `json:"errors,omitempty"`
}

// JSONSummaryData represents aggregate statistics
type JSONSummaryData struct {
	TotalFiles         int     `json:"total_files"`
	SuccessCount       int     `json:"success_count"`
	ErrorCount         int     `json:"error_count"`
	TotalOriginalSize  int64   `json:"total_original_size"`
	TotalOptimizedSize int64   `json:"total_optimized_size"`
	CompressionRatio   float64 `json:"compression_ratio"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalFiles int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.mu.Lock()
	f.writer = writer
	f.errors = nil
	f.mu.Unlock()
	return nil
}

// FileStarted produces no streaming output in JSON mode
func (f *JSONFormatter) FileStarted(path string) {}

// FileCompleted produces no streaming output; results land in the report
func (f *JSONFormatter) FileCompleted(result models.OperationResult) {}

// ProgressUpdated produces no streaming output in JSON mode
func (f *JSONFormatter) ProgressUpdated(progress models.BatchProgress) {}

// BatchCompleted is handled by Complete
func (f *JSONFormatter) BatchCompleted(report models.BatchReport) {}

// Error accumulates error entries for the final document
func (f *JSONFormatter) Error(path string, message string) {
	f.mu.Lock()
	f.errors = append(f.errors, JSONErrorData{Path: path, Error: message})
	f.mu.Unlock()
}

// Complete writes the final report as a single JSON document
func (f *JSONFormatter) Complete(report *models.BatchReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writer == nil {
		f.writer = io.Discard
	}

	doc := JSONReportData{
		BatchID:    report.ID,
		Status:     string(report.Status),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Summary: JSONSummaryData{
			TotalFiles:         len(report.Results),
			SuccessCount:       report.SuccessCount,
			ErrorCount:         report.ErrorCount,
			TotalOriginalSize:  report.TotalOriginalSize,
			TotalOptimizedSize: report.TotalOptimizedSize,
			CompressionRatio:   report.TotalCompressionRatio(),
		},
		Results: report.Results,
		Errors:  f.errors,
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
