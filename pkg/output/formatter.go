// Package output renders batch progress and results for the terminal,
// as plain text, a live progress bar, or JSON for scripting.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/namuan/dev-boost-sub001/pkg/batch"
	"github.com/namuan/dev-boost-sub001/pkg/models"
)

// Formatter renders a batch run. A formatter is also a batch.Observer so
// it can be registered directly on the orchestrator.
type Formatter interface {
	batch.Observer

	// Start initializes the formatter before the batch begins.
	Start(writer io.Writer, totalFiles int) error

	// Complete renders the final summary.
	Complete(report *models.BatchReport) error

	// Name returns the formatter name
	Name() string
}

// NewFormatter returns the formatter for a name: "human", "json" or
// "progress".
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "human", "":
		return NewHumanFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "progress":
		return NewProgressFormatter(), nil
	}
	return nil, fmt.Errorf("unknown output format: %q (use: human, json, progress)", name)
}

// FormatBytes formats bytes in human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
