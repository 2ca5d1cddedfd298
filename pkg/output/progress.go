package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"

	"github.com/namuan/dev-boost-sub001/pkg/models"
)

const progressTemplate = `{{counters . }} {{bar . "[" "█" ">" "░" "]"}} {{percent . }} {{string . "current"}}`

// ProgressFormatter renders a live progress bar while the batch runs and
// falls back to the human summary at the end.
type ProgressFormatter struct {
	mu     sync.Mutex
	writer io.Writer
	bar    *pb.ProgressBar
	human  *HumanFormatter
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{human: NewHumanFormatter()}
}

// Start initializes the formatter and shows the bar
func (f *ProgressFormatter) Start(writer io.Writer, totalFiles int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writer = writer
	f.bar = pb.New(totalFiles)
	f.bar.SetWriter(writer)
	f.bar.SetTemplateString(progressTemplate)
	f.bar.Start()
	return nil
}

// FileStarted shows the file currently being worked on
func (f *ProgressFormatter) FileStarted(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bar != nil {
		f.bar.Set("current", path)
	}
}

// FileCompleted advances the bar
func (f *ProgressFormatter) FileCompleted(result models.OperationResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bar != nil {
		f.bar.Increment()
	}
}

// ProgressUpdated is unused; FileCompleted drives the bar
func (f *ProgressFormatter) ProgressUpdated(progress models.BatchProgress) {}

// BatchCompleted is handled by Complete
func (f *ProgressFormatter) BatchCompleted(report models.BatchReport) {}

// Error writes failures below the bar as they happen
func (f *ProgressFormatter) Error(path string, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writer != nil {
		fmt.Fprintf(f.writer, "✗ %s: %s\n", path, message)
	}
}

// Complete stops the bar and prints the summary
func (f *ProgressFormatter) Complete(report *models.BatchReport) error {
	f.mu.Lock()
	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	writer := f.writer
	f.mu.Unlock()

	f.human.mu.Lock()
	f.human.writer = writer
	f.human.totalFiles = len(report.Results)
	f.human.mu.Unlock()
	return f.human.Complete(report)
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
