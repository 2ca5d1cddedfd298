package batch

import (
	"github.com/namuan/dev-boost-sub001/pkg/models"
)

// Observer receives batch lifecycle events. Callbacks are invoked from
// worker goroutines with no lock held, so they may safely call back into
// the orchestrator; implementations must do their own synchronization if
// they keep state.
type Observer interface {
	// FileStarted fires when a worker picks up a file.
	FileStarted(path string)

	// FileCompleted fires once per file with its final result.
	FileCompleted(result models.OperationResult)

	// ProgressUpdated fires after every progress change with a snapshot.
	ProgressUpdated(progress models.BatchProgress)

	// BatchCompleted fires exactly once per batch, including empty and
	// cancelled batches.
	BatchCompleted(report models.BatchReport)

	// Error fires for per-file failures as they happen.
	Error(path string, message string)
}

// NopObserver implements Observer with no-ops, for embedding when only a
// few events matter.
type NopObserver struct{}

func (NopObserver) FileStarted(string)                    {}
func (NopObserver) FileCompleted(models.OperationResult)  {}
func (NopObserver) ProgressUpdated(models.BatchProgress)  {}
func (NopObserver) BatchCompleted(models.BatchReport)     {}
func (NopObserver) Error(string, string)                  {}
