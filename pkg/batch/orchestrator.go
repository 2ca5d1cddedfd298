// Package batch coordinates optimization of many files across a fixed
// pool of workers, with progress tracking, cooperative cancellation and
// per-file failure isolation.
package batch

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/namuan/dev-boost-sub001/pkg/engine"
	"github.com/namuan/dev-boost-sub001/pkg/fileman"
	"github.com/namuan/dev-boost-sub001/pkg/logging"
	"github.com/namuan/dev-boost-sub001/pkg/models"
	"github.com/namuan/dev-boost-sub001/pkg/settings"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// Orchestrator runs optimization batches. A single orchestrator runs at
// most one batch at a time; concurrent submissions are rejected rather
// than queued.
type Orchestrator struct {
	engines map[models.Category]engine.Engine
	files   *fileman.Manager
	logger  logging.Logger
	workers int

	mu        sync.Mutex
	running   bool
	cancelled bool
	progress  models.BatchProgress
	observers []Observer
}

// NewOrchestrator wires an orchestrator from its collaborators. workers
// <= 0 selects DefaultWorkers.
func NewOrchestrator(engines map[models.Category]engine.Engine, files *fileman.Manager, logger logging.Logger, workers int) *Orchestrator {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Orchestrator{
		engines: engines,
		files:   files,
		logger:  logger,
		workers: workers,
	}
}

// AddObserver registers an event subscriber. Must be called before the
// batch starts.
func (o *Orchestrator) AddObserver(obs Observer) {
	o.mu.Lock()
	o.observers = append(o.observers, obs)
	o.mu.Unlock()
}

// IsRunning reports whether a batch is in flight.
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Cancel requests cooperative cancellation. Files already dispatched run
// to completion; queued files are skipped.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	o.cancelled = true
	o.mu.Unlock()
}

// Progress returns a snapshot of the current batch progress.
func (o *Orchestrator) Progress() models.BatchProgress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// job pairs an input file with its precomputed destination.
type job struct {
	record models.FileRecord
	output string
}

// OptimizeBatch validates the settings, resolves every input path up
// front and then optimizes the files on the worker pool. It blocks until
// the batch finishes. Results appear in completion order, which is not
// the submission order.
func (o *Orchestrator) OptimizeBatch(ctx context.Context, paths []string, outputDir string, s *settings.OptimizationSettings) (*models.BatchReport, error) {
	if violations := s.Validate(); len(violations) > 0 {
		return nil, fmt.Errorf("invalid settings: %s", strings.Join(violations, "; "))
	}

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, fmt.Errorf("a batch is already running")
	}
	o.running = true
	o.cancelled = false
	o.progress = models.BatchProgress{
		TotalFiles: len(paths),
		StartTime:  time.Now(),
	}
	observers := append([]Observer(nil), o.observers...)
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	report := &models.BatchReport{
		ID:        uuid.New().String(),
		StartTime: time.Now(),
	}

	// Resolve all inputs and destinations before any work starts so
	// colliding destinations fail the whole batch instead of racing.
	jobs := make([]job, 0, len(paths))
	var preFailed []models.OperationResult
	destinations := make(map[string]string)
	for _, path := range paths {
		records := o.files.ResolveInput(path)
		if len(records) == 0 {
			preFailed = append(preFailed, failedResult(path, "file not found or not a regular file"))
			continue
		}
		for _, rec := range records {
			if !rec.IsSupported {
				preFailed = append(preFailed, failedResult(rec.Path, fmt.Sprintf("unsupported file type: %s", rec.MIMEType)))
				continue
			}
			out := o.files.OutputPath(rec.Path, outputDir, s)
			if prev, dup := destinations[out]; dup {
				return nil, fmt.Errorf("output path collision: %s and %s both map to %s", prev, rec.Path, out)
			}
			destinations[out] = rec.Path
			jobs = append(jobs, job{record: rec, output: out})
		}
	}

	o.logger.Info(ctx, "batch started", logging.Fields{
		logging.FieldBatch: report.ID,
		"files":            len(paths),
		"workers":          o.workers,
	})

	var wg sync.WaitGroup
	sem := make(chan struct{}, o.workers)
	resultCh := make(chan models.OperationResult, len(jobs))

	dispatched := 0
	for _, j := range jobs {
		if o.isCancelled() {
			break
		}
		dispatched++
		wg.Add(1)
		sem <- struct{}{}
		go func(j job) {
			defer wg.Done()
			defer func() { <-sem }()
			resultCh <- o.processFile(ctx, j, s, observers)
		}(j)
	}
	wg.Wait()
	close(resultCh)

	for _, r := range preFailed {
		o.recordResult(r, observers)
		report.Results = append(report.Results, r)
	}
	for r := range resultCh {
		report.Results = append(report.Results, r)
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	for _, r := range report.Results {
		if r.Success {
			report.SuccessCount++
			report.TotalOriginalSize += r.OriginalSize
			report.TotalOptimizedSize += r.OptimizedSize
		} else {
			report.ErrorCount++
		}
	}

	switch {
	case o.isCancelled() && dispatched < len(jobs):
		report.Status = models.StatusCancelled
	case report.ErrorCount > 0:
		report.Status = models.StatusPartial
	default:
		report.Status = models.StatusCompleted
	}

	o.logger.Info(ctx, "batch finished", logging.Fields{
		logging.FieldBatch: report.ID,
		"status":           string(report.Status),
		"success":          report.SuccessCount,
		"errors":           report.ErrorCount,
		"duration":         report.Duration.String(),
	})

	for _, obs := range observers {
		obs.BatchCompleted(*report)
	}
	return report, nil
}

// OptimizeFile optimizes a single file outside of any batch.
func (o *Orchestrator) OptimizeFile(ctx context.Context, path, outputDir string, s *settings.OptimizationSettings) (*models.OperationResult, error) {
	report, err := o.OptimizeBatch(ctx, []string{path}, outputDir, s)
	if err != nil {
		return nil, err
	}
	if len(report.Results) == 0 {
		return nil, fmt.Errorf("no result produced for %s", path)
	}
	return &report.Results[0], nil
}

// processFile runs one file end to end. A panic inside an engine is
// converted into a failed result so one bad file cannot take down the
// batch.
func (o *Orchestrator) processFile(ctx context.Context, j job, s *settings.OptimizationSettings, observers []Observer) (result models.OperationResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = failedResult(j.record.Path, fmt.Sprintf("internal error: %v", r))
			result.OriginalSize = j.record.Size
			result.ProcessingTime = time.Since(started)
			o.recordResult(result, observers)
		}
	}()

	o.mu.Lock()
	o.progress.CurrentFile = j.record.Path
	o.progress.CurrentOperation = fmt.Sprintf("Optimizing %s", j.record.Path)
	snapshot := o.progress
	o.mu.Unlock()
	for _, obs := range observers {
		obs.FileStarted(j.record.Path)
		obs.ProgressUpdated(snapshot)
	}

	result = o.optimizeOne(ctx, j, s)
	result.ProcessingTime = time.Since(started)
	o.recordResult(result, observers)
	return result
}

func (o *Orchestrator) optimizeOne(ctx context.Context, j job, s *settings.OptimizationSettings) models.OperationResult {
	eng, ok := o.engines[j.record.Category]
	if !ok || eng == nil {
		r := failedResult(j.record.Path, fmt.Sprintf("no engine for category %q", j.record.Category))
		r.OriginalSize = j.record.Size
		return r
	}

	if s.CreateBackup {
		if _, err := o.files.CreateBackup(j.record.Path); err != nil {
			r := failedResult(j.record.Path, fmt.Sprintf("backup failed: %v", err))
			r.OriginalSize = j.record.Size
			return r
		}
	}

	engResult, err := eng.Optimize(ctx, j.record.Path, j.output, s)
	if err != nil {
		r := failedResult(j.record.Path, err.Error())
		r.OriginalSize = j.record.Size
		return r
	}

	outInfo, err := os.Stat(j.output)
	if err != nil {
		r := failedResult(j.record.Path, fmt.Sprintf("output missing after optimization: %v", err))
		r.OriginalSize = j.record.Size
		return r
	}

	return models.OperationResult{
		Path:             j.record.Path,
		Success:          true,
		OriginalSize:     j.record.Size,
		OptimizedSize:    outInfo.Size(),
		CompressionRatio: models.CompressionRatio(j.record.Size, outInfo.Size()),
		MethodUsed:       engResult.Method,
		Converted:        engResult.Converted,
		MetadataStripped: engResult.MetadataStripped,
	}
}

// recordResult folds a finished result into the shared progress under
// the lock, then notifies observers outside it.
func (o *Orchestrator) recordResult(result models.OperationResult, observers []Observer) {
	o.mu.Lock()
	o.progress.CompletedFiles++
	o.progress.BytesProcessed += result.OriginalSize
	if result.Success {
		o.progress.SuccessCount++
		o.progress.TotalOriginalSize += result.OriginalSize
		o.progress.TotalOptimizedSize += result.OptimizedSize
	} else {
		o.progress.ErrorCount++
	}
	snapshot := o.progress
	o.mu.Unlock()

	for _, obs := range observers {
		if !result.Success {
			obs.Error(result.Path, result.ErrorMessage)
		}
		obs.FileCompleted(result)
		obs.ProgressUpdated(snapshot)
	}
}

func (o *Orchestrator) isCancelled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

func failedResult(path, message string) models.OperationResult {
	return models.OperationResult{
		Path:         path,
		Success:      false,
		ErrorMessage: message,
	}
}
