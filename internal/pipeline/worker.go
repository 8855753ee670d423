package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/storage"
)

// Worker renders report jobs for one export run
type Worker struct {
	config  ExportConfig
	storage storage.ObjectStorage
	now     func() time.Time
}

// NewWorker creates a report worker. A nil store skips uploads.
func NewWorker(config ExportConfig, store storage.ObjectStorage) *Worker {
	return &Worker{config: config, storage: store, now: time.Now}
}

// ProcessJobs renders every job on a bounded pool. All jobs run to completion;
// the first failure is returned.
func (w *Worker) ProcessJobs(ctx context.Context, run *ExportRun, jobs []Job) error {
	workerCount := w.config.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}

	run.Jobs = make([]*JobResult, len(jobs))
	for i, job := range jobs {
		run.Jobs[i] = &JobResult{Report: job.Name(), Status: JobStatusQueued}
	}

	var g errgroup.Group
	g.SetLimit(workerCount)

	for i, job := range jobs {
		job := job
		result := run.Jobs[i]
		g.Go(func() error {
			if err := w.processJob(ctx, run, job, result); err != nil {
				log.Error().Err(err).Str("run_id", run.ID).Str("report", job.Name()).Msg("export: report failed")
				return fmt.Errorf("report %s: %w", job.Name(), err)
			}
			return nil
		})
	}

	return g.Wait()
}

// processJob renders, writes and uploads a single report
func (w *Worker) processJob(ctx context.Context, run *ExportRun, job Job, result *JobResult) error {
	start := time.Now()
	result.Status = JobStatusProcessing

	table, err := w.renderWithRetry(ctx, job, result)
	if err != nil {
		return w.markJobFailed(result, err)
	}

	data, err := encodeCSV(table)
	if err != nil {
		return w.markJobFailed(result, fmt.Errorf("encode: %w", err))
	}

	fileName := job.Name() + ".csv"
	result.Path = filepath.Join(run.Dir, fileName)
	if err := writeFileAtomic(result.Path, data); err != nil {
		return w.markJobFailed(result, fmt.Errorf("write %s: %w", result.Path, err))
	}

	if w.storage != nil {
		key := storage.ResolveObjectKey(w.config.Prefix, objectPath(run, fileName))
		if err := w.storage.UploadObject(ctx, key, data, "text/csv"); err != nil {
			return w.markJobFailed(result, fmt.Errorf("upload %s: %w", key, err))
		}
		result.ObjectKey = key
	}

	result.Rows = len(table.Rows)
	result.Status = JobStatusCompleted
	now := w.now()
	result.ProcessedAt = &now

	log.Info().
		Str("run_id", run.ID).
		Str("report", job.Name()).
		Int("rows", result.Rows).
		Str("object_key", result.ObjectKey).
		Dur("duration", time.Since(start)).
		Msg("export: report written")

	return nil
}

func (w *Worker) renderWithRetry(ctx context.Context, job Job, result *JobResult) (Table, error) {
	attempts := w.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result.Attempts = attempt

		table, err := job.Render(ctx)
		if err == nil {
			return table, nil
		}
		lastErr = err

		if !retryable(err) || attempt == attempts {
			break
		}

		log.Warn().Err(err).Str("report", job.Name()).Int("attempt", attempt).Msg("export: render failed, retrying")
		select {
		case <-ctx.Done():
			return Table{}, ctx.Err()
		case <-time.After(w.config.RetryBackoff):
		}
	}

	return Table{}, lastErr
}

// markJobFailed records the failure on the job result
func (w *Worker) markJobFailed(result *JobResult, err error) error {
	result.Status = JobStatusFailed
	result.ErrorMessage = err.Error()
	return err
}

// retryable reports whether another attempt could succeed. Engine errors describe
// the data and will repeat.
func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, domain.ErrEmptyDataset),
		errors.Is(err, domain.ErrUnknownSupplier),
		errors.Is(err, domain.ErrInvalidHorizon):
		return false
	default:
		return true
	}
}

// objectPath is the run-relative key of a report: <date>/<run-id>/<file>.
func objectPath(run *ExportRun, fileName string) string {
	return run.Date.Format("2006-01-02") + "/" + run.ID + "/" + fileName
}
