package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-optimizer/internal/cache"
	"github.com/andresuchdata/inventory-optimizer/internal/storage"
)

// Orchestrator coordinates one export run: it takes the export lock, assigns a run
// id and hands the report jobs to a Worker.
type Orchestrator struct {
	cfg    ExportConfig
	locker cache.Locker
	makeW  func(cfg ExportConfig, store storage.ObjectStorage) *Worker
	store  storage.ObjectStorage
	now    func() time.Time
	newID  func() string
}

// NewOrchestrator creates a new Orchestrator. A nil locker disables cross-process
// locking; a nil store keeps reports local.
func NewOrchestrator(cfg ExportConfig, store storage.ObjectStorage, locker cache.Locker) *Orchestrator {
	if locker == nil {
		locker = cache.NewNoopLocker()
	}
	return &Orchestrator{
		cfg:    cfg,
		locker: locker,
		makeW:  NewWorker,
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Run renders every job into <OutputDir>/<date>/<run-id>/ and uploads the files
// when object storage is configured. cache.ErrLocked is returned while another
// export holds the lock.
func (o *Orchestrator) Run(ctx context.Context, jobs []Job) (*ExportRun, error) {
	if len(jobs) == 0 {
		return nil, fmt.Errorf("export: no reports requested")
	}

	lock, err := o.locker.Obtain(ctx, o.cfg.LockKey, o.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			log.Warn().Err(err).Msg("export: failed to release lock")
		}
	}()

	started := o.now()
	y, m, d := started.Date()
	run := &ExportRun{
		ID:        o.newID(),
		Date:      time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Status:    StatusPending,
		StartedAt: started,
	}
	run.Dir = filepath.Join(o.cfg.OutputDir, run.Date.Format("2006-01-02"), run.ID)

	log.Info().Str("run_id", run.ID).Int("reports", len(jobs)).Str("dir", run.Dir).Msg("export: run started")

	worker := o.makeW(o.cfg, o.store)
	worker.now = o.now

	run.Status = StatusProcessing
	err = worker.ProcessJobs(ctx, run, jobs)

	completed := o.now()
	run.CompletedAt = &completed
	if err != nil {
		run.Status = StatusFailed
		run.ErrorMessage = err.Error()
		return run, fmt.Errorf("export run %s: %w", run.ID, err)
	}

	run.Status = StatusCompleted
	log.Info().Str("run_id", run.ID).Dur("duration", completed.Sub(started)).Msg("export: run completed")
	return run, nil
}
