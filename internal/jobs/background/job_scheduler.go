package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"invoicedesk/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// OverdueSweepJob is the name of the job that flags past-due invoices
const OverdueSweepJob = "overdue-sweep"

// DefaultSweepBatch bounds how many invoices one sweep submission flags
const DefaultSweepBatch = 500

// OverdueMarker is the part of the invoice service the sweep uses
type OverdueMarker interface {
	MarkOverdueInvoices(ctx context.Context, asOf time.Time, batchSize int) (int, error)
}

var _ OverdueMarker = (services.InvoiceServiceInterface)(nil)

// JobScheduler runs periodic maintenance of invoice state
type JobScheduler struct {
	scheduler gocron.Scheduler
	invoices  OverdueMarker
	interval  time.Duration
	batchSize int
	logger    zerolog.Logger
	now       func() time.Time
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler with the overdue sweep registered.
// A non-positive interval defaults to one hour and a non-positive batch size
// to DefaultSweepBatch.
func NewJobScheduler(invoices OverdueMarker, interval time.Duration, batchSize int, logger zerolog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if batchSize <= 0 {
		batchSize = DefaultSweepBatch
	}

	js := &JobScheduler{
		scheduler: scheduler,
		invoices:  invoices,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "scheduler").Logger(),
		now:       time.Now,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info().Int("jobs", len(js.jobs)).Msg("starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	job, err := js.scheduler.NewJob(
		gocron.DurationJob(js.interval),
		gocron.NewTask(js.RunOverdueSweep, context.Background()),
		gocron.WithName(OverdueSweepJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("create %s job: %w", OverdueSweepJob, err)
	}
	js.jobs[OverdueSweepJob] = job
	return nil
}

// RunOverdueSweep drains outstanding invoices past their due date, one batch
// per submission, until a batch comes back short.
func (js *JobScheduler) RunOverdueSweep(ctx context.Context) (int, error) {
	start := js.now()
	asOf := start
	total := 0

	for {
		marked, err := js.invoices.MarkOverdueInvoices(ctx, asOf, js.batchSize)
		total += marked
		if err != nil {
			js.logger.Error().Err(err).Int("marked", total).Msg("overdue sweep failed")
			return total, err
		}
		if marked < js.batchSize {
			break
		}
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}

	js.logger.Info().Int("marked", total).Dur("took", js.now().Sub(start)).Msg("overdue sweep completed")
	return total, nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	js.logger.Info().Str("job", name).Msg("added custom job")
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobs, name)
		return err
	}
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	jobs := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		jobs = append(jobs, name)
	}

	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       jobs,
	}
}
