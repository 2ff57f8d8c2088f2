package main

import (
	"os/signal"
	"syscall"

	"invoicedesk/internal/jobs"
	"invoicedesk/internal/jobs/background"
	"invoicedesk/internal/logger"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process document archive tasks and run the overdue sweep",
	Long: `Process queued document archive tasks and periodically flag outstanding
invoices that are past their due date.`,
	Example: `  invoicedesk worker
  invoicedesk worker --concurrency 10 --no-sweep`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().Int("concurrency", 0, "Concurrent archive tasks (overrides WORKER_CONCURRENCY)")
	workerCmd.Flags().Int("sweep-batch", background.DefaultSweepBatch, "Invoices flagged per overdue sweep submission")
	workerCmd.Flags().Bool("no-sweep", false, "Do not run the overdue sweep in this process")
}

func runWorker(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("worker")

	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = cfg.WorkerConcurrency
	}
	sweepBatch, _ := cmd.Flags().GetInt("sweep-batch")
	noSweep, _ := cmd.Flags().GetBool("no-sweep")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{jobs.DefaultQueue: 1},
		Logger:      jobs.NewAsynqLogger(log),
	})
	if err := srv.Start(jobs.NewServeMux(jobs.NewDocumentArchiver(a.documents, log))); err != nil {
		return err
	}
	log.Info().Int("concurrency", concurrency).Str("queue", jobs.DefaultQueue).Msg("task server started")

	if !noSweep {
		scheduler, err := background.NewJobScheduler(a.invoices, cfg.OverdueSweepEvery, sweepBatch, log)
		if err != nil {
			srv.Shutdown()
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				log.Warn().Err(err).Msg("scheduler shutdown failed")
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("shutting down worker")
	srv.Shutdown()
	return nil
}
