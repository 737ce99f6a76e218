package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/freightbox-tms/freightbox/internal/app"
	"github.com/freightbox-tms/freightbox/internal/invoices"
	"github.com/freightbox-tms/freightbox/internal/lr"
	"github.com/freightbox-tms/freightbox/internal/payments"
	"github.com/freightbox-tms/freightbox/internal/platform/cache"
	"github.com/freightbox-tms/freightbox/internal/platform/db"
	"github.com/freightbox-tms/freightbox/internal/shared"
	"github.com/freightbox-tms/freightbox/internal/thn"
	"github.com/freightbox-tms/freightbox/jobs"
)

// docResolver mirrors the wiring in the API binary; the worker recomputes
// through the same services.
type docResolver struct {
	invoices *invoices.Service
	notes    *thn.Service
}

func (r docResolver) Invoice(ctx context.Context, id int64) (payments.DocSummary, error) {
	return r.invoices.Summary(ctx, id)
}

func (r docResolver) TruckHiringNote(ctx context.Context, id int64) (payments.DocSummary, error) {
	return r.notes.Summary(ctx, id)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	reportCache := cache.NewReportCache(redisClient, cfg.ReportCacheTTL)

	seq := shared.NewSequenceStore(pool)
	lrRepo := lr.NewRepository(pool)
	invoiceRepo := invoices.NewRepository(pool)
	thnRepo := thn.NewRepository(pool)
	paymentRepo := payments.NewRepository(pool)

	resolver := &docResolver{}
	paymentService := payments.NewService(logger, paymentRepo, seq, resolver)
	invoiceService := invoices.NewService(logger, invoiceRepo, lrRepo, paymentService, seq)
	thnService := thn.NewService(logger, thnRepo, paymentService, paymentService, seq)
	resolver.invoices = invoiceService
	resolver.notes = thnService
	paymentService.SetReportInvalidator(reportCache)
	invoiceService.SetReportInvalidator(reportCache)
	thnService.SetReportInvalidator(reportCache)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTHNRecompute, Handler: jobs.HandleTHNRecompute(thnService)},
			{Type: jobs.TaskInvoiceRecompute, Handler: jobs.HandleInvoiceRecompute(invoiceService)},
			{Type: jobs.TaskReconcileAll, Handler: jobs.HandleReconcileAll(logger, invoiceService, thnService)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: jobs.NewReconcileAllTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
