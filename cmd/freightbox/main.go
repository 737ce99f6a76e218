package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/freightbox-tms/freightbox/internal/app"
	"github.com/freightbox-tms/freightbox/internal/auth"
	"github.com/freightbox-tms/freightbox/internal/invoices"
	"github.com/freightbox-tms/freightbox/internal/ledger"
	"github.com/freightbox-tms/freightbox/internal/lr"
	"github.com/freightbox-tms/freightbox/internal/masterdata/customers"
	"github.com/freightbox-tms/freightbox/internal/observability"
	"github.com/freightbox-tms/freightbox/internal/payments"
	"github.com/freightbox-tms/freightbox/internal/platform/cache"
	"github.com/freightbox-tms/freightbox/internal/platform/db"
	"github.com/freightbox-tms/freightbox/internal/shared"
	"github.com/freightbox-tms/freightbox/internal/thn"
	"github.com/freightbox-tms/freightbox/jobs"
	"github.com/freightbox-tms/freightbox/report"
)

// docResolver lets payments resolve the documents they reference without the
// payments package importing the invoice and THN packages.
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

// reconciler fans payment mutations out to the settlement recomputes.
type reconciler struct {
	invoices *invoices.Service
	notes    *thn.Service
}

func (r reconciler) InvoicePaymentsChanged(ctx context.Context, invoiceID int64) {
	r.invoices.RecomputeStatus(ctx, invoiceID)
}

func (r reconciler) THNPaymentsChanged(ctx context.Context, thnID int64) {
	r.notes.RecomputeStatus(ctx, thnID)
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

	metrics := observability.NewMetrics()
	seq := shared.NewSequenceStore(pool)

	authService := auth.NewService(auth.NewRepository(pool), cfg.JWTSecret, cfg.JWTTTL)
	customerRepo := customers.NewRepository(pool)
	customerService := customers.NewService(customerRepo)
	lrRepo := lr.NewRepository(pool)
	lrService := lr.NewService(lrRepo, seq)

	invoiceRepo := invoices.NewRepository(pool)
	thnRepo := thn.NewRepository(pool)
	paymentRepo := payments.NewRepository(pool)

	resolver := &docResolver{}
	paymentService := payments.NewService(logger, paymentRepo, seq, resolver)
	invoiceService := invoices.NewService(logger, invoiceRepo, lrRepo, paymentService, seq)
	thnService := thn.NewService(logger, thnRepo, paymentService, paymentService, seq)
	resolver.invoices = invoiceService
	resolver.notes = thnService
	paymentService.SetReconciler(reconciler{invoices: invoiceService, notes: thnService})

	auditLogger := shared.NewAuditLogger(pool)
	paymentService.SetReportInvalidator(reportCache)
	paymentService.SetAuditLogger(auditLogger)
	invoiceService.SetReportInvalidator(reportCache)
	invoiceService.SetAuditLogger(auditLogger)
	thnService.SetReportInvalidator(reportCache)
	thnService.SetAuditLogger(auditLogger)
	invoiceService.SetRecomputeObserver(metrics)
	thnService.SetRecomputeObserver(metrics)

	ledgerService := ledger.NewService(logger, customerRepo, invoiceRepo, paymentRepo, thnRepo, reportCache)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(logger, pdfClient, lrService, customerRepo, invoiceService, thnService, ledgerService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("jobs client init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer jobsClient.Close()
	jobHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Config:          cfg,
		AuthService:     authService,
		AuthHandler:     auth.NewHandler(logger, authService),
		CustomerHandler: customers.NewHandler(logger, customerService),
		LRHandler:       lr.NewHandler(logger, lrService),
		InvoiceHandler:  invoices.NewHandler(logger, invoiceService),
		THNHandler:      thn.NewHandler(logger, thnService),
		PaymentHandler:  payments.NewHandler(logger, paymentService),
		LedgerHandler:   ledger.NewHandler(logger, ledgerService),
		ReportHandler:   reportHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
		Middleware: app.MiddlewareConfig{
			Logger:  logger,
			Config:  cfg,
			Metrics: metrics,
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
