package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTHNRecompute re-derives one truck hiring note's aggregates.
	TaskTHNRecompute = "thn:recompute"
	// TaskInvoiceRecompute re-derives one invoice's aggregates.
	TaskInvoiceRecompute = "invoice:recompute"
	// TaskReconcileAll sweeps every invoice and truck hiring note.
	TaskReconcileAll = "reconcile:all"
)

// RecomputePayload names the record a recompute task targets.
type RecomputePayload struct {
	ID int64 `json:"id"`
}

// NewTHNRecomputeTask constructs an Asynq task for one note.
func NewTHNRecomputeTask(payload RecomputePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTHNRecompute, data), nil
}

// NewInvoiceRecomputeTask constructs an Asynq task for one invoice.
func NewInvoiceRecomputeTask(payload RecomputePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceRecompute, data), nil
}

// NewReconcileAllTask constructs the nightly sweep task.
func NewReconcileAllTask() *asynq.Task {
	return asynq.NewTask(TaskReconcileAll, nil)
}

// Recomputer is the slice of a settlement service the worker drives. The
// per-id recompute never returns an error; failures are logged inside.
type Recomputer interface {
	RecomputeStatus(ctx context.Context, id int64)
	RecomputeAll(ctx context.Context) error
}

// HandleTHNRecompute returns the handler for TaskTHNRecompute.
func HandleTHNRecompute(notes Recomputer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RecomputePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		notes.RecomputeStatus(ctx, payload.ID)
		return nil
	}
}

// HandleInvoiceRecompute returns the handler for TaskInvoiceRecompute.
func HandleInvoiceRecompute(invoices Recomputer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RecomputePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		invoices.RecomputeStatus(ctx, payload.ID)
		return nil
	}
}

// HandleReconcileAll returns the nightly sweep handler. Per-record failures
// are isolated inside the services; the sweep itself fails only when a
// listing cannot be loaded.
func HandleReconcileAll(logger *slog.Logger, invoices, notes Recomputer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := invoices.RecomputeAll(ctx); err != nil {
			logger.Error("invoice sweep failed", slog.Any("error", err))
			return err
		}
		if err := notes.RecomputeAll(ctx); err != nil {
			logger.Error("thn sweep failed", slog.Any("error", err))
			return err
		}
		return nil
	}
}
