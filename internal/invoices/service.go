package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/freightbox-tms/freightbox/internal/lr"
	"github.com/freightbox-tms/freightbox/internal/payments"
	"github.com/freightbox-tms/freightbox/internal/shared"
)

var (
	// ErrNoReceipts indicates none of the requested LRs were usable.
	ErrNoReceipts = errors.New("invoice requires at least one lorry receipt")
	// ErrReceiptMismatch indicates an LR belonging to another customer or
	// already invoiced.
	ErrReceiptMismatch = errors.New("lorry receipt unavailable for this invoice")
	// ErrHasPayments blocks deletion of an invoice that has money against it.
	ErrHasPayments = errors.New("invoice has payments booked against it")
)

// ReceiptStore is the slice of the LR repository the invoice flow needs.
type ReceiptStore interface {
	GetMany(ctx context.Context, ids []int64) ([]lr.LorryReceipt, error)
	MarkInvoiced(ctx context.Context, ids []int64, invoiceID int64) error
	ReleaseInvoice(ctx context.Context, invoiceID int64) error
}

// PaymentSource lists payments booked against an invoice.
type PaymentSource interface {
	ListByInvoice(ctx context.Context, invoiceID int64) ([]payments.Payment, error)
}

// Sequencer mints invoice numbers.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}

type Service struct {
	logger      *slog.Logger
	repo        Repository
	receipts    ReceiptStore
	pays        PaymentSource
	seq         Sequencer
	invalidator payments.ReportInvalidator
	audit       payments.AuditPort
	observer    payments.RecomputeObserver
}

func NewService(logger *slog.Logger, repo Repository, receipts ReceiptStore, pays PaymentSource, seq Sequencer) *Service {
	return &Service{logger: logger, repo: repo, receipts: receipts, pays: pays, seq: seq}
}

// SetReportInvalidator injects the ledger report cache hook.
func (s *Service) SetReportInvalidator(inv payments.ReportInvalidator) {
	s.invalidator = inv
}

// SetAuditLogger injects the audit trail writer.
func (s *Service) SetAuditLogger(a payments.AuditPort) {
	s.audit = a
}

// SetRecomputeObserver injects the recompute metrics sink.
func (s *Service) SetRecomputeObserver(o payments.RecomputeObserver) {
	s.observer = o
}

func (s *Service) afterMutation(ctx context.Context, action string, inv *Invoice) {
	if s.audit != nil {
		err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  shared.ActorFromContext(ctx),
			Action:   action,
			Entity:   "invoice",
			EntityID: fmt.Sprintf("%d", inv.ID),
			Meta: map[string]any{
				"number":      inv.Number,
				"grand_total": inv.GrandTotal,
			},
		})
		if err != nil {
			s.logger.Warn("audit write failed", slog.String("action", action), slog.Any("error", err))
		}
	}
	if s.invalidator != nil {
		if err := s.invalidator.InvalidateAll(ctx); err != nil {
			s.logger.Warn("report cache invalidation failed", slog.Any("error", err))
		}
	}
}

// Create assembles an invoice from un-invoiced lorry receipts of a single
// customer. The grand total is computed once here and never rewritten.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	receipts, err := s.receipts.GetMany(ctx, req.LorryReceiptIDs)
	if err != nil {
		return nil, fmt.Errorf("invoices: load receipts: %w", err)
	}
	if len(receipts) == 0 {
		return nil, ErrNoReceipts
	}
	if len(receipts) != len(req.LorryReceiptIDs) {
		return nil, fmt.Errorf("%w: some receipts do not exist", ErrReceiptMismatch)
	}

	var subtotal float64
	for _, receipt := range receipts {
		if receipt.CustomerID != req.CustomerID {
			return nil, fmt.Errorf("%w: %s belongs to another customer", ErrReceiptMismatch, receipt.Number)
		}
		if receipt.InvoiceID != nil {
			return nil, fmt.Errorf("%w: %s already invoiced", ErrReceiptMismatch, receipt.Number)
		}
		subtotal += receipt.TotalAmount
	}
	subtotal = shared.Round2(subtotal)

	invoice := Invoice{
		Date:         req.Date,
		CustomerID:   req.CustomerID,
		LRCount:      len(receipts),
		Subtotal:     subtotal,
		GSTRate:      req.GSTRate,
		IsInterstate: req.IsInterstate,
		Status:       shared.SettlementUnpaid,
		Notes:        req.Notes,
	}
	gst := shared.Round2(subtotal * req.GSTRate / 100)
	if req.IsInterstate {
		invoice.IGST = gst
	} else {
		invoice.CGST = shared.Round2(gst / 2)
		invoice.SGST = shared.Round2(gst - invoice.CGST)
	}
	invoice.GrandTotal = shared.Round2(subtotal + invoice.CGST + invoice.SGST + invoice.IGST)
	invoice.BalanceAmount = invoice.GrandTotal

	num, err := s.seq.Next(ctx, shared.SeqInvoice)
	if err != nil {
		return nil, fmt.Errorf("invoices: mint number: %w", err)
	}
	invoice.Number = shared.FormatNumber("INV", req.Date.Year(), num)

	id, err := s.repo.Create(ctx, invoice)
	if err != nil {
		return nil, fmt.Errorf("invoices: create: %w", err)
	}
	invoice.ID = id

	if err := s.receipts.MarkInvoiced(ctx, req.LorryReceiptIDs, id); err != nil {
		_ = s.repo.Delete(ctx, id)
		if errors.Is(err, lr.ErrAlreadyInvoiced) {
			return nil, fmt.Errorf("%w: claimed by a concurrent invoice", ErrReceiptMismatch)
		}
		return nil, fmt.Errorf("invoices: mark receipts invoiced: %w", err)
	}
	s.afterMutation(ctx, "invoice.create", &invoice)
	return &invoice, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of invoices, opportunistically re-deriving each one's
// aggregates so stale statuses heal on read.
func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	list, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	s.healStatuses(ctx, list)
	return list, total, nil
}

func (s *Service) healStatuses(ctx context.Context, list []Invoice) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range list {
		g.Go(func() error {
			s.RecomputeStatus(ctx, list[i].ID)
			if refreshed, err := s.repo.Get(ctx, list[i].ID); err == nil {
				list[i].PaidAmount = refreshed.PaidAmount
				list[i].BalanceAmount = refreshed.BalanceAmount
				list[i].Status = refreshed.Status
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	pays, err := s.pays.ListByInvoice(ctx, id)
	if err != nil {
		return fmt.Errorf("invoices: list payments: %w", err)
	}
	if len(pays) > 0 {
		return ErrHasPayments
	}
	if err := s.receipts.ReleaseInvoice(ctx, id); err != nil {
		return fmt.Errorf("invoices: release receipts: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, "invoice.delete", invoice)
	return nil
}

// RecomputeStatus re-derives paid/balance/status for one invoice from its
// current payment set. Idempotent and non-throwing: a missing invoice is a
// logged no-op so batch recomputes never abort on one bad id.
func (s *Service) RecomputeStatus(ctx context.Context, id int64) {
	err := s.recompute(ctx, id)
	switch {
	case err == nil:
		s.observeRecompute("ok", false)
	case errors.Is(err, ErrNotFound):
		s.logger.Warn("recompute skipped, invoice missing", slog.Int64("invoice_id", id))
		s.observeRecompute("", true)
	default:
		s.logger.Error("invoice recompute failed", slog.Int64("invoice_id", id), slog.Any("error", err))
		s.observeRecompute("error", false)
	}
}

func (s *Service) observeRecompute(outcome string, skipped bool) {
	if s.observer == nil {
		return
	}
	if skipped {
		s.observer.ObserveRecomputeSkipped()
		return
	}
	s.observer.ObserveRecompute("invoice", outcome)
}

func (s *Service) recompute(ctx context.Context, id int64) error {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	pays, err := s.pays.ListByInvoice(ctx, id)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}

	var totalPaid float64
	for _, p := range pays {
		totalPaid += p.Amount
	}
	totalPaid = shared.Round2(totalPaid)

	balance := shared.Round2(invoice.GrandTotal - totalPaid)
	if balance < 0 {
		balance = 0
	}
	status := shared.DeriveSettlementStatus(totalPaid, balance)

	return s.repo.UpdateComputedFields(ctx, id, totalPaid, balance, status)
}

// RecomputeAll walks every invoice and re-derives its aggregates. Failures
// are isolated per invoice; the sweep always finishes.
func (s *Service) RecomputeAll(ctx context.Context) error {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("invoices: list for recompute: %w", err)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, invoice := range list {
		g.Go(func() error {
			s.RecomputeStatus(ctx, invoice.ID)
			return nil
		})
	}
	return g.Wait()
}

// Summary exposes the resolved view used by payment reference resolution.
func (s *Service) Summary(ctx context.Context, id int64) (payments.DocSummary, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return payments.DocSummary{}, err
	}
	customerID := invoice.CustomerID
	return payments.DocSummary{ID: invoice.ID, Number: invoice.Number, CustomerID: &customerID}, nil
}
