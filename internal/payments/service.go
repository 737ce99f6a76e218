package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/freightbox-tms/freightbox/internal/shared"
)

var (
	// ErrDocRefRequired indicates neither invoice nor THN was referenced.
	ErrDocRefRequired = errors.New("payment requires an invoice or truck hiring note reference")
	// ErrDocRefConflict indicates both references were supplied.
	ErrDocRefConflict = errors.New("payment cannot reference both an invoice and a truck hiring note")
	// ErrCustomerUnresolvable indicates an invoice payment whose customer
	// cannot be determined from the request or the invoice itself.
	ErrCustomerUnresolvable = errors.New("invoice payment requires a resolvable customer")
)

// Reconciler is notified after every payment mutation so the parent document
// can re-derive paid/balance/status. Implementations must never panic and
// must swallow their own failures; a recompute problem is not a reason to
// fail the payment write that triggered it.
type Reconciler interface {
	InvoicePaymentsChanged(ctx context.Context, invoiceID int64)
	THNPaymentsChanged(ctx context.Context, thnID int64)
}

// ReportInvalidator drops cached ledger reports after financial mutations.
type ReportInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// AuditPort records payment events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// RecomputeObserver counts recompute outcomes for monitoring.
type RecomputeObserver interface {
	ObserveRecompute(entity, outcome string)
	ObserveRecomputeSkipped()
}

// Sequencer mints payment numbers.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}

type Service struct {
	logger      *slog.Logger
	repo        Repository
	seq         Sequencer
	resolver    DocResolver
	reconciler  Reconciler
	invalidator ReportInvalidator
	audit       AuditPort
}

func NewService(logger *slog.Logger, repo Repository, seq Sequencer, resolver DocResolver) *Service {
	return &Service{logger: logger, repo: repo, seq: seq, resolver: resolver}
}

// SetReconciler injects the recompute hooks. Wired in main after the invoice
// and THN services exist; breaks the construction cycle between the packages.
func (s *Service) SetReconciler(r Reconciler) {
	s.reconciler = r
}

// SetReportInvalidator injects the ledger report cache hook.
func (s *Service) SetReportInvalidator(inv ReportInvalidator) {
	s.invalidator = inv
}

// SetAuditLogger injects the audit trail writer.
func (s *Service) SetAuditLogger(a AuditPort) {
	s.audit = a
}

func (s *Service) recordAudit(ctx context.Context, action string, p *Payment) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx),
		Action:   action,
		Entity:   "payment",
		EntityID: fmt.Sprintf("%d", p.ID),
		Meta: map[string]any{
			"number": p.Number,
			"type":   string(p.Type),
			"amount": p.Amount,
		},
	})
	if err != nil {
		s.logger.Warn("audit write failed",
			slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) Create(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	if req.InvoiceID == nil && req.TruckHiringNoteID == nil {
		return nil, ErrDocRefRequired
	}
	if req.InvoiceID != nil && req.TruckHiringNoteID != nil {
		return nil, ErrDocRefConflict
	}

	if req.IdempotencyKey != "" {
		existing, err := s.repo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("payments: idempotency lookup: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	payment := Payment{
		Date:              req.Date,
		Type:              req.Type,
		Mode:              req.Mode,
		Amount:            req.Amount,
		CustomerID:        req.CustomerID,
		InvoiceID:         req.InvoiceID,
		TruckHiringNoteID: req.TruckHiringNoteID,
		Reference:         req.Reference,
		Notes:             req.Notes,
		IdempotencyKey:    req.IdempotencyKey,
	}
	if payment.IdempotencyKey == "" {
		payment.IdempotencyKey = uuid.NewString()
	}

	if req.InvoiceID != nil {
		ref := NewDocRef(DocInvoice, *req.InvoiceID)
		summary, err := ref.Resolve(ctx, s.resolver)
		if err != nil {
			return nil, fmt.Errorf("payments: resolve invoice: %w", err)
		}
		if payment.CustomerID == nil {
			payment.CustomerID = summary.CustomerID
		}
		if payment.CustomerID == nil {
			return nil, ErrCustomerUnresolvable
		}
	} else {
		ref := NewDocRef(DocTruckHiringNote, *req.TruckHiringNoteID)
		if _, err := ref.Resolve(ctx, s.resolver); err != nil {
			return nil, fmt.Errorf("payments: resolve truck hiring note: %w", err)
		}
	}

	res, err := ApplyTDS(TDSInput{
		Amount:         req.Amount,
		PaymentType:    req.Type,
		Applicable:     req.TDSApplicable,
		Rate:           req.TDSRate,
		ExplicitAmount: req.TDSAmount,
		Date:           req.TDSDate,
		PaymentDate:    req.Date,
	})
	if err != nil {
		return nil, err
	}
	applyTDSResult(&payment, res)

	num, err := s.seq.Next(ctx, shared.SeqPayment)
	if err != nil {
		return nil, fmt.Errorf("payments: mint number: %w", err)
	}
	payment.Number = shared.FormatNumber("PAY", req.Date.Year(), num)

	id, err := s.repo.Create(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("payments: create: %w", err)
	}
	payment.ID = id

	s.recordAudit(ctx, "payment.create", &payment)
	s.notifyChanged(ctx, &payment)
	return &payment, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdatePaymentRequest) (*Payment, error) {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		payment.Date = *req.Date
	}
	if req.Mode != nil {
		payment.Mode = *req.Mode
	}
	if req.Reference != nil {
		payment.Reference = req.Reference
	}
	if req.Notes != nil {
		payment.Notes = req.Notes
	}

	applicable := payment.TDSApplicable
	if req.TDSApplicable != nil {
		applicable = *req.TDSApplicable
	}
	rate := payment.TDSRate
	if req.TDSRate != nil {
		rate = req.TDSRate
	}
	tdsDate := payment.TDSDate
	if req.TDSDate != nil {
		tdsDate = req.TDSDate
	}

	// Re-derive the deduction from the new amount or, when the amount is
	// unchanged, from the stored one, against the effective rate.
	gross := payment.Amount
	if req.Amount != nil {
		gross = *req.Amount
	}
	res, err := ApplyTDS(TDSInput{
		Amount:      gross,
		PaymentType: payment.Type,
		Applicable:  applicable,
		Rate:        rate,
		Date:        tdsDate,
		PaymentDate: payment.Date,
	})
	if err != nil {
		return nil, err
	}
	applyTDSResult(payment, res)

	if err := s.repo.Update(ctx, *payment); err != nil {
		return nil, fmt.Errorf("payments: update: %w", err)
	}

	s.recordAudit(ctx, "payment.update", payment)
	s.notifyChanged(ctx, payment)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "payment.delete", payment)
	s.notifyChanged(ctx, payment)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	return s.repo.List(ctx, req)
}

// notifyChanged triggers parent recompute and cache invalidation. Failures
// are logged, never propagated: the payment write already committed.
func (s *Service) notifyChanged(ctx context.Context, p *Payment) {
	if s.reconciler != nil {
		if p.InvoiceID != nil {
			s.reconciler.InvoicePaymentsChanged(ctx, *p.InvoiceID)
		}
		if p.TruckHiringNoteID != nil {
			s.reconciler.THNPaymentsChanged(ctx, *p.TruckHiringNoteID)
		}
	}
	if s.invalidator != nil {
		if err := s.invalidator.InvalidateAll(ctx); err != nil {
			s.logger.Warn("report cache invalidation failed", slog.Any("error", err))
		}
	}
}

// UpsertTHNAdvance creates or refreshes the synthesized advance payment of a
// THN. The reference is deterministic so the reconciliation engine can detect
// that the advance already lives inside the payment list.
func (s *Service) UpsertTHNAdvance(ctx context.Context, thnID int64, thnNumber string, amount float64, date time.Time) error {
	existing, err := s.repo.GetAdvanceForTHN(ctx, thnID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("payments: advance lookup: %w", err)
	}

	if shared.AmountLTE(amount, 0) {
		if existing != nil {
			if err := s.repo.Delete(ctx, existing.ID); err != nil {
				return fmt.Errorf("payments: remove advance: %w", err)
			}
		}
		return nil
	}

	ref := AdvanceReference(thnNumber)
	if existing != nil {
		existing.Amount = amount
		existing.Date = date
		existing.Reference = &ref
		if err := s.repo.Update(ctx, *existing); err != nil {
			return fmt.Errorf("payments: refresh advance: %w", err)
		}
		return nil
	}

	num, err := s.seq.Next(ctx, shared.SeqPayment)
	if err != nil {
		return fmt.Errorf("payments: mint advance number: %w", err)
	}
	advance := Payment{
		Number:            shared.FormatNumber("PAY", date.Year(), num),
		Date:              date,
		Type:              TypeAdvance,
		Mode:              ModeCash,
		Amount:            amount,
		TruckHiringNoteID: &thnID,
		Reference:         &ref,
		IdempotencyKey:    uuid.NewString(),
	}
	if _, err := s.repo.Create(ctx, advance); err != nil {
		return fmt.Errorf("payments: create advance: %w", err)
	}
	return nil
}

// ListByTHN returns payments booked against a THN, oldest first.
func (s *Service) ListByTHN(ctx context.Context, thnID int64) ([]Payment, error) {
	return s.repo.ListByTHN(ctx, thnID)
}

// ListByInvoice returns payments booked against an invoice, oldest first.
func (s *Service) ListByInvoice(ctx context.Context, invoiceID int64) ([]Payment, error) {
	return s.repo.ListByInvoice(ctx, invoiceID)
}

// ListAll returns the full payment book in chronological order.
func (s *Service) ListAll(ctx context.Context) ([]Payment, error) {
	return s.repo.ListAll(ctx)
}

// HasSynthesizedAdvance reports whether the THN already carries its advance
// as a payment record.
func (s *Service) HasSynthesizedAdvance(ctx context.Context, thnID int64) (bool, error) {
	_, err := s.repo.GetAdvanceForTHN(ctx, thnID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
