package thn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/freightbox-tms/freightbox/internal/payments"
	"github.com/freightbox-tms/freightbox/internal/shared"
)

// ErrHasPayments blocks deletion of a note that has real money against it.
// The synthesized advance companion does not count, it is removed alongside.
var ErrHasPayments = errors.New("truck hiring note has payments booked against it")

// AdvanceBook mirrors a note's advance amount into the payment book so the
// advance shows up in ledgers like any other outflow.
type AdvanceBook interface {
	UpsertTHNAdvance(ctx context.Context, thnID int64, thnNumber string, amount float64, date time.Time) error
}

// PaymentSource lists payments booked against a truck hiring note.
type PaymentSource interface {
	ListByTHN(ctx context.Context, thnID int64) ([]payments.Payment, error)
}

// Sequencer mints note numbers.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}

type Service struct {
	logger      *slog.Logger
	repo        Repository
	pays        PaymentSource
	advances    AdvanceBook
	seq         Sequencer
	invalidator payments.ReportInvalidator
	audit       payments.AuditPort
	observer    payments.RecomputeObserver
}

func NewService(logger *slog.Logger, repo Repository, pays PaymentSource, advances AdvanceBook, seq Sequencer) *Service {
	return &Service{logger: logger, repo: repo, pays: pays, advances: advances, seq: seq}
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

func (s *Service) afterMutation(ctx context.Context, action string, note *TruckHiringNote) {
	if s.audit != nil {
		err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  shared.ActorFromContext(ctx),
			Action:   action,
			Entity:   "truck_hiring_note",
			EntityID: fmt.Sprintf("%d", note.ID),
			Meta: map[string]any{
				"number": note.Number,
				"total":  note.TotalAmount(),
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

// Create books a hired truck. A non-zero advance is mirrored into the payment
// book; if the mirror fails the note still stands and the advance falls back
// to the note's own field until the next successful sync.
func (s *Service) Create(ctx context.Context, req CreateTHNRequest) (*TruckHiringNote, error) {
	note := TruckHiringNote{
		Date:              req.Date,
		TruckNumber:       req.TruckNumber,
		OwnerName:         req.OwnerName,
		OwnerContact:      req.OwnerContact,
		FromLocation:      req.FromLocation,
		ToLocation:        req.ToLocation,
		FreightRate:       req.FreightRate,
		AdditionalCharges: req.AdditionalCharges,
		AdvanceAmount:     shared.Round2(req.AdvanceAmount),
		Notes:             req.Notes,
	}
	total := note.TotalAmount()
	note.PaidAmount = note.AdvanceAmount
	note.BalanceAmount = shared.Round2(total - note.AdvanceAmount)
	if note.BalanceAmount < 0 {
		note.BalanceAmount = 0
	}
	note.Status = shared.DeriveSettlementStatus(note.PaidAmount, note.BalanceAmount)

	num, err := s.seq.Next(ctx, shared.SeqTruckHiringNote)
	if err != nil {
		return nil, fmt.Errorf("thn: mint number: %w", err)
	}
	note.Number = shared.FormatNumber("THN", req.Date.Year(), num)

	id, err := s.repo.Create(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("thn: create: %w", err)
	}
	note.ID = id

	s.syncAdvance(ctx, &note)
	s.RecomputeStatus(ctx, id)
	s.afterMutation(ctx, "thn.create", &note)
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*TruckHiringNote, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of notes, re-deriving aggregates so stale statuses
// heal on read.
func (s *Service) List(ctx context.Context, req ListTHNRequest) ([]TruckHiringNote, int, error) {
	list, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	s.healStatuses(ctx, list)
	return list, total, nil
}

// Update patches operator inputs. Money-side edits re-mirror the advance and
// re-derive the aggregates.
func (s *Service) Update(ctx context.Context, id int64, req UpdateTHNRequest) (*TruckHiringNote, error) {
	note, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	moneyChanged := false
	if req.Date != nil {
		note.Date = *req.Date
	}
	if req.TruckNumber != nil {
		note.TruckNumber = *req.TruckNumber
	}
	if req.OwnerName != nil {
		note.OwnerName = *req.OwnerName
	}
	if req.OwnerContact != nil {
		note.OwnerContact = req.OwnerContact
	}
	if req.FromLocation != nil {
		note.FromLocation = *req.FromLocation
	}
	if req.ToLocation != nil {
		note.ToLocation = *req.ToLocation
	}
	if req.FreightRate != nil {
		note.FreightRate = *req.FreightRate
		moneyChanged = true
	}
	if req.AdditionalCharges != nil {
		note.AdditionalCharges = *req.AdditionalCharges
		moneyChanged = true
	}
	if req.AdvanceAmount != nil {
		note.AdvanceAmount = shared.Round2(*req.AdvanceAmount)
		moneyChanged = true
	}
	if req.Notes != nil {
		note.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, *note); err != nil {
		return nil, fmt.Errorf("thn: update: %w", err)
	}
	if moneyChanged || req.Date != nil {
		s.syncAdvance(ctx, note)
	}
	s.RecomputeStatus(ctx, id)
	s.afterMutation(ctx, "thn.update", note)
	return s.repo.Get(ctx, id)
}

// Delete removes a note and its mirrored advance. Notes with real payments
// stay put.
func (s *Service) Delete(ctx context.Context, id int64) error {
	note, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	pays, err := s.pays.ListByTHN(ctx, id)
	if err != nil {
		return fmt.Errorf("thn: list payments: %w", err)
	}
	for _, p := range pays {
		if !p.IsSynthesizedAdvance() {
			return ErrHasPayments
		}
	}
	if err := s.advances.UpsertTHNAdvance(ctx, id, note.Number, 0, note.Date); err != nil {
		return fmt.Errorf("thn: remove advance: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, "thn.delete", note)
	return nil
}

// Summary exposes the resolved view used by payment reference resolution.
func (s *Service) Summary(ctx context.Context, id int64) (payments.DocSummary, error) {
	note, err := s.repo.Get(ctx, id)
	if err != nil {
		return payments.DocSummary{}, err
	}
	return payments.DocSummary{ID: note.ID, Number: note.Number}, nil
}

func (s *Service) syncAdvance(ctx context.Context, note *TruckHiringNote) {
	if err := s.advances.UpsertTHNAdvance(ctx, note.ID, note.Number, note.AdvanceAmount, note.Date); err != nil {
		s.logger.Warn("advance mirror failed, falling back to raw advance",
			slog.String("thn", note.Number), slog.Any("error", err))
	}
}
