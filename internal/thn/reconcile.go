package thn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/freightbox-tms/freightbox/internal/payments"
	"github.com/freightbox-tms/freightbox/internal/shared"
)

// RecomputeStatus re-derives paid/balance/status for one note from its
// current payment set. Idempotent and non-throwing: a missing note is a
// logged no-op so batch recomputes never abort on one bad id.
func (s *Service) RecomputeStatus(ctx context.Context, id int64) {
	err := s.recompute(ctx, id)
	switch {
	case err == nil:
		s.observeRecompute("ok", false)
	case errors.Is(err, ErrNotFound):
		s.logger.Warn("recompute skipped, note missing", slog.Int64("thn_id", id))
		s.observeRecompute("", true)
	default:
		s.logger.Error("thn recompute failed", slog.Int64("thn_id", id), slog.Any("error", err))
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
	s.observer.ObserveRecompute("truck_hiring_note", outcome)
}

func (s *Service) recompute(ctx context.Context, id int64) error {
	note, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	pays, err := s.pays.ListByTHN(ctx, id)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}

	totalPaid := effectivePaidAmount(note, pays)
	balance := shared.Round2(note.TotalAmount() - totalPaid)
	if balance < 0 {
		balance = 0
	}
	status := shared.DeriveSettlementStatus(totalPaid, balance)

	return s.repo.UpdateComputedFields(ctx, id, totalPaid, balance, status)
}

// effectivePaidAmount sums the note's payments. Notes created before advances
// were mirrored into the payment book carry their advance only in the
// advance_amount column; for those the raw figure is added on top. Once a
// synthesized advance payment exists it alone represents the advance, so the
// raw figure must not be counted again.
func effectivePaidAmount(note *TruckHiringNote, pays []payments.Payment) float64 {
	var total float64
	mirrored := false
	for _, p := range pays {
		total += p.Amount
		if p.IsSynthesizedAdvance() {
			mirrored = true
		}
	}
	if !mirrored {
		total += note.AdvanceAmount
	}
	return shared.Round2(total)
}

// RecomputeAll walks every note and re-derives its aggregates. Failures are
// isolated per note; the sweep always finishes.
func (s *Service) RecomputeAll(ctx context.Context) error {
	notes, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("thn: list for recompute: %w", err)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, note := range notes {
		g.Go(func() error {
			s.RecomputeStatus(ctx, note.ID)
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) healStatuses(ctx context.Context, list []TruckHiringNote) {
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
