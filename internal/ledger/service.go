package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/freightbox-tms/freightbox/internal/invoices"
	"github.com/freightbox-tms/freightbox/internal/masterdata/customers"
	"github.com/freightbox-tms/freightbox/internal/payments"
	"github.com/freightbox-tms/freightbox/internal/platform/cache"
	"github.com/freightbox-tms/freightbox/internal/thn"
)

// ErrCustomerNotFound surfaces a client-ledger request for an unknown id.
var ErrCustomerNotFound = errors.New("customer not found")

// Snapshot sources. The builders work over full in-memory snapshots fetched
// in one round trip each.
type (
	CustomerSource interface {
		Get(ctx context.Context, id int64) (*customers.Customer, error)
		ListAll(ctx context.Context) ([]customers.Customer, error)
	}
	InvoiceSource interface {
		ListAll(ctx context.Context) ([]invoices.Invoice, error)
	}
	PaymentSource interface {
		ListAll(ctx context.Context) ([]payments.Payment, error)
	}
	THNSource interface {
		ListAll(ctx context.Context) ([]thn.TruckHiringNote, error)
	}
)

type Service struct {
	logger *slog.Logger
	custs  CustomerSource
	invs   InvoiceSource
	pays   PaymentSource
	notes  THNSource
	cache  *cache.ReportCache
}

func NewService(logger *slog.Logger, custs CustomerSource, invs InvoiceSource, pays PaymentSource, notes THNSource, reports *cache.ReportCache) *Service {
	return &Service{logger: logger, custs: custs, invs: invs, pays: pays, notes: notes, cache: reports}
}

// ClientLedger generates the statement for one customer. Cacheable only for
// unfiltered requests; filtered statements are cheap enough to rebuild.
func (s *Service) ClientLedger(ctx context.Context, customerID int64, f Filters) (*ClientLedger, error) {
	cacheable := f == Filters{}
	key := fmt.Sprintf("client:%d", customerID)
	if cacheable {
		var cached ClientLedger
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	customer, err := s.custs.Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, customers.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("ledger: load customer: %w", err)
	}
	invs, pays, notes, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}

	out := BuildClientLedger(customer, invs, pays, notes, f)
	if cacheable {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.logger.Warn("ledger cache write failed", slog.Any("error", err))
		}
	}
	return &out, nil
}

// CompanyLedger generates the company-wide statement for a date range.
func (s *Service) CompanyLedger(ctx context.Context, f Filters) (*CompanyLedger, error) {
	cacheable := f == Filters{}
	if cacheable {
		var cached CompanyLedger
		if err := s.cache.Get(ctx, "company", &cached); err == nil {
			return &cached, nil
		}
	}

	custs, err := s.custs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: load customers: %w", err)
	}
	invs, pays, notes, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}

	out := BuildCompanyLedger(custs, invs, pays, notes, f)
	if cacheable {
		if err := s.cache.Set(ctx, "company", out); err != nil {
			s.logger.Warn("ledger cache write failed", slog.Any("error", err))
		}
	}
	return &out, nil
}

func (s *Service) snapshots(ctx context.Context) ([]invoices.Invoice, []payments.Payment, []thn.TruckHiringNote, error) {
	invs, err := s.invs.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ledger: load invoices: %w", err)
	}
	pays, err := s.pays.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ledger: load payments: %w", err)
	}
	notes, err := s.notes.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ledger: load truck hiring notes: %w", err)
	}
	return invs, pays, notes, nil
}
