package lr

import (
	"context"
	"fmt"

	"github.com/freightbox-tms/freightbox/internal/shared"
)

// Sequencer mints receipt numbers.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}

type Service struct {
	repo Repository
	seq  Sequencer
}

func NewService(repo Repository, seq Sequencer) *Service {
	return &Service{repo: repo, seq: seq}
}

func (s *Service) Create(ctx context.Context, req CreateLorryReceiptRequest) (*LorryReceipt, error) {
	num, err := s.seq.Next(ctx, shared.SeqLorryReceipt)
	if err != nil {
		return nil, fmt.Errorf("lr: mint number: %w", err)
	}
	receipt := LorryReceipt{
		Number:        shared.FormatNumber("LR", req.Date.Year(), num),
		Date:          req.Date,
		CustomerID:    req.CustomerID,
		ConsignorName: req.ConsignorName,
		ConsigneeName: req.ConsigneeName,
		FromLocation:  req.FromLocation,
		ToLocation:    req.ToLocation,
		VehicleNumber: req.VehicleNumber,
		Packages:      req.Packages,
		Description:   req.Description,
		ActualWeight:  req.ActualWeight,
		ChargedWeight: req.ChargedWeight,
		FreightAmount: req.FreightAmount,
		Hamali:        req.Hamali,
		OtherCharges:  req.OtherCharges,
		Status:        StatusCreated,
	}
	receipt.TotalAmount = shared.Round2(receipt.ChargeTotal())

	id, err := s.repo.Create(ctx, receipt)
	if err != nil {
		return nil, fmt.Errorf("lr: create: %w", err)
	}
	receipt.ID = id
	return &receipt, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateLorryReceiptRequest) (*LorryReceipt, error) {
	receipt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt.InvoiceID != nil {
		// Charges on an invoiced LR are frozen; the invoice total depends on them.
		if req.FreightAmount != nil || req.Hamali != nil || req.OtherCharges != nil {
			return nil, ErrAlreadyInvoiced
		}
	}
	applyUpdate(receipt, req)
	receipt.TotalAmount = shared.Round2(receipt.ChargeTotal())
	if err := s.repo.Update(ctx, *receipt); err != nil {
		return nil, fmt.Errorf("lr: update: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func applyUpdate(receipt *LorryReceipt, req UpdateLorryReceiptRequest) {
	if req.Date != nil {
		receipt.Date = *req.Date
	}
	if req.ConsignorName != nil {
		receipt.ConsignorName = *req.ConsignorName
	}
	if req.ConsigneeName != nil {
		receipt.ConsigneeName = *req.ConsigneeName
	}
	if req.FromLocation != nil {
		receipt.FromLocation = *req.FromLocation
	}
	if req.ToLocation != nil {
		receipt.ToLocation = *req.ToLocation
	}
	if req.VehicleNumber != nil {
		receipt.VehicleNumber = *req.VehicleNumber
	}
	if req.Packages != nil {
		receipt.Packages = *req.Packages
	}
	if req.Description != nil {
		receipt.Description = req.Description
	}
	if req.ActualWeight != nil {
		receipt.ActualWeight = *req.ActualWeight
	}
	if req.ChargedWeight != nil {
		receipt.ChargedWeight = *req.ChargedWeight
	}
	if req.FreightAmount != nil {
		receipt.FreightAmount = *req.FreightAmount
	}
	if req.Hamali != nil {
		receipt.Hamali = *req.Hamali
	}
	if req.OtherCharges != nil {
		receipt.OtherCharges = *req.OtherCharges
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*LorryReceipt, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListLorryReceiptsRequest) ([]LorryReceipt, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID int64) ([]LorryReceipt, error) {
	return s.repo.ListByInvoice(ctx, invoiceID)
}

func (s *Service) MarkDelivered(ctx context.Context, id int64) (*LorryReceipt, error) {
	if err := s.repo.MarkDelivered(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// FreightChargeSummary describes a set of receipts for invoice particulars,
// e.g. "3 freight charges for Shree Traders".
func FreightChargeSummary(count int, customerName string) string {
	noun := "freight charges"
	if count == 1 {
		noun = "freight charge"
	}
	return fmt.Sprintf("%d %s for %s", count, noun, customerName)
}
