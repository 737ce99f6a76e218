package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type enumerates payment voucher types.
type Type string

const (
	TypeAdvance Type = "ADVANCE"
	TypeReceipt Type = "RECEIPT"
	TypePayment Type = "PAYMENT"
)

// Mode enumerates settlement instruments.
type Mode string

const (
	ModeCash   Mode = "CASH"
	ModeCheque Mode = "CHEQUE"
	ModeNEFT   Mode = "NEFT"
	ModeRTGS   Mode = "RTGS"
	ModeUPI    Mode = "UPI"
)

// Payment records money moving against an invoice or a truck hiring note.
// Amount is the net figure for TDS receipts; the gross is net + TDSAmount.
type Payment struct {
	ID                int64      `json:"id"`
	Number            string     `json:"number"`
	Date              time.Time  `json:"date"`
	Type              Type       `json:"type"`
	Mode              Mode       `json:"mode"`
	Amount            float64    `json:"amount"`
	CustomerID        *int64     `json:"customer_id,omitempty"`
	InvoiceID         *int64     `json:"invoice_id,omitempty"`
	TruckHiringNoteID *int64     `json:"truck_hiring_note_id,omitempty"`
	TDSApplicable     bool       `json:"tds_applicable"`
	TDSRate           *float64   `json:"tds_rate,omitempty"`
	TDSAmount         *float64   `json:"tds_amount,omitempty"`
	TDSDate           *time.Time `json:"tds_date,omitempty"`
	Reference         *string    `json:"reference,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	IdempotencyKey    string     `json:"idempotency_key,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// GrossAmount returns the pre-TDS figure.
func (p Payment) GrossAmount() float64 {
	if p.TDSAmount != nil {
		return p.Amount + *p.TDSAmount
	}
	return p.Amount
}

// AdvanceReference builds the deterministic reference carried by the
// synthesized advance payment of a THN. The reconciliation engine keys on it
// to avoid summing the THN's raw advance on top of the payment representing it.
func AdvanceReference(thnNumber string) string {
	return fmt.Sprintf("THN-%s-ADVANCE", thnNumber)
}

// IsSynthesizedAdvance reports whether p is the advance companion of a THN.
// Only the deterministic reference tag marks the mirror; an operator-entered
// advance carrying its own reference (a cheque or UTR number) is real money.
func (p Payment) IsSynthesizedAdvance() bool {
	if p.Type != TypeAdvance || p.TruckHiringNoteID == nil || p.Reference == nil {
		return false
	}
	return strings.HasPrefix(*p.Reference, "THN-") && strings.HasSuffix(*p.Reference, "-ADVANCE")
}

// DocKind tags which document a payment reference points at.
type DocKind int

const (
	DocNone DocKind = iota
	DocInvoice
	DocTruckHiringNote
)

// DocSummary is the resolved view of a referenced document.
type DocSummary struct {
	ID         int64
	Number     string
	CustomerID *int64
}

// DocResolver loads document summaries for reference resolution.
type DocResolver interface {
	Invoice(ctx context.Context, id int64) (DocSummary, error)
	TruckHiringNote(ctx context.Context, id int64) (DocSummary, error)
}

// DocRef is a tagged reference to an invoice or THN: it starts unresolved
// (id only) and is resolved exactly once through a DocResolver, replacing the
// scattered id-or-object checks a caller would otherwise need.
type DocRef struct {
	Kind    DocKind
	ID      int64
	summary *DocSummary
}

// NewDocRef builds an unresolved reference.
func NewDocRef(kind DocKind, id int64) DocRef {
	return DocRef{Kind: kind, ID: id}
}

// ErrUnlinkedDoc indicates a DocRef with no target.
var ErrUnlinkedDoc = errors.New("payment references no document")

// Resolve loads the summary once; later calls return the cached value.
func (d *DocRef) Resolve(ctx context.Context, resolver DocResolver) (DocSummary, error) {
	if d.summary != nil {
		return *d.summary, nil
	}
	var (
		summary DocSummary
		err     error
	)
	switch d.Kind {
	case DocInvoice:
		summary, err = resolver.Invoice(ctx, d.ID)
	case DocTruckHiringNote:
		summary, err = resolver.TruckHiringNote(ctx, d.ID)
	default:
		return DocSummary{}, ErrUnlinkedDoc
	}
	if err != nil {
		return DocSummary{}, err
	}
	d.summary = &summary
	return summary, nil
}

// Resolved reports whether the summary has been loaded.
func (d *DocRef) Resolved() bool {
	return d.summary != nil
}
