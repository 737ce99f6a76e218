package ledger

import (
	"fmt"

	"github.com/freightbox-tms/freightbox/internal/invoices"
	"github.com/freightbox-tms/freightbox/internal/lr"
	"github.com/freightbox-tms/freightbox/internal/masterdata/customers"
	"github.com/freightbox-tms/freightbox/internal/payments"
	"github.com/freightbox-tms/freightbox/internal/shared"
	"github.com/freightbox-tms/freightbox/internal/thn"
)

// ClientSummary totals a client ledger. Opening balance is fixed at zero,
// no prior-period carry-forward is modeled.
type ClientSummary struct {
	OpeningBalance   float64 `json:"opening_balance"`
	OpeningSide      Side    `json:"opening_balance_type"`
	TotalDebits      float64 `json:"total_debits"`
	TotalCredits     float64 `json:"total_credits"`
	ClosingBalance   float64 `json:"closing_balance"`
	ClosingSide      Side    `json:"closing_balance_type"`
	TransactionCount int     `json:"transaction_count"`
}

// ClientLedger is the generated statement for one customer.
type ClientLedger struct {
	CustomerID   int64         `json:"customer_id"`
	CustomerName string        `json:"customer_name"`
	Entries      []Entry       `json:"entries"`
	Summary      ClientSummary `json:"summary"`
}

// BuildClientLedger produces the transaction history of one customer from
// read-only snapshots. Pure function of its inputs.
func BuildClientLedger(customer *customers.Customer, invs []invoices.Invoice, pays []payments.Payment, notes []thn.TruckHiringNote, f Filters) ClientLedger {
	name := customers.DisplayName(customer)
	var customerID int64
	if customer != nil {
		customerID = customer.ID
	}

	invoiceNumbers := make(map[int64]string, len(invs))
	ownedInvoices := make(map[int64]bool)
	for _, inv := range invs {
		invoiceNumbers[inv.ID] = inv.Number
		if inv.CustomerID == customerID {
			ownedInvoices[inv.ID] = true
		}
	}
	thnNumbers := make(map[int64]string, len(notes))
	for _, note := range notes {
		thnNumbers[note.ID] = note.Number
	}

	var entries []Entry
	for _, inv := range invs {
		if inv.CustomerID != customerID || !f.inDateRange(inv.Date) {
			continue
		}
		entries = append(entries, Entry{
			Date:    inv.Date,
			Voucher: VoucherInvoice,
			Particulars: fmt.Sprintf("Invoice %s - %s",
				inv.Number, lr.FreightChargeSummary(inv.LRCount, name)),
			Debit:     inv.GrandTotal,
			Reference: inv.Number,
			Notes:     deref(inv.Notes),
		})
	}

	for _, p := range pays {
		if !clientOwnsPayment(p, customerID, ownedInvoices) || !f.inDateRange(p.Date) {
			continue
		}
		voucher := VoucherPayment
		if p.Type == payments.TypeAdvance {
			voucher = VoucherAdvance
		}
		entries = append(entries, Entry{
			Date:        p.Date,
			Voucher:     voucher,
			Particulars: clientParticulars(p, invoiceNumbers, thnNumbers),
			Credit:      p.Amount,
			Reference:   p.Number,
			Notes:       deref(p.Notes),
		})
	}

	entries = finalize(applyEntryFilters(entries, f))

	summary := ClientSummary{
		OpeningSide:      SideDebit,
		ClosingSide:      SideDebit,
		TransactionCount: len(entries),
	}
	for _, e := range entries {
		summary.TotalDebits += e.Debit
		summary.TotalCredits += e.Credit
	}
	summary.TotalDebits = shared.Round2(summary.TotalDebits)
	summary.TotalCredits = shared.Round2(summary.TotalCredits)
	if n := len(entries); n > 0 {
		summary.ClosingBalance = entries[n-1].Balance
		summary.ClosingSide = entries[n-1].Side
	}

	return ClientLedger{
		CustomerID:   customerID,
		CustomerName: name,
		Entries:      entries,
		Summary:      summary,
	}
}

// clientOwnsPayment attributes a payment to the customer either directly or
// through the invoice it settles.
func clientOwnsPayment(p payments.Payment, customerID int64, ownedInvoices map[int64]bool) bool {
	if p.CustomerID != nil && *p.CustomerID == customerID {
		return true
	}
	return p.InvoiceID != nil && ownedInvoices[*p.InvoiceID]
}

func clientParticulars(p payments.Payment, invoiceNumbers, thnNumbers map[int64]string) string {
	mode := string(p.Mode)
	switch {
	case p.Type == payments.TypeAdvance:
		ref := deref(p.Reference)
		if ref == "" {
			ref = p.Number
		}
		return fmt.Sprintf("Advance received (%s) - %s", ref, mode)
	case p.InvoiceID != nil:
		if num, ok := invoiceNumbers[*p.InvoiceID]; ok {
			return fmt.Sprintf("Payment against Invoice %s - %s", num, mode)
		}
	case p.TruckHiringNoteID != nil:
		if num, ok := thnNumbers[*p.TruckHiringNoteID]; ok {
			return fmt.Sprintf("Payment against THN %s - %s", num, mode)
		}
	}
	return fmt.Sprintf("Payment received - %s", mode)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
