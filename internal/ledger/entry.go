package ledger

import (
	"sort"
	"time"

	"github.com/freightbox-tms/freightbox/internal/shared"
)

// Side marks which way a running balance leans.
type Side string

const (
	SideDebit  Side = "DR"
	SideCredit Side = "CR"
)

// Voucher classifies the document behind a ledger entry.
type Voucher string

const (
	VoucherInvoice Voucher = "INVOICE"
	VoucherPayment Voucher = "PAYMENT"
	VoucherReceipt Voucher = "RECEIPT"
	VoucherAdvance Voucher = "ADVANCE"
	VoucherTHN     Voucher = "THN"
)

// Entry is one line of a generated ledger. Entries are computed fresh on
// every request and never persisted.
type Entry struct {
	Date        time.Time `json:"date"`
	Voucher     Voucher   `json:"voucher"`
	Account     string    `json:"account,omitempty"`
	Particulars string    `json:"particulars"`
	Debit       float64   `json:"debit"`
	Credit      float64   `json:"credit"`
	Balance     float64   `json:"balance"`
	Side        Side      `json:"balance_type"`
	Reference   string    `json:"reference,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// Filters narrows a generated ledger. Every declared field is honored.
type Filters struct {
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	CustomerID *int64     `json:"customer_id,omitempty"`
	Voucher    *Voucher   `json:"voucher,omitempty"`
	MinAmount  *float64   `json:"min_amount,omitempty"`
	MaxAmount  *float64   `json:"max_amount,omitempty"`
}

func (f Filters) inDateRange(d time.Time) bool {
	if f.StartDate != nil && d.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && d.After(*f.EndDate) {
		return false
	}
	return true
}

func (f Filters) matchEntry(e Entry) bool {
	if f.Voucher != nil && e.Voucher != *f.Voucher {
		return false
	}
	amount := e.Debit + e.Credit
	if f.MinAmount != nil && amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && amount > *f.MaxAmount {
		return false
	}
	return true
}

func applyEntryFilters(entries []Entry, f Filters) []Entry {
	if f.Voucher == nil && f.MinAmount == nil && f.MaxAmount == nil {
		return entries
	}
	out := entries[:0]
	for _, e := range entries {
		if f.matchEntry(e) {
			out = append(out, e)
		}
	}
	return out
}

// finalize orders entries by date (stable, ties keep input order) and walks
// them once accumulating the running balance. Each entry's balance is the
// magnitude of the accumulator, its side DR when the accumulator is
// non-negative.
func finalize(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	var running float64
	for i := range entries {
		running = shared.Round2(running + entries[i].Debit - entries[i].Credit)
		if running >= 0 {
			entries[i].Balance = running
			entries[i].Side = SideDebit
		} else {
			entries[i].Balance = shared.Round2(-running)
			entries[i].Side = SideCredit
		}
	}
	return entries
}
