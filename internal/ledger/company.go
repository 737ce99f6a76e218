package ledger

import (
	"fmt"
	"time"

	"github.com/freightbox-tms/freightbox/internal/invoices"
	"github.com/freightbox-tms/freightbox/internal/masterdata/customers"
	"github.com/freightbox-tms/freightbox/internal/payments"
	"github.com/freightbox-tms/freightbox/internal/shared"
	"github.com/freightbox-tms/freightbox/internal/thn"
)

// Account names used by the company ledger.
const (
	accountRevenue     = "Sales Revenue"
	accountReceivables = "Accounts Receivable"
	accountCash        = "Cash/Bank"
	accountAdvance     = "Advance Received"
	accountTDSPayable  = "TDS Payable"
	accountFreight     = "Freight Expense"
)

// CompanySummary totals a company ledger. Revenue and expense figures are
// summed from the source documents, not from the entry rows. Assets and
// liabilities are not computed.
type CompanySummary struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalExpenses    float64 `json:"total_expenses"`
	NetProfit        float64 `json:"net_profit"`
	TotalAssets      float64 `json:"total_assets"`
	TotalLiabilities float64 `json:"total_liabilities"`
	TransactionCount int     `json:"transaction_count"`
}

// CompanyLedger is the generated company-wide statement for a date range.
type CompanyLedger struct {
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	Entries   []Entry        `json:"entries"`
	Summary   CompanySummary `json:"summary"`
}

// BuildCompanyLedger produces the company-wide double-entry view from
// read-only snapshots. The range defaults to the trailing 365 days through
// today. Pure function of its inputs apart from reading the clock for that
// default.
func BuildCompanyLedger(custs []customers.Customer, invs []invoices.Invoice, pays []payments.Payment, notes []thn.TruckHiringNote, f Filters) CompanyLedger {
	end := time.Now()
	if f.EndDate != nil {
		end = *f.EndDate
	}
	start := end.AddDate(0, 0, -365)
	if f.StartDate != nil {
		start = *f.StartDate
	}
	f.StartDate, f.EndDate = &start, &end

	names := make(map[int64]string, len(custs))
	for _, c := range custs {
		names[c.ID] = c.Name
	}
	invoiceNumbers := make(map[int64]string, len(invs))
	invoiceCustomers := make(map[int64]int64, len(invs))
	for _, inv := range invs {
		invoiceNumbers[inv.ID] = inv.Number
		invoiceCustomers[inv.ID] = inv.CustomerID
	}

	var entries []Entry
	summary := CompanySummary{}

	for _, inv := range invs {
		if !f.inDateRange(inv.Date) {
			continue
		}
		if f.CustomerID != nil && inv.CustomerID != *f.CustomerID {
			continue
		}
		name := names[inv.CustomerID]
		if name == "" {
			name = "Unknown Customer"
		}
		summary.TotalRevenue += inv.GrandTotal
		entries = append(entries,
			Entry{
				Date:        inv.Date,
				Voucher:     VoucherInvoice,
				Account:     accountRevenue,
				Particulars: fmt.Sprintf("Freight income, Invoice %s (%s)", inv.Number, name),
				Credit:      inv.GrandTotal,
				Reference:   inv.Number,
			},
			Entry{
				Date:        inv.Date,
				Voucher:     VoucherInvoice,
				Account:     accountReceivables,
				Particulars: fmt.Sprintf("Receivable, Invoice %s (%s)", inv.Number, name),
				Debit:       inv.GrandTotal,
				Reference:   inv.Number,
			},
		)
	}

	for _, p := range pays {
		if !f.inDateRange(p.Date) {
			continue
		}
		if f.CustomerID != nil && !companyPaymentMatches(p, *f.CustomerID, invoiceCustomers) {
			continue
		}
		entries = append(entries, companyPaymentEntries(p, invoiceNumbers)...)
	}

	for _, note := range notes {
		if !f.inDateRange(note.Date) {
			continue
		}
		if f.CustomerID != nil {
			continue
		}
		total := note.TotalAmount()
		summary.TotalExpenses += total
		entries = append(entries,
			Entry{
				Date:        note.Date,
				Voucher:     VoucherTHN,
				Account:     accountFreight,
				Particulars: fmt.Sprintf("Truck hire %s, %s to %s", note.TruckNumber, note.FromLocation, note.ToLocation),
				Debit:       total,
				Reference:   note.Number,
			},
			Entry{
				Date:        note.Date,
				Voucher:     VoucherTHN,
				Account:     accountCash,
				Particulars: fmt.Sprintf("Paid against THN %s", note.Number),
				Credit:      total,
				Reference:   note.Number,
			},
		)
	}

	entries = finalize(applyEntryFilters(entries, f))

	summary.TotalRevenue = shared.Round2(summary.TotalRevenue)
	summary.TotalExpenses = shared.Round2(summary.TotalExpenses)
	summary.NetProfit = shared.Round2(summary.TotalRevenue - summary.TotalExpenses)
	summary.TransactionCount = len(entries)

	return CompanyLedger{
		StartDate: start,
		EndDate:   end,
		Entries:   entries,
		Summary:   summary,
	}
}

func companyPaymentMatches(p payments.Payment, customerID int64, invoiceCustomers map[int64]int64) bool {
	if p.CustomerID != nil && *p.CustomerID == customerID {
		return true
	}
	if p.InvoiceID != nil {
		return invoiceCustomers[*p.InvoiceID] == customerID
	}
	return false
}

// companyPaymentEntries expands one payment into its balanced double-entry
// lines. A TDS receipt splits three ways: net cash in plus TDS payable equals
// the gross receivable cleared.
func companyPaymentEntries(p payments.Payment, invoiceNumbers map[int64]string) []Entry {
	ref := p.Number
	settles := "Payment received"
	if p.InvoiceID != nil {
		if num, ok := invoiceNumbers[*p.InvoiceID]; ok {
			settles = fmt.Sprintf("Payment against Invoice %s", num)
		}
	}

	if p.Type == payments.TypeAdvance {
		return []Entry{
			{
				Date:        p.Date,
				Voucher:     VoucherAdvance,
				Account:     accountAdvance,
				Particulars: fmt.Sprintf("Advance received, %s", p.Number),
				Credit:      p.Amount,
				Reference:   ref,
			},
			{
				Date:        p.Date,
				Voucher:     VoucherAdvance,
				Account:     accountCash,
				Particulars: fmt.Sprintf("Cash in, advance %s", p.Number),
				Debit:       p.Amount,
				Reference:   ref,
			},
		}
	}

	voucher := VoucherPayment
	if p.Type == payments.TypeReceipt {
		voucher = VoucherReceipt
	}

	if p.Type == payments.TypeReceipt && p.TDSApplicable && p.TDSAmount != nil && *p.TDSAmount > 0 {
		tdsDate := p.Date
		if p.TDSDate != nil {
			tdsDate = *p.TDSDate
		}
		gross := p.GrossAmount()
		return []Entry{
			{
				Date:        p.Date,
				Voucher:     voucher,
				Account:     accountCash,
				Particulars: fmt.Sprintf("%s (net of TDS)", settles),
				Debit:       p.Amount,
				Reference:   ref,
			},
			{
				Date:        tdsDate,
				Voucher:     voucher,
				Account:     accountTDSPayable,
				Particulars: fmt.Sprintf("TDS deducted on %s", p.Number),
				Credit:      *p.TDSAmount,
				Reference:   ref,
			},
			{
				Date:        p.Date,
				Voucher:     voucher,
				Account:     accountReceivables,
				Particulars: fmt.Sprintf("%s (gross)", settles),
				Credit:      gross,
				Reference:   ref,
			},
		}
	}

	return []Entry{
		{
			Date:        p.Date,
			Voucher:     voucher,
			Account:     accountCash,
			Particulars: settles,
			Debit:       p.Amount,
			Reference:   ref,
		},
		{
			Date:        p.Date,
			Voucher:     voucher,
			Account:     accountReceivables,
			Particulars: settles,
			Credit:      p.Amount,
			Reference:   ref,
		},
	}
}
