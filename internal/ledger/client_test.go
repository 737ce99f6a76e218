package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freightbox-tms/freightbox/internal/invoices"
	"github.com/freightbox-tms/freightbox/internal/masterdata/customers"
	"github.com/freightbox-tms/freightbox/internal/payments"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }
func day(d int) time.Time    { return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC) }

func testCustomer() *customers.Customer {
	return &customers.Customer{ID: 7, Name: "Sharma Traders"}
}

func TestClientLedgerRunningBalance(t *testing.T) {
	invs := []invoices.Invoice{
		{ID: 1, Number: "INV-2024-00001", Date: day(1), CustomerID: 7, LRCount: 3, GrandTotal: 12000},
	}
	pays := []payments.Payment{
		{ID: 1, Number: "PAY-2024-00001", Date: day(5), Type: payments.TypeReceipt,
			Mode: payments.ModeNEFT, Amount: 5000, CustomerID: i64(7), InvoiceID: i64(1)},
	}

	out := BuildClientLedger(testCustomer(), invs, pays, nil, Filters{})
	require.Len(t, out.Entries, 2)

	first := out.Entries[0]
	require.Equal(t, VoucherInvoice, first.Voucher)
	require.Equal(t, 12000.0, first.Debit)
	require.Equal(t, 12000.0, first.Balance)
	require.Equal(t, SideDebit, first.Side)
	require.Contains(t, first.Particulars, "INV-2024-00001")
	require.Contains(t, first.Particulars, "3 freight charges for Sharma Traders")

	second := out.Entries[1]
	require.Equal(t, 5000.0, second.Credit)
	require.Equal(t, 7000.0, second.Balance)
	require.Equal(t, SideDebit, second.Side)
	require.Contains(t, second.Particulars, "Payment against Invoice INV-2024-00001")
	require.Contains(t, second.Particulars, "NEFT")

	require.Equal(t, 0.0, out.Summary.OpeningBalance)
	require.Equal(t, SideDebit, out.Summary.OpeningSide)
	require.Equal(t, 12000.0, out.Summary.TotalDebits)
	require.Equal(t, 5000.0, out.Summary.TotalCredits)
	require.Equal(t, 7000.0, out.Summary.ClosingBalance)
	require.Equal(t, SideDebit, out.Summary.ClosingSide)
	require.Equal(t, 2, out.Summary.TransactionCount)
}

func TestClientLedgerCreditSideWhenOverpaid(t *testing.T) {
	pays := []payments.Payment{
		{ID: 1, Number: "PAY-2024-00001", Date: day(2), Type: payments.TypeAdvance,
			Mode: payments.ModeCash, Amount: 3000, CustomerID: i64(7), Reference: str("APR-ADV")},
	}

	out := BuildClientLedger(testCustomer(), nil, pays, nil, Filters{})
	require.Len(t, out.Entries, 1)
	require.Equal(t, VoucherAdvance, out.Entries[0].Voucher)
	require.Equal(t, 3000.0, out.Entries[0].Balance)
	require.Equal(t, SideCredit, out.Entries[0].Side)
	require.Contains(t, out.Entries[0].Particulars, "APR-ADV")
}

func TestClientLedgerInfersCustomerThroughInvoice(t *testing.T) {
	invs := []invoices.Invoice{
		{ID: 1, Number: "INV-2024-00001", Date: day(1), CustomerID: 7, GrandTotal: 4000},
	}
	// Payment carries no customer id, only the invoice link.
	pays := []payments.Payment{
		{ID: 1, Number: "PAY-2024-00001", Date: day(3), Type: payments.TypeReceipt,
			Mode: payments.ModeUPI, Amount: 4000, InvoiceID: i64(1)},
	}

	out := BuildClientLedger(testCustomer(), invs, pays, nil, Filters{})
	require.Len(t, out.Entries, 2)
	require.Equal(t, 0.0, out.Summary.ClosingBalance)
}

func TestClientLedgerExcludesOtherCustomers(t *testing.T) {
	invs := []invoices.Invoice{
		{ID: 1, Number: "INV-2024-00001", Date: day(1), CustomerID: 7, GrandTotal: 4000},
		{ID: 2, Number: "INV-2024-00002", Date: day(1), CustomerID: 8, GrandTotal: 9000},
	}
	pays := []payments.Payment{
		{ID: 1, Date: day(2), Type: payments.TypeReceipt, Mode: payments.ModeUPI,
			Amount: 9000, CustomerID: i64(8), InvoiceID: i64(2)},
	}

	out := BuildClientLedger(testCustomer(), invs, pays, nil, Filters{})
	require.Len(t, out.Entries, 1)
	require.Equal(t, 4000.0, out.Summary.TotalDebits)
	require.Equal(t, 0.0, out.Summary.TotalCredits)
}

func TestClientLedgerStartDateCutoff(t *testing.T) {
	invs := []invoices.Invoice{
		{ID: 1, Number: "INV-2024-00001", Date: day(1), CustomerID: 7, GrandTotal: 4000},
		{ID: 2, Number: "INV-2024-00002", Date: day(10), CustomerID: 7, GrandTotal: 6000},
	}
	cutoff := day(10)

	out := BuildClientLedger(testCustomer(), invs, nil, nil, Filters{StartDate: &cutoff})
	require.Len(t, out.Entries, 1)
	require.Equal(t, "INV-2024-00002", out.Entries[0].Reference)
}

func TestClientLedgerAmountAndVoucherFilters(t *testing.T) {
	invs := []invoices.Invoice{
		{ID: 1, Number: "INV-2024-00001", Date: day(1), CustomerID: 7, GrandTotal: 4000},
	}
	pays := []payments.Payment{
		{ID: 1, Date: day(2), Type: payments.TypeReceipt, Mode: payments.ModeUPI,
			Amount: 500, CustomerID: i64(7)},
		{ID: 2, Date: day(3), Type: payments.TypeReceipt, Mode: payments.ModeUPI,
			Amount: 3500, CustomerID: i64(7)},
	}

	min := 1000.0
	out := BuildClientLedger(testCustomer(), invs, pays, nil, Filters{MinAmount: &min})
	require.Len(t, out.Entries, 2)
	for _, e := range out.Entries {
		require.GreaterOrEqual(t, e.Debit+e.Credit, min)
	}

	voucher := VoucherPayment
	out = BuildClientLedger(testCustomer(), invs, pays, nil, Filters{Voucher: &voucher})
	require.Len(t, out.Entries, 2)
	for _, e := range out.Entries {
		require.Equal(t, VoucherPayment, e.Voucher)
	}
}

func TestClientLedgerUnknownCustomerFallback(t *testing.T) {
	out := BuildClientLedger(nil, nil, nil, nil, Filters{})
	require.Equal(t, "Unknown Customer", out.CustomerName)
	require.Empty(t, out.Entries)
	require.Equal(t, 0.0, out.Summary.ClosingBalance)
	require.Equal(t, SideDebit, out.Summary.ClosingSide)
}
