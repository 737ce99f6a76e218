package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freightbox-tms/freightbox/internal/invoices"
	"github.com/freightbox-tms/freightbox/internal/masterdata/customers"
	"github.com/freightbox-tms/freightbox/internal/payments"
	"github.com/freightbox-tms/freightbox/internal/thn"
)

func testCustomers() []customers.Customer {
	return []customers.Customer{{ID: 7, Name: "Sharma Traders"}}
}

// april pins the generated range around the fixed test dates; the default
// trailing-365-day window would exclude them.
func april() Filters {
	start, end := day(1), day(30)
	return Filters{StartDate: &start, EndDate: &end}
}

func entryTotals(entries []Entry) (debits, credits float64) {
	for _, e := range entries {
		debits += e.Debit
		credits += e.Credit
	}
	return debits, credits
}

func TestCompanyLedgerInvoiceIsSelfBalanced(t *testing.T) {
	invs := []invoices.Invoice{
		{ID: 1, Number: "INV-2024-00001", Date: day(1), CustomerID: 7, GrandTotal: 11200},
	}

	out := BuildCompanyLedger(testCustomers(), invs, nil, nil, april())
	require.Len(t, out.Entries, 2)

	debits, credits := entryTotals(out.Entries)
	require.Equal(t, debits, credits)
	require.Equal(t, 11200.0, out.Summary.TotalRevenue)
	require.Equal(t, 0.0, out.Summary.TotalExpenses)
	require.Equal(t, 11200.0, out.Summary.NetProfit)
}

func TestCompanyLedgerTDSReceiptSplitsThreeWays(t *testing.T) {
	pays := []payments.Payment{
		{ID: 1, Number: "PAY-2024-00001", Date: day(5), Type: payments.TypeReceipt,
			Mode: payments.ModeNEFT, Amount: 9000, CustomerID: i64(7), InvoiceID: i64(1),
			TDSApplicable: true, TDSRate: f64(10), TDSAmount: f64(1000)},
	}
	invs := []invoices.Invoice{
		{ID: 1, Number: "INV-2024-00001", Date: day(1), CustomerID: 7, GrandTotal: 10000},
	}

	out := BuildCompanyLedger(testCustomers(), invs, pays, nil, april())
	// Two invoice entries plus the three-way TDS split.
	require.Len(t, out.Entries, 5)

	var cash, tds, receivable float64
	for _, e := range out.Entries {
		if e.Reference != "PAY-2024-00001" {
			continue
		}
		switch e.Account {
		case accountCash:
			cash = e.Debit
		case accountTDSPayable:
			tds = e.Credit
		case accountReceivables:
			receivable = e.Credit
		}
	}
	require.Equal(t, 9000.0, cash)
	require.Equal(t, 1000.0, tds)
	require.Equal(t, 10000.0, receivable)
	// Net cash in plus TDS payable clears the gross receivable.
	require.Equal(t, receivable, cash+tds)
}

func TestCompanyLedgerTDSDateUsedForPayableEntry(t *testing.T) {
	deducted := day(20)
	pays := []payments.Payment{
		{ID: 1, Number: "PAY-2024-00001", Date: day(5), Type: payments.TypeReceipt,
			Mode: payments.ModeNEFT, Amount: 9000, CustomerID: i64(7),
			TDSApplicable: true, TDSRate: f64(10), TDSAmount: f64(1000), TDSDate: &deducted},
	}

	out := BuildCompanyLedger(testCustomers(), nil, pays, nil, april())
	var found bool
	for _, e := range out.Entries {
		if e.Account == accountTDSPayable {
			found = true
			require.True(t, e.Date.Equal(deducted))
		}
	}
	require.True(t, found)
}

func TestCompanyLedgerAdvanceAndTHN(t *testing.T) {
	pays := []payments.Payment{
		{ID: 1, Number: "PAY-2024-00002", Date: day(3), Type: payments.TypeAdvance,
			Mode: payments.ModeCash, Amount: 2000, TruckHiringNoteID: i64(1)},
	}
	notes := []thn.TruckHiringNote{
		{ID: 1, Number: "THN-2024-00001", Date: day(2), TruckNumber: "MH12AB1234",
			FromLocation: "Pune", ToLocation: "Nagpur", FreightRate: 8000, AdditionalCharges: 500},
	}

	out := BuildCompanyLedger(testCustomers(), nil, pays, notes, april())
	require.Len(t, out.Entries, 4)

	var freight, cashOut float64
	for _, e := range out.Entries {
		switch {
		case e.Account == accountFreight:
			freight = e.Debit
		case e.Account == accountCash && e.Voucher == VoucherTHN:
			cashOut = e.Credit
		}
	}
	// Additional charges ride along with the freight rate.
	require.Equal(t, 8500.0, freight)
	require.Equal(t, 8500.0, cashOut)
	require.Equal(t, 8500.0, out.Summary.TotalExpenses)
	require.Equal(t, -8500.0, out.Summary.NetProfit)

	debits, credits := entryTotals(out.Entries)
	require.Equal(t, debits, credits)
}

func TestCompanyLedgerDateRangeExcludesOutliers(t *testing.T) {
	invs := []invoices.Invoice{
		{ID: 1, Number: "INV-2024-00001", Date: day(1), CustomerID: 7, GrandTotal: 5000},
		{ID: 2, Number: "INV-2024-00002", Date: day(20), CustomerID: 7, GrandTotal: 7000},
	}
	start, end := day(15), day(25)

	out := BuildCompanyLedger(testCustomers(), invs, nil, nil, Filters{StartDate: &start, EndDate: &end})
	require.Len(t, out.Entries, 2)
	require.Equal(t, 7000.0, out.Summary.TotalRevenue)
	require.True(t, out.StartDate.Equal(start))
	require.True(t, out.EndDate.Equal(end))
}

func TestCompanyLedgerCustomerFilter(t *testing.T) {
	invs := []invoices.Invoice{
		{ID: 1, Number: "INV-2024-00001", Date: day(1), CustomerID: 7, GrandTotal: 5000},
		{ID: 2, Number: "INV-2024-00002", Date: day(2), CustomerID: 8, GrandTotal: 9000},
	}

	customerID := int64(7)
	f := april()
	f.CustomerID = &customerID
	out := BuildCompanyLedger(testCustomers(), invs, nil, nil, f)
	require.Len(t, out.Entries, 2)
	require.Equal(t, 5000.0, out.Summary.TotalRevenue)
}

func TestCompanyLedgerDefaultsToTrailingYear(t *testing.T) {
	out := BuildCompanyLedger(nil, nil, nil, nil, Filters{})
	require.Empty(t, out.Entries)
	require.True(t, out.StartDate.Before(out.EndDate))
	require.InDelta(t, 365*24.0, out.EndDate.Sub(out.StartDate).Hours(), 25)
}
