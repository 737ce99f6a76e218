package shared

// SettlementStatus is the tri-state payment status carried by invoices and
// truck hiring notes. It is always derived from payment aggregates, never
// hand-set.
type SettlementStatus string

const (
	SettlementUnpaid        SettlementStatus = "UNPAID"
	SettlementPartiallyPaid SettlementStatus = "PARTIALLY_PAID"
	SettlementPaid          SettlementStatus = "PAID"
)

// DeriveSettlementStatus maps paid/balance aggregates onto the tri-state:
// PAID when nothing remains, PARTIALLY_PAID when something was paid and
// something remains, UNPAID otherwise.
func DeriveSettlementStatus(totalPaid, balance float64) SettlementStatus {
	switch {
	case AmountLTE(balance, 0):
		return SettlementPaid
	case totalPaid > moneyEpsilon:
		return SettlementPartiallyPaid
	default:
		return SettlementUnpaid
	}
}
