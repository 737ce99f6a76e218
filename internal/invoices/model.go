package invoices

import (
	"time"

	"github.com/freightbox-tms/freightbox/internal/shared"
)

// Invoice bills a customer for one or more lorry receipts. GrandTotal is
// frozen at creation; paid/balance/status are derived from payments and
// rewritten only by the reconciliation path.
type Invoice struct {
	ID            int64                   `json:"id"`
	Number        string                  `json:"number"`
	Date          time.Time               `json:"date"`
	CustomerID    int64                   `json:"customer_id"`
	LRCount       int                     `json:"lr_count"`
	Subtotal      float64                 `json:"subtotal"`
	GSTRate       float64                 `json:"gst_rate"`
	IsInterstate  bool                    `json:"is_interstate"`
	CGST          float64                 `json:"cgst"`
	SGST          float64                 `json:"sgst"`
	IGST          float64                 `json:"igst"`
	GrandTotal    float64                 `json:"grand_total"`
	PaidAmount    float64                 `json:"paid_amount"`
	BalanceAmount float64                 `json:"balance_amount"`
	Status        shared.SettlementStatus `json:"status"`
	Notes         *string                 `json:"notes,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}
