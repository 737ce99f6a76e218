package invoices

import (
	"time"

	"github.com/freightbox-tms/freightbox/internal/shared"
)

type CreateInvoiceRequest struct {
	Date            time.Time `json:"date" validate:"required"`
	CustomerID      int64     `json:"customer_id" validate:"required,gt=0"`
	LorryReceiptIDs []int64   `json:"lorry_receipt_ids" validate:"required,min=1,dive,gt=0"`
	GSTRate         float64   `json:"gst_rate" validate:"gte=0,lte=100"`
	IsInterstate    bool      `json:"is_interstate"`
	Notes           *string   `json:"notes,omitempty"`
}

type ListInvoicesRequest struct {
	CustomerID *int64                   `json:"customer_id,omitempty"`
	Status     *shared.SettlementStatus `json:"status,omitempty"`
	StartDate  *time.Time               `json:"start_date,omitempty"`
	EndDate    *time.Time               `json:"end_date,omitempty"`
	Limit      int                      `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int                      `json:"offset" validate:"gte=0"`
}
