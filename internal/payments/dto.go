package payments

import "time"

type CreatePaymentRequest struct {
	Date              time.Time  `json:"date" validate:"required"`
	Type              Type       `json:"type" validate:"required,oneof=ADVANCE RECEIPT PAYMENT"`
	Mode              Mode       `json:"mode" validate:"required,oneof=CASH CHEQUE NEFT RTGS UPI"`
	Amount            float64    `json:"amount" validate:"required,gt=0"`
	CustomerID        *int64     `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	InvoiceID         *int64     `json:"invoice_id,omitempty" validate:"omitempty,gt=0"`
	TruckHiringNoteID *int64     `json:"truck_hiring_note_id,omitempty" validate:"omitempty,gt=0"`
	TDSApplicable     bool       `json:"tds_applicable"`
	TDSRate           *float64   `json:"tds_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	TDSAmount         *float64   `json:"tds_amount,omitempty" validate:"omitempty,gte=0"`
	TDSDate           *time.Time `json:"tds_date,omitempty"`
	Reference         *string    `json:"reference,omitempty" validate:"omitempty,max=100"`
	Notes             *string    `json:"notes,omitempty"`
	IdempotencyKey    string     `json:"idempotency_key,omitempty" validate:"omitempty,uuid4"`
}

type UpdatePaymentRequest struct {
	Date          *time.Time `json:"date,omitempty"`
	Mode          *Mode      `json:"mode,omitempty" validate:"omitempty,oneof=CASH CHEQUE NEFT RTGS UPI"`
	Amount        *float64   `json:"amount,omitempty" validate:"omitempty,gt=0"`
	TDSApplicable *bool      `json:"tds_applicable,omitempty"`
	TDSRate       *float64   `json:"tds_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	TDSDate       *time.Time `json:"tds_date,omitempty"`
	Reference     *string    `json:"reference,omitempty" validate:"omitempty,max=100"`
	Notes         *string    `json:"notes,omitempty"`
}

type ListPaymentsRequest struct {
	CustomerID        *int64 `json:"customer_id,omitempty"`
	InvoiceID         *int64 `json:"invoice_id,omitempty"`
	TruckHiringNoteID *int64 `json:"truck_hiring_note_id,omitempty"`
	Type              *Type  `json:"type,omitempty"`
	Limit             int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset            int    `json:"offset" validate:"gte=0"`
}
