package lr

import "time"

// Status enumerates lorry receipt lifecycle states.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusInvoiced  Status = "INVOICED"
	StatusDelivered Status = "DELIVERED"
)

// LorryReceipt is the consignment note issued for a single load. Charges are
// frozen at creation; the freight total feeds invoice assembly.
type LorryReceipt struct {
	ID            int64      `json:"id"`
	Number        string     `json:"number"`
	Date          time.Time  `json:"date"`
	CustomerID    int64      `json:"customer_id"`
	ConsignorName string     `json:"consignor_name"`
	ConsigneeName string     `json:"consignee_name"`
	FromLocation  string     `json:"from_location"`
	ToLocation    string     `json:"to_location"`
	VehicleNumber string     `json:"vehicle_number"`
	Packages      int        `json:"packages"`
	Description   *string    `json:"description,omitempty"`
	ActualWeight  float64    `json:"actual_weight"`
	ChargedWeight float64    `json:"charged_weight"`
	FreightAmount float64    `json:"freight_amount"`
	Hamali        float64    `json:"hamali"`
	OtherCharges  float64    `json:"other_charges"`
	TotalAmount   float64    `json:"total_amount"`
	Status        Status     `json:"status"`
	InvoiceID     *int64     `json:"invoice_id,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ChargeTotal sums the charge components of a receipt.
func (l LorryReceipt) ChargeTotal() float64 {
	return l.FreightAmount + l.Hamali + l.OtherCharges
}
