package thn

import (
	"time"

	"github.com/freightbox-tms/freightbox/internal/shared"
)

// TruckHiringNote records a truck hired from a third-party owner for a trip.
// FreightRate, AdditionalCharges and AdvanceAmount are operator inputs;
// PaidAmount, BalanceAmount and Status are derived by the reconciliation
// engine and never accepted from clients.
type TruckHiringNote struct {
	ID                int64                   `json:"id"`
	Number            string                  `json:"number"`
	Date              time.Time               `json:"date"`
	TruckNumber       string                  `json:"truck_number"`
	OwnerName         string                  `json:"owner_name"`
	OwnerContact      *string                 `json:"owner_contact,omitempty"`
	FromLocation      string                  `json:"from_location"`
	ToLocation        string                  `json:"to_location"`
	FreightRate       float64                 `json:"freight_rate"`
	AdditionalCharges float64                 `json:"additional_charges"`
	AdvanceAmount     float64                 `json:"advance_amount"`
	PaidAmount        float64                 `json:"paid_amount"`
	BalanceAmount     float64                 `json:"balance_amount"`
	Status            shared.SettlementStatus `json:"status"`
	Notes             *string                 `json:"notes,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// TotalAmount is the full sum owed to the truck owner for the trip.
func (t *TruckHiringNote) TotalAmount() float64 {
	return shared.Round2(t.FreightRate + t.AdditionalCharges)
}
