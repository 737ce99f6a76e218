package thn

import (
	"time"

	"github.com/freightbox-tms/freightbox/internal/shared"
)

type CreateTHNRequest struct {
	Date              time.Time `json:"date" validate:"required"`
	TruckNumber       string    `json:"truck_number" validate:"required,min=4,max=32"`
	OwnerName         string    `json:"owner_name" validate:"required,min=2,max=120"`
	OwnerContact      *string   `json:"owner_contact,omitempty" validate:"omitempty,max=40"`
	FromLocation      string    `json:"from_location" validate:"required,min=2,max=120"`
	ToLocation        string    `json:"to_location" validate:"required,min=2,max=120"`
	FreightRate       float64   `json:"freight_rate" validate:"required,gt=0"`
	AdditionalCharges float64   `json:"additional_charges" validate:"gte=0"`
	AdvanceAmount     float64   `json:"advance_amount" validate:"gte=0"`
	Notes             *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateTHNRequest patches operator inputs. Derived fields are recomputed,
// never patched.
type UpdateTHNRequest struct {
	Date              *time.Time `json:"date,omitempty"`
	TruckNumber       *string    `json:"truck_number,omitempty" validate:"omitempty,min=4,max=32"`
	OwnerName         *string    `json:"owner_name,omitempty" validate:"omitempty,min=2,max=120"`
	OwnerContact      *string    `json:"owner_contact,omitempty" validate:"omitempty,max=40"`
	FromLocation      *string    `json:"from_location,omitempty" validate:"omitempty,min=2,max=120"`
	ToLocation        *string    `json:"to_location,omitempty" validate:"omitempty,min=2,max=120"`
	FreightRate       *float64   `json:"freight_rate,omitempty" validate:"omitempty,gt=0"`
	AdditionalCharges *float64   `json:"additional_charges,omitempty" validate:"omitempty,gte=0"`
	AdvanceAmount     *float64   `json:"advance_amount,omitempty" validate:"omitempty,gte=0"`
	Notes             *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ListTHNRequest struct {
	Status      *shared.SettlementStatus `json:"status,omitempty"`
	TruckNumber *string                  `json:"truck_number,omitempty"`
	StartDate   *time.Time               `json:"start_date,omitempty"`
	EndDate     *time.Time               `json:"end_date,omitempty"`
	Limit       int                      `json:"limit" validate:"gte=0,lte=1000"`
	Offset      int                      `json:"offset" validate:"gte=0"`
}
