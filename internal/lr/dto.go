package lr

import "time"

type CreateLorryReceiptRequest struct {
	Date          time.Time `json:"date" validate:"required"`
	CustomerID    int64     `json:"customer_id" validate:"required,gt=0"`
	ConsignorName string    `json:"consignor_name" validate:"required,max=200"`
	ConsigneeName string    `json:"consignee_name" validate:"required,max=200"`
	FromLocation  string    `json:"from_location" validate:"required,max=120"`
	ToLocation    string    `json:"to_location" validate:"required,max=120"`
	VehicleNumber string    `json:"vehicle_number" validate:"required,max=20"`
	Packages      int       `json:"packages" validate:"gte=0"`
	Description   *string   `json:"description,omitempty"`
	ActualWeight  float64   `json:"actual_weight" validate:"gte=0"`
	ChargedWeight float64   `json:"charged_weight" validate:"gte=0"`
	FreightAmount float64   `json:"freight_amount" validate:"gte=0"`
	Hamali        float64   `json:"hamali" validate:"gte=0"`
	OtherCharges  float64   `json:"other_charges" validate:"gte=0"`
}

type UpdateLorryReceiptRequest struct {
	Date          *time.Time `json:"date,omitempty"`
	ConsignorName *string    `json:"consignor_name,omitempty" validate:"omitempty,max=200"`
	ConsigneeName *string    `json:"consignee_name,omitempty" validate:"omitempty,max=200"`
	FromLocation  *string    `json:"from_location,omitempty" validate:"omitempty,max=120"`
	ToLocation    *string    `json:"to_location,omitempty" validate:"omitempty,max=120"`
	VehicleNumber *string    `json:"vehicle_number,omitempty" validate:"omitempty,max=20"`
	Packages      *int       `json:"packages,omitempty" validate:"omitempty,gte=0"`
	Description   *string    `json:"description,omitempty"`
	ActualWeight  *float64   `json:"actual_weight,omitempty" validate:"omitempty,gte=0"`
	ChargedWeight *float64   `json:"charged_weight,omitempty" validate:"omitempty,gte=0"`
	FreightAmount *float64   `json:"freight_amount,omitempty" validate:"omitempty,gte=0"`
	Hamali        *float64   `json:"hamali,omitempty" validate:"omitempty,gte=0"`
	OtherCharges  *float64   `json:"other_charges,omitempty" validate:"omitempty,gte=0"`
}

type ListLorryReceiptsRequest struct {
	CustomerID *int64  `json:"customer_id,omitempty"`
	Status     *Status `json:"status,omitempty"`
	Uninvoiced bool    `json:"uninvoiced,omitempty"`
	Limit      int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int     `json:"offset" validate:"gte=0"`
}
