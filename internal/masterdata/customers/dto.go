package customers

type CreateCustomerRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	ContactPerson *string `json:"contact_person,omitempty" validate:"omitempty,max=120"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	GSTIN         *string `json:"gstin,omitempty" validate:"omitempty,len=15"`
	AddressLine1  *string `json:"address_line1,omitempty" validate:"omitempty,max=200"`
	AddressLine2  *string `json:"address_line2,omitempty" validate:"omitempty,max=200"`
	City          *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State         *string `json:"state,omitempty" validate:"omitempty,max=100"`
	PinCode       *string `json:"pin_code,omitempty" validate:"omitempty,len=6"`
	Notes         *string `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=200"`
	ContactPerson *string `json:"contact_person,omitempty" validate:"omitempty,max=120"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	GSTIN         *string `json:"gstin,omitempty" validate:"omitempty,len=15"`
	AddressLine1  *string `json:"address_line1,omitempty"`
	AddressLine2  *string `json:"address_line2,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	PinCode       *string `json:"pin_code,omitempty" validate:"omitempty,len=6"`
	IsActive      *bool   `json:"is_active,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type ListCustomersRequest struct {
	IsActive *bool   `json:"is_active,omitempty"`
	Search   *string `json:"search,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}
