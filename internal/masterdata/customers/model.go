package customers

import "time"

// Customer represents a consignor/consignee party the company bills.
type Customer struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Email         *string   `json:"email,omitempty"`
	GSTIN         *string   `json:"gstin,omitempty"`
	AddressLine1  *string   `json:"address_line1,omitempty"`
	AddressLine2  *string   `json:"address_line2,omitempty"`
	City          *string   `json:"city,omitempty"`
	State         *string   `json:"state,omitempty"`
	PinCode       *string   `json:"pin_code,omitempty"`
	IsActive      bool      `json:"is_active"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DisplayName returns the customer name or a stable placeholder. Ledger
// particulars must never fail on a missing party.
func DisplayName(c *Customer) string {
	if c == nil || c.Name == "" {
		return "Unknown Customer"
	}
	return c.Name
}
