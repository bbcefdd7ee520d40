package customers

import "time"

// Customer is a buyer that sales may reference.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// AddCustomerInput carries the fields accepted by Add.
type AddCustomerInput struct {
	Name  string
	Email *string
	Phone *string
}
