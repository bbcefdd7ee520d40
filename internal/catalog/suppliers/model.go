package suppliers

import "time"

// Supplier provides the goods recorded as purchases.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Contact   *string   `json:"contact,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// AddSupplierInput carries the fields accepted by Add.
type AddSupplierInput struct {
	Name    string
	Contact *string
	Email   *string
	Phone   *string
}
