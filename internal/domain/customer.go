package domain

import "time"

// Role of a storefront account.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// Customer is a storefront account. Favorite customers see favorites-only coupons.
type Customer struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      Role      `json:"role"`
	Favorite  bool      `json:"favorite"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsFavorite treats a nil customer as a normal (non-favorite) customer.
func (c *Customer) IsFavorite() bool {
	return c != nil && c.Favorite
}
