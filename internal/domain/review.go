package domain

import (
	"strings"
	"time"
)

// Review of a delivered order.
type Review struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  string    `json:"customer_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	Approved    bool      `json:"approved"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the rating range and trims the comment.
func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return NewValidationError("rating", "Rating must be between 1 and 5.")
	}
	r.Comment = strings.TrimSpace(r.Comment)
	return nil
}
