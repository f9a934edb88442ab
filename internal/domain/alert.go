package domain

import (
	"fmt"
	"time"
)

// DefaultLowStockThreshold is the stock level that raises a warning.
const DefaultLowStockThreshold = 5

// AlertLevel grades a staff alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "info"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// StockAlert tells staff that a product ran low or sold out.
type StockAlert struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	Level       AlertLevel `json:"level"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Read        bool       `json:"read"`
	CreatedAt   time.Time  `json:"created_at"`
}

// StockAlertLevel reports the alert raised when stock moves from prev to
// curr. Selling out is critical; dropping to or below threshold from above
// it is a warning. Any other change raises nothing.
func StockAlertLevel(prev, curr, threshold int) (AlertLevel, bool) {
	switch {
	case curr <= 0 && prev > 0:
		return AlertCritical, true
	case curr <= threshold && prev > threshold:
		return AlertWarning, true
	}
	return "", false
}

// NewStockAlert builds the alert for product at level.
func NewStockAlert(id string, product *Product, level AlertLevel, now time.Time) *StockAlert {
	alert := &StockAlert{
		ID:          id,
		ProductID:   product.ID,
		ProductName: product.Name,
		Level:       level,
		CreatedAt:   now,
	}
	if level == AlertCritical {
		alert.Title = fmt.Sprintf("%s is out of stock", product.Name)
		alert.Message = fmt.Sprintf("%s has run out of stock.", product.Name)
	} else {
		alert.Title = fmt.Sprintf("%s stock is low", product.Name)
		alert.Message = fmt.Sprintf("%s stock is low (only %d left).", product.Name, product.StockQuantity)
	}
	return alert
}
