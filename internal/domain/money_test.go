package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"0", 0},
		{"499.00", 49900},
		{"10.005", 1001},
		{"1234.56", 123456},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMinorUnits(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestFromMinorUnitsRoundTrip(t *testing.T) {
	assert.True(t, FromMinorUnits(49950).Equal(decimal.RequireFromString("499.50")))
	assert.Equal(t, "₹499.50", FormatRupees(FromMinorUnits(49950)))
}
