package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippingQuote(t *testing.T) {
	settings := DefaultShippingSettings()
	settings.UnserviceableStates = []string{"Ladakh", " andaman and  nicobar "}

	tests := []struct {
		name     string
		state    string
		weight   string
		billable string
		charge   string
	}{
		{"zero weight ships as one kilogram", "Kerala", "0", "1", "60"},
		{"home state is case insensitive", "  kerala ", "1.2", "2", "120"},
		{"other state uses default rate", "Tamil Nadu", "2.0", "2", "200"},
		{"partial kilogram rounds up", "Goa", "2.001", "3", "300"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := settings.Quote(tt.state, decimal.RequireFromString(tt.weight))
			require.NoError(t, err)
			assert.True(t, q.BillableKg.Equal(decimal.RequireFromString(tt.billable)), "billable %s", q.BillableKg)
			assert.True(t, q.Charge.Equal(decimal.RequireFromString(tt.charge)), "charge %s", q.Charge)
		})
	}
}

func TestShippingQuoteRejections(t *testing.T) {
	settings := DefaultShippingSettings()
	settings.UnserviceableStates = []string{"Andaman and Nicobar"}

	_, err := settings.Quote("  ", decimal.Zero)
	assert.True(t, errors.Is(err, ErrShippingStateRequired))

	_, err = settings.Quote("andaman  AND nicobar", decimal.NewFromInt(1))
	require.Error(t, err)
	assert.True(t, IsUnserviceable(err))
}

func TestShippingSettingsValidate(t *testing.T) {
	s := &ShippingSettings{
		HomeRate:            decimal.NewFromInt(50),
		DefaultRate:         decimal.NewFromInt(90),
		UnserviceableStates: ParseStateList("Ladakh\nladakh, Lakshadweep\r\n,"),
	}
	require.NoError(t, s.Validate())
	assert.Equal(t, DefaultHomeState, s.HomeState)
	assert.Equal(t, []string{"Ladakh", "Lakshadweep"}, s.UnserviceableStates)

	s.DefaultRate = decimal.NewFromInt(-1)
	var verr *ValidationError
	assert.ErrorAs(t, s.Validate(), &verr)
}
