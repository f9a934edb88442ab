package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Default shipping configuration.
var (
	DefaultHomeState  = "Kerala"
	DefaultHomeRate   = decimal.RequireFromString("60.00")
	DefaultOtherRate  = decimal.RequireFromString("100.00")
	minimumBillableKg = decimal.NewFromInt(1)
)

// ShippingSettings holds the per-kilogram delivery rates.
type ShippingSettings struct {
	HomeState           string          `json:"home_state"`
	HomeRate            decimal.Decimal `json:"home_rate"`
	DefaultRate         decimal.Decimal `json:"default_rate"`
	UnserviceableStates []string        `json:"unserviceable_states"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// DefaultShippingSettings is used until staff save their own.
func DefaultShippingSettings() *ShippingSettings {
	return &ShippingSettings{
		HomeState:   DefaultHomeState,
		HomeRate:    DefaultHomeRate,
		DefaultRate: DefaultOtherRate,
	}
}

// Validate checks rates and tidies the unserviceable list.
func (s *ShippingSettings) Validate() error {
	if strings.TrimSpace(s.HomeState) == "" {
		s.HomeState = DefaultHomeState
	}
	if s.HomeRate.IsNegative() {
		return NewValidationError("home_rate", "Rates cannot be negative.")
	}
	if s.DefaultRate.IsNegative() {
		return NewValidationError("default_rate", "Rates cannot be negative.")
	}
	seen := make(map[string]bool)
	cleaned := make([]string, 0, len(s.UnserviceableStates))
	for _, state := range s.UnserviceableStates {
		state = strings.TrimSpace(state)
		key := normalizeState(state)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, state)
	}
	s.UnserviceableStates = cleaned
	return nil
}

// ParseStateList splits a newline- or comma-separated list of states.
func ParseStateList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' || r == '\r' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Serviceable reports whether deliveries to state are possible.
func (s *ShippingSettings) Serviceable(state string) bool {
	key := normalizeState(state)
	for _, blocked := range s.UnserviceableStates {
		if normalizeState(blocked) == key {
			return false
		}
	}
	return true
}

// RateFor returns the per-kilogram rate for state.
func (s *ShippingSettings) RateFor(state string) decimal.Decimal {
	if normalizeState(state) == normalizeState(s.HomeState) {
		return s.HomeRate
	}
	return s.DefaultRate
}

// ShippingQuote is the delivery charge for a weight and destination.
type ShippingQuote struct {
	State      string          `json:"state"`
	WeightKg   decimal.Decimal `json:"weight_kg"`
	BillableKg decimal.Decimal `json:"billable_kg"`
	Rate       decimal.Decimal `json:"rate"`
	Charge     decimal.Decimal `json:"charge"`
}

// Quote prices delivery of weightKg to state. Weight is billed per started
// kilogram with a one kilogram minimum.
func (s *ShippingSettings) Quote(state string, weightKg decimal.Decimal) (*ShippingQuote, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return nil, ErrShippingStateRequired
	}
	if !s.Serviceable(state) {
		return nil, &UnserviceableError{State: state}
	}
	if weightKg.IsNegative() {
		weightKg = decimal.Zero
	}
	billable := weightKg.Ceil()
	if billable.LessThan(minimumBillableKg) {
		billable = minimumBillableKg
	}
	rate := s.RateFor(state)
	return &ShippingQuote{
		State:      state,
		WeightKg:   weightKg,
		BillableKg: billable,
		Rate:       rate,
		Charge:     RoundMoney(rate.Mul(billable)),
	}, nil
}

func normalizeState(state string) string {
	return strings.ToLower(strings.Join(strings.Fields(state), " "))
}
