package domain

import "github.com/shopspring/decimal"

// Currency is the only currency the storefront sells in.
const Currency = "INR"

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds an amount to paise, half away from zero.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// ToMinorUnits converts rupees to paise for payment providers.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts paise back to rupees.
func FromMinorUnits(paise int64) decimal.Decimal {
	return decimal.New(paise, -2)
}

// FormatRupees renders an amount the way it is shown to customers.
func FormatRupees(amount decimal.Decimal) string {
	return "₹" + amount.StringFixed(2)
}
