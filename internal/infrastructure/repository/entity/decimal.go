// Package entity maps domain types to their MongoDB documents.
package entity

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is stored as Decimal128 so amounts stay exact and sortable in Mongo.

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toDecimal128Ptr(d *decimal.Decimal) *primitive.Decimal128 {
	if d == nil {
		return nil
	}
	v := toDecimal128(*d)
	return &v
}

func fromDecimal128Ptr(v *primitive.Decimal128) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := fromDecimal128(*v)
	return &d
}
