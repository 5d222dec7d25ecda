// Package core provides money handling utilities.
//
// This file converts between exact decimals, paise and rupee representations.
package core

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DecimalToCents converts an exact decimal amount to paise, rounding half-up
// past the second fractional digit. ok is false when the value overflows int64.
func DecimalToCents(d decimal.Decimal) (cents int64, ok bool) {
	scaled := d.Mul(hundred).Round(0)
	if !scaled.BigInt().IsInt64() {
		return 0, false
	}
	return scaled.IntPart(), true
}

// Decimal returns the amount in rupees as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Rupees returns the rupee value as a float64 for display purposes.
// Use Cents for calculations.
func (m Money) Rupees() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns m+o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m-o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// ClampZero floors a signed amount at zero.
func (m Money) ClampZero() Money {
	if m.Cents < 0 {
		return Money{}
	}
	return m
}

// String formats the amount as rupees with two decimals, e.g. "1234.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
