// Package core provides the domain model of the ledger.
//
// This file contains the Money type. Amounts are held as integer cents so
// that storage can sum them exactly; conversion to and from the API's
// floating point representation goes through decimal rounding.
package core

import (
	"math"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// MoneyFromFloat converts an API amount to cents, rounding half away from
// zero on the third decimal place.
//
// Examples:
//
//	MoneyFromFloat(12.34)  -> 1234
//	MoneyFromFloat(12.345) -> 1235
//	MoneyFromFloat(-0.5)   -> -50
func MoneyFromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, invalid("amount", "must be a finite number")
	}
	d := decimal.NewFromFloat(f).Round(2).Shift(2)
	if !d.IsInteger() || d.Abs().GreaterThan(decimal.NewFromInt(math.MaxInt64/100)) {
		return Money{}, invalid("amount", "out of range")
	}
	return Money{Cents: d.IntPart()}, nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float64 returns the amount for serialization. Use Cents for arithmetic.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

// String formats the amount with two decimals, e.g. "-12.30".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
