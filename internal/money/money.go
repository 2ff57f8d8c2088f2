// Package money keeps invoice arithmetic in decimal so that sums of rupee
// amounts stored as float64 do not drift.
package money

import "github.com/shopspring/decimal"

// Round2 rounds an amount to paise.
func Round2(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// Sum adds amounts and rounds the result to paise.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}

// Sub returns from minus every amount in amounts, rounded to paise.
func Sub(from float64, amounts ...float64) float64 {
	result := decimal.NewFromFloat(from)
	for _, a := range amounts {
		result = result.Sub(decimal.NewFromFloat(a))
	}
	return result.Round(2).InexactFloat64()
}

// Mul returns a × b rounded to paise.
func Mul(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// Percent returns rate percent of amount, rounded to paise.
func Percent(amount, rate float64) float64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Div(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// IsZero reports whether amount rounds to zero paise.
func IsZero(amount float64) bool {
	return decimal.NewFromFloat(amount).Round(2).IsZero()
}
