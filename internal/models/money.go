package models

import "math"

// All monetary values move through the system as int64 cents. The JSON edge
// speaks P COIN with two fraction digits, so every inbound amount is rounded
// to a whole number of cents before it touches the ledger.

// MaxBalance is the hard cap on any wallet or bank balance: 99,999,999.99 coins.
const MaxBalance int64 = 9_999_999_999

// ToCents converts a coin amount (e.g. 10.50) to cents.
func ToCents(coins float64) int64 {
	return int64(math.Round(coins * 100))
}

// FromCents converts cents back to a coin amount for responses.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
