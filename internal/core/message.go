// Package core holds the domain types shared by the API server, the
// export worker and the send-push CLI.
//
// This file contains the arithmetic and formatting behind the push
// notification body. Amounts are rendered with Go's shortest round-trip
// float formatting, so whole amounts print without a decimal part.
package core

import (
	"math"
	"strconv"
)

// Round2 rounds to two decimal places, ties to even.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// FormatAmount renders a monetary value the way it appears in
// notification messages: "90", "33.33".
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NotificationMessage builds the push body announcing a new expense:
//
//	"Alice added $90 for Dinner. Each owes $30."
func (e Expense) NotificationMessage() string {
	return e.AddedBy + " added $" + FormatAmount(e.Amount) +
		" for " + e.Description +
		". Each owes $" + FormatAmount(e.Share()) + "."
}
