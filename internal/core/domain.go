package core

import "errors"

type (
	// Token is an opaque push-delivery address registered by a client.
	// Tokens are unique within the registry and never mutated or deleted.
	Token string

	// Expense is a single submitted expense. Immutable once persisted.
	// Participants is free text and is not validated against any user table.
	Expense struct {
		ID           int64    `json:"id"`
		Description  string   `json:"description"`
		Amount       float64  `json:"amount"`
		AddedBy      string   `json:"added_by"`
		Participants []string `json:"participants"`
	}
)

var (
	ErrEmptyToken      = errors.New("empty token")
	ErrExpenseNotFound = errors.New("expense not found")
)

// Share returns the per-participant amount, rounded to two decimal places
// with half-to-even rounding. With no participants the full amount is owed.
func (e Expense) Share() float64 {
	if len(e.Participants) == 0 {
		return e.Amount
	}
	return Round2(e.Amount / float64(len(e.Participants)))
}
