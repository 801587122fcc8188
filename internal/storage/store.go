// Package storage defines the repository abstraction over the token
// registry and the expense ledger.
package storage

import (
	"context"

	"splitter/internal/core"
)

// Store is the single persistence boundary for both entities. Tokens and
// expenses are independent; there is no relationship between them. The
// abstraction keeps the backing technology (embedded SQLite file,
// in-memory substitute) swappable without touching request handling.
type Store interface {
	// RegisterToken records a token unless it already exists.
	// Returns created=false when the exact value is already registered.
	RegisterToken(ctx context.Context, token core.Token) (created bool, err error)

	// ListTokens returns all registered tokens in registration order.
	ListTokens(ctx context.Context) ([]core.Token, error)

	// AddExpense persists the expense in a single transaction and fills
	// in its assigned id. Ids are strictly increasing.
	AddExpense(ctx context.Context, e *core.Expense) error

	// GetExpense returns one expense by id, or core.ErrExpenseNotFound.
	GetExpense(ctx context.Context, id int64) (*core.Expense, error)

	// ListExpenses returns all expenses in creation order.
	ListExpenses(ctx context.Context) ([]core.Expense, error)

	// PendingExport returns up to limit expenses not yet mirrored to the
	// spreadsheet, oldest first.
	PendingExport(ctx context.Context, limit int) ([]core.Expense, error)

	// MarkExported records that the expense row has been mirrored.
	MarkExported(ctx context.Context, id int64) error

	// Close releases any resources held by the store.
	Close() error
}
