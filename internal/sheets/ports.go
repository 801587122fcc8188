// Package sheets defines the outbound port used by the export worker.
package sheets

import (
	"context"

	"splitter/internal/core"
)

// ExpenseAppender mirrors a persisted expense into an external
// spreadsheet.
type ExpenseAppender interface {
	Append(ctx context.Context, e core.Expense) error
}
