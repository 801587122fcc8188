// Package worker mirrors persisted expenses into a spreadsheet. It is
// driven by expense-created events, with a periodic scan re-driving
// rows the consumer missed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"splitter/internal/amqp"
	"splitter/internal/core"
	"splitter/internal/sheets"
	"splitter/internal/storage"
)

type ExportWorker struct {
	store     storage.Store
	appender  sheets.ExpenseAppender
	batchSize int
}

func NewExportWorker(store storage.Store, appender sheets.ExpenseAppender, batchSize int) *ExportWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &ExportWorker{
		store:     store,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleExpenseCreated exports the expense named by an event. A missing
// expense is dropped rather than requeued forever.
func (w *ExportWorker) HandleExpenseCreated(msg *amqp.ExpenseCreatedMessage) error {
	ctx := context.Background()

	expense, err := w.store.GetExpense(ctx, msg.ID)
	if errors.Is(err, core.ErrExpenseNotFound) {
		slog.Warn("Expense-created event for unknown expense", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load expense %d: %w", msg.ID, err)
	}

	return w.export(ctx, *expense)
}

// ProcessPending exports up to one batch of rows the event consumer
// missed, oldest first.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.PendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))
	for _, e := range pending {
		if err := w.export(ctx, e); err != nil {
			// Keep the row pending; the next scan retries it.
			slog.ErrorContext(ctx, "Export failed", "id", e.ID, "error", err)
		}
	}
	return nil
}

func (w *ExportWorker) export(ctx context.Context, e core.Expense) error {
	if err := w.appender.Append(ctx, e); err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}
	if err := w.store.MarkExported(ctx, e.ID); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	slog.InfoContext(ctx, "Expense exported", "id", e.ID, "description", e.Description)
	return nil
}
