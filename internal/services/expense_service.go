// Package services orchestrates the add-expense flow: persist, compute
// the share, notify every registered token, and optionally publish an
// expense-created event for the export worker.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"splitter/internal/core"
	"splitter/internal/metrics"
	"splitter/internal/push"
	"splitter/internal/storage"
)

// Dispatcher sends one batched push to the gateway.
type Dispatcher interface {
	Dispatch(ctx context.Context, tokens []core.Token, title, body string) (push.Receipt, error)
}

// EventPublisher feeds the optional expense-created event stream.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, id int64) error
}

type ExpenseService struct {
	store      storage.Store
	dispatcher Dispatcher
	events     EventPublisher // nil when AMQP is not configured
	pushTitle  string
}

func NewExpenseService(store storage.Store, dispatcher Dispatcher, events EventPublisher, pushTitle string) *ExpenseService {
	if pushTitle == "" {
		pushTitle = push.DefaultTitle
	}
	return &ExpenseService{
		store:      store,
		dispatcher: dispatcher,
		events:     events,
		pushTitle:  pushTitle,
	}
}

// AddExpense persists the expense and fans a notification out to all
// registered tokens, not just the listed participants. The returned
// pushResponse is the gateway payload verbatim, the no-recipients
// sentinel, or an embedded error object when dispatch failed; a
// dispatch failure never rolls back the persisted expense. A non-nil
// error means the expense was not persisted.
func (s *ExpenseService) AddExpense(ctx context.Context, description string, amount float64, addedBy string, participants []string) (*core.Expense, json.RawMessage, error) {
	expense := &core.Expense{
		Description:  description,
		Amount:       amount,
		AddedBy:      addedBy,
		Participants: participants,
	}

	if err := s.store.AddExpense(ctx, expense); err != nil {
		return nil, nil, fmt.Errorf("save expense: %w", err)
	}
	metrics.ExpensesCreated.Inc()

	// Event publishing is best effort; the expense is already saved.
	if s.events != nil {
		if err := s.events.PublishExpenseCreated(ctx, expense.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish expense-created event",
				"id", expense.ID, "error", err)
		}
	}

	return expense, s.notify(ctx, expense), nil
}

// notify reads the full token registry and dispatches the notification.
// Failures are reported inside the returned payload, never as an error.
func (s *ExpenseService) notify(ctx context.Context, expense *core.Expense) json.RawMessage {
	tokens, err := s.store.ListTokens(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list tokens for dispatch",
			"id", expense.ID, "error", err)
		metrics.PushDispatches.WithLabelValues("failed").Inc()
		return errorPayload(err)
	}

	receipt, err := s.dispatcher.Dispatch(ctx, tokens, s.pushTitle, expense.NotificationMessage())
	if err != nil {
		slog.ErrorContext(ctx, "Push dispatch failed",
			"id", expense.ID, "recipients", len(tokens), "error", err)
		metrics.PushDispatches.WithLabelValues("failed").Inc()
		return errorPayload(err)
	}

	if receipt.NoRecipients {
		metrics.PushDispatches.WithLabelValues("skipped").Inc()
	} else {
		metrics.PushDispatches.WithLabelValues("delivered").Inc()
	}
	return receipt.Body
}

func errorPayload(err error) json.RawMessage {
	payload, merr := json.Marshal(map[string]string{
		"status":  "error",
		"message": err.Error(),
	})
	if merr != nil {
		return json.RawMessage(`{"status":"error"}`)
	}
	return payload
}
