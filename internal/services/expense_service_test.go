package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"splitter/internal/core"
	"splitter/internal/push"
	"splitter/internal/storage/memory"
)

type fakeDispatcher struct {
	tokens []core.Token
	title  string
	body   string
	calls  int
	err    error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, tokens []core.Token, title, body string) (push.Receipt, error) {
	f.calls++
	f.tokens = tokens
	f.title = title
	f.body = body
	if f.err != nil {
		return push.Receipt{}, f.err
	}
	if len(tokens) == 0 {
		return push.Receipt{NoRecipients: true, Body: json.RawMessage(`{"status": "no tokens"}`)}, nil
	}
	return push.Receipt{Body: json.RawMessage(`{"data":[{"status":"ok"}]}`)}, nil
}

type fakeEvents struct {
	ids []int64
	err error
}

func (f *fakeEvents) PublishExpenseCreated(_ context.Context, id int64) error {
	f.ids = append(f.ids, id)
	return f.err
}

func TestAddExpenseNotifiesAllTokens(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	store.RegisterToken(ctx, "tokA")
	store.RegisterToken(ctx, "tokB")

	dispatcher := &fakeDispatcher{}
	svc := NewExpenseService(store, dispatcher, nil, "")

	expense, pushResp, err := svc.AddExpense(ctx, "Dinner", 90, "Alice", []string{"Alice", "Bob", "Carol"})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if expense.ID != 1 {
		t.Errorf("id = %d, want 1", expense.ID)
	}

	// Fan-out addresses every registered token, not the participants.
	if len(dispatcher.tokens) != 2 {
		t.Errorf("dispatched to %v, want both registered tokens", dispatcher.tokens)
	}
	if dispatcher.title != push.DefaultTitle {
		t.Errorf("title = %q", dispatcher.title)
	}
	if dispatcher.body != "Alice added $90 for Dinner. Each owes $30." {
		t.Errorf("body = %q", dispatcher.body)
	}
	if string(pushResp) != `{"data":[{"status":"ok"}]}` {
		t.Errorf("push response = %s, want gateway payload verbatim", pushResp)
	}
}

func TestAddExpenseNoTokens(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc := NewExpenseService(memory.New(), dispatcher, nil, "")

	_, pushResp, err := svc.AddExpense(context.Background(), "Solo", 10, "Eve", nil)
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if string(pushResp) != `{"status": "no tokens"}` {
		t.Errorf("push response = %s, want no-recipients sentinel", pushResp)
	}
}

func TestAddExpenseDispatchFailureKeepsExpense(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	store.RegisterToken(ctx, "tokA")

	dispatcher := &fakeDispatcher{err: errors.New("gateway unreachable")}
	svc := NewExpenseService(store, dispatcher, nil, "")

	expense, pushResp, err := svc.AddExpense(ctx, "Dinner", 90, "Alice", nil)
	if err != nil {
		t.Fatalf("dispatch failure must not fail the operation: %v", err)
	}
	if !strings.Contains(string(pushResp), `"status":"error"`) {
		t.Errorf("push response = %s, want embedded error indicator", pushResp)
	}

	// The expense stays persisted.
	got, err := store.GetExpense(ctx, expense.ID)
	if err != nil {
		t.Fatalf("expense missing after dispatch failure: %v", err)
	}
	if got.Description != "Dinner" {
		t.Errorf("stored description = %q", got.Description)
	}
}

func TestAddExpensePersistenceFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc := NewExpenseService(failingStore{}, dispatcher, nil, "")

	_, _, err := svc.AddExpense(context.Background(), "Dinner", 90, "Alice", nil)
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if dispatcher.calls != 0 {
		t.Error("no dispatch must happen when persistence fails")
	}
}

func TestAddExpensePublishesEvent(t *testing.T) {
	events := &fakeEvents{}
	svc := NewExpenseService(memory.New(), &fakeDispatcher{}, events, "")

	expense, _, err := svc.AddExpense(context.Background(), "Dinner", 90, "Alice", nil)
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if len(events.ids) != 1 || events.ids[0] != expense.ID {
		t.Errorf("published ids = %v, want [%d]", events.ids, expense.ID)
	}
}

func TestAddExpenseEventFailureIsNonFatal(t *testing.T) {
	events := &fakeEvents{err: errors.New("broker down")}
	svc := NewExpenseService(memory.New(), &fakeDispatcher{}, events, "")

	if _, _, err := svc.AddExpense(context.Background(), "Dinner", 90, "Alice", nil); err != nil {
		t.Fatalf("event failure must not fail the operation: %v", err)
	}
}

// failingStore simulates a store whose writes are rejected.
type failingStore struct{}

func (failingStore) RegisterToken(context.Context, core.Token) (bool, error) {
	return false, errors.New("store unreachable")
}
func (failingStore) ListTokens(context.Context) ([]core.Token, error) {
	return nil, errors.New("store unreachable")
}
func (failingStore) AddExpense(context.Context, *core.Expense) error {
	return errors.New("store unreachable")
}
func (failingStore) GetExpense(context.Context, int64) (*core.Expense, error) {
	return nil, errors.New("store unreachable")
}
func (failingStore) ListExpenses(context.Context) ([]core.Expense, error) {
	return nil, errors.New("store unreachable")
}
func (failingStore) PendingExport(context.Context, int) ([]core.Expense, error) {
	return nil, errors.New("store unreachable")
}
func (failingStore) MarkExported(context.Context, int64) error {
	return errors.New("store unreachable")
}
func (failingStore) Close() error { return nil }
