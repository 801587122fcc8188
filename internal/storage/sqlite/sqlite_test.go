package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"splitter/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRegisterTokenDeduplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.RegisterToken(ctx, "tokA")
	if err != nil {
		t.Fatalf("RegisterToken failed: %v", err)
	}
	if !created {
		t.Error("first registration should report created")
	}

	created, err = store.RegisterToken(ctx, "tokA")
	if err != nil {
		t.Fatalf("RegisterToken failed: %v", err)
	}
	if created {
		t.Error("second registration should report already exists")
	}

	tokens, err := store.ListTokens(ctx)
	if err != nil {
		t.Fatalf("ListTokens failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "tokA" {
		t.Errorf("tokens = %v, want exactly one copy of tokA", tokens)
	}
}

func TestListTokensPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, tok := range []core.Token{"c", "a", "b"} {
		if _, err := store.RegisterToken(ctx, tok); err != nil {
			t.Fatalf("RegisterToken(%s) failed: %v", tok, err)
		}
	}

	tokens, err := store.ListTokens(ctx)
	if err != nil {
		t.Fatalf("ListTokens failed: %v", err)
	}
	want := []core.Token{"c", "a", "b"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("tokens = %v, want registration order %v", tokens, want)
	}
}

func TestAddExpenseAssignsIncreasingIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &core.Expense{Description: "Dinner", Amount: 90, AddedBy: "Alice", Participants: []string{"Alice", "Bob"}}
	if err := store.AddExpense(ctx, first); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if first.ID != 1 {
		t.Errorf("first id = %d, want 1", first.ID)
	}

	second := &core.Expense{Description: "Taxi", Amount: 20, AddedBy: "Bob"}
	if err := store.AddExpense(ctx, second); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("second id = %d, want > %d", second.ID, first.ID)
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	e := &core.Expense{
		Description:  "Groceries",
		Amount:       42.5,
		AddedBy:      "Carol",
		Participants: []string{"Carol", "Dave"},
	}
	if err := store.AddExpense(ctx, e); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	got, err := store.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if !reflect.DeepEqual(got, e) {
		t.Errorf("got %+v, want %+v", got, e)
	}

	all, err := store.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(all) != 1 || !reflect.DeepEqual(&all[0], e) {
		t.Errorf("list = %+v, want the stored expense", all)
	}
}

func TestExpenseEmptyParticipants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	e := &core.Expense{Description: "Solo", Amount: 10, AddedBy: "Eve"}
	if err := store.AddExpense(ctx, e); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	got, err := store.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Participants == nil || len(got.Participants) != 0 {
		t.Errorf("participants = %#v, want empty non-nil slice", got.Participants)
	}
}

func TestGetExpenseNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetExpense(context.Background(), 99)
	if err != core.ErrExpenseNotFound {
		t.Errorf("err = %v, want core.ErrExpenseNotFound", err)
	}
}

func TestPendingExportLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, desc := range []string{"one", "two", "three"} {
		e := &core.Expense{Description: desc, Amount: 1, AddedBy: "x"}
		if err := store.AddExpense(ctx, e); err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
	}

	pending, err := store.PendingExport(ctx, 2)
	if err != nil {
		t.Fatalf("PendingExport failed: %v", err)
	}
	if len(pending) != 2 || pending[0].Description != "one" {
		t.Fatalf("pending = %+v, want oldest two", pending)
	}

	if err := store.MarkExported(ctx, pending[0].ID); err != nil {
		t.Fatalf("MarkExported failed: %v", err)
	}

	pending, err = store.PendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExport failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending after mark = %d rows, want 2", len(pending))
	}

	if err := store.MarkExported(ctx, 404); err != core.ErrExpenseNotFound {
		t.Errorf("MarkExported(404) = %v, want core.ErrExpenseNotFound", err)
	}
}
