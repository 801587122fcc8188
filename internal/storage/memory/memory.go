// Package memory provides a mutex-guarded in-memory storage.Store,
// used by tests and the "memory" backend for local development.
package memory

import (
	"context"
	"sync"

	"splitter/internal/core"
	"splitter/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	tokens   []core.Token
	seen     map[core.Token]struct{}
	expenses []core.Expense
	exported map[int64]bool
	nextID   int64
}

func New() *Store {
	return &Store{
		seen:     make(map[core.Token]struct{}),
		exported: make(map[int64]bool),
		nextID:   1,
	}
}

func (s *Store) RegisterToken(_ context.Context, token core.Token) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[token]; ok {
		return false, nil
	}
	s.seen[token] = struct{}{}
	s.tokens = append(s.tokens, token)
	return true, nil
}

func (s *Store) ListTokens(_ context.Context) ([]core.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Token(nil), s.tokens...), nil
}

func (s *Store) AddExpense(_ context.Context, e *core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	if e.Participants == nil {
		e.Participants = []string{}
	}
	s.expenses = append(s.expenses, *e)
	return nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (*core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			out := e
			return &out, nil
		}
	}
	return nil, core.ErrExpenseNotFound
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...), nil
}

func (s *Store) PendingExport(_ context.Context, limit int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if len(out) >= limit {
			break
		}
		if !s.exported[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) MarkExported(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			s.exported[id] = true
			return nil
		}
	}
	return core.ErrExpenseNotFound
}

func (s *Store) Close() error { return nil }
