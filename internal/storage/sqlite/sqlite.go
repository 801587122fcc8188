// Package sqlite provides the durable, file-backed implementation of
// storage.Store using the pure Go SQLite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"splitter/internal/core"
	"splitter/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the database at dbPath and runs the
// embedded migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RegisterToken inserts the token unless the exact value already exists.
// Uniqueness is enforced by the primary key, so concurrent registrations
// of the same value cannot produce duplicates.
func (s *Store) RegisterToken(ctx context.Context, token core.Token) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO tokens (token) VALUES (?)", string(token))
	if err != nil {
		return false, fmt.Errorf("insert token: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	created := n > 0

	if created {
		slog.InfoContext(ctx, "Token registered", "token", string(token))
	}
	return created, nil
}

func (s *Store) ListTokens(ctx context.Context) ([]core.Token, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT token FROM tokens ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []core.Token
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, core.Token(t))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return tokens, nil
}

// AddExpense persists the expense and fills in the assigned id. The
// insert is a single statement, so a failure leaves no partial state.
func (s *Store) AddExpense(ctx context.Context, e *core.Expense) error {
	participants, err := json.Marshal(participantsOrEmpty(e.Participants))
	if err != nil {
		return fmt.Errorf("marshal participants: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO expenses (description, amount, added_by, participants) VALUES (?, ?, ?, ?)",
		e.Description, e.Amount, e.AddedBy, string(participants))
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"description", e.Description,
		"amount", e.Amount,
		"added_by", e.AddedBy,
		"participants", len(e.Participants))

	return nil
}

func (s *Store) GetExpense(ctx context.Context, id int64) (*core.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, description, amount, added_by, participants FROM expenses WHERE id = ?",
		id)

	e, err := scanExpense(row.Scan)
	if err == sql.ErrNoRows {
		return nil, core.ErrExpenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.queryExpenses(ctx,
		"SELECT id, description, amount, added_by, participants FROM expenses ORDER BY id")
}

func (s *Store) PendingExport(ctx context.Context, limit int) ([]core.Expense, error) {
	return s.queryExpenses(ctx,
		"SELECT id, description, amount, added_by, participants FROM expenses WHERE exported = 0 ORDER BY id LIMIT ?",
		limit)
}

func (s *Store) MarkExported(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET exported = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrExpenseNotFound
	}
	return nil
}

func (s *Store) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func scanExpense(scan func(dest ...any) error) (*core.Expense, error) {
	var e core.Expense
	var participants string
	if err := scan(&e.ID, &e.Description, &e.Amount, &e.AddedBy, &participants); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(participants), &e.Participants); err != nil {
		return nil, fmt.Errorf("unmarshal participants: %w", err)
	}
	return &e, nil
}

// participantsOrEmpty keeps the stored column a JSON array even when the
// request carried no participants.
func participantsOrEmpty(p []string) []string {
	if p == nil {
		return []string{}
	}
	return p
}
