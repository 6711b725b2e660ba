// Package sqlite provides a SQLite-backed implementation of the storage.Store
// interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/aroray/settleup/internal/models"
	"github.com/aroray/settleup/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite. Monetary amounts are
// stored as TEXT in canonical decimal form so no precision is lost in REAL
// columns.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path. It creates the
// parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateExpense persists a new expense and its participant set in one
// transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if e.CreatedAt == 0 {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses (id, group_id, event_id, description, total, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.GroupID, e.EventID, e.Description, e.Total.String(), e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its participants in
// creation order.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	e := &models.Expense{}
	var total string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, event_id, description, total, created_by, created_at, updated_at FROM expenses WHERE id = ?",
		expenseID,
	).Scan(&e.ID, &e.GroupID, &e.EventID, &e.Description, &total, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if e.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("corrupt total for expense %s: %w", expenseID, err)
	}

	if e.Participants, err = s.loadParticipants(ctx, expenseID); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateExpense replaces the expense row and its whole participant set.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, e *models.Expense) error {
	e.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE expenses SET description = ?, total = ?, event_id = ?, updated_at = ? WHERE id = ?",
		e.Description, e.Total.String(), e.EventID, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense %s: %w", e.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE expense_id = ?", e.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes the expense; participants cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// ListExpensesByGroup returns a group's expenses, newest first, with their
// participants. A non-empty eventID narrows to one event.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID, eventID string) ([]models.Expense, error) {
	query := "SELECT id, group_id, event_id, description, total, created_by, created_at, updated_at FROM expenses WHERE group_id = ?"
	args := []any{groupID}
	if eventID != "" {
		query += " AND event_id = ?"
		args = append(args, eventID)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var total string
		if err := rows.Scan(&e.ID, &e.GroupID, &e.EventID, &e.Description, &total, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if e.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("corrupt total for expense %s: %w", e.ID, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		if expenses[i].Participants, err = s.loadParticipants(ctx, expenses[i].ID); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// UpdateParticipantStatus writes one row's payment status.
func (s *SQLiteStore) UpdateParticipantStatus(ctx context.Context, expenseID, memberID string, role models.Role, status models.PaymentStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET status = ? WHERE expense_id = ? AND member_id = ? AND role = ?",
		string(status), expenseID, memberID, string(role),
	)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("participant %s/%s on expense %s: %w", memberID, role, expenseID, storage.ErrNotFound)
	}
	return nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, e *models.Expense) error {
	for i, p := range e.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO participants (expense_id, member_id, role, amount, status, position) VALUES (?, ?, ?, ?, ?, ?)",
			e.ID, p.MemberID, string(p.Role), p.Amount.String(), string(p.Status), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant %s/%s: %w", p.MemberID, p.Role, err)
		}
	}
	return nil
}

func (s *SQLiteStore) loadParticipants(ctx context.Context, expenseID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, role, amount, status FROM participants WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		var role, amount, status string
		if err := rows.Scan(&p.MemberID, &role, &amount, &status); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.Role = models.Role(role)
		p.Status = models.PaymentStatus(status)
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for participant %s: %w", p.MemberID, err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}
