// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/aroray/settleup/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence surface of the expense subsystem. The
// abstraction allows swapping storage backends without changing the service
// layer.
type Store interface {
	// CreateExpense persists a new expense atomically with its full
	// participant set. ID and timestamps are assigned by the store.
	CreateExpense(ctx context.Context, e *models.Expense) error

	// GetExpense retrieves an expense with its participants.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces the expense's fields and its whole
	// participant set. There is no partial-participant patch.
	UpdateExpense(ctx context.Context, e *models.Expense) error

	// DeleteExpense removes the expense and all its participants.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByGroup returns a group's expenses, newest first.
	// A non-empty eventID narrows the list to one event.
	ListExpensesByGroup(ctx context.Context, groupID, eventID string) ([]models.Expense, error)

	// UpdateParticipantStatus writes one participant row's payment
	// status. Idempotent: re-applying the stored status is not an error.
	UpdateParticipantStatus(ctx context.Context, expenseID, memberID string, role models.Role, status models.PaymentStatus) error

	// CreateMember registers a member. ID and CreatedAt are assigned by
	// the store when empty.
	CreateMember(ctx context.Context, m *models.Member) error

	// GetMember resolves a member for labels and credential checks.
	GetMember(ctx context.Context, memberID string) (*models.Member, error)

	// AddGroupMembers records group membership for the given members,
	// ignoring ones already present.
	AddGroupMembers(ctx context.Context, groupID string, memberIDs []string) error

	// IsGroupMember reports whether the member belongs to the group.
	IsGroupMember(ctx context.Context, groupID, memberID string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
