// Package service orchestrates the expense core (ledger, calculator,
// settlement) against storage, and owns the permission rules callers see.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/aroray/settleup/internal/calculator"
	"github.com/aroray/settleup/internal/ledger"
	"github.com/aroray/settleup/internal/models"
	"github.com/aroray/settleup/internal/settlement"
	"github.com/aroray/settleup/internal/storage"
)

var (
	// ErrPermissionDenied is returned when the caller may not act on the
	// target record.
	ErrPermissionDenied = errors.New("permission denied")
)

// ExpenseService implements the expense and settlement operations.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates an ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// ExpenseInput carries the fields of a create or full-replace edit.
type ExpenseInput struct {
	GroupID      string
	EventID      string
	Description  string
	Total        decimal.Decimal
	Participants []models.Participant
}

// isParticipant checks if the member holds any row on the expense.
func isParticipant(memberID string, participants []models.Participant) bool {
	for _, p := range participants {
		if p.MemberID == memberID {
			return true
		}
	}
	return false
}

// autoAddParticipantsToGroup records group membership for everyone on the
// expense, so balance and transfer views see them without a separate invite
// round trip. Failures are logged, not surfaced: membership rows are a
// convenience here, the group itself is owned by the wider app.
func (s *ExpenseService) autoAddParticipantsToGroup(ctx context.Context, e *models.Expense) {
	seen := make(map[string]bool, len(e.Participants))
	var ids []string
	for _, p := range e.Participants {
		if !seen[p.MemberID] {
			seen[p.MemberID] = true
			ids = append(ids, p.MemberID)
		}
	}
	if err := s.store.AddGroupMembers(ctx, e.GroupID, ids); err != nil {
		slog.Error("failed to auto-add participants to group",
			"group_id", e.GroupID, "expense_id", e.ID, "error", err)
	}
}

// Create validates and persists a new expense. The caller must hold a row on
// it; the expense records the caller as creator.
func (s *ExpenseService) Create(ctx context.Context, callerID string, in ExpenseInput) (*models.Expense, error) {
	if !isParticipant(callerID, in.Participants) {
		return nil, fmt.Errorf("%w: you must be a participant to create this expense", ErrPermissionDenied)
	}

	e, err := ledger.NewExpense(in.GroupID, in.EventID, in.Description, callerID, in.Total, in.Participants)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		slog.Error("create expense failed", "group_id", in.GroupID, "error", err)
		return nil, err
	}

	s.autoAddParticipantsToGroup(ctx, e)
	return e, nil
}

// Get retrieves an expense; the caller must belong to its group.
func (s *ExpenseService) Get(ctx context.Context, callerID, expenseID string) (*models.Expense, error) {
	e, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.requireGroupMember(ctx, e.GroupID, callerID); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the expense's description, total and whole participant set.
// The caller must hold a row on the existing expense.
func (s *ExpenseService) Update(ctx context.Context, callerID, expenseID string, in ExpenseInput) (*models.Expense, error) {
	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(callerID, existing.Participants) {
		return nil, fmt.Errorf("%w: you must be a participant to update this expense", ErrPermissionDenied)
	}

	e, err := ledger.Replace(existing, in.Description, in.Total, in.Participants)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		slog.Error("update expense failed", "expense_id", expenseID, "error", err)
		return nil, err
	}

	s.autoAddParticipantsToGroup(ctx, e)
	return e, nil
}

// Delete removes the expense and all its participants. Creator-only.
func (s *ExpenseService) Delete(ctx context.Context, callerID, expenseID string) error {
	e, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if e.CreatedBy != callerID {
		return fmt.Errorf("%w: only the creator may delete an expense", ErrPermissionDenied)
	}
	return s.store.DeleteExpense(ctx, expenseID)
}

// SetPaymentStatus advances one participant row's payment status. The caller
// must hold a row on the expense. The change is applied to the in-memory
// snapshot first and rolled back if the write is rejected; re-applying the
// current status is an idempotent no-op.
func (s *ExpenseService) SetPaymentStatus(ctx context.Context, callerID, expenseID, memberID string, role models.Role, status models.PaymentStatus) (*models.Expense, error) {
	e, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(callerID, e.Participants) {
		return nil, fmt.Errorf("%w: you must be a participant to update payment status", ErrPermissionDenied)
	}

	next, err := settlement.Apply(*e,
		func(snapshot models.Expense) (models.Expense, error) {
			return settlement.Advance(snapshot, memberID, role, status)
		},
		func(applied models.Expense) error {
			return s.store.UpdateParticipantStatus(ctx, expenseID, memberID, role, status)
		},
	)
	if err != nil {
		slog.Warn("payment status update rejected",
			"expense_id", expenseID, "member_id", memberID, "status", status, "error", err)
		return nil, err
	}
	return &next, nil
}

// ListByGroup returns a group's expenses, optionally scoped to one event and
// optionally filtered to unsettled ones.
func (s *ExpenseService) ListByGroup(ctx context.Context, callerID, groupID, eventID string, activeOnly bool) ([]models.Expense, error) {
	if err := s.requireGroupMember(ctx, groupID, callerID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID, eventID)
	if err != nil {
		slog.Error("list expenses failed", "group_id", groupID, "error", err)
		return nil, err
	}
	if !activeOnly {
		return expenses, nil
	}

	active := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if !settlement.IsFullySettled(e) {
			active = append(active, e)
		}
	}
	return active, nil
}

// Balance aggregates the caller's position across the group's expenses.
func (s *ExpenseService) Balance(ctx context.Context, callerID, groupID string) (calculator.Balance, error) {
	if err := s.requireGroupMember(ctx, groupID, callerID); err != nil {
		return calculator.Balance{}, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID, "")
	if err != nil {
		return calculator.Balance{}, err
	}
	return calculator.ForUser(expenses, callerID), nil
}

// Transfers computes the group's simplified settle-up plan.
func (s *ExpenseService) Transfers(ctx context.Context, callerID, groupID string) ([]models.Transfer, error) {
	if err := s.requireGroupMember(ctx, groupID, callerID); err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID, "")
	if err != nil {
		return nil, err
	}
	return calculator.Simplify(calculator.Obligations(expenses)), nil
}

func (s *ExpenseService) requireGroupMember(ctx context.Context, groupID, memberID string) error {
	ok, err := s.store.IsGroupMember(ctx, groupID, memberID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: you must be a member of this group", ErrPermissionDenied)
	}
	return nil
}
