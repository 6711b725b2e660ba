// Package ledger validates and assembles expense records. It owns the
// construction rules: a positive total, both roles present, both role sums
// reconciled against the total, and the initial payment-status policy.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aroray/settleup/internal/models"
)

// ErrValidation is the base of every construction failure, so callers can
// classify without enumerating the specific rules.
var ErrValidation = errors.New("invalid expense")

var (
	ErrNonPositiveTotal = fmt.Errorf("%w: total amount must be positive", ErrValidation)
	ErrNoPayer          = fmt.Errorf("%w: at least one payer required", ErrValidation)
	ErrNoOwer           = fmt.Errorf("%w: at least one ower required", ErrValidation)
	ErrUnreconciledSum  = fmt.Errorf("%w: participant shares do not reconcile with the total", ErrValidation)
	ErrDuplicateRow     = fmt.Errorf("%w: member appears more than once in the same role", ErrValidation)
	ErrEmptyDescription = fmt.Errorf("%w: description is required", ErrValidation)
)

// reconcileTolerance is the allowed gap between a role's share sum and the
// expense total, in currency units.
var reconcileTolerance = decimal.New(1, -2) // 0.01

// NewExpense assembles a validated expense from finalized participant rows.
//
// Both role sums must already reconcile against the total, i.e. the split
// allocator's Finalize must have succeeded for each role independently.
// Initial payment status is assigned here: payer rows start completed (the
// money was already given at entry), ower rows start pending.
func NewExpense(groupID, eventID, description, createdBy string, total decimal.Decimal, participants []models.Participant) (*models.Expense, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrValidation)
	}
	if createdBy == "" {
		return nil, fmt.Errorf("%w: creator id is required", ErrValidation)
	}

	e := &models.Expense{
		GroupID:      groupID,
		EventID:      eventID,
		Description:  description,
		Total:        total,
		CreatedBy:    createdBy,
		Participants: append([]models.Participant(nil), participants...),
	}
	if err := validate(e); err != nil {
		return nil, err
	}

	for i := range e.Participants {
		e.Participants[i].Status = initialStatus(e.Participants[i].Role)
	}
	return e, nil
}

// Replace builds the full-replace edit of an existing expense: description,
// total and the whole participant set are swapped out, identity and creator
// are preserved. There is no partial-participant patch at this layer.
func Replace(existing *models.Expense, description string, total decimal.Decimal, participants []models.Participant) (*models.Expense, error) {
	e := &models.Expense{
		ID:           existing.ID,
		GroupID:      existing.GroupID,
		EventID:      existing.EventID,
		Description:  description,
		Total:        total,
		CreatedBy:    existing.CreatedBy,
		CreatedAt:    existing.CreatedAt,
		Participants: append([]models.Participant(nil), participants...),
	}
	if err := validate(e); err != nil {
		return nil, err
	}
	for i := range e.Participants {
		e.Participants[i].Status = initialStatus(e.Participants[i].Role)
	}
	return e, nil
}

// initialStatus encodes the entry asymmetry: payers front funds immediately,
// owers still owe.
func initialStatus(role models.Role) models.PaymentStatus {
	if role == models.RolePayer {
		return models.StatusCompleted
	}
	return models.StatusPending
}

func validate(e *models.Expense) error {
	if e.Description == "" {
		return ErrEmptyDescription
	}
	if !e.Total.IsPositive() {
		return ErrNonPositiveTotal
	}

	seen := map[models.Role]map[string]bool{
		models.RolePayer: {},
		models.RoleOwer:  {},
	}
	for _, p := range e.Participants {
		if !p.Role.Valid() {
			return fmt.Errorf("%w: participant %s has invalid role %q", ErrValidation, p.MemberID, p.Role)
		}
		if seen[p.Role][p.MemberID] {
			return fmt.Errorf("%w: member %s, role %s", ErrDuplicateRow, p.MemberID, p.Role)
		}
		seen[p.Role][p.MemberID] = true
	}
	if len(seen[models.RolePayer]) == 0 {
		return ErrNoPayer
	}
	if len(seen[models.RoleOwer]) == 0 {
		return ErrNoOwer
	}

	for _, role := range []models.Role{models.RolePayer, models.RoleOwer} {
		sum := e.RoleSum(role)
		if sum.Sub(e.Total).Abs().GreaterThan(reconcileTolerance) {
			return fmt.Errorf("%w: %s rows sum to %s, total is %s", ErrUnreconciledSum, role, sum, e.Total)
		}
	}
	return nil
}
