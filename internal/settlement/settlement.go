// Package settlement tracks per-participant payment progress and decides when
// an expense counts as settled.
package settlement

import (
	"errors"
	"fmt"

	"github.com/aroray/settleup/internal/models"
)

var (
	ErrBackwardTransition = errors.New("payment status cannot move backward")
	ErrNoSuchRow          = errors.New("no participant row for member and role")
	ErrUnknownStatus      = errors.New("unknown payment status")
)

// statusRank orders the state machine: pending -> sent -> completed. There is
// no defined backward transition.
var statusRank = map[models.PaymentStatus]int{
	models.StatusPending:   0,
	models.StatusSent:      1,
	models.StatusCompleted: 2,
}

// CanTransition reports whether moving a row from one status to another is
// allowed. Re-applying the current status is permitted so status updates stay
// idempotent under retries.
func CanTransition(from, to models.PaymentStatus) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank >= fromRank
}

// Advance returns the expense with the given member's row in the given role
// set to the new status, or an error for backward or unknown transitions.
// The input expense is not mutated.
func Advance(e models.Expense, memberID string, role models.Role, to models.PaymentStatus) (models.Expense, error) {
	if !to.Valid() {
		return e, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	for i, p := range e.Participants {
		if p.MemberID != memberID || p.Role != role {
			continue
		}
		if !CanTransition(p.Status, to) {
			return e, fmt.Errorf("%w: %s -> %s", ErrBackwardTransition, p.Status, to)
		}
		next := e
		next.Participants = append([]models.Participant(nil), e.Participants...)
		next.Participants[i].Status = to
		return next, nil
	}
	return e, fmt.Errorf("%w: %s/%s", ErrNoSuchRow, memberID, role)
}

// IsFullySettled reports whether the expense is resolved: every ower row is
// completed, or every payer row is completed.
//
// The OR is intentional and asymmetric: either side can unilaterally close
// the expense without the other's rows moving. Downstream "active expenses"
// views depend on exactly this behavior; do not tighten it to AND without
// product review.
func IsFullySettled(e models.Expense) bool {
	return allCompleted(e, models.RoleOwer) || allCompleted(e, models.RolePayer)
}

func allCompleted(e models.Expense, role models.Role) bool {
	rows := e.Rows(role)
	if len(rows) == 0 {
		return false
	}
	for _, p := range rows {
		if p.Status != models.StatusCompleted {
			return false
		}
	}
	return true
}
