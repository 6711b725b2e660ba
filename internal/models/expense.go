package models

import "github.com/shopspring/decimal"

// Role distinguishes the two sides of an expense.
type Role string

const (
	// RolePayer marks a member who contributed money toward the expense.
	RolePayer Role = "payer"

	// RoleOwer marks a member who owes a share of the expense.
	RoleOwer Role = "ower"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePayer || r == RoleOwer
}

// PaymentStatus is the settlement state of one participant row.
type PaymentStatus string

const (
	// StatusPending means the ower has not acted on their share yet.
	StatusPending PaymentStatus = "pending"

	// StatusSent means the ower reports the money as on its way.
	StatusSent PaymentStatus = "sent"

	// StatusCompleted means the share is settled. Payer rows start here:
	// a payer's money was already given at entry.
	StatusCompleted PaymentStatus = "completed"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	return s == StatusPending || s == StatusSent || s == StatusCompleted
}

// Participant is one member's row on an expense.
type Participant struct {
	// MemberID references the member (owned by the wider app).
	MemberID string `json:"member_id"`

	// Role is payer or ower. A member may appear once per role on the
	// same expense, so one member can hold both a payer and an ower row.
	Role Role `json:"role"`

	// Amount is this row's share of the expense total.
	Amount decimal.Decimal `json:"amount"`

	// Status is the payment status of this row. Mutated independently
	// of the rest of the expense after creation.
	Status PaymentStatus `json:"status"`
}

// Expense is a shared cost, created atomically with its full participant set.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID string `json:"group_id"`

	// EventID optionally scopes the expense to one event in the group.
	EventID string `json:"event_id,omitempty"`

	// Description is the human-readable label for the expense.
	Description string `json:"description"`

	// Total is the full expense amount. Always positive.
	Total decimal.Decimal `json:"total"`

	// CreatedBy is the member who created the expense. Only the creator
	// may delete it.
	CreatedBy string `json:"created_by"`

	// CreatedAt and UpdatedAt are Unix timestamps assigned by the store.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`

	// Participants is the ordered participant set. Replaced as a whole
	// on edit, never patched row by row.
	Participants []Participant `json:"participants"`
}

// Rows returns the participant rows holding the given role, in order.
func (e *Expense) Rows(role Role) []Participant {
	var rows []Participant
	for _, p := range e.Participants {
		if p.Role == role {
			rows = append(rows, p)
		}
	}
	return rows
}

// RoleSum returns the sum of shares over all rows of the given role.
func (e *Expense) RoleSum(role Role) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range e.Participants {
		if p.Role == role {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}
