// Package split implements the interactive percentage allocator used when
// entering an expense: each selected member holds a share of 100%, individual
// shares can be locked, and edits redistribute the remainder across the
// unlocked members.
//
// State is an immutable value. Every transition returns a new State, so the
// allocator can back a UI editor without hidden mutation and is trivially
// safe to call from multiple goroutines over the same snapshot.
package split

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/aroray/settleup/internal/models"
)

var (
	ErrNothingSelected  = errors.New("no members selected")
	ErrNonPositiveTotal = errors.New("total amount must be positive")
	ErrInvalidRole      = errors.New("invalid participant role")
)

// sumTolerance is how far the percentage sum may drift from 100 before
// Finalize refuses to commit and asks for confirmation instead.
const sumTolerance = 0.1

// State holds one role's percentage allocation: the selected member set, a
// percentage per member, and the subset of members whose share is locked.
type State struct {
	order    []string
	percents map[string]float64
	locked   map[string]bool
}

// NewState returns an empty allocation.
func NewState() State {
	return State{
		percents: map[string]float64{},
		locked:   map[string]bool{},
	}
}

// Share is one member's slice of an allocation, used to move State across a
// transport boundary.
type Share struct {
	MemberID string  `json:"member_id"`
	Percent  float64 `json:"percent"`
	Locked   bool    `json:"locked"`
}

// Restore rebuilds a State from transported shares, preserving their order.
// A duplicated member ID keeps its last share.
func Restore(shares []Share) State {
	s := NewState()
	for _, sh := range shares {
		if s.selectedIndex(sh.MemberID) < 0 {
			s.order = append(s.order, sh.MemberID)
		}
		s.percents[sh.MemberID] = sh.Percent
		s.locked[sh.MemberID] = sh.Locked
	}
	return s
}

// Shares exports the allocation in selection order.
func (s State) Shares() []Share {
	out := make([]Share, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Share{MemberID: id, Percent: s.percents[id], Locked: s.locked[id]})
	}
	return out
}

// clone copies the state so transitions never alias the receiver's maps.
func (s State) clone() State {
	next := State{
		order:    make([]string, len(s.order)),
		percents: make(map[string]float64, len(s.percents)),
		locked:   make(map[string]bool, len(s.locked)),
	}
	copy(next.order, s.order)
	for id, p := range s.percents {
		next.percents[id] = p
	}
	for id, l := range s.locked {
		next.locked[id] = l
	}
	return next
}

// Selected returns the selected member IDs in selection order.
func (s State) Selected() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Percentage returns the member's current share, or 0 if not selected.
func (s State) Percentage(memberID string) float64 {
	return s.percents[memberID]
}

// Locked reports whether the member's share is locked.
func (s State) Locked(memberID string) bool {
	return s.locked[memberID]
}

// Sum returns the percentage sum over all selected members.
func (s State) Sum() float64 {
	var sum float64
	for _, id := range s.order {
		sum += s.percents[id]
	}
	return sum
}

func (s State) selectedIndex(memberID string) int {
	for i, id := range s.order {
		if id == memberID {
			return i
		}
	}
	return -1
}

// Select toggles a member in or out of the allocation.
//
// Adding a member resets every selected member to an equal share of 100,
// locked or not: locks constrain SetPercentage, not membership changes.
// Removing a member deletes only that member's percentage and lock; the
// remaining shares are left as they are, so the sum may transiently be
// under 100 until the next SetPercentage.
func (s State) Select(memberID string) State {
	next := s.clone()
	if i := next.selectedIndex(memberID); i >= 0 {
		next.order = append(next.order[:i], next.order[i+1:]...)
		delete(next.percents, memberID)
		delete(next.locked, memberID)
		return next
	}

	next.order = append(next.order, memberID)
	equal := 100.0 / float64(len(next.order))
	for _, id := range next.order {
		next.percents[id] = equal
	}
	return next
}

// SetPercentage assigns the member a share and redistributes the remainder.
//
// The value is clamped to [0, 100-lockedSum], where lockedSum is the sum of
// the other locked members' shares. Whatever remains after the locked shares
// and the edited member's share is spread evenly across the members that are
// neither locked nor the edited one. If no such member exists the remainder
// stays unassigned and the sum drops below 100; that is surfaced to the user
// at Finalize rather than silently fixed here.
func (s State) SetPercentage(memberID string, value float64) State {
	if s.selectedIndex(memberID) < 0 {
		return s
	}
	next := s.clone()

	var lockedSum float64
	for id, isLocked := range next.locked {
		if isLocked && id != memberID {
			lockedSum += next.percents[id]
		}
	}

	value = math.Max(0, math.Min(value, 100-lockedSum))
	next.percents[memberID] = value

	var free []string
	for _, id := range next.order {
		if id != memberID && !next.locked[id] {
			free = append(free, id)
		}
	}
	if len(free) == 0 {
		return next
	}

	available := 100 - lockedSum - value
	each := available / float64(len(free))
	for _, id := range free {
		next.percents[id] = each
	}
	return next
}

// ToggleLock flips the member's lock. Locking is refused when the member is
// the only unlocked one: at least one free share must remain to absorb
// redistribution.
func (s State) ToggleLock(memberID string) State {
	if s.selectedIndex(memberID) < 0 {
		return s
	}
	if !s.locked[memberID] {
		unlocked := 0
		for _, id := range s.order {
			if !s.locked[id] {
				unlocked++
			}
		}
		if unlocked <= 1 {
			return s
		}
	}
	next := s.clone()
	next.locked[memberID] = !next.locked[memberID]
	return next
}

// Result is the outcome of Finalize.
//
// When NeedsConfirmation is set, the percentages did not sum to 100 and State
// carries the rescaled allocation; no participants were emitted. The caller
// shows the corrected shares and calls Finalize again on the returned State.
type Result struct {
	NeedsConfirmation bool
	State             State
	Participants      []models.Participant
}

// Finalize converts the allocation into participant rows for one role of an
// expense with the given total.
//
// If the percentage sum deviates from 100 by more than 0.1, every share is
// rescaled by 100/sum and the result is returned for confirmation instead of
// being committed. On success each member's share is total * pct/100 rounded
// to cents, with the rounding residual folded into the largest share so the
// role sum matches the total exactly.
func (s State) Finalize(role models.Role, total decimal.Decimal) (Result, error) {
	if !role.Valid() {
		return Result{}, ErrInvalidRole
	}
	if !total.IsPositive() {
		return Result{}, ErrNonPositiveTotal
	}
	if len(s.order) == 0 {
		return Result{}, ErrNothingSelected
	}

	sum := s.Sum()
	if math.Abs(sum-100) > sumTolerance {
		rescaled := s.clone()
		for id, p := range rescaled.percents {
			rescaled.percents[id] = p * 100 / sum
		}
		return Result{NeedsConfirmation: true, State: rescaled}, nil
	}

	hundred := decimal.NewFromInt(100)
	participants := make([]models.Participant, 0, len(s.order))
	allocated := decimal.Zero
	for _, id := range s.order {
		share := total.
			Mul(decimal.NewFromFloat(s.percents[id])).
			Div(hundred).
			Round(2)
		allocated = allocated.Add(share)
		participants = append(participants, models.Participant{
			MemberID: id,
			Role:     role,
			Amount:   share,
		})
	}

	// Fold the rounding residual into the largest share so the role sum
	// matches the total.
	if residual := total.Sub(allocated); !residual.IsZero() {
		largest := 0
		for i := 1; i < len(participants); i++ {
			if participants[i].Amount.GreaterThan(participants[largest].Amount) {
				largest = i
			}
		}
		participants[largest].Amount = participants[largest].Amount.Add(residual)
	}

	return Result{State: s, Participants: participants}, nil
}
