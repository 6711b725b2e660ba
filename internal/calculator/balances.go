// Package calculator computes balances and settle-up plans over a snapshot of
// expenses. Everything here is a pure function: callers pass the full expense
// list on every refresh, which is cheap at the expected scale of tens of
// members and hundreds of expenses per group.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/aroray/settleup/internal/models"
)

// Entry is one per-expense attribution in a balance breakdown.
type Entry struct {
	// ExpenseID is the expense the amount was attributed from.
	ExpenseID string `json:"expense_id"`

	// Counterparty is the member on the other side of the attribution.
	Counterparty string `json:"counterparty"`

	// Amount is the attributed share. Always positive.
	Amount decimal.Decimal `json:"amount"`
}

// Balance is a member's aggregated position across a set of expenses.
type Balance struct {
	// NetBalance is TotalOwed - TotalOwing. Positive means the group owes
	// the member money.
	NetBalance decimal.Decimal `json:"net_balance"`

	// TotalOwed is the sum others owe this member.
	TotalOwed decimal.Decimal `json:"total_owed"`

	// TotalOwing is the sum this member owes others.
	TotalOwing decimal.Decimal `json:"total_owing"`

	// Debts itemizes what the member owes, one entry per expense payer.
	Debts []Entry `json:"debts"`

	// Credits itemizes what the member is owed, one entry per expense ower.
	Credits []Entry `json:"credits"`
}

// ForUser aggregates one member's position across the given expenses.
//
// For each expense the member paid into, every ower's share is attributed to
// the member in proportion to the member's part of the payer side. For each
// expense the member owes into, every payer is credited in proportion to the
// member's part of the ower side. The two attributions are independent: a
// member who is both payer and ower on one expense accrues both a credit and
// a debt for it. A zero role sum skips that branch rather than dividing by
// zero.
func ForUser(expenses []models.Expense, userID string) Balance {
	b := Balance{
		NetBalance: decimal.Zero,
		TotalOwed:  decimal.Zero,
		TotalOwing: decimal.Zero,
		Debts:      []Entry{},
		Credits:    []Entry{},
	}

	for _, e := range expenses {
		userPaid := decimal.Zero
		userOwed := decimal.Zero
		for _, p := range e.Participants {
			if p.MemberID != userID {
				continue
			}
			switch p.Role {
			case models.RolePayer:
				userPaid = userPaid.Add(p.Amount)
			case models.RoleOwer:
				userOwed = userOwed.Add(p.Amount)
			}
		}

		if userPaid.IsPositive() {
			payerTotal := e.RoleSum(models.RolePayer)
			if payerTotal.IsPositive() {
				payerShare := userPaid.Div(payerTotal)
				for _, ower := range e.Rows(models.RoleOwer) {
					credit := ower.Amount.Mul(payerShare).Round(2)
					if credit.IsZero() {
						continue
					}
					b.TotalOwed = b.TotalOwed.Add(credit)
					b.Credits = append(b.Credits, Entry{
						ExpenseID:    e.ID,
						Counterparty: ower.MemberID,
						Amount:       credit,
					})
				}
			}
		}

		if userOwed.IsPositive() {
			owerTotal := e.RoleSum(models.RoleOwer)
			if owerTotal.IsPositive() {
				owerShare := userOwed.Div(owerTotal)
				for _, payer := range e.Rows(models.RolePayer) {
					debt := payer.Amount.Mul(owerShare).Round(2)
					if debt.IsZero() {
						continue
					}
					b.TotalOwing = b.TotalOwing.Add(debt)
					b.Debts = append(b.Debts, Entry{
						ExpenseID:    e.ID,
						Counterparty: payer.MemberID,
						Amount:       debt,
					})
				}
			}
		}
	}

	b.NetBalance = b.TotalOwed.Sub(b.TotalOwing)
	return b
}

// Obligations runs payer/ower attribution across all members of the given
// expenses, producing the directed amounts that feed Simplify. Self-edges
// (a member covering part of their own share) are skipped: they cancel by
// definition and would only produce degenerate pairs.
func Obligations(expenses []models.Expense) []models.Obligation {
	var out []models.Obligation
	for _, e := range expenses {
		payerTotal := e.RoleSum(models.RolePayer)
		if !payerTotal.IsPositive() {
			continue
		}
		for _, payer := range e.Rows(models.RolePayer) {
			payerShare := payer.Amount.Div(payerTotal)
			for _, ower := range e.Rows(models.RoleOwer) {
				if ower.MemberID == payer.MemberID {
					continue
				}
				amount := ower.Amount.Mul(payerShare).Round(2)
				if amount.IsZero() {
					continue
				}
				out = append(out, models.Obligation{
					ExpenseID: e.ID,
					From:      ower.MemberID,
					To:        payer.MemberID,
					Amount:    amount,
				})
			}
		}
	}
	return out
}
