package models

import "github.com/shopspring/decimal"

// Obligation is a directed amount one member owes another, attributed from a
// single expense. Obligations are raw material for netting; they are not
// stored.
type Obligation struct {
	// ExpenseID is the expense this obligation was attributed from.
	ExpenseID string `json:"expense_id"`

	// From is the member who owes.
	From string `json:"from"`

	// To is the member who is owed.
	To string `json:"to"`

	// Amount is the attributed share. Always positive.
	Amount decimal.Decimal `json:"amount"`
}

// Transfer is one payment in a simplified settle-up plan: the net of all
// obligations between a pair of members.
type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}
