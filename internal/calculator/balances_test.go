package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/aroray/settleup/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func row(member string, role models.Role, amount string) models.Participant {
	return models.Participant{MemberID: member, Role: role, Amount: d(amount)}
}

// dinner: alice paid 100, bob owes 60, carol owes 40.
func dinner() models.Expense {
	return models.Expense{
		ID:      "e1",
		GroupID: "g1",
		Total:   d("100"),
		Participants: []models.Participant{
			row("alice", models.RolePayer, "100"),
			row("bob", models.RoleOwer, "60"),
			row("carol", models.RoleOwer, "40"),
		},
	}
}

func TestForUser_EmptyList(t *testing.T) {
	b := ForUser(nil, "alice")
	if !b.NetBalance.IsZero() || !b.TotalOwed.IsZero() || !b.TotalOwing.IsZero() {
		t.Errorf("empty list must be all zeros, got %+v", b)
	}
	if b.Debts == nil || b.Credits == nil {
		t.Error("breakdowns must be empty slices, not nil")
	}
	if len(b.Debts) != 0 || len(b.Credits) != 0 {
		t.Errorf("breakdowns must be empty, got %d debts, %d credits", len(b.Debts), len(b.Credits))
	}
}

func TestForUser_SinglePayer(t *testing.T) {
	expenses := []models.Expense{dinner()}

	alice := ForUser(expenses, "alice")
	if !alice.TotalOwed.Equal(d("100")) {
		t.Errorf("alice TotalOwed = %s, want 100", alice.TotalOwed)
	}
	if !alice.TotalOwing.IsZero() {
		t.Errorf("alice TotalOwing = %s, want 0", alice.TotalOwing)
	}
	if !alice.NetBalance.Equal(d("100")) {
		t.Errorf("alice NetBalance = %s, want 100", alice.NetBalance)
	}
	if len(alice.Credits) != 2 {
		t.Fatalf("alice credits = %d entries, want 2", len(alice.Credits))
	}
	wantCredits := map[string]string{"bob": "60", "carol": "40"}
	for _, c := range alice.Credits {
		if want, ok := wantCredits[c.Counterparty]; !ok || !c.Amount.Equal(d(want)) {
			t.Errorf("credit %s = %s, want %s", c.Counterparty, c.Amount, want)
		}
		if c.ExpenseID != "e1" {
			t.Errorf("credit expense = %s, want e1", c.ExpenseID)
		}
	}

	bob := ForUser(expenses, "bob")
	if !bob.TotalOwing.Equal(d("60")) || !bob.TotalOwed.IsZero() {
		t.Errorf("bob owing = %s, owed = %s; want 60, 0", bob.TotalOwing, bob.TotalOwed)
	}
	if !bob.NetBalance.Equal(d("-60")) {
		t.Errorf("bob NetBalance = %s, want -60", bob.NetBalance)
	}
	if len(bob.Debts) != 1 || bob.Debts[0].Counterparty != "alice" {
		t.Errorf("bob debts = %+v, want one entry toward alice", bob.Debts)
	}
}

func TestForUser_SplitPayers(t *testing.T) {
	// alice and bob paid 70/30; carol owes the full 100.
	expenses := []models.Expense{{
		ID:    "e2",
		Total: d("100"),
		Participants: []models.Participant{
			row("alice", models.RolePayer, "70"),
			row("bob", models.RolePayer, "30"),
			row("carol", models.RoleOwer, "100"),
		},
	}}

	alice := ForUser(expenses, "alice")
	if !alice.TotalOwed.Equal(d("70")) {
		t.Errorf("alice TotalOwed = %s, want 70", alice.TotalOwed)
	}

	carol := ForUser(expenses, "carol")
	if !carol.TotalOwing.Equal(d("100")) {
		t.Errorf("carol TotalOwing = %s, want 100", carol.TotalOwing)
	}
	if len(carol.Debts) != 2 {
		t.Fatalf("carol debts = %d entries, want 2", len(carol.Debts))
	}
}

func TestForUser_BothRolesStayIndependent(t *testing.T) {
	// alice paid 100 and also owes 50 of it. The credit and the debt are
	// accumulated independently, not netted inside the calculator.
	expenses := []models.Expense{{
		ID:    "e3",
		Total: d("100"),
		Participants: []models.Participant{
			row("alice", models.RolePayer, "100"),
			row("alice", models.RoleOwer, "50"),
			row("bob", models.RoleOwer, "50"),
		},
	}}

	alice := ForUser(expenses, "alice")
	if !alice.TotalOwed.Equal(d("100")) {
		t.Errorf("alice TotalOwed = %s, want 100", alice.TotalOwed)
	}
	if !alice.TotalOwing.Equal(d("100")) {
		t.Errorf("alice TotalOwing = %s, want 100", alice.TotalOwing)
	}
	if !alice.NetBalance.IsZero() {
		t.Errorf("alice NetBalance = %s, want 0", alice.NetBalance)
	}
}

func TestForUser_ZeroDenominatorSkipsAttribution(t *testing.T) {
	// Degenerate snapshot: a payer row but an empty ower side. The ower
	// branch must be skipped, never divide by zero.
	expenses := []models.Expense{{
		ID:    "e4",
		Total: d("50"),
		Participants: []models.Participant{
			row("alice", models.RolePayer, "50"),
			row("bob", models.RoleOwer, "0"),
		},
	}}

	bob := ForUser(expenses, "bob")
	if !bob.TotalOwing.IsZero() || !bob.NetBalance.IsZero() {
		t.Errorf("zero share must produce no attribution, got %+v", bob)
	}
}

func TestObligations(t *testing.T) {
	obligations := Obligations([]models.Expense{dinner()})
	if len(obligations) != 2 {
		t.Fatalf("obligations = %d, want 2", len(obligations))
	}
	want := map[string]string{"bob": "60", "carol": "40"}
	for _, o := range obligations {
		if o.To != "alice" {
			t.Errorf("obligation to %s, want alice", o.To)
		}
		if amt, ok := want[o.From]; !ok || !o.Amount.Equal(d(amt)) {
			t.Errorf("obligation %s->%s = %s, want %s", o.From, o.To, o.Amount, amt)
		}
	}
}

func TestObligations_SkipsSelfEdges(t *testing.T) {
	obligations := Obligations([]models.Expense{{
		ID:    "e5",
		Total: d("100"),
		Participants: []models.Participant{
			row("alice", models.RolePayer, "100"),
			row("alice", models.RoleOwer, "50"),
			row("bob", models.RoleOwer, "50"),
		},
	}})
	if len(obligations) != 1 {
		t.Fatalf("obligations = %+v, want only bob->alice", obligations)
	}
	if obligations[0].From != "bob" || obligations[0].To != "alice" || !obligations[0].Amount.Equal(d("50")) {
		t.Errorf("obligation = %+v, want bob->alice 50", obligations[0])
	}
}
