// Package models defines the core domain records for the expense and
// settlement subsystem.
//
// # Models
//
//   - Expense: a shared cost with its full participant set
//   - Participant: one member's row on an expense (role, share, payment status)
//   - Member: a device identity with a display name
//   - Obligation: a directed amount one member owes another
//   - Transfer: a simplified obligation after pairwise netting
//
// # Design Principles
//
//  1. **Weak references**: expenses reference groups, events and members by ID
//     string only; those records are owned by the wider app.
//  2. **Exact amounts**: money is decimal.Decimal, never float64. The decimal
//     JSON codec also accepts string-encoded amounts from the transport layer.
//  3. **Validation at construction**: records are assembled and checked by the
//     ledger package, not at render or persistence time.
package models
