// Package models defines the persisted domain models for settleup.
//
// # Models
//
//   - Group: a named set of people who share expenses
//   - Expense: an amount paid by one person and split among shareholders
//   - Share: one person's raw share of an expense (percentage or exact)
//   - Payment: money actually handed from one member to another
//
// People are identified by name strings scoped to a group.
//
// # Design Principles
//
// 1. **Raw input is stored, derived values are not**: an expense keeps its
// shares as entered; resolved amounts, balances and settlement plans are
// recomputed from history on every read.
// 2. **Money is fixed point**: every amount is a money.Money in cents.
// 3. **Avoid circular references**: relationships use ID strings, not pointers.
package models
