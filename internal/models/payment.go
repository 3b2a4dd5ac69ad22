package models

import "github.com/mmynk/settleup/internal/money"

// Payment records money handed from one group member to another to clear debts.
// A payment raises the sender's balance and lowers the receiver's.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// From is the member who paid (debtor settling up).
	From string

	// To is the member who received the money (creditor being paid).
	To string

	// Amount is the payment amount, always positive.
	Amount money.Money

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64

	// Note is an optional description for the payment.
	Note string
}
