package models

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/money"
)

// Category classifies an expense.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTravel        Category = "travel"
	CategoryUtilities     Category = "utilities"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTravel,
		CategoryUtilities,
		CategoryEntertainment,
		CategoryOther,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ShareType says how a Share's value is read.
type ShareType string

const (
	// SharePercentage means Value is a percentage of the amount left after
	// exact shares.
	SharePercentage ShareType = "percentage"
	// ShareExact means Value is a fixed amount in major units (e.g. 12.50).
	ShareExact ShareType = "exact"
)

// Share is one person's raw share of an expense, stored exactly as entered.
type Share struct {
	// Person is the participant name.
	Person string

	// Type is either SharePercentage or ShareExact.
	Type ShareType

	// Value is the percentage (0-100) or the exact amount, depending on Type.
	// Exact amounts never carry more than two decimal places.
	Value decimal.Decimal
}

// Expense is an amount paid by one person on behalf of a set of shareholders.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group the expense belongs to.
	GroupID string

	// Description is a short human-readable label (e.g., "Groceries").
	Description string

	// Category classifies the expense.
	Category Category

	// Amount is the total paid.
	Amount money.Money

	// PaidBy is the name of the person who paid. The payer does not have to
	// hold a share.
	PaidBy string

	// Shares are the raw shares in the order they were entered.
	// Resolved per-person amounts are never stored; they are recomputed from
	// these on every read.
	Shares []Share

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last update.
	UpdatedAt int64
}

// People returns the payer followed by every shareholder, without duplicates.
func (e *Expense) People() []string {
	seen := make(map[string]bool, len(e.Shares)+1)
	out := make([]string, 0, len(e.Shares)+1)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	add(e.PaidBy)
	for _, s := range e.Shares {
		add(s.Person)
	}
	return out
}
