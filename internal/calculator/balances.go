package calculator

import (
	"fmt"
	"slices"

	"github.com/mmynk/settleup/internal/money"
)

// ExpenseForBalance is the part of an expense needed for balance aggregation.
type ExpenseForBalance struct {
	ID     string
	Amount money.Money
	PaidBy string
	Shares []ShareSpec
}

// PaymentForBalance is a recorded payment between two members.
type PaymentForBalance struct {
	From   string // debtor settling up
	To     string // creditor being paid
	Amount money.Money
}

// MemberBalance is one person's position across a group's history.
type MemberBalance struct {
	Name      string
	TotalPaid money.Money // expenses paid plus payments sent
	TotalOwed money.Money // resolved shares plus payments received
	Net       money.Money // TotalPaid - TotalOwed; positive = owed money
}

// ComputeBalances aggregates expenses and payments into per-person balances.
//
// For each expense the payer is credited the full amount and each shareholder
// is debited their resolved share. A payment credits the sender and debits
// the receiver. Every name in members appears in the result even with no
// activity. Results are sorted by name and their Net values sum to zero.
func ComputeBalances(expenses []ExpenseForBalance, payments []PaymentForBalance, members []string) ([]MemberBalance, error) {
	balances := make(map[string]*MemberBalance, len(members))
	get := func(name string) *MemberBalance {
		b, ok := balances[name]
		if !ok {
			b = &MemberBalance{Name: name}
			balances[name] = b
		}
		return b
	}

	for _, m := range members {
		get(m)
	}

	for _, e := range expenses {
		shares, err := ResolveShares(e.Amount, e.Shares)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve shares for expense %s: %w", e.ID, err)
		}

		if err := accumulate(&get(e.PaidBy).TotalPaid, e.Amount); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		for _, s := range shares {
			if err := accumulate(&get(s.Person).TotalOwed, s.Amount); err != nil {
				return nil, fmt.Errorf("expense %s: %w", e.ID, err)
			}
		}
	}

	for _, p := range payments {
		if err := accumulate(&get(p.From).TotalPaid, p.Amount); err != nil {
			return nil, fmt.Errorf("payment from %s: %w", p.From, err)
		}
		if err := accumulate(&get(p.To).TotalOwed, p.Amount); err != nil {
			return nil, fmt.Errorf("payment to %s: %w", p.To, err)
		}
	}

	out := make([]MemberBalance, 0, len(balances))
	for _, name := range sortedPersons(balances) {
		b := balances[name]
		net, err := money.Sub(b.TotalPaid, b.TotalOwed)
		if err != nil {
			return nil, fmt.Errorf("balance of %s: %w", name, err)
		}
		b.Net = net
		out = append(out, *b)
	}
	return out, nil
}

// accumulate adds amount to *total, failing instead of wrapping on overflow.
func accumulate(total *money.Money, amount money.Money) error {
	sum, err := money.Add(*total, amount)
	if err != nil {
		return err
	}
	*total = sum
	return nil
}

// NetBalances converts member balances into the map consumed by PlanSettlement.
func NetBalances(members []MemberBalance) map[string]money.Money {
	out := make(map[string]money.Money, len(members))
	for _, m := range members {
		out[m.Name] = m.Net
	}
	return out
}

// sortedPersons returns the keys of m in ascending order.
func sortedPersons[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
