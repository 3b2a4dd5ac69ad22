package calculator

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/money"
)

// Transfer is a single payment that moves a debtor towards zero.
type Transfer struct {
	Payer    string
	Receiver string
	Amount   money.Money
}

type party struct {
	name   string
	amount money.Money // magnitude still to settle, always > 0
}

// PlanSettlement computes transfers that bring every balance to zero.
//
// Balances use the ledger sign convention: positive means the person is owed
// money, negative means they owe. The sum must be exactly zero.
//
// Greedy matching: the largest debtor pays the largest creditor the smaller of
// the two amounts, ties going to the lexicographically smallest name, until
// no debtors remain. This yields at most n-1 transfers for n non-zero
// balances and is deterministic for identical input.
func PlanSettlement(balances map[string]money.Money) ([]Transfer, error) {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Decimal())
	}
	if !total.IsZero() {
		sum := total.StringFixed(money.Scale)
		return nil, newError(KindUnbalancedLedger, "balances", sum,
			"balances sum to %s, want 0.00", sum)
	}

	var debtors, creditors []party
	for _, name := range sortedPersons(balances) {
		switch b := balances[name]; {
		case b < 0:
			owed, err := money.Sub(0, b)
			if err != nil {
				return nil, fmt.Errorf("balance of %s: %w", name, err)
			}
			debtors = append(debtors, party{name: name, amount: owed})
		case b > 0:
			creditors = append(creditors, party{name: name, amount: b})
		}
	}

	transfers := make([]Transfer, 0, len(debtors)+len(creditors))
	for len(debtors) > 0 {
		if len(creditors) == 0 {
			// Unreachable while the zero-sum check above holds.
			return nil, newError(KindUnbalancedLedger, "balances", "",
				"debtors remain with no creditors left")
		}

		di, ci := largest(debtors), largest(creditors)
		amount := money.Min(debtors[di].amount, creditors[ci].amount)

		transfers = append(transfers, Transfer{
			Payer:    debtors[di].name,
			Receiver: creditors[ci].name,
			Amount:   amount,
		})

		debtors[di].amount -= amount
		creditors[ci].amount -= amount
		if debtors[di].amount == 0 {
			debtors = slices.Delete(debtors, di, di+1)
		}
		if creditors[ci].amount == 0 {
			creditors = slices.Delete(creditors, ci, ci+1)
		}
	}

	return transfers, nil
}

// largest returns the index of the party with the biggest amount. Parties are
// kept in name order, so the first maximum is the smallest name.
func largest(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		if parties[i].amount > parties[best].amount {
			best = i
		}
	}
	return best
}
