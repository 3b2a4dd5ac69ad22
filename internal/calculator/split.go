package calculator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/money"
)

var hundred = decimal.NewFromInt(100)

// ShareKind says how a share's value is interpreted.
type ShareKind string

const (
	// ShareExact is a fixed amount of money.
	ShareExact ShareKind = "exact"
	// SharePercentage is a percentage of what is left after exact shares.
	SharePercentage ShareKind = "percentage"
)

// ShareSpec is one person's raw share of an expense.
type ShareSpec struct {
	Person string
	Kind   ShareKind
	// Amount is used when Kind is ShareExact.
	Amount money.Money
	// Percent is used when Kind is SharePercentage, in [0, 100].
	Percent decimal.Decimal
}

// ExactShare builds an exact-amount share.
func ExactShare(person string, amount money.Money) ShareSpec {
	return ShareSpec{Person: person, Kind: ShareExact, Amount: amount}
}

// PercentShare builds a percentage share.
func PercentShare(person string, percent decimal.Decimal) ShareSpec {
	return ShareSpec{Person: person, Kind: SharePercentage, Percent: percent}
}

// ResolvedShare is what one person owes for an expense.
type ResolvedShare struct {
	Person string
	Amount money.Money
}

// ResolveShares turns raw shares into exact per-person amounts.
//
// Exact shares are taken as given. Whatever is left of amount is divided
// among percentage shares, each rounded half-to-even to the cent. Cents lost
// or gained by rounding go, one at a time, to the shares whose rounding moved
// them furthest from their exact value, so the result always sums to amount.
// Output order matches input order. On error no shares are returned.
func ResolveShares(amount money.Money, shares []ShareSpec) ([]ResolvedShare, error) {
	if !amount.IsPositive() {
		return nil, newError(KindInvalidAmount, "amount", amount.String(),
			"amount must be greater than zero, got %s", amount)
	}
	if len(shares) == 0 {
		return nil, newError(KindEmptyShareSet, "shares", "", "at least one share is required")
	}

	var (
		exactTotal   = decimal.Zero
		percentTotal = decimal.Zero
		percentIdx   []int
		seen         = make(map[string]struct{}, len(shares))
	)

	for i, share := range shares {
		field := fmt.Sprintf("shares[%d]", i)

		if strings.TrimSpace(share.Person) == "" {
			return nil, newError(KindInvalidShareValue, field+".person", "", "person is required")
		}
		if _, dup := seen[share.Person]; dup {
			return nil, newError(KindDuplicateShareholder, field+".person", share.Person,
				"%s appears more than once", share.Person)
		}
		seen[share.Person] = struct{}{}

		switch share.Kind {
		case ShareExact:
			if share.Amount.IsNegative() {
				return nil, newError(KindInvalidShareValue, field+".value", share.Amount.String(),
					"exact share must not be negative, got %s", share.Amount)
			}
			exactTotal = exactTotal.Add(share.Amount.Decimal())
		case SharePercentage:
			if share.Percent.IsNegative() || share.Percent.GreaterThan(hundred) {
				return nil, newError(KindInvalidShareValue, field+".value", share.Percent.String(),
					"percentage must be between 0 and 100, got %s", share.Percent)
			}
			percentTotal = percentTotal.Add(share.Percent)
			percentIdx = append(percentIdx, i)
		default:
			return nil, newError(KindInvalidShareValue, field+".type", string(share.Kind),
				"unknown share type %q", share.Kind)
		}
	}

	// Exact shares are totalled in decimal so the sum cannot wrap.
	if exactTotal.GreaterThan(amount.Decimal()) {
		total := exactTotal.StringFixed(money.Scale)
		return nil, newError(KindExactShareOverflow, "shares", total,
			"exact shares total %s exceeds expense amount %s", total, amount)
	}
	remaining := amount - money.FromCents(exactTotal.Shift(money.Scale).IntPart())

	if len(percentIdx) == 0 {
		if remaining != 0 {
			return nil, newError(KindPercentageSumMismatch, "shares", "0",
				"exact shares total %s leaves %s unassigned and no percentage shares to cover it",
				exactTotal.StringFixed(money.Scale), remaining)
		}
	} else if !percentTotal.Equal(hundred) {
		return nil, newError(KindPercentageSumMismatch, "shares", percentTotal.String(),
			"percentage shares must sum to 100, got %s", percentTotal)
	}

	resolved := make([]ResolvedShare, len(shares))
	for i, share := range shares {
		resolved[i] = ResolvedShare{Person: share.Person}
		if share.Kind == ShareExact {
			resolved[i].Amount = share.Amount
		}
	}

	for idx, cents := range allocatePercentages(remaining, shares, percentIdx) {
		resolved[idx].Amount = cents
	}

	return resolved, nil
}

type portion struct {
	idx     int
	cents   money.Money
	residue decimal.Decimal // exact value minus rounded value, in cents
}

// allocatePercentages splits remaining across the shares at idx. Percentages
// must sum to 100, so the exact portions sum to remaining and the rounding
// residues sum to a whole number of cents that is redistributed here.
func allocatePercentages(remaining money.Money, shares []ShareSpec, idx []int) map[int]money.Money {
	base := decimal.NewFromInt(remaining.Cents())
	portions := make([]portion, 0, len(idx))

	var allocated money.Money
	for _, i := range idx {
		exact := base.Mul(shares[i].Percent).Shift(-2)
		rounded := exact.RoundBank(0)
		p := portion{
			idx:     i,
			cents:   money.FromCents(rounded.IntPart()),
			residue: exact.Sub(rounded),
		}
		allocated += p.cents
		portions = append(portions, p)
	}

	diff := remaining - allocated
	if diff != 0 && len(portions) > 0 {
		order := make([]*portion, len(portions))
		for i := range portions {
			order[i] = &portions[i]
		}

		step := money.Money(1)
		if diff > 0 {
			slices.SortStableFunc(order, func(a, b *portion) int { return b.residue.Cmp(a.residue) })
		} else {
			step = -1
			slices.SortStableFunc(order, func(a, b *portion) int { return a.residue.Cmp(b.residue) })
		}

		for k := 0; diff != 0; k++ {
			order[k%len(order)].cents += step
			diff -= step
		}
	}

	out := make(map[int]money.Money, len(portions))
	for _, p := range portions {
		out[p.idx] = p.cents
	}
	return out
}
