package calculator

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/money"
)

func TestPlanSettlement(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]money.Money
		want     []Transfer
	}{
		{
			name: "one debtor two creditors",
			balances: map[string]money.Money{
				"A": money.MustParse("-500"),
				"B": money.MustParse("200"),
				"C": money.MustParse("300"),
			},
			want: []Transfer{
				{Payer: "A", Receiver: "C", Amount: money.MustParse("300")},
				{Payer: "A", Receiver: "B", Amount: money.MustParse("200")},
			},
		},
		{
			name: "two participants",
			balances: map[string]money.Money{
				"Alice": money.MustParse("12.34"),
				"Bob":   money.MustParse("-12.34"),
			},
			want: []Transfer{
				{Payer: "Bob", Receiver: "Alice", Amount: money.MustParse("12.34")},
			},
		},
		{
			name: "ties go to smallest name",
			balances: map[string]money.Money{
				"D": money.MustParse("-10"),
				"C": money.MustParse("-10"),
				"B": money.MustParse("10"),
				"A": money.MustParse("10"),
			},
			want: []Transfer{
				{Payer: "C", Receiver: "A", Amount: money.MustParse("10")},
				{Payer: "D", Receiver: "B", Amount: money.MustParse("10")},
			},
		},
		{
			name: "partial settlement carries over",
			balances: map[string]money.Money{
				"A": money.MustParse("-70"),
				"B": money.MustParse("-30"),
				"C": money.MustParse("60"),
				"D": money.MustParse("40"),
			},
			want: []Transfer{
				{Payer: "A", Receiver: "C", Amount: money.MustParse("60")},
				{Payer: "B", Receiver: "D", Amount: money.MustParse("30")},
				{Payer: "A", Receiver: "D", Amount: money.MustParse("10")},
			},
		},
		{
			name:     "single participant",
			balances: map[string]money.Money{"A": 0},
			want:     []Transfer{},
		},
		{
			name:     "all zero",
			balances: map[string]money.Money{"A": 0, "B": 0, "C": 0},
			want:     []Transfer{},
		},
		{
			name:     "empty",
			balances: map[string]money.Money{},
			want:     []Transfer{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanSettlement(tt.balances)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanSettlementUnbalanced(t *testing.T) {
	_, err := PlanSettlement(map[string]money.Money{
		"A": money.MustParse("-5.00"),
		"B": money.MustParse("4.99"),
	})
	require.ErrorIs(t, err, ErrUnbalancedLedger)

	var calcErr *Error
	require.ErrorAs(t, err, &calcErr)
	assert.True(t, calcErr.Kind.IsConsistency())
	assert.Equal(t, "-0.01", calcErr.Value)
}

func TestPlanSettlementSumDoesNotWrap(t *testing.T) {
	tests := []struct {
		name      string
		balances  map[string]money.Money
		wantValue string
	}{
		{
			name: "creditors only",
			balances: map[string]money.Money{
				"A": money.FromCents(math.MaxInt64),
				"B": money.FromCents(math.MaxInt64),
				"C": money.FromCents(2),
			},
			wantValue: "184467440737095516.16",
		},
		{
			name: "debtors only",
			balances: map[string]money.Money{
				"A": money.FromCents(math.MinInt64),
				"B": money.FromCents(math.MinInt64),
			},
			wantValue: "-184467440737095516.16",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanSettlement(tt.balances)
			assert.Nil(t, got)

			var calcErr *Error
			require.ErrorAs(t, err, &calcErr)
			assert.Equal(t, KindUnbalancedLedger, calcErr.Kind)
			assert.Equal(t, tt.wantValue, calcErr.Value)
		})
	}
}

func TestPlanSettlementDebtOutOfRange(t *testing.T) {
	_, err := PlanSettlement(map[string]money.Money{
		"A": money.FromCents(math.MinInt64),
		"B": money.FromCents(math.MaxInt64),
		"C": money.FromCents(1),
	})
	require.ErrorIs(t, err, money.ErrOutOfRange)
}

func TestPlanSettlementProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		balances := randomBalances(rng, 2+rng.Intn(10))

		plan, err := PlanSettlement(balances)
		require.NoError(t, err)

		nonZero := 0
		for _, b := range balances {
			if b != 0 {
				nonZero++
			}
		}
		if nonZero > 0 {
			assert.LessOrEqual(t, len(plan), nonZero-1)
		}

		for _, tr := range plan {
			require.True(t, tr.Amount.IsPositive())
			require.NotEqual(t, tr.Payer, tr.Receiver)
		}

		settled := applyTransfers(balances, plan)
		for name, b := range settled {
			require.Zero(t, b, "balance of %s after settling", name)
		}

		again, err := PlanSettlement(settled)
		require.NoError(t, err)
		assert.Empty(t, again)

		repeat, err := PlanSettlement(balances)
		require.NoError(t, err)
		assert.Equal(t, plan, repeat)
	}
}

// applyTransfers returns a copy of balances with every transfer applied: the
// payer's balance rises and the receiver's falls by the transfer amount.
func applyTransfers(balances map[string]money.Money, transfers []Transfer) map[string]money.Money {
	out := make(map[string]money.Money, len(balances))
	for name, b := range balances {
		out[name] = b
	}
	for _, t := range transfers {
		out[t.Payer] += t.Amount
		out[t.Receiver] -= t.Amount
	}
	return out
}

func randomBalances(rng *rand.Rand, n int) map[string]money.Money {
	balances := make(map[string]money.Money, n)
	var total money.Money
	for i := 0; i < n-1; i++ {
		b := money.FromCents(rng.Int63n(200_001) - 100_000)
		if rng.Intn(5) == 0 {
			b = 0
		}
		balances[fmt.Sprintf("p%02d", i)] = b
		total += b
	}
	balances[fmt.Sprintf("p%02d", n-1)] = -total
	return balances
}
