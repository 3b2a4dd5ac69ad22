// Package service implements the ledger use cases on top of storage and the
// calculator. Handlers in internal/api translate HTTP to these calls.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/observability"
	"github.com/mmynk/settleup/internal/storage"
)

// ErrInvalidInput is wrapped by validation failures that are not calculator
// errors, such as a missing payer or an unknown category.
var ErrInvalidInput = errors.New("invalid input")

// ErrCorruptRecord is wrapped when stored data no longer passes validation.
var ErrCorruptRecord = errors.New("stored record is invalid")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// toShareSpecs converts stored shares into calculator input. Exact values
// with sub-cent precision are rejected as invalid share values.
func toShareSpecs(shares []models.Share) ([]calculator.ShareSpec, error) {
	specs := make([]calculator.ShareSpec, len(shares))
	for i, s := range shares {
		switch s.Type {
		case models.ShareExact:
			amount, err := money.FromDecimal(s.Value)
			if err != nil {
				return nil, &calculator.Error{
					Kind:    calculator.KindInvalidShareValue,
					Field:   fmt.Sprintf("shares[%d].value", i),
					Message: err.Error(),
					Value:   s.Value.String(),
				}
			}
			specs[i] = calculator.ExactShare(s.Person, amount)
		case models.SharePercentage:
			specs[i] = calculator.PercentShare(s.Person, s.Value)
		default:
			// Unknown types are reported by the calculator.
			specs[i] = calculator.ShareSpec{Person: s.Person, Kind: calculator.ShareKind(s.Type)}
		}
	}
	return specs, nil
}

// resolve runs the share resolver and records the outcome.
func resolve(metrics *observability.Metrics, amount money.Money, shares []models.Share) ([]calculator.ResolvedShare, error) {
	specs, err := toShareSpecs(shares)
	if err == nil {
		var resolved []calculator.ResolvedShare
		resolved, err = calculator.ResolveShares(amount, specs)
		if err == nil {
			metrics.ShareResolution(observability.OutcomeResolved, "")
			return resolved, nil
		}
	}

	kind := "unknown"
	var calcErr *calculator.Error
	if errors.As(err, &calcErr) {
		kind = string(calcErr.Kind)
	}
	metrics.ShareResolution(observability.OutcomeRejected, kind)
	return nil, err
}

// findNewMembers returns people that are not already in existing, keeping
// the order of people.
func findNewMembers(people, existing []string) []string {
	memberSet := make(map[string]bool, len(existing))
	for _, m := range existing {
		memberSet[m] = true
	}
	var newOnes []string
	for _, p := range people {
		if !memberSet[p] {
			memberSet[p] = true
			newOnes = append(newOnes, p)
		}
	}
	return newOnes
}

// autoAddMembers adds any of people not already in the group. Failures are
// logged and otherwise ignored; balances include every name regardless.
func autoAddMembers(ctx context.Context, store storage.Store, group *models.Group, people []string) {
	newMembers := findNewMembers(people, group.Members)
	if len(newMembers) == 0 {
		return
	}

	if err := store.AddGroupMembers(ctx, group.ID, newMembers); err != nil {
		slog.ErrorContext(ctx, "autoAddMembers: failed to add members", "group_id", group.ID, "error", err)
		return
	}
	slog.InfoContext(ctx, "Auto-added members to group", "group_id", group.ID, "new_members", newMembers)
}

// cleanNames trims names and drops blanks.
func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
