package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/observability"
	"github.com/mmynk/settleup/internal/storage"
)

// ExpenseView is a stored expense together with its resolved shares.
type ExpenseView struct {
	Expense  *models.Expense
	Resolved []calculator.ResolvedShare
}

// ExpenseService manages expenses and resolves their shares.
type ExpenseService struct {
	store   storage.Store
	metrics *observability.Metrics
}

// NewExpenseService creates a new ExpenseService. metrics may be nil.
func NewExpenseService(store storage.Store, metrics *observability.Metrics) *ExpenseService {
	return &ExpenseService{store: store, metrics: metrics}
}

// Categories returns every expense category.
func (s *ExpenseService) Categories() []models.Category {
	return models.Categories()
}

// ResolveShares resolves shares for amount without storing anything.
func (s *ExpenseService) ResolveShares(ctx context.Context, amount money.Money, shares []models.Share) ([]calculator.ResolvedShare, error) {
	resolved, err := resolve(s.metrics, amount, shares)
	if err != nil {
		slog.DebugContext(ctx, "ResolveShares rejected", "amount", amount, "shares_count", len(shares), "error", err)
		return nil, err
	}
	return resolved, nil
}

// CreateExpense validates and stores a new expense in its group. The payer and
// every shareholder become group members if they are not already.
func (s *ExpenseService) CreateExpense(ctx context.Context, expense *models.Expense) (*ExpenseView, error) {
	slog.InfoContext(ctx, "CreateExpense request received",
		"group_id", expense.GroupID,
		"amount", expense.Amount,
		"shares_count", len(expense.Shares),
	)

	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.validate(expense)
	if err != nil {
		slog.WarnContext(ctx, "CreateExpense validation failed", "group_id", expense.GroupID, "error", err)
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.ErrorContext(ctx, "CreateExpense failed", "error", err)
		return nil, err
	}

	autoAddMembers(ctx, s.store, group, expense.People())

	slog.InfoContext(ctx, "Expense created", "expense_id", expense.ID, "group_id", expense.GroupID)
	return &ExpenseView{Expense: expense, Resolved: resolved}, nil
}

// GetExpense retrieves an expense and resolves its shares.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*ExpenseView, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	return s.view(expense)
}

// UpdateExpense replaces an existing expense. The group cannot change.
func (s *ExpenseService) UpdateExpense(ctx context.Context, expense *models.Expense) (*ExpenseView, error) {
	slog.InfoContext(ctx, "UpdateExpense request received", "expense_id", expense.ID)

	resolved, err := s.validate(expense)
	if err != nil {
		slog.WarnContext(ctx, "UpdateExpense validation failed", "expense_id", expense.ID, "error", err)
		return nil, err
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.ErrorContext(ctx, "UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		slog.WarnContext(ctx, "UpdateExpense: failed to load group", "group_id", expense.GroupID, "error", err)
	} else {
		autoAddMembers(ctx, s.store, group, expense.People())
	}

	slog.InfoContext(ctx, "Expense updated", "expense_id", expense.ID)
	return &ExpenseView{Expense: expense, Resolved: resolved}, nil
}

// DeleteExpense removes an expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", "expense_id", expenseID)
	return nil
}

// ListExpenses returns a page of a group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, groupID string, filter storage.ExpenseFilter) ([]*ExpenseView, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, invalidf("unknown category %q", filter.Category)
	}
	if filter.Skip < 0 || filter.Limit < 0 {
		return nil, invalidf("skip and limit must not be negative")
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID, filter)
	if err != nil {
		return nil, err
	}

	views := make([]*ExpenseView, 0, len(expenses))
	for _, e := range expenses {
		v, err := s.view(e)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}

	slog.DebugContext(ctx, "ListExpenses successful", "group_id", groupID, "count", len(views))
	return views, nil
}

// validate checks the non-share fields and resolves the shares.
func (s *ExpenseService) validate(expense *models.Expense) ([]calculator.ResolvedShare, error) {
	expense.Description = strings.TrimSpace(expense.Description)
	expense.PaidBy = strings.TrimSpace(expense.PaidBy)
	for i := range expense.Shares {
		expense.Shares[i].Person = strings.TrimSpace(expense.Shares[i].Person)
	}

	if expense.Description == "" {
		return nil, invalidf("description is required")
	}
	if expense.PaidBy == "" {
		return nil, invalidf("paid_by is required")
	}
	if expense.Category == "" {
		expense.Category = models.CategoryOther
	}
	if !expense.Category.Valid() {
		return nil, invalidf("unknown category %q", expense.Category)
	}

	return resolve(s.metrics, expense.Amount, expense.Shares)
}

// view resolves a stored expense. Stored shares were validated on write, so a
// failure here means the row is corrupt.
func (s *ExpenseService) view(expense *models.Expense) (*ExpenseView, error) {
	specs, err := toShareSpecs(expense.Shares)
	if err != nil {
		return nil, fmt.Errorf("%w: expense %s: %w", ErrCorruptRecord, expense.ID, err)
	}
	resolved, err := calculator.ResolveShares(expense.Amount, specs)
	if err != nil {
		return nil, fmt.Errorf("%w: expense %s: %w", ErrCorruptRecord, expense.ID, err)
	}
	return &ExpenseView{Expense: expense, Resolved: resolved}, nil
}
