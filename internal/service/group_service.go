package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/observability"
	"github.com/mmynk/settleup/internal/storage"
)

// GroupService manages groups, their payments and derived balances.
type GroupService struct {
	store   storage.Store
	metrics *observability.Metrics
}

// NewGroupService creates a new GroupService. metrics may be nil.
func NewGroupService(store storage.Store, metrics *observability.Metrics) *GroupService {
	return &GroupService{store: store, metrics: metrics}
}

// CreateGroup creates a new group.
func (s *GroupService) CreateGroup(ctx context.Context, name string, members []string) (*models.Group, error) {
	slog.InfoContext(ctx, "CreateGroup request received",
		"name", name,
		"members_count", len(members),
	)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("group name is required")
	}

	group := &models.Group{
		Name:    name,
		Members: cleanNames(members),
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.ErrorContext(ctx, "CreateGroup failed", "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "Group created", "group_id", group.ID)
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "ListGroups failed", "error", err)
		return nil, err
	}
	return groups, nil
}

// AddMembers adds names to a group and returns the updated group.
func (s *GroupService) AddMembers(ctx context.Context, groupID string, members []string) (*models.Group, error) {
	members = cleanNames(members)
	if len(members) == 0 {
		return nil, invalidf("at least one member name is required")
	}

	if err := s.store.AddGroupMembers(ctx, groupID, members); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Members added", "group_id", groupID, "members", members)
	return s.store.GetGroup(ctx, groupID)
}

// Balances computes every member's position from the group's full history.
// Net is positive for people who are owed money.
func (s *GroupService) Balances(ctx context.Context, groupID string) ([]calculator.MemberBalance, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID, storage.ExpenseFilter{})
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	calcExpenses := make([]calculator.ExpenseForBalance, len(expenses))
	for i, e := range expenses {
		specs, err := toShareSpecs(e.Shares)
		if err != nil {
			return nil, fmt.Errorf("%w: expense %s: %w", ErrCorruptRecord, e.ID, err)
		}
		calcExpenses[i] = calculator.ExpenseForBalance{
			ID:     e.ID,
			Amount: e.Amount,
			PaidBy: e.PaidBy,
			Shares: specs,
		}
	}

	calcPayments := make([]calculator.PaymentForBalance, len(payments))
	for i, p := range payments {
		calcPayments[i] = calculator.PaymentForBalance{From: p.From, To: p.To, Amount: p.Amount}
	}

	// Stored expenses were validated on write, so a failure here is bad data
	// rather than bad input.
	balances, err := calculator.ComputeBalances(calcExpenses, calcPayments, group.Members)
	if err != nil {
		slog.ErrorContext(ctx, "Balances failed - calculation error", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("%w: group %s: %w", ErrCorruptRecord, groupID, err)
	}

	slog.DebugContext(ctx, "Balances computed",
		"group_id", groupID,
		"expenses_count", len(expenses),
		"payments_count", len(payments),
		"members_count", len(balances),
	)
	return balances, nil
}

// PlanSettlement returns the transfers that would bring every balance in the
// group to zero.
func (s *GroupService) PlanSettlement(ctx context.Context, groupID string) ([]calculator.Transfer, error) {
	balances, err := s.Balances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	transfers, err := calculator.PlanSettlement(calculator.NetBalances(balances))
	if err != nil {
		slog.ErrorContext(ctx, "PlanSettlement failed", "group_id", groupID, "error", err)
		return nil, err
	}

	s.metrics.SettlementPlan(len(transfers))
	slog.InfoContext(ctx, "Settlement planned", "group_id", groupID, "transfers", len(transfers))
	return transfers, nil
}

// RecordPayment stores money handed from one member to another. Both parties
// become group members if they are not already.
func (s *GroupService) RecordPayment(ctx context.Context, payment *models.Payment) error {
	payment.From = strings.TrimSpace(payment.From)
	payment.To = strings.TrimSpace(payment.To)
	payment.Note = strings.TrimSpace(payment.Note)

	switch {
	case payment.From == "" || payment.To == "":
		return invalidf("from and to are required")
	case payment.From == payment.To:
		return invalidf("a payment needs two different people, got %s twice", payment.From)
	case !payment.Amount.IsPositive():
		return invalidf("payment amount must be greater than zero, got %s", payment.Amount)
	}

	group, err := s.store.GetGroup(ctx, payment.GroupID)
	if err != nil {
		return err
	}

	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.ErrorContext(ctx, "RecordPayment failed", "error", err)
		return err
	}

	autoAddMembers(ctx, s.store, group, []string{payment.From, payment.To})

	slog.InfoContext(ctx, "Payment recorded",
		"payment_id", payment.ID,
		"group_id", payment.GroupID,
		"from", payment.From,
		"to", payment.To,
		"amount", payment.Amount,
	)
	return nil
}

// ListPayments returns a group's payments, newest first.
func (s *GroupService) ListPayments(ctx context.Context, groupID string) ([]*models.Payment, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListPaymentsByGroup(ctx, groupID)
}

// DeletePayment removes a payment.
func (s *GroupService) DeletePayment(ctx context.Context, paymentID string) error {
	if err := s.store.DeletePayment(ctx, paymentID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Payment deleted", "payment_id", paymentID)
	return nil
}
