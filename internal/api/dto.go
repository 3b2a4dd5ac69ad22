package api

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/service"
)

// Share is one person's raw share as sent and returned over the wire.
// Value is a percentage for type "percentage" and an amount for "exact".
type Share struct {
	Person string          `json:"person" validate:"required,max=100"`
	Type   string          `json:"type" validate:"required"`
	Value  decimal.Decimal `json:"value"`
}

// ResolvedShare is what one person owes for an expense.
type ResolvedShare struct {
	Person string      `json:"person"`
	Amount money.Money `json:"amount"`
}

type ResolveRequest struct {
	Amount money.Money `json:"amount"`
	Shares []Share     `json:"shares" validate:"dive"`
}

type ResolveResponse struct {
	Amount money.Money     `json:"amount"`
	Shares []ResolvedShare `json:"shares"`
}

type GroupRequest struct {
	Name    string   `json:"name" validate:"required,max=100"`
	Members []string `json:"members" validate:"dive,required,max=100"`
}

type AddMembersRequest struct {
	Members []string `json:"members" validate:"required,min=1,dive,required,max=100"`
}

type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

// ExpenseRequest is the body for creating or replacing an expense.
type ExpenseRequest struct {
	Description string      `json:"description" validate:"required,max=200"`
	Category    string      `json:"category" validate:"omitempty,max=32"`
	Amount      money.Money `json:"amount"`
	PaidBy      string      `json:"paid_by" validate:"required,max=100"`
	Shares      []Share     `json:"shares" validate:"dive"`
}

type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      money.Money     `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	Shares      []Share         `json:"shares"`
	Resolved    []ResolvedShare `json:"resolved_shares"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
}

type ExpenseList struct {
	Expenses []Expense `json:"expenses"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// Balance is a member's position; a positive balance means they are owed.
type Balance struct {
	Person    string      `json:"person"`
	TotalPaid money.Money `json:"total_paid"`
	TotalOwed money.Money `json:"total_owed"`
	Balance   money.Money `json:"balance"`
}

type Settlement struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount money.Money `json:"amount"`
}

type PaymentRequest struct {
	From   string      `json:"from" validate:"required,max=100"`
	To     string      `json:"to" validate:"required,max=100"`
	Amount money.Money `json:"amount"`
	Note   string      `json:"note" validate:"max=500"`
}

type Payment struct {
	ID        string      `json:"id"`
	GroupID   string      `json:"group_id"`
	From      string      `json:"from"`
	To        string      `json:"to"`
	Amount    money.Money `json:"amount"`
	Note      string      `json:"note,omitempty"`
	CreatedAt int64       `json:"created_at"`
}

func toModelShares(in []Share) []models.Share {
	out := make([]models.Share, len(in))
	for i, s := range in {
		out[i] = models.Share{Person: s.Person, Type: models.ShareType(s.Type), Value: s.Value}
	}
	return out
}

func fromModelShares(in []models.Share) []Share {
	out := make([]Share, len(in))
	for i, s := range in {
		out[i] = Share{Person: s.Person, Type: string(s.Type), Value: s.Value}
	}
	return out
}

func fromResolved(in []calculator.ResolvedShare) []ResolvedShare {
	out := make([]ResolvedShare, len(in))
	for i, s := range in {
		out[i] = ResolvedShare(s)
	}
	return out
}

func fromGroup(g *models.Group) Group {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return Group{ID: g.ID, Name: g.Name, Members: members, CreatedAt: g.CreatedAt}
}

func fromExpenseView(v *service.ExpenseView) Expense {
	e := v.Expense
	return Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Category:    string(e.Category),
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		Shares:      fromModelShares(e.Shares),
		Resolved:    fromResolved(v.Resolved),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func fromPayment(p *models.Payment) Payment {
	return Payment{
		ID:        p.ID,
		GroupID:   p.GroupID,
		From:      p.From,
		To:        p.To,
		Amount:    p.Amount,
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
}
